package validate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/banshee-data/csd.report/internal/diagplot"
	"github.com/banshee-data/csd.report/internal/units"
)

// Result is the outcome of one scenario.
type Result struct {
	Scenario Scenario
	Got      units.Vector
	Want     units.Vector
	Deviation

	// Err is a *ComparisonFailure, or the error that stopped the scenario
	// before the comparison.
	Err error
	// Warnings are quadrature and conditioning notes; they do not fail
	// the scenario.
	Warnings  []error
	FigureErr error
	Duration  time.Duration
}

// Passed reports whether the recovered density matched.
func (r Result) Passed() bool { return r.Err == nil }

// Compared reports whether the scenario reached the comparison.
func (r Result) Compared() bool {
	var cf *ComparisonFailure
	return r.Err == nil || errors.As(r.Err, &cf)
}

// Report aggregates the results of a Run.
type Report struct {
	Started, Finished time.Time
	Results           []Result
}

// Failed reports whether any scenario failed.
func (r *Report) Failed() bool {
	return len(r.Failures()) > 0
}

// Failures returns the failed results in run order.
func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.Passed() {
			out = append(out, res)
		}
	}
	return out
}

// Passed counts the passing scenarios.
func (r *Report) Passed() int {
	return len(r.Results) - len(r.Failures())
}

// Summary is the human-readable pass/fail listing.
func (r *Report) Summary() string {
	var b strings.Builder
	for _, res := range r.Results {
		status := "PASS"
		if !res.Passed() {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "%s  %-14s %-8s %-6s", status, res.Scenario.Name, res.Scenario.Method, res.Scenario.Profile.Name)
		if res.Compared() {
			fmt.Fprintf(&b, "  max|dev| %.3g %s", res.MaxAbs, res.Want.Unit())
		}
		if len(res.Warnings) > 0 {
			fmt.Fprintf(&b, "  (%d warnings)", len(res.Warnings))
		}
		b.WriteByte('\n')
		if res.Err != nil {
			fmt.Fprintf(&b, "      %v\n", res.Err)
		}
	}
	fmt.Fprintf(&b, "%d/%d scenarios passed", r.Passed(), len(r.Results))
	if !r.Finished.IsZero() {
		fmt.Fprintf(&b, " in %v", r.Finished.Sub(r.Started).Round(time.Millisecond))
	}
	b.WriteByte('\n')
	return b.String()
}

// Entries converts the results for diagplot.WriteReport.
func (r *Report) Entries() []diagplot.Entry {
	out := make([]diagplot.Entry, 0, len(r.Results))
	for _, res := range r.Results {
		e := diagplot.Entry{
			Name:      res.Scenario.Name,
			Estimator: string(res.Scenario.Method),
			Profile:   res.Scenario.Profile.Name,
			Passed:    res.Passed(),
			Decimal:   res.Scenario.Decimal,
			MaxAbsDev: res.MaxAbs,
		}
		if res.Compared() {
			e.Unit = res.Want.Unit().Symbol()
			e.Got = res.Got.Values()
			e.Want = res.Want.Values()
		}
		if res.Err != nil {
			e.Err = res.Err.Error()
		}
		out = append(out, e)
	}
	return out
}
