package validate

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/csd.report/internal/units"
)

// ErrComparison is wrapped by every ComparisonFailure.
var ErrComparison = errors.New("validate: recovered density differs from ground truth")

// ComparisonFailure describes a recovered density that does not match
// ground truth to the required number of decimals.
type ComparisonFailure struct {
	Scenario string
	Decimal  int

	// GotUnit and WantUnit differ when the failure is a unit mismatch; the
	// magnitudes are then not compared.
	GotUnit, WantUnit units.Unit

	MaxAbsDev float64
	// MaxRelDev is taken over indices with a non-zero ground truth.
	MaxRelDev float64
	// Indices lists the positions outside tolerance. NaN counts as outside.
	Indices []int
}

func (e *ComparisonFailure) Error() string {
	if !e.GotUnit.Equal(e.WantUnit) {
		return fmt.Sprintf("%s: recovered unit %s, want %s", e.Scenario, e.GotUnit, e.WantUnit)
	}
	return fmt.Sprintf("%s: %d of the values differ at %d decimals (max abs %.3g, max rel %.3g) at indices %v",
		e.Scenario, len(e.Indices), e.Decimal, e.MaxAbsDev, e.MaxRelDev, e.Indices)
}

func (e *ComparisonFailure) Unwrap() error { return ErrComparison }

// Deviation holds the worst absolute and relative differences of two
// equal-length arrays.
type Deviation struct {
	MaxAbs, MaxRel float64
}

// Tolerance is the absolute bound 1.5·10^−decimal.
func Tolerance(decimal int) float64 {
	return 1.5 * math.Pow10(-decimal)
}

// Compare checks got against want: units must be equal and every
// |got−want| below Tolerance(decimal). It returns the deviation either way
// and a *ComparisonFailure on mismatch.
func Compare(name string, got, want units.Vector, decimal int) (Deviation, error) {
	if !got.Unit().Equal(want.Unit()) {
		return Deviation{}, &ComparisonFailure{Scenario: name, Decimal: decimal, GotUnit: got.Unit(), WantUnit: want.Unit()}
	}
	if got.Len() != want.Len() {
		return Deviation{}, fmt.Errorf("%s: %w: recovered %d values, want %d", name, units.ErrLengthMismatch, got.Len(), want.Len())
	}

	g, w := got.Values(), want.Values()
	tol := Tolerance(decimal)
	var (
		dev Deviation
		bad []int
	)
	for i := range g {
		d := math.Abs(g[i] - w[i])
		if !(d < tol) {
			bad = append(bad, i)
		}
		if math.IsNaN(d) {
			dev.MaxAbs = math.NaN()
			continue
		}
		if d > dev.MaxAbs {
			dev.MaxAbs = d
		}
		if w[i] != 0 && d/math.Abs(w[i]) > dev.MaxRel {
			dev.MaxRel = d / math.Abs(w[i])
		}
	}
	if len(bad) == 0 {
		return dev, nil
	}
	return dev, &ComparisonFailure{
		Scenario:  name,
		Decimal:   decimal,
		GotUnit:   got.Unit(),
		WantUnit:  want.Unit(),
		MaxAbsDev: dev.MaxAbs,
		MaxRelDev: dev.MaxRel,
		Indices:   bad,
	}
}
