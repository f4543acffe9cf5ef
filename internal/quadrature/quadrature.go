// Package quadrature integrates scalar functions over finite intervals
// behind a narrow interface, so that callers stay independent of the
// integration strategy. Every strategy returns its value together with the
// achieved error estimate; not meeting the requested tolerance is reported,
// not fatal.
package quadrature

import (
	"fmt"
	"math"
	"slices"
)

// Tolerance is the target accuracy: an estimate is accepted when its error
// is at most max(Abs, Rel·|value|).
type Tolerance struct {
	Abs float64
	Rel float64
}

// DefaultTolerance is tight enough that quadrature error is negligible next to
// six-decimal comparisons of recovered densities.
var DefaultTolerance = Tolerance{Abs: 1e-12, Rel: 1e-10}

func (t Tolerance) bound(value float64) float64 {
	return math.Max(t.Abs, t.Rel*math.Abs(value))
}

// Result is an integral estimate with its achieved error.
type Result struct {
	Value float64
	// AbsErr is the estimated absolute error of Value.
	AbsErr float64
	// Evaluations counts integrand calls.
	Evaluations int
	// Converged is false when the iteration budget ran out before AbsErr
	// met the tolerance.
	Converged bool
	Tolerance Tolerance
}

// Warning returns a *ToleranceWarning when the result did not converge,
// nil otherwise.
func (r Result) Warning() *ToleranceWarning {
	if r.Converged {
		return nil
	}
	return &ToleranceWarning{AbsErr: r.AbsErr, Tolerance: r.Tolerance, Value: r.Value}
}

// Add combines the results of integrating adjacent sub-intervals.
func (r Result) Add(o Result) Result {
	return Result{
		Value:       r.Value + o.Value,
		AbsErr:      r.AbsErr + o.AbsErr,
		Evaluations: r.Evaluations + o.Evaluations,
		Converged:   r.Converged && o.Converged,
		Tolerance:   r.Tolerance,
	}
}

// Integrator integrates f over [a, b].
type Integrator interface {
	Integrate(f func(float64) float64, a, b float64, tol Tolerance) Result
}

// ToleranceWarning is the non-fatal annotation attached to results whose
// achieved error exceeds the requested tolerance.
type ToleranceWarning struct {
	Op        string
	Value     float64
	AbsErr    float64
	Tolerance Tolerance
}

func (w *ToleranceWarning) Error() string {
	op := w.Op
	if op == "" {
		op = "quadrature"
	}
	return fmt.Sprintf("%s: achieved error %.3g exceeds tolerance (abs %.3g, rel %.3g)",
		op, w.AbsErr, w.Tolerance.Abs, w.Tolerance.Rel)
}

// Piecewise integrates f over [a, b] after splitting at the breakpoints that
// fall strictly inside the interval. Use it where f has kinks.
func Piecewise(in Integrator, f func(float64) float64, a, b float64, tol Tolerance, breaks ...float64) Result {
	if a == b {
		return Result{Converged: true, Tolerance: tol}
	}
	sign := 1.0
	if a > b {
		a, b = b, a
		sign = -1
	}
	edges := []float64{a}
	sorted := slices.Clone(breaks)
	slices.Sort(sorted)
	for _, x := range sorted {
		if x > a && x < b && x > edges[len(edges)-1] {
			edges = append(edges, x)
		}
	}
	edges = append(edges, b)

	// Each piece gets a share of the absolute budget proportional to its width.
	res := Result{Converged: true, Tolerance: tol}
	for i := 0; i+1 < len(edges); i++ {
		w := (edges[i+1] - edges[i]) / (b - a)
		part := in.Integrate(f, edges[i], edges[i+1], Tolerance{Abs: tol.Abs * w, Rel: tol.Rel})
		res = res.Add(part)
	}
	res.Value *= sign
	return res
}
