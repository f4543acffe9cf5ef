package quadrature

import (
	"math"

	"gonum.org/v1/gonum/integrate"
)

// Romberg samples f on 2^k+1 equally spaced points for growing k and
// accepts once two consecutive Romberg extrapolations agree. It suits smooth
// integrands; split kinks off with Piecewise.
type Romberg struct {
	// MaxLevel bounds k. Default 16 (65537 samples).
	MaxLevel int
}

// Integrate implements Integrator.
func (r Romberg) Integrate(f func(float64) float64, a, b float64, tol Tolerance) Result {
	if a == b {
		return Result{Converged: true, Tolerance: tol}
	}
	if a > b {
		res := r.Integrate(f, b, a, tol)
		res.Value = -res.Value
		return res
	}
	maxLevel := r.MaxLevel
	if maxLevel < 2 {
		maxLevel = 16
	}

	res := Result{Tolerance: tol, AbsErr: math.Inf(1)}
	prev := math.NaN()
	for k := 1; k <= maxLevel; k++ {
		n := 1<<uint(k) + 1
		dx := (b - a) / float64(n-1)
		samples := make([]float64, n)
		for i := range samples {
			samples[i] = f(a + float64(i)*dx)
		}
		res.Evaluations += n
		cur := integrate.Romberg(samples, dx)
		res.Value = cur
		if !math.IsNaN(prev) {
			res.AbsErr = math.Abs(cur - prev)
			if res.AbsErr <= tol.bound(cur) {
				res.Converged = true
				return res
			}
		}
		prev = cur
	}
	return res
}
