package quadrature

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

// AdaptiveLegendre bisects [a, b] until an n-point and a 2n-point
// Gauss–Legendre rule agree on every sub-interval. The 2n-point value is
// returned; the rule difference is the error estimate.
type AdaptiveLegendre struct {
	// Points is n, the order of the coarse rule. Default 10.
	Points int
	// MaxDepth bounds the bisection depth of any branch. Default 30.
	MaxDepth int
	// MaxIntervals bounds the total number of sub-intervals. Default 4096.
	MaxIntervals int
}

type span struct {
	a, b  float64
	depth int
}

func (al AdaptiveLegendre) params() (n, depth, intervals int) {
	n, depth, intervals = al.Points, al.MaxDepth, al.MaxIntervals
	if n <= 0 {
		n = 10
	}
	if depth <= 0 {
		depth = 30
	}
	if intervals <= 0 {
		intervals = 4096
	}
	return n, depth, intervals
}

// Integrate implements Integrator.
func (al AdaptiveLegendre) Integrate(f func(float64) float64, a, b float64, tol Tolerance) Result {
	if a == b {
		return Result{Converged: true, Tolerance: tol}
	}
	if a > b {
		r := al.Integrate(f, b, a, tol)
		r.Value = -r.Value
		return r
	}
	n, maxDepth, maxIntervals := al.params()
	rule := quad.Legendre{}

	// A first 2n-point pass fixes the scale for the relative tolerance.
	whole := quad.Fixed(f, a, b, 2*n, rule, 0)
	target := tol.bound(whole)

	res := Result{Tolerance: tol, Evaluations: 2 * n}
	stack := []span{{a: a, b: b}}
	intervals := 1
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		coarse := quad.Fixed(f, s.a, s.b, n, rule, 0)
		fine := quad.Fixed(f, s.a, s.b, 2*n, rule, 0)
		res.Evaluations += 3 * n
		est := math.Abs(fine - coarse)
		share := target * (s.b - s.a) / (b - a)

		if est <= share || s.depth >= maxDepth || intervals+1 > maxIntervals {
			res.Value += fine
			res.AbsErr += est
			continue
		}
		mid := s.a + (s.b-s.a)/2
		stack = append(stack, span{a: mid, b: s.b, depth: s.depth + 1}, span{a: s.a, b: mid, depth: s.depth + 1})
		intervals++
	}
	res.Converged = res.AbsErr <= target
	return res
}
