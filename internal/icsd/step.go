package icsd

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/csd.report/internal/kernels"
	"github.com/banshee-data/csd.report/internal/quadrature"
	"github.com/banshee-data/csd.report/internal/units"
)

// StepEstimator models each electrode as the centre of a cylinder of
// radius diam/2 and thickness h with constant volumetric density, and
// inverts
//
//	F_ji = ∫_{z_i−h_i/2}^{z_i+h_i/2} (g(z_j − z) + κ·g(z_j + z)) / (2σ) dz
//
// The result is a volumetric density.
type StepEstimator struct {
	estimate
	f *mat.Dense
}

// NewStep fits the step estimator.
func NewStep(in Input) (*StepEstimator, error) {
	p, err := in.prepare(MethodStep)
	if err != nil {
		return nil, err
	}
	u, err := p.outputUnit(2, units.AmperePerCubicMetre)
	if err != nil {
		return nil, err
	}

	e := &StepEstimator{estimate: estimate{method: MethodStep, unit: u, filter: p.filter}}
	n := len(p.z)
	e.f = mat.NewDense(n, n, nil)
	var stats integrals
	for j, zj := range p.z {
		for i, zi := range p.z {
			g := p.integrand(zj, constant(p.radius[i]), nil)
			res := quadrature.Piecewise(p.in, g, zi-p.h[i]/2, zi+p.h[i]/2, p.tol, zj, -zj)
			stats.add(res)
			e.f.Set(j, i, res.Value)
		}
	}
	stats.report(&e.estimate)

	if e.csd, err = e.solve(e.f, p.lfp); err != nil {
		return nil, err
	}
	return e, nil
}

// ForwardMatrix returns a copy of F in SI units (V·m³/A).
func (e *StepEstimator) ForwardMatrix() *mat.Dense {
	return mat.DenseCopyOf(e.f)
}

// integrand returns z ↦ w(z)·(g(zj − z) + κ·g(zj + z))/(2σ) for a source
// layer of radius r(z) at depth z. A nil weight means w ≡ 1.
func (p prepared) integrand(zj float64, r, w func(float64) float64) func(float64) float64 {
	kappa := p.kappa()
	return func(z float64) float64 {
		rz := r(z)
		v := (kernels.OnAxis(zj-z, rz) + kappa*kernels.OnAxis(zj+z, rz)) / (2 * p.sigma)
		if w != nil {
			v *= w(z)
		}
		return v
	}
}

func constant(x float64) func(float64) float64 {
	return func(float64) float64 { return x }
}

// nearest returns the index of the electrode closest to z.
func (p prepared) nearest(z float64) int {
	lo, hi := 0, len(p.z)-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if p.z[mid] <= z {
			lo = mid
		} else {
			hi = mid
		}
	}
	if z-p.z[lo] <= p.z[hi]-z {
		return lo
	}
	return hi
}

// integrals summarises quadrature results for one forward matrix.
type integrals struct {
	count, unconverged int
	worst              quadrature.Result
}

func (s *integrals) add(r quadrature.Result) {
	s.count++
	if !r.Converged {
		s.unconverged++
		if r.AbsErr > s.worst.AbsErr {
			s.worst = r
		}
	}
}

func (s integrals) report(e *estimate) {
	if s.unconverged == 0 {
		return
	}
	w := s.worst.Warning()
	w.Op = fmt.Sprintf("%d of %d forward integrals", s.unconverged, s.count)
	e.warn(w)
}
