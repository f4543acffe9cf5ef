package icsd

import (
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/csd.report/internal/quadrature"
	"github.com/banshee-data/csd.report/internal/units"
)

// SplineEstimator represents the density as a natural cubic spline through
// one unknown value per electrode, spanning the electrode range, with
// cylindrical sources of radius diam/2. Column k of the forward matrix is
// the potential of the k-th cardinal spline E_k:
//
//	F_jk = ∫_{z_0}^{z_N} E_k(z)·(g(z_j − z) + κ·g(z_j + z)) / (2σ) dz
//
// CSD returns the node values, one per electrode, whatever NumSteps is;
// Profile samples the continuous estimate at NumSteps depths.
type SplineEstimator struct {
	estimate
	z        []float64
	numSteps int
	f        *mat.Dense
}

// NewSpline fits the spline estimator.
func NewSpline(in Input) (*SplineEstimator, error) {
	p, err := in.prepare(MethodSpline)
	if err != nil {
		return nil, err
	}
	u, err := p.outputUnit(2, units.AmperePerCubicMetre)
	if err != nil {
		return nil, err
	}

	n := len(p.z)
	basis := make([]func(float64) float64, n)
	for k := range basis {
		unit := make([]float64, n)
		unit[k] = 1
		var nc interp.NaturalCubic
		if err := nc.Fit(p.z, unit); err != nil {
			return nil, err
		}
		basis[k] = nc.Predict
	}
	radius := func(z float64) float64 { return p.radius[p.nearest(z)] }

	e := &SplineEstimator{
		estimate: estimate{method: MethodSpline, unit: u, filter: p.filter},
		z:        p.z,
		numSteps: p.numSteps,
		f:        mat.NewDense(n, n, nil),
	}
	lo, hi := p.z[0], p.z[n-1]
	var stats integrals
	for j, zj := range p.z {
		for k := range basis {
			g := p.integrand(zj, radius, basis[k])
			res := quadrature.Piecewise(p.in, g, lo, hi, p.tol, append(p.z[1:n-1:n-1], -zj)...)
			stats.add(res)
			e.f.Set(j, k, res.Value)
		}
	}
	stats.report(&e.estimate)

	if e.csd, err = e.solve(e.f, p.lfp); err != nil {
		return nil, err
	}
	return e, nil
}

// ForwardMatrix returns a copy of F in SI units (V·m³/A).
func (e *SplineEstimator) ForwardMatrix() *mat.Dense {
	return mat.DenseCopyOf(e.f)
}

// Profile returns the spline estimate sampled at NumSteps evenly spaced
// depths from the first to the last electrode, in metres.
func (e *SplineEstimator) Profile() (depth, csd units.Vector, err error) {
	var nc interp.NaturalCubic
	if err := nc.Fit(e.z, e.csd); err != nil {
		return units.Vector{}, units.Vector{}, err
	}
	n := e.numSteps
	z := make([]float64, n)
	c := make([]float64, n)
	lo, hi := e.z[0], e.z[len(e.z)-1]
	for i := range z {
		if n == 1 {
			z[i] = lo
		} else {
			z[i] = lo + (hi-lo)*float64(i)/float64(n-1)
		}
		c[i] = nc.Predict(z[i])
	}
	return units.NewVector(z, units.Metre), units.NewVector(c, e.unit), nil
}
