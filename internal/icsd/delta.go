package icsd

import (
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/csd.report/internal/kernels"
	"github.com/banshee-data/csd.report/internal/units"
)

// DeltaEstimator models each electrode as the centre of an infinitely thin
// disk of radius diam/2 and inverts the disk forward matrix
//
//	F_ji = (g(z_j − z_i) + κ·g(z_j + z_i)) / (2σ),  g(d) = √(d² + R_i²) − |d|
//
// where κ = (σ − σ_top)/(σ + σ_top) mirrors the sources in the boundary at
// z = 0. The result is an areal density.
type DeltaEstimator struct {
	estimate
	f *mat.Dense
}

// NewDelta fits the delta estimator.
func NewDelta(in Input) (*DeltaEstimator, error) {
	p, err := in.prepare(MethodDelta)
	if err != nil {
		return nil, err
	}
	u, err := p.outputUnit(1, units.AmperePerSquareMetre)
	if err != nil {
		return nil, err
	}

	n := len(p.z)
	kappa := p.kappa()
	f := mat.NewDense(n, n, nil)
	for j, zj := range p.z {
		for i, zi := range p.z {
			r := p.radius[i]
			f.Set(j, i, (kernels.OnAxis(zj-zi, r)+kappa*kernels.OnAxis(zj+zi, r))/(2*p.sigma))
		}
	}

	e := &DeltaEstimator{estimate: estimate{method: MethodDelta, unit: u, filter: p.filter}, f: f}
	if e.csd, err = e.solve(f, p.lfp); err != nil {
		return nil, err
	}
	return e, nil
}

// ForwardMatrix returns a copy of F in SI units (V·m²/A).
func (e *DeltaEstimator) ForwardMatrix() *mat.Dense {
	return mat.DenseCopyOf(e.f)
}
