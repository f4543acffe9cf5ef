package kernels

import (
	"fmt"
	"math"

	"github.com/banshee-data/csd.report/internal/units"
)

// DiskPotential returns the potential at zj on the axis of a circular disk
// of radius R_i with areal current source density C_i:
//
//	φ = C_i/(2σ) · (√((z_j − z_i)² + R_i²) − |z_j − z_i|)
func DiskPotential(zj units.Quantity, opts ...Option) (units.Quantity, error) {
	const op = "disk potential"
	p := resolve(units.AmperePerSquareMetre, opts)
	v, err := p.check(op, zj, units.AmperePerSquareMetre, arg{"z_i", p.position}, arg{"R_i", p.radius})
	if err != nil {
		return units.Quantity{}, err
	}
	zi, r := v[0], v[1]
	if r < 0 {
		return units.Quantity{}, fmt.Errorf("%w: %s: negative radius %v", ErrInvalidParameter, op, p.radius)
	}
	phi := p.density.Value / (2 * p.sigma.Value) * OnAxis(zj.Value-zi, r)
	return units.New(phi, p.density.Unit.Mul(zj.Unit).Div(p.sigma.Unit)), nil
}

// OnAxis returns √(d² + r²) − |d| in the cancellation-free form
// r²/(√(d² + r²) + |d|).
func OnAxis(d, r float64) float64 {
	if r == 0 {
		return 0
	}
	ad := math.Abs(d)
	return r * r / (math.Hypot(d, r) + ad)
}
