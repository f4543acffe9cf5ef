package kernels

import (
	"math"

	"github.com/banshee-data/csd.report/internal/units"
)

// PlanePotential returns the potential at zj of an infinite horizontal plane
// with areal current source density C_i:
//
//	φ = −C_i/(2σ) · |z_j − z_i|
//
// The potential is zero on the plane and diverges with distance, as expected
// for an infinite sheet.
func PlanePotential(zj units.Quantity, opts ...Option) (units.Quantity, error) {
	p := resolve(units.AmperePerSquareMetre, opts)
	v, err := p.check("plane potential", zj, units.AmperePerSquareMetre, arg{"z_i", p.position})
	if err != nil {
		return units.Quantity{}, err
	}
	zi := v[0]
	phi := -p.density.Value / (2 * p.sigma.Value) * math.Abs(zj.Value-zi)
	return units.New(phi, p.density.Unit.Mul(zj.Unit).Div(p.sigma.Unit)), nil
}
