package kernels

import (
	"fmt"

	"github.com/banshee-data/csd.report/internal/quadrature"
	"github.com/banshee-data/csd.report/internal/units"
)

// CylinderPotential returns the potential at zj on the axis of a cylinder
// of radius R_i and thickness h_i centred at z_i with volumetric current
// source density C_i:
//
//	φ = C_i · ∫_{z_i−h_i/2}^{z_i+h_i/2} (√((z − z_j)² + R_i²) − |z − z_j|)/(2σ) dz
//
// The integral has no convenient closed form in this formulation and is
// evaluated numerically on stripped magnitudes; the unit [C]·[z]²/[σ] is
// reattached afterwards. The quadrature result is returned so that callers
// can inspect the achieved error; a non-converged integral is not an error.
func CylinderPotential(zj units.Quantity, opts ...Option) (units.Quantity, quadrature.Result, error) {
	const op = "cylinder potential"
	p := resolve(units.AmperePerCubicMetre, opts)
	v, err := p.check(op, zj, units.AmperePerCubicMetre,
		arg{"z_i", p.position}, arg{"R_i", p.radius}, arg{"h_i", p.thickness})
	if err != nil {
		return units.Quantity{}, quadrature.Result{}, err
	}
	zi, r, h := v[0], v[1], v[2]
	if r < 0 || h < 0 {
		return units.Quantity{}, quadrature.Result{},
			fmt.Errorf("%w: %s: negative radius or thickness (R_i=%v, h_i=%v)", ErrInvalidParameter, op, p.radius, p.thickness)
	}

	sigma, z := p.sigma.Value, zj.Value
	integrand := func(s float64) float64 {
		return OnAxis(s-z, r) / (2 * sigma)
	}
	res := quadrature.Piecewise(p.integrator, integrand, zi-h/2, zi+h/2, p.tol, z)

	u := p.density.Unit.Mul(zj.Unit.Pow(2)).Div(p.sigma.Unit)
	return units.New(p.density.Value*res.Value, u), res, nil
}
