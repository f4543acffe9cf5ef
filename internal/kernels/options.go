package kernels

import (
	"errors"
	"fmt"

	"github.com/banshee-data/csd.report/internal/quadrature"
	"github.com/banshee-data/csd.report/internal/units"
)

// ErrInvalidParameter indicates a physically meaningless parameter, such as
// a non-positive conductivity.
var ErrInvalidParameter = errors.New("kernels: invalid parameter")

// Option overrides one kernel parameter.
type Option func(*params)

type params struct {
	position   units.Quantity
	density    units.Quantity
	radius     units.Quantity
	thickness  units.Quantity
	sigma      units.Quantity
	integrator quadrature.Integrator
	tol        quadrature.Tolerance
}

// WithPosition sets the source position z_i.
func WithPosition(z units.Quantity) Option {
	return func(p *params) { p.position = z }
}

// WithDensity sets the current source density C_i: areal for planes and
// disks, volumetric for cylinders.
func WithDensity(c units.Quantity) Option {
	return func(p *params) { p.density = c }
}

// WithRadius sets the disk or cylinder radius R_i.
func WithRadius(r units.Quantity) Option {
	return func(p *params) { p.radius = r }
}

// WithThickness sets the cylinder thickness h_i.
func WithThickness(h units.Quantity) Option {
	return func(p *params) { p.thickness = h }
}

// WithConductivity sets the medium conductivity σ.
func WithConductivity(sigma units.Quantity) Option {
	return func(p *params) { p.sigma = sigma }
}

// WithIntegrator sets the quadrature strategy and tolerance used by the
// cylinder kernel.
func WithIntegrator(in quadrature.Integrator, tol quadrature.Tolerance) Option {
	return func(p *params) {
		p.integrator = in
		p.tol = tol
	}
}

func defaults(density units.Unit) params {
	return params{
		position:   units.New(0, units.Metre),
		density:    units.New(1, density),
		radius:     units.New(1e-3, units.Metre),
		thickness:  units.New(0.1, units.Metre),
		sigma:      units.New(0.3, units.SiemensPerMetre),
		integrator: quadrature.Default(),
		tol:        quadrature.DefaultTolerance,
	}
}

func resolve(density units.Unit, opts []Option) params {
	p := defaults(density)
	for _, o := range opts {
		o(&p)
	}
	return p
}

// arg is a positional kernel argument with its name for error reporting.
type arg struct {
	name string
	q    units.Quantity
}

// check validates dimensions and converts the positional arguments into the
// field point's unit. It returns the stripped magnitudes in the order given.
func (p params) check(op string, zj units.Quantity, wantDensity units.Unit, args ...arg) ([]float64, error) {
	named := []units.Named{zj.Named("z_j")}
	for _, a := range args {
		named = append(named, a.q.Named(a.name))
	}
	if err := units.AssertSameDimension(op, named...); err != nil {
		return nil, err
	}
	if err := units.AssertDimension(op, zj.Named("z_j"), units.Metre); err != nil {
		return nil, err
	}
	if err := units.AssertDimension(op, p.density.Named("C_i"), wantDensity); err != nil {
		return nil, err
	}
	if err := units.AssertDimension(op, p.sigma.Named("sigma"), units.SiemensPerMetre); err != nil {
		return nil, err
	}
	if !p.sigma.Positive() {
		return nil, fmt.Errorf("%w: %s: sigma must be positive, got %v", ErrInvalidParameter, op, p.sigma)
	}

	out := make([]float64, len(args))
	for i, a := range args {
		q, err := a.q.In(zj.Unit)
		if err != nil {
			return nil, err
		}
		out[i] = q.Value
	}
	return out, nil
}
