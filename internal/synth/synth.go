package synth

import (
	"fmt"

	"github.com/banshee-data/csd.report/internal/kernels"
	"github.com/banshee-data/csd.report/internal/monitoring"
	"github.com/banshee-data/csd.report/internal/quadrature"
	"github.com/banshee-data/csd.report/internal/units"
)

// Trace is a synthetic LFP: one potential per electrode together with the
// sources that produced it. GroundTruth is the source density vector,
// passed through unmodified.
type Trace struct {
	Electrodes   Electrodes
	Potential    units.Vector
	GroundTruth  units.Vector
	Sources      SourceSet
	Conductivity units.Quantity

	// Warnings lists cylinder integrals that missed their tolerance.
	Warnings []*quadrature.ToleranceWarning

	// FigureErr is the diagnostic figure error, if rendering was enabled
	// and failed. It never affects Potential.
	FigureErr error
}

// FigureRenderer draws a computed trace. Implementations must not modify it.
type FigureRenderer interface {
	Render(t Trace) error
}

// FigureRendererFunc adapts a function to FigureRenderer.
type FigureRendererFunc func(t Trace) error

func (f FigureRendererFunc) Render(t Trace) error { return f(t) }

type settings struct {
	sigma      units.Quantity
	integrator quadrature.Integrator
	tol        quadrature.Tolerance
	renderer   FigureRenderer
	plot       bool
}

// Option configures Synthesize.
type Option func(*settings)

// WithConductivity sets the medium conductivity. Default 0.3 S/m.
func WithConductivity(sigma units.Quantity) Option {
	return func(s *settings) { s.sigma = sigma }
}

// WithIntegrator sets the quadrature used for cylinder sources.
func WithIntegrator(in quadrature.Integrator, tol quadrature.Tolerance) Option {
	return func(s *settings) {
		s.integrator = in
		s.tol = tol
	}
}

// WithFigure installs a renderer for the diagnostic figure. Nothing is
// drawn unless WithPlot(true) is also given.
func WithFigure(r FigureRenderer) Option {
	return func(s *settings) { s.renderer = r }
}

// WithPlot enables or disables the diagnostic figure.
func WithPlot(enabled bool) Option {
	return func(s *settings) { s.plot = enabled }
}

// Synthesize returns trace[j] = Σ_i φ_i(z_j), expressed in volts.
// All inputs are validated before any kernel is evaluated.
func Synthesize(electrodes Electrodes, sources SourceSet, opts ...Option) (Trace, error) {
	s := settings{
		sigma:      units.New(0.3, units.SiemensPerMetre),
		integrator: quadrature.Default(),
		tol:        quadrature.DefaultTolerance,
	}
	for _, o := range opts {
		o(&s)
	}

	if electrodes.Len() == 0 {
		return Trace{}, fmt.Errorf("%w: electrodes", ErrEmptyArray)
	}
	if err := sources.Validate(); err != nil {
		return Trace{}, err
	}
	if err := units.AssertDimension("synthesize", s.sigma.Named("sigma"), units.SiemensPerMetre); err != nil {
		return Trace{}, err
	}
	if !s.sigma.Positive() {
		return Trace{}, fmt.Errorf("%w: sigma must be positive, got %v", kernels.ErrInvalidParameter, s.sigma)
	}

	kopts := []kernels.Option{
		kernels.WithConductivity(s.sigma),
		kernels.WithIntegrator(s.integrator, s.tol),
	}
	phi := make([]float64, electrodes.Len())
	var warnings []*quadrature.ToleranceWarning
	for _, src := range sources.Sources() {
		for j := range phi {
			c, err := src.Potential(electrodes.At(j), kopts...)
			if err != nil {
				return Trace{}, fmt.Errorf("electrode %d: %w", j, err)
			}
			v, err := c.Phi.In(units.Volt)
			if err != nil {
				return Trace{}, err
			}
			phi[j] += v.Value
			if c.Warning != nil {
				warnings = append(warnings, c.Warning)
			}
		}
	}
	for _, w := range warnings {
		monitoring.Logf("synth: %v", w)
	}

	trace := Trace{
		Electrodes:   electrodes,
		Potential:    units.NewVector(phi, units.Volt),
		GroundTruth:  sources.Densities,
		Sources:      sources,
		Conductivity: s.sigma,
		Warnings:     warnings,
	}

	if s.plot {
		if s.renderer == nil {
			monitoring.Logf("synth: plot requested but no figure renderer configured")
		} else if err := s.renderer.Render(trace); err != nil {
			monitoring.Logf("synth: %s figure: %v", sources.Geometry, err)
			trace.FigureErr = err
		}
	}
	return trace, nil
}
