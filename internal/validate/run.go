package validate

import (
	"fmt"

	"github.com/banshee-data/csd.report/internal/diagplot"
	"github.com/banshee-data/csd.report/internal/icsd"
	"github.com/banshee-data/csd.report/internal/kernels"
	"github.com/banshee-data/csd.report/internal/monitoring"
	"github.com/banshee-data/csd.report/internal/quadrature"
	"github.com/banshee-data/csd.report/internal/synth"
	"github.com/banshee-data/csd.report/internal/timeutil"
	"github.com/banshee-data/csd.report/internal/units"
)

// sourceIndices and sourceDensities place the ground truth on the default
// 21-electrode array.
var (
	sourceIndices   = []int{7, 9, 11}
	sourceDensities = []float64{-0.5, 1, -0.5}
)

type settings struct {
	factory    icsd.Factory
	integrator quadrature.Integrator
	tol        quadrature.Tolerance
	figures    *diagplot.FigureWriter
	clock      timeutil.Clock
}

// Option configures Run.
type Option func(*settings)

// WithFactory substitutes the estimator implementation. The default is icsd.New.
func WithFactory(f icsd.Factory) Option {
	return func(s *settings) { s.factory = f }
}

// WithIntegrator sets the quadrature used by both the forward model and
// the estimators.
func WithIntegrator(in quadrature.Integrator, tol quadrature.Tolerance) Option {
	return func(s *settings) {
		s.integrator = in
		s.tol = tol
	}
}

// WithFigures writes one diagnostic figure per scenario, named after it.
func WithFigures(w *diagplot.FigureWriter) Option {
	return func(s *settings) { s.figures = w }
}

// WithClock sets the clock used for run timestamps and scenario durations.
func WithClock(c timeutil.Clock) Option {
	return func(s *settings) { s.clock = c }
}

// Run executes the scenarios in order. A failing scenario is recorded in
// the report and does not stop the run.
func Run(scenarios []Scenario, opts ...Option) *Report {
	s := settings{
		factory:    icsd.New,
		integrator: quadrature.Default(),
		tol:        quadrature.DefaultTolerance,
		clock:      timeutil.RealClock{},
	}
	for _, o := range opts {
		o(&s)
	}

	r := &Report{Started: s.clock.Now()}
	for _, sc := range scenarios {
		start := s.clock.Now()
		res := s.run(sc)
		res.Duration = s.clock.Since(start)
		if res.Err != nil {
			monitoring.Logf("validate: %v", res.Err)
		} else {
			monitoring.Debugf("validate: %s passed in %v", sc.Name, res.Duration)
		}
		r.Results = append(r.Results, res)
	}
	r.Finished = s.clock.Now()
	return r
}

// GroundTruth returns the density vector of the scenario geometry, one
// value per electrode, in its coherent SI unit.
func GroundTruth(g kernels.Geometry, n int) units.Vector {
	c := make([]float64, n)
	for k, i := range sourceIndices {
		if i < n {
			c[i] = sourceDensities[k]
		}
	}
	return units.NewVector(c, g.DensityUnit())
}

func (s settings) run(sc Scenario) Result {
	res := Result{Scenario: sc}
	fail := func(err error) Result {
		res.Err = fmt.Errorf("%s: %w", sc.Name, err)
		return res
	}

	electrodes := synth.DefaultElectrodes()
	z := electrodes.Positions()
	n := electrodes.Len()
	if !sc.Contiguous() && sc.Removed >= n {
		return fail(fmt.Errorf("%w: removed electrode %d of %d", units.ErrIndexOutOfRange, sc.Removed, n))
	}

	geom := sc.Geometry()
	want := GroundTruth(geom, n)
	diam := units.Fill(1, sc.Diameter, units.Metre)
	thick := units.Fill(1, sc.Thickness, units.Metre)
	var sources synth.SourceSet
	switch geom {
	case kernels.GeometryPlane:
		sources = synth.PlaneLayers(z, want)
	case kernels.GeometryDisk:
		sources = synth.DiskLayers(z, want, diam.Scale(0.5))
	default:
		sources = synth.CylinderLayers(z, want, diam.Scale(0.5), thick)
	}

	sigma := units.New(sc.Conductivity, units.SiemensPerMetre)
	sopts := []synth.Option{
		synth.WithConductivity(sigma),
		synth.WithIntegrator(s.integrator, s.tol),
	}
	if s.figures != nil {
		sopts = append(sopts, synth.WithFigure(s.figures.Named(sc.Name)), synth.WithPlot(true))
	}
	trace, err := synth.Synthesize(electrodes, sources, sopts...)
	if err != nil {
		return fail(err)
	}
	for _, w := range trace.Warnings {
		res.Warnings = append(res.Warnings, w)
	}
	res.FigureErr = trace.FigureErr

	in, err := s.input(sc, trace, diam, thick)
	if err != nil {
		return fail(err)
	}
	if !sc.Contiguous() {
		if want, err = want.Without(sc.Removed); err != nil {
			return fail(err)
		}
	}
	res.Want = want

	est, err := s.factory(sc.Method, in)
	if err != nil {
		return fail(err)
	}
	res.Warnings = append(res.Warnings, est.Warnings()...)
	res.Got = est.CSD()

	res.Deviation, res.Err = Compare(sc.Name, res.Got, want, sc.Decimal)
	return res
}

// input expresses the trace and geometry in the scenario profile.
func (s settings) input(sc Scenario, trace synth.Trace, diam, thick units.Vector) (icsd.Input, error) {
	p := sc.Profile
	lfp, err := trace.Potential.In(p.Potential)
	if err != nil {
		return icsd.Input{}, err
	}
	z, err := trace.Electrodes.Positions().In(p.Length)
	if err != nil {
		return icsd.Input{}, err
	}
	sigma, err := trace.Conductivity.In(p.Conductivity)
	if err != nil {
		return icsd.Input{}, err
	}
	// The forward model is homogeneous, so the medium above the array has
	// the same conductivity.
	sigmaTop := sigma
	d, err := diam.In(p.Length)
	if err != nil {
		return icsd.Input{}, err
	}
	h, err := thick.In(p.Length)
	if err != nil {
		return icsd.Input{}, err
	}
	if !sc.Contiguous() {
		if lfp, err = lfp.Without(sc.Removed); err != nil {
			return icsd.Input{}, err
		}
		if z, err = z.Without(sc.Removed); err != nil {
			return icsd.Input{}, err
		}
	}
	return icsd.Input{
		LFP:            lfp,
		CoordElectrode: z,
		Sigma:          sigma,
		SigmaTop:       &sigmaTop,
		Diam:           d,
		H:              h,
		NumSteps:       sc.NumSteps,
		Tol:            s.tol.Abs,
		FilterType:     sc.FilterType,
		FilterOrder:    sc.FilterOrder,
		Integrator:     s.integrator,
	}, nil
}
