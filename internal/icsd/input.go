// Package icsd holds reference inverse current-source-density estimators.
// Each estimator recovers one density value per electrode from a laminar
// LFP profile; the validator consumes them only through Estimator and
// Factory, so other implementations can be substituted.
//
// All arithmetic happens on SI magnitudes. Inputs may use any registered
// scaling (mV, mm, mS/m ...) and are converted once on entry; outputs are
// coherent SI densities whose unit is derived from the input units.
package icsd

import (
	"errors"
	"fmt"

	"github.com/banshee-data/csd.report/internal/quadrature"
	"github.com/banshee-data/csd.report/internal/units"
)

var (
	// ErrInvalidInput indicates an unusable option value.
	ErrInvalidInput = errors.New("icsd: invalid input")

	// ErrUnknownMethod is returned by New for an unrecognised method.
	ErrUnknownMethod = errors.New("icsd: unknown method")
)

// Method names an estimator variant.
type Method string

const (
	MethodStandard Method = "standard"
	MethodDelta    Method = "delta"
	MethodStep     Method = "step"
	MethodSpline   Method = "spline"
)

// Methods lists every variant in the order scenarios are built.
var Methods = []Method{MethodStandard, MethodDelta, MethodStep, MethodSpline}

// Prefix is the scenario name prefix of the method, e.g. "DeltaiCSD".
func (m Method) Prefix() string {
	switch m {
	case MethodStandard:
		return "StandardCSD"
	case MethodDelta:
		return "DeltaiCSD"
	case MethodStep:
		return "StepiCSD"
	case MethodSpline:
		return "SplineiCSD"
	}
	return string(m)
}

// ParseMethod accepts a method name or its scenario prefix.
func ParseMethod(s string) (Method, error) {
	for _, m := range Methods {
		if s == string(m) || s == m.Prefix() {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Defaults for options left unset.
var (
	DefaultDiam        = units.New(500, units.Micrometre)
	DefaultFilterType  = "gaussian"
	DefaultFilterOrder = []float64{3, 1}
	DefaultNumSteps    = 200
)

// Input carries the options recognised by the estimators. Options a method
// does not use are ignored.
type Input struct {
	// LFP is the potential at each electrode.
	LFP units.Vector
	// CoordElectrode is the electrode depth, strictly increasing.
	CoordElectrode units.Vector
	// Sigma is the conductivity of the medium.
	Sigma units.Quantity
	// SigmaTop is the conductivity above the array (z < 0). Nil means Sigma.
	SigmaTop *units.Quantity
	// Diam is the source diameter; a single value applies to every source.
	// Empty means DefaultDiam.
	Diam units.Vector
	// H is the source thickness for the step method; a single value applies
	// to every source. Empty means the smallest electrode spacing.
	H units.Vector
	// NumSteps is the number of points of SplineEstimator.Profile. It does
	// not change CSD, which always returns one node value per electrode so
	// that every method can be compared index by index with ground truth.
	NumSteps int
	// Tol is the absolute quadrature tolerance in SI units. Zero means
	// quadrature.DefaultTolerance.
	Tol float64
	// FilterType is one of gaussian, boxcar, hamming, triangular, identity.
	FilterType string
	// FilterOrder parameterises the filter: kernel length, then the
	// standard deviation in samples for gaussian.
	FilterOrder []float64
	// VakninEl pads the ends for the standard method. Nil means true.
	VakninEl *bool

	// Integrator overrides the quadrature strategy for step and spline.
	Integrator quadrature.Integrator
}

// prepared is an Input reduced to validated SI magnitudes.
type prepared struct {
	lfp      []float64
	z        []float64
	sigma    float64
	sigmaTop float64
	radius   []float64
	h        []float64
	numSteps int
	filter   filter
	vaknin   bool
	in       quadrature.Integrator
	tol      quadrature.Tolerance

	// lfpUnit, zUnit and sigmaUnit are the caller's units, used to derive
	// the output unit.
	lfpUnit, zUnit, sigmaUnit units.Unit
}

func (in Input) prepare(m Method) (prepared, error) {
	op := string(m) + " estimator"
	n := in.LFP.Len()
	if n < 2 {
		return prepared{}, fmt.Errorf("%w: %s needs at least 2 electrodes, got %d", ErrInvalidInput, op, n)
	}
	if in.CoordElectrode.Len() != n {
		return prepared{}, fmt.Errorf("%w: %d potentials but %d electrode coordinates", units.ErrLengthMismatch, n, in.CoordElectrode.Len())
	}
	if err := units.AssertDimension(op, in.LFP.Named("lfp"), units.Volt); err != nil {
		return prepared{}, err
	}
	if err := units.AssertDimension(op, in.CoordElectrode.Named("coord_electrode"), units.Metre); err != nil {
		return prepared{}, err
	}

	p := prepared{
		lfp:       in.LFP.SI(),
		z:         in.CoordElectrode.SI(),
		vaknin:    in.VakninEl == nil || *in.VakninEl,
		numSteps:  in.NumSteps,
		in:        in.Integrator,
		tol:       quadrature.DefaultTolerance,
		lfpUnit:   in.LFP.Unit(),
		zUnit:     in.CoordElectrode.Unit(),
		sigmaUnit: in.Sigma.Unit,
	}
	for j := 1; j < n; j++ {
		if !(p.z[j] > p.z[j-1]) {
			return prepared{}, fmt.Errorf("%w: coord_electrode must be strictly increasing (z[%d]=%g, z[%d]=%g)",
				ErrInvalidInput, j-1, p.z[j-1], j, p.z[j])
		}
	}

	var err error
	if p.sigma, err = conductivity(op, "sigma", in.Sigma); err != nil {
		return prepared{}, err
	}
	p.sigmaTop = p.sigma
	if in.SigmaTop != nil {
		if p.sigmaTop, err = conductivity(op, "sigma_top", *in.SigmaTop); err != nil {
			return prepared{}, err
		}
	}

	diam := in.Diam
	if diam.Len() == 0 {
		diam = units.NewVector([]float64{DefaultDiam.Value}, DefaultDiam.Unit)
	}
	if p.radius, err = perSource(op, "diam", diam, n); err != nil {
		return prepared{}, err
	}
	for i := range p.radius {
		p.radius[i] /= 2
	}

	if in.H.Len() == 0 {
		p.h = make([]float64, n)
		minStep := p.z[1] - p.z[0]
		for j := 2; j < n; j++ {
			minStep = min(minStep, p.z[j]-p.z[j-1])
		}
		for i := range p.h {
			p.h[i] = minStep
		}
	} else if p.h, err = perSource(op, "h", in.H, n); err != nil {
		return prepared{}, err
	}

	if p.numSteps <= 0 {
		p.numSteps = DefaultNumSteps
	}
	if in.Tol < 0 {
		return prepared{}, fmt.Errorf("%w: negative tol %g", ErrInvalidInput, in.Tol)
	}
	if in.Tol > 0 {
		p.tol.Abs = in.Tol
	}
	if p.in == nil {
		p.in = quadrature.Default()
	}

	ftype, forder := in.FilterType, in.FilterOrder
	if ftype == "" {
		ftype = DefaultFilterType
		if forder == nil {
			forder = DefaultFilterOrder
		}
	}
	if p.filter, err = newFilter(ftype, forder); err != nil {
		return prepared{}, err
	}
	return p, nil
}

func conductivity(op, name string, q units.Quantity) (float64, error) {
	if err := units.AssertDimension(op, q.Named(name), units.SiemensPerMetre); err != nil {
		return 0, err
	}
	if !q.Positive() {
		return 0, fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidInput, name, q)
	}
	return q.SI(), nil
}

// perSource broadcasts a length option to n SI values.
func perSource(op, name string, v units.Vector, n int) ([]float64, error) {
	if err := units.AssertDimension(op, v.Named(name), units.Metre); err != nil {
		return nil, err
	}
	b, err := v.Broadcast(n)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	out := b.SI()
	for i, x := range out {
		if x <= 0 {
			return nil, fmt.Errorf("%w: %s[%d] must be positive, got %g", ErrInvalidInput, name, i, x)
		}
	}
	return out, nil
}

// kappa is the image-source weight of the conductivity step at z = 0.
func (p prepared) kappa() float64 {
	return (p.sigma - p.sigmaTop) / (p.sigma + p.sigmaTop)
}

// outputUnit derives the density unit σ·[φ]/[z]^k of a k-th spatial
// derivative and checks it against want.
func (p prepared) outputUnit(k int, want units.Unit) (units.Unit, error) {
	u := p.sigmaUnit.Mul(p.lfpUnit).Div(p.zUnit.Pow(k)).Simplified()
	if err := units.AssertDimension("csd unit", units.Arg("derived", u), want); err != nil {
		return units.Unit{}, err
	}
	return u, nil
}
