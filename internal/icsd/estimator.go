package icsd

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/csd.report/internal/monitoring"
	"github.com/banshee-data/csd.report/internal/units"
)

// Estimator is a fitted inverse CSD estimate.
type Estimator interface {
	// Method returns the variant that produced the estimate.
	Method() Method
	// CSD returns the raw estimate, one value per electrode, in the
	// coherent SI density unit of the method.
	CSD() units.Vector
	// FilteredCSD returns CSD smoothed with the configured spatial filter.
	FilteredCSD() units.Vector
	// Warnings lists non-fatal numerical problems met while fitting, such
	// as unconverged integrals or an ill-conditioned forward matrix.
	Warnings() []error
}

// Factory builds an Estimator. New is the reference Factory.
type Factory func(m Method, in Input) (Estimator, error)

// New fits the estimator m to in.
func New(m Method, in Input) (Estimator, error) {
	var (
		e   Estimator
		err error
	)
	switch m {
	case MethodStandard:
		e, err = NewStandard(in)
	case MethodDelta:
		e, err = NewDelta(in)
	case MethodStep:
		e, err = NewStep(in)
	case MethodSpline:
		e, err = NewSpline(in)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, m)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.Prefix(), err)
	}
	return e, nil
}

// estimate is the state shared by every estimator.
type estimate struct {
	method   Method
	csd      []float64
	unit     units.Unit
	filter   filter
	warnings []error
}

func (e *estimate) Method() Method { return e.method }

func (e *estimate) CSD() units.Vector { return units.NewVector(e.csd, e.unit) }

func (e *estimate) FilteredCSD() units.Vector {
	return units.NewVector(e.filter.apply(e.csd), e.unit)
}

func (e *estimate) Warnings() []error { return append([]error(nil), e.warnings...) }

func (e *estimate) warn(err error) {
	monitoring.Logf("icsd %s: %v", e.method, err)
	e.warnings = append(e.warnings, err)
}

// solve returns x with f·x = phi. An ill-conditioned f is a warning, not an
// error; a singular one is an error.
func (e *estimate) solve(f *mat.Dense, phi []float64) ([]float64, error) {
	var x mat.VecDense
	err := x.SolveVec(f, mat.NewVecDense(len(phi), append([]float64(nil), phi...)))
	var cond mat.Condition
	switch {
	case err == nil:
	case errors.As(err, &cond) && !math.IsInf(float64(cond), 1):
		e.warn(fmt.Errorf("forward matrix: %w", err))
	default:
		return nil, fmt.Errorf("solve forward matrix: %w", err)
	}
	return x.RawVector().Data, nil
}
