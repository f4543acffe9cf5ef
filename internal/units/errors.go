package units

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnitMismatch is wrapped by every UnitMismatchError.
	ErrUnitMismatch = errors.New("units: mismatched dimensions")

	// ErrLengthMismatch indicates vectors of different length in an elementwise operation.
	ErrLengthMismatch = errors.New("units: vector length mismatch")

	// ErrIndexOutOfRange indicates an index outside a vector.
	ErrIndexOutOfRange = errors.New("units: index out of range")
)

// Named pairs a unit with the argument name it was supplied as, for error
// reporting.
type Named struct {
	Name string
	Unit Unit
}

// Arg is shorthand for Named{name, u}.
func Arg(name string, u Unit) Named {
	return Named{Name: name, Unit: u}
}

// UnitMismatchError reports quantities whose dimensions disagree. Args[0]
// is the reference argument, the rest are the offenders.
type UnitMismatchError struct {
	Op   string
	Args []Named
}

func (e *UnitMismatchError) Error() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = fmt.Sprintf("%s (%s)", a.Name, a.Unit.Symbol())
	}
	if e.Op == "" {
		return fmt.Sprintf("%v: %s", ErrUnitMismatch, strings.Join(parts, " vs "))
	}
	return fmt.Sprintf("%v in %s: %s", ErrUnitMismatch, e.Op, strings.Join(parts, " vs "))
}

func (e *UnitMismatchError) Unwrap() error {
	return ErrUnitMismatch
}

// AssertSameDimension returns a *UnitMismatchError when any argument differs
// in dimension from the first one. Scale differences (mm vs m) are not
// errors.
func AssertSameDimension(op string, args ...Named) error {
	if len(args) < 2 {
		return nil
	}
	var bad []Named
	for _, a := range args[1:] {
		if !a.Unit.SameDimension(args[0].Unit) {
			bad = append(bad, a)
		}
	}
	if len(bad) == 0 {
		return nil
	}
	return &UnitMismatchError{Op: op, Args: append([]Named{args[0]}, bad...)}
}

// AssertDimension checks that arg has the dimension of want.
func AssertDimension(op string, arg Named, want Unit) error {
	if arg.Unit.SameDimension(want) {
		return nil
	}
	return &UnitMismatchError{Op: op, Args: []Named{arg, {Name: "expected", Unit: want}}}
}
