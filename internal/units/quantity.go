package units

import (
	"fmt"
	"math"
)

// Quantity is a scalar value tagged with a unit.
type Quantity struct {
	Value float64
	Unit  Unit
}

// New returns v expressed in u.
func New(v float64, u Unit) Quantity {
	return Quantity{Value: v, Unit: u}
}

// Named tags q's unit with an argument name for dimension checks.
func (q Quantity) Named(name string) Named {
	return Arg(name, q.Unit)
}

// In converts q into u. Converting between dimensions fails with a
// *UnitMismatchError.
func (q Quantity) In(u Unit) (Quantity, error) {
	if err := AssertSameDimension("conversion", Arg("value", q.Unit), Arg("target", u)); err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: q.Value * q.Unit.factor(u), Unit: u}, nil
}

// SI returns the magnitude of q in coherent SI units.
func (q Quantity) SI() float64 {
	return q.Value * q.Unit.Scale()
}

// Simplified expresses q in the coherent SI unit of its dimension.
func (q Quantity) Simplified() Quantity {
	return Quantity{Value: q.SI(), Unit: q.Unit.Simplified()}
}

// Add returns q+o in q's unit, converting o first.
func (q Quantity) Add(o Quantity) (Quantity, error) {
	oc, err := o.In(q.Unit)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: q.Value + oc.Value, Unit: q.Unit}, nil
}

// Sub returns q-o in q's unit, converting o first.
func (q Quantity) Sub(o Quantity) (Quantity, error) {
	return q.Add(o.Scale(-1))
}

// Mul returns q·o with a derived unit.
func (q Quantity) Mul(o Quantity) Quantity {
	return Quantity{Value: q.Value * o.Value, Unit: q.Unit.Mul(o.Unit)}
}

// Div returns q/o with a derived unit.
func (q Quantity) Div(o Quantity) Quantity {
	return Quantity{Value: q.Value / o.Value, Unit: q.Unit.Div(o.Unit)}
}

// Scale multiplies the magnitude by a dimensionless factor.
func (q Quantity) Scale(f float64) Quantity {
	return Quantity{Value: q.Value * f, Unit: q.Unit}
}

// Abs returns |q|.
func (q Quantity) Abs() Quantity {
	return Quantity{Value: math.Abs(q.Value), Unit: q.Unit}
}

// Positive reports whether q is strictly greater than zero.
func (q Quantity) Positive() bool {
	return q.Value > 0
}

func (q Quantity) String() string {
	return fmt.Sprintf("%g %s", q.Value, q.Unit.Symbol())
}
