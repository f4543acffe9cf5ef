package units

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Vector is an ordered array of values sharing one unit. Vectors are
// immutable: every operation returns a new Vector.
type Vector struct {
	values []float64
	unit   Unit
}

// NewVector copies values into a Vector expressed in u.
func NewVector(values []float64, u Unit) Vector {
	return Vector{values: append([]float64(nil), values...), unit: u}
}

// Zeros returns an n-length zero vector in u.
func Zeros(n int, u Unit) Vector {
	return Vector{values: make([]float64, n), unit: u}
}

// Arange returns n values 0, step, 2·step, ... in u.
func Arange(n int, step float64, u Unit) Vector {
	v := make([]float64, n)
	for i := range v {
		v[i] = float64(i) * step
	}
	return Vector{values: v, unit: u}
}

// Fill returns an n-length vector with every element set to x.
func Fill(n int, x float64, u Unit) Vector {
	v := make([]float64, n)
	for i := range v {
		v[i] = x
	}
	return Vector{values: v, unit: u}
}

// Len returns the number of elements.
func (v Vector) Len() int { return len(v.values) }

// Unit returns the unit shared by all elements.
func (v Vector) Unit() Unit { return v.unit }

// Values returns a copy of the raw magnitudes.
func (v Vector) Values() []float64 {
	return append([]float64(nil), v.values...)
}

// At returns element i as a Quantity.
func (v Vector) At(i int) Quantity {
	return Quantity{Value: v.values[i], Unit: v.unit}
}

// Named tags v's unit with an argument name for dimension checks.
func (v Vector) Named(name string) Named {
	return Arg(name, v.unit)
}

// In converts every element into u.
func (v Vector) In(u Unit) (Vector, error) {
	if err := AssertSameDimension("conversion", Arg("vector", v.unit), Arg("target", u)); err != nil {
		return Vector{}, err
	}
	out := v.Values()
	floats.Scale(v.unit.factor(u), out)
	return Vector{values: out, unit: u}, nil
}

// SI returns the magnitudes in coherent SI units.
func (v Vector) SI() []float64 {
	out := v.Values()
	floats.Scale(v.unit.Scale(), out)
	return out
}

// Simplified expresses v in the coherent SI unit of its dimension.
func (v Vector) Simplified() Vector {
	return Vector{values: v.SI(), unit: v.unit.Simplified()}
}

// Scale multiplies every magnitude by a dimensionless factor.
func (v Vector) Scale(f float64) Vector {
	out := v.Values()
	floats.Scale(f, out)
	return Vector{values: out, unit: v.unit}
}

// Add returns the elementwise sum in v's unit, converting o first.
func (v Vector) Add(o Vector) (Vector, error) {
	if v.Len() != o.Len() {
		return Vector{}, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, v.Len(), o.Len())
	}
	oc, err := o.In(v.unit)
	if err != nil {
		return Vector{}, err
	}
	out := v.Values()
	floats.Add(out, oc.values)
	return Vector{values: out, unit: v.unit}, nil
}

// Without returns a copy of v with element idx removed.
func (v Vector) Without(idx int) (Vector, error) {
	if idx < 0 || idx >= v.Len() {
		return Vector{}, fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, idx, v.Len())
	}
	out := make([]float64, 0, v.Len()-1)
	out = append(out, v.values[:idx]...)
	out = append(out, v.values[idx+1:]...)
	return Vector{values: out, unit: v.unit}, nil
}

// Broadcast returns v unchanged when it has n elements, or an n-length copy
// of its single element when it has one.
func (v Vector) Broadcast(n int) (Vector, error) {
	switch v.Len() {
	case n:
		return v, nil
	case 1:
		return Fill(n, v.values[0], v.unit), nil
	}
	return Vector{}, fmt.Errorf("%w: cannot broadcast %d to %d", ErrLengthMismatch, v.Len(), n)
}

// Min and Max return the extreme magnitudes; both are zero for an empty vector.
func (v Vector) Min() float64 {
	if v.Len() == 0 {
		return 0
	}
	return floats.Min(v.values)
}

func (v Vector) Max() float64 {
	if v.Len() == 0 {
		return 0
	}
	return floats.Max(v.values)
}

func (v Vector) String() string {
	parts := make([]string, len(v.values))
	for i, x := range v.values {
		parts[i] = fmt.Sprintf("%g", x)
	}
	return fmt.Sprintf("[%s] %s", strings.Join(parts, " "), v.unit.Symbol())
}
