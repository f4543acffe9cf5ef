// Package units provides dimension-checked physical quantities for the
// forward model. Dimensions are tracked in SI base units through
// gonum.org/v1/gonum/unit; each Unit additionally carries a display symbol
// and a scale so that millivolts stay millivolts until a caller asks for
// something else.
package units

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/unit"
)

// Unit describes a physical unit: a printable symbol, the SI value of one
// unit, and its SI dimensions.
type Unit struct {
	symbol string
	scale  float64
	dims   unit.Dimensions
}

// Registered units. Scales are the SI value of one unit.
var (
	Dimensionless = define("1", 1, unit.Dimless(1))

	Metre      = define("m", 1, unit.Metre)
	Centimetre = define("cm", unit.Centi, unit.Metre)
	Millimetre = define("mm", unit.Milli, unit.Metre)
	Micrometre = define("um", unit.Micro, unit.Metre)

	Volt      = define("V", 1, unit.Volt)
	Millivolt = define("mV", unit.Milli, unit.Volt)
	Microvolt = define("uV", unit.Micro, unit.Volt)

	Ampere  = define("A", 1, unit.Ampere)
	Siemens = define("S", 1, unit.Siemens)
	Ohm     = define("Ohm", 1, unit.Ohm)

	SiemensPerMetre      = define("S/m", 1, unit.Siemens.Unit().Div(unit.Metre))
	MillisiemensPerMetre = define("mS/m", unit.Milli, unit.Siemens.Unit().Div(unit.Metre))
	MicrosiemensPerMetre = define("uS/m", unit.Micro, unit.Siemens.Unit().Div(unit.Metre))

	AmperePerSquareMetre           = define("A/m^2", 1, unit.Ampere.Unit().Div(unit.Metre).Div(unit.Metre))
	MilliamperePerSquareMetre      = define("mA/m^2", unit.Milli, unit.Ampere.Unit().Div(unit.Metre).Div(unit.Metre))
	MicroamperePerSquareMillimetre = define("uA/mm^2", unit.Micro/(unit.Milli*unit.Milli), unit.Ampere.Unit().Div(unit.Metre).Div(unit.Metre))

	AmperePerCubicMetre = define("A/m^3", 1, unit.Ampere.Unit().Div(unit.Metre).Div(unit.Metre).Div(unit.Metre))
)

// ValidUnits contains all registered unit symbols in registration order.
var ValidUnits []string

var registry = map[string]Unit{}

// define registers a named unit whose value is scale times the SI unit of base.
func define(symbol string, scale float64, base unit.Uniter) Unit {
	u := Unit{
		symbol: symbol,
		scale:  scale * base.Unit().Value(),
		dims:   base.Unit().Dimensions(),
	}
	if _, dup := registry[symbol]; dup {
		panic("units: duplicate symbol " + symbol)
	}
	registry[symbol] = u
	ValidUnits = append(ValidUnits, symbol)
	return u
}

// IsValid checks if the given symbol names a registered unit.
func IsValid(symbol string) bool {
	_, ok := registry[symbol]
	return ok
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}

// Lookup returns the registered unit for symbol.
func Lookup(symbol string) (Unit, error) {
	u, ok := registry[symbol]
	if !ok {
		return Unit{}, fmt.Errorf("unknown unit %q (valid: %s)", symbol, GetValidUnitsString())
	}
	return u, nil
}

// Convert converts value expressed in the unit named from into the unit named to.
func Convert(value float64, from, to string) (float64, error) {
	f, err := Lookup(from)
	if err != nil {
		return 0, err
	}
	t, err := Lookup(to)
	if err != nil {
		return 0, err
	}
	q, err := New(value, f).In(t)
	if err != nil {
		return 0, err
	}
	return q.Value, nil
}

// Unit implements gonum's unit.Uniter, returning one of u expressed in SI.
func (u Unit) Unit() *unit.Unit {
	d := u.dims
	if d == nil {
		d = unit.Dimensions{}
	}
	return unit.New(u.Scale(), d)
}

// Symbol returns the printable symbol.
func (u Unit) Symbol() string {
	if u.symbol == "" {
		return Dimensionless.symbol
	}
	return u.symbol
}

func (u Unit) String() string { return u.Symbol() }

// Scale returns the SI value of one u. The zero Unit is dimensionless with scale 1.
func (u Unit) Scale() float64 {
	if u.scale == 0 {
		return 1
	}
	return u.scale
}

// Dimensions returns a copy of the SI dimensions of u.
func (u Unit) Dimensions() unit.Dimensions {
	return u.Unit().Dimensions()
}

// SameDimension reports whether u and o measure the same physical dimension.
func (u Unit) SameDimension(o Unit) bool {
	return unit.DimensionsMatch(u, o)
}

// Equal reports whether u and o are the same unit: same symbol, scale and
// dimensions.
func (u Unit) Equal(o Unit) bool {
	return u.Symbol() == o.Symbol() && u.Scale() == o.Scale() && u.SameDimension(o)
}

// Mul returns the product unit u·o.
func (u Unit) Mul(o Unit) Unit {
	si := u.Unit().Mul(o)
	return Unit{
		symbol: operand(u.Symbol(), "/") + "*" + operand(o.Symbol(), "/"),
		scale:  si.Value(),
		dims:   si.Dimensions(),
	}
}

// Div returns the quotient unit u/o.
func (u Unit) Div(o Unit) Unit {
	si := u.Unit().Div(o)
	return Unit{
		symbol: operand(u.Symbol(), "") + "/" + operand(o.Symbol(), "*/"),
		scale:  si.Value(),
		dims:   si.Dimensions(),
	}
}

// Pow returns u raised to a positive integer power.
func (u Unit) Pow(n int) Unit {
	if n < 1 {
		panic("units: non-positive power")
	}
	si := u.Unit()
	for i := 1; i < n; i++ {
		si.Mul(u)
	}
	sym := u.Symbol()
	if n > 1 {
		sym = operand(sym, "*/^") + fmt.Sprintf("^%d", n)
	}
	return Unit{symbol: sym, scale: si.Value(), dims: si.Dimensions()}
}

// Simplified returns the coherent SI unit with the dimensions of u. A
// registered symbol is used when one exists (A/m^2 rather than "A m^-2").
func (u Unit) Simplified() Unit {
	for _, sym := range ValidUnits {
		r := registry[sym]
		if r.scale == 1 && r.SameDimension(u) {
			return r
		}
	}
	dims := u.Dimensions()
	return Unit{symbol: dims.String(), scale: 1, dims: dims}
}

// factor returns the multiplier that converts a value in u into a value in to.
func (u Unit) factor(to Unit) float64 {
	return u.Scale() / to.Scale()
}

// operand parenthesises compound symbols so that derived symbols stay
// unambiguous. Only operators outside existing parentheses count.
func operand(sym, ops string) string {
	depth := 0
	for _, r := range sym {
		switch {
		case r == '(':
			depth++
		case r == ')':
			depth--
		case depth == 0 && strings.ContainsRune(ops, r):
			return "(" + sym + ")"
		}
	}
	return sym
}
