// Package synth computes synthetic local field potentials by superposing
// kernel contributions of idealized sources over an electrode array.
package synth

import (
	"errors"
	"fmt"

	"github.com/banshee-data/csd.report/internal/units"
)

var (
	// ErrEmptyArray indicates an electrode array or source set with no elements.
	ErrEmptyArray = errors.New("synth: empty array")

	// ErrNotMonotonic indicates electrode positions that decrease somewhere.
	ErrNotMonotonic = errors.New("synth: electrode positions not non-decreasing")

	// ErrShapeMismatch indicates per-source vectors of different lengths.
	ErrShapeMismatch = errors.New("synth: shape mismatch")
)

// Electrodes is an ordered array of field-point positions along the depth
// axis.
type Electrodes struct {
	positions units.Vector
}

// NewElectrodes validates z as a non-empty, non-decreasing length vector.
func NewElectrodes(z units.Vector) (Electrodes, error) {
	if z.Len() == 0 {
		return Electrodes{}, fmt.Errorf("%w: electrodes", ErrEmptyArray)
	}
	if err := units.AssertDimension("electrodes", z.Named("z_j"), units.Metre); err != nil {
		return Electrodes{}, err
	}
	v := z.Values()
	for j := 1; j < len(v); j++ {
		if v[j] < v[j-1] {
			return Electrodes{}, fmt.Errorf("%w: z[%d]=%g < z[%d]=%g", ErrNotMonotonic, j, v[j], j-1, v[j-1])
		}
	}
	return Electrodes{positions: z}, nil
}

// LinearElectrodes returns n electrodes at 0, spacing, 2·spacing, ...
func LinearElectrodes(n int, spacing units.Quantity) (Electrodes, error) {
	if spacing.Value < 0 {
		return Electrodes{}, fmt.Errorf("%w: negative spacing %v", ErrNotMonotonic, spacing)
	}
	return NewElectrodes(units.Arange(n, spacing.Value, spacing.Unit))
}

// Positions returns the electrode positions.
func (e Electrodes) Positions() units.Vector { return e.positions }

// Len returns the number of electrodes.
func (e Electrodes) Len() int { return e.positions.Len() }

// At returns the position of electrode j.
func (e Electrodes) At(j int) units.Quantity { return e.positions.At(j) }

// Without returns the array with electrode idx removed. The result is still
// non-decreasing.
func (e Electrodes) Without(idx int) (Electrodes, error) {
	z, err := e.positions.Without(idx)
	if err != nil {
		return Electrodes{}, err
	}
	return NewElectrodes(z)
}

// In re-expresses the positions in u.
func (e Electrodes) In(u units.Unit) (Electrodes, error) {
	z, err := e.positions.In(u)
	if err != nil {
		return Electrodes{}, err
	}
	return Electrodes{positions: z}, nil
}
