package icsd

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Filter types accepted in Input.FilterType.
const (
	FilterGaussian   = "gaussian"
	FilterBoxcar     = "boxcar"
	FilterHamming    = "hamming"
	FilterTriangular = "triangular"
	FilterIdentity   = "identity"
)

// filter is a normalised, odd-or-even length smoothing kernel.
type filter struct {
	kind    string
	weights []float64
}

func newFilter(kind string, order []float64) (filter, error) {
	if kind == FilterIdentity {
		return filter{kind: kind, weights: []float64{1}}, nil
	}
	if len(order) == 0 || order[0] < 1 || order[0] != math.Trunc(order[0]) {
		return filter{}, fmt.Errorf("%w: %s filter needs a positive integer length, got %v", ErrInvalidInput, kind, order)
	}
	m := int(order[0])
	w := make([]float64, m)
	switch kind {
	case FilterGaussian:
		std := 1.0
		if len(order) > 1 {
			std = order[1]
		}
		if std <= 0 {
			return filter{}, fmt.Errorf("%w: gaussian filter std must be positive, got %g", ErrInvalidInput, std)
		}
		c := float64(m-1) / 2
		for k := range w {
			d := (float64(k) - c) / std
			w[k] = math.Exp(-d * d / 2)
		}
	case FilterBoxcar:
		for k := range w {
			w[k] = 1
		}
	case FilterHamming:
		if m == 1 {
			w[0] = 1
			break
		}
		for k := range w {
			w[k] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(k)/float64(m-1))
		}
	case FilterTriangular:
		c := float64(m-1) / 2
		half := float64(m+1) / 2
		if m%2 == 0 {
			half = float64(m) / 2
		}
		for k := range w {
			w[k] = 1 - math.Abs(float64(k)-c)/half
		}
	default:
		return filter{}, fmt.Errorf("%w: unknown filter type %q", ErrInvalidInput, kind)
	}
	floats.Scale(1/floats.Sum(w), w)
	return filter{kind: kind, weights: w}, nil
}

// apply convolves x with the kernel, reflecting the signal at both ends
// (d c b a | a b c d | d c b a).
func (f filter) apply(x []float64) []float64 {
	n := len(x)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	m := len(f.weights)
	origin := m / 2
	for j := range out {
		var s float64
		for k, w := range f.weights {
			s += w * x[reflect(j+origin-k, n)]
		}
		out[j] = s
	}
	return out
}

func reflect(i, n int) int {
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}
