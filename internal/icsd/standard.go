package icsd

import (
	"math"

	"github.com/banshee-data/csd.report/internal/units"
)

// StandardEstimator is the second spatial difference of the potential:
//
//	C_j = −σ · (∂φ/∂z|_(j,j+1) − ∂φ/∂z|_(j−1,j))
//
// which is exact for stacked infinite planes at the electrode depths and
// needs no assumption of uniform spacing. The result is an areal density.
type StandardEstimator struct {
	estimate
}

// NewStandard fits the standard estimator. With VakninEl the array is
// padded by one virtual electrode at each end repeating the end potential;
// without it the two end estimates are NaN.
func NewStandard(in Input) (*StandardEstimator, error) {
	p, err := in.prepare(MethodStandard)
	if err != nil {
		return nil, err
	}
	u, err := p.outputUnit(1, units.AmperePerSquareMetre)
	if err != nil {
		return nil, err
	}

	n := len(p.z)
	slope := func(a, b int) float64 {
		return (p.lfp[b] - p.lfp[a]) / (p.z[b] - p.z[a])
	}
	csd := make([]float64, n)
	for j := range csd {
		var left, right float64
		switch {
		case (j == 0 || j == n-1) && !p.vaknin:
			csd[j] = math.NaN()
			continue
		case j == 0:
			right = slope(0, 1)
		case j == n-1:
			left = slope(n-2, n-1)
		default:
			left, right = slope(j-1, j), slope(j, j+1)
		}
		csd[j] = -p.sigma * (right - left)
	}

	return &StandardEstimator{estimate{
		method: MethodStandard,
		csd:    csd,
		unit:   u,
		filter: p.filter,
	}}, nil
}
