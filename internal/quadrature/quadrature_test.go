package quadrature

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegrators(t *testing.T) {
	cases := []struct {
		name string
		f    func(float64) float64
		a, b float64
		want float64
	}{
		{"square", func(x float64) float64 { return x * x }, 0, 1, 1.0 / 3},
		{"sine", math.Sin, 0, math.Pi, 2},
		{"exp", math.Exp, -1, 2, math.Exp(2) - math.Exp(-1)},
		{"reversed bounds", func(x float64) float64 { return x * x }, 1, 0, -1.0 / 3},
		{"empty interval", math.Cos, 0.5, 0.5, 0},
		{"disk integrand", func(z float64) float64 {
			return (math.Sqrt(z*z+1e-6) - math.Abs(z)) / 0.6
		}, 1e-4, 3e-4, diskIntegral(3e-4) - diskIntegral(1e-4)},
	}

	integrators := map[string]Integrator{
		GaussLegendre: AdaptiveLegendre{},
		RombergName:   Romberg{},
	}

	for iname, in := range integrators {
		for _, tc := range cases {
			t.Run(iname+"/"+tc.name, func(t *testing.T) {
				res := in.Integrate(tc.f, tc.a, tc.b, DefaultTolerance)
				assert.True(t, res.Converged, "abs err %g", res.AbsErr)
				assert.Nil(t, res.Warning())
				assert.InDelta(t, tc.want, res.Value, 1e-11)
			})
		}
	}
}

// diskIntegral is the antiderivative of (sqrt(z²+R²) - z)/(2σ) for z > 0
// with R = 1e-3 and σ = 0.3.
func diskIntegral(z float64) float64 {
	const r2 = 1e-6
	s := math.Sqrt(z*z + r2)
	return (0.5*(z*s+r2*math.Asinh(z/1e-3)) - 0.5*z*z) / 0.6
}

func TestPiecewiseSplitsAtKinks(t *testing.T) {
	f := func(x float64) float64 { return math.Abs(x - 0.3) }
	want := 0.3*0.3/2 + 0.7*0.7/2

	res := Piecewise(AdaptiveLegendre{}, f, 0, 1, DefaultTolerance, 0.3, 5, -1)
	require.True(t, res.Converged)
	assert.InDelta(t, want, res.Value, 1e-14)

	rev := Piecewise(AdaptiveLegendre{}, f, 1, 0, DefaultTolerance, 0.3)
	assert.InDelta(t, -want, rev.Value, 1e-14)

	empty := Piecewise(AdaptiveLegendre{}, f, 2, 2, DefaultTolerance)
	assert.True(t, empty.Converged)
	assert.Zero(t, empty.Value)
}

func TestBudgetExhaustionReturnsEstimate(t *testing.T) {
	tol := Tolerance{Abs: 1e-15}
	res := AdaptiveLegendre{MaxIntervals: 1}.Integrate(math.Sqrt, 0, 1, tol)

	assert.False(t, res.Converged)
	assert.InDelta(t, 2.0/3, res.Value, 1e-3, "value must still be usable")
	assert.Greater(t, res.AbsErr, tol.Abs)

	w := res.Warning()
	require.NotNil(t, w)
	assert.Contains(t, w.Error(), "exceeds tolerance")

	rb := Romberg{MaxLevel: 3}.Integrate(math.Sqrt, 0, 1, tol)
	assert.False(t, rb.Converged)
	assert.NotNil(t, rb.Warning())
}

func TestResultAdd(t *testing.T) {
	a := Result{Value: 1, AbsErr: 1e-13, Evaluations: 10, Converged: true}
	b := Result{Value: 2, AbsErr: 1e-6, Evaluations: 5, Converged: false}
	sum := a.Add(b)
	assert.Equal(t, 3.0, sum.Value)
	assert.Equal(t, 15, sum.Evaluations)
	assert.False(t, sum.Converged)
	assert.InDelta(t, 1e-6, sum.AbsErr, 1e-12)
}

func TestByName(t *testing.T) {
	in, err := ByName("")
	require.NoError(t, err)
	assert.IsType(t, AdaptiveLegendre{}, in)

	in, err = ByName(RombergName)
	require.NoError(t, err)
	assert.IsType(t, Romberg{}, in)

	_, err = ByName("monte-carlo")
	assert.Error(t, err)
	assert.IsType(t, AdaptiveLegendre{}, Default())
}
