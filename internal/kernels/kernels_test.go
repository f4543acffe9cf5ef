package kernels

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/csd.report/internal/quadrature"
	"github.com/banshee-data/csd.report/internal/units"
)

func m(v float64) units.Quantity  { return units.New(v, units.Metre) }
func mm(v float64) units.Quantity { return units.New(v, units.Millimetre) }

// countingIntegrator records calls and can force non-convergence.
type countingIntegrator struct {
	calls    int
	diverges bool
}

func (c *countingIntegrator) Integrate(f func(float64) float64, a, b float64, tol quadrature.Tolerance) quadrature.Result {
	c.calls++
	r := quadrature.AdaptiveLegendre{}.Integrate(f, a, b, tol)
	if c.diverges {
		r.Converged = false
		r.AbsErr = 1
	}
	return r
}

// cylinderClosedForm integrates (√(u²+R²) − |u|) from u=a to u=b analytically.
func cylinderClosedForm(a, b, r float64) float64 {
	prim := func(u float64) float64 {
		s := math.Sqrt(u*u + r*r)
		return 0.5*(u*s+r*r*math.Asinh(u/r)) - math.Copysign(0.5*u*u, u)
	}
	return prim(b) - prim(a)
}

func TestPlanePotential(t *testing.T) {
	phi, err := PlanePotential(m(1e-3))
	require.NoError(t, err)
	assert.InDelta(t, -1e-3/0.6, phi.Value, 1e-18)
	assert.Equal(t, "(A/m^2)*m/(S/m)", phi.Unit.Symbol())
	assert.True(t, phi.Unit.Simplified().Equal(units.Volt))

	t.Run("zero on the source plane", func(t *testing.T) {
		phi, err := PlanePotential(m(2e-4), WithPosition(m(2e-4)))
		require.NoError(t, err)
		assert.Zero(t, phi.Value)
	})

	t.Run("grows without bound", func(t *testing.T) {
		phi, err := PlanePotential(m(1e6))
		require.NoError(t, err)
		assert.Less(t, phi.SI(), -1e6)
	})

	t.Run("mixed length scales are reconciled", func(t *testing.T) {
		ref, err := PlanePotential(m(1e-3), WithPosition(m(2e-4)))
		require.NoError(t, err)
		got, err := PlanePotential(mm(1), WithPosition(m(2e-4)))
		require.NoError(t, err)
		assert.True(t, got.Unit.SameDimension(units.Volt))
		assert.InEpsilon(t, ref.SI(), got.SI(), 1e-12)
	})

	t.Run("explicit density and conductivity", func(t *testing.T) {
		phi, err := PlanePotential(m(1e-4),
			WithDensity(units.New(-0.5, units.AmperePerSquareMetre)),
			WithConductivity(units.New(300, units.MillisiemensPerMetre)))
		require.NoError(t, err)
		assert.InEpsilon(t, 0.5/0.6*1e-4, phi.SI(), 1e-12)
	})
}

func TestDiskPotential(t *testing.T) {
	phi, err := DiskPotential(m(0))
	require.NoError(t, err)
	assert.InDelta(t, 1e-3/0.6, phi.Value, 1e-15)
	assert.True(t, phi.Unit.Simplified().Equal(units.Volt))

	t.Run("far field decays", func(t *testing.T) {
		near, err := DiskPotential(m(1e-4))
		require.NoError(t, err)
		far, err := DiskPotential(m(1))
		require.NoError(t, err)
		assert.Greater(t, near.Value, far.Value)
		// R²/(2|d|) asymptote, free of cancellation.
		assert.InEpsilon(t, 1e-6/2/0.6, far.Value, 1e-5)
	})

	t.Run("zero radius contributes nothing", func(t *testing.T) {
		phi, err := DiskPotential(m(1e-4), WithRadius(m(0)))
		require.NoError(t, err)
		assert.Zero(t, phi.Value)
	})

	t.Run("differences approach the plane kernel as R grows", func(t *testing.T) {
		za, zb := m(1e-4), m(7e-4)
		pa, _ := PlanePotential(za)
		pb, _ := PlanePotential(zb)
		want := pa.Value - pb.Value

		prevErr := math.Inf(1)
		for _, r := range []float64{1e-3, 1e-2, 1e-1, 1} {
			da, err := DiskPotential(za, WithRadius(m(r)))
			require.NoError(t, err)
			db, err := DiskPotential(zb, WithRadius(m(r)))
			require.NoError(t, err)
			e := math.Abs(da.Value - db.Value - want)
			assert.Less(t, e, prevErr, "R=%g", r)
			prevErr = e
		}
		assert.Less(t, prevErr/math.Abs(want), 1e-3)
	})

	t.Run("negative radius rejected", func(t *testing.T) {
		_, err := DiskPotential(m(0), WithRadius(m(-1)))
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})
}

func TestOnAxis(t *testing.T) {
	tests := []struct {
		name string
		d, r float64
		want float64
	}{
		{"on the disk", 0, 1e-3, 1e-3},
		{"zero radius", 5e-4, 0, 0},
		{"moderate distance", 3e-3, 4e-3, 5e-3 - 3e-3},
		{"mirrored distance", -3e-3, 4e-3, 5e-3 - 3e-3},
		// r²/(2|d|) once |d| ≫ r, where the naive difference loses every digit.
		{"far field", 1e3, 1e-3, 1e-6 / 2e3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, OnAxis(tt.d, tt.r), 1e-12*tt.want)
		})
	}
}

func TestCylinderPotential(t *testing.T) {
	phi, res, err := CylinderPotential(m(0.2))
	require.NoError(t, err)
	assert.True(t, res.Converged)
	want := cylinderClosedForm(-0.05-0.2, 0.05-0.2, 1e-3) / 0.6
	assert.InEpsilon(t, want, phi.Value, 1e-10)
	assert.True(t, phi.Unit.SameDimension(units.Volt))
	assert.Equal(t, 1.0, phi.Unit.Scale())

	t.Run("field point inside the slab", func(t *testing.T) {
		phi, res, err := CylinderPotential(m(1e-5),
			WithThickness(m(1e-4)), WithDensity(units.New(2, units.AmperePerCubicMetre)))
		require.NoError(t, err)
		assert.True(t, res.Converged)
		want := 2 * cylinderClosedForm(-5e-5-1e-5, 5e-5-1e-5, 1e-3) / 0.6
		assert.InEpsilon(t, want, phi.Value, 1e-10)
	})

	t.Run("unit derived for non-SI scalings", func(t *testing.T) {
		si, _, err := CylinderPotential(m(3e-4),
			WithPosition(m(1e-4)), WithRadius(m(1e-3)), WithThickness(m(1e-4)))
		require.NoError(t, err)
		scaled, _, err := CylinderPotential(mm(0.3),
			WithPosition(mm(0.1)), WithRadius(mm(1)), WithThickness(mm(0.1)),
			WithConductivity(units.New(300, units.MillisiemensPerMetre)))
		require.NoError(t, err)
		assert.True(t, scaled.Unit.SameDimension(units.Volt))
		assert.InDelta(t, 1e-3, scaled.Unit.Scale(), 1e-18)
		assert.InEpsilon(t, si.SI(), scaled.SI(), 1e-9)
	})

	t.Run("thin cylinder converges to the disk", func(t *testing.T) {
		const areal = 1.0
		zj := m(5e-4)
		disk, err := DiskPotential(zj, WithDensity(units.New(areal, units.AmperePerSquareMetre)))
		require.NoError(t, err)

		prevErr := math.Inf(1)
		for _, h := range []float64{1e-4, 1e-5, 1e-6, 1e-7} {
			cyl, res, err := CylinderPotential(zj,
				WithThickness(m(h)), WithDensity(units.New(areal/h, units.AmperePerCubicMetre)))
			require.NoError(t, err)
			require.True(t, res.Converged)
			e := math.Abs(cyl.SI() - disk.SI())
			assert.LessOrEqual(t, e, prevErr, "h=%g", h)
			prevErr = e
		}
		assert.InEpsilon(t, disk.SI(), disk.SI()+prevErr, 1e-8)
	})

	t.Run("unconverged quadrature is reported, not fatal", func(t *testing.T) {
		spy := &countingIntegrator{diverges: true}
		src := Source{
			Geometry:  GeometryCylinder,
			Position:  m(0),
			Density:   units.New(1, units.AmperePerCubicMetre),
			Radius:    m(1e-3),
			Thickness: m(1e-4),
		}
		c, err := src.Potential(m(0), WithIntegrator(spy, quadrature.DefaultTolerance))
		require.NoError(t, err)
		require.NotNil(t, c.Warning)
		assert.Contains(t, c.Warning.Error(), "cylinder at")
		assert.Greater(t, spy.calls, 0)
	})
}

func TestDimensionalRejection(t *testing.T) {
	sigmaAsPosition := units.New(1, units.SiemensPerMetre)

	t.Run("plane", func(t *testing.T) {
		_, err := PlanePotential(sigmaAsPosition, WithPosition(m(0)))
		require.ErrorIs(t, err, units.ErrUnitMismatch)
		var ume *units.UnitMismatchError
		require.True(t, errors.As(err, &ume))
		assert.Equal(t, "z_j", ume.Args[0].Name)
		assert.Equal(t, "z_i", ume.Args[1].Name)
	})

	t.Run("disk radius", func(t *testing.T) {
		_, err := DiskPotential(m(0), WithRadius(units.New(1, units.Volt)))
		assert.ErrorIs(t, err, units.ErrUnitMismatch)
	})

	t.Run("cylinder performs no integration", func(t *testing.T) {
		spy := &countingIntegrator{}
		_, _, err := CylinderPotential(sigmaAsPosition, WithIntegrator(spy, quadrature.DefaultTolerance))
		assert.ErrorIs(t, err, units.ErrUnitMismatch)
		assert.Zero(t, spy.calls)
	})

	t.Run("field point in volts", func(t *testing.T) {
		_, err := PlanePotential(units.New(1, units.Volt), WithPosition(units.New(0, units.Volt)))
		assert.ErrorIs(t, err, units.ErrUnitMismatch)
	})

	t.Run("areal density given to a cylinder", func(t *testing.T) {
		_, _, err := CylinderPotential(m(0), WithDensity(units.New(1, units.AmperePerSquareMetre)))
		assert.ErrorIs(t, err, units.ErrUnitMismatch)
	})

	t.Run("conductivity with wrong dimension", func(t *testing.T) {
		_, err := DiskPotential(m(0), WithConductivity(units.New(0.3, units.Siemens)))
		assert.ErrorIs(t, err, units.ErrUnitMismatch)
	})

	t.Run("non-positive conductivity", func(t *testing.T) {
		_, err := PlanePotential(m(0), WithConductivity(units.New(0, units.SiemensPerMetre)))
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})
}

func TestSourceDispatch(t *testing.T) {
	tests := []struct {
		name string
		src  Source
	}{
		{"plane", Source{Geometry: GeometryPlane, Position: m(1e-4), Density: units.New(1, units.AmperePerSquareMetre)}},
		{"disk", Source{Geometry: GeometryDisk, Position: m(1e-4), Density: units.New(1, units.AmperePerSquareMetre), Radius: m(1e-3)}},
		{"cylinder", Source{Geometry: GeometryCylinder, Position: m(1e-4), Density: units.New(1, units.AmperePerCubicMetre), Radius: m(1e-3), Thickness: m(1e-4)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.src.Potential(m(3e-4))
			require.NoError(t, err)
			assert.Nil(t, c.Warning)
			assert.True(t, c.Phi.Unit.SameDimension(units.Volt))
			assert.Equal(t, tt.name, tt.src.Geometry.String())
		})
	}

	_, err := Source{Geometry: Geometry(9)}.Potential(m(0))
	assert.ErrorIs(t, err, ErrInvalidParameter)
	assert.True(t, GeometryCylinder.DensityUnit().Equal(units.AmperePerCubicMetre))
	assert.True(t, GeometryDisk.DensityUnit().Equal(units.AmperePerSquareMetre))
}
