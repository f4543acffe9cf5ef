package synth

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/csd.report/internal/kernels"
	"github.com/banshee-data/csd.report/internal/testutil"
	"github.com/banshee-data/csd.report/internal/units"
)

func metres(v ...float64) units.Vector { return units.NewVector(v, units.Metre) }

func TestNewElectrodes(t *testing.T) {
	tests := []struct {
		name    string
		z       units.Vector
		wantErr error
	}{
		{"linear", units.Arange(5, 1e-4, units.Metre), nil},
		{"repeated position", metres(0, 1e-4, 1e-4, 2e-4), nil},
		{"decreasing", metres(0, 2e-4, 1e-4), ErrNotMonotonic},
		{"empty", metres(), ErrEmptyArray},
		{"not a length", units.NewVector([]float64{0, 1}, units.Volt), units.ErrUnitMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewElectrodes(tt.z)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.z.Len(), e.Len())
		})
	}
}

func TestElectrodesWithout(t *testing.T) {
	e := DefaultElectrodes()
	sub, err := e.Without(5)
	require.NoError(t, err)
	assert.Equal(t, 20, sub.Len())
	assert.InDelta(t, 6e-4, sub.At(5).Value, 1e-18)

	_, err = e.Without(21)
	assert.ErrorIs(t, err, units.ErrIndexOutOfRange)
}

func TestSynthesizePlanes(t *testing.T) {
	trace, err := LFPOfPlanes()
	require.NoError(t, err)
	require.Equal(t, 21, trace.Potential.Len())
	assert.True(t, trace.Potential.Unit().Equal(units.Volt))

	// φ_j = Σ −C_i/(2σ)|z_j − z_i|
	want := make([]float64, 21)
	for j := range want {
		zj := float64(j) * 1e-4
		for i, zi := range defaultSourceZ {
			want[j] += -defaultDensities[i] / 0.6 * math.Abs(zj-zi)
		}
	}
	testutil.AssertAlmostEqual(t, trace.Potential.Values(), want, 15)

	// Balanced sources give zero potential outside the source stack.
	assert.InDelta(t, 0, trace.Potential.At(0).Value, 1e-15)
	assert.InDelta(t, 0, trace.Potential.At(20).Value, 1e-15)
}

func TestGroundTruthPassThrough(t *testing.T) {
	src := DefaultDiskLayers()
	trace, err := Synthesize(DefaultElectrodes(), src)
	require.NoError(t, err)
	assert.Equal(t, src.Densities.Values(), trace.GroundTruth.Values())
	assert.True(t, trace.GroundTruth.Unit().Equal(units.AmperePerSquareMetre))
	assert.Empty(t, trace.Warnings)
	assert.NoError(t, trace.FigureErr)
}

func TestSuperposition(t *testing.T) {
	electrodes := DefaultElectrodes()
	r := units.Fill(1, 1e-3, units.Metre)
	h := units.Fill(1, 1e-4, units.Metre)

	for _, geom := range []kernels.Geometry{kernels.GeometryPlane, kernels.GeometryDisk, kernels.GeometryCylinder} {
		t.Run(geom.String(), func(t *testing.T) {
			layers := func(z, c []float64) SourceSet {
				switch geom {
				case kernels.GeometryPlane:
					return PlaneLayers(metres(z...), units.NewVector(c, units.AmperePerSquareMetre))
				case kernels.GeometryDisk:
					return DiskLayers(metres(z...), units.NewVector(c, units.AmperePerSquareMetre), r)
				default:
					return CylinderLayers(metres(z...), units.NewVector(c, units.AmperePerCubicMetre), r, h)
				}
			}

			a, err := Synthesize(electrodes, layers([]float64{5e-4}, []float64{0.7}))
			require.NoError(t, err)
			b, err := Synthesize(electrodes, layers([]float64{1.3e-3}, []float64{-0.2}))
			require.NoError(t, err)
			both, err := Synthesize(electrodes, layers([]float64{5e-4, 1.3e-3}, []float64{0.7, -0.2}))
			require.NoError(t, err)

			sum, err := a.Potential.Add(b.Potential)
			require.NoError(t, err)
			testutil.AssertAlmostEqual(t, both.Potential.Values(), sum.Values(), 14)

			rev, err := Synthesize(electrodes, layers([]float64{5e-4, 1.3e-3}, []float64{0.7, -0.2}).Reversed())
			require.NoError(t, err)
			testutil.AssertAlmostEqual(t, rev.Potential.Values(), both.Potential.Values(), 14)
		})
	}
}

func TestSynthesizeMixedScales(t *testing.T) {
	ref, err := LFPOfCylinders()
	require.NoError(t, err)

	mm, err := DefaultElectrodes().In(units.Millimetre)
	require.NoError(t, err)
	got, err := Synthesize(mm, DefaultCylinderLayers(),
		WithConductivity(units.New(300, units.MillisiemensPerMetre)))
	require.NoError(t, err)

	assert.True(t, got.Potential.Unit().Equal(units.Volt))
	for j := 0; j < ref.Potential.Len(); j++ {
		assert.InDelta(t, ref.Potential.At(j).Value, got.Potential.At(j).Value, 1e-15, "electrode %d", j)
	}
}

func TestSynthesizeRejectsBadInput(t *testing.T) {
	e := DefaultElectrodes()
	z := metres(8e-4, 1e-3)
	areal := units.NewVector([]float64{1, -1}, units.AmperePerSquareMetre)

	tests := []struct {
		name    string
		sources SourceSet
		opts    []Option
		wantErr error
	}{
		{"no sources", PlaneLayers(metres(), units.NewVector(nil, units.AmperePerSquareMetre)), nil, ErrEmptyArray},
		{"density count", PlaneLayers(z, units.NewVector([]float64{1}, units.AmperePerSquareMetre)), nil, ErrShapeMismatch},
		{"radius count", DiskLayers(z, areal, metres(1e-3, 1e-3, 1e-3)), nil, ErrShapeMismatch},
		{"missing thickness", CylinderLayers(z, units.NewVector([]float64{1, -1}, units.AmperePerCubicMetre), metres(1e-3), metres()), nil, ErrShapeMismatch},
		{"volumetric density on a disk", DiskLayers(z, units.NewVector([]float64{1, -1}, units.AmperePerCubicMetre), metres(1e-3)), nil, units.ErrUnitMismatch},
		{"radius in volts", DiskLayers(z, areal, units.Fill(1, 1, units.Volt)), nil, units.ErrUnitMismatch},
		{"conductivity dimension", PlaneLayers(z, areal), []Option{WithConductivity(units.New(1, units.Ohm))}, units.ErrUnitMismatch},
		{"zero conductivity", PlaneLayers(z, areal), []Option{WithConductivity(units.New(0, units.SiemensPerMetre))}, kernels.ErrInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Synthesize(e, tt.sources, tt.opts...)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := Synthesize(Electrodes{}, PlaneLayers(z, areal))
	assert.ErrorIs(t, err, ErrEmptyArray)
}

func TestFigureGating(t *testing.T) {
	calls := 0
	counter := FigureRendererFunc(func(tr Trace) error {
		calls++
		assert.Equal(t, 21, tr.Potential.Len())
		return nil
	})

	_, err := LFPOfDisks(WithFigure(counter))
	require.NoError(t, err)
	assert.Zero(t, calls, "renderer must not run without the plot flag")

	_, err = LFPOfDisks(WithFigure(counter), WithPlot(true))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	logs := testutil.CaptureLogs(t)
	_, err = LFPOfDisks(WithPlot(true))
	require.NoError(t, err)
	assert.Contains(t, logs(), "synth: plot requested but no figure renderer configured")
}

func TestFigureErrorDoesNotAlterTrace(t *testing.T) {
	logs := testutil.CaptureLogs(t)
	boom := errors.New("disk full")

	plain, err := LFPOfPlanes()
	require.NoError(t, err)
	drawn, err := LFPOfPlanes(WithPlot(true), WithFigure(FigureRendererFunc(func(Trace) error { return boom })))
	require.NoError(t, err)

	assert.ErrorIs(t, drawn.FigureErr, boom)
	assert.Equal(t, plain.Potential.Values(), drawn.Potential.Values())
	require.Len(t, logs(), 1)
	assert.Contains(t, logs()[0], "disk full")
}
