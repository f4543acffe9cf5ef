package diagplot

import (
	"bytes"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/csd.report/internal/fsutil"
	"github.com/banshee-data/csd.report/internal/synth"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestPanels(t *testing.T) {
	tests := []struct {
		name      string
		lfp       func(...synth.Option) (synth.Trace, error)
		wantTitle string
	}{
		{"planes", synth.LFPOfPlanes, "planar CSD"},
		{"disks", synth.LFPOfDisks, "disk CSD, R=[0.001 0.001 0.001] m"},
		{"cylinders", synth.LFPOfCylinders, "cylinder CSD, R=[0.001 0.001 0.001] m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trace, err := tt.lfp()
			require.NoError(t, err)

			left, right, err := Panels(trace)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, left.Title.Text)
			assert.Equal(t, "LFP", right.Title.Text)
			assert.Equal(t, "z_j (m)", left.Y.Label.Text)
			assert.Equal(t, "phi_j (V)", right.X.Label.Text)
			assert.Equal(t, 0.0, right.Y.Min)
			assert.InDelta(t, 2e-3, right.Y.Max, 1e-15)
		})
	}
}

func TestPanelsRejectEmptyTrace(t *testing.T) {
	_, _, err := Panels(synth.Trace{})
	assert.ErrorIs(t, err, synth.ErrEmptyArray)
}

func TestFigureWriterMemory(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	w := NewFigureWriter(mfs, "/plots")

	trace, err := synth.LFPOfCylinders(synth.WithFigure(w.Named("StepiCSD_00")), synth.WithPlot(true))
	require.NoError(t, err)
	require.NoError(t, trace.FigureErr)

	files := mfs.Files("/plots")
	require.Equal(t, []string{"/plots/StepiCSD_00.png"}, files)
	data, err := mfs.ReadFile(files[0])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))

	// Default name follows the geometry.
	assert.Equal(t, "/plots/cylinder_lfp.png", w.Path(trace))
}

func TestFigureWriterOS(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "figures")
	w := NewFigureWriter(fsutil.OSFileSystem{}, dir)

	trace, err := synth.LFPOfDisks()
	require.NoError(t, err)
	require.NoError(t, w.Render(trace))

	data, err := os.ReadFile(filepath.Join(dir, "disk_lfp.png"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
}

type failingFS struct{ *fsutil.MemoryFileSystem }

func (failingFS) WriteFile(string, []byte, os.FileMode) error { return errors.New("read-only") }

func TestFigureWriterError(t *testing.T) {
	w := NewFigureWriter(failingFS{fsutil.NewMemoryFileSystem()}, "/plots")
	trace, err := synth.LFPOfPlanes(synth.WithFigure(w), synth.WithPlot(true))
	require.NoError(t, err)
	require.Error(t, trace.FigureErr)
	assert.Contains(t, trace.FigureErr.Error(), "read-only")
}

func TestWriteReport(t *testing.T) {
	entries := []Entry{
		{Name: "StandardCSD_00", Estimator: "standard", Profile: "si", Passed: true, Decimal: 6,
			MaxAbsDev: 1e-12, Unit: "A/m^2", Got: []float64{0, 1, 0}, Want: []float64{0, 1, 0}},
		{Name: "SplineiCSD_02", Estimator: "spline", Profile: "micro", Passed: false, Decimal: 6,
			MaxAbsDev: 0.04, Unit: "A/m^3", Got: []float64{0.04, 1}, Want: []float64{0, 1}},
		{Name: "DeltaiCSD_09", Estimator: "delta", Profile: "si", Err: "singular matrix"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, "csdcheck", entries))
	html := buf.String()
	for _, want := range []string{"<html", "csdcheck", "StandardCSD_00", "SplineiCSD_02", "scenarios passed", "ground truth", "recovered"} {
		assert.Contains(t, html, want)
	}
	// Errored scenarios with no data appear only in the overview.
	assert.Contains(t, html, "DeltaiCSD_09")
	assert.NotContains(t, html, "singular matrix")

	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, SaveReport(mfs, "/out/report.html", "csdcheck", entries))
	assert.True(t, mfs.Exists("/out/report.html"))
}

func TestColors(t *testing.T) {
	assert.Nil(t, generateColors(0))
	cs := generateColors(3)
	require.Len(t, cs, 3)
	assert.NotEqual(t, cs[0], cs[1])
	assert.Equal(t, "#d82626", hexColor(cs[0]))
	assert.Equal(t, "#ff0000", hexColor(color.RGBA{R: 255, A: 255}))

	r, g, b := hslToRGB(0, 0, 0.5)
	assert.Equal(t, []uint8{127, 127, 127}, []uint8{r, g, b})
}
