// Package diagplot draws diagnostic figures for synthetic traces and
// validation runs. It is presentation only: nothing here feeds back into
// the numbers.
package diagplot

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/banshee-data/csd.report/internal/fsutil"
	"github.com/banshee-data/csd.report/internal/kernels"
	"github.com/banshee-data/csd.report/internal/security"
	"github.com/banshee-data/csd.report/internal/synth"
	"github.com/banshee-data/csd.report/internal/units"
)

var traceColor = color.RGBA{R: 200, A: 255}

// FigureWriter renders the two-panel figure of a trace to
// <dir>/<name>.png. It implements synth.FigureRenderer.
type FigureWriter struct {
	fs   fsutil.FileSystem
	dir  string
	name string

	Width, Height vg.Length
}

// NewFigureWriter returns a writer into dir on fsys.
func NewFigureWriter(fsys fsutil.FileSystem, dir string) *FigureWriter {
	return &FigureWriter{fs: fsys, dir: dir, Width: 10 * vg.Inch, Height: 6 * vg.Inch}
}

// Named returns a copy of w that writes <name>.png.
func (w *FigureWriter) Named(name string) *FigureWriter {
	c := *w
	c.name = name
	return &c
}

// Path returns the file the next Render of trace t will write.
func (w *FigureWriter) Path(t synth.Trace) string {
	stem := w.name
	if stem == "" {
		stem = t.Sources.Geometry.String() + "_lfp"
	}
	return filepath.Join(w.dir, security.SanitizeFilename(stem)+".png")
}

// Render implements synth.FigureRenderer.
func (w *FigureWriter) Render(t synth.Trace) error {
	if err := w.fs.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	var buf bytes.Buffer
	if err := WritePNG(&buf, t, w.Width, w.Height); err != nil {
		return err
	}
	path := w.Path(t)
	if err := w.fs.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("save figure %s: %w", path, err)
	}
	return nil
}

// WritePNG draws the source profile and the trace side by side.
func WritePNG(out io.Writer, t synth.Trace, width, height vg.Length) error {
	left, right, err := Panels(t)
	if err != nil {
		return err
	}

	img := vgimg.New(width, height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: 1, Cols: 2,
		PadX:   4 * vg.Millimeter,
		PadTop: 2 * vg.Millimeter, PadBottom: 2 * vg.Millimeter,
		PadLeft: 2 * vg.Millimeter, PadRight: 2 * vg.Millimeter,
	}
	canvases := plot.Align([][]*plot.Plot{{left, right}}, tiles, dc)
	left.Draw(canvases[0][0])
	right.Draw(canvases[0][1])

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(out); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Panels builds the source-profile plot and the LFP-versus-depth plot.
// Depth is drawn in the electrodes' unit.
func Panels(t synth.Trace) (*plot.Plot, *plot.Plot, error) {
	z := t.Electrodes.Positions()
	if z.Len() == 0 {
		return nil, nil, fmt.Errorf("%w: trace has no electrodes", synth.ErrEmptyArray)
	}
	src := t.Sources
	zi, err := src.Positions.In(z.Unit())
	if err != nil {
		return nil, nil, err
	}

	left := plot.New()
	left.Title.Text = profileTitle(src)
	left.X.Label.Text = fmt.Sprintf("C_i (%s)", src.Densities.Unit())
	left.Y.Label.Text = fmt.Sprintf("z_j (%s)", z.Unit())

	axis := make(plotter.XYs, z.Len())
	for j := range axis {
		axis[j] = plotter.XY{X: 0, Y: z.At(j).Value}
	}
	if err := addLinePoints(left, axis, traceColor); err != nil {
		return nil, nil, err
	}

	colors := generateColors(src.Len())
	c := src.Densities.Values()
	switch src.Geometry {
	case kernels.GeometryCylinder:
		h, err := broadcastIn(src.Thicknesses, src.Len(), z.Unit())
		if err != nil {
			return nil, nil, err
		}
		for i := range c {
			lo, hi := zi.At(i).Value-h[i]/2, zi.At(i).Value+h[i]/2
			bar, err := plotter.NewPolygon(plotter.XYs{{X: 0, Y: lo}, {X: c[i], Y: lo}, {X: c[i], Y: hi}, {X: 0, Y: hi}})
			if err != nil {
				return nil, nil, err
			}
			bar.Color = colors[i]
			left.Add(bar)
		}
	default:
		for i := range c {
			stem := plotter.XYs{{X: 0, Y: zi.At(i).Value}, {X: c[i], Y: zi.At(i).Value}}
			if err := addLinePoints(left, stem, colors[i]); err != nil {
				return nil, nil, err
			}
		}
	}

	right := plot.New()
	right.Title.Text = "LFP"
	right.X.Label.Text = fmt.Sprintf("phi_j (%s)", t.Potential.Unit())
	right.Y.Label.Text = left.Y.Label.Text
	lfp := make(plotter.XYs, t.Potential.Len())
	for j := range lfp {
		lfp[j] = plotter.XY{X: t.Potential.At(j).Value, Y: z.At(j).Value}
	}
	if err := addLinePoints(right, lfp, traceColor); err != nil {
		return nil, nil, err
	}

	for _, p := range []*plot.Plot{left, right} {
		p.Y.Min, p.Y.Max = z.Min(), z.Max()
		p.Add(plotter.NewGrid())
	}
	return left, right, nil
}

func profileTitle(s synth.SourceSet) string {
	switch s.Geometry {
	case kernels.GeometryPlane:
		return "planar CSD"
	default:
		return fmt.Sprintf("%s CSD, R=%v", s.Geometry, s.Radii)
	}
}

func addLinePoints(p *plot.Plot, xys plotter.XYs, c color.Color) error {
	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return err
	}
	line.Color = c
	line.Width = vg.Points(1)
	points.Color = c
	p.Add(line, points)
	return nil
}

func broadcastIn(v units.Vector, n int, u units.Unit) ([]float64, error) {
	b, err := v.Broadcast(n)
	if err != nil {
		return nil, err
	}
	b, err = b.In(u)
	if err != nil {
		return nil, err
	}
	return b.Values(), nil
}
