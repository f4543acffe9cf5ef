package synth

import (
	"fmt"

	"github.com/banshee-data/csd.report/internal/kernels"
	"github.com/banshee-data/csd.report/internal/units"
)

// SourceSet is a stack of sources of one geometry. Radii are used by disks
// and cylinders, Thicknesses by cylinders only; either may hold a single
// value that applies to every source.
type SourceSet struct {
	Geometry    kernels.Geometry
	Positions   units.Vector
	Densities   units.Vector
	Radii       units.Vector
	Thicknesses units.Vector
}

// PlaneLayers returns infinite planes at z with areal densities c.
func PlaneLayers(z, c units.Vector) SourceSet {
	return SourceSet{Geometry: kernels.GeometryPlane, Positions: z, Densities: c}
}

// DiskLayers returns disks at z with areal densities c and radii r.
func DiskLayers(z, c, r units.Vector) SourceSet {
	return SourceSet{Geometry: kernels.GeometryDisk, Positions: z, Densities: c, Radii: r}
}

// CylinderLayers returns cylinders centred at z with volumetric densities c,
// radii r and thicknesses h.
func CylinderLayers(z, c, r, h units.Vector) SourceSet {
	return SourceSet{Geometry: kernels.GeometryCylinder, Positions: z, Densities: c, Radii: r, Thicknesses: h}
}

// Len returns the number of sources.
func (s SourceSet) Len() int { return s.Positions.Len() }

// Reversed returns the set with sources in reverse order.
func (s SourceSet) Reversed() SourceSet {
	rev := func(v units.Vector) units.Vector {
		x := v.Values()
		for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
			x[i], x[j] = x[j], x[i]
		}
		return units.NewVector(x, v.Unit())
	}
	out := s
	out.Positions = rev(s.Positions)
	out.Densities = rev(s.Densities)
	if s.Radii.Len() > 1 {
		out.Radii = rev(s.Radii)
	}
	if s.Thicknesses.Len() > 1 {
		out.Thicknesses = rev(s.Thicknesses)
	}
	return out
}

// Validate checks lengths and dimensions of every per-source vector.
func (s SourceSet) Validate() error {
	n := s.Len()
	if n == 0 {
		return fmt.Errorf("%w: %s sources", ErrEmptyArray, s.Geometry)
	}
	if s.Densities.Len() != n {
		return fmt.Errorf("%w: %d positions, %d densities", ErrShapeMismatch, n, s.Densities.Len())
	}
	op := s.Geometry.String() + " sources"
	if err := units.AssertDimension(op, s.Positions.Named("z_i"), units.Metre); err != nil {
		return err
	}
	if err := units.AssertDimension(op, s.Densities.Named("C_i"), s.Geometry.DensityUnit()); err != nil {
		return err
	}

	type extra struct {
		name string
		v    units.Vector
	}
	var extras []extra
	switch s.Geometry {
	case kernels.GeometryPlane:
	case kernels.GeometryDisk:
		extras = []extra{{"R_i", s.Radii}}
	case kernels.GeometryCylinder:
		extras = []extra{{"R_i", s.Radii}, {"h_i", s.Thicknesses}}
	default:
		return fmt.Errorf("%w: unknown geometry %v", kernels.ErrInvalidParameter, s.Geometry)
	}
	for _, e := range extras {
		if _, err := e.v.Broadcast(n); err != nil {
			return fmt.Errorf("%s: %w", e.name, ErrShapeMismatch)
		}
		if err := units.AssertDimension(op, e.v.Named(e.name), units.Metre); err != nil {
			return err
		}
	}
	return nil
}

// Sources expands the set into individual kernel sources. Validate must
// have succeeded.
func (s SourceSet) Sources() []kernels.Source {
	n := s.Len()
	radii, _ := s.Radii.Broadcast(n)
	thick, _ := s.Thicknesses.Broadcast(n)
	out := make([]kernels.Source, n)
	for i := range out {
		out[i] = kernels.Source{
			Geometry: s.Geometry,
			Position: s.Positions.At(i),
			Density:  s.Densities.At(i),
		}
		if radii.Len() == n {
			out[i].Radius = radii.At(i)
		}
		if thick.Len() == n {
			out[i].Thickness = thick.At(i)
		}
	}
	return out
}
