package kernels

import (
	"fmt"

	"github.com/banshee-data/csd.report/internal/quadrature"
	"github.com/banshee-data/csd.report/internal/units"
)

// Geometry identifies the shape of an idealized source.
type Geometry int

const (
	GeometryPlane Geometry = iota
	GeometryDisk
	GeometryCylinder
)

func (g Geometry) String() string {
	switch g {
	case GeometryPlane:
		return "plane"
	case GeometryDisk:
		return "disk"
	case GeometryCylinder:
		return "cylinder"
	default:
		return fmt.Sprintf("Geometry(%d)", int(g))
	}
}

// DensityUnit is the native density unit of the geometry: areal for planes
// and disks, volumetric for cylinders.
func (g Geometry) DensityUnit() units.Unit {
	if g == GeometryCylinder {
		return units.AmperePerCubicMetre
	}
	return units.AmperePerSquareMetre
}

// Source is one idealized current source. Radius is ignored for planes;
// Thickness is used by cylinders only.
type Source struct {
	Geometry  Geometry
	Position  units.Quantity
	Density   units.Quantity
	Radius    units.Quantity
	Thickness units.Quantity
}

// Contribution is one source's potential at one field point.
type Contribution struct {
	Phi units.Quantity
	// Warning is set when the cylinder quadrature missed its tolerance.
	Warning *quadrature.ToleranceWarning
}

// Potential evaluates the source's kernel at zj. opts are applied after the
// source's own parameters and normally carry the medium conductivity and
// the integrator.
func (s Source) Potential(zj units.Quantity, opts ...Option) (Contribution, error) {
	all := append([]Option{WithPosition(s.Position), WithDensity(s.Density)}, opts...)
	switch s.Geometry {
	case GeometryPlane:
		phi, err := PlanePotential(zj, all...)
		return Contribution{Phi: phi}, err
	case GeometryDisk:
		phi, err := DiskPotential(zj, append(all, WithRadius(s.Radius))...)
		return Contribution{Phi: phi}, err
	case GeometryCylinder:
		phi, res, err := CylinderPotential(zj, append(all, WithRadius(s.Radius), WithThickness(s.Thickness))...)
		if err != nil {
			return Contribution{}, err
		}
		c := Contribution{Phi: phi}
		if w := res.Warning(); w != nil {
			w.Op = fmt.Sprintf("cylinder at %v, z_j=%v", s.Position, zj)
			c.Warning = w
		}
		return c, nil
	default:
		return Contribution{}, fmt.Errorf("%w: unknown geometry %v", ErrInvalidParameter, s.Geometry)
	}
}
