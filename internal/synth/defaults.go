package synth

import "github.com/banshee-data/csd.report/internal/units"

// Default layout: 21 electrodes 0.1 mm apart and three sources at 0.8, 1.0
// and 1.2 mm with densities −0.5, 1, −0.5.
const (
	DefaultElectrodeCount = 21
	DefaultSpacing        = 1e-4
)

var (
	defaultSourceZ   = []float64{8e-4, 10e-4, 12e-4}
	defaultDensities = []float64{-0.5, 1, -0.5}
)

// DefaultElectrodes returns the default electrode array in metres.
func DefaultElectrodes() Electrodes {
	e, _ := LinearElectrodes(DefaultElectrodeCount, units.New(DefaultSpacing, units.Metre))
	return e
}

// DefaultPlaneLayers returns the three default planes.
func DefaultPlaneLayers() SourceSet {
	return PlaneLayers(
		units.NewVector(defaultSourceZ, units.Metre),
		units.NewVector(defaultDensities, units.AmperePerSquareMetre))
}

// DefaultDiskLayers returns the three default disks of radius 1 mm.
func DefaultDiskLayers() SourceSet {
	return DiskLayers(
		units.NewVector(defaultSourceZ, units.Metre),
		units.NewVector(defaultDensities, units.AmperePerSquareMetre),
		units.Fill(len(defaultSourceZ), 1e-3, units.Metre))
}

// DefaultCylinderLayers returns the three default cylinders of radius 1 mm
// and thickness 0.1 mm.
func DefaultCylinderLayers() SourceSet {
	return CylinderLayers(
		units.NewVector(defaultSourceZ, units.Metre),
		units.NewVector(defaultDensities, units.AmperePerCubicMetre),
		units.Fill(len(defaultSourceZ), 1e-3, units.Metre),
		units.Fill(len(defaultSourceZ), 1e-4, units.Metre))
}

// LFPOfPlanes synthesizes the default planes on the default electrodes.
func LFPOfPlanes(opts ...Option) (Trace, error) {
	return Synthesize(DefaultElectrodes(), DefaultPlaneLayers(), opts...)
}

// LFPOfDisks synthesizes the default disks on the default electrodes.
func LFPOfDisks(opts ...Option) (Trace, error) {
	return Synthesize(DefaultElectrodes(), DefaultDiskLayers(), opts...)
}

// LFPOfCylinders synthesizes the default cylinders on the default electrodes.
func LFPOfCylinders(opts ...Option) (Trace, error) {
	return Synthesize(DefaultElectrodes(), DefaultCylinderLayers(), opts...)
}
