// Package validate checks inverse CSD estimators by round trip: known
// source densities are pushed through the forward model, the synthetic
// LFP is handed to an estimator, and the recovered densities are compared
// with the ones that produced it.
package validate

import (
	"errors"
	"fmt"

	"github.com/banshee-data/csd.report/internal/config"
	"github.com/banshee-data/csd.report/internal/icsd"
	"github.com/banshee-data/csd.report/internal/kernels"
	"github.com/banshee-data/csd.report/internal/units"
)

// ErrUnknownProfile is returned for a profile name not in Profiles.
var ErrUnknownProfile = errors.New("validate: unknown profile")

// Profile is the scaling in which estimator inputs are expressed. Length
// covers coord_electrode, diam and h; Conductivity covers sigma and
// sigma_top. The recovered density is always expected in coherent SI.
type Profile struct {
	Name         string
	Potential    units.Unit
	Length       units.Unit
	Conductivity units.Unit
}

// The potential, length and conductivity profiles rescale one quantity
// each. Scaling them together can cancel in the density (σ·φ/z² is
// unchanged by milli on all three), so the joint milli and micro profiles
// only catch estimators that mishandle the combination.
var (
	ProfileSI           = Profile{"si", units.Volt, units.Metre, units.SiemensPerMetre}
	ProfilePotential    = Profile{"potential", units.Millivolt, units.Metre, units.SiemensPerMetre}
	ProfileLength       = Profile{"length", units.Volt, units.Millimetre, units.SiemensPerMetre}
	ProfileConductivity = Profile{"conductivity", units.Volt, units.Metre, units.MillisiemensPerMetre}
	ProfileMilli        = Profile{"milli", units.Millivolt, units.Millimetre, units.MillisiemensPerMetre}
	ProfileMicro        = Profile{"micro", units.Microvolt, units.Micrometre, units.MicrosiemensPerMetre}
)

// Profiles lists the built-in profiles.
var Profiles = []Profile{ProfileSI, ProfilePotential, ProfileLength, ProfileConductivity, ProfileMilli, ProfileMicro}

// ProfileByName looks up a built-in profile.
func ProfileByName(name string) (Profile, error) {
	for _, p := range Profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
}

// Scenario is one round trip. Geometry values are SI magnitudes.
type Scenario struct {
	Name    string
	Method  icsd.Method
	Profile Profile
	// Removed is the electrode dropped from trace and coordinates, or -1.
	Removed int
	Decimal int

	Conductivity float64
	Diameter     float64
	Thickness    float64

	NumSteps    int
	FilterType  string
	FilterOrder []float64
}

// Contiguous reports whether the scenario uses every electrode.
func (s Scenario) Contiguous() bool { return s.Removed < 0 }

// Geometry is the source shape the method assumes.
func (s Scenario) Geometry() kernels.Geometry {
	switch s.Method {
	case icsd.MethodStandard:
		return kernels.GeometryPlane
	case icsd.MethodDelta:
		return kernels.GeometryDisk
	default:
		return kernels.GeometryCylinder
	}
}

func (s Scenario) String() string {
	layout := "contiguous"
	if !s.Contiguous() {
		layout = fmt.Sprintf("without electrode %d", s.Removed)
	}
	return fmt.Sprintf("%s (%s, %s, %s)", s.Name, s.Method, s.Profile.Name, layout)
}

// DefaultScenarios builds the full set from the built-in defaults: every
// method on the si, potential, length and conductivity profiles,
// contiguous and with electrode 5 removed.
func DefaultScenarios() []Scenario {
	s, err := Scenarios(config.EmptyValidationConfig())
	if err != nil {
		panic(err)
	}
	return s
}

// Scenarios builds the scenario set described by cfg. Per method, the
// contiguous runs come first, one per profile, followed by the
// non-contiguous ones; names number them in that order. With the default
// profiles StepiCSD_00 is SI, _01 to _03 rescale the potential, lengths and
// conductivity, and _04 to _07 repeat them with an electrode removed.
func Scenarios(cfg *config.ValidationConfig) ([]Scenario, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var profiles []Profile
	for _, name := range cfg.GetProfiles() {
		p, err := ProfileByName(name)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	layouts := []int{-1}
	if r := cfg.GetRemovedElectrode(); r >= 0 {
		layouts = append(layouts, r)
	}

	decimal := map[icsd.Method]int{
		icsd.MethodStandard: cfg.GetDecimalStandard(),
		icsd.MethodDelta:    cfg.GetDecimalDelta(),
		icsd.MethodStep:     cfg.GetDecimalStep(),
		icsd.MethodSpline:   cfg.GetDecimalSpline(),
	}

	var out []Scenario
	for _, m := range icsd.Methods {
		i := 0
		for _, removed := range layouts {
			for _, p := range profiles {
				out = append(out, Scenario{
					Name:         fmt.Sprintf("%s_%02d", m.Prefix(), i),
					Method:       m,
					Profile:      p,
					Removed:      removed,
					Decimal:      decimal[m],
					Conductivity: cfg.GetConductivity(),
					Diameter:     cfg.GetSourceDiameter(),
					Thickness:    cfg.GetSourceThickness(),
					NumSteps:     cfg.GetNumSteps(),
					FilterType:   cfg.GetFilterType(),
					FilterOrder:  cfg.GetFilterOrder(),
				})
				i++
			}
		}
	}
	return out, nil
}
