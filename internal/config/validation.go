package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the path to the canonical validation defaults file.
// This is the single source of truth for all default validation settings.
const DefaultConfigPath = "config/validation.defaults.json"

// maxFileSize bounds config files read by LoadValidationConfig.
const maxFileSize = 1 * 1024 * 1024 // 1MB

// ValidationConfig represents the root configuration of a validation run.
// The same keys are accepted in JSON and YAML files.
type ValidationConfig struct {
	// Comparison tolerance per estimator: |got - want| < 1.5e-decimal.
	DecimalStandard *int `json:"decimal_standard,omitempty" yaml:"decimal_standard,omitempty"`
	DecimalDelta    *int `json:"decimal_delta,omitempty" yaml:"decimal_delta,omitempty"`
	DecimalStep     *int `json:"decimal_step,omitempty" yaml:"decimal_step,omitempty"`
	DecimalSpline   *int `json:"decimal_spline,omitempty" yaml:"decimal_spline,omitempty"`

	// Quadrature params
	QuadratureStrategy *string  `json:"quadrature_strategy,omitempty" yaml:"quadrature_strategy,omitempty"` // "gauss-legendre" or "romberg"
	QuadratureAbsTol   *float64 `json:"quadrature_abs_tol,omitempty" yaml:"quadrature_abs_tol,omitempty"`
	QuadratureRelTol   *float64 `json:"quadrature_rel_tol,omitempty" yaml:"quadrature_rel_tol,omitempty"`

	// Scenario layout
	Profiles         []string `json:"profiles,omitempty" yaml:"profiles,omitempty"` // unit-scale profiles, see ValidProfiles
	RemovedElectrode *int     `json:"removed_electrode,omitempty" yaml:"removed_electrode,omitempty"` // negative disables non-contiguous runs

	// Source geometry, SI units
	Conductivity    *float64 `json:"conductivity,omitempty" yaml:"conductivity,omitempty"`
	SourceDiameter  *float64 `json:"source_diameter,omitempty" yaml:"source_diameter,omitempty"`
	SourceThickness *float64 `json:"source_thickness,omitempty" yaml:"source_thickness,omitempty"`

	// Estimator params
	FilterType  *string   `json:"filter_type,omitempty" yaml:"filter_type,omitempty"`
	FilterOrder []float64 `json:"filter_order,omitempty" yaml:"filter_order,omitempty"`
	NumSteps    *int      `json:"num_steps,omitempty" yaml:"num_steps,omitempty"`

	// Diagnostic output
	Plot    *bool   `json:"plot,omitempty" yaml:"plot,omitempty"`
	PlotDir *string `json:"plot_dir,omitempty" yaml:"plot_dir,omitempty"`
}

// ValidProfiles names the unit-scale profiles a config may select. si runs
// in base units; potential, length and conductivity rescale one quantity
// each to its milli unit; milli and micro rescale all of them together.
var ValidProfiles = []string{"si", "potential", "length", "conductivity", "milli", "micro"}

// DefaultProfiles is the profile list used when none is configured.
var DefaultProfiles = []string{"si", "potential", "length", "conductivity"}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyValidationConfig returns a ValidationConfig with all fields set to nil.
// Use LoadValidationConfig to load actual values from the defaults file.
func EmptyValidationConfig() *ValidationConfig {
	return &ValidationConfig{}
}

// DefaultValidationConfig returns a config with every field populated from
// the getter defaults.
func DefaultValidationConfig() *ValidationConfig {
	c := EmptyValidationConfig()
	return &ValidationConfig{
		DecimalStandard:    ptrInt(c.GetDecimalStandard()),
		DecimalDelta:       ptrInt(c.GetDecimalDelta()),
		DecimalStep:        ptrInt(c.GetDecimalStep()),
		DecimalSpline:      ptrInt(c.GetDecimalSpline()),
		QuadratureStrategy: ptrString(c.GetQuadratureStrategy()),
		QuadratureAbsTol:   ptrFloat64(c.GetQuadratureAbsTol()),
		QuadratureRelTol:   ptrFloat64(c.GetQuadratureRelTol()),
		Profiles:           c.GetProfiles(),
		RemovedElectrode:   ptrInt(c.GetRemovedElectrode()),
		Conductivity:       ptrFloat64(c.GetConductivity()),
		SourceDiameter:     ptrFloat64(c.GetSourceDiameter()),
		SourceThickness:    ptrFloat64(c.GetSourceThickness()),
		FilterType:         ptrString(c.GetFilterType()),
		FilterOrder:        c.GetFilterOrder(),
		NumSteps:           ptrInt(c.GetNumSteps()),
		Plot:               ptrBool(c.GetPlot()),
		PlotDir:            ptrString(c.GetPlotDir()),
	}
}

// LoadValidationConfig loads a ValidationConfig from a JSON or YAML file.
// The file is validated to ensure it has a .json, .yaml or .yml extension
// and is under the max file size. Fields omitted from the file retain their
// default values, so partial configs are safe.
func LoadValidationConfig(path string) (*ValidationConfig, error) {
	// Validate the config file path.
	cleanPath := filepath.Clean(path)
	ext := filepath.Ext(cleanPath)
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse into an empty config. The Get* methods provide fallback
	// defaults for any fields not specified in the file.
	cfg := EmptyValidationConfig()
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical validation defaults from
// DefaultConfigPath. It searches for the file in the current directory and
// common parent directories. Panics if the file cannot be loaded, intended
// for test setup.
func MustLoadDefaultConfig() *ValidationConfig {
	// Try paths from current dir up to repo root
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,          // from cmd/csdcheck/
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // deeper packages
		"../../../../" + DefaultConfigPath, // even deeper
	}
	for _, path := range candidates {
		if cfg, err := LoadValidationConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *ValidationConfig) Validate() error {
	decimals := []struct {
		name string
		v    *int
	}{
		{"decimal_standard", c.DecimalStandard},
		{"decimal_delta", c.DecimalDelta},
		{"decimal_step", c.DecimalStep},
		{"decimal_spline", c.DecimalSpline},
	}
	for _, d := range decimals {
		if d.v != nil && (*d.v < 0 || *d.v > 15) {
			return fmt.Errorf("%s must be between 0 and 15, got %d", d.name, *d.v)
		}
	}

	if c.QuadratureStrategy != nil {
		switch *c.QuadratureStrategy {
		case "", "gauss-legendre", "romberg":
		default:
			return fmt.Errorf("unknown quadrature_strategy %q", *c.QuadratureStrategy)
		}
	}

	positive := []struct {
		name string
		v    *float64
	}{
		{"quadrature_abs_tol", c.QuadratureAbsTol},
		{"quadrature_rel_tol", c.QuadratureRelTol},
		{"conductivity", c.Conductivity},
		{"source_diameter", c.SourceDiameter},
		{"source_thickness", c.SourceThickness},
	}
	for _, p := range positive {
		if p.v != nil && !(*p.v > 0) {
			return fmt.Errorf("%s must be positive, got %g", p.name, *p.v)
		}
	}

	for _, p := range c.Profiles {
		if !slices.Contains(ValidProfiles, p) {
			return fmt.Errorf("unknown profile %q (valid: %s)", p, strings.Join(ValidProfiles, ", "))
		}
	}

	if c.NumSteps != nil && *c.NumSteps < 1 {
		return fmt.Errorf("num_steps must be at least 1, got %d", *c.NumSteps)
	}
	for i, o := range c.FilterOrder {
		if o <= 0 {
			return fmt.Errorf("filter_order[%d] must be positive, got %g", i, o)
		}
	}

	return nil
}

// GetDecimalStandard returns the decimal_standard value or the default.
func (c *ValidationConfig) GetDecimalStandard() int {
	if c.DecimalStandard == nil {
		return 6
	}
	return *c.DecimalStandard
}

// GetDecimalDelta returns the decimal_delta value or the default.
func (c *ValidationConfig) GetDecimalDelta() int {
	if c.DecimalDelta == nil {
		return 6
	}
	return *c.DecimalDelta
}

// GetDecimalStep returns the decimal_step value or the default.
func (c *ValidationConfig) GetDecimalStep() int {
	if c.DecimalStep == nil {
		return 6
	}
	return *c.DecimalStep
}

// GetDecimalSpline returns the decimal_spline value or the default.
func (c *ValidationConfig) GetDecimalSpline() int {
	if c.DecimalSpline == nil {
		return 6
	}
	return *c.DecimalSpline
}

// GetQuadratureStrategy returns the quadrature_strategy value or the default.
func (c *ValidationConfig) GetQuadratureStrategy() string {
	if c.QuadratureStrategy == nil || *c.QuadratureStrategy == "" {
		return "gauss-legendre"
	}
	return *c.QuadratureStrategy
}

// GetQuadratureAbsTol returns the quadrature_abs_tol value or the default.
func (c *ValidationConfig) GetQuadratureAbsTol() float64 {
	if c.QuadratureAbsTol == nil {
		return 1e-12
	}
	return *c.QuadratureAbsTol
}

// GetQuadratureRelTol returns the quadrature_rel_tol value or the default.
func (c *ValidationConfig) GetQuadratureRelTol() float64 {
	if c.QuadratureRelTol == nil {
		return 1e-10
	}
	return *c.QuadratureRelTol
}

// GetProfiles returns the unit-scale profiles to run, defaulting to
// DefaultProfiles.
func (c *ValidationConfig) GetProfiles() []string {
	if len(c.Profiles) == 0 {
		return append([]string(nil), DefaultProfiles...)
	}
	return append([]string(nil), c.Profiles...)
}

// GetRemovedElectrode returns the removed_electrode value or the default.
func (c *ValidationConfig) GetRemovedElectrode() int {
	if c.RemovedElectrode == nil {
		return 5
	}
	return *c.RemovedElectrode
}

// GetConductivity returns the conductivity in S/m.
func (c *ValidationConfig) GetConductivity() float64 {
	if c.Conductivity == nil {
		return 0.3
	}
	return *c.Conductivity
}

// GetSourceDiameter returns the source diameter in metres.
func (c *ValidationConfig) GetSourceDiameter() float64 {
	if c.SourceDiameter == nil {
		return 2e-3
	}
	return *c.SourceDiameter
}

// GetSourceThickness returns the cylinder thickness in metres.
func (c *ValidationConfig) GetSourceThickness() float64 {
	if c.SourceThickness == nil {
		return 1e-4
	}
	return *c.SourceThickness
}

// GetFilterType returns the filter_type value or the default.
func (c *ValidationConfig) GetFilterType() string {
	if c.FilterType == nil || *c.FilterType == "" {
		return "gaussian"
	}
	return *c.FilterType
}

// GetFilterOrder returns the filter_order value or the default.
func (c *ValidationConfig) GetFilterOrder() []float64 {
	if len(c.FilterOrder) == 0 {
		return []float64{3, 1}
	}
	return append([]float64(nil), c.FilterOrder...)
}

// GetNumSteps returns the num_steps value or the default.
func (c *ValidationConfig) GetNumSteps() int {
	if c.NumSteps == nil {
		return 200
	}
	return *c.NumSteps
}

// GetPlot returns the plot value or the default.
func (c *ValidationConfig) GetPlot() bool {
	if c.Plot == nil {
		return false // default: figures disabled
	}
	return *c.Plot
}

// GetPlotDir returns the plot_dir value or the default.
func (c *ValidationConfig) GetPlotDir() string {
	if c.PlotDir == nil || *c.PlotDir == "" {
		return "plots"
	}
	return *c.PlotDir
}
