package quadrature

import "fmt"

// Strategy names accepted by ByName.
const (
	GaussLegendre = "gauss-legendre"
	RombergName   = "romberg"
)

// Default returns the integrator used when none is configured.
func Default() Integrator {
	return AdaptiveLegendre{}
}

// ByName returns the integrator for a configured strategy name. An empty
// name selects Default.
func ByName(name string) (Integrator, error) {
	switch name {
	case "", GaussLegendre:
		return AdaptiveLegendre{}, nil
	case RombergName:
		return Romberg{}, nil
	default:
		return nil, fmt.Errorf("unknown quadrature strategy %q (valid: %s, %s)", name, GaussLegendre, RombergName)
	}
}
