// Package kernels computes the potential at a field point due to a single
// idealized current source (infinite plane, finite disk, finite cylinder)
// in a quasi-static, homogeneous, isotropic medium.
//
// All kernels check argument dimensions before any arithmetic, reconcile
// same-dimension positions to the field point's unit, and return a
// potential whose unit is derived from the input units:
//
//	plane, disk: [C] · [z] / [σ]
//	cylinder:    [C] · [z]² / [σ]
//
// Defaults follow the reference forward model: source at 0 m, density
// 1 A/m² (1 A/m³ for cylinders), radius 1 mm, thickness 0.1 m, σ = 0.3 S/m.
package kernels
