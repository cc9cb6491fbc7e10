// Package models contains the built-in right-hand sides used by the
// CLI and the experiment registry. Each model implements ode.Field;
// conservative systems additionally expose their energy.
package models

// Configurable models expose tunable scalar parameters.
type Configurable interface {
	Params() map[string]float64
	SetParam(name string, value float64)
}
