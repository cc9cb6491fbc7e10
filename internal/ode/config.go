package ode

import "fmt"

// ImplicitMode selects the iteration scheme for implicit stage solves.
type ImplicitMode int

const (
	// FixedPoint repeatedly substitutes the stage equations.
	FixedPoint ImplicitMode = iota
	// Newton solves the coupled stage system with a damped Newton
	// iteration using a finite-difference Jacobian.
	Newton
)

func (m ImplicitMode) String() string {
	switch m {
	case FixedPoint:
		return "fixed-point"
	case Newton:
		return "newton"
	default:
		return fmt.Sprintf("ImplicitMode(%d)", int(m))
	}
}

// Config carries the tolerances and step-size control knobs for a solve.
// It is passed by value and never mutated by the solvers, so concurrent
// solves with different tolerances cannot interfere.
type Config struct {
	AbsTol float64
	RelTol float64

	InitialStep float64
	MinStep     float64
	MaxStep     float64

	// Safety scales the optimal step proposal; MaxGrowth and MinShrink
	// clamp the per-step resize factor.
	Safety    float64
	MaxGrowth float64
	MinShrink float64

	ImplicitMode    ImplicitMode
	ImplicitMaxIter int
	ImplicitTol     float64

	// StallLimit is the number of consecutive implicit non-convergences
	// tolerated before the solve is abandoned.
	StallLimit int
}

// DefaultConfig returns balanced settings suitable for most problems.
func DefaultConfig() Config {
	return Config{
		AbsTol:          1e-6,
		RelTol:          1e-3,
		InitialStep:     0.01,
		MinStep:         1e-10,
		MaxStep:         1.0,
		Safety:          0.9,
		MaxGrowth:       5.0,
		MinShrink:       0.1,
		ImplicitMode:    FixedPoint,
		ImplicitMaxIter: 50,
		ImplicitTol:     1e-10,
		StallLimit:      5,
	}
}

// Validate reports the first malformed field, wrapping ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.AbsTol <= 0:
		return fmt.Errorf("%w: absolute tolerance must be positive, got %g", ErrInvalidConfig, c.AbsTol)
	case c.RelTol < 0:
		return fmt.Errorf("%w: relative tolerance must be non-negative, got %g", ErrInvalidConfig, c.RelTol)
	case c.InitialStep <= 0:
		return fmt.Errorf("%w: initial step must be positive, got %g", ErrInvalidConfig, c.InitialStep)
	case c.MinStep <= 0:
		return fmt.Errorf("%w: minimum step must be positive, got %g", ErrInvalidConfig, c.MinStep)
	case c.MaxStep < c.MinStep:
		return fmt.Errorf("%w: maximum step %g below minimum step %g", ErrInvalidConfig, c.MaxStep, c.MinStep)
	case c.Safety <= 0 || c.Safety >= 1:
		return fmt.Errorf("%w: safety factor must be in (0, 1), got %g", ErrInvalidConfig, c.Safety)
	case c.MaxGrowth <= 1:
		return fmt.Errorf("%w: growth clamp must exceed 1, got %g", ErrInvalidConfig, c.MaxGrowth)
	case c.MinShrink <= 0 || c.MinShrink >= 1:
		return fmt.Errorf("%w: shrink clamp must be in (0, 1), got %g", ErrInvalidConfig, c.MinShrink)
	case c.ImplicitMaxIter <= 0:
		return fmt.Errorf("%w: implicit iteration cap must be positive, got %d", ErrInvalidConfig, c.ImplicitMaxIter)
	case c.ImplicitTol <= 0:
		return fmt.Errorf("%w: implicit tolerance must be positive, got %g", ErrInvalidConfig, c.ImplicitTol)
	case c.StallLimit <= 0:
		return fmt.Errorf("%w: stall limit must be positive, got %d", ErrInvalidConfig, c.StallLimit)
	}
	return nil
}
