// Package stepper implements the single-step Runge-Kutta machinery:
// stage evaluation (explicit and implicit), the embedded-method error
// estimator, and the accept/reject step-size controller.
//
// The solvers in internal/solve drive this package once per step
// attempt. All state transient to an attempt (stage values, error
// estimates) is created and discarded here; nothing is retained
// between attempts.
package stepper

import (
	"github.com/JP-Ellis/desir/internal/ode"
	"github.com/JP-Ellis/desir/internal/tableau"
)

// StageSet holds the stage values k_1..k_s of a single step attempt.
type StageSet []ode.State

// Stepper computes one Runge-Kutta step attempt for a fixed tableau.
// It is cheap to construct and not safe for concurrent use; concurrent
// solves each build their own while sharing the tableau.
type Stepper struct {
	tab      *tableau.Tableau
	implicit *ImplicitSolver
}

func New(tab *tableau.Tableau, cfg ode.Config) *Stepper {
	return &Stepper{
		tab:      tab,
		implicit: NewImplicitSolver(cfg),
	}
}

func (s *Stepper) Tableau() *tableau.Tableau { return s.tab }

// Stages computes the stage values for one step of size h from (t, y).
// For explicit tableaus each k_i is computed in ascending order from
// the previously computed stages; this ordering is a true data
// dependency and must not be reordered. For implicit tableaus the
// coupled system is delegated to the implicit solver. The returned
// iteration count is zero for explicit methods.
//
// A field evaluation error is propagated as-is; it is never reported
// as a convergence failure.
func (s *Stepper) Stages(f ode.Field, t float64, y ode.State, h float64) (StageSet, int, error) {
	if !s.tab.IsExplicit() {
		return s.implicit.Solve(f, s.tab, t, y, h)
	}

	n := len(y)
	stages := s.tab.Stages()
	k := make(StageSet, stages)
	for i := 0; i < stages; i++ {
		yi := y.Clone()
		for j := 0; j < i; j++ {
			if a := s.tab.A(i, j); a != 0 {
				scale := h * a
				for c := 0; c < n; c++ {
					yi[c] += scale * k[j][c]
				}
			}
		}
		ki, err := f.Eval(t+s.tab.Node(i)*h, yi)
		if err != nil {
			return nil, 0, &ode.FieldError{T: t + s.tab.Node(i)*h, Wrapped: err}
		}
		k[i] = ki
	}
	return k, 0, nil
}

// Combine forms the candidate state y + h * sum(b_i * k_i).
func (s *Stepper) Combine(y ode.State, h float64, k StageSet) ode.State {
	next := y.Clone()
	for i, bi := range s.tab.Weights() {
		if bi != 0 {
			next.AddScaled(h*bi, k[i])
		}
	}
	return next
}
