package solve

import "github.com/JP-Ellis/desir/internal/ode"

// Sample is one accepted (t, y) point of a trajectory.
type Sample struct {
	T float64
	Y ode.State
}

// Stats counts the work performed during a solve.
type Stats struct {
	// Steps is the number of accepted steps.
	Steps int
	// Rejected is the number of rejected attempts, including implicit
	// non-convergences treated as rejections.
	Rejected int
	// FieldEvals is the number of right-hand side evaluations.
	FieldEvals int
	// ImplicitIters is the total iteration count across all implicit
	// stage solves.
	ImplicitIters int
	// LastStep is the size of the last accepted step; LastNorm the
	// scaled error norm of the last attempt (adaptive only).
	LastStep float64
	LastNorm float64
}

// Result is the collected trajectory of a solve. On a fatal error the
// samples accepted before the failure are still present.
type Result struct {
	Times   []float64
	States  []ode.State
	Stats   Stats
	Metrics map[string]float64
}

// Final returns the last accepted sample, or false for an empty result.
func (r *Result) Final() (Sample, bool) {
	if len(r.Times) == 0 {
		return Sample{}, false
	}
	i := len(r.Times) - 1
	return Sample{T: r.Times[i], Y: r.States[i]}, true
}

// countingField wraps a field and counts evaluations for Stats.
type countingField struct {
	inner ode.Field
	calls *int
}

func (c countingField) Dim() int { return c.inner.Dim() }

func (c countingField) Eval(t float64, y ode.State) (ode.State, error) {
	*c.calls++
	return c.inner.Eval(t, y)
}
