package solve

import (
	"context"
	"sync"

	"github.com/JP-Ellis/desir/internal/ode"
	"github.com/JP-Ellis/desir/internal/tableau"
)

// Ensemble runs independent solves of the same problem from many
// initial conditions concurrently. The tableau is shared (it is
// immutable); each run builds its own field through the factory so
// stateful fields never race.
type Ensemble struct {
	newField func() ode.Field
	tab      *tableau.Tableau
	cfg      ode.Config
	adaptive bool
}

func NewEnsemble(newField func() ode.Field, tab *tableau.Tableau, cfg ode.Config, adaptive bool) *Ensemble {
	return &Ensemble{newField: newField, tab: tab, cfg: cfg, adaptive: adaptive}
}

// Run solves from each initial condition in parallel and returns the
// results in matching order. The first per-run error, if any, is
// returned; results of the runs that succeeded are still populated.
func (e *Ensemble) Run(ctx context.Context, t0 float64, initials []ode.State, tf float64) ([]*Result, error) {
	results := make([]*Result, len(initials))
	errs := make([]error, len(initials))

	var wg sync.WaitGroup
	for i := range initials {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			field := e.newField()
			if e.adaptive {
				s, err := NewEmbedded(field, e.tab, e.cfg)
				if err != nil {
					errs[idx] = err
					return
				}
				results[idx], errs[idx] = s.Run(ctx, t0, initials[idx], tf)
				return
			}
			s, err := NewSolver(field, e.tab, e.cfg)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = s.Run(ctx, t0, initials[idx], tf)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
