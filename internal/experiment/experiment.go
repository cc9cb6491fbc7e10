// Package experiment ties configs, models, and methods into runnable
// solves.
package experiment

import (
	"context"
	"fmt"

	"github.com/JP-Ellis/desir/internal/config"
	"github.com/JP-Ellis/desir/internal/models"
	"github.com/JP-Ellis/desir/internal/ode"
	"github.com/JP-Ellis/desir/internal/solve"
)

// Experiment is one configured solve: a model, a method, and the
// settings to run them with.
type Experiment struct {
	cfg      *config.Config
	field    ode.Field
	adaptive bool

	fixed    *solve.Solver
	embedded *solve.EmbeddedSolver
}

// New resolves the names in cfg against the registry and builds the
// solver. Adaptive solving requires a method with embedded weights;
// requesting it for a plain method surfaces as a configuration error.
func New(cfg *config.Config, reg *Registry) (*Experiment, error) {
	field, err := reg.GetModel(cfg.Model)
	if err != nil {
		return nil, err
	}
	if c, ok := field.(models.Configurable); ok {
		for name, value := range cfg.Params {
			c.SetParam(name, value)
		}
	}

	tab, err := reg.GetMethod(cfg.Method)
	if err != nil {
		return nil, err
	}

	solverCfg, err := cfg.ToSolverConfig()
	if err != nil {
		return nil, err
	}

	e := &Experiment{cfg: cfg, field: field, adaptive: cfg.Adaptive}
	if cfg.Adaptive {
		e.embedded, err = solve.NewEmbedded(field, tab, solverCfg)
	} else {
		e.fixed, err = solve.NewSolver(field, tab, solverCfg)
	}
	if err != nil {
		return nil, err
	}

	for _, m := range reg.DefaultMetrics(field) {
		e.AddMetric(m)
	}
	return e, nil
}

func (e *Experiment) Field() ode.Field { return e.field }

// InitState returns the configured initial state, falling back to the
// model's default.
func (e *Experiment) InitState() (ode.State, error) {
	if len(e.cfg.InitState) > 0 {
		return ode.State(e.cfg.InitState).Clone(), nil
	}
	d, ok := e.field.(interface{ DefaultState() ode.State })
	if !ok {
		return nil, fmt.Errorf("model %q has no default state and none was configured", e.cfg.Model)
	}
	return d.DefaultState(), nil
}

func (e *Experiment) AddMetric(m ode.Metric) {
	if e.adaptive {
		e.embedded.AddMetric(m)
	} else {
		e.fixed.AddMetric(m)
	}
}

func (e *Experiment) AddObserver(o ode.Observer) {
	if e.adaptive {
		e.embedded.AddObserver(o)
	} else {
		e.fixed.AddObserver(o)
	}
}

// Start begins a lazy solve over the configured time span.
func (e *Experiment) Start() (*solve.Session, error) {
	y0, err := e.InitState()
	if err != nil {
		return nil, err
	}
	t0 := e.cfg.Start
	tf := t0 + e.cfg.Duration
	if e.adaptive {
		return e.embedded.Start(t0, y0, tf)
	}
	return e.fixed.Start(t0, y0, tf)
}

// Run solves the configured problem to completion.
func (e *Experiment) Run(ctx context.Context) (*solve.Result, error) {
	y0, err := e.InitState()
	if err != nil {
		return nil, err
	}
	t0 := e.cfg.Start
	tf := t0 + e.cfg.Duration
	if e.adaptive {
		return e.embedded.Run(ctx, t0, y0, tf)
	}
	return e.fixed.Run(ctx, t0, y0, tf)
}
