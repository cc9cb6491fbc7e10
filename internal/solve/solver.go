package solve

import (
	"context"
	"fmt"

	"github.com/JP-Ellis/desir/internal/ode"
	"github.com/JP-Ellis/desir/internal/stepper"
	"github.com/JP-Ellis/desir/internal/tableau"
)

// Solver integrates an initial value problem with a fixed step size.
// Every tableau works here, explicit or implicit; the embedded weights
// are ignored if present.
type Solver struct {
	field     ode.Field
	tab       *tableau.Tableau
	cfg       ode.Config
	metrics   []ode.Metric
	observers []ode.Observer
}

// NewSolver validates the configuration and pairs a field with a method.
func NewSolver(field ode.Field, tab *tableau.Tableau, cfg ode.Config) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Solver{field: field, tab: tab, cfg: cfg}, nil
}

func (s *Solver) AddMetric(m ode.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Solver) AddObserver(o ode.Observer) { s.observers = append(s.observers, o) }

// Start begins a lazy solve from (t0, y0) toward tf. The first call to
// Next on the returned session yields the initial condition itself.
func (s *Solver) Start(t0 float64, y0 ode.State, tf float64) (*Session, error) {
	return s.start(t0, y0, tf, false)
}

// Run drives a session to completion, honoring ctx between steps.
func (s *Solver) Run(ctx context.Context, t0 float64, y0 ode.State, tf float64) (*Result, error) {
	return s.run(ctx, t0, y0, tf, false, nil)
}

// RunWithCallback is Run with a per-sample hook; a non-nil return from
// the callback stops the solve early without error.
func (s *Solver) RunWithCallback(ctx context.Context, t0 float64, y0 ode.State, tf float64, fn func(Sample) error) (*Result, error) {
	return s.run(ctx, t0, y0, tf, false, fn)
}

// EmbeddedSolver integrates adaptively, using the tableau's embedded
// weights for local error estimation and the step controller for
// accept/reject decisions.
type EmbeddedSolver struct {
	inner Solver
}

// NewEmbedded rejects tableaus without embedded weights; everything
// else is shared with the fixed-step solver.
func NewEmbedded(field ode.Field, tab *tableau.Tableau, cfg ode.Config) (*EmbeddedSolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !tab.HasEmbedded() {
		return nil, fmt.Errorf("%w: method %q has no embedded error estimator", ode.ErrInvalidConfig, tab.Name())
	}
	return &EmbeddedSolver{inner: Solver{field: field, tab: tab, cfg: cfg}}, nil
}

func (s *EmbeddedSolver) AddMetric(m ode.Metric)     { s.inner.AddMetric(m) }
func (s *EmbeddedSolver) AddObserver(o ode.Observer) { s.inner.AddObserver(o) }

func (s *EmbeddedSolver) Start(t0 float64, y0 ode.State, tf float64) (*Session, error) {
	return s.inner.start(t0, y0, tf, true)
}

func (s *EmbeddedSolver) Run(ctx context.Context, t0 float64, y0 ode.State, tf float64) (*Result, error) {
	return s.inner.run(ctx, t0, y0, tf, true, nil)
}

func (s *EmbeddedSolver) RunWithCallback(ctx context.Context, t0 float64, y0 ode.State, tf float64, fn func(Sample) error) (*Result, error) {
	return s.inner.run(ctx, t0, y0, tf, true, fn)
}

func (s *Solver) start(t0 float64, y0 ode.State, tf float64, adaptive bool) (*Session, error) {
	if len(y0) != s.field.Dim() {
		return nil, fmt.Errorf("%w: state has %d components, field wants %d", ode.ErrDimensionMismatch, len(y0), s.field.Dim())
	}
	if !y0.IsValid() {
		return nil, ode.ErrInvalidState
	}
	if tf <= t0 {
		return nil, fmt.Errorf("%w: final time %g not after initial time %g", ode.ErrInvalidConfig, tf, t0)
	}

	sess := &Session{
		step: stepper.New(s.tab, s.cfg),
		cfg:  s.cfg,
		t:    t0,
		y:    y0.Clone(),
		h:    s.cfg.InitialStep,
		tf:   tf,
	}
	sess.field = countingField{inner: s.field, calls: &sess.stats.FieldEvals}
	if adaptive {
		sess.ctrl = stepper.NewController(s.cfg)
	}
	return sess, nil
}

func (s *Solver) run(ctx context.Context, t0 float64, y0 ode.State, tf float64, adaptive bool, fn func(Sample) error) (*Result, error) {
	sess, err := s.start(t0, y0, tf, adaptive)
	if err != nil {
		return nil, err
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	res := &Result{}
	for {
		select {
		case <-ctx.Done():
			res.Stats = sess.Stats()
			s.finish(res)
			return res, ctx.Err()
		default:
		}

		sample, ok, err := sess.Next()
		if err != nil {
			res.Stats = sess.Stats()
			s.finish(res)
			return res, err
		}
		if !ok {
			break
		}

		res.Times = append(res.Times, sample.T)
		res.States = append(res.States, sample.Y)
		for _, m := range s.metrics {
			m.Observe(sample.T, sample.Y)
		}
		for _, o := range s.observers {
			o.OnSample(sample.T, sample.Y)
		}
		if fn != nil {
			if err := fn(sample); err != nil {
				break
			}
		}
	}

	res.Stats = sess.Stats()
	s.finish(res)
	return res, nil
}

func (s *Solver) finish(res *Result) {
	if len(s.metrics) == 0 {
		return
	}
	res.Metrics = make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
}
