package solve

import (
	"errors"
	"fmt"

	"github.com/JP-Ellis/desir/internal/ode"
	"github.com/JP-Ellis/desir/internal/stepper"
)

// Session produces the samples of one solve lazily: each call to Next
// computes exactly one accepted step (possibly after rejected
// attempts). Only the transient state of the current attempt is held
// alive; stop calling Next and nothing further is computed. A Session
// is not restartable; a fresh solve needs a fresh Start.
type Session struct {
	field ode.Field
	step  *stepper.Stepper
	ctrl  *stepper.Controller // nil for fixed-step sessions
	cfg   ode.Config

	t  float64
	y  ode.State
	h  float64
	tf float64

	emittedInitial bool
	done           bool
	consecFail     int
	stats          Stats
}

// Stats returns a snapshot of the work counters so far.
func (s *Session) Stats() Stats { return s.stats }

// Next returns the next accepted sample. The boolean is false once the
// target time has been reached. A non-nil error is fatal: the session
// is finished and the samples already returned form the partial
// trajectory.
func (s *Session) Next() (Sample, bool, error) {
	if s.done {
		return Sample{}, false, nil
	}
	if !s.emittedInitial {
		s.emittedInitial = true
		return Sample{T: s.t, Y: s.y.Clone()}, true, nil
	}
	if s.t >= s.tf {
		s.done = true
		return Sample{}, false, nil
	}

	for {
		// The last step is stretched (or shortened) to land exactly on
		// the target; the relative slack absorbs accumulated rounding so
		// a spurious near-zero step is never taken.
		h := s.h
		final := false
		if remaining := s.tf - s.t; h >= remaining*(1-1e-12) {
			h = remaining
			final = true
		}

		k, iters, err := s.step.Stages(s.field, s.t, s.y, h)
		s.stats.ImplicitIters += iters
		if err != nil {
			if s.ctrl != nil && errors.Is(err, ode.ErrNonConvergence) {
				// Recoverable: same treatment as an error-too-large
				// rejection, up to the stall limit.
				s.stats.Rejected++
				s.consecFail++
				if s.consecFail >= s.cfg.StallLimit {
					return s.fatal(fmt.Errorf("%w: %d consecutive failures: %v", ode.ErrStalled, s.consecFail, err))
				}
				retry, serr := s.ctrl.Shrink(h)
				if serr != nil {
					return s.fatal(serr)
				}
				s.h = retry
				continue
			}
			return s.fatal(err)
		}
		// A converged attempt breaks the non-convergence streak, even
		// when the step is rejected on its error norm below.
		s.consecFail = 0

		yNext := s.step.Combine(s.y, h, k)
		if !yNext.IsValid() {
			return s.fatal(ode.ErrInvalidState)
		}

		if s.ctrl != nil {
			est := stepper.Estimate(k, h, s.step.Tableau(), s.y, yNext, s.cfg.AbsTol, s.cfg.RelTol)
			s.stats.LastNorm = est.Norm
			dec, derr := s.ctrl.Decide(est.Norm, h, s.step.Tableau().Order())
			if derr != nil {
				return s.fatal(derr)
			}
			if !dec.Accepted {
				// Rejection leaves (t, y) untouched; the retry runs
				// from the identical state.
				s.stats.Rejected++
				s.h = dec.NextStep
				continue
			}
			s.h = dec.NextStep
		}

		if final {
			s.t = s.tf
		} else {
			s.t += h
		}
		s.y = yNext
		s.stats.Steps++
		s.stats.LastStep = h
		return Sample{T: s.t, Y: s.y.Clone()}, true, nil
	}
}

func (s *Session) fatal(err error) (Sample, bool, error) {
	s.done = true
	return Sample{}, false, &ode.StepError{Step: s.stats.Steps, Time: s.t, Wrapped: err}
}
