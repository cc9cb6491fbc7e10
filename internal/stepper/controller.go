package stepper

import (
	"fmt"
	"math"

	"github.com/JP-Ellis/desir/internal/ode"
)

// Decision is the outcome of one step attempt: accept and continue
// with NextStep, or reject and retry the same interval with NextStep.
type Decision struct {
	Accepted bool
	NextStep float64
}

// Controller turns a scaled error norm into an accept/reject decision
// and a step-size proposal. It keeps no state between attempts beyond
// what the caller threads through (the step size itself).
type Controller struct {
	safety    float64
	maxGrowth float64
	minShrink float64
	minStep   float64
	maxStep   float64
}

func NewController(cfg ode.Config) *Controller {
	return &Controller{
		safety:    cfg.Safety,
		maxGrowth: cfg.MaxGrowth,
		minShrink: cfg.MinShrink,
		minStep:   cfg.MinStep,
		maxStep:   cfg.MaxStep,
	}
}

// Decide accepts when norm <= 1 and proposes
//
//	h' = h * clamp(safety * norm^(-1/(order+1)), minShrink, maxGrowth)
//
// On rejection the factor is additionally capped at 1 so the retry
// never grows. A retry step below the configured floor is fatal:
// Decide returns ErrStepTooSmall rather than letting the caller loop
// forever.
func (c *Controller) Decide(norm, h float64, order int) (Decision, error) {
	if norm <= 1 {
		factor := c.maxGrowth
		if norm > 0 {
			factor = clamp(c.safety*math.Pow(norm, -1.0/float64(order+1)), c.minShrink, c.maxGrowth)
		}
		next := clamp(h*factor, c.minStep, c.maxStep)
		return Decision{Accepted: true, NextStep: next}, nil
	}

	factor := clamp(c.safety*math.Pow(norm, -1.0/float64(order+1)), c.minShrink, 1)
	retry := h * factor
	if retry < c.minStep {
		return Decision{}, fmt.Errorf("%w: %g < %g", ode.ErrStepTooSmall, retry, c.minStep)
	}
	return Decision{Accepted: false, NextStep: retry}, nil
}

// Shrink proposes a retry step after a failure with no usable error
// norm (an implicit non-convergence); it shrinks by the configured
// lower clamp and honors the same floor.
func (c *Controller) Shrink(h float64) (float64, error) {
	retry := h * c.minShrink
	if retry < c.minStep {
		return 0, fmt.Errorf("%w: %g < %g", ode.ErrStepTooSmall, retry, c.minStep)
	}
	return retry, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
