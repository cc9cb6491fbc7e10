package models

import "github.com/JP-Ellis/desir/internal/ode"

// Decay is exponential decay, y' = -k*y, with solution y0*exp(-k*t).
// The simplest possible sanity check for any integrator.
type Decay struct {
	rate float64
}

func NewDecay() *Decay {
	return &Decay{rate: 1.0}
}

func (d *Decay) Dim() int { return 1 }

func (d *Decay) Eval(_ float64, y ode.State) (ode.State, error) {
	return ode.State{-d.rate * y[0]}, nil
}

func (d *Decay) DefaultState() ode.State { return ode.State{1.0} }

func (d *Decay) Params() map[string]float64 {
	return map[string]float64{"rate": d.rate}
}

func (d *Decay) SetParam(name string, value float64) {
	if name == "rate" {
		d.rate = value
	}
}
