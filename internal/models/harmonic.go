package models

import "github.com/JP-Ellis/desir/internal/ode"

// Harmonic is the undamped harmonic oscillator.
// State: [x, v]
// Equations:
//
//	dx/dt = v
//	dv/dt = -ω²x
type Harmonic struct {
	omega float64
}

func NewHarmonic() *Harmonic {
	return &Harmonic{omega: 1.0}
}

func (h *Harmonic) Dim() int { return 2 }

func (h *Harmonic) Eval(_ float64, y ode.State) (ode.State, error) {
	x, v := y[0], y[1]
	return ode.State{v, -h.omega * h.omega * x}, nil
}

func (h *Harmonic) DefaultState() ode.State { return ode.State{1.0, 0.0} }

// Energy is the conserved quantity (v² + ω²x²)/2.
func (h *Harmonic) Energy(y ode.State) float64 {
	x, v := y[0], y[1]
	return 0.5 * (v*v + h.omega*h.omega*x*x)
}

func (h *Harmonic) Params() map[string]float64 {
	return map[string]float64{"omega": h.omega}
}

func (h *Harmonic) SetParam(name string, value float64) {
	if name == "omega" {
		h.omega = value
	}
}
