package models

import (
	"math"

	"github.com/JP-Ellis/desir/internal/ode"
)

// Pendulum is the nonlinear pendulum.
// State: [θ, ω] where ω = dθ/dt
// Equations:
//
//	dθ/dt = ω
//	dω/dt = -(g/L)sin(θ)
type Pendulum struct {
	gravity float64
	length  float64
}

func NewPendulum() *Pendulum {
	return &Pendulum{gravity: 9.81, length: 1.0}
}

func (p *Pendulum) Dim() int { return 2 }

func (p *Pendulum) Eval(_ float64, y ode.State) (ode.State, error) {
	theta, omega := y[0], y[1]
	return ode.State{omega, -(p.gravity / p.length) * math.Sin(theta)}, nil
}

func (p *Pendulum) DefaultState() ode.State { return ode.State{0.5, 0.0} }

// Energy per unit mass: L²ω²/2 + gL(1 - cos θ).
func (p *Pendulum) Energy(y ode.State) float64 {
	theta, omega := y[0], y[1]
	ke := 0.5 * p.length * p.length * omega * omega
	pe := p.gravity * p.length * (1 - math.Cos(theta))
	return ke + pe
}

func (p *Pendulum) Params() map[string]float64 {
	return map[string]float64{"gravity": p.gravity, "length": p.length}
}

func (p *Pendulum) SetParam(name string, value float64) {
	switch name {
	case "gravity":
		p.gravity = value
	case "length":
		p.length = value
	}
}
