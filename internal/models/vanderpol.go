package models

import "github.com/JP-Ellis/desir/internal/ode"

// VanDerPol is the Van der Pol oscillator.
// State: [x, y] where y = dx/dt
// Equations:
//
//	dx/dt = y
//	dy/dt = μ(1 - x²)y - x
//
// Large μ makes the problem stiff; pair it with an implicit method.
type VanDerPol struct {
	mu float64
}

func NewVanDerPol() *VanDerPol {
	return &VanDerPol{
		mu: 1.0, // Classic value for limit cycle
	}
}

func (v *VanDerPol) Dim() int { return 2 }

func (v *VanDerPol) Eval(_ float64, y ode.State) (ode.State, error) {
	x, w := y[0], y[1]
	return ode.State{w, v.mu*(1-x*x)*w - x}, nil
}

func (v *VanDerPol) DefaultState() ode.State { return ode.State{2.0, 0.0} }

func (v *VanDerPol) Params() map[string]float64 {
	return map[string]float64{"mu": v.mu}
}

func (v *VanDerPol) SetParam(name string, value float64) {
	if name == "mu" {
		v.mu = value
	}
}
