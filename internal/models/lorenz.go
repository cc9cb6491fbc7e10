package models

import "github.com/JP-Ellis/desir/internal/ode"

// Lorenz is the Lorenz system, the standard chaotic benchmark.
// State: [x, y, z]
// Equations:
//
//	dx/dt = σ(y - x)
//	dy/dt = x(ρ - z) - y
//	dz/dt = xy - βz
type Lorenz struct {
	sigma float64
	rho   float64
	beta  float64
}

func NewLorenz() *Lorenz {
	return &Lorenz{
		sigma: 10.0,
		rho:   28.0,
		beta:  8.0 / 3.0,
	}
}

func (l *Lorenz) Dim() int { return 3 }

func (l *Lorenz) Eval(_ float64, y ode.State) (ode.State, error) {
	x, yy, z := y[0], y[1], y[2]
	return ode.State{
		l.sigma * (yy - x),
		x*(l.rho-z) - yy,
		x*yy - l.beta*z,
	}, nil
}

func (l *Lorenz) DefaultState() ode.State { return ode.State{1.0, 1.0, 1.0} }

func (l *Lorenz) Params() map[string]float64 {
	return map[string]float64{"sigma": l.sigma, "rho": l.rho, "beta": l.beta}
}

func (l *Lorenz) SetParam(name string, value float64) {
	switch name {
	case "sigma":
		l.sigma = value
	case "rho":
		l.rho = value
	case "beta":
		l.beta = value
	}
}
