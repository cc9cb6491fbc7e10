package models

import "github.com/JP-Ellis/desir/internal/ode"

// Robertson is the Robertson chemical kinetics problem, a classic
// stiff benchmark. The three rate constants span nine orders of
// magnitude, which defeats explicit methods at any useful step size.
// State: [a, b, c], concentrations summing to 1.
type Robertson struct {
	k1 float64
	k2 float64
	k3 float64
}

func NewRobertson() *Robertson {
	return &Robertson{
		k1: 0.04,
		k2: 3e7,
		k3: 1e4,
	}
}

func (r *Robertson) Dim() int { return 3 }

func (r *Robertson) Eval(_ float64, y ode.State) (ode.State, error) {
	a, b, c := y[0], y[1], y[2]
	da := -r.k1*a + r.k3*b*c
	db := r.k1*a - r.k3*b*c - r.k2*b*b
	dc := r.k2 * b * b
	return ode.State{da, db, dc}, nil
}

func (r *Robertson) DefaultState() ode.State { return ode.State{1.0, 0.0, 0.0} }

func (r *Robertson) Params() map[string]float64 {
	return map[string]float64{"k1": r.k1, "k2": r.k2, "k3": r.k3}
}

func (r *Robertson) SetParam(name string, value float64) {
	switch name {
	case "k1":
		r.k1 = value
	case "k2":
		r.k2 = value
	case "k3":
		r.k3 = value
	}
}
