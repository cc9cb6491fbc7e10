package models

import (
	"math"

	"github.com/JP-Ellis/desir/internal/ode"
)

// DoublePendulum is the planar double pendulum, chaotic for most
// initial conditions. Energy drift is the standard way to judge an
// integrator on it, since pointwise comparison is meaningless past the
// Lyapunov time.
// State: [θ1, θ2, ω1, ω2]
type DoublePendulum struct {
	m1, m2  float64
	l1, l2  float64
	gravity float64
}

func NewDoublePendulum() *DoublePendulum {
	return &DoublePendulum{
		m1: 1.0, m2: 1.0,
		l1: 1.0, l2: 1.0,
		gravity: 9.81,
	}
}

func (d *DoublePendulum) Dim() int { return 4 }

func (d *DoublePendulum) Eval(_ float64, y ode.State) (ode.State, error) {
	theta1, theta2, omega1, omega2 := y[0], y[1], y[2], y[3]
	m1, m2, l1, l2, g := d.m1, d.m2, d.l1, d.l2, d.gravity

	delta := theta2 - theta1
	sinD, cosD := math.Sin(delta), math.Cos(delta)

	den1 := (m1+m2)*l1 - m2*l1*cosD*cosD
	den2 := (l2 / l1) * den1

	alpha1 := (m2*l1*omega1*omega1*sinD*cosD +
		m2*g*math.Sin(theta2)*cosD +
		m2*l2*omega2*omega2*sinD -
		(m1+m2)*g*math.Sin(theta1)) / den1

	alpha2 := (-m2*l2*omega2*omega2*sinD*cosD +
		(m1+m2)*g*math.Sin(theta1)*cosD -
		(m1+m2)*l1*omega1*omega1*sinD -
		(m1+m2)*g*math.Sin(theta2)) / den2

	return ode.State{omega1, omega2, alpha1, alpha2}, nil
}

func (d *DoublePendulum) DefaultState() ode.State {
	return ode.State{math.Pi / 2, math.Pi / 2, 0, 0}
}

func (d *DoublePendulum) Energy(y ode.State) float64 {
	theta1, theta2, omega1, omega2 := y[0], y[1], y[2], y[3]
	m1, m2, l1, l2, g := d.m1, d.m2, d.l1, d.l2, d.gravity

	v1sq := l1 * l1 * omega1 * omega1
	v2sq := l1*l1*omega1*omega1 + l2*l2*omega2*omega2 +
		2*l1*l2*omega1*omega2*math.Cos(theta1-theta2)

	ke := 0.5*m1*v1sq + 0.5*m2*v2sq
	y1 := -l1 * math.Cos(theta1)
	y2 := y1 - l2*math.Cos(theta2)
	pe := m1*g*y1 + m2*g*y2

	return ke + pe
}

func (d *DoublePendulum) Params() map[string]float64 {
	return map[string]float64{
		"m1": d.m1, "m2": d.m2,
		"l1": d.l1, "l2": d.l2,
		"gravity": d.gravity,
	}
}

func (d *DoublePendulum) SetParam(name string, value float64) {
	switch name {
	case "m1":
		d.m1 = value
	case "m2":
		d.m2 = value
	case "l1":
		d.l1 = value
	case "l2":
		d.l2 = value
	case "gravity":
		d.gravity = value
	}
}
