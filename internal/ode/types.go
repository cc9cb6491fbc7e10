package ode

import "math"

// State is the solution vector y of an initial value problem.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// AbsMax returns the max-norm of the state.
func (s State) AbsMax() float64 {
	m := 0.0
	for _, v := range s {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

// AddScaled adds factor*other into s in place and returns s.
// The two states must have the same length.
func (s State) AddScaled(factor float64, other State) State {
	for i := range s {
		s[i] += factor * other[i]
	}
	return s
}

// Field is the right-hand side f(t, y) of the differential equation.
// Eval must be safe to call repeatedly with the same arguments and must
// not retain y. A field reports out-of-domain input by returning an
// error; solvers propagate it without retrying.
type Field interface {
	Dim() int
	Eval(t float64, y State) (State, error)
}

// Hamiltonian is implemented by fields with a conserved energy.
type Hamiltonian interface {
	Energy(y State) float64
}

type fieldFunc struct {
	dim int
	fn  func(t float64, y State) (State, error)
}

func (f fieldFunc) Dim() int { return f.dim }

func (f fieldFunc) Eval(t float64, y State) (State, error) { return f.fn(t, y) }

// FieldFunc adapts a plain function to the Field interface.
func FieldFunc(dim int, fn func(t float64, y State) (State, error)) Field {
	return fieldFunc{dim: dim, fn: fn}
}

// Metric accumulates a scalar over the accepted samples of a solve.
type Metric interface {
	Name() string
	Observe(t float64, y State)
	Value() float64
	Reset()
}

// Observer is notified of each accepted sample.
type Observer interface {
	OnSample(t float64, y State)
}
