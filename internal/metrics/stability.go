package metrics

import (
	"math"

	"github.com/JP-Ellis/desir/internal/ode"
)

// Stability reports the fraction of samples whose components all stay
// below a threshold. 1.0 means the trajectory never escaped.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string { return s.name }

func (s *Stability) Observe(t float64, y ode.State) {
	s.samples++
	for _, val := range y {
		if math.Abs(val) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// Amplitude tracks the largest absolute value reached by any component.
type Amplitude struct {
	name string
	max  float64
}

func NewAmplitude() *Amplitude {
	return &Amplitude{name: "amplitude"}
}

func (a *Amplitude) Name() string { return a.name }

func (a *Amplitude) Observe(t float64, y ode.State) {
	if m := y.AbsMax(); m > a.max {
		a.max = m
	}
}

func (a *Amplitude) Value() float64 { return a.max }

func (a *Amplitude) Reset() { a.max = 0 }
