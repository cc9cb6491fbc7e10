// Package metrics provides ready-made ode.Metric implementations for
// judging trajectory quality.
package metrics

import (
	"math"

	"github.com/JP-Ellis/desir/internal/ode"
)

// EnergyDrift tracks the maximum relative deviation of a conserved
// energy from its initial value. Fields without an energy yield zero.
type EnergyDrift struct {
	name          string
	field         ode.Field
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(field ode.Field) *EnergyDrift {
	return &EnergyDrift{
		name:  "energy_drift",
		field: field,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(t float64, y ode.State) {
	h, ok := e.field.(ode.Hamiltonian)
	if !ok {
		return
	}

	energy := h.Energy(y)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// MeanEnergy averages the energy over all accepted samples.
type MeanEnergy struct {
	name    string
	field   ode.Field
	total   float64
	samples int
}

func NewMeanEnergy(field ode.Field) *MeanEnergy {
	return &MeanEnergy{name: "mean_energy", field: field}
}

func (e *MeanEnergy) Name() string { return e.name }

func (e *MeanEnergy) Observe(t float64, y ode.State) {
	h, ok := e.field.(ode.Hamiltonian)
	if !ok {
		return
	}
	e.total += h.Energy(y)
	e.samples++
}

func (e *MeanEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *MeanEnergy) Reset() {
	e.total = 0
	e.samples = 0
}
