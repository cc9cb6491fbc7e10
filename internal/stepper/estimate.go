package stepper

import (
	"math"

	"github.com/JP-Ellis/desir/internal/ode"
	"github.com/JP-Ellis/desir/internal/tableau"
)

// ErrorEstimate is the local truncation error estimate of one step
// attempt: the per-component error vector and the scalar norm the
// controller decides on. Recomputed per attempt, never retained.
type ErrorEstimate struct {
	Vec  ode.State
	Norm float64
}

// Estimate computes the embedded-method error estimate
//
//	e = h * sum_i (b*_i - b_i) * k_i
//
// and scales it per component by atol + rtol*max(|y_c|, |yNext_c|),
// taking the maximum over components. The per-component scaling is
// what makes the estimate meaningful across state variables of very
// different magnitude; a raw vector norm would not be. Only defined
// for tableaus with an embedded method.
func Estimate(k StageSet, h float64, tab *tableau.Tableau, y, yNext ode.State, atol, rtol float64) ErrorEstimate {
	n := len(y)
	b := tab.Weights()
	bhat := tab.Embedded()

	e := make(ode.State, n)
	for i := range b {
		if d := bhat[i] - b[i]; d != 0 {
			e.AddScaled(h*d, k[i])
		}
	}

	norm := 0.0
	for c := 0; c < n; c++ {
		scale := atol + rtol*math.Max(math.Abs(y[c]), math.Abs(yNext[c]))
		if scale == 0 {
			scale = atol
		}
		if v := math.Abs(e[c]) / scale; v > norm {
			norm = v
		}
	}
	return ErrorEstimate{Vec: e, Norm: norm}
}
