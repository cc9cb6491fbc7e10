package tableau

import "math"

// This file contains the built-in Runge-Kutta method catalogue.
// Explicit coefficient sets follow the published references; implicit
// methods are the standard A-stable choices for stiff problems.

func must(t *Tableau, err error) *Tableau {
	if err != nil {
		panic(err)
	}
	return t
}

// Euler returns the forward Euler method. First order, one stage.
// Primarily useful for teaching and debugging more complex methods.
func Euler() *Tableau {
	return must(New("euler", 1,
		[]float64{0},
		[][]float64{{}},
		[]float64{1},
	))
}

// Heun returns Heun's method (improved Euler), a second-order
// predictor-corrector pair.
func Heun() *Tableau {
	return must(New("heun", 2,
		[]float64{0, 1},
		[][]float64{{}, {1}},
		[]float64{0.5, 0.5},
	))
}

// Midpoint returns the explicit midpoint method (RK2).
func Midpoint() *Tableau {
	return must(New("midpoint", 2,
		[]float64{0, 0.5},
		[][]float64{{}, {0.5}},
		[]float64{0, 1},
	))
}

// RK4 returns the classic 4th order Runge-Kutta method. Fixed step,
// no embedded error estimator.
func RK4() *Tableau {
	return must(New("rk4", 4,
		[]float64{0, 0.5, 0.5, 1},
		[][]float64{
			{},
			{0.5},
			{0, 0.5},
			{0, 0, 1},
		},
		[]float64{1.0 / 6.0, 1.0 / 3.0, 1.0 / 3.0, 1.0 / 6.0},
	))
}

// BS32 returns the Bogacki-Shampine 3(2) pair. Third order with an
// embedded second-order error estimator; good when higher-order pairs
// are overkill but adaptive stepping is still wanted.
//
// Reference: P. Bogacki & L.F. Shampine, "A 3(2) pair of Runge-Kutta
// formulas", Appl. Math. Lett., 2 (1989) 321-325.
func BS32() *Tableau {
	return must(NewEmbedded("bs32", 3,
		[]float64{0, 0.5, 0.75, 1},
		[][]float64{
			{},
			{0.5},
			{0, 0.75},
			{2.0 / 9.0, 1.0 / 3.0, 4.0 / 9.0},
		},
		[]float64{2.0 / 9.0, 1.0 / 3.0, 4.0 / 9.0, 0},
		[]float64{7.0 / 24.0, 1.0 / 4.0, 1.0 / 3.0, 1.0 / 8.0},
	))
}

// DormandPrince returns the Dormand-Prince 5(4) pair, the classic
// adaptive method behind MATLAB's ode45. Excellent balance of accuracy
// and efficiency for non-stiff problems.
//
// Reference: J.R. Dormand & P.J. Prince, "A family of embedded
// Runge-Kutta formulae", Journal of Computational and Applied
// Mathematics, 6 (1980) 19-26.
func DormandPrince() *Tableau {
	return must(NewEmbedded("dopri5", 5,
		[]float64{0, 1.0 / 5.0, 3.0 / 10.0, 4.0 / 5.0, 8.0 / 9.0, 1, 1},
		[][]float64{
			{},
			{1.0 / 5.0},
			{3.0 / 40.0, 9.0 / 40.0},
			{44.0 / 45.0, -56.0 / 15.0, 32.0 / 9.0},
			{19372.0 / 6561.0, -25360.0 / 2187.0, 64448.0 / 6561.0, -212.0 / 729.0},
			{9017.0 / 3168.0, -355.0 / 33.0, 46732.0 / 5247.0, 49.0 / 176.0, -5103.0 / 18656.0},
			{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0},
		},
		[]float64{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0, 0},
		[]float64{5179.0 / 57600.0, 0, 7571.0 / 16695.0, 393.0 / 640.0, -92097.0 / 339200.0, 187.0 / 2100.0, 1.0 / 40.0},
	))
}

// Tsit5 returns the Tsitouras 5(4) pair, a 5th order explicit method
// with an embedded 4th order error estimator, optimized for efficiency.
//
// Reference: Ch. Tsitouras, "Runge-Kutta pairs of order 5(4) satisfying
// only the first column simplifying assumption", Computers & Mathematics
// with Applications, 62 (2011) 770-775.
func Tsit5() *Tableau {
	b := []float64{
		0.09646076681806523,
		0.01,
		0.4798896504144996,
		1.379008574103742,
		-3.290069515436081,
		2.324710524099774,
		0,
	}
	// Published error coefficients are the differences b - b*.
	d := []float64{
		0.001780011052226,
		0.000816434459657,
		-0.007880878010262,
		0.144711007173263,
		-0.582357165452555,
		0.458082105929187,
		-1.0 / 66.0,
	}
	bhat := make([]float64, len(b))
	for i := range b {
		bhat[i] = b[i] - d[i]
	}
	return must(NewEmbedded("tsit5", 5,
		[]float64{0, 0.161, 0.327, 0.9, 0.9800255409045097, 1, 1},
		[][]float64{
			{},
			{0.161},
			{-0.008480655492356924, 0.335480655492357},
			{2.8971530571054935, -6.359448489975075, 4.362295432869581},
			{5.325864828439257, -11.748883564062828, 7.4955393428898365, -0.09249506636175525},
			{5.86145544294642, -12.92096931784711, 8.159367898576159, -0.071584973281401, -0.028269050394068383},
			{0.09646076681806523, 0.01, 0.4798896504144996, 1.379008574103742, -3.290069515436081, 2.324710524099774, 0},
		},
		b, bhat,
	))
}

// BackwardEuler returns the backward Euler method. First order,
// A-stable; the simplest implicit method for stiff problems.
func BackwardEuler() *Tableau {
	return must(New("backward_euler", 1,
		[]float64{1},
		[][]float64{{1}},
		[]float64{1},
	))
}

// ImplicitMidpoint returns the implicit midpoint rule. Second order,
// A-stable and symplectic.
func ImplicitMidpoint() *Tableau {
	return must(New("implicit_midpoint", 2,
		[]float64{0.5},
		[][]float64{{0.5}},
		[]float64{1},
	))
}

// Trapezoidal returns the trapezoidal rule (two-stage Lobatto IIIA).
// Second order, A-stable.
func Trapezoidal() *Tableau {
	return must(New("trapezoidal", 2,
		[]float64{0, 1},
		[][]float64{
			{0, 0},
			{0.5, 0.5},
		},
		[]float64{0.5, 0.5},
	))
}

// GaussLegendre4 returns the two-stage Gauss-Legendre collocation
// method. Fourth order, A-stable and symplectic; the full matrix makes
// it a genuinely coupled implicit system.
func GaussLegendre4() *Tableau {
	r := math.Sqrt(3) / 6.0
	return must(New("gauss4", 4,
		[]float64{0.5 - r, 0.5 + r},
		[][]float64{
			{0.25, 0.25 - r},
			{0.25 + r, 0.25},
		},
		[]float64{0.5, 0.5},
	))
}
