package stepper

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/JP-Ellis/desir/internal/ode"
	"github.com/JP-Ellis/desir/internal/tableau"
)

// ImplicitSolver solves the coupled stage equations of an implicit
// Runge-Kutta method:
//
//	K_i = f(t + c_i*h, y + h * sum_j a_ij * K_j)   for all i
//
// Fixed-point iteration is the default; Newton mode handles stiff
// tableaus where substitution diverges.
type ImplicitSolver struct {
	mode    ode.ImplicitMode
	maxIter int
	tol     float64
}

func NewImplicitSolver(cfg ode.Config) *ImplicitSolver {
	return &ImplicitSolver{
		mode:    cfg.ImplicitMode,
		maxIter: cfg.ImplicitMaxIter,
		tol:     cfg.ImplicitTol,
	}
}

// Solve computes the stage values and reports the number of iterations
// used. Exceeding the iteration cap yields ErrNonConvergence, which the
// adaptive loop treats as a step rejection; a field evaluation failure
// is propagated unchanged and is fatal.
func (is *ImplicitSolver) Solve(f ode.Field, tab *tableau.Tableau, t float64, y ode.State, h float64) (StageSet, int, error) {
	// Conventional initial guess: K_i = f(t, y) for all stages.
	f0, err := f.Eval(t, y)
	if err != nil {
		return nil, 0, &ode.FieldError{T: t, Wrapped: err}
	}
	k := make(StageSet, tab.Stages())
	for i := range k {
		k[i] = f0.Clone()
	}

	if is.mode == ode.Newton {
		return is.newton(f, tab, t, y, h, k)
	}
	return is.fixedPoint(f, tab, t, y, h, k)
}

// converged tests the update against an absolute+relative threshold
// scaled by the magnitude of the current iterate.
func (is *ImplicitSolver) converged(maxDiff, iterateMax float64) bool {
	return maxDiff <= is.tol+is.tol*iterateMax
}

func (is *ImplicitSolver) fixedPoint(f ode.Field, tab *tableau.Tableau, t float64, y ode.State, h float64, k StageSet) (StageSet, int, error) {
	s := tab.Stages()
	n := len(y)

	for iter := 1; iter <= is.maxIter; iter++ {
		maxDiff := 0.0
		iterateMax := 0.0
		next := make(StageSet, s)
		for i := 0; i < s; i++ {
			yi := y.Clone()
			for j := 0; j < s; j++ {
				if a := tab.A(i, j); a != 0 {
					yi.AddScaled(h*a, k[j])
				}
			}
			ti := t + tab.Node(i)*h
			ki, err := f.Eval(ti, yi)
			if err != nil {
				return nil, iter, &ode.FieldError{T: ti, Wrapped: err}
			}
			next[i] = ki
			for c := 0; c < n; c++ {
				if d := math.Abs(ki[c] - k[i][c]); d > maxDiff {
					maxDiff = d
				}
				if a := math.Abs(ki[c]); a > iterateMax {
					iterateMax = a
				}
			}
		}
		k = next
		if is.converged(maxDiff, iterateMax) {
			return k, iter, nil
		}
	}
	return nil, is.maxIter, fmt.Errorf("%w: fixed-point cap %d reached", ode.ErrNonConvergence, is.maxIter)
}

// newton runs a simplified Newton iteration on the concatenated stage
// vector: the Jacobian of the residual G(K)_i = K_i - f(t+c_i*h, y +
// h*sum_j a_ij*K_j) is built once per step attempt by finite
// differences and its LU factorization is reused across iterations.
func (is *ImplicitSolver) newton(f ode.Field, tab *tableau.Tableau, t float64, y ode.State, h float64, k StageSet) (StageSet, int, error) {
	s := tab.Stages()
	n := len(y)
	m := s * n

	z := make([]float64, m)
	for i, ki := range k {
		copy(z[i*n:(i+1)*n], ki)
	}

	residual := func(z []float64) ([]float64, error) {
		g := make([]float64, m)
		for i := 0; i < s; i++ {
			yi := y.Clone()
			for j := 0; j < s; j++ {
				if a := tab.A(i, j); a != 0 {
					scale := h * a
					for c := 0; c < n; c++ {
						yi[c] += scale * z[j*n+c]
					}
				}
			}
			ti := t + tab.Node(i)*h
			fi, err := f.Eval(ti, yi)
			if err != nil {
				return nil, &ode.FieldError{T: ti, Wrapped: err}
			}
			for c := 0; c < n; c++ {
				g[i*n+c] = z[i*n+c] - fi[c]
			}
		}
		return g, nil
	}

	g0, err := residual(z)
	if err != nil {
		return nil, 0, err
	}

	jac := mat.NewDense(m, m, nil)
	for col := 0; col < m; col++ {
		eps := 1e-8 * math.Max(1, math.Abs(z[col]))
		zp := append([]float64(nil), z...)
		zp[col] += eps
		gp, err := residual(zp)
		if err != nil {
			return nil, 0, err
		}
		for row := 0; row < m; row++ {
			jac.Set(row, col, (gp[row]-g0[row])/eps)
		}
	}

	var lu mat.LU
	lu.Factorize(jac)

	dz := mat.NewVecDense(m, nil)
	for iter := 1; iter <= is.maxIter; iter++ {
		if err := lu.SolveVecTo(dz, false, mat.NewVecDense(m, g0)); err != nil {
			return nil, iter, fmt.Errorf("%w: singular stage jacobian: %v", ode.ErrNonConvergence, err)
		}
		maxDiff := 0.0
		iterateMax := 0.0
		for c := 0; c < m; c++ {
			z[c] -= dz.AtVec(c)
			if d := math.Abs(dz.AtVec(c)); d > maxDiff {
				maxDiff = d
			}
			if a := math.Abs(z[c]); a > iterateMax {
				iterateMax = a
			}
		}
		if is.converged(maxDiff, iterateMax) {
			out := make(StageSet, s)
			for i := range out {
				out[i] = ode.State(append([]float64(nil), z[i*n:(i+1)*n]...))
			}
			return out, iter, nil
		}
		if g0, err = residual(z); err != nil {
			return nil, iter, err
		}
	}
	return nil, is.maxIter, fmt.Errorf("%w: newton cap %d reached", ode.ErrNonConvergence, is.maxIter)
}
