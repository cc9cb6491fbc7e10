// Package tableau defines Butcher tableaus for Runge-Kutta methods.
//
// A tableau packages the coefficients of a method: the nodes c, the
// matrix a, the weights b, and optionally the weights b* of an embedded
// lower-order method used for error estimation. Tableaus are immutable
// after construction and safe to share across concurrent solves.
package tableau

import (
	"errors"
	"fmt"
)

// Structure classifies the coefficient pattern of a method. It is
// decided once at construction, never re-detected per step.
type Structure int

const (
	// Explicit methods have a strictly lower-triangular matrix: every
	// stage depends only on earlier stages.
	Explicit Structure = iota
	// Implicit methods couple stages to themselves or later stages and
	// require an iterative stage solve.
	Implicit
)

func (s Structure) String() string {
	if s == Explicit {
		return "explicit"
	}
	return "implicit"
}

// Construction errors.
var (
	ErrNodesDim    = errors.New("tableau: nodes vector has wrong dimension")
	ErrMatrixDim   = errors.New("tableau: matrix has wrong dimensions")
	ErrWeightsDim  = errors.New("tableau: weights vector has wrong dimension")
	ErrEmbeddedDim = errors.New("tableau: embedded weights vector has wrong dimension")
	ErrOrder       = errors.New("tableau: order must be positive")
)

// Tableau is an immutable Runge-Kutta coefficient set.
type Tableau struct {
	name      string
	order     int
	c         []float64
	a         [][]float64
	b         []float64
	bhat      []float64
	structure Structure
}

// New builds a tableau from raw coefficient slices and validates that
// all dimensions agree with the stage count len(b). Matrix rows may be
// ragged: row i may omit trailing zero entries. The inputs are copied,
// so the caller may reuse its slices.
func New(name string, order int, c []float64, a [][]float64, b []float64) (*Tableau, error) {
	s := len(b)
	if s == 0 {
		return nil, fmt.Errorf("%w: no stages", ErrWeightsDim)
	}
	if order <= 0 {
		return nil, fmt.Errorf("%w, got %d", ErrOrder, order)
	}
	if len(c) != s {
		return nil, fmt.Errorf("%w: got %d nodes for %d stages", ErrNodesDim, len(c), s)
	}
	if len(a) != s {
		return nil, fmt.Errorf("%w: got %d rows for %d stages", ErrMatrixDim, len(a), s)
	}
	t := &Tableau{
		name:  name,
		order: order,
		c:     append([]float64(nil), c...),
		b:     append([]float64(nil), b...),
		a:     make([][]float64, s),
	}
	for i, row := range a {
		if len(row) > s {
			return nil, fmt.Errorf("%w: row %d has %d entries for %d stages", ErrMatrixDim, i, len(row), s)
		}
		t.a[i] = append([]float64(nil), row...)
	}
	t.structure = detectStructure(t.a)
	return t, nil
}

// NewEmbedded builds a tableau carrying the weights bhat of an embedded
// lower-order method sharing the same stages.
func NewEmbedded(name string, order int, c []float64, a [][]float64, b, bhat []float64) (*Tableau, error) {
	t, err := New(name, order, c, a, b)
	if err != nil {
		return nil, err
	}
	if len(bhat) != len(b) {
		return nil, fmt.Errorf("%w: got %d embedded weights for %d stages", ErrEmbeddedDim, len(bhat), len(b))
	}
	t.bhat = append([]float64(nil), bhat...)
	return t, nil
}

func detectStructure(a [][]float64) Structure {
	for i, row := range a {
		for j := i; j < len(row); j++ {
			if row[j] != 0 {
				return Implicit
			}
		}
	}
	return Explicit
}

func (t *Tableau) Name() string         { return t.name }
func (t *Tableau) Order() int           { return t.order }
func (t *Tableau) Stages() int          { return len(t.b) }
func (t *Tableau) Structure() Structure { return t.structure }
func (t *Tableau) IsExplicit() bool     { return t.structure == Explicit }
func (t *Tableau) HasEmbedded() bool    { return t.bhat != nil }

// Node returns c[i].
func (t *Tableau) Node(i int) float64 { return t.c[i] }

// A returns the matrix entry a[i][j], treating omitted trailing
// entries of ragged rows as zero.
func (t *Tableau) A(i, j int) float64 {
	if j >= len(t.a[i]) {
		return 0
	}
	return t.a[i][j]
}

// Weights returns the weight vector b. The returned slice is shared and
// must not be modified.
func (t *Tableau) Weights() []float64 { return t.b }

// Embedded returns the embedded weight vector b*, or nil when the
// method has no embedded pair. The returned slice is shared and must
// not be modified.
func (t *Tableau) Embedded() []float64 { return t.bhat }

func (t *Tableau) String() string {
	return fmt.Sprintf("%s (%s, %d stages, order %d)", t.name, t.structure, t.Stages(), t.order)
}
