package dispatch

import (
	"context"
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// intTol is the threshold below which a relaxed value counts as integral.
const intTol = 1e-6

type relaxation struct {
	obj float64
	x   []float64
}

// solveRelaxation points to the function solving one LP relaxation. It can be
// overridden in tests to simulate solver failures.
var solveRelaxation = simplexRelaxation

// simplexRelaxation minimizes c·x subject to rows·x <= rhs and lb <= x <= ub
// by running the simplex method on the slack-augmented standard form.
func simplexRelaxation(c []float64, rows [][]float64, rhs []float64, lb, ub []float64) (relaxation, error) {
	n := len(c)
	ineq := make([][]float64, 0, len(rows)+2*n)
	b := make([]float64, 0, len(rows)+2*n)
	ineq = append(ineq, rows...)
	b = append(b, rhs...)
	for i := 0; i < n; i++ {
		row := make([]float64, n)
		row[i] = 1
		ineq = append(ineq, row)
		b = append(b, ub[i])
	}
	for i := 0; i < n; i++ {
		if lb[i] <= 0 {
			continue
		}
		row := make([]float64, n)
		row[i] = -1
		ineq = append(ineq, row)
		b = append(b, -lb[i])
	}

	// Standard form: one slack variable per inequality. The identity block
	// keeps A at full row rank as Simplex requires.
	m := len(ineq)
	a := mat.NewDense(m, n+m, nil)
	for i, row := range ineq {
		for j, v := range row {
			if v != 0 {
				a.Set(i, j, v)
			}
		}
		a.Set(i, n+i, 1)
	}
	cExt := make([]float64, n+m)
	copy(cExt, c)

	obj, sol, err := lp.Simplex(cExt, a, b, 1e-7, nil)
	if err != nil {
		return relaxation{}, err
	}
	x := make([]float64, n)
	for i := range x {
		v := sol[i]
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		x[i] = v
	}
	return relaxation{obj: obj, x: x}, nil
}

// solveBinaryProgram minimizes c·x over x in {0,1}^n subject to rows·x <= rhs
// using branch-and-bound over simplex relaxations. The context deadline bounds
// the search; expiry surfaces as the context's error.
func solveBinaryProgram(ctx context.Context, c []float64, rows [][]float64, rhs []float64) ([]bool, float64, error) {
	n := len(c)
	type node struct {
		lb, ub []float64
	}
	lb0 := make([]float64, n)
	ub0 := make([]float64, n)
	for i := range ub0 {
		ub0[i] = 1
	}
	stack := []node{{lb: lb0, ub: ub0}}

	best := math.Inf(1)
	var bestX []bool

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		rel, err := solveRelaxation(c, rows, rhs, nd.lb, nd.ub)
		if err != nil {
			if errors.Is(err, lp.ErrInfeasible) {
				continue
			}
			return nil, 0, err
		}
		// The relaxation is a lower bound: prune dominated subtrees.
		if rel.obj >= best-intTol {
			continue
		}

		branch := -1
		frac := intTol
		for i, v := range rel.x {
			if f := math.Min(v, 1-v); f > frac {
				frac = f
				branch = i
			}
		}
		if branch == -1 {
			best = rel.obj
			bestX = make([]bool, n)
			for i, v := range rel.x {
				bestX[i] = v > 0.5
			}
			continue
		}

		down := node{lb: cloneFloats(nd.lb), ub: cloneFloats(nd.ub)}
		down.ub[branch] = 0
		up := node{lb: cloneFloats(nd.lb), ub: cloneFloats(nd.ub)}
		up.lb[branch] = 1
		// Push the zero branch first so the one branch is explored first:
		// committing assignments tends to reach good incumbents early.
		stack = append(stack, down, up)
	}
	if bestX == nil {
		// The zero vector satisfies every constraint, so the root relaxation
		// is always feasible. Reaching this point is an internal defect.
		return nil, 0, errors.New("branch-and-bound found no integral solution")
	}
	return bestX, best, nil
}

func cloneFloats(src []float64) []float64 {
	out := make([]float64, len(src))
	copy(out, src)
	return out
}
