package whaleopt

import (
	"context"
	"math"

	"whaleopt/mesh"
)

// Solver drives a Method until an iteration budget, evaluation budget, or
// no-improvement limit is hit.  Zero-valued limits are ignored.
type Solver struct {
	Method Method
	Obj    Objectiver
	// Mesh, if non-nil, is used by the method to project candidate
	// positions before evaluation (e.g. mesh.Bounded clamps into box
	// bounds).  A nil mesh leaves positions untouched.
	Mesh mesh.Mesh
	// MaxIter is the maximum number of iterations to run.
	MaxIter int
	// MaxEval stops the solver after at least this many objective
	// evaluations have been performed.
	MaxEval int
	// MaxNoImprove stops the solver after this many successive iterations
	// without improvement of the best point.
	MaxNoImprove int

	niter     int
	neval     int
	noimprove int
	best      Point
	err       error
}

// Best returns the best point found so far.
func (s *Solver) Best() Point { return s.best }

func (s *Solver) Niter() int { return s.niter }

func (s *Solver) Neval() int { return s.neval }

// Err returns the error that stopped the solver, if any.
func (s *Solver) Err() error { return s.err }

// Next runs a single iteration and reports whether the solver can continue.
// It returns false once a termination condition is met or an iteration
// fails; check Err after the loop.
func (s *Solver) Next() bool {
	if s.err != nil {
		return false
	}
	if s.niter == 0 {
		s.best = Point{Val: math.Inf(1)}
	}

	best, n, err := s.Method.Iterate(s.Obj, s.Mesh)
	s.niter++
	s.neval += n
	if err != nil {
		s.err = err
		return false
	}

	if best.Val < s.best.Val {
		s.best = best
		s.noimprove = 0
	} else {
		s.noimprove++
	}

	if s.MaxIter > 0 && s.niter >= s.MaxIter {
		return false
	}
	if s.MaxEval > 0 && s.neval >= s.MaxEval {
		return false
	}
	if s.MaxNoImprove > 0 && s.noimprove >= s.MaxNoImprove {
		return false
	}
	return true
}

// Run iterates until a termination condition is met.  Cancellation is
// cooperative and checked once per iteration boundary.
func (s *Solver) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !s.Next() {
			break
		}
	}
	return s.err
}
