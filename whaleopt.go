package whaleopt

import (
	"crypto/sha1"
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"whaleopt/mesh"
)

// Method runs single iterations of an optimization algorithm.  Solver drives
// a Method until one of its termination conditions is met.
type Method interface {
	// Iterate runs a single iteration of a solver and reports the number of
	// objective evaluations n and the best point.
	Iterate(obj Objectiver, m mesh.Mesh) (best Point, n int, err error)

	// AddPoint informs the method of a known good point (e.g. from a
	// previous run) that it may use to seed or improve its state.
	AddPoint(p Point)
}

type Evaler interface {
	// Eval evaluates each point using obj and returns the values and number
	// of objective evaluations n.  Unevaluated points should not be returned
	// in the results slice.
	Eval(obj Objectiver, points ...Point) (results []Point, n int, err error)
}

type Objectiver interface {
	// Objective evaluates the variables in v and returns the objective
	// function value.  The objective function must be framed so that lower
	// values are better.  If the evaluation fails, positive infinity should
	// be returned along with an error.
	Objective(v []float64) (float64, error)
}

// Func adapts a plain objective function to the Objectiver interface.
type Func func([]float64) float64

func (f Func) Objective(v []float64) (float64, error) { return f(v), nil }

// SerialEvaler evaluates points sequentially in the order given.
type SerialEvaler struct {
	ContinueOnErr bool
}

func (ev SerialEvaler) Eval(obj Objectiver, points ...Point) (results []Point, n int, err error) {
	results = make([]Point, 0, len(points))
	for i, p := range points {
		val, err := obj.Objective(p.Pos())
		results = append(results, NewPoint(p.Pos(), val))
		if err != nil && !ev.ContinueOnErr {
			return results, len(results), &EvalError{Index: i, Err: err}
		}
	}
	return results, len(results), nil
}

// ParallelEvaler evaluates points concurrently on up to NumWorkers
// goroutines (NumCPU if zero).  Each worker owns its assigned point slots;
// results are collected per index so evaluation order never affects the
// outcome.  The first failed evaluation (by point index) is reported.
type ParallelEvaler struct {
	NumWorkers int
}

func (ev ParallelEvaler) Eval(obj Objectiver, points ...Point) (results []Point, n int, err error) {
	nw := ev.NumWorkers
	if nw <= 0 {
		nw = runtime.NumCPU()
	}

	results = make([]Point, len(points))
	errs := make([]error, len(points))

	p := pool.New().WithMaxGoroutines(nw)
	for i := range points {
		i := i // per-iteration copy; required for loop-var semantics under go < 1.22
		p.Go(func() {
			val, err := obj.Objective(points[i].Pos())
			results[i] = NewPoint(points[i].Pos(), val)
			errs[i] = err
		})
	}
	p.Wait()

	for i, e := range errs {
		if e != nil {
			return results, len(points), &EvalError{Index: i, Err: e}
		}
	}
	return results, len(points), nil
}

// CacheEvaler memoizes objective values by position, delegating evaluation
// of never-before-seen points to an inner Evaler.
type CacheEvaler struct {
	ev    Evaler
	cache map[[sha1.Size]byte]float64
	// UseCount reports the number of cache hits served.
	UseCount int
}

func NewCacheEvaler(ev Evaler) *CacheEvaler {
	return &CacheEvaler{
		ev:    ev,
		cache: map[[sha1.Size]byte]float64{},
	}
}

func (ev *CacheEvaler) Eval(obj Objectiver, points ...Point) (results []Point, n int, err error) {
	fromnew := make([]int, 0, len(points))
	newp := make([]Point, 0, len(points))
	results = make([]Point, len(points))
	for i, p := range points {
		if val, ok := ev.cache[hashPoint(p)]; ok {
			results[i] = NewPoint(p.Pos(), val)
			ev.UseCount++
		} else {
			fromnew = append(fromnew, i)
			newp = append(newp, p)
		}
	}

	newresults, n, err := ev.ev.Eval(obj, newp...)
	for i, p := range newresults {
		ev.cache[hashPoint(p)] = p.Val
		results[fromnew[i]] = p
	}

	// shrink if an error resulted in fewer new results being returned
	if len(newresults) < len(newp) {
		if len(newresults) == 0 {
			return nil, n, err
		}
		results = results[:fromnew[len(newresults)-1]+1]
	}
	return results, n, err
}

// ObjectivePrinter wraps an Objectiver and prints every evaluation.
type ObjectivePrinter struct {
	Objectiver
	Count int
}

func NewObjectivePrinter(obj Objectiver) *ObjectivePrinter {
	return &ObjectivePrinter{Objectiver: obj}
}

func (op *ObjectivePrinter) Objective(v []float64) (float64, error) {
	val, err := op.Objectiver.Objective(v)

	op.Count++
	fmt.Print(op.Count, " ")
	for _, x := range v {
		fmt.Print(x, " ")
	}
	fmt.Println("    ", val)

	return val, err
}
