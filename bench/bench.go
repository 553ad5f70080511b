// Package bench provides tools for testing solvers against benchmark
// optimization functions from
// http://en.wikipedia.org/wiki/Test_functions_for_optimization.
package bench

import (
	"context"
	"fmt"
	"math"
	"testing"

	"whaleopt"
)

var (
	sin  = math.Sin
	cos  = math.Cos
	abs  = math.Abs
	exp  = math.Exp
	sqrt = math.Sqrt
)

// Basic contains cheap, low-dimension functions suitable for quick tests.
var Basic = []Func{
	Sphere{NDim: 2},
	Ackley{},
	Schaffer2{},
	Styblinski{NDim: 2},
}

var AllFuncs = []Func{
	Sphere{NDim: 2},
	Sphere{NDim: 10},
	Ackley{},
	CrossTray{},
	Eggholder{},
	HolderTable{},
	Schaffer2{},
	Styblinski{NDim: 1},
	Styblinski{NDim: 10},
	Styblinski{NDim: 100},
	Rosenbrock{NDim: 2},
	Rosenbrock{NDim: 10},
	Rosenbrock{NDim: 100},
}

type Func interface {
	Eval(v []float64) float64
	Bounds() (low, up []float64)
	Optima() []whaleopt.Point
	Name() string
}

// Sphere is the sum of squared coordinates, minimized at the origin.
type Sphere struct {
	NDim int
}

func (fn Sphere) Name() string { return fmt.Sprintf("Sphere_%vD", fn.NDim) }

func (fn Sphere) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	tot := 0.0
	for _, x := range v {
		tot += x * x
	}
	return tot
}

func (fn Sphere) Bounds() (low, up []float64) {
	return whaleopt.ScalarBounds(-5, 5, fn.NDim)
}

func (fn Sphere) Optima() []whaleopt.Point {
	return []whaleopt.Point{
		whaleopt.NewPoint(make([]float64, fn.NDim), 0),
	}
}

type Ackley struct{}

func (fn Ackley) Name() string { return "Ackley" }

func (fn Ackley) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	x := v[0]
	y := v[1]
	return -20*math.Exp(-0.2*math.Sqrt(0.5*(x*x+y*y))) -
		math.Exp(0.5*(math.Cos(2*math.Pi*x)+math.Cos(2*math.Pi*y))) +
		20 + math.E
}

func (fn Ackley) Bounds() (low, up []float64) {
	return []float64{-5, -5}, []float64{5, 5}
}

func (fn Ackley) Optima() []whaleopt.Point {
	return []whaleopt.Point{
		whaleopt.NewPoint([]float64{0, 0}, 0),
	}
}

type CrossTray struct{}

func (fn CrossTray) Name() string { return "CrossTray" }

func (fn CrossTray) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	x := v[0]
	y := v[1]
	return -.0001 * math.Pow(abs(sin(x)*sin(y)*exp(abs(100-sqrt(x*x+y*y)/math.Pi)))+1, 0.1)
}

func (fn CrossTray) Bounds() (low, up []float64) {
	return []float64{-10, -10}, []float64{10, 10}
}

func (fn CrossTray) Optima() []whaleopt.Point {
	return []whaleopt.Point{
		whaleopt.NewPoint([]float64{1.34941, -1.34941}, -2.06261),
		whaleopt.NewPoint([]float64{1.34941, 1.34941}, -2.06261),
		whaleopt.NewPoint([]float64{-1.34941, 1.34941}, -2.06261),
		whaleopt.NewPoint([]float64{-1.34941, -1.34941}, -2.06261),
	}
}

type Eggholder struct{}

func (fn Eggholder) Name() string { return "Eggholder" }

func (fn Eggholder) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	x := v[0]
	y := v[1]
	return -(y+47)*sin(sqrt(abs(y+x/2+47))) - x*sin(sqrt(abs(x-(y+47))))
}

func (fn Eggholder) Bounds() (low, up []float64) {
	return []float64{-512, -512}, []float64{512, 512}
}

func (fn Eggholder) Optima() []whaleopt.Point {
	return []whaleopt.Point{
		whaleopt.NewPoint([]float64{512, 404.2319}, -959.6407),
	}
}

type HolderTable struct{}

func (fn HolderTable) Name() string { return "HolderTable" }

func (fn HolderTable) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	x := v[0]
	y := v[1]
	return -abs(sin(x) * cos(y) * exp(abs(1-sqrt(x*x+y*y)/math.Pi)))
}

func (fn HolderTable) Bounds() (low, up []float64) {
	return []float64{-10, -10}, []float64{10, 10}
}

func (fn HolderTable) Optima() []whaleopt.Point {
	return []whaleopt.Point{
		whaleopt.NewPoint([]float64{8.05502, 9.66459}, -19.2085),
		whaleopt.NewPoint([]float64{-8.05502, 9.66459}, -19.2085),
		whaleopt.NewPoint([]float64{8.05502, -9.66459}, -19.2085),
		whaleopt.NewPoint([]float64{-8.05502, -9.66459}, -19.2085),
	}
}

type Schaffer2 struct{}

func (fn Schaffer2) Name() string { return "Schaffer2" }

func (fn Schaffer2) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	x := v[0]
	y := v[1]
	return 0.5 + (math.Pow(sin(x*x-y*y), 2)-0.5)/math.Pow(1+.0001*(x*x+y*y), 2)
}

func (fn Schaffer2) Bounds() (low, up []float64) {
	return []float64{-100, -100}, []float64{100, 100}
}

func (fn Schaffer2) Optima() []whaleopt.Point {
	return []whaleopt.Point{
		whaleopt.NewPoint([]float64{0, 0}, 0),
	}
}

type Styblinski struct {
	NDim int
}

func (fn Styblinski) Name() string { return fmt.Sprintf("Styblinski_%vD", fn.NDim) }

func (fn Styblinski) Eval(x []float64) float64 {
	if !InsideBounds(x, fn) {
		return math.Inf(1)
	}

	tot := 0.0
	for _, v := range x {
		tot += math.Pow(v, 4) - 16*math.Pow(v, 2) + 5*v
	}
	return tot / 2
}

func (fn Styblinski) Bounds() (low, up []float64) {
	return whaleopt.ScalarBounds(-5, 5, fn.NDim)
}

func (fn Styblinski) Optima() []whaleopt.Point {
	pos := make([]float64, fn.NDim)
	for i := range pos {
		pos[i] = -2.903534
	}
	return []whaleopt.Point{
		whaleopt.NewPoint(pos, -39.16599*float64(fn.NDim)),
	}
}

type Rosenbrock struct {
	NDim int
}

func (fn Rosenbrock) Name() string { return fmt.Sprintf("Rosenbrock_%vD", fn.NDim) }

func (fn Rosenbrock) Eval(x []float64) float64 {
	if !InsideBounds(x, fn) {
		return math.Inf(1)
	}

	tot := 0.0
	for i := 0; i < fn.NDim-1; i++ {
		tot += 100*math.Pow(x[i+1]-x[i]*x[i], 2) + math.Pow(x[i]-1, 2)
	}
	return tot
}

func (fn Rosenbrock) Bounds() (low, up []float64) {
	return whaleopt.ScalarBounds(-1000, 1000, fn.NDim)
}

func (fn Rosenbrock) Optima() []whaleopt.Point {
	pos := make([]float64, fn.NDim)
	for i := range pos {
		pos[i] = 1
	}
	return []whaleopt.Point{
		whaleopt.NewPoint(pos, 0),
	}
}

// Benchmark runs the solver to completion on fn and logs how close it got to
// the known optimum.  It fails the test only if the run errors; benchmark
// functions are hard and solvers are not expected to crack all of them.
func Benchmark(t *testing.T, s *whaleopt.Solver, fn Func) {
	optimum := fn.Optima()[0].Val

	if err := s.Run(context.Background()); err != nil {
		t.Errorf("[%v] run failed: %v", fn.Name(), err)
		return
	}

	t.Logf("[%v] %v iters, %v evals: want %v, got %v", fn.Name(), s.Niter(), s.Neval(), optimum, s.Best().Val)
}

func InsideBounds(p []float64, fn Func) bool {
	low, up := fn.Bounds()
	for i := range p {
		if p[i] < low[i] || p[i] > up[i] {
			return false
		}
	}
	return true
}
