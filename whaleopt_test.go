package whaleopt

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"
)

const errcount = 3

type ErrObj struct {
	count int
}

func (o *ErrObj) Objective(x []float64) (float64, error) {
	o.count++
	if o.count >= errcount {
		return math.Inf(1), errors.New("fake error")
	}
	return 0, nil
}

func TestSerialEvalerErr(t *testing.T) {
	obj := &ErrObj{}
	ev := SerialEvaler{}

	results, n, err := ev.Eval(obj, Point{}, Point{}, Point{}, Point{}, Point{})
	if len(results) != errcount {
		t.Errorf("returned wrong number of results: expected %v, got %v", errcount, len(results))
	}
	if n != errcount {
		t.Errorf("returned wrong evaluation count: expected %v, got %v", errcount, n)
	}
	if err == nil {
		t.Errorf("did not propagate error through return")
	}

	var everr *EvalError
	if !errors.As(err, &everr) {
		t.Errorf("error %q is not an EvalError", err)
	} else if everr.Index != errcount-1 {
		t.Errorf("EvalError index: expected %v, got %v", errcount-1, everr.Index)
	}
}

func TestSerialEvalerVals(t *testing.T) {
	obj := Func(func(v []float64) float64 { return v[0] * 2 })
	ev := SerialEvaler{}

	points := []Point{
		NewPoint([]float64{1}, math.Inf(1)),
		NewPoint([]float64{2}, math.Inf(1)),
		NewPoint([]float64{3}, math.Inf(1)),
	}
	results, n, err := ev.Eval(obj, points...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != len(points) {
		t.Errorf("expected %v evals, got %v", len(points), n)
	}
	for i, want := range []float64{2, 4, 6} {
		if results[i].Val != want {
			t.Errorf("result %v: expected val %v, got %v", i, want, results[i].Val)
		}
	}
}

func TestParallelEvaler(t *testing.T) {
	obj := Func(func(v []float64) float64 { return v[0] * v[0] })
	ev := ParallelEvaler{NumWorkers: 4}

	n := 100
	points := make([]Point, n)
	for i := range points {
		points[i] = NewPoint([]float64{float64(i)}, math.Inf(1))
	}

	results, neval, err := ev.Eval(obj, points...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if neval != n {
		t.Errorf("expected %v evals, got %v", n, neval)
	}
	for i := range results {
		want := float64(i) * float64(i)
		if results[i].Val != want {
			t.Errorf("result %v: expected val %v, got %v", i, want, results[i].Val)
		}
	}
}

type flakyObj struct {
	calls  int64
	badpos float64
}

func (o *flakyObj) Objective(x []float64) (float64, error) {
	atomic.AddInt64(&o.calls, 1)
	if x[0] == o.badpos {
		return math.Inf(1), errors.New("fake error")
	}
	return x[0], nil
}

func TestParallelEvalerErr(t *testing.T) {
	obj := &flakyObj{badpos: 3}
	ev := ParallelEvaler{NumWorkers: 2}

	points := make([]Point, 6)
	for i := range points {
		points[i] = NewPoint([]float64{float64(i)}, math.Inf(1))
	}

	_, _, err := ev.Eval(obj, points...)
	var everr *EvalError
	if !errors.As(err, &everr) {
		t.Fatalf("expected EvalError, got %v", err)
	}
	if everr.Index != 3 {
		t.Errorf("EvalError index: expected 3, got %v", everr.Index)
	}
}

func TestCacheEvaler(t *testing.T) {
	ncalls := 0
	obj := Func(func(v []float64) float64 {
		ncalls++
		return v[0]
	})
	ev := NewCacheEvaler(SerialEvaler{})

	p := NewPoint([]float64{1.5}, math.Inf(1))
	for i := 0; i < 3; i++ {
		results, _, err := ev.Eval(obj, p)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if results[0].Val != 1.5 {
			t.Errorf("pass %v: expected val 1.5, got %v", i, results[0].Val)
		}
	}

	if ncalls != 1 {
		t.Errorf("expected 1 objective call, got %v", ncalls)
	}
	if ev.UseCount != 2 {
		t.Errorf("expected 2 cache hits, got %v", ev.UseCount)
	}
}

func TestRandPopBounds(t *testing.T) {
	Seed(17)
	low := []float64{-5, 0, 100}
	up := []float64{5, 1, 101}

	points := RandPop(40, low, up)
	if len(points) != 40 {
		t.Fatalf("expected 40 points, got %v", len(points))
	}
	for i, p := range points {
		if !math.IsInf(p.Val, 1) {
			t.Errorf("point %v value initialized to %v instead of +inf", i, p.Val)
		}
		for j := 0; j < p.Len(); j++ {
			if p.At(j) < low[j] || p.At(j) > up[j] {
				t.Errorf("point %v coordinate %v = %v outside [%v, %v]", i, j, p.At(j), low[j], up[j])
			}
		}
	}
}

func TestScalarBounds(t *testing.T) {
	low, up := ScalarBounds(-2, 3, 4)
	if len(low) != 4 || len(up) != 4 {
		t.Fatalf("expected 4 dims, got %v and %v", len(low), len(up))
	}
	for i := range low {
		if low[i] != -2 || up[i] != 3 {
			t.Errorf("dim %v: expected [-2, 3], got [%v, %v]", i, low[i], up[i])
		}
	}
}

func TestPointImmutable(t *testing.T) {
	pos := []float64{1, 2, 3}
	p := NewPoint(pos, 0)

	pos[0] = 99
	if p.At(0) != 1 {
		t.Errorf("point aliased the input slice")
	}

	got := p.Pos()
	got[1] = 99
	if p.At(1) != 2 {
		t.Errorf("point aliased the Pos() return slice")
	}
}
