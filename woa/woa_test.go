package woa

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"whaleopt"
	"whaleopt/mesh"
)

func sphere(v []float64) float64 {
	tot := 0.0
	for _, x := range v {
		tot += x * x
	}
	return tot
}

func newSphereIter(t *testing.T, seed int64, n, maxiter int, opts ...Option) *Iterator {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	low, up := whaleopt.ScalarBounds(-5, 5, 2)
	pop := NewPopulationRand(rng, n, low, up)
	opts = append([]Option{MaxIter(maxiter), Rng(rng)}, opts...)
	it, err := New(pop, low, up, opts...)
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}
	return it
}

func TestNewInvalidConfig(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	low, up := whaleopt.ScalarBounds(-5, 5, 2)
	pop := NewPopulationRand(rng, 4, low, up)

	var tests = []struct {
		name string
		pop  Population
		low  []float64
		up   []float64
		opts []Option
	}{
		{"empty population", Population{}, low, up, nil},
		{"zero dims", pop, nil, nil, nil},
		{"mismatched bounds", pop, low, up[:1], nil},
		{"inverted bounds", pop, []float64{5, -5}, []float64{-5, 5}, nil},
		{"agent dim mismatch", pop, []float64{-5, -5, -5}, []float64{5, 5, 5}, nil},
		{"zero budget", pop, low, up, []Option{MaxIter(0)}},
		{"negative budget", pop, low, up, []Option{MaxIter(-3)}},
		{"bad chaos rate", pop, low, up, []Option{ChaosRate(1.5)}},
		{"bad chaos blend", pop, low, up, []Option{ChaosBlend(-0.1)}},
	}

	for _, test := range tests {
		_, err := New(test.pop, test.low, test.up, test.opts...)
		if err == nil {
			t.Errorf("%v: expected construction error, got none", test.name)
		} else if !errors.Is(err, whaleopt.ErrInvalidConfig) {
			t.Errorf("%v: error %q does not wrap ErrInvalidConfig", test.name, err)
		}
	}
}

func TestInitialPopulationBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	low, up := whaleopt.ScalarBounds(-5, 5, 3)
	pop := NewPopulationRand(rng, 50, low, up)

	for _, a := range pop {
		if !math.IsInf(a.Val, 1) {
			t.Errorf("agent %v value initialized to %v instead of +inf", a.Id, a.Val)
		}
		for j := 0; j < a.Len(); j++ {
			if a.At(j) < low[j] || a.At(j) > up[j] {
				t.Errorf("agent %v coordinate %v = %v outside [%v, %v]", a.Id, j, a.At(j), low[j], up[j])
			}
		}
	}
}

func TestDecaySchedule(t *testing.T) {
	it := newSphereIter(t, 1, 5, 20)

	if a := it.decay(); a != 2 {
		t.Errorf("decay at t=0: want 2, got %v", a)
	}
	for it.count = 0; it.count < it.MaxIter; it.count++ {
		if a := it.decay(); a <= 0 {
			t.Errorf("decay at t=%v is %v, want > 0", it.count, a)
		}
	}
	it.count = it.MaxIter - 1
	if a := it.decay(); math.Abs(a-2.0/float64(it.MaxIter)) > 1e-12 {
		t.Errorf("decay at final iteration: want %v, got %v", 2.0/float64(it.MaxIter), a)
	}
}

func TestIncumbentMonotonic(t *testing.T) {
	it := newSphereIter(t, 7, 10, 30)
	obj := whaleopt.Func(sphere)

	prev := math.Inf(1)
	for i := 0; i < 30; i++ {
		best, _, err := it.Iterate(obj, nil)
		if err != nil {
			t.Fatalf("iteration %v failed: %v", i, err)
		}
		if best.Val > prev {
			t.Errorf("incumbent worsened at iteration %v: %v -> %v", i, prev, best.Val)
		}
		prev = best.Val
	}
}

func TestBestConsistency(t *testing.T) {
	it := newSphereIter(t, 3, 10, 20)
	obj := whaleopt.Func(sphere)

	for i := 0; i < 20; i++ {
		if _, _, err := it.Iterate(obj, nil); err != nil {
			t.Fatalf("iteration %v failed: %v", i, err)
		}
	}

	best := it.Best()
	if got := sphere(best.Pos()); math.Abs(got-best.Val) > 1e-12 {
		t.Errorf("re-evaluating best vector gives %v, stored value is %v", got, best.Val)
	}
}

func TestDeterminism(t *testing.T) {
	run := func() ([]whaleopt.Point, whaleopt.Point) {
		it := newSphereIter(t, 99, 8, 15)
		obj := whaleopt.Func(sphere)
		for i := 0; i < 15; i++ {
			if _, _, err := it.Iterate(obj, nil); err != nil {
				t.Fatalf("iteration %v failed: %v", i, err)
			}
		}
		return it.Pop.Points(), it.Best()
	}

	points1, best1 := run()
	points2, best2 := run()

	if best1.Val != best2.Val {
		t.Errorf("seeded runs disagree on best value: %v vs %v", best1.Val, best2.Val)
	}
	for j := 0; j < best1.Len(); j++ {
		if best1.At(j) != best2.At(j) {
			t.Errorf("seeded runs disagree on best coordinate %v: %v vs %v", j, best1.At(j), best2.At(j))
		}
	}
	for i := range points1 {
		for j := 0; j < points1[i].Len(); j++ {
			if points1[i].At(j) != points2[i].At(j) {
				t.Errorf("seeded runs disagree on agent %v coordinate %v", i, j)
			}
		}
	}
}

type failObj struct {
	count  int
	failAt int
}

func (o *failObj) Objective(v []float64) (float64, error) {
	o.count++
	if o.count == o.failAt {
		return math.Inf(1), errors.New("fake evaluation failure")
	}
	return sphere(v), nil
}

func TestEvalFailurePropagation(t *testing.T) {
	it := newSphereIter(t, 5, 6, 10)
	obj := whaleopt.Func(sphere)

	// seed the incumbent with two clean iterations
	for i := 0; i < 2; i++ {
		if _, _, err := it.Iterate(obj, nil); err != nil {
			t.Fatalf("setup iteration failed: %v", err)
		}
	}
	before := it.Best()

	_, _, err := it.Iterate(&failObj{failAt: 1}, nil)
	if err == nil {
		t.Fatalf("expected evaluation failure to propagate")
	}
	var everr *whaleopt.EvalError
	if !errors.As(err, &everr) {
		t.Errorf("error %q is not an EvalError", err)
	}

	after := it.Best()
	if after.Val != before.Val {
		t.Errorf("failed evaluation corrupted incumbent value: %v -> %v", before.Val, after.Val)
	}
	for j := 0; j < before.Len(); j++ {
		if after.At(j) != before.At(j) {
			t.Errorf("failed evaluation corrupted incumbent coordinate %v", j)
		}
	}
}

func TestEvaluatePopulationIsPure(t *testing.T) {
	it := newSphereIter(t, 11, 5, 10)

	before := it.Pop.Points()
	if _, err := it.EvaluatePopulation(whaleopt.Func(sphere)); err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	for i, a := range it.Pop {
		for j := 0; j < a.Len(); j++ {
			if a.At(j) != before[i].At(j) {
				t.Errorf("measurement pass moved agent %v", i)
				break
			}
		}
		if math.IsInf(a.Val, 1) {
			t.Errorf("agent %v value not recorded", i)
		}
	}
}

// With the faithful replace-all chaos policy every iteration is a fresh
// Gaussian-shaped sample, so progress versus the initial uniform population
// comes purely from extra sampling volume.
func TestSphereProgressReplaceAll(t *testing.T) {
	it := newSphereIter(t, 13, 10, 200, Chaos(ChaosReplaceAll))
	obj := whaleopt.Func(sphere)

	if _, err := it.EvaluatePopulation(obj); err != nil {
		t.Fatalf("initial evaluation failed: %v", err)
	}
	initial := it.Best().Val

	solv := &whaleopt.Solver{Method: it, Obj: obj, MaxIter: 200}
	for solv.Next() {
	}
	if solv.Err() != nil {
		t.Fatalf("run failed: %v", solv.Err())
	}

	t.Logf("[INFO] initial best %v, final best %v after %v evals", initial, solv.Best().Val, solv.Neval())
	if solv.Best().Val >= initial {
		t.Errorf("no progress over initial population: initial %v, final %v", initial, solv.Best().Val)
	}
}

// Subset chaos keeps most of the whale moves, so the swarm contracts onto
// the optimum even with a small population and few iterations.
func TestSphereProgressSubset(t *testing.T) {
	it := newSphereIter(t, 17, 10, 20, Chaos(ChaosPerturbSubset))
	obj := whaleopt.Func(sphere)

	if _, err := it.EvaluatePopulation(obj); err != nil {
		t.Fatalf("initial evaluation failed: %v", err)
	}
	initial := it.Best().Val

	solv := &whaleopt.Solver{Method: it, Obj: obj, MaxIter: 20}
	for solv.Next() {
	}
	if solv.Err() != nil {
		t.Fatalf("run failed: %v", solv.Err())
	}

	t.Logf("[INFO] initial best %v, final best %v after %v evals", initial, solv.Best().Val, solv.Neval())
	if solv.Best().Val >= initial {
		t.Errorf("no progress over initial population: initial %v, final %v", initial, solv.Best().Val)
	}
}

func TestBoundedMeshClamps(t *testing.T) {
	low, up := whaleopt.ScalarBounds(-5, 5, 2)
	it := newSphereIter(t, 23, 10, 10)
	m := mesh.NewBounded(&mesh.Infinite{Step: 0}, low, up)

	obj := whaleopt.Func(sphere)
	for i := 0; i < 10; i++ {
		if _, _, err := it.Iterate(obj, m); err != nil {
			t.Fatalf("iteration %v failed: %v", i, err)
		}
		for _, a := range it.Pop {
			for j := 0; j < a.Len(); j++ {
				if a.At(j) < low[j] || a.At(j) > up[j] {
					t.Errorf("iteration %v: agent %v coordinate %v = %v escaped bounds", i, a.Id, j, a.At(j))
				}
			}
		}
	}
}

func TestChaosModeString(t *testing.T) {
	var tests = []struct {
		mode ChaosMode
		want string
	}{
		{ChaosReplaceAll, "replace"},
		{ChaosPerturbSubset, "subset"},
		{ChaosBlendAdditive, "blend"},
	}
	for _, test := range tests {
		if got := test.mode.String(); got != test.want {
			t.Errorf("mode %v: want %q, got %q", int(test.mode), test.want, got)
		}
	}
}
