package mesh

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestInfiniteContinuous(t *testing.T) {
	m := &Infinite{Step: 0}
	p := []float64{1.3, -2.7, 0.01}
	got := m.Nearest(p)
	for i := range p {
		if got[i] != p[i] {
			t.Errorf("continuous mesh moved coordinate %v: want %v, got %v", i, p[i], got[i])
		}
	}

	got[0] = 99
	if p[0] == 99 {
		t.Errorf("continuous mesh aliased the input slice")
	}
}

func TestInfiniteSnap(t *testing.T) {
	var tests = []struct {
		step float64
		p    []float64
		want []float64
	}{
		{1, []float64{0.4, 0.6}, []float64{0, 1}},
		{1, []float64{-0.4, -0.6}, []float64{0, -1}},
		{0.5, []float64{1.2, -1.2}, []float64{1, -1}},
		{2, []float64{2.9, 3.1}, []float64{2, 4}},
	}

	for _, test := range tests {
		m := &Infinite{Step: test.step}
		got := m.Nearest(test.p)
		for i := range test.want {
			if math.Abs(got[i]-test.want[i]) > 1e-12 {
				t.Errorf("step %v, p %v: want %v, got %v", test.step, test.p, test.want, got)
				break
			}
		}
	}
}

func TestInfiniteOrigin(t *testing.T) {
	m := &Infinite{Step: 1}
	m.SetOrigin([]float64{0.5, 0.5})

	got := m.Nearest([]float64{0.9, 1.1})
	want := []float64{0.5, 1.5}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("want %v, got %v", want, got)
			break
		}
	}
}

func TestInfiniteBasis(t *testing.T) {
	// identity basis must behave exactly like no basis
	m := &Infinite{Step: 0.5, Basis: mat.NewDense(2, 2, []float64{1, 0, 0, 1})}
	plain := &Infinite{Step: 0.5}

	p := []float64{1.3, -2.7}
	got := m.Nearest(p)
	want := plain.Nearest(p)
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("identity basis: want %v, got %v", want, got)
			break
		}
	}
}

func TestBoundedClamp(t *testing.T) {
	m := NewBounded(&Infinite{Step: 0}, []float64{-1, -1}, []float64{1, 1})

	var tests = []struct {
		p    []float64
		want []float64
	}{
		{[]float64{0.5, -0.5}, []float64{0.5, -0.5}},
		{[]float64{2, -2}, []float64{1, -1}},
		{[]float64{-7, 0}, []float64{-1, 0}},
	}

	for _, test := range tests {
		got := m.Nearest(test.p)
		for i := range test.want {
			if got[i] != test.want[i] {
				t.Errorf("p %v: want %v, got %v", test.p, test.want, got)
				break
			}
		}
	}
}
