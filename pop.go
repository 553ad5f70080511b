package whaleopt

import (
	"math"
	"math/rand"
)

// RandPop generates n randomly positioned points in the boxed bounds defined
// by low and up.  The number of dimensions is equal to len(low).  Returned
// points have their values initialized to +infinity.  Rand is used for
// random numbers.
func RandPop(n int, low, up []float64) []Point {
	return RandPopRng(Rand, n, low, up)
}

// RandPopRng is RandPop with an explicit random source.
func RandPopRng(rng *rand.Rand, n int, low, up []float64) []Point {
	if len(low) != len(up) {
		panic("low and up vectors are not same length")
	}

	ndims := len(low)

	points := make([]Point, n)
	for i := 0; i < n; i++ {
		pos := make([]float64, ndims)
		for j := range pos {
			pos[j] = low[j] + rng.Float64()*(up[j]-low[j])
		}
		points[i] = NewPoint(pos, math.Inf(1))
	}
	return points
}

// ScalarBounds broadcasts scalar box bounds to ndim dimensions.
func ScalarBounds(lb, ub float64, ndim int) (low, up []float64) {
	low = make([]float64, ndim)
	up = make([]float64, ndim)
	for i := range low {
		low[i] = lb
		up[i] = ub
	}
	return low, up
}
