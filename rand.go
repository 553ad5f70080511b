package whaleopt

import "math/rand"

// Rand is the package-wide random source used by components that are not
// given their own generator.  Replace or reseed it (e.g. via Seed) before
// building populations to get reproducible runs.
var Rand = rand.New(rand.NewSource(1))

// Seed resets the package-wide random source to a deterministic stream for
// the given seed.
func Seed(seed int64) {
	Rand = rand.New(rand.NewSource(seed))
}

// RandFloat returns a uniform random number in [0, 1) from Rand.
func RandFloat() float64 { return Rand.Float64() }

// RandNorm returns a standard normal random number from Rand.
func RandNorm() float64 { return Rand.NormFloat64() }
