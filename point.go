package whaleopt

import (
	"crypto/sha1"
	"encoding/binary"
	"math"

	"whaleopt/mesh"
)

// Point is an immutable candidate solution: a position in the search space
// together with its objective value.  Lower values are better.
type Point struct {
	pos []float64
	Val float64
}

func NewPoint(pos []float64, val float64) Point {
	cpos := make([]float64, len(pos))
	copy(cpos, pos)
	return Point{pos: cpos, Val: val}
}

func (p Point) At(i int) float64 { return p.pos[i] }

func (p Point) Len() int { return len(p.pos) }

func (p Point) Pos() []float64 {
	pos := make([]float64, len(p.pos))
	copy(pos, p.pos)
	return pos
}

// Nearest returns a new point with p's position projected onto mesh m.  The
// value of the returned point is set to positive infinity since the
// projected position has not been evaluated.
func Nearest(p Point, m mesh.Mesh) Point {
	return NewPoint(m.Nearest(p.Pos()), math.Inf(1))
}

func hashPoint(p Point) [sha1.Size]byte {
	data := make([]byte, p.Len()*8)
	for i := 0; i < p.Len(); i++ {
		binary.BigEndian.PutUint64(data[i*8:], math.Float64bits(p.At(i)))
	}
	return sha1.Sum(data)
}
