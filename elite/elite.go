// Package elite maintains a fixed-capacity archive of the best points seen
// during an optimization run, ordered by objective value.
package elite

import (
	"math"

	"github.com/petar/GoLLRB/llrb"

	"whaleopt"
)

type item struct {
	whaleopt.Point
	seq int
}

func (p1 item) Less(than llrb.Item) bool {
	p2 := than.(item)
	if p1.Val != p2.Val {
		return p1.Val < p2.Val
	}
	// break value ties by insertion order so distinct points never
	// overwrite each other
	return p1.seq < p2.seq
}

// Archive keeps the n best points added to it, evicting the worst once
// capacity is exceeded.
type Archive struct {
	capacity int
	seq      int
	tree     *llrb.LLRB
}

func New(capacity int) *Archive {
	if capacity <= 0 {
		panic("elite archive capacity must be positive")
	}
	return &Archive{
		capacity: capacity,
		tree:     llrb.New(),
	}
}

// Add offers p to the archive and reports whether it was kept.
func (a *Archive) Add(p whaleopt.Point) bool {
	a.seq++
	a.tree.InsertNoReplace(item{p, a.seq})
	if a.tree.Len() > a.capacity {
		evicted := a.tree.DeleteMax().(item)
		return evicted.seq != a.seq
	}
	return true
}

func (a *Archive) Len() int { return a.tree.Len() }

func (a *Archive) Cap() int { return a.capacity }

// Best returns the lowest-valued archived point, or a +infinity point if the
// archive is empty.
func (a *Archive) Best() whaleopt.Point {
	if a.tree.Len() == 0 {
		return whaleopt.Point{Val: math.Inf(1)}
	}
	return a.tree.Min().(item).Point
}

// Worst returns the highest-valued archived point, or a +infinity point if
// the archive is empty.
func (a *Archive) Worst() whaleopt.Point {
	if a.tree.Len() == 0 {
		return whaleopt.Point{Val: math.Inf(1)}
	}
	return a.tree.Max().(item).Point
}

// Points returns the archived points in ascending value order.
func (a *Archive) Points() []whaleopt.Point {
	points := make([]whaleopt.Point, 0, a.tree.Len())
	if a.tree.Len() == 0 {
		return points
	}
	a.tree.AscendGreaterOrEqual(a.tree.Min(), func(i llrb.Item) bool {
		points = append(points, i.(item).Point)
		return true
	})
	return points
}
