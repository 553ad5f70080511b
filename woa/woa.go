// Package woa implements a whale optimization algorithm (WOA) variant with a
// Gaussian chaotic diversification step.  The algorithm maintains a
// population of agents inside box bounds, moves each agent toward the
// incumbent best solution with a linearly decaying step coefficient, then
// injects chaotic diversity by resampling positions from a Gaussian map
// scaled into the bounds.
package woa

import (
	"database/sql"
	"fmt"
	"math"
	"math/rand"

	"whaleopt"
	"whaleopt/elite"
	"whaleopt/mesh"
)

// ChaosMode selects how the Gaussian chaotic map is applied after the whale
// movement step each iteration.
type ChaosMode int

const (
	// ChaosReplaceAll resamples every agent from the chaotic map,
	// discarding the moved positions.  This reproduces the reference
	// behavior exactly: movement influences nothing but the incumbent
	// bookkeeping.
	ChaosReplaceAll ChaosMode = iota
	// ChaosPerturbSubset resamples each agent with probability Rate,
	// leaving the rest at their moved positions.
	ChaosPerturbSubset
	// ChaosBlendAdditive blends each moved position with a chaotic sample
	// using weight Blend.
	ChaosBlendAdditive
)

func (m ChaosMode) String() string {
	switch m {
	case ChaosReplaceAll:
		return "replace"
	case ChaosPerturbSubset:
		return "subset"
	case ChaosBlendAdditive:
		return "blend"
	}
	return fmt.Sprintf("ChaosMode(%v)", int(m))
}

const (
	// DefaultMaxIter is the decay horizon used when the MaxIter option is
	// not given.
	DefaultMaxIter = 500
	// DefaultChaosRate is the per-agent resample probability for
	// ChaosPerturbSubset.
	DefaultChaosRate = 0.2
	// DefaultChaosBlend is the chaotic-sample weight for
	// ChaosBlendAdditive.
	DefaultChaosBlend = 0.5
)

// Agent is one candidate solution slot.  The slot index Id is stable across
// iterations even though the position changes every iteration.
type Agent struct {
	Id int
	whaleopt.Point
}

type Population []*Agent

// NewPopulation wraps points into agents with slot ids matching their order.
func NewPopulation(points []whaleopt.Point) Population {
	pop := make(Population, len(points))
	for i, p := range points {
		pop[i] = &Agent{Id: i, Point: p}
	}
	return pop
}

// NewPopulationRand creates a population of n agents positioned uniformly at
// random in the box bounds described by low and up, with values initialized
// to the +infinity "not yet evaluated" sentinel.
func NewPopulationRand(rng *rand.Rand, n int, low, up []float64) Population {
	return NewPopulation(whaleopt.RandPopRng(rng, n, low, up))
}

func (pop Population) Points() []whaleopt.Point {
	points := make([]whaleopt.Point, 0, len(pop))
	for _, a := range pop {
		points = append(points, a.Point)
	}
	return points
}

// Best returns the agent with the lowest current value.
func (pop Population) Best() *Agent {
	if len(pop) == 0 {
		return nil
	}

	best := pop[0]
	for _, a := range pop[1:] {
		if a.Val < best.Val {
			best = a
		}
	}
	return best
}

type Option func(*Iterator)

// MaxIter sets the iteration budget used by the decay schedule.  It should
// match the solver's MaxIter so that the shrinking coefficient reaches its
// minimum on the final iteration.
func MaxIter(n int) Option {
	return func(it *Iterator) {
		it.MaxIter = n
	}
}

func Chaos(mode ChaosMode) Option {
	return func(it *Iterator) {
		it.Mode = mode
	}
}

// ChaosRate sets the per-agent resample probability for ChaosPerturbSubset.
func ChaosRate(p float64) Option {
	return func(it *Iterator) {
		it.Rate = p
	}
}

// ChaosBlend sets the chaotic-sample weight for ChaosBlendAdditive.
func ChaosBlend(w float64) Option {
	return func(it *Iterator) {
		it.Blend = w
	}
}

// Rng sets the random source for movement coefficients and chaotic draws.
// whaleopt.Rand is used if never set.
func Rng(rng *rand.Rand) Option {
	return func(it *Iterator) {
		it.rng = rng
	}
}

// Evaler sets the evaluation strategy for measurement passes (e.g.
// whaleopt.ParallelEvaler to fan objective calls out across workers).
func Evaler(ev whaleopt.Evaler) Option {
	return func(it *Iterator) {
		it.Evaler = ev
	}
}

// DB enables per-iteration logging of agent positions, values, and the
// incumbent to the given database.
func DB(db *sql.DB) Option {
	return func(it *Iterator) {
		it.Db = db
	}
}

// KeepElites archives the n best evaluated points across the run.
func KeepElites(n int) Option {
	return func(it *Iterator) {
		it.Elites = elite.New(n)
	}
}

// Iterator runs whale optimization iterations over a fixed population.  It
// implements whaleopt.Method.
type Iterator struct {
	Pop Population
	// Low and Up are the per-dimension box bounds the chaotic map scales
	// into.
	Low []float64
	Up  []float64
	whaleopt.Evaler
	MaxIter int
	Mode    ChaosMode
	Rate    float64
	Blend   float64
	// Elites, if non-nil, receives every evaluated point.
	Elites *elite.Archive
	Db     *sql.DB

	rng   *rand.Rand
	runid string
	count int
	best  whaleopt.Point
}

// New creates a whale iterator over pop within the box bounds [low, up].
// The incumbent best starts at a zero vector with +infinity value and only
// ever improves.  New returns an error wrapping whaleopt.ErrInvalidConfig
// for an empty population, mismatched or inverted bounds, a non-positive
// iteration budget, or chaos parameters outside [0, 1].
func New(pop Population, low, up []float64, opts ...Option) (*Iterator, error) {
	it := &Iterator{
		Pop:     pop,
		Low:     append([]float64{}, low...),
		Up:      append([]float64{}, up...),
		Evaler:  whaleopt.SerialEvaler{},
		MaxIter: DefaultMaxIter,
		Mode:    ChaosReplaceAll,
		Rate:    DefaultChaosRate,
		Blend:   DefaultChaosBlend,
	}

	for _, opt := range opts {
		opt(it)
	}

	if len(pop) == 0 {
		return nil, fmt.Errorf("%w: population must not be empty", whaleopt.ErrInvalidConfig)
	}
	ndim := len(low)
	if ndim == 0 {
		return nil, fmt.Errorf("%w: search space must have at least one dimension", whaleopt.ErrInvalidConfig)
	}
	if len(up) != ndim {
		return nil, fmt.Errorf("%w: lower bounds have %v dims, upper bounds have %v", whaleopt.ErrInvalidConfig, ndim, len(up))
	}
	for i := range low {
		if low[i] > up[i] {
			return nil, fmt.Errorf("%w: lower bound %v exceeds upper bound in dimension %v", whaleopt.ErrInvalidConfig, low[i], i)
		}
	}
	for _, a := range pop {
		if a.Len() != ndim {
			return nil, fmt.Errorf("%w: agent %v has %v dims, bounds have %v", whaleopt.ErrInvalidConfig, a.Id, a.Len(), ndim)
		}
	}
	if it.MaxIter <= 0 {
		return nil, fmt.Errorf("%w: iteration budget must be positive", whaleopt.ErrInvalidConfig)
	}
	if it.Rate < 0 || it.Rate > 1 {
		return nil, fmt.Errorf("%w: chaos rate %v outside [0, 1]", whaleopt.ErrInvalidConfig, it.Rate)
	}
	if it.Blend < 0 || it.Blend > 1 {
		return nil, fmt.Errorf("%w: chaos blend %v outside [0, 1]", whaleopt.ErrInvalidConfig, it.Blend)
	}

	it.best = whaleopt.NewPoint(make([]float64, ndim), math.Inf(1))
	it.initdb()
	return it, nil
}

// Best returns the incumbent best point seen across the run so far.
func (it *Iterator) Best() whaleopt.Point { return it.best }

// Niter returns the number of completed iterations.
func (it *Iterator) Niter() int { return it.count }

// AddPoint offers a known point to the iterator; the incumbent is replaced
// if the point is strictly better.
func (it *Iterator) AddPoint(p whaleopt.Point) {
	if p.Val < it.best.Val {
		it.best = p
	}
}

// EvaluatePopulation is a pure measurement pass: it evaluates every agent's
// current position in slot order, stores the values, and replaces the
// incumbent with a copy of any strictly better position.  Agent positions
// are never changed.  A failed evaluation aborts the pass; values stored
// before the failure stand and the incumbent reflects only successfully
// evaluated agents.
func (it *Iterator) EvaluatePopulation(obj whaleopt.Objectiver) (neval int, err error) {
	results, n, err := it.Evaler.Eval(obj, it.Pop.Points()...)
	for i := range results {
		it.Pop[i].Point = results[i]
		if results[i].Val < it.best.Val {
			// Point positions are copied on construction, so the
			// incumbent can never alias a mutating agent.
			it.best = results[i]
		}
		if it.Elites != nil {
			it.Elites.Add(results[i])
		}
	}
	return n, err
}

// Iterate runs one iteration: move every agent toward the incumbent using
// the decayed shrinking coefficient, apply the chaotic diversification step,
// project onto m (clamping when m is a mesh.Bounded), and re-evaluate.  On
// the first call the initial population is evaluated before any movement so
// the incumbent is seeded from the uniform random sample.
func (it *Iterator) Iterate(obj whaleopt.Objectiver, m mesh.Mesh) (best whaleopt.Point, neval int, err error) {
	if it.count == 0 {
		n, err := it.EvaluatePopulation(obj)
		neval += n
		if err != nil {
			return it.best, neval, err
		}
	}

	a := it.decay()

	for _, ag := range it.Pop {
		pos := ag.Pos()

		r1 := it.rand().Float64()
		r2 := it.rand().Float64()
		A := 2*a*r1 - a
		C := 2 * r2
		for j := range pos {
			d := math.Abs(C*it.best.At(j) - pos[j])
			pos[j] = it.best.At(j) - A*d
		}

		it.chaos(pos)

		if m != nil {
			pos = m.Nearest(pos)
		}
		ag.Point = whaleopt.NewPoint(pos, math.Inf(1))
	}

	it.count++

	n, err := it.EvaluatePopulation(obj)
	neval += n
	if err != nil {
		return it.best, neval, err
	}

	it.updateDb()
	return it.best, neval, nil
}

// decay returns the encircling coefficient for the current iteration.  It
// shrinks linearly from 2 at t=0 toward (but never reaching) 0 at
// t=MaxIter.
func (it *Iterator) decay() float64 {
	return 2 - float64(it.count)*(2/float64(it.MaxIter))
}

// chaos applies the Gaussian chaotic map to pos in place according to the
// configured mode.  A chaotic sample for dimension j is
// low[j] + (up[j]-low[j])*z with z standard normal; note an extreme z can
// land outside the bounds, so use a mesh.Bounded to clamp when that
// matters.
func (it *Iterator) chaos(pos []float64) {
	switch it.Mode {
	case ChaosReplaceAll:
		for j := range pos {
			pos[j] = it.Low[j] + (it.Up[j]-it.Low[j])*it.rand().NormFloat64()
		}
	case ChaosPerturbSubset:
		if it.rand().Float64() < it.Rate {
			for j := range pos {
				pos[j] = it.Low[j] + (it.Up[j]-it.Low[j])*it.rand().NormFloat64()
			}
		}
	case ChaosBlendAdditive:
		for j := range pos {
			z := it.Low[j] + (it.Up[j]-it.Low[j])*it.rand().NormFloat64()
			pos[j] = (1-it.Blend)*pos[j] + it.Blend*z
		}
	}
}

func (it *Iterator) rand() *rand.Rand {
	if it.rng != nil {
		return it.rng
	}
	return whaleopt.Rand
}
