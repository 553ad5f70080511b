package fraud

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"

	"whaleopt"
	"whaleopt/mesh"
	"whaleopt/woa"
)

// TuneConfig controls a classifier tuning run.  Zero values take the
// defaults noted per field.
type TuneConfig struct {
	Agents     int // population size, default 30
	MaxIter    int // iteration budget, default 200
	Chaos      woa.ChaosMode
	ChaosRate  float64 // default woa.DefaultChaosRate
	ChaosBlend float64 // default woa.DefaultChaosBlend
	TestFrac   float64 // held-out fraction, default 0.25
	Threshold  float64 // classification threshold, default 0.5
	Workers    int     // parallel fitness workers, 0 = serial
	Elites     int     // top-k parameter sets to keep, 0 = none
	DB         *sql.DB // per-iteration run logging, may be nil
}

// TuneResult reports the tuned classifier and its held-out performance.
type TuneResult struct {
	Model  *Logistic
	Best   whaleopt.Point
	Test   Confusion
	AUC    float64
	TPR    []float64
	FPR    []float64
	Elites []whaleopt.Point
	Niter  int
	Neval  int
}

// Tune runs the whole harness: split d into train/test, min-max scale with a
// train-fitted scaler, hand the training cross-entropy loss to a whale
// optimizer as an opaque objective, and score the best-found parameter
// vector on the held-out split.
func Tune(ctx context.Context, d *Dataset, rng *rand.Rand, cfg TuneConfig) (*TuneResult, error) {
	if d.Len() == 0 {
		return nil, fmt.Errorf("empty dataset")
	}
	if cfg.Agents == 0 {
		cfg.Agents = 30
	}
	if cfg.MaxIter == 0 {
		cfg.MaxIter = 200
	}
	if cfg.TestFrac == 0 {
		cfg.TestFrac = 0.25
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = 0.5
	}
	if cfg.ChaosRate == 0 {
		cfg.ChaosRate = woa.DefaultChaosRate
	}
	if cfg.ChaosBlend == 0 {
		cfg.ChaosBlend = woa.DefaultChaosBlend
	}

	train, test := d.Split(cfg.TestFrac, rng)
	if train.Len() == 0 || test.Len() == 0 {
		return nil, fmt.Errorf("split produced an empty subset (%v train, %v test rows)", train.Len(), test.Len())
	}
	scaler := FitScaler(train)
	train = scaler.Transform(train)
	test = scaler.Transform(test)

	low, up := ParamBounds(train.Dim())
	pop := woa.NewPopulationRand(rng, cfg.Agents, low, up)

	opts := []woa.Option{
		woa.MaxIter(cfg.MaxIter),
		woa.Rng(rng),
		woa.Chaos(cfg.Chaos),
		woa.ChaosRate(cfg.ChaosRate),
		woa.ChaosBlend(cfg.ChaosBlend),
	}
	if cfg.Workers > 0 {
		opts = append(opts, woa.Evaler(whaleopt.ParallelEvaler{NumWorkers: cfg.Workers}))
	}
	if cfg.Elites > 0 {
		opts = append(opts, woa.KeepElites(cfg.Elites))
	}
	if cfg.DB != nil {
		opts = append(opts, woa.DB(cfg.DB))
	}

	it, err := woa.New(pop, low, up, opts...)
	if err != nil {
		return nil, err
	}

	solv := &whaleopt.Solver{
		Method:  it,
		Obj:     Fitness(train),
		Mesh:    mesh.NewBounded(&mesh.Infinite{Step: 0}, low, up),
		MaxIter: cfg.MaxIter,
	}
	if err := solv.Run(ctx); err != nil {
		return nil, err
	}

	model, err := NewLogistic(solv.Best().Pos(), cfg.Threshold)
	if err != nil {
		return nil, err
	}

	res := &TuneResult{
		Model: model,
		Best:  solv.Best(),
		Test:  Evaluate(model, test),
		Niter: solv.Niter(),
		Neval: solv.Neval(),
	}
	res.TPR, res.FPR, res.AUC = ROC(model, test)
	if it.Elites != nil {
		res.Elites = it.Elites.Points()
	}
	return res, nil
}
