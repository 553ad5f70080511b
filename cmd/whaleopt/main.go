// Command whaleopt tunes a fraud-detection classifier with the chaotic
// whale optimizer, or exercises the optimizer against a benchmark function.
//
// Usage:
//
//	whaleopt [-config run.yaml] [-db run.sqlite] [-seed N]
//	whaleopt -bench Ackley
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"

	_ "modernc.org/sqlite"

	"whaleopt"
	"whaleopt/bench"
	"whaleopt/fraud"
	"whaleopt/mesh"
	"whaleopt/woa"
)

var (
	configPath = flag.String("config", "", "YAML config file (defaults used if empty)")
	dbPath     = flag.String("db", "", "sqlite file for per-iteration run logging")
	seed       = flag.Int64("seed", 0, "override the configured random seed")
	benchName  = flag.String("bench", "", "run against a named benchmark function instead of tuning")
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("whaleopt: ")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *seed != 0 {
		cfg.Optimizer.Seed = *seed
	}
	rng := rand.New(rand.NewSource(cfg.Optimizer.Seed))

	var db *sql.DB
	if *dbPath != "" {
		db, err = sql.Open("sqlite", *dbPath)
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *benchName != "" {
		if err := runBench(ctx, cfg, rng, db, *benchName); err != nil {
			log.Fatal(err)
		}
		return
	}
	if err := runTune(ctx, cfg, rng, db); err != nil {
		log.Fatal(err)
	}
}

func runTune(ctx context.Context, cfg *Config, rng *rand.Rand, db *sql.DB) error {
	var d *fraud.Dataset
	if cfg.Data.Path != "" {
		f, err := os.Open(cfg.Data.Path)
		if err != nil {
			return err
		}
		defer f.Close()
		d, err = fraud.Load(f)
		if err != nil {
			return err
		}
		fmt.Printf("loaded %v transactions (%v features) from %v\n", d.Len(), d.Dim(), cfg.Data.Path)
	} else {
		d = fraud.Synthetic(cfg.Data.Rows, rng)
		fmt.Printf("generated %v synthetic transactions\n", d.Len())
	}

	mode, err := cfg.ChaosMode()
	if err != nil {
		return err
	}
	res, err := fraud.Tune(ctx, d, rng, fraud.TuneConfig{
		Agents:     cfg.Optimizer.Agents,
		MaxIter:    cfg.Optimizer.MaxIter,
		Chaos:      mode,
		ChaosRate:  cfg.Optimizer.ChaosRate,
		ChaosBlend: cfg.Optimizer.ChaosBlend,
		TestFrac:   cfg.Data.TestFrac,
		Threshold:  cfg.Data.Threshold,
		Workers:    cfg.Optimizer.Workers,
		Elites:     cfg.Optimizer.Elites,
		DB:         db,
	})
	if err != nil {
		return err
	}

	fmt.Printf("\ntuned in %v iterations (%v fitness evaluations)\n", res.Niter, res.Neval)
	fmt.Printf("training loss: %.6f\n", res.Best.Val)
	fmt.Printf("weights: %.4f  bias: %.4f\n", res.Model.Weights, res.Model.Bias)

	c := res.Test
	fmt.Printf("\nheld-out accuracy: %.2f%%  auc: %.4f\n", c.Accuracy()*100, res.AUC)
	fmt.Printf("confusion matrix (fraud positive):\n")
	fmt.Printf("            pred fraud  pred legit\n")
	fmt.Printf("  fraud     %10v  %10v\n", c.TP, c.FN)
	fmt.Printf("  legit     %10v  %10v\n", c.FP, c.TN)

	if len(res.Elites) > 0 {
		fmt.Printf("\ntop %v parameter sets:\n", len(res.Elites))
		for i, p := range res.Elites {
			fmt.Printf("  %v. loss %.6f at %.4f\n", i+1, p.Val, p.Pos())
		}
	}
	return nil
}

func runBench(ctx context.Context, cfg *Config, rng *rand.Rand, db *sql.DB, name string) error {
	var fn bench.Func
	for _, f := range bench.AllFuncs {
		if f.Name() == name {
			fn = f
			break
		}
	}
	if fn == nil {
		names := make([]string, 0, len(bench.AllFuncs))
		for _, f := range bench.AllFuncs {
			names = append(names, f.Name())
		}
		return fmt.Errorf("unknown benchmark %q (have %v)", name, names)
	}

	mode, err := cfg.ChaosMode()
	if err != nil {
		return err
	}

	low, up := fn.Bounds()
	pop := woa.NewPopulationRand(rng, cfg.Optimizer.Agents, low, up)
	opts := []woa.Option{
		woa.MaxIter(cfg.Optimizer.MaxIter),
		woa.Rng(rng),
		woa.Chaos(mode),
		woa.ChaosRate(cfg.Optimizer.ChaosRate),
		woa.ChaosBlend(cfg.Optimizer.ChaosBlend),
	}
	if db != nil {
		opts = append(opts, woa.DB(db))
	}
	it, err := woa.New(pop, low, up, opts...)
	if err != nil {
		return err
	}

	solv := &whaleopt.Solver{
		Method:  it,
		Obj:     whaleopt.Func(fn.Eval),
		Mesh:    mesh.NewBounded(&mesh.Infinite{Step: 0}, low, up),
		MaxIter: cfg.Optimizer.MaxIter,
	}
	if err := solv.Run(ctx); err != nil {
		return err
	}

	optimum := fn.Optima()[0]
	fmt.Printf("%v: %v iterations, %v evaluations\n", fn.Name(), solv.Niter(), solv.Neval())
	fmt.Printf("  best    %.6f at %.4f\n", solv.Best().Val, solv.Best().Pos())
	fmt.Printf("  optimum %.6f at %.4f\n", optimum.Val, optimum.Pos())
	return nil
}
