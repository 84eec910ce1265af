package curve

import (
	"fmt"
	"iter"
	"log"
	"math"
	"time"
)

// Optimizer runs the two-stage exhaustive grid search.
type Optimizer struct {
	Family ModelFamily
	Coarse Lattice
	Fine   Refinement
	Logger *log.Logger // nil disables progress logging
}

// OptimizerOption configures an Optimizer
type OptimizerOption func(*Optimizer)

// WithFamily overrides the fixed model constants
func WithFamily(f ModelFamily) OptimizerOption {
	return func(o *Optimizer) { o.Family = f }
}

// WithCoarse overrides the first-stage lattice
func WithCoarse(l Lattice) OptimizerOption {
	return func(o *Optimizer) { o.Coarse = l }
}

// WithRefinement overrides how the fine lattice is derived
func WithRefinement(r Refinement) OptimizerOption {
	return func(o *Optimizer) { o.Fine = r }
}

// WithLogger enables per-stage progress logging
func WithLogger(l *log.Logger) OptimizerOption {
	return func(o *Optimizer) { o.Logger = l }
}

// NewOptimizer returns an optimizer with the default model and lattices
func NewOptimizer(opts ...OptimizerOption) *Optimizer {
	o := &Optimizer{
		Family: DefaultModelFamily(),
		Coarse: DefaultCoarseLattice(),
		Fine:   DefaultRefinement(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewOptimizerFromConfig builds an optimizer from a loaded configuration
func NewOptimizerFromConfig(cfg *Config, opts ...OptimizerOption) *Optimizer {
	base := []OptimizerOption{
		WithFamily(cfg.Model),
		WithCoarse(cfg.Search.Coarse),
		WithRefinement(cfg.Search.Fine),
	}
	return NewOptimizer(append(base, opts...)...)
}

// ReduceMin folds candidates into the lowest-MSE triple, starting from init.
// A candidate replaces the accumulator only when strictly better, so among
// equal minima the first enumerated one wins. A NaN objective aborts the
// reduction with a *SearchError. +Inf is compared like any other score.
// The second return value is the number of candidates evaluated.
func ReduceMin(stage Stage, candidates iter.Seq[Params], objective func(Params) float64, init Best) (Best, int, error) {
	best := init
	evaluated := 0
	for p := range candidates {
		mse := objective(p)
		evaluated++
		if math.IsNaN(mse) {
			return best, evaluated, &SearchError{Stage: stage, Candidate: p, Err: ErrNonFiniteObjective}
		}
		if !best.Found || mse < best.MSE {
			best = Best{Params: p, MSE: mse, Found: true}
		}
	}
	return best, evaluated, nil
}

// Search runs the coarse lattice, then the refined lattice around the coarse
// winner. The fine stage continues from the coarse best rather than starting
// over, so the result is never worse than the coarse winner.
func (o *Optimizer) Search(points PointCloud) (SearchResult, error) {
	if err := ValidatePoints(points); err != nil {
		return SearchResult{}, err
	}
	if err := o.Coarse.Validate(); err != nil {
		return SearchResult{}, fmt.Errorf("coarse lattice: %w", err)
	}
	if err := o.Fine.Validate(); err != nil {
		return SearchResult{}, fmt.Errorf("fine refinement: %w", err)
	}

	objective := ObjectiveFunc(points, o.Family)

	start := time.Now()
	coarse, nCoarse, err := ReduceMin(StageCoarse, o.Coarse.Candidates(), objective, Best{})
	if err != nil {
		return SearchResult{}, err
	}
	o.logf("Coarse search: %d candidates in %v, best theta=%.3f M=%.5f X=%.3f MSE=%.6e",
		nCoarse, time.Since(start).Round(time.Millisecond),
		coarse.Params.Theta, coarse.Params.M, coarse.Params.X, coarse.MSE)

	fineLattice := o.Fine.Around(coarse.Params)
	start = time.Now()
	fine, nFine, err := ReduceMin(StageFine, fineLattice.Candidates(), objective, coarse)
	if err != nil {
		return SearchResult{}, err
	}
	o.logf("Fine search: %d candidates in %v, best theta=%.3f M=%.5f X=%.3f MSE=%.6e",
		nFine, time.Since(start).Round(time.Millisecond),
		fine.Params.Theta, fine.Params.M, fine.Params.X, fine.MSE)

	return SearchResult{
		Best:        fine.Params,
		MSE:         fine.MSE,
		CoarseBest:  coarse.Params,
		CoarseMSE:   coarse.MSE,
		Evaluations: nCoarse + nFine,
	}, nil
}

// Fit searches for the best triple and re-evaluates it to expose the model
// frame arrays and the L1 error.
func (o *Optimizer) Fit(points PointCloud) (FitResult, error) {
	sr, err := o.Search(points)
	if err != nil {
		return FitResult{}, err
	}

	ev := Evaluate(points, o.Family, sr.Best)
	return FitResult{
		Params:       sr.Best,
		MSE:          ev.MSE,
		MAE:          ev.MAE(),
		CoarseParams: sr.CoarseBest,
		CoarseMSE:    sr.CoarseMSE,
		Evaluations:  sr.Evaluations,
		Family:       o.Family,
		Points:       points,
		U:            ev.U,
		V:            ev.V,
		Predicted:    ev.Predicted,
	}, nil
}

// Evaluation rebuilds the evaluation of the fitted triple
func (r FitResult) Evaluation() Evaluation {
	return Evaluation{Params: r.Params, MSE: r.MSE, U: r.U, V: r.V, Predicted: r.Predicted}
}

// ValidatePoints rejects clouds the search cannot score meaningfully
func ValidatePoints(points PointCloud) error {
	if len(points) == 0 {
		return ErrEmptyPointCloud
	}
	for i, p := range points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return fmt.Errorf("%w: index %d (%g, %g)", ErrNonFinitePoint, i, p.X, p.Y)
		}
	}
	return nil
}

// NewPointCloud pairs two parallel coordinate columns by index
func NewPointCloud(xs, ys []float64) (PointCloud, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d x values, %d y values", ErrLengthMismatch, len(xs), len(ys))
	}
	pc := make(PointCloud, len(xs))
	for i := range xs {
		pc[i] = Point{X: xs[i], Y: ys[i]}
	}
	return pc, nil
}

func (o *Optimizer) logf(format string, args ...any) {
	if o.Logger != nil {
		o.Logger.Printf(format, args...)
	}
}
