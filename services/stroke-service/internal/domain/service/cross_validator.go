package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/model"
)

// CrossValidationConfig controls repeated stratified k-fold evaluation.
type CrossValidationConfig struct {
	Folds   int
	Repeats int
	Seed    uint64
	Workers int
}

// DefaultCrossValidationConfig returns 10 folds repeated 3 times with seed 42.
func DefaultCrossValidationConfig() CrossValidationConfig {
	return CrossValidationConfig{
		Folds:   10,
		Repeats: 3,
		Seed:    DefaultSeed,
		Workers: runtime.GOMAXPROCS(0),
	}
}

// Fold is one train/test split. Test indices are ascending.
type Fold struct {
	Repeat int
	Index  int
	Train  []int
	Test   []int
}

// EvaluationReport summarizes per-fold AUC scores. Scores are ordered by
// repeat, then fold index. Std is the population standard deviation.
type EvaluationReport struct {
	Scores []float64
	Mean   float64
	Std    float64
}

// FoldObserver is notified after each fold is scored. It may be called from
// several goroutines at once.
type FoldObserver func(fold Fold, auc float64)

// CrossValidator estimates out-of-sample AUC of an untrained pipeline.
type CrossValidator struct {
	cfg      CrossValidationConfig
	observer FoldObserver
}

// NewCrossValidator creates an evaluator. Zero fields fall back to defaults.
func NewCrossValidator(cfg CrossValidationConfig, observer FoldObserver) (*CrossValidator, error) {
	def := DefaultCrossValidationConfig()
	if cfg.Folds == 0 {
		cfg.Folds = def.Folds
	}
	if cfg.Repeats == 0 {
		cfg.Repeats = def.Repeats
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.Folds < 2 {
		return nil, fmt.Errorf("cross validator: need at least 2 folds, got %d", cfg.Folds)
	}
	if cfg.Repeats < 1 {
		return nil, fmt.Errorf("cross validator: need at least 1 repeat, got %d", cfg.Repeats)
	}
	return &CrossValidator{cfg: cfg, observer: observer}, nil
}

// Config returns the effective configuration.
func (cv *CrossValidator) Config() CrossValidationConfig { return cv.cfg }

// Evaluate fits a clone of template on every training split and scores the
// held-out split. Folds run concurrently, bounded by the worker count.
func (cv *CrossValidator) Evaluate(ctx context.Context, template *TrainingPipeline, ds *model.Dataset) (EvaluationReport, error) {
	folds, err := StratifiedFolds(ds.Labels(), cv.cfg.Folds, cv.cfg.Repeats, cv.cfg.Seed)
	if err != nil {
		return EvaluationReport{}, fmt.Errorf("cross validator: %w", err)
	}

	scores := make([]float64, len(folds))
	cfg := template.Config()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cv.cfg.Workers)
	for i, fold := range folds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			auc, err := ScoreFold(cfg, ds.Subset(fold.Train), ds.Subset(fold.Test))
			if err != nil {
				return fmt.Errorf("repeat %d fold %d: %w", fold.Repeat, fold.Index, err)
			}
			scores[i] = auc
			if cv.observer != nil {
				cv.observer(fold, auc)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return EvaluationReport{}, fmt.Errorf("cross validator: %w", err)
	}

	return EvaluationReport{
		Scores: scores,
		Mean:   stat.Mean(scores, nil),
		Std:    stat.PopStdDev(scores, nil),
	}, nil
}

// ScoreFold fits a fresh pipeline built from cfg on train and returns the AUC
// of its positive-class probabilities on test. It shares no state with other
// calls.
func ScoreFold(cfg PipelineConfig, train, test *model.Dataset) (float64, error) {
	p, err := NewTrainingPipeline(cfg)
	if err != nil {
		return 0, err
	}
	if err := p.Fit(train); err != nil {
		return 0, err
	}
	proba, err := p.PredictProba(test.Records())
	if err != nil {
		return 0, err
	}
	rows, _ := proba.Dims()
	positive := make([]float64, rows)
	for i := range positive {
		positive[i] = proba.At(i, 1)
	}
	return ROCAUC(test.Labels(), positive)
}

// StratifiedFolds splits row indices into folds x repeats train/test pairs.
// Within each repeat the rows of every class are shuffled with a seeded
// source and dealt round robin, so each fold receives the same share of
// each class to within one row.
func StratifiedFolds(labels []int, folds, repeats int, seed uint64) ([]Fold, error) {
	if folds < 2 {
		return nil, fmt.Errorf("stratified folds: need at least 2 folds, got %d", folds)
	}

	var byClass [2][]int
	for i, y := range labels {
		if y != 0 && y != 1 {
			return nil, fmt.Errorf("stratified folds: row %d has label %d: %w", i, y, ErrLabelMissing)
		}
		byClass[y] = append(byClass[y], i)
	}
	for class, members := range byClass {
		if len(members) < folds {
			return nil, fmt.Errorf("stratified folds: class %d has %d members for %d folds: %w",
				class, len(members), folds, ErrInsufficientMinorityClass)
		}
	}

	out := make([]Fold, 0, folds*repeats)
	assignment := make([]int, len(labels))
	for r := 0; r < repeats; r++ {
		rng := rand.New(rand.NewPCG(seed, uint64(r)))
		counter := 0
		for _, members := range byClass {
			shuffled := append([]int(nil), members...)
			rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
			for _, idx := range shuffled {
				assignment[idx] = counter % folds
				counter++
			}
		}

		for f := 0; f < folds; f++ {
			fold := Fold{Repeat: r, Index: f}
			for idx, a := range assignment {
				if a == f {
					fold.Test = append(fold.Test, idx)
				} else {
					fold.Train = append(fold.Train, idx)
				}
			}
			out = append(out, fold)
		}
	}
	return out, nil
}
