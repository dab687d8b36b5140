package service

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/model"
)

// DefaultSeed is the random seed used when none is configured.
const DefaultSeed uint64 = 42

// PipelineConfig holds everything needed to build an untrained pipeline.
type PipelineConfig struct {
	Schema            model.Schema
	UnknownCategories UnknownCategoryPolicy
	Solver            Solver
	Neighbors         int
	Seed              uint64
}

// DefaultPipelineConfig returns the configuration of the stroke model.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Schema:            model.DefaultSchema(),
		UnknownCategories: UnknownAsZeros,
		Solver:            SolverSVD,
		Neighbors:         DefaultNeighbors,
		Seed:              DefaultSeed,
	}
}

// stage is a named pipeline step.
type stage interface {
	Name() string
}

// matrixTransform runs on both the fit and the predict path.
type matrixTransform interface {
	stage
	Fit(x *mat.Dense) error
	Transform(x *mat.Dense) (*mat.Dense, error)
}

// resampler changes the training rows and exists on the fit path only.
type resampler interface {
	stage
	FitResample(x *mat.Dense, y []int) (*mat.Dense, []int, error)
}

// TrainingPipeline chains feature encoding, power normalization, class
// balancing and linear discriminant classification. A fitted pipeline is
// read-only and safe for concurrent prediction.
type TrainingPipeline struct {
	cfg        PipelineConfig
	features   *FeatureTransformer
	transforms []matrixTransform
	resamplers []resampler
	classifier *LinearDiscriminant
	fitted     bool
}

// NewTrainingPipeline validates cfg and returns an unfitted pipeline.
func NewTrainingPipeline(cfg PipelineConfig) (*TrainingPipeline, error) {
	if cfg.Schema.IsZero() {
		return nil, fmt.Errorf("training pipeline: schema is required")
	}
	if cfg.UnknownCategories == "" {
		cfg.UnknownCategories = UnknownAsZeros
	}
	if cfg.UnknownCategories != UnknownAsZeros {
		return nil, fmt.Errorf("training pipeline: unsupported unknown category policy %q", cfg.UnknownCategories)
	}
	if cfg.Solver == "" {
		cfg.Solver = SolverSVD
	}
	if _, err := ParseSolver(string(cfg.Solver)); err != nil {
		return nil, fmt.Errorf("training pipeline: %w", err)
	}
	if cfg.Neighbors <= 0 {
		cfg.Neighbors = DefaultNeighbors
	}
	return &TrainingPipeline{cfg: cfg}, nil
}

// Config returns the configuration the pipeline was built with.
func (p *TrainingPipeline) Config() PipelineConfig { return p.cfg }

// Clone returns an unfitted pipeline with the same configuration.
func (p *TrainingPipeline) Clone() *TrainingPipeline {
	return &TrainingPipeline{cfg: p.cfg}
}

// IsFitted reports whether Fit has completed successfully.
func (p *TrainingPipeline) IsFitted() bool { return p.fitted }

// FitStages lists the stage names executed by Fit, in order.
func (p *TrainingPipeline) FitStages() []string {
	names := []string{"feature_transformer"}
	for _, t := range p.newTransforms() {
		names = append(names, t.Name())
	}
	for _, r := range p.newResamplers() {
		names = append(names, r.Name())
	}
	return append(names, "linear_discriminant")
}

// PredictStages lists the stage names executed by Predict, in order.
func (p *TrainingPipeline) PredictStages() []string {
	names := []string{"feature_transformer"}
	for _, t := range p.newTransforms() {
		names = append(names, t.Name())
	}
	return append(names, "linear_discriminant")
}

func (p *TrainingPipeline) newTransforms() []matrixTransform {
	return []matrixTransform{NewPowerTransformer()}
}

func (p *TrainingPipeline) newResamplers() []resampler {
	return []resampler{NewSMOTE(p.cfg.Neighbors, p.cfg.Seed)}
}

// Fit trains every stage in order on ds. Prior learned state is discarded
// first; on error the pipeline stays unfitted.
func (p *TrainingPipeline) Fit(ds *model.Dataset) error {
	p.reset()

	if ds == nil || ds.Len() == 0 {
		return fmt.Errorf("training pipeline: empty dataset")
	}

	features, err := NewFeatureTransformer(p.cfg.Schema, p.cfg.UnknownCategories)
	if err != nil {
		return fmt.Errorf("training pipeline: %w", err)
	}
	if err := features.Fit(ds.Records()); err != nil {
		return fmt.Errorf("training pipeline: fit: %w", err)
	}
	x, err := features.Transform(ds.Records())
	if err != nil {
		return fmt.Errorf("training pipeline: fit: %w", err)
	}

	transforms := p.newTransforms()
	for _, t := range transforms {
		if err := t.Fit(x); err != nil {
			return fmt.Errorf("training pipeline: fit %s: %w", t.Name(), err)
		}
		if x, err = t.Transform(x); err != nil {
			return fmt.Errorf("training pipeline: fit %s: %w", t.Name(), err)
		}
	}

	y := append([]int(nil), ds.Labels()...)
	resamplers := p.newResamplers()
	for _, r := range resamplers {
		if x, y, err = r.FitResample(x, y); err != nil {
			return fmt.Errorf("training pipeline: fit %s: %w", r.Name(), err)
		}
	}

	classifier := NewLinearDiscriminant(p.cfg.Solver)
	if err := classifier.Fit(x, y); err != nil {
		return fmt.Errorf("training pipeline: fit %s: %w", classifier.Name(), err)
	}

	p.features = features
	p.transforms = transforms
	p.resamplers = resamplers
	p.classifier = classifier
	p.fitted = true
	return nil
}

func (p *TrainingPipeline) reset() {
	p.features = nil
	p.transforms = nil
	p.resamplers = nil
	p.classifier = nil
	p.fitted = false
}

// transform runs the predict path up to the classifier.
func (p *TrainingPipeline) transform(records []model.Record) (*mat.Dense, error) {
	if !p.fitted {
		return nil, fmt.Errorf("training pipeline: %w", ErrNotFitted)
	}
	x, err := p.features.Transform(records)
	if err != nil {
		return nil, fmt.Errorf("training pipeline: %w", err)
	}
	for _, t := range p.transforms {
		if x, err = t.Transform(x); err != nil {
			return nil, fmt.Errorf("training pipeline: %s: %w", t.Name(), err)
		}
	}
	return x, nil
}

// Predict returns a class label per record.
func (p *TrainingPipeline) Predict(records []model.Record) ([]int, error) {
	x, err := p.transform(records)
	if err != nil {
		return nil, err
	}
	return p.classifier.Predict(x)
}

// PredictProba returns an n x 2 matrix of class probabilities, column 1
// being the positive class.
func (p *TrainingPipeline) PredictProba(records []model.Record) (*mat.Dense, error) {
	x, err := p.transform(records)
	if err != nil {
		return nil, err
	}
	return p.classifier.PredictProba(x)
}

// PredictOne scores a single record.
func (p *TrainingPipeline) PredictOne(record model.Record) (model.Prediction, error) {
	proba, err := p.PredictProba([]model.Record{record})
	if err != nil {
		return model.Prediction{}, err
	}
	positive := proba.At(0, 1)
	class := 0
	if positive > 0.5 {
		class = 1
	}
	return model.Prediction{Class: class, Probability: positive}, nil
}

// FeatureNames returns the encoded column names, or nil before Fit.
func (p *TrainingPipeline) FeatureNames() []string {
	if !p.fitted {
		return nil
	}
	return p.features.FeatureNames()
}
