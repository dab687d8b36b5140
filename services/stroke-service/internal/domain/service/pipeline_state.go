package service

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/model"
)

// stateVersion is bumped whenever PipelineState changes shape.
const stateVersion = 1

// PipelineState is the serializable snapshot of a fitted pipeline. It holds
// no maps so that encoding the same state always yields the same bytes.
type PipelineState struct {
	Version int

	Numerical         []string
	Categorical       []string
	Label             string
	Identifier        string
	UnknownCategories string
	Solver            string
	Neighbors         int
	Seed              uint64

	Medians    []float64
	Vocabulary [][]string

	Lambdas []float64
	Means   []float64
	Scales  []float64

	Coefficients []float64
	Intercept    float64
	Priors       [2]float64
}

// State snapshots the fitted pipeline.
func (p *TrainingPipeline) State() (PipelineState, error) {
	if !p.fitted {
		return PipelineState{}, fmt.Errorf("training pipeline: %w", ErrNotFitted)
	}
	if len(p.transforms) != 1 {
		return PipelineState{}, fmt.Errorf("training pipeline: unexpected transform count %d", len(p.transforms))
	}
	power, ok := p.transforms[0].(*PowerTransformer)
	if !ok {
		return PipelineState{}, fmt.Errorf("training pipeline: unexpected transform %s", p.transforms[0].Name())
	}

	vocab := make([][]string, len(p.features.vocab))
	for i, levels := range p.features.vocab {
		vocab[i] = append([]string(nil), levels...)
	}

	return PipelineState{
		Version:           stateVersion,
		Numerical:         p.cfg.Schema.Numerical(),
		Categorical:       p.cfg.Schema.Categorical(),
		Label:             p.cfg.Schema.Label(),
		Identifier:        p.cfg.Schema.Identifier(),
		UnknownCategories: string(p.cfg.UnknownCategories),
		Solver:            string(p.cfg.Solver),
		Neighbors:         p.cfg.Neighbors,
		Seed:              p.cfg.Seed,
		Medians:           p.features.Medians(),
		Vocabulary:        vocab,
		Lambdas:           append([]float64(nil), power.lambdas...),
		Means:             append([]float64(nil), power.means...),
		Scales:            append([]float64(nil), power.scales...),
		Coefficients:      p.classifier.Coefficients(),
		Intercept:         p.classifier.Intercept(),
		Priors:            p.classifier.Priors(),
	}, nil
}

// PipelineFromState rebuilds a fitted pipeline from a snapshot.
func PipelineFromState(s PipelineState) (*TrainingPipeline, error) {
	if s.Version != stateVersion {
		return nil, fmt.Errorf("pipeline state: unsupported version %d", s.Version)
	}
	schema, err := model.NewSchema(s.Numerical, s.Categorical, s.Label, s.Identifier)
	if err != nil {
		return nil, fmt.Errorf("pipeline state: %w", err)
	}
	policy, err := ParseUnknownCategoryPolicy(s.UnknownCategories)
	if err != nil {
		return nil, fmt.Errorf("pipeline state: %w", err)
	}
	solver, err := ParseSolver(s.Solver)
	if err != nil {
		return nil, fmt.Errorf("pipeline state: %w", err)
	}

	if len(s.Medians) != len(s.Numerical) {
		return nil, fmt.Errorf("pipeline state: %d medians for %d numerical columns", len(s.Medians), len(s.Numerical))
	}
	if len(s.Vocabulary) != len(s.Categorical) {
		return nil, fmt.Errorf("pipeline state: %d vocabularies for %d categorical columns", len(s.Vocabulary), len(s.Categorical))
	}
	width := len(s.Medians)
	for _, levels := range s.Vocabulary {
		width += len(levels)
	}
	for name, v := range map[string][]float64{
		"lambdas":      s.Lambdas,
		"means":        s.Means,
		"scales":       s.Scales,
		"coefficients": s.Coefficients,
	} {
		if len(v) != width {
			return nil, fmt.Errorf("pipeline state: %d %s for %d features", len(v), name, width)
		}
	}

	p, err := NewTrainingPipeline(PipelineConfig{
		Schema:            schema,
		UnknownCategories: policy,
		Solver:            solver,
		Neighbors:         s.Neighbors,
		Seed:              s.Seed,
	})
	if err != nil {
		return nil, err
	}

	vocab := make([][]string, len(s.Vocabulary))
	for i, levels := range s.Vocabulary {
		vocab[i] = append([]string(nil), levels...)
	}
	p.features = &FeatureTransformer{
		schema:  schema,
		policy:  policy,
		medians: append([]float64(nil), s.Medians...),
		vocab:   vocab,
		index:   buildIndex(vocab),
		fitted:  true,
	}
	p.transforms = []matrixTransform{&PowerTransformer{
		lambdas: append([]float64(nil), s.Lambdas...),
		means:   append([]float64(nil), s.Means...),
		scales:  append([]float64(nil), s.Scales...),
	}}
	p.resamplers = p.newResamplers()
	p.classifier = &LinearDiscriminant{
		solver:    solver,
		coef:      append([]float64(nil), s.Coefficients...),
		intercept: s.Intercept,
		priors:    s.Priors,
	}
	p.fitted = true
	return p, nil
}

// Encode writes the fitted pipeline in gob form.
func (p *TrainingPipeline) Encode(w io.Writer) error {
	state, err := p.State()
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(w).Encode(state); err != nil {
		return fmt.Errorf("training pipeline: encode: %w", err)
	}
	return nil
}

// DecodePipeline reads a pipeline written by Encode.
func DecodePipeline(r io.Reader) (*TrainingPipeline, error) {
	var state PipelineState
	if err := gob.NewDecoder(r).Decode(&state); err != nil {
		return nil, fmt.Errorf("training pipeline: decode: %w", err)
	}
	return PipelineFromState(state)
}
