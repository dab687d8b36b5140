package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/application/dto"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/model"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/service"
)

// Training is the YAML document that parameterises a training run.
type Training struct {
	Schema     SchemaSection     `yaml:"schema"`
	Pipeline   PipelineSection   `yaml:"pipeline"`
	Evaluation EvaluationSection `yaml:"evaluation"`
}

// SchemaSection names the dataset columns.
type SchemaSection struct {
	Label       string   `yaml:"label"`
	Identifier  string   `yaml:"identifier"`
	Numerical   []string `yaml:"numerical"`
	Categorical []string `yaml:"categorical"`
}

// PipelineSection configures the fitted stages.
type PipelineSection struct {
	UnknownCategories string `yaml:"unknown_categories"`
	Solver            string `yaml:"solver"`
	Neighbors         int    `yaml:"neighbors"`
	Seed              uint64 `yaml:"seed"`
}

// EvaluationSection configures repeated stratified cross-validation.
type EvaluationSection struct {
	Folds   int    `yaml:"folds"`
	Repeats int    `yaml:"repeats"`
	Workers int    `yaml:"workers"`
	Seed    uint64 `yaml:"seed"`
}

// DefaultTraining returns the stroke dataset defaults: ten folds repeated
// three times, five SMOTE neighbours, seed 42.
func DefaultTraining() Training {
	schema := model.DefaultSchema()
	return Training{
		Schema: SchemaSection{
			Label:       schema.Label(),
			Identifier:  schema.Identifier(),
			Numerical:   schema.Numerical(),
			Categorical: schema.Categorical(),
		},
		Pipeline: PipelineSection{
			UnknownCategories: string(service.UnknownAsZeros),
			Solver:            string(service.SolverSVD),
			Neighbors:         service.DefaultNeighbors,
			Seed:              service.DefaultSeed,
		},
		Evaluation: EvaluationSection{
			Folds:   10,
			Repeats: 3,
			Workers: runtime.GOMAXPROCS(0),
			Seed:    service.DefaultSeed,
		},
	}
}

// LoadTraining reads a YAML training config. Fields absent from the file
// keep their defaults; an empty path or a missing file yields the defaults.
func LoadTraining(path string) (Training, error) {
	cfg := DefaultTraining()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Training{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Training{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Request converts the document into a TrainModel request.
func (t Training) Request() (dto.TrainModelRequest, error) {
	schema, err := model.NewSchema(t.Schema.Numerical, t.Schema.Categorical, t.Schema.Label, t.Schema.Identifier)
	if err != nil {
		return dto.TrainModelRequest{}, fmt.Errorf("config: schema: %w", err)
	}
	policy, err := service.ParseUnknownCategoryPolicy(t.Pipeline.UnknownCategories)
	if err != nil {
		return dto.TrainModelRequest{}, fmt.Errorf("config: pipeline: %w", err)
	}
	solver, err := service.ParseSolver(t.Pipeline.Solver)
	if err != nil {
		return dto.TrainModelRequest{}, fmt.Errorf("config: pipeline: %w", err)
	}

	return dto.TrainModelRequest{
		Pipeline: service.PipelineConfig{
			Schema:            schema,
			UnknownCategories: policy,
			Solver:            solver,
			Neighbors:         t.Pipeline.Neighbors,
			Seed:              t.Pipeline.Seed,
		},
		Evaluation: service.CrossValidationConfig{
			Folds:   t.Evaluation.Folds,
			Repeats: t.Evaluation.Repeats,
			Seed:    t.Evaluation.Seed,
			Workers: t.Evaluation.Workers,
		},
	}, nil
}
