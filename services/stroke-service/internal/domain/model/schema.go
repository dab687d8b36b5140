package model

import (
	"errors"
	"fmt"
)

// Default column names of the stroke dataset.
const (
	DefaultLabelColumn      = "stroke"
	DefaultIdentifierColumn = "id"
)

var (
	defaultNumerical   = []string{"age", "avg_glucose_level", "bmi"}
	defaultCategorical = []string{
		"gender",
		"hypertension",
		"heart_disease",
		"ever_married",
		"work_type",
		"Residence_type",
		"smoking_status",
	}
)

// Schema partitions the feature columns into numerical and categorical sets.
// It is immutable once constructed; accessors return copies.
type Schema struct {
	label       string
	identifier  string
	numerical   []string
	categorical []string
}

// NewSchema validates and builds a Schema. Column sets must be disjoint, free
// of duplicates, and must not contain the label or identifier column.
func NewSchema(numerical, categorical []string, label, identifier string) (Schema, error) {
	if len(numerical)+len(categorical) == 0 {
		return Schema{}, errors.New("schema requires at least one feature column")
	}
	if label == "" {
		return Schema{}, errors.New("schema requires a label column")
	}

	seen := make(map[string]string, len(numerical)+len(categorical))
	check := func(kind string, cols []string) error {
		for _, c := range cols {
			if c == "" {
				return fmt.Errorf("empty %s column name", kind)
			}
			if c == label || (identifier != "" && c == identifier) {
				return fmt.Errorf("column %q cannot be both a feature and the label or identifier", c)
			}
			if prev, dup := seen[c]; dup {
				return fmt.Errorf("column %q listed as %s and %s", c, prev, kind)
			}
			seen[c] = kind
		}
		return nil
	}
	if err := check("numerical", numerical); err != nil {
		return Schema{}, err
	}
	if err := check("categorical", categorical); err != nil {
		return Schema{}, err
	}

	return Schema{
		label:       label,
		identifier:  identifier,
		numerical:   append([]string(nil), numerical...),
		categorical: append([]string(nil), categorical...),
	}, nil
}

// DefaultSchema returns the column layout of the stroke dataset.
func DefaultSchema() Schema {
	s, err := NewSchema(defaultNumerical, defaultCategorical, DefaultLabelColumn, DefaultIdentifierColumn)
	if err != nil {
		panic(err)
	}
	return s
}

// Numerical returns the numerical feature columns in order.
func (s Schema) Numerical() []string { return append([]string(nil), s.numerical...) }

// Categorical returns the categorical feature columns in order.
func (s Schema) Categorical() []string { return append([]string(nil), s.categorical...) }

// Label returns the label column name.
func (s Schema) Label() string { return s.label }

// Identifier returns the identifier column name, or "" when there is none.
func (s Schema) Identifier() string { return s.identifier }

// FeatureColumns returns numerical columns followed by categorical columns.
func (s Schema) FeatureColumns() []string {
	out := make([]string, 0, len(s.numerical)+len(s.categorical))
	out = append(out, s.numerical...)
	return append(out, s.categorical...)
}

// IsFeature reports whether col is a numerical or categorical column.
func (s Schema) IsFeature(col string) bool {
	for _, c := range s.numerical {
		if c == col {
			return true
		}
	}
	for _, c := range s.categorical {
		if c == col {
			return true
		}
	}
	return false
}

// IsZero reports whether the schema was never constructed.
func (s Schema) IsZero() bool {
	return s.label == "" && len(s.numerical) == 0 && len(s.categorical) == 0
}
