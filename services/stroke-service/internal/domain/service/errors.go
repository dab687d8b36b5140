package service

import "errors"

// Error kinds raised by the training and inference stages. Call sites wrap
// them with context, so callers should match with errors.Is.
var (
	// ErrSchemaMismatch is returned when a record is missing a feature column,
	// carries a column the schema does not know, or holds an unparsable value.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrLabelMissing is returned when a training row has no usable label.
	ErrLabelMissing = errors.New("label missing")

	// ErrInsufficientMinorityClass is returned when a class has too few members
	// for the balancer or for stratified splitting.
	ErrInsufficientMinorityClass = errors.New("insufficient minority class")

	// ErrNumericInstability is returned when a column has degenerate variance
	// or a transform produces non-finite values.
	ErrNumericInstability = errors.New("numeric instability")

	// ErrSingularCovariance is returned when the classifier cannot factor the
	// within-class scatter.
	ErrSingularCovariance = errors.New("singular covariance")

	// ErrNotFitted is returned when inference is attempted before training.
	ErrNotFitted = errors.New("pipeline not fitted")
)
