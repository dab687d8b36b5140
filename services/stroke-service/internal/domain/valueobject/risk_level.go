package valueobject

import "fmt"

// RiskLevel is an immutable value object banding a stroke probability.
// It is advisory; the binary prediction is what callers act on.
type RiskLevel struct {
	value string
}

var (
	RiskLevelLow      = RiskLevel{value: "LOW"}
	RiskLevelMedium   = RiskLevel{value: "MEDIUM"}
	RiskLevelHigh     = RiskLevel{value: "HIGH"}
	RiskLevelCritical = RiskLevel{value: "CRITICAL"}
)

// RiskLevelFromString reconstructs a RiskLevel from its string representation.
func RiskLevelFromString(s string) (RiskLevel, error) {
	switch s {
	case "LOW":
		return RiskLevelLow, nil
	case "MEDIUM":
		return RiskLevelMedium, nil
	case "HIGH":
		return RiskLevelHigh, nil
	case "CRITICAL":
		return RiskLevelCritical, nil
	default:
		return RiskLevel{}, fmt.Errorf("invalid risk level: %s", s)
	}
}

// RiskLevelFromProbability bands a positive-class probability in [0, 1].
func RiskLevelFromProbability(p float64) (RiskLevel, error) {
	if p < 0 || p > 1 || p != p {
		return RiskLevel{}, fmt.Errorf("probability must be between 0 and 1, got %v", p)
	}
	switch {
	case p >= 0.8:
		return RiskLevelCritical, nil
	case p >= 0.5:
		return RiskLevelHigh, nil
	case p >= 0.2:
		return RiskLevelMedium, nil
	default:
		return RiskLevelLow, nil
	}
}

// String returns the string representation.
func (r RiskLevel) String() string {
	return r.value
}

// MinProbability returns the lower bound of the band.
func (r RiskLevel) MinProbability() float64 {
	switch r.value {
	case "MEDIUM":
		return 0.2
	case "HIGH":
		return 0.5
	case "CRITICAL":
		return 0.8
	default:
		return 0
	}
}

// IsZero returns true if the RiskLevel has not been set.
func (r RiskLevel) IsZero() bool {
	return r.value == ""
}

// Equal checks equality with another RiskLevel.
func (r RiskLevel) Equal(other RiskLevel) bool {
	return r.value == other.value
}
