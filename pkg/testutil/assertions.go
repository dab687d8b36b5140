package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertProbability checks that p is a valid probability.
func AssertProbability(t *testing.T, p float64, msgAndArgs ...interface{}) bool {
	t.Helper()
	return assert.GreaterOrEqual(t, p, 0.0, msgAndArgs...) &&
		assert.LessOrEqual(t, p, 1.0, msgAndArgs...)
}

// AssertErrorContains checks that err is non-nil and contains expected.
func AssertErrorContains(t *testing.T, err error, expected string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), expected)
	}
}
