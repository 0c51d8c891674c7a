package mpm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEngineError_FatalClassifiesResourceAndConfigOnly(t *testing.T) {
	assert.True(t, NewResourceError("adapter lost", nil).Fatal())
	assert.True(t, NewConfigError("bad enum", nil).Fatal())
	assert.False(t, NewNumericError("nan position").Fatal())
	assert.False(t, NewSyncError("unknown event").Fatal())
	assert.False(t, NewAnalyzerStarvation("no samples").Fatal())
}

func TestEngineError_UnwrapExposesWrappedCause(t *testing.T) {
	cause := errors.New("buffer alloc failed")
	err := NewResourceError("gpu buffer", cause)
	assert.ErrorIs(t, err, cause)
}

func TestEngineError_StringsMatchKindNames(t *testing.T) {
	assert.Equal(t, "ConfigError", ConfigErrorKind.String())
	assert.Equal(t, "AnalyzerStarvation", AnalyzerStarvationKind.String())
}
