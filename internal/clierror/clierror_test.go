package clierror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsageError(t *testing.T) {
	err := NewUsageError("--secret-names is required")

	assert.Equal(t, CodeUsage, err.Code)
	assert.Equal(t, ExitUsage, err.ExitCode)
	assert.Contains(t, err.Error(), "--secret-names is required")
	assert.Contains(t, err.Error(), "Suggestion:")
}

func TestServiceUnavailableErrorUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewServiceUnavailableError("https://example.com/graphql", cause)

	assert.Equal(t, ExitServiceUnavailable, err.ExitCode)
	assert.ErrorIs(t, err, cause)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain error", errors.New("boom"), ExitGeneral},
		{"usage", NewUsageError("x"), ExitUsage},
		{"wrapped not found", fmt.Errorf("run: %w", NewNotFoundError("secret manager", "kms", nil)), ExitNotFound},
		{"operation", NewOperationError("create failed", nil), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
