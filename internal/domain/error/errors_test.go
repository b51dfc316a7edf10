package error

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"insufficient credits", ErrInsufficientCredits, CodeInsufficientCredits},
		{"account not found", ErrAccountNotFound, CodeAccountNotFound},
		{"empty prompt", ErrEmptyPrompt, CodeInvalidRequest},
		{"invalid amount", ErrInvalidAmount, CodeInvalidRequest},
		{"moderation", ErrContentModerationRejected, CodeContentModeration},
		{"model not found", ErrModelNotFound, CodeModelNotFound},
		{"generation not found", ErrGenerationNotFound, CodeGenerationNotFound},
		{"provider auth", ErrProviderAuth, CodeProviderAuth},
		{"provider capacity", ErrProviderCapacity, CodeProviderCapacity},
		{"provider unknown", ErrProviderUnknown, CodeProviderUnknown},
		{"configuration", ErrConfigurationMissing, CodeConfiguration},
		{"unexpected", errors.New("boom"), CodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, ErrorCode(tt.err))
		})
	}
}

func TestErrorCodeWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("while generating: %w", ErrProviderCapacity)
	assert.Equal(t, CodeProviderCapacity, ErrorCode(wrapped))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrProviderCapacity))
	assert.True(t, IsRetryable(NewProviderError("replicate", "minimax/video-01", "503", ErrProviderCapacity)))

	assert.False(t, IsRetryable(ErrProviderAuth))
	assert.False(t, IsRetryable(ErrContentModerationRejected))
	assert.False(t, IsRetryable(ErrModelNotFound))
	assert.False(t, IsRetryable(ErrInvalidRequest))
}

func TestProviderError(t *testing.T) {
	err := NewProviderError("replicate", "openai/sora-2", "prompt contains sensitive content", ErrContentModerationRejected)

	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.True(t, errors.Is(err, ErrContentModerationRejected))
	assert.Contains(t, err.Error(), "replicate")
	assert.Contains(t, err.Error(), "sensitive")
	assert.Contains(t, pe.Hint, "rewording")

	fields := pe.LogFields()
	assert.Equal(t, "provider_error", fields["error_type"])
	assert.Equal(t, "openai/sora-2", fields["model"])
}

func TestHintFor(t *testing.T) {
	t.Run("uses hint from wrapped provider error", func(t *testing.T) {
		err := fmt.Errorf("generation failed: %w",
			NewProviderError("openai", "openai/sora-2", "at capacity", ErrProviderCapacity))
		assert.Contains(t, HintFor(err), "capacity")
	})

	t.Run("falls back to class hint for bare sentinels", func(t *testing.T) {
		assert.Contains(t, HintFor(ErrProviderAuth), "API key")
	})
}

func TestInsufficientCreditsError(t *testing.T) {
	err := NewInsufficientCreditsError("acct-1", 3, 1)

	assert.True(t, errors.Is(err, ErrInsufficientCredits))
	assert.Contains(t, err.Error(), "required 3")
	assert.Contains(t, err.Error(), "available 1")

	var ice *InsufficientCreditsError
	require.True(t, errors.As(err, &ice))
	assert.Equal(t, int64(3), ice.Required)
}

func TestConfigurationError(t *testing.T) {
	err := NewConfigurationError("REPLICATE_API_TOKEN")
	assert.True(t, errors.Is(err, ErrConfigurationMissing))
	assert.Contains(t, err.Error(), "REPLICATE_API_TOKEN")
}

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, IsNotFoundError(ErrAccountNotFound))
	assert.True(t, IsNotFoundError(ErrGenerationNotFound))
	assert.True(t, IsNotFoundError(ErrModelNotFound))
	assert.False(t, IsNotFoundError(ErrInsufficientCredits))
}
