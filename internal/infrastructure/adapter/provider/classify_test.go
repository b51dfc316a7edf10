package provider

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	errs "github.com/littlehunt-studios/generation-processor/internal/domain/error"
)

func TestClassifyStatus(t *testing.T) {
	t.Run("moderation markers win over the status code", func(t *testing.T) {
		err := ClassifyStatus("replicate", "google/veo-3", http.StatusBadRequest,
			"(E005) This content has been flagged as sensitive")
		assert.ErrorIs(t, err, errs.ErrContentModerationRejected)
	})

	t.Run("maps statuses onto the taxonomy", func(t *testing.T) {
		cases := []struct {
			status int
			want   error
		}{
			{http.StatusUnauthorized, errs.ErrProviderAuth},
			{http.StatusForbidden, errs.ErrProviderAuth},
			{http.StatusNotFound, errs.ErrModelNotFound},
			{http.StatusTooManyRequests, errs.ErrProviderCapacity},
			{http.StatusServiceUnavailable, errs.ErrProviderCapacity},
			{http.StatusBadGateway, errs.ErrProviderUnknown},
		}
		for _, tc := range cases {
			err := ClassifyStatus("openai", "openai/sora-2", tc.status, "nope")
			assert.ErrorIs(t, err, tc.want, "status %d", tc.status)
		}
	})

	t.Run("only capacity errors are retryable", func(t *testing.T) {
		capacity := ClassifyStatus("replicate", "m", http.StatusTooManyRequests, "slow down")
		auth := ClassifyStatus("replicate", "m", http.StatusUnauthorized, "bad token")

		assert.True(t, errs.IsRetryable(capacity))
		assert.False(t, errs.IsRetryable(auth))
	})
}

func TestIsModerationMessage(t *testing.T) {
	assert.True(t, IsModerationMessage("Request rejected by the SAFETY SYSTEM"))
	assert.True(t, IsModerationMessage("(E005) flagged as sensitive"))
	assert.True(t, IsModerationMessage("violates our content policy"))
	assert.False(t, IsModerationMessage("connection reset by peer"))
	assert.False(t, IsModerationMessage(""))
}
