// Package provider holds the failure classification shared by the upstream
// generation clients. Every raw provider failure is mapped onto the domain
// error taxonomy here, at the boundary, so the use cases never branch on
// provider-specific status codes or message text.
package provider

import (
	"net/http"
	"strings"

	errs "github.com/littlehunt-studios/generation-processor/internal/domain/error"
)

// moderationMarkers are substrings that identify a content-filter rejection
// across providers. Replicate surfaces E005 for flagged prompts; OpenAI and
// several hosted models use prose variants.
var moderationMarkers = []string{
	"e005",
	"nsfw",
	"flagged",
	"sensitive",
	"moderation",
	"content policy",
	"content_policy",
	"safety system",
}

// ClassifyStatus maps a non-2xx provider response to a classified domain
// error. The message is scanned for moderation markers first: some providers
// report filter rejections under generic 4xx statuses.
func ClassifyStatus(providerName, model string, statusCode int, message string) error {
	if IsModerationMessage(message) {
		return errs.NewProviderError(providerName, model, message, errs.ErrContentModerationRejected)
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errs.NewProviderError(providerName, model, message, errs.ErrProviderAuth)
	case http.StatusNotFound:
		return errs.NewProviderError(providerName, model, message, errs.ErrModelNotFound)
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return errs.NewProviderError(providerName, model, message, errs.ErrProviderCapacity)
	default:
		return errs.NewProviderError(providerName, model, message, errs.ErrProviderUnknown)
	}
}

// ClassifyFailure maps the error text of a prediction that reached the
// failed state to a classified domain error. Unlike ClassifyStatus there is
// no HTTP status to lean on, only the provider's failure message.
func ClassifyFailure(providerName, model, message string) error {
	if IsModerationMessage(message) {
		return errs.NewProviderError(providerName, model, message, errs.ErrContentModerationRejected)
	}
	return errs.NewProviderError(providerName, model, message, errs.ErrProviderUnknown)
}

// IsModerationMessage reports whether a provider message indicates a
// content-filter rejection
func IsModerationMessage(message string) bool {
	lowered := strings.ToLower(message)
	for _, marker := range moderationMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
