package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerr "github.com/littlehunt-studios/generation-processor/internal/domain/error"
	"github.com/littlehunt-studios/generation-processor/internal/infrastructure/adapter/api/dto"
)

// httpStatus maps a domain error to the HTTP status code the API contract
// promises: 402 for an empty balance, 422 for a moderation rejection, 503
// for provider capacity. Provider authentication failures are our
// misconfiguration, not the caller's, and surface as 500.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, domainerr.ErrInsufficientCredits):
		return http.StatusPaymentRequired
	case errors.Is(err, domainerr.ErrContentModerationRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domainerr.ErrProviderCapacity):
		return http.StatusServiceUnavailable
	case errors.Is(err, domainerr.ErrAccountNotFound),
		errors.Is(err, domainerr.ErrGenerationNotFound),
		errors.Is(err, domainerr.ErrModelNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainerr.ErrEmptyPrompt),
		errors.Is(err, domainerr.ErrInvalidRequest),
		errors.Is(err, domainerr.ErrInvalidAccountID),
		errors.Is(err, domainerr.ErrInvalidAmount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the standardized error body. Remediation hints are
// attached only for provider-class failures, where the caller can actually
// act on them.
func respondError(c *gin.Context, err error) {
	body := dto.ErrorResponse{
		Code:    domainerr.ErrorCode(err),
		Message: messageFor(err),
	}

	var providerErr *domainerr.ProviderError
	if errors.As(err, &providerErr) {
		body.Hint = providerErr.Hint
	}

	c.JSON(httpStatus(err), body)
}

// messageFor chooses the user-facing message. Provider failures surface
// their remediation hint rather than the raw upstream message; unexpected
// errors stay opaque.
func messageFor(err error) string {
	var providerErr *domainerr.ProviderError
	if errors.As(err, &providerErr) {
		return domainerr.HintFor(err)
	}

	switch {
	case errors.Is(err, domainerr.ErrInsufficientCredits),
		errors.Is(err, domainerr.ErrAccountNotFound),
		errors.Is(err, domainerr.ErrGenerationNotFound),
		errors.Is(err, domainerr.ErrEmptyPrompt),
		errors.Is(err, domainerr.ErrInvalidRequest),
		errors.Is(err, domainerr.ErrInvalidAccountID),
		errors.Is(err, domainerr.ErrInvalidAmount),
		errors.Is(err, domainerr.ErrConfigurationMissing):
		return err.Error()
	default:
		return "Internal server error"
	}
}
