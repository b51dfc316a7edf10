package error

import (
	"errors"
	"fmt"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeInsufficientCredits = 4001
	CodeInvalidRequest      = 4002
	CodeContentModeration   = 4220
	CodeAccountNotFound     = 4040
	CodeGenerationNotFound  = 4041
	CodeModelNotFound       = 4042

	// 5xxx - Server and provider errors
	CodeInternalServer   = 5000
	CodeConfiguration    = 5001
	CodeProviderAuth     = 5010
	CodeProviderUnknown  = 5020
	CodeProviderCapacity = 5030
)

// Base error types
var (
	// ErrAccountNotFound is returned when the requested account doesn't exist
	ErrAccountNotFound = errors.New("account not found")

	// ErrInsufficientCredits is returned when an account has too few credits for a generation
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrInvalidAccountID is returned when the account identifier is empty
	ErrInvalidAccountID = errors.New("account ID cannot be empty")

	// ErrInvalidAmount is returned when a ledger amount is zero or negative
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidRequest is returned when the request format is invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrEmptyPrompt is returned when a generation request carries no prompt
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrProviderAuth is returned when the provider rejects our credentials
	ErrProviderAuth = errors.New("provider authentication failed")

	// ErrModelNotFound is returned when the provider doesn't know the requested model
	ErrModelNotFound = errors.New("model not found")

	// ErrContentModerationRejected is returned when the provider's content filter
	// blocks the prompt or the generated output
	ErrContentModerationRejected = errors.New("content flagged by moderation")

	// ErrProviderCapacity is returned when the provider is temporarily at capacity.
	// This is the only retryable provider error class.
	ErrProviderCapacity = errors.New("provider at capacity")

	// ErrProviderUnknown is returned for provider failures that fit no other class
	ErrProviderUnknown = errors.New("provider error")

	// ErrConfigurationMissing is returned when a required credential or setting is absent
	ErrConfigurationMissing = errors.New("required configuration missing")

	// ErrGenerationNotFound is returned when the requested generation record doesn't exist
	ErrGenerationNotFound = errors.New("generation not found")

	// ErrDuplicateAccount is returned when trying to create an account that already exists
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrDatabaseConnection is returned when there's a problem talking to the database
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInsufficientCredits):
		return CodeInsufficientCredits
	case errors.Is(err, ErrAccountNotFound):
		return CodeAccountNotFound
	case errors.Is(err, ErrInvalidAccountID), errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrEmptyPrompt), errors.Is(err, ErrInvalidRequest):
		return CodeInvalidRequest
	case errors.Is(err, ErrContentModerationRejected):
		return CodeContentModeration
	case errors.Is(err, ErrGenerationNotFound):
		return CodeGenerationNotFound
	case errors.Is(err, ErrModelNotFound):
		return CodeModelNotFound
	case errors.Is(err, ErrProviderAuth):
		return CodeProviderAuth
	case errors.Is(err, ErrProviderCapacity):
		return CodeProviderCapacity
	case errors.Is(err, ErrProviderUnknown):
		return CodeProviderUnknown
	case errors.Is(err, ErrConfigurationMissing):
		return CodeConfiguration
	default:
		return CodeInternalServer
	}
}

// IsRetryable reports whether the error may be retried locally with backoff.
// Only capacity-type provider errors qualify; authentication and bad-request
// class errors must never be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrProviderCapacity)
}

// ProviderError carries the normalized classification of a provider failure
// plus a human-readable remediation hint for the caller.
type ProviderError struct {
	Provider string // "replicate" or "openai"
	Model    string
	Message  string // raw provider message
	Hint     string // remediation hint surfaced to the user
	Err      error  // one of the provider sentinel errors above
}

// Error implements the error interface for ProviderError
func (e *ProviderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %v: %s", e.Provider, e.Err, e.Message)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying classification error
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *ProviderError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "provider_error",
		"provider":   e.Provider,
		"model":      e.Model,
		"message":    e.Message,
		"error_code": ErrorCode(e.Err),
	}
}

// NewProviderError creates a classified provider error with a remediation hint
func NewProviderError(provider, model, message string, kind error) error {
	return &ProviderError{
		Provider: provider,
		Model:    model,
		Message:  message,
		Hint:     remediationHint(kind),
		Err:      kind,
	}
}

// remediationHint maps a provider error class to a short user-facing hint
func remediationHint(kind error) string {
	switch {
	case errors.Is(kind, ErrContentModerationRejected):
		return "Your prompt was flagged by the provider's content filter. Try rewording it."
	case errors.Is(kind, ErrProviderCapacity):
		return "The provider is at capacity. Please try again in a few moments."
	case errors.Is(kind, ErrProviderAuth):
		return "Provider credentials were rejected. Check the configured API key."
	case errors.Is(kind, ErrModelNotFound):
		return "The selected model is not available. Pick a different one."
	default:
		return "Generation failed. Your credits have been refunded."
	}
}

// HintFor returns the remediation hint for an error, preferring the hint
// recorded on a wrapped ProviderError.
func HintFor(err error) string {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Hint
	}
	return remediationHint(err)
}

// InsufficientCreditsError provides detailed error information for a failed sufficiency check
type InsufficientCreditsError struct {
	AccountID string
	Required  int64
	Available int64
}

// Error implements the error interface
func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits for account %s: required %d, available %d",
		e.AccountID, e.Required, e.Available)
}

// Is checks if the target error is an ErrInsufficientCredits
func (e *InsufficientCreditsError) Is(target error) bool {
	return target == ErrInsufficientCredits
}

// LogFields returns a map of fields for structured logging
func (e *InsufficientCreditsError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "insufficient_credits",
		"account_id": e.AccountID,
		"required":   e.Required,
		"available":  e.Available,
		"error_code": CodeInsufficientCredits,
	}
}

// NewInsufficientCreditsError creates a new detailed insufficient credits error
func NewInsufficientCreditsError(accountID string, required, available int64) error {
	return &InsufficientCreditsError{
		AccountID: accountID,
		Required:  required,
		Available: available,
	}
}

// ConfigurationError names the missing setting that prevented a provider call
type ConfigurationError struct {
	Setting string
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("required configuration missing: %s", e.Setting)
}

// Is checks if the target error is an ErrConfigurationMissing
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfigurationMissing
}

// NewConfigurationError creates a configuration error naming the absent setting
func NewConfigurationError(setting string) error {
	return &ConfigurationError{Setting: setting}
}

// IsAccountNotFoundError checks if the error is an account not found error
func IsAccountNotFoundError(err error) bool {
	return errors.Is(err, ErrAccountNotFound)
}

// IsInsufficientCreditsError checks if the error is related to insufficient credits
func IsInsufficientCreditsError(err error) bool {
	return errors.Is(err, ErrInsufficientCredits)
}

// IsContentModerationError checks if the error is a content-moderation rejection
func IsContentModerationError(err error) bool {
	return errors.Is(err, ErrContentModerationRejected)
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrGenerationNotFound) ||
		errors.Is(err, ErrModelNotFound)
}
