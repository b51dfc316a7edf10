package repository

import (
	"strings"
)

// ErrorClassifier provides methods to classify database errors by their
// message text, since the postgres driver doesn't expose typed errors for
// all of these cases.
type ErrorClassifier struct{}

// NewErrorClassifier creates a new ErrorClassifier
func NewErrorClassifier() *ErrorClassifier {
	return &ErrorClassifier{}
}

// IsDuplicateKeyError checks if the error is a duplicate key error
func (c *ErrorClassifier) IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "duplicate key") ||
		strings.Contains(err.Error(), "UNIQUE constraint") ||
		strings.Contains(err.Error(), "Duplicate entry")
}

// IsTransientError checks if an error is transient and can be retried
func (c *ErrorClassifier) IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "connection reset") ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "timeout") ||
		strings.Contains(err.Error(), "EOF") ||
		strings.Contains(err.Error(), "server closed") ||
		strings.Contains(err.Error(), "broken pipe")
}

// IsSerializationError checks if the error is a transaction serialization
// conflict between the conditional balance update and a concurrent writer
func (c *ErrorClassifier) IsSerializationError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "deadlock") ||
		strings.Contains(err.Error(), "could not serialize access") ||
		strings.Contains(err.Error(), "serialization failure")
}

// IsConnectionError checks if the error is related to database connectivity
func (c *ErrorClassifier) IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "connection") ||
		strings.Contains(err.Error(), "dial") ||
		strings.Contains(err.Error(), "network") ||
		c.IsTransientError(err)
}
