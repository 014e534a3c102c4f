package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Scoring errors
	ErrNotStarted       = errors.New("test has not been started")
	ErrRunComplete      = errors.New("test run already complete")
	ErrUnknownTestType  = errors.New("unknown test type")
	ErrUnknownSelection = errors.New("unknown selection")

	// Report-generation errors
	ErrReportFailed     = errors.New("report generation failed")
	ErrInvalidReport    = errors.New("structurally invalid report payload")
	ErrEmptyResponse    = errors.New("provider returned empty response")
	ErrNoProviders      = errors.New("no report providers configured")
	ErrAllProvidersDown = fmt.Errorf("%w: every provider failed", ErrReportFailed)
)

// NewValidationError builds a field-level validation failure
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}
