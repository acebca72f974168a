package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound       = errors.New("resource not found")
	ErrReportNotFound = fmt.Errorf("%w: audit report", ErrNotFound)

	// Startup/configuration errors - fatal, abort the process
	ErrConfig = errors.New("invalid checklist configuration")

	// Contextual evaluation errors - recoverable unless strict mode
	ErrContextualUnavailable = errors.New("contextual evaluation unavailable")
	ErrMalformedPayload      = errors.New("malformed contextual payload")

	// Input errors
	ErrEmptyDocument = errors.New("requirement document is empty")
	ErrInputTooLarge = errors.New("requirement document exceeds hard input limit")
)

// Error constructors with context
func NewConfigError(detail string) error {
	return fmt.Errorf("%w: %s", ErrConfig, detail)
}

func NewConfigErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}

func NewContextualUnavailableError(cause error) error {
	return fmt.Errorf("%w: %v", ErrContextualUnavailable, cause)
}

func NewMalformedPayloadError(detail string) error {
	return fmt.Errorf("%w: %s", ErrMalformedPayload, detail)
}

func NewReportNotFoundError(id AuditID) error {
	return fmt.Errorf("%w: id %s", ErrReportNotFound, id)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig)
}

func IsContextualUnavailable(err error) bool {
	return errors.Is(err, ErrContextualUnavailable)
}

func IsMalformedPayload(err error) bool {
	return errors.Is(err, ErrMalformedPayload)
}
