package envbase

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	// Data errors
	ErrNotFound   = errors.New("key not found")
	ErrInvalidKey = errors.New("invalid key")

	// Descriptor and classification errors
	ErrUnrecognizedBackend = errors.New("unrecognized backend descriptor")
	ErrInvalidDescriptor   = errors.New("invalid connection descriptor")
	ErrInvalidCollection   = errors.New("invalid collection or table name")

	// Session errors
	ErrNoStoreConfigured = errors.New("no store configured")
	ErrNotInitialized    = errors.New("session not initialized")

	// Environment file errors
	ErrInvalidEnvFile = errors.New("invalid environment file")

	// Mirror errors
	ErrMirrorDiverged = errors.New("environment mirror diverged from store")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ErrorWithContext adds additional context to errors for better debugging and logging
type ErrorWithContext struct {
	Err     error
	Context map[string]interface{}
}

func (e *ErrorWithContext) Error() string {
	if len(e.Context) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v (context: %+v)", e.Err, e.Context)
}

func (e *ErrorWithContext) Unwrap() error {
	return e.Err
}

// WithContext adds context to an error
func WithContext(err error, context map[string]interface{}) error {
	if err == nil {
		return nil
	}
	return &ErrorWithContext{
		Err:     err,
		Context: context,
	}
}

// DescriptorError reports a connection descriptor that classified cleanly but
// failed during connect or liveness checking. It carries the driver's cause.
type DescriptorError struct {
	Descriptor string
	Cause      error
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("invalid connection descriptor %q: %v", e.Descriptor, e.Cause)
}

func (e *DescriptorError) Unwrap() error {
	return e.Cause
}

// Is reports ErrInvalidDescriptor so callers can match the whole class with
// errors.Is without losing the driver cause.
func (e *DescriptorError) Is(target error) bool {
	return target == ErrInvalidDescriptor
}

// NewDescriptorError wraps a driver failure for the given descriptor
func NewDescriptorError(descriptor string, cause error) error {
	if cause == nil {
		return nil
	}
	return &DescriptorError{Descriptor: descriptor, Cause: cause}
}

// Common error checking helpers

// IsNotFound checks if an error is a "key not found" error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidDescriptor checks if an error stems from a descriptor that could
// not be classified or connected
func IsInvalidDescriptor(err error) bool {
	return errors.Is(err, ErrInvalidDescriptor) || errors.Is(err, ErrUnrecognizedBackend)
}

// IsValidationError checks if an error is a caller-input validation failure
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidKey) ||
		errors.Is(err, ErrInvalidCollection) ||
		errors.Is(err, ErrInvalidEnvFile) ||
		errors.Is(err, ErrInvalidConfig)
}
