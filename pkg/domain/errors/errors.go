// Package errors defines error kinds raised while building and mutating the object graph.
//
// Inspect them with errors.Is / errors.As of the standard library.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrMissing is wrapped by errors reporting that a requested object does not exist.
	ErrMissing = errors.New("missing")

	// ErrRecoverable is wrapped by every RecoverableDomainError.
	ErrRecoverable = errors.New("recoverable domain error")
)

// ConfigurationError signals a defect in per-type declarative configuration.
//
// It is never recovered automatically.
type ConfigurationError struct {
	Class  string
	Reason string
}

func NewConfiguration(class string, format string, args ...any) error {
	return &ConfigurationError{Class: class, Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	if e.Class == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error (%s): %s", e.Class, e.Reason)
}

// ValidationError is a user-facing failure raised before any graph mutation.
type ValidationError struct {
	// Field is the payload key or attribute at fault. It may be empty.
	Field   string
	Message string
}

func NewValidation(field string, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RecoverableDomainError is an expected failure of object construction.
//
// Only a creation error hook may recover it; otherwise it is fatal.
type RecoverableDomainError interface {
	error
	Recoverable()
}

// AsRecoverable finds a RecoverableDomainError in err's chain.
func AsRecoverable(err error) (RecoverableDomainError, bool) {
	var r RecoverableDomainError
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

// InsufficientCapacityError reports that a resource is too small for what is required from it.
type InsufficientCapacityError struct {
	// Object is the id of the resource lacking capacity.
	Object    string
	Attribute string
	Available float64
	Required  float64
	Unit      string
}

var _ RecoverableDomainError = &InsufficientCapacityError{}

func (e *InsufficientCapacityError) Recoverable() {}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf(
		"insufficient %s of %s: %v %s available, %v %s required",
		e.Attribute, e.Object, e.Available, e.Unit, e.Required, e.Unit,
	)
}

func (e *InsufficientCapacityError) Unwrap() error {
	return ErrRecoverable
}

// MissingError reports an unknown object id or class.
type MissingError struct {
	What     string
	Identity string
}

func NewMissing(what, identity string) error {
	return &MissingError{What: what, Identity: identity}
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s %q is not found", e.What, e.Identity)
}

func (e *MissingError) Unwrap() error {
	return ErrMissing
}

// CompensationFailure is returned when cleanup after a failed creation fails too.
//
// Both of the original error and the cleanup error are in its chain.
type CompensationFailure struct {
	Cause   error
	Cleanup error
}

func (e *CompensationFailure) Error() string {
	return fmt.Sprintf("%v (and cleanup failed: %v)", e.Cause, e.Cleanup)
}

func (e *CompensationFailure) Unwrap() []error {
	return []error{e.Cause, e.Cleanup}
}
