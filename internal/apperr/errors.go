// Package apperr holds the typed errors shared by the core packages and the
// HTTP boundary. Core code returns these; handlers map them to responses.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("already exists")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrUpstream          = errors.New("upstream unavailable")
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Field   string
	Details string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Details)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Details)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validation builds a ValidationError with a formatted detail message.
func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Details: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a missing owner, customer, item, bank account or quotation.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q %s", e.Resource, e.Key, ErrNotFound)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func NotFound(resource string, key any) error {
	return &NotFoundError{Resource: resource, Key: fmt.Sprint(key)}
}

// DuplicateError reports a collision on a natural key such as a quotation
// number or an item name.
type DuplicateError struct {
	Resource string
	Key      string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s %q %s", e.Resource, e.Key, ErrDuplicate)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicate }

func Duplicate(resource string, key any) error {
	return &DuplicateError{Resource: resource, Key: fmt.Sprint(key)}
}

// InvalidTransitionError reports a payment status change outside the
// transition table.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// AuthError covers bad credentials, bad tokens and the profile gate. A
// non-empty Redirect tells the client where to continue instead of failing.
type AuthError struct {
	Code     string
	Message  string
	Redirect string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnauthorized, e.Message)
}

func (e *AuthError) Unwrap() error { return ErrUnauthorized }

func Unauthorized(code, message string) error {
	return &AuthError{Code: code, Message: message}
}

// ProfileIncomplete is returned when an owner has not finished profile setup.
func ProfileIncomplete() error {
	return &AuthError{
		Code:     "profile_incomplete",
		Message:  "business profile must be completed first",
		Redirect: "/profile/setup",
	}
}

// UpstreamError wraps a database or identity provider failure. It is the
// only class an idempotent read may retry.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrUpstream, e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() []error { return []error{ErrUpstream, e.Err} }

func Upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}

// IsRetryable reports whether err may be retried by an idempotent read.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUpstream)
}
