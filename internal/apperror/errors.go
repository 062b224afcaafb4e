// Package apperror defines the error kinds the service distinguishes and maps
// them to HTTP responses at the request boundary.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// authentication
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token expired")
	ErrBadCredentials = errors.New("invalid email or password")

	// registry
	ErrRegistryLookupFailed      = errors.New("no drug records found")
	ErrRegistryTimeout           = fmt.Errorf("%w: registry timeout", ErrRegistryLookupFailed)
	ErrMalformedRegistryResponse = errors.New("malformed registry response")

	// storage
	ErrRecordNotFound       = errors.New("drug record not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrRegistrationConflict = errors.New("can't register this user")
)

// ValidationError carries one message per violated request field.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// NewValidationError builds a ValidationError from the given messages.
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

// NotFoundError reports a missing drug record together with the identifier
// that was looked up.
type NotFoundError struct {
	ApplicationNumber string
}

func (e *NotFoundError) Error() string {
	return ErrRecordNotFound.Error() + ": " + e.ApplicationNumber
}

func (e *NotFoundError) Unwrap() error { return ErrRecordNotFound }

// RecordNotFound wraps ErrRecordNotFound with the identifier that was looked up.
func RecordNotFound(applicationNumber string) error {
	return &NotFoundError{ApplicationNumber: applicationNumber}
}
