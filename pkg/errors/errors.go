// Package errors defines the error taxonomy returned by the A. O. Smith API wrapper.
//
// Every failure that crosses the public API is one of three kinds:
// invalid credentials, invalid parameters, or unknown. Callers branch with
// errors.As on the concrete types or with KindOf.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a DomainError.
type Kind int

const (
	// KindUnknown covers transport failures, unexpected HTTP statuses,
	// malformed responses, exhausted retries and missing devices.
	KindUnknown Kind = iota
	// KindInvalidCredentials means the server rejected the email/password pair.
	KindInvalidCredentials
	// KindInvalidParameters means a caller-supplied argument broke a domain rule.
	KindInvalidParameters
)

func (k Kind) String() string {
	switch k {
	case KindInvalidCredentials:
		return "invalid credentials"
	case KindInvalidParameters:
		return "invalid parameters"
	default:
		return "unknown"
	}
}

// DomainError is implemented by every error kind in this package.
type DomainError interface {
	error
	Kind() Kind
}

// InvalidCredentialsError indicates the server rejected the supplied email/password.
type InvalidCredentialsError struct {
	// Message contains the detailed error message
	Message string
}

func (e *InvalidCredentialsError) Error() string {
	if e.Message == "" {
		return "invalid credentials"
	}
	return fmt.Sprintf("invalid credentials: %s", e.Message)
}

// Kind implements DomainError.
func (e *InvalidCredentialsError) Kind() Kind { return KindInvalidCredentials }

// InvalidParametersError indicates a caller-supplied argument violates a domain rule.
type InvalidParametersError struct {
	// Field names the offending argument, if any
	Field string
	// Message contains the detailed error message
	Message string
}

func (e *InvalidParametersError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid parameters in field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid parameters: %s", e.Message)
}

// Kind implements DomainError.
func (e *InvalidParametersError) Kind() Kind { return KindInvalidParameters }

// UnknownError covers every other failure.
//
// Err is kept for errors.Is/As but is not part of the message: transport
// failures surface as a stable generic text.
type UnknownError struct {
	// Message contains the detailed error message
	Message string
	// StatusCode is the HTTP status code, if the failure came from one
	StatusCode int
	// Err contains the underlying error if available
	Err error
}

func (e *UnknownError) Error() string {
	if e.Message == "" {
		return "unknown error"
	}
	return fmt.Sprintf("unknown error: %s", e.Message)
}

// Kind implements DomainError.
func (e *UnknownError) Kind() Kind { return KindUnknown }

func (e *UnknownError) Unwrap() error {
	return e.Err
}

// KindOf reports the kind of err. Errors outside the taxonomy are KindUnknown.
func KindOf(err error) Kind {
	var de DomainError
	if errors.As(err, &de) {
		return de.Kind()
	}
	return KindUnknown
}

// IsInvalidCredentials reports whether err is an InvalidCredentialsError.
func IsInvalidCredentials(err error) bool {
	var target *InvalidCredentialsError
	return errors.As(err, &target)
}

// IsInvalidParameters reports whether err is an InvalidParametersError.
func IsInvalidParameters(err error) bool {
	var target *InvalidParametersError
	return errors.As(err, &target)
}

// IsUnknown reports whether err is an UnknownError.
func IsUnknown(err error) bool {
	var target *UnknownError
	return errors.As(err, &target)
}
