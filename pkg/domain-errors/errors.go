// Package domainerrors provides coded errors shared by services, stores, and
// the transport layer. Services attach a Code describing the domain fact;
// the HTTP layer translates codes into status responses without inspecting
// error strings.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error. Codes are part of the API contract: they
// are returned verbatim in error envelopes so callers can branch on them.
type Code string

const (
	// CodeInvalidInput marks malformed or missing request fields.
	CodeInvalidInput Code = "invalid_input"
	// CodeUnauthorized marks a caller lacking the required role or ownership.
	CodeUnauthorized Code = "unauthorized"
	// CodeNotRegistered marks a lookup for an identity with no account.
	CodeNotRegistered Code = "not_registered"
	// CodeNotFound marks a lookup miss for a certificate or artifact.
	CodeNotFound Code = "not_found"
	// CodeAlreadyExists marks a duplicate identity or certificate id.
	CodeAlreadyExists Code = "already_exists"
	// CodeInvalidTransition marks a state-machine violation, including a
	// second review of an already-resolved certificate.
	CodeInvalidTransition Code = "invalid_transition"
	// CodeSubstrate marks an availability fault in the backing store. It is
	// the only code callers may retry without changing the request.
	CodeSubstrate Code = "substrate_failure"
	// CodeInternal marks everything that should not have happened.
	CodeInternal Code = "internal"
)

// Error carries a code alongside the usual error chain.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code to an underlying error while keeping it unwrappable.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// HasCode reports whether err, or anything it wraps, carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from an error chain, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code onto the status the transport layer should write.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeNotRegistered, CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists, CodeInvalidTransition:
		return http.StatusConflict
	case CodeSubstrate:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
