// Package domainerrors provides coded errors for the compliance engine.
//
// Every failure a caller is expected to branch on carries a Code. Services
// construct these at the domain boundary; stores return sentinel errors
// (pkg/platform/sentinel) which services translate into coded errors here.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error. The set mirrors the engine's failure
// taxonomy: capability checks, idempotency violations, referential
// integrity, batch arity, and the two first-class negative results of the
// gating path (compliance rejection, verification failure).
type Code string

const (
	CodePermissionDenied   Code = "permission_denied"
	CodeAlreadyExists      Code = "already_exists"
	CodeAlreadyRegistered  Code = "already_registered"
	CodeAlreadyBound       Code = "already_bound"
	CodeNotFound           Code = "not_found"
	CodeUnknownTopic       Code = "unknown_topic"
	CodeArityMismatch      Code = "arity_mismatch"
	CodeComplianceRejected Code = "compliance_rejected"
	CodeVerificationFailed Code = "verification_failed"
	CodeInvalidInput       Code = "invalid_input"
	CodeInvariantViolation Code = "invariant_violation"
	CodeInternal           Code = "internal_error"
)

// Error is a coded domain error, optionally wrapping a cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with no cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a code and message while preserving the chain.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		de = nil
	}
	return false
}

// Is mirrors errors.Is so callers don't need both imports.
func Is(err, target error) bool { return errors.Is(err, target) }

// MessageOf returns the outermost coded message in the chain, or the plain
// error text when the error carries no code.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// CodeOf returns the outermost code in the chain, or CodeInternal when the
// error carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
