// Package apperr defines the error taxonomy shared by all services. Every
// failure path returns one of these kinds so the HTTP layer can map errors
// onto statuses in a single place.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers.
type Kind int

const (
	// KindInternal covers anything unexpected. Logged with full detail
	// server-side, reported to the caller without internals.
	KindInternal Kind = iota
	// KindValidation means the caller supplied a malformed request.
	KindValidation
	// KindNotFound means a referenced entity does not exist.
	KindNotFound
	// KindBusinessRule means a well-formed request the system refuses to
	// process: wrong owner, inactive card, insufficient funds.
	KindBusinessRule
	// KindCorruptedData signals a systemic integrity problem, such as a
	// stored card number that no longer decrypts. Never downgraded to a
	// not-found condition.
	KindCorruptedData
	// KindUnauthorized means missing or invalid credentials.
	KindUnauthorized
)

// Error carries a kind and a caller-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a KindValidation error. No state was mutated.
func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

// NotFound builds a KindNotFound error.
func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

// BusinessRule builds a KindBusinessRule error. The message may reference
// masked card numbers, never raw ones.
func BusinessRule(msg string) *Error { return &Error{Kind: KindBusinessRule, Message: msg} }

// CorruptedData builds a KindCorruptedData error wrapping the cause.
func CorruptedData(msg string, err error) *Error {
	return &Error{Kind: KindCorruptedData, Message: msg, Err: err}
}

// Unauthorized builds a KindUnauthorized error.
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }

// KindOf extracts the kind from err, defaulting to KindInternal for
// untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-safe message for err. Untyped errors get a
// generic message so internals never leak.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
