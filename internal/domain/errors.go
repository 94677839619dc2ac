package domain

import (
	"errors"
	"fmt"
)

// StoreErrorKind categorises failures of the store API and the chat transport.
type StoreErrorKind string

const (
	// KindUnauthorized indicates rejected credentials. Not retried; surfaced
	// once as a credential alert until reconfigured.
	KindUnauthorized StoreErrorKind = "unauthorized"
	// KindNotFound indicates a caller error (unknown product/order/customer).
	KindNotFound StoreErrorKind = "not_found"
	// KindRateLimited indicates upstream throttling. Transient.
	KindRateLimited StoreErrorKind = "rate_limited"
	// KindUnreachable indicates timeouts and connection failures. Transient.
	KindUnreachable StoreErrorKind = "unreachable"
	// KindMalformed indicates an unexpected upstream response shape.
	KindMalformed StoreErrorKind = "malformed"
)

// StoreError is the uniform error type returned by the store client and the
// chat transport adapters.
type StoreError struct {
	Kind StoreErrorKind
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ErrorKind extracts the StoreErrorKind from err, if it carries one.
func ErrorKind(err error) (StoreErrorKind, bool) {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return "", false
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	kind, ok := ErrorKind(err)
	return ok && (kind == KindRateLimited || kind == KindUnreachable)
}

// ValidationError rejects admin input; the session re-prompts in place.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var (
	// ErrNotAuthorized rejects inbound events from senders outside the
	// admin allow-list. Deliberately carries no store data.
	ErrNotAuthorized = errors.New("sender is not an authorized admin")
)
