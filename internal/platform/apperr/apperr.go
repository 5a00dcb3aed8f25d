// Package apperr defines the error taxonomy shared by the domain services.
// Handlers translate these into HTTP status codes (and OperationOutcome
// bodies on FHIR routes) at the API boundary.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind int

const (
	// KindNotFound means a referenced code, region, or record does not exist.
	KindNotFound Kind = iota
	// KindValidation means a required field is missing or malformed.
	KindValidation
	// KindConflict means a uniqueness constraint was hit. Mapping inserts
	// absorb this silently (ON CONFLICT DO NOTHING); it is surfaced only
	// where a duplicate is a genuine caller error.
	KindConflict
	// KindUpstreamUnavailable means an external service (prediction or
	// embedding search) is unreachable. Callers should retry later.
	KindUpstreamUnavailable
	// KindBatchAborted means a batch job hit a fatal condition mid-run and
	// requires an operator re-run.
	KindBatchAborted
)

// Error is an application error with a classification.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound creates a not-found error naming the missing identifier.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// Conflict creates a conflict error.
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// UpstreamUnavailable wraps an upstream connectivity failure.
func UpstreamUnavailable(msg string, err error) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Msg: msg, Err: err}
}

// BatchAborted wraps a fatal batch-job failure.
func BatchAborted(msg string, err error) *Error {
	return &Error{Kind: KindBatchAborted, Msg: msg, Err: err}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return IsKind(err, KindValidation) }

// IsConflict reports whether err is a conflict error.
func IsConflict(err error) bool { return IsKind(err, KindConflict) }

// IsUpstreamUnavailable reports whether err is an upstream-unavailable error.
func IsUpstreamUnavailable(err error) bool { return IsKind(err, KindUpstreamUnavailable) }

// IsBatchAborted reports whether err is a batch-aborted error.
func IsBatchAborted(err error) bool { return IsKind(err, KindBatchAborted) }
