package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind represents the type of error
type Kind int

const (
	ErrInternal Kind = iota
	ErrNotFound
	ErrValidation
	ErrConflict
	ErrInvalidInput
	ErrPreconditionFailed
	ErrQuotaMismatch
	ErrNoEligibleItems
	ErrSequenceConflict
	ErrInvariantViolation
)

var kindNames = map[Kind]string{
	ErrInternal:           "internal",
	ErrNotFound:           "not_found",
	ErrValidation:         "validation",
	ErrConflict:           "conflict",
	ErrInvalidInput:       "invalid_input",
	ErrPreconditionFailed: "precondition_failed",
	ErrQuotaMismatch:      "quota_mismatch",
	ErrNoEligibleItems:    "no_eligible_items",
	ErrSequenceConflict:   "sequence_conflict",
	ErrInvariantViolation: "invariant_violation",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Guard rejection reasons carried by PreconditionFailed errors
const (
	ReasonHeatNotOpen    = "heat_not_open"
	ReasonHeatLocked     = "heat_locked"
	ReasonHeatClosed     = "heat_closed"
	ReasonSignupResolved = "signup_resolved"
)

// Error is an application-level error with a kind for classification
type Error struct {
	Kind    Kind
	Reason  string // machine-readable detail, set for precondition failures
	Message string
	Err     error // underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Constructor functions for common error types

func NotFound(msg string) *Error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func Validation(msg string) *Error {
	return &Error{Kind: ErrValidation, Message: msg}
}

func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func Conflict(msg string) *Error {
	return &Error{Kind: ErrConflict, Message: msg}
}

func Conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

func InvalidInput(msg string) *Error {
	return &Error{Kind: ErrInvalidInput, Message: msg}
}

func InvalidInputf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func Internal(err error) *Error {
	return &Error{Kind: ErrInternal, Message: "internal error", Err: err}
}

func Internalf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrInternal, Message: fmt.Sprintf(format, args...)}
}

// PreconditionFailed reports a guard rejection. Never retried.
func PreconditionFailed(reason, msg string) *Error {
	return &Error{Kind: ErrPreconditionFailed, Reason: reason, Message: msg}
}

func QuotaMismatch(msg string) *Error {
	return &Error{Kind: ErrQuotaMismatch, Message: msg}
}

func QuotaMismatchf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrQuotaMismatch, Message: fmt.Sprintf(format, args...)}
}

func NoEligibleItems(msg string) *Error {
	return &Error{Kind: ErrNoEligibleItems, Message: msg}
}

func NoEligibleItemsf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrNoEligibleItems, Message: fmt.Sprintf(format, args...)}
}

func SequenceConflict(err error) *Error {
	return &Error{Kind: ErrSequenceConflict, Message: "roll sequence conflict", Err: err}
}

func InvariantViolation(msg string) *Error {
	return &Error{Kind: ErrInvariantViolation, Message: msg}
}

func InvariantViolationf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrInvariantViolation, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with additional context
func Wrap(err error, kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or ErrInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return ErrInternal
}

// Is reports whether err carries an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return stderrors.As(err, &appErr) && appErr.Kind == kind
}
