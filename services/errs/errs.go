// Package errs defines the domain error taxonomy of the tracking engine.
// Services reject invalid operations with a typed kind; the HTTP layer maps
// kinds to status codes without inspecting messages.
package errs

import "errors"

// Kind identifies the class of a domain rule violation.
type Kind string

const (
	KindNotFound       Kind = "NOT_FOUND"       // referenced entity does not exist
	KindInvalidState   Kind = "INVALID_STATE"   // operation not valid for the current lifecycle state
	KindConflict       Kind = "CONFLICT"        // lost a concurrent race, or duplicate binding
	KindReviewRequired Kind = "REVIEW_REQUIRED" // low-confidence seal without a confirmed review
	KindReasonRequired Kind = "REASON_REQUIRED" // flagged comparison annotated without a reason
	KindLimitExceeded  Kind = "LIMIT_EXCEEDED"  // item cap reached
	KindAlreadyExists  Kind = "ALREADY_EXISTS"  // uniqueness violation
	KindValidation     Kind = "VALIDATION"      // request data fails a domain constraint
)

// Error is a domain rule violation with a human-readable message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func NotFound(message string) *Error       { return New(KindNotFound, message) }
func InvalidState(message string) *Error   { return New(KindInvalidState, message) }
func Conflict(message string) *Error       { return New(KindConflict, message) }
func ReviewRequired(message string) *Error { return New(KindReviewRequired, message) }
func ReasonRequired(message string) *Error { return New(KindReasonRequired, message) }
func LimitExceeded(message string) *Error  { return New(KindLimitExceeded, message) }
func AlreadyExists(message string) *Error  { return New(KindAlreadyExists, message) }
func Validation(message string) *Error     { return New(KindValidation, message) }

// KindOf returns the kind of a domain error, or "" for infrastructure errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
