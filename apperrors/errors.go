package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindConflict
	KindComposition
	KindAuth
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindComposition:
		return "composition"
	case KindAuth:
		return "auth"
	default:
		return "internal"
	}
}

// Error is the error type returned by services. Message is safe to show to
// callers; Err carries the internal cause and is never serialized.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error { return New(KindValidation, message) }
func NotFound(message string) *Error   { return New(KindNotFound, message) }
func Forbidden(message string) *Error  { return New(KindForbidden, message) }
func Conflict(message string) *Error   { return New(KindConflict, message) }
func Auth(message string) *Error       { return New(KindAuth, message) }

func Composition(err error) *Error {
	return Wrap(KindComposition, "Quiz can't be created", err)
}

func Internal(err error) *Error {
	return Wrap(KindInternal, "internal server error", err)
}

// KindOf reports the Kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// PublicMessage returns the caller-facing message for err.
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return "internal server error"
}

// HTTPStatus maps the Kind of err to a response status.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindConflict, KindComposition:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
