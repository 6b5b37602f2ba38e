package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an application error and decides the HTTP status it maps to.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindAuth
	KindUpload
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindConflict:
		return "ConflictError"
	case KindNotFound:
		return "NotFoundError"
	case KindAuth:
		return "AuthError"
	case KindUpload:
		return "UploadError"
	default:
		return "InternalError"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindUpload:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error is returned by services for every failure a client can observe.
// Err keeps the underlying cause for logging; it is never rendered.
type Error struct {
	Kind    Kind
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status code of the error.
func (e *Error) Status() int { return e.Kind.Status() }

// WithDetails attaches field-level details rendered into the response.
func (e *Error) WithDetails(d any) *Error {
	e.Details = d
	return e
}

func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func Validation(message string) *Error { return New(KindValidation, message, nil) }
func Conflict(message string) *Error   { return New(KindConflict, message, nil) }
func NotFound(message string) *Error   { return New(KindNotFound, message, nil) }
func Auth(message string) *Error       { return New(KindAuth, message, nil) }

func Upload(message string, cause error) *Error   { return New(KindUpload, message, cause) }
func Internal(message string, cause error) *Error { return New(KindInternal, message, cause) }

// From converts any error into an *Error. Errors that are not already
// application errors become InternalError with a generic message.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal("internal server error", err)
}

// Is reports whether err is an application error of the given kind.
func Is(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}
