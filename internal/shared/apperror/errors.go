// Package apperror defines the error taxonomy shared by every domain.
// Domains build *Error values with a Kind and a stable code; the HTTP layer
// maps the Kind to a status code.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindRateLimited
	KindBadRequest
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	case KindBadRequest:
		return "bad_request"
	default:
		return "internal"
	}
}

// HTTPStatus maps a Kind to its response status.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	// Details is rendered as the "errors" field (field -> message for validation).
	Details interface{}
	// Extra fields merged into the response envelope, e.g. days_remaining.
	Extra map[string]interface{}
	Err   error
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

// Is matches two *Error values by code so sentinel errors work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// WithDetails returns a copy carrying details.
func (e *Error) WithDetails(details interface{}) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// WithExtra returns a copy carrying an extra envelope field.
func (e *Error) WithExtra(key string, value interface{}) *Error {
	cp := *e
	cp.Extra = make(map[string]interface{}, len(e.Extra)+1)
	for k, v := range e.Extra {
		cp.Extra[k] = v
	}
	cp.Extra[key] = value
	return &cp
}

// Wrap returns a copy of e that wraps cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

func Validation(code, message string, details interface{}) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message, Details: details}
}

func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Code: "SYS_001", Message: message, Err: cause}
}

// As extracts an *Error from err. Unclassified errors become internal.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("Internal server error", err)
}

// KindOf returns the kind of err, KindInternal for unclassified errors.
func KindOf(err error) Kind {
	return As(err).Kind
}
