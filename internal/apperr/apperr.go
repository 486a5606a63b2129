// Package apperr defines the failure kinds every storefront operation reports.
// Services return *Error values (or wrap them); only the HTTP layer decides
// how a kind is presented.
package apperr

import (
	"context"
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation      Kind = "validation"
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindUnavailable     Kind = "unavailable"
	KindInternal        Kind = "internal"
)

// Message keys shared with the i18n catalog.
const (
	CodeInvalidInput       = "invalid_input"
	CodeSignInRequired     = "sign_in_required"
	CodeInvalidCredentials = "invalid_credentials"
	CodeSessionExpired     = "session_expired"
	CodeAdminOnly          = "admin_only"
	CodeEmailTaken         = "email_taken"
	CodePasswordMismatch   = "password_mismatch"
	CodePasswordTooShort   = "password_too_short"
	CodeProductNotFound    = "product_not_found"
	CodeCartItemNotFound   = "cart_item_not_found"
	CodeOrderNotFound      = "order_not_found"
	CodeCartEmpty          = "cart_empty"
	CodeInsufficientStock  = "insufficient_stock"
	CodeInvalidStatus      = "invalid_status"
	CodeIllegalTransition  = "illegal_transition"
	CodeMissingField       = "missing_field"
	CodeServiceUnavailable = "service_unavailable"
	CodeInternal           = "internal_error"
)

type Error struct {
	Kind Kind
	Code string
	// Detail is a developer-facing description; it is logged, not shown.
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := string(e.Kind) + ": " + e.Code
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind and code, so sentinel values work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && (t.Code == "" || e.Code == t.Code)
}

// Transient reports whether retrying the same call may succeed.
func (e *Error) Transient() bool { return e.Kind == KindUnavailable }

func New(kind Kind, code, detail string) *Error {
	return &Error{Kind: kind, Code: code, Detail: detail}
}

func Wrap(kind Kind, code string, err error) *Error {
	return &Error{Kind: kind, Code: code, Err: err}
}

func Validation(code, detail string) *Error { return New(KindValidation, code, detail) }

func NotFound(code string) *Error { return New(KindNotFound, code, "") }

func Conflict(code, detail string) *Error { return New(KindConflict, code, detail) }

func Unauthenticated(code string) *Error { return New(KindUnauthenticated, code, "") }

func Forbidden(code string) *Error { return New(KindForbidden, code, "") }

// Internal classifies an unexpected error from a lower layer. Context
// cancellation and deadlines are reported as unavailable so callers can retry.
func Internal(op string, err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Kind: KindUnavailable, Code: CodeServiceUnavailable, Detail: op, Err: err}
	}
	return &Error{Kind: KindInternal, Code: CodeInternal, Detail: op, Err: err}
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// CodeOf returns the message key of err, CodeInternal for foreign errors.
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}

func Errorf(kind Kind, code, format string, args ...any) *Error {
	return New(kind, code, fmt.Sprintf(format, args...))
}
