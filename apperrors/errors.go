package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies the kind of an AppError.
type Code string

const (
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeNotFound          Code = "NOT_FOUND"
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeForbidden         Code = "FORBIDDEN"
	CodeConflict          Code = "CONFLICT"
	CodeRateLimited       Code = "RATE_LIMITED"
	CodeDeliveryTransient Code = "DELIVERY_TRANSIENT"
	CodeDeliveryPermanent Code = "DELIVERY_PERMANENT"
	CodeStoreUnavailable  Code = "STORE_UNAVAILABLE"
	CodeInternal          Code = "INTERNAL"
)

// AppError is the error type shared by the store, service and HTTP layers.
type AppError struct {
	Code     Code        `json:"code"`
	Message  string      `json:"message"`
	Details  interface{} `json:"details,omitempty"`
	Err      error       `json:"-"`
	HTTPCode int         `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError of the same Code, so the kind
// sentinels below work with errors.Is regardless of message or cause.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithDetails returns a copy of e carrying details.
func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

func New(code Code, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, HTTPCode: httpCode}
}

func Wrap(err error, code Code, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, Err: err, HTTPCode: httpCode}
}

// Kind sentinels. Compare with errors.Is, never mutate.
var (
	ErrValidation        = New(CodeValidation, "Validation failed", http.StatusBadRequest)
	ErrNotFound          = New(CodeNotFound, "Not found", http.StatusNotFound)
	ErrUnauthorized      = New(CodeUnauthorized, "Authentication required", http.StatusUnauthorized)
	ErrForbidden         = New(CodeForbidden, "Access denied", http.StatusForbidden)
	ErrConflict          = New(CodeConflict, "Conflict", http.StatusConflict)
	ErrRateLimited       = New(CodeRateLimited, "Too many requests", http.StatusTooManyRequests)
	ErrDeliveryTransient = New(CodeDeliveryTransient, "Push delivery failed", http.StatusBadGateway)
	ErrDeliveryPermanent = New(CodeDeliveryPermanent, "Push token rejected", http.StatusBadGateway)
	ErrStoreUnavailable  = New(CodeStoreUnavailable, "Store unavailable", http.StatusServiceUnavailable)
	ErrInternal          = New(CodeInternal, "Internal server error", http.StatusInternalServerError)
)

func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest)
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, message, http.StatusNotFound)
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict)
}

func StoreUnavailable(err error, message string) *AppError {
	return Wrap(err, CodeStoreUnavailable, message, http.StatusServiceUnavailable)
}

func DeliveryPermanent(message string) *AppError {
	return New(CodeDeliveryPermanent, message, http.StatusBadGateway)
}

func DeliveryTransient(err error, message string) *AppError {
	return Wrap(err, CodeDeliveryTransient, message, http.StatusBadGateway)
}

// HTTPStatus returns the status code carried by the first AppError in err's
// chain, or 500.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.HTTPCode != 0 {
		return appErr.HTTPCode
	}
	return http.StatusInternalServerError
}
