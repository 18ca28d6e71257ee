package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrUserNotFound      = NewError(ErrCodeNotFound, "user not found")
	ErrTaskNotFound      = NewError(ErrCodeNotFound, "task not found")
	ErrLeaveNotFound     = NewError(ErrCodeNotFound, "leave request not found")
	ErrLeaveTypeNotFound = NewError(ErrCodeNotFound, "leave type not found")
	ErrBalanceNotFound   = NewError(ErrCodeNotFound, "leave balance not found")
	ErrSessionNotFound   = NewError(ErrCodeNotFound, "session not found")
	ErrUnauthorized      = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrForbidden         = NewError(ErrCodeForbidden, "forbidden")
	ErrInvalidPayload    = NewError(ErrCodeInvalid, "invalid payload")

	ErrInvalidTransition = NewError(ErrCodeInvalid, "invalid status transition")
	ErrEmptyComment      = NewError(ErrCodeInvalid, "comment is required")
	ErrInvalidRange      = NewError(ErrCodeInvalid, "invalid date range")
	ErrUnitNotAllowed    = NewError(ErrCodeInvalid, "day unit not allowed for leave type")
	ErrInvalidDateFilter = NewError(ErrCodeInvalid, "invalid date filter")
	ErrLeaveSpanTooLong  = NewError(ErrCodeInvalid, "leave range is too long")

	ErrTransitionConflict = NewError(ErrCodeConflict, "task status changed since it was read")
)

// ExceedsBalanceError reports how many days a request goes over the remaining balance.
type ExceedsBalanceError struct {
	Excess decimal.Decimal
}

func (e *ExceedsBalanceError) Error() string {
	return fmt.Sprintf("applied days exceed balance by %s", e.Excess.String())
}

// Code lets ExceedsBalanceError take part in IsDomainError checks.
func (e *ExceedsBalanceError) Code() ErrorCode {
	return ErrCodeInvalid
}

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	var exceeds *ExceedsBalanceError
	if errors.As(err, &exceeds) {
		return exceeds.Code() == code
	}
	return false
}
