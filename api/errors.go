// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-fabric.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrCapacityExhausted = errors.New("buffer pool capacity exhausted")
	ErrAllocFailed       = errors.New("region memory allocation failed")
	ErrHookFailed        = errors.New("region alloc hook failed")
	ErrNotSupported      = errors.New("operation not supported")
	ErrPoolDestroyed     = errors.New("buffer pool is destroyed")
	ErrLeakDetected      = errors.New("buffers still in use at destroy")
	ErrCorruptImage      = errors.New("shared free list image is corrupt")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeCapacityExhausted
	ErrCodeAllocFailed
	ErrCodeHookFailed
	ErrCodeNotSupported
	ErrCodeLeak
	ErrCodeDestroyed
	ErrCodeCorrupt
	ErrCodeInternal
)

// String names the code for logs.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "ok"
	case ErrCodeInvalidArgument:
		return "invalid_argument"
	case ErrCodeCapacityExhausted:
		return "capacity_exhausted"
	case ErrCodeAllocFailed:
		return "alloc_failed"
	case ErrCodeHookFailed:
		return "hook_failed"
	case ErrCodeNotSupported:
		return "not_supported"
	case ErrCodeLeak:
		return "leak"
	case ErrCodeDestroyed:
		return "destroyed"
	case ErrCodeCorrupt:
		return "corrupt"
	default:
		return "internal"
	}
}

// Error represents a structured error with code and context.
// Cause, when set, is reachable through errors.Is / errors.As.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

// Unwrap exposes the cause.
func (e *Error) Unwrap() error { return e.Cause }

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithCause attaches the underlying error.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// CodeOf extracts the ErrorCode from err, mapping the sentinels as well.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrCodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return ErrCodeInvalidArgument
	case errors.Is(err, ErrCapacityExhausted):
		return ErrCodeCapacityExhausted
	case errors.Is(err, ErrAllocFailed):
		return ErrCodeAllocFailed
	case errors.Is(err, ErrHookFailed):
		return ErrCodeHookFailed
	case errors.Is(err, ErrNotSupported):
		return ErrCodeNotSupported
	case errors.Is(err, ErrLeakDetected):
		return ErrCodeLeak
	case errors.Is(err, ErrPoolDestroyed):
		return ErrCodeDestroyed
	case errors.Is(err, ErrCorruptImage):
		return ErrCodeCorrupt
	}
	return ErrCodeInternal
}
