// Package api
// Author: momentics <momentics@gmail.com>
//
// Portable error types for rawsock. OS failures are carried as *OSError with the
// raw OS code attached; invalid input is carried as *Error with an ErrorCode.

package api

import (
	"errors"
	"fmt"
	"syscall"
)

// ErrorCode classifies errors produced by the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeInvalidAddrFamily
	ErrCodeShortAddress
	ErrCodeNotBound
	ErrCodeClosed
	ErrCodeNotSupported
	ErrCodeOS
	ErrCodeShutdown
	ErrCodeInternal
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "ok"
	case ErrCodeInvalidArgument:
		return "invalid argument"
	case ErrCodeInvalidAddrFamily:
		return "invalid address family"
	case ErrCodeShortAddress:
		return "short address"
	case ErrCodeNotBound:
		return "not bound"
	case ErrCodeClosed:
		return "closed"
	case ErrCodeNotSupported:
		return "not supported"
	case ErrCodeOS:
		return "os error"
	case ErrCodeShutdown:
		return "shutdown"
	default:
		return "internal"
	}
}

// Common errors used across the library. They are matched by code, so an
// *Error carrying extra context still satisfies errors.Is against these.
var (
	ErrInvalidArgument   = NewError(ErrCodeInvalidArgument, "invalid argument")
	ErrInvalidAddrFamily = NewError(ErrCodeInvalidAddrFamily, "invalid address family")
	ErrShortAddress      = NewError(ErrCodeShortAddress, "address buffer shorter than its family requires")
	ErrNotBound          = NewError(ErrCodeNotBound, "socket has no local name")
	ErrClosed            = NewError(ErrCodeClosed, "socket already closed")
	ErrNotSupported      = NewError(ErrCodeNotSupported, "operation not supported on this platform")
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithContext returns a copy of e with key set to value. The receiver is left
// untouched so package-level sentinels can be decorated safely.
func (e *Error) WithContext(key string, value any) *Error {
	ctx := make(map[string]any, len(e.Context)+1)
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &Error{Code: e.Code, Message: e.Message, Context: ctx}
}

// OSError is a failed OS call. Errno is captured at the point of failure.
type OSError struct {
	Op    string
	Errno syscall.Errno
	// Code is ErrCodeOS, or ErrCodeShutdown when Errno means the socket can no
	// longer send because the connection was shut down.
	Code ErrorCode
}

// NewOSError wraps errno for op. Errors that are not an errno are returned as is.
func NewOSError(op string, err error) error {
	if err == nil {
		return nil
	}
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return err
	}
	return &OSError{Op: op, Errno: errno, Code: ErrCodeOS}
}

func (e *OSError) Error() string {
	return fmt.Sprintf("%s: %s (os error %d)", e.Op, e.Errno.Error(), uintptr(e.Errno))
}

// Unwrap returns the errno, so errors.Is(err, syscall.ECONNREFUSED) works.
func (e *OSError) Unwrap() error { return e.Errno }

// RawCode returns the raw OS error code.
func (e *OSError) RawCode() uintptr { return uintptr(e.Errno) }

// Timeout reports whether the errno is a timeout.
func (e *OSError) Timeout() bool { return e.Errno.Timeout() }

// Temporary reports whether the errno is temporary.
func (e *OSError) Temporary() bool { return e.Errno.Temporary() }

// IsShutdown reports whether err is the benign "already shut down" send failure.
func IsShutdown(err error) bool {
	var oe *OSError
	return errors.As(err, &oe) && oe.Code == ErrCodeShutdown
}

// CodeOf classifies err.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrCodeOK
	}
	var oe *OSError
	if errors.As(err, &oe) {
		return oe.Code
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}
