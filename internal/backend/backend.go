// Package backend
// Author: momentics <momentics@gmail.com>
//
// Platform-independent factory for SocketBackend implementations.

package backend

import (
	"errors"
	"sync"
	"syscall"

	"github.com/momentics/rawsock/api"
)

var (
	defaultOnce    sync.Once
	defaultBackend api.SocketBackend
)

// New returns a backend suitable to the host platform.
func New() api.SocketBackend {
	return newBackendInternal()
}

// Default returns the process-wide host backend.
func Default() api.SocketBackend {
	defaultOnce.Do(func() {
		defaultBackend = newBackendInternal()
	})
	return defaultBackend
}

// osErr builds the error for a failed call. Send-family callers pass
// send=true so that the platform shutdown errnos are classified as
// api.ErrCodeShutdown.
func osErr(op string, errno syscall.Errno, send bool) error {
	oe := &api.OSError{Op: op, Errno: errno, Code: api.ErrCodeOS}
	if send && isShutdownErrno(errno) {
		oe.Code = api.ErrCodeShutdown
	}
	return oe
}

// wrapErr is osErr for helpers that already return an error value.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errno, ok := err.(syscall.Errno); ok {
		return osErr(op, errno, false)
	}
	return err
}

// ConnectStarted reports whether a failed connect reached the point where the
// OS binds the socket implicitly. Rejections of the address itself do not.
func ConnectStarted(err error) bool {
	var oe *api.OSError
	if !errors.As(err, &oe) {
		return false
	}
	return connectStarted(oe.Errno)
}
