//go:build !linux && !windows
// +build !linux,!windows

// Author: momentics <momentics@gmail.com>
//
// Fallback for platforms without a native backend. Every call fails with
// api.ErrNotSupported.

package backend

import (
	"syscall"

	"github.com/momentics/rawsock/api"
)

// FDSetSize is zero: no descriptor can be waited on.
const FDSetSize = 0

type stubBackend struct{}

func newBackendInternal() api.SocketBackend {
	return stubBackend{}
}

func isShutdownErrno(syscall.Errno) bool { return false }

func connectStarted(syscall.Errno) bool { return false }

func (stubBackend) Name() string { return "stub" }

func (stubBackend) Socket(api.Family, api.Type, api.Protocol) (api.Handle, error) {
	return api.InvalidHandle, api.ErrNotSupported
}

func (stubBackend) Close(api.Handle) error                     { return api.ErrNotSupported }
func (stubBackend) Shutdown(api.Handle, api.ShutdownHow) error { return api.ErrNotSupported }
func (stubBackend) Bind(api.Handle, []byte) error              { return api.ErrNotSupported }
func (stubBackend) Connect(api.Handle, []byte) error           { return api.ErrNotSupported }
func (stubBackend) Listen(api.Handle, int) error               { return api.ErrNotSupported }

func (stubBackend) Accept(api.Handle, []byte) (api.Handle, int, error) {
	return api.InvalidHandle, 0, api.ErrNotSupported
}

func (stubBackend) Getsockname(api.Handle, []byte) (int, error) { return 0, api.ErrNotSupported }
func (stubBackend) Getpeername(api.Handle, []byte) (int, error) { return 0, api.ErrNotSupported }
func (stubBackend) Send(api.Handle, []byte, int) (int, error)   { return 0, api.ErrNotSupported }
func (stubBackend) Recv(api.Handle, []byte, int) (int, error)   { return 0, api.ErrNotSupported }

func (stubBackend) SendTo(api.Handle, []byte, int, []byte) (int, error) {
	return 0, api.ErrNotSupported
}

func (stubBackend) RecvFrom(api.Handle, []byte, int, []byte) (int, int, error) {
	return 0, 0, api.ErrNotSupported
}

func (stubBackend) Getsockopt(api.Handle, int, int, []byte) (int, error) {
	return 0, api.ErrNotSupported
}

func (stubBackend) Setsockopt(api.Handle, int, int, []byte) error { return api.ErrNotSupported }
func (stubBackend) SetNonblock(api.Handle, bool) error            { return api.ErrNotSupported }

func (stubBackend) Ioctl(api.Handle, uint, uint64) (uint64, error) {
	return 0, api.ErrNotSupported
}
func (stubBackend) SetInheritable(api.Handle, bool) error         { return api.ErrNotSupported }

func (stubBackend) Select(_, _, _ []api.Handle, _ *api.Timeval) (int, error) {
	return 0, api.ErrNotSupported
}
