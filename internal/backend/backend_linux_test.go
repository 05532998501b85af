//go:build linux
// +build linux

package backend_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/momentics/rawsock/api"
	"github.com/momentics/rawsock/internal/backend"
	"github.com/momentics/rawsock/sockaddr"
)

func newUDP(t *testing.T, b api.SocketBackend) api.Handle {
	t.Helper()
	h, err := b.Socket(api.FamilyIPv4, api.TypeDgram, api.ProtoUDP)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close(h) })
	return h
}

func TestHostBackend(t *testing.T) {
	assert.Equal(t, backend.Default(), backend.Default())
	assert.Equal(t, "linux", backend.New().Name())
}

func TestSocketIsCloseOnExec(t *testing.T) {
	b := backend.New()
	h := newUDP(t, b)

	flags, err := unix.FcntlInt(uintptr(h), unix.F_GETFD, 0)
	require.NoError(t, err)
	assert.NotZero(t, flags&unix.FD_CLOEXEC)

	require.NoError(t, b.SetInheritable(h, true))
	flags, err = unix.FcntlInt(uintptr(h), unix.F_GETFD, 0)
	require.NoError(t, err)
	assert.Zero(t, flags&unix.FD_CLOEXEC)
}

func TestUnknownFamily(t *testing.T) {
	_, err := backend.New().Socket(api.FamilyUnspec, api.TypeDgram, api.ProtoUDP)
	assert.ErrorIs(t, err, api.ErrInvalidAddrFamily)
}

func TestBindAndName(t *testing.T) {
	b := backend.New()
	h := newUDP(t, b)

	sa, err := sockaddr.Linux.Encode(sockaddr.Loopback4(0))
	require.NoError(t, err)
	require.NoError(t, b.Bind(h, sa))

	var st sockaddr.Storage
	n, err := b.Getsockname(h, st[:])
	require.NoError(t, err)
	assert.Equal(t, sockaddr.SizeofInet4, n)

	a, err := sockaddr.Linux.DecodeStorage(&st, n)
	require.NoError(t, err)
	v4, ok := a.(sockaddr.Inet4)
	require.True(t, ok)
	assert.Equal(t, [4]byte{127, 0, 0, 1}, v4.IP)
	assert.NotZero(t, v4.Port)
}

func TestBindErrorCarriesErrno(t *testing.T) {
	b := backend.New()
	h := newUDP(t, b)

	// An IPv4 socket rejects a truncated address.
	err := b.Bind(h, make([]byte, 4))
	require.Error(t, err)

	var oe *api.OSError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, "bind", oe.Op)
	assert.Equal(t, uintptr(unix.EINVAL), oe.RawCode())
	assert.Equal(t, api.ErrCodeOS, oe.Code)
}

func TestSendAfterShutdownIsClassified(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	require.NoError(t, err)
	defer unix.Close(fds[0])
	defer unix.Close(fds[1])

	b := backend.New()
	require.NoError(t, b.Shutdown(api.Handle(fds[0]), api.ShutdownWrite))

	_, err = b.Send(api.Handle(fds[0]), []byte{1}, 0)
	assert.True(t, api.IsShutdown(err), "got %v", err)

	// The same errno from a non-send call stays an ordinary OS error.
	assert.False(t, api.IsShutdown(api.NewOSError("recv", unix.EPIPE)))
}

func TestSelectRejectsLargeDescriptor(t *testing.T) {
	_, err := backend.New().Select([]api.Handle{backend.FDSetSize}, nil, nil, &api.Timeval{})
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}

func TestSelectEmptySetsTimeout(t *testing.T) {
	n, err := backend.New().Select(nil, nil, nil, &api.Timeval{Usec: 1000})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSelectWritableUDP(t *testing.T) {
	b := backend.New()
	h := newUDP(t, b)

	n, err := b.Select(nil, []api.Handle{h}, nil, &api.Timeval{Sec: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestConnectStarted(t *testing.T) {
	started := func(e unix.Errno) bool {
		return backend.ConnectStarted(&api.OSError{Op: "connect", Errno: e, Code: api.ErrCodeOS})
	}
	assert.True(t, started(unix.EINPROGRESS))
	assert.True(t, started(unix.ECONNREFUSED))
	assert.True(t, started(unix.ETIMEDOUT))
	assert.False(t, started(unix.EAFNOSUPPORT))
	assert.False(t, started(unix.EINVAL))
	assert.False(t, started(unix.ENETUNREACH))
	assert.False(t, backend.ConnectStarted(errors.New("plain")))
	assert.False(t, backend.ConnectStarted(nil))
}

func TestIoctl(t *testing.T) {
	b := backend.New()
	h := newUDP(t, b)
	sa, err := sockaddr.Linux.Encode(sockaddr.Loopback4(0))
	require.NoError(t, err)
	require.NoError(t, b.Bind(h, sa))

	pending, err := b.Ioctl(h, unix.SIOCINQ, 0)
	require.NoError(t, err)
	assert.Zero(t, pending)

	_, err = b.Ioctl(api.Handle(1<<20), unix.SIOCINQ, 0)
	assert.ErrorIs(t, err, unix.EBADF)
}
