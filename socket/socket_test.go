package socket_test

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/rawsock/api"
	"github.com/momentics/rawsock/control"
	"github.com/momentics/rawsock/fake"
	"github.com/momentics/rawsock/sockaddr"
	"github.com/momentics/rawsock/socket"
)

type env struct {
	backend *fake.Backend
	metrics *control.MetricsRegistry
}

func newEnv() *env {
	return &env{backend: fake.NewBackend(), metrics: control.NewMetricsRegistry()}
}

func (e *env) open(t *testing.T, typ api.Type) *socket.Socket {
	t.Helper()
	s, err := socket.New(api.FamilyIPv4, typ, api.ProtoDefault,
		socket.WithBackend(e.backend), socket.WithMetrics(e.metrics))
	require.NoError(t, err)
	t.Cleanup(s.Release)
	return s
}

func TestNameRequiresLocalAddress(t *testing.T) {
	e := newEnv()
	s := e.open(t, api.TypeDgram)

	_, err := s.Name()
	require.ErrorIs(t, err, api.ErrNotBound)
	assert.NotContains(t, e.backend.Calls(), "getsockname(3)")

	require.NoError(t, s.Bind(sockaddr.Loopback4(1666)))
	name, err := s.Name()
	require.NoError(t, err)
	assert.Equal(t, sockaddr.Loopback4(1666), name)
}

func TestReleaseShutsDownThenCloses(t *testing.T) {
	e := newEnv()
	s := e.open(t, api.TypeStream)
	h := s.Raw()

	s.Release()

	assert.Equal(t, []string{"socket(ipv4,stream,0)", "shutdown(3,both)", "close(3)"}, e.backend.Calls())
	assert.False(t, e.backend.IsOpen(h))
	assert.True(t, s.IsClosed())

	s.Release()
	assert.Len(t, e.backend.Calls(), 3)
	assert.Equal(t, int64(1), e.metrics.Counter(control.MetricSocketsClosed))
}

func TestReleaseClosesWhenShutdownFails(t *testing.T) {
	e := newEnv()
	s := e.open(t, api.TypeDgram)
	e.backend.Fail("shutdown", &api.OSError{Op: "shutdown", Errno: syscall.ENOTCONN, Code: api.ErrCodeOS})
	e.backend.Fail("close", &api.OSError{Op: "close", Errno: syscall.EIO, Code: api.ErrCodeOS})

	s.Release()
	assert.False(t, e.backend.IsOpen(s.Raw()))
	assert.Zero(t, e.backend.Open())
}

func TestCloseTwice(t *testing.T) {
	e := newEnv()
	s := e.open(t, api.TypeDgram)

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Close(), api.ErrClosed)

	closes := 0
	for _, c := range e.backend.Calls() {
		if c == "close(3)" {
			closes++
		}
	}
	assert.Equal(t, 1, closes)

	_, err := s.Name()
	assert.ErrorIs(t, err, api.ErrClosed)
}

func TestDetachAndAdopt(t *testing.T) {
	e := newEnv()
	s := e.open(t, api.TypeDgram)
	require.NoError(t, s.Bind(sockaddr.Loopback4(7000)))

	h := s.Detach()
	assert.Equal(t, api.InvalidHandle, s.Detach())
	assert.ErrorIs(t, s.Close(), api.ErrClosed)
	assert.True(t, e.backend.IsOpen(h))

	adopted := socket.FromHandle(h, socket.WithBackend(e.backend))
	name, err := adopted.Name()
	require.NoError(t, err)
	assert.Equal(t, sockaddr.Loopback4(7000), name)
	require.NoError(t, adopted.Close())
	assert.False(t, e.backend.IsOpen(h))
}

func TestUDPRoundTrip(t *testing.T) {
	e := newEnv()
	server := e.open(t, api.TypeDgram)
	client := e.open(t, api.TypeDgram)
	require.NoError(t, server.Bind(sockaddr.Loopback4(1666)))
	require.NoError(t, client.Bind(sockaddr.Loopback4(5666)))

	n, err := client.SendTo([]byte{1, 2, 3, 4}, sockaddr.Loopback4(1666))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	buf := make([]byte, 16)
	n, from, err := server.RecvFrom(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, buf[:n])
	assert.Equal(t, sockaddr.Loopback4(5666), from)

	assert.Equal(t, int64(4), e.metrics.Counter(control.MetricBytesSent))
	assert.Equal(t, int64(4), e.metrics.Counter(control.MetricBytesReceived))
}

func TestSendAfterShutdownIsNotAnError(t *testing.T) {
	e := newEnv()
	server := e.open(t, api.TypeDgram)
	client := e.open(t, api.TypeDgram)
	require.NoError(t, server.Bind(sockaddr.Loopback4(1666)))
	require.NoError(t, client.Connect(sockaddr.Loopback4(1666)))
	require.NoError(t, client.Shutdown(api.ShutdownWrite))

	n, err := client.Send([]byte{1})
	assert.NoError(t, err)
	assert.Zero(t, n)

	n, err = client.SendTo([]byte{1}, sockaddr.Loopback4(1666))
	assert.NoError(t, err)
	assert.Zero(t, n)

	assert.Equal(t, int64(2), e.metrics.Counter(control.MetricShutdownFolded))
}

func TestOtherSendErrorsSurface(t *testing.T) {
	e := newEnv()
	s := e.open(t, api.TypeDgram)

	_, err := s.Send([]byte{1})
	assert.ErrorIs(t, err, syscall.ENOTCONN)
	assert.Equal(t, api.ErrCodeOS, api.CodeOf(err))

	_, err = s.SendTo([]byte{1}, nil)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}

func TestAccept(t *testing.T) {
	e := newEnv()
	l := e.open(t, api.TypeStream)
	require.NoError(t, l.Bind(sockaddr.Loopback4(60000)))
	require.NoError(t, l.Listen(16))

	peer, err := sockaddr.Host.Encode(sockaddr.Loopback4(65003))
	require.NoError(t, err)
	require.NoError(t, e.backend.QueueConnection(l.Raw(), peer))

	c, from, err := l.Accept()
	require.NoError(t, err)
	defer c.Release()
	assert.Equal(t, sockaddr.Loopback4(65003), from)

	name, err := c.Name()
	require.NoError(t, err)
	assert.Equal(t, sockaddr.Loopback4(60000), name)

	remote, err := c.PeerName()
	require.NoError(t, err)
	assert.Equal(t, from, remote)
}

func TestAcceptReleasesChildOnBadAddress(t *testing.T) {
	e := newEnv()
	l := e.open(t, api.TypeStream)
	require.NoError(t, l.Listen(1))
	full, err := sockaddr.Host.Encode(sockaddr.Loopback4(1))
	require.NoError(t, err)
	require.NoError(t, e.backend.QueueConnection(l.Raw(), full[:4]))

	_, _, err = l.Accept()
	require.ErrorIs(t, err, api.ErrShortAddress)
	assert.Equal(t, 1, e.backend.Open())
}

func TestNewFailureIsWrapped(t *testing.T) {
	_, err := socket.New(api.FamilyUnspec, api.TypeDgram, api.ProtoUDP, socket.WithBackend(fake.NewBackend()))
	require.ErrorIs(t, err, api.ErrInvalidAddrFamily)
	assert.Contains(t, err.Error(), "unspec/dgram")
}

func TestOptions(t *testing.T) {
	e := newEnv()
	s := e.open(t, api.TypeDgram)

	require.NoError(t, s.SetOptInt(1, 7, -3))
	v, err := s.GetOptInt(1, 7)
	require.NoError(t, err)
	assert.Equal(t, -3, v)

	_, err = s.GetOptInt(1, 8)
	assert.ErrorIs(t, err, syscall.ENOPROTOOPT)

	require.NoError(t, s.SetNonblocking(true))
	assert.True(t, e.backend.Nonblocking(s.Raw()))
	require.NoError(t, s.SetInheritable(true))
	assert.True(t, e.backend.Inheritable(s.Raw()))
}

func TestSelect(t *testing.T) {
	e := newEnv()
	a := e.open(t, api.TypeDgram)
	b := e.open(t, api.TypeDgram)
	require.NoError(t, a.Bind(sockaddr.Loopback4(1666)))

	n, err := socket.Select([]*socket.Socket{a}, nil, nil, 200)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, &api.Timeval{Usec: 200_000}, e.backend.LastTimeout)

	_, err = b.SendTo([]byte{9}, sockaddr.Loopback4(1666))
	require.NoError(t, err)
	n, err = socket.Select([]*socket.Socket{a}, []*socket.Socket{b}, nil, -1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Nil(t, e.backend.LastTimeout)

	assert.Equal(t, int64(2), e.metrics.Counter(control.MetricSelectCalls))
	assert.Equal(t, int64(1), e.metrics.Counter(control.MetricSelectTimeouts))

	t.Run("MixedBackends", func(t *testing.T) {
		other := newEnv().open(t, api.TypeDgram)
		_, err := socket.Select([]*socket.Socket{a, other}, nil, nil, 0)
		assert.ErrorIs(t, err, api.ErrInvalidArgument)
	})

	t.Run("Closed", func(t *testing.T) {
		c := e.open(t, api.TypeDgram)
		require.NoError(t, c.Close())
		_, err := socket.Select(nil, []*socket.Socket{c}, nil, 0)
		assert.ErrorIs(t, err, api.ErrClosed)
	})
}

func TestClosedSocketNeverReachesBackend(t *testing.T) {
	e := newEnv()
	s := e.open(t, api.TypeStream)
	require.NoError(t, s.Close())
	calls := len(e.backend.Calls())

	dst := sockaddr.Loopback4(1666)
	ops := map[string]func() error{
		"Send":           func() error { _, err := s.Send([]byte{1}); return err },
		"SendTo":         func() error { _, err := s.SendTo([]byte{1}, dst); return err },
		"Recv":           func() error { _, err := s.Recv(make([]byte, 1)); return err },
		"RecvFrom":       func() error { _, _, err := s.RecvFrom(make([]byte, 1)); return err },
		"Bind":           func() error { return s.Bind(dst) },
		"Listen":         func() error { return s.Listen(1) },
		"Connect":        func() error { return s.Connect(dst) },
		"Accept":         func() error { _, _, err := s.Accept(); return err },
		"Shutdown":       func() error { return s.Shutdown(api.ShutdownBoth) },
		"PeerName":       func() error { _, err := s.PeerName(); return err },
		"GetOpt":         func() error { _, err := s.GetOpt(1, 7, make([]byte, 4)); return err },
		"SetOpt":         func() error { return s.SetOptInt(1, 7, 1) },
		"SetNonblocking": func() error { return s.SetNonblocking(true) },
		"SetInheritable": func() error { return s.SetInheritable(true) },
		"Ioctl":          func() error { _, err := s.Ioctl(0x541b, 0); return err },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, op(), api.ErrClosed)
		})
	}
	assert.Len(t, e.backend.Calls(), calls)
	assert.Zero(t, e.metrics.Counter(control.MetricShutdownFolded))
}

func TestDetachedSocketNeverReachesBackend(t *testing.T) {
	e := newEnv()
	s := e.open(t, api.TypeDgram)
	h := s.Detach()
	calls := len(e.backend.Calls())

	_, err := s.SendTo([]byte{1}, sockaddr.Loopback4(1666))
	assert.ErrorIs(t, err, api.ErrClosed)
	assert.ErrorIs(t, s.SetNonblocking(true), api.ErrClosed)
	assert.Len(t, e.backend.Calls(), calls)
	assert.False(t, e.backend.Nonblocking(h))
	require.NoError(t, e.backend.Close(h))
}

func TestRejectedConnectLeavesSocketUnnamed(t *testing.T) {
	e := newEnv()
	s := e.open(t, api.TypeStream)
	e.backend.Fail("connect", &api.OSError{Op: "connect", Errno: syscall.EINVAL, Code: api.ErrCodeOS})

	err := s.Connect(sockaddr.Loopback4(60000))
	require.ErrorIs(t, err, syscall.EINVAL)
	_, err = s.Name()
	assert.ErrorIs(t, err, api.ErrNotBound)

	require.NoError(t, s.Connect(sockaddr.Loopback4(60000)))
	_, _ = s.Name()
	assert.Contains(t, e.backend.Calls(), "getsockname(3)")
}

func TestIoctl(t *testing.T) {
	e := newEnv()
	s := e.open(t, api.TypeDgram)

	v, err := s.Ioctl(0x541b, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), v)
	assert.Contains(t, e.backend.Calls(), "ioctl(3,0x541b,7)")

	e.backend.Fail("ioctl", &api.OSError{Op: "ioctl", Errno: syscall.EINVAL, Code: api.ErrCodeOS})
	_, err = s.Ioctl(0x541b, 0)
	assert.ErrorIs(t, err, syscall.EINVAL)
}
