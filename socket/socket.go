// File: socket/socket.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Socket lifecycle and address-carrying calls.

package socket

import (
	"runtime"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/momentics/rawsock/api"
	"github.com/momentics/rawsock/control"
	"github.com/momentics/rawsock/internal/backend"
	"github.com/momentics/rawsock/sockaddr"
)

// Socket owns one open native handle.
type Socket struct {
	handle  api.Handle
	backend api.SocketBackend
	layout  sockaddr.Layout
	log     logrus.FieldLogger
	metrics *control.MetricsRegistry

	closed atomic.Bool
	// named is set once the OS has given the socket a local address.
	named atomic.Bool
}

// New creates a socket of the given family, type and protocol. Sockets are
// created non-inheritable.
func New(family api.Family, typ api.Type, proto api.Protocol, opts ...Option) (*Socket, error) {
	o := buildOptions(opts)
	h, err := o.backend.Socket(family, typ, proto)
	if err != nil {
		return nil, errors.Wrapf(err, "new %s/%s socket", family, typ)
	}
	s := adopt(h, o)
	s.log.WithFields(logrus.Fields{"handle": uint64(h), "family": family.String(), "type": typ.String()}).Debug("socket created")
	return s, nil
}

// FromHandle takes ownership of an open handle. The handle is assumed to have
// a local name.
func FromHandle(h api.Handle, opts ...Option) *Socket {
	s := adopt(h, buildOptions(opts))
	s.named.Store(true)
	return s
}

func adopt(h api.Handle, o options) *Socket {
	s := &Socket{
		handle:  h,
		backend: o.backend,
		layout:  o.layout,
		log:     o.log.WithField("backend", o.backend.Name()),
		metrics: o.metrics,
	}
	s.metrics.Inc(control.MetricSocketsOpened)
	runtime.SetFinalizer(s, (*Socket).Release)
	return s
}

// child wraps an accepted handle with the parent's settings.
func (s *Socket) child(h api.Handle) *Socket {
	c := adopt(h, options{backend: s.backend, layout: s.layout, log: s.log, metrics: s.metrics})
	c.named.Store(true)
	return c
}

// Raw returns the native handle. Ownership stays with s.
func (s *Socket) Raw() api.Handle { return s.handle }

// Backend returns the backend the socket forwards to.
func (s *Socket) Backend() api.SocketBackend { return s.backend }

// Layout returns the native address layout in use.
func (s *Socket) Layout() sockaddr.Layout { return s.layout }

// fd returns the handle while s still owns it. Once closed the number may
// belong to another socket, so it is never handed to the OS again.
func (s *Socket) fd() (api.Handle, error) {
	if s.closed.Load() {
		return api.InvalidHandle, api.ErrClosed.WithContext("handle", uint64(s.handle))
	}
	return s.handle, nil
}

// IsClosed reports whether Close, Release or Detach has run.
func (s *Socket) IsClosed() bool { return s.closed.Load() }

// Name returns the local address. It fails with api.ErrNotBound when the
// socket was never bound, connected, listened on, sent from, or accepted.
func (s *Socket) Name() (sockaddr.Addr, error) {
	h, err := s.fd()
	if err != nil {
		return nil, err
	}
	if !s.named.Load() {
		return nil, api.ErrNotBound.WithContext("handle", uint64(h))
	}
	var st sockaddr.Storage
	n, err := s.backend.Getsockname(h, st[:])
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return s.layout.DecodeStorage(&st, n)
}

// PeerName returns the address of the connected peer.
func (s *Socket) PeerName() (sockaddr.Addr, error) {
	h, err := s.fd()
	if err != nil {
		return nil, err
	}
	var st sockaddr.Storage
	n, err := s.backend.Getpeername(h, st[:])
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return s.layout.DecodeStorage(&st, n)
}

// Bind assigns the local address.
func (s *Socket) Bind(addr sockaddr.Addr) error {
	h, err := s.fd()
	if err != nil {
		return err
	}
	sa, err := s.layout.Encode(addr)
	if err != nil {
		return err
	}
	if err := s.backend.Bind(h, sa); err != nil {
		return errors.Wrapf(err, "bind %s", addr)
	}
	s.named.Store(true)
	return nil
}

// Listen marks a stream socket passive.
func (s *Socket) Listen(backlog int) error {
	h, err := s.fd()
	if err != nil {
		return err
	}
	if err := s.backend.Listen(h, backlog); err != nil {
		return errors.WithStack(err)
	}
	s.named.Store(true)
	return nil
}

// Connect connects to addr. On a non-blocking socket the in-progress error is
// returned as is. The OS binds the socket implicitly once the attempt is under
// way, so Name also works after a refused or timed-out connect. An address the
// OS rejects outright leaves the socket unnamed.
func (s *Socket) Connect(addr sockaddr.Addr) error {
	h, err := s.fd()
	if err != nil {
		return err
	}
	sa, err := s.layout.Encode(addr)
	if err != nil {
		return err
	}
	if err := s.backend.Connect(h, sa); err != nil {
		if backend.ConnectStarted(err) {
			s.named.Store(true)
		}
		return errors.Wrapf(err, "connect %s", addr)
	}
	s.named.Store(true)
	return nil
}

// Accept waits for a connection and returns the connected socket and the
// peer address. The child shares the parent's backend, layout, logger and
// metrics.
func (s *Socket) Accept() (*Socket, sockaddr.Addr, error) {
	h, err := s.fd()
	if err != nil {
		return nil, nil, err
	}
	var st sockaddr.Storage
	ch, n, err := s.backend.Accept(h, st[:])
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}
	c := s.child(ch)
	addr, err := s.layout.DecodeStorage(&st, n)
	if err != nil {
		c.Release()
		return nil, nil, err
	}
	return c, addr, nil
}

// Shutdown disables sends, receives, or both.
func (s *Socket) Shutdown(how api.ShutdownHow) error {
	h, err := s.fd()
	if err != nil {
		return err
	}
	return errors.WithStack(s.backend.Shutdown(h, how))
}

// Close closes the handle. A second call returns api.ErrClosed and leaves the
// OS alone, so a reused handle value is never closed by mistake.
func (s *Socket) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return api.ErrClosed
	}
	runtime.SetFinalizer(s, nil)
	s.metrics.Inc(control.MetricSocketsClosed)
	return errors.WithStack(s.backend.Close(s.handle))
}

// Release shuts the socket down in both directions and closes it. Both
// results are discarded; close runs even when shutdown fails. It is a no-op
// after Close, Release or Detach, and also runs from the finalizer.
func (s *Socket) Release() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	runtime.SetFinalizer(s, nil)
	s.metrics.Inc(control.MetricSocketsClosed)
	shutErr := s.backend.Shutdown(s.handle, api.ShutdownBoth)
	closeErr := s.backend.Close(s.handle)
	if shutErr != nil || closeErr != nil {
		s.log.WithFields(logrus.Fields{
			"handle":   uint64(s.handle),
			"shutdown": shutErr,
			"close":    closeErr,
		}).Debug("release errors discarded")
	}
}

// Detach gives up ownership and returns the handle without closing it.
// The socket is unusable afterwards.
func (s *Socket) Detach() api.Handle {
	if !s.closed.CompareAndSwap(false, true) {
		return api.InvalidHandle
	}
	runtime.SetFinalizer(s, nil)
	return s.handle
}
