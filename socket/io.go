// Package socket
// Author: momentics <momentics@gmail.com>
//
// Data transfer. Flags are raw OS values passed through unchanged.

package socket

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/momentics/rawsock/api"
	"github.com/momentics/rawsock/control"
	"github.com/momentics/rawsock/sockaddr"
)

// Send writes p to the connected peer.
func (s *Socket) Send(p []byte) (int, error) { return s.SendFlags(p, 0) }

// SendFlags is Send with OS flags. A socket already shut down for sending
// reports (0, nil) rather than an error.
func (s *Socket) SendFlags(p []byte, flags int) (int, error) {
	h, err := s.fd()
	if err != nil {
		return 0, err
	}
	n, err := s.backend.Send(h, p, flags)
	return s.sent(n, err)
}

// SendTo writes p to addr.
func (s *Socket) SendTo(p []byte, addr sockaddr.Addr) (int, error) {
	return s.SendToFlags(p, addr, 0)
}

// SendToFlags is SendTo with OS flags. The shutdown case is folded as in
// SendFlags. An unbound socket is bound implicitly by the OS.
func (s *Socket) SendToFlags(p []byte, addr sockaddr.Addr, flags int) (int, error) {
	h, err := s.fd()
	if err != nil {
		return 0, err
	}
	sa, err := s.layout.Encode(addr)
	if err != nil {
		return 0, err
	}
	n, err := s.backend.SendTo(h, p, flags, sa)
	s.named.Store(true)
	return s.sent(n, err)
}

func (s *Socket) sent(n int, err error) (int, error) {
	if err == nil {
		s.metrics.Add(control.MetricBytesSent, int64(n))
		return n, nil
	}
	if api.IsShutdown(err) {
		s.metrics.Inc(control.MetricShutdownFolded)
		s.log.WithFields(logrus.Fields{"handle": uint64(s.handle), "op": "send"}).WithError(err).Debug("send after shutdown")
		return 0, nil
	}
	return 0, errors.WithStack(err)
}

// Recv reads into p from the connected peer.
func (s *Socket) Recv(p []byte) (int, error) { return s.RecvFlags(p, 0) }

// RecvFlags is Recv with OS flags.
func (s *Socket) RecvFlags(p []byte, flags int) (int, error) {
	h, err := s.fd()
	if err != nil {
		return 0, err
	}
	n, err := s.backend.Recv(h, p, flags)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	s.metrics.Add(control.MetricBytesReceived, int64(n))
	return n, nil
}

// RecvFrom reads into p and returns the sender's address.
func (s *Socket) RecvFrom(p []byte) (int, sockaddr.Addr, error) {
	return s.RecvFromFlags(p, 0)
}

// RecvFromFlags is RecvFrom with OS flags. The address is nil when the OS
// reports none, as on a connected stream socket.
func (s *Socket) RecvFromFlags(p []byte, flags int) (int, sockaddr.Addr, error) {
	h, err := s.fd()
	if err != nil {
		return 0, nil, err
	}
	var st sockaddr.Storage
	n, l, err := s.backend.RecvFrom(h, p, flags, st[:])
	if err != nil {
		return 0, nil, errors.WithStack(err)
	}
	s.metrics.Add(control.MetricBytesReceived, int64(n))
	if l == 0 {
		return n, nil, nil
	}
	addr, err := s.layout.DecodeStorage(&st, l)
	if err != nil {
		return n, nil, err
	}
	return n, addr, nil
}
