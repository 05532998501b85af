// Package socket
// Author: momentics <momentics@gmail.com>
//
// Socket options and mode toggles.

package socket

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/momentics/rawsock/api"
)

// GetOpt reads option (level, name) into buf and returns the length the OS
// reported.
func (s *Socket) GetOpt(level, name int, buf []byte) (int, error) {
	h, err := s.fd()
	if err != nil {
		return 0, err
	}
	n, err := s.backend.Getsockopt(h, level, name, buf)
	return n, errors.WithStack(err)
}

// SetOpt writes option (level, name) from buf.
func (s *Socket) SetOpt(level, name int, buf []byte) error {
	h, err := s.fd()
	if err != nil {
		return err
	}
	return errors.WithStack(s.backend.Setsockopt(h, level, name, buf))
}

// GetOptInt reads a native 32-bit integer option.
func (s *Socket) GetOptInt(level, name int) (int, error) {
	var buf [4]byte
	n, err := s.GetOpt(level, name, buf[:])
	if err != nil {
		return 0, err
	}
	if n < len(buf) {
		// Some boolean options come back as a single byte on Windows.
		if n == 1 {
			return int(buf[0]), nil
		}
		return 0, api.ErrInvalidArgument.WithContext("optlen", n)
	}
	return int(int32(binary.NativeEndian.Uint32(buf[:]))), nil
}

// SetOptInt writes a native 32-bit integer option.
func (s *Socket) SetOptInt(level, name, value int) error {
	var buf [4]byte
	binary.NativeEndian.PutUint32(buf[:], uint32(int32(value)))
	return s.SetOpt(level, name, buf[:])
}

// SetNonblocking toggles non-blocking mode.
func (s *Socket) SetNonblocking(nonblocking bool) error {
	h, err := s.fd()
	if err != nil {
		return err
	}
	return errors.WithStack(s.backend.SetNonblock(h, nonblocking))
}

// SetInheritable controls whether child processes inherit the handle.
func (s *Socket) SetInheritable(inheritable bool) error {
	h, err := s.fd()
	if err != nil {
		return err
	}
	return errors.WithStack(s.backend.SetInheritable(h, inheritable))
}

// Ioctl issues a raw I/O control request (ioctl on Linux, ioctlsocket on
// Windows) and returns the value the OS left in the argument.
func (s *Socket) Ioctl(request uint, value uint64) (uint64, error) {
	h, err := s.fd()
	if err != nil {
		return 0, err
	}
	v, err := s.backend.Ioctl(h, request, value)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return v, nil
}
