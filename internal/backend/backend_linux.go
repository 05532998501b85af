// File: internal/backend/backend_linux.go
//go:build linux
// +build linux

//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux backend. Address-carrying calls go straight to the kernel through
// unix.Syscall so the native sockaddr bytes produced by the codec are passed
// unchanged.

package backend

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/momentics/rawsock/api"
)

type linuxBackend struct{}

var _zero uintptr

func newBackendInternal() api.SocketBackend {
	return linuxBackend{}
}

func (linuxBackend) Name() string { return "linux" }

// bufPtr returns a pointer usable for p, including an empty p.
func bufPtr(p []byte) unsafe.Pointer {
	if len(p) > 0 {
		return unsafe.Pointer(&p[0])
	}
	return unsafe.Pointer(&_zero)
}

func isShutdownErrno(e syscall.Errno) bool {
	// A send after shutdown(SHUT_WR) reports EPIPE on Linux, not ESHUTDOWN.
	return e == unix.ESHUTDOWN || e == unix.EPIPE
}

func connectStarted(e syscall.Errno) bool {
	switch e {
	case unix.EINPROGRESS, unix.EALREADY, unix.EISCONN, unix.ECONNREFUSED,
		unix.ECONNRESET, unix.ETIMEDOUT, unix.EHOSTUNREACH:
		return true
	}
	return false
}

func nativeFamily(f api.Family) (int, error) {
	switch f {
	case api.FamilyIPv4:
		return unix.AF_INET, nil
	case api.FamilyIPv6:
		return unix.AF_INET6, nil
	default:
		return 0, api.ErrInvalidAddrFamily.WithContext("family", f.String())
	}
}

// Socket creates the socket close-on-exec.
func (linuxBackend) Socket(family api.Family, typ api.Type, proto api.Protocol) (api.Handle, error) {
	af, err := nativeFamily(family)
	if err != nil {
		return api.InvalidHandle, err
	}
	fd, err := unix.Socket(af, int(typ)|unix.SOCK_CLOEXEC, int(proto))
	if err != nil {
		return api.InvalidHandle, wrapErr("socket", err)
	}
	return api.Handle(fd), nil
}

func (linuxBackend) Close(h api.Handle) error {
	return wrapErr("close", unix.Close(int(h)))
}

func (linuxBackend) Shutdown(h api.Handle, how api.ShutdownHow) error {
	return wrapErr("shutdown", unix.Shutdown(int(h), int(how)))
}

func (linuxBackend) Bind(h api.Handle, sa []byte) error {
	p := bufPtr(sa)
	_, _, e := unix.Syscall(unix.SYS_BIND, uintptr(h), uintptr(p), uintptr(len(sa)))
	if e != 0 {
		return osErr("bind", e, false)
	}
	return nil
}

// Connect restarts nothing after EINTR: the kernel keeps connecting in the
// background, so the outcome is collected from SO_ERROR once writable.
func (linuxBackend) Connect(h api.Handle, sa []byte) error {
	p := bufPtr(sa)
	_, _, e := unix.Syscall(unix.SYS_CONNECT, uintptr(h), uintptr(p), uintptr(len(sa)))
	switch e {
	case 0:
		return nil
	case unix.EINTR:
		return awaitConnect(int(h))
	default:
		return osErr("connect", e, false)
	}
}

func awaitConnect(fd int) error {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
	for {
		_, err := unix.Poll(fds, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return wrapErr("connect", err)
		}
		break
	}
	soerr, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return wrapErr("connect", err)
	}
	if soerr != 0 {
		return osErr("connect", syscall.Errno(soerr), false)
	}
	return nil
}

func (linuxBackend) Listen(h api.Handle, backlog int) error {
	return wrapErr("listen", unix.Listen(int(h), backlog))
}

// Accept uses accept4 so the child is close-on-exec from birth.
func (linuxBackend) Accept(h api.Handle, sa []byte) (api.Handle, int, error) {
	p := bufPtr(sa)
	for {
		l := uint32(len(sa))
		r0, _, e := unix.Syscall6(unix.SYS_ACCEPT4, uintptr(h), uintptr(p),
			uintptr(unsafe.Pointer(&l)), unix.SOCK_CLOEXEC, 0, 0)
		if e == unix.EINTR {
			continue
		}
		if e != 0 {
			return api.InvalidHandle, 0, osErr("accept", e, false)
		}
		return api.Handle(r0), int(l), nil
	}
}

func (linuxBackend) Getsockname(h api.Handle, sa []byte) (int, error) {
	return sockname(unix.SYS_GETSOCKNAME, "getsockname", h, sa)
}

func (linuxBackend) Getpeername(h api.Handle, sa []byte) (int, error) {
	return sockname(unix.SYS_GETPEERNAME, "getpeername", h, sa)
}

func sockname(trap uintptr, op string, h api.Handle, sa []byte) (int, error) {
	p := bufPtr(sa)
	l := uint32(len(sa))
	_, _, e := unix.Syscall(trap, uintptr(h), uintptr(p), uintptr(unsafe.Pointer(&l)))
	if e != 0 {
		return 0, osErr(op, e, false)
	}
	return int(l), nil
}

// Send suppresses SIGPIPE; a send on a shut-down stream reports EPIPE instead.
func (b linuxBackend) Send(h api.Handle, p []byte, flags int) (int, error) {
	return b.SendTo(h, p, flags, nil)
}

func (linuxBackend) Recv(h api.Handle, p []byte, flags int) (int, error) {
	bp := bufPtr(p)
	for {
		r0, _, e := unix.Syscall6(unix.SYS_RECVFROM, uintptr(h), uintptr(bp), uintptr(len(p)),
			uintptr(flags), 0, 0)
		if e == unix.EINTR {
			continue
		}
		if e != 0 {
			return 0, osErr("recv", e, false)
		}
		return int(r0), nil
	}
}

func (linuxBackend) SendTo(h api.Handle, p []byte, flags int, sa []byte) (int, error) {
	op := "sendto"
	var ap unsafe.Pointer
	if len(sa) > 0 {
		ap = unsafe.Pointer(&sa[0])
	} else {
		op = "send"
	}
	bp := bufPtr(p)
	for {
		r0, _, e := unix.Syscall6(unix.SYS_SENDTO, uintptr(h), uintptr(bp), uintptr(len(p)),
			uintptr(flags|unix.MSG_NOSIGNAL), uintptr(ap), uintptr(len(sa)))
		if e == unix.EINTR {
			continue
		}
		if e != 0 {
			return 0, osErr(op, e, true)
		}
		return int(r0), nil
	}
}

func (linuxBackend) RecvFrom(h api.Handle, p []byte, flags int, sa []byte) (int, int, error) {
	bp := bufPtr(p)
	ap := bufPtr(sa)
	for {
		l := uint32(len(sa))
		r0, _, e := unix.Syscall6(unix.SYS_RECVFROM, uintptr(h), uintptr(bp), uintptr(len(p)),
			uintptr(flags), uintptr(ap), uintptr(unsafe.Pointer(&l)))
		if e == unix.EINTR {
			continue
		}
		if e != 0 {
			return 0, 0, osErr("recvfrom", e, false)
		}
		return int(r0), int(l), nil
	}
}

func (linuxBackend) Getsockopt(h api.Handle, level, name int, val []byte) (int, error) {
	vp := bufPtr(val)
	l := uint32(len(val))
	_, _, e := unix.Syscall6(unix.SYS_GETSOCKOPT, uintptr(h), uintptr(level), uintptr(name),
		uintptr(vp), uintptr(unsafe.Pointer(&l)), 0)
	if e != 0 {
		return 0, osErr("getsockopt", e, false)
	}
	return int(l), nil
}

func (linuxBackend) Setsockopt(h api.Handle, level, name int, val []byte) error {
	vp := bufPtr(val)
	_, _, e := unix.Syscall6(unix.SYS_SETSOCKOPT, uintptr(h), uintptr(level), uintptr(name),
		uintptr(vp), uintptr(len(val)), 0)
	if e != 0 {
		return osErr("setsockopt", e, false)
	}
	return nil
}

// Ioctl passes value as a C unsigned long, which is uint on Linux.
func (linuxBackend) Ioctl(h api.Handle, request uint, value uint64) (uint64, error) {
	v := uint(value)
	_, _, e := unix.Syscall(unix.SYS_IOCTL, uintptr(h), uintptr(request), uintptr(unsafe.Pointer(&v)))
	if e != 0 {
		return 0, osErr("ioctl", e, false)
	}
	return uint64(v), nil
}

func (linuxBackend) SetNonblock(h api.Handle, nonblocking bool) error {
	return wrapErr("fcntl", unix.SetNonblock(int(h), nonblocking))
}

func (linuxBackend) SetInheritable(h api.Handle, inheritable bool) error {
	flags, err := unix.FcntlInt(uintptr(h), unix.F_GETFD, 0)
	if err != nil {
		return wrapErr("fcntl", err)
	}
	if inheritable {
		flags &^= unix.FD_CLOEXEC
	} else {
		flags |= unix.FD_CLOEXEC
	}
	_, err = unix.FcntlInt(uintptr(h), unix.F_SETFD, flags)
	return wrapErr("fcntl", err)
}
