//go:build windows
// +build windows

// Package backend
// Author: momentics <momentics@gmail.com>
//
// Windows backend over ws2_32.dll. Winsock is started lazily, once per
// process, before the first socket is created and is never torn down.

package backend

import (
	"sync"
	"syscall"
	"unsafe"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"

	"github.com/momentics/rawsock/api"
)

var (
	modws2_32 = windows.NewLazySystemDLL("ws2_32.dll")

	procWSASocketW  = modws2_32.NewProc("WSASocketW")
	procClosesocket = modws2_32.NewProc("closesocket")
	procShutdown    = modws2_32.NewProc("shutdown")
	procBind        = modws2_32.NewProc("bind")
	procConnect     = modws2_32.NewProc("connect")
	procListen      = modws2_32.NewProc("listen")
	procAccept      = modws2_32.NewProc("accept")
	procGetsockname = modws2_32.NewProc("getsockname")
	procGetpeername = modws2_32.NewProc("getpeername")
	procSend        = modws2_32.NewProc("send")
	procRecv        = modws2_32.NewProc("recv")
	procSendto      = modws2_32.NewProc("sendto")
	procRecvfrom    = modws2_32.NewProc("recvfrom")
	procGetsockopt  = modws2_32.NewProc("getsockopt")
	procSetsockopt  = modws2_32.NewProc("setsockopt")
	procIoctlsocket = modws2_32.NewProc("ioctlsocket")
	procSelect      = modws2_32.NewProc("select")
)

const (
	invalidSocket = ^uintptr(0)

	wsaeinval    = syscall.Errno(10022)
	wsaeshutdown = syscall.Errno(10058)
	fionbio      = 0x8004667e

	wsaFlagOverlapped      = 0x01
	wsaFlagNoHandleInherit = 0x80
)

var (
	wsaOnce sync.Once
	wsaErr  error
)

// startup runs WSAStartup(2.2) once. Later calls return the first result.
func startup() error {
	wsaOnce.Do(func() {
		var data windows.WSAData
		if err := windows.WSAStartup(uint32(0x202), &data); err != nil {
			wsaErr = wrapErr("WSAStartup", err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"backend": "windows",
			"version": data.Version,
		}).Debug("winsock started")
	})
	return wsaErr
}

type windowsBackend struct{}

func newBackendInternal() api.SocketBackend {
	return windowsBackend{}
}

func (windowsBackend) Name() string { return "windows" }

func connectStarted(e syscall.Errno) bool {
	switch e {
	case windows.WSAEWOULDBLOCK, windows.WSAEINPROGRESS, windows.WSAEALREADY, windows.WSAEISCONN,
		windows.WSAECONNREFUSED, windows.WSAECONNRESET, windows.WSAETIMEDOUT, windows.WSAEHOSTUNREACH:
		return true
	}
	return false
}

func isShutdownErrno(e syscall.Errno) bool {
	return e == wsaeshutdown
}

// lastErrno extracts the error captured by LazyProc.Call right after the call.
func lastErrno(err error) syscall.Errno {
	if e, ok := err.(syscall.Errno); ok && e != 0 {
		return e
	}
	return wsaeinval
}

// failed reports SOCKET_ERROR for int-returning Winsock calls.
func failed(r1 uintptr) bool {
	return int32(r1) == -1
}

func bufPtr(p []byte) unsafe.Pointer {
	if len(p) > 0 {
		return unsafe.Pointer(&p[0])
	}
	return nil
}

func nativeFamily(f api.Family) (int32, error) {
	switch f {
	case api.FamilyIPv4:
		return windows.AF_INET, nil
	case api.FamilyIPv6:
		return windows.AF_INET6, nil
	default:
		return 0, api.ErrInvalidAddrFamily.WithContext("family", f.String())
	}
}

// Socket creates a non-inheritable socket.
func (windowsBackend) Socket(family api.Family, typ api.Type, proto api.Protocol) (api.Handle, error) {
	if err := startup(); err != nil {
		return api.InvalidHandle, err
	}
	af, err := nativeFamily(family)
	if err != nil {
		return api.InvalidHandle, err
	}
	r1, _, e := procWSASocketW.Call(uintptr(af), uintptr(typ), uintptr(proto), 0, 0,
		wsaFlagOverlapped|wsaFlagNoHandleInherit)
	if r1 == invalidSocket {
		return api.InvalidHandle, osErr("socket", lastErrno(e), false)
	}
	return api.Handle(r1), nil
}

func (windowsBackend) Close(h api.Handle) error {
	r1, _, e := procClosesocket.Call(uintptr(h))
	if failed(r1) {
		return osErr("closesocket", lastErrno(e), false)
	}
	return nil
}

// Shutdown relies on SD_RECEIVE, SD_SEND and SD_BOTH being 0, 1 and 2.
func (windowsBackend) Shutdown(h api.Handle, how api.ShutdownHow) error {
	r1, _, e := procShutdown.Call(uintptr(h), uintptr(how))
	if failed(r1) {
		return osErr("shutdown", lastErrno(e), false)
	}
	return nil
}

func (windowsBackend) Bind(h api.Handle, sa []byte) error {
	r1, _, e := procBind.Call(uintptr(h), uintptr(bufPtr(sa)), uintptr(len(sa)))
	if failed(r1) {
		return osErr("bind", lastErrno(e), false)
	}
	return nil
}

func (windowsBackend) Connect(h api.Handle, sa []byte) error {
	r1, _, e := procConnect.Call(uintptr(h), uintptr(bufPtr(sa)), uintptr(len(sa)))
	if failed(r1) {
		return osErr("connect", lastErrno(e), false)
	}
	return nil
}

func (windowsBackend) Listen(h api.Handle, backlog int) error {
	r1, _, e := procListen.Call(uintptr(h), uintptr(backlog))
	if failed(r1) {
		return osErr("listen", lastErrno(e), false)
	}
	return nil
}

// Accept leaves the child handle as returned by Winsock.
func (windowsBackend) Accept(h api.Handle, sa []byte) (api.Handle, int, error) {
	l := int32(len(sa))
	r1, _, e := procAccept.Call(uintptr(h), uintptr(bufPtr(sa)), uintptr(unsafe.Pointer(&l)))
	if r1 == invalidSocket {
		return api.InvalidHandle, 0, osErr("accept", lastErrno(e), false)
	}
	return api.Handle(r1), int(l), nil
}

func (windowsBackend) Getsockname(h api.Handle, sa []byte) (int, error) {
	return sockname(procGetsockname, "getsockname", h, sa)
}

func (windowsBackend) Getpeername(h api.Handle, sa []byte) (int, error) {
	return sockname(procGetpeername, "getpeername", h, sa)
}

func sockname(proc *windows.LazyProc, op string, h api.Handle, sa []byte) (int, error) {
	l := int32(len(sa))
	r1, _, e := proc.Call(uintptr(h), uintptr(bufPtr(sa)), uintptr(unsafe.Pointer(&l)))
	if failed(r1) {
		return 0, osErr(op, lastErrno(e), false)
	}
	return int(l), nil
}

func (windowsBackend) Send(h api.Handle, p []byte, flags int) (int, error) {
	r1, _, e := procSend.Call(uintptr(h), uintptr(bufPtr(p)), uintptr(len(p)), uintptr(flags))
	if failed(r1) {
		return 0, osErr("send", lastErrno(e), true)
	}
	return int(int32(r1)), nil
}

func (windowsBackend) Recv(h api.Handle, p []byte, flags int) (int, error) {
	r1, _, e := procRecv.Call(uintptr(h), uintptr(bufPtr(p)), uintptr(len(p)), uintptr(flags))
	if failed(r1) {
		return 0, osErr("recv", lastErrno(e), false)
	}
	return int(int32(r1)), nil
}

func (windowsBackend) SendTo(h api.Handle, p []byte, flags int, sa []byte) (int, error) {
	r1, _, e := procSendto.Call(uintptr(h), uintptr(bufPtr(p)), uintptr(len(p)), uintptr(flags),
		uintptr(bufPtr(sa)), uintptr(len(sa)))
	if failed(r1) {
		return 0, osErr("sendto", lastErrno(e), true)
	}
	return int(int32(r1)), nil
}

func (windowsBackend) RecvFrom(h api.Handle, p []byte, flags int, sa []byte) (int, int, error) {
	l := int32(len(sa))
	r1, _, e := procRecvfrom.Call(uintptr(h), uintptr(bufPtr(p)), uintptr(len(p)), uintptr(flags),
		uintptr(bufPtr(sa)), uintptr(unsafe.Pointer(&l)))
	if failed(r1) {
		return 0, 0, osErr("recvfrom", lastErrno(e), false)
	}
	return int(int32(r1)), int(l), nil
}

func (windowsBackend) Getsockopt(h api.Handle, level, name int, val []byte) (int, error) {
	l := int32(len(val))
	r1, _, e := procGetsockopt.Call(uintptr(h), uintptr(level), uintptr(name),
		uintptr(bufPtr(val)), uintptr(unsafe.Pointer(&l)))
	if failed(r1) {
		return 0, osErr("getsockopt", lastErrno(e), false)
	}
	return int(l), nil
}

func (windowsBackend) Setsockopt(h api.Handle, level, name int, val []byte) error {
	r1, _, e := procSetsockopt.Call(uintptr(h), uintptr(level), uintptr(name),
		uintptr(bufPtr(val)), uintptr(len(val)))
	if failed(r1) {
		return osErr("setsockopt", lastErrno(e), false)
	}
	return nil
}

// Ioctl calls ioctlsocket; u_long is 32 bits wide on Windows.
func (windowsBackend) Ioctl(h api.Handle, request uint, value uint64) (uint64, error) {
	arg := uint32(value)
	r1, _, e := procIoctlsocket.Call(uintptr(h), uintptr(uint32(request)), uintptr(unsafe.Pointer(&arg)))
	if failed(r1) {
		return 0, osErr("ioctlsocket", lastErrno(e), false)
	}
	return uint64(arg), nil
}

func (b windowsBackend) SetNonblock(h api.Handle, nonblocking bool) error {
	var arg uint64
	if nonblocking {
		arg = 1
	}
	_, err := b.Ioctl(h, fionbio, arg)
	return err
}

func (windowsBackend) SetInheritable(h api.Handle, inheritable bool) error {
	var flags uint32
	if inheritable {
		flags = windows.HANDLE_FLAG_INHERIT
	}
	err := windows.SetHandleInformation(windows.Handle(h), windows.HANDLE_FLAG_INHERIT, flags)
	return wrapErr("SetHandleInformation", err)
}
