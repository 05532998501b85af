// Package api
// Author: momentics <momentics@gmail.com>
//
// SocketBackend is the OS boundary the rest of the library depends on. One
// implementation exists per platform family; tests inject fakes.

package api

// SocketBackend forwards socket calls to the OS. Address arguments are native
// sockaddr byte buffers: encoded exactly-sized buffers for input, full-capacity
// storage buffers for output, in which case the reported length is returned.
type SocketBackend interface {
	// Name identifies the backend in logs and probes.
	Name() string

	Socket(family Family, typ Type, proto Protocol) (Handle, error)
	Close(h Handle) error
	Shutdown(h Handle, how ShutdownHow) error

	Bind(h Handle, sa []byte) error
	Connect(h Handle, sa []byte) error
	Listen(h Handle, backlog int) error
	// Accept returns the child handle and the reported length of sa.
	Accept(h Handle, sa []byte) (Handle, int, error)
	Getsockname(h Handle, sa []byte) (int, error)
	Getpeername(h Handle, sa []byte) (int, error)

	Send(h Handle, p []byte, flags int) (int, error)
	Recv(h Handle, p []byte, flags int) (int, error)
	SendTo(h Handle, p []byte, flags int, sa []byte) (int, error)
	// RecvFrom returns the byte count and the reported length of sa.
	RecvFrom(h Handle, p []byte, flags int, sa []byte) (int, int, error)

	Getsockopt(h Handle, level, name int, val []byte) (int, error)
	Setsockopt(h Handle, level, name int, val []byte) error
	SetNonblock(h Handle, nonblocking bool) error
	SetInheritable(h Handle, inheritable bool) error
	// Ioctl issues an I/O control request. value is passed by reference as a
	// native unsigned long; its content after the call is returned.
	Ioctl(h Handle, request uint, value uint64) (uint64, error)

	// Select waits for readiness. A nil or empty set is passed to the OS as a
	// null set; a nil timeout blocks indefinitely.
	Select(read, write, except []Handle, timeout *Timeval) (int, error)
}
