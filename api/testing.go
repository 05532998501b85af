// Package api
// Author: momentics
//
// Func-field mock of SocketBackend. Unset funcs fail with ErrNotSupported.

package api

// MockBackend is a test-friendly SocketBackend.
type MockBackend struct {
	SocketFunc         func(Family, Type, Protocol) (Handle, error)
	CloseFunc          func(Handle) error
	ShutdownFunc       func(Handle, ShutdownHow) error
	BindFunc           func(Handle, []byte) error
	ConnectFunc        func(Handle, []byte) error
	ListenFunc         func(Handle, int) error
	AcceptFunc         func(Handle, []byte) (Handle, int, error)
	GetsocknameFunc    func(Handle, []byte) (int, error)
	GetpeernameFunc    func(Handle, []byte) (int, error)
	SendFunc           func(Handle, []byte, int) (int, error)
	RecvFunc           func(Handle, []byte, int) (int, error)
	SendToFunc         func(Handle, []byte, int, []byte) (int, error)
	RecvFromFunc       func(Handle, []byte, int, []byte) (int, int, error)
	GetsockoptFunc     func(Handle, int, int, []byte) (int, error)
	SetsockoptFunc     func(Handle, int, int, []byte) error
	SetNonblockFunc    func(Handle, bool) error
	SetInheritableFunc func(Handle, bool) error
	IoctlFunc          func(Handle, uint, uint64) (uint64, error)
	SelectFunc         func(read, write, except []Handle, timeout *Timeval) (int, error)
}

var _ SocketBackend = (*MockBackend)(nil)

func (m *MockBackend) Name() string { return "mock" }

func (m *MockBackend) Socket(f Family, t Type, p Protocol) (Handle, error) {
	if m.SocketFunc == nil {
		return InvalidHandle, ErrNotSupported
	}
	return m.SocketFunc(f, t, p)
}

func (m *MockBackend) Close(h Handle) error {
	if m.CloseFunc == nil {
		return nil
	}
	return m.CloseFunc(h)
}

func (m *MockBackend) Shutdown(h Handle, how ShutdownHow) error {
	if m.ShutdownFunc == nil {
		return nil
	}
	return m.ShutdownFunc(h, how)
}

func (m *MockBackend) Bind(h Handle, sa []byte) error {
	if m.BindFunc == nil {
		return ErrNotSupported
	}
	return m.BindFunc(h, sa)
}

func (m *MockBackend) Connect(h Handle, sa []byte) error {
	if m.ConnectFunc == nil {
		return ErrNotSupported
	}
	return m.ConnectFunc(h, sa)
}

func (m *MockBackend) Listen(h Handle, backlog int) error {
	if m.ListenFunc == nil {
		return ErrNotSupported
	}
	return m.ListenFunc(h, backlog)
}

func (m *MockBackend) Accept(h Handle, sa []byte) (Handle, int, error) {
	if m.AcceptFunc == nil {
		return InvalidHandle, 0, ErrNotSupported
	}
	return m.AcceptFunc(h, sa)
}

func (m *MockBackend) Getsockname(h Handle, sa []byte) (int, error) {
	if m.GetsocknameFunc == nil {
		return 0, ErrNotSupported
	}
	return m.GetsocknameFunc(h, sa)
}

func (m *MockBackend) Getpeername(h Handle, sa []byte) (int, error) {
	if m.GetpeernameFunc == nil {
		return 0, ErrNotSupported
	}
	return m.GetpeernameFunc(h, sa)
}

func (m *MockBackend) Send(h Handle, p []byte, flags int) (int, error) {
	if m.SendFunc == nil {
		return 0, ErrNotSupported
	}
	return m.SendFunc(h, p, flags)
}

func (m *MockBackend) Recv(h Handle, p []byte, flags int) (int, error) {
	if m.RecvFunc == nil {
		return 0, ErrNotSupported
	}
	return m.RecvFunc(h, p, flags)
}

func (m *MockBackend) SendTo(h Handle, p []byte, flags int, sa []byte) (int, error) {
	if m.SendToFunc == nil {
		return 0, ErrNotSupported
	}
	return m.SendToFunc(h, p, flags, sa)
}

func (m *MockBackend) RecvFrom(h Handle, p []byte, flags int, sa []byte) (int, int, error) {
	if m.RecvFromFunc == nil {
		return 0, 0, ErrNotSupported
	}
	return m.RecvFromFunc(h, p, flags, sa)
}

func (m *MockBackend) Getsockopt(h Handle, level, name int, val []byte) (int, error) {
	if m.GetsockoptFunc == nil {
		return 0, ErrNotSupported
	}
	return m.GetsockoptFunc(h, level, name, val)
}

func (m *MockBackend) Setsockopt(h Handle, level, name int, val []byte) error {
	if m.SetsockoptFunc == nil {
		return ErrNotSupported
	}
	return m.SetsockoptFunc(h, level, name, val)
}

func (m *MockBackend) SetNonblock(h Handle, nonblocking bool) error {
	if m.SetNonblockFunc == nil {
		return ErrNotSupported
	}
	return m.SetNonblockFunc(h, nonblocking)
}

func (m *MockBackend) SetInheritable(h Handle, inheritable bool) error {
	if m.SetInheritableFunc == nil {
		return ErrNotSupported
	}
	return m.SetInheritableFunc(h, inheritable)
}

func (m *MockBackend) Ioctl(h Handle, request uint, value uint64) (uint64, error) {
	if m.IoctlFunc == nil {
		return 0, ErrNotSupported
	}
	return m.IoctlFunc(h, request, value)
}

func (m *MockBackend) Select(read, write, except []Handle, timeout *Timeval) (int, error) {
	if m.SelectFunc == nil {
		return 0, ErrNotSupported
	}
	return m.SelectFunc(read, write, except, timeout)
}
