// Package fake
// Author: momentics <momentics@gmail.com>
//
// In-memory api.SocketBackend with predictable, controllable behavior.
// Datagrams travel between fake handles by exact native address match; no OS
// resource is ever touched.

package fake

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"syscall"

	"github.com/eapache/queue"

	"github.com/momentics/rawsock/api"
)

type datagram struct {
	data []byte
	from []byte
}

type handleState struct {
	family      api.Family
	typ         api.Type
	local       []byte
	peer        []byte
	listening   bool
	nonblocking bool
	inheritable bool
	shutRead    bool
	shutWrite   bool
	inbound     *queue.Queue // of datagram
	pending     *queue.Queue // of []byte peer addresses waiting in accept
	opts        map[[2]int][]byte
}

// Backend is a fake implementation of api.SocketBackend for testing.
type Backend struct {
	mu      sync.Mutex
	next    api.Handle
	handles map[api.Handle]*handleState
	scripts map[string]*queue.Queue // of error
	calls   []string

	// LastTimeout is the interval passed to the most recent Select.
	LastTimeout *api.Timeval
}

var _ api.SocketBackend = (*Backend)(nil)

// NewBackend creates an empty fake backend. Handles start at 3.
func NewBackend() *Backend {
	return &Backend{
		next:    3,
		handles: make(map[api.Handle]*handleState),
		scripts: make(map[string]*queue.Queue),
	}
}

// Name implements api.SocketBackend.
func (b *Backend) Name() string { return "fake" }

// Fail makes the next call of op return err. Repeated calls queue further
// failures in order; ops are the lower-case call names, e.g. "shutdown".
func (b *Backend) Fail(op string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.scripts[op]
	if !ok {
		q = queue.New()
		b.scripts[op] = q
	}
	q.Add(err)
}

// Calls returns the recorded call log, e.g. "shutdown(3,both)".
func (b *Backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

// IsOpen reports whether h is a live fake handle.
func (b *Backend) IsOpen(h api.Handle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.handles[h]
	return ok
}

// Open returns the number of live handles.
func (b *Backend) Open() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handles)
}

// Inheritable reports the inheritability flag of h.
func (b *Backend) Inheritable(h api.Handle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.handles[h]
	return ok && st.inheritable
}

// Nonblocking reports the blocking mode of h.
func (b *Backend) Nonblocking(h api.Handle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.handles[h]
	return ok && st.nonblocking
}

// QueueConnection makes the next Accept on listener return a child whose peer
// is the native address sa.
func (b *Backend) QueueConnection(listener api.Handle, sa []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.handles[listener]
	if !ok || !st.listening {
		return fmt.Errorf("fake: handle %d is not listening", listener)
	}
	st.pending.Add(append([]byte(nil), sa...))
	return nil
}

// record logs the call and pops a scripted failure. Callers hold b.mu.
func (b *Backend) record(op string, args ...any) error {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	b.calls = append(b.calls, op+"("+strings.Join(parts, ",")+")")
	if q, ok := b.scripts[op]; ok && q.Length() > 0 {
		if err, _ := q.Remove().(error); err != nil {
			return err
		}
	}
	return nil
}

func errno(op string, e syscall.Errno) error {
	return &api.OSError{Op: op, Errno: e, Code: api.ErrCodeOS}
}

func (b *Backend) lookup(op string, h api.Handle) (*handleState, error) {
	st, ok := b.handles[h]
	if !ok {
		return nil, errno(op, syscall.EBADF)
	}
	return st, nil
}

// Socket implements api.SocketBackend. Fake handles are non-inheritable.
func (b *Backend) Socket(family api.Family, typ api.Type, proto api.Protocol) (api.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("socket", family, typ, int(proto)); err != nil {
		return api.InvalidHandle, err
	}
	if family != api.FamilyIPv4 && family != api.FamilyIPv6 {
		return api.InvalidHandle, api.ErrInvalidAddrFamily.WithContext("family", family.String())
	}
	return b.alloc(family, typ), nil
}

func (b *Backend) alloc(family api.Family, typ api.Type) api.Handle {
	h := b.next
	b.next++
	b.handles[h] = &handleState{
		family:  family,
		typ:     typ,
		inbound: queue.New(),
		pending: queue.New(),
		opts:    make(map[[2]int][]byte),
	}
	return h
}

// Close implements api.SocketBackend. The handle is gone even when a failure
// was scripted, matching close(2).
func (b *Backend) Close(h api.Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	scripted := b.record("close", h)
	if _, err := b.lookup("close", h); err != nil {
		return err
	}
	delete(b.handles, h)
	return scripted
}

func (b *Backend) Shutdown(h api.Handle, how api.ShutdownHow) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("shutdown", h, how); err != nil {
		return err
	}
	st, err := b.lookup("shutdown", h)
	if err != nil {
		return err
	}
	if st.peer == nil && !st.listening && st.typ == api.TypeStream {
		return errno("shutdown", syscall.ENOTCONN)
	}
	st.shutRead = st.shutRead || how != api.ShutdownWrite
	st.shutWrite = st.shutWrite || how != api.ShutdownRead
	return nil
}

func (b *Backend) Bind(h api.Handle, sa []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("bind", h); err != nil {
		return err
	}
	st, err := b.lookup("bind", h)
	if err != nil {
		return err
	}
	if b.boundTo(sa) != nil {
		return errno("bind", syscall.EADDRINUSE)
	}
	st.local = append([]byte(nil), sa...)
	return nil
}

func (b *Backend) boundTo(sa []byte) *handleState {
	for _, st := range b.handles {
		if st.local != nil && bytes.Equal(st.local, sa) {
			return st
		}
	}
	return nil
}

func (b *Backend) Connect(h api.Handle, sa []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("connect", h); err != nil {
		return err
	}
	st, err := b.lookup("connect", h)
	if err != nil {
		return err
	}
	st.peer = append([]byte(nil), sa...)
	return nil
}

func (b *Backend) Listen(h api.Handle, backlog int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("listen", h, backlog); err != nil {
		return err
	}
	st, err := b.lookup("listen", h)
	if err != nil {
		return err
	}
	st.listening = true
	return nil
}

// Accept implements api.SocketBackend. With nothing queued it fails with
// EAGAIN instead of blocking.
func (b *Backend) Accept(h api.Handle, sa []byte) (api.Handle, int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("accept", h); err != nil {
		return api.InvalidHandle, 0, err
	}
	st, err := b.lookup("accept", h)
	if err != nil {
		return api.InvalidHandle, 0, err
	}
	if !st.listening {
		return api.InvalidHandle, 0, errno("accept", syscall.EINVAL)
	}
	if st.pending.Length() == 0 {
		return api.InvalidHandle, 0, errno("accept", syscall.EAGAIN)
	}
	peer := st.pending.Remove().([]byte)
	child := b.alloc(st.family, st.typ)
	b.handles[child].local = st.local
	b.handles[child].peer = peer
	return child, copy(sa, peer), nil
}

// Getsockname reports a zero length for an unnamed handle.
func (b *Backend) Getsockname(h api.Handle, sa []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("getsockname", h); err != nil {
		return 0, err
	}
	st, err := b.lookup("getsockname", h)
	if err != nil {
		return 0, err
	}
	return copy(sa, st.local), nil
}

func (b *Backend) Getpeername(h api.Handle, sa []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("getpeername", h); err != nil {
		return 0, err
	}
	st, err := b.lookup("getpeername", h)
	if err != nil {
		return 0, err
	}
	if st.peer == nil {
		return 0, errno("getpeername", syscall.ENOTCONN)
	}
	return copy(sa, st.peer), nil
}

func (b *Backend) Send(h api.Handle, p []byte, flags int) (int, error) {
	return b.SendTo(h, p, flags, nil)
}

// SendTo delivers p to the handle bound to sa, or to the connected peer when
// sa is empty. Data for an unbound destination is dropped.
func (b *Backend) SendTo(h api.Handle, p []byte, flags int, sa []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	op := "sendto"
	if len(sa) == 0 {
		op = "send"
	}
	if err := b.record(op, h, len(p)); err != nil {
		return 0, err
	}
	st, err := b.lookup(op, h)
	if err != nil {
		return 0, err
	}
	if st.shutWrite {
		return 0, &api.OSError{Op: op, Errno: syscall.EPIPE, Code: api.ErrCodeShutdown}
	}
	dst := sa
	if len(dst) == 0 {
		if st.peer == nil {
			return 0, errno(op, syscall.ENOTCONN)
		}
		dst = st.peer
	}
	if to := b.boundTo(dst); to != nil && !to.shutRead {
		to.inbound.Add(datagram{data: append([]byte(nil), p...), from: st.local})
	}
	return len(p), nil
}

func (b *Backend) Recv(h api.Handle, p []byte, flags int) (int, error) {
	n, _, err := b.recv("recv", h, p, nil)
	return n, err
}

func (b *Backend) RecvFrom(h api.Handle, p []byte, flags int, sa []byte) (int, int, error) {
	return b.recv("recvfrom", h, p, sa)
}

func (b *Backend) recv(op string, h api.Handle, p, sa []byte) (int, int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(op, h, len(p)); err != nil {
		return 0, 0, err
	}
	st, err := b.lookup(op, h)
	if err != nil {
		return 0, 0, err
	}
	if st.shutRead {
		return 0, 0, nil
	}
	if st.inbound.Length() == 0 {
		return 0, 0, errno(op, syscall.EAGAIN)
	}
	dg := st.inbound.Remove().(datagram)
	return copy(p, dg.data), copy(sa, dg.from), nil
}

func (b *Backend) Getsockopt(h api.Handle, level, name int, val []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("getsockopt", h, level, name); err != nil {
		return 0, err
	}
	st, err := b.lookup("getsockopt", h)
	if err != nil {
		return 0, err
	}
	v, ok := st.opts[[2]int{level, name}]
	if !ok {
		return 0, errno("getsockopt", syscall.ENOPROTOOPT)
	}
	return copy(val, v), nil
}

func (b *Backend) Setsockopt(h api.Handle, level, name int, val []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("setsockopt", h, level, name); err != nil {
		return err
	}
	st, err := b.lookup("setsockopt", h)
	if err != nil {
		return err
	}
	st.opts[[2]int{level, name}] = append([]byte(nil), val...)
	return nil
}

func (b *Backend) SetNonblock(h api.Handle, nonblocking bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("setnonblock", h, nonblocking); err != nil {
		return err
	}
	st, err := b.lookup("setnonblock", h)
	if err != nil {
		return err
	}
	st.nonblocking = nonblocking
	return nil
}

func (b *Backend) SetInheritable(h api.Handle, inheritable bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("setinheritable", h, inheritable); err != nil {
		return err
	}
	st, err := b.lookup("setinheritable", h)
	if err != nil {
		return err
	}
	st.inheritable = inheritable
	return nil
}

// Ioctl records the request and hands value back unchanged.
func (b *Backend) Ioctl(h api.Handle, request uint, value uint64) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("ioctl", h, fmt.Sprintf("%#x", request), value); err != nil {
		return 0, err
	}
	if _, err := b.lookup("ioctl", h); err != nil {
		return 0, err
	}
	return value, nil
}

// Select never blocks: it counts what is ready right now. A handle is
// readable with queued data or connections, and writable unless shut down
// for writing.
func (b *Backend) Select(read, write, except []api.Handle, timeout *api.Timeval) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record("select", len(read), len(write), len(except)); err != nil {
		return 0, err
	}
	b.LastTimeout = timeout
	n := 0
	for _, h := range read {
		st, err := b.lookup("select", h)
		if err != nil {
			return 0, err
		}
		if st.inbound.Length() > 0 || st.pending.Length() > 0 {
			n++
		}
	}
	for _, h := range write {
		st, err := b.lookup("select", h)
		if err != nil {
			return 0, err
		}
		if !st.shutWrite {
			n++
		}
	}
	for _, h := range except {
		if _, err := b.lookup("select", h); err != nil {
			return 0, err
		}
	}
	return n, nil
}
