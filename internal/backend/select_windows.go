//go:build windows
// +build windows

// Author: momentics <momentics@gmail.com>
//
// Winsock select over counted fd_set arrays.

package backend

import (
	"fmt"
	"math"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/momentics/rawsock/api"
)

// FDSetSize is the Winsock FD_SETSIZE: the capacity of one set.
const FDSetSize = 64

type fdSet struct {
	count uint32
	array [FDSetSize]windows.Handle
}

// newFdSet panics when hs exceeds the set capacity; callers must split larger
// collections themselves.
func newFdSet(hs []api.Handle) *fdSet {
	if len(hs) == 0 {
		return nil
	}
	if len(hs) > FDSetSize {
		panic(fmt.Sprintf("backend: %d handles exceed the select set capacity of %d", len(hs), FDSetSize))
	}
	set := new(fdSet)
	for _, h := range hs {
		set.array[set.count] = windows.Handle(h)
		set.count++
	}
	return set
}

// toTimeval narrows t to the 32-bit Winsock timeval. Intervals beyond its
// range are clamped rather than wrapped.
func toTimeval(t *api.Timeval) *windows.Timeval {
	if t == nil {
		return nil
	}
	if t.Sec > math.MaxInt32 {
		return &windows.Timeval{Sec: math.MaxInt32, Usec: 999999}
	}
	return &windows.Timeval{Sec: int32(t.Sec), Usec: int32(t.Usec)}
}

func (windowsBackend) Select(read, write, except []api.Handle, timeout *api.Timeval) (int, error) {
	rs, ws, es := newFdSet(read), newFdSet(write), newFdSet(except)
	tv := toTimeval(timeout)
	r1, _, e := procSelect.Call(0,
		uintptr(unsafe.Pointer(rs)), uintptr(unsafe.Pointer(ws)), uintptr(unsafe.Pointer(es)),
		uintptr(unsafe.Pointer(tv)))
	if failed(r1) {
		return 0, osErr("select", lastErrno(e), false)
	}
	return int(int32(r1)), nil
}
