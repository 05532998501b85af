//go:build linux
// +build linux

// Author: momentics <momentics@gmail.com>
//
// select(2) over native fd_set bitmaps.

package backend

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/rawsock/api"
)

// FDSetSize is the highest descriptor value plus one that fits in an fd_set.
const FDSetSize = 1024

// fillFdSet returns nil for an empty collection so the kernel sees a null set.
func fillFdSet(hs []api.Handle, nfd *int) (*unix.FdSet, error) {
	if len(hs) == 0 {
		return nil, nil
	}
	set := new(unix.FdSet)
	for _, h := range hs {
		if h >= FDSetSize {
			return nil, api.ErrInvalidArgument.WithContext("handle", uint64(h)).WithContext("limit", FDSetSize)
		}
		set.Set(int(h))
		if int(h)+1 > *nfd {
			*nfd = int(h) + 1
		}
	}
	return set, nil
}

// Select restarts after EINTR with whatever remains of the interval. The sets
// are rebuilt each round because the kernel leaves them undefined on error.
func (linuxBackend) Select(read, write, except []api.Handle, timeout *api.Timeval) (int, error) {
	var deadline time.Time
	if timeout != nil {
		deadline = time.Now().Add(time.Duration(timeout.Nanoseconds()))
	}
	for first := true; ; first = false {
		nfd := 0
		rs, err := fillFdSet(read, &nfd)
		if err != nil {
			return 0, err
		}
		ws, err := fillFdSet(write, &nfd)
		if err != nil {
			return 0, err
		}
		es, err := fillFdSet(except, &nfd)
		if err != nil {
			return 0, err
		}
		var tv *unix.Timeval
		if timeout != nil {
			left := time.Duration(timeout.Nanoseconds())
			if !first {
				left = time.Until(deadline)
			}
			if left < 0 {
				left = 0
			}
			t := unix.NsecToTimeval(left.Nanoseconds())
			tv = &t
		}
		n, err := unix.Select(nfd, rs, ws, es, tv)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, wrapErr("select", err)
		}
		return n, nil
	}
}
