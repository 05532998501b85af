// Package socket
// Author: momentics <momentics@gmail.com>
//
// Readiness waits over sockets.

package socket

import (
	"runtime"

	"github.com/momentics/rawsock/api"
	"github.com/momentics/rawsock/internal/backend"
	"github.com/momentics/rawsock/reactor"
)

// Select waits until one of the sockets is ready for reading, writing or has
// an exceptional condition, or until timeoutMs elapses. A negative timeout
// waits forever. It returns the number of ready handles; zero means the
// timeout elapsed. All sockets must share one backend.
func Select(read, write, except []*Socket, timeoutMs int) (int, error) {
	var first *Socket
	handles := func(ss []*Socket) ([]api.Handle, error) {
		if len(ss) == 0 {
			return nil, nil
		}
		hs := make([]api.Handle, len(ss))
		for i, s := range ss {
			if s == nil {
				return nil, api.ErrInvalidArgument.WithContext("index", i)
			}
			if s.closed.Load() {
				return nil, api.ErrClosed.WithContext("index", i)
			}
			if first == nil {
				first = s
			} else if s.backend != first.backend {
				return nil, api.ErrInvalidArgument.WithContext("backend", s.backend.Name())
			}
			hs[i] = s.handle
		}
		return hs, nil
	}
	r, err := handles(read)
	if err != nil {
		return 0, err
	}
	w, err := handles(write)
	if err != nil {
		return 0, err
	}
	e, err := handles(except)
	if err != nil {
		return 0, err
	}
	if first == nil {
		return reactor.Wait(backend.Default(), nil, nil, nil, timeoutMs)
	}
	n, err := reactor.NewSelector(first.backend, first.metrics, first.log).Wait(r, w, e, timeoutMs)
	// The sockets own the handles being waited on.
	runtime.KeepAlive(read)
	runtime.KeepAlive(write)
	runtime.KeepAlive(except)
	return n, err
}
