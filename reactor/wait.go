// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package reactor

import (
	"github.com/momentics/rawsock/api"
)

// Infinite is the timeout value that blocks until a handle is ready.
const Infinite = -1

// Timeout converts milliseconds to the interval handed to the backend.
// A negative value yields nil, meaning no timeout.
func Timeout(ms int) *api.Timeval {
	if ms < 0 {
		return nil
	}
	return &api.Timeval{
		Sec:  int64(ms / 1000),
		Usec: int64(ms%1000) * 1000,
	}
}

// nilIfEmpty makes an empty collection reach the OS as a null set.
func nilIfEmpty(hs []api.Handle) []api.Handle {
	if len(hs) == 0 {
		return nil
	}
	return hs
}

// Wait blocks until at least one handle is ready or timeoutMs elapses, and
// returns the number of ready handles as reported by the OS. Zero means the
// timeout elapsed. The handles are only borrowed.
func Wait(b api.SocketBackend, read, write, except []api.Handle, timeoutMs int) (int, error) {
	return b.Select(nilIfEmpty(read), nilIfEmpty(write), nilIfEmpty(except), Timeout(timeoutMs))
}
