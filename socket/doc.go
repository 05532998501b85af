// Package socket
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Socket is the exclusive owner of one native socket handle. Every call is a
// direct synchronous forward to the platform backend; addresses pass through
// the sockaddr codec and failures surface as *api.OSError or *api.Error.
//
// A Socket is not safe for concurrent Close or Shutdown. Closing a socket while
// another goroutine is blocked in a call on it is undefined.

package socket
