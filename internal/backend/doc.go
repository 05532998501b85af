// File: internal/backend/doc.go
// Package backend
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Platform implementations of api.SocketBackend, strictly separated by build
// tags. Linux forwards through raw syscalls, Windows through ws2_32.dll procs.
// Every other platform gets a stub that reports api.ErrNotSupported.
//
// Backends never retain a handle and never take ownership of one. Errors are
// captured at the failing call and returned as *api.OSError.

package backend
