// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the readiness multiplexer: a single select-style
// wait over read, write and exceptional-condition handle sets, delegated to
// the platform backend (select(2) on Linux, Winsock select on Windows).
package reactor
