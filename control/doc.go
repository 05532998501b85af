// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, runtime metrics and debug introspection for rawsock.
//
// Provides concurrent-safe state handling primitives including:
//   - Typed configuration with defaults and validation
//   - Counters updated by sockets and the readiness multiplexer
//   - Named debug probes, including per-platform ones
//
// This package is cross-platform and build-tag-partitioned as needed.
package control
