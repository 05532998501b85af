// Package socket
// Author: momentics <momentics@gmail.com>
//
// Functional options for Socket construction.

package socket

import (
	"github.com/sirupsen/logrus"

	"github.com/momentics/rawsock/api"
	"github.com/momentics/rawsock/control"
	"github.com/momentics/rawsock/internal/backend"
	"github.com/momentics/rawsock/sockaddr"
)

// Option configures a Socket.
type Option func(*options)

type options struct {
	backend api.SocketBackend
	layout  sockaddr.Layout
	log     logrus.FieldLogger
	metrics *control.MetricsRegistry
}

func buildOptions(opts []Option) options {
	o := options{
		backend: backend.Default(),
		layout:  sockaddr.Host,
		log:     logrus.StandardLogger(),
		metrics: control.DefaultMetrics,
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// WithBackend replaces the host backend, typically with a fake in tests.
func WithBackend(b api.SocketBackend) Option {
	return func(o *options) {
		if b != nil {
			o.backend = b
		}
	}
}

// WithLayout sets the native address layout used by the codec.
func WithLayout(l sockaddr.Layout) Option {
	return func(o *options) { o.layout = l }
}

// WithLogger sets the logger. Only debug-level entries are written.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMetrics sets the registry counters are written to. Nil disables them.
func WithMetrics(m *control.MetricsRegistry) Option {
	return func(o *options) { o.metrics = m }
}
