// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package reactor

import (
	"github.com/sirupsen/logrus"

	"github.com/momentics/rawsock/api"
	"github.com/momentics/rawsock/control"
)

// Selector binds a backend, metrics and a logger for repeated waits.
type Selector struct {
	backend api.SocketBackend
	metrics *control.MetricsRegistry
	log     logrus.FieldLogger
}

// NewSelector creates a Selector. A nil metrics registry disables counting.
func NewSelector(b api.SocketBackend, m *control.MetricsRegistry, log logrus.FieldLogger) *Selector {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Selector{backend: b, metrics: m, log: log}
}

// Backend returns the bound backend.
func (s *Selector) Backend() api.SocketBackend { return s.backend }

// Wait is reactor.Wait on the bound backend.
func (s *Selector) Wait(read, write, except []api.Handle, timeoutMs int) (int, error) {
	s.metrics.Inc(control.MetricSelectCalls)
	n, err := Wait(s.backend, read, write, except, timeoutMs)
	if err != nil {
		s.log.WithFields(logrus.Fields{"op": "select", "backend": s.backend.Name()}).WithError(err).Debug("wait failed")
		return 0, err
	}
	if n == 0 {
		s.metrics.Inc(control.MetricSelectTimeouts)
	}
	return n, nil
}
