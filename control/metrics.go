// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics collector for socket-level monitoring.
// Counters and gauges share one thread-safe map; a nil registry drops updates.

package control

import (
	"sync"
	"time"
)

// Counter names maintained by the socket and reactor packages.
const (
	MetricSocketsOpened  = "sockets.opened"
	MetricSocketsClosed  = "sockets.closed"
	MetricBytesSent      = "bytes.sent"
	MetricBytesReceived  = "bytes.received"
	MetricShutdownFolded = "send.shutdown_folded"
	MetricSelectCalls    = "select.calls"
	MetricSelectTimeouts = "select.timeouts"
)

// DefaultMetrics is used by sockets created without WithMetrics.
var DefaultMetrics = NewMetricsRegistry()

// MetricsRegistry holds counters and arbitrary gauge values.
type MetricsRegistry struct {
	mu      sync.RWMutex
	metrics map[string]any
	updated time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		metrics: make(map[string]any),
	}
}

// Set sets or updates a metric key.
func (mr *MetricsRegistry) Set(key string, value any) {
	if mr == nil {
		return
	}
	mr.mu.Lock()
	mr.metrics[key] = value
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Add increments the int64 counter at key. A non-counter value is replaced.
func (mr *MetricsRegistry) Add(key string, delta int64) {
	if mr == nil || delta == 0 {
		return
	}
	mr.mu.Lock()
	cur, _ := mr.metrics[key].(int64)
	mr.metrics[key] = cur + delta
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Inc is Add(key, 1).
func (mr *MetricsRegistry) Inc(key string) { mr.Add(key, 1) }

// Counter returns the counter at key, or 0.
func (mr *MetricsRegistry) Counter(key string) int64 {
	if mr == nil {
		return 0
	}
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	v, _ := mr.metrics[key].(int64)
	return v
}

// Updated returns the time of the last change.
func (mr *MetricsRegistry) Updated() time.Time {
	if mr == nil {
		return time.Time{}
	}
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}

// GetSnapshot returns the latest metrics.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	if mr == nil {
		return map[string]any{}
	}
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]any, len(mr.metrics))
	for k, v := range mr.metrics {
		out[k] = v
	}
	return out
}
