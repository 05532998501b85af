package control_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/rawsock/api"
	"github.com/momentics/rawsock/control"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := control.DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1000, cfg.TimeoutMs())
}

func TestConfigValidate(t *testing.T) {
	cases := map[string]func(*control.Config){
		"backlog":   func(c *control.Config) { c.Backlog = 0 },
		"log level": func(c *control.Config) { c.LogLevel = "loud" },
		"address":   func(c *control.Config) { c.TCPServer = "localhost" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := control.DefaultConfig()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestTimeoutMsInfinite(t *testing.T) {
	cfg := control.DefaultConfig()
	cfg.SelectTimeout = -time.Second
	assert.Equal(t, -1, cfg.TimeoutMs())
	cfg.SelectTimeout = 1500 * time.Millisecond
	assert.Equal(t, 1500, cfg.TimeoutMs())
}

func TestMetricsCounters(t *testing.T) {
	m := control.NewMetricsRegistry()
	m.Inc(control.MetricSelectCalls)
	m.Add(control.MetricBytesSent, 4)
	m.Add(control.MetricBytesSent, 3)

	assert.Equal(t, int64(1), m.Counter(control.MetricSelectCalls))
	assert.Equal(t, int64(7), m.Counter(control.MetricBytesSent))
	assert.Zero(t, m.Counter(control.MetricSelectTimeouts))
	assert.False(t, m.Updated().IsZero())

	snap := m.GetSnapshot()
	snap[control.MetricBytesSent] = int64(0)
	assert.Equal(t, int64(7), m.Counter(control.MetricBytesSent))
}

func TestNilMetricsIsInert(t *testing.T) {
	var m *control.MetricsRegistry
	m.Inc(control.MetricSocketsOpened)
	m.Set("gauge", 1)
	assert.Zero(t, m.Counter(control.MetricSocketsOpened))
	assert.Empty(t, m.GetSnapshot())
}

func TestDefaultProbes(t *testing.T) {
	m := control.NewMetricsRegistry()
	m.Inc(control.MetricSocketsOpened)
	dp := control.NewDefaultProbes(&api.MockBackend{}, m)

	assert.Contains(t, dp.Names(), "platform.cpus")
	state := dp.DumpState()
	assert.Equal(t, "mock", state["backend.name"])
	assert.Equal(t, int64(1), state["metrics"].(map[string]any)[control.MetricSocketsOpened])
}
