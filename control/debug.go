// control/debug.go
// Author: momentics <momentics@gmail.com>
//
// Debug probe registry used by `rawsock info` for runtime inspection.

package control

import (
	"runtime"
	"sort"
	"sync"

	"github.com/momentics/rawsock/api"
	"github.com/momentics/rawsock/internal/backend"
)

// DebugProbes holds registered probe functions.
type DebugProbes struct {
	mu     sync.RWMutex
	probes map[string]func() any
}

var _ api.Debug = (*DebugProbes)(nil)

// NewDebugProbes creates an empty probe registry.
func NewDebugProbes() *DebugProbes {
	return &DebugProbes{
		probes: make(map[string]func() any),
	}
}

// NewDefaultProbes registers the backend, metrics and platform probes.
func NewDefaultProbes(b api.SocketBackend, m *MetricsRegistry) api.Debug {
	dp := NewDebugProbes()
	dp.RegisterProbe("backend.name", func() any { return b.Name() })
	dp.RegisterProbe("platform.os", func() any { return runtime.GOOS + "/" + runtime.GOARCH })
	dp.RegisterProbe("platform.fdsetsize", func() any { return backend.FDSetSize })
	dp.RegisterProbe("metrics", func() any { return m.GetSnapshot() })
	RegisterPlatformProbes(dp)
	return dp
}

// RegisterProbe inserts or replaces a named debug hook.
func (dp *DebugProbes) RegisterProbe(name string, fn func() any) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.probes[name] = fn
}

// Names returns the registered probe names in order.
func (dp *DebugProbes) Names() []string {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	names := make([]string, 0, len(dp.probes))
	for k := range dp.probes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// DumpState returns output of all probes.
func (dp *DebugProbes) DumpState() map[string]any {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	out := make(map[string]any, len(dp.probes))
	for k, fn := range dp.probes {
		out[k] = fn()
	}
	return out
}
