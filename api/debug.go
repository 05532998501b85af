// Package api
// Author: momentics
//
// Runtime introspection contract for diagnostics tooling.

package api

// Debug exposes named probes evaluated on demand.
type Debug interface {
	// DumpState evaluates every probe and returns the results by name.
	DumpState() map[string]any

	// RegisterProbe registers or replaces a named probe.
	RegisterProbe(name string, fn func() any)

	// Names lists the registered probes in sorted order.
	Names() []string
}
