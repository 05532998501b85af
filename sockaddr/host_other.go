//go:build !linux && !windows
// +build !linux,!windows

package sockaddr

// Host falls back to the Linux layout; no backend exists here to consume it.
var Host = Linux
