//go:build windows
// +build windows

package sockaddr

// Host is the layout of the running platform.
var Host = Windows
