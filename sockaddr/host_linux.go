//go:build linux
// +build linux

package sockaddr

// Host is the layout of the running platform.
var Host = Linux
