//go:build windows
// +build windows

package main

import (
	"errors"
	"syscall"

	"golang.org/x/sys/windows"
)

const (
	solSocket   = windows.SOL_SOCKET
	soError     = 0x1007
	soReuseAddr = windows.SO_REUSEADDR

	wsaewouldblock  = syscall.Errno(10035)
	wsaeconnrefused = syscall.Errno(10061)
)

func inProgress(err error) bool {
	return errors.Is(err, wsaewouldblock)
}

func refused(err error) bool {
	return errors.Is(err, wsaeconnrefused)
}
