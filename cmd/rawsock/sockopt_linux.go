//go:build linux
// +build linux

package main

import (
	"errors"
	"syscall"

	"golang.org/x/sys/unix"
)

const (
	solSocket   = unix.SOL_SOCKET
	soError     = unix.SO_ERROR
	soReuseAddr = unix.SO_REUSEADDR
)

func inProgress(err error) bool {
	return errors.Is(err, unix.EINPROGRESS)
}

func refused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}
