//go:build linux
// +build linux

package sockaddr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"

	"github.com/momentics/rawsock/sockaddr"
)

func TestLinuxLayoutMatchesKernel(t *testing.T) {
	assert.Equal(t, sockaddr.Linux, sockaddr.Host)
	assert.Equal(t, uint16(unix.AF_INET), sockaddr.Linux.FamilyInet4)
	assert.Equal(t, uint16(unix.AF_INET6), sockaddr.Linux.FamilyInet6)
	assert.Equal(t, unix.SizeofSockaddrInet4, sockaddr.SizeofInet4)
	assert.Equal(t, unix.SizeofSockaddrInet6, sockaddr.SizeofInet6)
}
