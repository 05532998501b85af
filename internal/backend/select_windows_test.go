//go:build windows
// +build windows

package backend

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/momentics/rawsock/api"
)

func TestFdSetCapacity(t *testing.T) {
	assert.Nil(t, newFdSet(nil))

	set := newFdSet(make([]api.Handle, FDSetSize))
	assert.Equal(t, uint32(FDSetSize), set.count)

	assert.Panics(t, func() { newFdSet(make([]api.Handle, FDSetSize+1)) })
}

func TestShutdownErrno(t *testing.T) {
	err := osErr("send", wsaeshutdown, true)
	assert.True(t, api.IsShutdown(err))
	assert.False(t, api.IsShutdown(osErr("recv", wsaeshutdown, false)))
}

func TestTimevalClamp(t *testing.T) {
	assert.Nil(t, toTimeval(nil))

	tv := toTimeval(&api.Timeval{Sec: 2, Usec: 500})
	assert.Equal(t, int32(2), tv.Sec)
	assert.Equal(t, int32(500), tv.Usec)

	tv = toTimeval(&api.Timeval{Sec: math.MaxInt64 / 1000, Usec: 807000})
	assert.Equal(t, int32(math.MaxInt32), tv.Sec)
	assert.Less(t, tv.Usec, int32(1000000))
}

func TestIoctlRejectsInvalidHandle(t *testing.T) {
	_, err := New().Ioctl(api.InvalidHandle, fionbio, 1)
	assert.Error(t, err)
}
