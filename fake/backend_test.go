package fake_test

import (
	"errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/rawsock/api"
	"github.com/momentics/rawsock/fake"
)

func TestScriptedFailuresAreFIFO(t *testing.T) {
	b := fake.NewBackend()
	h, err := b.Socket(api.FamilyIPv4, api.TypeDgram, api.ProtoUDP)
	require.NoError(t, err)

	first, second := errors.New("first"), errors.New("second")
	b.Fail("bind", first)
	b.Fail("bind", second)

	assert.Same(t, first, b.Bind(h, []byte{1}))
	assert.Same(t, second, b.Bind(h, []byte{1}))
	assert.NoError(t, b.Bind(h, []byte{1}))
	assert.Equal(t, []string{"socket(ipv4,dgram,17)", "bind(3)", "bind(3)", "bind(3)"}, b.Calls())
}

func TestDatagramRouting(t *testing.T) {
	b := fake.NewBackend()
	a, _ := b.Socket(api.FamilyIPv4, api.TypeDgram, api.ProtoUDP)
	c, _ := b.Socket(api.FamilyIPv4, api.TypeDgram, api.ProtoUDP)
	require.NoError(t, b.Bind(a, []byte("A")))
	require.NoError(t, b.Bind(c, []byte("C")))
	assert.ErrorIs(t, b.Bind(c, []byte("A")), syscall.EADDRINUSE)

	n, err := b.SendTo(c, []byte("hi"), 0, []byte("A"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ready, err := b.Select([]api.Handle{a, c}, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, ready)

	buf, from := make([]byte, 8), make([]byte, 8)
	n, l, err := b.RecvFrom(a, buf, 0, from)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(buf[:n]))
	assert.Equal(t, "C", string(from[:l]))

	_, err = b.Recv(a, buf, 0)
	assert.ErrorIs(t, err, syscall.EAGAIN)
}

func TestClosedHandle(t *testing.T) {
	b := fake.NewBackend()
	h, _ := b.Socket(api.FamilyIPv4, api.TypeStream, api.ProtoTCP)
	require.NoError(t, b.Close(h))
	assert.ErrorIs(t, b.Close(h), syscall.EBADF)
	assert.Zero(t, b.Open())
}
