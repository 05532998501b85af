package main

import (
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/momentics/rawsock/api"
	"github.com/momentics/rawsock/fake"
	"github.com/momentics/rawsock/sockaddr"
	"github.com/momentics/rawsock/socket"
)

func TestExchangeWaitsForPeerOnSendFailure(t *testing.T) {
	b := fake.NewBackend()
	client, err := socket.New(api.FamilyIPv4, api.TypeStream, api.ProtoTCP, socket.WithBackend(b))
	require.NoError(t, err)
	h := client.Raw()
	b.Fail("send", &api.OSError{Op: "send", Errno: syscall.ECONNRESET, Code: api.ErrCodeOS})

	var done atomic.Bool
	var g errgroup.Group
	g.Go(func() error {
		// Stands in for a peer blocked until the client goes away.
		for b.IsOpen(h) {
			time.Sleep(time.Millisecond)
		}
		done.Store(true)
		return nil
	})

	err = exchange(&g, client, []byte{1, 2, 3, 4})
	assert.ErrorIs(t, err, syscall.ECONNRESET)
	assert.True(t, done.Load())
	assert.True(t, client.IsClosed())
}

func TestExchangeReportsPeerError(t *testing.T) {
	b := fake.NewBackend()
	client, err := socket.New(api.FamilyIPv4, api.TypeDgram, api.ProtoUDP, socket.WithBackend(b))
	require.NoError(t, err)
	defer client.Release()
	require.NoError(t, client.Connect(sockaddr.Loopback4(1666)))

	var g errgroup.Group
	g.Go(func() error { return api.ErrInvalidArgument })

	err = exchange(&g, client, []byte{1})
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}
