// File: cmd/rawsock/tcp.go
// Author: momentics <momentics@gmail.com>

package main

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jpillora/backoff"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/momentics/rawsock/api"
	"github.com/momentics/rawsock/control"
	"github.com/momentics/rawsock/sockaddr"
	"github.com/momentics/rawsock/socket"
)

const connectAttempts = 5

func newTCPCommand(cfg *control.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tcp",
		Short: "Listen, accept concurrently, connect from a bound client and verify the payload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTCP(cmd, cfg)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&cfg.TCPServer, "server", cfg.TCPServer, "Listening address")
	flags.StringVar(&cfg.TCPClient, "client", cfg.TCPClient, "Client local address")
	return cmd
}

func runTCP(cmd *cobra.Command, cfg *control.Config) error {
	serverAddr, err := sockaddr.Parse(cfg.TCPServer)
	if err != nil {
		return err
	}
	clientAddr, err := sockaddr.Parse(cfg.TCPClient)
	if err != nil {
		return err
	}

	l, err := boundSocket(serverAddr, api.TypeStream, api.ProtoTCP)
	if err != nil {
		return errors.Wrap(err, "listener")
	}
	defer l.Release()
	if err := l.Listen(cfg.Backlog); err != nil {
		return err
	}

	var g errgroup.Group
	var peer sockaddr.Addr
	g.Go(func() error {
		c, from, err := l.Accept()
		if err != nil {
			return err
		}
		defer c.Release()
		peer = from
		buf := make([]byte, len(payload))
		n, err := c.Recv(buf)
		if err != nil {
			return err
		}
		if !bytes.Equal(buf[:n], payload) {
			return errors.Errorf("payload mismatch: %v", buf[:n])
		}
		return nil
	})

	client, err := dialWithRetry(clientAddr, serverAddr)
	if err != nil {
		// Unblock the accept goroutine.
		l.Release()
		_ = g.Wait()
		return err
	}
	defer client.Release()
	if err := exchange(&g, client, payload); err != nil {
		return err
	}
	if peer != clientAddr {
		return errors.Errorf("accepted %s, want %s", peer, clientAddr)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "tcp: %s -> %s accepted and verified\n", peer, serverAddr)
	return nil
}

// exchange sends payload and always waits for the accepting side. A failed
// send releases the client first so the peer's Recv returns.
func exchange(g *errgroup.Group, client *socket.Socket, payload []byte) error {
	_, err := client.Send(payload)
	if err != nil {
		client.Release()
	}
	if werr := g.Wait(); err == nil {
		err = werr
	}
	return err
}

// dialWithRetry connects from local to remote, retrying refused attempts with
// a fresh socket under exponential backoff.
func dialWithRetry(local, remote sockaddr.Addr) (*socket.Socket, error) {
	b := &backoff.Backoff{Min: 20 * time.Millisecond, Max: time.Second, Factor: 2}
	for {
		s, err := boundSocket(local, api.TypeStream, api.ProtoTCP)
		if err != nil {
			return nil, err
		}
		err = s.Connect(remote)
		if err == nil {
			return s, nil
		}
		s.Release()
		if !refused(err) || b.Attempt() >= connectAttempts-1 {
			return nil, err
		}
		d := b.Duration()
		logrus.WithFields(logrus.Fields{"remote": remote.String(), "delay": d}).Debug("connect refused, retrying")
		time.Sleep(d)
	}
}
