// File: cmd/rawsock/udp.go
// Author: momentics <momentics@gmail.com>

package main

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/momentics/rawsock/api"
	"github.com/momentics/rawsock/control"
	"github.com/momentics/rawsock/sockaddr"
	"github.com/momentics/rawsock/socket"
)

var payload = []byte{1, 2, 3, 4}

func newUDPCommand(cfg *control.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "udp",
		Short: "Send a datagram between two bound loopback sockets and verify it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUDP(cmd, cfg)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&cfg.UDPServer, "server", cfg.UDPServer, "Receiving address")
	flags.StringVar(&cfg.UDPClient, "client", cfg.UDPClient, "Sending address")
	return cmd
}

func runUDP(cmd *cobra.Command, cfg *control.Config) error {
	serverAddr, err := sockaddr.Parse(cfg.UDPServer)
	if err != nil {
		return err
	}
	clientAddr, err := sockaddr.Parse(cfg.UDPClient)
	if err != nil {
		return err
	}

	server, err := boundSocket(serverAddr, api.TypeDgram, api.ProtoUDP)
	if err != nil {
		return errors.Wrap(err, "server")
	}
	defer server.Release()
	client, err := boundSocket(clientAddr, api.TypeDgram, api.ProtoUDP)
	if err != nil {
		return errors.Wrap(err, "client")
	}
	defer client.Release()

	n, err := client.SendTo(payload, serverAddr)
	if err != nil {
		return err
	}
	if n != len(payload) {
		return errors.Errorf("sent %d of %d bytes", n, len(payload))
	}

	ready, err := socket.Select([]*socket.Socket{server}, nil, nil, cfg.TimeoutMs())
	if err != nil {
		return err
	}
	if ready == 0 {
		return errors.Errorf("no datagram within %s", cfg.SelectTimeout)
	}

	buf := make([]byte, 64)
	n, from, err := server.RecvFrom(buf)
	if err != nil {
		return err
	}
	if !bytes.Equal(buf[:n], payload) {
		return errors.Errorf("payload mismatch: %v", buf[:n])
	}
	if from != clientAddr {
		return errors.Errorf("datagram came from %s, want %s", from, clientAddr)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "udp: %d bytes %s -> %s ok\n", n, from, serverAddr)
	return nil
}

// boundSocket creates a socket of addr's family with SO_REUSEADDR set and
// binds it to addr.
func boundSocket(addr sockaddr.Addr, typ api.Type, proto api.Protocol) (*socket.Socket, error) {
	s, err := socket.New(addr.Family(), typ, proto)
	if err != nil {
		return nil, err
	}
	if err := s.SetOptInt(solSocket, soReuseAddr, 1); err != nil {
		s.Release()
		return nil, err
	}
	if err := s.Bind(addr); err != nil {
		s.Release()
		return nil, err
	}
	return s, nil
}
