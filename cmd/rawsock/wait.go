// File: cmd/rawsock/wait.go
// Author: momentics <momentics@gmail.com>

package main

import (
	"fmt"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/momentics/rawsock/api"
	"github.com/momentics/rawsock/control"
	"github.com/momentics/rawsock/sockaddr"
	"github.com/momentics/rawsock/socket"
)

func newWaitCommand(cfg *control.Config) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Start a non-blocking connect and wait for the socket to become writable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWait(cmd, cfg, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", cfg.TCPServer, "Address to connect to")
	return cmd
}

func runWait(cmd *cobra.Command, cfg *control.Config, target string) error {
	remote, err := sockaddr.Parse(target)
	if err != nil {
		return err
	}
	s, err := socket.New(remote.Family(), api.TypeStream, api.ProtoTCP)
	if err != nil {
		return err
	}
	defer s.Release()
	if err := s.SetNonblocking(true); err != nil {
		return err
	}
	if err := s.Connect(remote); err != nil && !inProgress(err) {
		return err
	}

	out := cmd.OutOrStdout()
	n, err := socket.Select(nil, []*socket.Socket{s}, []*socket.Socket{s}, cfg.TimeoutMs())
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintf(out, "wait: %s not ready within %s\n", remote, cfg.SelectTimeout)
		return nil
	}
	soerr, err := s.GetOptInt(solSocket, soError)
	if err != nil {
		return err
	}
	if soerr != 0 {
		return errors.Wrapf(api.NewOSError("connect", syscall.Errno(soerr)), "wait %s", remote)
	}
	local, err := s.Name()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "wait: %s ready (%d) from %s\n", remote, n, local)
	return nil
}
