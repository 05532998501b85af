// File: cmd/rawsock/probe.go
// Author: momentics <momentics@gmail.com>

package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/momentics/rawsock/api"
	"github.com/momentics/rawsock/sockaddr"
	"github.com/momentics/rawsock/socket"
)

func newProbeCommand() *cobra.Command {
	var family, typ string
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Create a socket, show it is unnamed, bind it to the wildcard and print its name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFamily(family)
			if err != nil {
				return err
			}
			t, proto, err := parseType(typ, f)
			if err != nil {
				return err
			}
			return runProbe(cmd, f, t, proto)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&family, "family", "ipv4", "Address family (ipv4, ipv6)")
	flags.StringVar(&typ, "type", "dgram", "Socket type (dgram, stream, raw)")
	return cmd
}

func runProbe(cmd *cobra.Command, f api.Family, t api.Type, proto api.Protocol) error {
	s, err := socket.New(f, t, proto)
	if err != nil {
		return err
	}
	defer s.Release()
	out := cmd.OutOrStdout()

	if _, err := s.Name(); errors.Is(err, api.ErrNotBound) {
		fmt.Fprintln(out, "before bind: no local name")
	} else {
		return errors.Errorf("unbound socket reported a name (err=%v)", err)
	}

	var wildcard sockaddr.Addr = sockaddr.Any4(0)
	if f == api.FamilyIPv6 {
		wildcard = sockaddr.Inet6{}
	}
	if err := s.Bind(wildcard); err != nil {
		return err
	}
	name, err := s.Name()
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"handle": uint64(s.Raw()), "name": name.String()}).Debug("probe bound")
	fmt.Fprintf(out, "after bind: %s (%s/%s)\n", name, f, t)
	return nil
}

func parseFamily(s string) (api.Family, error) {
	switch s {
	case "ipv4", "4":
		return api.FamilyIPv4, nil
	case "ipv6", "6":
		return api.FamilyIPv6, nil
	default:
		return api.FamilyUnspec, errors.Errorf("unknown family %q", s)
	}
}

func parseType(s string, f api.Family) (api.Type, api.Protocol, error) {
	switch s {
	case "dgram", "udp":
		return api.TypeDgram, api.ProtoUDP, nil
	case "stream", "tcp":
		return api.TypeStream, api.ProtoTCP, nil
	case "raw":
		if f == api.FamilyIPv6 {
			return api.TypeRaw, api.ProtoICMPv6, nil
		}
		return api.TypeRaw, api.ProtoICMP, nil
	default:
		return 0, 0, errors.Errorf("unknown socket type %q", s)
	}
}
