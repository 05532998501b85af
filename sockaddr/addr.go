// File: sockaddr/addr.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Generic IPv4/IPv6 socket addresses.

package sockaddr

import (
	"net"
	"net/netip"
	"strconv"

	"github.com/pkg/errors"

	"github.com/momentics/rawsock/api"
)

// Addr is either Inet4 or Inet6. Both are comparable values, so decoded
// addresses can be checked with ==.
type Addr interface {
	Family() api.Family
	AddrPort() netip.AddrPort
	String() string
	isAddr()
}

// Inet4 is an IPv4 address and port.
type Inet4 struct {
	IP   [4]byte
	Port uint16
}

// Inet6 is an IPv6 address, port, flow label and scope id.
type Inet6 struct {
	IP       [16]byte
	Port     uint16
	FlowInfo uint32
	ScopeID  uint32
}

func (Inet4) isAddr() {}
func (Inet6) isAddr() {}

func (Inet4) Family() api.Family { return api.FamilyIPv4 }
func (Inet6) Family() api.Family { return api.FamilyIPv6 }

func (a Inet4) AddrPort() netip.AddrPort {
	return netip.AddrPortFrom(netip.AddrFrom4(a.IP), a.Port)
}

// AddrPort drops FlowInfo; ScopeID is rendered as a numeric zone.
func (a Inet6) AddrPort() netip.AddrPort {
	ip := netip.AddrFrom16(a.IP)
	if a.ScopeID != 0 {
		ip = ip.WithZone(strconv.FormatUint(uint64(a.ScopeID), 10))
	}
	return netip.AddrPortFrom(ip, a.Port)
}

func (a Inet4) String() string { return a.AddrPort().String() }
func (a Inet6) String() string { return a.AddrPort().String() }

// Any4 is 0.0.0.0:port.
func Any4(port uint16) Inet4 { return Inet4{Port: port} }

// Loopback4 is 127.0.0.1:port.
func Loopback4(port uint16) Inet4 { return Inet4{IP: [4]byte{127, 0, 0, 1}, Port: port} }

// FromAddrPort converts ap. IPv4 and IPv4-mapped addresses become Inet4. A
// numeric zone becomes the ScopeID; named zones are resolved through the
// interface table.
func FromAddrPort(ap netip.AddrPort) (Addr, error) {
	if !ap.IsValid() {
		return nil, api.ErrInvalidArgument.WithContext("addr", ap.String())
	}
	ip := ap.Addr()
	if ip.Is4() || ip.Is4In6() {
		return Inet4{IP: ip.Unmap().As4(), Port: ap.Port()}, nil
	}
	a := Inet6{IP: ip.As16(), Port: ap.Port()}
	if zone := ip.Zone(); zone != "" {
		id, err := zoneToScopeID(zone)
		if err != nil {
			return nil, err
		}
		a.ScopeID = id
	}
	return a, nil
}

func zoneToScopeID(zone string) (uint32, error) {
	if n, err := strconv.ParseUint(zone, 10, 32); err == nil {
		return uint32(n), nil
	}
	ifi, err := net.InterfaceByName(zone)
	if err != nil {
		return 0, errors.Wrapf(err, "zone %q", zone)
	}
	return uint32(ifi.Index), nil
}

// Parse parses "host:port" with a literal IP host.
func Parse(s string) (Addr, error) {
	ap, err := netip.ParseAddrPort(s)
	if err != nil {
		return nil, api.ErrInvalidArgument.WithContext("addr", s)
	}
	return FromAddrPort(ap)
}

// MustParse is Parse that panics on error. Intended for constants and tests.
func MustParse(s string) Addr {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromNetAddr converts a *net.UDPAddr, *net.TCPAddr or *net.IPAddr.
func FromNetAddr(na net.Addr) (Addr, error) {
	var (
		ip   net.IP
		port int
		zone string
	)
	switch v := na.(type) {
	case *net.UDPAddr:
		ip, port, zone = v.IP, v.Port, v.Zone
	case *net.TCPAddr:
		ip, port, zone = v.IP, v.Port, v.Zone
	case *net.IPAddr:
		ip, zone = v.IP, v.Zone
	default:
		return nil, api.ErrInvalidArgument.WithContext("network", networkOf(na))
	}
	nip, ok := netip.AddrFromSlice(ip)
	if !ok || port < 0 || port > 0xffff {
		return nil, api.ErrInvalidArgument.WithContext("addr", na.String())
	}
	if zone != "" {
		nip = nip.WithZone(zone)
	}
	return FromAddrPort(netip.AddrPortFrom(nip, uint16(port)))
}

func networkOf(na net.Addr) string {
	if na == nil {
		return "<nil>"
	}
	return na.Network()
}

// UDPAddr converts a to a *net.UDPAddr.
func UDPAddr(a Addr) *net.UDPAddr {
	return net.UDPAddrFromAddrPort(a.AddrPort())
}

// TCPAddr converts a to a *net.TCPAddr.
func TCPAddr(a Addr) *net.TCPAddr {
	return net.TCPAddrFromAddrPort(a.AddrPort())
}
