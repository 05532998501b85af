// File: sockaddr/layout.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Native sockaddr layouts and the codec between them and Addr.
//
// Offsets shared by Linux and Windows:
//
//	sockaddr_in:  family[0:2] port[2:4] addr[4:8]  zero[8:16]
//	sockaddr_in6: family[0:2] port[2:4] flow[4:8]  addr[8:24] scope[24:28]
//
// The port is always big-endian. Family, flow info and scope id are host-order
// fields and are copied without conversion.

package sockaddr

import (
	"encoding/binary"

	"github.com/momentics/rawsock/api"
)

// StorageSize is the capacity of sockaddr_storage on every supported platform.
const StorageSize = 128

const (
	sizeofFamily     = 2
	SizeofInet4      = 16
	SizeofInet6      = 28
	offPort          = 2
	offInet4Addr     = 4
	offInet6FlowInfo = 4
	offInet6Addr     = 8
	offInet6ScopeID  = 24
)

// Storage is a zeroed sockaddr_storage used as an OS out-parameter.
type Storage [StorageSize]byte

// Layout describes one platform's native address structures.
type Layout struct {
	Name        string
	FamilyInet4 uint16
	FamilyInet6 uint16
	// Order is the host byte order of family, flow info and scope id.
	Order binary.ByteOrder
}

var (
	// Linux is the glibc/kernel layout.
	Linux = Layout{Name: "linux", FamilyInet4: 2, FamilyInet6: 10, Order: binary.NativeEndian}
	// Windows is the Winsock layout.
	Windows = Layout{Name: "windows", FamilyInet4: 2, FamilyInet6: 23, Order: binary.NativeEndian}
)

// WithOrder returns l with the host byte order replaced.
func (l Layout) WithOrder(order binary.ByteOrder) Layout {
	l.Order = order
	return l
}

// Encode returns the native structure for a, sized exactly to it.
func (l Layout) Encode(a Addr) ([]byte, error) {
	switch v := a.(type) {
	case Inet4:
		b := make([]byte, SizeofInet4)
		l.Order.PutUint16(b[0:sizeofFamily], l.FamilyInet4)
		binary.BigEndian.PutUint16(b[offPort:], v.Port)
		copy(b[offInet4Addr:offInet4Addr+4], v.IP[:])
		return b, nil
	case Inet6:
		b := make([]byte, SizeofInet6)
		l.Order.PutUint16(b[0:sizeofFamily], l.FamilyInet6)
		binary.BigEndian.PutUint16(b[offPort:], v.Port)
		l.Order.PutUint32(b[offInet6FlowInfo:], v.FlowInfo)
		copy(b[offInet6Addr:offInet6Addr+16], v.IP[:])
		l.Order.PutUint32(b[offInet6ScopeID:], v.ScopeID)
		return b, nil
	case nil:
		return nil, api.ErrInvalidArgument.WithContext("addr", "<nil>")
	default:
		return nil, api.ErrInvalidAddrFamily.WithContext("addr", a.String())
	}
}

// Decode reads the address in buf[:n], where n is the length reported by the OS.
func (l Layout) Decode(buf []byte, n int) (Addr, error) {
	if n < sizeofFamily || n > len(buf) {
		return nil, api.ErrShortAddress.WithContext("len", n)
	}
	switch fam := l.Order.Uint16(buf[0:sizeofFamily]); fam {
	case l.FamilyInet4:
		if n < SizeofInet4 {
			return nil, api.ErrShortAddress.WithContext("len", n).WithContext("want", SizeofInet4)
		}
		var a Inet4
		a.Port = binary.BigEndian.Uint16(buf[offPort:])
		copy(a.IP[:], buf[offInet4Addr:offInet4Addr+4])
		return a, nil
	case l.FamilyInet6:
		if n < SizeofInet6 {
			return nil, api.ErrShortAddress.WithContext("len", n).WithContext("want", SizeofInet6)
		}
		var a Inet6
		a.Port = binary.BigEndian.Uint16(buf[offPort:])
		a.FlowInfo = l.Order.Uint32(buf[offInet6FlowInfo:])
		copy(a.IP[:], buf[offInet6Addr:offInet6Addr+16])
		a.ScopeID = l.Order.Uint32(buf[offInet6ScopeID:])
		return a, nil
	default:
		return nil, api.ErrInvalidAddrFamily.WithContext("family", fam)
	}
}

// DecodeStorage decodes the first n bytes of s.
func (l Layout) DecodeStorage(s *Storage, n int) (Addr, error) {
	return l.Decode(s[:], n)
}

// NativeFamily maps f to the layout's family tag.
func (l Layout) NativeFamily(f api.Family) (uint16, error) {
	switch f {
	case api.FamilyIPv4:
		return l.FamilyInet4, nil
	case api.FamilyIPv6:
		return l.FamilyInet6, nil
	default:
		return 0, api.ErrInvalidAddrFamily.WithContext("family", f.String())
	}
}
