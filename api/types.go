// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared portable socket types and constants.

package api

import "fmt"

// Handle is a native socket descriptor: an fd on POSIX, a SOCKET on Windows.
type Handle uintptr

// InvalidHandle is never returned for an open socket.
const InvalidHandle = ^Handle(0)

// Family is a portable address family. Backends map it to the native value.
type Family int

const (
	FamilyUnspec Family = iota
	FamilyIPv4
	FamilyIPv6
)

func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPv6:
		return "ipv6"
	case FamilyUnspec:
		return "unspec"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// Type is the socket type. Values match both BSD sockets and Winsock.
type Type int

const (
	TypeStream    Type = 1
	TypeDgram     Type = 2
	TypeRaw       Type = 3
	TypeSeqPacket Type = 5
)

func (t Type) String() string {
	switch t {
	case TypeStream:
		return "stream"
	case TypeDgram:
		return "dgram"
	case TypeRaw:
		return "raw"
	case TypeSeqPacket:
		return "seqpacket"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Protocol is an IANA protocol number, passed to the OS unchanged.
type Protocol int

const (
	ProtoDefault Protocol = 0
	ProtoICMP    Protocol = 1
	ProtoTCP     Protocol = 6
	ProtoUDP     Protocol = 17
	ProtoICMPv6  Protocol = 58
)

// ShutdownHow selects the direction(s) closed by Shutdown.
type ShutdownHow int

const (
	// ShutdownRead stops any further receives.
	ShutdownRead ShutdownHow = 0
	// ShutdownWrite stops any further sends.
	ShutdownWrite ShutdownHow = 1
	// ShutdownBoth stops both sends and receives.
	ShutdownBoth ShutdownHow = 2
)

func (h ShutdownHow) String() string {
	switch h {
	case ShutdownRead:
		return "read"
	case ShutdownWrite:
		return "write"
	case ShutdownBoth:
		return "both"
	default:
		return fmt.Sprintf("shutdown(%d)", int(h))
	}
}

// Timeval is a portable seconds + microseconds interval.
type Timeval struct {
	Sec  int64
	Usec int64
}

// Nanoseconds returns the interval in nanoseconds.
func (tv Timeval) Nanoseconds() int64 {
	return tv.Sec*1e9 + tv.Usec*1e3
}
