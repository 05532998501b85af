// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Typed configuration for the rawsock tooling with defaults and validation.

package control

import (
	"net/netip"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Config drives the CLI scenarios. The library itself reads only Backlog and
// SelectTimeout through the callers that pass them in.
type Config struct {
	// Backlog is passed to listen.
	Backlog int
	// SelectTimeout bounds readiness waits. Negative means wait forever.
	SelectTimeout time.Duration
	// LogLevel is a logrus level name.
	LogLevel string

	UDPServer string
	UDPClient string
	TCPServer string
	TCPClient string
}

// DefaultConfig returns the configuration used when no flags are given.
func DefaultConfig() Config {
	return Config{
		Backlog:       128,
		SelectTimeout: time.Second,
		LogLevel:      "info",
		UDPServer:     "127.0.0.1:1666",
		UDPClient:     "127.0.0.1:5666",
		TCPServer:     "127.0.0.1:60000",
		TCPClient:     "127.0.0.1:65003",
	}
}

// Validate checks every field and reports the first problem found.
func (c Config) Validate() error {
	if c.Backlog <= 0 {
		return errors.Errorf("backlog must be positive, got %d", c.Backlog)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "log level")
	}
	for _, f := range []struct{ name, addr string }{
		{"udp server", c.UDPServer},
		{"udp client", c.UDPClient},
		{"tcp server", c.TCPServer},
		{"tcp client", c.TCPClient},
	} {
		if _, err := netip.ParseAddrPort(f.addr); err != nil {
			return errors.Wrapf(err, "%s address", f.name)
		}
	}
	return nil
}

// TimeoutMs converts SelectTimeout to the millisecond form taken by the
// multiplexer, where -1 means no timeout.
func (c Config) TimeoutMs() int {
	if c.SelectTimeout < 0 {
		return -1
	}
	return int(c.SelectTimeout / time.Millisecond)
}
