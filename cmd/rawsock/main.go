// File: cmd/rawsock/main.go
// Package main
// Command-line driver for the rawsock library: probes, loopback round trips
// and readiness waits against the host backend.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "rawsock: %v\n", err)
		os.Exit(1)
	}
}
