// File: cmd/rawsock/info.go
// Author: momentics <momentics@gmail.com>

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/momentics/rawsock/control"
	"github.com/momentics/rawsock/internal/backend"
)

func newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print debug probes and the metrics snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dp := control.NewDefaultProbes(backend.Default(), control.DefaultMetrics)
			state := dp.DumpState()
			for _, name := range dp.Names() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %v\n", name, state[name])
			}
			return nil
		},
	}
}
