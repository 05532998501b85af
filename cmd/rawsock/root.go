// File: cmd/rawsock/root.go
// Author: momentics <momentics@gmail.com>

package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/momentics/rawsock/control"
)

func newRootCommand() *cobra.Command {
	cfg := control.DefaultConfig()

	cmd := &cobra.Command{
		Use:           "rawsock",
		Short:         "Exercise native sockets through the rawsock library",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			level, _ := logrus.ParseLevel(cfg.LogLevel)
			logrus.SetLevel(level)
			logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			return nil
		},
	}
	installConfigFlags(&cfg, cmd.PersistentFlags())

	cmd.AddCommand(
		newProbeCommand(),
		newUDPCommand(&cfg),
		newTCPCommand(&cfg),
		newWaitCommand(&cfg),
		newInfoCommand(),
	)
	return cmd
}

func installConfigFlags(cfg *control.Config, flags *pflag.FlagSet) {
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (trace, debug, info, warn, error)")
	flags.IntVar(&cfg.Backlog, "backlog", cfg.Backlog, "Listen backlog")
	flags.DurationVar(&cfg.SelectTimeout, "timeout", cfg.SelectTimeout, "Readiness wait timeout, negative to wait forever")
}
