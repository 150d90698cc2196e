package main

import (
	"github.com/spf13/cobra"

	"github.com/ArcCdr/AutomatedFanfic/internal/daemonrun"
)

// newDaemonRunCommand is the hidden foreground entrypoint `autofanfic start`
// launches; it is also handy for running under a process supervisor.
func newDaemonRunCommand(ctx *cliContext) *cobra.Command {
	var diagnostic bool
	cmd := &cobra.Command{
		Use:          "daemon",
		Short:        "Run the autofanfic daemon (internal)",
		Hidden:       true,
		Annotations:  map[string]string{"noConfigLoad": "true"},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return daemonrun.Run(cmd.Context(), daemonrun.Options{
				Diagnostic: diagnostic,
				ConfigPath: flagValue(ctx.configFlag),
				SocketPath: flagValue(ctx.socketFlag),
			})
		},
	}
	cmd.Flags().BoolVar(&diagnostic, "diagnostic", false, "Enable debug logging for this run")
	return cmd
}
