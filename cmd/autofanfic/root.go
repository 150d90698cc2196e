package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var socketFlag, configFlag string

	ctx := newCLIContext(&socketFlag, &configFlag)

	root := &cobra.Command{
		Use:           "autofanfic",
		Short:         "Watch a folder for story URLs and route them to download queues",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Commands annotated noConfigLoad work on installs with no
			// config file yet.
			if skipsConfigLoad(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&socketFlag, "socket", "", "Path to the autofanfic daemon socket")
	root.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Path to the configuration file")

	subcommands := newDaemonCommands(ctx)
	subcommands = append(subcommands,
		newDaemonRunCommand(ctx),
		newScanCommand(ctx),
		newSpoolCommand(ctx),
		newClassifyCommand(ctx),
		newNotifyCommand(ctx),
		newConfigCommand(ctx),
		newLogsCommand(ctx),
		newVersionCommand(),
	)
	root.AddCommand(subcommands...)

	return root
}
