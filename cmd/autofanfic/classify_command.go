package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ArcCdr/AutomatedFanfic/internal/sites"
)

func newClassifyCommand(ctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <url> [url...]",
		Short: "Classify story URLs without touching the watch folder",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(args))
			diverted := false
			for _, arg := range args {
				result, err := sites.Classify(arg)
				if err != nil {
					return err
				}
				rows = append(rows, []string{result.Site, sites.DisplayName(result.Site), result.NormalizedURL})
				if result.Site == sites.FanFictionNet {
					diverted = true
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Site", "Name", "Normalized URL"}, rows))

			cfg := ctx.configValue()
			if diverted && cfg != nil && cfg.Watcher.DisableFanfictionNet {
				fmt.Fprintln(out, "Note: fanfiction.net URLs are diverted to notifications by this configuration")
			}
			return nil
		},
	}
}
