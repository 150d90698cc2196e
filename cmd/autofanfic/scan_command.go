package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ArcCdr/AutomatedFanfic/internal/ipc"
)

func newScanCommand(ctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Trigger an immediate watch folder scan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ScanNow()
				if err != nil {
					return err
				}
				if resp == nil {
					return errors.New("missing scan response")
				}
				if !resp.Triggered {
					if resp.Message != "" {
						return errors.New(resp.Message)
					}
					return errors.New("scan not triggered; watcher is not running")
				}
				if resp.Message != "" {
					fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "Scan triggered")
				}
				return nil
			})
		},
	}
}
