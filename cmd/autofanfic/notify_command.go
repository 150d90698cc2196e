package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ArcCdr/AutomatedFanfic/internal/ipc"
	"github.com/ArcCdr/AutomatedFanfic/internal/notifications"
)

func newNotifyCommand(ctx *cliContext) *cobra.Command {
	notifyCmd := &cobra.Command{
		Use:   "notify",
		Short: "Notification utilities",
	}
	notifyCmd.AddCommand(newNotifyTestCommand(ctx))
	return notifyCmd
}

func newNotifyTestCommand(ctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Push a test message through the configured notifiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			socket := ctx.socketPath()
			client, dialErr := ipc.Dial(socket)
			if dialErr == nil {
				defer client.Close()
				resp, err := client.TestNotification()
				if err != nil {
					if resp != nil && resp.Message != "" {
						fmt.Fprintln(out, resp.Message)
					}
					return err
				}
				if resp == nil {
					return errors.New("empty reply from daemon")
				}
				switch {
				case resp.Message != "":
					fmt.Fprintln(out, resp.Message)
				case resp.Sent:
					fmt.Fprintln(out, "Test notification sent")
				default:
					fmt.Fprintln(out, "Notification not sent")
				}
				return nil
			}
			if !daemonUnreachable(dialErr) {
				return wrapDialError(socket, dialErr)
			}

			// Daemon offline; send directly with the configured backends.
			cfg, cfgErr := ctx.ensureConfig()
			if cfgErr != nil {
				return cfgErr
			}
			service := notifications.NewService(cfg)
			if err := service.TestNotification(cmd.Context()); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			fmt.Fprintln(out, "Test notification sent")
			return nil
		},
	}
}
