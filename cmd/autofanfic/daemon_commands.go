package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ArcCdr/AutomatedFanfic/internal/api"
	"github.com/ArcCdr/AutomatedFanfic/internal/daemonctl"
	"github.com/ArcCdr/AutomatedFanfic/internal/ipc"
	"github.com/ArcCdr/AutomatedFanfic/internal/queue"
)

const (
	stopTimeout  = 5 * time.Second
	startTimeout = 10 * time.Second
)

func newDaemonCommands(ctx *cliContext) []*cobra.Command {
	return []*cobra.Command{
		newStartCommand(ctx),
		newStopCommand(ctx),
		newRestartCommand(ctx),
		newStatusCommand(ctx),
	}
}

func newStartCommand(ctx *cliContext) *cobra.Command {
	var diagnostic bool
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the autofanfic daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			exe, err := daemonBinary()
			if err != nil {
				return err
			}
			result, err := daemonctl.EnsureStarted(ctx.socketPath(), exe, daemonLaunchOptions(ctx, diagnostic), startTimeout)
			if err != nil {
				return err
			}
			if result.Launched {
				fmt.Fprintln(w, "Launching daemon...")
			}
			switch result.State {
			case daemonctl.StartStateStarted:
				fmt.Fprintln(w, "Daemon started")
			case daemonctl.StartStateAlreadyRunning:
				fmt.Fprintln(w, "Daemon already running")
			case daemonctl.StartStateDegraded:
				fmt.Fprintln(w, degradedMessage(result.Message))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&diagnostic, "diagnostic", false, "Enable debug logging for the launched daemon")
	return cmd
}

func newStopCommand(ctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the autofanfic daemon (completely terminates the process)",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			result, err := daemonctl.StopAndTerminate(ctx.socketPath(), ctx.configValue(), stopTimeout)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(w, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if result.StopAcknowledged {
				fmt.Fprintln(w, "Stopping watcher pipeline...")
			} else {
				fmt.Fprintln(w, "Stop request sent")
			}
			reportStopped(w, result)
			return nil
		},
	}
}

func newRestartCommand(ctx *cliContext) *cobra.Command {
	var diagnostic bool
	cmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the autofanfic daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			exe, err := daemonBinary()
			if err != nil {
				return err
			}
			result, err := daemonctl.Restart(ctx.socketPath(), ctx.configValue(), exe, daemonLaunchOptions(ctx, diagnostic), stopTimeout, startTimeout)
			if err != nil {
				return err
			}
			if result.WasRunning {
				reportStopped(w, result.Stop)
			}
			if result.Start.State == daemonctl.StartStateDegraded {
				fmt.Fprintln(w, degradedMessage(result.Start.Message))
			} else {
				fmt.Fprintln(w, "Daemon restarted")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&diagnostic, "diagnostic", false, "Enable debug logging for the launched daemon")
	return cmd
}

func newStatusCommand(ctx *cliContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, watcher, and spool status",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := daemonctl.BuildStatusSnapshot(cmd.Context(), ctx.socketPath(), ctx.configValue())
			if err != nil {
				return err
			}
			if jsonOut {
				blob, err := json.MarshalIndent(resp, "", "  ")
				if err != nil {
					return fmt.Errorf("encode status: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(blob))
				return nil
			}

			w := cmd.OutOrStdout()
			colorize := shouldColorize(w)

			printChecks(w, "System Status", resp.SystemChecks, colorize)
			printChecks(w, "Paths", resp.PathChecks, colorize)

			printHeader(w, "Destination Queues", colorize)
			if resp.Running {
				rows := buildQueueRows(resp.Queues)
				if len(rows) == 0 {
					fmt.Fprintln(w, "No destination queues configured")
				} else {
					fmt.Fprintln(w, renderTable([]string{"Site", "Length", "Capacity"}, rows, 1, 2))
				}
				fmt.Fprintf(w, "Handed to spool: %d, dropped: %d\n", resp.Spooled, resp.Dropped)
			} else {
				fmt.Fprintln(w, "Inactive (daemon not running)")
			}
			fmt.Fprintln(w)

			printHeader(w, "Spool", colorize)
			statRows := buildSpoolStatRows(resp.SpoolStats)
			if len(statRows) == 0 {
				fmt.Fprintln(w, "Spool is empty")
			} else {
				fmt.Fprintln(w, renderTable([]string{"Status", "Count"}, statRows, 1))
			}
			if siteRows := buildSpoolSiteRows(resp.SpoolBySite); len(siteRows) > 0 {
				fmt.Fprintln(w, renderTable([]string{"Site", "Count"}, siteRows, 1))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit status as JSON")
	return cmd
}

func degradedMessage(message string) string {
	if strings.TrimSpace(message) != "" {
		return message
	}
	return "Daemon is up but degraded; check the logs"
}

func reportStopped(w io.Writer, result daemonctl.StopResult) {
	if result.ForcedKill && result.PID > 0 {
		fmt.Fprintf(w, "Stopping daemon process (pid %d)...\n", result.PID)
	}
	fmt.Fprintln(w, "Daemon stopped")
}

func printHeader(w io.Writer, title string, colorize bool) {
	for _, line := range renderSectionHeader(title, colorize) {
		fmt.Fprintln(w, line)
	}
}

func printChecks(w io.Writer, title string, lines []api.StatusLine, colorize bool) {
	printHeader(w, title, colorize)
	for _, line := range lines {
		fmt.Fprintln(w, renderStatusLine(line.Label, statusKindFromSeverity(line.Severity), line.Detail, colorize))
	}
	fmt.Fprintln(w)
}

func buildQueueRows(queues []ipc.QueueStatus) [][]string {
	rows := make([][]string, 0, len(queues))
	for _, q := range queues {
		rows = append(rows, []string{q.Site, strconv.Itoa(q.Length), strconv.Itoa(q.Capacity)})
	}
	return rows
}

func buildSpoolStatRows(stats map[string]int) [][]string {
	rows := make([][]string, 0, len(stats))
	total := 0
	for _, status := range queue.AllStatuses() {
		count := stats[string(status)]
		total += count
		if count == 0 {
			continue
		}
		rows = append(rows, []string{string(status), strconv.Itoa(count)})
	}
	if total == 0 {
		return nil
	}
	rows = append(rows, []string{"total", strconv.Itoa(total)})
	return rows
}

func buildSpoolSiteRows(bySite map[string]int) [][]string {
	sites := make([]string, 0, len(bySite))
	for site := range bySite {
		sites = append(sites, site)
	}
	sort.Strings(sites)
	rows := make([][]string, 0, len(sites))
	for _, site := range sites {
		rows = append(rows, []string{site, strconv.Itoa(bySite[site])})
	}
	return rows
}

func daemonBinary() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate daemon executable: %w", err)
	}
	return exe, nil
}

func daemonLaunchOptions(ctx *cliContext, diagnostic bool) daemonctl.LaunchOptions {
	return daemonctl.LaunchOptions{
		SocketPath: flagValue(ctx.socketFlag),
		ConfigPath: flagValue(ctx.configFlag),
		Diagnostic: diagnostic,
	}
}

func flagValue(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
