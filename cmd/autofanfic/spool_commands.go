package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ArcCdr/AutomatedFanfic/internal/api"
	"github.com/ArcCdr/AutomatedFanfic/internal/ipc"
	"github.com/ArcCdr/AutomatedFanfic/internal/queue"
)

func newSpoolCommand(ctx *cliContext) *cobra.Command {
	spoolCmd := &cobra.Command{
		Use:   "spool",
		Short: "Inspect and manage the durable spool",
	}

	spoolCmd.AddCommand(newSpoolStatusCommand(ctx))
	spoolCmd.AddCommand(newSpoolListCommand(ctx))
	spoolCmd.AddCommand(newSpoolClearCommand(ctx))
	spoolCmd.AddCommand(newSpoolRetryCommand(ctx))
	spoolCmd.AddCommand(newSpoolVerifyCommand(ctx))

	return spoolCmd
}

func newSpoolStatusCommand(ctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show spool status summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSpool(func(client *ipc.Client, store *queue.Store) error {
				stats := make(map[string]int, 3)
				if client != nil {
					resp, err := client.SpoolHealth()
					if err != nil {
						return err
					}
					stats[string(queue.StatusPending)] = resp.Pending
					stats[string(queue.StatusCompleted)] = resp.Completed
					stats[string(queue.StatusFailed)] = resp.Failed
				} else {
					health, err := store.Health(cmd.Context())
					if err != nil {
						return err
					}
					stats[string(queue.StatusPending)] = health.Pending
					stats[string(queue.StatusCompleted)] = health.Completed
					stats[string(queue.StatusFailed)] = health.Failed
				}

				rows := buildSpoolStatRows(stats)
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Spool is empty")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Status", "Count"}, rows, 1))
				return nil
			})
		},
	}
}

func newSpoolListCommand(ctx *cliContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List spooled stories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSpool(func(client *ipc.Client, store *queue.Store) error {
				var entries []api.SpoolEntry
				if client != nil {
					resp, err := client.SpoolList(listStatuses)
					if err != nil {
						return err
					}
					entries = resp.Items
				} else {
					statuses, err := parseSpoolStatuses(listStatuses)
					if err != nil {
						return err
					}
					items, listErr := store.List(cmd.Context(), statuses...)
					if listErr != nil {
						return listErr
					}
					entries = api.FromSpoolItems(items)
				}

				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Spool is empty")
					return nil
				}
				entries = api.SortSpoolEntriesNewestFirst(entries)
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, []string{
						strconv.FormatInt(entry.ID, 10),
						entry.URL,
						entry.Site,
						entry.Status,
						entry.CreatedAt,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "URL", "Site", "Status", "Created"}, rows, 0))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by spool status (repeatable)")
	return cmd
}

func parseSpoolStatuses(values []string) ([]queue.Status, error) {
	statuses := make([]queue.Status, 0, len(values))
	for _, value := range values {
		parsed, ok := queue.ParseStatus(value)
		if !ok {
			return nil, fmt.Errorf("unknown spool status %q", value)
		}
		statuses = append(statuses, parsed)
	}
	return statuses, nil
}

func newSpoolClearCommand(ctx *cliContext) *cobra.Command {
	var clearCompleted bool
	var clearFailed bool
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove spool entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := 0
			for _, set := range []bool{clearCompleted, clearFailed, clearAll} {
				if set {
					flags++
				}
			}
			if flags > 1 {
				return errors.New("specify only one of --completed, --failed, or --all")
			}

			return ctx.withSpool(func(client *ipc.Client, store *queue.Store) error {
				var (
					removed int64
					err     error
					label   string
				)
				switch {
				case clearCompleted:
					label = "completed items"
					if client != nil {
						var resp *ipc.SpoolClearResponse
						resp, err = client.SpoolClear(ipc.ClearScopeCompleted)
						if resp != nil {
							removed = resp.Removed
						}
					} else {
						removed, err = store.ClearCompleted(cmd.Context())
					}
				case clearFailed:
					label = "failed items"
					if client != nil {
						var resp *ipc.SpoolClearResponse
						resp, err = client.SpoolClear(ipc.ClearScopeFailed)
						if resp != nil {
							removed = resp.Removed
						}
					} else {
						removed, err = store.ClearFailed(cmd.Context())
					}
				default:
					label = "spool items"
					if client != nil {
						var resp *ipc.SpoolClearResponse
						resp, err = client.SpoolClear(ipc.ClearScopeAll)
						if resp != nil {
							removed = resp.Removed
						}
					} else {
						removed, err = store.Clear(cmd.Context())
					}
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d %s\n", removed, label)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clearCompleted, "completed", false, "Remove only completed entries")
	cmd.Flags().BoolVar(&clearFailed, "failed", false, "Remove only failed entries")
	cmd.Flags().BoolVar(&clearAll, "all", false, "Remove every entry (default)")
	return cmd
}

func newSpoolRetryCommand(ctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [id...]",
		Short: "Return failed spool entries to pending",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}

			return ctx.withSpool(func(client *ipc.Client, store *queue.Store) error {
				out := cmd.OutOrStdout()
				if len(ids) == 0 {
					var updated int64
					if client != nil {
						resp, retryErr := client.SpoolRetry(nil)
						if retryErr != nil {
							return retryErr
						}
						updated = resp.Updated
					} else {
						var retryErr error
						updated, retryErr = store.RetryFailed(cmd.Context())
						if retryErr != nil {
							return retryErr
						}
					}
					fmt.Fprintf(out, "Retried %d failed items\n", updated)
					return nil
				}

				actions := spoolActions(client, store)
				result, retryErr := api.RetryFailedByID(cmd.Context(), actions, ids)
				if retryErr != nil {
					return retryErr
				}
				printSpoolRetryResult(out, result)
				return nil
			})
		},
	}
}

// spoolActions adapts whichever backend withSpool handed us to the
// api.SpoolActionService the retry workflow expects.
func spoolActions(client *ipc.Client, store *queue.Store) api.SpoolActionService {
	if client != nil {
		return ipcSpoolActions{client: client}
	}
	return storeSpoolActions{store: store, reader: api.NewSpoolService(store)}
}

type ipcSpoolActions struct {
	client *ipc.Client
}

func (a ipcSpoolActions) Describe(_ context.Context, id int64) (*api.SpoolEntry, error) {
	resp, err := a.client.SpoolList(nil)
	if err != nil {
		return nil, err
	}
	for i := range resp.Items {
		if resp.Items[i].ID == id {
			return &resp.Items[i], nil
		}
	}
	return nil, nil
}

func (a ipcSpoolActions) Retry(_ context.Context, ids []int64) (int64, error) {
	resp, err := a.client.SpoolRetry(ids)
	if err != nil {
		return 0, err
	}
	return resp.Updated, nil
}

type storeSpoolActions struct {
	store  *queue.Store
	reader *api.SpoolService
}

func (a storeSpoolActions) Describe(ctx context.Context, id int64) (*api.SpoolEntry, error) {
	return a.reader.Describe(ctx, id)
}

func (a storeSpoolActions) Retry(ctx context.Context, ids []int64) (int64, error) {
	return a.store.RetryFailed(ctx, ids...)
}

func printSpoolRetryResult(out io.Writer, result api.RetryResult) {
	for _, entry := range result.Entries {
		switch entry.Outcome {
		case api.RetryNotFound:
			fmt.Fprintf(out, "Item %d not found\n", entry.ID)
		case api.RetryNotFailed:
			fmt.Fprintf(out, "Item %d is not in failed state\n", entry.ID)
		case api.RetryUpdated:
			fmt.Fprintf(out, "Item %d reset for retry\n", entry.ID)
		}
	}
}

func parsePositiveIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid item id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func newSpoolVerifyCommand(ctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify spool database integrity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSpool(func(client *ipc.Client, store *queue.Store) error {
				var health ipc.DatabaseHealthResponse
				if client != nil {
					resp, err := client.DatabaseHealth()
					if err != nil {
						return err
					}
					health = *resp
				} else {
					checked, err := store.CheckHealth(cmd.Context())
					if err != nil {
						return err
					}
					health = ipc.DatabaseHealthResponse{
						DBPath:           checked.DBPath,
						DatabaseExists:   checked.DatabaseExists,
						DatabaseReadable: checked.DatabaseReadable,
						TableExists:      checked.TableExists,
						ColumnsPresent:   checked.ColumnsPresent,
						MissingColumns:   checked.MissingColumns,
						IntegrityCheck:   checked.IntegrityCheck,
						TotalItems:       checked.TotalItems,
						Error:            checked.Error,
					}
				}
				printSpoolVerify(cmd.OutOrStdout(), health)
				return nil
			})
		},
	}
}

func printSpoolVerify(out io.Writer, health ipc.DatabaseHealthResponse) {
	colorize := shouldColorize(out)

	switch {
	case !health.DatabaseExists:
		fmt.Fprintln(out, renderStatusLine("Database", statusWarn, fmt.Sprintf("missing (%s); created on first daemon run", health.DBPath), colorize))
	case !health.DatabaseReadable:
		fmt.Fprintln(out, renderStatusLine("Database", statusError, fmt.Sprintf("not readable (%s)", health.DBPath), colorize))
	default:
		fmt.Fprintln(out, renderStatusLine("Database", statusOK, health.DBPath, colorize))
	}
	if !health.DatabaseExists {
		return
	}

	switch {
	case !health.TableExists:
		fmt.Fprintln(out, renderStatusLine("Schema", statusError, "spool table missing", colorize))
	case len(health.MissingColumns) > 0:
		fmt.Fprintln(out, renderStatusLine("Schema", statusError, "missing columns: "+strings.Join(health.MissingColumns, ", "), colorize))
	default:
		fmt.Fprintln(out, renderStatusLine("Schema", statusOK, fmt.Sprintf("%d columns present", len(health.ColumnsPresent)), colorize))
	}

	if health.IntegrityCheck {
		fmt.Fprintln(out, renderStatusLine("Integrity", statusOK, "check passed", colorize))
	} else {
		fmt.Fprintln(out, renderStatusLine("Integrity", statusError, "check failed", colorize))
	}

	fmt.Fprintln(out, renderStatusLine("Items", statusInfo, strconv.Itoa(health.TotalItems)+" total", colorize))

	if strings.TrimSpace(health.Error) != "" {
		fmt.Fprintln(out, renderStatusLine("Last error", statusError, health.Error, colorize))
	}
}
