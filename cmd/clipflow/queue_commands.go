package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"clipflow/internal/api"
	"clipflow/internal/clock"
	"clipflow/internal/config"
	"clipflow/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect the work queue",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueStatusCommand(ctx))
	queueCmd.AddCommand(newQueueHealthCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var roleFlag string
	var allFlag bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the queue for a role, sorted by priority",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !allFlag && roleFlag == "" {
				return fmt.Errorf("pass --role recorder|editor|uploader, or --all for every stage")
			}
			return ctx.withQueueService(func(service *api.QueueService, worker string) error {
				var entries []api.QueueEntry
				var err error
				if allFlag {
					entries, err = service.ListAll(cmd.Context(), worker)
				} else {
					role, ok := queue.ParseRole(roleFlag)
					if !ok {
						return fmt.Errorf("unknown role %q", roleFlag)
					}
					entries, err = service.ForRole(cmd.Context(), role, worker)
				}
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "Queue is empty")
					return nil
				}

				colorize := shouldColorize(out)
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, []string{
						strconv.FormatInt(entry.Item.ID, 10),
						entry.Item.Title,
						stageLabel(entry.Item.Stage),
						availabilityLabel(entry.IsMine, entry.IsAvailable, entry.Item.ClaimedBy),
						slaStatusLabel(entry.SLAStatus, colorize),
						fmt.Sprintf("%.0f", entry.PriorityScore),
						entry.NextAction,
					})
				}
				table := renderTable(
					[]column{numCol("ID"), textCol("Title"), textCol("Stage"), textCol("Claim"), textCol("SLA"), numCol("Score"), textCol("Next")},
					rows,
				)
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&roleFlag, "role", "r", "", "Role queue to list")
	cmd.Flags().BoolVarP(&allFlag, "all", "a", false, "List items in every stage")
	return cmd
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show per-stage item counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueueService(func(service *api.QueueService, _ string) error {
				stats, err := service.Stats(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()

				total := 0
				rows := make([][]string, 0, len(stats.Counts))
				for _, stage := range queue.AllStages() {
					count, ok := stats.Counts[string(stage)]
					if !ok || count == 0 {
						continue
					}
					total += count
					rows = append(rows, []string{stageLabel(string(stage)), strconv.Itoa(count)})
				}
				if total == 0 {
					fmt.Fprintln(out, "Queue is empty")
					return nil
				}
				rows = append(rows, []string{"Total", strconv.Itoa(total)})
				table := renderTable([]column{textCol("Stage"), numCol("Count")}, rows)
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}
}

func newQueueHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show queue lifecycle counts and database diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				out := cmd.OutOrStdout()

				summary, err := store.Health(cmd.Context(), clock.System.Now())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Items:      %d total\n", summary.Total)
				fmt.Fprintf(out, "Claimable:  %d\n", summary.Claimable)
				fmt.Fprintf(out, "Claimed:    %d\n", summary.Claimed)
				fmt.Fprintf(out, "Waiting:    %d\n", summary.Waiting)
				fmt.Fprintf(out, "Posted:     %d\n", summary.Posted)

				health, err := store.CheckHealth(cmd.Context())
				if err != nil {
					return fmt.Errorf("database diagnostics: %w", err)
				}
				fmt.Fprintf(out, "Database:   %s\n", health.DBPath)
				fmt.Fprintf(out, "  readable:  %s\n", yesNo(health.DatabaseReadable))
				fmt.Fprintf(out, "  schema:    %s\n", yesNo(health.TableExists && len(health.MissingColumns) == 0))
				fmt.Fprintf(out, "  integrity: %s\n", yesNo(health.IntegrityCheck))
				if health.Error != "" {
					fmt.Fprintf(out, "  error:     %s\n", health.Error)
				}
				return nil
			})
		},
	}
}
