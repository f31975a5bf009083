package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"clipflow/internal/api"
	"clipflow/internal/queue"
)

func newSLACommand(ctx *commandContext) *cobra.Command {
	var overdueOnly bool

	cmd := &cobra.Command{
		Use:   "sla",
		Short: "Report SLA status across the pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueueService(func(service *api.QueueService, worker string) error {
				entries, err := service.ListAll(cmd.Context(), worker)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				counts := map[string]int{}
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					if entry.Item.Stage == string(queue.StagePosted) {
						continue
					}
					counts[entry.SLAStatus]++
					if overdueOnly && entry.SLAStatus != "overdue" {
						continue
					}
					rows = append(rows, []string{
						strconv.FormatInt(entry.Item.ID, 10),
						entry.Item.Title,
						stageLabel(entry.Item.Stage),
						slaStatusLabel(entry.SLAStatus, colorize),
						entry.SLADeadlineAt,
						fmt.Sprintf("%.0fm", entry.AgeMinutesInStage),
					})
				}
				if len(rows) == 0 {
					if overdueOnly {
						fmt.Fprintln(out, "Nothing overdue")
					} else {
						fmt.Fprintln(out, "No active items")
					}
					return nil
				}

				table := renderTable(
					[]column{numCol("ID"), textCol("Title"), textCol("Stage"), textCol("SLA"), textCol("Deadline"), numCol("In Stage")},
					rows,
				)
				fmt.Fprintln(out, table)
				fmt.Fprintf(out, "on track %d, due soon %d, overdue %d\n",
					counts["on_track"], counts["due_soon"], counts["overdue"])
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&overdueOnly, "overdue", false, "Show only overdue items")
	return cmd
}
