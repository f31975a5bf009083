package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"clipflow/internal/api"
)

func newAuditCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "audit <id>",
		Short: "Show the audit trail for an item, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			return ctx.withQueueService(func(service *api.QueueService, _ string) error {
				events, err := service.AuditTrail(cmd.Context(), id, limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(events) == 0 {
					fmt.Fprintf(out, "No audit events for #%d\n", id)
					return nil
				}

				rows := make([][]string, 0, len(events))
				for _, event := range events {
					transition := ""
					if event.FromStage != "" || event.ToStage != "" {
						transition = fmt.Sprintf("%s -> %s", event.FromStage, event.ToStage)
					}
					rows = append(rows, []string{
						strconv.FormatInt(event.ID, 10),
						event.CreatedAt,
						event.EventType,
						event.Actor,
						transition,
						event.Details,
					})
				}
				table := renderTable(
					[]column{numCol("Seq"), textCol("At"), textCol("Event"), textCol("Actor"), textCol("Transition"), textCol("Details")},
					rows,
				)
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum events to show")
	return cmd
}
