package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clipflow/internal/api"
	"clipflow/internal/queue"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title>",
		Short: "Add a new work item at the start of the pipeline",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			return ctx.withActions(func(actions *api.Actions, worker string) error {
				item, err := actions.AddItem(cmd.Context(), title, worker)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added #%d %q (%s)\n", item.ID, item.Title, stageLabel(item.Stage))
				return nil
			})
		},
	}
}

func newSetCommand(ctx *commandContext) *cobra.Command {
	var lockScript bool
	var deliverable string
	var caption string
	var platforms string

	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Update content fields checked by transitions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}

			var update api.ContentUpdate
			if cmd.Flags().Changed("lock-script") {
				update.ScriptLocked = &lockScript
			}
			if cmd.Flags().Changed("deliverable") {
				update.FinalDeliverableURL = &deliverable
			}
			if cmd.Flags().Changed("caption") {
				update.PostingCaption = &caption
			}
			if cmd.Flags().Changed("platforms") {
				update.PostingPlatforms = &platforms
			}
			if update == (api.ContentUpdate{}) {
				return fmt.Errorf("nothing to set: pass --lock-script, --deliverable, --caption, or --platforms")
			}

			return ctx.withActions(func(actions *api.Actions, _ string) error {
				item, err := actions.SetContent(cmd.Context(), id, update)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Updated #%d %q\n", item.ID, item.Title)
				fmt.Fprintf(out, "  script locked: %s\n", yesNo(item.ScriptLocked))
				if item.FinalDeliverable != "" {
					fmt.Fprintf(out, "  deliverable:   %s\n", item.FinalDeliverable)
				}
				if item.PostingCaption != "" {
					fmt.Fprintf(out, "  caption:       %s\n", item.PostingCaption)
				}
				if item.PostingPlatforms != "" {
					fmt.Fprintf(out, "  platforms:     %s\n", item.PostingPlatforms)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&lockScript, "lock-script", false, "Mark the script as locked")
	cmd.Flags().StringVar(&deliverable, "deliverable", "", "Final deliverable URL")
	cmd.Flags().StringVar(&caption, "caption", "", "Posting caption")
	cmd.Flags().StringVar(&platforms, "platforms", "", "Comma-separated posting platforms")
	return cmd
}

func newAdvanceCommand(ctx *commandContext) *cobra.Command {
	var roleFlag string

	cmd := &cobra.Command{
		Use:   "advance <id> [stage]",
		Short: "Move an item to its next stage",
		Long: "Move an item to the named stage, or along the happy path when no stage\n" +
			"is given. The transition is checked against the caller's role, claim, and\n" +
			"the stage's required fields.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			var target queue.Stage
			if len(args) == 2 {
				parsed, ok := queue.ParseStage(args[1])
				if !ok {
					return fmt.Errorf("unknown stage %q", args[1])
				}
				target = parsed
			}
			role, err := parseRoleFlag(roleFlag)
			if err != nil {
				return err
			}
			return ctx.withActions(func(actions *api.Actions, worker string) error {
				item, err := actions.Advance(cmd.Context(), id, target, worker, role)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Advanced #%d %q to %s\n", item.ID, item.Title, stageLabel(item.Stage))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&roleFlag, "role", "r", "", "Role to act as (defaults to the stage's required role)")
	return cmd
}

func newPriorityCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "priority <id> <normal|high|urgent>",
		Short: "Set the explicit priority override (admin only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			level, ok := queue.ParsePriorityLevel(args[1])
			if !ok {
				return fmt.Errorf("unknown priority %q (want normal, high, or urgent)", args[1])
			}
			return ctx.withActions(func(actions *api.Actions, worker string) error {
				if err := actions.SetPriority(cmd.Context(), id, level, worker); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Set #%d priority to %s\n", id, level)
				return nil
			})
		},
	}
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var roleFlag string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one item with its claim, SLA, and next action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			role, err := parseRoleFlag(roleFlag)
			if err != nil {
				return err
			}
			return ctx.withQueueService(func(service *api.QueueService, worker string) error {
				entry, err := service.Describe(cmd.Context(), id, worker, role)
				if err != nil {
					return err
				}
				printEntry(cmd, entry)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&roleFlag, "role", "r", "", "Role to evaluate the next action as")
	return cmd
}

func printEntry(cmd *cobra.Command, entry api.QueueEntry) {
	out := cmd.OutOrStdout()
	item := entry.Item

	fmt.Fprintf(out, "#%d %s\n", item.ID, item.Title)
	fmt.Fprintf(out, "  stage:      %s (%s lane)\n", stageLabel(item.Stage), item.Lane)
	fmt.Fprintf(out, "  priority:   %.0f (%s)\n", entry.PriorityScore, item.ExplicitPriority)
	fmt.Fprintf(out, "  sla:        %s", slaStatusLabel(entry.SLAStatus, shouldColorize(out)))
	if entry.SLADeadlineAt != "" {
		fmt.Fprintf(out, " (deadline %s)", entry.SLADeadlineAt)
	}
	fmt.Fprintln(out)

	switch {
	case entry.IsMine:
		fmt.Fprintf(out, "  claim:      yours until %s\n", item.ClaimExpiresAt)
	case item.ClaimedBy != "" && entry.IsLockedByOther:
		fmt.Fprintf(out, "  claim:      held by %s (%s) until %s\n", item.ClaimedBy, item.ClaimRole, item.ClaimExpiresAt)
	default:
		fmt.Fprintf(out, "  claim:      unclaimed\n")
	}

	if entry.NextAction != "" {
		fmt.Fprintf(out, "  next:       %s -> %s\n", entry.NextAction, stageLabel(entry.NextStage))
	}
	if entry.CanMoveNext {
		fmt.Fprintf(out, "  ready:      yes\n")
	} else if entry.BlockedReason != "" {
		fmt.Fprintf(out, "  blocked:    %s", strings.ReplaceAll(entry.BlockedReason, "_", " "))
		if len(entry.RequiredFields) > 0 {
			fmt.Fprintf(out, " (%s)", strings.Join(entry.RequiredFields, ", "))
		}
		fmt.Fprintln(out)
	}
}
