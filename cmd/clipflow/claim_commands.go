package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"clipflow/internal/api"
	"clipflow/internal/queue"
)

func parseItemID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid item id %q", arg)
	}
	return id, nil
}

func parseRoleFlag(value string) (queue.Role, error) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	role, ok := queue.ParseRole(value)
	if !ok {
		return "", fmt.Errorf("unknown role %q (want recorder, editor, or uploader)", value)
	}
	return role, nil
}

func newClaimCommand(ctx *commandContext) *cobra.Command {
	var roleFlag string

	cmd := &cobra.Command{
		Use:   "claim <id>",
		Short: "Take an exclusive claim on a work item",
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
			return ctx.withActions(func(actions *api.Actions, worker string) error {
				item, err := actions.Claim(cmd.Context(), id, worker, role)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Claimed #%d %q as %s (%s); expires %s\n",
					item.ID, item.Title, worker, item.ClaimRole, item.ClaimExpiresAt)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&roleFlag, "role", "r", "", "Role to claim as (defaults to the stage's required role)")
	return cmd
}

func newReleaseCommand(ctx *commandContext) *cobra.Command {
	var roleFlag string

	cmd := &cobra.Command{
		Use:   "release <id>",
		Short: "Release a claim back to the queue",
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
			return ctx.withActions(func(actions *api.Actions, worker string) error {
				if err := actions.Release(cmd.Context(), id, worker, role); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Released #%d\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&roleFlag, "role", "r", "", "Role the claim was held under")
	return cmd
}

func newExtendCommand(ctx *commandContext) *cobra.Command {
	var roleFlag string
	var ttlMinutes int

	cmd := &cobra.Command{
		Use:   "extend <id>",
		Short: "Push a claim deadline out (admin only)",
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
			return ctx.withActions(func(actions *api.Actions, worker string) error {
				if err := actions.Extend(cmd.Context(), id, worker, role, ttlMinutes); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Extended claim on #%d\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&roleFlag, "role", "r", "", "Role whose TTL applies when --ttl-minutes is not set")
	cmd.Flags().IntVar(&ttlMinutes, "ttl-minutes", 0, "New TTL in minutes (defaults to the role's configured TTL)")
	return cmd
}

func newReassignCommand(ctx *commandContext) *cobra.Command {
	var toWorker string
	var roleFlag string
	var notes string
	var ttlMinutes int

	cmd := &cobra.Command{
		Use:   "reassign <id>",
		Short: "Hand a claim to another worker (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			if strings.TrimSpace(toWorker) == "" {
				return fmt.Errorf("--to is required")
			}
			role, err := parseRoleFlag(roleFlag)
			if err != nil {
				return err
			}
			return ctx.withActions(func(actions *api.Actions, worker string) error {
				item, err := actions.Reassign(cmd.Context(), id, strings.TrimSpace(toWorker), role, ttlMinutes, notes, worker)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reassigned #%d %q to %s (%s); expires %s\n",
					item.ID, item.Title, item.ClaimedBy, item.ClaimRole, item.ClaimExpiresAt)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&toWorker, "to", "", "Worker id receiving the claim")
	cmd.Flags().StringVarP(&roleFlag, "role", "r", "", "Role for the new claim (defaults to the stage's required role)")
	cmd.Flags().StringVar(&notes, "notes", "", "Optional note recorded in the audit trail")
	cmd.Flags().IntVar(&ttlMinutes, "ttl-minutes", 0, "TTL in minutes for the new claim (defaults to the role's configured TTL)")
	return cmd
}

func newSweepCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Clear every expired claim now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withActions(func(actions *api.Actions, _ string) error {
				result, swept, err := actions.Sweep(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(result.SweptItemIDs) == 0 {
					fmt.Fprintln(out, "No expired claims")
					return nil
				}
				for _, claim := range swept {
					fmt.Fprintf(out, "Cleared #%d (was %s, stage %s)\n", claim.ItemID, claim.Worker, claim.Stage)
				}
				fmt.Fprintf(out, "Swept %d expired claim(s)\n", len(swept))
				return nil
			})
		},
	}
}
