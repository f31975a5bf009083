package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var workerFlag string

	ctx := newCommandContext(&configFlag, &workerFlag)

	rootCmd := &cobra.Command{
		Use:           "clipflow",
		Short:         "Clipflow work queue CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&workerFlag, "worker", "w", "", "Worker id acting on the queue (defaults to config/env)")

	rootCmd.AddCommand(newAddCommand(ctx))
	rootCmd.AddCommand(newClaimCommand(ctx))
	rootCmd.AddCommand(newReleaseCommand(ctx))
	rootCmd.AddCommand(newExtendCommand(ctx))
	rootCmd.AddCommand(newReassignCommand(ctx))
	rootCmd.AddCommand(newAdvanceCommand(ctx))
	rootCmd.AddCommand(newSetCommand(ctx))
	rootCmd.AddCommand(newPriorityCommand(ctx))
	rootCmd.AddCommand(newSweepCommand(ctx))
	rootCmd.AddCommand(newQueueCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newSLACommand(ctx))
	rootCmd.AddCommand(newAuditCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newDaemonCommand(ctx))
	rootCmd.AddCommand(newTestNotifyCommand(ctx))

	return rootCmd
}
