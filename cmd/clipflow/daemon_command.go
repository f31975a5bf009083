package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"clipflow/internal/clock"
	"clipflow/internal/config"
	"clipflow/internal/daemon"
	"clipflow/internal/logging"
	"clipflow/internal/queue"
	"clipflow/internal/workflow"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the background reconciliation daemon",
	}

	daemonCmd.AddCommand(newDaemonRunCommand(ctx))
	return daemonCmd
}

func newDaemonRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the sweep loop in the foreground until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				logger, err := logging.NewFromConfig(cfg)
				if err != nil {
					return fmt.Errorf("configure logging: %w", err)
				}

				sweeper := workflow.NewSweeper(store, nil, cfg, clock.System, logger)
				d, err := daemon.New(cfg, store, logger, sweeper)
				if err != nil {
					return err
				}

				if err := d.Start(cmd.Context()); err != nil {
					return err
				}
				defer d.Stop()

				fmt.Fprintf(cmd.OutOrStdout(), "clipflow daemon running (db %s); press Ctrl-C to stop\n", cfg.DatabasePath())

				sigs := make(chan os.Signal, 1)
				signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
				defer signal.Stop(sigs)

				select {
				case <-cmd.Context().Done():
				case sig := <-sigs:
					logger.Info("shutdown signal received", logging.String("signal", sig.String()))
				}
				return nil
			})
		},
	}
}
