package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"clipflow/internal/api"
	"clipflow/internal/audit"
	"clipflow/internal/bus"
	"clipflow/internal/clock"
	"clipflow/internal/config"
	"clipflow/internal/logging"
	"clipflow/internal/queue"
)

type commandContext struct {
	configFlag *string
	workerFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, workerFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		workerFlag: workerFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// worker resolves the acting worker id: the --worker flag wins, then the
// configured default (which itself honors CLIPFLOW_WORKER).
func (c *commandContext) worker() (string, error) {
	if c.workerFlag != nil {
		if w := strings.TrimSpace(*c.workerFlag); w != "" {
			return w, nil
		}
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	if w := strings.TrimSpace(cfg.Workers.DefaultWorker); w != "" {
		return w, nil
	}
	return "", errors.New("no worker id: pass --worker, set workers.default_worker, or export CLIPFLOW_WORKER")
}

// withStore opens the queue store, wires the audit publisher when NATS is
// configured, and guarantees cleanup.
func (c *commandContext) withStore(fn func(*config.Config, *queue.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	store, err := queue.Open(cfg)
	if err != nil {
		return fmt.Errorf("open queue store: %w", err)
	}
	defer store.Close()

	if url := strings.TrimSpace(cfg.Audit.NATSURL); url != "" {
		client, err := bus.Connect(url)
		if err != nil {
			// Audit publishing is best-effort; the queue still works without it.
			fmt.Fprintf(os.Stderr, "warning: audit bus unavailable: %v\n", err)
		} else {
			defer client.Close()
			store.SetAuditPublisher(audit.NewNATSPublisher(client, cfg.Audit.NATSSubject))
		}
	}

	return fn(cfg, store)
}

func (c *commandContext) withActions(fn func(*api.Actions, string) error) error {
	return c.withStore(func(cfg *config.Config, store *queue.Store) error {
		worker, err := c.worker()
		if err != nil {
			return err
		}
		return fn(api.NewActions(store, cfg, nil, clock.System, c.cliLogger(cfg)), worker)
	})
}

func (c *commandContext) withQueueService(fn func(*api.QueueService, string) error) error {
	return c.withStore(func(cfg *config.Config, store *queue.Store) error {
		worker, err := c.worker()
		if err != nil {
			return err
		}
		return fn(api.NewQueueService(store, cfg, clock.System), worker)
	})
}

func (c *commandContext) cliLogger(cfg *config.Config) *slog.Logger {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
