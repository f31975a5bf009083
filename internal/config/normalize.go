package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeWorkers()
	c.normalizeNotifications()
	c.normalizeAudit()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeWorkers() {
	c.Workers.DefaultWorker = strings.TrimSpace(c.Workers.DefaultWorker)
	if c.Workers.DefaultWorker == "" {
		c.Workers.DefaultWorker = strings.TrimSpace(os.Getenv("CLIPFLOW_WORKER"))
	}
	admins := c.Workers.Admins[:0]
	for _, admin := range c.Workers.Admins {
		if trimmed := strings.TrimSpace(admin); trimmed != "" {
			admins = append(admins, trimmed)
		}
	}
	c.Workers.Admins = admins
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		c.Notifications.NtfyTopic = strings.TrimSpace(os.Getenv("CLIPFLOW_NTFY_TOPIC"))
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeAudit() {
	c.Audit.NATSURL = strings.TrimSpace(c.Audit.NATSURL)
	if c.Audit.NATSURL == "" {
		c.Audit.NATSURL = strings.TrimSpace(os.Getenv("CLIPFLOW_NATS_URL"))
	}
	c.Audit.NATSSubject = strings.TrimSpace(c.Audit.NATSSubject)
	if c.Audit.NATSSubject == "" {
		c.Audit.NATSSubject = defaultAuditNATSSubject
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
