package config

import (
	"errors"
	"fmt"
)

var knownStages = []string{
	"generating_script",
	"needs_script",
	"not_recorded",
	"recorded",
	"ready_to_post",
	"posted",
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateClaims(); err != nil {
		return err
	}
	if err := c.validateSLA(); err != nil {
		return err
	}
	if err := c.validatePriority(); err != nil {
		return err
	}
	if err := c.validateSweep(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateClaims() error {
	if c.Claims.DefaultTTLMinutes <= 0 {
		return errors.New("claims.default_ttl_minutes must be positive")
	}
	for name, minutes := range map[string]int{
		"claims.recorder_ttl_minutes": c.Claims.RecorderTTLMinutes,
		"claims.editor_ttl_minutes":   c.Claims.EditorTTLMinutes,
		"claims.uploader_ttl_minutes": c.Claims.UploaderTTLMinutes,
	} {
		if minutes < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}

func (c *Config) validateSLA() error {
	if c.SLA.WarnWindowMinutes < 0 {
		return errors.New("sla.warn_window_minutes must not be negative")
	}
	known := make(map[string]struct{}, len(knownStages))
	for _, stage := range knownStages {
		known[stage] = struct{}{}
	}
	for stage, hours := range c.SLA.StageHours {
		if _, ok := known[stage]; !ok {
			return fmt.Errorf("sla.stage_hours: unknown stage %q", stage)
		}
		if hours <= 0 {
			return fmt.Errorf("sla.stage_hours[%s] must be positive", stage)
		}
	}
	return nil
}

func (c *Config) validatePriority() error {
	if c.Priority.AgeWeight < 0 {
		return errors.New("priority.age_weight must not be negative")
	}
	if c.Priority.OverdueBump < c.Priority.DueSoonBump {
		return errors.New("priority.overdue_bump must be at least due_soon_bump")
	}
	if c.Priority.UrgentBump < c.Priority.HighBump {
		return errors.New("priority.urgent_bump must be at least high_bump")
	}
	return nil
}

func (c *Config) validateSweep() error {
	if c.Sweep.IntervalSeconds <= 0 {
		return errors.New("sweep.interval_seconds must be positive")
	}
	if c.Sweep.OverdueCheckMinutes <= 0 {
		return errors.New("sweep.overdue_check_minutes must be positive")
	}
	if c.Sweep.AlertDedupMinutes < 0 {
		return errors.New("sweep.alert_dedup_minutes must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
