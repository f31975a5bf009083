package testsupport

import (
	"path/filepath"
	"testing"

	"clipflow/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Workers.DefaultWorker = "tester"
	cfg.Workers.Admins = []string{"admin"}
	cfg.Notifications.NtfyTopic = ""
	cfg.Audit.NATSURL = ""

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithAdmins overrides the admin worker list on the test config.
func WithAdmins(admins ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workers.Admins = admins
	}
}

// WithClaimTTLMinutes sets every role's claim TTL to the same value.
func WithClaimTTLMinutes(minutes int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Claims.RecorderTTLMinutes = minutes
		cfg.Claims.EditorTTLMinutes = minutes
		cfg.Claims.UploaderTTLMinutes = minutes
		cfg.Claims.DefaultTTLMinutes = minutes
	}
}

// WithStageHours overrides a single stage's SLA duration.
func WithStageHours(stage string, hours int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.SLA.StageHours[stage] = hours
	}
}
