package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Workers contains worker identity and permission configuration.
type Workers struct {
	DefaultWorker string   `toml:"default_worker"`
	Admins        []string `toml:"admins"`
}

// Claims contains claim TTL configuration per role, in minutes.
type Claims struct {
	RecorderTTLMinutes int `toml:"recorder_ttl_minutes"`
	EditorTTLMinutes   int `toml:"editor_ttl_minutes"`
	UploaderTTLMinutes int `toml:"uploader_ttl_minutes"`
	DefaultTTLMinutes  int `toml:"default_ttl_minutes"`
}

// SLA contains per-stage deadline configuration.
type SLA struct {
	StageHours        map[string]int `toml:"stage_hours"`
	WarnWindowMinutes int            `toml:"warn_window_minutes"`
}

// Priority contains the tunable coefficients of the priority score. Only
// monotonicity is contractual; these weights shape the queue ordering.
type Priority struct {
	AgeWeight   float64 `toml:"age_weight"`
	DueSoonBump float64 `toml:"due_soon_bump"`
	OverdueBump float64 `toml:"overdue_bump"`
	HighBump    float64 `toml:"high_bump"`
	UrgentBump  float64 `toml:"urgent_bump"`
}

// Sweep contains cadence configuration for the background sweep loop.
type Sweep struct {
	IntervalSeconds     int `toml:"interval_seconds"`
	OverdueCheckMinutes int `toml:"overdue_check_minutes"`
	AlertDedupMinutes   int `toml:"alert_dedup_minutes"`
}

// Notifications contains configuration for ntfy push alerts.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	ClaimExpired   bool   `toml:"claim_expired"`
	Overdue        bool   `toml:"overdue"`
	Reassigned     bool   `toml:"reassigned"`
}

// Audit contains configuration for the external audit event sink.
type Audit struct {
	NATSURL     string `toml:"nats_url"`
	NATSSubject string `toml:"nats_subject"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for clipflow.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Workers       Workers       `toml:"workers"`
	Claims        Claims        `toml:"claims"`
	SLA           SLA           `toml:"sla"`
	Priority      Priority      `toml:"priority"`
	Sweep         Sweep         `toml:"sweep"`
	Notifications Notifications `toml:"notifications"`
	Audit         Audit         `toml:"audit"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/clipflow/config.toml")
}

// SampleConfig returns the embedded annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return value
// is the resolved path; the third reports whether a file was found there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	projectPath, err := filepath.Abs("clipflow.toml")
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories when missing.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite database location inside the data directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "clipflow.db")
}

// ClaimTTL returns the configured claim TTL for a role name. Unknown roles
// fall back to the default TTL.
func (c *Config) ClaimTTL(role string) time.Duration {
	minutes := c.Claims.DefaultTTLMinutes
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "recorder":
		minutes = c.Claims.RecorderTTLMinutes
	case "editor":
		minutes = c.Claims.EditorTTLMinutes
	case "uploader":
		minutes = c.Claims.UploaderTTLMinutes
	}
	if minutes <= 0 {
		minutes = c.Claims.DefaultTTLMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// IsAdmin reports whether a worker id is on the admin list.
func (c *Config) IsAdmin(worker string) bool {
	worker = strings.ToLower(strings.TrimSpace(worker))
	if worker == "" {
		return false
	}
	for _, admin := range c.Workers.Admins {
		if strings.ToLower(strings.TrimSpace(admin)) == worker {
			return true
		}
	}
	return false
}

// CreateSample writes the annotated sample configuration to target.
func CreateSample(target string) error {
	return os.WriteFile(target, []byte(sampleConfig), 0o644)
}

// ExpandPath resolves ~ and relative segments to an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", trimmed, err)
	}
	return abs, nil
}
