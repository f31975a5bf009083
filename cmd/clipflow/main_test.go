package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"clipflow/internal/config"
	"clipflow/internal/queue"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Workers.DefaultWorker = "tester"
	cfgVal.Workers.Admins = []string{"admin"}

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, &cfgVal)

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\ndata_dir = %q\nlog_dir = %q\n\n[workers]\ndefault_worker = %q\nadmins = [%q]\n",
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		cfg.Workers.DefaultWorker,
		cfg.Workers.Admins[0],
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func (env *cliTestEnv) openStore(t *testing.T) *queue.Store {
	t.Helper()
	store, err := queue.Open(env.cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func TestCLIAddAndQueueStatus(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env, "add", "Morning Clip")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "Added #1") || !strings.Contains(out, "Generating Script") {
		t.Fatalf("unexpected add output: %q", out)
	}

	out, err = runCLI(t, env, "queue", "status")
	if err != nil {
		t.Fatalf("queue status: %v", err)
	}
	if !strings.Contains(out, "Generating Script") || !strings.Contains(out, "Total") {
		t.Fatalf("unexpected status output: %q", out)
	}
}

func TestCLIClaimLifecycle(t *testing.T) {
	env := setupCLITestEnv(t)
	store := env.openStore(t)
	ctx := context.Background()

	item, err := store.NewItem(ctx, "Morning Clip", "tester", nowUTC())
	if err != nil {
		t.Fatalf("NewItem: %v", err)
	}
	seedToStage(t, store, item.ID, queue.StageNotRecorded)

	out, err := runCLI(t, env, "claim", "1", "--worker", "alice")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if !strings.Contains(out, "Claimed #1") || !strings.Contains(out, "alice") {
		t.Fatalf("unexpected claim output: %q", out)
	}

	// A second worker cannot take the active claim.
	if _, err := runCLI(t, env, "claim", "1", "--worker", "bob"); err == nil {
		t.Fatal("expected claim by second worker to fail")
	}

	out, err = runCLI(t, env, "release", "1", "--worker", "alice")
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if !strings.Contains(out, "Released #1") {
		t.Fatalf("unexpected release output: %q", out)
	}

	// After release the item is claimable again.
	if _, err := runCLI(t, env, "claim", "1", "--worker", "bob"); err != nil {
		t.Fatalf("claim after release: %v", err)
	}
}

func TestCLIReassignWithExplicitTTL(t *testing.T) {
	env := setupCLITestEnv(t)
	store := env.openStore(t)
	ctx := context.Background()

	item, err := store.NewItem(ctx, "Rush Edit", "tester", nowUTC())
	if err != nil {
		t.Fatalf("NewItem: %v", err)
	}
	seedToStage(t, store, item.ID, queue.StageRecorded)

	if _, err := runCLI(t, env, "claim", "1", "--worker", "carol"); err != nil {
		t.Fatalf("claim: %v", err)
	}

	out, err := runCLI(t, env, "reassign", "1", "--to", "dave", "--ttl-minutes", "120", "--notes", "rush job", "--worker", "admin")
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if !strings.Contains(out, "dave") {
		t.Fatalf("unexpected reassign output: %q", out)
	}

	reassigned, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reassigned.ClaimedBy != "dave" {
		t.Fatalf("expected dave to hold the claim, got %q", reassigned.ClaimedBy)
	}
	if reassigned.ClaimExpiresAt == nil || reassigned.ClaimedAt == nil {
		t.Fatalf("expected claim timestamps, got %#v", reassigned)
	}
	if got := reassigned.ClaimExpiresAt.Sub(*reassigned.ClaimedAt); got != 2*time.Hour {
		t.Fatalf("claim TTL = %v, want 2h", got)
	}
}

func TestCLIQueueListForRole(t *testing.T) {
	env := setupCLITestEnv(t)
	store := env.openStore(t)
	ctx := context.Background()

	item, err := store.NewItem(ctx, "Morning Clip", "tester", nowUTC())
	if err != nil {
		t.Fatalf("NewItem: %v", err)
	}
	seedToStage(t, store, item.ID, queue.StageNotRecorded)

	out, err := runCLI(t, env, "queue", "list", "--role", "recorder")
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	if !strings.Contains(out, "Morning Clip") || !strings.Contains(out, "available") {
		t.Fatalf("unexpected list output: %q", out)
	}

	// Editors see nothing yet: the item has not been recorded.
	out, err = runCLI(t, env, "queue", "list", "--role", "editor")
	if err != nil {
		t.Fatalf("queue list editor: %v", err)
	}
	if !strings.Contains(out, "Queue is empty") {
		t.Fatalf("expected empty editor queue, got %q", out)
	}
}

func TestCLIAdvanceBlockedWithoutDeliverable(t *testing.T) {
	env := setupCLITestEnv(t)
	store := env.openStore(t)
	ctx := context.Background()

	item, err := store.NewItem(ctx, "Morning Clip", "tester", nowUTC())
	if err != nil {
		t.Fatalf("NewItem: %v", err)
	}
	seedToStage(t, store, item.ID, queue.StageRecorded)

	if _, err := runCLI(t, env, "claim", "1", "--worker", "carol"); err != nil {
		t.Fatalf("claim: %v", err)
	}

	// Editing is not done until the deliverable URL is attached.
	if _, err := runCLI(t, env, "advance", "1", "--worker", "carol"); err == nil {
		t.Fatal("expected advance without deliverable to fail")
	}

	if _, err := runCLI(t, env, "set", "1", "--deliverable", "https://files.example.com/final.mp4"); err != nil {
		t.Fatalf("set deliverable: %v", err)
	}
	out, err := runCLI(t, env, "advance", "1", "--worker", "carol")
	if err != nil {
		t.Fatalf("advance with deliverable: %v", err)
	}
	if !strings.Contains(out, "Ready To Post") {
		t.Fatalf("unexpected advance output: %q", out)
	}
}

func TestCLIPriorityRequiresAdmin(t *testing.T) {
	env := setupCLITestEnv(t)
	store := env.openStore(t)

	if _, err := store.NewItem(context.Background(), "Morning Clip", "tester", nowUTC()); err != nil {
		t.Fatalf("NewItem: %v", err)
	}

	if _, err := runCLI(t, env, "priority", "1", "urgent", "--worker", "alice"); err == nil {
		t.Fatal("expected non-admin priority change to fail")
	}
	out, err := runCLI(t, env, "priority", "1", "urgent", "--worker", "admin")
	if err != nil {
		t.Fatalf("admin priority: %v", err)
	}
	if !strings.Contains(out, "urgent") {
		t.Fatalf("unexpected priority output: %q", out)
	}
}

func TestCLIAuditTrail(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, err := runCLI(t, env, "add", "Morning Clip"); err != nil {
		t.Fatalf("add: %v", err)
	}
	out, err := runCLI(t, env, "audit", "1")
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if !strings.Contains(out, "created") {
		t.Fatalf("expected created event in audit output, got %q", out)
	}
}

func TestCLIConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(env.baseDir, "fresh", "config.toml")

	out, err := runCLI(t, env, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected init output: %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected sample config on disk: %v", err)
	}

	// Re-running without --overwrite refuses to clobber.
	if _, err := runCLI(t, env, "config", "init", "--path", target); err == nil {
		t.Fatal("expected second init to fail without --overwrite")
	}
}
