package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/ArcCdr/AutomatedFanfic/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWatch := filepath.Join(tempHome, "autofanfic", "inbox")
	if cfg.Paths.WatchDir != wantWatch {
		t.Fatalf("unexpected watch dir: got %q want %q", cfg.Paths.WatchDir, wantWatch)
	}
	wantData := filepath.Join(tempHome, ".local", "share", "autofanfic")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
	if cfg.Watcher.PollIntervalSeconds != 60 {
		t.Fatalf("unexpected poll interval: %d", cfg.Watcher.PollIntervalSeconds)
	}
	if cfg.Watcher.DisableFanfictionNet {
		t.Fatal("expected diversion flag off by default")
	}
	if cfg.Queues.Capacity != 64 {
		t.Fatalf("unexpected queue capacity: %d", cfg.Queues.Capacity)
	}
	if cfg.Notifications.RetryAttempts != 3 {
		t.Fatalf("unexpected retry attempts: %d", cfg.Notifications.RetryAttempts)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if got := cfg.SpoolDatabasePath(); got != filepath.Join(wantData, "spool.db") {
		t.Fatalf("unexpected spool path: %q", got)
	}
}

func TestLoadParsesFileValues(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[paths]
watch_dir = "~/drop"

[watcher]
poll_interval_seconds = 5
disable_fanfiction_net = true

[queues]
capacity = 8
sites = ["ArchiveOfOurOwn.org", "archiveofourown.org", " "]

[notifications]
ntfy_topic = "https://ntfy.sh/fanfic"

[logging]
level = "debug"
format = "json"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected existing resolved config, got exists=%v path=%q", exists, resolved)
	}
	if cfg.Paths.WatchDir != filepath.Join(tempHome, "drop") {
		t.Fatalf("watch dir not expanded: %q", cfg.Paths.WatchDir)
	}
	if !cfg.Watcher.DisableFanfictionNet {
		t.Fatal("expected diversion flag on")
	}
	if cfg.Watcher.PollIntervalSeconds != 5 {
		t.Fatalf("unexpected poll interval: %d", cfg.Watcher.PollIntervalSeconds)
	}
	if len(cfg.Queues.Sites) != 1 || cfg.Queues.Sites[0] != "archiveofourown.org" {
		t.Fatalf("expected normalized deduplicated sites, got %v", cfg.Queues.Sites)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("unexpected logging: %+v", cfg.Logging)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:    "non-positive poll interval",
			mutate:  func(c *config.Config) { c.Watcher.PollIntervalSeconds = 0 },
			wantErr: "watcher.poll_interval_seconds",
		},
		{
			name:    "non-positive capacity",
			mutate:  func(c *config.Config) { c.Queues.Capacity = -1 },
			wantErr: "queues.capacity",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *config.Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *config.Config) { c.Logging.Level = "verbose" },
			wantErr: "logging.level",
		},
		{
			name:    "empty watch dir",
			mutate:  func(c *config.Config) { c.Paths.WatchDir = "" },
			wantErr: "paths.watch_dir",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			// Defaults leave paths unexpanded; validation does not care.
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected %q in error, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestPushbulletTokenFromEnv(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("PUSHBULLET_TOKEN", "env-token")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Notifications.PushbulletToken != "env-token" {
		t.Fatalf("expected token from env, got %q", cfg.Notifications.PushbulletToken)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var cfg config.Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}

	// The fully commented sample must load as pure defaults.
	loaded, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if loaded.Watcher.PollIntervalSeconds != config.Default().Watcher.PollIntervalSeconds {
		t.Fatalf("sample should not override defaults, got %d", loaded.Watcher.PollIntervalSeconds)
	}
}

func TestExpandPathHome(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	got, err := config.ExpandPath("~/x/y")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	if got != filepath.Join(tempHome, "x", "y") {
		t.Fatalf("unexpected expansion: %q", got)
	}
}
