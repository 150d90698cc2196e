package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ArcCdr/AutomatedFanfic/internal/config"
	"github.com/ArcCdr/AutomatedFanfic/internal/daemon"
	"github.com/ArcCdr/AutomatedFanfic/internal/ipc"
	"github.com/ArcCdr/AutomatedFanfic/internal/logging"
	"github.com/ArcCdr/AutomatedFanfic/internal/queue"
	"github.com/ArcCdr/AutomatedFanfic/internal/testsupport"
)

// cliFixture holds the pieces CLI tests poke at directly.
type cliFixture struct {
	store      *queue.Store
	socketPath string
	configPath string
}

// startDaemonFixture runs a daemon with a live IPC socket so commands can
// exercise the online path. The watcher pipeline stays stopped.
func startDaemonFixture(t *testing.T) *cliFixture {
	t.Helper()

	cfg, configPath := isolatedConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	d, err := daemon.New(cfg, store, logging.NewNop(), nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	socket := filepath.Join(cfg.Paths.LogDir, "cli.sock")
	srv, err := ipc.NewServer(ctx, socket, d, logging.NewNop())
	if err != nil {
		cancel()
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	t.Cleanup(func() {
		cancel()
		srv.Close()
		d.Close()
	})

	return &cliFixture{store: store, socketPath: socket, configPath: configPath}
}

// offlineFixture prepares a config file and a socket path nothing listens
// on, forcing commands down the direct store fallback.
func offlineFixture(t *testing.T) (cfg *config.Config, configPath, socketPath string) {
	t.Helper()
	cfg, configPath = isolatedConfig(t)
	socketPath = filepath.Join(testsupport.BaseDir(cfg), "missing.sock")
	return cfg, configPath, socketPath
}

// isolatedConfig pins HOME inside the test tempdir, clears notification
// env vars, and writes a config file matching the generated paths.
func isolatedConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PUSHBULLET_TOKEN", "")

	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	path := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeConfigFile(t, path, cfg)
	return cfg, path
}

func runCommand(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()

	argv := []string{"--socket", socket}
	if configPath != "" {
		argv = append(argv, "--config", configPath)
	}
	argv = append(argv, args...)

	root := newRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(argv)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func writeConfigFile(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
watch_dir = %q
data_dir = %q
log_dir = %q

[watcher]
poll_interval_seconds = 3600

[logging]
format = "json"
level = "error"
`, cfg.Paths.WatchDir, cfg.Paths.DataDir, cfg.Paths.LogDir)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
}

func mustContain(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("output %q missing %q", output, want)
	}
}
