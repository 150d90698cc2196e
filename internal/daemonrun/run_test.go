package daemonrun_test

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ArcCdr/AutomatedFanfic/internal/daemonrun"
	"github.com/ArcCdr/AutomatedFanfic/internal/ipc"
)

func writeTestConfig(t *testing.T, base string) string {
	t.Helper()

	content := `[paths]
watch_dir = "` + filepath.Join(base, "inbox") + `"
data_dir = "` + filepath.Join(base, "data") + `"
log_dir = "` + filepath.Join(base, "logs") + `"

[watcher]
poll_interval_seconds = 3600

[logging]
format = "json"
level = "error"
`
	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestRunLifecycle(t *testing.T) {
	t.Setenv("PUSHBULLET_TOKEN", "")
	base := t.TempDir()
	cfgPath := writeTestConfig(t, base)
	socketPath := filepath.Join(base, "d.sock")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- daemonrun.Run(ctx, daemonrun.Options{
			ConfigPath: cfgPath,
			SocketPath: socketPath,
		})
	}()

	var client *ipc.Client
	deadline := time.Now().Add(5 * time.Second)
	for {
		var err error
		client, err = ipc.Dial(socketPath)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("daemon socket never came up: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	defer client.Close()

	pong, err := client.Ping()
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("unix socket RPC not permitted in this environment: %v", err)
		}
		t.Fatalf("ping over ipc: %v", err)
	}
	if pong.PID != os.Getpid() {
		t.Fatalf("ping PID = %d, want %d", pong.PID, os.Getpid())
	}

	pidPath := filepath.Join(base, "logs", daemonrun.PIDFileName)
	raw, err := os.ReadFile(pidPath)
	if err != nil {
		t.Fatalf("read pid file: %v", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		t.Fatalf("parse pid file %q: %v", raw, err)
	}
	if pid != os.Getpid() {
		t.Fatalf("pid file = %d, want %d", pid, os.Getpid())
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after context cancel")
	}

	if _, err := os.Stat(pidPath); !os.IsNotExist(err) {
		t.Fatalf("pid file still present after shutdown: %v", err)
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	base := t.TempDir()
	cfgPath := filepath.Join(base, "broken.toml")
	if err := os.WriteFile(cfgPath, []byte("not toml ["), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	err := daemonrun.Run(context.Background(), daemonrun.Options{ConfigPath: cfgPath})
	if err == nil {
		t.Fatal("expected error for invalid config")
	}
	if !strings.Contains(err.Error(), "config") {
		t.Fatalf("error should mention config: %v", err)
	}
}
