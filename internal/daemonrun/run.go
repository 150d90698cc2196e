package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/ArcCdr/AutomatedFanfic/internal/config"
	"github.com/ArcCdr/AutomatedFanfic/internal/daemon"
	"github.com/ArcCdr/AutomatedFanfic/internal/ipc"
	"github.com/ArcCdr/AutomatedFanfic/internal/logging"
	"github.com/ArcCdr/AutomatedFanfic/internal/notifications"
	"github.com/ArcCdr/AutomatedFanfic/internal/preflight"
	"github.com/ArcCdr/AutomatedFanfic/internal/queue"
)

// PIDFileName is the daemon pid file created under the log directory.
const PIDFileName = "autofanfic.pid"

// Options carries the settings the CLI forwards into the daemon process.
type Options struct {
	ConfigPath string
	SocketPath string
	Diagnostic bool
}

// Run hosts the autofanfic daemon and blocks until the context is canceled
// or a termination signal arrives.
func Run(parent context.Context, opts Options) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, cfgPath, _, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}
	if opts.Diagnostic {
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}

	sessionID := uuid.NewString()
	logger = logger.With(logging.String(logging.FieldSessionID, sessionID))
	logger.Info("daemon session starting",
		logging.String(logging.FieldEventType, "daemon_session_start"),
		logging.String("config_path", cfgPath),
		logging.String("watch_dir", cfg.Paths.WatchDir),
		logging.Bool("diagnostic", opts.Diagnostic),
	)

	logPreflight(logger, preflight.RunAll(ctx, cfg))

	pidFile := filepath.Join(cfg.Paths.LogDir, PIDFileName)
	pid := []byte(strconv.Itoa(os.Getpid()) + "\n")
	if err := os.WriteFile(pidFile, pid, 0o644); err != nil {
		return fmt.Errorf("record pid file: %w", err)
	}
	defer os.Remove(pidFile)

	spool, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open spool store",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check data directory permissions"),
		)
		return err
	}
	defer spool.Close()

	notifier := notifications.NewService(cfg)
	d, err := daemon.New(cfg, spool, logger, notifier)
	if err != nil {
		return fmt.Errorf("assemble daemon: %w", err)
	}
	defer d.Close()

	socket := strings.TrimSpace(opts.SocketPath)
	if socket == "" {
		socket = ipc.DefaultSocketPath(cfg)
	}
	srv, err := ipc.NewServer(ctx, socket, d, logger)
	if err != nil {
		return fmt.Errorf("start control listener: %w", err)
	}
	defer srv.Close()
	srv.Serve()

	// A failed pipeline start keeps the process alive so IPC can still
	// answer status queries while the operator investigates.
	if err := d.Start(ctx); err != nil {
		logger.Warn("watcher pipeline did not start",
			logging.Error(err),
			logging.String(logging.FieldEventType, "pipeline_start_failed"),
			logging.String(logging.FieldErrorHint, "check configuration and spool database access"),
			logging.String(logging.FieldImpact, "url files will not be processed"),
		)
	}

	<-ctx.Done()
	logger.Info("daemon shutting down")
	return nil
}

func logPreflight(logger *slog.Logger, results []preflight.Result) {
	passed := 0
	for _, res := range results {
		if res.Passed {
			passed++
			continue
		}
		logger.Warn("preflight warning",
			logging.String("check", res.Name),
			logging.String("detail", res.Detail),
			logging.String(logging.FieldEventType, "preflight_warning"),
			logging.String(logging.FieldErrorHint, "resolve the warning, then restart"),
		)
	}
	logger.Info("preflight complete",
		logging.Int("checks", len(results)),
		logging.Int("passed", passed),
		logging.String(logging.FieldEventType, "preflight_complete"),
	)
}
