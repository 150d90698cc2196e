package daemon

import (
	"context"
	"errors"
	"strings"

	"github.com/ArcCdr/AutomatedFanfic/internal/logging"
	"github.com/ArcCdr/AutomatedFanfic/internal/queue"
)

// SpoolList returns spool items filtered by optional statuses.
func (d *Daemon) SpoolList(ctx context.Context, statuses []queue.Status) ([]*queue.Item, error) {
	if d.store == nil {
		return nil, errors.New("spool store unavailable")
	}
	return d.store.List(ctx, statuses...)
}

// SpoolClear removes all spool items.
func (d *Daemon) SpoolClear(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("spool store unavailable")
	}
	return d.store.Clear(ctx)
}

// SpoolClearCompleted removes only completed spool items.
func (d *Daemon) SpoolClearCompleted(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("spool store unavailable")
	}
	return d.store.ClearCompleted(ctx)
}

// SpoolClearFailed removes only failed spool items.
func (d *Daemon) SpoolClearFailed(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("spool store unavailable")
	}
	return d.store.ClearFailed(ctx)
}

// SpoolRetry resets failed items (optionally a subset) back to pending.
func (d *Daemon) SpoolRetry(ctx context.Context, ids []int64) (int64, error) {
	if d.store == nil {
		return 0, errors.New("spool store unavailable")
	}
	return d.store.RetryFailed(ctx, ids...)
}

// SpoolHealth returns aggregate spool diagnostics.
func (d *Daemon) SpoolHealth(ctx context.Context) (queue.HealthSummary, error) {
	if d.store == nil {
		return queue.HealthSummary{}, errors.New("spool store unavailable")
	}
	return d.store.Health(ctx)
}

// DatabaseHealth returns detailed spool database diagnostics.
func (d *Daemon) DatabaseHealth(ctx context.Context) (queue.DatabaseHealth, error) {
	if d.store == nil {
		return queue.DatabaseHealth{}, errors.New("spool store unavailable")
	}
	return d.store.CheckHealth(ctx)
}

// ScanNow asks the watcher for an immediate poll cycle.
func (d *Daemon) ScanNow() error {
	if !d.running.Load() {
		return errors.New("daemon is not running")
	}
	d.watcher.Nudge()
	d.logger.Info("manual scan requested",
		logging.String(logging.FieldEventType, "scan_requested"),
	)
	return nil
}

// TestNotification sends a test message through the configured backends.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg == nil {
		return false, "configuration not loaded", errors.New("daemon has no configuration")
	}
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" &&
		strings.TrimSpace(d.cfg.Notifications.PushbulletToken) == "" {
		return false, "no notification backends configured", nil
	}
	if err := d.notifier.TestNotification(ctx); err != nil {
		return false, "notification delivery failed", err
	}
	return true, "test notification delivered", nil
}

// LogPath reports where the active session log is written.
func (d *Daemon) LogPath() string {
	return d.logPath
}
