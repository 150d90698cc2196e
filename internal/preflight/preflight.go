package preflight

import (
	"context"

	"github.com/ArcCdr/AutomatedFanfic/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes all applicable preflight checks for the given config.
// Network checks only run when the corresponding backend is configured.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Watch directory", cfg.Paths.WatchDir),
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckSpoolPath(cfg),
		CheckNotifications(cfg),
	}

	if cfg.Notifications.PushbulletToken != "" {
		results = append(results, CheckPushbullet(ctx, cfg.Notifications.PushbulletToken))
	}

	return results
}
