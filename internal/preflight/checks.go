package preflight

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/ArcCdr/AutomatedFanfic/internal/config"
)

// pushbulletMeEndpoint identifies the authenticated caller without sending a
// push. Overridden in tests.
var pushbulletMeEndpoint = "https://api.pushbullet.com/v2/users/me"

// CheckDirectoryAccess verifies the directory exists and grants read/write.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return Result{Name: name, Detail: path + " is missing"}
	case err != nil:
		return Result{Name: name, Detail: fmt.Sprintf("cannot stat %s: %v", path, err)}
	case !info.IsDir():
		return Result{Name: name, Detail: path + " exists but is not a directory"}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s lacks read/write access: %v", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path + " writable"}
}

// CheckSpoolPath verifies the spool database file is usable, or that the
// daemon could create it on first open.
func CheckSpoolPath(cfg *config.Config) Result {
	const name = "Spool database"
	path := cfg.SpoolDatabasePath()

	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return Result{Name: name, Detail: path + " is a directory, not a database file"}
	case err == nil:
		return Result{Name: name, Passed: true, Detail: path + " present"}
	case os.IsNotExist(err):
	default:
		return Result{Name: name, Detail: fmt.Sprintf("cannot stat %s: %v", path, err)}
	}

	parent := filepath.Dir(path)
	pinfo, perr := os.Stat(parent)
	switch {
	case perr == nil && !pinfo.IsDir():
		return Result{Name: name, Detail: "parent of " + path + " is not a directory"}
	case perr == nil:
		if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("parent of %s not writable: %v", path, err)}
		}
	case os.IsNotExist(perr):
		// The daemon creates the data directory on startup.
	default:
		return Result{Name: name, Detail: fmt.Sprintf("cannot stat parent of %s: %v", path, perr)}
	}
	return Result{Name: name, Passed: true, Detail: path + " will be created on first open"}
}

// CheckNotifications reports which notification backends are configured. The
// check fails when the fanfiction.net diversion is enabled with no backend,
// because diverted stories would vanish silently.
func CheckNotifications(cfg *config.Config) Result {
	const name = "Notifications"

	backends := make([]string, 0, 2)
	if strings.TrimSpace(cfg.Notifications.NtfyTopic) != "" {
		backends = append(backends, "ntfy")
	}
	if strings.TrimSpace(cfg.Notifications.PushbulletToken) != "" {
		backends = append(backends, "pushbullet")
	}

	if len(backends) == 0 {
		if cfg.Watcher.DisableFanfictionNet {
			return Result{Name: name, Detail: "fanfiction.net diversion enabled but no backend configured"}
		}
		return Result{Name: name, Passed: true, Detail: "no backends configured (deliveries become no-ops)"}
	}
	return Result{Name: name, Passed: true, Detail: strings.Join(backends, ", ")}
}

// CheckPushbullet verifies the Pushbullet token against the users endpoint.
func CheckPushbullet(ctx context.Context, token string) Result {
	const name = "Pushbullet API"

	if strings.TrimSpace(token) == "" {
		return Result{Name: name, Detail: "missing access token"}
	}

	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, pushbulletMeEndpoint, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("cannot build auth request: %v", err)}
	}
	req.Header.Set("Access-Token", strings.TrimSpace(token))

	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("cannot reach Pushbullet: %v", err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return Result{Name: name, Passed: true, Detail: "reachable"}
	case http.StatusUnauthorized, http.StatusForbidden:
		return Result{Name: name, Detail: "auth failed (invalid access token)"}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("unexpected status %d from Pushbullet", resp.StatusCode)}
	}
}
