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

//go:embed sample.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WatchDir string `toml:"watch_dir"`
	DataDir  string `toml:"data_dir"`
	LogDir   string `toml:"log_dir"`
}

// Watcher contains configuration for the folder poll loop.
type Watcher struct {
	PollIntervalSeconds  int  `toml:"poll_interval_seconds"`
	DisableFanfictionNet bool `toml:"disable_fanfiction_net"`
}

// Queues contains configuration for the per-site destination queues.
type Queues struct {
	Capacity int      `toml:"capacity"`
	Sites    []string `toml:"sites"`
}

// Notifications contains configuration for push notification backends.
type Notifications struct {
	NtfyTopic         string `toml:"ntfy_topic"`
	RequestTimeout    int    `toml:"request_timeout"`
	PushbulletToken   string `toml:"pushbullet_token"`
	PushbulletDevice  string `toml:"pushbullet_device"`
	RetryAttempts     int    `toml:"retry_attempts"`
	RetryDelaySeconds int    `toml:"retry_delay_seconds"`
}

// Logging selects the log output format and verbosity.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config is the root of the TOML configuration tree:
//
//	[paths]         watch folder, spool data directory, log directory
//	[watcher]       poll cadence and the fanfiction.net diversion flag
//	[queues]        destination queue capacity and enabled sites
//	[notifications] ntfy and Pushbullet push settings plus retry policy
//	[logging]       log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Watcher       Watcher       `toml:"watcher"`
	Queues        Queues        `toml:"queues"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns where the config file lives when no explicit
// path is given.
func DefaultConfigPath() (string, error) {
	return canonicalPath("~/.config/autofanfic/config.toml")
}

// Load resolves the configuration file, decodes it when present, and
// returns the normalized, validated result. The string return is the path
// that was (or would be) read; the bool reports whether a file was found.
// A missing file is not an error, the built-in defaults apply.
func Load(path string) (*Config, string, bool, error) {
	resolved, exists, err := locateConfig(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	if exists {
		raw, err := os.ReadFile(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config %s: %w", resolved, err)
		}
		if err := toml.Unmarshal(raw, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

// locateConfig maps an optional explicit path to the file Load should
// read. An explicit path wins even when the file does not exist yet; with
// no explicit path the default location is tried first, then a project
// local autofanfic.toml in the working directory.
func locateConfig(explicit string) (string, bool, error) {
	if explicit != "" {
		expanded, err := canonicalPath(explicit)
		if err != nil {
			return "", false, err
		}
		switch _, err := os.Stat(expanded); {
		case err == nil:
			return expanded, true, nil
		case errors.Is(err, fs.ErrNotExist):
			return expanded, false, nil
		default:
			return "", false, fmt.Errorf("check config file: %w", err)
		}
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	localPath, err := filepath.Abs("autofanfic.toml")
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{defaultPath, localPath} {
		if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the watch, data, and log directories if they
// are missing.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WatchDir, c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// PollInterval returns the watcher cadence as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Watcher.PollIntervalSeconds) * time.Second
}

// SpoolDatabasePath returns the SQLite spool location under the data directory.
func (c *Config) SpoolDatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "spool.db")
}

// canonicalPath expands a leading ~ to the home directory and makes the
// result absolute. Paths like ~otheruser are passed through untouched.
func canonicalPath(raw string) (string, error) {
	if raw == "" {
		return raw, nil
	}
	if raw == "~" || strings.HasPrefix(raw, "~/") || strings.HasPrefix(raw, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~ in %q: %w", raw, err)
		}
		if raw == "~" {
			raw = home
		} else {
			raw = filepath.Join(home, raw[2:])
		}
	}
	abs, err := filepath.Abs(raw)
	if err != nil {
		return "", fmt.Errorf("make %q absolute: %w", raw, err)
	}
	return abs, nil
}

// ExpandPath applies the same path expansion rules the config loader uses.
// Other packages use it to treat user-supplied paths consistently.
func ExpandPath(pathValue string) (string, error) {
	return canonicalPath(pathValue)
}

// CreateSample writes the annotated sample configuration to path, creating
// parent directories as needed.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample: %w", err)
	}
	return nil
}
