package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/ArcCdr/AutomatedFanfic/internal/config"
)

// Option mutates the generated test configuration.
type Option func(*config.Config)

// NewConfig returns a Config rooted in a fresh temp directory, with every
// path pointed somewhere writable. Options adjust the result before return.
func NewConfig(t testing.TB, opts ...Option) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WatchDir = filepath.Join(base, "inbox")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithPollInterval overrides the watcher poll cadence in seconds.
func WithPollInterval(seconds int) Option {
	return func(c *config.Config) { c.Watcher.PollIntervalSeconds = seconds }
}

// WithSites sets the configured destination sites.
func WithSites(sites ...string) Option {
	return func(c *config.Config) { c.Queues.Sites = sites }
}

// WithQueueCapacity overrides the per-site queue capacity.
func WithQueueCapacity(capacity int) Option {
	return func(c *config.Config) { c.Queues.Capacity = capacity }
}

// WithFanfictionNetDisabled turns on the fanfiction.net diversion flag.
func WithFanfictionNetDisabled() Option {
	return func(c *config.Config) { c.Watcher.DisableFanfictionNet = true }
}

// WithNtfyTopic points notifications at an ntfy topic URL.
func WithNtfyTopic(topic string) Option {
	return func(c *config.Config) { c.Notifications.NtfyTopic = topic }
}

// BaseDir recovers the temp root a NewConfig result was built under.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WatchDir)
}
