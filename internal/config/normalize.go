package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeQueues()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WatchDir) == "" {
		c.Paths.WatchDir = defaultWatchDir
	}
	if c.Paths.WatchDir, err = canonicalPath(c.Paths.WatchDir); err != nil {
		return fmt.Errorf("paths.watch_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = canonicalPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = canonicalPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeQueues() {
	if c.Queues.Capacity <= 0 {
		c.Queues.Capacity = defaultQueueCapacity
	}
	sites := make([]string, 0, len(c.Queues.Sites))
	seen := make(map[string]struct{}, len(c.Queues.Sites))
	for _, site := range c.Queues.Sites {
		normalized := strings.ToLower(strings.TrimSpace(site))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		sites = append(sites, normalized)
	}
	c.Queues.Sites = sites
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	c.Notifications.PushbulletToken = strings.TrimSpace(c.Notifications.PushbulletToken)
	if c.Notifications.PushbulletToken == "" {
		if value, ok := os.LookupEnv("PUSHBULLET_TOKEN"); ok {
			c.Notifications.PushbulletToken = strings.TrimSpace(value)
		}
	}
	c.Notifications.PushbulletDevice = strings.TrimSpace(c.Notifications.PushbulletDevice)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultRequestTimeout
	}
	if c.Notifications.RetryAttempts <= 0 {
		c.Notifications.RetryAttempts = defaultRetryAttempts
	}
	if c.Notifications.RetryDelaySeconds <= 0 {
		c.Notifications.RetryDelaySeconds = defaultRetryDelaySeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
