package config

const (
	defaultWatchDir            = "~/autofanfic/inbox"
	defaultDataDir             = "~/.local/share/autofanfic"
	defaultLogDir              = "~/.local/share/autofanfic/logs"
	defaultPollIntervalSeconds = 60
	defaultQueueCapacity       = 64
	defaultRequestTimeout      = 10
	defaultRetryAttempts       = 3
	defaultRetryDelaySeconds   = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WatchDir: defaultWatchDir,
			DataDir:  defaultDataDir,
			LogDir:   defaultLogDir,
		},
		Watcher: Watcher{
			PollIntervalSeconds: defaultPollIntervalSeconds,
		},
		Queues: Queues{
			Capacity: defaultQueueCapacity,
		},
		Notifications: Notifications{
			RequestTimeout:    defaultRequestTimeout,
			RetryAttempts:     defaultRetryAttempts,
			RetryDelaySeconds: defaultRetryDelaySeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
