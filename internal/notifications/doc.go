// Package notifications delivers watcher events via pluggable senders.
//
// NewService wires the senders named in config.toml: an ntfy topic, a
// Pushbullet access token, or both. Every send is retried with growing
// pauses before it is reported as failed, and when several senders are
// configured each one receives every message (errors are joined). When
// nothing is configured the service degrades to a no-op so callers never
// need to branch on notification availability.
//
// Extend this package if you need alternative transports; callers depend
// only on the small Service interface.
package notifications
