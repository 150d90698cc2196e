// Package api defines transport-friendly DTOs and shared CLI workflows for
// spool data. It translates internal queue models into payloads the IPC layer
// and the command-line renderer can use without coupling to internal types.
//
// # Key Types
//
// SpoolEntry: transport representation of a spooled story with status, error
// message, and RFC3339 timestamps.
//
// StatusLine: a labeled severity/detail pair used by status output.
//
// # Converters
//
// FromSpoolItem: queue.Item -> SpoolEntry.
//
// MergeSpoolStats: queue status counts keyed by plain strings.
//
// # Design Notes
//
// SpoolService wraps a queue store for consumers that talk to the spool
// directly when the daemon is offline; the IPC server reuses the same
// converters so both paths hand identical payloads to the CLI.
package api
