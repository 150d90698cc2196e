// Package daemon coordinates the long-running AutoFanfic process.
//
// It wires the watch-folder pipeline together: extractor, dispatcher, poll
// watcher, filesystem monitor, the per-site handoff manager, and the durable
// spool, all behind a flock-based single-instance lock. The daemon also
// exposes the facade methods the IPC server calls for status, spool
// maintenance, manual scans, and notification tests.
//
// Keep orchestration logic here: pipeline behavior lives in the ingest and
// workflow packages while the daemon focuses on startup, shutdown, and high
// level coordination.
package daemon
