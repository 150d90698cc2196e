// Package ipc carries the control channel between the CLI and a running
// daemon: a JSON-RPC service on a Unix socket plus the client that dials it.
//
// The wire types here are deliberately flat so the status command can dump
// them as JSON unchanged. Spool rows cross the socket as trimmed-down
// summaries rather than full store models, which keeps the daemon free to
// evolve its persistence layer without breaking older CLI builds. Dial
// failures are annotated with enough detail for a command to tell "daemon
// not started" apart from a genuinely broken socket.
package ipc
