// Package logs reads the daemon log file for the CLI: bounded tail reads,
// resumable byte offsets for repeat invocations, and a polling follow mode
// that stops on context cancellation or a wait deadline.
package logs
