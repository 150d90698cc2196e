// Package workflow buffers classified stories and hands them to the spool.
//
// The dispatcher routes each story into a bounded SiteQueue; the Manager owns
// one queue per configured site plus the catch-all and runs a lane goroutine
// per queue that drains items into the durable spool as pending records.
// Queues absorb bursts from large poll cycles, and a full queue pushes back on
// the dispatcher instead of blocking the watcher.
//
// Handoff is at-most-once: an item that fails to insert is logged and
// dropped, never retried, because its URL file is already gone from the watch
// directory.
package workflow
