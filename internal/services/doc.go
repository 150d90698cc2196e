// Package services defines shared utilities consumed across the ingestion
// pipeline and its control surfaces.
//
// Key responsibilities:
//   - Context helpers that stamp spool item IDs, site identifiers, and
//     poll-cycle correlation IDs for logging and tracing.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification consistent between the daemon, IPC, and CLI.
//
// Use these helpers when wiring new components so operational behaviour
// (error handling, observability) stays uniform across the system.
package services
