// Package queue persists dispatched story URLs in SQLite and exposes the
// maintenance operations the CLI and daemon build on.
//
// The Store manages the database connection, embedded schema migrations,
// stats queries, and operator maintenance (clear, retry). Spool items are
// inserted as pending by the handoff lanes; downstream fetchers outside
// this repository move them to completed or failed, so the store never
// drives stage transitions of its own.
//
// The database lives in the configured data directory and is treated as a
// durable spool rather than a long-term archive. Schema changes ship as a
// new migration file under migrations/.
package queue
