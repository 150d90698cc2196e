// Package ingest contains the watch-folder pipeline: the extractor that
// drains *.url files, the dispatcher that classifies and routes each story
// URL, the ticker-driven watcher loop that ties the two together, and an
// fsnotify folder monitor that nudges the watcher between polls.
//
// The pipeline is deliberately forgiving. Per-file and per-item failures
// are logged and skipped so one bad file never stalls a cycle, and the
// loop itself only exits on context cancellation. The single fatal case is
// a watch directory that can neither be found nor created at construction.
package ingest
