// Package tasks runs long notes operations with real-time progress reporting.
//
// # Export
//
// [Engine.ExportNotes] walks every page of the notes list (optionally filtered by tag and search) and writes each
// note to disk:
//   - pages are fetched one at a time under a rate limiter
//   - a worker pool encodes and writes notes as JSON, Markdown or text files; CSV collects every note into one file
//   - a manifest summarizing the run is written last, and optionally recorded in the local database
//
// # Progress Reporting
//
// # All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
