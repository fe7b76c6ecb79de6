// Package tasks orchestrates the multi-request Wrapped operations with real-time progress reporting.
//
// # Core Operations
//
// [WrappedEngine] drives three operations:
//
//  1. [WrappedEngine.LoadHome] : Home screen mount
//     - Fetches the profile (failure ends the session)
//     - Then fetches the Wrapped history (failure leaves an empty collection)
//
//  2. [WrappedEngine.GenerateMany] : Generate several terms at once
//     - Worker pool paced by a rate limiter
//     - Snapshots are appended in completion order
//
//  3. [WrappedEngine.BulkExport] : Export snapshots to disk
//     - One file set per snapshot via the formatter package
//     - Writes export_manifest.json summarizing the run
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
