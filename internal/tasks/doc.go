// Package tasks runs the migration script with real-time progress reporting.
//
// # Core Operations
//
// The [SyncEngine] interface defines three operations:
//
//  1. [SyncEngine.Playlists] : Enumerate source playlists
//     - Scrapes the source library
//     - Keeps the playlists named by [Options.Playlists], up to [Options.Limit]
//
//  2. [SyncEngine.MigratePlaylist] : Replay one playlist at the destination
//     - Scrapes the playlist's tracks
//     - Creates the destination playlist (or uses the sentinel in dry-run mode)
//     - Searches for and attaches every track, recording each [models.Attachment]
//
//  3. [SyncEngine.Run] : Migrate every selected playlist in order
//
// [PlaylistEngine.BulkExport] snapshots the selected playlists to files without touching the destination.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Pacing
//
// Destination writes (playlist creation and each track attachment) pass through a [rate.Limiter]
// with burst 1, so consecutive writes are at least [Options.WriteDelay] apart.
//
// # Failure Model
//
// Per-track failures are recorded and the run moves on. An error from the source or from
// playlist creation means a browser session is unusable and ends the run.
package tasks
