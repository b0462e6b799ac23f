// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for playlist migration:
//  1. [PlaylistListView] : Browse and select scraped Spotify playlists
//  2. [TrackListView] : Preview the scraped tracks before migrating
//  3. [ConfirmView] : Confirm the migration
//  4. [MigrateView] : Monitor real-time progress updates
//  5. [ResultView] : Display per-track outcomes
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the [tasks.SyncEngine], providing non-blocking status reporting during migrations.
//
// Login prompts use [TextPrompter], a one-question bubbletea program built on bubbles/textinput,
// or [LinePrompter] when the terminal is not interactive.
//
// Each view shows its own keys (enter or m to migrate, esc, y/n, r, q) through charmbracelet/bubbles/help. Cursor movement and filtering are left to the list.
package ui
