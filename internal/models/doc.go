// Package models defines the records plbridge scrapes from the source UI and the outcomes it
// reports for the destination UI.
//
// All records are transient and live only for the duration of a run:
//   - [Playlist] : a playlist row scraped from the source library
//   - [Track] : a track row scraped from a source playlist page
//   - [Attachment] : the outcome of searching for one track and saving it to a destination playlist
//   - [PlaylistExport] : a playlist and its tracks, snapshotted for export
//
// Fields are best-effort extractions from rendered UI text and may be empty.
package models
