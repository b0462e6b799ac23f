package models

import (
	"strings"
	"time"
)

// Playlist is a playlist row scraped from the source library.
type Playlist struct {
	Name      string `json:"name"`
	SourceURL string `json:"source_url"`
}

// Track is a track row scraped from a source playlist page.
//
// Artists holds every credited artist joined with [ArtistSeparator].
type Track struct {
	Name    string `json:"name"`
	Artists string `json:"artists"`
}

// ArtistSeparator joins multiple artist names in [Track.Artists].
const ArtistSeparator = ", "

// Query returns the destination search query for the track: name followed by artists.
func (t Track) Query() string {
	return strings.TrimSpace(t.Name + " " + t.Artists)
}

// AttachStatus describes how far an attachment attempt got.
type AttachStatus string

const (
	StatusAdded        AttachStatus = "added"          // saved to the playlist through the dialog
	StatusSearchOnly   AttachStatus = "search_only"    // searched against the sentinel playlist, nothing saved
	StatusNoSaveButton AttachStatus = "no_save_button" // no save affordance matched any heuristic
	StatusNoDialog     AttachStatus = "no_dialog"      // save clicked but the selection dialog never appeared
	StatusNoEntry      AttachStatus = "no_entry"       // dialog appeared without a usable entry
	StatusFailed       AttachStatus = "failed"         // unexpected failure while interacting
)

// Attachment is the outcome of attaching one [Track] to a destination playlist.
type Attachment struct {
	Track Track `json:"track"`
	// Success is the boolean result of the attempt. It is true for search-only attempts.
	Success bool `json:"success"`
	// Attached reports whether the track was actually saved.
	Attached bool         `json:"attached"`
	Status   AttachStatus `json:"status"`
	// Entry is the dialog entry title that was clicked.
	Entry string `json:"entry,omitempty"`
	// Assumed is set when the entry was picked by falling back to the first one.
	Assumed bool `json:"assumed,omitempty"`
}

// PlaylistExport is a scraped playlist together with its tracks, as written by exports.
type PlaylistExport struct {
	Playlist   Playlist  `json:"playlist"`
	Tracks     []Track   `json:"tracks"`
	ExportedAt time.Time `json:"exported_at"`
}
