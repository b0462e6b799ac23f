package tasks

import (
	"fmt"

	"github.com/desertthunder/plbridge/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchPlaylists Phase = iota
	FetchTracks
	CreatePlaylist
	AddTracks
	PlaylistDone
	ExportPlaylist
)

func (p Phase) String() string {
	switch p {
	case FetchPlaylists:
		return "fetch_playlists"
	case FetchTracks:
		return "fetch_tracks"
	case CreatePlaylist:
		return "create_playlist"
	case AddTracks:
		return "add_tracks"
	case PlaylistDone:
		return "playlist_done"
	case ExportPlaylist:
		return "export_playlist"
	default:
		return ""
	}
}

func fetchPlaylistsUpdate(source string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Fetching playlists from %s...", source),
	}
}

func foundPlaylistsUpdate(playlists []models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d playlists", len(playlists)),
		Data:    playlists,
	}
}

func fetchTracksUpdate(step, total int, p models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching tracks: %s...", step, total, p.Name),
	}
}

func createPlaylistUpdate(p models.Playlist, id string) ProgressUpdate {
	msg := fmt.Sprintf("Playlist created: %s (ID: %s)", p.Name, id)
	if id == "" {
		msg = fmt.Sprintf("Creating playlist: %s...", p.Name)
	}
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: msg,
	}
}

func addTrackUpdate(step, total int, tr models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, trackLabel(tr)),
	}
}

func trackResultUpdate(step, total int, att models.Attachment) ProgressUpdate {
	mark := "✓"
	if !att.Success {
		mark = "✗"
	}
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s (%s)", step, total, mark, trackLabel(att.Track), att.Status),
		Data:    att,
	}
}

func playlistDoneUpdate(step, total int, res *MigrationResult) ProgressUpdate {
	return ProgressUpdate{
		Phase: PlaylistDone,
		Step:  step,
		Total: total,
		Message: fmt.Sprintf("[%d/%d] Completed %s: %d added, %d search only, %d failed",
			step, total, res.Playlist.Name, res.Added, res.SearchOnly, res.Failed),
		Data: res,
	}
}

func exportingPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}

func trackLabel(t models.Track) string {
	if t.Artists == "" {
		return t.Name
	}
	return t.Name + " - " + t.Artists
}
