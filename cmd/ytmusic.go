package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/plbridge/internal/models"
	"github.com/desertthunder/plbridge/internal/services"
	"github.com/desertthunder/plbridge/internal/shared"
)

type createResult struct {
	Name     string `json:"name"`
	ID       string `json:"id"`
	Sentinel bool   `json:"sentinel"`
	URL      string `json:"url,omitempty"`
}

// YTMusicCreate creates a new playlist on YouTube Music.
func (r *Runner) YTMusicCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	dest, closeDest, err := r.openDestination(ctx)
	if err != nil {
		return err
	}
	defer closeDest()

	r.logger.Info("creating youtube music playlist", "name", name)
	id, err := dest.CreatePlaylist(ctx, name)
	if err != nil {
		return err
	}

	res := createResult{Name: name, ID: id, Sentinel: id == services.SentinelPlaylistID}
	if !res.Sentinel {
		res.URL = services.PlaylistURL(id)
	}

	if cmd.Bool("json") {
		return r.writeJSON(res, true)
	}

	if res.Sentinel {
		r.writePlain("⚠ Playlist %q could not be confirmed; tracks would only be searched\n", name)
		return nil
	}
	r.writePlain("✓ Playlist created: %s\n", name)
	r.writePlain("ID: %s\n", id)
	r.writePlain("URL: %s\n", res.URL)
	return nil
}

// YTMusicAdd searches for one track and saves it to a playlist through the save dialog.
func (r *Runner) YTMusicAdd(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.StringArg("playlist-id")
	track := models.Track{Name: cmd.StringArg("name"), Artists: cmd.StringArg("artists")}
	if playlistID == "" || track.Name == "" {
		return fmt.Errorf("%w: playlist ID and track name", shared.ErrMissingArgument)
	}

	playlistName := cmd.String("playlist-name")
	if playlistName == "" && playlistID != services.SentinelPlaylistID {
		r.logger.Warn("no --playlist-name given, the save dialog entry cannot be matched by title")
	}

	dest, closeDest, err := r.openDestination(ctx)
	if err != nil {
		return err
	}
	defer closeDest()

	att := dest.AddTrack(ctx, playlistID, playlistName, track)
	if err := ctx.Err(); err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(att, true)
	}

	switch {
	case !att.Success:
		r.writePlain("✗ %s: %s\n", track.Query(), att.Status)
	case !att.Attached:
		r.writePlain("✓ Searched %s (playlist not resolved, nothing saved)\n", track.Query())
	case att.Assumed:
		r.writePlain("✓ Added %s to %s (first entry assumed)\n", track.Query(), att.Entry)
	default:
		r.writePlain("✓ Added %s to %s\n", track.Query(), att.Entry)
	}
	return nil
}
