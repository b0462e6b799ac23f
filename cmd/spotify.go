package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/plbridge/internal/formatter"
	"github.com/desertthunder/plbridge/internal/models"
	"github.com/desertthunder/plbridge/internal/shared"
	"github.com/desertthunder/plbridge/internal/tasks"
)

// SpotifyPlaylists lists the playlists in the Spotify library.
func (r *Runner) SpotifyPlaylists(ctx context.Context, cmd *cli.Command) error {
	exportPath := cmd.String("export")
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	source, closeSource, err := r.openSource(ctx)
	if err != nil {
		return err
	}
	defer closeSource()

	r.logger.Info("listing spotify playlists")
	playlists, err := source.Playlists(ctx)
	if err != nil {
		return err
	}

	if exportPath != "" {
		data, err := formatter.RenderPlaylists(playlists, format)
		if err != nil {
			return err
		}
		if err := os.WriteFile(exportPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", exportPath, err)
		}
		r.logger.Info("playlists exported", "path", exportPath, "format", format)
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		r.writePlain("%d. %s\n", i+1, p.Name)
		r.writePlain("   %s\n", p.SourceURL)
	}
	return nil
}

// SpotifyTracks lists the tracks of the playlist at the given URL.
func (r *Runner) SpotifyTracks(ctx context.Context, cmd *cli.Command) error {
	url := cmd.StringArg("url")
	if url == "" {
		return fmt.Errorf("%w: playlist URL", shared.ErrMissingArgument)
	}

	source, closeSource, err := r.openSource(ctx)
	if err != nil {
		return err
	}
	defer closeSource()

	r.logger.Info("listing spotify tracks", "url", url)
	tracks, err := source.Tracks(ctx, models.Playlist{SourceURL: url})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d tracks:\n\n", len(tracks))
	for i, t := range tracks {
		if t.Artists == "" {
			r.writePlain("%d. %s\n", i+1, t.Name)
			continue
		}
		r.writePlain("%d. %s - %s\n", i+1, t.Artists, t.Name)
	}
	return nil
}

// SpotifyExport writes every selected playlist, tracks included, to files plus a manifest.
func (r *Runner) SpotifyExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	source, closeSource, err := r.openSource(ctx)
	if err != nil {
		return err
	}
	defer closeSource()

	engine := tasks.NewPlaylistEngine(source, nil, r.logger, tasks.Options{
		Playlists: cmd.StringSlice("playlist"),
		Limit:     cmd.Int("limit"),
	})

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := engine.BulkExport(ctx, progressCh, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("dir"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	})
	close(progressCh)
	<-done

	if result != nil {
		r.writePlain("\n")
		r.writePlainHeader("Export Complete")
		r.writePlain("Directory: %s\n", result.OutputDirectory)
		r.writePlain("Exported: %d/%d\n", result.SuccessfulExports, result.TotalPlaylists)
		if result.ManifestPath != "" {
			r.writePlain("Manifest: %s\n", result.ManifestPath)
		}
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  ✗ %s: %v\n", res.Playlist.Name, res.Error)
			}
		}
	}
	return err
}
