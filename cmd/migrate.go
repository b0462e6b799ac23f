package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/plbridge/internal/models"
	"github.com/desertthunder/plbridge/internal/services"
	"github.com/desertthunder/plbridge/internal/shared"
	"github.com/desertthunder/plbridge/internal/tasks"
)

// Migrate logs in to both services and copies the selected playlists.
func (r *Runner) Migrate(ctx context.Context, cmd *cli.Command) error {
	opts := tasks.Options{
		WriteDelay: r.config.Timing.WriteDelay,
		Playlists:  cmd.StringSlice("playlist"),
		Limit:      cmd.Int("limit"),
		DryRun:     cmd.Bool("dry-run") || r.config.Migration.DryRun,
	}
	if opts.Limit < 0 {
		return fmt.Errorf("%w: --limit cannot be negative", shared.ErrInvalidArgument)
	}

	r.logger.Info("starting migration", "playlists", opts.Playlists, "limit", opts.Limit, "dry_run", opts.DryRun)

	source, closeSource, err := r.openSource(ctx)
	if err != nil {
		return err
	}
	defer closeSource()

	dest, closeDest, err := r.openDestination(ctx)
	if err != nil {
		return err
	}
	defer closeDest()

	engine := tasks.NewPlaylistEngine(source, dest, r.logger, opts)
	results, runErr := r.runWithProgress(ctx, engine, !cmd.Bool("json"))

	if cmd.Bool("json") {
		if err := r.writeJSON(results, true); err != nil {
			return err
		}
	} else {
		r.writeSummary(results)
	}

	if cmd.Bool("open") {
		r.openResults(results)
	}
	return runErr
}

// runWithProgress runs engine, printing progress updates as they arrive when show is set.
func (r *Runner) runWithProgress(ctx context.Context, engine tasks.SyncEngine, show bool) ([]*tasks.MigrationResult, error) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			if show {
				r.printProgress(update)
			}
		}
	}()

	results, err := engine.Run(ctx, progressCh)
	close(progressCh)
	<-done
	return results, err
}

func (r *Runner) printProgress(update tasks.ProgressUpdate) {
	switch update.Phase {
	case tasks.FetchPlaylists:
		r.writePlain("📥 %s\n", update.Message)
	case tasks.FetchTracks:
		r.writePlain("\n🎵 %s\n", update.Message)
	case tasks.CreatePlaylist:
		r.writePlain("📝 %s\n", update.Message)
	case tasks.AddTracks:
		if _, ok := update.Data.(models.Attachment); ok {
			r.writePlain("   %s\n", update.Message)
		}
	case tasks.PlaylistDone:
		r.writePlain("✓ %s\n", update.Message)
	}
}

func (r *Runner) writeSummary(results []*tasks.MigrationResult) {
	r.writePlain("\n")
	r.writePlainHeader("Migration Complete")

	var added, searchOnly, failed int
	for _, res := range results {
		added += res.Added
		searchOnly += res.SearchOnly
		failed += res.Failed

		dest := res.DestinationID
		if res.Sentinel {
			dest = "not created, search only"
		}
		r.writePlain("%s → %s: %d/%d added\n", res.Playlist.Name, dest, res.Added, len(res.Tracks))
	}

	r.writePlain("\nPlaylists: %d\n", len(results))
	r.writePlain("Added: %d, search only: %d, failed: %d\n", added, searchOnly, failed)

	if failed == 0 {
		return
	}
	r.writePlainln("Tracks that could not be added:")
	for _, res := range results {
		for _, att := range res.Attachments {
			if !att.Success {
				r.writePlain("  - [%s] %s (%s)\n", res.Playlist.Name, att.Track.Query(), att.Status)
			}
		}
	}
}

func (r *Runner) openResults(results []*tasks.MigrationResult) {
	for _, res := range results {
		if res.Sentinel || res.DestinationID == "" {
			continue
		}
		if err := shared.OpenBrowser(services.PlaylistURL(res.DestinationID)); err != nil {
			r.logger.Warn("could not open playlist", "playlist", res.Playlist.Name, "error", err)
		}
	}
}
