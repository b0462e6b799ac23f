// package tasks implements the playlist migration between a source and a destination service.
//
// The core abstraction is SyncEngine, which enumerates source playlists and replays each one at the destination.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/plbridge/internal/models"
	"github.com/desertthunder/plbridge/internal/services"
	"github.com/desertthunder/plbridge/internal/shared"
)

// Options configures which playlists a run touches and how it paces destination writes.
type Options struct {
	WriteDelay time.Duration // Minimum gap between destination writes (0 disables pacing)
	Playlists  []string      // Source playlist names to migrate; empty means all
	Limit      int           // Maximum number of playlists; 0 means no limit
	DryRun     bool          // Skip playlist creation and only search for tracks
}

// MigrationResult contains everything one playlist's migration produced.
type MigrationResult struct {
	Playlist      models.Playlist     `json:"playlist"`
	DestinationID string              `json:"destination_id"`
	Sentinel      bool                `json:"sentinel"` // Destination playlist unresolved; tracks were searched only
	Tracks        []models.Track      `json:"tracks"`
	Attachments   []models.Attachment `json:"attachments"`
	Added         int                 `json:"added"`
	SearchOnly    int                 `json:"search_only"`
	Failed        int                 `json:"failed"`
}

func (r *MigrationResult) record(att models.Attachment) {
	r.Attachments = append(r.Attachments, att)
	switch {
	case !att.Success:
		r.Failed++
	case att.Attached:
		r.Added++
	default:
		r.SearchOnly++
	}
}

// SyncEngine defines the migration operations.
type SyncEngine interface {
	// Playlists enumerates the source playlists selected for migration.
	Playlists(ctx context.Context, progress chan<- ProgressUpdate) ([]models.Playlist, error)

	// MigratePlaylist replays one source playlist at the destination.
	MigratePlaylist(ctx context.Context, progress chan<- ProgressUpdate, playlist models.Playlist) (*MigrationResult, error)

	// Run migrates every selected playlist in order.
	Run(ctx context.Context, progress chan<- ProgressUpdate) ([]*MigrationResult, error)
}

// PlaylistEngine implements SyncEngine on top of a [services.Source] and a [services.Destination].
//
// Execution is sequential: each service is backed by a single browser session.
type PlaylistEngine struct {
	source  services.Source
	dest    services.Destination
	logger  *log.Logger
	opts    Options
	limiter *rate.Limiter
}

// NewPlaylistEngine creates a new PlaylistEngine with the provided services.
func NewPlaylistEngine(source services.Source, dest services.Destination, logger *log.Logger, opts Options) *PlaylistEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	limit := rate.Inf
	if opts.WriteDelay > 0 {
		limit = rate.Every(opts.WriteDelay)
	}

	return &PlaylistEngine{
		source:  source,
		dest:    dest,
		logger:  logger,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Playlists enumerates source playlists, then applies the name filter and limit.
func (e *PlaylistEngine) Playlists(ctx context.Context, progress chan<- ProgressUpdate) ([]models.Playlist, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: source not initialized", shared.ErrSessionUnavailable)
	}

	e.sendProgress(progress, fetchPlaylistsUpdate(e.source.Name()))
	all, err := e.source.Playlists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}

	selected, err := SelectPlaylists(all, e.opts.Playlists, e.opts.Limit)
	if err != nil {
		return nil, err
	}

	e.logger.Info("playlists selected", "found", len(all), "selected", len(selected))
	e.sendProgress(progress, foundPlaylistsUpdate(selected))
	return selected, nil
}

// SelectPlaylists keeps the playlists named in names (case-insensitive, in source order) and
// truncates to limit.
//
// A name that matches nothing is an [shared.ErrPlaylistNotFound] error.
func SelectPlaylists(all []models.Playlist, names []string, limit int) ([]models.Playlist, error) {
	selected := all
	if len(names) > 0 {
		wanted := make(map[string]bool, len(names))
		for _, n := range names {
			wanted[strings.ToLower(strings.TrimSpace(n))] = false
		}

		selected = make([]models.Playlist, 0, len(names))
		for _, p := range all {
			key := strings.ToLower(strings.TrimSpace(p.Name))
			if _, ok := wanted[key]; ok {
				wanted[key] = true
				selected = append(selected, p)
			}
		}

		for _, n := range names {
			if !wanted[strings.ToLower(strings.TrimSpace(n))] {
				return nil, fmt.Errorf("%w: no playlist named '%s'", shared.ErrPlaylistNotFound, n)
			}
		}
	}

	if limit > 0 && len(selected) > limit {
		selected = selected[:limit]
	}
	return selected, nil
}

// Run migrates every selected playlist.
//
// A playlist whose tracks cannot be fetched, or whose destination cannot be written, ends the
// run: both mean a browser session is gone. Results gathered so far are returned with the error.
func (e *PlaylistEngine) Run(ctx context.Context, progress chan<- ProgressUpdate) ([]*MigrationResult, error) {
	playlists, err := e.Playlists(ctx, progress)
	if err != nil {
		return nil, err
	}

	results := make([]*MigrationResult, 0, len(playlists))
	for i, p := range playlists {
		res, err := e.migrate(ctx, progress, p, i+1, len(playlists))
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// MigratePlaylist fetches the tracks of playlist, creates it at the destination and attaches each track.
func (e *PlaylistEngine) MigratePlaylist(ctx context.Context, progress chan<- ProgressUpdate, playlist models.Playlist) (*MigrationResult, error) {
	return e.migrate(ctx, progress, playlist, 1, 1)
}

func (e *PlaylistEngine) migrate(ctx context.Context, progress chan<- ProgressUpdate, p models.Playlist, step, total int) (*MigrationResult, error) {
	if e.source == nil || e.dest == nil {
		return nil, fmt.Errorf("%w: services not initialized", shared.ErrSessionUnavailable)
	}

	logger := e.logger.With("playlist", p.Name)
	res := &MigrationResult{Playlist: p}

	e.sendProgress(progress, fetchTracksUpdate(step, total, p))
	tracks, err := e.source.Tracks(ctx, p)
	if err != nil {
		return res, fmt.Errorf("failed to fetch tracks for '%s': %w", p.Name, err)
	}
	res.Tracks = tracks
	logger.Info("processing playlist", "tracks", len(tracks))

	id, err := e.create(ctx, progress, p)
	if err != nil {
		return res, err
	}
	res.DestinationID = id
	res.Sentinel = id == services.SentinelPlaylistID

	for i, t := range tracks {
		if err := e.limiter.Wait(ctx); err != nil {
			return res, err
		}

		e.sendProgress(progress, addTrackUpdate(i+1, len(tracks), t))
		att := e.dest.AddTrack(ctx, id, p.Name, t)
		if err := ctx.Err(); err != nil {
			return res, err
		}

		res.record(att)
		e.sendProgress(progress, trackResultUpdate(i+1, len(tracks), att))
	}

	logger.Info("completed playlist", "added", res.Added, "search_only", res.SearchOnly, "failed", res.Failed)
	e.sendProgress(progress, playlistDoneUpdate(step, total, res))
	return res, nil
}

// create returns the destination playlist ID, or the sentinel in dry-run mode.
func (e *PlaylistEngine) create(ctx context.Context, progress chan<- ProgressUpdate, p models.Playlist) (string, error) {
	if e.opts.DryRun {
		e.logger.Info("dry run, not creating playlist", "playlist", p.Name)
		e.sendProgress(progress, createPlaylistUpdate(p, services.SentinelPlaylistID))
		return services.SentinelPlaylistID, nil
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return "", err
	}

	e.sendProgress(progress, createPlaylistUpdate(p, ""))
	id, err := e.dest.CreatePlaylist(ctx, p.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create playlist '%s': %w", p.Name, err)
	}
	if id == "" {
		id = services.SentinelPlaylistID
	}

	e.sendProgress(progress, createPlaylistUpdate(p, id))
	return id, nil
}
