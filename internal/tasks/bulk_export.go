package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/plbridge/internal/formatter"
	"github.com/desertthunder/plbridge/internal/models"
	"github.com/desertthunder/plbridge/internal/shared"
)

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Format     formatter.Format // Export format: json, csv, markdown, txt
	OutputDir  string           // Base output directory (default: spotify_export_{epoch})
	NumWorkers int              // Concurrent file writers (default: 2)
	RateLimit  float64          // Source page loads per second (default: 1)
}

// PlaylistExportJob is one scraped playlist waiting to be written.
type PlaylistExportJob struct {
	Position int
	Export   *models.PlaylistExport
}

// PlaylistExportResult is the outcome of exporting one playlist.
type PlaylistExportResult struct {
	Position int
	Playlist models.Playlist
	Tracks   int
	Files    []string
	Success  bool
	Error    error
}

// BulkExportResult summarizes a bulk export.
type BulkExportResult struct {
	TotalPlaylists    int
	SuccessfulExports int
	FailedExports     int
	OutputDirectory   string
	ManifestPath      string
	Results           []PlaylistExportResult
}

// BulkExport snapshots the selected source playlists, tracks included, into files.
//
// Scraping is sequential since the source is a single browser session; a pool of workers writes
// the files while the next playlist loads. A manifest summarizing the export is written last.
func (e *PlaylistEngine) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, opts BulkExportOpts) (*BulkExportResult, error) {
	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if _, err := formatter.ParseFormat(string(opts.Format)); err != nil {
		return nil, err
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("spotify_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 2
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 1.0
	}

	playlists, err := e.Playlists(ctx, prog)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalPlaylists:  len(playlists),
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlaylistExportResult, 0, len(playlists)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	total := len(playlists)

	jobs := make(chan PlaylistExportJob, total)
	results := make(chan PlaylistExportResult, total)

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	// The producer reports fetch failures on results itself, so it counts as a sender.
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobs)
		for i, p := range playlists {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			e.sendProgress(prog, exportingPlaylistUpdate(i+1, total, p.Name))
			tracks, err := e.source.Tracks(ctx, p)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				results <- PlaylistExportResult{
					Position: i + 1,
					Playlist: p,
					Error:    fmt.Errorf("failed to fetch tracks: %w", err),
				}
				continue
			}

			jobs <- PlaylistExportJob{
				Position: i + 1,
				Export:   &models.PlaylistExport{Playlist: p, Tracks: tracks, ExportedAt: time.Now().UTC()},
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, total, res.Playlist.Name, len(res.Files)))
		} else {
			result.FailedExports++
			e.logger.Warn("export failed", "playlist", res.Playlist.Name, "error", res.Error)
			e.sendProgress(prog, exportFailedUpdate(completed, total, res.Playlist.Name, res.Error))
		}
	}

	slices.SortFunc(result.Results, func(a, b PlaylistExportResult) int { return a.Position - b.Position })

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteManifest(result.manifest(opts.Format), manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker is a worker goroutine that writes playlists from the jobs channel.
func (e *PlaylistEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan PlaylistExportJob,
	results chan<- PlaylistExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			return
		}
		results <- exportSinglePlaylist(job, opts)
	}
}

// exportSinglePlaylist writes one playlist, prefixing its file names with its position so that
// playlists sharing a name do not collide.
func exportSinglePlaylist(j PlaylistExportJob, opts BulkExportOpts) PlaylistExportResult {
	result := PlaylistExportResult{
		Position: j.Position,
		Playlist: j.Export.Playlist,
		Tracks:   len(j.Export.Tracks),
	}

	stem := fmt.Sprintf("%03d_%s", j.Position, formatter.Slug(j.Export.Playlist.Name))
	files, err := formatter.WriteExport(j.Export, opts.Format, opts.OutputDir, stem)
	if err != nil {
		result.Error = fmt.Errorf("%s export failed: %w", opts.Format, err)
		return result
	}

	result.Files = files
	result.Success = true
	return result
}

func (r *BulkExportResult) manifest(format formatter.Format) *formatter.Manifest {
	m := &formatter.Manifest{
		RunID:      shared.ShortID(),
		Format:     format,
		OutputDir:  r.OutputDirectory,
		CreatedAt:  time.Now().UTC(),
		Total:      r.TotalPlaylists,
		Successful: r.SuccessfulExports,
		Failed:     r.FailedExports,
		Entries:    make([]formatter.ManifestEntry, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		entry := formatter.ManifestEntry{Playlist: res.Playlist, Tracks: res.Tracks, Files: res.Files}
		if res.Error != nil {
			entry.Error = res.Error.Error()
		}
		m.Entries = append(m.Entries, entry)
	}
	return m
}
