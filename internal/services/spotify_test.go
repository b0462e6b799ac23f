package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/plbridge/internal/browser"
	"github.com/desertthunder/plbridge/internal/models"
	"github.com/desertthunder/plbridge/internal/shared"
)

const (
	gridLibrary = `<div class="contentSpacing"><div data-testid="grid-container">
  <div role="row"><a data-testid="playlist-name" href="/playlist/1">Road Trip</a></div>
  <div role="row"><a data-testid="playlist-name" href="/playlist/2">Focus</a></div>
  <div role="row"><a data-testid="playlist-name" href="/playlist/3"></a></div>
</div></div>`

	// grid rows exist but yield nothing, so the GlueCard pattern must win
	glueLibrary = `<div data-testid="grid-container"><div role="row"><span>Loading</span></div></div>
<div class="Card GlueCard-xyz"><a class="playlist-title-link" href="https://open.spotify.com/playlist/9">Gym</a></div>`

	linkLibrary = `<nav>
  <a href="/playlist/7">Late Night</a>
  <a href="/playlist/7">Late Night</a>
  <a href="/playlist/8"><img alt=""></a>
  <a href="/album/1">Not a playlist</a>
</nav>`

	trackPage = `<div data-testid="playlist-tracklist">
  <div data-testid="tracklist-row">
    <a data-testid="internal-track-link" href="/track/1">Song A</a>
    <span data-testid="tracklist-row-artists-album-artist-link">Artist X</span>
    <span data-testid="tracklist-row-artists-album-artist-link">Artist Y</span>
  </div>
  <div data-testid="tracklist-row">
    <a data-testid="internal-track-link" href="/track/2"></a>
    <div class="tracklist-name">Song B</div>
  </div>
  <div data-testid="tracklist-row"><span>no name here</span></div>
  <div data-testid="tracklist-row">
    <div class="track-name">Song C</div>
    <div class="artist-block"><a href="/artist/z">Artist Z</a></div>
  </div>
</div>`
)

func librarySession(body string) *browser.DocumentSession {
	return browser.NewDocumentSession().AddPage(SpotifyLibraryURL, page(body))
}

func TestSpotifyPlaylists(t *testing.T) {
	ctx := context.Background()

	t.Run("grid rows", func(t *testing.T) {
		opts, _ := testOpts(t)
		scraper := NewSpotifyScraper(librarySession(gridLibrary), opts)

		got, err := scraper.Playlists(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []models.Playlist{
			{Name: "Road Trip", SourceURL: "https://open.spotify.com/playlist/1"},
			{Name: "Focus", SourceURL: "https://open.spotify.com/playlist/2"},
		}
		if len(got) != len(want) {
			t.Fatalf("expected %d playlists, got %d: %+v", len(want), len(got), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("playlist %d: expected %+v, got %+v", i, want[i], got[i])
			}
		}
	})

	t.Run("first pattern that yields playlists wins", func(t *testing.T) {
		opts, _ := testOpts(t)
		got, err := NewSpotifyScraper(librarySession(glueLibrary), opts).Playlists(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].Name != "Gym" || got[0].SourceURL != "https://open.spotify.com/playlist/9" {
			t.Errorf("expected the GlueCard playlist, got %+v", got)
		}
	})

	t.Run("falls back to playlist links", func(t *testing.T) {
		opts, _ := testOpts(t)
		got, err := NewSpotifyScraper(librarySession(linkLibrary), opts).Playlists(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 deduplicated playlists, got %+v", got)
		}
		if got[0].Name != "Late Night" || got[0].SourceURL != "https://open.spotify.com/playlist/7" {
			t.Errorf("unexpected first playlist: %+v", got[0])
		}
		if got[1].Name != "Playlist 2" {
			t.Errorf("expected placeholder name for textless link, got %q", got[1].Name)
		}
	})

	t.Run("nothing found returns empty and captures diagnostics", func(t *testing.T) {
		opts, dir := testOpts(t)
		got, err := NewSpotifyScraper(librarySession(`<p>Something went wrong</p>`), opts).Playlists(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", got)
		}
		if _, err := os.Stat(filepath.Join(dir, "spotify_debug.png")); err != nil {
			t.Errorf("expected diagnostic screenshot: %v", err)
		}
	})

	t.Run("dismisses the cookie banner", func(t *testing.T) {
		opts, _ := testOpts(t)
		d := librarySession(`<div id="onetrust"><button>Accept Cookies</button></div>` + gridLibrary)
		accepted := false
		d.HandleClick("#onetrust button", func(*browser.DocumentSession, browser.Element) error {
			accepted = true
			return nil
		})

		if _, err := NewSpotifyScraper(d, opts).Playlists(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !accepted {
			t.Error("expected cookie banner to be accepted")
		}
	})

	t.Run("closed session is an error", func(t *testing.T) {
		opts, _ := testOpts(t)
		d := librarySession(gridLibrary)
		_ = d.Close()
		if _, err := NewSpotifyScraper(d, opts).Playlists(ctx); !errors.Is(err, shared.ErrSessionUnavailable) {
			t.Errorf("expected ErrSessionUnavailable, got %v", err)
		}
	})
}

func TestSpotifyTracks(t *testing.T) {
	ctx := context.Background()
	playlist := models.Playlist{Name: "Road Trip", SourceURL: "https://open.spotify.com/playlist/1"}

	t.Run("extracts named rows only", func(t *testing.T) {
		opts, _ := testOpts(t)
		d := browser.NewDocumentSession().AddPage(playlist.SourceURL, page(trackPage))

		got, err := NewSpotifyScraper(d, opts).Tracks(ctx, playlist)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []models.Track{
			{Name: "Song A", Artists: "Artist X, Artist Y"},
			{Name: "Song B", Artists: ""},
			{Name: "Song C", Artists: "Artist Z"},
		}
		if len(got) != len(want) {
			t.Fatalf("expected %d tracks, got %+v", len(want), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("track %d: expected %+v, got %+v", i, want[i], got[i])
			}
		}
	})

	t.Run("every track has a name", func(t *testing.T) {
		opts, _ := testOpts(t)
		d := browser.NewDocumentSession().AddPage(playlist.SourceURL, page(trackPage))
		got, _ := NewSpotifyScraper(d, opts).Tracks(ctx, playlist)
		for _, tr := range got {
			if strings.TrimSpace(tr.Name) == "" {
				t.Errorf("emitted a track without a name: %+v", tr)
			}
		}
	})

	t.Run("falls back to class based rows", func(t *testing.T) {
		opts, _ := testOpts(t)
		body := `<div class="main-tracklist-row-x"><div class="track-name">Only Song</div><span class="artist-name">Solo</span></div>`
		d := browser.NewDocumentSession().AddPage(playlist.SourceURL, page(body))

		got, err := NewSpotifyScraper(d, opts).Tracks(ctx, playlist)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0] != (models.Track{Name: "Only Song", Artists: "Solo"}) {
			t.Errorf("unexpected tracks: %+v", got)
		}
	})

	t.Run("rows without names fall through to the next pattern", func(t *testing.T) {
		opts, _ := testOpts(t)
		body := `<div data-testid="tracklist-row"><span>#</span></div>
<div class="TrackListRow-abc">
  <a data-testid="internal-track-link" href="/track/1">Song A</a>
  <span data-testid="tracklist-row-artists-album-artist-link">Artist X</span>
</div>`
		d := browser.NewDocumentSession().AddPage(playlist.SourceURL, page(body))

		got, err := NewSpotifyScraper(d, opts).Tracks(ctx, playlist)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0] != (models.Track{Name: "Song A", Artists: "Artist X"}) {
			t.Errorf("expected Song A from the TrackListRow rows, got %+v", got)
		}
	})

	t.Run("no tracks captures screenshot and markup", func(t *testing.T) {
		opts, dir := testOpts(t)
		d := browser.NewDocumentSession().AddPage(playlist.SourceURL, page(`<p>This playlist is empty</p>`))

		got, err := NewSpotifyScraper(d, opts).Tracks(ctx, playlist)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected no tracks, got %+v", got)
		}
		for _, f := range []string{"spotify_tracks_debug.png", "spotify_tracks_debug.html"} {
			if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
				t.Errorf("expected %s: %v", f, err)
			}
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		opts, _ := testOpts(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		d := browser.NewDocumentSession().AddPage(playlist.SourceURL, page(trackPage))
		if _, err := NewSpotifyScraper(d, opts).Tracks(cctx, playlist); err == nil {
			t.Error("expected an error for a cancelled context")
		}
	})
}
