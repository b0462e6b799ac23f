package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/plbridge/internal/browser"
	"github.com/desertthunder/plbridge/internal/locate"
	"github.com/desertthunder/plbridge/internal/models"
	"github.com/desertthunder/plbridge/internal/shared"
)

const (
	SpotifyHomeURL    = "https://open.spotify.com"
	SpotifyLibraryURL = "https://open.spotify.com/collection/playlists"
)

// SpotifyScraper reads playlists and tracks from the Spotify web player.
type SpotifyScraper struct {
	driver
}

// NewSpotifyScraper returns a scraper driving s, which must already be logged in.
func NewSpotifyScraper(s browser.Session, opts Opts) *SpotifyScraper {
	return &SpotifyScraper{driver: newDriver(s, opts, "spotify")}
}

func (s *SpotifyScraper) Name() string { return "Spotify" }

func playlistRowPatterns() []locate.Query {
	return []locate.Query{
		locate.CSS("grid-container rows", spotifyGridRows),
		locate.CSS("main-gridContainer rows", spotifyMainGridRows),
		locate.CSS("playlist-tracklist-container", spotifyTracklistBox),
		locate.CSS("GlueCard", spotifyGlueCards),
	}
}

func playlistNamePatterns() []locate.Query {
	return []locate.Query{
		locate.CSS("playlist-name", spotifyPlaylistName),
		locate.CSS("playlist-title", spotifyPlaylistTitle),
		locate.CSS("rowTitle link", spotifyRowTitleLink),
	}
}

func trackRowStrategies() []locate.Strategy {
	return []locate.Strategy{
		locate.CSS("tracklist-row testid", spotifyTrackRow),
		locate.CSS("tracklist-row class", spotifyTrackRowClass),
		locate.CSS("TrackListRow class", spotifyTrackListRow),
	}
}

func trackNamePatterns() []locate.Query {
	return []locate.Query{
		locate.CSS("internal-track-link", spotifyTrackLink),
		locate.CSS("tracklist-name", spotifyTrackNameDiv),
		locate.CSS("track-name", spotifyTrackName),
	}
}

func artistStrategies() []locate.Strategy {
	return []locate.Strategy{
		locate.CSS("album-artist-link", spotifyArtistLink),
		locate.CSS("artist-name", spotifyArtistName),
		locate.CSS("artist links", spotifyArtistAnyLn),
	}
}

// acceptCookies dismisses the consent banner when one shows up.
func (s *SpotifyScraper) acceptCookies(ctx context.Context) {
	res := s.first(ctx, nil, "cookie banner", locate.XPath("accept button", spotifyCookieAccept).Within(s.timing.ShortWait))
	if !res.Found {
		return
	}
	if err := s.session.Click(ctx, res.Head()); err != nil {
		s.logger.Debug("could not dismiss cookie banner", "error", err)
		return
	}
	s.logger.Debug("accepted cookies")
}

// Playlists scrapes the user's playlist library.
//
// Row patterns are tried in order and the first pattern that yields playlists wins. When none
// does, every playlist link on the page is collected instead. An empty result is not an error;
// it is accompanied by a diagnostic capture.
func (s *SpotifyScraper) Playlists(ctx context.Context) ([]models.Playlist, error) {
	if err := s.session.Navigate(ctx, SpotifyLibraryURL); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSessionUnavailable, err)
	}
	if err := s.pause(ctx, s.timing.Settle); err != nil {
		return nil, err
	}
	s.acceptCookies(ctx)

	if res := s.first(ctx, nil, "library content", locate.CSS("content", spotifyContent).Within(s.timing.ContentWait)); !res.Found {
		s.logger.Warn("library content did not appear, continuing anyway")
	}

	scroller := locate.Scroller{MaxAttempts: s.timing.PlaylistScrolls, Delay: s.timing.ScrollDelay, Sleep: s.sleep}
	n, err := scroller.Load(ctx, s.session)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("scrolled library", "attempts", n)

	var yields []locate.Yield[models.Playlist]
	for _, q := range playlistRowPatterns() {
		yields = append(yields, locate.Yield[models.Playlist]{
			Name:    q.Name(),
			Extract: func(ctx context.Context) ([]models.Playlist, error) { return s.playlistsFromRows(ctx, q) },
		})
	}
	yields = append(yields, locate.Yield[models.Playlist]{Name: "playlist links", Extract: s.playlistsFromLinks})

	playlists, pattern := locate.FirstYield(ctx, yields...)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(playlists) == 0 {
		s.logger.Warn("no playlists found")
		s.capture.Capture(ctx, s.session, "spotify_debug", false)
		return []models.Playlist{}, nil
	}

	s.logger.Info("found playlists", "count", len(playlists), "pattern", pattern)
	return playlists, nil
}

func (s *SpotifyScraper) playlistsFromRows(ctx context.Context, rows locate.Query) ([]models.Playlist, error) {
	res := s.first(ctx, nil, "playlist rows", rows)
	if !res.Found {
		return nil, nil
	}

	var playlists []models.Playlist
	for _, row := range res.Items {
		if p, ok := s.playlistFromRow(ctx, row); ok {
			playlists = append(playlists, p)
		}
	}
	return playlists, nil
}

// playlistFromRow takes the first name pattern that gives both a name and a link.
func (s *SpotifyScraper) playlistFromRow(ctx context.Context, row browser.Element) (models.Playlist, bool) {
	for _, q := range playlistNamePatterns() {
		res := s.first(ctx, row, "playlist name", q)
		if !res.Found {
			continue
		}
		name := s.text(ctx, res.Head())
		href := s.attr(ctx, res.Head(), "href")
		if name != "" && href != "" {
			return models.Playlist{Name: name, SourceURL: s.resolve(ctx, href)}, true
		}
	}
	return models.Playlist{}, false
}

// playlistsFromLinks collects every playlist link on the page, deduplicated by URL.
func (s *SpotifyScraper) playlistsFromLinks(ctx context.Context) ([]models.Playlist, error) {
	res := s.first(ctx, nil, "playlist links", locate.XPath("playlist href", spotifyPlaylistLinks))
	if !res.Found {
		return nil, nil
	}

	seen := map[string]bool{}
	var playlists []models.Playlist
	for _, link := range res.Items {
		href := s.attr(ctx, link, "href")
		if href == "" {
			continue
		}
		u := s.resolve(ctx, href)
		if seen[u] {
			continue
		}
		seen[u] = true

		name := s.text(ctx, link)
		if name == "" {
			name = fmt.Sprintf("Playlist %d", len(playlists)+1)
		}
		playlists = append(playlists, models.Playlist{Name: name, SourceURL: u})
	}
	return playlists, nil
}

// Tracks scrapes the tracks of one playlist page.
//
// Rows without a resolvable name are skipped. Artists may be empty.
func (s *SpotifyScraper) Tracks(ctx context.Context, playlist models.Playlist) ([]models.Track, error) {
	logger := s.logger.With("playlist", playlist.Name)

	if err := s.session.Navigate(ctx, playlist.SourceURL); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSessionUnavailable, err)
	}
	if err := s.pause(ctx, s.timing.TrackSettle); err != nil {
		return nil, err
	}
	s.acceptCookies(ctx)

	scroller := locate.Scroller{MaxAttempts: s.timing.TrackScrolls, Delay: s.timing.ScrollDelay, Sleep: s.sleep}
	if _, err := scroller.Load(ctx, s.session); err != nil {
		return nil, err
	}

	var rowsSeen int
	var yields []locate.Yield[models.Track]
	for _, strategy := range trackRowStrategies() {
		yields = append(yields, locate.Yield[models.Track]{
			Name: strategy.Name(),
			Extract: func(ctx context.Context) ([]models.Track, error) {
				tracks, rows := s.tracksFromRows(ctx, strategy)
				rowsSeen += rows
				return tracks, nil
			},
		})
	}

	tracks, pattern := locate.FirstYield(ctx, yields...)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(tracks) == 0 {
		logger.Warn("no tracks found", "rows", rowsSeen)
		s.capture.Capture(ctx, s.session, "spotify_tracks_debug", true)
		return []models.Track{}, nil
	}

	logger.Info("found tracks", "count", len(tracks), "pattern", pattern)
	return tracks, nil
}

// tracksFromRows returns the named tracks among the rows matched by rows, and how many rows matched.
func (s *SpotifyScraper) tracksFromRows(ctx context.Context, rows locate.Strategy) ([]models.Track, int) {
	res := s.first(ctx, nil, "track rows", rows)
	var tracks []models.Track
	for _, row := range res.Items {
		if t, ok := s.trackFromRow(ctx, row); ok {
			tracks = append(tracks, t)
		}
	}
	return tracks, len(res.Items)
}

func (s *SpotifyScraper) trackFromRow(ctx context.Context, row browser.Element) (models.Track, bool) {
	var name string
	for _, q := range trackNamePatterns() {
		res := s.first(ctx, row, "track name", q)
		if !res.Found {
			continue
		}
		if name = s.text(ctx, res.Head()); name != "" {
			break
		}
	}
	if name == "" {
		return models.Track{}, false
	}

	var artists []string
	if res := s.first(ctx, row, "artists", artistStrategies()...); res.Found {
		for _, el := range res.Items {
			if a := s.text(ctx, el); a != "" {
				artists = append(artists, a)
			}
		}
	}

	return models.Track{Name: name, Artists: strings.Join(artists, models.ArtistSeparator)}, true
}
