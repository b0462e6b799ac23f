package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/plbridge/internal/browser"
	"github.com/desertthunder/plbridge/internal/locate"
	"github.com/desertthunder/plbridge/internal/models"
)

const (
	YouTubeMusicHomeURL    = "https://music.youtube.com"
	YouTubeMusicLibraryURL = "https://music.youtube.com/library/playlists"
	YouTubeMusicSearchURL  = "https://music.youtube.com/search?q="

	// SentinelPlaylistID stands in for a playlist whose creation could not be confirmed.
	// Tracks added against it are searched for but never saved.
	SentinelPlaylistID = "mock_playlist_id"
)

// YouTubeMusicDriver creates playlists and saves tracks through the YouTube Music web UI.
type YouTubeMusicDriver struct {
	driver
	assumeFirst bool
}

// NewYouTubeMusicDriver returns a driver for s, which must already be logged in.
func NewYouTubeMusicDriver(s browser.Session, opts Opts) *YouTubeMusicDriver {
	return &YouTubeMusicDriver{
		driver:      newDriver(s, opts, "ytmusic"),
		assumeFirst: opts.AssumeFirstEntry,
	}
}

func (y *YouTubeMusicDriver) Name() string { return "YouTube Music" }

// SearchURL returns the YouTube Music search page for query.
func SearchURL(query string) string {
	return YouTubeMusicSearchURL + url.QueryEscape(query)
}

// PlaylistURL returns the YouTube Music page for a playlist ID.
func PlaylistURL(id string) string {
	return YouTubeMusicHomeURL + "/playlist?list=" + url.QueryEscape(id)
}

// PlaylistIDFromURL extracts a playlist ID from a playlist page URL.
//
// It understands both /playlist?list=ID and /browse/VLID. Other URLs yield "".
func PlaylistIDFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if id := u.Query().Get("list"); id != "" {
		return id
	}
	if _, rest, ok := strings.Cut(u.Path, "/browse/VL"); ok {
		id, _, _ := strings.Cut(rest, "/")
		return id
	}
	return ""
}

// CreatePlaylist creates a playlist named name and returns its ID.
//
// When the ID cannot be resolved from the page URL, nor by reopening the library and clicking
// through to the new playlist, it returns [SentinelPlaylistID]. Only cancellation is an error.
func (y *YouTubeMusicDriver) CreatePlaylist(ctx context.Context, name string) (string, error) {
	logger := y.logger.With("playlist", name)

	if err := y.session.Navigate(ctx, YouTubeMusicLibraryURL); err != nil {
		return y.sentinel(ctx, "create_playlist_error", err)
	}
	if err := y.pause(ctx, y.timing.AfterAction); err != nil {
		return "", err
	}

	steps := []struct {
		name    string
		actions []locate.Action
	}{
		{"new playlist", []locate.Action{
			locate.ClickFirst("new playlist button", locate.CSS("new playlist", ytmNewPlaylist).Within(y.timing.ElementWait)),
			locate.RunScript("new playlist script", jsClickNewPlaylist),
		}},
		{"title", []locate.Action{
			locate.FillFirst("title input", name, locate.CSS("title input", ytmTitleInput).Within(y.timing.ShortWait)),
			locate.RunScript("title script", fmt.Sprintf(jsSetTitle, jsString(name))),
			y.fillByLabel("title label scan", "Title", name),
		}},
		{"create", []locate.Action{
			locate.ClickFirst("create button", locate.CSS("create button", ytmCreateButton).Within(y.timing.ShortWait)),
			locate.RunScript("create script", jsClickCreate),
			locate.ClickFirst("create text scan", locate.Where(locate.CSS("buttons", ytmButtons), locate.TextEqualsFold("Create"))),
		}},
	}

	for _, step := range steps {
		winner, err := locate.Cascade(ctx, y.session, nil, step.actions...)
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if err != nil {
			logger.Warn("step failed, continuing", "step", step.name, "error", err)
			continue
		}
		logger.Debug("step done", "step", step.name, "via", winner)
	}

	if err := y.pause(ctx, y.timing.AfterAction); err != nil {
		return "", err
	}

	if id := y.currentPlaylistID(ctx); id != "" {
		logger.Info("created playlist", "id", id)
		return id, nil
	}

	logger.Debug("creation did not land on the playlist page, searching the library")
	if id, err := y.findInLibrary(ctx, name); err != nil {
		return "", err
	} else if id != "" {
		logger.Info("created playlist", "id", id, "via", "library")
		return id, nil
	}

	return y.sentinel(ctx, "create_playlist_debug", errors.New("playlist id could not be resolved"))
}

func (y *YouTubeMusicDriver) sentinel(ctx context.Context, label string, cause error) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	y.logger.Warn("using placeholder playlist, tracks will be searched but not saved", "id", SentinelPlaylistID, "cause", cause)
	y.capture.Capture(ctx, y.session, label, true)
	return SentinelPlaylistID, nil
}

func (y *YouTubeMusicDriver) currentPlaylistID(ctx context.Context) string {
	u, err := y.session.URL(ctx)
	if err != nil {
		return ""
	}
	return PlaylistIDFromURL(u)
}

// findInLibrary reopens the library, clicks the entry whose text contains name and reads the
// resulting URL.
func (y *YouTubeMusicDriver) findInLibrary(ctx context.Context, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", nil
	}
	if err := y.session.Navigate(ctx, YouTubeMusicLibraryURL); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		y.logger.Debug("library unavailable", "error", err)
		return "", nil
	}
	if err := y.pause(ctx, y.timing.AfterAction); err != nil {
		return "", err
	}

	item := y.first(ctx, nil, "library entry",
		locate.Where(locate.CSS("library items", ytmLibraryItem).Within(y.timing.ShortWait), locate.TextContains(name)))
	if !item.Found {
		return "", nil
	}

	target := item.Head()
	if link := y.first(ctx, target, "library entry link", locate.CSS("link", "a")); link.Found {
		target = link.Head()
	}
	if err := y.session.Click(ctx, target); err != nil {
		y.logger.Debug("could not open library entry", "error", err)
		return "", ctx.Err()
	}
	if err := y.pause(ctx, y.timing.AfterAction); err != nil {
		return "", err
	}
	return y.currentPlaylistID(ctx), nil
}

// fillByLabel sets the first input whose aria-labelledby target reads label.
func (y *YouTubeMusicDriver) fillByLabel(name, label, value string) locate.Action {
	return locate.Action{
		Name: name,
		Run: func(ctx context.Context, s browser.Session) error {
			inputs, err := s.Query(ctx, browser.ByCSS("input[aria-labelledby]"), nil, 0)
			if err != nil {
				return err
			}
			for _, in := range inputs {
				for _, id := range strings.Fields(y.attr(ctx, in, "aria-labelledby")) {
					labels, err := s.Query(ctx, browser.ByCSS(fmt.Sprintf("[id=%q]", id)), nil, 0)
					if err != nil || len(labels) == 0 {
						continue
					}
					if y.text(ctx, labels[0]) == label {
						return s.SetValue(ctx, in, value)
					}
				}
			}
			return locate.ErrNoMatch
		},
	}
}

// saveStrategies lists the save affordance heuristics. Only the first waits for results to render.
func saveStrategies(wait time.Duration) []locate.Strategy {
	saveLike := locate.AnyOf(locate.TextContains("Save"), locate.AttrEquals("aria-label", "Save to playlist"))
	return []locate.Strategy{
		locate.CSS("save to playlist label", ytmSaveLabel).Within(wait),
		locate.Where(locate.CSS("action containers", ytmActionButtons), saveLike),
		locate.Where(locate.CSS("card shelf", ytmCardShelfButton), saveLike),
		locate.XPath("save label span", ytmSaveSpanButton),
		locate.Where(locate.CSS("any clickable", ytmClickable), locate.TextContains("Save")),
	}
}

func dialogStrategies(wait time.Duration) []locate.Strategy {
	return []locate.Strategy{
		locate.CSS("add-to-playlist", ytmAddDialog).Within(wait),
		locate.CSS("paper dialog", ytmPaperDialog),
		locate.CSS("popup", ytmPopup),
	}
}

// AddTrack searches for track and saves the first result to the playlist through the save dialog.
//
// Against [SentinelPlaylistID] it stops after the search and reports success without saving.
// Failures never escape: they are logged, captured and reported as an unsuccessful attachment.
func (y *YouTubeMusicDriver) AddTrack(ctx context.Context, playlistID, playlistName string, track models.Track) models.Attachment {
	att := models.Attachment{Track: track}
	logger := y.logger.With("track", track.Name, "artists", track.Artists)

	fail := func(status models.AttachStatus, label string, err error) models.Attachment {
		att.Status = status
		if ctx.Err() != nil {
			return att
		}
		logger.Warn("track not added", "status", status, "error", err)
		if label != "" {
			y.capture.Capture(ctx, y.session, label, false)
		}
		return att
	}

	if err := y.session.Navigate(ctx, SearchURL(track.Query())); err != nil {
		return fail(models.StatusFailed, "add_track_error", err)
	}
	if err := y.pause(ctx, y.timing.AfterSearch); err != nil {
		return fail(models.StatusFailed, "", err)
	}

	if playlistID == SentinelPlaylistID {
		logger.Info("searched only, placeholder playlist has nothing to save to")
		att.Success, att.Status = true, models.StatusSearchOnly
		return att
	}

	save := y.first(ctx, nil, "save button", saveStrategies(y.timing.ShortWait)...)
	if !save.Found {
		return fail(models.StatusNoSaveButton, "", errors.New("no save button"))
	}
	if err := y.session.Click(ctx, save.Head()); err != nil {
		return fail(models.StatusFailed, "add_track_error", fmt.Errorf("click save: %w", err))
	}

	dialog := y.first(ctx, nil, "save dialog", dialogStrategies(y.timing.ShortWait)...)
	if !dialog.Found {
		return fail(models.StatusNoDialog, "add_track_error", errors.New("save dialog did not open"))
	}

	entry, title, assumed := y.matchEntry(ctx, dialog.Head(), playlistName)
	if entry == nil {
		last := y.first(ctx, dialog.Head(), "dialog text match",
			locate.Where(locate.CSS("dialog targets", ytmDialogTargets), locate.TextContains(playlistName)))
		if playlistName == "" || !last.Found {
			return fail(models.StatusNoEntry, "add_track_error", errors.New("no playlist entry in dialog"))
		}
		entry, title = last.Head(), playlistName
	}

	target := entry
	if link := y.first(ctx, entry, "entry link", locate.CSS("endpoint", ytmEntryLink)); link.Found {
		target = link.Head()
	}
	if err := y.session.Click(ctx, target); err != nil {
		return fail(models.StatusFailed, "add_track_error", fmt.Errorf("click entry: %w", err))
	}

	att.Success, att.Attached, att.Status = true, true, models.StatusAdded
	att.Entry, att.Assumed = title, assumed
	logger.Info("added track", "entry", title, "assumed", assumed)
	return att
}

// matchEntry picks the dialog entry for name: an exact title match, then a title containing
// name, then (when enabled) the first entry on the unverified assumption that the newest
// playlist is listed first.
func (y *YouTubeMusicDriver) matchEntry(ctx context.Context, dialog browser.Element, name string) (browser.Element, string, bool) {
	entries := y.first(ctx, dialog, "dialog entries",
		locate.CSS("two-row items", ytmTwoRowItem),
		locate.CSS("add-to options", ytmAddToOption),
	)
	if !entries.Found {
		return nil, "", false
	}

	titles := make([]string, len(entries.Items))
	for i, e := range entries.Items {
		if res := y.first(ctx, e, "entry title", locate.CSS("title", ytmEntryTitle)); res.Found {
			titles[i] = y.text(ctx, res.Head())
		}
		if titles[i] == "" {
			titles[i] = y.text(ctx, e)
		}
	}

	if want := strings.TrimSpace(name); want != "" {
		for i, t := range titles {
			if t == want {
				return entries.Items[i], t, false
			}
		}
		for i, t := range titles {
			if strings.Contains(t, want) {
				return entries.Items[i], t, false
			}
		}
	}

	if !y.assumeFirst {
		return nil, "", false
	}
	y.logger.Warn("no dialog entry matches, assuming the first entry is the new playlist",
		"playlist", name, "entry", titles[0])
	return entries.Items[0], titles[0], true
}
