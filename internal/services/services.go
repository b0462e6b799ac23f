package services

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/plbridge/internal/browser"
	"github.com/desertthunder/plbridge/internal/diagnostics"
	"github.com/desertthunder/plbridge/internal/locate"
	"github.com/desertthunder/plbridge/internal/models"
	"github.com/desertthunder/plbridge/internal/shared"
)

// Source enumerates playlists and their tracks from a streaming service UI.
type Source interface {
	Name() string
	Playlists(ctx context.Context) ([]models.Playlist, error)
	Tracks(ctx context.Context, playlist models.Playlist) ([]models.Track, error)
}

// Destination re-creates playlists in a streaming service UI.
//
// CreatePlaylist returns [SentinelPlaylistID] when the new playlist could not be confirmed.
// AddTrack never fails; its outcome is reported in the returned [models.Attachment].
type Destination interface {
	Name() string
	CreatePlaylist(ctx context.Context, name string) (string, error)
	AddTrack(ctx context.Context, playlistID, playlistName string, track models.Track) models.Attachment
}

// Opts configures a scraper or driver.
type Opts struct {
	Timing   shared.TimingConfig
	Capturer *diagnostics.Capturer
	Logger   *log.Logger
	Sleep    locate.SleepFunc // defaults to [locate.Sleep]

	// AssumeFirstEntry picks the first playlist in the save dialog when none matches by name.
	AssumeFirstEntry bool
}

func (o Opts) withDefaults() Opts {
	if o.Logger == nil {
		o.Logger = shared.NewLogger(nil)
	}
	if o.Sleep == nil {
		o.Sleep = locate.Sleep
	}
	return o
}

// driver holds what the Spotify scraper and YouTube Music driver share.
type driver struct {
	session browser.Session
	timing  shared.TimingConfig
	capture *diagnostics.Capturer
	logger  *log.Logger
	sleep   locate.SleepFunc
}

func newDriver(s browser.Session, opts Opts, service string) driver {
	opts = opts.withDefaults()
	return driver{
		session: s,
		timing:  opts.Timing,
		capture: opts.Capturer,
		logger:  shared.WithLogger(opts.Logger, "service", service),
		sleep:   opts.Sleep,
	}
}

// pause waits a fixed delay and reports only cancellation.
func (d driver) pause(ctx context.Context, delay time.Duration) error {
	return d.sleep(ctx, delay)
}

func (d driver) first(ctx context.Context, scope browser.Element, target string, strategies ...locate.Strategy) locate.Result {
	res := locate.First(ctx, d.session, scope, strategies...)
	if res.Found {
		d.logger.Debug("located", "target", target, "strategy", res.Strategy, "count", len(res.Items))
	} else {
		for _, m := range res.Misses {
			if m.Err != nil {
				d.logger.Debug("strategy failed", "target", target, "strategy", m.Strategy, "error", m.Err)
			}
		}
		d.logger.Debug("not found", "target", target, "strategies", len(strategies))
	}
	return res
}

// text reads an element's trimmed text; unreadable elements read as empty.
func (d driver) text(ctx context.Context, el browser.Element) string {
	t, err := d.session.Text(ctx, el)
	if err != nil {
		d.logger.Debug("text unavailable", "element", el.Describe(), "error", err)
		return ""
	}
	return strings.TrimSpace(t)
}

func (d driver) attr(ctx context.Context, el browser.Element, name string) string {
	v, err := d.session.Attribute(ctx, el, name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(v)
}

// resolve turns a relative href into an absolute URL against the current page.
func (d driver) resolve(ctx context.Context, href string) string {
	current, err := d.session.URL(ctx)
	if err != nil {
		return href
	}
	base, err := url.Parse(current)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
