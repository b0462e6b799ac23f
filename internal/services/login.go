package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/plbridge/internal/browser"
	"github.com/desertthunder/plbridge/internal/locate"
	"github.com/desertthunder/plbridge/internal/shared"
)

// Prompter asks the person running plbridge for input.
type Prompter interface {
	// Ask returns the answer to question, or fallback when the answer is empty.
	Ask(ctx context.Context, question, fallback string) (string, error)
	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, question string) (bool, error)
	// Wait blocks until the person acknowledges message.
	Wait(ctx context.Context, message string) error
}

// ResolveProfile returns the browser profile directory for service.
//
// A configured directory is used as is. Otherwise the person is asked whether they have a
// profile that is already logged in and, if so, where it lives. An empty result means a fresh
// profile and a manual login.
func ResolveProfile(ctx context.Context, p Prompter, service, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	ok, err := p.Confirm(ctx, fmt.Sprintf("Do you have a browser profile already logged in to %s?", service))
	if err != nil || !ok {
		return "", err
	}

	dir, err := p.Ask(ctx, fmt.Sprintf("Path to the %s profile directory", service), "")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(dir), nil
}

// SpotifyLogin brings s to a logged-in Spotify web player.
//
// An existing login (from a reused profile or imported cookies) skips the prompt. Otherwise
// the login page is opened and the person logs in by hand.
func SpotifyLogin(ctx context.Context, s browser.Session, p Prompter, opts Opts) error {
	d := newDriver(s, opts, "spotify")
	scraper := &SpotifyScraper{driver: d}

	if err := s.Navigate(ctx, SpotifyHomeURL); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrLoginFailed, err)
	}
	if err := d.pause(ctx, d.timing.Settle); err != nil {
		return err
	}
	scraper.acceptCookies(ctx)

	widget := locate.CSS("user widget", spotifyUserWidget).Within(d.timing.ShortWait)
	if d.first(ctx, nil, "user widget", widget).Found {
		d.logger.Info("already logged in")
		return nil
	}

	_, err := locate.Cascade(ctx, s, nil,
		locate.ClickFirst("login text", locate.XPath("log in text", spotifyLoginText).Within(d.timing.ContentWait)),
		locate.ClickFirst("login test id", locate.CSS("login button", spotifyLoginTestID)),
	)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		d.logger.Warn("login button not found, log in from the open window", "error", err)
	}

	if err := p.Wait(ctx, "Log in to Spotify in the browser window, then press Enter"); err != nil {
		return err
	}
	if err := d.pause(ctx, d.timing.AfterAction); err != nil {
		return err
	}

	if u, _ := s.URL(ctx); !strings.Contains(u, "open.spotify.com") {
		if err := s.Navigate(ctx, SpotifyHomeURL); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrLoginFailed, err)
		}
	}
	if !d.first(ctx, nil, "user widget", widget).Found {
		d.logger.Warn("could not confirm the Spotify login, continuing")
	}
	return nil
}

// YouTubeMusicLogin brings s to a logged-in YouTube Music page.
//
// Login is confirmed by the account avatar. A reused login skips the prompt.
func YouTubeMusicLogin(ctx context.Context, s browser.Session, p Prompter, opts Opts) error {
	d := newDriver(s, opts, "ytmusic")

	if err := s.Navigate(ctx, YouTubeMusicHomeURL); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrLoginFailed, err)
	}
	if err := d.pause(ctx, d.timing.AfterAction); err != nil {
		return err
	}

	avatar := locate.CSS("avatar", ytmAvatar)
	if d.first(ctx, nil, "avatar", avatar.Within(d.timing.ShortWait)).Found {
		d.logger.Info("already logged in")
		return nil
	}

	_, err := locate.Cascade(ctx, s, nil,
		locate.ClickFirst("sign in", locate.XPath("sign in", ytmSignIn).Within(d.timing.ElementWait)),
	)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		d.logger.Warn("sign in button not found, sign in from the open window", "error", err)
	}

	if err := p.Wait(ctx, "Sign in to YouTube Music in the browser window, then press Enter"); err != nil {
		return err
	}

	if !d.first(ctx, nil, "avatar", avatar.Within(d.timing.ElementWait)).Found {
		d.logger.Warn("could not confirm the YouTube Music login, continuing")
	}
	if u, _ := s.URL(ctx); !strings.Contains(u, "music.youtube.com") {
		if err := s.Navigate(ctx, YouTubeMusicHomeURL); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrLoginFailed, err)
		}
	}
	return nil
}
