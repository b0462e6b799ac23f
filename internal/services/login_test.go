package services

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/plbridge/internal/browser"
	"github.com/desertthunder/plbridge/internal/shared"
	th "github.com/desertthunder/plbridge/internal/testing"
)

func TestResolveProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("configured profile skips prompts", func(t *testing.T) {
		p := &th.MockPrompter{}
		dir, err := ResolveProfile(ctx, p, "Spotify", "/profiles/spotify")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dir != "/profiles/spotify" {
			t.Errorf("expected configured dir, got %q", dir)
		}
		if len(p.Asked) != 0 {
			t.Errorf("expected no prompts, got %v", p.Asked)
		}
	})

	t.Run("declined means a fresh profile", func(t *testing.T) {
		p := &th.MockPrompter{Confirms: []bool{false}}
		dir, err := ResolveProfile(ctx, p, "Spotify", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dir != "" {
			t.Errorf("expected empty dir, got %q", dir)
		}
		if len(p.Asked) != 1 {
			t.Errorf("expected only the confirmation, got %v", p.Asked)
		}
	})

	t.Run("asks for the path", func(t *testing.T) {
		p := &th.MockPrompter{Confirms: []bool{true}, Answers: []string{"  /home/me/.config/chrome  "}}
		dir, err := ResolveProfile(ctx, p, "YouTube Music", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dir != "/home/me/.config/chrome" {
			t.Errorf("expected trimmed path, got %q", dir)
		}
	})

	t.Run("prompt errors propagate", func(t *testing.T) {
		want := errors.New("stdin closed")
		p := &th.MockPrompter{Err: want}
		if _, err := ResolveProfile(ctx, p, "Spotify", ""); !errors.Is(err, want) {
			t.Errorf("expected %v, got %v", want, err)
		}
	})
}

func TestSpotifyLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("existing login skips the prompt", func(t *testing.T) {
		opts, _ := testOpts(t)
		d := browser.NewDocumentSession().AddPage(SpotifyHomeURL, page(`<button data-testid="user-widget-link">Me</button>`))
		p := &th.MockPrompter{}

		if err := SpotifyLogin(ctx, d, p, opts); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(p.Asked) != 0 {
			t.Errorf("expected no prompts, got %v", p.Asked)
		}
	})

	t.Run("clicks log in and waits", func(t *testing.T) {
		opts, _ := testOpts(t)
		d := browser.NewDocumentSession().AddPage(SpotifyHomeURL, page(`<button data-testid="login-button">Log in</button>`))
		p := &th.MockPrompter{}

		if err := SpotifyLogin(ctx, d, p, opts); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.Count("click") != 1 {
			t.Errorf("expected the login button to be clicked once, got %d", d.Count("click"))
		}
		if len(p.Asked) != 1 {
			t.Errorf("expected one wait prompt, got %v", p.Asked)
		}
	})

	t.Run("missing login button still waits", func(t *testing.T) {
		opts, _ := testOpts(t)
		d := browser.NewDocumentSession().AddPage(SpotifyHomeURL, page(`<p>Welcome</p>`))
		p := &th.MockPrompter{}

		if err := SpotifyLogin(ctx, d, p, opts); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(p.Asked) != 1 {
			t.Errorf("expected one wait prompt, got %v", p.Asked)
		}
	})

	t.Run("navigation failure", func(t *testing.T) {
		opts, _ := testOpts(t)
		d := browser.NewDocumentSession()
		_ = d.Close()

		if err := SpotifyLogin(ctx, d, &th.MockPrompter{}, opts); !errors.Is(err, shared.ErrLoginFailed) {
			t.Errorf("expected ErrLoginFailed, got %v", err)
		}
	})

	t.Run("prompt error aborts", func(t *testing.T) {
		opts, _ := testOpts(t)
		want := errors.New("interrupted")
		d := browser.NewDocumentSession().AddPage(SpotifyHomeURL, page(`<p>Welcome</p>`))

		if err := SpotifyLogin(ctx, d, &th.MockPrompter{Err: want}, opts); !errors.Is(err, want) {
			t.Errorf("expected %v, got %v", want, err)
		}
	})
}

func TestYouTubeMusicLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("avatar means logged in", func(t *testing.T) {
		opts, _ := testOpts(t)
		d := browser.NewDocumentSession().AddPage(YouTubeMusicHomeURL, page(`<button aria-label="Account"><img alt="Avatar image"></button>`))
		p := &th.MockPrompter{}

		if err := YouTubeMusicLogin(ctx, d, p, opts); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(p.Asked) != 0 {
			t.Errorf("expected no prompts, got %v", p.Asked)
		}
	})

	t.Run("clicks sign in and waits", func(t *testing.T) {
		opts, _ := testOpts(t)
		d := browser.NewDocumentSession().AddPage(YouTubeMusicHomeURL, page(`<tp-yt-paper-button>Sign in</tp-yt-paper-button>`))
		p := &th.MockPrompter{}

		if err := YouTubeMusicLogin(ctx, d, p, opts); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.Count("click") != 1 || len(p.Asked) != 1 {
			t.Errorf("expected one click and one prompt, got %d clicks and %v", d.Count("click"), p.Asked)
		}
	})

	t.Run("navigation failure", func(t *testing.T) {
		opts, _ := testOpts(t)
		d := browser.NewDocumentSession()
		_ = d.Close()

		if err := YouTubeMusicLogin(ctx, d, &th.MockPrompter{}, opts); !errors.Is(err, shared.ErrLoginFailed) {
			t.Errorf("expected ErrLoginFailed, got %v", err)
		}
	})
}
