package locate

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/plbridge/internal/browser"
)

func TestCascade(t *testing.T) {
	ctx := context.Background()

	ok := func(name string, calls *[]string) Action {
		return Action{Name: name, Run: func(context.Context, browser.Session) error {
			*calls = append(*calls, name)
			return nil
		}}
	}
	fail := func(name string, calls *[]string) Action {
		return Action{Name: name, Run: func(context.Context, browser.Session) error {
			*calls = append(*calls, name)
			return errors.New(name + " failed")
		}}
	}

	t.Run("first successful action wins", func(t *testing.T) {
		var calls []string
		name, err := Cascade(ctx, nil, nil, fail("declarative", &calls), ok("scripted", &calls), ok("never", &calls))
		if err != nil || name != "scripted" {
			t.Fatalf("expected scripted to win, got %q %v", name, err)
		}
		if len(calls) != 2 {
			t.Errorf("expected 2 actions run, got %v", calls)
		}
	})

	t.Run("post-condition must hold", func(t *testing.T) {
		var calls []string
		checks := 0
		check := func(context.Context, browser.Session) bool {
			checks++
			return checks > 1
		}
		name, err := Cascade(ctx, nil, check, ok("first", &calls), ok("second", &calls))
		if err != nil || name != "second" {
			t.Fatalf("expected second to win after failed check, got %q %v", name, err)
		}
	})

	t.Run("no winner reports every attempt", func(t *testing.T) {
		var calls []string
		_, err := Cascade(ctx, nil, nil, fail("a", &calls), fail("b", &calls))
		if !errors.Is(err, ErrNoAction) {
			t.Fatalf("expected ErrNoAction, got %v", err)
		}
		var ce *CascadeError
		if !errors.As(err, &ce) || len(ce.Attempts) != 2 || ce.Attempts[1].Action != "b" {
			t.Errorf("expected attempts a and b, got %+v", ce)
		}
	})

	t.Run("cancellation", func(t *testing.T) {
		var calls []string
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := Cascade(cctx, nil, nil, ok("a", &calls)); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if len(calls) != 0 {
			t.Errorf("expected no actions after cancellation, got %v", calls)
		}
	})
}

func TestActions(t *testing.T) {
	ctx := context.Background()
	page := `<html><body>
<a id="new" href="/created">New playlist</a>
<input id="title">
</body></html>`

	t.Run("ClickFirst", func(t *testing.T) {
		d := browser.NewDocumentSession()
		_ = d.Load("https://example.test/library", page)

		err := ClickFirst("new", CSS("missing", "#nope"), CSS("link", "#new")).Run(ctx, d)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if u, _ := d.URL(ctx); u != "https://example.test/created" {
			t.Errorf("expected navigation to /created, got %s", u)
		}

		if err := ClickFirst("none", CSS("missing", "#nope")).Run(ctx, d); !errors.Is(err, ErrNoMatch) {
			t.Errorf("expected ErrNoMatch, got %v", err)
		}
	})

	t.Run("FillFirst", func(t *testing.T) {
		d := browser.NewDocumentSession()
		_ = d.Load("https://example.test/library", page)

		if err := FillFirst("title", "Road Trip", CSS("title", "#title")).Run(ctx, d); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		inputs, _ := d.Query(ctx, browser.ByCSS("#title"), nil, 0)
		if v, _ := d.Attribute(ctx, inputs[0], "value"); v != "Road Trip" {
			t.Errorf("expected value Road Trip, got %q", v)
		}
	})

	t.Run("RunScript", func(t *testing.T) {
		d := browser.NewDocumentSession()
		d.HandleScript("clickNew", func(*browser.DocumentSession, string) (any, error) { return true, nil })
		d.HandleScript("clickNothing", func(*browser.DocumentSession, string) (any, error) { return false, nil })

		if err := RunScript("js", "clickNew()").Run(ctx, d); err != nil {
			t.Errorf("expected scripted action to succeed, got %v", err)
		}
		if err := RunScript("js", "clickNothing()").Run(ctx, d); !errors.Is(err, ErrScriptNoop) {
			t.Errorf("expected ErrScriptNoop, got %v", err)
		}
		if err := RunScript("js", "unknown()").Run(ctx, d); !errors.Is(err, browser.ErrUnsupported) {
			t.Errorf("expected ErrUnsupported, got %v", err)
		}
	})
}
