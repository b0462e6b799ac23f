// Package diagnostics captures the state of a page when extraction or interaction fails.
package diagnostics

import (
	"context"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/plbridge/internal/browser"
	"github.com/desertthunder/plbridge/internal/shared"
)

// Snapshot describes what a capture managed to record.
type Snapshot struct {
	Label      string
	URL        string
	Title      string
	Screenshot string // file path, empty when the screenshot failed
	Markup     string // file path, empty when not requested or failed
}

// Capturer writes screenshots and page markup to a directory.
//
// Every capture is best-effort: failures are logged and never returned. A nil Capturer
// captures nothing.
type Capturer struct {
	Dir    string
	RunID  string // appended to file names so runs do not overwrite each other
	Logger *log.Logger
}

// NewCapturer returns a Capturer writing to dir with a fresh run ID.
func NewCapturer(dir string, logger *log.Logger) *Capturer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if dir == "" {
		dir = "."
	}
	return &Capturer{Dir: dir, RunID: shared.ShortID(), Logger: logger}
}

func (c *Capturer) path(label, ext string) string {
	name := label
	if c.RunID != "" {
		name += "_" + c.RunID
	}
	return filepath.Join(c.Dir, name+ext)
}

// Capture records the current URL and title, a screenshot, and the page markup when withHTML is set.
func (c *Capturer) Capture(ctx context.Context, s browser.Session, label string, withHTML bool) Snapshot {
	snap := Snapshot{Label: label}
	if c == nil || s == nil {
		return snap
	}

	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		c.Logger.Warn("could not create debug directory", "dir", c.Dir, "error", err)
		return snap
	}

	snap.URL, _ = s.URL(ctx)
	snap.Title, _ = s.Title(ctx)

	if png, err := s.Screenshot(ctx); err != nil {
		c.Logger.Warn("screenshot failed", "label", label, "error", err)
	} else if err := os.WriteFile(c.path(label, ".png"), png, 0644); err != nil {
		c.Logger.Warn("could not write screenshot", "label", label, "error", err)
	} else {
		snap.Screenshot = c.path(label, ".png")
	}

	if withHTML {
		if markup, err := s.HTML(ctx); err != nil {
			c.Logger.Warn("page markup unavailable", "label", label, "error", err)
		} else if err := os.WriteFile(c.path(label, ".html"), []byte(markup), 0644); err != nil {
			c.Logger.Warn("could not write page markup", "label", label, "error", err)
		} else {
			snap.Markup = c.path(label, ".html")
		}
	}

	c.Logger.Info("diagnostic captured",
		"label", label, "url", snap.URL, "title", snap.Title,
		"screenshot", snap.Screenshot, "markup", snap.Markup)
	return snap
}
