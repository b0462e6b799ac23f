package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/plbridge/internal/browser"
	"github.com/desertthunder/plbridge/internal/services"
	"github.com/desertthunder/plbridge/internal/shared"
)

// Probe loads a saved page (such as a diagnostic capture) into an offline session and reports
// which locator strategy matches each target.
func (r *Runner) Probe(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("page")
	if path == "" {
		return fmt.Errorf("%w: saved HTML page", shared.ErrMissingArgument)
	}

	markup, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	session := browser.NewDocumentSession()
	if err := session.Load("file://"+filepath.ToSlash(abs), string(markup)); err != nil {
		return err
	}
	defer session.Close()

	targets := services.ProbeTargets
	if t := cmd.String("target"); t != "" {
		targets = []string{t}
	}

	reports := make([]services.ProbeReport, 0, len(targets))
	for _, target := range targets {
		report, err := services.Probe(ctx, session, target)
		if err != nil {
			return err
		}
		r.logger.Debug("probed", "target", target, "found", report.Found, "strategy", report.Strategy)
		reports = append(reports, report)
	}

	if cmd.Bool("json") {
		return r.writeJSON(reports, true)
	}

	for _, rep := range reports {
		if rep.Found {
			r.writePlain("✓ %-10s %s (%d matches)\n", rep.Target, rep.Strategy, rep.Count)
		} else {
			r.writePlain("✗ %-10s no strategy matched (tried %d)\n", rep.Target, len(rep.Tried))
		}
	}
	return nil
}
