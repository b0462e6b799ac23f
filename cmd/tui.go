package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/plbridge/internal/shared"
	"github.com/desertthunder/plbridge/internal/tasks"
	"github.com/desertthunder/plbridge/internal/ui"
)

// TUI logs in to both services, then hands the terminal to the interactive UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	logPath := cmd.String("log-file")
	if logPath == "" {
		logPath = r.config.Migration.LogFile
	}
	if logPath == "" {
		logPath = "plbridge-tui.log"
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, closer := shared.NewFileLogger(logPath)
	defer closer.Close()
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)
	r.prompter = &ui.TextPrompter{In: os.Stdin, Out: os.Stderr}

	source, closeSource, err := r.openSource(ctx)
	if err != nil {
		return err
	}
	defer closeSource()

	dest, closeDest, err := r.openDestination(ctx)
	if err != nil {
		return err
	}
	defer closeDest()

	engine := tasks.NewPlaylistEngine(source, dest, r.logger, tasks.Options{
		WriteDelay: r.config.Timing.WriteDelay,
		DryRun:     r.config.Migration.DryRun,
	})

	model := ui.NewModel(ctx, source, engine)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
