package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/plbridge/internal/browser"
	"github.com/desertthunder/plbridge/internal/diagnostics"
	"github.com/desertthunder/plbridge/internal/services"
	"github.com/desertthunder/plbridge/internal/shared"
	"github.com/desertthunder/plbridge/internal/ui"
)

// Role identifies which side of a migration a browser session serves.
type Role string

const (
	SourceRole      Role = "Spotify"
	DestinationRole Role = "YouTube Music"
)

// Launcher starts a browser session for role.
type Launcher func(ctx context.Context, role Role) (browser.Session, error)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	logger   *log.Logger
	output   io.Writer
	prompter services.Prompter
	launch   Launcher
	capturer *diagnostics.Capturer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config
	Logger   *log.Logger
	Output   io.Writer
	Prompter services.Prompter
	Launch   Launcher // defaults to launching Chrome over CDP
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Prompter == nil {
		opts.Prompter = ui.NewLinePrompter(os.Stdin, os.Stderr)
	}

	r := &Runner{
		config:   opts.Config,
		logger:   opts.Logger,
		output:   opts.Output,
		prompter: opts.Prompter,
		launch:   opts.Launch,
	}
	if r.launch == nil {
		r.launch = r.launchCDP
	}
	return r
}

// SetLogger replaces the logger, e.g. when the terminal is handed to the TUI.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	r.capturer = nil
}

// Configure loads the config file and environment overrides before any command runs.
//
// A missing config file is not an error; the embedded defaults apply.
func (r *Runner) Configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	config, err := shared.LoadConfigOrDefault(cmd.String("config"))
	if err != nil {
		return ctx, err
	}

	env, err := shared.ReadEnv(cmd.String("env"))
	if err != nil {
		return ctx, err
	}
	if err := config.ApplyEnv(env); err != nil {
		return ctx, err
	}

	level, err := shared.ParseLogLevel(config.LogLevel)
	if err != nil {
		return ctx, err
	}
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)

	r.config = config
	r.logger.Debug("configuration loaded", "path", cmd.String("config"), "env_overrides", len(env))
	return ctx, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		migrateCommand, spotifyCommand, ytmusicCommand, setupCommand, probeCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// serviceOpts builds scraper and driver options from the config. Every session of a run
// shares one capturer so that diagnostics carry the same run ID.
func (r *Runner) serviceOpts() services.Opts {
	if r.capturer == nil {
		r.capturer = diagnostics.NewCapturer(r.config.Migration.DebugDir, r.logger)
	}
	return services.Opts{
		Timing:           r.config.Timing,
		Capturer:         r.capturer,
		Logger:           r.logger,
		AssumeFirstEntry: r.config.Migration.AssumeFirstEntry,
	}
}

func (r *Runner) profile(role Role) shared.ProfileConfig {
	if role == DestinationRole {
		return r.config.Browser.Destination
	}
	return r.config.Browser.Source
}

// launchCDP starts Chrome for role, reusing a logged-in profile or imported cookies when available.
func (r *Runner) launchCDP(ctx context.Context, role Role) (browser.Session, error) {
	profile := r.profile(role)

	dir, err := services.ResolveProfile(ctx, r.prompter, string(role), profile.ProfileDir)
	if err != nil {
		return nil, err
	}

	cookies, err := shared.LoadCookies(profile.CookiesFile)
	if err != nil {
		return nil, err
	}

	b := r.config.Browser
	r.logger.Info("starting browser", "service", role, "profile", dir, "cookies", len(cookies))
	return browser.NewCDPSession(browser.Options{
		ExecPath:   b.ExecPath,
		ProfileDir: dir,
		Headless:   b.Headless,
		Width:      b.Width,
		Height:     b.Height,
		PageLoad:   b.PageLoad,
		Cookies:    cookies,
		Logger:     shared.WithLogger(r.logger, "browser", role),
	})
}

// openSource launches and logs in the Spotify session. The returned func closes it.
func (r *Runner) openSource(ctx context.Context) (*services.SpotifyScraper, func(), error) {
	s, err := r.launch(ctx, SourceRole)
	if err != nil {
		return nil, nil, err
	}
	closer := r.closer(s, SourceRole)

	opts := r.serviceOpts()
	if err := services.SpotifyLogin(ctx, s, r.prompter, opts); err != nil {
		closer()
		return nil, nil, err
	}
	return services.NewSpotifyScraper(s, opts), closer, nil
}

// openDestination launches and logs in the YouTube Music session. The returned func closes it.
func (r *Runner) openDestination(ctx context.Context) (*services.YouTubeMusicDriver, func(), error) {
	s, err := r.launch(ctx, DestinationRole)
	if err != nil {
		return nil, nil, err
	}
	closer := r.closer(s, DestinationRole)

	opts := r.serviceOpts()
	if err := services.YouTubeMusicLogin(ctx, s, r.prompter, opts); err != nil {
		closer()
		return nil, nil, err
	}
	return services.NewYouTubeMusicDriver(s, opts), closer, nil
}

func (r *Runner) closer(s browser.Session, role Role) func() {
	return func() {
		if err := s.Close(); err != nil {
			r.logger.Warn("failed to close browser", "service", role, "error", err)
		}
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
