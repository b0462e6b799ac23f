package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PLBRIDGE_"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	LogLevel  string          `toml:"log_level"`
	Browser   BrowserConfig   `toml:"browser"`
	Timing    TimingConfig    `toml:"timing"`
	Migration MigrationConfig `toml:"migration"`
}

// BrowserConfig controls how browser sessions are launched.
type BrowserConfig struct {
	ExecPath    string        `toml:"exec_path"`
	Headless    bool          `toml:"headless"`
	Width       int           `toml:"width"`
	Height      int           `toml:"height"`
	PageLoad    time.Duration `toml:"page_load"`
	Source      ProfileConfig `toml:"source"`
	Destination ProfileConfig `toml:"destination"`
}

// ProfileConfig points a session at existing login state.
type ProfileConfig struct {
	ProfileDir  string `toml:"profile_dir"`
	CookiesFile string `toml:"cookies_file"`
}

// TimingConfig holds the fixed delays and bounded waits used while driving the UIs.
type TimingConfig struct {
	Settle          time.Duration `toml:"settle"`
	TrackSettle     time.Duration `toml:"track_settle"`
	ContentWait     time.Duration `toml:"content_wait"`
	ElementWait     time.Duration `toml:"element_wait"`
	ShortWait       time.Duration `toml:"short_wait"`
	AfterAction     time.Duration `toml:"after_action"`
	AfterSearch     time.Duration `toml:"after_search"`
	ScrollDelay     time.Duration `toml:"scroll_delay"`
	PlaylistScrolls int           `toml:"playlist_scrolls"`
	TrackScrolls    int           `toml:"track_scrolls"`
	WriteDelay      time.Duration `toml:"write_delay"`
}

// MigrationConfig contains run-level behavior.
type MigrationConfig struct {
	DebugDir         string `toml:"debug_dir"`
	AssumeFirstEntry bool   `toml:"assume_first_entry"`
	DryRun           bool   `toml:"dry_run"`
	LogFile          string `toml:"log_file"`
}

// LoadConfig reads a TOML configuration file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadConfigOrDefault loads path when it exists and returns the defaults otherwise.
func LoadConfigOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// DefaultConfig returns a Config with defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile writes the embedded example config to path.
//
// An existing file is only replaced when force is set.
func CreateConfigFile(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate rejects values that would make waits or loops meaningless.
func (c *Config) Validate() error {
	t := c.Timing
	switch {
	case c.Browser.Width <= 0 || c.Browser.Height <= 0:
		return fmt.Errorf("%w: window size must be positive", ErrInvalidConfig)
	case t.PlaylistScrolls < 0 || t.TrackScrolls < 0:
		return fmt.Errorf("%w: scroll attempts cannot be negative", ErrInvalidConfig)
	case t.Settle < 0 || t.TrackSettle < 0 || t.ContentWait < 0 || t.ElementWait < 0 ||
		t.ShortWait < 0 || t.AfterAction < 0 || t.AfterSearch < 0 || t.ScrollDelay < 0 || t.WriteDelay < 0:
		return fmt.Errorf("%w: durations cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// ReadEnv collects PLBRIDGE_* variables from the dotenv file at path (when present) and the
// process environment. Process variables win.
func ReadEnv(path string) (map[string]string, error) {
	env := map[string]string{}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			values, err := godotenv.Read(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", path, err)
			}
			for k, v := range values {
				if strings.HasPrefix(k, EnvPrefix) {
					env[k] = v
				}
			}
		}
	}

	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(k, EnvPrefix) {
			env[k] = v
		}
	}
	return env, nil
}

// ApplyEnv overrides config values from PLBRIDGE_* variables.
func (c *Config) ApplyEnv(env map[string]string) error {
	str := map[string]*string{
		"LOG_LEVEL":      &c.LogLevel,
		"EXEC_PATH":      &c.Browser.ExecPath,
		"SOURCE_PROFILE": &c.Browser.Source.ProfileDir,
		"SOURCE_COOKIES": &c.Browser.Source.CookiesFile,
		"DEST_PROFILE":   &c.Browser.Destination.ProfileDir,
		"DEST_COOKIES":   &c.Browser.Destination.CookiesFile,
		"DEBUG_DIR":      &c.Migration.DebugDir,
		"LOG_FILE":       &c.Migration.LogFile,
	}
	for key, dst := range str {
		if v, ok := env[EnvPrefix+key]; ok {
			*dst = v
		}
	}

	flags := map[string]*bool{
		"HEADLESS":           &c.Browser.Headless,
		"DRY_RUN":            &c.Migration.DryRun,
		"ASSUME_FIRST_ENTRY": &c.Migration.AssumeFirstEntry,
	}
	for key, dst := range flags {
		v, ok := env[EnvPrefix+key]
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q", ErrInvalidConfig, EnvPrefix, key, v)
		}
		*dst = b
	}

	if v, ok := env[EnvPrefix+"WRITE_DELAY"]; ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %sWRITE_DELAY=%q", ErrInvalidConfig, EnvPrefix, v)
		}
		c.Timing.WriteDelay = d
	}

	return c.Validate()
}
