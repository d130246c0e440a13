package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone in which naive event timestamps are
	// interpreted and in which the exported calendar is displayed
	// (e.g. "America/Toronto").
	Timezone string `yaml:"timezone" json:"timezone"`

	// DataDir is the base directory for generated artifacts. Exported
	// calendar files are written under <DataDir>/calendars.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// CalendarName is the display name used for single-course exports.
	CalendarName string `yaml:"calendar_name" json:"calendar_name"`

	// SessionTTLHours is how long an idle upload session is kept before
	// the cleanup job removes it. Zero disables expiry.
	SessionTTLHours int `yaml:"session_ttl_hours" json:"session_ttl_hours"`

	// CleanupCron is a cron-style schedule string for the expired-session
	// cleanup job (e.g. "@hourly" or "*/30 * * * *").
	CleanupCron string `yaml:"cleanup_cron" json:"cleanup_cron"`

	// MaxImportEvents caps the number of events accepted in a single
	// course import request.
	MaxImportEvents int `yaml:"max_import_events" json:"max_import_events"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:          "127.0.0.1:8080",
		Timezone:        "America/Toronto",
		DataDir:         "./data",
		CalendarName:    "Course Calendar",
		SessionTTLHours: 24,
		CleanupCron:     "@hourly",
		MaxImportEvents: 500,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "America/Toronto"
	}
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if c.CalendarName == "" {
		c.CalendarName = "Course Calendar"
	}
	if c.SessionTTLHours < 0 {
		c.SessionTTLHours = 0
	}
	if c.CleanupCron == "" {
		c.CleanupCron = "@hourly"
	}
	if c.MaxImportEvents <= 0 {
		c.MaxImportEvents = 500
	}
}

// CalendarsDir returns the directory where exported .ics files are written.
func (c *Config) CalendarsDir() string {
	return filepath.Join(c.DataDir, "calendars")
}

// SessionTTL returns the session time-to-live as a duration. Zero means
// sessions never expire.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// Location resolves the configured timezone. An unknown zone name is an
// error; callers decide whether to fall back.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms and returned.
//   - If the file exists, it is unmarshaled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path, creating the
// parent directory if needed. The write is atomic (temp file + rename)
// and the final file has 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".coursecal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the
// package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
