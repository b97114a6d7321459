// Package config loads pixelpet's TOML settings and watches them for edits.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"pixelpet/internal/storage"
)

// Storage backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

const (
	DefaultTickInterval    = time.Minute
	DefaultThoughtInterval = 30 * time.Second
	DefaultThoughtChance   = 0.3
)

// Duration is a time.Duration written as a string such as "1s" or "5m".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Storage selects where the game is saved.
type Storage struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path,omitempty"`
	DSN     string `toml:"dsn,omitempty"`
	Key     string `toml:"key"`
}

// Config is the whole settings file.
type Config struct {
	Storage         Storage  `toml:"storage"`
	SaveDelay       Duration `toml:"save_delay"`
	TickInterval    Duration `toml:"tick_interval"`
	ThoughtInterval Duration `toml:"thought_interval"`
	ThoughtChance   float64  `toml:"thought_chance"`
	LogFile         string   `toml:"log_file,omitempty"`
	Seed            int64    `toml:"seed,omitempty"`
}

// Default returns the settings used when no file exists.
func Default() Config {
	return Config{
		Storage: Storage{
			Backend: BackendFile,
			Key:     storage.DefaultKey,
		},
		SaveDelay:       Duration{storage.DefaultSaveDelay},
		TickInterval:    Duration{DefaultTickInterval},
		ThoughtInterval: Duration{DefaultThoughtInterval},
		ThoughtChance:   DefaultThoughtChance,
	}
}

// DefaultPath returns ~/.config/pixelpet/config.toml.
func DefaultPath() (string, error) {
	dir, err := storage.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DefaultLogFile returns ~/.config/pixelpet/pixelpet.log.
func DefaultLogFile() (string, error) {
	dir, err := storage.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "pixelpet.log"), nil
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Validate checks the settings for values the game cannot run with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendMemory:
	case BackendPostgres:
		if c.Storage.DSN == "" {
			return errors.New("config: postgres backend needs storage.dsn")
		}
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Key == "" {
		c.Storage.Key = storage.DefaultKey
	}
	for name, d := range map[string]Duration{
		"save_delay":       c.SaveDelay,
		"tick_interval":    c.TickInterval,
		"thought_interval": c.ThoughtInterval,
	} {
		if d.Duration <= 0 {
			return fmt.Errorf("config: %s must be positive", name)
		}
	}
	if c.ThoughtChance < 0 || c.ThoughtChance > 1 {
		return fmt.Errorf("config: thought_chance %v outside [0, 1]", c.ThoughtChance)
	}
	return nil
}

// Encode renders the settings as TOML.
func (c Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// OpenStore opens the configured backend. The returned close func releases
// any connection it holds.
func (c Config) OpenStore(ctx context.Context) (storage.BlobStore, func() error, error) {
	noop := func() error { return nil }
	switch c.Storage.Backend {
	case BackendMemory:
		return storage.NewMemoryStore(), noop, nil
	case BackendPostgres:
		pg, err := storage.OpenPostgres(ctx, c.Storage.DSN, c.Storage.Key)
		if err != nil {
			return nil, noop, err
		}
		return pg, pg.Close, nil
	}

	path := c.Storage.Path
	if path == "" {
		var err error
		if path, err = storage.DefaultPath(c.Storage.Key); err != nil {
			return nil, noop, err
		}
	}
	return storage.NewFileStore(path), noop, nil
}
