package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

type StoreKind string

const (
	StoreFile   StoreKind = "file"
	StoreSQLite StoreKind = "sqlite"
)

// Config holds the runtime settings. Empty BaseURL and ArtworkURL mean the
// catalog client defaults.
type Config struct {
	APIKey          string
	BaseURL         string
	ArtworkURL      string
	DataDir         string
	Store           StoreKind
	TokenTTL        time.Duration
	RequestInterval time.Duration
	HTTPTimeout     time.Duration
	Demo            bool
	LogLevel        slog.Level
}

const (
	defaultConfigPath = "~/.config/tvshelf/config.toml"
	defaultDataDir    = "~/.local/share/tvshelf"
)

func defaults() Config {
	return Config{
		DataDir:     mustExpand(defaultDataDir),
		Store:       StoreFile,
		TokenTTL:    24 * time.Hour,
		HTTPTimeout: 30 * time.Second,
		LogLevel:    slog.LevelInfo,
	}
}

// Load reads the config file, falling back to defaults when it is missing.
// TVDB_API_KEY and TVSHELF_DATA_DIR override the file.
func Load(path string) (Config, error) {
	cfg, err := load(path)
	if err != nil {
		return Config{}, err
	}

	if v := strings.TrimSpace(os.Getenv("TVDB_API_KEY")); v != "" {
		cfg.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("TVSHELF_DATA_DIR")); v != "" {
		cfg.DataDir = mustExpand(v)
	}

	return cfg, nil
}

func load(path string) (Config, error) {
	cfg := defaults()

	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIKey          string `toml:"api_key"`
		BaseURL         string `toml:"base_url"`
		ArtworkURL      string `toml:"artwork_url"`
		DataDir         string `toml:"data_dir"`
		Store           string `toml:"store"`
		TokenTTL        string `toml:"token_ttl"`
		RequestInterval string `toml:"request_interval"`
		HTTPTimeout     string `toml:"http_timeout"`
		Demo            bool   `toml:"demo"`
		LogLevel        string `toml:"log_level"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.APIKey = strings.TrimSpace(raw.APIKey)
	cfg.Demo = raw.Demo
	if v := strings.TrimSpace(raw.BaseURL); v != "" {
		cfg.BaseURL = strings.TrimSuffix(v, "/")
	}
	if v := strings.TrimSpace(raw.ArtworkURL); v != "" {
		cfg.ArtworkURL = v
	}
	if v := strings.TrimSpace(raw.DataDir); v != "" {
		cfg.DataDir = mustExpand(v)
	}

	switch StoreKind(strings.ToLower(strings.TrimSpace(raw.Store))) {
	case "":
	case StoreFile:
		cfg.Store = StoreFile
	case StoreSQLite:
		cfg.Store = StoreSQLite
	default:
		return Config{}, fmt.Errorf("unknown store '%s'", raw.Store)
	}

	for _, d := range []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"token_ttl", raw.TokenTTL, &cfg.TokenTTL},
		{"request_interval", raw.RequestInterval, &cfg.RequestInterval},
		{"http_timeout", raw.HTTPTimeout, &cfg.HTTPTimeout},
	} {
		if strings.TrimSpace(d.value) == "" {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.value))
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.name, err)
		}
		*d.dst = v
	}

	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("parse log_level: %w", err)
		}
	}

	return cfg, nil
}

// DatabasePath is where the sqlite store lives.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "tvshelf.db")
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
