// Package config loads zcontacts settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "ZCONTACTS_"

// Config holds process settings. Settings saved in the vault override
// GoogleAPIKey at runtime.
type Config struct {
	DataDir      string
	Passphrase   string
	LogLevel     string
	LogFormat    string
	GoogleAPIKey string
	PostalURL    string
	GeocodeURL   string
	HTTPTimeout  time.Duration
}

// Load reads .env from the working directory when present, then the
// environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(envPrefix + key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		DataDir:      get("DATA_DIR", DataDir()),
		Passphrase:   getenv(envPrefix + "PASSPHRASE"),
		LogLevel:     strings.ToLower(get("LOG_LEVEL", "info")),
		LogFormat:    strings.ToLower(get("LOG_FORMAT", "text")),
		GoogleAPIKey: get("GOOGLE_API_KEY", ""),
		PostalURL:    get("POSTAL_URL", ""),
		GeocodeURL:   get("GEOCODE_URL", ""),
		HTTPTimeout:  10 * time.Second,
	}

	if v := get("HTTP_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%sHTTP_TIMEOUT: %w", envPrefix, err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("%sHTTP_TIMEOUT: must be positive", envPrefix)
		}
		cfg.HTTPTimeout = d
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return Config{}, fmt.Errorf("%sLOG_FORMAT: unknown format %q", envPrefix, cfg.LogFormat)
	}

	return cfg, nil
}

// DataDir returns the default data directory for zcontacts.
func DataDir() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return filepath.Join(d, "zcontacts")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".zcontacts"
	}
	return filepath.Join(home, ".local", "share", "zcontacts")
}

// IsFirstRun reports whether no vault has been initialized in dir.
func IsFirstRun(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, "salt"))
	return err != nil
}
