// Package config resolves settings from, lowest to highest precedence:
// defaults, the user TOML file, ./tada.toml, .env plus the environment,
// and finally root flags (applied by the caller with ApplyFlags).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL = "http://localhost:8000"
	projectFile   = "tada.toml"
)

type Config struct {
	APIURL    string `toml:"api_url"`
	Theme     string `toml:"theme"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogFile   string `toml:"log_file"`

	// dev backend (todo serve)
	ServerAddr  string   `toml:"server_addr"`
	Store       string   `toml:"store"`
	DBPath      string   `toml:"db_path"`
	CORSOrigins []string `toml:"cors_origins"`
}

func Default() Config {
	return Config{
		APIURL:      DefaultAPIURL,
		Theme:       "classic",
		LogLevel:    "info",
		LogFormat:   "text",
		ServerAddr:  ":8000",
		Store:       "sqlite",
		DBPath:      "tada.db",
		CORSOrigins: []string{"http://localhost:3000"},
	}
}

// DefaultPath is <UserConfigDir>/tada/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tada", "config.toml"), nil
}

// Load builds a Config. An explicit path must exist; the default user file
// and ./tada.toml are optional.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(&cfg, path); err != nil {
			return Config{}, err
		}
	} else {
		if userPath, err := DefaultPath(); err == nil {
			if err := loadOptionalFile(&cfg, userPath); err != nil {
				return Config{}, err
			}
		}
		if err := loadOptionalFile(&cfg, projectFile); err != nil {
			return Config{}, err
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}
	loadFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadOptionalFile(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat config %s: %w", path, err)
	}
	return loadFile(cfg, path)
}

func loadFile(cfg *Config, path string) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("parse config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// loadDotEnv never overrides variables already set in the environment.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TADA_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("TADA_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv("TADA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TADA_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("TADA_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("TADA_SERVER_ADDR"); v != "" {
		cfg.ServerAddr = v
	}
	if v := os.Getenv("TADA_STORE"); v != "" {
		cfg.Store = v
	}
	if v := os.Getenv("TADA_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("TADA_CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
}

// Flags carries root flag values; empty fields leave cfg alone.
type Flags struct {
	APIURL   string
	Theme    string
	LogLevel string
}

func (cfg *Config) ApplyFlags(f Flags) error {
	if f.APIURL != "" {
		cfg.APIURL = f.APIURL
	}
	if f.Theme != "" {
		cfg.Theme = f.Theme
	}
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	return cfg.Validate()
}

func (cfg Config) Validate() error {
	u, err := url.Parse(cfg.APIURL)
	if err != nil {
		return fmt.Errorf("api_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_url: scheme must be http or https, got %q", cfg.APIURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api_url: missing host in %q", cfg.APIURL)
	}
	switch cfg.Store {
	case "sqlite", "json":
	default:
		return fmt.Errorf("store: want sqlite or json, got %q", cfg.Store)
	}
	return nil
}

// DefaultLogFile is where the interactive UI logs when log_file is unset.
func DefaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "tada.log")
	}
	return filepath.Join(dir, "tada", "tada.log")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
