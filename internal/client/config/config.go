package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the lifedesk CLI.
//
// TokenFile empty means tokens are kept in memory and vanish on exit.
// ExportDir empty means the working directory.
type Config struct {
	ServerURL      string
	TokenFile      string
	ExportDir      string
	RevealTimeout  time.Duration
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.TokenFile = defaultTokenFile()
	c.RevealTimeout = 30 * time.Second
	c.RequestTimeout = 10 * time.Second
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "lifedesk", "tokens.json")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, os.Args[1:])
	parseFlags(cfg, os.Args[1:])
	return cfg
}
