package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

const appName = "study-planner"

type Config struct {
	Port         string        `toml:"port"`
	APIURL       string        `toml:"api_url"`
	APIToken     string        `toml:"api_token"`
	DatabaseURL  string        `toml:"database_url"`
	SyncSeconds  int           `toml:"sync_seconds"`
	SyncInterval time.Duration `toml:"-"`
	WorkMinutes  int           `toml:"work_minutes"`
	BreakMinutes int           `toml:"break_minutes"`
	Timezone     string        `toml:"timezone"`
	Debug        bool          `toml:"debug"`
	Path         string        `toml:"-"`
}

func Default() Config {
	return Config{
		Port:         "8080",
		APIURL:       "http://localhost:5000",
		SyncInterval: time.Minute,
		SyncSeconds:  60,
		WorkMinutes:  25,
		BreakMinutes: 5,
	}
}

// Load applies defaults, then the TOML file, then the environment.
// A missing config file is not an error.
func Load() (Config, error) {
	cfg := Default()

	path := os.Getenv("PLANNER_CONFIG")
	if path == "" {
		dir, err := Dir()
		if err == nil {
			path = filepath.Join(dir, "config.toml")
		}
	}
	if path != "" {
		if err := loadFile(&cfg, path); err != nil {
			return cfg, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.APIURL = getEnv("API_URL", cfg.APIURL)
	cfg.APIToken = getEnv("API_TOKEN", cfg.APIToken)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.Timezone = getEnv("TIMEZONE", cfg.Timezone)
	cfg.SyncSeconds = getEnvInt("SYNC_INTERVAL", cfg.SyncSeconds)
	cfg.WorkMinutes = getEnvInt("WORK_MINUTES", cfg.WorkMinutes)
	cfg.BreakMinutes = getEnvInt("BREAK_MINUTES", cfg.BreakMinutes)
	if os.Getenv("PLANNER_DEBUG") != "" {
		cfg.Debug = true
	}

	if err := cfg.normalize(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	cfg.Path = path
	return nil
}

func (c *Config) normalize() error {
	// 0 turns background sync off
	if c.SyncSeconds < 0 {
		c.SyncSeconds = 60
	}
	c.SyncInterval = time.Duration(c.SyncSeconds) * time.Second
	if c.WorkMinutes <= 0 {
		c.WorkMinutes = 25
	}
	if c.BreakMinutes <= 0 {
		c.BreakMinutes = 5
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

func (c Config) WorkDuration() time.Duration  { return time.Duration(c.WorkMinutes) * time.Minute }
func (c Config) BreakDuration() time.Duration { return time.Duration(c.BreakMinutes) * time.Minute }

// Location resolves Timezone; empty means the machine's local zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Dir is the per-user directory holding config.toml and the session file.
func Dir() (string, error) {
	if dir := os.Getenv("PLANNER_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
