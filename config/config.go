// Package config loads runtime settings from a YAML file with environment
// variable overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/nathoo/shadowcore/engine/combat"
)

// Config holds everything the front-ends need to build a session.
type Config struct {
	// Content and files
	GameDir   string `yaml:"game_dir"`
	SaveDir   string `yaml:"save_dir"`
	HistoryDB string `yaml:"history_db"` // empty keeps history in memory

	// Session
	UserID string `yaml:"user"`
	Seed   int64  `yaml:"seed"` // 0 picks a random seed

	// Logging
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"` // TUI mode logs here instead of stderr

	// Game balance
	Balance combat.Rules `yaml:"balance"`
}

// envOverrides are applied on top of the file. Zero values mean unset.
type envOverrides struct {
	Seed       int64         `env:"SHADOWCORE_SEED"`
	GameDir    string        `env:"SHADOWCORE_GAME_DIR"`
	SaveDir    string        `env:"SHADOWCORE_SAVE_DIR"`
	HistoryDB  string        `env:"SHADOWCORE_HISTORY_DB"`
	UserID     string        `env:"SHADOWCORE_USER"`
	LogLevel   string        `env:"SHADOWCORE_LOG_LEVEL"`
	LogFile    string        `env:"SHADOWCORE_LOG_FILE"`
	EnemyDelay time.Duration `env:"SHADOWCORE_ENEMY_DELAY"`
}

// Default returns Config with sensible defaults.
func Default() Config {
	return Config{
		SaveDir:  ".",
		UserID:   "local",
		LogLevel: "info",
		LogFile:  "shadowcore.log",
		Balance:  combat.DefaultRules(),
	}
}

// Load loads config from a YAML file. If the file doesn't exist, returns
// defaults. Environment overrides are not applied.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with any SHADOWCORE_* variables that are set.
func ApplyEnv(cfg *Config) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if o.Seed != 0 {
		cfg.Seed = o.Seed
	}
	if o.GameDir != "" {
		cfg.GameDir = o.GameDir
	}
	if o.SaveDir != "" {
		cfg.SaveDir = o.SaveDir
	}
	if o.HistoryDB != "" {
		cfg.HistoryDB = o.HistoryDB
	}
	if o.UserID != "" {
		cfg.UserID = o.UserID
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.LogFile != "" {
		cfg.LogFile = o.LogFile
	}
	if o.EnemyDelay != 0 {
		cfg.Balance.EnemyDelay = o.EnemyDelay
	}
	return nil
}

// LoadWithEnv loads the file and then applies environment overrides.
func LoadWithEnv(path string) (Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the settings that can be wrong.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.UserID) == "" {
		errs = append(errs, errors.New("user must not be empty"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Balance.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("balance: %w", err))
	}
	return errors.Join(errs...)
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}
