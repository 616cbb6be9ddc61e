// Copyright (C) 2018. See AUTHORS.

// Package config loads the settings shared by the lfsr command and service.
//
// Settings come from, in increasing priority: Default, a YAML file and
// environment variables. Command line flags are applied on top by the
// caller.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spacemonkeygo/lfsr"
)

// Environment variables read by Load.
const (
	EnvConfig = "LFSR_CONFIG" // default config file path
	EnvDB     = "LFSR_DB"     // store directory
	EnvAddr   = "LFSR_ADDR"   // server listen address
	EnvLog    = "LFSR_LOG"    // log level
)

// Config is the full configuration.
type Config struct {
	Store    StoreConfig  `yaml:"store"`
	Server   ServerConfig `yaml:"server"`
	Seed     SeedConfig   `yaml:"seed"`
	LogLevel string       `yaml:"log_level"`
}

// StoreConfig controls where named generators are kept.
type StoreConfig struct {
	// Path is the badger directory. Ignored when InMemory is set.
	Path       string `yaml:"path"`
	InMemory   bool   `yaml:"in_memory"`
	SyncWrites bool   `yaml:"sync_writes"`
}

// ServerConfig controls the HTTP service.
type ServerConfig struct {
	Address string `yaml:"address"`
	// MaxBatch bounds the count accepted by a single next request.
	MaxBatch int `yaml:"max_batch"`
}

// SeedConfig selects where seeds come from when none is given.
type SeedConfig struct {
	// Deterministic draws seeds from a PCG with the state and stream
	// below instead of the process random source.
	Deterministic bool   `yaml:"deterministic"`
	PCGState      uint64 `yaml:"pcg_state"`
	PCGStream     uint64 `yaml:"pcg_stream"`
}

// Default returns the built in configuration.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Path:       defaultStorePath(),
			SyncWrites: true,
		},
		Server: ServerConfig{
			Address:  ":8080",
			MaxBatch: 4096,
		},
		LogLevel: "info",
	}
}

func defaultStorePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".lfsr"
	}
	return dir + string(os.PathSeparator) + "lfsr"
}

// Load reads the YAML file at path over Default and then applies the
// environment. An empty path falls back to $LFSR_CONFIG; if that is empty
// too only defaults and the environment are used. A named file that does
// not exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvDB); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv(EnvLog); v != "" {
		cfg.LogLevel = v
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if !c.Store.InMemory && c.Store.Path == "" {
		return errors.New("store.path is required unless store.in_memory is set")
	}
	if c.Server.MaxBatch <= 0 {
		return fmt.Errorf("server.max_batch must be positive: %d", c.Server.MaxBatch)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return lvl, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}

// Logger returns a text logger writing to w at the configured level.
func (c Config) Logger(w io.Writer) *slog.Logger {
	lvl, err := c.Level()
	if err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// SeedSource returns the Source for generators created without a seed.
func (c Config) SeedSource() lfsr.Source {
	if c.Seed.Deterministic {
		return lfsr.NewPCG(c.Seed.PCGState, c.Seed.PCGStream)
	}
	return lfsr.RuntimeSource()
}
