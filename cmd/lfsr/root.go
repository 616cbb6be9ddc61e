// Copyright (C) 2018. See AUTHORS.

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/spacemonkeygo/lfsr"
	"github.com/spacemonkeygo/lfsr/internal/config"
	"github.com/spacemonkeygo/lfsr/internal/store"
)

// globals holds the persistent flags and what PersistentPreRunE builds
// from them.
type globals struct {
	configPath string
	dbPath     string
	logLevel   string
	inMemory   bool

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "lfsr",
		Short: "16 bit maximal length LFSR sequences",
		Long: `lfsr generates the 65535 value sequence of a 16 bit Fibonacci
linear feedback shift register (taps 0, 2, 3, 5).

Named generators are kept in a local database so a sequence can be
continued across runs or served over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "YAML config file (default $"+config.EnvConfig+")")
	pf.StringVar(&g.dbPath, "db", "", "generator store directory")
	pf.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&g.inMemory, "in-memory", false, "keep the generator store in memory")
	_ = pf.MarkHidden("in-memory")

	root.AddCommand(
		newNextCmd(g),
		newEnumerateCmd(g),
		newCheckCmd(g),
		newCreateCmd(g),
		newDeleteCmd(g),
		newListCmd(g),
		newServeCmd(g),
	)
	return root
}

func (g *globals) load(cmd *cobra.Command) error {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return err
	}
	if g.dbPath != "" {
		cfg.Store.Path = g.dbPath
	}
	if g.inMemory {
		cfg.Store.InMemory = true
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	g.cfg = cfg
	g.logger = cfg.Logger(cmd.ErrOrStderr())
	return nil
}

func (g *globals) openStore() (*store.Store, error) {
	st, err := store.Open(store.Config{
		Path:       g.cfg.Store.Path,
		InMemory:   g.cfg.Store.InMemory,
		SyncWrites: g.cfg.Store.SyncWrites,
		Logger:     g.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// generator returns a generator from --seed when it was given, or one
// seeded from the configured source.
func (g *globals) generator(cmd *cobra.Command, seed uint16) *lfsr.Generator {
	if cmd.Flags().Changed("seed") {
		return lfsr.New(seed)
	}
	gen := lfsr.NewFromSource(g.cfg.SeedSource())
	g.logger.Debug("seeded from source", slog.Int("seed", int(gen.State())))
	return gen
}
