// Copyright (C) 2018. See AUTHORS.

// Package store persists named generators in BadgerDB so a sequence can be
// continued across processes.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/spacemonkeygo/lfsr"
)

var (
	// ErrNotFound is returned when no generator has the requested name.
	ErrNotFound = errors.New("generator not found")

	// ErrInvalidName is returned for empty names or names containing '/'.
	ErrInvalidName = errors.New("invalid generator name")
)

const keyPrefix = "lfsr/gen/"

// Config holds configuration for a Store.
type Config struct {
	// Path is the directory for database files. Ignored when InMemory is
	// true.
	Path string

	// InMemory keeps everything in memory. Useful for testing.
	InMemory bool

	// SyncWrites syncs every write to disk before returning.
	SyncWrites bool

	// Logger receives badger's internal logging. If nil, it is discarded.
	Logger *slog.Logger
}

// badgerLogger adapts slog.Logger to badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Store keeps generator registers keyed by name.
//
// Thread Safety: safe for concurrent use.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// mu serializes read-modify-write transactions so concurrent advances
	// of one name never conflict.
	mu sync.Mutex
}

// Open opens or creates the database described by cfg.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	logger := cfg.Logger
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger})
	} else {
		opts = opts.WithLogger(nil)
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// OpenInMemory opens an empty in-memory store.
func OpenInMemory() (*Store, error) {
	return Open(Config{InMemory: true})
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func key(name string) ([]byte, error) {
	if name == "" || strings.Contains(name, "/") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return []byte(keyPrefix + name), nil
}

// Create stores a generator with the given seed under name, replacing any
// existing one.
func (s *Store) Create(ctx context.Context, name string, seed uint16) error {
	k, err := key(name)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.db.Update(func(txn *badger.Txn) error {
		return put(txn, k, lfsr.New(seed))
	})
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	s.logger.Debug("generator created",
		slog.String("name", name), slog.Int("seed", int(seed)))
	return nil
}

// Load returns the stored generator. Advancing it does not change the
// store.
func (s *Store) Load(ctx context.Context, name string) (*lfsr.Generator, error) {
	k, err := key(name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var g *lfsr.Generator
	err = s.db.View(func(txn *badger.Txn) error {
		var gerr error
		g, gerr = get(txn, k)
		return gerr
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return g, nil
}

// Advance calls Next n times on the named generator, saves the new state
// and returns the produced values. A non-positive n returns no values and
// leaves the generator unchanged.
func (s *Store) Advance(ctx context.Context, name string, n int) ([]uint16, error) {
	k, err := key(name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]uint16, n)
	err = s.db.Update(func(txn *badger.Txn) error {
		g, err := get(txn, k)
		if err != nil {
			return err
		}
		g.Fill(out)
		return put(txn, k, g)
	})
	if err != nil {
		return nil, fmt.Errorf("advance %s: %w", name, err)
	}
	return out, nil
}

// Delete removes the named generator. Deleting a missing name returns
// ErrNotFound.
func (s *Store) Delete(ctx context.Context, name string) error {
	k, err := key(name)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(k); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return txn.Delete(k)
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	s.logger.Debug("generator deleted", slog.String("name", name))
	return nil
}

// List returns the names of all stored generators in key order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			names = append(names, strings.TrimPrefix(string(it.Item().Key()), keyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return names, nil
}

func get(txn *badger.Txn, k []byte) (*lfsr.Generator, error) {
	item, err := txn.Get(k)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	g := new(lfsr.Generator)
	err = item.Value(func(val []byte) error {
		return g.UnmarshalBinary(val)
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func put(txn *badger.Txn, k []byte, g *lfsr.Generator) error {
	val, err := g.MarshalBinary()
	if err != nil {
		return err
	}
	return txn.Set(k, val)
}
