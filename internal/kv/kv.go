// Package kv provides the durable key-value namespace backing the store.
// Values are whole JSON documents; every mutation replaces the full value
// under a per-key writer lock so read-modify-write cycles cannot interleave.
package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/marileigh/stitchloom/internal/migrate"
)

// Store is a SQLite-backed key-value namespace.
type Store struct {
	db  *sql.DB
	log *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Open opens (or creates) the database at path and applies migrations.
func Open(ctx context.Context, path string, log *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	if err := migrate.Up(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, log: log, locks: map[string]*sync.Mutex{}}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Get returns the value stored under key, and whether the key exists.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var val []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return val, true, nil
}

// Put stores value under key, replacing any previous value.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()
	return s.put(ctx, key, value)
}

func (s *Store) put(ctx context.Context, key string, value []byte) error {
	const q = `
INSERT INTO kv (key, value) VALUES (?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value`
	if _, err := s.db.ExecContext(ctx, q, key, value); err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Missing keys are a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// Update runs fn with the current value (ok=false when absent) under the
// key's writer lock. fn returns the next value and whether to write it.
// Two overlapping updates of the same key serialize, so neither is lost.
func (s *Store) Update(ctx context.Context, key string, fn func(cur []byte, ok bool) (next []byte, write bool, err error)) error {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	cur, ok, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	next, write, err := fn(cur, ok)
	if err != nil {
		return err
	}
	if !write {
		return nil
	}
	if err := s.put(ctx, key, next); err != nil {
		return err
	}
	s.log.Debug("kv write", zap.String("key", key), zap.Int("bytes", len(next)))
	return nil
}
