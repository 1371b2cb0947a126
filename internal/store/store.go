// Package store is the authoritative item store for corkboard workspaces.
//
// One workspace lives in one `.corkboard` directory holding a SQLite
// database. The canvas engine keeps an optimistic local copy and writes
// through this package; every successful mutation fires the change hook so
// attached views can reconcile.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"corkboard-cli/internal/model"

	_ "modernc.org/sqlite"
)

const (
	dirName    = ".corkboard"
	dbFileName = "board.sqlite"
)

type Store struct {
	Dir string
}

// DiscoverDir walks upward from start looking for a .corkboard directory.
func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, dirName)
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func DefaultDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if found, ok := DiscoverDir(cwd); ok {
		return found, nil
	}
	return filepath.Join(cwd, dirName), nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) dbPath() string {
	return filepath.Join(s.Dir, dbFileName)
}

// DB is an open workspace database. Safe for concurrent use; the change
// hook is invoked after each successful mutation commits.
type DB struct {
	sql *sql.DB

	mu       sync.RWMutex
	onChange func(model.Change)
}

func (s Store) Open(ctx context.Context) (*DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", s.dbPath())
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout helps avoid
	// "database is locked" flakiness when a TUI and the sync server share
	// a workspace.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite pragma: %w", err)
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	return d.sql.Close()
}

// SetChangeHook registers the function called after each committed
// mutation. At most one hook; the sync server uses it to feed the
// broadcaster.
func (d *DB) SetChangeHook(fn func(model.Change)) {
	d.mu.Lock()
	d.onChange = fn
	d.mu.Unlock()
}

func (d *DB) notify(c model.Change) {
	d.mu.RLock()
	fn := d.onChange
	d.mu.RUnlock()
	if fn != nil {
		fn(c)
	}
}

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

type InvalidInputError struct {
	Reason string
}

func (e InvalidInputError) Error() string {
	return e.Reason
}

func trimmed(s string) string { return strings.TrimSpace(s) }
