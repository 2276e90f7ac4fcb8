// Package sqlite is the only Store implementation (spec.md §4.1): a single
// SQLite database file at .roadmap/state.db, opened WAL-mode with foreign
// keys enforced, one connection pool per process, every multi-step write
// wrapped in a transaction.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/roadmap/roadmap/internal/store"
)

// SQLiteStore is the Store implementation backed by database/sql with the
// ncruces/go-sqlite3 pure-Go driver (no cgo), the same driver the teacher's
// internal/storage/ephemeral package registers.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Open creates the containing directory if needed, opens (and if necessary
// creates and migrates) the database at path, and returns a ready Store.
// busyTimeout bounds how long a writer waits on SQLite's own lock before the
// caller sees ErrBusy (spec.md §4.1, §5).
func Open(path string, busyTimeout time.Duration) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dsn(path, int(busyTimeout/time.Millisecond)))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// SQLite allows only one writer; a single connection avoids the
	// connection pool silently serializing writers behind SQLITE_BUSY
	// instead of our own bounded retry.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping store: %w", err)
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.init(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w\nstatement: %s", err, stmt)
		}
	}
	if err := s.migrateLegacyShapes(ctx); err != nil {
		return fmt.Errorf("%w: %v", store.ErrSchemaMismatch, err)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO schema_meta (key, value) VALUES ('version', ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, schemaVersion)
	return err
}

// migrateLegacyShapes retires the persisted status column and the test_cmd
// name from any database created by a pre-derived-status version of
// Roadmap (spec.md §4.1). It is idempotent: pragma_table_info is checked
// before each change, in the same style as the teacher's
// migrations/023_pinned_column.go.
func (s *SQLiteStore) migrateLegacyShapes(ctx context.Context) error {
	hasColumn := func(table, col string) (bool, error) {
		var exists bool
		err := s.db.QueryRowContext(ctx, `
			SELECT COUNT(*) > 0 FROM pragma_table_info(?) WHERE name = ?
		`, table, col).Scan(&exists)
		return exists, err
	}

	hasTestCmd, err := hasColumn("claims", "test_cmd")
	if err != nil {
		return fmt.Errorf("check test_cmd column: %w", err)
	}
	hasProveCmd, err := hasColumn("claims", "prove_cmd")
	if err != nil {
		return fmt.Errorf("check prove_cmd column: %w", err)
	}
	if hasTestCmd && !hasProveCmd {
		if _, err := s.db.ExecContext(ctx, `ALTER TABLE claims RENAME COLUMN test_cmd TO prove_cmd`); err != nil {
			return fmt.Errorf("rename test_cmd to prove_cmd: %w", err)
		}
	}

	hasStatus, err := hasColumn("claims", "status")
	if err != nil {
		return fmt.Errorf("check status column: %w", err)
	}
	if hasStatus {
		if _, err := s.db.ExecContext(ctx, `ALTER TABLE claims DROP COLUMN status`); err != nil {
			return fmt.Errorf("drop legacy status column: %w", err)
		}
	}
	return nil
}

// withTx runs fn inside a transaction, retrying the whole attempt with
// exponential backoff while SQLite reports the database as busy, and
// rolling back on any other error. Mirrors the retry-around-BEGIN-IMMEDIATE
// pattern the teacher documents in internal/storage/sqlite/queries.go,
// implemented here with cenkalti/backoff rather than a hand-rolled loop.
func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	op := func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			if isBusy(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			if isBusy(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		if err := tx.Commit(); err != nil {
			if isBusy(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 5 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		if isBusy(err) {
			return fmt.Errorf("%w: %v", store.ErrBusy, err)
		}
		return err
	}
	return nil
}

// isBusy reports whether err reflects SQLite's own lock contention rather
// than an application-level failure. The ncruces driver surfaces this as a
// SQLITE_BUSY result code in the error text; we match on that rather than a
// concrete error type so both the top-level error and any wrapped cause are
// recognized the same way.
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "busy") || strings.Contains(msg, "locked")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ store.Store = (*SQLiteStore)(nil)

// scanErr turns sql.ErrNoRows into store.ErrNotFound; everything else
// passes through wrapped with op context.
func scanErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, store.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
