package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// Sentinel errors for store-level conditions, in the same style as the
// teacher's storage/sqlite/errors.go: plain sentinels wrapped with
// operation context, so callers can errors.Is against them regardless of
// which query produced the failure.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrCycle         = errors.New("dependency cycle detected")
	ErrBusy          = errors.New("store busy")
	ErrSchemaMismatch = errors.New("schema mismatch")
	ErrCorrupt       = errors.New("store corrupt")
)

// wrapDBError wraps a database error with operation context, folding
// sql.ErrNoRows into ErrNotFound for consistent handling up the stack.
func wrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
