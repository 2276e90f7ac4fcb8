package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roadmap/roadmap/internal/store"
)

// SetActive records id as the current active claim, replacing any prior
// value (spec.md §6: `do` sets the active pointer, `status` with no
// argument reads it).
func (s *SQLiteStore) SetActive(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) > 0 FROM claims WHERE id = ?`, id).Scan(&exists); err != nil {
			return scanErr("set active", err)
		}
		if !exists {
			return fmt.Errorf("set active: %w", store.ErrNotFound)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO roadmap_state (key, value) VALUES (?, ?)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value
		`, activeClaimKey, fmt.Sprintf("%d", id))
		return scanErr("set active", err)
	})
}

// ClearActive removes the active pointer, if any.
func (s *SQLiteStore) ClearActive(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM roadmap_state WHERE key = ?`, activeClaimKey)
		return scanErr("clear active", err)
	})
}

// GetActive returns the active claim id if one is set.
func (s *SQLiteStore) GetActive(ctx context.Context) (int64, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM roadmap_state WHERE key = ?`, activeClaimKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, scanErr("get active", err)
	}
	var id int64
	if _, err := fmt.Sscanf(raw, "%d", &id); err != nil {
		return 0, false, fmt.Errorf("get active: %w: %v", store.ErrCorrupt, err)
	}
	return id, true, nil
}
