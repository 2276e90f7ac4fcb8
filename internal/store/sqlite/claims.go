package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/roadmap/roadmap/internal/idgen"
	"github.com/roadmap/roadmap/internal/store"
	"github.com/roadmap/roadmap/internal/types"
)

func scanClaim(row interface {
	Scan(dest ...any) error
}) (*types.Claim, error) {
	var c types.Claim
	var scope, createdAt string
	if err := row.Scan(&c.ID, &c.Slug, &c.Statement, &c.Notes, &c.ProveCmd, &scope, &createdAt); err != nil {
		return nil, err
	}
	c.Scope = parseJSONStringArray(scope)
	c.CreatedAt = parseTimeString(createdAt)
	return &c, nil
}

// CreateClaim inserts a claim and its dependency edges in one transaction.
// Acyclicity is checked by checkAcyclic inside that transaction before
// commit; a rejected insert returns ErrCycle without naming the cycle.
func (s *SQLiteStore) CreateClaim(ctx context.Context, spec store.ClaimSpec, after, blocks []int64) (*types.Claim, error) {
	if err := (&types.Claim{Statement: spec.Statement}).Validate(); err != nil {
		return nil, err
	}

	slug := idgen.Slugify(spec.Statement)
	var claim *types.Claim
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		unique, err := uniqueSlug(ctx, tx, slug)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		res, err := tx.ExecContext(ctx, `
			INSERT INTO claims (slug, statement, notes, prove_cmd, scope, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, unique, spec.Statement, spec.Notes, spec.ProveCmd, formatJSONStringArray(spec.Scope), now.Format(time.RFC3339Nano))
		if err != nil {
			return scanErr("create claim", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("create claim: %w", err)
		}

		if err := insertEdges(ctx, tx, id, after, blocks); err != nil {
			return err
		}
		if err := checkAcyclic(ctx, tx); err != nil {
			return err
		}

		claim = &types.Claim{
			ID:        id,
			Slug:      unique,
			Statement: spec.Statement,
			Notes:     spec.Notes,
			ProveCmd:  spec.ProveCmd,
			Scope:     spec.Scope,
			CreatedAt: now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claim, nil
}

// EditClaim updates non-identity fields and/or rewrites dependency edges
// atomically, re-validating acyclicity before commit.
func (s *SQLiteStore) EditClaim(ctx context.Context, id int64, edit store.ClaimEdit, addAfter, addBlocks, removeAfter, removeBlocks []int64) (*types.Claim, error) {
	var claim *types.Claim
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		sets := []string{}
		args := []any{}
		if edit.Statement != nil {
			sets = append(sets, "statement = ?")
			args = append(args, *edit.Statement)
		}
		if edit.Notes != nil {
			sets = append(sets, "notes = ?")
			args = append(args, *edit.Notes)
		}
		if edit.ProveCmd != nil {
			sets = append(sets, "prove_cmd = ?")
			args = append(args, *edit.ProveCmd)
		}
		if edit.SetScope {
			sets = append(sets, "scope = ?")
			args = append(args, formatJSONStringArray(edit.Scope))
		}
		if len(sets) > 0 {
			args = append(args, id)
			q := fmt.Sprintf("UPDATE claims SET %s WHERE id = ?", strings.Join(sets, ", "))
			res, err := tx.ExecContext(ctx, q, args...)
			if err != nil {
				return scanErr("edit claim", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("edit claim: %w", err)
			}
			if n == 0 {
				return fmt.Errorf("edit claim: %w", store.ErrNotFound)
			}
		} else if _, err := getClaimTx(ctx, tx, id); err != nil {
			return err
		}

		for _, blockerID := range removeAfter {
			if _, err := tx.ExecContext(ctx, `DELETE FROM dependencies WHERE blocker_id = ? AND blocked_id = ?`, blockerID, id); err != nil {
				return scanErr("remove dependency", err)
			}
		}
		for _, blockedID := range removeBlocks {
			if _, err := tx.ExecContext(ctx, `DELETE FROM dependencies WHERE blocker_id = ? AND blocked_id = ?`, id, blockedID); err != nil {
				return scanErr("remove dependency", err)
			}
		}
		if err := insertEdges(ctx, tx, id, addAfter, addBlocks); err != nil {
			return err
		}
		if err := checkAcyclic(ctx, tx); err != nil {
			return err
		}

		c, err := getClaimTx(ctx, tx, id)
		if err != nil {
			return err
		}
		claim = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claim, nil
}

// RemoveClaim deletes a claim; ON DELETE CASCADE drops its dependency edges
// and proof history along with it.
func (s *SQLiteStore) RemoveClaim(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM claims WHERE id = ?`, id)
		if err != nil {
			return scanErr("remove claim", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("remove claim: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("remove claim: %w", store.ErrNotFound)
		}
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM roadmap_state WHERE key = ? AND value = ?
		`, activeClaimKey, fmt.Sprintf("%d", id)); err != nil {
			return scanErr("clear active on remove", err)
		}
		return nil
	})
}

func (s *SQLiteStore) GetClaim(ctx context.Context, id int64) (*types.Claim, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, slug, statement, notes, prove_cmd, scope, created_at FROM claims WHERE id = ?
	`, id)
	c, err := scanClaim(row)
	if err != nil {
		return nil, scanErr("get claim", err)
	}
	return c, nil
}

func (s *SQLiteStore) GetClaimBySlug(ctx context.Context, slug string) (*types.Claim, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, slug, statement, notes, prove_cmd, scope, created_at FROM claims WHERE slug = ?
	`, slug)
	c, err := scanClaim(row)
	if err != nil {
		return nil, scanErr("get claim by slug", err)
	}
	return c, nil
}

func (s *SQLiteStore) ListClaims(ctx context.Context) ([]*types.Claim, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, slug, statement, notes, prove_cmd, scope, created_at FROM claims ORDER BY id
	`)
	if err != nil {
		return nil, scanErr("list claims", err)
	}
	defer rows.Close()

	var out []*types.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, scanErr("list claims", err)
		}
		out = append(out, c)
	}
	return out, scanErr("list claims", rows.Err())
}

func (s *SQLiteStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) > 0 FROM claims WHERE slug = ?`, slug).Scan(&exists)
	if err != nil {
		return false, scanErr("check slug", err)
	}
	return exists, nil
}

func (s *SQLiteStore) ListDependencies(ctx context.Context) ([]types.Dependency, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT blocker_id, blocked_id FROM dependencies ORDER BY blocker_id, blocked_id`)
	if err != nil {
		return nil, scanErr("list dependencies", err)
	}
	defer rows.Close()

	var out []types.Dependency
	for rows.Next() {
		var d types.Dependency
		if err := rows.Scan(&d.BlockerID, &d.BlockedID); err != nil {
			return nil, scanErr("list dependencies", err)
		}
		out = append(out, d)
	}
	return out, scanErr("list dependencies", rows.Err())
}

func getClaimTx(ctx context.Context, tx *sql.Tx, id int64) (*types.Claim, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT id, slug, statement, notes, prove_cmd, scope, created_at FROM claims WHERE id = ?
	`, id)
	c, err := scanClaim(row)
	if err != nil {
		return nil, scanErr("get claim", err)
	}
	return c, nil
}

func insertEdges(ctx context.Context, tx *sql.Tx, id int64, after, blocks []int64) error {
	for _, blockerID := range after {
		if blockerID == id {
			return fmt.Errorf("insert dependency: claim cannot depend on itself")
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO dependencies (blocker_id, blocked_id) VALUES (?, ?)
		`, blockerID, id); err != nil {
			return scanErr("insert dependency", err)
		}
	}
	for _, blockedID := range blocks {
		if blockedID == id {
			return fmt.Errorf("insert dependency: claim cannot depend on itself")
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO dependencies (blocker_id, blocked_id) VALUES (?, ?)
		`, id, blockedID); err != nil {
			return scanErr("insert dependency", err)
		}
	}
	return nil
}

// checkAcyclic is the Store-level acyclicity check (spec.md §3, "Graph
// remains acyclic after every successful write"): a recursive CTE walk from
// every edge looking for a path back to its own blocker. It is the only
// cycle check on the CreateClaim/EditClaim path (the CLI does not call
// Graph.CheckAcyclic first), and it reports that a cycle exists, not which
// claims form it.
func checkAcyclic(ctx context.Context, tx *sql.Tx) error {
	var found bool
	err := tx.QueryRowContext(ctx, `
		WITH RECURSIVE reachable(start_id, node_id) AS (
			SELECT blocker_id, blocked_id FROM dependencies
			UNION
			SELECT r.start_id, d.blocked_id
			FROM reachable r
			JOIN dependencies d ON d.blocker_id = r.node_id
		)
		SELECT EXISTS (SELECT 1 FROM reachable WHERE node_id = start_id)
	`).Scan(&found)
	if err != nil {
		return scanErr("check acyclic", err)
	}
	if found {
		return store.ErrCycle
	}
	return nil
}

func uniqueSlug(ctx context.Context, tx *sql.Tx, base string) (string, error) {
	candidate := base
	for n := 2; ; n++ {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) > 0 FROM claims WHERE slug = ?`, candidate).Scan(&exists); err != nil {
			return "", scanErr("check slug", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}
