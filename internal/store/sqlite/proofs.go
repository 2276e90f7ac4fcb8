package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roadmap/roadmap/internal/store"
	"github.com/roadmap/roadmap/internal/types"
)

func scanProof(row interface {
	Scan(dest ...any) error
}) (*types.Proof, error) {
	var p types.Proof
	var recordedAt string
	var kind string
	var timedOut int
	if err := row.Scan(&p.ID, &p.ClaimID, &recordedAt, &p.Cmd, &p.ExitCode, &p.CommitID,
		&p.DurationMS, &p.StdoutTail, &p.StderrTail, &kind, &p.Reason, &timedOut); err != nil {
		return nil, err
	}
	p.RecordedAt = parseTimeString(recordedAt)
	p.Kind = types.ProofKind(kind)
	p.TimedOut = timedOut != 0
	return &p, nil
}

const proofColumns = `id, claim_id, recorded_at, cmd, exit_code, commit_id, duration_ms, stdout_tail, stderr_tail, kind, reason, timed_out`

// AppendProof appends one proof row within its own transaction; the proof
// log is append-only (spec.md §3: "no proof row is ever edited or deleted
// except by removing its claim").
func (s *SQLiteStore) AppendProof(ctx context.Context, p *types.Proof) (*types.Proof, error) {
	var result *types.Proof
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) > 0 FROM claims WHERE id = ?`, p.ClaimID).Scan(&exists); err != nil {
			return scanErr("append proof", err)
		}
		if !exists {
			return fmt.Errorf("append proof: %w", store.ErrNotFound)
		}

		now := time.Now().UTC()
		timedOut := 0
		if p.TimedOut {
			timedOut = 1
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO proofs (claim_id, recorded_at, cmd, exit_code, commit_id, duration_ms, stdout_tail, stderr_tail, kind, reason, timed_out)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ClaimID, now.Format(time.RFC3339Nano), p.Cmd, p.ExitCode, p.CommitID, p.DurationMS,
			p.StdoutTail, p.StderrTail, string(p.Kind), p.Reason, timedOut)
		if err != nil {
			return scanErr("append proof", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("append proof: %w", err)
		}

		out := *p
		out.ID = id
		out.RecordedAt = now
		result = &out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// LatestProof returns the most recently recorded proof for claimID, or
// ErrNotFound if none exists yet (an UNPROVEN claim).
func (s *SQLiteStore) LatestProof(ctx context.Context, claimID int64) (*types.Proof, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT %s FROM proofs WHERE claim_id = ? ORDER BY recorded_at DESC, id DESC LIMIT 1
	`, proofColumns), claimID)
	p, err := scanProof(row)
	if err != nil {
		return nil, scanErr("latest proof", err)
	}
	return p, nil
}

// ProofHistory returns every proof ever recorded for claimID, oldest first.
func (s *SQLiteStore) ProofHistory(ctx context.Context, claimID int64) ([]*types.Proof, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM proofs WHERE claim_id = ? ORDER BY recorded_at ASC, id ASC
	`, proofColumns), claimID)
	if err != nil {
		return nil, scanErr("proof history", err)
	}
	defer rows.Close()

	var out []*types.Proof
	for rows.Next() {
		p, err := scanProof(rows)
		if err != nil {
			return nil, scanErr("proof history", err)
		}
		out = append(out, p)
	}
	return out, scanErr("proof history", rows.Err())
}

// RecentProofs returns the most recently recorded proofs across all claims,
// newest first, bounded by limit. Backs the `history` command (SPEC_FULL.md
// §12).
func (s *SQLiteStore) RecentProofs(ctx context.Context, limit int) ([]*types.Proof, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM proofs ORDER BY recorded_at DESC, id DESC LIMIT ?
	`, proofColumns), limit)
	if err != nil {
		return nil, scanErr("recent proofs", err)
	}
	defer rows.Close()

	var out []*types.Proof
	for rows.Next() {
		p, err := scanProof(rows)
		if err != nil {
			return nil, scanErr("recent proofs", err)
		}
		out = append(out, p)
	}
	return out, scanErr("recent proofs", rows.Err())
}
