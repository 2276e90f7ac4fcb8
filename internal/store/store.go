// Package store defines the persistence contract for claims, dependency
// edges, proofs, and the active pointer (spec.md §4.1). The only
// implementation is internal/store/sqlite; the interface exists so the
// Graph Kernel, Resolver, and Runner depend on a contract rather than a
// concrete database, and so tests can swap in a fake when a real SQLite
// file is unnecessary overhead.
package store

import (
	"context"

	"github.com/roadmap/roadmap/internal/types"
)

// ClaimSpec describes a claim to be created.
type ClaimSpec struct {
	Statement string
	Notes     string
	ProveCmd  string
	Scope     []string
}

// ClaimEdit describes a partial update to a claim's non-identity fields.
// Nil pointers mean "leave unchanged"; Scope replaces the whole list when
// SetScope is true (an empty or nil Scope then clears scope), and is
// ignored when SetScope is false.
type ClaimEdit struct {
	Statement *string
	Notes     *string
	ProveCmd  *string
	Scope     []string
	SetScope  bool
}

// Store is the transactional, persistent home for everything in spec.md §3.
type Store interface {
	// CreateClaim inserts a claim and its initial dependency edges in one
	// transaction. after are blocker ids (this claim depends on them); blocks
	// are blocked ids (this claim blocks them). Store checks inside the
	// transaction that the resulting graph stays acyclic and returns
	// ErrCycle otherwise.
	CreateClaim(ctx context.Context, spec ClaimSpec, after, blocks []int64) (*types.Claim, error)

	// EditClaim updates non-identity fields and/or rewrites dependency edges
	// atomically. addAfter/addBlocks/removeAfter/removeBlocks are ids.
	EditClaim(ctx context.Context, id int64, edit ClaimEdit, addAfter, addBlocks, removeAfter, removeBlocks []int64) (*types.Claim, error)

	// RemoveClaim deletes a claim, cascading its dependency edges and proof
	// history, and clears the active pointer if it referenced this claim.
	RemoveClaim(ctx context.Context, id int64) error

	GetClaim(ctx context.Context, id int64) (*types.Claim, error)
	GetClaimBySlug(ctx context.Context, slug string) (*types.Claim, error)
	ListClaims(ctx context.Context) ([]*types.Claim, error)
	SlugExists(ctx context.Context, slug string) (bool, error)

	ListDependencies(ctx context.Context) ([]types.Dependency, error)

	// AppendProof appends one proof row within its own transaction. Returns
	// the row with its assigned id and recorded_at.
	AppendProof(ctx context.Context, p *types.Proof) (*types.Proof, error)
	LatestProof(ctx context.Context, claimID int64) (*types.Proof, error)
	ProofHistory(ctx context.Context, claimID int64) ([]*types.Proof, error)
	RecentProofs(ctx context.Context, limit int) ([]*types.Proof, error)

	SetActive(ctx context.Context, id int64) error
	ClearActive(ctx context.Context) error
	// GetActive returns (id, true, nil) if an active claim is set, (0, false, nil) otherwise.
	GetActive(ctx context.Context) (int64, bool, error)

	Close() error
}
