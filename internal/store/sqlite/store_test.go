package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/roadmap/roadmap/internal/store"
	"github.com/roadmap/roadmap/internal/types"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "state.db"), 2*time.Second)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndGetClaim(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.CreateClaim(ctx, store.ClaimSpec{Statement: "auth rejects expired tokens"}, nil, nil)
	if err != nil {
		t.Fatalf("create claim: %v", err)
	}
	if c.Slug != "auth-rejects-expired-tokens" {
		t.Errorf("slug = %q, want auth-rejects-expired-tokens", c.Slug)
	}

	got, err := s.GetClaim(ctx, c.ID)
	if err != nil {
		t.Fatalf("get claim: %v", err)
	}
	if got.Statement != c.Statement {
		t.Errorf("statement = %q, want %q", got.Statement, c.Statement)
	}
}

func TestCreateClaimSlugCollision(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.CreateClaim(ctx, store.ClaimSpec{Statement: "ship it"}, nil, nil)
	if err != nil {
		t.Fatalf("create first claim: %v", err)
	}
	b, err := s.CreateClaim(ctx, store.ClaimSpec{Statement: "ship it"}, nil, nil)
	if err != nil {
		t.Fatalf("create second claim: %v", err)
	}
	if a.Slug == b.Slug {
		t.Fatalf("expected distinct slugs, both were %q", a.Slug)
	}
	if b.Slug != "ship-it-2" {
		t.Errorf("second slug = %q, want ship-it-2", b.Slug)
	}
}

func TestCreateClaimRejectsCycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.CreateClaim(ctx, store.ClaimSpec{Statement: "a"}, nil, nil)
	if err != nil {
		t.Fatalf("create a: %v", err)
	}
	b, err := s.CreateClaim(ctx, store.ClaimSpec{Statement: "b"}, []int64{a.ID}, nil)
	if err != nil {
		t.Fatalf("create b: %v", err)
	}

	_, err = s.EditClaim(ctx, a.ID, store.ClaimEdit{}, []int64{b.ID}, nil, nil, nil)
	if !errors.Is(err, store.ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
}

func TestRemoveClaimCascadesAndClearsActive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.CreateClaim(ctx, store.ClaimSpec{Statement: "temp claim"}, nil, nil)
	if err != nil {
		t.Fatalf("create claim: %v", err)
	}
	if err := s.SetActive(ctx, c.ID); err != nil {
		t.Fatalf("set active: %v", err)
	}
	proof := &types.Proof{ClaimID: c.ID, Cmd: "go test ./...", ExitCode: 0, Kind: types.ProofVerified}
	if _, err := s.AppendProof(ctx, proof); err != nil {
		t.Fatalf("append proof: %v", err)
	}

	if err := s.RemoveClaim(ctx, c.ID); err != nil {
		t.Fatalf("remove claim: %v", err)
	}

	if _, err := s.GetClaim(ctx, c.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after removal, got %v", err)
	}
	if _, ok, err := s.GetActive(ctx); err != nil || ok {
		t.Fatalf("expected active pointer cleared, got ok=%v err=%v", ok, err)
	}
}

func TestLatestProofNotFoundWhenUnproven(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.CreateClaim(ctx, store.ClaimSpec{Statement: "unproven claim"}, nil, nil)
	if err != nil {
		t.Fatalf("create claim: %v", err)
	}
	if _, err := s.LatestProof(ctx, c.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
