package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/roadmap/roadmap/internal/apperr"
	"github.com/roadmap/roadmap/internal/store"
	"github.com/roadmap/roadmap/internal/types"
)

type fakeRepo struct {
	head  string
	ok    bool
	clean bool
}

func (f *fakeRepo) Head() (string, bool, error) { return f.head, f.ok, nil }
func (f *fakeRepo) IsClean() (bool, error)       { return f.clean, nil }

type fakeStore struct {
	store.Store
	proofs []*types.Proof
}

func (f *fakeStore) AppendProof(ctx context.Context, p *types.Proof) (*types.Proof, error) {
	out := *p
	out.ID = int64(len(f.proofs) + 1)
	out.RecordedAt = time.Unix(0, 0)
	f.proofs = append(f.proofs, &out)
	return &out, nil
}

func TestCheckRejectsDirtyTree(t *testing.T) {
	r := &Runner{
		Store: &fakeStore{},
		Repo:  &fakeRepo{head: "abc", ok: true, clean: false},
	}
	claim := &types.Claim{ID: 1, Slug: "x", ProveCmd: "true"}

	_, err := r.Check(context.Background(), claim, 0)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.DirtyWorkingTree {
		t.Fatalf("expected DirtyWorkingTree, got %v", err)
	}
}

func TestCheckRejectsNoProveCmd(t *testing.T) {
	r := &Runner{
		Store: &fakeStore{},
		Repo:  &fakeRepo{head: "abc", ok: true, clean: true},
	}
	claim := &types.Claim{ID: 1, Slug: "x"}

	_, err := r.Check(context.Background(), claim, 0)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.NoProveCommand {
		t.Fatalf("expected NoProveCommand, got %v", err)
	}
}

func TestCheckRejectsNoCommits(t *testing.T) {
	r := &Runner{
		Store: &fakeStore{},
		Repo:  &fakeRepo{ok: false, clean: true},
	}
	claim := &types.Claim{ID: 1, Slug: "x", ProveCmd: "true"}

	_, err := r.Check(context.Background(), claim, 0)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.NoCommits {
		t.Fatalf("expected NoCommits, got %v", err)
	}
}

func TestCheckSucceeds(t *testing.T) {
	fs := &fakeStore{}
	r := &Runner{
		Store: fs,
		Repo:  &fakeRepo{head: "abc123", ok: true, clean: true},
		Root:  t.TempDir(),
	}
	claim := &types.Claim{ID: 1, Slug: "x", ProveCmd: "echo hello"}

	result, err := r.Check(context.Background(), claim, 0)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if result.Proof.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", result.Proof.ExitCode)
	}
	if result.Proof.CommitID != "abc123" {
		t.Errorf("commit id = %q, want abc123", result.Proof.CommitID)
	}
	if result.Proof.Kind != types.ProofVerified {
		t.Errorf("kind = %q, want VERIFIED", result.Proof.Kind)
	}
}

func TestCheckRecordsBrokenOnNonZeroExit(t *testing.T) {
	fs := &fakeStore{}
	r := &Runner{
		Store: fs,
		Repo:  &fakeRepo{head: "abc123", ok: true, clean: true},
		Root:  t.TempDir(),
	}
	claim := &types.Claim{ID: 1, Slug: "x", ProveCmd: "exit 1"}

	result, err := r.Check(context.Background(), claim, 0)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.ExecutionFailed {
		t.Fatalf("expected ExecutionFailed, got %v", err)
	}
	if result.Proof.ExitCode != 1 {
		t.Errorf("exit code = %d, want 1", result.Proof.ExitCode)
	}
	if len(fs.proofs) != 1 {
		t.Fatalf("expected one proof recorded even on failure, got %d", len(fs.proofs))
	}
}

func TestCheckTimesOut(t *testing.T) {
	fs := &fakeStore{}
	r := &Runner{
		Store: fs,
		Repo:  &fakeRepo{head: "abc123", ok: true, clean: true},
		Root:  t.TempDir(),
	}
	claim := &types.Claim{ID: 1, Slug: "x", ProveCmd: "sleep 5"}

	result, err := r.Check(context.Background(), claim, 50*time.Millisecond)
	if err == nil {
		t.Fatal("expected an error from a timed-out command")
	}
	if !result.Proof.TimedOut {
		t.Error("expected proof to be marked timed out")
	}
}

func TestCheckWritesNoProofWhenCallerCancels(t *testing.T) {
	fs := &fakeStore{}
	r := &Runner{
		Store: fs,
		Repo:  &fakeRepo{head: "abc123", ok: true, clean: true},
		Root:  t.TempDir(),
	}
	claim := &types.Claim{ID: 1, Slug: "x", ProveCmd: "sleep 5"}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := r.Check(ctx, claim, 0)
	if !errors.Is(err, ErrTerminated) {
		t.Fatalf("expected ErrTerminated, got %v", err)
	}
	if len(fs.proofs) != 0 {
		t.Fatalf("expected no proof recorded on caller cancellation, got %d", len(fs.proofs))
	}
}

func TestAttestRequiresReason(t *testing.T) {
	r := &Runner{
		Store: &fakeStore{},
		Repo:  &fakeRepo{head: "abc", ok: true, clean: true},
	}
	claim := &types.Claim{ID: 1, Slug: "x"}

	_, err := r.Attest(context.Background(), claim, "")
	if err == nil {
		t.Fatal("expected error for empty reason")
	}
}

func TestAttestRecordsAttestedProof(t *testing.T) {
	fs := &fakeStore{}
	r := &Runner{
		Store: fs,
		Repo:  &fakeRepo{head: "abc", ok: true, clean: true},
	}
	claim := &types.Claim{ID: 1, Slug: "x"}

	result, err := r.Attest(context.Background(), claim, "verified manually in staging")
	if err != nil {
		t.Fatalf("attest: %v", err)
	}
	if result.Proof.Kind != types.ProofAttested {
		t.Errorf("kind = %q, want ATTESTED", result.Proof.Kind)
	}
	if result.Proof.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", result.Proof.ExitCode)
	}
}
