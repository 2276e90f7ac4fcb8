package status

import (
	"testing"

	"github.com/roadmap/roadmap/internal/types"
)

func TestDeriveUnprovenWithNoProof(t *testing.T) {
	got := Derive(&types.Claim{}, nil, RepoState{})
	if got != types.StatusUnproven {
		t.Errorf("got %s, want UNPROVEN", got)
	}
}

func TestDeriveBrokenOnNonZeroExit(t *testing.T) {
	proof := &types.Proof{ExitCode: 1}
	got := Derive(&types.Claim{}, proof, RepoState{})
	if got != types.StatusBroken {
		t.Errorf("got %s, want BROKEN", got)
	}
}

func TestDeriveProvenOnExactCommitAndCleanTree(t *testing.T) {
	proof := &types.Proof{ExitCode: 0, CommitID: "abc"}
	got := Derive(&types.Claim{}, proof, RepoState{Head: "abc", Clean: true})
	if got != types.StatusProven {
		t.Errorf("got %s, want PROVEN", got)
	}
}

func TestDeriveGlobalDecayStaleOnAnyChange(t *testing.T) {
	proof := &types.Proof{ExitCode: 0, CommitID: "abc"}
	repo := RepoState{Head: "def", Clean: true, Invalidated: []string{"unrelated/file.go"}}
	got := Derive(&types.Claim{}, proof, repo)
	if got != types.StatusStale {
		t.Errorf("got %s, want STALE (global decay)", got)
	}
}

func TestDeriveSmartDecayProvenWhenScopeUntouched(t *testing.T) {
	proof := &types.Proof{ExitCode: 0, CommitID: "abc"}
	claim := &types.Claim{Scope: []string{"internal/auth/**"}}
	repo := RepoState{Head: "def", Clean: true, Invalidated: []string{"internal/unrelated/file.go"}}
	got := Derive(claim, proof, repo)
	if got != types.StatusProven {
		t.Errorf("got %s, want PROVEN (scope untouched)", got)
	}
}

func TestDeriveSmartDecayStaleWhenScopeTouched(t *testing.T) {
	proof := &types.Proof{ExitCode: 0, CommitID: "abc"}
	claim := &types.Claim{Scope: []string{"internal/auth/**"}}
	repo := RepoState{Head: "def", Clean: true, Invalidated: []string{"internal/auth/login.go"}}
	got := Derive(claim, proof, repo)
	if got != types.StatusStale {
		t.Errorf("got %s, want STALE (scope touched)", got)
	}
}

func TestDeriveDirtyTreeIncludesDirtyPaths(t *testing.T) {
	proof := &types.Proof{ExitCode: 0, CommitID: "abc"}
	claim := &types.Claim{Scope: []string{"internal/auth/**"}}
	repo := RepoState{Head: "abc", Clean: false, DirtyPaths: []string{"internal/auth/login.go"}}
	got := Derive(claim, proof, repo)
	if got != types.StatusStale {
		t.Errorf("got %s, want STALE (dirty path in scope)", got)
	}
}

func TestMatchesScopeLastPatternWins(t *testing.T) {
	scope := []string{"src/**", "!src/vendor/**"}
	if MatchesScope(scope, "src/vendor/lib.go") {
		t.Error("expected negated pattern to exclude src/vendor/lib.go")
	}
	if !MatchesScope(scope, "src/app.go") {
		t.Error("expected src/app.go to match scope")
	}
}

func TestMatchesScopeDoubleStarCrossesDirectories(t *testing.T) {
	scope := []string{"**/*.go"}
	if !MatchesScope(scope, "a/b/c/file.go") {
		t.Error("expected ** to match across directories")
	}
}
