// Package status implements the Status Deriver (spec.md §4.5): a pure
// function of a claim's latest proof, the current RepoContext, and the
// claim's scope, run fresh on every read and never persisted.
package status

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/roadmap/roadmap/internal/types"
)

// RepoState is the subset of repocontext.Context the Deriver needs,
// expressed as plain values rather than the live *repocontext.Context so
// Derive stays pure and trivially testable (spec.md §4.5: "running it
// twice on the same (C, R) yields identical results").
type RepoState struct {
	Head        string
	Clean       bool
	DirtyPaths  []string
	Invalidated []string // files_changed_in(commits_between(proof.commit_id, head))
}

// Derive computes claim's status per spec.md §4.5's five-step rule. proof
// is the latest proof for the claim, or nil if none has ever been recorded.
func Derive(claim *types.Claim, proof *types.Proof, repo RepoState) types.Status {
	if proof == nil {
		return types.StatusUnproven
	}
	if proof.ExitCode != 0 {
		return types.StatusBroken
	}
	if proof.CommitID == repo.Head && repo.Clean {
		return types.StatusProven
	}

	invalidation := append([]string{}, repo.Invalidated...)
	if !repo.Clean {
		invalidation = append(invalidation, repo.DirtyPaths...)
	}

	if len(claim.Scope) == 0 {
		if len(invalidation) == 0 {
			return types.StatusProven
		}
		return types.StatusStale
	}

	for _, p := range invalidation {
		if MatchesScope(claim.Scope, p) {
			return types.StatusStale
		}
	}
	return types.StatusProven
}

// MatchesScope reports whether path matches the scope glob list using
// "last matching pattern wins" semantics (spec.md §4.5): a leading `!`
// negates a pattern, and the path matches iff the last pattern (in list
// order) that matches it is non-negated.
func MatchesScope(scope []string, file string) bool {
	file = path.Clean(filepath(file))
	matched := false
	for _, pattern := range scope {
		negate := strings.HasPrefix(pattern, "!")
		p := strings.TrimPrefix(pattern, "!")
		ok, err := doublestar.Match(p, file)
		if err != nil || !ok {
			continue
		}
		matched = !negate
	}
	return matched
}

// filepath normalizes a path to forward slashes; git already reports
// repository-relative paths this way, but RepoState may be hand-built in
// tests with a platform path.
func filepath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
