package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/roadmap/roadmap/internal/apperr"
	"github.com/roadmap/roadmap/internal/graph"
	"github.com/roadmap/roadmap/internal/resolver"
	"github.com/roadmap/roadmap/internal/session"
	"github.com/roadmap/roadmap/internal/status"
	"github.com/roadmap/roadmap/internal/types"
)

// app bundles everything a command needs once a Session is open: the Graph
// Kernel built from the Store's current claims/edges, and a memoized
// status-deriving function so every command in one invocation sees a
// single consistent snapshot (spec.md §4.5: "derive" is a pure read, but we
// still only want to pay its RepoContext shelling-out cost once per claim).
type app struct {
	sess  *session.Session
	graph *graph.Graph
	log   *slog.Logger
	cache map[int64]types.Status
}

func newApp(sess *session.Session, log *slog.Logger) (*app, error) {
	ctx := context.Background()
	claims, err := sess.Store.ListClaims(ctx)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	deps, err := sess.Store.ListDependencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list dependencies: %w", err)
	}
	return &app{
		sess:  sess,
		graph: graph.Build(claims, deps),
		log:   log,
		cache: make(map[int64]types.Status),
	}, nil
}

// statusOf derives (and memoizes) claim id's status against the current
// repo snapshot, per spec.md §4.5.
func (a *app) statusOf(id int64) types.Status {
	if s, ok := a.cache[id]; ok {
		return s
	}
	s := a.deriveUncached(id)
	a.cache[id] = s
	return s
}

func (a *app) deriveUncached(id int64) types.Status {
	claim := a.graph.Claim(id)
	if claim == nil {
		return types.StatusUnproven
	}
	proof, err := a.sess.Store.LatestProof(context.Background(), id)
	if err != nil {
		return types.StatusUnproven
	}

	repoState, err := a.repoStateSince(proof.CommitID)
	if err != nil {
		a.log.Debug("repo state lookup failed, treating as dirty", "claim", claim.Slug, "err", err)
		repoState.Clean = false
	}
	return status.Derive(claim, proof, repoState)
}

// repoStateSince builds the status.RepoState for a claim last proven at
// commit. Empty commit (never proven) is handled by callers before this is
// reached; Derive itself never calls in that case.
func (a *app) repoStateSince(commit string) (status.RepoState, error) {
	head, _, err := a.sess.Repo.Head()
	if err != nil {
		return status.RepoState{}, err
	}
	clean, err := a.sess.Repo.IsClean()
	if err != nil {
		return status.RepoState{}, err
	}
	dirty, err := a.sess.Repo.DirtyPaths()
	if err != nil {
		return status.RepoState{}, err
	}

	var invalidated []string
	if commit != "" && commit != head {
		commits, err := a.sess.Repo.CommitsBetween(commit, head)
		if err != nil {
			return status.RepoState{}, err
		}
		invalidated, err = a.sess.Repo.FilesChangedIn(commits)
		if err != nil {
			return status.RepoState{}, err
		}
	}

	return status.RepoState{Head: head, Clean: clean, DirtyPaths: dirty, Invalidated: invalidated}, nil
}

// resolve looks ref up via the strict Resolver when strict is set, otherwise
// via the lenient Resolver (spec.md §4.4), prompting interactively on
// lenient ambiguity unless non-interactive output was requested.
func (a *app) resolve(ref string, strict bool) (*types.Claim, error) {
	claims := make([]*types.Claim, 0, len(a.graph.TopoOrder()))
	for _, id := range a.graph.TopoOrder() {
		claims = append(claims, a.graph.Claim(id))
	}

	if strict {
		return resolver.Strict(ref, claims)
	}

	opts := resolver.Options{
		AmbiguityMargin: a.sess.Config.ResolverMargin,
		MinFuzzyScore:   a.sess.Config.ResolverMinScore,
	}
	claim, err := resolver.Lenient(ref, claims, opts)
	if err == nil {
		return claim, nil
	}

	kind, ok := apperr.KindOf(err)
	if !ok || kind != apperr.Ambiguous || jsonOutput || !isInteractive() {
		return nil, err
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		return nil, err
	}
	chosen, promptErr := promptDisambiguate(ref, appErr.Candidates)
	if promptErr != nil {
		return nil, promptErr
	}
	return a.graph.Claim(chosen), nil
}

func (a *app) claimJSON(claim *types.Claim) *types.ClaimJSON {
	s := a.statusOf(claim.ID)
	var latest *types.ProofJSON
	if p, err := a.sess.Store.LatestProof(context.Background(), claim.ID); err == nil {
		latest = p.JSON()
	}
	after := make([]string, 0)
	for _, id := range a.graph.Blockers(claim.ID) {
		if c := a.graph.Claim(id); c != nil {
			after = append(after, c.Slug)
		}
	}
	blocks := make([]string, 0)
	for _, id := range a.graph.Blocks(claim.ID) {
		if c := a.graph.Claim(id); c != nil {
			blocks = append(blocks, c.Slug)
		}
	}
	return &types.ClaimJSON{
		ID:          claim.ID,
		Slug:        claim.Slug,
		Statement:   claim.Statement,
		Notes:       claim.Notes,
		ProveCmd:    claim.ProveCmd,
		Scope:       claim.Scope,
		Status:      s,
		After:       after,
		Blocks:      blocks,
		LatestProof: latest,
	}
}

// resolveOrActive resolves args[0] if present, otherwise falls back to the
// active claim set by `do` (spec.md §6: several commands take an optional
// ref and operate on the active claim when it's omitted).
func resolveOrActive(a *app, args []string) (*types.Claim, error) {
	if len(args) == 1 {
		return a.resolve(args[0], false)
	}
	id, ok, err := a.sess.Active(context.Background())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.New(apperr.NotFound, "no ref given and no active claim set (use `roadmap do <ref>` first)")
	}
	claim := a.graph.Claim(id)
	if claim == nil {
		return nil, apperr.New(apperr.NotFound, "active claim %d no longer exists", id)
	}
	return claim, nil
}

func isInteractive() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// emitJSON prints v as indented JSON, for --json mode.
func emitJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// fail prints err the way spec.md §7 requires (single human line, or the
// Error JSON shape under --json) and exits with its mapped code.
func fail(err error) {
	if jsonOutput {
		emitJSON(apperr.JSON(err))
	} else {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
	}
	os.Exit(apperr.ExitCodeForErr(err))
}
