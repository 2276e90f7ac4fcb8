package deptree_test

import (
	"testing"

	"github.com/roadmap/roadmap/internal/deptree"
	"github.com/roadmap/roadmap/internal/graph"
	"github.com/roadmap/roadmap/internal/types"
)

func buildGraph() *graph.Graph {
	claims := []*types.Claim{
		{ID: 1, Slug: "setup-db", Statement: "Database is migrated"},
		{ID: 2, Slug: "auth-login", Statement: "Login works"},
		{ID: 3, Slug: "auth-logout", Statement: "Logout works"},
	}
	deps := []types.Dependency{
		{BlockerID: 1, BlockedID: 2},
		{BlockerID: 1, BlockedID: 3},
	}
	return graph.Build(claims, deps)
}

func statusAlwaysUnproven(int64) types.Status { return types.StatusUnproven }

func TestBuildBlockersWalksUpstream(t *testing.T) {
	g := buildGraph()
	nodes := deptree.Build(g, 2, deptree.Blockers, statusAlwaysUnproven, 0)
	if len(nodes) != 2 {
		t.Fatalf("expected root + 1 blocker, got %d", len(nodes))
	}
	if nodes[0].Claim.ID != 2 || nodes[1].Claim.ID != 1 {
		t.Errorf("unexpected node order: %+v", nodes)
	}
}

func TestBuildBlocksWalksDownstream(t *testing.T) {
	g := buildGraph()
	nodes := deptree.Build(g, 1, deptree.Blocks, statusAlwaysUnproven, 0)
	if len(nodes) != 3 {
		t.Fatalf("expected root + 2 blocked claims, got %d", len(nodes))
	}
}

func TestBuildRespectsMaxDepth(t *testing.T) {
	g := buildGraph()
	nodes := deptree.Build(g, 1, deptree.Blocks, statusAlwaysUnproven, 0)
	if len(nodes) != 3 {
		t.Fatalf("sanity check failed: got %d nodes", len(nodes))
	}

	chain := graph.Build(
		[]*types.Claim{{ID: 1, Slug: "a"}, {ID: 2, Slug: "b"}, {ID: 3, Slug: "c"}},
		[]types.Dependency{{BlockerID: 1, BlockedID: 2}, {BlockerID: 2, BlockedID: 3}},
	)
	bounded := deptree.Build(chain, 1, deptree.Blocks, statusAlwaysUnproven, 1)
	if len(bounded) != 2 {
		t.Fatalf("expected root + 1 node within maxDepth 1, got %d", len(bounded))
	}
	if !bounded[1].Truncated {
		t.Errorf("expected the node at the depth limit to be marked truncated")
	}
}

func TestFormatNodeIncludesStatusAndStatement(t *testing.T) {
	g := buildGraph()
	nodes := deptree.Build(g, 1, deptree.Blocks, statusAlwaysUnproven, 0)
	line := deptree.FormatNode(nodes[0], func(s types.Status, slug string) string { return slug })
	want := "setup-db: Database is migrated (UNPROVEN)"
	if line != want {
		t.Errorf("FormatNode() = %q, want %q", line, want)
	}
}
