package graph

import (
	"errors"
	"testing"
	"time"

	"github.com/roadmap/roadmap/internal/apperr"
	"github.com/roadmap/roadmap/internal/types"
)

func claim(id int64, offset time.Duration) *types.Claim {
	return &types.Claim{ID: id, Slug: fmtID(id), CreatedAt: time.Unix(0, 0).Add(offset)}
}

func fmtID(id int64) string {
	return string(rune('a' + id))
}

func TestCheckAcyclicAcceptsDAG(t *testing.T) {
	claims := []*types.Claim{claim(1, 0), claim(2, time.Second), claim(3, 2*time.Second)}
	deps := []types.Dependency{{BlockerID: 1, BlockedID: 2}}
	g := Build(claims, deps)

	if err := g.CheckAcyclic([]types.Dependency{{BlockerID: 2, BlockedID: 3}}); err != nil {
		t.Fatalf("expected no cycle, got %v", err)
	}
}

func TestCheckAcyclicRejectsCycle(t *testing.T) {
	claims := []*types.Claim{claim(1, 0), claim(2, time.Second)}
	deps := []types.Dependency{{BlockerID: 1, BlockedID: 2}}
	g := Build(claims, deps)

	err := g.CheckAcyclic([]types.Dependency{{BlockerID: 2, BlockedID: 1}})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.WouldCycle {
		t.Fatalf("expected WouldCycle error, got %v", err)
	}
}

func TestTopoOrderRespectsLayersThenCreatedAtThenID(t *testing.T) {
	claims := []*types.Claim{claim(3, 0), claim(1, time.Second), claim(2, 2*time.Second), claim(4, 0)}
	deps := []types.Dependency{{BlockerID: 1, BlockedID: 2}}
	g := Build(claims, deps)

	order := g.TopoOrder()
	pos := make(map[int64]int)
	for i, id := range order {
		pos[id] = i
	}
	if pos[1] >= pos[2] {
		t.Fatalf("expected 1 before 2 in topo order, got %v", order)
	}
	if pos[3] >= pos[1] {
		t.Fatalf("expected 3 (created earlier) before 1 in topo order, got %v", order)
	}
	if pos[3] >= pos[4] {
		t.Fatalf("expected 3 before 4 (same created_at, lower id) in topo order, got %v", order)
	}
}

func TestFrontierExcludesProvenAndBlocked(t *testing.T) {
	claims := []*types.Claim{claim(1, 0), claim(2, time.Second), claim(3, 2*time.Second), claim(4, 3*time.Second)}
	deps := []types.Dependency{{BlockerID: 1, BlockedID: 2}, {BlockerID: 3, BlockedID: 4}}
	g := Build(claims, deps)

	status := map[int64]types.Status{1: types.StatusProven, 2: types.StatusUnproven, 3: types.StatusUnproven, 4: types.StatusUnproven}
	frontier := g.Frontier(func(id int64) types.Status { return status[id] })

	if len(frontier) != 2 {
		t.Fatalf("expected claims 2 and 3 in frontier, got %v", frontier)
	}
}

func TestValidateFocusReportsUnprovenBlockers(t *testing.T) {
	claims := []*types.Claim{claim(1, 0), claim(2, time.Second)}
	deps := []types.Dependency{{BlockerID: 1, BlockedID: 2}}
	g := Build(claims, deps)

	status := map[int64]types.Status{1: types.StatusStale, 2: types.StatusUnproven}
	err := g.ValidateFocus(2, func(id int64) types.Status { return status[id] })

	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.BlockedByUnproven {
		t.Fatalf("expected BlockedByUnproven error, got %v", err)
	}
}
