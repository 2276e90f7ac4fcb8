// Package graph is the in-memory DAG assembled from Store rows (spec.md
// §4.3): acyclic insertion checking, topological ordering, and the
// frontier of work that is unblocked but not yet PROVEN.
package graph

import (
	"fmt"
	"sort"

	"github.com/roadmap/roadmap/internal/apperr"
	"github.com/roadmap/roadmap/internal/types"
)

// Graph is a read snapshot of claims and dependency edges, rebuilt fresh
// from the Store at the start of every command (spec.md §5: "open per
// command, close on exit").
type Graph struct {
	claims   map[int64]*types.Claim
	blockers map[int64][]int64 // blocked id -> blocker ids
	blocks   map[int64][]int64 // blocker id -> blocked ids
}

// Build assembles a Graph from the full set of claims and dependency edges.
func Build(claims []*types.Claim, deps []types.Dependency) *Graph {
	g := &Graph{
		claims:   make(map[int64]*types.Claim, len(claims)),
		blockers: make(map[int64][]int64),
		blocks:   make(map[int64][]int64),
	}
	for _, c := range claims {
		g.claims[c.ID] = c
	}
	for _, d := range deps {
		g.blockers[d.BlockedID] = append(g.blockers[d.BlockedID], d.BlockerID)
		g.blocks[d.BlockerID] = append(g.blocks[d.BlockerID], d.BlockedID)
	}
	return g
}

// Claim returns the claim with id, or nil if it is not in the graph.
func (g *Graph) Claim(id int64) *types.Claim { return g.claims[id] }

// Blockers returns the ids that directly block id.
func (g *Graph) Blockers(id int64) []int64 { return g.blockers[id] }

// Blocks returns the ids that id directly blocks.
func (g *Graph) Blocks(id int64) []int64 { return g.blocks[id] }

// CheckAcyclic reports whether adding the given prospective edges (blocker
// -> blocked pairs) to the current graph would introduce a cycle. On
// failure it returns a WouldCycle *apperr.Error naming the offending path,
// using standard DFS three-colour detection over the prospective adjacency
// (spec.md §4.3), in the same resolving-set/chain style the teacher's
// formula.Parser.Resolve uses for circular-extends detection.
func (g *Graph) CheckAcyclic(newEdges []types.Dependency) error {
	adj := make(map[int64][]int64, len(g.blocks))
	for id, out := range g.blocks {
		adj[id] = append(adj[id], out...)
	}
	for _, e := range newEdges {
		adj[e.BlockerID] = append(adj[e.BlockerID], e.BlockedID)
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[int64]int)
	var chain []int64

	var visit func(id int64) error
	visit = func(id int64) error {
		color[id] = gray
		chain = append(chain, id)
		for _, next := range adj[id] {
			switch color[next] {
			case gray:
				cycle := append(append([]int64{}, chain...), next)
				return apperr.New(apperr.WouldCycle, "dependency cycle: %s", formatPath(cycle))
			case white:
				if err := visit(next); err != nil {
					return err
				}
			}
		}
		chain = chain[:len(chain)-1]
		color[id] = black
		return nil
	}

	ids := make([]int64, 0, len(adj))
	for id := range adj {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if color[id] == white {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatPath(ids []int64) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += " -> "
		}
		out += fmt.Sprintf("%d", id)
	}
	return out
}

// layers computes, for every claim, its longest-path distance from a
// source (a claim with no blockers): layer 0 for sources, otherwise one
// more than the maximum layer of its blockers. Adapted from the teacher's
// cmd/bd/graph.go computeLayout, which assigns the same longest-path
// layering to size an ASCII dependency diagram; here it orders topo_order
// and the frontier instead of a rendering.
func (g *Graph) layers() map[int64]int {
	layer := make(map[int64]int, len(g.claims))
	changed := true
	for changed {
		changed = false
		for id := range g.claims {
			if _, done := layer[id]; done {
				continue
			}
			blockers := g.blockers[id]
			if len(blockers) == 0 {
				layer[id] = 0
				changed = true
				continue
			}
			max := -1
			allAssigned := true
			for _, b := range blockers {
				l, ok := layer[b]
				if !ok {
					allAssigned = false
					break
				}
				if l > max {
					max = l
				}
			}
			if allAssigned {
				layer[id] = max + 1
				changed = true
			}
		}
	}
	// Any claim left unassigned takes part in a cycle (which the Store's
	// acyclicity check normally prevents); place it at layer 0 rather than
	// leaving it out of ordering.
	for id := range g.claims {
		if _, done := layer[id]; !done {
			layer[id] = 0
		}
	}
	return layer
}

// TopoOrder returns claim ids in a deterministic topological order: layer
// ascending, then created_at ascending, then id ascending (spec.md §4.3).
func (g *Graph) TopoOrder() []int64 {
	layer := g.layers()
	ids := make([]int64, 0, len(g.claims))
	for id := range g.claims {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return less(g, layer, ids[i], ids[j]) })
	return ids
}

// Frontier returns the ids whose derived status (from status) is not
// PROVEN and whose every blocker is PROVEN, in TopoOrder's stable order
// (spec.md §4.3).
func (g *Graph) Frontier(status func(id int64) types.Status) []int64 {
	var out []int64
	for _, id := range g.TopoOrder() {
		if status(id) == types.StatusProven {
			continue
		}
		if g.allBlockersProven(id, status) {
			out = append(out, id)
		}
	}
	return out
}

func (g *Graph) allBlockersProven(id int64, status func(id int64) types.Status) bool {
	for _, b := range g.blockers[id] {
		if status(b) != types.StatusProven {
			return false
		}
	}
	return true
}

// ValidateFocus ensures every blocker of id is PROVEN under status,
// returning a BlockedByUnproven error naming the offending blockers
// otherwise (spec.md §4.3).
func (g *Graph) ValidateFocus(id int64, status func(id int64) types.Status) error {
	var blocked []int64
	for _, b := range g.blockers[id] {
		if status(b) != types.StatusProven {
			blocked = append(blocked, b)
		}
	}
	if len(blocked) == 0 {
		return nil
	}
	return apperr.New(apperr.BlockedByUnproven, "blocked by unproven claims: %s", formatPath(blocked))
}

func less(g *Graph, layer map[int64]int, a, b int64) bool {
	if layer[a] != layer[b] {
		return layer[a] < layer[b]
	}
	ca, cb := g.claims[a], g.claims[b]
	if ca != nil && cb != nil && !ca.CreatedAt.Equal(cb.CreatedAt) {
		return ca.CreatedAt.Before(cb.CreatedAt)
	}
	return a < b
}
