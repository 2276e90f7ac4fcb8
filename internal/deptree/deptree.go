// Package deptree renders a claim's dependency neighborhood as a tree with
// box-drawing connectors, for the `why` CLI view.
// Adapted from the teacher's internal/deps.TreeRenderer, which drew the same
// kind of connector tree over issue hierarchies; here the edges are the
// Graph Kernel's blocker/blocked adjacency over derived claim status instead
// of parent/child issue ids.
package deptree

import (
	"fmt"
	"strings"

	"github.com/roadmap/roadmap/internal/graph"
	"github.com/roadmap/roadmap/internal/types"
)

// Direction picks which edge the tree follows out of each node.
type Direction int

const (
	// Blockers walks toward what must be proven before the root can be.
	Blockers Direction = iota
	// Blocks walks toward what the root is itself blocking.
	Blocks
)

// Node is one entry in a rendered dependency tree.
type Node struct {
	Claim    *types.Claim
	Status   types.Status
	Depth    int
	ParentID int64
	// Truncated marks a node whose own children were cut off by maxDepth.
	Truncated bool
}

// Build walks g from rootID in dir, stopping at maxDepth (0 means
// unbounded), and returns the visited nodes in parent-before-child order.
// A claim reachable by more than one path is listed once, at the depth it
// was first reached, matching the teacher's "(shown above)" dedup rule.
func Build(g *graph.Graph, rootID int64, dir Direction, statusFn func(int64) types.Status, maxDepth int) []*Node {
	root := g.Claim(rootID)
	if root == nil {
		return nil
	}

	seen := map[int64]bool{rootID: true}
	nodes := []*Node{{Claim: root, Status: statusFn(rootID), Depth: 0}}
	walk(g, rootID, dir, statusFn, 1, maxDepth, seen, &nodes)
	return nodes
}

func walk(g *graph.Graph, id int64, dir Direction, statusFn func(int64) types.Status, depth, maxDepth int, seen map[int64]bool, nodes *[]*Node) {
	var next []int64
	if dir == Blockers {
		next = g.Blockers(id)
	} else {
		next = g.Blocks(id)
	}

	if maxDepth > 0 && depth > maxDepth {
		if len(next) > 0 {
			for i := range *nodes {
				if (*nodes)[i].Claim.ID == id {
					(*nodes)[i].Truncated = true
				}
			}
		}
		return
	}

	for _, childID := range next {
		if seen[childID] {
			continue
		}
		seen[childID] = true
		claim := g.Claim(childID)
		if claim == nil {
			continue
		}
		*nodes = append(*nodes, &Node{Claim: claim, Status: statusFn(childID), Depth: depth, ParentID: id})
		walk(g, childID, dir, statusFn, depth+1, maxDepth, seen, nodes)
	}
}

// FormatNode renders one node as "<slug>: <statement> (<status>)", coloring
// the slug with styleFunc.
func FormatNode(n *Node, styleFunc func(types.Status, string) string) string {
	slug := styleFunc(n.Status, n.Claim.Slug)
	return fmt.Sprintf("%s: %s (%s)", slug, n.Claim.Statement, n.Status)
}

// Renderer prints a tree of Nodes with proper box-drawing connectors,
// grouped by ParentID the way the teacher's TreeRenderer groups by
// node.ParentID, but driven off the Node slice Build returns instead of a
// flat TreeNode list with an implicit root-at-depth-zero convention.
type Renderer struct {
	StyleFunc func(types.Status, string) string
	WarnFunc  func(string) string

	activeConnectors []bool
}

// NewRenderer creates a Renderer. maxDepth only sizes the connector state;
// it does not itself bound the tree (Build already did that).
func NewRenderer(maxDepth int) *Renderer {
	return &Renderer{activeConnectors: make([]bool, maxDepth+2)}
}

// Render writes nodes (as returned by Build) to w-style stdout printing.
func (r *Renderer) Render(nodes []*Node) {
	if len(nodes) == 0 {
		return
	}

	children := make(map[int64][]*Node)
	var root *Node
	for _, n := range nodes {
		if n.Depth == 0 {
			root = n
		} else {
			children[n.ParentID] = append(children[n.ParentID], n)
		}
	}
	if root == nil {
		root = nodes[0]
	}
	r.renderNode(root, children, 0, true)
}

func (r *Renderer) renderNode(n *Node, children map[int64][]*Node, depth int, isLast bool) {
	var prefix strings.Builder
	for i := 0; i < depth; i++ {
		if i < len(r.activeConnectors) && r.activeConnectors[i] {
			prefix.WriteString("│   ")
		} else {
			prefix.WriteString("    ")
		}
	}
	if depth > 0 {
		if isLast {
			prefix.WriteString("└── ")
		} else {
			prefix.WriteString("├── ")
		}
	}

	line := FormatNode(n, r.StyleFunc)
	if n.Truncated {
		line += r.WarnFunc(" …")
	}
	fmt.Printf("%s%s\n", prefix.String(), line)

	kids := children[n.Claim.ID]
	for i, kid := range kids {
		if depth < len(r.activeConnectors) {
			r.activeConnectors[depth] = i < len(kids)-1
		}
		r.renderNode(kid, children, depth+1, i == len(kids)-1)
	}
}
