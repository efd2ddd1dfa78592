// Package layout computes deterministic 2-D coordinates for a flow graph:
// a topological level per node (longest path from the contract root) and a
// subtree-proportional horizontal position that guarantees sibling subtrees
// never overlap.
package layout

import "github.com/flowlens/flowlens/pkg/schema"

// Rendering constants consumers pair with the computed maps.
const (
	// LeafWidth is the horizontal span reserved per leaf, in pixels.
	LeafWidth = 280.0
	// VerticalSpacing is the pixel distance between levels.
	VerticalSpacing = 160.0
	// RootX is the fixed reference x the root is centered at.
	RootX = 250.0
)

// Result holds the computed positioning maps. The input graph is never
// mutated; nodes absent from a map take the defaults (level 0, RootX).
type Result struct {
	Levels map[string]int
	X      map[string]float64
}

// Position returns the pixel coordinates for a node, applying defaults for
// nodes the computation could not reach.
func (r *Result) Position(id string) (x, y float64) {
	x = RootX
	if v, ok := r.X[id]; ok {
		x = v
	}
	y = float64(r.Levels[id]) * VerticalSpacing
	return x, y
}

// Compute derives levels and horizontal positions for the graph. A node set
// without a contract root yields an empty, degenerate result rather than an
// error.
func Compute(nodes []schema.FlowNode, edges []schema.FlowEdge) *Result {
	res := &Result{
		Levels: make(map[string]int, len(nodes)),
		X:      make(map[string]float64, len(nodes)),
	}

	root := ""
	for _, n := range nodes {
		if n.Kind == schema.NodeKindContract {
			root = n.ID
			break
		}
	}
	if root == "" {
		return res
	}

	res.Levels = relaxLevels(root, nodes, edges)
	res.X = spreadHorizontal(root, edges)
	return res
}

// relaxLevels assigns each reachable node the length of the longest path
// from the root by fixed-point relaxation over the edge list. The graph is
// acyclic by construction, but passes are capped at the node count so
// malformed input terminates instead of hanging.
func relaxLevels(root string, nodes []schema.FlowNode, edges []schema.FlowEdge) map[string]int {
	levels := make(map[string]int, len(nodes))
	levels[root] = 0

	for pass := 0; pass <= len(nodes); pass++ {
		changed := false
		for _, e := range edges {
			src, ok := levels[e.Source]
			if !ok {
				continue
			}
			if cur, ok := levels[e.Target]; !ok || src+1 > cur {
				levels[e.Target] = src + 1
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	return levels
}

// spreadHorizontal implements subtree-proportional placement: each node owns
// a half-open interval [left, left+leafCount*LeafWidth) and children
// partition their parent's interval contiguously in edge order. A node's x
// is its interval midpoint, shifted so the root lands on RootX.
func spreadHorizontal(root string, edges []schema.FlowEdge) map[string]float64 {
	children := make(map[string][]string)
	for _, e := range edges {
		children[e.Source] = append(children[e.Source], e.Target)
	}

	leaves := make(map[string]int)
	countLeaves(root, children, leaves)

	offset := RootX - float64(leaves[root])*LeafWidth/2

	x := make(map[string]float64, len(leaves))
	assign(root, 0, offset, children, leaves, x)
	return x
}

// countLeaves fills leaves with the post-order leaf count of every node in
// the subtree: a childless node counts 1, otherwise the sum of its children.
func countLeaves(id string, children map[string][]string, leaves map[string]int) int {
	if n, ok := leaves[id]; ok {
		return n
	}
	// Mark before recursing so a stray cycle cannot recurse forever.
	leaves[id] = 1

	kids := children[id]
	if len(kids) == 0 {
		return 1
	}

	total := 0
	for _, kid := range kids {
		total += countLeaves(kid, children, leaves)
	}
	leaves[id] = total
	return total
}

// assign walks top-down handing each child a contiguous slice of the
// parent's interval proportional to its own leaf count.
func assign(id string, left, offset float64, children map[string][]string, leaves map[string]int, x map[string]float64) {
	width := float64(leaves[id]) * LeafWidth
	x[id] = left + width/2 + offset

	childLeft := left
	for _, kid := range children[id] {
		if _, done := x[kid]; done {
			continue
		}
		assign(kid, childLeft, offset, children, leaves, x)
		childLeft += float64(leaves[kid]) * LeafWidth
	}
}
