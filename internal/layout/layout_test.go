package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowlens/flowlens/pkg/schema"
)

func node(id string, kind schema.NodeKind) schema.FlowNode {
	return schema.FlowNode{ID: id, Kind: kind, Label: id}
}

func edge(id, source, target string) schema.FlowEdge {
	return schema.FlowEdge{ID: id, Source: source, Target: target}
}

// fanOutGraph is a root with three functions, the middle one branching into
// two conditions. Leaf counts: a=1, b=2, c=1, root=4.
func fanOutGraph() ([]schema.FlowNode, []schema.FlowEdge) {
	nodes := []schema.FlowNode{
		node("contract", schema.NodeKindContract),
		node("a", schema.NodeKindFunction),
		node("b", schema.NodeKindFunction),
		node("c", schema.NodeKindFunction),
		node("b1", schema.NodeKindCondition),
		node("b2", schema.NodeKindCondition),
	}
	edges := []schema.FlowEdge{
		edge("e1", "contract", "a"),
		edge("e2", "contract", "b"),
		edge("e3", "contract", "c"),
		edge("e4", "b", "b1"),
		edge("e5", "b", "b2"),
	}
	return nodes, edges
}

func TestComputeLevels(t *testing.T) {
	nodes, edges := fanOutGraph()
	res := Compute(nodes, edges)

	assert.Equal(t, 0, res.Levels["contract"])
	assert.Equal(t, 1, res.Levels["a"])
	assert.Equal(t, 1, res.Levels["b"])
	assert.Equal(t, 2, res.Levels["b1"])
	assert.Equal(t, 2, res.Levels["b2"])
}

func TestComputeLevelsLongestPathWins(t *testing.T) {
	// d is reachable both directly from the root and via a longer chain;
	// the longest path decides its level.
	nodes := []schema.FlowNode{
		node("contract", schema.NodeKindContract),
		node("a", schema.NodeKindFunction),
		node("b", schema.NodeKindCondition),
		node("d", schema.NodeKindValidation),
	}
	edges := []schema.FlowEdge{
		edge("e1", "contract", "d"),
		edge("e2", "contract", "a"),
		edge("e3", "a", "b"),
		edge("e4", "b", "d"),
	}

	res := Compute(nodes, edges)
	assert.Equal(t, 3, res.Levels["d"])
}

func TestComputeHorizontalSpread(t *testing.T) {
	nodes, edges := fanOutGraph()
	res := Compute(nodes, edges)

	// Root owns 4 leaves = 1120px, centered at RootX=250, so the interval
	// starts at -310. Children split it in edge order: a 280px, b 560px,
	// c 280px.
	assert.InDelta(t, 250.0, res.X["contract"], 1e-9)
	assert.InDelta(t, -170.0, res.X["a"], 1e-9)
	assert.InDelta(t, 250.0, res.X["b"], 1e-9)
	assert.InDelta(t, 670.0, res.X["c"], 1e-9)
	assert.InDelta(t, 110.0, res.X["b1"], 1e-9)
	assert.InDelta(t, 390.0, res.X["b2"], 1e-9)
}

func TestComputeSiblingsDoNotOverlap(t *testing.T) {
	nodes, edges := fanOutGraph()
	res := Compute(nodes, edges)

	// Sibling subtree intervals are disjoint: centers are at least one leaf
	// width apart for single-leaf neighbours.
	assert.GreaterOrEqual(t, res.X["b"]-res.X["a"], LeafWidth)
	assert.GreaterOrEqual(t, res.X["c"]-res.X["b"], LeafWidth)
	assert.GreaterOrEqual(t, res.X["b2"]-res.X["b1"], LeafWidth)
}

func TestComputeNoRootIsDegenerate(t *testing.T) {
	nodes := []schema.FlowNode{node("a", schema.NodeKindFunction)}
	res := Compute(nodes, nil)

	assert.Empty(t, res.Levels)
	assert.Empty(t, res.X)

	x, y := res.Position("a")
	assert.Equal(t, RootX, x)
	assert.Equal(t, 0.0, y)
}

func TestComputeEmptyInput(t *testing.T) {
	res := Compute(nil, nil)
	require.NotNil(t, res)
	assert.Empty(t, res.Levels)
}

func TestPosition(t *testing.T) {
	nodes, edges := fanOutGraph()
	res := Compute(nodes, edges)

	x, y := res.Position("b1")
	assert.InDelta(t, 110.0, x, 1e-9)
	assert.InDelta(t, 2*VerticalSpacing, y, 1e-9)

	// Unknown nodes take the defaults.
	x, y = res.Position("ghost")
	assert.Equal(t, RootX, x)
	assert.Equal(t, 0.0, y)
}

func TestComputeSingleNode(t *testing.T) {
	res := Compute([]schema.FlowNode{node("contract", schema.NodeKindContract)}, nil)

	assert.Equal(t, 0, res.Levels["contract"])
	assert.InDelta(t, RootX, res.X["contract"], 1e-9)
}
