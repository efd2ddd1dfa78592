package diagram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowlens/flowlens/pkg/schema"
)

func sampleGraph() *schema.FlowGraph {
	return &schema.FlowGraph{
		ContractName: "Escrow",
		Nodes: []schema.FlowNode{
			{ID: "contract", Kind: schema.NodeKindContract, Label: "Escrow"},
			{ID: "fn-0", Kind: schema.NodeKindFunction, Label: "release"},
			{ID: "fn-0-n1", Kind: schema.NodeKindCondition, Label: "amount > 0"},
			{ID: "fn-0-n2", Kind: schema.NodeKindSuccess, Label: "Success"},
			{ID: "fn-0-n3", Kind: schema.NodeKindCondition, Label: "Fallback Path"},
			{ID: "fn-0-n4", Kind: schema.NodeKindFailure, Label: "Failure"},
		},
		Edges: []schema.FlowEdge{
			{ID: "e1", Source: "contract", Target: "fn-0"},
			{ID: "e2", Source: "fn-0", Target: "fn-0-n1"},
			{ID: "e3", Source: "fn-0-n1", Target: "fn-0-n2"},
			{ID: "e4", Source: "fn-0-n1", Target: "fn-0-n3"},
			{ID: "e5", Source: "fn-0-n3", Target: "fn-0-n4"},
		},
		Steps: []schema.ExecutionStep{
			{ID: "step-1", Order: 1, Depth: 0, Kind: schema.NodeKindContract, Label: "Escrow"},
			{ID: "step-2", Order: 2, Depth: 1, Kind: schema.NodeKindFunction, Label: "release"},
			{ID: "step-3", Order: 3, Depth: 2, Kind: schema.NodeKindCondition, Label: "amount > 0"},
			{ID: "step-4", Order: 4, Depth: 3, Kind: schema.NodeKindSuccess, Label: "Success"},
			{ID: "step-5", Order: 5, Depth: 2, Kind: schema.NodeKindCondition, Label: "Fallback Path"},
			{ID: "step-6", Order: 6, Depth: 3, Kind: schema.NodeKindFailure, Label: "Failure"},
		},
	}
}

func TestRenderMermaid(t *testing.T) {
	out := RenderMermaid(sampleGraph())

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, "%% Escrow")

	// Node shapes per kind.
	assert.Contains(t, out, `contract(("Escrow"))`)
	assert.Contains(t, out, `fn_0["release"]`)
	assert.Contains(t, out, `fn_0_n1{"amount > 0"}`)
	assert.Contains(t, out, `fn_0_n2(["Success"])`)
	assert.Contains(t, out, `fn_0_n4(["Failure"])`)

	// Edges use sanitized IDs.
	assert.Contains(t, out, "contract --> fn_0")
	assert.Contains(t, out, "fn_0_n1 --> fn_0_n3")

	// Every node gets its kind class.
	assert.Contains(t, out, "classDef condition")
	assert.Contains(t, out, "class fn_0_n1 condition")
	assert.Contains(t, out, "class contract contract")
}

func TestRenderMermaidValidationShape(t *testing.T) {
	g := &schema.FlowGraph{
		Nodes: []schema.FlowNode{
			{ID: "fn-0-n1", Kind: schema.NodeKindValidation, Label: "Validation: checkSig(s, pk)"},
		},
	}

	out := RenderMermaid(g)
	assert.Contains(t, out, `fn_0_n1[["Validation: checkSig(s, pk)"]]`)
	// No contract name, no title comment.
	assert.NotContains(t, out, "%%")
}

func TestRenderMermaidEdgeLabel(t *testing.T) {
	g := &schema.FlowGraph{
		Nodes: []schema.FlowNode{
			{ID: "a", Kind: schema.NodeKindFunction, Label: "a"},
			{ID: "b", Kind: schema.NodeKindFunction, Label: "b"},
		},
		Edges: []schema.FlowEdge{
			{ID: "e1", Source: "a", Target: "b", Label: "yes"},
		},
	}

	out := RenderMermaid(g)
	assert.Contains(t, out, "a -->|yes| b")
}

func TestRenderMermaidEscapesLabels(t *testing.T) {
	g := &schema.FlowGraph{
		Nodes: []schema.FlowNode{
			{ID: "n", Kind: schema.NodeKindCondition, Label: "a | {b}"},
		},
	}

	out := RenderMermaid(g)
	assert.Contains(t, out, "#124;")
	assert.Contains(t, out, "#123;")
	assert.Contains(t, out, "#125;")
	assert.NotContains(t, out, `{"a | {b}"}`)
}
