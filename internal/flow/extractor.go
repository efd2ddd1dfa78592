// Package flow reconstructs the branching execution flow of a compiled
// contract from its ABI and raw source text. The reconstruction is a
// best-effort lexical scan over a restricted grammar (if / else if / else /
// require), not a validated parse: unrecognized constructs are skipped and
// malformed input degrades to partial or empty output, never an error.
package flow

import (
	"fmt"

	"github.com/flowlens/flowlens/internal/expressions"
	"github.com/flowlens/flowlens/pkg/schema"
)

// Labels used for synthesized and classified nodes.
const (
	labelContract = "Contract"
	labelFallback = "Constructor/Fallback"
	labelElsePath = "Fallback Path"
	labelSuccess  = "Success"
	labelFailure  = "Failure"
)

// Extractor turns (artifact, source) pairs into flow graphs. It is stateless
// apart from the hint classifier's parse cache and safe for concurrent use.
type Extractor struct {
	hints *expressions.HintClassifier
}

// NewExtractor creates an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{hints: expressions.NewHintClassifier()}
}

// Extract reconstructs the execution flow of every ABI function. A nil
// artifact yields three empty containers. Output is deterministic: node,
// edge and step IDs derive from the ABI index and per-function counters, so
// identical inputs produce byte-identical graphs.
func (e *Extractor) Extract(artifact *schema.ContractArtifact, source string) *schema.FlowGraph {
	g := &schema.FlowGraph{
		Nodes: []schema.FlowNode{},
		Edges: []schema.FlowEdge{},
		Steps: []schema.ExecutionStep{},
	}
	if artifact == nil {
		return g
	}
	g.ContractName = artifact.ContractName

	b := &builder{graph: g, hints: e.hints}

	rootLabel := artifact.ContractName
	if rootLabel == "" {
		rootLabel = labelContract
	}
	b.addNode(rootID, schema.NodeKindContract, rootLabel, 0, "")

	for i, fn := range artifact.ABI {
		label := fn.Name
		if label == "" {
			label = labelFallback
		}
		fnID := fmt.Sprintf("fn-%d", i)
		b.addNode(fnID, schema.NodeKindFunction, label, 1, "")
		b.addEdge(rootID, fnID)

		b.scanFunction(fnID, functionBody(source, fn.Name))
	}

	return g
}

// rootID is the fixed ID of the single contract node.
const rootID = "contract"

// builder threads the per-extraction ID and order counters through the scan,
// so repeated extractions share no state.
type builder struct {
	graph   *schema.FlowGraph
	edgeSeq int
	hints   *expressions.HintClassifier
}

// addNode appends a node and its execution step. Steps share the node's
// depth and take the next sequential 1-based order.
func (b *builder) addNode(id string, kind schema.NodeKind, label string, depth int, hint string) {
	b.graph.Nodes = append(b.graph.Nodes, schema.FlowNode{
		ID:    id,
		Kind:  kind,
		Label: label,
		Hint:  hint,
	})

	order := len(b.graph.Steps) + 1
	b.graph.Steps = append(b.graph.Steps, schema.ExecutionStep{
		ID:    fmt.Sprintf("step-%d", order),
		Order: order,
		Depth: depth,
		Kind:  kind,
		Label: label,
	})
}

// addEdge appends a directed edge with the next sequential edge ID.
func (b *builder) addEdge(source, target string) {
	b.edgeSeq++
	b.graph.Edges = append(b.graph.Edges, schema.FlowEdge{
		ID:     fmt.Sprintf("e%d", b.edgeSeq),
		Source: source,
		Target: target,
	})
}

// scanFunction applies the graph-building policy to one function body.
//
// currentParent tracks where the next construct attaches; lastCondition
// tracks the most recent condition so else / else-if arms chain off it as a
// linear sequence rather than branching off the shared parent. Closing
// braces are unrecognized constructs, so depth only grows within a function.
func (b *builder) scanFunction(fnID, body string) {
	currentParent := fnID
	lastCondition := ""
	depth := 1
	seq := 0
	produced := false

	nextID := func() string {
		seq++
		return fmt.Sprintf("%s-n%d", fnID, seq)
	}

	for _, c := range scanConstructs(body) {
		switch c.kind {
		case constructIf:
			depth++
			id := nextID()
			b.addNode(id, schema.NodeKindCondition, c.expr, depth, b.hints.Classify(c.expr))
			b.addEdge(currentParent, id)
			lastCondition = id
			currentParent = id
			produced = true

		case constructElseIf, constructElse:
			// An else arm without a prior condition in this function has
			// nothing to chain off; skip it.
			if lastCondition == "" {
				continue
			}
			label, hint := labelElsePath, ""
			if c.kind == constructElseIf {
				label = c.expr
				hint = b.hints.Classify(c.expr)
			}
			id := nextID()
			b.addNode(id, schema.NodeKindCondition, label, depth, hint)
			b.addEdge(lastCondition, id)
			lastCondition = id
			currentParent = id
			produced = true

		case constructRequire:
			kind, label, hint := classifyRequire(c.expr, b.hints)
			id := nextID()
			b.addNode(id, kind, label, depth+1, hint)
			b.addEdge(currentParent, id)
			produced = true
		}
	}

	// A function with no branching at all is an implicit unconditional
	// success path.
	if !produced {
		id := nextID()
		b.addNode(id, schema.NodeKindSuccess, labelSuccess, 2, "")
		b.addEdge(fnID, id)
	}
}

// classifyRequire maps a require expression to a terminal node: the literal
// constants true/false become success/failure ends, everything else is a
// validation check labeled with the expression itself.
func classifyRequire(expr string, hints *expressions.HintClassifier) (schema.NodeKind, string, string) {
	switch expr {
	case "true":
		return schema.NodeKindSuccess, labelSuccess, ""
	case "false":
		return schema.NodeKindFailure, labelFailure, ""
	default:
		return schema.NodeKindValidation, "Validation: " + expr, hints.Classify(expr)
	}
}
