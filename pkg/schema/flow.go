package schema

// NodeKind classifies a flow node by the construct it represents.
type NodeKind string

const (
	NodeKindContract   NodeKind = "contract"
	NodeKindFunction   NodeKind = "function"
	NodeKindCondition  NodeKind = "condition"
	NodeKindSuccess    NodeKind = "success"
	NodeKindFailure    NodeKind = "failure"
	NodeKindValidation NodeKind = "validation"
)

// Condition hint values attached to condition/validation nodes so renderers
// can pick shapes and colors without re-parsing source text.
const (
	HintConstant   = "constant"
	HintComparison = "comparison"
	HintCompound   = "compound"
	HintCall       = "call"
	HintOpaque     = "opaque"
)

// FlowNode is a single node of the reconstructed execution-flow graph.
// Identity is the ID; IDs are unique within one extraction.
type FlowNode struct {
	ID    string   `json:"id"`
	Kind  NodeKind `json:"type"`
	Label string   `json:"label"`
	Hint  string   `json:"hint,omitempty"`
}

// FlowEdge is a directed edge between two flow nodes.
type FlowEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

// ExecutionStep is one entry of the flattened execution preview: the order
// in which the extractor encountered the construct plus its nesting depth.
type ExecutionStep struct {
	ID    string   `json:"id"`
	Order int      `json:"order"` // 1-based, contiguous
	Depth int      `json:"depth"` // contract root is 0
	Kind  NodeKind `json:"type"`
	Label string   `json:"label"`
}

// FlowGraph is the complete result of one extraction pass. It is immutable
// after construction; callers discard and re-extract on input change.
// Slices are always non-nil so the JSON form carries empty arrays.
type FlowGraph struct {
	ContractName string          `json:"contractName"`
	Nodes        []FlowNode      `json:"nodes"`
	Edges        []FlowEdge      `json:"edges"`
	Steps        []ExecutionStep `json:"orderedSteps"`
}
