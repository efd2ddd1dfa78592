package expressions

import (
	"sync"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"

	"github.com/flowlens/flowlens/pkg/schema"
)

// HintClassifier derives a structural hint for a branch or require expression
// by parsing it, never evaluating it. Renderers use the hint to pick shapes
// and colors without re-parsing contract source.
// Thread-safe: classification results are cached and reused across goroutines.
type HintClassifier struct {
	mu    sync.RWMutex
	cache map[string]string
}

// NewHintClassifier creates a new HintClassifier.
func NewHintClassifier() *HintClassifier {
	return &HintClassifier{
		cache: make(map[string]string),
	}
}

// Classify returns one of the schema.Hint* values for the expression.
// Expressions that do not parse (macro-like or truncated syntax the lexical
// extractor captured anyway) classify as opaque rather than failing.
func (c *HintClassifier) Classify(expression string) string {
	if expression == "" {
		return schema.HintOpaque
	}

	c.mu.RLock()
	if hint, ok := c.cache[expression]; ok {
		c.mu.RUnlock()
		return hint
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock.
	if hint, ok := c.cache[expression]; ok {
		return hint
	}

	hint := classify(expression)
	c.cache[expression] = hint
	return hint
}

// classify parses the expression and inspects the root of the AST.
func classify(expression string) string {
	tree, err := parser.Parse(expression)
	if err != nil {
		return schema.HintOpaque
	}
	return classifyNode(tree.Node)
}

// comparison operators recognized by the expr grammar.
var comparisonOps = map[string]bool{
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
}

// logical connectives; expr accepts both symbol and keyword spellings.
var logicalOps = map[string]bool{
	"&&": true, "||": true, "and": true, "or": true,
}

func classifyNode(node ast.Node) string {
	switch n := node.(type) {
	case *ast.BoolNode:
		return schema.HintConstant
	case *ast.BinaryNode:
		if logicalOps[n.Operator] {
			return schema.HintCompound
		}
		if comparisonOps[n.Operator] {
			return schema.HintComparison
		}
		return schema.HintOpaque
	case *ast.UnaryNode:
		// Negation keeps the shape of its operand.
		return classifyNode(n.Node)
	case *ast.CallNode:
		return schema.HintCall
	default:
		return schema.HintOpaque
	}
}
