package diagram

import (
	"fmt"
	"strings"

	"github.com/flowlens/flowlens/pkg/schema"
)

// RenderMermaid renders a flow graph as a Mermaid flowchart string.
func RenderMermaid(g *schema.FlowGraph) string {
	var b strings.Builder

	b.WriteString("graph TD\n")

	// Title as comment.
	if g.ContractName != "" {
		b.WriteString(fmt.Sprintf("    %%%% %s\n", g.ContractName))
	}

	// Render nodes with shapes based on kind.
	for _, node := range g.Nodes {
		b.WriteString(fmt.Sprintf("    %s\n", mermaidNodeDef(node)))
	}

	// Render edges.
	for _, edge := range g.Edges {
		label := ""
		if edge.Label != "" {
			label = fmt.Sprintf("|%s|", edge.Label)
		}
		b.WriteString(fmt.Sprintf("    %s -->%s %s\n",
			mermaidSafeID(edge.Source), label, mermaidSafeID(edge.Target)))
	}

	// Kind class definitions.
	b.WriteString("\n")
	b.WriteString("    classDef contract fill:#1a5276,stroke:#0e3a52,color:#fff\n")
	b.WriteString("    classDef function fill:#4a4a4a,stroke:#333,color:#fff\n")
	b.WriteString("    classDef condition fill:#b7791a,stroke:#8a5c14,color:#fff\n")
	b.WriteString("    classDef success fill:#2d6a2d,stroke:#1a4a1a,color:#fff\n")
	b.WriteString("    classDef failure fill:#8b1a1a,stroke:#5c0e0e,color:#fff\n")
	b.WriteString("    classDef validation fill:#6b5b95,stroke:#4a3f68,color:#fff\n")

	// Apply kind classes.
	for _, node := range g.Nodes {
		b.WriteString(fmt.Sprintf("    class %s %s\n", mermaidSafeID(node.ID), node.Kind))
	}

	return b.String()
}

// mermaidNodeDef returns a Mermaid node definition with the appropriate shape.
func mermaidNodeDef(node schema.FlowNode) string {
	id := mermaidSafeID(node.ID)
	label := mermaidEscapeLabel(node.Label)

	switch node.Kind {
	case schema.NodeKindContract:
		return fmt.Sprintf("%s((%q))", id, label)
	case schema.NodeKindCondition:
		return fmt.Sprintf("%s{%q}", id, label)
	case schema.NodeKindSuccess, schema.NodeKindFailure:
		return fmt.Sprintf("%s([%q])", id, label)
	case schema.NodeKindValidation:
		return fmt.Sprintf("%s[[%q]]", id, label)
	default: // function
		return fmt.Sprintf("%s[%q]", id, label)
	}
}

// mermaidSafeID converts a node ID to a Mermaid-safe identifier.
// Replaces dots and dashes with underscores.
func mermaidSafeID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", " ", "_")
	return r.Replace(id)
}

// mermaidEscapeLabel escapes characters Mermaid treats as markup. Condition
// labels are raw source expressions, so braces and pipes do show up.
func mermaidEscapeLabel(s string) string {
	r := strings.NewReplacer("{", "#123;", "}", "#125;", "|", "#124;")
	return r.Replace(s)
}
