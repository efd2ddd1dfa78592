package diagram

import (
	"fmt"
	"sort"
	"strings"

	"github.com/flowlens/flowlens/internal/layout"
	"github.com/flowlens/flowlens/pkg/schema"
)

// kindTag returns a short ASCII indicator for a node kind.
func kindTag(kind schema.NodeKind) string {
	switch kind {
	case schema.NodeKindCondition:
		return "[?]"
	case schema.NodeKindSuccess:
		return "[OK]"
	case schema.NodeKindFailure:
		return "[FAIL]"
	case schema.NodeKindValidation:
		return "[REQ]"
	default:
		return ""
	}
}

// RenderASCII renders a flow graph as a text diagram: one row of boxes per
// layout level, nodes within a row ordered by their computed x position.
func RenderASCII(g *schema.FlowGraph, lay *layout.Result) string {
	var b strings.Builder

	if g.ContractName != "" {
		b.WriteString(fmt.Sprintf("=== %s ===\n\n", g.ContractName))
	}

	rows := levelRows(g, lay)
	for levelIdx, row := range rows {
		var boxes []asciiBox
		for _, node := range row {
			boxes = append(boxes, makeBox(node))
		}
		renderBoxRow(&b, boxes)

		if levelIdx < len(rows)-1 {
			renderConnector(&b, len(boxes))
		}
	}

	return b.String()
}

// levelRows groups nodes by level, each row sorted left-to-right by x.
// Nodes the layout could not reach fall into level 0, as consumers expect.
func levelRows(g *schema.FlowGraph, lay *layout.Result) [][]schema.FlowNode {
	maxLevel := 0
	for _, lvl := range lay.Levels {
		if lvl > maxLevel {
			maxLevel = lvl
		}
	}

	rows := make([][]schema.FlowNode, maxLevel+1)
	for _, node := range g.Nodes {
		lvl := lay.Levels[node.ID]
		rows[lvl] = append(rows[lvl], node)
	}

	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool {
			xi, _ := lay.Position(row[i].ID)
			xj, _ := lay.Position(row[j].ID)
			return xi < xj
		})
	}
	return rows
}

// asciiBox holds the rendered lines of a single box.
type asciiBox struct {
	lines []string
	width int
}

// makeBox creates an ASCII box for a node.
func makeBox(node schema.FlowNode) asciiBox {
	contentLines := []string{node.Label}
	if tag := kindTag(node.Kind); tag != "" {
		contentLines = append(contentLines, tag)
	}

	maxLen := 0
	for _, line := range contentLines {
		if len(line) > maxLen {
			maxLen = len(line)
		}
	}
	width := maxLen + 4 // 2 border + 2 padding

	var lines []string
	top := "┌" + strings.Repeat("─", width-2) + "┐"
	bot := "└" + strings.Repeat("─", width-2) + "┘"
	lines = append(lines, top)
	for _, content := range contentLines {
		padded := content + strings.Repeat(" ", maxLen-len(content))
		lines = append(lines, "│ "+padded+" │")
	}
	lines = append(lines, bot)

	return asciiBox{lines: lines, width: width}
}

// renderBoxRow writes boxes side by side.
func renderBoxRow(b *strings.Builder, boxes []asciiBox) {
	if len(boxes) == 0 {
		return
	}

	maxHeight := 0
	for _, box := range boxes {
		if len(box.lines) > maxHeight {
			maxHeight = len(box.lines)
		}
	}

	for row := 0; row < maxHeight; row++ {
		for i, box := range boxes {
			if i > 0 {
				b.WriteString("  ") // gap between boxes
			}
			if row < len(box.lines) {
				b.WriteString(box.lines[row])
			} else {
				b.WriteString(strings.Repeat(" ", box.width))
			}
		}
		b.WriteByte('\n')
	}
}

// renderConnector draws a vertical connector between levels.
func renderConnector(b *strings.Builder, boxCount int) {
	if boxCount == 0 {
		return
	}
	b.WriteString("       │\n")
	b.WriteString("       ▼\n")
}
