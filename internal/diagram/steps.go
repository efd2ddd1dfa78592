package diagram

import (
	"fmt"
	"strings"

	"github.com/flowlens/flowlens/pkg/schema"
)

// RenderSteps renders the ordered step list as a linear execution preview:
// one line per step, indented by nesting depth.
func RenderSteps(steps []schema.ExecutionStep) string {
	var b strings.Builder

	for _, step := range steps {
		indent := strings.Repeat("  ", step.Depth)
		line := fmt.Sprintf("%3d. %s%s", step.Order, indent, step.Label)
		if tag := kindTag(step.Kind); tag != "" {
			line += " " + tag
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	return b.String()
}
