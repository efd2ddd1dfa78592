package expressions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowlens/flowlens/pkg/schema"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		expr string
		want string
	}{
		{"true", schema.HintConstant},
		{"false", schema.HintConstant},
		{"amount > 0", schema.HintComparison},
		{"x == y", schema.HintComparison},
		{"a != b", schema.HintComparison},
		{"a > 0 && b < 5", schema.HintCompound},
		{"a or b", schema.HintCompound},
		{"checkSig(s, pk)", schema.HintCall},
		{"!done", schema.HintOpaque},
		{"!(a == b)", schema.HintComparison},
		{"amount", schema.HintOpaque},
		{"a + b", schema.HintOpaque},
		{"", schema.HintOpaque},
		{"if (", schema.HintOpaque},
	}

	c := NewHintClassifier()
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Classify(tc.expr))
		})
	}
}

func TestClassifyCaches(t *testing.T) {
	c := NewHintClassifier()

	assert.Equal(t, schema.HintComparison, c.Classify("a > 0"))

	c.mu.RLock()
	_, cached := c.cache["a > 0"]
	c.mu.RUnlock()
	assert.True(t, cached)

	// Second call hits the cache and stays stable.
	assert.Equal(t, schema.HintComparison, c.Classify("a > 0"))
}
