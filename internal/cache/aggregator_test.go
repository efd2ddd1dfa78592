package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowlens/flowlens/pkg/schema"
)

func testArtifact(name string) *schema.ContractArtifact {
	return &schema.ContractArtifact{
		ContractName: name,
		ABI:          []schema.ABIFunction{{Name: "spend"}},
	}
}

func TestFlowForMemoizes(t *testing.T) {
	agg, err := NewAggregator()
	require.NoError(t, err)

	source := "function spend() { require(true); }"
	first := agg.FlowFor(testArtifact("Vault"), source)
	second := agg.FlowFor(testArtifact("Vault"), source)

	// Same pointer, not just equal content: the second call is a cache hit.
	assert.Same(t, first, second)
	assert.Equal(t, 1, agg.Len())
}

func TestFlowForKeySensitivity(t *testing.T) {
	agg, err := NewAggregator()
	require.NoError(t, err)

	source := "function spend() { require(true); }"
	base := agg.FlowFor(testArtifact("Vault"), source)

	otherName := agg.FlowFor(testArtifact("Wallet"), source)
	assert.NotSame(t, base, otherName)

	otherSource := agg.FlowFor(testArtifact("Vault"), source+" ")
	assert.NotSame(t, base, otherSource)

	assert.Equal(t, 3, agg.Len())
}

func TestFlowForNilArtifact(t *testing.T) {
	agg, err := NewAggregator()
	require.NoError(t, err)

	g := agg.FlowFor(nil, "function spend() { require(true); }")
	require.NotNil(t, g)
	assert.Empty(t, g.Nodes)

	// Nil hashes to its own stable key, distinct from an empty artifact.
	empty := agg.FlowFor(&schema.ContractArtifact{}, "function spend() { require(true); }")
	assert.NotSame(t, g, empty)
}

func TestPurge(t *testing.T) {
	agg, err := NewAggregator()
	require.NoError(t, err)

	first := agg.FlowFor(testArtifact("Vault"), "")
	agg.Purge()
	assert.Equal(t, 0, agg.Len())

	second := agg.FlowFor(testArtifact("Vault"), "")
	assert.NotSame(t, first, second)
	assert.Equal(t, first, second)
}
