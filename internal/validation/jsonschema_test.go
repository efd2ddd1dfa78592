package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowlens/flowlens/pkg/schema"
)

func newValidator(t *testing.T) *ArtifactValidator {
	t.Helper()
	v, err := NewArtifactValidator()
	require.NoError(t, err)
	return v
}

func TestValidateDocumentValid(t *testing.T) {
	raw := []byte(`{
        "contractName": "Escrow",
        "abi": [
            {"name": "release", "inputs": [{"name": "s", "type": "sig"}]},
            {"name": "refund", "inputs": []}
        ]
    }`)

	artifact, lint, err := newValidator(t).ValidateDocument(raw)
	require.NoError(t, err)
	require.NotNil(t, artifact)

	assert.Equal(t, "Escrow", artifact.ContractName)
	require.Len(t, artifact.ABI, 2)
	assert.Equal(t, "release", artifact.ABI[0].Name)
	assert.Equal(t, "sig", artifact.ABI[0].Inputs[0].Type)
	assert.True(t, lint.Valid())
}

func TestValidateDocumentContractNameOptional(t *testing.T) {
	artifact, _, err := newValidator(t).ValidateDocument([]byte(`{"abi": []}`))
	require.NoError(t, err)
	assert.Empty(t, artifact.ContractName)
}

func TestValidateDocumentMissingABI(t *testing.T) {
	_, _, err := newValidator(t).ValidateDocument([]byte(`{"contractName": "Vault"}`))
	require.Error(t, err)

	var ferr *schema.FlowlensError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, schema.ErrCodeValidation, ferr.Code)
}

func TestValidateDocumentWrongTypes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"abi not array", `{"abi": {}}`},
		{"function missing name", `{"abi": [{"inputs": []}]}`},
		{"function missing inputs", `{"abi": [{"name": "spend"}]}`},
		{"parameter missing type", `{"abi": [{"name": "spend", "inputs": [{"name": "x"}]}]}`},
		{"name not string", `{"abi": [{"name": 3, "inputs": []}]}`},
	}

	v := newValidator(t)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := v.ValidateDocument([]byte(tc.raw))
			require.Error(t, err)

			var ferr *schema.FlowlensError
			require.True(t, errors.As(err, &ferr))
			assert.Equal(t, schema.ErrCodeValidation, ferr.Code)
		})
	}
}

func TestValidateDocumentBadJSON(t *testing.T) {
	_, _, err := newValidator(t).ValidateDocument([]byte(`{"abi": [`))
	require.Error(t, err)

	var ferr *schema.FlowlensError
	require.True(t, errors.As(err, &ferr))
	assert.Contains(t, ferr.Message, "not valid JSON")
}

func TestLintDuplicateFunction(t *testing.T) {
	artifact := &schema.ContractArtifact{
		ContractName: "Vault",
		ABI: []schema.ABIFunction{
			{Name: "spend"},
			{Name: "spend"},
		},
	}

	result := Lint(artifact)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "DUPLICATE_FUNCTION", result.Warnings[0].Code)
	assert.Equal(t, "/abi/1", result.Warnings[0].Path)
}

func TestLintUnnamedFunction(t *testing.T) {
	artifact := &schema.ContractArtifact{
		ABI: []schema.ABIFunction{
			{Name: ""},          // constructor/fallback slot, fine
			{Name: "transfer"},
			{Name: ""},          // suspicious
		},
	}

	result := Lint(artifact)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "UNNAMED_FUNCTION", result.Warnings[0].Code)
	assert.Equal(t, "/abi/2", result.Warnings[0].Path)
}

func TestLintNil(t *testing.T) {
	result := Lint(nil)
	assert.True(t, result.Valid())
	assert.Empty(t, result.Warnings)
}
