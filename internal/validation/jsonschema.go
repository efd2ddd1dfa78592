// Package validation checks compiled-artifact documents at the CLI and MCP
// boundaries. The flow extractor itself accepts anything and degrades
// gracefully; validation exists so callers find out about malformed artifact
// files before wondering why their graph is empty.
package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/flowlens/flowlens/pkg/schema"
)

// artifactSchemaJSON is the JSON Schema for compiled contract artifacts.
// Embedded as a constant to avoid filesystem dependencies.
const artifactSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://flowlens.dev/schemas/artifact.json",
  "type": "object",
  "required": ["abi"],
  "properties": {
    "contractName": {
      "type": "string"
    },
    "abi": {
      "type": "array",
      "items": { "$ref": "#/$defs/function" }
    }
  },
  "additionalProperties": true,
  "$defs": {
    "function": {
      "type": "object",
      "required": ["name", "inputs"],
      "properties": {
        "name": { "type": "string" },
        "inputs": {
          "type": "array",
          "items": { "$ref": "#/$defs/parameter" }
        }
      },
      "additionalProperties": true
    },
    "parameter": {
      "type": "object",
      "required": ["name", "type"],
      "properties": {
        "name": { "type": "string" },
        "type": { "type": "string" }
      },
      "additionalProperties": true
    }
  }
}`

// ArtifactValidator validates artifact documents using JSON Schema
// Draft 2020-12. It is safe for concurrent use.
type ArtifactValidator struct {
	artifactSchema *jsonschema.Schema
}

// NewArtifactValidator creates an ArtifactValidator with the schema
// pre-compiled.
func NewArtifactValidator() (*ArtifactValidator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	schemaDoc, err := jsonschema.UnmarshalJSON(strings.NewReader(artifactSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal artifact schema: %w", err)
	}
	if err := c.AddResource("https://flowlens.dev/schemas/artifact.json", schemaDoc); err != nil {
		return nil, fmt.Errorf("add artifact schema resource: %w", err)
	}

	compiled, err := c.Compile("https://flowlens.dev/schemas/artifact.json")
	if err != nil {
		return nil, fmt.Errorf("compile artifact schema: %w", err)
	}

	return &ArtifactValidator{artifactSchema: compiled}, nil
}

// ValidateDocument validates a raw artifact document and decodes it.
// Schema violations and unparseable JSON return a FlowlensError; lint-level
// findings the schema cannot express (duplicate function names) surface as
// warnings in the returned ValidationResult.
func (v *ArtifactValidator) ValidateDocument(raw []byte) (*schema.ContractArtifact, *schema.ValidationResult, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(raw)))
	if err != nil {
		return nil, nil, schema.NewError(schema.ErrCodeValidation, "artifact is not valid JSON").WithCause(err)
	}

	if err := v.artifactSchema.Validate(doc); err != nil {
		return nil, nil, toFlowlensError(err)
	}

	var artifact schema.ContractArtifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return nil, nil, schema.NewError(schema.ErrCodeValidation, "failed to decode artifact").WithCause(err)
	}

	return &artifact, Lint(&artifact), nil
}

// Lint runs the semantic checks JSON Schema cannot express. All findings are
// warnings: the extractor handles every one of them gracefully, but they
// usually indicate a stale or hand-edited artifact.
func Lint(artifact *schema.ContractArtifact) *schema.ValidationResult {
	result := &schema.ValidationResult{}
	if artifact == nil {
		return result
	}

	seen := make(map[string]int, len(artifact.ABI))
	for i, fn := range artifact.ABI {
		if fn.Name == "" && i != 0 {
			result.AddWarning(fmt.Sprintf("/abi/%d", i), "UNNAMED_FUNCTION",
				"unnamed function outside index 0 is not a constructor/fallback entry")
		}
		if fn.Name == "" {
			continue
		}
		if prev, dup := seen[fn.Name]; dup {
			result.AddWarning(fmt.Sprintf("/abi/%d", i), "DUPLICATE_FUNCTION",
				fmt.Sprintf("function %q already declared at index %d; both map to the same source body", fn.Name, prev))
			continue
		}
		seen[fn.Name] = i
	}

	return result
}

// toFlowlensError converts a jsonschema.ValidationError into a FlowlensError
// with clear, actionable messages.
func toFlowlensError(err error) *schema.FlowlensError {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return schema.NewError(schema.ErrCodeValidation, err.Error())
	}

	violations := collectViolations(verr)
	if len(violations) == 0 {
		return schema.NewError(schema.ErrCodeValidation, verr.Error())
	}

	if len(violations) == 1 {
		return schema.NewError(schema.ErrCodeValidation, violations[0]).
			WithDetails(map[string]any{"violations": violations})
	}

	msg := fmt.Sprintf("validation failed with %d errors", len(violations))
	return schema.NewError(schema.ErrCodeValidation, msg).
		WithDetails(map[string]any{"violations": violations})
}

// collectViolations walks a ValidationError tree and collects leaf error
// messages with their instance locations.
func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}

	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}
