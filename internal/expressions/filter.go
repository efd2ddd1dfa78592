package expressions

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/flowlens/flowlens/pkg/schema"
)

// FunctionFilter selects ABI functions using Google's Common Expression
// Language. It drives the --filter CLI flag and the function_filter MCP
// parameter, subsetting the ABI before extraction.
// Thread-safe: compiled programs are cached and reused across goroutines.
type FunctionFilter struct {
	env *cel.Env

	mu    sync.RWMutex
	cache map[string]cel.Program
}

// NewFunctionFilter creates a FunctionFilter with a sandboxed environment.
// The environment exposes three top-level variables per ABI entry:
//   - name:   string — function name ("" for the constructor/fallback)
//   - index:  int    — position in the ABI list
//   - inputs: int    — number of declared parameters
func NewFunctionFilter() (*FunctionFilter, error) {
	env, err := cel.NewEnv(
		cel.Variable("name", cel.StringType),
		cel.Variable("index", cel.IntType),
		cel.Variable("inputs", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	return &FunctionFilter{
		env:   env,
		cache: make(map[string]cel.Program),
	}, nil
}

// Match evaluates the filter expression against one ABI function.
// The expression must produce a boolean.
func (f *FunctionFilter) Match(expression string, fn schema.ABIFunction, index int) (bool, error) {
	if expression == "" {
		return true, nil
	}

	prg, err := f.getOrCompile(expression)
	if err != nil {
		return false, err
	}

	out, _, err := prg.Eval(map[string]any{
		"name":   fn.Name,
		"index":  index,
		"inputs": len(fn.Inputs),
	})
	if err != nil {
		return false, schema.NewErrorf(schema.ErrCodeQuery,
			"CEL evaluation failed for %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}

	matched, ok := out.Value().(bool)
	if !ok {
		return false, schema.NewErrorf(schema.ErrCodeValidation,
			"filter %q must evaluate to a boolean, got %T", expression, out.Value())
	}
	return matched, nil
}

// Apply returns a copy of the artifact whose ABI keeps only matching
// functions, preserving their relative order. A nil artifact passes through.
func (f *FunctionFilter) Apply(expression string, artifact *schema.ContractArtifact) (*schema.ContractArtifact, error) {
	if artifact == nil || expression == "" {
		return artifact, nil
	}

	filtered := &schema.ContractArtifact{
		ContractName: artifact.ContractName,
		ABI:          make([]schema.ABIFunction, 0, len(artifact.ABI)),
	}
	for i, fn := range artifact.ABI {
		ok, err := f.Match(expression, fn, i)
		if err != nil {
			return nil, err
		}
		if ok {
			filtered.ABI = append(filtered.ABI, fn)
		}
	}
	return filtered, nil
}

// getOrCompile returns a cached compiled program or compiles and caches a new one.
func (f *FunctionFilter) getOrCompile(expression string) (cel.Program, error) {
	f.mu.RLock()
	if prg, ok := f.cache[expression]; ok {
		f.mu.RUnlock()
		return prg, nil
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	// Double-check after acquiring write lock.
	if prg, ok := f.cache[expression]; ok {
		return prg, nil
	}

	astObj, issues := f.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"CEL compile error in %q: %s", expression, issues.Err().Error()).
			WithCause(issues.Err()).
			WithDetails(map[string]any{"expression": expression})
	}

	prg, err := f.env.Program(astObj)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"CEL program error for %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}

	f.cache[expression] = prg
	return prg, nil
}
