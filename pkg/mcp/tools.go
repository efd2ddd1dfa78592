package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/flowlens/flowlens/internal/diagram"
	"github.com/flowlens/flowlens/internal/layout"
	"github.com/flowlens/flowlens/internal/logging"
	"github.com/flowlens/flowlens/pkg/schema"
)

// handleExtract returns the full flow graph for an artifact/source pair.
func (s *FlowlensServer) handleExtract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, g, errResult := s.flowFromRequest(ctx, req)
	if errResult != nil {
		return errResult, nil
	}
	s.logger.InfoContext(ctx, "flow extracted",
		slog.Int("nodes", len(g.Nodes)),
		slog.Int("edges", len(g.Edges)),
	)
	return marshalResult(g)
}

// handleSteps returns only the ordered execution preview steps.
func (s *FlowlensServer) handleSteps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, g, errResult := s.flowFromRequest(ctx, req)
	if errResult != nil {
		return errResult, nil
	}
	return marshalResult(g.Steps)
}

// nodePosition is the per-node coordinate entry returned by flow.layout.
type nodePosition struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Level int     `json:"level"`
}

// handleLayout computes render coordinates for every node of the graph.
func (s *FlowlensServer) handleLayout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, g, errResult := s.flowFromRequest(ctx, req)
	if errResult != nil {
		return errResult, nil
	}

	lay := layout.Compute(g.Nodes, g.Edges)
	positions := make(map[string]nodePosition, len(g.Nodes))
	for _, n := range g.Nodes {
		x, y := lay.Position(n.ID)
		positions[n.ID] = nodePosition{X: x, Y: y, Level: lay.Levels[n.ID]}
	}

	return marshalResult(positions)
}

// handleRender returns a textual projection of the graph.
func (s *FlowlensServer) handleRender(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format, err := req.RequireString("format")
	if err != nil {
		return mcp.NewToolResultError("format is required"), nil
	}

	_, g, errResult := s.flowFromRequest(ctx, req)
	if errResult != nil {
		return errResult, nil
	}

	switch format {
	case "mermaid":
		return mcp.NewToolResultText(diagram.RenderMermaid(g)), nil
	case "ascii":
		return mcp.NewToolResultText(diagram.RenderASCII(g, layout.Compute(g.Nodes, g.Edges))), nil
	case "steps":
		return mcp.NewToolResultText(diagram.RenderSteps(g.Steps)), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("format must be mermaid, ascii, or steps, got %q", format)), nil
	}
}

// flowFromRequest parses the shared artifact/source/function_filter
// parameters, validates the artifact when present, and runs the memoized
// extraction. A tool-error result is returned for boundary failures; the
// extraction itself cannot fail.
func (s *FlowlensServer) flowFromRequest(ctx context.Context, req mcp.CallToolRequest) (context.Context, *schema.FlowGraph, *mcp.CallToolResult) {
	ctx = logging.WithRequestID(ctx, uuid.New().String())

	var artifact *schema.ContractArtifact
	if raw := mcp.ParseStringMap(req, "artifact", nil); raw != nil {
		data, err := json.Marshal(raw)
		if err != nil {
			return ctx, nil, mcp.NewToolResultError(fmt.Sprintf("invalid artifact: %v", err))
		}

		parsed, lint, err := s.validator.ValidateDocument(data)
		if err != nil {
			return ctx, nil, mcp.NewToolResultError(fmt.Sprintf("artifact validation failed: %v", err))
		}
		for _, w := range lint.Warnings {
			s.logger.WarnContext(ctx, "artifact lint warning",
				slog.String("path", w.Path),
				slog.String("code", w.Code),
				slog.String("message", w.Message),
			)
		}
		artifact = parsed
		ctx = logging.WithContract(ctx, artifact.ContractName)
	}

	if filterExpr := req.GetString("function_filter", ""); filterExpr != "" {
		filtered, err := s.filter.Apply(filterExpr, artifact)
		if err != nil {
			return ctx, nil, mcp.NewToolResultError(fmt.Sprintf("function filter failed: %v", err))
		}
		artifact = filtered
	}

	source := req.GetString("source", "")
	return ctx, s.aggregator.FlowFor(artifact, source), nil
}

// marshalResult converts a value to a JSON text tool result.
func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultJSON(json.RawMessage(data))
}
