package mcp

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/flowlens/flowlens/internal/cache"
	"github.com/flowlens/flowlens/internal/expressions"
	"github.com/flowlens/flowlens/internal/validation"
)

// FlowlensServerDeps holds the dependencies for creating a FlowlensServer.
type FlowlensServerDeps struct {
	Aggregator *cache.Aggregator
	Validator  *validation.ArtifactValidator
	Filter     *expressions.FunctionFilter
	Logger     *slog.Logger
}

// FlowlensServer wraps an MCP server with flowlens-specific tool handlers.
type FlowlensServer struct {
	aggregator *cache.Aggregator
	validator  *validation.ArtifactValidator
	filter     *expressions.FunctionFilter
	logger     *slog.Logger
	mcpServer  *server.MCPServer
}

// NewFlowlensServer creates a new FlowlensServer with all 4 tools registered.
func NewFlowlensServer(deps FlowlensServerDeps) *FlowlensServer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	s := &FlowlensServer{
		aggregator: deps.Aggregator,
		validator:  deps.Validator,
		filter:     deps.Filter,
		logger:     logger,
	}

	mcpSrv := server.NewMCPServer(
		"flowlens",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Flowlens reconstructs the execution flow of compiled UTXO contracts. Use flow.extract for the full node/edge/step graph, flow.steps for the linear execution preview, flow.layout for per-node render coordinates, and flow.render for mermaid/ascii/steps text output."),
	)

	mcpSrv.AddTools(s.tools()...)
	s.mcpServer = mcpSrv
	return s
}

// Serve starts the stdio transport and blocks until ctx is cancelled or stdin closes.
func (s *FlowlensServer) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying MCPServer for testing or custom transports.
func (s *FlowlensServer) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// tools returns the 4 registered MCP tools as ServerTool entries.
func (s *FlowlensServer) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: extractTool(), Handler: s.handleExtract},
		{Tool: stepsTool(), Handler: s.handleSteps},
		{Tool: layoutTool(), Handler: s.handleLayout},
		{Tool: renderTool(), Handler: s.handleRender},
	}
}

// --- Tool definitions ---

func extractTool() mcp.Tool {
	return mcp.NewTool("flow.extract",
		mcp.WithDescription("Extract the execution-flow graph (nodes, edges, ordered steps) of a compiled contract"),
		mcp.WithObject("artifact", mcp.Description("Compiled contract artifact: {contractName, abi}. Omitting it yields an empty graph")),
		mcp.WithString("source", mcp.Description("Raw contract source text")),
		mcp.WithString("function_filter", mcp.Description("CEL expression over {name, index, inputs} selecting which ABI functions to include")),
	)
}

func stepsTool() mcp.Tool {
	return mcp.NewTool("flow.steps",
		mcp.WithDescription("Extract the ordered, depth-annotated execution preview steps of a compiled contract"),
		mcp.WithObject("artifact", mcp.Description("Compiled contract artifact: {contractName, abi}")),
		mcp.WithString("source", mcp.Description("Raw contract source text")),
		mcp.WithString("function_filter", mcp.Description("CEL expression over {name, index, inputs} selecting which ABI functions to include")),
	)
}

func layoutTool() mcp.Tool {
	return mcp.NewTool("flow.layout",
		mcp.WithDescription("Compute per-node render coordinates {x, y, level} for a contract's flow graph"),
		mcp.WithObject("artifact", mcp.Description("Compiled contract artifact: {contractName, abi}")),
		mcp.WithString("source", mcp.Description("Raw contract source text")),
		mcp.WithString("function_filter", mcp.Description("CEL expression over {name, index, inputs} selecting which ABI functions to include")),
	)
}

func renderTool() mcp.Tool {
	return mcp.NewTool("flow.render",
		mcp.WithDescription("Render a contract's flow graph as text"),
		mcp.WithString("format", mcp.Required(),
			mcp.Enum("mermaid", "ascii", "steps"),
			mcp.Description("Output format"),
		),
		mcp.WithObject("artifact", mcp.Description("Compiled contract artifact: {contractName, abi}")),
		mcp.WithString("source", mcp.Description("Raw contract source text")),
		mcp.WithString("function_filter", mcp.Description("CEL expression over {name, index, inputs} selecting which ABI functions to include")),
	)
}
