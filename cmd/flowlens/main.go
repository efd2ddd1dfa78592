// flowlens reconstructs and renders the execution flow of compiled UTXO
// contracts from their artifact (contract name + ABI) and source text.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/flowlens/flowlens/internal/cache"
	"github.com/flowlens/flowlens/internal/diagram"
	"github.com/flowlens/flowlens/internal/expressions"
	"github.com/flowlens/flowlens/internal/layout"
	"github.com/flowlens/flowlens/internal/logging"
	"github.com/flowlens/flowlens/internal/scheduler"
	"github.com/flowlens/flowlens/internal/validation"
	"github.com/flowlens/flowlens/pkg/mcp"
	"github.com/flowlens/flowlens/pkg/schema"
)

const usage = `Usage: flowlens <command> [flags]

Commands:
  extract   print the flow graph (nodes, edges, ordered steps) as JSON
  steps     print the linear execution preview
  render    print a diagram (--format mermaid|ascii)
  layout    print per-node render coordinates as JSON
  serve     run the MCP stdio server
  watch     re-render on a cron schedule (--cron, --out)

Common flags:
  --artifact FILE   compiled artifact JSON
  --source FILE     contract source text
  --filter CEL      CEL expression over {name, index, inputs} selecting ABI functions
  --query JQ        jq filter applied to JSON output (extract/layout)
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := loadConfig()

	handler := logging.NewCorrelationHandler(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.slogLevel()}),
	)
	logger := slog.New(handler)

	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 1
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "extract", "steps", "render", "layout":
		return runFlow(cmd, rest, logger)
	case "serve":
		return runServe(logger)
	case "watch":
		return runWatch(rest, logger)
	case "help", "-h", "--help":
		fmt.Fprint(os.Stderr, usage)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		return 1
	}
}

// flowFlags are the inputs shared by every flow command.
type flowFlags struct {
	artifactPath string
	sourcePath   string
	filterExpr   string
	queryExpr    string
	format       string
	cronSpec     string
	outPath      string
}

func parseFlowFlags(cmd string, args []string) (*flowFlags, error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	f := &flowFlags{}
	fs.StringVar(&f.artifactPath, "artifact", "", "compiled artifact JSON file")
	fs.StringVar(&f.sourcePath, "source", "", "contract source file")
	fs.StringVar(&f.filterExpr, "filter", "", "CEL function filter")
	fs.StringVar(&f.queryExpr, "query", "", "jq filter over JSON output")
	fs.StringVar(&f.format, "format", "mermaid", "render format: mermaid|ascii")
	fs.StringVar(&f.cronSpec, "cron", "", "cron schedule (5-field)")
	fs.StringVar(&f.outPath, "out", "", "output file (watch)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// loadInputs reads and validates the artifact and reads the source text.
// Both are optional: the engine degrades gracefully, so an absent artifact
// simply yields an empty graph.
func loadInputs(f *flowFlags, logger *slog.Logger) (*schema.ContractArtifact, string, error) {
	var artifact *schema.ContractArtifact

	if f.artifactPath != "" {
		raw, err := os.ReadFile(f.artifactPath)
		if err != nil {
			return nil, "", fmt.Errorf("read artifact: %w", err)
		}

		validator, err := validation.NewArtifactValidator()
		if err != nil {
			return nil, "", fmt.Errorf("build validator: %w", err)
		}
		parsed, lint, err := validator.ValidateDocument(raw)
		if err != nil {
			return nil, "", err
		}
		for _, w := range lint.Warnings {
			logger.Warn("artifact lint warning",
				slog.String("path", w.Path),
				slog.String("code", w.Code),
				slog.String("message", w.Message),
			)
		}
		artifact = parsed
	}

	source := ""
	if f.sourcePath != "" {
		raw, err := os.ReadFile(f.sourcePath)
		if err != nil {
			return nil, "", fmt.Errorf("read source: %w", err)
		}
		source = string(raw)
	}

	if f.filterExpr != "" {
		filter, err := expressions.NewFunctionFilter()
		if err != nil {
			return nil, "", fmt.Errorf("build function filter: %w", err)
		}
		artifact, err = filter.Apply(f.filterExpr, artifact)
		if err != nil {
			return nil, "", err
		}
	}

	return artifact, source, nil
}

func runFlow(cmd string, args []string, logger *slog.Logger) int {
	f, err := parseFlowFlags(cmd, args)
	if err != nil {
		return 1
	}

	artifact, source, err := loadInputs(f, logger)
	if err != nil {
		logger.Error("failed to load inputs", slog.String("error", err.Error()))
		return 2
	}

	aggregator, err := cache.NewAggregator()
	if err != nil {
		logger.Error("failed to build aggregator", slog.String("error", err.Error()))
		return 2
	}
	g := aggregator.FlowFor(artifact, source)

	switch cmd {
	case "extract":
		return emitJSON(g, f.queryExpr, logger)

	case "steps":
		fmt.Print(diagram.RenderSteps(g.Steps))
		return 0

	case "render":
		text, err := renderGraph(g, f.format)
		if err != nil {
			logger.Error("render failed", slog.String("error", err.Error()))
			return 2
		}
		fmt.Print(text)
		return 0

	case "layout":
		lay := layout.Compute(g.Nodes, g.Edges)
		positions := make(map[string]map[string]any, len(g.Nodes))
		for _, n := range g.Nodes {
			x, y := lay.Position(n.ID)
			positions[n.ID] = map[string]any{"x": x, "y": y, "level": lay.Levels[n.ID]}
		}
		return emitJSON(positions, f.queryExpr, logger)
	}
	return 1
}

// renderGraph produces the requested textual projection.
func renderGraph(g *schema.FlowGraph, format string) (string, error) {
	switch format {
	case "mermaid":
		return diagram.RenderMermaid(g), nil
	case "ascii":
		return diagram.RenderASCII(g, layout.Compute(g.Nodes, g.Edges)), nil
	default:
		return "", schema.NewErrorf(schema.ErrCodeRender, "unknown format %q", format)
	}
}

// emitJSON marshals v to stdout, optionally piping it through a jq filter.
func emitJSON(v any, queryExpr string, logger *slog.Logger) int {
	if queryExpr != "" {
		// Round-trip so the query engine sees plain JSON values.
		data, err := json.Marshal(v)
		if err != nil {
			logger.Error("failed to marshal output", slog.String("error", err.Error()))
			return 2
		}
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			logger.Error("failed to decode output", slog.String("error", err.Error()))
			return 2
		}

		out, err := expressions.NewQueryEngine().Evaluate(context.Background(), queryExpr, doc)
		if err != nil {
			logger.Error("query failed", slog.String("error", err.Error()))
			return 2
		}
		v = out
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.Error("failed to encode output", slog.String("error", err.Error()))
		return 2
	}
	return 0
}

func runServe(logger *slog.Logger) int {
	aggregator, err := cache.NewAggregator()
	if err != nil {
		logger.Error("failed to build aggregator", slog.String("error", err.Error()))
		return 2
	}
	validator, err := validation.NewArtifactValidator()
	if err != nil {
		logger.Error("failed to build validator", slog.String("error", err.Error()))
		return 2
	}
	filter, err := expressions.NewFunctionFilter()
	if err != nil {
		logger.Error("failed to build function filter", slog.String("error", err.Error()))
		return 2
	}

	srv := mcp.NewFlowlensServer(mcp.FlowlensServerDeps{
		Aggregator: aggregator,
		Validator:  validator,
		Filter:     filter,
		Logger:     logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("mcp server listening on stdio")
	if err := srv.Serve(ctx); err != nil && ctx.Err() == nil {
		logger.Error("mcp server failed", slog.String("error", err.Error()))
		return 2
	}
	return 0
}

func runWatch(args []string, logger *slog.Logger) int {
	f, err := parseFlowFlags("watch", args)
	if err != nil {
		return 1
	}
	if f.cronSpec == "" || f.outPath == "" {
		fmt.Fprintln(os.Stderr, "watch requires --cron and --out")
		return 1
	}

	aggregator, err := cache.NewAggregator()
	if err != nil {
		logger.Error("failed to build aggregator", slog.String("error", err.Error()))
		return 2
	}

	// Re-read inputs on every tick so edits are picked up; the aggregator
	// dedups the extraction when nothing changed.
	runOnce := func(ctx context.Context) error {
		artifact, source, err := loadInputs(f, logger)
		if err != nil {
			return err
		}
		g := aggregator.FlowFor(artifact, source)
		text, err := renderGraph(g, f.format)
		if err != nil {
			return err
		}
		if err := os.WriteFile(f.outPath, []byte(text), 0o644); err != nil {
			return schema.NewError(schema.ErrCodeSchedule, "write output").WithCause(err)
		}
		logger.InfoContext(ctx, "diagram refreshed", slog.String("out", f.outPath))
		return nil
	}

	watcher, err := scheduler.NewWatcher(f.cronSpec, runOnce, logger)
	if err != nil {
		logger.Error("invalid schedule", slog.String("error", err.Error()))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := watcher.Start(ctx); err != nil {
		logger.Error("failed to start watcher", slog.String("error", err.Error()))
		return 2
	}
	<-ctx.Done()
	watcher.Stop()
	return 0
}
