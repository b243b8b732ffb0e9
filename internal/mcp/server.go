// Package mcp implements a Model Context Protocol server exposing typed tree
// reconstruction and label classification as MCP tools.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/docspec/pkg/observability"
	"github.com/Sumatoshi-tech/docspec/pkg/sentence"
	"github.com/Sumatoshi-tech/docspec/pkg/version"
)

const (
	serverName = "docspec"
	toolCount  = 2
)

// ServerDeps holds injectable dependencies for the MCP server.
// Zero-value fields use defaults.
type ServerDeps struct {
	// Reconstructor rebuilds typed trees. Nil uses a reconstructor with default settings.
	Reconstructor *sentence.Reconstructor

	// Logger is an optional structured logger.
	Logger *slog.Logger

	// Metrics is an optional RED metrics recorder. Nil disables per-tool metrics.
	Metrics *observability.REDMetrics

	// Tracer is an optional OTel tracer for per-tool-call spans. Nil disables tracing.
	Tracer trace.Tracer
}

// Server wraps the MCP SDK server with the docspec tool registrations.
type Server struct {
	inner         *mcpsdk.Server
	reconstructor *sentence.Reconstructor
	metrics       *observability.REDMetrics
	tracer        trace.Tracer
	tools         []string
	mu            sync.RWMutex
}

// NewServer creates an MCP server with every docspec tool registered.
func NewServer(deps ServerDeps) *Server {
	opts := &mcpsdk.ServerOptions{}
	if deps.Logger != nil {
		opts.Logger = deps.Logger
	}

	inner := mcpsdk.NewServer(&mcpsdk.Implementation{Name: serverName, Version: version.Version}, opts)

	rec := deps.Reconstructor
	if rec == nil {
		rec = sentence.NewReconstructor(sentence.Deps{Logger: deps.Logger}, sentence.Settings{RequireDrained: true})
	}

	srv := &Server{
		inner:         inner,
		reconstructor: rec,
		metrics:       deps.Metrics,
		tracer:        deps.Tracer,
		tools:         make([]string, 0, toolCount),
	}

	srv.registerTools()

	return srv
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.tools))
	copy(names, s.tools)
	sort.Strings(names)

	return names
}

// Run serves MCP on stdio until ctx is cancelled or the peer disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport serves MCP on transport until ctx is cancelled or the
// connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameReconstruct,
		Description: reconstructToolDescription,
	}, withMetrics(s.metrics, ToolNameReconstruct, withTracing(s.tracer, ToolNameReconstruct, s.handleReconstruct)))

	s.trackTool(ToolNameReconstruct)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameClassify,
		Description: classifyToolDescription,
	}, withMetrics(s.metrics, ToolNameClassify, withTracing(s.tracer, ToolNameClassify, handleClassify)))

	s.trackTool(ToolNameClassify)
}

const (
	mcpSpanPrefix  = "mcp."
	traceIDMetaKey = "trace_id"
)

// withTracing opens a span per tool call and appends the trace id to the
// response when the span is sampled.
func withTracing[Input any](
	tracer trace.Tracer,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if tracer == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		ctx, span := tracer.Start(ctx, mcpSpanPrefix+toolName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", toolName)),
		)
		defer span.End()

		result, output, err := handler(ctx, req, input)

		sc := span.SpanContext()
		if sc.IsSampled() && result != nil {
			result.Content = append(result.Content,
				&mcpsdk.TextContent{Text: fmt.Sprintf("%s=%s", traceIDMetaKey, sc.TraceID().String())})
		}

		return result, output, err
	}
}

// withMetrics records RED metrics per tool call.
func withMetrics[Input any](
	metrics *observability.REDMetrics,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if metrics == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		start := time.Now()

		decInflight := metrics.TrackInflight(ctx, mcpSpanPrefix+toolName)
		defer decInflight()

		result, output, err := handler(ctx, req, input)

		status := observability.StatusOK
		if err != nil || (result != nil && result.IsError) {
			status = observability.StatusError
		}

		metrics.RecordRequest(ctx, mcpSpanPrefix+toolName, status, time.Since(start))

		return result, output, err
	}
}

func (s *Server) trackTool(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}

const (
	reconstructToolDescription = "Reconstruct typed grammar trees for tokenized specification sentences. " +
		"Accepts a JSON document (or list) with id, tokens, and candidate parse trees, " +
		"and returns every candidate as a typed tree or the reason it failed."

	classifyToolDescription = "Classify grammar labels against the symbol catalog. " +
		"Returns the category of each label or why it is unknown."
)
