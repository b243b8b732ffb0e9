package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/docspec/pkg/codec"
	"github.com/Sumatoshi-tech/docspec/pkg/grammar"
	"github.com/Sumatoshi-tech/docspec/pkg/schema"
	"github.com/Sumatoshi-tech/docspec/pkg/sentence"
)

// Tool names.
const (
	ToolNameReconstruct = "docspec_reconstruct"
	ToolNameClassify    = "docspec_classify"
)

// MaxDocumentInputBytes bounds the inline document argument.
const MaxDocumentInputBytes = 1 << 20

// Sentinel errors for tool input validation.
var (
	ErrEmptyDocument    = errors.New("document parameter is required and must not be empty")
	ErrDocumentTooLarge = errors.New("document input exceeds maximum size")
	ErrNoLabels         = errors.New("labels parameter is required and must not be empty")
	ErrUnsupportedFmt   = errors.New("unsupported format")
)

// ReconstructInput is the input of the docspec_reconstruct tool.
type ReconstructInput struct {
	Document string `json:"document"         jsonschema:"sentence document JSON object or array with id, tokens, and trees"`
	Format   string `json:"format,omitempty" jsonschema:"result format: json (default) or sexpr"`
}

// ClassifyInput is the input of the docspec_classify tool.
type ClassifyInput struct {
	Labels    []string `json:"labels"              jsonschema:"grammar labels to classify"`
	Namespace string   `json:"namespace,omitempty" jsonschema:"terminal, nonterminal, or any (default)"`
}

// Classification is the outcome for one label.
type Classification struct {
	Label    string `json:"label"`
	Symbol   string `json:"symbol,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Error    string `json:"error,omitempty"`
	Terminal bool   `json:"terminal"`
}

// ToolOutput wraps structured tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

func textResult(text string) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: text},
		},
	}, ToolOutput{Data: text}, nil
}

func validateDocumentInput(document string) error {
	if document == "" {
		return ErrEmptyDocument
	}

	if len(document) > MaxDocumentInputBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrDocumentTooLarge, len(document), MaxDocumentInputBytes)
	}

	return nil
}

// handleReconstruct processes docspec_reconstruct calls. Per-sentence failures
// are part of the result; only unusable input is reported as a tool error.
func (s *Server) handleReconstruct(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input ReconstructInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateDocumentInput(input.Document)
	if err != nil {
		return errorResult(err)
	}

	format := codec.FormatJSON

	if input.Format != "" {
		format, err = codec.ParseFormat(input.Format)
		if err != nil || (format != codec.FormatJSON && format != codec.FormatSExpr) {
			return errorResult(fmt.Errorf("%w: %q", ErrUnsupportedFmt, input.Format))
		}
	}

	raw := []byte(input.Document)

	err = schema.Validate(raw)
	if err != nil {
		return errorResult(err)
	}

	docs, err := codec.DecodeDocuments(raw, codec.SyntaxJSON)
	if err != nil {
		return errorResult(err)
	}

	results, _, err := s.reconstructor.Batch(ctx, docs, sentence.BatchOptions{Policy: sentence.PolicySkip})
	if err != nil {
		return errorResult(err)
	}

	if format == codec.FormatSExpr {
		var buf bytes.Buffer

		encodeErr := codec.NewEncoder(&buf, codec.FormatSExpr, false).Encode(results)
		if encodeErr != nil {
			return errorResult(encodeErr)
		}

		return textResult(buf.String())
	}

	return jsonResult(results)
}

// handleClassify processes docspec_classify calls.
func handleClassify(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	input ClassifyInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if len(input.Labels) == 0 {
		return errorResult(ErrNoLabels)
	}

	namespace, err := grammar.ParseNamespace(input.Namespace)
	if err != nil {
		return errorResult(err)
	}

	out := make([]Classification, 0, len(input.Labels))

	for _, label := range input.Labels {
		out = append(out, classify(label, namespace))
	}

	return jsonResult(out)
}

func classify(label string, namespace grammar.Namespace) Classification {
	sym, err := grammar.Default().Classify(label, namespace)
	if err != nil {
		return Classification{Label: label, Error: err.Error()}
	}

	kind := "nonterminal"
	if sym.IsTerminal() {
		kind = "terminal"
	}

	return Classification{Label: label, Symbol: sym.String(), Kind: kind, Terminal: sym.IsTerminal()}
}
