package mcp_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/docspec/internal/mcp"
)

const catRunsDoc = `{
  "id": "s1",
  "tokens": [{"text": "cat", "tag": "NN"}, {"text": "runs", "tag": "VBZ"}],
  "trees": [{"label": "S", "children": [
    {"label": "NN", "children": [{"terminal": true}]},
    {"label": "VBZ", "children": [{"terminal": true}]}
  ]}]
}`

func connect(t *testing.T) (context.Context, *mcpsdk.ClientSession) {
	t.Helper()

	srv := mcp.NewServer(mcp.ServerDeps{})
	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

	serverDone := make(chan error, 1)

	go func() {
		serverDone <- srv.RunWithTransport(ctx, serverTransport)
	}()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test-client", Version: "1.0.0"}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()

		cancel()
		<-serverDone
	})

	return ctx, session
}

func callText(t *testing.T, args map[string]any, tool string) (string, bool) {
	t.Helper()

	ctx, session := connect(t)

	result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{Name: tool, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)

	return text.Text, result.IsError
}

func TestNewServer_ToolsRegistered(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(mcp.ServerDeps{})
	assert.Equal(t, []string{"docspec_classify", "docspec_reconstruct"}, srv.ListToolNames())
}

func TestServer_ListTools(t *testing.T) {
	t.Parallel()

	ctx, session := connect(t)

	toolsResult, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	require.Len(t, toolsResult.Tools, 2)

	for _, tool := range toolsResult.Tools {
		assert.NotNil(t, tool.InputSchema, "tool %s missing input schema", tool.Name)
	}
}

func TestReconstructTool_JSON(t *testing.T) {
	t.Parallel()

	text, isError := callText(t, map[string]any{"document": catRunsDoc}, mcp.ToolNameReconstruct)
	require.False(t, isError, text)

	var results []map[string]any

	require.NoError(t, json.Unmarshal([]byte(text), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "s1", results[0]["id"])
	assert.NotContains(t, results[0], "error")
}

func TestReconstructTool_SExpr(t *testing.T) {
	t.Parallel()

	text, isError := callText(t, map[string]any{"document": catRunsDoc, "format": "sexpr"}, mcp.ToolNameReconstruct)
	require.False(t, isError, text)
	assert.Contains(t, text, "(S (NN cat) (VBZ runs))")
}

func TestReconstructTool_SentenceFailureIsData(t *testing.T) {
	t.Parallel()

	doc := `{"id": "short", "tokens": [{"text": "cat"}], "trees": [{"label": "S", "children": [
	  {"label": "NN", "children": [{"terminal": true}]},
	  {"label": "VBZ", "children": [{"terminal": true}]}]}]}`

	text, isError := callText(t, map[string]any{"document": doc}, mcp.ToolNameReconstruct)
	require.False(t, isError, text)
	assert.Contains(t, text, "supply exhausted")
}

func TestReconstructTool_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"empty", map[string]any{"document": ""}, "document parameter is required"},
		{"schema", map[string]any{"document": `{"id": "x"}`}, "document does not match schema"},
		{"format", map[string]any{"document": catRunsDoc, "format": "tree"}, "unsupported format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			text, isError := callText(t, tt.args, mcp.ToolNameReconstruct)
			assert.True(t, isError)
			assert.Contains(t, text, tt.want)
		})
	}
}

func TestClassifyTool(t *testing.T) {
	t.Parallel()

	text, isError := callText(t, map[string]any{"labels": []string{"NN", "QASSERT", "NP"}}, mcp.ToolNameClassify)
	require.False(t, isError, text)

	var out []mcp.Classification

	require.NoError(t, json.Unmarshal([]byte(text), &out))
	require.Len(t, out, 3)
	assert.Equal(t, "terminal", out[0].Kind)
	assert.Equal(t, "QASSERT", out[1].Symbol)
	assert.Equal(t, "nonterminal", out[1].Kind)
	assert.Contains(t, out[2].Error, "unknown grammar label")
}

func TestClassifyTool_NoLabels(t *testing.T) {
	t.Parallel()

	text, isError := callText(t, map[string]any{"labels": []string{}}, mcp.ToolNameClassify)
	assert.True(t, isError)
	assert.Contains(t, text, "labels parameter is required")
}
