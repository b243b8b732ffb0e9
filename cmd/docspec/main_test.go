package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/docspec/pkg/codec"
	"github.com/Sumatoshi-tech/docspec/pkg/lexical"
	"github.com/Sumatoshi-tech/docspec/pkg/parsetree"
	"github.com/Sumatoshi-tech/docspec/pkg/sentence"
)

const catRunsJSON = `{
  "id": "s1",
  "text": "cat runs",
  "tokens": [{"text": "cat", "tag": "NN", "lemma": "cat"}, {"text": "runs", "tag": "VBZ", "lemma": "run"}],
  "trees": [{"label": "S", "children": [
    {"label": "NN", "children": [{"terminal": true}]},
    {"label": "VBZ", "children": [{"terminal": true}]}
  ]}]
}`

func catRunsDoc(id, verb string) *sentence.Document {
	return &sentence.Document{
		ID:     id,
		Tokens: []lexical.Token{{Text: "cat", Tag: "NN"}, {Text: "runs", Tag: verb}},
		Trees: []*parsetree.Node{parsetree.Branch("S",
			parsetree.Branch("NN", parsetree.Terminal()),
			parsetree.Branch(verb, parsetree.Terminal()),
		)},
	}
}

func shortDoc(id string) *sentence.Document {
	doc := catRunsDoc(id, "VBZ")
	doc.Tokens = doc.Tokens[:1]

	return doc
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func writeDocs(t *testing.T, name string, docs ...*sentence.Document) string {
	t.Helper()

	var buf bytes.Buffer

	require.NoError(t, codec.WriteDocuments(&buf, docs, name))

	return writeFile(t, name, buf.String())
}

// execute runs the root command with args and returns stdout and the error.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.Execute()

	return stdout.String(), err
}

func TestVersionCmd(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "docspec "))
}

func TestSymbolsCmd(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "", "symbols")
	require.NoError(t, err)
	assert.Contains(t, out, "QUANT_EXPR")
	assert.Contains(t, out, "Total: 64")

	out, err = execute(t, "", "symbols", "--terminal", "-f", "json")
	require.NoError(t, err)

	var rows []symbolRow

	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	assert.Len(t, rows, 32)
	assert.Equal(t, "NN", rows[0].Label)

	out, err = execute(t, "", "symbols", "--check")
	require.NoError(t, err)
	assert.Contains(t, out, "no collisions")
}

func TestClassifyCmd(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "", "classify", "NN", "QASSERT")
	require.NoError(t, err)
	assert.Equal(t, "NN\tNN\tterminal\nQASSERT\tQASSERT\tnonterminal\n", out)

	out, err = execute(t, "", "classify", "--namespace", "terminal", "QASSERT")
	require.ErrorIs(t, err, ErrUnclassified)
	assert.Contains(t, out, "QASSERT\tunknown")
}

func TestReconstructCmd_File(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "docs.json", catRunsJSON)

	out, err := execute(t, "", "reconstruct", "-f", "sexpr", path)
	require.NoError(t, err)
	assert.Equal(t, "; s1 #0\n(S (NN cat) (VBZ runs))\n", out)
}

func TestReconstructCmd_StdinDefaultsToJSON(t *testing.T) {
	t.Parallel()

	out, err := execute(t, catRunsJSON, "reconstruct")
	require.NoError(t, err)

	var results []map[string]any

	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "s1", results[0]["id"])
}

func TestReconstructCmd_FailureStillWritesResults(t *testing.T) {
	t.Parallel()

	path := writeDocs(t, "docs.yaml", catRunsDoc("ok", "VBZ"), shortDoc("short"))

	out, err := execute(t, "", "reconstruct", "-f", "tree", "--color", "never", path)
	require.ErrorIs(t, err, ErrSentencesFailed)
	assert.Contains(t, out, "ok #0")
	assert.Contains(t, out, "short: error:")
}

func TestReconstructCmd_OutputFile(t *testing.T) {
	t.Parallel()

	input := writeDocs(t, "docs.json.lz4", catRunsDoc("a", "VBZ"))
	output := filepath.Join(t.TempDir(), "out.yaml")

	out, err := execute(t, "", "reconstruct", "-f", "yaml", "-o", output, input)
	require.NoError(t, err)
	assert.Empty(t, out)

	written, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(written), "symbol: S")
}

func TestReconstructCmd_UnknownFormat(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "docs.json", catRunsJSON)

	_, err := execute(t, "", "reconstruct", "-f", "xml", path)
	require.ErrorIs(t, err, codec.ErrUnknownFormat)
}

func TestBatchCmd_Summary(t *testing.T) {
	t.Parallel()

	first := writeDocs(t, "a.json", catRunsDoc("a1", "VBZ"), catRunsDoc("a2", "VBD"))
	second := writeDocs(t, "b.yaml.lz4", catRunsDoc("b1", "VBZ"), shortDoc("b2"))
	results := filepath.Join(t.TempDir(), "results.json")

	out, err := execute(t, "", "batch", "-w", "2", "-o", results, first, second)
	require.NoError(t, err)
	assert.Contains(t, out, "Sentences: 4 (3 ok, 1 failed, 0 not started)")
	assert.Contains(t, out, "Trees:     3")
	assert.Contains(t, out, "sentences/s")

	written, err := os.ReadFile(results)
	require.NoError(t, err)

	var decoded []map[string]any

	require.NoError(t, json.Unmarshal(written, &decoded))
	assert.Len(t, decoded, 4)
}

func TestBatchCmd_AbortPolicy(t *testing.T) {
	t.Parallel()

	path := writeDocs(t, "a.json", shortDoc("bad"), catRunsDoc("good", "VBZ"))

	out, err := execute(t, "", "batch", "-w", "1", "--policy", "abort", path)
	require.ErrorIs(t, err, sentence.ErrAborted)
	assert.Contains(t, out, "1 not started")
}

func TestBatchCmd_BadPolicy(t *testing.T) {
	t.Parallel()

	path := writeDocs(t, "a.json", catRunsDoc("a", "VBZ"))

	_, err := execute(t, "", "batch", "--policy", "retry", path)
	require.ErrorIs(t, err, sentence.ErrUnknownPolicy)
}

func TestValidateCmd(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "", "validate", "--color", "never", writeFile(t, "ok.json", catRunsJSON))
	require.NoError(t, err)
	assert.Contains(t, out, "Documents are valid")
	assert.Contains(t, out, "1 sentences, 1 trees")

	out, err = execute(t, `{"id": "x", "tokens": []}`, "validate", "--color", "never", "-")
	require.ErrorIs(t, err, ErrValidationFailed)
	assert.Contains(t, out, "Schema validation failed")

	unknown := strings.Replace(catRunsJSON, `"label": "VBZ"`, `"label": "NP"`, 1)
	out, err = execute(t, "", "validate", "--color", "never", writeFile(t, "unknown.json", unknown))
	require.ErrorIs(t, err, ErrValidationFailed)
	assert.Contains(t, out, "Catalog check failed")
	assert.Contains(t, out, "s1/tree0/1")
}

func TestValidateCmd_YAML(t *testing.T) {
	t.Parallel()

	path := writeDocs(t, "docs.yaml", catRunsDoc("a", "VBZ"), catRunsDoc("b", "VBD"))

	out, err := execute(t, "", "validate", "--color", "never", path)
	require.NoError(t, err)
	assert.Contains(t, out, "2 sentences, 2 trees")
}

func TestDiffCmd(t *testing.T) {
	t.Parallel()

	before := writeDocs(t, "before.json", catRunsDoc("s1", "VBZ"))
	same := writeDocs(t, "same.json", catRunsDoc("s1", "VBZ"))
	after := writeDocs(t, "after.yaml", catRunsDoc("s0", "VBZ"), catRunsDoc("s1", "VBD"))

	out, err := execute(t, "", "diff", "--color", "never", "--exit-code", before, same)
	require.NoError(t, err)
	assert.Contains(t, out, "0 added, 0 removed")

	out, err = execute(t, "", "diff", "--color", "never", "--exit-code", "-s", "s1", before, after)
	require.ErrorIs(t, err, ErrTreesDiffer)
	assert.Contains(t, out, "-  VBZ")
	assert.Contains(t, out, "+  VBD")

	_, err = execute(t, "", "diff", "-s", "missing", before, after)
	require.ErrorIs(t, err, ErrSentenceNotFound)

	_, err = execute(t, "", "diff", "-t", "3", before, after)
	require.ErrorIs(t, err, ErrTreeIndex)
}

func TestConvertCmd_RoundTrip(t *testing.T) {
	t.Parallel()

	input := writeDocs(t, "docs.yaml", catRunsDoc("a", "VBZ"), catRunsDoc("b", "VBD"))
	packed := filepath.Join(t.TempDir(), "docs.json.lz4")

	_, err := execute(t, "", "convert", input, packed)
	require.NoError(t, err)

	file, err := os.Open(packed)
	require.NoError(t, err)

	t.Cleanup(func() { _ = file.Close() })

	docs, err := codec.LoadDocuments(file, packed)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "b", docs[1].ID)
	assert.Equal(t, "VBD", docs[1].Trees[0].Children[1].Label)

	out, err := execute(t, "", "convert", packed, "-")
	require.NoError(t, err)

	var plain []sentence.Document

	require.NoError(t, json.Unmarshal([]byte(out), &plain))
	require.Len(t, plain, 2)
	assert.Equal(t, "a", plain[0].ID)
}

func TestConvertCmd_CheckRejectsMalformedTrees(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "bad.json", `{"id": "x", "tokens": [{"text": "cat"}], "trees": [{"children": [{"terminal": true}]}]}`)

	_, err := execute(t, "", "convert", path, "-")
	require.NoError(t, err)

	_, err = execute(t, "", "convert", "--check", path, "-")
	require.ErrorIs(t, err, ErrValidationFailed)
	require.ErrorIs(t, err, parsetree.ErrMalformedNode)
}

func TestUseColor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	assert.True(t, useColor("always", &buf))
	assert.False(t, useColor("never", os.Stdout))
	assert.False(t, useColor("auto", &buf))
}

func TestResolveUserFilePath(t *testing.T) {
	t.Parallel()

	_, err := resolveUserFilePath("")
	require.ErrorIs(t, err, ErrEmptyPath)

	_, err = resolveUserFilePath("a\x00b")
	require.ErrorIs(t, err, ErrPathContainsNUL)

	_, err = resolveUserFilePath(t.TempDir())
	require.ErrorIs(t, err, ErrDirectoryPath)
}
