// Package codec reads sentence documents and writes typed trees in the
// formats the docspec command line and services speak.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/docspec/pkg/sentence"
)

// MaxInputSize bounds the decompressed size of one input stream.
const MaxInputSize = 64 << 20

// Sentinel errors.
var (
	ErrInputTooLarge = errors.New("input exceeds size limit")
	ErrEmptyInput    = errors.New("input contains no documents")
	ErrNullDocument  = errors.New("document list has an empty entry")
)

// Syntax is the serialization of an input stream.
type Syntax uint8

// Input syntaxes.
const (
	SyntaxJSON Syntax = iota
	SyntaxYAML
)

func (syntax Syntax) String() string {
	if syntax == SyntaxYAML {
		return "yaml"
	}

	return "json"
}

const lz4Ext = ".lz4"

// DetectSyntax picks the syntax from a file name such as "doc.yaml.lz4" and
// reports whether the stream is an LZ4 frame. Unknown names, including "-",
// are JSON.
func DetectSyntax(name string) (Syntax, bool) {
	lower := strings.ToLower(name)
	compressed := strings.HasSuffix(lower, lz4Ext)
	lower = strings.TrimSuffix(lower, lz4Ext)

	switch filepath.Ext(lower) {
	case ".yaml", ".yml":
		return SyntaxYAML, compressed
	default:
		return SyntaxJSON, compressed
	}
}

// ReadInput reads the whole stream named name, decompressing LZ4 frames.
func ReadInput(reader io.Reader, name string) ([]byte, Syntax, error) {
	syntax, compressed := DetectSyntax(name)
	if compressed {
		reader = lz4.NewReader(reader)
	}

	data, readErr := io.ReadAll(io.LimitReader(reader, MaxInputSize+1))
	if readErr != nil {
		return nil, syntax, fmt.Errorf("read %s: %w", name, readErr)
	}

	if len(data) > MaxInputSize {
		return nil, syntax, fmt.Errorf("%w: %s", ErrInputTooLarge, name)
	}

	return data, syntax, nil
}

// DecodeDocuments decodes either a single document or a list of documents.
func DecodeDocuments(data []byte, syntax Syntax) ([]*sentence.Document, error) {
	var (
		docs []*sentence.Document
		err  error
	)

	if syntax == SyntaxYAML {
		docs, err = decodeYAML(data)
	} else {
		docs, err = decodeJSON(data)
	}

	if err != nil {
		return nil, err
	}

	if len(docs) == 0 {
		return nil, ErrEmptyInput
	}

	for idx, doc := range docs {
		if doc == nil {
			return nil, fmt.Errorf("%w at index %d", ErrNullDocument, idx)
		}
	}

	return docs, nil
}

func decodeJSON(data []byte) ([]*sentence.Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmptyInput
	}

	if trimmed[0] == '[' {
		var docs []*sentence.Document

		unmarshalErr := json.Unmarshal(trimmed, &docs)
		if unmarshalErr != nil {
			return nil, fmt.Errorf("decode json documents: %w", unmarshalErr)
		}

		return docs, nil
	}

	var doc sentence.Document

	unmarshalErr := json.Unmarshal(trimmed, &doc)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("decode json document: %w", unmarshalErr)
	}

	return []*sentence.Document{&doc}, nil
}

func decodeYAML(data []byte) ([]*sentence.Document, error) {
	var root yaml.Node

	unmarshalErr := yaml.Unmarshal(data, &root)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("decode yaml: %w", unmarshalErr)
	}

	if len(root.Content) == 0 {
		return nil, ErrEmptyInput
	}

	content := root.Content[0]

	if content.Kind == yaml.SequenceNode {
		var docs []*sentence.Document

		decodeErr := content.Decode(&docs)
		if decodeErr != nil {
			return nil, fmt.Errorf("decode yaml documents: %w", decodeErr)
		}

		return docs, nil
	}

	var doc sentence.Document

	decodeErr := content.Decode(&doc)
	if decodeErr != nil {
		return nil, fmt.Errorf("decode yaml document: %w", decodeErr)
	}

	return []*sentence.Document{&doc}, nil
}

// ToJSON converts input of either syntax to JSON.
func ToJSON(data []byte, syntax Syntax) ([]byte, error) {
	if syntax == SyntaxJSON {
		return data, nil
	}

	var value any

	unmarshalErr := yaml.Unmarshal(data, &value)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("decode yaml: %w", unmarshalErr)
	}

	out, marshalErr := json.Marshal(value)
	if marshalErr != nil {
		return nil, fmt.Errorf("convert yaml to json: %w", marshalErr)
	}

	return out, nil
}

// LoadDocuments reads and decodes the stream named name.
func LoadDocuments(reader io.Reader, name string) ([]*sentence.Document, error) {
	data, syntax, err := ReadInput(reader, name)
	if err != nil {
		return nil, err
	}

	docs, err := DecodeDocuments(data, syntax)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return docs, nil
}

// WriteDocuments encodes docs in the syntax implied by name, compressing with
// LZ4 when name ends in ".lz4".
func WriteDocuments(writer io.Writer, docs []*sentence.Document, name string) error {
	syntax, compressed := DetectSyntax(name)

	var frame *lz4.Writer

	if compressed {
		frame = lz4.NewWriter(writer)
		writer = frame
	}

	var encodeErr error

	if syntax == SyntaxYAML {
		enc := yaml.NewEncoder(writer)
		encodeErr = enc.Encode(docs)

		if encodeErr == nil {
			encodeErr = enc.Close()
		}
	} else {
		enc := json.NewEncoder(writer)
		enc.SetIndent("", "  ")
		encodeErr = enc.Encode(docs)
	}

	if encodeErr != nil {
		return fmt.Errorf("encode documents: %w", encodeErr)
	}

	if frame != nil {
		closeErr := frame.Close()
		if closeErr != nil {
			return fmt.Errorf("close lz4 frame: %w", closeErr)
		}
	}

	return nil
}
