// Package sentence reconstructs typed trees for whole tokenized sentences,
// one at a time or in parallel batches.
package sentence

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Sumatoshi-tech/docspec/pkg/lexical"
	"github.com/Sumatoshi-tech/docspec/pkg/parsetree"
	"github.com/Sumatoshi-tech/docspec/pkg/symtree"
)

// Sentinel errors.
var (
	ErrNoTrees     = errors.New("sentence has no parse trees")
	ErrNilDocument = errors.New("nil sentence document")
	ErrAborted     = errors.New("batch aborted")
	ErrNotStarted  = errors.New("sentence not reconstructed")
)

// Document is one tokenized sentence together with every candidate tree the
// chart parser produced for it.
type Document struct {
	ID     string            `json:"id"             yaml:"id"`
	Text   string            `json:"text,omitempty" yaml:"text,omitempty"`
	Tokens []lexical.Token   `json:"tokens"         yaml:"tokens"`
	Trees  []*parsetree.Node `json:"trees"          yaml:"trees"`
}

// Validate checks every candidate tree for structural problems.
func (doc *Document) Validate() error {
	if len(doc.Trees) == 0 {
		return ErrNoTrees
	}

	for idx, tree := range doc.Trees {
		validateErr := tree.Validate()
		if validateErr != nil {
			return &TreeError{ID: doc.ID, Index: idx, Err: validateErr}
		}
	}

	return nil
}

// TreeError reports which candidate tree of a sentence failed.
type TreeError struct {
	Err   error
	ID    string
	Index int
}

func (e *TreeError) Error() string {
	return fmt.Sprintf("sentence %q tree %d: %v", e.ID, e.Index, e.Err)
}

func (e *TreeError) Unwrap() error {
	return e.Err
}

// Result is the outcome of reconstructing one document.
type Result struct {
	Err      error
	ID       string
	Trees    []*symtree.Tree
	Duration time.Duration
}

// OK reports whether every candidate tree was reconstructed.
func (res Result) OK() bool {
	return res.Err == nil
}

type wireResult struct {
	ID    string          `json:"id"              yaml:"id"`
	Error string          `json:"error,omitempty" yaml:"error,omitempty"`
	Trees []*symtree.Tree `json:"trees,omitempty" yaml:"trees,omitempty"`
}

func (res Result) toWire() wireResult {
	wire := wireResult{ID: res.ID, Trees: res.Trees}
	if res.Err != nil {
		wire.Error = res.Err.Error()
	}

	return wire
}

// MarshalJSON encodes the result with its error as a string.
func (res Result) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(res.toWire())
	if err != nil {
		return nil, fmt.Errorf("marshal result %q: %w", res.ID, err)
	}

	return data, nil
}

// MarshalYAML encodes the result with its error as a string.
func (res Result) MarshalYAML() (any, error) {
	return res.toWire(), nil
}
