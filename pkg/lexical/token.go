// Package lexical holds the tokenizer's output as consumed by tree
// reconstruction: immutable tokens and a cursor that hands each one out
// exactly once.
package lexical

import "errors"

// ErrExhausted indicates that the cursor has no tokens left.
var ErrExhausted = errors.New("token supply exhausted")

// Token is one word or sub-token of a sentence as produced by the tagger.
type Token struct {
	// Text is the original surface text.
	Text string `json:"text" yaml:"text"`
	// Tag is the part-of-speech tag assigned by the tagger.
	Tag string `json:"tag,omitempty" yaml:"tag,omitempty"`
	// Lemma is the lemmatized form, if the tagger produced one.
	Lemma string `json:"lemma,omitempty" yaml:"lemma,omitempty"`
}

// Cursor walks a token sequence forward. It is not safe for concurrent use;
// each reconstruction owns its own cursor.
type Cursor struct {
	tokens []Token
	pos    int
}

// NewCursor returns a cursor positioned before the first token. The slice is
// not copied and must not be modified while the cursor is in use.
func NewCursor(tokens []Token) *Cursor {
	return &Cursor{tokens: tokens}
}

// Next returns the next token and advances, or ErrExhausted.
func (cursor *Cursor) Next() (Token, error) {
	if cursor.pos >= len(cursor.tokens) {
		return Token{}, ErrExhausted
	}

	tok := cursor.tokens[cursor.pos]
	cursor.pos++

	return tok, nil
}

// Consumed returns how many tokens have been handed out.
func (cursor *Cursor) Consumed() int {
	return cursor.pos
}

// Remaining returns how many tokens are left.
func (cursor *Cursor) Remaining() int {
	return len(cursor.tokens) - cursor.pos
}
