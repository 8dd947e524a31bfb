// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package greentree implements the immutable, structurally-shared
// "green tree" that is the pipeline's single source of truth for
// lossless reconstruction, plus on-demand "red" navigation wrappers
// over it (see red.go). A green Node never knows its own position or
// parent; that information is computed lazily by the red layer as it
// is walked, which is what lets identical subtrees (e.g. two identical
// `color = { 1 2 3 }` statements) share the same green allocation.
package greentree

import (
	"github.com/mdhender/jomini/internal/syntaxkind"
	"github.com/mdhender/jomini/internal/text"
)

// TriviaPiece is the tree-side trivia representation: just a kind and a
// length, since a green tree has no absolute offsets. Compare to
// lexers.Trivia, the stream-side representation, which carries an
// absolute text.Range.
type TriviaPiece struct {
	Kind   syntaxkind.Kind
	Length text.Size
}

// Element is either a *Token or a *Node; it is the unit green Nodes
// store as children.
type Element interface {
	Kind() syntaxkind.Kind
	// Len is the element's full length in source bytes, including its
	// own leading/trailing trivia (for a Token) or the full length of
	// every descendant (for a Node). Summing Len across a Node's
	// children and re-deriving absolute offsets top-down is how the red
	// layer computes position without the green tree storing any.
	Len() text.Size
	isElement()
}

// Token is a green leaf: a token kind, its own source text (excluding
// trivia), and the trivia pieces immediately attached to it.
type Token struct {
	kind     syntaxkind.Kind
	text     string
	leading  []TriviaPiece
	trailing []TriviaPiece
}

// NewToken builds a green Token.
func NewToken(kind syntaxkind.Kind, text string, leading, trailing []TriviaPiece) *Token {
	return &Token{kind: kind, text: text, leading: leading, trailing: trailing}
}

func (t *Token) Kind() syntaxkind.Kind    { return t.kind }
func (t *Token) Text() string             { return t.text }
func (t *Token) Leading() []TriviaPiece   { return t.leading }
func (t *Token) Trailing() []TriviaPiece  { return t.trailing }
func (*Token) isElement()                {}

// Len returns the token's full width: leading trivia + own text +
// trailing trivia, in bytes.
func (t *Token) Len() text.Size {
	var n text.Size
	for _, tp := range t.leading {
		n += tp.Length
	}
	n += text.Size(len(t.text))
	for _, tp := range t.trailing {
		n += tp.Length
	}
	return n
}

// Node is a green interior node: a kind and an ordered list of child
// elements (tokens and/or nested nodes).
type Node struct {
	kind     syntaxkind.Kind
	children []Element
	length   text.Size // cached sum of children's Len
}

// NewNode builds a green Node over children, pre-summing their length.
func NewNode(kind syntaxkind.Kind, children []Element) *Node {
	var n text.Size
	for _, c := range children {
		n += c.Len()
	}
	return &Node{kind: kind, children: children, length: n}
}

func (n *Node) Kind() syntaxkind.Kind   { return n.kind }
func (n *Node) Children() []Element     { return n.children }
func (n *Node) Len() text.Size          { return n.length }
func (*Node) isElement()                {}

var _ Element = (*Token)(nil)
var _ Element = (*Node)(nil)
