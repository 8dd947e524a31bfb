// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package greentree

import (
	"github.com/mdhender/jomini/internal/syntaxkind"
	"github.com/mdhender/jomini/internal/text"
)

// RedNode is an on-demand navigation handle over a green Node: it knows
// its absolute position and its parent, neither of which the green
// tree itself stores. Red nodes are built lazily, one level at a time,
// as a caller walks Children/Parent, so sharing a green subtree across
// many positions in the file costs nothing until something actually
// visits it.
type RedNode struct {
	green  *Node
	parent *RedNode
	offset text.Size
}

// NewRoot wraps a green root Node as the red tree's entry point, at
// absolute offset 0 with no parent.
func NewRoot(green *Node) *RedNode {
	return &RedNode{green: green, offset: 0}
}

// Green returns the underlying green node.
func (r *RedNode) Green() *Node { return r.green }

// Kind returns the node's syntax kind.
func (r *RedNode) Kind() syntaxkind.Kind { return r.green.Kind() }

// Range returns the node's absolute byte range, trivia included.
func (r *RedNode) Range() text.Range {
	return text.NewRange(r.offset, r.offset+r.green.Len())
}

// Parent returns the enclosing red node, or nil at the root.
func (r *RedNode) Parent() *RedNode { return r.parent }

// RedElement is either a *RedNode or a *RedToken.
type RedElement interface {
	Kind() syntaxkind.Kind
	Range() text.Range
	isRedElement()
}

func (*RedNode) isRedElement()  {}
func (*RedToken) isRedElement() {}

// Children returns the node's immediate children as red elements,
// computing each one's absolute offset from the running total of its
// preceding siblings' lengths.
func (r *RedNode) Children() []RedElement {
	children := r.green.Children()
	out := make([]RedElement, len(children))
	off := r.offset
	for i, c := range children {
		switch g := c.(type) {
		case *Node:
			out[i] = &RedNode{green: g, parent: r, offset: off}
		case *Token:
			out[i] = &RedToken{green: g, parent: r, offset: off}
		}
		off += c.Len()
	}
	return out
}

// ChildNodes returns only the *RedNode children, skipping tokens —
// convenient for AST lowering, which only ever descends into nodes.
func (r *RedNode) ChildNodes() []*RedNode {
	var out []*RedNode
	for _, c := range r.Children() {
		if n, ok := c.(*RedNode); ok {
			out = append(out, n)
		}
	}
	return out
}

// ChildTokens returns only the *RedToken children.
func (r *RedNode) ChildTokens() []*RedToken {
	var out []*RedToken
	for _, c := range r.Children() {
		if t, ok := c.(*RedToken); ok {
			out = append(out, t)
		}
	}
	return out
}

// Text returns the node's full source text (including its own leading
// and trailing trivia), reconstructed from src, the original source
// bytes. Reconstruction is exact by construction: every byte of src in
// the node's Range is covered by exactly one leaf token's text or
// trivia piece.
func (r *RedNode) Text(src []byte) string {
	return string(r.Range().Slice(src))
}

// RedToken is an on-demand navigation handle over a green Token.
type RedToken struct {
	green  *Token
	parent *RedNode
	offset text.Size
}

func (t *RedToken) Green() *Token         { return t.green }
func (t *RedToken) Kind() syntaxkind.Kind { return t.green.Kind() }
func (t *RedToken) Parent() *RedNode      { return t.parent }

// Range returns the token's absolute byte range, including its own
// leading and trailing trivia.
func (t *RedToken) Range() text.Range {
	return text.NewRange(t.offset, t.offset+t.green.Len())
}

// TextRange returns the absolute byte range of just the token's own
// text, excluding leading/trailing trivia.
func (t *RedToken) TextRange() text.Range {
	var leadLen text.Size
	for _, tp := range t.green.Leading() {
		leadLen += tp.Length
	}
	start := t.offset + leadLen
	return text.NewRange(start, start+text.Size(len(t.green.Text())))
}

// Text returns the token's own source text, excluding trivia.
func (t *RedToken) Text() string { return t.green.Text() }

// LeadingTriviaPieces returns the token's leading trivia kinds paired
// with their source text, by walking the green Leading() lengths
// forward from the token's starting offset. Used by callers (the .cwt
// ingest's metadata-comment pass) that need a comment trivia piece's
// literal text, not just its kind and length.
func (t *RedToken) LeadingTriviaPieces(src []byte) []TriviaText {
	pieces := t.green.Leading()
	out := make([]TriviaText, 0, len(pieces))
	off := t.offset
	for _, tp := range pieces {
		out = append(out, TriviaText{Kind: tp.Kind, Text: string(src[off : off+tp.Length])})
		off += tp.Length
	}
	return out
}

// TriviaText pairs a trivia piece's kind with its literal source text.
type TriviaText struct {
	Kind syntaxkind.Kind
	Text string
}
