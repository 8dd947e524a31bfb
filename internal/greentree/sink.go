// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package greentree

import (
	"github.com/mdhender/jomini/internal/lexers"
	"github.com/mdhender/jomini/internal/parser"
	"github.com/mdhender/jomini/internal/syntaxkind"
)

// Build replays a parser's flat event log against its matching token
// source and assembles the immutable green tree. This is the "tree
// sink": it owns the forward-parent resolution (a Start event can be
// retroactively wrapped by a node discovered later in the log) and the
// leading/trailing trivia attachment decided earlier by
// lexers.Source's trailing policy.
func Build(events []parser.Event, src *lexers.Source) *Node {
	b := &builder{events: events, src: src, visited: make([]bool, len(events))}
	b.run()
	if len(b.stack) != 1 {
		panic("greentree: unbalanced event log")
	}
	return b.stack[0].toNode()
}

type frame struct {
	kind     syntaxkind.Kind
	children []Element
}

func (f *frame) toNode() *Node { return NewNode(f.kind, f.children) }

type builder struct {
	events  []parser.Event
	src     *lexers.Source
	visited []bool

	stack    []*frame
	tokenIdx int
}

func (b *builder) run() {
	for i := range b.events {
		if b.visited[i] {
			continue
		}
		ev := b.events[i]
		switch ev.Kind {
		case parser.EvTombstone:
			// nothing to do; its children (if any were attached between
			// this Start and its Finish) were never opened as a frame in
			// the first place since Abandon only tombstones Starts with
			// no children, or the Start itself is simply skipped and its
			// Finish (if any exists at all) would be unreachable. The
			// grammar never emits Finish for an abandoned marker.

		case parser.EvStart:
			if ev.NodeKind == syntaxkind.TOMBSTONE {
				continue
			}
			b.openForwardChain(i)

		case parser.EvFinish:
			b.closeTop()

		case parser.EvToken:
			b.emitToken()
		}
	}
}

// openForwardChain opens every node in the forward-parent chain
// starting at event index i, outermost first, so that the node
// originally started at i ends up nested inside whatever later Start
// event retroactively claimed it as a child (see parser.PrecedeWith).
func (b *builder) openForwardChain(i int) {
	var kinds []syntaxkind.Kind
	idx := i
	for {
		kinds = append(kinds, b.events[idx].NodeKind)
		b.visited[idx] = true
		fp := b.events[idx].ForwardParent
		if fp < 0 {
			break
		}
		idx = fp
	}
	for j := len(kinds) - 1; j >= 0; j-- {
		b.stack = append(b.stack, &frame{kind: kinds[j]})
	}
}

func (b *builder) closeTop() {
	n := len(b.stack)
	top := b.stack[n-1]
	b.stack = b.stack[:n-1]
	if len(b.stack) == 0 {
		// This was the outermost (ROOT) frame: leave it for Build to
		// read off once the event log is exhausted.
		b.stack = append(b.stack, top)
		return
	}
	parentFrame := b.stack[len(b.stack)-1]
	parentFrame.children = append(parentFrame.children, top.toNode())
}

func (b *builder) emitToken() {
	tok := b.src.Tokens()[b.tokenIdx]
	leading := triviaPieces(b.src.TriviaBefore(b.tokenIdx), false)

	var trailing []TriviaPiece
	if b.tokenIdx+1 < b.src.Len() {
		trailing = triviaPieces(b.src.TriviaBefore(b.tokenIdx+1), true)
	}

	green := NewToken(tok.Kind, tok.Text(b.src.Bytes()), leading, trailing)
	top := b.stack[len(b.stack)-1]
	top.children = append(top.children, green)
	b.tokenIdx++
}

func triviaPieces(ts []lexers.Trivia, wantTrailing bool) []TriviaPiece {
	var out []TriviaPiece
	for _, t := range ts {
		if t.Trailing == wantTrailing {
			out = append(out, TriviaPiece{Kind: t.Kind, Length: t.Range.Len()})
		}
	}
	return out
}
