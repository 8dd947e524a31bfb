// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package parser implements the event-based Jomini grammar: a
// recursive-descent parser that does not build a tree directly.
// Instead it emits a flat Event log (Start/Token/Finish/Tombstone/
// ForwardParent) that internal/greentree replays to assemble the
// lossless green tree. This indirection is what makes checkpoint/
// rewind and speculative parsing cheap: abandoning a misprediction is
// just marking its Start event Tombstone, no tree surgery required.
package parser

import "github.com/mdhender/jomini/internal/syntaxkind"

// EventKind distinguishes the four event shapes the parser emits.
type EventKind int

const (
	// EvStart opens a new node of Kind; paired with a later EvFinish.
	EvStart EventKind = iota
	// EvToken consumes the current token from the token source into the
	// node currently open on top of the marker stack.
	EvToken
	// EvFinish closes the most recently opened, not-yet-closed node.
	EvFinish
	// EvTombstone marks a Start event as abandoned: the tree sink skips
	// it and re-parents its children (if any were opened and closed
	// before the tombstone was applied) to the enclosing node.
	EvTombstone
)

// noForwardParent is the sentinel ForwardParent value meaning "this
// Start event is not retroactively wrapped by anything".
const noForwardParent = -1

// Event is one entry in the parser's flat event log.
type Event struct {
	Kind EventKind

	// NodeKind is meaningful for EvStart.
	NodeKind syntaxkind.Kind

	// ForwardParent is meaningful only on EvStart events: when >= 0, it
	// is the index of another EvStart event that retroactively became
	// this node's parent (see Parser.PrecedeWith). The tree sink follows
	// this chain before descending into a Start's own children, so a
	// node can be wrapped by an enclosing node discovered after the
	// fact without re-emitting or moving any events.
	ForwardParent int
}
