// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package parser

import "github.com/mdhender/jomini/internal/syntaxkind"

// Marker is a handle to a not-yet-closed EvStart event, returned by
// Parser.Open. Every Marker must be closed exactly once, via Close or
// Abandon, before parsing finishes.
type Marker struct {
	pos int // index into Parser.events of the EvStart event
	ok  bool
}

// CompletedMarker is what Marker.Close returns: a handle to a finished
// node, usable as the target of PrecedeWith for ForwardParent wrapping.
type CompletedMarker struct {
	startPos int
}

// Open starts a new node of an as-yet-undetermined kind (TOMBSTONE) and
// returns a Marker to it. The caller later calls Close(kind) once it
// knows what the node actually is, or Abandon if the speculative parse
// didn't pan out.
func (p *Parser) Open() Marker {
	pos := len(p.events)
	p.events = append(p.events, Event{Kind: EvStart, NodeKind: syntaxkind.TOMBSTONE, ForwardParent: noForwardParent})
	return Marker{pos: pos, ok: true}
}

// Close finishes the node opened by m as kind, emitting EvFinish.
func (p *Parser) Close(m Marker, kind syntaxkind.Kind) CompletedMarker {
	if !m.ok {
		panic("parser: marker closed twice")
	}
	p.events[m.pos].NodeKind = kind
	p.events = append(p.events, Event{Kind: EvFinish})
	m.ok = false
	return CompletedMarker{startPos: m.pos}
}

// Abandon discards the node opened by m: its Start event is tombstoned
// and any children it already collected re-parent to the enclosing
// node once the tree sink replays the log.
func (p *Parser) Abandon(m Marker) {
	if !m.ok {
		panic("parser: marker abandoned twice")
	}
	if m.pos == len(p.events)-1 {
		// Nothing was opened inside; drop the Start event outright.
		p.events = p.events[:m.pos]
	} else {
		p.events[m.pos].Kind = EvTombstone
	}
	m.ok = false
}

// PrecedeWith opens a brand new marker and retroactively makes it the
// parent of the node already completed as cm, by recording a
// ForwardParent pointer on cm's Start event. The caller closes the
// returned Marker once it has decided the enclosing node's kind and has
// emitted any further children that belong to it.
//
// This is how the grammar commits to e.g. KeyValue only after seeing
// the operator that follows a bare scalar: the scalar's node is opened
// and closed optimistically as SCALAR, and PrecedeWith reparents it
// under a new KEY_VALUE node once the operator confirms the shape —
// without moving or re-emitting any event already in the log.
func (p *Parser) PrecedeWith(cm CompletedMarker) Marker {
	pos := len(p.events)
	p.events = append(p.events, Event{Kind: EvStart, NodeKind: syntaxkind.TOMBSTONE, ForwardParent: noForwardParent})
	p.events[cm.startPos].ForwardParent = pos
	return Marker{pos: pos, ok: true}
}
