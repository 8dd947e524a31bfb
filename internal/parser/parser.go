// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package parser implements an event-based recursive-descent parser for
// the Jomini game-script grammar (and, under a stricter Options, the
// .cwt schema DSL grammar reused by internal/cwt). The parser never
// builds a tree directly; it emits a flat Event log that
// internal/greentree replays to assemble the lossless green tree. See
// events.go for why: that indirection is what makes checkpoint/rewind
// and speculative parsing cheap.
package parser

import (
	"github.com/mdhender/jomini/internal/diag"
	"github.com/mdhender/jomini/internal/lexers"
	"github.com/mdhender/jomini/internal/syntaxkind"
)

// Options gates grammar-level behavior that varies by profile and by
// operator mode (spec.md §4.3, "Operator modes").
type Options struct {
	// Strict selects the strict operator mode: a KeyValue's operator
	// must be '=', and a stray extra '}' is an ERROR node plus an error
	// diagnostic. When false (permissive, the default), all eight
	// operators are accepted and a stray extra '}' is merely a warning
	// (PARSER_LEGACY_EXTRA_RBRACE), matching the legacy Jomini parsers'
	// tolerance for a mod's unbalanced braces. The schema DSL profile
	// (internal/cwt) sets this true.
	Strict bool
}

// DefaultOptions returns the permissive Jomini script profile: all
// eight operators accepted in a KeyValue, legacy brace mistakes warned
// rather than rejected.
func DefaultOptions() Options { return Options{Strict: false} }

// maxFuel bounds how many times the parser may revisit the same token
// position without making progress before the stall guard forces a
// single-token recovery step (the "ParserProgress" invariant: a
// grammar bug must never hang the parser in an infinite loop).
const maxFuel = 8

// Parser drives the grammar over a lexers.Source, emitting a flat Event
// log for internal/greentree to replay into a tree.
type Parser struct {
	opts  Options
	src   *lexers.Source
	diags *diag.Bag

	events []Event

	speculative int // >0 while inside a speculative (non-erroring) parse
	fuel        int
	lastPos     int
}

// New creates a Parser over src with the given grammar Options.
func New(src *lexers.Source, opts Options) *Parser {
	return &Parser{opts: opts, src: src, diags: diag.NewBag(), fuel: maxFuel, lastPos: -1}
}

// Options returns the grammar options this parser was built with.
func (p *Parser) Options() Options { return p.opts }

// Events returns the parser's flat event log. Valid only after the
// entry-point grammar rule has returned.
func (p *Parser) Events() []Event { return p.events }

// Source returns the underlying token source, for callers (the tree
// sink) that need the matching token/trivia streams.
func (p *Parser) Source() *lexers.Source { return p.src }

// Diagnostics returns parser-level diagnostics collected during the
// walk (lexer diagnostics are separate; carrier-level code merges both
// bags).
func (p *Parser) Diagnostics() []diag.Diagnostic { return p.diags.Items() }

// Current returns the kind of the current (not yet consumed) token.
func (p *Parser) Current() syntaxkind.Kind { return p.src.Current().Kind }

// At reports whether the current token has the given kind.
func (p *Parser) At(k syntaxkind.Kind) bool { return p.Current() == k }

// AtAny reports whether the current token's kind is one of ks.
func (p *Parser) AtAny(ks ...syntaxkind.Kind) bool {
	c := p.Current()
	for _, k := range ks {
		if c == k {
			return true
		}
	}
	return false
}

// Nth returns the kind of the token k positions ahead of the cursor.
func (p *Parser) Nth(k int) syntaxkind.Kind { return p.src.Nth(k).Kind }

// progressGuard detects a grammar rule that loops without advancing the
// cursor and forces a one-token recovery step. Call at the top of every
// loop body that may, under a malformed-grammar bug, re-visit the same
// token forever.
func (p *Parser) progressGuard() {
	pos := p.src.Pos()
	if pos == p.lastPos {
		p.fuel--
		if p.fuel <= 0 {
			p.errorRecoverOne()
			p.fuel = maxFuel
		}
	} else {
		p.lastPos = pos
		p.fuel = maxFuel
	}
}

// Bump consumes the current token into the node on top of the marker
// stack.
func (p *Parser) Bump() {
	p.src.Bump()
	p.events = append(p.events, Event{Kind: EvToken})
}

// Eat consumes the current token if it matches k and reports whether it
// did.
func (p *Parser) Eat(k syntaxkind.Kind) bool {
	if !p.At(k) {
		return false
	}
	p.Bump()
	return true
}

// Expect consumes the current token if it matches k; otherwise records a
// diagnostic and leaves the cursor untouched so the caller's own
// recovery logic decides what happens next.
func (p *Parser) Expect(k syntaxkind.Kind, code diag.Code, msg string) bool {
	if p.Eat(k) {
		return true
	}
	p.errorAtCurrent(code, msg)
	return false
}

// errorRecoverOne wraps the current token in an ERROR node and consumes
// it, guaranteeing forward progress during recovery.
func (p *Parser) errorRecoverOne() {
	if p.At(syntaxkind.EOF) {
		return
	}
	m := p.Open()
	p.Bump()
	p.Close(m, syntaxkind.ERROR)
}

func (p *Parser) errorAtCurrent(code diag.Code, msg string) {
	if p.speculative > 0 {
		return
	}
	p.diags.Add(diag.New(code, diag.SeverityError, diag.CategoryParser, p.src.Current().Range(), "%s", msg))
}

// Checkpoint is an opaque rewind point for speculative parsing: it
// captures both the token cursor and the event-log length, since a
// speculative attempt may have opened (and even closed) nodes that must
// be discarded wholesale on rewind.
type Checkpoint struct {
	tokenPos int
	eventLen int
}

// Save captures the current parser state.
func (p *Parser) Save() Checkpoint {
	return Checkpoint{tokenPos: p.src.Pos(), eventLen: len(p.events)}
}

// Speculate runs fn in speculative mode (diagnostics suppressed) and
// rewinds to the pre-call state if fn returns false, or commits (does
// nothing further) if fn returns true. Used by grammar rules that must
// look arbitrarily far ahead to disambiguate, e.g. a bare scalar that
// might be starting an ImplicitAssignment rather than a plain Value.
func (p *Parser) Speculate(fn func() bool) bool {
	cp := p.Save()
	p.speculative++
	ok := fn()
	p.speculative--
	if !ok {
		p.src.SeekTo(cp.tokenPos)
		p.events = p.events[:cp.eventLen]
	}
	return ok
}
