// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package lexers

import (
	"github.com/mdhender/jomini/internal/syntaxkind"
	"github.com/mdhender/jomini/internal/text"
)

// Trivia is the stream-side trivia representation (spec.md §3): a kind,
// a byte range, and an ownership decision made once, here, at stream
// time. The tree sink (internal/greentree) later re-expresses owned
// trivia as compact TriviaPiece values attached to green tokens; it
// never re-decides ownership.
type Trivia struct {
	Kind     syntaxkind.Kind // WHITESPACE | NEWLINE | COMMENT (SKIPPED is reserved for recovery-synthesized trivia; unused by the base lexer)
	Range    text.Range
	Trailing bool
}

// Source splits a raw buffered token stream into the non-trivia tokens
// the grammar sees (current/bump/nth) and an ordered trivia list with
// ownership already resolved per the trailing policy (spec.md §4.2):
//
//	Trivia immediately following a non-trivia token T is trailing of T
//	until (and including) the first NEWLINE; everything after that, up
//	to the next non-trivia token, is leading of that next token. Trivia
//	before the first token is leading for that token. Trivia after the
//	last real token is leading for the synthetic EOF.
type Source struct {
	src []byte

	tokens []Token // non-trivia tokens, always ending with one EOF token
	trivia []Trivia

	// triviaBefore[i] is the half-open index range into trivia holding
	// every trivia item that lexically falls between tokens[i-1] and
	// tokens[i] (both trailing-of-previous and leading-of-this are
	// included; Trailing distinguishes them).
	triviaBefore []triviaRange

	diags []Diagnostic

	pos int // cursor into tokens
}

type triviaRange struct{ start, end int }

// NewSource fully scans src and builds the split token/trivia streams.
// Jomini source files are small enough (individual script files, not
// whole save games) that eager, single-pass construction is simpler
// and just as deterministic as lazy construction, and it lets the
// event parser's checkpoint/rewind operate on plain integer cursors.
func NewSource(src []byte, opts Options) *Source {
	lex := New(src, opts)

	s := &Source{src: src}
	var pendingTrailingOpen bool // true while still inside T's trailing window

	flushTriviaRangeBefore := func(startTrivia int) {
		s.triviaBefore = append(s.triviaBefore, triviaRange{start: startTrivia, end: len(s.trivia)})
	}

	triviaStartForCurrentToken := 0

	for {
		tok := lex.Next()
		if tok.Kind.IsTrivia() {
			trailing := pendingTrailingOpen
			s.trivia = append(s.trivia, Trivia{Kind: tok.Kind, Range: tok.Range(), Trailing: trailing})
			if trailing && tok.Kind == syntaxkind.NEWLINE {
				// The newline itself is trailing; everything after is
				// leading for the next token.
				pendingTrailingOpen = false
			}
			continue
		}

		// Non-trivia token (including the lexer's natural EOF token,
		// which realizes spec's "synthesize EOF" requirement: it is
		// simply the token the lexer emits once input is exhausted,
		// carrying zero length and absorbing all remaining trivia as
		// leading pieces via the same general rule below).
		hasLineBreak := false
		for i := triviaStartForCurrentToken; i < len(s.trivia); i++ {
			if s.trivia[i].Kind == syntaxkind.NEWLINE {
				hasLineBreak = true
				break
			}
		}
		if hasLineBreak {
			tok.Flags |= HasPrecedingLineBreak
		}

		flushTriviaRangeBefore(triviaStartForCurrentToken)
		s.tokens = append(s.tokens, tok)
		triviaStartForCurrentToken = len(s.trivia)
		pendingTrailingOpen = true

		if tok.Kind == syntaxkind.EOF {
			break
		}
	}

	s.diags = lex.Diagnostics()
	return s
}

// Diagnostics returns lexical diagnostics accumulated while scanning.
func (s *Source) Diagnostics() []Diagnostic { return s.diags }

// Len returns the number of non-trivia tokens, including the trailing
// EOF.
func (s *Source) Len() int { return len(s.tokens) }

// Current returns the non-trivia token at the cursor.
func (s *Source) Current() Token { return s.tokens[s.pos] }

// Nth returns the non-trivia token k positions ahead of the cursor,
// clamped to the final EOF token.
func (s *Source) Nth(k int) Token {
	i := s.pos + k
	if i >= len(s.tokens) {
		i = len(s.tokens) - 1
	}
	return s.tokens[i]
}

// Bump consumes and returns the current non-trivia token, advancing the
// cursor (unless already at EOF).
func (s *Source) Bump() Token {
	tok := s.Current()
	if s.pos < len(s.tokens)-1 {
		s.pos++
	}
	return tok
}

// AtEOF reports whether the cursor is on the final EOF token.
func (s *Source) AtEOF() bool { return s.Current().Kind == syntaxkind.EOF }

// Pos returns the current cursor position, an opaque checkpoint value.
func (s *Source) Pos() int { return s.pos }

// SeekTo rewinds (or fast-forwards) the cursor to a previously observed
// position. Used by the event parser's checkpoint/rewind machinery.
func (s *Source) SeekTo(pos int) { s.pos = pos }

// HasPrecedingTrivia reports whether the current token has any trivia
// (leading, i.e. non-trailing-of-previous) immediately before it.
func (s *Source) HasPrecedingTrivia() bool {
	r := s.triviaBefore[s.pos]
	for i := r.start; i < r.end; i++ {
		if !s.trivia[i].Trailing {
			return true
		}
	}
	return false
}

// HasPrecedingLineBreak reports whether a NEWLINE trivia piece appears
// between the previous non-trivia token and the current one.
func (s *Source) HasPrecedingLineBreak() bool {
	return s.Current().Flags&HasPrecedingLineBreak != 0
}

// TriviaBefore returns the trivia pieces immediately preceding the
// token at the given non-trivia token index (both the predecessor's
// trailing run and this token's own leading run).
func (s *Source) TriviaBefore(tokenIndex int) []Trivia {
	r := s.triviaBefore[tokenIndex]
	return s.trivia[r.start:r.end]
}

// AllTrivia returns the complete ordered trivia list for the file, used
// by the tree sink to attach leading/trailing pieces while replaying
// parser events.
func (s *Source) AllTrivia() []Trivia { return s.trivia }

// Tokens returns the complete ordered non-trivia token list (including
// the trailing EOF), used by the tree sink.
func (s *Source) Tokens() []Token { return s.tokens }

// Bytes returns the original source bytes the tokens/trivia index into.
func (s *Source) Bytes() []byte { return s.src }
