// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package lexers implements the single-pass scanner for the Jomini
// game-script language. It performs strict lexical scanning only: dates
// and dotted identifiers are both tokenized as SCALAR_UNQUOTED, with
// semantic interpretation delayed to the AST layer (see spec.md §3,
// "Scalar interpretation").
package lexers

import (
	"unicode"
	"unicode/utf8"

	"github.com/mdhender/jomini/internal/diag"
	"github.com/mdhender/jomini/internal/syntaxkind"
	"github.com/mdhender/jomini/internal/text"
)

// Flags encodes lexical facts about a token that the grammar and AST
// layers need but that are not captured by kind + range alone.
type Flags uint8

const (
	// WasQuoted is set on SCALAR_QUOTED tokens (and cleared on
	// SCALAR_UNQUOTED); kept as an explicit flag, mirroring spec.md's
	// token flag set, so callers never need to re-derive it from kind.
	WasQuoted Flags = 1 << iota
	// HasEscape is set when a quoted scalar contained a \\ or \" escape
	// sequence.
	HasEscape
	// HasPrecedingLineBreak is set when at least one NEWLINE trivia
	// piece precedes this token (computed by the token source, not the
	// raw lexer, since the lexer does not track cross-token state).
	HasPrecedingLineBreak
)

// Span carries line/column alongside a byte range, for human-facing
// diagnostics. TextRange (text.Range) remains the source of truth for
// byte-exact reconstruction; Span is a presentation-layer decoration.
type Span struct {
	Range text.Range
	Line  int // 1-based
	Col   int // 1-based, in UTF-8 code points
}

// Token is the lexer's raw output unit: a classified span of source
// plus lexical flags. Trivia tokens (WHITESPACE/NEWLINE/COMMENT) are
// emitted in-stream, interleaved with non-trivia tokens; ownership
// (leading vs. trailing) is decided later, by TokenSource.
type Token struct {
	Kind  syntaxkind.Kind
	Span  Span
	Flags Flags
}

// Range returns the token's byte range.
func (t Token) Range() text.Range { return t.Span.Range }

// Text returns the token's source text (not including any trivia).
func (t Token) Text(src []byte) string {
	return string(t.Span.Range.Slice(src))
}

// Options controls feature-gated lexer behavior (spec.md §6, "Parse
// options").
type Options struct {
	// AllowUnterminatedStrings controls whether an unclosed quote (at EOF,
	// or at a newline when AllowMultilineStrings is false) produces
	// LEXER_UNTERMINATED_STRING (false, default) or silently closes the
	// scalar there (true).
	AllowUnterminatedStrings bool
	// AllowMultilineStrings permits a quoted scalar's span to include
	// literal newlines (this is always true per spec.md §4.1, "continues
	// across newlines"; the flag exists so callers can request stricter
	// single-line-only scanning for embedded DSLs that want it).
	AllowMultilineStrings bool
}

// DefaultOptions returns the spec-mandated defaults: unterminated quoted
// scalars are an error, and multiline strings are permitted.
func DefaultOptions() Options {
	return Options{AllowUnterminatedStrings: false, AllowMultilineStrings: true}
}

// Diagnostic is the lexer's internal error record: just enough to build
// a diag.Diagnostic once a message is attached by ToDiagnostics.
type Diagnostic struct {
	Code  diag.Code
	Range text.Range
}

// ToDiagnostics converts raw lexer diagnostics to diag.Diagnostic,
// attaching CategoryLexer and a stock message per code.
func ToDiagnostics(ds []Diagnostic) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(ds))
	for _, d := range ds {
		msg := string(d.Code)
		if d.Code == CodeUnterminatedString {
			msg = "unterminated quoted string"
		}
		out = append(out, diag.New(d.Code, diag.SeverityError, diag.CategoryLexer, d.Range, "%s", msg))
	}
	return out
}

const (
	// CodeUnterminatedString is reported when a quoted scalar reaches
	// EOF (or, when AllowMultilineStrings is false, a newline) without a
	// closing quote and AllowUnterminatedStrings is false.
	CodeUnterminatedString diag.Code = "LEXER_UNTERMINATED_STRING"
)

const eofRune rune = -1

// Lexer is a single-pass scanner over source bytes.
type Lexer struct {
	opts Options

	input []byte
	pos   int // byte offset of the next unconsumed byte
	line  int
	col   int

	diags []Diagnostic
}

// New creates a Lexer over input starting at line 1, column 1.
func New(input []byte, opts Options) *Lexer {
	return &Lexer{opts: opts, input: input, pos: 0, line: 1, col: 1}
}

// Diagnostics returns lexical diagnostics accumulated since New.
func (l *Lexer) Diagnostics() []Diagnostic { return l.diags }

// Next returns the next token in the source, or a Token with Kind EOF
// once the input is exhausted. Next never returns nil; callers should
// stop once they observe syntaxkind.EOF.
func (l *Lexer) Next() Token {
	start := l.pos
	startLine, startCol := l.line, l.col

	if l.isEOF() {
		return l.finish(syntaxkind.EOF, start, startLine, startCol, 0)
	}

	switch ch := l.current(); {
	case ch == '\n':
		l.advance()
		return l.finish(syntaxkind.NEWLINE, start, startLine, startCol, 0)
	case ch == '#':
		l.lexComment()
		return l.finish(syntaxkind.COMMENT, start, startLine, startCol, 0)
	case isWhitespaceRune(ch):
		l.skipWhitespaceRun()
		return l.finish(syntaxkind.WHITESPACE, start, startLine, startCol, 0)
	case ch == '{':
		l.advance()
		return l.finish(syntaxkind.LBRACE, start, startLine, startCol, 0)
	case ch == '}':
		l.advance()
		return l.finish(syntaxkind.RBRACE, start, startLine, startCol, 0)
	case ch == '"':
		flags := l.lexQuotedScalar()
		return l.finish(syntaxkind.SCALAR_QUOTED, start, startLine, startCol, flags)
	default:
		if kind, ok := l.lexOperator(); ok {
			return l.finish(kind, start, startLine, startCol, 0)
		}
		if isScalarByte(ch) {
			l.lexUnquotedScalar()
			return l.finish(syntaxkind.SCALAR_UNQUOTED, start, startLine, startCol, 0)
		}
		// Unrecognized input: consume one rune as an error token so the
		// parser's recovery logic always makes forward progress.
		l.advance()
		return l.finish(syntaxkind.ERROR_TOKEN, start, startLine, startCol, 0)
	}
}

func (l *Lexer) finish(kind syntaxkind.Kind, start, line, col int, flags Flags) Token {
	return Token{
		Kind: kind,
		Span: Span{
			Range: text.NewRange(text.Size(start), text.Size(l.pos)),
			Line:  line,
			Col:   col,
		},
		Flags: flags,
	}
}

// lexOperator recognizes the eight operator tokens. Boundary-leader
// characters for operators are '=', '!', '>', '<', '?'.
func (l *Lexer) lexOperator() (syntaxkind.Kind, bool) {
	ch := l.current()
	switch ch {
	case '=':
		l.advance()
		if l.current() == '=' {
			l.advance()
			return syntaxkind.OP_EQ_EQ, true
		}
		return syntaxkind.OP_EQ, true
	case '!':
		if l.peek(1) == '=' {
			l.advance()
			l.advance()
			return syntaxkind.OP_NE, true
		}
		return 0, false
	case '>':
		l.advance()
		if l.current() == '=' {
			l.advance()
			return syntaxkind.OP_GE, true
		}
		return syntaxkind.OP_GT, true
	case '<':
		l.advance()
		if l.current() == '=' {
			l.advance()
			return syntaxkind.OP_LE, true
		}
		return syntaxkind.OP_LT, true
	case '?':
		if l.peek(1) == '=' {
			l.advance()
			l.advance()
			return syntaxkind.OP_QE, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// lexComment consumes a '#' comment to end of line (exclusive of the
// terminating newline, which is its own NEWLINE token/trivia).
func (l *Lexer) lexComment() {
	for !l.isEOF() && l.current() != '\n' {
		l.advance()
	}
}

func (l *Lexer) skipWhitespaceRun() {
	for !l.isEOF() && isWhitespaceRune(l.current()) {
		l.advance()
	}
}

// lexQuotedScalar consumes a double-quoted scalar starting at the
// current '"'. It allows embedded '#', allows embedded newlines unless
// Options.AllowMultilineStrings is false (then the scalar ends before
// the newline, unterminated), and recognizes the \\ and \" escapes; any
// other backslash is kept as a literal character. On EOF (or that
// newline) without a closing quote it either records
// CodeUnterminatedString (default) or silently closes the scalar,
// depending on Options.AllowUnterminatedStrings.
func (l *Lexer) lexQuotedScalar() Flags {
	startPos := l.pos
	l.advance() // opening quote
	var flags Flags = WasQuoted
	for {
		if l.isEOF() {
			if !l.opts.AllowUnterminatedStrings {
				l.diags = append(l.diags, Diagnostic{
					Code:  CodeUnterminatedString,
					Range: text.NewRange(text.Size(startPos), text.Size(l.pos)),
				})
			}
			return flags
		}
		ch := l.current()
		if ch == '\\' && (l.peek(1) == '\\' || l.peek(1) == '"') {
			flags |= HasEscape
			l.advance()
			l.advance() // consume escaped character (\\ or \")
			continue
		}
		if ch == '"' {
			l.advance()
			return flags
		}
		if ch == '\n' && !l.opts.AllowMultilineStrings {
			if !l.opts.AllowUnterminatedStrings {
				l.diags = append(l.diags, Diagnostic{
					Code:  CodeUnterminatedString,
					Range: text.NewRange(text.Size(startPos), text.Size(l.pos)),
				})
			}
			return flags
		}
		l.advance() // includes embedded newlines and '#'
	}
}

// isBoundary reports whether ch terminates an unquoted scalar.
func isBoundary(ch rune) bool {
	if ch == eofRune {
		return true
	}
	switch ch {
	case '{', '}', '"', '#', '=', '!', '>', '<', '?', '\n':
		return true
	default:
		return isWhitespaceRune(ch)
	}
}

// isScalarByte reports whether ch can start/continue an unquoted
// scalar: any rune that is not a boundary (see isBoundary), including
// punctuation such as '[', ']', ',' and any non-ASCII rune.
func isScalarByte(ch rune) bool {
	if isBoundary(ch) {
		return false
	}
	return true
}

func (l *Lexer) lexUnquotedScalar() {
	for !l.isEOF() && isScalarByte(l.current()) {
		l.advance()
	}
}

func isWhitespaceRune(ch rune) bool {
	return ch != '\n' && ch != eofRune && unicode.IsSpace(ch)
}

func (l *Lexer) isEOF() bool { return l.pos >= len(l.input) }

func (l *Lexer) current() rune {
	if l.isEOF() {
		return eofRune
	}
	r, _ := utf8.DecodeRune(l.input[l.pos:])
	return r
}

// peek looks ahead n bytes without decoding multi-byte runes; used only
// for single-byte lookahead in two-character operators, which are all
// ASCII.
func (l *Lexer) peek(n int) rune {
	if l.pos+n >= len(l.input) {
		return eofRune
	}
	return rune(l.input[l.pos+n])
}

func (l *Lexer) advance() {
	if l.isEOF() {
		return
	}
	r, w := utf8.DecodeRune(l.input[l.pos:])
	l.pos += w
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}
