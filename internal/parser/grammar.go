// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package parser

import (
	"github.com/mdhender/jomini/internal/diag"
	"github.com/mdhender/jomini/internal/lexers"
	"github.com/mdhender/jomini/internal/syntaxkind"
)

// Diagnostic codes produced while walking the grammar.
const (
	CodeExpectedLBrace      diag.Code = "PARSER_EXPECTED_LBRACE"
	CodeExpectedRBrace      diag.Code = "PARSER_EXPECTED_RBRACE"
	CodeExpectedEOF         diag.Code = "PARSER_EXPECTED_EOF"
	CodeExpectedValue       diag.Code = "PARSER_EXPECTED_VALUE"
	CodeUnexpectedToken     diag.Code = "PARSER_UNEXPECTED_TOKEN"
	CodeUnexpectedOperator  diag.Code = "PARSER_UNEXPECTED_OPERATOR"
	CodeLegacyExtraRBrace   diag.Code = "PARSER_LEGACY_EXTRA_RBRACE"
	CodeLegacyMissingRBrace diag.Code = "PARSER_LEGACY_MISSING_RBRACE"
)

// ParseSourceFile parses a whole file: StatementList followed by EOF,
// wrapped in a ROOT node so the green tree always has a single root
// regardless of grammar entry point (SourceFile vs. the CWT profile's
// own top-level rule).
func ParseSourceFile(p *Parser) {
	root := p.Open()
	file := p.Open()
	p.statementList(false)
	p.Expect(syntaxkind.EOF, CodeExpectedEOF, "expected end of file")
	p.Close(file, syntaxkind.SOURCE_FILE)
	p.Close(root, syntaxkind.ROOT)
}

// statementList parses zero or more statements. Inside a Block,
// insideBlock is true and a RBRACE ends the list normally (the caller,
// block, consumes it). At file scope insideBlock is false, so a RBRACE
// is a stray legacy brace (spec.md §4.3) rather than a terminator: it
// is reported and skipped, and the list continues.
func (p *Parser) statementList(insideBlock bool) {
	for !p.At(syntaxkind.EOF) {
		if p.At(syntaxkind.RBRACE) {
			if insideBlock {
				return
			}
			p.strayRBrace()
			continue
		}
		p.progressGuard()
		p.statement()
	}
}

// strayRBrace handles a '}' with no matching '{' at file scope: a
// warning and a skip in permissive mode, an ERROR node and an error
// diagnostic in strict mode. Either way parsing continues with the
// next statement (spec.md scenario: "b = 2" still parses after it).
func (p *Parser) strayRBrace() {
	if !p.opts.Strict {
		p.diags.Add(diag.New(CodeLegacyExtraRBrace, diag.SeverityWarning, diag.CategoryParser,
			p.src.Current().Range(), "stray '}' with no matching '{'"))
		p.Bump()
		return
	}
	p.diags.Add(diag.New(CodeUnexpectedToken, diag.SeverityError, diag.CategoryParser,
		p.src.Current().Range(), "unexpected '}' with no matching '{'"))
	m := p.Open()
	p.Bump()
	p.Close(m, syntaxkind.ERROR)
}

// statement parses one top-level construct: a KeyValue ("key = value"
// under any of the eight operators, unless Strict restricts
// that to '='), an ImplicitAssignment (a bare scalar immediately
// followed by a block with no intervening line break, treated as
// though an '=' were present), or a bare Value with no key at all
// (a scalar or block list element, e.g. `core_traits = { brave just
// }`'s "brave" and "just" entries).
func (p *Parser) statement() {
	switch {
	case p.AtAny(syntaxkind.SCALAR_UNQUOTED, syntaxkind.SCALAR_QUOTED):
		scalarM := p.Open()
		p.Bump()
		cm := p.Close(scalarM, syntaxkind.SCALAR)

		switch {
		case p.isOperatorAllowed():
			kv := p.PrecedeWith(cm)
			p.Bump() // the operator token
			p.value()
			p.Close(kv, syntaxkind.KEY_VALUE)
		case p.atTaggedBlockStart():
			// ImplicitAssignment: no operator token to consume, but the
			// shape (scalar immediately followed by a block) is still a
			// KeyValue — just one with an implicit '='.
			kv := p.PrecedeWith(cm)
			p.block()
			p.Close(kv, syntaxkind.KEY_VALUE)
		default:
			// Bare scalar: stands alone as a keyless list element.
		}

	case p.At(syntaxkind.LBRACE):
		p.block()

	default:
		p.errorAtCurrent(CodeUnexpectedToken, "unexpected token")
		p.recoverToLineOrStop(syntaxkind.RBRACE)
	}
}

// atTaggedBlockStart reports whether a tag scalar just closed is
// immediately followed by a block, with no intervening line break. A
// newline between the tag and '{' demotes the construct to a bare
// scalar statement followed by a separate, stray block statement (spec
// scenario: "color = rgb\n{ 100 200 150 }" is NOT a tagged block value).
func (p *Parser) atTaggedBlockStart() bool {
	return p.At(syntaxkind.LBRACE) && !p.currentHasPrecedingLineBreak()
}

// isOperatorAllowed reports whether the current token is an operator
// this grammar profile accepts in KeyValue position.
func (p *Parser) isOperatorAllowed() bool {
	k := p.Current()
	if !k.IsOperator() {
		return false
	}
	if p.opts.Strict && k != syntaxkind.OP_EQ {
		p.errorAtCurrent(CodeUnexpectedOperator, "only '=' is permitted here")
		return false
	}
	return true
}

// value parses a KeyValue's right-hand side: a Scalar, a Block, or a
// TaggedBlockValue (a scalar tag immediately followed by a block, used
// for constructs like `color = rgb { 10 20 30 }`).
func (p *Parser) value() {
	switch {
	case p.AtAny(syntaxkind.SCALAR_UNQUOTED, syntaxkind.SCALAR_QUOTED):
		scalarM := p.Open()
		p.Bump()
		cm := p.Close(scalarM, syntaxkind.SCALAR)
		if p.atTaggedBlockStart() {
			tb := p.PrecedeWith(cm)
			p.block()
			p.Close(tb, syntaxkind.TAGGED_BLOCK_VALUE)
		}

	case p.At(syntaxkind.LBRACE):
		p.block()

	default:
		p.errorAtCurrent(CodeExpectedValue, "expected a value")
		p.recoverToLineOrStop(syntaxkind.RBRACE)
	}
}

// block parses a brace-delimited StatementList. A missing closing '}'
// (the list ran out at EOF instead) is a warning in permissive mode —
// legacy Jomini files sometimes drop a trailing brace — and an error
// in strict mode; either way the block still closes at EOF.
func (p *Parser) block() {
	m := p.Open()
	p.Expect(syntaxkind.LBRACE, CodeExpectedLBrace, "expected '{'")
	p.statementList(true)
	if !p.Eat(syntaxkind.RBRACE) {
		if p.opts.Strict {
			p.errorAtCurrent(CodeExpectedRBrace, "expected '}'")
		} else {
			p.diags.Add(diag.New(CodeLegacyMissingRBrace, diag.SeverityWarning, diag.CategoryParser,
				p.src.Current().Range(), "missing closing '}'"))
		}
	}
	p.Close(m, syntaxkind.BLOCK)
}

// recoverToLineOrStop consumes tokens into an ERROR node until either a
// token in stop is reached, EOF is reached, or (after at least one
// token has been consumed) the next token carries a preceding line
// break. Trivia carries no token of its own in the stripped token
// stream TokenSource exposes, so "stop at the next line" is expressed
// via the HasPrecedingLineBreak flag TokenSource computed, rather than
// by scanning for a NEWLINE token directly.
func (p *Parser) recoverToLineOrStop(stop ...syntaxkind.Kind) {
	if p.AtAny(stop...) || p.At(syntaxkind.EOF) {
		return
	}
	m := p.Open()
	consumedOne := false
	for !p.AtAny(stop...) && !p.At(syntaxkind.EOF) {
		p.progressGuard()
		if consumedOne && p.currentHasPrecedingLineBreak() {
			break
		}
		consumedOne = true
		p.Bump()
	}
	p.Close(m, syntaxkind.ERROR)
}

func (p *Parser) currentHasPrecedingLineBreak() bool {
	return p.src.Current().Flags&lexers.HasPrecedingLineBreak != 0
}
