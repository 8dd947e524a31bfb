// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package ast

import (
	"strings"

	"github.com/mdhender/jomini/internal/greentree"
	"github.com/mdhender/jomini/internal/syntaxkind"
)

// FromRed lowers a red CST rooted at a ROOT node into a typed
// SourceFile. src is the original source bytes, needed to read token
// text out of the red tree.
func FromRed(root *greentree.RedNode, src []byte) *SourceFile {
	l := &lowerer{src: src}
	for _, child := range root.ChildNodes() {
		if child.Kind() == syntaxkind.SOURCE_FILE {
			return l.sourceFile(child)
		}
	}
	// No SOURCE_FILE child (e.g. a CWT-profile root uses its own entry
	// node) — an empty file is the safest fallback for a pure Jomini
	// lowering call.
	return &SourceFile{Red: root}
}

type lowerer struct {
	src []byte
}

func (l *lowerer) sourceFile(n *greentree.RedNode) *SourceFile {
	sf := &SourceFile{Red: n}
	for _, child := range n.ChildNodes() {
		sf.Statements = append(sf.Statements, l.statement(child))
	}
	return sf
}

// statement lowers one STATEMENT_LIST member. ERROR nodes are lowered
// wholesale into an *Error node regardless of position, preserving the
// lossless-coverage guarantee: every byte of input maps to some AST
// node, even malformed input the grammar could not otherwise place.
func (l *lowerer) statement(n *greentree.RedNode) Statement {
	switch n.Kind() {
	case syntaxkind.KEY_VALUE:
		return l.keyValue(n)
	case syntaxkind.ERROR:
		return &Error{Red: n}
	default:
		return l.value(n)
	}
}

func (l *lowerer) keyValue(n *greentree.RedNode) *KeyValue {
	kv := &KeyValue{Red: n}
	children := n.ChildNodes()
	if len(children) > 0 {
		kv.Key = l.scalar(children[0])
	}

	var opKind syntaxkind.Kind
	found := false
	for _, t := range n.ChildTokens() {
		if t.Kind().IsOperator() {
			opKind = t.Kind()
			found = true
			break
		}
	}
	if found {
		kv.Operator = opKind
	} else {
		// ImplicitAssignment: no operator token present in the CST.
		kv.Operator = syntaxkind.OP_EQ
		kv.IsImplicit = true
	}

	if len(children) > 1 {
		kv.Value = l.value(children[1])
	}
	return kv
}

// value lowers a single value-position node: SCALAR, BLOCK,
// TAGGED_BLOCK_VALUE, or ERROR.
func (l *lowerer) value(n *greentree.RedNode) Value {
	switch n.Kind() {
	case syntaxkind.SCALAR:
		return l.scalar(n)
	case syntaxkind.BLOCK:
		return l.block(n)
	case syntaxkind.TAGGED_BLOCK_VALUE:
		return l.taggedBlockValue(n)
	case syntaxkind.ERROR:
		return &Error{Red: n}
	default:
		return &Error{Red: n}
	}
}

func (l *lowerer) scalar(n *greentree.RedNode) *Scalar {
	toks := n.ChildTokens()
	if len(toks) == 0 {
		return &Scalar{Red: n}
	}
	tok := toks[0]
	wasQuoted := tok.Kind() == syntaxkind.SCALAR_QUOTED
	text := tok.Text()
	if wasQuoted {
		text = unquote(text)
	}
	return &Scalar{Red: n, Text: text, WasQuoted: wasQuoted}
}

func (l *lowerer) block(n *greentree.RedNode) *Block {
	b := &Block{Red: n}
	for _, child := range n.ChildNodes() {
		b.Statements = append(b.Statements, l.statement(child))
	}
	return b
}

func (l *lowerer) taggedBlockValue(n *greentree.RedNode) *TaggedBlockValue {
	tb := &TaggedBlockValue{Red: n}
	children := n.ChildNodes()
	if len(children) > 0 {
		tb.Tag = l.scalar(children[0])
	}
	if len(children) > 1 {
		tb.Block = l.block(children[1])
	}
	return tb
}

// unquote strips a quoted scalar's surrounding quotes and resolves its
// backslash escapes (\\ and \", the only two the lexer recognizes).
// The result is the scalar's logical text, matching what a caller
// comparing a quoted "yes" against an unquoted yes would expect after
// opting into quoted interpretation.
func unquote(raw string) string {
	s := raw
	if len(s) >= 1 && s[0] == '"' {
		s = s[1:]
	}
	if len(s) >= 1 && s[len(s)-1] == '"' {
		s = s[:len(s)-1]
	}
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '\\' || s[i+1] == '"') {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
