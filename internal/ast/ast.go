// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package ast builds a typed abstract syntax tree from the lossless
// red/green CST produced by internal/greentree. Scalar interpretation
// is deliberately lazy (see scalar.go): lowering never inspects a
// scalar's text beyond recording it and its was_quoted flag, so that
// the same AST node serves both a type checker that wants a date and a
// linter that wants the raw text, without either forcing the other's
// reading of it.
package ast

import (
	"github.com/mdhender/jomini/internal/greentree"
	"github.com/mdhender/jomini/internal/syntaxkind"
)

// SourceFile is the AST root: an ordered sequence of top-level
// statements, in source order, with repeated keys preserved verbatim
// (object/multimap/array shapes are derived views — see views.go —
// never parse-time mutations).
type SourceFile struct {
	Red        *greentree.RedNode
	Statements []Statement
}

// Statement is the AstStatement sum type: AstKeyValue | AstValue (a
// keyless scalar or block standing alone as a list element).
type Statement interface {
	Node
	isStatement()
}

// Node is implemented by every AST type; it ties the node back to its
// CST origin for source-range queries and text reconstruction.
type Node interface {
	Origin() *greentree.RedNode
}

// KeyValue is `key operator value` — operator is one of the eight
// operator kinds, including OP_EQ for both an explicit '=' and an
// ImplicitAssignment (a tag immediately followed by a block; see
// IsImplicit).
type KeyValue struct {
	Red      *greentree.RedNode
	Key      *Scalar
	Operator syntaxkind.Kind
	Value    Value
	// IsImplicit is true when the grammar synthesized this KeyValue
	// from a bare tag+block with no operator token present in source
	// (spec.md's ImplicitAssignment). Operator is still reported as
	// OP_EQ in that case, since that's the meaning, but no '=' token
	// exists in the CST to point to.
	IsImplicit bool
}

func (kv *KeyValue) Origin() *greentree.RedNode { return kv.Red }
func (*KeyValue) isStatement()                  {}

// Value is the AstValue sum type: AstScalar | AstBlock |
// AstTaggedBlockValue | AstError.
type Value interface {
	Node
	isValue()
	isStatement() // every Value is also usable as a keyless Statement
}

// Scalar owns raw token text and a was_quoted flag; interpretation
// (bool/date_like/number/unknown) is computed on demand by
// InterpretScalar, never at lowering time.
type Scalar struct {
	Red       *greentree.RedNode
	Text      string
	WasQuoted bool
}

func (s *Scalar) Origin() *greentree.RedNode { return s.Red }
func (*Scalar) isValue()                     {}
func (*Scalar) isStatement()                 {}

// Interpret returns this scalar's derived ScalarValue, honoring the
// "quoted scalars default to unknown" rule (spec.md §3) unless
// allowQuoted is set.
func (s *Scalar) Interpret(allowQuoted bool) ScalarValue {
	return InterpretScalar(s.Text, s.WasQuoted, allowQuoted)
}

// Block owns an ordered sequence of statements between `{` and `}`.
type Block struct {
	Red        *greentree.RedNode
	Statements []Statement
}

func (b *Block) Origin() *greentree.RedNode { return b.Red }
func (*Block) isValue()                     {}
func (*Block) isStatement()                 {}

// TaggedBlockValue is `tag { ... }` recognized only as a KeyValue's
// right-hand side (spec.md §4.3): a scalar tag immediately followed by
// a block, no operator, no line break between them.
type TaggedBlockValue struct {
	Red   *greentree.RedNode
	Tag   *Scalar
	Block *Block
}

func (t *TaggedBlockValue) Origin() *greentree.RedNode { return t.Red }
func (*TaggedBlockValue) isValue()                     {}
func (*TaggedBlockValue) isStatement()                 {}

// Error wraps a parser ERROR recovery node: malformed input the
// grammar could not fit into any other shape. It still has a position
// and text, so downstream consumers can report on it without losing
// lossless coverage of the source.
type Error struct {
	Red *greentree.RedNode
}

func (e *Error) Origin() *greentree.RedNode { return e.Red }
func (*Error) isValue()                     {}
func (*Error) isStatement()                 {}
