// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package cwt ingests the CWTools `.cwt` schema DSL by reusing the same
// lexer/parser/green-tree/AST pipeline as Jomini script itself, under a
// strict grammar profile (spec.md §4.8): only `=` is accepted as an
// operator, and legacy brace leniency is off. The DSL's own extensions
// — value-type primitives, reference forms, and `##`/`###` metadata
// comments — are layered on top of the shared AST rather than requiring
// a second grammar.
package cwt

import (
	"strings"

	"github.com/mdhender/jomini/internal/ast"
	"github.com/mdhender/jomini/internal/diag"
	"github.com/mdhender/jomini/internal/greentree"
	"github.com/mdhender/jomini/internal/lexers"
	"github.com/mdhender/jomini/internal/parser"
	"github.com/mdhender/jomini/internal/syntaxkind"
)

// Options returns the grammar profile `.cwt` files are parsed under:
// strict mode, since the schema DSL has no legacy-brace tolerance to
// carry forward.
func Options() parser.Options { return parser.Options{Strict: true} }

// RuleStatement is one lowered `.cwt` top-level or nested declaration:
// its key, operator, value, any attached `##` option metadata and `###`
// documentation lines, and a declaration_path disambiguator for
// repeated keys at the same level (spec.md §4.8).
type RuleStatement struct {
	Key      string
	Operator string
	Value    ast.Value
	// DeclarationPath disambiguates repeated keys at the same nesting
	// level, mirroring internal/facts's occurrence-index convention:
	// the first `type[technology]` at a level is index 0, the second
	// (if any) is index 1, etc.
	DeclarationPath int
	Metadata        map[string]string
	Docs            []string
	Red             *greentree.RedNode
}

// Document is the ingested form of one `.cwt` file: its top-level
// statements lowered to RuleStatement, plus a category index grouping
// them by key (e.g. every `type[...]` statement under "types").
type Document struct {
	Statements []*RuleStatement
	ByKey      map[string][]*RuleStatement
}

// Ingest parses src as a `.cwt` file and lowers it into a Document. It
// returns the document, any lexer/parser diagnostics gathered along the
// way, and does not itself resolve references — that is internal/schema's
// job, working from the Document this produces.
func Ingest(src []byte) (*Document, []diag.Diagnostic) {
	source := lexers.NewSource(src, lexers.DefaultOptions())
	p := parser.New(source, Options())
	parser.ParseSourceFile(p)
	green := greentree.Build(p.Events(), source)
	sf := ast.FromRed(greentree.NewRoot(green), src)

	bag := diag.NewBag()
	bag.AddAll(lexers.ToDiagnostics(source.Diagnostics()))
	bag.AddAll(p.Diagnostics())

	doc := &Document{ByKey: make(map[string][]*RuleStatement)}
	occurrence := make(map[string]int)
	for _, st := range sf.Statements {
		kv, ok := st.(*ast.KeyValue)
		if !ok || kv.Key == nil {
			continue
		}
		rs := &RuleStatement{
			Key:             kv.Key.Text,
			Operator:        operatorText(kv),
			Value:           kv.Value,
			DeclarationPath: occurrence[kv.Key.Text],
			Red:             kv.Origin(),
		}
		occurrence[kv.Key.Text]++
		rs.Metadata, rs.Docs = FieldMetadata(kv, src)
		doc.Statements = append(doc.Statements, rs)
		doc.ByKey[rs.Key] = append(doc.ByKey[rs.Key], rs)
	}
	return doc, bag.Items()
}

func operatorText(kv *ast.KeyValue) string {
	if kv.IsImplicit {
		return "="
	}
	for _, t := range kv.Origin().ChildTokens() {
		if t.Kind().IsOperator() {
			return t.Text()
		}
	}
	return "="
}

// FieldMetadata scans a KeyValue's key token's leading trivia for
// `## key = value` option comments (attached to the statement that
// follows them) and `### ...` documentation comments. Exported so that
// callers walking nested declarations directly (internal/typecheck's
// field-rule stage, reading e.g. a `## cardinality = 1..1` line placed
// just above `start_year = int` inside a type body) can read the same
// metadata Ingest attaches
// to top-level RuleStatements, without re-ingesting the block as its
// own document.
func FieldMetadata(kv *ast.KeyValue, src []byte) (map[string]string, []string) {
	if kv.Key == nil {
		return nil, nil
	}
	return leadingMetadata(kv.Key.Red, src)
}

// leadingMetadata scans a scalar node's first token's leading trivia
// for `## key = value` option comments (attached to the statement that
// follows them) and `### ...` documentation comments. Both comment
// forms share the COMMENT trivia kind; the `##`/`###` prefix
// distinguishes them (spec.md §4.8).
func leadingMetadata(scalarNode *greentree.RedNode, src []byte) (map[string]string, []string) {
	toks := scalarNode.ChildTokens()
	if len(toks) == 0 {
		return nil, nil
	}
	var meta map[string]string
	var docs []string
	for _, piece := range toks[0].LeadingTriviaPieces(src) {
		if piece.Kind != syntaxkind.COMMENT {
			continue
		}
		text := strings.TrimRight(piece.Text, "\r\n")
		switch {
		case strings.HasPrefix(text, "###"):
			docs = append(docs, strings.TrimSpace(strings.TrimPrefix(text, "###")))
		case strings.HasPrefix(text, "##"):
			body := strings.TrimSpace(strings.TrimPrefix(text, "##"))
			if meta == nil {
				meta = make(map[string]string)
			}
			key, val, ok := strings.Cut(body, "=")
			if !ok {
				// bare flag form, e.g. "## required" (spec.md line 200)
				meta[strings.TrimSpace(body)] = "yes"
				continue
			}
			meta[strings.TrimSpace(key)] = strings.TrimSpace(val)
		}
	}
	return meta, docs
}
