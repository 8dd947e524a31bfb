// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package schema builds the normalized schema graph the type checker
// consumes from ingested `.cwt` documents (spec.md §3, "Schema graph").
// The graph is an arena of nodes keyed by stable names rather than a
// tree of pointers (spec.md §9): aliases, subtypes, and complex enums
// reference each other by name, and some of those references are
// cyclic, so pointer back-edges would be the wrong shape entirely.
package schema

import "github.com/mdhender/jomini/internal/ast"

// LinkType gates what a ScopeLink may be used for: as a scope
// reference, a value reference, or both.
type LinkType int

const (
	LinkScope LinkType = iota
	LinkValue
	LinkBoth
)

// TypeOptions holds a Type declaration's option set (spec.md §3).
type TypeOptions struct {
	NameField     string
	SkipRootKey   string
	PathStrict    bool
	Path          string
	PathFile      string
	PathExtension string
	TypePerFile   bool
	StartsWith    string
	TypeKeyFilter string
	Unique        bool
	Severity      string
}

// Type is one `type[T]` declaration: its name, path filter options, and
// body rules (consulted by the required-field/cardinality and
// primitive-field-constraint rule stages).
type Type struct {
	Name     string
	Options  TypeOptions
	Subtypes []string // names of Subtype entries scoped to this Type
	Body     *ast.Block

	// Src holds the raw bytes of the .cwt document that declared this
	// Type. Body's nodes (and its Subtypes' and nested SpecBlock
	// fields', since all are parsed from the same document) carry
	// absolute offsets into this buffer, not into whatever project data
	// is later being checked — the rule stack's `##`/`###` metadata scan
	// (internal/cwt.FieldMetadata) needs this exact buffer to recover a
	// trivia piece's literal text.
	Src []byte
}

// Subtype is one `subtype[S]` declaration nested under a Type: a name,
// matcher body (its own key/value contents decide membership — spec.md
// §4.9's "predicate over an object's key/value contents"), and an
// optional scope this subtype pushes when it matches.
type Subtype struct {
	TypeName  string
	Name      string
	PushScope string
	Body      *ast.Block
}

// Enum is a simple named, ordered member list.
type Enum struct {
	Name    string
	Members []string
}

// ComplexEnum resolves to a materialized member set by scanning project
// files filtered by Path/PathFile/PathExtension and walking NameTree
// (spec.md §4.9). An empty Path matches nothing, per spec.
type ComplexEnum struct {
	Name          string
	Path          string
	PathFile      string
	PathExtension string
	NameTree      *ast.Block
	StartFromRoot bool
}

// Alias is one family's set of members: `alias[family:member] = { ... }`.
// A use site `alias_name[family] = alias_match_left[family]` expands to
// the union of every member's body constraints.
type Alias struct {
	Family  string
	Members map[string]*ast.Block
}

// SingleAlias is inlined wholesale at its use sites.
type SingleAlias struct {
	Name string
	Body *ast.Block
}

// ValueSet is a named set: values declared directly in the schema,
// unioned at validation time with values discovered from `value_set[...]`
// writes encountered while walking project data (spec.md §3) — that
// union happens in the adapter layer (adapters.go), not here, since the
// discovered half depends on the data being validated, not the schema.
type ValueSet struct {
	Name     string
	Declared []string
}

// ScopeLink is one `links.cwt` entry (spec.md §4.9): valid from
// InputScopes, producing OutputScope, optionally gated on a
// `data_source` membership set when FromData is set.
type ScopeLink struct {
	Name        string
	InputScopes []string
	OutputScope string
	Prefix      string
	LinkType    LinkType
	FromData    bool
	DataSource  string
}

// ModifierCategory groups modifier names under a scope set.
type ModifierCategory struct {
	Name   string
	Scopes []string
}

// LocalisationCommand is a `localisation_commands.cwt` entry: a command
// name and the scopes it's valid in.
type LocalisationCommand struct {
	Name   string
	Scopes []string
}
