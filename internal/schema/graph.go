// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package schema

import "github.com/google/uuid"

// Graph is the normalized schema graph: an arena-by-name of every
// construct kind the `.cwt` DSL can declare. Lookups are always by
// stable name, never by pointer, so cyclic references (an alias whose
// body references another alias family, a complex enum that in turn
// scans files containing more type declarations) resolve naturally
// without the graph itself needing to be acyclic.
type Graph struct {
	// BuildID correlates one schema-load operation's artifacts; it has
	// no semantic meaning beyond "these all came from the same Build
	// call" (useful for cache invalidation and test fixtures).
	BuildID string

	Types                map[string]*Type
	Subtypes             map[string]*Subtype // keyed "typeName/subtypeName"
	Enums                map[string]*Enum
	ComplexEnums         map[string]*ComplexEnum
	Aliases              map[string]*Alias
	SingleAliases        map[string]*SingleAlias
	ValueSets            map[string]*ValueSet
	ScopeLinks           map[string]*ScopeLink
	ModifierCategories   map[string]*ModifierCategory
	LocalisationCommands map[string]*LocalisationCommand

	// Scopes maps a canonical scope name to its alias relations
	// (`this`, `root`, `from`, `from_from`, `prev`, `prev_prev`, ...),
	// as read from scopes.cwt (spec.md §4.9).
	Scopes map[string][]string
}

func newGraph() *Graph {
	return &Graph{
		Types:                make(map[string]*Type),
		Subtypes:             make(map[string]*Subtype),
		Enums:                make(map[string]*Enum),
		ComplexEnums:         make(map[string]*ComplexEnum),
		Aliases:              make(map[string]*Alias),
		SingleAliases:        make(map[string]*SingleAlias),
		ValueSets:            make(map[string]*ValueSet),
		ScopeLinks:           make(map[string]*ScopeLink),
		ModifierCategories:   make(map[string]*ModifierCategory),
		LocalisationCommands: make(map[string]*LocalisationCommand),
		Scopes:               make(map[string][]string),
	}
}

// Subtype looks up a Subtype by its owning Type's name and its own
// name.
func (g *Graph) Subtype(typeName, subtypeName string) (*Subtype, bool) {
	st, ok := g.Subtypes[typeName+"/"+subtypeName]
	return st, ok
}

func newBuildID() string { return uuid.NewString() }
