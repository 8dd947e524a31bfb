// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package rules defines the capability-set contract (spec.md §9) shared
// by every rule that walks analysis facts against a schema graph: the
// type-check engine's own rule stack (internal/typecheck), and any
// external lint registry built against the same contract. The contract
// lives in its own package, independent of internal/typecheck, so that
// a lint registry can depend on it without depending on the type-check
// engine, and so internal/typecheck can depend on it without a cycle.
package rules

import (
	"github.com/mdhender/jomini/internal/diag"
	"github.com/mdhender/jomini/internal/facts"
	"github.com/mdhender/jomini/internal/schema"
)

// Domain classifies what kind of claim a Rule's diagnostics make.
// Type-check rules are always DomainCorrectness; lint rules occupy the
// other three (spec.md §9).
type Domain string

const (
	DomainCorrectness Domain = "correctness"
	DomainSemantic    Domain = "semantic"
	DomainStyle       Domain = "style"
	DomainHeuristic   Domain = "heuristic"
)

// Confidence classifies how certain a Rule's findings are. Type-check
// rules are always ConfidenceSound (derived purely from the schema
// graph's declared constraints); lint rules may instead be
// ConfidencePolicy or ConfidenceHeuristic.
type Confidence string

const (
	ConfidenceSound     Confidence = "sound"
	ConfidencePolicy    Confidence = "policy"
	ConfidenceHeuristic Confidence = "heuristic"
)

// Metadata is a Rule's self-description: its Domain, Confidence, and
// the stable diagnostic Code prefix it emits under (spec.md §9 — type
// check rules use a `TYPECHECK_` prefix, lint rules `LINT_`).
type Metadata struct {
	Domain     Domain
	Confidence Confidence
	Code       string
}

// Scope is the read-only view of a scope-context stack a Rule needs:
// the current primary scope, the root scope, a bounded prev-chain
// history, and the from-chain (spec.md §4.10). Defined here rather than
// imported from internal/typecheck so that package can implement it
// without rules depending back on typecheck.
type Scope interface {
	// Current returns the scope at the top of the stack.
	Current() string
	// Root returns the object-occurrence root scope.
	Root() string
	// Prev returns the scope n steps back in the prev-chain
	// (Prev(0) is the scope immediately before Current), and whether
	// the chain is that deep.
	Prev(n int) (string, bool)
	// FromChain returns the from/from_from/... chain, nearest first.
	FromChain() []string
}

// Context bundles everything a Rule's Validate needs to evaluate one
// object-valued fact against the schema graph.
type Context struct {
	Object *facts.Object
	Index  *facts.Index
	Graph  *schema.Graph
	Scope  Scope
}

// Rule is one independently-testable unit of the rule stack: a
// self-description plus a Validate method producing diagnostics for one
// object. Rules never abort a walk (spec.md §4.10's failure semantics);
// a Rule that cannot proceed simply emits nothing for that object.
type Rule interface {
	Metadata() Metadata
	Validate(ctx Context) []diag.Diagnostic
}
