// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package diag defines the diagnostic record shared by every stage of
// the pipeline (lexer, parser, type-check engine, lint rules) and a
// Bag that collects them with positional deduplication.
package diag

import (
	"fmt"

	"github.com/mdhender/jomini/internal/text"
)

// Severity classifies how a diagnostic should be treated by a caller
// deciding whether to fail a build or just report.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// Category groups diagnostics by the pipeline stage that produced them,
// independent of Code's string prefix (Category is for programmatic
// filtering; Code's prefix is for humans grepping output).
type Category int

const (
	CategoryLexer Category = iota
	CategoryParser
	CategoryTypeCheck
	CategoryLint
)

func (c Category) String() string {
	switch c {
	case CategoryLexer:
		return "lexer"
	case CategoryParser:
		return "parser"
	case CategoryTypeCheck:
		return "typecheck"
	case CategoryLint:
		return "lint"
	default:
		return "unknown"
	}
}

// Code is a stable, grep-able diagnostic identifier. By convention each
// code is prefixed by its producing stage: LEXER_, PARSER_, TYPECHECK_,
// or LINT_.
type Code string

// Diagnostic is the single record type flowing out of every pipeline
// stage: a code, severity, category, source range, and message.
type Diagnostic struct {
	Code     Code
	Severity Severity
	Category Category
	Range    text.Range
	Message  string
	Notes    []string
}

// New builds a Diagnostic, formatting Message like fmt.Sprintf.
func New(code Code, severity Severity, category Category, r text.Range, format string, args ...any) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: severity,
		Category: category,
		Range:    r,
		Message:  fmt.Sprintf(format, args...),
	}
}

// WithNote returns a copy of d with note appended.
func (d Diagnostic) WithNote(note string) Diagnostic {
	d.Notes = append(append([]string(nil), d.Notes...), note)
	return d
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s [%s] %s", d.Severity, d.Range, d.Code, d.Message)
}

// dedupKey is the basis for Bag's positional deduplication: the same
// code reported twice at the same starting offset is almost always the
// same root cause re-surfacing during error recovery, not two distinct
// problems.
type dedupKey struct {
	code  Code
	start text.Size
}

// Bag collects diagnostics from one or more pipeline stages, silently
// dropping duplicates keyed on (code, range.start).
type Bag struct {
	seen  map[dedupKey]struct{}
	items []Diagnostic
}

// NewBag returns an empty Bag.
func NewBag() *Bag {
	return &Bag{seen: make(map[dedupKey]struct{})}
}

// Add appends d unless an equal-keyed diagnostic was already added.
// Reports whether d was kept.
func (b *Bag) Add(d Diagnostic) bool {
	key := dedupKey{code: d.Code, start: d.Range.Start}
	if _, dup := b.seen[key]; dup {
		return false
	}
	b.seen[key] = struct{}{}
	b.items = append(b.items, d)
	return true
}

// AddAll adds each diagnostic in ds, applying the same dedup rule.
func (b *Bag) AddAll(ds []Diagnostic) {
	for _, d := range ds {
		b.Add(d)
	}
}

// Items returns the diagnostics collected so far, in insertion order.
func (b *Bag) Items() []Diagnostic { return b.items }

// Len returns the number of distinct diagnostics collected.
func (b *Bag) Len() int { return len(b.items) }

// HasErrors reports whether any collected diagnostic is SeverityError.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
