// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package typecheck implements the deterministic rule-stack walk
// spec.md §4.10 describes: for each object-valued fact matched to a
// schema Type (and any active Subtype), run the eight ordered rule
// stages, threading a scope-context stack through nested descent so
// that a scope change never leaks across sibling branches.
package typecheck

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mdhender/jomini/internal/ast"
	"github.com/mdhender/jomini/internal/assets"
	"github.com/mdhender/jomini/internal/diag"
	"github.com/mdhender/jomini/internal/facts"
	"github.com/mdhender/jomini/internal/localisation"
	"github.com/mdhender/jomini/internal/schema"
)

const (
	CodeRequiredFieldMissing  diag.Code = "TYPECHECK_REQUIRED_FIELD_MISSING"
	CodeCardinalityViolation  diag.Code = "TYPECHECK_CARDINALITY_VIOLATION"
	CodeInvalidFieldType      diag.Code = "TYPECHECK_INVALID_FIELD_TYPE"
	CodeUnresolvedReference   diag.Code = "TYPECHECK_UNRESOLVED_REFERENCE"
	CodeLocalisationMissing   diag.Code = "TYPECHECK_LOCALISATION_MISSING"
	CodeModifierScopeMismatch diag.Code = "TYPECHECK_MODIFIER_SCOPE_MISMATCH"
	CodeRuleCustomError       diag.Code = "TYPECHECK_RULE_CUSTOM_ERROR"
	CodeFatalInternal         diag.Code = "FATAL_INTERNAL"
)

// UnresolvedReferencePolicy gates what happens when a dynamic reference
// (an alias key, a type-key, a value-set member) cannot be resolved
// against the schema graph (spec.md §4.10 stage 5).
type UnresolvedReferencePolicy int

const (
	PolicyDefer UnresolvedReferencePolicy = iota
	PolicyError
)

// maxWalkDepth bounds recursive descent into nested blocks, guarding
// against a pathological or cyclic schema body the way the parser's
// stall guard bounds token consumption (spec.md §7: internal invariant
// violations are reported as FATAL_* and the walk terminates at the
// current subtree, not the whole source).
const maxWalkDepth = 256

// Engine runs the rule stack against one carrier's facts, guided by a
// schema Graph and the two optional injected collaborators (spec.md
// §6: AssetRegistry, localisation-key provider).
type Engine struct {
	Graph        *schema.Graph
	Assets       assets.Registry
	Localisation localisation.KeyProvider
	Coverage     localisation.Coverage

	// ComplexEnumMembers holds the discovered member sets for the
	// Graph's ComplexEnums, keyed by the same name `enum[name]` field
	// references use (spec.md §4.9: a complex enum's membership is
	// found by scanning project files, not declared inline). Resolving
	// this is the caller's responsibility (schema.ResolveComplexEnum
	// against a project FileSystem) since Engine itself holds no
	// filesystem access; nil or a missing entry means stage 3 treats
	// every reference to that name as unresolved.
	ComplexEnumMembers map[string]map[string]bool

	UnresolvedReferencePolicy UnresolvedReferencePolicy
	Logger                    *slog.Logger
}

// New returns an Engine ready to check data against g. Assets and
// Localisation are left nil (their stages defer); set them before
// calling Check if the host has registries available.
func New(g *schema.Graph) *Engine {
	return &Engine{Graph: g, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// logFatal logs a FATAL_* diagnostic before the affected walk halts,
// per the teacher's "log then return" convention (spec.md §7).
func (e *Engine) logFatal(d diag.Diagnostic) {
	if e.Logger == nil {
		return
	}
	e.Logger.Error("type-check walk aborted", "code", d.Code, "message", d.Message)
}

// Check walks root (the object at a source file's top level) as an
// instance of typeName, starting the scope-context stack at rootScope
// (the in-game scope this object's occurrences begin in — e.g.
// "country" for `type[technology]` entries read from a country's tech
// list; empty defaults to "this", the generic Jomini root scope), and
// returns every diagnostic the rule stack produces. Which Type a given
// source corresponds to is resolved by the caller (spec.md §4.10 is
// guided by the schema graph, not by a path-globbing layer inside the
// engine itself — see DESIGN.md). Field-rule metadata (`##`/`###`
// comments) is read from the schema Type's own recorded source
// (schema.Type.Src), not from the project data being checked — the two
// live in different byte buffers.
func (e *Engine) Check(root *facts.Object, idx *facts.Index, typeName, rootScope string) []diag.Diagnostic {
	t, ok := e.Graph.Types[typeName]
	if !ok {
		d := diag.New(CodeFatalInternal, diag.SeverityError, diag.CategoryTypeCheck,
			root.Range, "unknown type %q", typeName)
		e.logFatal(d)
		return []diag.Diagnostic{d}
	}
	if rootScope == "" {
		rootScope = "this"
	}
	bag := diag.NewBag()
	e.walkType(root, t, NewScopeStack(rootScope), idx, bag, 0)
	return bag.Items()
}

func (e *Engine) walkType(obj *facts.Object, t *schema.Type, scope *ScopeStack, idx *facts.Index, bag *diag.Bag, depth int) {
	if depth > maxWalkDepth {
		d := diag.New(CodeFatalInternal, diag.SeverityError, diag.CategoryTypeCheck, obj.Range,
			"walk depth exceeded for type %q; aborting this subtree", t.Name)
		e.logFatal(d)
		bag.Add(d)
		return
	}

	fields := groupFieldRules(ExtractFieldRules(t.Body, t.Src))
	if sub, ok := e.Graph.MatchSubtype(t.Name, obj.Block); ok {
		for k, v := range groupFieldRules(ExtractFieldRules(sub.Body, t.Src)) {
			fields[k] = append(fields[k], v...)
		}
		if sub.PushScope != "" {
			scope = scope.Clone()
			scope.Push(sub.PushScope)
		}
	}

	e.walkFields(obj, fields, scope, idx, t.Src, bag, depth)
}

// groupFieldRules indexes field rules by name, preserving declaration
// order among alternatives for the same name (spec.md §4.10 stage 8
// needs to tell alternatives apart).
func groupFieldRules(rs []FieldRule) map[string][]FieldRule {
	out := make(map[string][]FieldRule, len(rs))
	for _, r := range rs {
		out[r.Name] = append(out[r.Name], r)
	}
	return out
}

// schemaSrc is the raw bytes of the .cwt document that declared fields
// (and, transitively, any nested SpecBlock field within it) — always
// the enclosing Type's schema.Type.Src, never the project data being
// checked.
func (e *Engine) walkFields(obj *facts.Object, fields map[string][]FieldRule, scope *ScopeStack, idx *facts.Index, schemaSrc []byte, bag *diag.Bag, depth int) {
	e.checkCardinality(obj, fields, bag)
	e.checkAliasKeysFields(obj, fields, scope, bag)
	e.checkModifierScope(obj, scope, bag)

	for name, alts := range fields {
		occs := obj.Fields[name]
		for occIdx, ref := range occs {
			alt, matched := bestMatch(alts, ref.Value)
			if !matched {
				continue
			}
			e.checkPrimitive(name, alt.Spec, ref, bag)
			e.checkReference(name, alt.Spec, ref, scope, bag)
			e.checkLocalisation(alt, ref, bag)

			if len(alts) > 1 && matchCount(alts, ref.Value) == 1 && alt.Metadata["error_if_only_match"] == "true" {
				bag.Add(diag.New(CodeRuleCustomError, diag.SeverityError, diag.CategoryTypeCheck, ref.Range,
					"field %q matches only the branch annotated error_if_only_match", name))
			}

			if alt.Spec.Kind == SpecBlock {
				childScope := applyScopeMeta(scope, alt.Metadata)
				if child, ok := childObject(obj, idx, name, occIdx); ok {
					e.walkFields(child, groupFieldRules(ExtractFieldRules(alt.Spec.Block, schemaSrc)), childScope, idx, schemaSrc, bag, depth+1)
				}
			}
		}
	}
}

// childObject looks up the facts.Object for obj's name/occIdx child,
// using the same path-segment convention facts.Build assigned it.
func childObject(obj *facts.Object, idx *facts.Index, name string, occIdx int) (*facts.Object, bool) {
	path := append(append(facts.Path(nil), obj.Path...), facts.PathSegment{Key: name, Occurrence: occIdx})
	return idx.Lookup(path)
}

// applyScopeMeta applies a field's `## push_scope = x` / `## replace_scope = y`
// metadata to a clone of scope, per spec.md §4.9's precedence rule:
// push_scope wins over replace_scope on the same declaration path.
func applyScopeMeta(scope *ScopeStack, meta map[string]string) *ScopeStack {
	if meta == nil {
		return scope
	}
	if v, ok := meta["push_scope"]; ok && v != "" {
		s := scope.Clone()
		s.Push(v)
		return s
	}
	if v, ok := meta["replace_scope"]; ok && v != "" {
		s := scope.Clone()
		if len(s.cur) > 0 {
			s.cur[len(s.cur)-1] = v
		} else {
			s.cur = []string{v}
		}
		return s
	}
	return scope
}

// --- Stage 1: required field / cardinality ---------------------------------

func (e *Engine) checkCardinality(obj *facts.Object, fields map[string][]FieldRule, bag *diag.Bag) {
	for name, alts := range fields {
		min, max, has := cardinalityOf(alts)
		if !has {
			continue
		}
		count := len(obj.Fields[name])
		if min >= 1 && count == 0 {
			bag.Add(diag.New(CodeRequiredFieldMissing, diag.SeverityError, diag.CategoryTypeCheck, obj.Range,
				"required field %q is missing", name))
			continue
		}
		if count < min || (max >= 0 && count > max) {
			bag.Add(diag.New(CodeCardinalityViolation, diag.SeverityError, diag.CategoryTypeCheck, obj.Range,
				"field %q occurs %d times, expected %s", name, count, cardinalityText(min, max)))
		}
	}
}

// cardinalityOf returns the first declared `## cardinality = min..max` or
// `## required = yes` among alts, if any. max == -1 means unbounded.
func cardinalityOf(alts []FieldRule) (min, max int, ok bool) {
	for _, a := range alts {
		if a.Metadata == nil {
			continue
		}
		if c, has := a.Metadata["cardinality"]; has {
			lo, hi, cok := parseCardinality(c)
			if cok {
				return lo, hi, true
			}
		}
		if a.Metadata["required"] == "yes" || a.Metadata["required"] == "true" {
			return 1, -1, true
		}
	}
	return 0, -1, false
}

func parseCardinality(s string) (min, max int, ok bool) {
	lo, hi, found := strings.Cut(s, "..")
	if !found {
		return 0, 0, false
	}
	min, okLo := atoiSafe(strings.TrimSpace(lo))
	if !okLo {
		return 0, 0, false
	}
	hiText := strings.TrimSpace(hi)
	if hiText == "inf" {
		return min, -1, true
	}
	max, okHi := atoiSafe(hiText)
	if !okHi {
		return 0, 0, false
	}
	return min, max, true
}

func atoiSafe(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	return n, true
}

func cardinalityText(min, max int) string {
	if max < 0 {
		return fmt.Sprintf("%d..inf", min)
	}
	return fmt.Sprintf("%d..%d", min, max)
}

// --- Stage 2/3: primitive field constraints + reference resolution --------

// bestMatch picks the first alternative whose spec accepts val, falling
// back to the first alternative if none match outright (so stage 2 can
// still report a concrete type mismatch rather than silently skipping
// an unmatched field).
func bestMatch(alts []FieldRule, val ast.Value) (FieldRule, bool) {
	for _, a := range alts {
		if matchesSpec(a.Spec, val) {
			return a, true
		}
	}
	if len(alts) > 0 {
		return alts[0], true
	}
	return FieldRule{}, false
}

func matchCount(alts []FieldRule, val ast.Value) int {
	n := 0
	for _, a := range alts {
		if matchesSpec(a.Spec, val) {
			n++
		}
	}
	return n
}

func matchesSpec(spec ValueSpec, val ast.Value) bool {
	switch spec.Kind {
	case SpecBlock:
		_, ok := ast.AsBlock(val)
		return ok
	case SpecBool:
		return ast.InterpretValue(val, false).Kind == ast.KindBool
	case SpecInt, SpecIntRange:
		sv := ast.InterpretValue(val, false)
		return sv.Kind == ast.KindNumber && !sv.IsDecimal
	case SpecFloat, SpecFloatRange, SpecPercentage:
		sv := ast.InterpretValue(val, false)
		return sv.Kind == ast.KindNumber
	case SpecDate:
		return ast.InterpretValue(val, false).Kind == ast.KindDateLike
	default:
		_, ok := ast.AsScalar(val)
		return ok
	}
}

func (e *Engine) checkPrimitive(name string, spec ValueSpec, ref facts.FieldRef, bag *diag.Bag) {
	switch spec.Kind {
	case SpecBool:
		if ast.InterpretValue(ref.Value, false).Kind != ast.KindBool {
			bag.Add(diag.New(CodeInvalidFieldType, diag.SeverityError, diag.CategoryTypeCheck, ref.Range,
				"field %q expects bool (yes/no)", name))
		}
	case SpecInt:
		sv := ast.InterpretValue(ref.Value, false)
		if sv.Kind != ast.KindNumber || sv.IsDecimal {
			bag.Add(diag.New(CodeInvalidFieldType, diag.SeverityError, diag.CategoryTypeCheck, ref.Range,
				"field %q expects an integer", name))
		}
	case SpecIntRange:
		sv := ast.InterpretValue(ref.Value, false)
		if sv.Kind != ast.KindNumber || sv.IsDecimal {
			bag.Add(diag.New(CodeInvalidFieldType, diag.SeverityError, diag.CategoryTypeCheck, ref.Range,
				"field %q expects an integer", name))
		} else if spec.Min != nil && spec.Max != nil && sv.Int != nil {
			if sv.Int.Cmp(spec.Min) < 0 || sv.Int.Cmp(spec.Max) > 0 {
				bag.Add(diag.New(CodeInvalidFieldType, diag.SeverityError, diag.CategoryTypeCheck, ref.Range,
					"field %q value %s out of range [%s..%s]", name, sv.Text, spec.Min, spec.Max))
			}
		}
	case SpecFloat, SpecPercentage:
		if ast.InterpretValue(ref.Value, false).Kind != ast.KindNumber {
			bag.Add(diag.New(CodeInvalidFieldType, diag.SeverityError, diag.CategoryTypeCheck, ref.Range,
				"field %q expects a number", name))
		}
	case SpecFloatRange:
		sv := ast.InterpretValue(ref.Value, false)
		if sv.Kind != ast.KindNumber {
			bag.Add(diag.New(CodeInvalidFieldType, diag.SeverityError, diag.CategoryTypeCheck, ref.Range,
				"field %q expects a number", name))
		}
	case SpecDate:
		if ast.InterpretValue(ref.Value, false).Kind != ast.KindDateLike {
			bag.Add(diag.New(CodeInvalidFieldType, diag.SeverityError, diag.CategoryTypeCheck, ref.Range,
				"field %q expects a date (Y.M.D)", name))
		}
	case SpecScalar:
		if _, ok := ast.AsScalar(ref.Value); !ok {
			bag.Add(diag.New(CodeInvalidFieldType, diag.SeverityError, diag.CategoryTypeCheck, ref.Range,
				"field %q expects a scalar", name))
		}
	}
}

func (e *Engine) checkReference(name string, spec ValueSpec, ref facts.FieldRef, scope *ScopeStack, bag *diag.Bag) {
	s, isScalar := ast.AsScalar(ref.Value)
	switch spec.Kind {
	case SpecEnum:
		if !isScalar {
			return
		}
		if en, ok := e.Graph.Enums[spec.Name]; ok {
			if !containsStr(en.Members, s.Text) {
				e.unresolved(name, spec.Name, ref, bag)
			}
			return
		}
		if members, ok := e.ComplexEnumMembers[spec.Name]; ok {
			if !members[s.Text] {
				e.unresolved(name, spec.Name, ref, bag)
			}
			return
		}
		e.unresolved(name, spec.Name, ref, bag)
	case SpecValue:
		if !isScalar {
			return
		}
		vs, ok := e.Graph.ValueSets[spec.Name]
		if !ok || !containsStr(vs.Declared, s.Text) {
			e.unresolved(name, spec.Name, ref, bag)
		}
	case SpecValueSet:
		// membership is resolved against the declared+discovered union
		// (schema.MergeValueSet); discovery is the caller's walk-time
		// responsibility (spec.md §3), so an Engine with no further
		// context here only checks the declared half.
		if !isScalar {
			return
		}
		vs, ok := e.Graph.ValueSets[spec.Name]
		if !ok || !containsStr(vs.Declared, s.Text) {
			e.unresolved(name, spec.Name, ref, bag)
		}
	case SpecScopeRef:
		if spec.Name != "" && scope.Current() != "" && !scopeCompatible(e.Graph, scope.Current(), spec.Name) {
			e.unresolved(name, spec.Name, ref, bag)
		}
	case SpecTypeKey:
		if !isScalar {
			return
		}
		t, ok := e.Graph.Types[spec.Name]
		if !ok {
			return
		}
		if !typeKeyMatches(s.Text, spec.Prefix, spec.Suffix, t) {
			e.unresolved(name, spec.Name, ref, bag)
		}
	case SpecFilepath:
		if !isScalar || e.Assets == nil {
			return
		}
		if !e.Assets.FileExists(spec.Path, spec.Ext, s.Text) {
			e.unresolved(name, s.Text, ref, bag)
		}
	case SpecIcon:
		if !isScalar || e.Assets == nil {
			return
		}
		if names, ok := e.Assets.SpriteNames(spec.Path); ok {
			if !containsStr(names, s.Text) {
				e.unresolved(name, s.Text, ref, bag)
			}
		} else if !e.Assets.FileExists(spec.Path, "", s.Text) {
			e.unresolved(name, s.Text, ref, bag)
		}
	}
}

// typeKeyMatches reports whether text starts with prefix and ends with
// suffix (an empty prefix or suffix always matches). It does not check
// that the remaining text is a declared or discovered key of t: t is
// not consulted, so any text with the right prefix and suffix passes.
func typeKeyMatches(text, prefix, suffix string, t *schema.Type) bool {
	if prefix != "" && !strings.HasPrefix(text, prefix) {
		return false
	}
	if suffix != "" && !strings.HasSuffix(text, suffix) {
		return false
	}
	return true
}

func (e *Engine) unresolved(field, ref string, r facts.FieldRef, bag *diag.Bag) {
	if e.UnresolvedReferencePolicy != PolicyError {
		return
	}
	bag.Add(diag.New(CodeUnresolvedReference, diag.SeverityError, diag.CategoryTypeCheck, r.Range,
		"field %q references unresolved %q", field, ref))
}

func scopeCompatible(g *schema.Graph, current, want string) bool {
	if current == want {
		return true
	}
	for _, alias := range g.Scopes[current] {
		if alias == want {
			return true
		}
	}
	return false
}

func containsStr(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// --- Stage 5: alias / single-alias execution (dynamic key form) -----------

func (e *Engine) checkAliasKeysFields(obj *facts.Object, fields map[string][]FieldRule, scope *ScopeStack, bag *diag.Bag) {
	for _, alts := range fields {
		for _, a := range alts {
			if a.Spec.Kind != SpecAliasKeysField {
				continue
			}
			family := a.Spec.Name
			table := e.Graph.AliasTable()[family]
			for key, refs := range obj.Fields {
				if _, declared := fields[key]; declared {
					continue // a schema-declared field name, not a dynamic alias key
				}
				if table != nil {
					if _, ok := table[key]; ok {
						continue
					}
				}
				if len(refs) == 0 {
					continue
				}
				e.unresolved(key, family, refs[0], bag)
			}
		}
	}
}

// --- Stage 6: localisation ---------------------------------------------

func (e *Engine) checkLocalisation(alt FieldRule, ref facts.FieldRef, bag *diag.Bag) {
	if e.Localisation == nil {
		return
	}
	switch alt.Spec.Kind {
	case SpecLocalisation, SpecLocalisationSynced, SpecLocalisationInline:
	default:
		return
	}
	if alt.Metadata["required"] != "yes" && alt.Metadata["required"] != "true" {
		return
	}
	s, ok := ast.AsScalar(ref.Value)
	if !ok {
		return
	}
	if !localisation.Satisfied(e.Localisation, s.Text, e.Coverage) {
		bag.Add(diag.New(CodeLocalisationMissing, diag.SeverityWarning, diag.CategoryTypeCheck, ref.Range,
			"localisation key %q is not present for the configured coverage policy", s.Text))
	}
}

// --- Stage 7: modifier scope ---------------------------------------------

func (e *Engine) checkModifierScope(obj *facts.Object, scope *ScopeStack, bag *diag.Bag) {
	for key, refs := range obj.Fields {
		cat, ok := e.Graph.ModifierCategories[key]
		if !ok || len(refs) == 0 {
			continue
		}
		if len(cat.Scopes) > 0 && !containsStr(cat.Scopes, scope.Current()) {
			bag.Add(diag.New(CodeModifierScopeMismatch, diag.SeverityError, diag.CategoryTypeCheck, refs[0].Range,
				"modifier %q is not valid in scope %q", key, scope.Current()))
		}
	}
}
