// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package typecheck

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/mdhender/jomini/internal/ast"
	"github.com/mdhender/jomini/internal/cwt"
)

// SpecKind classifies a schema field declaration's value-type primitive
// or reference form (spec.md §6's "Schema DSL syntax" list).
type SpecKind int

const (
	SpecUnknown SpecKind = iota
	SpecBool
	SpecInt
	SpecIntRange
	SpecFloat
	SpecFloatRange
	SpecScalar
	SpecPercentage
	SpecDate
	SpecLocalisation
	SpecLocalisationSynced
	SpecLocalisationInline
	SpecFilepath
	SpecIcon
	SpecVariableField
	SpecIntVariableField
	SpecValueField
	SpecIntValueField
	SpecAliasKeysField
	SpecEnum
	SpecTypeKey
	SpecScopeRef
	SpecEventTarget
	SpecScopeField
	SpecValue
	SpecValueSet
	SpecBlock
)

// ValueSpec is a classified field declaration: what kind of value it
// expects, and whatever parameters that kind carries (an enum/value
// name, an int/float range, a filepath/extension pair, a type-key's
// prefix/suffix).
type ValueSpec struct {
	Kind           SpecKind
	Name           string
	Prefix, Suffix string
	Path, Ext      string
	Min, Max       *big.Int
	MinF, MaxF     float64
	Block          *ast.Block // set when Kind == SpecBlock: the nested schema body
}

// FieldRule is one field declaration inside a Type's or Subtype's body:
// its name, classified value spec, and any `##`/`###` metadata/docs
// attached to it.
type FieldRule struct {
	Name     string
	Spec     ValueSpec
	Metadata map[string]string
	Docs     []string
}

// typeOptionKeys are the Type-body keys buildType consumes as options
// rather than field rules (internal/schema/build.go); ExtractFieldRules
// skips them so they are not mistaken for data fields.
var typeOptionKeys = map[string]bool{
	"name_field": true, "skip_root_key": true, "path_strict": true,
	"path": true, "path_file": true, "path_extension": true,
	"type_per_file": true, "starts_with": true, "type_key_filter": true,
	"unique": true, "severity": true,
}

// ExtractFieldRules reads body's direct KeyValue statements into
// FieldRules, skipping Type-option keys and nested `subtype[...]`
// declarations (those are resolved separately by internal/schema).
func ExtractFieldRules(body *ast.Block, src []byte) []FieldRule {
	if body == nil {
		return nil
	}
	var out []FieldRule
	for _, st := range body.Statements {
		kv, ok := st.(*ast.KeyValue)
		if !ok || kv.Key == nil {
			continue
		}
		name := kv.Key.Text
		if typeOptionKeys[name] || strings.HasPrefix(name, "subtype[") {
			continue
		}
		meta, docs := cwt.FieldMetadata(kv, src)
		out = append(out, FieldRule{
			Name:     name,
			Spec:     classifySpec(kv.Value),
			Metadata: meta,
			Docs:     docs,
		})
	}
	return out
}

// classifySpec classifies a field declaration's value. A nested block
// is its own schema body (SpecBlock); a scalar's text is matched
// against the DSL's primitive/reference vocabulary (spec.md §6).
func classifySpec(v ast.Value) ValueSpec {
	if blk, ok := ast.AsBlock(v); ok {
		return ValueSpec{Kind: SpecBlock, Block: blk}
	}
	s, ok := ast.AsScalar(v)
	if !ok {
		return ValueSpec{Kind: SpecUnknown}
	}
	return classifyText(s.Text)
}

func classifyText(text string) ValueSpec {
	switch text {
	case "bool":
		return ValueSpec{Kind: SpecBool}
	case "int":
		return ValueSpec{Kind: SpecInt}
	case "float":
		return ValueSpec{Kind: SpecFloat}
	case "scalar":
		return ValueSpec{Kind: SpecScalar}
	case "percentage_field":
		return ValueSpec{Kind: SpecPercentage}
	case "date_field":
		return ValueSpec{Kind: SpecDate}
	case "localisation":
		return ValueSpec{Kind: SpecLocalisation}
	case "localisation_synced":
		return ValueSpec{Kind: SpecLocalisationSynced}
	case "localisation_inline":
		return ValueSpec{Kind: SpecLocalisationInline}
	case "filepath":
		return ValueSpec{Kind: SpecFilepath}
	case "variable_field":
		return ValueSpec{Kind: SpecVariableField}
	case "int_variable_field":
		return ValueSpec{Kind: SpecIntVariableField}
	case "value_field":
		return ValueSpec{Kind: SpecValueField}
	case "int_value_field":
		return ValueSpec{Kind: SpecIntValueField}
	case "scope_field":
		return ValueSpec{Kind: SpecScopeField}
	}

	if head, arg, ok := bracket(text); ok {
		switch head {
		case "int":
			if lo, hi, ok := intRange(arg); ok {
				return ValueSpec{Kind: SpecIntRange, Min: lo, Max: hi}
			}
		case "float":
			if lo, hi, ok := floatRange(arg); ok {
				return ValueSpec{Kind: SpecFloatRange, MinF: lo, MaxF: hi}
			}
		case "filepath":
			path, ext, _ := strings.Cut(arg, ",")
			return ValueSpec{Kind: SpecFilepath, Path: strings.TrimSpace(path), Ext: strings.TrimSpace(ext)}
		case "icon":
			return ValueSpec{Kind: SpecIcon, Path: arg}
		case "alias_keys_field":
			return ValueSpec{Kind: SpecAliasKeysField, Name: arg}
		case "enum":
			return ValueSpec{Kind: SpecEnum, Name: arg}
		case "scope":
			return ValueSpec{Kind: SpecScopeRef, Name: arg}
		case "event_target":
			return ValueSpec{Kind: SpecEventTarget, Name: arg}
		case "value":
			return ValueSpec{Kind: SpecValue, Name: arg}
		case "value_set":
			return ValueSpec{Kind: SpecValueSet, Name: arg}
		}
	}

	if lt, rt, ok := angleBracket(text); ok {
		return ValueSpec{Kind: SpecTypeKey, Name: lt.name, Prefix: lt.prefix, Suffix: rt}
	}

	return ValueSpec{Kind: SpecUnknown}
}

// bracket splits "head[arg]" the same way internal/schema's build.go
// does; duplicated here (rather than exported from internal/schema)
// since it is a property of the DSL's lexical shape, not of the schema
// graph itself.
func bracket(s string) (head, arg string, ok bool) {
	i := strings.IndexByte(s, '[')
	if i < 0 || !strings.HasSuffix(s, "]") {
		return "", "", false
	}
	return s[:i], s[i+1 : len(s)-1], true
}

func intRange(arg string) (lo, hi *big.Int, ok bool) {
	loText, hiText, found := strings.Cut(arg, "..")
	if !found {
		return nil, nil, false
	}
	lo, okLo := new(big.Int).SetString(strings.TrimSpace(loText), 10)
	hi, okHi := new(big.Int).SetString(strings.TrimSpace(hiText), 10)
	if !okLo || !okHi {
		return nil, nil, false
	}
	return lo, hi, true
}

func floatRange(arg string) (lo, hi float64, ok bool) {
	loText, hiText, found := strings.Cut(arg, "..")
	if !found {
		return 0, 0, false
	}
	var err1, err2 error
	lo, err1 = strconv.ParseFloat(strings.TrimSpace(loText), 64)
	hi, err2 = strconv.ParseFloat(strings.TrimSpace(hiText), 64)
	return lo, hi, err1 == nil && err2 == nil
}

type typeKeyHead struct {
	prefix string
	name   string
}

// angleBracket recognizes the `<type_key>` reference form, including
// `pre_<type>_suf` prefix/suffix variants (spec.md §6).
func angleBracket(text string) (typeKeyHead, string, bool) {
	open := strings.IndexByte(text, '<')
	closeIdx := strings.IndexByte(text, '>')
	if open < 0 || closeIdx < 0 || closeIdx < open {
		return typeKeyHead{}, "", false
	}
	prefix := text[:open]
	name := text[open+1 : closeIdx]
	suffix := text[closeIdx+1:]
	if name == "" {
		return typeKeyHead{}, "", false
	}
	return typeKeyHead{prefix: prefix, name: name}, suffix, true
}
