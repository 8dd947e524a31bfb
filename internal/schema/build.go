// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package schema

import (
	"strings"

	"github.com/mdhender/jomini/internal/ast"
	"github.com/mdhender/jomini/internal/cwt"
	"github.com/mdhender/jomini/internal/diag"
)

// Build ingests every named `.cwt` source in files and assembles the
// schema graph. File names drive which special-file provider handles a
// document (spec.md §4.9); anything not matching a special name is
// treated as a generic schema file that may declare `types`, `enums`,
// `complex_enum[...]`, `alias[...]`, or `single_alias[...]` at top
// level. This is a one-shot, sequential build (spec.md §5): the
// resulting Graph is immutable and freely shareable across parse
// carriers afterward.
func Build(files map[string][]byte) (*Graph, []diag.Diagnostic) {
	g := newGraph()
	bag := diag.NewBag()

	for name, src := range files {
		doc, diags := cwt.Ingest(src)
		bag.AddAll(diags)

		switch name {
		case "scopes.cwt":
			buildScopes(g, doc)
		case "links.cwt":
			buildLinks(g, doc)
		case "modifiers.cwt", "modifier_categories.cwt":
			buildModifierCategories(g, doc)
		case "localisation_commands.cwt":
			buildLocalisationCommands(g, doc)
		case "values.cwt":
			buildValueSets(g, doc)
		default:
			buildGeneric(g, doc, src)
		}
	}

	g.BuildID = newBuildID()
	return g, bag.Items()
}

// bracket splits a declaration key like "type[technology]" into its
// head ("type") and bracketed argument ("technology"). Brackets are not
// lexer boundary characters, so these keys lex as one scalar each; this
// is the DSL-level parse of that scalar's shape.
func bracket(s string) (head, arg string, ok bool) {
	i := strings.IndexByte(s, '[')
	if i < 0 || !strings.HasSuffix(s, "]") {
		return "", "", false
	}
	return s[:i], s[i+1 : len(s)-1], true
}

func scalarText(v ast.Value) string {
	s, ok := ast.AsScalar(v)
	if !ok {
		return ""
	}
	return s.Text
}

func scalarBool(v ast.Value) bool { return scalarText(v) == "yes" }

func arrayMembers(blk *ast.Block) []string {
	var out []string
	for _, v := range blk.AsArray() {
		if s, ok := ast.AsScalar(v); ok {
			out = append(out, s.Text)
		}
	}
	return out
}

// buildGeneric handles a schema file declaring types/enums/complex
// enums/aliases/single aliases at top level.
func buildGeneric(g *Graph, doc *cwt.Document, src []byte) {
	for _, rs := range doc.Statements {
		switch {
		case rs.Key == "types":
			if blk, ok := ast.AsBlock(rs.Value); ok {
				buildTypes(g, blk, src)
			}
		case rs.Key == "enums":
			if blk, ok := ast.AsBlock(rs.Value); ok {
				buildEnums(g, blk)
			}
		case strings.HasPrefix(rs.Key, "complex_enum["):
			if _, arg, ok := bracket(rs.Key); ok {
				buildComplexEnum(g, arg, rs.Value)
			}
		case strings.HasPrefix(rs.Key, "alias["):
			if _, arg, ok := bracket(rs.Key); ok {
				buildAliasMember(g, arg, rs.Value)
			}
		case strings.HasPrefix(rs.Key, "single_alias["):
			if _, arg, ok := bracket(rs.Key); ok {
				blk, _ := ast.AsBlock(rs.Value)
				g.SingleAliases[arg] = &SingleAlias{Name: arg, Body: blk}
			}
		}
	}
}

func buildTypes(g *Graph, blk *ast.Block, src []byte) {
	for _, st := range blk.Statements {
		kv, ok := st.(*ast.KeyValue)
		if !ok {
			continue
		}
		head, arg, ok := bracket(kv.Key.Text)
		if !ok || head != "type" {
			continue
		}
		buildType(g, arg, kv.Value, src)
	}
}

func buildType(g *Graph, name string, v ast.Value, src []byte) {
	body, _ := ast.AsBlock(v)
	t := &Type{Name: name, Body: body, Src: src}
	if body != nil {
		for _, st := range body.Statements {
			kv, ok := st.(*ast.KeyValue)
			if !ok {
				continue
			}
			switch kv.Key.Text {
			case "name_field":
				t.Options.NameField = scalarText(kv.Value)
			case "skip_root_key":
				t.Options.SkipRootKey = scalarText(kv.Value)
			case "path_strict":
				t.Options.PathStrict = scalarBool(kv.Value)
			case "path":
				t.Options.Path = scalarText(kv.Value)
			case "path_file":
				t.Options.PathFile = scalarText(kv.Value)
			case "path_extension":
				t.Options.PathExtension = scalarText(kv.Value)
			case "type_per_file":
				t.Options.TypePerFile = scalarBool(kv.Value)
			case "starts_with":
				t.Options.StartsWith = scalarText(kv.Value)
			case "type_key_filter":
				t.Options.TypeKeyFilter = scalarText(kv.Value)
			case "unique":
				t.Options.Unique = scalarBool(kv.Value)
			case "severity":
				t.Options.Severity = scalarText(kv.Value)
			default:
				if head, sub, ok := bracket(kv.Key.Text); ok && head == "subtype" {
					buildSubtype(g, t, sub, kv.Value)
				}
			}
		}
	}
	g.Types[name] = t
}

func buildSubtype(g *Graph, t *Type, name string, v ast.Value) {
	body, _ := ast.AsBlock(v)
	sub := &Subtype{TypeName: t.Name, Name: name, Body: body}
	if body != nil {
		for _, st := range body.Statements {
			if kv, ok := st.(*ast.KeyValue); ok && kv.Key.Text == "push_scope" {
				sub.PushScope = scalarText(kv.Value)
			}
		}
	}
	g.Subtypes[t.Name+"/"+name] = sub
	t.Subtypes = append(t.Subtypes, name)
}

func buildEnums(g *Graph, blk *ast.Block) {
	for _, st := range blk.Statements {
		kv, ok := st.(*ast.KeyValue)
		if !ok {
			continue
		}
		head, arg, ok := bracket(kv.Key.Text)
		if !ok || head != "enum" {
			continue
		}
		body, ok := ast.AsBlock(kv.Value)
		if !ok {
			continue
		}
		g.Enums[arg] = &Enum{Name: arg, Members: arrayMembers(body)}
	}
}

func buildComplexEnum(g *Graph, name string, v ast.Value) {
	ce := &ComplexEnum{Name: name}
	if body, ok := ast.AsBlock(v); ok {
		for _, st := range body.Statements {
			kv, ok := st.(*ast.KeyValue)
			if !ok {
				continue
			}
			switch kv.Key.Text {
			case "path":
				ce.Path = scalarText(kv.Value)
			case "path_file":
				ce.PathFile = scalarText(kv.Value)
			case "path_extension":
				ce.PathExtension = scalarText(kv.Value)
			case "start_from_root":
				ce.StartFromRoot = scalarBool(kv.Value)
			case "name":
				ce.NameTree, _ = ast.AsBlock(kv.Value)
			}
		}
	}
	g.ComplexEnums[name] = ce
}

func buildAliasMember(g *Graph, arg string, v ast.Value) {
	family, member, ok := strings.Cut(arg, ":")
	if !ok {
		return
	}
	a, ok := g.Aliases[family]
	if !ok {
		a = &Alias{Family: family, Members: make(map[string]*ast.Block)}
		g.Aliases[family] = a
	}
	body, _ := ast.AsBlock(v)
	a.Members[member] = body
}

func buildScopes(g *Graph, doc *cwt.Document) {
	for _, rs := range doc.Statements {
		var aliases []string
		if body, ok := ast.AsBlock(rs.Value); ok {
			aliases = arrayMembers(body)
		}
		g.Scopes[rs.Key] = aliases
	}
}

func buildLinks(g *Graph, doc *cwt.Document) {
	for _, rs := range doc.Statements {
		link := &ScopeLink{Name: rs.Key}
		body, ok := ast.AsBlock(rs.Value)
		if ok {
			for _, st := range body.Statements {
				kv, ok := st.(*ast.KeyValue)
				if !ok {
					continue
				}
				switch kv.Key.Text {
				case "input_scopes":
					if b2, ok := ast.AsBlock(kv.Value); ok {
						link.InputScopes = arrayMembers(b2)
					} else if s, ok := ast.AsScalar(kv.Value); ok {
						link.InputScopes = []string{s.Text}
					}
				case "output_scope":
					link.OutputScope = scalarText(kv.Value)
				case "prefix":
					link.Prefix = scalarText(kv.Value)
				case "type":
					switch scalarText(kv.Value) {
					case "value":
						link.LinkType = LinkValue
					case "both":
						link.LinkType = LinkBoth
					default:
						link.LinkType = LinkScope
					}
				case "from_data":
					link.FromData = scalarBool(kv.Value)
				case "data_source":
					link.DataSource = scalarText(kv.Value)
				}
			}
		}
		g.ScopeLinks[rs.Key] = link
	}
}

func buildModifierCategories(g *Graph, doc *cwt.Document) {
	for _, rs := range doc.Statements {
		var scopes []string
		if body, ok := ast.AsBlock(rs.Value); ok {
			scopes = arrayMembers(body)
		}
		if existing, ok := g.ModifierCategories[rs.Key]; ok {
			existing.Scopes = append(existing.Scopes, scopes...)
			continue
		}
		g.ModifierCategories[rs.Key] = &ModifierCategory{Name: rs.Key, Scopes: scopes}
	}
}

func buildLocalisationCommands(g *Graph, doc *cwt.Document) {
	for _, rs := range doc.Statements {
		var scopes []string
		if body, ok := ast.AsBlock(rs.Value); ok {
			scopes = arrayMembers(body)
		}
		g.LocalisationCommands[rs.Key] = &LocalisationCommand{Name: rs.Key, Scopes: scopes}
	}
}

func buildValueSets(g *Graph, doc *cwt.Document) {
	for _, rs := range doc.Statements {
		head, arg, ok := bracket(rs.Key)
		if !ok || head != "value" {
			continue
		}
		var declared []string
		if body, ok := ast.AsBlock(rs.Value); ok {
			declared = arrayMembers(body)
		}
		g.ValueSets[arg] = &ValueSet{Name: arg, Declared: declared}
	}
}
