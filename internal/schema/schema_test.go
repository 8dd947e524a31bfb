// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package schema

import (
	"testing"

	"github.com/mdhender/jomini/internal/ast"
	"github.com/mdhender/jomini/internal/greentree"
	"github.com/mdhender/jomini/internal/lexers"
	"github.com/mdhender/jomini/internal/parser"
)

func TestBuild_TypesAndSubtypes(t *testing.T) {
	t.Parallel()
	files := map[string][]byte{
		"00_types.cwt": []byte(`types = {
	type[technology] = {
		path = "game/common/technologies"
		subtype[naval] = {
			push_scope = country
			is_naval = yes
		}
	}
}
`),
	}
	g, diags := Build(files)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	ty, ok := g.Types["technology"]
	if !ok {
		t.Fatalf("type \"technology\" not found")
	}
	if ty.Options.Path != "game/common/technologies" {
		t.Fatalf("path: got %q", ty.Options.Path)
	}
	sub, ok := g.Subtype("technology", "naval")
	if !ok {
		t.Fatalf("subtype \"naval\" not found")
	}
	if sub.PushScope != "country" {
		t.Fatalf("push_scope: got %q, want country", sub.PushScope)
	}
}

func TestBuild_EnumsAliasesValueSets(t *testing.T) {
	t.Parallel()
	files := map[string][]byte{
		"00_enums.cwt": []byte(`enums = {
	enum[trade_goods] = { grain wine cloth }
}
`),
		"00_aliases.cwt": []byte(`alias[trigger:has_dlc] = {
	scalar = all
}
single_alias[any_trigger_clause] = {
	any_trigger_shared = yes
}
`),
		"values.cwt": []byte(`value[color_type] = { red green blue }
`),
	}
	g, diags := Build(files)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	e, ok := g.Enums["trade_goods"]
	if !ok || len(e.Members) != 3 {
		t.Fatalf("enum: got %+v", e)
	}
	a, ok := g.Aliases["trigger"]
	if !ok || a.Members["has_dlc"] == nil {
		t.Fatalf("alias family \"trigger\" member \"has_dlc\" not found")
	}
	if _, ok := g.SingleAliases["any_trigger_clause"]; !ok {
		t.Fatalf("single alias not found")
	}
	vs, ok := g.ValueSets["color_type"]
	if !ok || len(vs.Declared) != 3 {
		t.Fatalf("value set: got %+v", vs)
	}
}

func TestSubtypeMatches(t *testing.T) {
	t.Parallel()
	sub := &Subtype{Body: parseBlock(t, "has_dlc = yes\n")}
	match := parseBlock(t, "has_dlc = yes\nname = x\n")
	noMatch := parseBlock(t, "has_dlc = no\n")
	if !SubtypeMatches(sub, match) {
		t.Errorf("expected match")
	}
	if SubtypeMatches(sub, noMatch) {
		t.Errorf("expected no match")
	}
}

type memFS struct {
	files map[string][]byte
}

func (m memFS) Walk(string) ([]string, error) {
	var out []string
	for k := range m.files {
		out = append(out, k)
	}
	return out, nil
}
func (m memFS) ReadFile(p string) ([]byte, error) { return m.files[p], nil }

func TestResolveComplexEnum(t *testing.T) {
	t.Parallel()
	ce := &ComplexEnum{
		Name:     "event_chain_counter",
		Path:     "game/common/event_chains",
		NameTree: parseBlock(t, "counter = { enum_name = {} }\n"),
	}
	fs := memFS{files: map[string][]byte{
		"game/common/event_chains/00_chains.txt": []byte("counter = { my_counter = { x = 1 } other_counter = { y = 2 } }\n"),
		"game/common/unrelated/foo.txt":          []byte("counter = { should_not_appear = {} }\n"),
	}}
	members, err := ResolveComplexEnum(ce, fs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !members["my_counter"] || !members["other_counter"] {
		t.Fatalf("members: got %+v, want my_counter and other_counter", members)
	}
	if members["should_not_appear"] {
		t.Fatalf("members: got an entry from a file outside the path filter")
	}
}

func TestResolveComplexEnum_EmptyPathMatchesNothing(t *testing.T) {
	t.Parallel()
	ce := &ComplexEnum{Name: "x", NameTree: parseBlock(t, "enum_name = {}\n")}
	members, err := ResolveComplexEnum(ce, memFS{files: map[string][]byte{"a.txt": []byte("x=1\n")}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(members) != 0 {
		t.Fatalf("expected no members for an empty path filter, got %+v", members)
	}
}

func parseBlock(t *testing.T, src string) *ast.Block {
	t.Helper()
	source := lexers.NewSource([]byte(src), lexers.DefaultOptions())
	p := parser.New(source, parser.DefaultOptions())
	parser.ParseSourceFile(p)
	green := greentree.Build(p.Events(), source)
	sf := ast.FromRed(greentree.NewRoot(green), []byte(src))
	return &ast.Block{Statements: sf.Statements}
}
