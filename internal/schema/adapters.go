// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package schema

import (
	"path"
	"strings"

	"github.com/mdhender/jomini/internal/ast"
	"github.com/mdhender/jomini/internal/greentree"
	"github.com/mdhender/jomini/internal/lexers"
	"github.com/mdhender/jomini/internal/parser"
)

// FileSystem is the adapter layer's injected collaborator for scanning
// project data during complex-enum resolution (spec.md §9: "Global
// state. Parse carriers must not reference process-wide state. Options,
// asset registries, and schema graphs are injected explicitly by the
// caller."). A real caller supplies an os.DirFS-backed implementation;
// tests supply an in-memory map.
type FileSystem interface {
	// Walk returns every regular file path reachable under root,
	// forward-slash separated, relative to the project root.
	Walk(root string) ([]string, error)
	ReadFile(path string) ([]byte, error)
}

// AliasTable returns family -> member name -> body, the adapter
// artifact spec.md §4.9 calls "family → set of (member name, body
// constraints)".
func (g *Graph) AliasTable() map[string]map[string]*ast.Block {
	out := make(map[string]map[string]*ast.Block, len(g.Aliases))
	for family, a := range g.Aliases {
		out[family] = a.Members
	}
	return out
}

// SingleAliasTable returns name -> inlined body.
func (g *Graph) SingleAliasTable() map[string]*ast.Block {
	out := make(map[string]*ast.Block, len(g.SingleAliases))
	for name, sa := range g.SingleAliases {
		out[name] = sa.Body
	}
	return out
}

// SubtypeMatcher reports whether an object's statements satisfy a
// Subtype's matcher body. Declaration order first-match semantics
// (spec.md §4.9 — "exactly one active subtype per object occurrence")
// are the caller's responsibility: SubtypeMatches over Type.Subtypes in
// order and stop at the first true result.
//
// The matcher itself checks that every KeyValue the subtype body
// declares is also present, with an equal scalar value, on the
// candidate object — the common CWTools shape (e.g. `has_dlc =
// "Holy Fury"` as a subtype gate). Non-KeyValue subtype-body statements
// are ignored, since they carry no predicate of their own.
func SubtypeMatches(sub *Subtype, obj *ast.Block) bool {
	if sub.Body == nil {
		return true
	}
	fields := obj.AsObject()
	for _, st := range sub.Body.Statements {
		kv, ok := st.(*ast.KeyValue)
		if !ok {
			continue
		}
		if kv.Key.Text == "push_scope" {
			continue
		}
		wantScalar, wantOK := ast.AsScalar(kv.Value)
		if !wantOK {
			continue
		}
		gotVal, present := ast.ObjectLookup(fields, kv.Key.Text)
		if !present {
			return false
		}
		gotScalar, gotOK := ast.AsScalar(gotVal)
		if !gotOK || gotScalar.Text != wantScalar.Text {
			return false
		}
	}
	return true
}

// MatchSubtype returns the first Subtype of typeName whose matcher
// accepts obj, implementing the declaration-order first-match rule.
func (g *Graph) MatchSubtype(typeName string, obj *ast.Block) (*Subtype, bool) {
	t, ok := g.Types[typeName]
	if !ok {
		return nil, false
	}
	for _, subName := range t.Subtypes {
		sub := g.Subtypes[typeName+"/"+subName]
		if SubtypeMatches(sub, obj) {
			return sub, true
		}
	}
	return nil, false
}

// nameTreePlan walks a complex enum's configured name-tree — a chain of
// single-key blocks ending in an `enum_name = {}` (collect object keys)
// or `enum_name = <scalar>` (collect scalar-valued leaf keys) directive
// — and returns the descent keys plus the terminal collection mode.
func nameTreePlan(tree *ast.Block) (keys []string, objectMode bool, ok bool) {
	cur := tree
	for cur != nil {
		var next *ast.KeyValue
		for _, st := range cur.Statements {
			kv, isKV := st.(*ast.KeyValue)
			if !isKV {
				continue
			}
			if kv.Key.Text == "enum_name" {
				_, isBlock := ast.AsBlock(kv.Value)
				return keys, isBlock, true
			}
			next = kv
		}
		if next == nil {
			return nil, false, false
		}
		keys = append(keys, next.Key.Text)
		cur, _ = ast.AsBlock(next.Value)
	}
	return nil, false, false
}

// ResolveComplexEnum scans fs for files under ce.Path (case-insensitive
// substring match against the walked path), filtered by ce.PathFile and
// ce.PathExtension when set, parses each as Jomini script, descends
// through ce.NameTree's configured key chain, and collects member names
// per spec.md §4.9. An empty Path filter matches nothing, per spec.
func ResolveComplexEnum(ce *ComplexEnum, fs FileSystem) (map[string]bool, error) {
	members := make(map[string]bool)
	if ce.Path == "" || ce.NameTree == nil {
		return members, nil
	}
	keys, objectMode, ok := nameTreePlan(ce.NameTree)
	if !ok {
		return members, nil
	}

	files, err := fs.Walk(".")
	if err != nil {
		return nil, err
	}
	lowerPath := strings.ToLower(ce.Path)
	for _, f := range files {
		if !strings.Contains(strings.ToLower(f), lowerPath) {
			continue
		}
		if ce.PathFile != "" && !strings.EqualFold(path.Base(f), ce.PathFile) {
			continue
		}
		if ce.PathExtension != "" && !strings.EqualFold(path.Ext(f), ce.PathExtension) {
			continue
		}
		data, err := fs.ReadFile(f)
		if err != nil {
			return nil, err
		}
		collectComplexEnumMembers(data, keys, objectMode, members)
	}
	return members, nil
}

func collectComplexEnumMembers(src []byte, keys []string, objectMode bool, out map[string]bool) {
	source := lexers.NewSource(src, lexers.DefaultOptions())
	p := parser.New(source, parser.DefaultOptions())
	parser.ParseSourceFile(p)
	green := greentree.Build(p.Events(), source)
	sf := ast.FromRed(greentree.NewRoot(green), src)

	root := &ast.Block{Statements: sf.Statements}
	descend(root, keys, objectMode, out)
}

func descend(blk *ast.Block, keys []string, objectMode bool, out map[string]bool) {
	if len(keys) == 0 {
		if objectMode {
			for _, e := range blk.AsObject() {
				out[e.Key] = true
			}
		} else {
			for key, vals := range blk.AsMultimap() {
				for _, v := range vals {
					if _, ok := ast.AsScalar(v); ok {
						out[key] = true
					}
				}
			}
		}
		return
	}
	for _, v := range blk.AsMultimap()[keys[0]] {
		if next, ok := ast.AsBlock(v); ok {
			descend(next, keys[1:], objectMode, out)
		}
	}
}

// MergeValueSet unions a ValueSet's schema-declared members with values
// discovered while walking project data (`value_set[name] = x` writes),
// per spec.md §3. discovered is supplied by the type-check walk, not
// computed here, since discovery depends on the data being validated.
func MergeValueSet(vs *ValueSet, discovered []string) map[string]bool {
	out := make(map[string]bool, len(vs.Declared)+len(discovered))
	for _, v := range vs.Declared {
		out[v] = true
	}
	for _, v := range discovered {
		out[v] = true
	}
	return out
}
