// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package facts builds the analysis-facts index spec.md §3 describes:
// for every object-valued position in an AST (every Block, including
// the implicit top-level one), a stable declaration path, its source
// range, and a child-field index by key. It is a single forward pass
// over an already-lowered ast.SourceFile — no re-parsing, no re-reading
// of scalar text.
package facts

import (
	"github.com/mdhender/jomini/internal/ast"
	"github.com/mdhender/jomini/internal/text"
)

// PathSegment is one step of a declaration path: a key and which
// occurrence of that key (at its level) this step refers to, so that
// two same-named sibling blocks (e.g. two `province = { ... }` entries
// under the same parent) resolve to distinct, stable paths.
type PathSegment struct {
	Key        string
	Occurrence int
}

// Path is a declaration path from the file root down to one
// object-valued position.
type Path []PathSegment

// FieldRef is one occurrence of a key inside an object: its value, its
// source range, and which occurrence (0-based) of that key this is —
// the same occurrence counter AsMultimap would assign, kept here so a
// rule can cross-reference "field occurrence 2" without re-walking the
// block itself.
type FieldRef struct {
	Occurrence int
	Value      ast.Value
	Range      text.Range
}

// Object is the fact record for one object-valued Block: its stable
// path, its source range, and an index from key to every occurrence of
// that key directly inside it (order preserved).
type Object struct {
	Path   Path
	Range  text.Range
	Block  *ast.Block
	Fields map[string][]FieldRef
}

// Index is the full facts index for one source file: every
// object-valued position found, plus a lookup from path to its Object.
type Index struct {
	Objects []*Object
	byPath  map[string]*Object
}

// Lookup finds the Object at path, if any was recorded.
func (idx *Index) Lookup(p Path) (*Object, bool) {
	o, ok := idx.byPath[p.key()]
	return o, ok
}

func (p Path) key() string {
	s := ""
	for _, seg := range p {
		s += seg.Key + "\x00" + itoa(seg.Occurrence) + "\x01"
	}
	return s
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Build walks sf once and produces its facts Index. The root file
// itself is indexed as the object at the empty Path, so a rule walking
// top-level KeyValues has the same Lookup/Fields access as it would for
// a nested block.
func Build(sf *ast.SourceFile) *Index {
	idx := &Index{byPath: make(map[string]*Object)}
	b := &builder{idx: idx}
	root := &ast.Block{Red: sf.Red, Statements: sf.Statements}
	b.visitObject(nil, root)
	return idx
}

type builder struct {
	idx *Index
}

func (b *builder) visitObject(path Path, blk *ast.Block) *Object {
	obj := &Object{
		Path:   append(Path(nil), path...),
		Range:  blockRange(blk),
		Block:  blk,
		Fields: make(map[string][]FieldRef),
	}
	b.idx.Objects = append(b.idx.Objects, obj)
	b.idx.byPath[obj.Path.key()] = obj

	for _, st := range blk.Statements {
		kv, ok := st.(*ast.KeyValue)
		if !ok || kv.Key == nil {
			continue
		}
		key := kv.Key.Text
		occ := len(obj.Fields[key])
		obj.Fields[key] = append(obj.Fields[key], FieldRef{
			Occurrence: occ,
			Value:      kv.Value,
			Range:      kv.Origin().Range(),
		})

		childPath := append(append(Path(nil), path...), PathSegment{Key: key, Occurrence: occ})
		switch v := kv.Value.(type) {
		case *ast.Block:
			b.visitObject(childPath, v)
		case *ast.TaggedBlockValue:
			if v.Block != nil {
				b.visitObject(childPath, v.Block)
			}
		}
	}
	return obj
}

func blockRange(blk *ast.Block) text.Range {
	if blk.Red != nil {
		return blk.Red.Range()
	}
	return text.Range{}
}
