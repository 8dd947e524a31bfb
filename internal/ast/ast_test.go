// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package ast

import (
	"math/big"
	"testing"

	"github.com/mdhender/jomini/internal/greentree"
	"github.com/mdhender/jomini/internal/lexers"
	"github.com/mdhender/jomini/internal/parser"
)

// parse is the package's own tiny harness, mirroring how a real caller
// (internal/carrier) wires lexers -> parser -> greentree -> ast.
func parse(t *testing.T, src string) *SourceFile {
	t.Helper()
	source := lexers.NewSource([]byte(src), lexers.DefaultOptions())
	p := parser.New(source, parser.DefaultOptions())
	parser.ParseSourceFile(p)
	green := greentree.Build(p.Events(), source)
	red := greentree.NewRoot(green)
	return FromRed(red, []byte(src))
}

func TestFromRed_KeyValue(t *testing.T) {
	t.Parallel()
	sf := parse(t, "capital = 1234\n")
	if len(sf.Statements) != 1 {
		t.Fatalf("statements: got %d, want 1", len(sf.Statements))
	}
	kv, ok := sf.Statements[0].(*KeyValue)
	if !ok {
		t.Fatalf("statement 0: got %T, want *KeyValue", sf.Statements[0])
	}
	if kv.Key == nil || kv.Key.Text != "capital" {
		t.Fatalf("key: got %+v, want capital", kv.Key)
	}
	if kv.IsImplicit {
		t.Fatalf("IsImplicit: got true, want false")
	}
	val, ok := AsScalar(kv.Value)
	if !ok || val.Text != "1234" {
		t.Fatalf("value: got %+v, want scalar 1234", kv.Value)
	}
}

func TestFromRed_ImplicitAssignment(t *testing.T) {
	t.Parallel()
	sf := parse(t, "color { 1 2 3 }\n")
	if len(sf.Statements) != 1 {
		t.Fatalf("statements: got %d, want 1", len(sf.Statements))
	}
	kv, ok := sf.Statements[0].(*KeyValue)
	if !ok {
		t.Fatalf("statement 0: got %T, want *KeyValue", sf.Statements[0])
	}
	if !kv.IsImplicit {
		t.Fatalf("IsImplicit: got false, want true")
	}
	blk, ok := AsBlock(kv.Value)
	if !ok || len(blk.Statements) != 3 {
		t.Fatalf("value: got %+v, want a 3-statement block", kv.Value)
	}
}

func TestFromRed_TaggedBlockValue(t *testing.T) {
	t.Parallel()
	sf := parse(t, "color = rgb { 100 200 150 }\n")
	kv := sf.Statements[0].(*KeyValue)
	tb, ok := kv.Value.(*TaggedBlockValue)
	if !ok {
		t.Fatalf("value: got %T, want *TaggedBlockValue", kv.Value)
	}
	if tb.Tag == nil || tb.Tag.Text != "rgb" {
		t.Fatalf("tag: got %+v, want rgb", tb.Tag)
	}
	if tb.Block == nil || len(tb.Block.Statements) != 3 {
		t.Fatalf("block: got %+v, want 3 statements", tb.Block)
	}
}

func TestFromRed_NewlineBeforeBraceIsNotTaggedBlock(t *testing.T) {
	t.Parallel()
	sf := parse(t, "color = rgb\n{ 100 200 150 }\n")
	if len(sf.Statements) != 2 {
		t.Fatalf("statements: got %d, want 2 (bare KeyValue then a separate block)", len(sf.Statements))
	}
	kv := sf.Statements[0].(*KeyValue)
	if _, ok := AsScalar(kv.Value); !ok {
		t.Fatalf("first statement's value: got %T, want *Scalar", kv.Value)
	}
	if _, ok := sf.Statements[1].(*Block); !ok {
		t.Fatalf("second statement: got %T, want *Block", sf.Statements[1])
	}
}

func TestFromRed_RepeatedKeys_ObjectVsMultimap(t *testing.T) {
	t.Parallel()
	sf := parse(t, "things = { a = 1 a = 2 a = 3 }\n")
	kv := sf.Statements[0].(*KeyValue)
	blk, ok := AsBlock(kv.Value)
	if !ok {
		t.Fatalf("value: got %T, want *Block", kv.Value)
	}

	obj := blk.AsObject()
	aVal, found := ObjectLookup(obj, "a")
	if !found {
		t.Fatalf("AsObject(): key %q not found", "a")
	}
	s, ok := AsScalar(aVal)
	if !ok || s.Text != "3" {
		t.Fatalf("AsObject()[a]: got %+v, want last-value-wins scalar 3", aVal)
	}

	mm := blk.AsMultimap()
	if len(mm["a"]) != 3 {
		t.Fatalf("AsMultimap()[a]: got %d entries, want 3", len(mm["a"]))
	}
	for i, want := range []string{"1", "2", "3"} {
		s, ok := AsScalar(mm["a"][i])
		if !ok || s.Text != want {
			t.Fatalf("AsMultimap()[a][%d]: got %+v, want %s", i, mm["a"][i], want)
		}
	}
}

func TestFromRed_AsObject_PreservesKeyOrder(t *testing.T) {
	t.Parallel()
	sf := parse(t, "things = { charlie = 1 alpha = 2 bravo = 3 alpha = 4 }\n")
	kv := sf.Statements[0].(*KeyValue)
	blk, ok := AsBlock(kv.Value)
	if !ok {
		t.Fatalf("value: got %T, want *Block", kv.Value)
	}

	obj := blk.AsObject()
	wantKeys := []string{"charlie", "alpha", "bravo"}
	if len(obj) != len(wantKeys) {
		t.Fatalf("AsObject(): got %d entries, want %d", len(obj), len(wantKeys))
	}
	for i, want := range wantKeys {
		if obj[i].Key != want {
			t.Fatalf("AsObject()[%d].Key: got %q, want %q (repeated key must keep its first-seen position)", i, obj[i].Key, want)
		}
	}
	alphaVal, _ := ObjectLookup(obj, "alpha")
	if s, ok := AsScalar(alphaVal); !ok || s.Text != "4" {
		t.Fatalf("AsObject() alpha value: got %+v, want last-value-wins scalar 4", alphaVal)
	}
}

func TestFromRed_QuotedScalarUnescaped(t *testing.T) {
	t.Parallel()
	sf := parse(t, `name = "Die Fleiss\"ig Stadt"` + "\n")
	kv := sf.Statements[0].(*KeyValue)
	s, ok := AsScalar(kv.Value)
	if !ok {
		t.Fatalf("value: got %T, want *Scalar", kv.Value)
	}
	if !s.WasQuoted {
		t.Fatalf("WasQuoted: got false, want true")
	}
	want := `Die Fleiss"ig Stadt`
	if s.Text != want {
		t.Fatalf("Text: got %q, want %q", s.Text, want)
	}
}

func TestBlock_Classify(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
		want Shape
	}{
		{"empty", "b = {}\n", ShapeEmpty},
		{"object", "b = { a = 1 c = 2 }\n", ShapeObject},
		{"array", "b = { brave just }\n", ShapeArray},
		{"mixed", "b = { a = 1 brave }\n", ShapeMixed},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sf := parse(t, tt.src)
			kv := sf.Statements[0].(*KeyValue)
			blk, ok := AsBlock(kv.Value)
			if !ok {
				t.Fatalf("value: got %T, want *Block", kv.Value)
			}
			if got := blk.Classify(); got != tt.want {
				t.Errorf("Classify(): got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInterpretScalar(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		raw       string
		wasQuoted bool
		allowQ    bool
		wantKind  ScalarKind
	}{
		{"bool yes", "yes", false, false, KindBool},
		{"bool no", "no", false, false, KindBool},
		{"date", "1444.11.11", false, false, KindDateLike},
		{"date rejects month 13", "1444.13.11", false, false, KindUnknown},
		{"integer", "1234", false, false, KindNumber},
		{"negative integer", "-42", false, false, KindNumber},
		{"decimal", "1.50", false, false, KindNumber},
		{"unknown word", "some_flag", false, false, KindUnknown},
		{"quoted forced unknown", "yes", true, false, KindUnknown},
		{"quoted opted in", "yes", true, true, KindBool},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := InterpretScalar(tt.raw, tt.wasQuoted, tt.allowQ)
			if got.Kind != tt.wantKind {
				t.Errorf("Kind: got %v, want %v", got.Kind, tt.wantKind)
			}
		})
	}
}

func TestInterpretScalar_WideInteger(t *testing.T) {
	t.Parallel()
	raw := "123456789012345678901234567890"
	got := InterpretScalar(raw, false, false)
	if got.Kind != KindNumber || got.IsDecimal {
		t.Fatalf("got %+v, want a non-decimal number", got)
	}
	want, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		t.Fatalf("test bug: could not parse %q as big.Int", raw)
	}
	if got.Int.Cmp(want) != 0 {
		t.Errorf("Int: got %s, want %s", got.Int, want)
	}
}

func TestInterpretScalar_Idempotent(t *testing.T) {
	t.Parallel()
	inputs := []string{"yes", "no", "1444.11.11", "1234", "-42", "1.50", "some_flag"}
	for _, raw := range inputs {
		first := InterpretScalar(raw, false, false)
		second := InterpretScalar(first.Text, false, false)
		if second.Kind != first.Kind || second.Text != first.Text {
			t.Errorf("interpret_scalar(interpret_scalar(%q)) not idempotent: got %+v, want %+v", raw, second, first)
		}
	}
}
