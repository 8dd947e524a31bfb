// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package greentree_test

import (
	"testing"

	"github.com/mdhender/jomini/internal/greentree"
	"github.com/mdhender/jomini/internal/lexers"
	"github.com/mdhender/jomini/internal/parser"
	"github.com/mdhender/jomini/internal/syntaxkind"
	"github.com/mdhender/jomini/internal/text"
)

func build(t *testing.T, src string) (*greentree.Node, *lexers.Source) {
	t.Helper()
	lexSrc := lexers.NewSource([]byte(src), lexers.DefaultOptions())
	p := parser.New(lexSrc, parser.DefaultOptions())
	parser.ParseSourceFile(p)
	return greentree.Build(p.Events(), lexSrc), lexSrc
}

func TestBuildRoundTripsSourceExactly(t *testing.T) {
	t.Parallel()

	cases := []string{
		"key=value",
		"key = value\n",
		"outer={ inner=1 # comment\n }",
		"  # leading comment\nkey=\"quoted value\"\n",
		"a=1\nb=2\nc={ 1 2 3 }",
	}
	for _, src := range cases {
		green, _ := build(t, src)
		root := greentree.NewRoot(green)
		if got := root.Text([]byte(src)); got != src {
			t.Errorf("round trip for %q: got %q", src, got)
		}
	}
}

func TestBuildNodeShape(t *testing.T) {
	t.Parallel()

	green, _ := build(t, "key=value")
	root := greentree.NewRoot(green)
	if root.Kind() != syntaxkind.ROOT {
		t.Fatalf("expected ROOT, got %s", root.Kind())
	}
	sourceFiles := root.ChildNodes()
	if len(sourceFiles) != 1 || sourceFiles[0].Kind() != syntaxkind.SOURCE_FILE {
		t.Fatalf("expected one SOURCE_FILE child, got %v", sourceFiles)
	}
	statements := sourceFiles[0].ChildNodes()
	if len(statements) != 1 || statements[0].Kind() != syntaxkind.KEY_VALUE {
		t.Fatalf("expected one KEY_VALUE statement, got %v", statements)
	}
}

func TestRedNodeOffsetsAreAbsoluteAndContiguous(t *testing.T) {
	t.Parallel()

	src := "a=1\nb=2"
	green, _ := build(t, src)
	root := greentree.NewRoot(green)

	var walk func(n *greentree.RedNode)
	walk = func(n *greentree.RedNode) {
		for _, child := range n.Children() {
			r := child.Range()
			if r.End > text.Size(len(src)) {
				t.Errorf("child range %v exceeds source length %d", r, len(src))
			}
			if cn, ok := child.(*greentree.RedNode); ok {
				walk(cn)
			}
		}
	}
	walk(root)

	if got := root.Text([]byte(src)); got != src {
		t.Errorf("root.Text: want %q, got %q", src, got)
	}
}

func TestTokenTextExcludesTrivia(t *testing.T) {
	t.Parallel()

	src := "  key = value  \n"
	green, _ := build(t, src)
	root := greentree.NewRoot(green)

	var tokens []*greentree.RedToken
	var collect func(n *greentree.RedNode)
	collect = func(n *greentree.RedNode) {
		for _, child := range n.Children() {
			switch c := child.(type) {
			case *greentree.RedNode:
				collect(c)
			case *greentree.RedToken:
				tokens = append(tokens, c)
			}
		}
	}
	collect(root)

	if len(tokens) == 0 {
		t.Fatalf("expected at least one token")
	}
	first := tokens[0]
	if first.Text() != "key" {
		t.Errorf("expected first token's own text to exclude leading whitespace, got %q", first.Text())
	}
	if first.TextRange().Len() != 3 {
		t.Errorf("expected TextRange to cover exactly \"key\" (3 bytes), got %v", first.TextRange())
	}
}
