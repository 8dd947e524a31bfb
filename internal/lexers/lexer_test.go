// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package lexers_test

import (
	"testing"

	"github.com/mdhender/jomini/internal/lexers"
	"github.com/mdhender/jomini/internal/syntaxkind"
)

func scanAll(t *testing.T, src string, opts lexers.Options) ([]lexers.Token, *lexers.Lexer) {
	t.Helper()
	l := lexers.New([]byte(src), opts)
	var toks []lexers.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Kind == syntaxkind.EOF {
			return toks, l
		}
	}
}

func kinds(toks []lexers.Token) []syntaxkind.Kind {
	out := make([]syntaxkind.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestLexerKeyValue(t *testing.T) {
	t.Parallel()

	toks, _ := scanAll(t, "key=value", lexers.DefaultOptions())
	got := kinds(toks)
	want := []syntaxkind.Kind{
		syntaxkind.SCALAR_UNQUOTED, syntaxkind.OP_EQ, syntaxkind.SCALAR_UNQUOTED, syntaxkind.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("kinds: want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("kinds[%d]: want %s, got %s", i, want[i], got[i])
		}
	}
	if toks[0].Text([]byte("key=value")) != "key" {
		t.Errorf("Text: got %q", toks[0].Text([]byte("key=value")))
	}
}

func TestLexerOperators(t *testing.T) {
	t.Parallel()

	cases := []struct {
		src  string
		kind syntaxkind.Kind
	}{
		{"=", syntaxkind.OP_EQ},
		{"==", syntaxkind.OP_EQ_EQ},
		{"!=", syntaxkind.OP_NE},
		{">", syntaxkind.OP_GT},
		{">=", syntaxkind.OP_GE},
		{"<", syntaxkind.OP_LT},
		{"<=", syntaxkind.OP_LE},
		{"?=", syntaxkind.OP_QE},
	}
	for _, c := range cases {
		l := lexers.New([]byte(c.src), lexers.DefaultOptions())
		tok := l.Next()
		if tok.Kind != c.kind {
			t.Errorf("%q: want %s, got %s", c.src, c.kind, tok.Kind)
		}
		if tok.Text([]byte(c.src)) != c.src {
			t.Errorf("%q: Text mismatch, got %q", c.src, tok.Text([]byte(c.src)))
		}
	}
}

func TestLexerBlock(t *testing.T) {
	t.Parallel()

	toks, _ := scanAll(t, "foo={}", lexers.DefaultOptions())
	got := kinds(toks)
	want := []syntaxkind.Kind{
		syntaxkind.SCALAR_UNQUOTED, syntaxkind.OP_EQ, syntaxkind.LBRACE, syntaxkind.RBRACE, syntaxkind.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("kinds: want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("kinds[%d]: want %s, got %s", i, want[i], got[i])
		}
	}
}

func TestLexerQuotedScalarWithEscape(t *testing.T) {
	t.Parallel()

	src := `"hello \"world\""`
	l := lexers.New([]byte(src), lexers.DefaultOptions())
	tok := l.Next()
	if tok.Kind != syntaxkind.SCALAR_QUOTED {
		t.Fatalf("want SCALAR_QUOTED, got %s", tok.Kind)
	}
	if tok.Flags&lexers.WasQuoted == 0 {
		t.Errorf("expected WasQuoted flag set")
	}
	if tok.Flags&lexers.HasEscape == 0 {
		t.Errorf("expected HasEscape flag set")
	}
	if len(l.Diagnostics()) != 0 {
		t.Errorf("expected no diagnostics for a well-formed quoted scalar, got %v", l.Diagnostics())
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	t.Parallel()

	l := lexers.New([]byte(`"unterminated`), lexers.DefaultOptions())
	tok := l.Next()
	if tok.Kind != syntaxkind.SCALAR_QUOTED {
		t.Fatalf("want SCALAR_QUOTED, got %s", tok.Kind)
	}
	ds := l.Diagnostics()
	if len(ds) != 1 || ds[0].Code != lexers.CodeUnterminatedString {
		t.Fatalf("expected one unterminated-string diagnostic, got %v", ds)
	}
}

func TestLexerAllowUnterminatedStrings(t *testing.T) {
	t.Parallel()

	opts := lexers.DefaultOptions()
	opts.AllowUnterminatedStrings = true
	l := lexers.New([]byte(`"unterminated`), opts)
	l.Next()
	if len(l.Diagnostics()) != 0 {
		t.Errorf("expected no diagnostics when unterminated strings are allowed, got %v", l.Diagnostics())
	}
}

func TestLexerMultilineQuotedScalar(t *testing.T) {
	t.Parallel()

	src := "\"line one\nline two\""
	l := lexers.New([]byte(src), lexers.DefaultOptions())
	tok := l.Next()
	if tok.Kind != syntaxkind.SCALAR_QUOTED {
		t.Fatalf("want SCALAR_QUOTED, got %s", tok.Kind)
	}
	if tok.Text([]byte(src)) != src {
		t.Errorf("expected the whole multiline scalar to be one token, got %q", tok.Text([]byte(src)))
	}
}

func TestLexerComment(t *testing.T) {
	t.Parallel()

	toks, _ := scanAll(t, "# a comment\nkey=1", lexers.DefaultOptions())
	got := kinds(toks)
	want := []syntaxkind.Kind{
		syntaxkind.COMMENT, syntaxkind.NEWLINE, syntaxkind.SCALAR_UNQUOTED,
		syntaxkind.OP_EQ, syntaxkind.SCALAR_UNQUOTED, syntaxkind.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("kinds: want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("kinds[%d]: want %s, got %s", i, want[i], got[i])
		}
	}
}

func TestLexerEmptyInput(t *testing.T) {
	t.Parallel()

	l := lexers.New(nil, lexers.DefaultOptions())
	tok := l.Next()
	if tok.Kind != syntaxkind.EOF {
		t.Fatalf("want EOF on empty input, got %s", tok.Kind)
	}
	if !tok.Range().IsEmpty() {
		t.Errorf("expected empty range for EOF on empty input, got %v", tok.Range())
	}
}
