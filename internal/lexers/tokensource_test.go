// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package lexers_test

import (
	"testing"

	"github.com/mdhender/jomini/internal/lexers"
	"github.com/mdhender/jomini/internal/syntaxkind"
)

func TestSourceSplitsTokensAndTrivia(t *testing.T) {
	t.Parallel()

	s := lexers.NewSource([]byte("key = value"), lexers.DefaultOptions())
	var got []syntaxkind.Kind
	for !s.AtEOF() {
		got = append(got, s.Bump().Kind)
	}
	got = append(got, s.Current().Kind) // EOF

	want := []syntaxkind.Kind{
		syntaxkind.SCALAR_UNQUOTED, syntaxkind.OP_EQ, syntaxkind.SCALAR_UNQUOTED, syntaxkind.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("token stream: want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d]: want %s, got %s", i, want[i], got[i])
		}
	}
}

func TestSourceTrailingTriviaUpToNewline(t *testing.T) {
	t.Parallel()

	// "a=1 # trailing comment\nb=2": the comment and the newline are
	// trailing trivia of the "1" token; nothing is leading for "b".
	s := lexers.NewSource([]byte("a=1 # trailing comment\nb=2"), lexers.DefaultOptions())

	s.Bump() // a
	s.Bump() // =
	s.Bump() // 1
	bIdx := s.Pos()
	if !s.HasPrecedingLineBreak() {
		t.Errorf("expected b to have a preceding line break")
	}
	trivia := s.TriviaBefore(bIdx)
	var sawTrailingComment, sawTrailingNewline bool
	for _, tv := range trivia {
		if tv.Kind == syntaxkind.COMMENT && tv.Trailing {
			sawTrailingComment = true
		}
		if tv.Kind == syntaxkind.NEWLINE && tv.Trailing {
			sawTrailingNewline = true
		}
	}
	if !sawTrailingComment || !sawTrailingNewline {
		t.Errorf("expected comment and newline to be trailing trivia of the previous token, got %+v", trivia)
	}
	if s.HasPrecedingTrivia() {
		t.Errorf("expected no leading trivia for b, all of it is trailing of 1")
	}
}

func TestSourceLeadingTriviaAfterNewline(t *testing.T) {
	t.Parallel()

	// A second newline (or any trivia after the first one) becomes
	// leading trivia of the following token.
	s := lexers.NewSource([]byte("a=1\n\nb=2"), lexers.DefaultOptions())
	s.Bump() // a
	s.Bump() // =
	s.Bump() // 1
	bIdx := s.Pos()
	if !s.HasPrecedingTrivia() {
		t.Errorf("expected b to have leading trivia (the second newline)")
	}
	trivia := s.TriviaBefore(bIdx)
	leadingCount := 0
	for _, tv := range trivia {
		if !tv.Trailing {
			leadingCount++
		}
	}
	if leadingCount != 1 {
		t.Errorf("expected exactly one leading trivia piece, got %d in %+v", leadingCount, trivia)
	}
}

func TestSourceSeekTo(t *testing.T) {
	t.Parallel()

	s := lexers.NewSource([]byte("a=1"), lexers.DefaultOptions())
	checkpoint := s.Pos()
	s.Bump()
	s.Bump()
	if s.Pos() == checkpoint {
		t.Fatalf("expected cursor to advance")
	}
	s.SeekTo(checkpoint)
	if s.Current().Kind != syntaxkind.SCALAR_UNQUOTED {
		t.Errorf("expected SeekTo to rewind to the first token, got %s", s.Current().Kind)
	}
}

func TestSourceNthClampsToEOF(t *testing.T) {
	t.Parallel()

	s := lexers.NewSource([]byte("a"), lexers.DefaultOptions())
	if got := s.Nth(100); got.Kind != syntaxkind.EOF {
		t.Errorf("Nth far beyond the stream: want EOF, got %s", got.Kind)
	}
}
