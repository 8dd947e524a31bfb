// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package text_test

import (
	"testing"

	"github.com/mdhender/jomini/internal/text"
)

func TestRange(t *testing.T) {
	t.Parallel()

	r := text.NewRange(2, 5)
	if r.Len() != 3 {
		t.Errorf("Len: want 3, got %d", r.Len())
	}
	if r.IsEmpty() {
		t.Errorf("IsEmpty: want false")
	}
	if !r.Contains(2) || !r.Contains(4) || r.Contains(5) {
		t.Errorf("Contains: half-open range violated")
	}
	if string(r.Slice([]byte("abcdefgh"))) != "cde" {
		t.Errorf("Slice: got %q", r.Slice([]byte("abcdefgh")))
	}
	if r.String() != "[2, 5)" {
		t.Errorf("String: got %q", r.String())
	}
}

func TestRangeEmpty(t *testing.T) {
	t.Parallel()

	r := text.NewRange(3, 3)
	if !r.IsEmpty() {
		t.Errorf("IsEmpty: want true for [3,3)")
	}
}

func TestRangePanicsOnInverted(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for start > end")
		}
	}()
	text.NewRange(5, 2)
}

func TestRangeContainsRange(t *testing.T) {
	t.Parallel()

	outer := text.NewRange(0, 10)
	inner := text.NewRange(2, 5)
	if !outer.ContainsRange(inner) {
		t.Errorf("expected outer to contain inner")
	}
	if inner.ContainsRange(outer) {
		t.Errorf("expected inner to not contain outer")
	}
}

func TestRangeCover(t *testing.T) {
	t.Parallel()

	var zero text.Range
	a := text.NewRange(4, 6)
	if got := zero.Cover(a); got != a {
		t.Errorf("Cover of zero value: want %v, got %v", a, got)
	}
	if got := a.Cover(zero); got != a {
		t.Errorf("Cover with zero value: want %v, got %v", a, got)
	}

	b := text.NewRange(1, 5)
	c := text.NewRange(3, 9)
	want := text.NewRange(1, 9)
	if got := b.Cover(c); got != want {
		t.Errorf("Cover: want %v, got %v", want, got)
	}
}
