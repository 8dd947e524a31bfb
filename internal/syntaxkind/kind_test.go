// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package syntaxkind_test

import (
	"testing"

	"github.com/mdhender/jomini/internal/syntaxkind"
)

func TestKindString(t *testing.T) {
	t.Parallel()

	if got := syntaxkind.LBRACE.String(); got != "LBRACE" {
		t.Errorf("String: got %q", got)
	}
	if got := syntaxkind.Kind(9999).String(); got != "Kind(9999)" {
		t.Errorf("String for unknown kind: got %q", got)
	}
}

func TestKindIsTrivia(t *testing.T) {
	t.Parallel()

	for _, k := range []syntaxkind.Kind{syntaxkind.WHITESPACE, syntaxkind.NEWLINE, syntaxkind.COMMENT} {
		if !k.IsTrivia() {
			t.Errorf("%s: expected IsTrivia true", k)
		}
	}
	if syntaxkind.SCALAR_UNQUOTED.IsTrivia() {
		t.Errorf("SCALAR_UNQUOTED: expected IsTrivia false")
	}
}

func TestKindIsToken(t *testing.T) {
	t.Parallel()

	if !syntaxkind.SCALAR_QUOTED.IsToken() {
		t.Errorf("SCALAR_QUOTED: expected IsToken true")
	}
	if syntaxkind.BLOCK.IsToken() {
		t.Errorf("BLOCK: expected IsToken false, it is a node kind")
	}
	if syntaxkind.TOMBSTONE.IsToken() {
		t.Errorf("TOMBSTONE: expected IsToken false")
	}
}

func TestKindIsOperator(t *testing.T) {
	t.Parallel()

	ops := []syntaxkind.Kind{
		syntaxkind.OP_EQ, syntaxkind.OP_EQ_EQ, syntaxkind.OP_NE,
		syntaxkind.OP_GT, syntaxkind.OP_GE, syntaxkind.OP_LT, syntaxkind.OP_LE, syntaxkind.OP_QE,
	}
	for _, k := range ops {
		if !k.IsOperator() {
			t.Errorf("%s: expected IsOperator true", k)
		}
		if syntaxkind.OperatorText(k) == "" {
			t.Errorf("%s: expected non-empty OperatorText", k)
		}
	}
	if syntaxkind.LBRACE.IsOperator() {
		t.Errorf("LBRACE: expected IsOperator false")
	}
	if syntaxkind.OperatorText(syntaxkind.LBRACE) != "" {
		t.Errorf("OperatorText(LBRACE): expected empty string")
	}
}
