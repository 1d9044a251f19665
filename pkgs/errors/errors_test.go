package errors

import (
	"errors"
	"testing"
)

func TestDialectErrorMessage(t *testing.T) {
	e := NewSyntacticError("expected '{'")
	if e.Error() != "SYNTACTIC: expected '{'" {
		t.Fatalf("got %q", e.Error())
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	e := Wrap(KindLexical, "unterminated string", cause)
	if errors.Unwrap(e) != cause {
		t.Fatal("expected Unwrap to return the wrapped cause")
	}
	if e.Error() != `LEXICAL: unterminated string (caused by: boom)` {
		t.Fatalf("got %q", e.Error())
	}
}

func TestWithContextAndIsKind(t *testing.T) {
	e := New(KindOverflow, "nesting depth exceeded").WithContext("depth", 256)
	v, ok := e.GetContext("depth")
	if !ok || v != 256 {
		t.Fatalf("got %v, %v", v, ok)
	}
	if !IsKind(e, KindOverflow) {
		t.Fatal("expected IsKind to match")
	}
	if IsKind(e, KindSemantic) {
		t.Fatal("did not expect IsKind to match a different kind")
	}
}

func TestSuggestClosest(t *testing.T) {
	candidates := []string{"color", "background", "border"}
	match, ok := SuggestClosest("colour", candidates)
	if !ok || match != "color" {
		t.Fatalf("got match=%q ok=%v", match, ok)
	}
	if _, ok := SuggestClosest("zzzzzzzzzz", candidates); ok {
		t.Fatal("did not expect a suggestion for an unrelated name")
	}
}

func TestDidYouMean(t *testing.T) {
	got := DidYouMean("colr", []string{"color"})
	if got != ` (did you mean "color"?)` {
		t.Fatalf("got %q", got)
	}
	if got := DidYouMean("", []string{"color"}); got != "" {
		t.Fatalf("expected empty string for empty name, got %q", got)
	}
}
