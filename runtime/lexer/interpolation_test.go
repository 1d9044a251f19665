package lexer

import "testing"

func TestScanNoInterpolation(t *testing.T) {
	src := []byte("plain text")
	segs, err := Scan(src, 0, len(src), ModeConstant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segs) != 1 || segs[0].IsExpression || segs[0].Literal != "plain text" {
		t.Fatalf("got %+v", segs)
	}
}

func TestScanSimpleInterpolation(t *testing.T) {
	src := []byte("a#{$x}b")
	segs, err := Scan(src, 0, len(src), ModeConstant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d: %+v", len(segs), segs)
	}
	if segs[0].Literal != "a" {
		t.Fatalf("got literal %q", segs[0].Literal)
	}
	if !segs[1].IsExpression {
		t.Fatalf("expected segs[1] to be an expression")
	}
	if got := string(src[segs[1].ExprStart:segs[1].ExprEnd]); got != "$x" {
		t.Fatalf("got expr text %q", got)
	}
	if segs[2].Literal != "b" {
		t.Fatalf("got literal %q, want %q", segs[2].Literal, "b")
	}
}

// Regression test for the brace-balancing off-by-one: a nested-brace
// expression's closing '}' must not be swallowed into ExprEnd, and the
// literal text immediately following must not be truncated.
func TestScanNestedBraceInterpolation(t *testing.T) {
	src := []byte("x#{map-get($m, (a: 1))}rest")
	segs, err := Scan(src, 0, len(src), ModeConstant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d: %+v", len(segs), segs)
	}
	exprText := string(src[segs[1].ExprStart:segs[1].ExprEnd])
	if exprText != "map-get($m, (a: 1))" {
		t.Fatalf("got expr text %q", exprText)
	}
	if segs[2].Literal != "rest" {
		t.Fatalf("literal after interpolation truncated: got %q, want %q", segs[2].Literal, "rest")
	}
}

func TestScanInterpolationWithBraceLiteral(t *testing.T) {
	src := []byte("#{ if(true, {a:1}, {}) }tail")
	segs, err := Scan(src, 0, len(src), ModeConstant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments (expr + tail literal), got %d: %+v", len(segs), segs)
	}
	if !segs[0].IsExpression {
		t.Fatal("expected first segment to be an expression")
	}
	if segs[1].Literal != "tail" {
		t.Fatalf("got %q, want %q", segs[1].Literal, "tail")
	}
}

func TestScanQuotedStringOpaque(t *testing.T) {
	src := []byte(`"#{not interpolated}" rest`)
	segs, err := Scan(src, 0, len(src), ModeConstant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segs) != 1 || segs[0].IsExpression {
		t.Fatalf("quoted string should be scanned opaque, got %+v", segs)
	}
}

func TestScanEmptyInterpolationError(t *testing.T) {
	src := []byte("a#{}b")
	_, err := Scan(src, 0, len(src), ModeConstant)
	if err == nil {
		t.Fatal("expected error for empty interpolation")
	}
}

func TestScanUnterminatedInterpolationError(t *testing.T) {
	src := []byte("a#{$x")
	_, err := Scan(src, 0, len(src), ModeConstant)
	if err == nil {
		t.Fatal("expected error for unterminated interpolation")
	}
}

func TestHasInterpolation(t *testing.T) {
	if HasInterpolation([]byte("plain"), 0, 5, ModeConstant) {
		t.Fatal("did not expect interpolation")
	}
	src := []byte("a#{$x}b")
	if !HasInterpolation(src, 0, len(src), ModeConstant) {
		t.Fatal("expected interpolation to be detected")
	}
	quoted := []byte(`"#{nope}"`)
	if HasInterpolation(quoted, 0, len(quoted), ModeConstant) {
		t.Fatal("did not expect interpolation inside quoted string under ModeConstant")
	}
}
