package lexer

import "testing"

func TestIdentifier(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"foo-bar", 7},
		{"_bar", 4},
		{"1abc", 0},
		{"a1b2", 4},
		{"", 0},
	}
	for _, c := range cases {
		if got := Identifier([]byte(c.in)); got != c.want {
			t.Errorf("Identifier(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestVariableAndPlaceholder(t *testing.T) {
	if n := Variable([]byte("$my-var rest")); n != 7 {
		t.Errorf("Variable: got %d want 7", n)
	}
	if n := Placeholder([]byte("%ph rest")); n != 3 {
		t.Errorf("Placeholder: got %d want 3", n)
	}
	if n := Variable([]byte("notavar")); n != 0 {
		t.Errorf("Variable should not match: got %d", n)
	}
}

func TestNumberAndDimension(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"16px", 2},
		{"-3.5", 4},
		{"3.", 1}, // trailing dot with no digits after does not extend match
		{".5", 2},
		{"abc", 0},
	}
	for _, c := range cases {
		if got := Number([]byte(c.in)); got != c.want {
			t.Errorf("Number(%q) = %d, want %d", c.in, got, c.want)
		}
	}
	if n := Dimension([]byte("16px")); n != 4 {
		t.Errorf("Dimension: got %d want 4", n)
	}
	if n := Percentage([]byte("50%")); n != 3 {
		t.Errorf("Percentage: got %d want 3", n)
	}
}

func TestHexColor(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"#fff", 4},
		{"#ffff", 5},
		{"#ff00ff", 7},
		{"#ff00ff00", 9},
		{"#ff", 0}, // 2 hex digits is not a valid length
		{"red", 0},
	}
	for _, c := range cases {
		if got := HexColor([]byte(c.in)); got != c.want {
			t.Errorf("HexColor(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestQuotedString(t *testing.T) {
	n, closed := QuotedStringOpen([]byte(`"hello \" world" x`))
	if !closed || n != len(`"hello \" world"`) {
		t.Fatalf("got n=%d closed=%v", n, closed)
	}
	_, closed = QuotedStringOpen([]byte(`"unterminated`))
	if closed {
		t.Fatal("expected unterminated string to not be closed")
	}
}

func TestBlockComment(t *testing.T) {
	n, closed := BlockCommentOpen([]byte("/* hi */ rest"))
	if !closed || n != len("/* hi */") {
		t.Fatalf("got n=%d closed=%v", n, closed)
	}
	_, closed = BlockCommentOpen([]byte("/* unterminated"))
	if closed {
		t.Fatal("expected unterminated comment to not be closed")
	}
}

func TestNormalizeIdent(t *testing.T) {
	if got := NormalizeIdent("my_var_name"); got != "my-var-name" {
		t.Errorf("got %q", got)
	}
	if got := NormalizeIdent("already-dashed"); got != "already-dashed" {
		t.Errorf("got %q", got)
	}
}

func TestSequenceAlternativesZeroOnePlus(t *testing.T) {
	seq := Sequence(Exactly('a'), Exactly('b'))
	if n := seq([]byte("abc")); n != 2 {
		t.Errorf("Sequence: got %d want 2", n)
	}
	if n := seq([]byte("ac")); n != 0 {
		t.Errorf("Sequence: expected no match, got %d", n)
	}
	alt := Alternatives(Exactly('x'), Exactly('y'))
	if n := alt([]byte("y2")); n != 1 {
		t.Errorf("Alternatives: got %d want 1", n)
	}
	zp := ZeroPlus(Exactly('a'))
	if n := zp([]byte("aaab")); n != 3 {
		t.Errorf("ZeroPlus: got %d want 3", n)
	}
	if n := zp([]byte("b")); n != 0 {
		t.Errorf("ZeroPlus on no match: got %d want 0", n)
	}
	op := OnePlus(Exactly('a'))
	if n := op([]byte("b")); n != 0 {
		t.Errorf("OnePlus: got %d want 0", n)
	}
}

func TestKeywordWordBoundary(t *testing.T) {
	kw := Keyword("and")
	if n := kw([]byte("android")); n != 0 {
		t.Errorf("Keyword should not match prefix of android, got %d", n)
	}
	if n := kw([]byte("and $x")); n != 3 {
		t.Errorf("Keyword and: got %d want 3", n)
	}
}
