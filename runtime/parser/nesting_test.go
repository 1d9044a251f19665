package parser

import (
	"strings"
	"testing"

	dialecterrors "github.com/cascadelang/cascade/pkgs/errors"
)

// nestedRulesets builds n levels of ".a { .a { ... } }", each nesting a
// selector level deep enough to exercise enterNesting's guard (spec §3
// nesting_depth, §8 property 4).
func nestedRulesets(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(".a {")
	}
	b.WriteString("color: red;")
	for i := 0; i < n; i++ {
		b.WriteString("}")
	}
	return b.String()
}

func TestNestingWithinLimitSucceeds(t *testing.T) {
	src := nestedRulesets(10)
	if _, err := Parse([]byte(src), "nest.cas", nil, WithNestingLimit(50)); err != nil {
		t.Fatalf("unexpected error within limit: %v", err)
	}
}

func TestNestingBeyondLimitFailsDeterministically(t *testing.T) {
	src := nestedRulesets(60)
	_, err := Parse([]byte(src), "nest.cas", nil, WithNestingLimit(50))
	if err == nil {
		t.Fatal("expected an overflow error exceeding the nesting limit")
	}
	if !dialecterrors.IsKind(err, dialecterrors.KindOverflow) {
		t.Fatalf("expected KindOverflow, got %v", err)
	}
}

func TestNestingLimitIsDeterministic(t *testing.T) {
	src := nestedRulesets(60)
	_, err1 := Parse([]byte(src), "nest.cas", nil, WithNestingLimit(50))
	_, err2 := Parse([]byte(src), "nest.cas", nil, WithNestingLimit(50))
	if err1 == nil || err2 == nil {
		t.Fatal("expected both parses to fail")
	}
	if err1.Error() != err2.Error() {
		t.Fatalf("expected identical errors across repeated parses, got %q and %q", err1, err2)
	}
}
