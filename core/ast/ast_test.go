package ast

import (
	"testing"

	"github.com/cascadelang/cascade/core/types"
)

func rng(a, b int) types.SourceRange {
	return types.SourceRange{
		Path:  "t.cas",
		Start: types.SourcePosition{Line: 1, Column: a + 1, Offset: a},
		End:   types.SourcePosition{Line: 1, Column: b + 1, Offset: b},
	}
}

func TestSourceRangeContains(t *testing.T) {
	outer := rng(0, 10)
	inner := rng(2, 5)
	if !outer.Contains(inner) {
		t.Fatalf("expected %v to contain %v", outer, inner)
	}
	if inner.Contains(outer) {
		t.Fatalf("did not expect %v to contain %v", inner, outer)
	}
}

func TestJoinSchemaLiterals(t *testing.T) {
	schema := StringSchema{
		Base: Base{Range: rng(0, 10)},
		Parts: []StringSchemaValue{
			{Literal: "a"},
			{IsExpression: true, Expr: Variable{Base: Base{Range: rng(1, 2)}, Name: "n"}},
			{Literal: "b"},
		},
	}
	got := JoinSchemaLiterals(schema, "{{expr}}")
	want := "a{{expr}}b"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestAssignmentFlags(t *testing.T) {
	a := Assignment{Flags: []AssignmentFlag{FlagDefault}}
	if !a.HasFlag(FlagDefault) {
		t.Fatal("expected FlagDefault")
	}
	if a.HasFlag(FlagGlobal) {
		t.Fatal("did not expect FlagGlobal")
	}
}

func TestListUnwrapInvariant(t *testing.T) {
	// A bracketed single-element list must stay a List, never unwrapped.
	l := List{Bracketed: true, Elements: []Expression{Number{Value: 1}}}
	if _, ok := Expression(l).(List); !ok {
		t.Fatal("bracketed list must remain a List")
	}
}

func TestStatementAndExpressionMarkers(t *testing.T) {
	var s Statement = Assignment{Name: "x", Value: Null{}}
	var e Expression = Null{}
	var sel SelectorNode = SelectorList{}
	var ss SimpleSelector = TypeSelector{Name: "div"}
	var sc SupportsCondition = SupportsDeclaration{}
	_ = s
	_ = e
	_ = sel
	_ = ss
	_ = sc
}
