package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cascadelang/cascade/core/ast"
	dialecterrors "github.com/cascadelang/cascade/pkgs/errors"
)

// TestScenarioVariableAndRuleset is S1: a top-level assignment followed by
// a ruleset whose declaration references it.
func TestScenarioVariableAndRuleset(t *testing.T) {
	block, err := Parse([]byte("$c: red;\na { color: $c; }\n"), "s1.cas", nil)
	require.NoError(t, err)
	require.Len(t, block.Statements, 2)

	assign, ok := block.Statements[0].(ast.Assignment)
	require.True(t, ok, "expected Assignment, got %T", block.Statements[0])
	require.Equal(t, "c", assign.Name)
	str, ok := assign.Value.(ast.StringConstant)
	require.True(t, ok, "expected StringConstant value, got %T", assign.Value)
	require.Equal(t, "red", str.Value)

	rule, ok := block.Statements[1].(ast.Ruleset)
	require.True(t, ok, "expected Ruleset, got %T", block.Statements[1])
	selList, ok := rule.Selector.(ast.SelectorList)
	require.True(t, ok, "expected SelectorList selector, got %T", rule.Selector)
	require.Len(t, selList.Items, 1)
	require.Len(t, selList.Items[0].Parts, 1)
	typeSel, ok := selList.Items[0].Parts[0].Compound.Simples[0].(ast.TypeSelector)
	require.True(t, ok)
	require.Equal(t, "a", typeSel.Name)

	require.Len(t, rule.Body.Statements, 1)
	decl, ok := rule.Body.Statements[0].(ast.Declaration)
	require.True(t, ok)
	v, ok := decl.Value.(ast.Variable)
	require.True(t, ok, "expected Variable value, got %T", decl.Value)
	require.Equal(t, "c", v.Name)
}

// TestScenarioDivisionAmbiguity is S2: a slash between two numeric literals
// in a declaration value stays a delayed division, not an arithmetic fold.
func TestScenarioDivisionAmbiguity(t *testing.T) {
	block, err := Parse([]byte(".x { font: 16px/24px Serif; }\n"), "s2.cas", nil)
	require.NoError(t, err)
	rule := block.Statements[0].(ast.Ruleset)
	decl := rule.Body.Statements[0].(ast.Declaration)

	list, ok := decl.Value.(ast.List)
	require.True(t, ok, "expected List value, got %T", decl.Value)
	require.Equal(t, ast.SepSpace, list.Separator)
	require.Len(t, list.Elements, 2)

	div, ok := list.Elements[0].(ast.BinaryExpression)
	require.True(t, ok, "expected BinaryExpression, got %T", list.Elements[0])
	require.Equal(t, ast.OpDiv, div.Op)
	require.True(t, div.IsDelayedSlash)
	left := div.Left.(ast.Number)
	right := div.Right.(ast.Number)
	require.Equal(t, 16.0, left.Value)
	require.Equal(t, "px", left.Unit)
	require.Equal(t, 24.0, right.Value)
	require.Equal(t, "px", right.Unit)

	serif, ok := list.Elements[1].(ast.StringConstant)
	require.True(t, ok, "expected StringConstant, got %T", list.Elements[1])
	require.Equal(t, "Serif", serif.Value)
}

// TestScenarioInterpolationInSelector is S3.
func TestScenarioInterpolationInSelector(t *testing.T) {
	block, err := Parse([]byte(".a#{$n} > b { x: 1; }\n"), "s3.cas", nil)
	require.NoError(t, err)
	rule := block.Statements[0].(ast.Ruleset)
	schema, ok := rule.Selector.(ast.SelectorSchema)
	require.True(t, ok, "expected SelectorSchema, got %T", rule.Selector)
	require.GreaterOrEqual(t, len(schema.Schema.Parts), 2)

	var sawLiteral, sawVariable bool
	for _, part := range schema.Schema.Parts {
		if !part.IsExpression && part.Literal != "" {
			sawLiteral = true
		}
		if part.IsExpression {
			if v, ok := part.Expr.(ast.Variable); ok && v.Name == "n" {
				sawVariable = true
			}
		}
	}
	require.True(t, sawLiteral, "expected a literal schema part")
	require.True(t, sawVariable, "expected an interpolated Variable(n) schema part")

	decl := rule.Body.Statements[0].(ast.Declaration)
	num := decl.Value.(ast.Number)
	require.Equal(t, 1.0, num.Value)
}

// TestScenarioIfElseIfElseChain is S4.
func TestScenarioIfElseIfElseChain(t *testing.T) {
	src := "@if $a { x: 1; } @else if $b { x: 2; } @else { x: 3; }\n"
	block, err := Parse([]byte(src), "s4.cas", nil)
	require.NoError(t, err)
	require.Len(t, block.Statements, 1)

	top, ok := block.Statements[0].(ast.If)
	require.True(t, ok, "expected If, got %T", block.Statements[0])
	require.Equal(t, "a", top.Condition.(ast.Variable).Name)
	require.Len(t, top.Consequent.Statements, 1)

	mid, ok := top.Alternative.(ast.If)
	require.True(t, ok, "expected chained If as Alternative, got %T", top.Alternative)
	require.Equal(t, "b", mid.Condition.(ast.Variable).Name)
	require.Len(t, mid.Consequent.Statements, 1)

	final, ok := mid.Alternative.(*ast.Block)
	require.True(t, ok, "expected terminal *ast.Block as Alternative, got %T", mid.Alternative)
	require.Len(t, final.Statements, 1)
}

// TestScenarioCustomPropertyWithBraces is S5.
func TestScenarioCustomPropertyWithBraces(t *testing.T) {
	block, err := Parse([]byte("--grid: { cols: 3 };\n"), "s5.cas", nil)
	require.NoError(t, err)
	decl, ok := block.Statements[0].(ast.Declaration)
	require.True(t, ok, "expected Declaration, got %T", block.Statements[0])
	require.True(t, decl.IsCustom)

	prop, ok := decl.Property.(ast.StringConstant)
	require.True(t, ok, "expected StringConstant property, got %T", decl.Property)
	require.Equal(t, "--grid", prop.Value)

	val, ok := decl.Value.(ast.StringSchema)
	require.True(t, ok, "expected StringSchema value (a brace-block custom-property value always builds a schema, even with no interpolation), got %T", decl.Value)
	require.Len(t, val.Parts, 1)
	require.False(t, val.Parts[0].IsExpression)
	require.Equal(t, "{ cols: 3 }", val.Parts[0].Literal)
}

// TestCustomPropertyEmptyValueRejected covers spec.md's "custom property
// empty value" semantic error, mirroring parser.cpp's parse_css_variable_value
// rejecting a blank --custom-property body.
func TestCustomPropertyEmptyValueRejected(t *testing.T) {
	_, err := Parse([]byte("--x: ;\n"), "empty.cas", nil)
	require.Error(t, err)
	require.True(t, dialecterrors.IsKind(err, dialecterrors.KindSemantic))
}

// TestScenarioMapLiteral is S6.
func TestScenarioMapLiteral(t *testing.T) {
	block, err := Parse([]byte("$m: (a: 1, b: 2,);\n"), "s6.cas", nil)
	require.NoError(t, err)
	assign, ok := block.Statements[0].(ast.Assignment)
	require.True(t, ok, "expected Assignment, got %T", block.Statements[0])
	require.Equal(t, "m", assign.Name)

	m, ok := assign.Value.(ast.Map)
	require.True(t, ok, "expected Map, got %T", assign.Value)
	require.Len(t, m.Entries, 2)
	require.Equal(t, "a", m.Entries[0].Key.(ast.StringConstant).Value)
	require.Equal(t, 1.0, m.Entries[0].Value.(ast.Number).Value)
	require.Equal(t, "b", m.Entries[1].Key.(ast.StringConstant).Value)
	require.Equal(t, 2.0, m.Entries[1].Value.(ast.Number).Value)
}

// TestScenarioInvalidNesting is S7: @import inside a @function body is
// rejected, with the error located at the @import itself.
func TestScenarioInvalidNesting(t *testing.T) {
	src := `@function f() { @import "x"; }`
	_, err := Parse([]byte(src), "s7.cas", nil)
	require.Error(t, err)
	require.True(t, dialecterrors.IsKind(err, dialecterrors.KindSemantic))
	require.Contains(t, err.Error(), "Import directives may not be used within control directives or mixins.")
}
