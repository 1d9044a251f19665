package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/cascadelang/cascade/core/ast"
)

func parseDeclValue(t *testing.T, value string) ast.Expression {
	t.Helper()
	block, err := Parse([]byte(".x { width: "+value+"; }\n"), "expr.cas", nil)
	require.NoError(t, err)
	rule := block.Statements[0].(ast.Ruleset)
	decl := rule.Body.Statements[0].(ast.Declaration)
	return decl.Value
}

// TestNumberRoundTrip is spec §8 property 2: a Number's Raw textual form
// re-parses to an equal value, unit, sign, and leading-zero flag.
func TestNumberRoundTrip(t *testing.T) {
	cases := []string{"16", "16px", "-3.5em", "0.5%", "-0.25", "010px", "100%"}
	for _, lit := range cases {
		t.Run(lit, func(t *testing.T) {
			first := parseDeclValue(t, lit).(ast.Number)
			require.Equal(t, lit, first.Raw)

			second := parseDeclValue(t, first.Raw).(ast.Number)
			require.Equal(t, first.Value, second.Value)
			require.Equal(t, first.Unit, second.Unit)
			require.Equal(t, first.Negative, second.Negative)
			require.Equal(t, first.HasLeadingZero, second.HasLeadingZero)
		})
	}
}

// TestDelayedSlashIdempotence is spec §8 property 3: the "/" operator's
// delayed flag on leaf numerics doesn't depend on the surrounding context
// it's parsed in (a bare declaration value vs. a function-call argument) —
// only the flag, never the underlying operand values, could ever vary.
func TestDelayedSlashIdempotence(t *testing.T) {
	bare := parseDeclValue(t, "16px/24px").(ast.BinaryExpression)
	require.Equal(t, ast.OpDiv, bare.Op)
	require.True(t, bare.IsDelayedSlash)

	wrapped := parseDeclValue(t, "calc(16px/24px)").(ast.FunctionCall)
	require.Len(t, wrapped.Arguments, 1)
	inFunc := wrapped.Arguments[0].Value.(ast.BinaryExpression)
	require.Equal(t, ast.OpDiv, inFunc.Op)
	require.True(t, inFunc.IsDelayedSlash)

	ignorePositions := cmpopts.IgnoreFields(ast.Base{}, "Range")
	if diff := cmp.Diff(bare.Left, inFunc.Left, ignorePositions); diff != "" {
		t.Fatalf("left operand differs only by context (-bare +wrapped):\n%s", diff)
	}
	if diff := cmp.Diff(bare.Right, inFunc.Right, ignorePositions); diff != "" {
		t.Fatalf("right operand differs only by context (-bare +wrapped):\n%s", diff)
	}
}
