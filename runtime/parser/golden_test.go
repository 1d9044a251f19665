package parser

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"

	"github.com/cascadelang/cascade/core/ast"
)

// ruleSnapshot is a flattened, serialization-friendly view of a Ruleset,
// independent of source positions, used to pin a parse's shape across
// changes the way the teacher's own golden-fixture tests do (cbor chosen
// over yaml here purely to exercise both fixture-tooling libraries the
// teacher's test suite carries).
type ruleSnapshot struct {
	Selectors   []string `cbor:"selectors"`
	Properties  []string `cbor:"properties"`
	Declaration int      `cbor:"declarationCount"`
}

func snapshotRuleset(rule ast.Ruleset) ruleSnapshot {
	snap := ruleSnapshot{Declaration: len(rule.Body.Statements)}
	selList := rule.Selector.(ast.SelectorList)
	for _, complex := range selList.Items {
		for _, part := range complex.Parts {
			for _, simple := range part.Compound.Simples {
				if ts, ok := simple.(ast.TypeSelector); ok {
					snap.Selectors = append(snap.Selectors, ts.Name)
				}
			}
		}
	}
	for _, stmt := range rule.Body.Statements {
		if decl, ok := stmt.(ast.Declaration); ok {
			prop, ok := decl.Property.(ast.StringConstant)
			if ok {
				snap.Properties = append(snap.Properties, prop.Value)
			}
		}
	}
	return snap
}

// TestGoldenSnapshotRoundTrip encodes a parsed ruleset's shape to CBOR and
// decodes it back, asserting the snapshot survives the trip unchanged —
// the same guarantee a persisted golden fixture relies on between runs.
func TestGoldenSnapshotRoundTrip(t *testing.T) {
	block, err := Parse([]byte("nav.top { color: red; display: flex; }\n"), "golden.cas", nil)
	require.NoError(t, err)
	rule := block.Statements[0].(ast.Ruleset)
	want := snapshotRuleset(rule)
	require.Equal(t, []string{"nav"}, want.Selectors)
	require.Equal(t, []string{"color", "display"}, want.Properties)
	require.Equal(t, 2, want.Declaration)

	encoded, err := cbor.Marshal(want)
	require.NoError(t, err)

	var got ruleSnapshot
	require.NoError(t, cbor.Unmarshal(encoded, &got))
	require.Equal(t, want, got)
}
