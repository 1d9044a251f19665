package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cascadelang/cascade/core/ast"
)

// selectorFixture is one row of the table-driven corpus below, kept as a
// YAML literal rather than Go struct literals to match the teacher's habit
// of loading fixture tables rather than hand-writing every case inline.
type selectorFixture struct {
	Name  string `yaml:"name"`
	Input string `yaml:"input"`
	// WantTypes lists the TypeSelector names expected, in the order their
	// compound selectors appear across every complex selector in the list.
	WantTypes []string `yaml:"wantTypes"`
}

const selectorFixtureYAML = `
- name: single type selector
  input: "div { x: 1; }"
  wantTypes: ["div"]
- name: descendant combinator
  input: "div span { x: 1; }"
  wantTypes: ["div", "span"]
- name: comma separated list
  input: "div, span { x: 1; }"
  wantTypes: ["div", "span"]
- name: child combinator
  input: "ul > li { x: 1; }"
  wantTypes: ["ul", "li"]
`

func loadSelectorFixtures(t *testing.T) []selectorFixture {
	t.Helper()
	var fixtures []selectorFixture
	require.NoError(t, yaml.Unmarshal([]byte(selectorFixtureYAML), &fixtures))
	require.NotEmpty(t, fixtures)
	return fixtures
}

func TestSelectorFixtures(t *testing.T) {
	for _, fx := range loadSelectorFixtures(t) {
		t.Run(fx.Name, func(t *testing.T) {
			block, err := Parse([]byte(fx.Input), "sel.cas", nil)
			require.NoError(t, err)
			rule := block.Statements[0].(ast.Ruleset)
			selList, ok := rule.Selector.(ast.SelectorList)
			require.True(t, ok, "expected SelectorList, got %T", rule.Selector)

			var gotTypes []string
			for _, complex := range selList.Items {
				for _, part := range complex.Parts {
					for _, simple := range part.Compound.Simples {
						if ts, ok := simple.(ast.TypeSelector); ok {
							gotTypes = append(gotTypes, ts.Name)
						}
					}
				}
			}
			require.Equal(t, fx.WantTypes, gotTypes)
		})
	}
}
