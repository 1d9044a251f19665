package parser

import (
	"testing"

	"github.com/cascadelang/cascade/core/types"
)

func TestClassifyToken(t *testing.T) {
	cases := []struct {
		name string
		rem  string
		want types.TokenType
	}{
		{"empty", "", types.EOF},
		{"lbrace", "{ color: red; }", types.LBRACE},
		{"rbrace", "}", types.RBRACE},
		{"semicolon", ";", types.SEMICOLON},
		{"variable", "$name", types.VARIABLE},
		{"hash", "#fff", types.COLOR},
		{"quoted", `"red"`, types.STRING},
		{"number", "16px", types.NUMBER},
		{"whitespace", "  x", types.WHITESPACE},
		{"ident", "color", types.IDENT},
		{"illegal", "!!!", types.ILLEGAL},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tok := classifyToken([]byte(tc.rem))
			if tok.Type != tc.want {
				t.Fatalf("classifyToken(%q) = %s, want %s", tc.rem, tok.Type, tc.want)
			}
		})
	}
}
