package parser

import (
	"testing"

	"github.com/cascadelang/cascade/core/ast"
)

// childBlocks returns every *ast.Block a statement owns directly, so the
// coverage walk below can recurse without a generic ast.Walk (none exists;
// the AST is a plain data tree, spec §8 property 1).
func childBlocks(stmt ast.Statement) []*ast.Block {
	switch s := stmt.(type) {
	case ast.Ruleset:
		return []*ast.Block{s.Body}
	case ast.Declaration:
		return []*ast.Block{s.Body}
	case ast.MediaRule:
		return []*ast.Block{s.Body}
	case ast.SupportsRule:
		return []*ast.Block{s.Body}
	case ast.AtRootBlock:
		return []*ast.Block{s.Body}
	case ast.Definition:
		return []*ast.Block{s.Body}
	case ast.For:
		return []*ast.Block{s.Body}
	case ast.Each:
		return []*ast.Block{s.Body}
	case ast.While:
		return []*ast.Block{s.Body}
	case ast.MixinCall:
		return []*ast.Block{s.Content}
	case ast.If:
		blocks := []*ast.Block{s.Consequent}
		switch alt := s.Alternative.(type) {
		case *ast.Block:
			blocks = append(blocks, alt)
		case ast.If:
			blocks = append(blocks, childBlocks(alt)...)
		}
		return blocks
	}
	return nil
}

// walkCoverage asserts that every statement's range is contained in the
// owning block's range, that sibling statements never overlap, and that
// siblings appear in non-decreasing source order.
func walkCoverage(t *testing.T, block *ast.Block) {
	t.Helper()
	if block == nil {
		return
	}
	var prevEnd int
	havePrev := false
	for _, stmt := range block.Statements {
		rng := stmt.SourceRange()
		if !block.Range.Contains(rng) {
			t.Fatalf("statement range %v not contained in block range %v", rng, block.Range)
		}
		if havePrev && rng.Start.Offset < prevEnd {
			t.Fatalf("statement range %v overlaps previous sibling ending at offset %d", rng, prevEnd)
		}
		prevEnd = rng.End.Offset
		havePrev = true
		for _, child := range childBlocks(stmt) {
			walkCoverage(t, child)
		}
	}
}

func TestCoverageNonOverlapping(t *testing.T) {
	src := `
$base: 10px;

.card {
  width: $base * 2;
  &:hover { color: red; }

  @if $base > 5 {
    border: 1px solid black;
  } @else {
    border: none;
  }
}

@media (min-width: 600px) {
  .card { width: 100%; }
}

@mixin pad($n) {
  padding: $n;
}

.box {
  @include pad(4px);
}
`
	block, err := Parse([]byte(src), "coverage.cas", nil)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	walkCoverage(t, block)
}

func TestCoverageRootRangeSpansSource(t *testing.T) {
	src := ".a { color: blue; }\n"
	block, err := Parse([]byte(src), "root.cas", nil)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if block.Range.Start.Offset != 0 {
		t.Fatalf("expected root block to start at offset 0, got %d", block.Range.Start.Offset)
	}
	if block.Range.End.Offset != len(src) {
		t.Fatalf("expected root block to end at %d, got %d", len(src), block.Range.End.Offset)
	}
}
