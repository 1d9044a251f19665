// Package types defines the token and source-location primitives shared by
// the lexer, parser, and diagnostics packages.
package types

import "fmt"

// SourcePosition is a single point in a source buffer: 1-based line and
// column, 0-based byte offset. Column advances by one per ASCII byte and by
// one per code point for multi-byte runes — it is not a grapheme-cluster
// width, matching the dialect's own behavior.
type SourcePosition struct {
	Line   int
	Column int
	Offset int
}

func (p SourcePosition) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// SourceRange is the half-open [Start, End) span of an AST node or token,
// tied to the logical file path it was parsed from. Every AST node carries
// one; a child's range is always contained in its parent's.
type SourceRange struct {
	Path  string
	Start SourcePosition
	End   SourcePosition
}

func (r SourceRange) String() string {
	if r.Path == "" {
		return fmt.Sprintf("%s-%s", r.Start, r.End)
	}
	return fmt.Sprintf("%s:%s-%s", r.Path, r.Start, r.End)
}

// Len returns the byte length of the range.
func (r SourceRange) Len() int {
	return r.End.Offset - r.Start.Offset
}

// Contains reports whether other lies entirely within r.
func (r SourceRange) Contains(other SourceRange) bool {
	return r.Start.Offset <= other.Start.Offset && other.End.Offset <= r.End.Offset
}
