package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cascadelang/cascade/core/types"
	dialecterrors "github.com/cascadelang/cascade/pkgs/errors"
	"github.com/cascadelang/cascade/runtime/lexer"
)

// contextRadius is how many code points of source context are kept on each
// side of a failure position (spec §4.10/§7).
const contextRadius = 18

// ParseError is the parser's external error value (spec §6 "Error value"):
// a location, a human message, the nested-invocation back-trace, and an
// owned copy of the surrounding source (the parser's buffer borrow ends the
// moment the parse stack unwinds, so anything surviving past that must copy
// — spec §5).
type ParseError struct {
	Kind        dialecterrors.Kind
	Path        string
	Start       types.SourcePosition
	End         types.SourcePosition
	Message     string
	Trace       []types.SourceRange
	SourceSlice string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", e.Path, e.Start.Line, e.Start.Column, e.Kind, e.Message)
}

// ErrorKind reports the ParseError's Kind, satisfying dialecterrors.Kinder
// so dialecterrors.IsKind classifies real parse failures correctly.
func (e *ParseError) ErrorKind() dialecterrors.Kind { return e.Kind }

// newParseError builds a ParseError anchored at a single position (End ==
// Start), trimming src around off for the diagnostic context.
func newParseError(kind dialecterrors.Kind, path string, src []byte, pos types.SourcePosition, trace []types.SourceRange, format string, args ...interface{}) *ParseError {
	return &ParseError{
		Kind:        kind,
		Path:        path,
		Start:       pos,
		End:         pos,
		Message:     fmt.Sprintf(format, args...),
		Trace:       append([]types.SourceRange(nil), trace...),
		SourceSlice: trimContext(src, pos.Offset),
	}
}

// newParseErrorRange is like newParseError but spans a known range, used
// when the failing construct itself has non-zero width (e.g. an
// already-parsed selector rejected by a nesting check).
func newParseErrorRange(kind dialecterrors.Kind, path string, src []byte, rng types.SourceRange, trace []types.SourceRange, format string, args ...interface{}) *ParseError {
	return &ParseError{
		Kind:        kind,
		Path:        path,
		Start:       rng.Start,
		End:         rng.End,
		Message:     fmt.Sprintf(format, args...),
		Trace:       append([]types.SourceRange(nil), trace...),
		SourceSlice: trimContext(src, rng.Start.Offset),
	}
}

// trimContext renders up to contextRadius code points on either side of
// offset off in src, marking truncation with "…" and double-quoting the
// failing region (spec §4.10). The "failing region" here is a single code
// point at off, matching a parser that has just rejected the byte it's
// sitting on; callers that want a wider failing region pre-slice src.
func trimContext(src []byte, off int) string {
	if off < 0 {
		off = 0
	}
	if off > len(src) {
		off = len(src)
	}

	before := runesBefore(src, off, contextRadius)
	after := runesAfter(src, off, contextRadius)
	failing := failingRune(src, off)

	var b strings.Builder
	if before.truncated {
		b.WriteString("…")
	}
	b.WriteString(before.text)
	b.WriteString(`"`)
	b.WriteString(failing)
	b.WriteString(`"`)
	b.WriteString(after.text)
	if after.truncated {
		b.WriteString("…")
	}
	return b.String()
}

type trimmedRun struct {
	text      string
	truncated bool
}

func runesBefore(src []byte, off, n int) trimmedRun {
	start := off
	count := 0
	for start > 0 && count < n {
		_, size := utf8.DecodeLastRune(src[:start])
		if size <= 0 {
			size = 1
		}
		start -= size
		count++
	}
	return trimmedRun{text: string(src[start:off]), truncated: start > 0}
}

func runesAfter(src []byte, off, n int) trimmedRun {
	end := off
	// advance past the failing rune itself first
	if end < len(src) {
		_, size := utf8.DecodeRune(src[end:])
		if size <= 0 {
			size = 1
		}
		end += size
	}
	afterFailing := end
	count := 0
	for end < len(src) && count < n {
		_, size := utf8.DecodeRune(src[end:])
		if size <= 0 {
			size = 1
		}
		end += size
		count++
	}
	return trimmedRun{text: string(src[afterFailing:end]), truncated: end < len(src)}
}

// classifyToken builds a best-effort types.Token describing what's sitting
// at the front of rem, for "expected X, found <kind> Y" diagnostics
// (core/types.Token's own role: naming what was found when a parse fails).
// Its Range is left zero-valued; callers report position separately via
// the surrounding *ParseError, so duplicating it onto the token would only
// invite the two to drift.
func classifyToken(rem []byte) types.Token {
	text := previewByte(rem)
	if text == "" {
		return types.Token{Type: types.EOF}
	}
	b := rem[0]
	switch {
	case b == '{':
		return types.Token{Type: types.LBRACE, Value: text}
	case b == '}':
		return types.Token{Type: types.RBRACE, Value: text}
	case b == '(':
		return types.Token{Type: types.LPAREN, Value: text}
	case b == ')':
		return types.Token{Type: types.RPAREN, Value: text}
	case b == ';':
		return types.Token{Type: types.SEMICOLON, Value: text}
	case b == ',':
		return types.Token{Type: types.COMMA, Value: text}
	case b == ':':
		return types.Token{Type: types.COLON, Value: text}
	case b == '$':
		return types.Token{Type: types.VARIABLE, Value: text}
	case b == '#':
		return types.Token{Type: types.COLOR, Value: text}
	case b == '\'' || b == '"':
		return types.Token{Type: types.STRING, Value: text}
	case b >= '0' && b <= '9':
		return types.Token{Type: types.NUMBER, Value: text}
	case lexer.IsWhitespace(b):
		return types.Token{Type: types.WHITESPACE, Value: text}
	case lexer.Identifier(rem) > 0:
		return types.Token{Type: types.IDENT, Value: text}
	default:
		return types.Token{Type: types.ILLEGAL, Value: text}
	}
}

func failingRune(src []byte, off int) string {
	if off >= len(src) {
		return ""
	}
	r, size := utf8.DecodeRune(src[off:])
	if r == utf8.RuneError && size <= 1 {
		return ""
	}
	return string(src[off : off+size])
}
