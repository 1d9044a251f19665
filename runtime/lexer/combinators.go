package lexer

import (
	"golang.org/x/text/unicode/norm"
)

// MatchFunc inspects bytes starting at the front of s and returns how many
// bytes matched (0 meaning no match). A MatchFunc never has side effects;
// it is the parser's job to commit a match by advancing its Tracker (spec
// §4.2).
type MatchFunc func(s []byte) int

// --- atomic combinators ---------------------------------------------------

// Exactly matches a single literal byte.
func Exactly(c byte) MatchFunc {
	return func(s []byte) int {
		if len(s) > 0 && s[0] == c {
			return 1
		}
		return 0
	}
}

// Lit matches a literal byte string with no word-boundary requirement.
func Lit(word string) MatchFunc {
	b := []byte(word)
	return func(s []byte) int {
		if len(s) < len(b) {
			return 0
		}
		for i := range b {
			if s[i] != b[i] {
				return 0
			}
		}
		return len(b)
	}
}

// Keyword matches a literal word only when not immediately followed by an
// identifier-continuation byte, so "and" doesn't match the start of
// "android".
func Keyword(word string) MatchFunc {
	lit := Lit(word)
	return func(s []byte) int {
		n := lit(s)
		if n == 0 {
			return 0
		}
		if n < len(s) && isIdentContByte(s[n]) {
			return 0
		}
		return n
	}
}

// --- character classes -----------------------------------------------------

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigitByte(b byte) bool { return b >= '0' && b <= '9' }

func isHexByte(b byte) bool {
	return isDigitByte(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isIdentStartByte(b byte) bool {
	return isASCIILetter(b) || b == '_' || b == '-' || b >= 0x80
}

func isIdentContByte(b byte) bool {
	return isIdentStartByte(b) || isDigitByte(b)
}

// IsWhitespace reports whether b is CSS whitespace (space, tab, newline,
// carriage return, form feed).
func IsWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

// --- compound combinators ---------------------------------------------------

// Sequence matches each MatchFunc in order against the advancing tail of s;
// fails (returns 0) unless all match.
func Sequence(fns ...MatchFunc) MatchFunc {
	return func(s []byte) int {
		total := 0
		for _, fn := range fns {
			n := fn(s[total:])
			if n == 0 {
				return 0
			}
			total += n
		}
		return total
	}
}

// Alternatives returns the first matching MatchFunc's length.
func Alternatives(fns ...MatchFunc) MatchFunc {
	return func(s []byte) int {
		for _, fn := range fns {
			if n := fn(s); n > 0 {
				return n
			}
		}
		return 0
	}
}

// ZeroPlus greedily repeats fn, never failing.
func ZeroPlus(fn MatchFunc) MatchFunc {
	return func(s []byte) int {
		total := 0
		for total < len(s) {
			n := fn(s[total:])
			if n == 0 {
				break
			}
			total += n
		}
		return total
	}
}

// OnePlus requires at least one match of fn.
func OnePlus(fn MatchFunc) MatchFunc {
	zp := ZeroPlus(fn)
	return func(s []byte) int {
		n := zp(s)
		if n == 0 {
			return 0
		}
		return n
	}
}

// Optional always succeeds, matching zero or one occurrence of fn.
func Optional(fn MatchFunc) MatchFunc {
	return func(s []byte) int {
		return fn(s)
	}
}

// --- semantic combinators ----------------------------------------------------

// Identifier matches a CSS/dialect identifier: an identifier-start byte
// followed by zero or more identifier-continuation bytes (letters, digits,
// '-', '_', and any non-ASCII byte, matching the dialect's permissive
// superset of the CSS identifier grammar).
func Identifier(s []byte) int {
	if len(s) == 0 || !isIdentStartByte(s[0]) {
		return 0
	}
	i := 1
	for i < len(s) && isIdentContByte(s[i]) {
		i++
	}
	return i
}

// Variable matches `$` followed by an identifier.
func Variable(s []byte) int {
	if len(s) == 0 || s[0] != '$' {
		return 0
	}
	n := Identifier(s[1:])
	if n == 0 {
		return 0
	}
	return 1 + n
}

// Placeholder matches `%` followed by an identifier.
func Placeholder(s []byte) int {
	if len(s) == 0 || s[0] != '%' {
		return 0
	}
	n := Identifier(s[1:])
	if n == 0 {
		return 0
	}
	return 1 + n
}

// Number matches an optional sign, digits, an optional fractional part, and
// (unlike Dimension) stops before any trailing identifier/unit or '%'.
func Number(s []byte) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < len(s) && isDigitByte(s[i]) {
		i++
	}
	hasIntDigits := i > start
	if i < len(s) && s[i] == '.' {
		fracStart := i + 1
		j := fracStart
		for j < len(s) && isDigitByte(s[j]) {
			j++
		}
		if j > fracStart {
			i = j
		} else if !hasIntDigits {
			return 0
		}
	} else if !hasIntDigits {
		return 0
	}
	return i
}

// Dimension matches a Number immediately followed by a unit identifier
// (e.g. "16px", "1.5em"); it does not match a bare number.
func Dimension(s []byte) int {
	n := Number(s)
	if n == 0 {
		return 0
	}
	u := Identifier(s[n:])
	if u == 0 {
		return 0
	}
	return n + u
}

// Percentage matches a Number immediately followed by '%'.
func Percentage(s []byte) int {
	n := Number(s)
	if n == 0 || n >= len(s) || s[n] != '%' {
		return 0
	}
	return n + 1
}

// HexColor matches '#' followed by 3, 4, 6, or 8 hex digits.
func HexColor(s []byte) int {
	if len(s) == 0 || s[0] != '#' {
		return 0
	}
	n := 0
	for n < len(s)-1 && n < 8 && isHexByte(s[n+1]) {
		n++
	}
	switch n {
	case 3, 4, 6, 8:
		return n + 1
	default:
		return 0
	}
}

// QuotedString matches a single- or double-quoted string, honoring
// backslash escapes, and returns the full match including quotes. It does
// not return a partial match for an unterminated string: callers needing to
// distinguish "no match" from "unterminated" should use QuotedStringOpen.
func QuotedString(s []byte) int {
	n, closed := QuotedStringOpen(s)
	if !closed {
		return 0
	}
	return n
}

// QuotedStringOpen scans a quoted string starting at s[0] (which must be a
// quote character) and returns the number of bytes consumed plus whether a
// closing quote was found. When closed is false, n is the number of bytes
// up to the end of the buffer (useful for "unterminated string" error
// ranges).
func QuotedStringOpen(s []byte) (n int, closed bool) {
	if len(s) == 0 || (s[0] != '\'' && s[0] != '"') {
		return 0, false
	}
	quote := s[0]
	i := 1
	for i < len(s) {
		switch s[i] {
		case '\\':
			if i+1 < len(s) {
				i += 2
				continue
			}
			i++
		case quote:
			return i + 1, true
		case '\n':
			return i, false
		default:
			i++
		}
	}
	return i, false
}

// BlockComment matches a terminated `/* ... */`; an unterminated comment
// reports 0 (no match). BlockCommentOpen reports the scanned length and an
// explicit closed flag for callers that need to tell the two apart.
func BlockComment(s []byte) int {
	n, closed := BlockCommentOpen(s)
	if !closed {
		return 0
	}
	return n
}

// BlockCommentOpen scans `/* ... */` starting at s[0:2] == "/*" and reports
// whether a terminating "*/" was found.
func BlockCommentOpen(s []byte) (n int, closed bool) {
	if len(s) < 2 || s[0] != '/' || s[1] != '*' {
		return 0, false
	}
	for i := 2; i+1 < len(s); i++ {
		if s[i] == '*' && s[i+1] == '/' {
			return i + 2, true
		}
	}
	return len(s), false
}

// LineComment matches `// ...` through end of line (exclusive of the
// newline), the dialect's non-CSS-standard comment form.
func LineComment(s []byte) int {
	if len(s) < 2 || s[0] != '/' || s[1] != '/' {
		return 0
	}
	i := 2
	for i < len(s) && s[i] != '\n' {
		i++
	}
	return i
}

// URIPrefix matches the literal `url(` token that begins a URL function.
func URIPrefix(s []byte) int {
	return Lit("url(")(s)
}

// InterpolantStart matches the literal `#{` that opens an interpolation.
func InterpolantStart(s []byte) int {
	return Lit("#{")(s)
}

// --- identifier normalization -------------------------------------------------

// NormalizeIdent canonicalizes a variable/mixin/function name: '_' and '-'
// are treated as equivalent, with '-' the canonical form (spec §4.2), and
// the result is NFC-normalized so visually identical multi-byte identifiers
// that differ only in Unicode decomposition (e.g. a precomposed "é" versus
// "e" + combining acute) compare equal. Normalization happens here, at
// AST-construction time, never while matching raw source text.
func NormalizeIdent(raw string) string {
	folded := make([]byte, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '_' {
			folded[i] = '-'
		} else {
			folded[i] = raw[i]
		}
	}
	return string(norm.NFC.Bytes(folded))
}
