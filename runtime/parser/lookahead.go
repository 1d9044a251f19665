package parser

import (
	"github.com/cascadelang/cascade/runtime/lexer"
)

// lookaheadResult is the oracle's verdict (spec §4.3): whether a terminator
// was found, where, whether the scanned text carried interpolation, whether
// it parses as a plain (non-interpolated) construct, and whether it looks
// like a custom-property declaration rather than a selector.
type lookaheadResult struct {
	found            bool
	endOffset        int // offset of the terminator byte, valid when found
	hasInterpolants  bool
	parsable         bool
	isCustomProperty bool
}

// lookaheadSelector decides whether the upcoming text parses as a selector
// vs. a declaration (spec §4.3 "lookahead_selector"): terminator is '{' or
// '('. It also flags a leading "--" (a custom property can never be a
// selector) and the colon-disambiguation rule from spec §4.3: the first ':'
// of the scanned text (outside strings, comments and interpolation) decides;
// when it is the last byte of the buffer or is immediately followed by
// whitespace (or the text starts with "--"), the text reads as a
// declaration, not a pseudo-class. Later colons do not change the verdict.
// The text before that ':' is not checked to be an identifier.
func (p *Parser) lookaheadSelector() lookaheadResult {
	return p.lookaheadScan(func(b byte) bool { return b == '{' || b == '(' })
}

// lookaheadInclude is lookaheadSelector with ';' and '}' added as
// terminators (spec §4.3 "lookahead_include"), used to decide whether an
// @extend's selector target is followed directly by a statement terminator.
func (p *Parser) lookaheadInclude() lookaheadResult {
	return p.lookaheadScan(func(b byte) bool { return b == '{' || b == '(' || b == ';' || b == '}' })
}

// lookaheadValue decides whether a value contains interpolation (spec §4.3
// "lookahead_value"): terminator is '{', '}', or ';'.
func (p *Parser) lookaheadValue() lookaheadResult {
	return p.lookaheadScan(func(b byte) bool { return b == '{' || b == ';' || b == '}' })
}

// lookaheadScan performs the shared speculative scan: it walks a cloned
// tracker forward from the current cursor, honoring quoted-string and
// block-comment scopes, until isTerminator reports true or the buffer ends,
// recording whether '#{' interpolation was seen and whether the scanned
// prefix looks like a custom-property name followed by ':'. Nothing here
// ever mutates the parser's real cursor (spec §9 "Lookahead that does not
// advance").
func (p *Parser) lookaheadScan(isTerminator func(byte) bool) lookaheadResult {
	src := p.src
	start := p.tr.Offset()
	i := start
	end := len(src)

	couldBeProperty := i+1 < end && src[i] == '-' && src[i+1] == '-'
	couldBeEscaped := false
	isCustomProperty := false
	colonSeen := false
	hasInterpolants := false

	for i < end {
		b := src[i]

		if b == '\'' || b == '"' {
			n, closed := lexer.QuotedStringOpen(src[i:end])
			if !closed {
				break
			}
			i += n
			couldBeEscaped = false
			continue
		}
		if i+1 < end && b == '/' && src[i+1] == '*' {
			n, closed := lexer.BlockCommentOpen(src[i:end])
			if !closed {
				break
			}
			i += n
			couldBeEscaped = false
			continue
		}
		if i+1 < end && b == '#' && src[i+1] == '{' {
			hasInterpolants = true
			i = skipInterpolationSpan(src, i, end)
			couldBeEscaped = false
			continue
		}
		if isTerminator(b) {
			break
		}
		if b == ':' && !couldBeEscaped && !colonSeen {
			colonSeen = true
			atEndOfScan := i+1 >= end
			nextIsSpace := !atEndOfScan && lexer.IsWhitespace(src[i+1])
			isCustomProperty = couldBeProperty || atEndOfScan || nextIsSpace
		}
		couldBeEscaped = b == '\\'
		i++
	}

	rv := lookaheadResult{isCustomProperty: isCustomProperty, hasInterpolants: hasInterpolants}
	if i < end && isTerminator(src[i]) {
		rv.found = true
		rv.endOffset = i
	}
	rv.parsable = !hasInterpolants
	return rv
}

// skipInterpolationSpan returns the offset just past the balanced "}" that
// closes the "#{" found at src[i:i+2), honoring nested braces and quoted
// strings and comments inside the interpolated expression (mirrors the
// scanExpr loop in lexer.Scan). If the span never closes, it returns end so
// the outer scan simply runs out of input rather than looping forever.
func skipInterpolationSpan(src []byte, i, end int) int {
	j := i + 2
	depth := 1
	for j < end && depth > 0 {
		switch {
		case src[j] == '\'' || src[j] == '"':
			n, closed := lexer.QuotedStringOpen(src[j:end])
			if !closed {
				return end
			}
			j += n
		case j+1 < end && src[j] == '/' && src[j+1] == '*':
			n, closed := lexer.BlockCommentOpen(src[j:end])
			if !closed {
				return end
			}
			j += n
		case src[j] == '{':
			depth++
			j++
		case src[j] == '}':
			depth--
			j++
		default:
			j++
		}
	}
	return j
}
