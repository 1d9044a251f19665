package lexer

// InterpolationMode controls how quoted strings are treated while scanning
// for interpolation boundaries (spec §4.4).
type InterpolationMode int

const (
	// ModeConstant treats quoted strings inside the scanned range as opaque:
	// their contents are never searched for "#{", matching how a literal
	// quoted string nested in a value is scanned.
	ModeConstant InterpolationMode = iota
	// ModeCSS treats the range as raw CSS-literal text where quotes carry no
	// special scoping at all (used for e.g. custom-property bodies).
	ModeCSS
)

// Segment is one literal run or interpolation hole of a partitioned range.
// Expression sub-ranges are left unparsed here (byte offsets only); the
// parser re-enters with a fresh instance over [ExprStart, ExprEnd) to parse
// the expression (spec §4.4, §9 "Interpolation recursion").
type Segment struct {
	IsExpression        bool
	Literal             string
	ExprStart, ExprEnd int
}

// ScanError reports a lexical failure encountered while scanning for
// interpolation boundaries.
type ScanError struct {
	Offset  int
	Message string
}

func (e *ScanError) Error() string { return e.Message }

// Scan partitions src[begin:end) into literal segments and nested
// interpolation sub-ranges, honoring quoted-string scopes (per mode) and
// block comments, and balancing nested braces once inside an interpolation
// (spec §4.4). Adjacent literal segments are merged.
func Scan(src []byte, begin, end int, mode InterpolationMode) ([]Segment, error) {
	var segs []Segment
	litStart := begin
	i := begin

	flushLiteral := func(upTo int) {
		if upTo > litStart {
			lit := string(src[litStart:upTo])
			if n := len(segs); n > 0 && !segs[n-1].IsExpression {
				segs[n-1].Literal += lit
			} else {
				segs = append(segs, Segment{Literal: lit})
			}
		}
	}

	for i < end {
		switch {
		case mode == ModeConstant && (src[i] == '\'' || src[i] == '"'):
			n, closed := QuotedStringOpen(src[i:end])
			if !closed {
				return nil, &ScanError{Offset: i, Message: "unterminated string while scanning for interpolation"}
			}
			i += n
		case i+1 < end && src[i] == '/' && src[i+1] == '*':
			n, closed := BlockCommentOpen(src[i:end])
			if !closed {
				return nil, &ScanError{Offset: i, Message: "unterminated block comment while scanning for interpolation"}
			}
			i += n
		case i+1 < end && src[i] == '#' && src[i+1] == '{':
			flushLiteral(i)
			exprStart := i + 2
			depth := 1
			j := exprStart
			closeBrace := -1
		scanExpr:
			for j < end {
				switch {
				case src[j] == '\'' || src[j] == '"':
					n, closed := QuotedStringOpen(src[j:end])
					if !closed {
						return nil, &ScanError{Offset: j, Message: "unterminated string inside interpolation"}
					}
					j += n
				case j+1 < end && src[j] == '/' && src[j+1] == '*':
					n, closed := BlockCommentOpen(src[j:end])
					if !closed {
						return nil, &ScanError{Offset: j, Message: "unterminated block comment inside interpolation"}
					}
					j += n
				case src[j] == '{':
					depth++
					j++
				case src[j] == '}':
					depth--
					if depth == 0 {
						closeBrace = j
						break scanExpr
					}
					j++
				default:
					j++
				}
			}
			if closeBrace < 0 {
				return nil, &ScanError{Offset: exprStart, Message: "unterminated interpolation"}
			}
			j = closeBrace
			exprEnd := j
			if exprEnd == exprStart {
				return nil, &ScanError{Offset: exprStart, Message: "empty interpolation"}
			}
			segs = append(segs, Segment{IsExpression: true, ExprStart: exprStart, ExprEnd: exprEnd})
			i = j + 1
			litStart = i
		default:
			i++
		}
	}
	flushLiteral(end)
	return segs, nil
}

// HasInterpolation reports whether src[begin:end) contains a top-level
// "#{" not nested inside a quoted string (mode ModeConstant) — a cheap
// pre-check the lookahead oracle uses before committing to a full Scan.
func HasInterpolation(src []byte, begin, end int, mode InterpolationMode) bool {
	i := begin
	for i < end {
		switch {
		case mode == ModeConstant && (src[i] == '\'' || src[i] == '"'):
			n, closed := QuotedStringOpen(src[i:end])
			if !closed {
				return false
			}
			i += n
		case i+1 < end && src[i] == '/' && src[i+1] == '*':
			n, closed := BlockCommentOpen(src[i:end])
			if !closed {
				return false
			}
			i += n
		case i+1 < end && src[i] == '#' && src[i+1] == '{':
			return true
		default:
			i++
		}
	}
	return false
}
