package parser

import (
	"errors"
	"strconv"
	"strings"

	"github.com/cascadelang/cascade/core/ast"
	"github.com/cascadelang/cascade/core/types"
	dialecterrors "github.com/cascadelang/cascade/pkgs/errors"
	"github.com/cascadelang/cascade/runtime/lexer"
)

// errNoFactor is a sentinel signaling "no factor begins here" to callers
// deciding whether a list has run out of elements; it is never returned
// across a public API boundary.
var errNoFactor = errors.New("no factor at cursor")

var reservedFunctionNames = map[string]bool{"and": true, "or": true, "not": true}

// parseExpressionList is the grammar's comma level, the top entry point for
// a full value expression (spec §4.5). A single element is returned
// unwrapped (never boxed in a List), matching the "single element produced
// by a list level returns the element itself" rule.
func (p *Parser) parseExpressionList() (ast.Expression, error) {
	start := p.tr.Mark()
	first, err := p.parseSpaceList()
	if err != nil {
		return nil, err
	}
	elems := []ast.Expression{first}
	for {
		p.skipTrivia()
		if b, ok := p.peekByte(); !ok || b != ',' {
			break
		}
		p.tr.Advance(1)
		p.skipTrivia()
		// trailing comma tolerated
		if p.atListTerminator() {
			break
		}
		next, err := p.parseSpaceList()
		if err != nil {
			return nil, err
		}
		elems = append(elems, next)
	}
	if len(elems) == 1 {
		return elems[0], nil
	}
	return ast.List{Base: p.spanFrom(start), Elements: elems, Separator: ast.SepComma}, nil
}

// spanFrom builds an ast.Base covering [start, current cursor).
func (p *Parser) spanFrom(start types.SourcePosition) ast.Base {
	return ast.Base{Range: p.since(start)}
}

// atListTerminator reports whether the cursor sits at a byte that ends a
// list/value at any of the space/comma levels: `;`, `{`, `}`, `)`, `]`, or
// EOF.
func (p *Parser) atListTerminator() bool {
	b, ok := p.peekByte()
	if !ok {
		return true
	}
	switch b {
	case ';', '{', '}', ')', ']':
		return true
	}
	return false
}

// parseSpaceList is the grammar's space level: one or more disjunction
// expressions with no separator other than whitespace, collapsing to the
// single element when only one is found.
func (p *Parser) parseSpaceList() (ast.Expression, error) {
	start := p.tr.Mark()
	first, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	elems := []ast.Expression{first}
	for {
		p.skipTrivia()
		if p.atListTerminator() {
			break
		}
		if b, ok := p.peekByte(); ok && b == ',' {
			break
		}
		save := p.tr.Clone()
		next, err := p.parseOr()
		if err != nil {
			if err == errNoFactor {
				p.tr = save
				break
			}
			return nil, err
		}
		elems = append(elems, next)
	}
	if len(elems) == 1 {
		return elems[0], nil
	}
	return ast.List{Base: p.spanFrom(start), Elements: elems, Separator: ast.SepSpace}, nil
}

func (p *Parser) parseOr() (ast.Expression, error) {
	start := p.tr.Mark()
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		save := p.tr.Clone()
		p.skipTrivia()
		if _, ok := p.accept(lexer.Keyword("or")); !ok {
			p.tr = save
			break
		}
		p.skipTrivia()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryExpression{Base: p.spanFrom(start), Left: left, Right: right, Op: ast.OpOr}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expression, error) {
	start := p.tr.Mark()
	left, err := p.parseRelation()
	if err != nil {
		return nil, err
	}
	for {
		save := p.tr.Clone()
		p.skipTrivia()
		if _, ok := p.accept(lexer.Keyword("and")); !ok {
			p.tr = save
			break
		}
		p.skipTrivia()
		right, err := p.parseRelation()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryExpression{Base: p.spanFrom(start), Left: left, Right: right, Op: ast.OpAnd}
	}
	return left, nil
}

var relOps = []struct {
	lit string
	op  ast.BinaryOp
}{
	{"==", ast.OpEq}, {"!=", ast.OpNeq}, {"<=", ast.OpLte}, {">=", ast.OpGte}, {"<", ast.OpLt}, {">", ast.OpGt},
}

func (p *Parser) parseRelation() (ast.Expression, error) {
	start := p.tr.Mark()
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		spaceBefore := p.skipTriviaSpaced()
		matched := false
		for _, ro := range relOps {
			if _, ok := p.accept(lexer.Lit(ro.lit)); ok {
				spaceAfter := p.skipTriviaSpaced()
				right, err := p.parseAdditive()
				if err != nil {
					return nil, err
				}
				left = ast.BinaryExpression{Base: p.spanFrom(start), Left: left, Right: right, Op: ro.op, SpaceBefore: spaceBefore, SpaceAfter: spaceAfter}
				matched = true
				break
			}
		}
		if !matched {
			break
		}
	}
	return left, nil
}

// parseAdditive implements the "-"/"+" sign-vs-operator disambiguation
// (spec §4.5): a '-' preceded by whitespace but directly followed by a
// digit or '.' (no space) looks like the start of the next space-list
// element's negative literal, not a subtraction operator, so the additive
// loop backs off and lets the caller's space-list pick it up fresh.
func (p *Parser) parseAdditive() (ast.Expression, error) {
	start := p.tr.Mark()
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		save := p.tr.Clone()
		spaceBefore := p.skipTriviaSpaced()
		b, ok := p.peekByte()
		if !ok || (b != '+' && b != '-') {
			p.tr = save
			break
		}
		p.tr.Advance(1)
		nb, hasNext := p.peekByte()
		spaceAfter := !hasNext || lexer.IsWhitespace(nb)
		if b == '-' && spaceBefore && !spaceAfter && hasNext && isDigitOrDot(nb) {
			p.tr = save
			break
		}
		p.skipTrivia()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		op := ast.OpAdd
		if b == '-' {
			op = ast.OpSub
		}
		left = ast.BinaryExpression{Base: p.spanFrom(start), Left: left, Right: right, Op: op, SpaceBefore: spaceBefore, SpaceAfter: spaceAfter}
	}
	return left, nil
}

func isDigitOrDot(b byte) bool { return (b >= '0' && b <= '9') || b == '.' }

func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	start := p.tr.Mark()
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		save := p.tr.Clone()
		spaceBefore := p.skipTriviaSpaced()
		b, ok := p.peekByte()
		if !ok || (b != '*' && b != '/' && b != '%') {
			p.tr = save
			break
		}
		p.tr.Advance(1)
		spaceAfter := p.skipTriviaSpaced()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		var op ast.BinaryOp
		switch b {
		case '*':
			op = ast.OpMul
		case '/':
			op = ast.OpDiv
		case '%':
			op = ast.OpMod
		}
		if op == ast.OpDiv {
			if n, ok := left.(ast.Number); ok {
				n.IsDelayed = true
				left = n
			}
			if n, ok := right.(ast.Number); ok {
				n.IsDelayed = true
				right = n
			}
		}
		left = ast.BinaryExpression{
			Base: p.spanFrom(start), Left: left, Right: right, Op: op,
			IsDelayedSlash: op == ast.OpDiv,
			SpaceBefore:    spaceBefore, SpaceAfter: spaceAfter,
		}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	start := p.tr.Mark()
	if _, ok := p.accept(lexer.Keyword("not")); ok {
		p.skipTrivia()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.UnaryExpression{Base: p.spanFrom(start), Op: ast.UnaryNot, Operand: operand}, nil
	}
	if b, ok := p.peekByte(); ok {
		// A sign directly attached to a digit/'.' is part of the number
		// literal itself (lexer.Number already consumes it) rather than a
		// separate unary node, so Number.Negative/Raw round-trip correctly
		// (spec §3 invariants, §8 property 2).
		if (b == '+' || b == '-') && len(p.remaining()) > 1 && isDigitOrDot(p.remaining()[1]) {
			return p.parseFactor()
		}
		var op ast.UnaryOp
		switch b {
		case '+':
			op = ast.UnaryPlus
		case '-':
			op = ast.UnaryMinus
		case '/':
			op = ast.UnarySlash
		default:
			return p.parseFactor()
		}
		p.tr.Advance(1)
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.UnaryExpression{Base: p.spanFrom(start), Op: op, Operand: operand}, nil
	}
	return p.parseFactor()
}

// parseFactor parses the grammar's leaf level: parens, brackets, maps,
// function calls, literals, variables, and `&`. Returns errNoFactor (not a
// real parse error) when the cursor doesn't begin any recognized factor, so
// list-level callers can treat "ran out of elements" distinctly from a
// malformed one.
func (p *Parser) parseFactor() (ast.Expression, error) {
	start := p.tr.Mark()
	rem := p.remaining()

	if len(rem) == 0 {
		return nil, errNoFactor
	}

	switch rem[0] {
	case '(':
		return p.parseParenExpr()
	case '[':
		return p.parseBracketList()
	case '$':
		if n := lexer.Variable(rem); n > 0 {
			name := lexer.NormalizeIdent(string(rem[1:n]))
			p.tr.Advance(n)
			return ast.Variable{Base: p.spanFrom(start), Name: name}, nil
		}
	case '&':
		p.tr.Advance(1)
		return ast.ParentReference{Base: p.spanFrom(start)}, nil
	case '\'', '"':
		return p.parseQuotedString()
	}

	if rem[0] == '#' {
		if n := lexer.HexColor(rem); n > 0 {
			txt, _ := p.accept(fixedLen(n))
			return buildColor(p.spanFrom(start), txt), nil
		}
	}

	if n := lexer.Dimension(rem); n > 0 {
		txt, _ := p.accept(fixedLen(n))
		return buildNumber(p.spanFrom(start), txt), nil
	}
	if n := lexer.Percentage(rem); n > 0 {
		txt, _ := p.accept(fixedLen(n))
		return buildNumber(p.spanFrom(start), txt), nil
	}
	if n := lexer.Number(rem); n > 0 {
		txt, _ := p.accept(fixedLen(n))
		return buildNumber(p.spanFrom(start), txt), nil
	}

	if n := lexer.Identifier(rem); n > 0 {
		name := string(rem[:n])
		lower := strings.ToLower(name)
		// function call: identifier immediately followed by '(' with no space
		if n < len(rem) && rem[n] == '(' {
			if reservedFunctionNames[lower] {
				return nil, p.errf(dialecterrors.KindSyntactic, start, "%q is a reserved word and cannot be used as a function name", name)
			}
			p.tr.Advance(n)
			return p.parseFunctionCallArgs(start, name)
		}
		p.tr.Advance(n)
		switch lower {
		case "true":
			return ast.Boolean{Base: p.spanFrom(start), Value: true}, nil
		case "false":
			return ast.Boolean{Base: p.spanFrom(start), Value: false}, nil
		case "null":
			return ast.Null{Base: p.spanFrom(start)}, nil
		}
		return ast.StringConstant{Base: p.spanFrom(start), Value: name}, nil
	}

	return nil, errNoFactor
}

func fixedLen(n int) lexer.MatchFunc {
	return func([]byte) int { return n }
}

// buildNumber parses txt (as matched by lexer.Number/Dimension/Percentage)
// into an ast.Number, preserving its exact source text for the round-trip
// testable property (spec §8 property 2).
func buildNumber(rng ast.Base, txt string) ast.Number {
	n := ast.Number{Base: rng, Raw: txt}
	body := txt
	if strings.HasPrefix(body, "+") || strings.HasPrefix(body, "-") {
		n.Negative = body[0] == '-'
		body = body[1:]
	}
	numEnd := len(body)
	for i, r := range body {
		if !(r >= '0' && r <= '9' || r == '.') {
			numEnd = i
			break
		}
	}
	numPart := body[:numEnd]
	unit := body[numEnd:]
	if strings.HasSuffix(unit, "%") && unit == "%" {
		n.Unit = "%"
	} else {
		n.Unit = unit
	}
	intPart := numPart
	if dot := strings.IndexByte(numPart, '.'); dot >= 0 {
		intPart = numPart[:dot]
	}
	n.HasLeadingZero = len(intPart) > 1 && intPart[0] == '0'
	val, err := strconv.ParseFloat(numPart, 64)
	if err == nil {
		if n.Negative {
			val = -val
		}
		n.Value = val
	}
	return n
}

func buildColor(rng ast.Base, txt string) ast.Color {
	c := ast.Color{Base: rng, Disp: txt, A: 1}
	hex := txt[1:]
	expand := func(h string) string {
		if len(h) == 1 {
			return h + h
		}
		return h
	}
	switch len(hex) {
	case 3, 4:
		r := expand(string(hex[0]))
		g := expand(string(hex[1]))
		b := expand(string(hex[2]))
		c.R = hexByte(r)
		c.G = hexByte(g)
		c.B = hexByte(b)
		if len(hex) == 4 {
			c.A = float64(hexByte(expand(string(hex[3])))) / 255
		}
	case 6, 8:
		c.R = hexByte(hex[0:2])
		c.G = hexByte(hex[2:4])
		c.B = hexByte(hex[4:6])
		if len(hex) == 8 {
			c.A = float64(hexByte(hex[6:8])) / 255
		}
	}
	return c
}

func hexByte(h string) uint8 {
	v, err := strconv.ParseUint(h, 16, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}

// parseQuotedString parses a single- or double-quoted string, producing a
// StringSchema when interpolation is present and a plain StringQuoted
// otherwise.
func (p *Parser) parseQuotedString() (ast.Expression, error) {
	start := p.tr.Mark()
	rem := p.remaining()
	quoteByte := rem[0]
	n, closed := lexer.QuotedStringOpen(rem)
	if !closed {
		return nil, p.errf(dialecterrors.KindLexical, start, "unterminated string")
	}
	raw := rem[:n]
	inner := raw[1 : len(raw)-1]
	innerStartOff := p.tr.Offset() + 1

	quote := ast.QuoteSingle
	if quoteByte == '"' {
		quote = ast.QuoteDouble
	}

	if lexer.HasInterpolation(inner, 0, len(inner), lexer.ModeConstant) {
		schema, err := p.buildStringSchema(inner, innerStartOff, quote)
		if err != nil {
			return nil, err
		}
		p.tr.Advance(n)
		schema.Base = p.spanFrom(start)
		return schema, nil
	}

	p.tr.Advance(n)
	return ast.StringQuoted{Base: p.spanFrom(start), Value: unescapeString(string(inner)), Quote: quote}, nil
}

func unescapeString(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			b.WriteByte(s[i+1])
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// buildStringSchema partitions src (relative to a source buffer whose
// absolute offset of src[0] is baseOffset) into a StringSchema, reparsing
// each interpolation sub-range with a fresh Parser sharing this one's
// source metadata and back-trace (spec §4.4, §9 "Interpolation recursion").
func (p *Parser) buildStringSchema(src []byte, baseOffset int, quote ast.QuoteStyle) (ast.StringSchema, error) {
	segs, serr := lexer.Scan(src, 0, len(src), lexer.ModeConstant)
	if serr != nil {
		se := serr.(*lexer.ScanError)
		pos := p.offsetToPosition(baseOffset + se.Offset)
		return ast.StringSchema{}, p.errf(dialecterrors.KindLexical, pos, "%s", se.Message)
	}
	parts := make([]ast.StringSchemaValue, 0, len(segs))
	for _, seg := range segs {
		if !seg.IsExpression {
			parts = append(parts, ast.StringSchemaValue{Literal: seg.Literal})
			continue
		}
		exprSrc := src[seg.ExprStart:seg.ExprEnd]
		rngStart := p.offsetToPosition(baseOffset + seg.ExprStart)
		rngEnd := p.offsetToPosition(baseOffset + seg.ExprEnd)
		rng := ast.NewRange(p.path, rngStart, rngEnd)
		expr, err := p.parseSubExpression(exprSrc, rng)
		if err != nil {
			return ast.StringSchema{}, err
		}
		parts = append(parts, ast.StringSchemaValue{IsExpression: true, Expr: expr, Range: rng})
	}
	return ast.StringSchema{Parts: parts, Quote: quote}, nil
}

// offsetToPosition resolves an absolute byte offset in p.src to a
// line/column position by scanning from the start of the buffer. Used only
// for interpolation sub-ranges, which are rare relative to total parse
// work.
func (p *Parser) offsetToPosition(offset int) types.SourcePosition {
	tmp := lexer.NewTracker(p.path, p.src)
	tmp.Advance(offset)
	return tmp.Position()
}

// parseSubExpression parses src (an interpolation's inner byte range) as a
// full expression list using a fresh Parser instance, matching spec §4.4
// ("the inner range is handed to a fresh parser instance... that parses a
// full expression list").
func (p *Parser) parseSubExpression(src []byte, rng types.SourceRange) (ast.Expression, error) {
	sub := newParser(src, p.path, p.importer, p.childTrace(rng), nil)
	sub.nestingLimit = p.nestingLimit
	sub.logger = p.logger
	sub.knownNames = p.knownNames
	sub.tracesOn = p.tracesOn
	sub.skipTrivia()
	expr, err := sub.parseExpressionList()
	if err != nil {
		return nil, err
	}
	sub.skipTrivia()
	if !sub.atEnd() {
		return nil, sub.errf(dialecterrors.KindSyntactic, sub.pos(), "unexpected trailing input inside interpolation")
	}
	return expr, nil
}

// parseParenExpr parses a parenthesized expression, which is either a plain
// list (possibly unwrapped to its single element), or a Map when the first
// element is followed by ':' (spec §4.5).
func (p *Parser) parseParenExpr() (ast.Expression, error) {
	start := p.tr.Mark()
	restore, err := p.enterNesting()
	if err != nil {
		return nil, err
	}
	defer restore()

	p.tr.Advance(1) // '('
	p.skipTrivia()
	if p.acceptByte(')') {
		return ast.List{Base: p.spanFrom(start)}, nil
	}

	firstKey, err := p.parseSpaceList()
	if err != nil {
		return nil, err
	}
	p.skipTrivia()
	if p.acceptByte(':') {
		p.skipTrivia()
		firstVal, err := p.parseSpaceList()
		if err != nil {
			return nil, err
		}
		entries := []ast.MapEntry{{Key: firstKey, Value: firstVal}}
		for {
			p.skipTrivia()
			if p.acceptByte(')') {
				return ast.Map{Base: p.spanFrom(start), Entries: entries}, nil
			}
			if !p.acceptByte(',') {
				return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected ',' or ')' in map literal")
			}
			p.skipTrivia()
			if p.acceptByte(')') {
				return ast.Map{Base: p.spanFrom(start), Entries: entries}, nil
			}
			key, err := p.parseSpaceList()
			if err != nil {
				return nil, err
			}
			p.skipTrivia()
			if !p.acceptByte(':') {
				return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected ':' after map key")
			}
			p.skipTrivia()
			val, err := p.parseSpaceList()
			if err != nil {
				return nil, err
			}
			entries = append(entries, ast.MapEntry{Key: key, Value: val})
		}
	}

	elems := []ast.Expression{firstKey}
	for {
		p.skipTrivia()
		if p.acceptByte(')') {
			break
		}
		if !p.acceptByte(',') {
			return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected ',' or ')'")
		}
		p.skipTrivia()
		if p.acceptByte(')') {
			break
		}
		next, err := p.parseSpaceList()
		if err != nil {
			return nil, err
		}
		elems = append(elems, next)
	}
	if len(elems) == 1 {
		return elems[0], nil
	}
	return ast.List{Base: p.spanFrom(start), Elements: elems, Separator: ast.SepComma}, nil
}

// parseBracketList parses `[...]`: always a List even with one element
// (Bracketed: true protects it from the single-element unwrap rule); the
// separator is inferred as comma if any comma appears, else space (spec
// §4.5).
func (p *Parser) parseBracketList() (ast.Expression, error) {
	start := p.tr.Mark()
	restore, err := p.enterNesting()
	if err != nil {
		return nil, err
	}
	defer restore()

	p.tr.Advance(1) // '['
	p.skipTrivia()
	if p.acceptByte(']') {
		return ast.List{Base: p.spanFrom(start), Bracketed: true}, nil
	}

	var elems []ast.Expression
	sawComma := false
	for {
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		p.skipTrivia()
		if p.acceptByte(']') {
			break
		}
		if p.acceptByte(',') {
			sawComma = true
			p.skipTrivia()
			if p.acceptByte(']') {
				break
			}
			continue
		}
	}
	sep := ast.SepSpace
	if sawComma {
		sep = ast.SepComma
	}
	return ast.List{Base: p.spanFrom(start), Elements: elems, Separator: sep, Bracketed: true}, nil
}

// parseFunctionCallArgs parses the `(args)` tail of a function call whose
// name and opening paren have already been identified; start marks the
// beginning of the function name.
func (p *Parser) parseFunctionCallArgs(start types.SourcePosition, name string) (ast.Expression, error) {
	restore, err := p.enterNesting()
	if err != nil {
		return nil, err
	}
	defer restore()

	p.tr.Advance(1) // '('
	args, err := p.parseArgumentList()
	if err != nil {
		return nil, err
	}
	return ast.FunctionCall{Base: p.spanFromPos(start), Name: lexer.NormalizeIdent(name), Arguments: args}, nil
}

func (p *Parser) spanFromPos(start types.SourcePosition) ast.Base {
	return ast.Base{Range: types.SourceRange{Path: p.path, Start: start, End: p.pos()}}
}

// parseArgumentList parses a comma-separated `(args)` list already past the
// opening '('; consumes the closing ')'. Each argument may be positional,
// named (`$name: value`), a spread (`value...`), or a keyword spread
// (`$map...`, distinguished from list-spread only at evaluation time based
// on the spread value's runtime shape — here it's simply IsSpread, and
// IsKeywordSpread is left for a future evaluator to set when it resolves
// the spread value to a Map).
func (p *Parser) parseArgumentList() ([]ast.Argument, error) {
	p.skipTrivia()
	if p.acceptByte(')') {
		return nil, nil
	}
	var args []ast.Argument
	for {
		arg, err := p.parseArgument()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipTrivia()
		if p.acceptByte(')') {
			break
		}
		if !p.acceptByte(',') {
			return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected ',' or ')' in argument list")
		}
		p.skipTrivia()
		if p.acceptByte(')') {
			break
		}
	}
	return args, nil
}

func (p *Parser) parseArgument() (ast.Argument, error) {
	start := p.tr.Mark()
	rem := p.remaining()
	if rem[0] == '$' {
		if n := lexer.Variable(rem); n > 0 {
			save := p.tr.Clone()
			p.tr.Advance(n)
			p.skipTrivia()
			if p.acceptByte(':') {
				p.skipTrivia()
				val, err := p.parseSpaceList()
				if err != nil {
					return ast.Argument{}, err
				}
				return ast.Argument{Name: lexer.NormalizeIdent(string(rem[1:n])), Value: val, Range: p.since(start)}, nil
			}
			p.tr = save
		}
	}
	val, err := p.parseSpaceList()
	if err != nil {
		return ast.Argument{}, err
	}
	isSpread := false
	if _, ok := p.accept(lexer.Lit("...")); ok {
		isSpread = true
	}
	return ast.Argument{Value: val, IsSpread: isSpread, Range: p.since(start)}, nil
}
