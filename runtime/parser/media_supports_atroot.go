package parser

import (
	"strings"

	"github.com/cascadelang/cascade/core/ast"
	"github.com/cascadelang/cascade/core/types"
	dialecterrors "github.com/cascadelang/cascade/pkgs/errors"
)

// --- @media ------------------------------------------------------------------

func (p *Parser) parseMediaRule(start types.SourcePosition) (ast.Statement, error) {
	p.skipTrivia()
	queries, err := p.parseMediaQueryList()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBracedBlock(ast.ScopeMedia)
	if err != nil {
		return nil, err
	}
	return ast.MediaRule{Base: p.spanFrom(start), Queries: queries, Body: body}, nil
}

// parseMediaQueryList parses a comma-separated query list, shared by @media
// and @import's trailing media qualifier (spec §4.6, parser.cpp's
// parse_media_query callers).
func (p *Parser) parseMediaQueryList() ([]ast.MediaQuery, error) {
	var queries []ast.MediaQuery
	for {
		p.skipTrivia()
		q, err := p.parseMediaQuery()
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
		p.skipTrivia()
		if !p.acceptByte(',') {
			break
		}
	}
	return queries, nil
}

// parseMediaQuery parses one `[not|only] <type> [and (<feature>)]*` item, or
// a bare feature-only query when no media type is given (spec §4.6,
// parser.cpp's parse_media_query).
func (p *Parser) parseMediaQuery() (ast.MediaQuery, error) {
	start := p.tr.Mark()
	var q ast.MediaQuery

	p.skipTrivia()
	if p.acceptKeyword("not") {
		q.Modifier = "not"
	} else if p.acceptKeyword("only") {
		q.Modifier = "only"
	}
	p.skipTrivia()

	haveType := false
	if name, hasInterp, ok := p.scanPropertyName(); ok {
		typeStart := p.tr.Mark()
		if hasInterp {
			schema, err := p.buildStringSchema(name, p.tr.Offset(), ast.QuoteNone)
			if err != nil {
				return ast.MediaQuery{}, err
			}
			p.tr.Advance(len(name))
			schema.Base = p.spanFrom(typeStart)
			q.Schema = &schema
		} else {
			p.tr.Advance(len(name))
			q.MediaType = strings.ToLower(string(name))
		}
		haveType = true
		p.skipTrivia()
	}

	if !haveType {
		feat, err := p.parseMediaExpression()
		if err != nil {
			return ast.MediaQuery{}, err
		}
		q.Features = append(q.Features, feat)
		p.skipTrivia()
	}

	for p.acceptKeyword("and") {
		p.skipTrivia()
		feat, err := p.parseMediaExpression()
		if err != nil {
			return ast.MediaQuery{}, err
		}
		q.Features = append(q.Features, feat)
		p.skipTrivia()
	}

	q.Range = p.since(start)
	return q, nil
}

// parseMediaExpression parses `(name)` or `(name: value)` (spec §4.6,
// parser.cpp's parse_media_expression).
func (p *Parser) parseMediaExpression() (ast.MediaFeature, error) {
	start := p.tr.Mark()
	p.skipTrivia()
	if !p.acceptByte('(') {
		return ast.MediaFeature{}, p.errf(dialecterrors.KindSyntactic, p.pos(), "media query expression must begin with '('")
	}
	p.skipTrivia()
	if b, ok := p.peekByte(); ok && b == ')' {
		return ast.MediaFeature{}, p.errf(dialecterrors.KindSyntactic, p.pos(), "media feature required in media query expression")
	}

	featStart := p.tr.Mark()
	featExpr, err := p.parseAdditive()
	if err == errNoFactor {
		return ast.MediaFeature{}, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected media feature name")
	}
	if err != nil {
		return ast.MediaFeature{}, err
	}
	name, ok := featExpr.(ast.StringConstant)
	if !ok {
		return ast.MediaFeature{}, p.errf(dialecterrors.KindSyntactic, featStart, "expected media feature name")
	}

	var value ast.Expression
	p.skipTrivia()
	if p.acceptByte(':') {
		p.skipTrivia()
		v, err := p.parseRequiredExpressionList("media feature")
		if err != nil {
			return ast.MediaFeature{}, err
		}
		value = v
	}
	p.skipTrivia()
	if !p.acceptByte(')') {
		return ast.MediaFeature{}, p.errf(dialecterrors.KindSyntactic, p.pos(), "unclosed parenthesis in media query expression")
	}
	return ast.MediaFeature{Name: name.Value, Value: value, Range: p.since(start)}, nil
}

// --- @supports -----------------------------------------------------------------

func (p *Parser) parseSupports(start types.SourcePosition) (ast.Statement, error) {
	p.skipTrivia()
	cond, err := p.parseSupportsCondition(true)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBracedBlock(ast.ScopeMedia)
	if err != nil {
		return nil, err
	}
	return ast.SupportsRule{Base: p.spanFrom(start), Condition: cond, Body: body}, nil
}

func (p *Parser) parseSupportsCondition(topLevel bool) (ast.SupportsCondition, error) {
	p.skipTrivia()
	if cond, matched, err := p.parseSupportsNegation(); err != nil {
		return nil, err
	} else if matched {
		return cond, nil
	}
	return p.parseSupportsOperator(topLevel)
}

func (p *Parser) parseSupportsNegation() (ast.SupportsCondition, bool, error) {
	start := p.tr.Mark()
	if !p.acceptKeyword("not") {
		return nil, false, nil
	}
	p.skipTrivia()
	cond, err := p.parseSupportsConditionInParens(true)
	if err != nil {
		return nil, false, err
	}
	return ast.SupportsNot{Base: p.spanFrom(start), Condition: cond}, true, nil
}

// parseSupportsOperator folds a left-associative and/or chain, rejecting a
// mix of "and" and "or" at the same nesting level without explicit parens
// (DESIGN.md Open Question decision 5, a deliberate tightening of the
// grammar the original parser leaves ambiguous).
func (p *Parser) parseSupportsOperator(topLevel bool) (ast.SupportsCondition, error) {
	start := p.tr.Mark()
	cond, err := p.parseSupportsConditionInParens(topLevel)
	if err != nil {
		return nil, err
	}
	if cond == nil {
		return nil, nil
	}

	conditions := []ast.SupportsCondition{cond}
	var kind ast.SupportsOpKind
	first := true
	for {
		save := p.tr.Clone()
		p.skipTrivia()
		var opKind ast.SupportsOpKind
		matched := true
		switch {
		case p.acceptKeyword("and"):
			opKind = ast.SupportsAnd
		case p.acceptKeyword("or"):
			opKind = ast.SupportsOr
		default:
			matched = false
		}
		if !matched {
			p.tr = save
			break
		}
		if !first && opKind != kind {
			return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), `mixing "and" and "or" in @supports requires parentheses`)
		}
		kind, first = opKind, false
		p.skipTrivia()
		right, err := p.parseSupportsConditionInParens(true)
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, right)
	}

	if len(conditions) == 1 {
		return cond, nil
	}
	return ast.SupportsOp{Base: p.spanFrom(start), Kind: kind, Conditions: conditions}, nil
}

func (p *Parser) parseSupportsInterpolation() (ast.SupportsCondition, bool, error) {
	rem := p.remaining()
	if len(rem) < 2 || rem[0] != '#' || rem[1] != '{' {
		return nil, false, nil
	}
	start := p.tr.Mark()
	depth := 1
	i := 2
	for i < len(rem) && depth > 0 {
		switch rem[i] {
		case '{':
			depth++
		case '}':
			depth--
		}
		i++
	}
	if depth != 0 {
		return nil, false, p.errf(dialecterrors.KindLexical, p.pos(), "unterminated interpolation")
	}
	schema, err := p.buildStringSchema(rem[:i], p.tr.Offset(), ast.QuoteNone)
	if err != nil {
		return nil, false, err
	}
	p.tr.Advance(i)
	schema.Base = p.spanFrom(start)
	return ast.SupportsInterpolation{Base: p.spanFrom(start), Schema: schema}, true, nil
}

func (p *Parser) parseSupportsDeclaration() (ast.SupportsCondition, error) {
	start := p.tr.Mark()
	p.skipTrivia()
	feature, err := p.parseAdditive()
	if err == errNoFactor {
		return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "@supports condition expected declaration")
	}
	if err != nil {
		return nil, err
	}
	p.skipTrivia()
	if !p.acceptByte(':') {
		return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "@supports condition expected declaration")
	}
	p.skipTrivia()
	value, err := p.parseExpressionList()
	if err == errNoFactor {
		return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "@supports condition expected declaration")
	}
	if err != nil {
		return nil, err
	}
	return ast.SupportsDeclaration{Base: p.spanFrom(start), Property: feature, Value: value}, nil
}

// parseSupportsConditionInParens parses an interpolation atom, a
// parenthesized sub-condition/declaration, or (when parens aren't
// required) reports no match by returning a nil condition with a nil error.
func (p *Parser) parseSupportsConditionInParens(parensRequired bool) (ast.SupportsCondition, error) {
	if interp, matched, err := p.parseSupportsInterpolation(); err != nil {
		return nil, err
	} else if matched {
		return interp, nil
	}

	p.skipTrivia()
	start := p.tr.Mark()
	if !p.acceptByte('(') {
		if parensRequired {
			return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected @supports condition (e.g. (display: flexbox))")
		}
		return nil, nil
	}
	p.skipTrivia()

	cond, err := p.parseSupportsCondition(false)
	if err != nil {
		return nil, err
	}
	if cond == nil {
		cond, err = p.parseSupportsDeclaration()
		if err != nil {
			return nil, err
		}
	}
	p.skipTrivia()
	if !p.acceptByte(')') {
		return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "unclosed parenthesis in @supports declaration")
	}
	return ast.SupportsParens{Base: p.spanFrom(start), Inner: cond}, nil
}
