package parser

import (
	"strings"

	"github.com/cascadelang/cascade/core/ast"
	dialecterrors "github.com/cascadelang/cascade/pkgs/errors"
	"github.com/cascadelang/cascade/runtime/lexer"
)

// selectorCarryingPseudos accept a nested selector list as their argument (spec
// §4.7); vendor prefixes are stripped before the check, matching the
// original's Util::unvendor.
var selectorCarryingPseudos = map[string]bool{
	"not": true, "matches": true, "current": true, "any": true,
	"has": true, "host": true, "host-context": true, "slotted": true,
}

// parseSelectorHost parses a ruleset/@extend selector target, dispatching to
// a SelectorSchema when the oracle finds interpolation ahead of the chosen
// terminator, otherwise to a concrete SelectorList (spec §4.6 items 9-10,
// §4.7, GLOSSARY "Selector schema"). endOffset is the byte offset the
// lookahead oracle identified as the end of the selector text; it is used
// only for the schema path, where the selector's final shape is deferred.
func (p *Parser) parseSelectorHost(lr lookaheadResult) (ast.SelectorNode, error) {
	if lr.hasInterpolants {
		return p.parseSelectorSchema(lr.endOffset)
	}
	list, err := p.parseSelectorList()
	if err != nil {
		return nil, err
	}
	return list, nil
}

// parseSelectorSchema builds a SelectorSchema spanning [cursor, endOffset)
// by reusing the expression parser's interpolation-aware schema builder
// (spec §4.7, §9 "Interpolation recursion"); its Chroot flag is the negation
// of allow_parent at the point the schema was opened (SPEC_FULL open question
// decisions carry no special behavior here: chroot is simply !allow_parent,
// matching parse_selector_schema's connect_parent(chroot==false)).
func (p *Parser) parseSelectorSchema(endOffset int) (ast.SelectorSchema, error) {
	start := p.tr.Mark()
	p.skipTrivia()
	begin := p.tr.Offset()
	if endOffset < begin {
		endOffset = begin
	}
	text := p.src[begin:endOffset]
	schema, err := p.buildStringSchema(text, begin, ast.QuoteNone)
	if err != nil {
		return ast.SelectorSchema{}, err
	}
	p.tr.Advance(endOffset - begin)
	schema.Base = p.spanFrom(start)
	return ast.SelectorSchema{Base: p.spanFrom(start), Schema: schema, Chroot: !p.allowParent}, nil
}

// parseSelectorList parses a comma-separated list of complex selectors
// (spec §4.7). Used both as runtime/parser's exported ParseSelector entry
// point and internally once the oracle has ruled out interpolation.
func (p *Parser) parseSelectorList() (ast.SelectorList, error) {
	start := p.tr.Mark()
	restore, err := p.enterNesting()
	if err != nil {
		return ast.SelectorList{}, err
	}
	defer restore()

	var items []ast.ComplexSelector
	for {
		p.skipTrivia()
		cs, err := p.parseComplexSelector()
		if err != nil {
			return ast.SelectorList{}, err
		}
		items = append(items, cs)
		p.skipTrivia()
		if !p.acceptByte(',') {
			break
		}
	}
	return ast.SelectorList{Base: p.spanFrom(start), Items: items}, nil
}

// parseComplexSelector parses compound selectors joined by combinators
// (spec §4.7): ' ', '>', '+', '~'. A combinator surrounded by whitespace
// still reads as that combinator, not a descendant combinator plus a bare
// compound.
func (p *Parser) parseComplexSelector() (ast.ComplexSelector, error) {
	start := p.tr.Mark()
	first, err := p.parseCompoundSelector()
	if err != nil {
		return ast.ComplexSelector{}, err
	}
	parts := []ast.ComplexSelectorPart{{Compound: first}}
	for {
		save := p.tr.Clone()
		hadSpace := p.skipTriviaSpaced()
		comb, ok := p.acceptCombinator()
		if !ok {
			if !hadSpace {
				p.tr = save
				break
			}
			// whitespace with no explicit combinator: descendant combinator,
			// unless we've reached a list/selector terminator.
			if p.atSelectorEnd() {
				p.tr = save
				break
			}
			comb = ast.CombinatorDescendant
		} else {
			p.skipTrivia()
		}
		next, err := p.parseCompoundSelector()
		if err != nil {
			return ast.ComplexSelector{}, err
		}
		parts = append(parts, ast.ComplexSelectorPart{Combinator: comb, Compound: next})
	}
	return ast.ComplexSelector{Base: p.spanFrom(start), Parts: parts}, nil
}

func (p *Parser) acceptCombinator() (ast.Combinator, bool) {
	b, ok := p.peekByte()
	if !ok {
		return 0, false
	}
	switch b {
	case '>':
		p.tr.Advance(1)
		return ast.CombinatorChild, true
	case '+':
		p.tr.Advance(1)
		return ast.CombinatorSibling, true
	case '~':
		p.tr.Advance(1)
		return ast.CombinatorGeneralSibling, true
	}
	return 0, false
}

func (p *Parser) atSelectorEnd() bool {
	b, ok := p.peekByte()
	if !ok {
		return true
	}
	switch b {
	case ',', '{', '(', ')', ';', '}':
		return true
	}
	return false
}

// parseCompoundSelector parses one or more simple selectors with no
// intervening whitespace (spec §4.7).
func (p *Parser) parseCompoundSelector() (ast.CompoundSelector, error) {
	start := p.tr.Mark()
	var simples []ast.SimpleSelector
	for {
		rem := p.remaining()
		if len(rem) == 0 || !startsSimpleSelector(rem, p.allowParent) {
			break
		}
		s, err := p.parseSimpleSelector()
		if err != nil {
			return ast.CompoundSelector{}, err
		}
		simples = append(simples, s)
	}
	if len(simples) == 0 {
		tok := classifyToken(p.remaining())
		return ast.CompoundSelector{}, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected selector, found %s %q", tok.Type, tok.Value)
	}
	return ast.CompoundSelector{Base: p.spanFrom(start), Simples: simples}, nil
}

func previewByte(rem []byte) string {
	if len(rem) == 0 {
		return ""
	}
	n := lexer.Identifier(rem)
	if n == 0 {
		n = 1
	}
	if n > 12 {
		n = 12
	}
	return string(rem[:n])
}

func startsSimpleSelector(rem []byte, allowParent bool) bool {
	if len(rem) == 0 {
		return false
	}
	switch rem[0] {
	case '.', '#', '[', ':', '%':
		return true
	case '*':
		return true
	case '&':
		return allowParent
	}
	return lexer.Identifier(rem) > 0
}

// parseSimpleSelector parses one simple selector (spec §4.7): type,
// universal, class, id, attribute, pseudo, placeholder, or parent
// reference.
func (p *Parser) parseSimpleSelector() (ast.SimpleSelector, error) {
	start := p.tr.Mark()
	rem := p.remaining()
	if len(rem) == 0 {
		return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected selector, found end of input")
	}
	switch rem[0] {
	case '*':
		p.tr.Advance(1)
		return ast.UniversalSelector{Base: p.spanFrom(start)}, nil
	case '.':
		if n := lexer.Identifier(rem[1:]); n > 0 {
			p.tr.Advance(1 + n)
			return ast.ClassSelector{Base: p.spanFrom(start), Name: string(rem[1 : 1+n])}, nil
		}
		return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected class name after '.'")
	case '#':
		if n := lexer.Identifier(rem[1:]); n > 0 {
			p.tr.Advance(1 + n)
			return ast.IDSelector{Base: p.spanFrom(start), Name: string(rem[1 : 1+n])}, nil
		}
		return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected id name after '#'")
	case '%':
		if n := lexer.Placeholder(rem); n > 0 {
			p.tr.Advance(n)
			return ast.PlaceholderSelector{Base: p.spanFrom(start), Name: string(rem[1:n])}, nil
		}
		return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected placeholder name after '%%'")
	case '&':
		if !p.allowParent {
			return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "parent selector '&' is not allowed here")
		}
		p.tr.Advance(1)
		return ast.ParentRefSelector{Base: p.spanFrom(start)}, nil
	case '[':
		return p.parseAttributeSelector()
	case ':':
		return p.parsePseudoSelector()
	}
	if n := lexer.Identifier(rem); n > 0 {
		p.tr.Advance(n)
		return ast.TypeSelector{Base: p.spanFrom(start), Name: string(rem[:n])}, nil
	}
	tok := classifyToken(rem)
	return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected selector, found %s %q", tok.Type, tok.Value)
}

var attrMatchOps = []string{"~=", "|=", "^=", "$=", "*=", "="}

// parseAttributeSelector parses `[attr op "val" i]` (spec §4.7).
func (p *Parser) parseAttributeSelector() (ast.AttributeSelector, error) {
	start := p.tr.Mark()
	p.tr.Advance(1) // '['
	p.skipTrivia()
	name, ok := p.accept(lexer.Identifier)
	if !ok {
		return ast.AttributeSelector{}, p.errf(dialecterrors.KindSyntactic, p.pos(), "invalid attribute name in attribute selector")
	}
	p.skipTrivia()

	sel := ast.AttributeSelector{Name: name}
	if b, ok := p.peekByte(); ok && b == ']' {
		p.tr.Advance(1)
		sel.Base = p.spanFrom(start)
		return sel, nil
	}

	matched := false
	for _, op := range attrMatchOps {
		if _, ok := p.accept(lexer.Lit(op)); ok {
			sel.Op = op
			matched = true
			break
		}
	}
	if !matched {
		return ast.AttributeSelector{}, p.errf(dialecterrors.KindSyntactic, p.pos(), "invalid operator in attribute selector for %s", name)
	}
	p.skipTrivia()

	switch {
	case func() bool { b, ok := p.peekByte(); return ok && (b == '\'' || b == '"') }():
		rem := p.remaining()
		n, closed := lexer.QuotedStringOpen(rem)
		if !closed {
			return ast.AttributeSelector{}, p.errf(dialecterrors.KindLexical, p.pos(), "unterminated string in attribute selector for %s", name)
		}
		sel.Value = unescapeString(string(rem[1 : n-1]))
		p.tr.Advance(n)
	default:
		val, ok := p.accept(lexer.Identifier)
		if !ok {
			return ast.AttributeSelector{}, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected a string constant or identifier in attribute selector for %s", name)
		}
		sel.Value = val
	}

	p.skipTrivia()
	if b, ok := p.peekByte(); ok && (b == 'i' || b == 'I') {
		save := p.tr.Clone()
		p.tr.Advance(1)
		p.skipTrivia()
		if nb, ok := p.peekByte(); ok && nb == ']' {
			sel.CaseInsensitive = true
		} else {
			p.tr = save
		}
	}
	if !p.acceptByte(']') {
		return ast.AttributeSelector{}, p.errf(dialecterrors.KindSyntactic, p.pos(), "unterminated attribute selector for %s", name)
	}
	sel.Base = p.spanFrom(start)
	return sel, nil
}

// parsePseudoSelector parses `:name`, `::name`, or `:name(argument)` (spec
// §4.7). Resolution of Open Question 1 (SPEC_FULL #2): the closing ')' of a
// parenthesized pseudo is always consumed by this function itself, never by
// the nested "of <selector-list>" parse.
func (p *Parser) parsePseudoSelector() (ast.PseudoSelector, error) {
	start := p.tr.Mark()
	p.tr.Advance(1) // ':'
	isElement := false
	if b, ok := p.peekByte(); ok && b == ':' {
		p.tr.Advance(1)
		isElement = true
	}
	name, ok := p.accept(lexer.Identifier)
	if !ok {
		return ast.PseudoSelector{}, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected pseudoclass or pseudoelement name")
	}

	if b, ok := p.peekByte(); !ok || b != '(' {
		return ast.PseudoSelector{Base: p.spanFrom(start), Name: name, IsElement: isElement}, nil
	}
	p.tr.Advance(1) // '('
	p.skipTrivia()

	unvendored := unvendor(name)
	lowerName := strings.ToLower(name)

	if strings.HasPrefix(lowerName, "nth-") {
		nth, ok := p.acceptNthExpr()
		if !ok {
			return ast.PseudoSelector{}, p.errf(dialecterrors.KindSemantic, p.pos(), "expected An+B expression in %s()", name)
		}
		pseudo := ast.PseudoSelector{Name: name, IsElement: isElement, NthExpr: nth}
		p.skipTrivia()
		if _, ok := p.accept(lexer.Keyword("of")); ok {
			p.skipTrivia()
			of, err := p.withAllowParentSelector(true, func() (ast.SelectorNode, error) {
				list, err := p.parseSelectorList()
				if err != nil {
					return nil, err
				}
				return list, nil
			})
			if err != nil {
				return ast.PseudoSelector{}, err
			}
			pseudo.NthOf = of
			p.skipTrivia()
		}
		if !p.acceptByte(')') {
			return ast.PseudoSelector{}, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected ')' after %s() argument", name)
		}
		pseudo.Base = p.spanFrom(start)
		return pseudo, nil
	}

	if selectorCarryingPseudos[unvendored] {
		inner, err := p.withAllowParentSelector(true, func() (ast.SelectorNode, error) {
			list, err := p.parseSelectorList()
			if err != nil {
				return nil, err
			}
			return list, nil
		})
		if err != nil {
			return ast.PseudoSelector{}, err
		}
		p.skipTrivia()
		if !p.acceptByte(')') {
			return ast.PseudoSelector{}, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected ')' after %s() argument", name)
		}
		pseudo := ast.PseudoSelector{Base: p.spanFrom(start), Name: name, IsElement: isElement, Argument: inner}
		return pseudo, nil
	}

	argText, err := p.scanOpaqueArgument()
	if err != nil {
		return ast.PseudoSelector{}, err
	}
	if !p.acceptByte(')') {
		return ast.PseudoSelector{}, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected ')' after %s() argument", name)
	}
	return ast.PseudoSelector{Base: p.spanFrom(start), Name: name, IsElement: isElement, ArgumentText: argText}, nil
}

// withAllowParentSelector runs fn with allow_parent temporarily set to v,
// restoring it afterward regardless of error (spec §9 scoped guard).
func (p *Parser) withAllowParentSelector(v bool, fn func() (ast.SelectorNode, error)) (ast.SelectorNode, error) {
	prev := p.allowParent
	p.allowParent = v
	defer func() { p.allowParent = prev }()
	return fn()
}

// acceptNthExpr matches the "An+B" micro-grammar (optional sign, optional
// coefficient, "n", optional signed offset; or a bare integer; or the
// keywords "odd"/"even"). It never consumes "of" or ')'.
func (p *Parser) acceptNthExpr() (string, bool) {
	save := p.tr.Clone()
	if _, ok := p.accept(lexer.Keyword("odd")); ok {
		return "odd", true
	}
	p.tr = save.Clone()
	if _, ok := p.accept(lexer.Keyword("even")); ok {
		return "even", true
	}
	p.tr = save.Clone()

	rem := p.remaining()
	i := 0
	if i < len(rem) && (rem[i] == '+' || rem[i] == '-') {
		i++
	}
	digitsStart := i
	for i < len(rem) && rem[i] >= '0' && rem[i] <= '9' {
		i++
	}
	hasCoefficient := i > digitsStart
	hasN := i < len(rem) && (rem[i] == 'n' || rem[i] == 'N')
	if hasN {
		i++
		// optional whitespace then signed offset
		j := i
		for j < len(rem) && lexer.IsWhitespace(rem[j]) {
			j++
		}
		if j < len(rem) && (rem[j] == '+' || rem[j] == '-') {
			j++
			for j < len(rem) && lexer.IsWhitespace(rem[j]) {
				j++
			}
			digStart := j
			for j < len(rem) && rem[j] >= '0' && rem[j] <= '9' {
				j++
			}
			if j > digStart {
				i = j
			}
		}
		text := string(rem[:i])
		p.tr.Advance(i)
		return strings.Join(strings.Fields(text), ""), true
	}
	if hasCoefficient {
		text := string(rem[:i])
		p.tr.Advance(i)
		return text, true
	}
	return "", false
}

// scanOpaqueArgument reads the balanced-parenthesis text of a pseudo
// argument that isn't one of the recognized selector- or nth-carrying
// forms, stopping just before the matching ')'. Interpolation inside is
// left as raw text (spec §4.7 leaves opaque pseudo arguments as an
// ArgumentText string; evaluation, not this parser, resolves it).
func (p *Parser) scanOpaqueArgument() (string, error) {
	start := p.tr.Offset()
	depth := 0
	rem := p.remaining()
	i := 0
	for i < len(rem) {
		switch rem[i] {
		case '(':
			depth++
			i++
		case ')':
			if depth == 0 {
				p.tr.Advance(i)
				return string(p.src[start : start+i]), nil
			}
			depth--
			i++
		case '\'', '"':
			n, closed := lexer.QuotedStringOpen(rem[i:])
			if !closed {
				return "", p.errf(dialecterrors.KindLexical, p.pos(), "unterminated string in pseudo-selector argument")
			}
			i += n
		default:
			i++
		}
	}
	return "", p.errf(dialecterrors.KindSyntactic, p.pos(), "unterminated pseudo-selector argument")
}

// unvendor strips a leading vendor prefix ("-webkit-", "-moz-", ...) the
// way the original's Util::unvendor does, used to recognize selector-
// carrying pseudos regardless of vendor prefix (spec §4.7).
func unvendor(name string) string {
	lower := strings.ToLower(name)
	if len(lower) < 2 || lower[0] != '-' {
		return lower
	}
	rest := lower[1:]
	if idx := strings.IndexByte(rest, '-'); idx >= 0 {
		return rest[idx+1:]
	}
	return lower
}
