package parser

import (
	"strings"

	"github.com/cascadelang/cascade/core/ast"
	"github.com/cascadelang/cascade/core/invariant"
	"github.com/cascadelang/cascade/core/types"
	dialecterrors "github.com/cascadelang/cascade/pkgs/errors"
	"github.com/cascadelang/cascade/runtime/lexer"
)

// parseBlock parses the statements of one block (spec §4.6 "Dispatch inside
// a block"). scope is pushed for the duration of this block's body.
func (p *Parser) parseBlock(scope ast.Scope) (*ast.Block, error) {
	return p.parseBlockWithRoot(scope, scope == ast.ScopeRoot)
}

// parseBracedBlock consumes the leading '{', parses the block's statements
// under scope, and consumes the matching '}'.
func (p *Parser) parseBracedBlock(scope ast.Scope) (*ast.Block, error) {
	p.skipTrivia()
	if !p.acceptByte('{') {
		return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected '{'")
	}
	restore, err := p.enterNesting()
	if err != nil {
		return nil, err
	}
	defer restore()
	return p.parseBlockWithRoot(scope, false)
}

func (p *Parser) parseBlockWithRoot(scope ast.Scope, root bool) (*ast.Block, error) {
	start := p.tr.Mark()
	p.pushScope(scope)
	defer p.popScope()

	block := &ast.Block{Scope: scope, Indentation: p.indentation}
	elseSt := elseNone

	for {
		for {
			p.skipWSAndLineComments()
			if p.acceptByte(';') {
				continue
			}
			comment, matched, err := p.tryParseComment()
			if err != nil {
				return nil, err
			}
			if matched {
				block.Statements = append(block.Statements, comment)
				continue
			}
			break
		}

		if root {
			if p.atEnd() {
				break
			}
		} else if b, ok := p.peekByte(); ok && b == '}' {
			p.tr.Advance(1)
			break
		} else if !ok {
			return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "unexpected end of input, expected '}'")
		}

		prevOffset := p.tr.Offset()
		stmt, newElseSt, err := p.parseStatement(block, elseSt)
		if err != nil {
			return nil, err
		}
		invariant.Invariant(p.tr.Offset() > prevOffset, "parseStatement must make progress at offset %d", prevOffset)
		elseSt = newElseSt
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
	}

	block.Base = p.spanFrom(start)
	return block, nil
}

// tryParseComment consumes a block comment at the cursor, if any, and
// reports it as a retained Comment node (spec SPEC_FULL #5: comments are
// kept at statement-loop position, discarded inside selectors/argument
// lists where skipTrivia swallows them).
func (p *Parser) tryParseComment() (ast.Comment, bool, error) {
	rem := p.remaining()
	if len(rem) < 2 || rem[0] != '/' || rem[1] != '*' {
		return ast.Comment{}, false, nil
	}
	start := p.tr.Mark()
	n, closed := lexer.BlockCommentOpen(rem)
	if !closed {
		return ast.Comment{}, false, p.errf(dialecterrors.KindLexical, p.pos(), "unterminated comment")
	}
	important := n > 2 && rem[2] == '!'
	inner := rem[2 : n-2]
	innerOffset := p.tr.Offset() + 2

	var text ast.StringSchemaValue
	if lexer.HasInterpolation(inner, 0, len(inner), lexer.ModeConstant) {
		schema, err := p.buildStringSchema(inner, innerOffset, ast.QuoteNone)
		if err != nil {
			return ast.Comment{}, false, err
		}
		schemaStart := p.pos()
		p.tr.Advance(n)
		schema.Base = ast.Base{Range: ast.NewRange(p.path, schemaStart, p.pos())}
		text = ast.StringSchemaValue{IsExpression: true, Expr: schema, Range: schema.Range}
	} else {
		p.tr.Advance(n)
		text = ast.StringSchemaValue{Literal: string(inner)}
	}
	return ast.Comment{Base: p.spanFrom(start), Text: text, Important: important}, true, nil
}

// parseStatement dispatches one statement inside a block (spec §4.6). It
// returns the parsed statement (nil when the construct already appended
// what it produced to block directly, as @import's stubs do) and the
// elseState to carry into the next iteration of the caller's loop.
func (p *Parser) parseStatement(block *ast.Block, elseSt elseState) (ast.Statement, elseState, error) {
	rem := p.remaining()
	if len(rem) == 0 {
		return nil, elseNone, p.errf(dialecterrors.KindSyntactic, p.pos(), "unexpected end of input")
	}

	if rem[0] == '$' && lexer.Variable(rem) > 0 {
		stmt, err := p.parseAssignment()
		return stmt, elseNone, err
	}

	if rem[0] == '@' {
		return p.parseAtStatement(block, elseSt)
	}

	lr := p.lookaheadSelector()
	if !lr.isCustomProperty && (lr.hasInterpolants || lr.found) {
		ruleset, err := p.parseRuleset(lr)
		return ruleset, elseNone, err
	}

	decl, err := p.parseDeclaration()
	return decl, elseNone, err
}

func (p *Parser) parseAtStatement(block *ast.Block, elseSt elseState) (ast.Statement, elseState, error) {
	start := p.tr.Mark()
	save := p.tr.Clone()
	p.tr.Advance(1) // '@'
	kw, ok := p.accept(lexer.Identifier)
	if !ok {
		p.tr = save
		return nil, elseNone, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected at-rule name after '@'")
	}
	lower := strings.ToLower(kw)

	switch lower {
	case "error":
		if err := p.rejectInScope(ast.ScopeProperties, "@error"); err != nil {
			return nil, elseNone, err
		}
		p.skipTrivia()
		v, err := p.parseRequiredExpressionList("@error")
		if err != nil {
			return nil, elseNone, err
		}
		return ast.ErrorStatement{Base: p.spanFrom(start), Value: v}, elseNone, nil
	case "warn":
		if err := p.rejectInScope(ast.ScopeProperties, "@warn"); err != nil {
			return nil, elseNone, err
		}
		p.skipTrivia()
		v, err := p.parseRequiredExpressionList("@warn")
		if err != nil {
			return nil, elseNone, err
		}
		return ast.Warning{Base: p.spanFrom(start), Value: v}, elseNone, nil
	case "debug":
		if err := p.rejectInScope(ast.ScopeProperties, "@debug"); err != nil {
			return nil, elseNone, err
		}
		p.skipTrivia()
		v, err := p.parseRequiredExpressionList("@debug")
		if err != nil {
			return nil, elseNone, err
		}
		return ast.Debug{Base: p.spanFrom(start), Value: v}, elseNone, nil
	case "if":
		stmt, err := p.parseIfDirective(start)
		return stmt, elseAfterIf, err
	case "else":
		return nil, elseNone, p.errf(dialecterrors.KindSyntactic, start, "Invalid CSS: @else must come after @if")
	case "for":
		stmt, err := p.parseFor(start)
		return stmt, elseNone, err
	case "each":
		stmt, err := p.parseEach(start)
		return stmt, elseNone, err
	case "while":
		stmt, err := p.parseWhile(start)
		return stmt, elseNone, err
	case "return":
		if !p.inScope(ast.ScopeFunction) {
			return nil, elseNone, p.errf(dialecterrors.KindSemantic, start, "@return may only be used within a function")
		}
		p.skipTrivia()
		v, err := p.parseRequiredExpressionList("@return")
		if err != nil {
			return nil, elseNone, err
		}
		return ast.Return{Base: p.spanFrom(start), Value: v}, elseNone, nil
	case "import":
		stmt, err := p.parseImport(start)
		if err != nil {
			return nil, elseNone, err
		}
		imp := stmt.(ast.Import)
		stubs := imp.Stubs
		imp.Stubs = nil
		if len(imp.Entries) > 0 || len(imp.MediaQueries) > 0 {
			block.Statements = append(block.Statements, imp)
		}
		for _, stub := range stubs {
			block.Statements = append(block.Statements, stub)
		}
		return nil, elseNone, nil
	case "extend":
		stmt, err := p.parseExtend(start)
		return stmt, elseNone, err
	case "media":
		stmt, err := p.parseMediaRule(start)
		return stmt, elseNone, err
	case "at-root":
		stmt, err := p.parseAtRoot(start)
		return stmt, elseNone, err
	case "include":
		stmt, err := p.parseInclude(start)
		return stmt, elseNone, err
	case "content":
		if !p.inScope(ast.ScopeMixin) {
			return nil, elseNone, p.errf(dialecterrors.KindSemantic, start, "@content is only allowed within a mixin")
		}
		p.skipTrivia()
		args, err := p.parseOptionalArguments()
		if err != nil {
			return nil, elseNone, err
		}
		return ast.ContentCall{Base: p.spanFrom(start), Arguments: args}, elseNone, nil
	case "supports":
		stmt, err := p.parseSupports(start)
		return stmt, elseNone, err
	case "mixin":
		stmt, err := p.parseDefinition(start, ast.DefMixin)
		return stmt, elseNone, err
	case "function":
		stmt, err := p.parseDefinition(start, ast.DefFunction)
		return stmt, elseNone, err
	case "charset":
		p.skipTrivia()
		p.parseQuotedStringRaw()
		return nil, elseNone, nil
	default:
		stmt, err := p.parseGenericDirective(start, kw)
		return stmt, elseNone, err
	}
}

// rejectInScope errors when the innermost scope equals forbidden (spec §4.6
// "@warn/@error/@debug are rejected inside Properties").
func (p *Parser) rejectInScope(forbidden ast.Scope, what string) error {
	if p.currentScope() == forbidden {
		return p.errf(dialecterrors.KindSemantic, p.pos(), "%s is not allowed inside a nested property block", what)
	}
	return nil
}

// parseRequiredExpressionList parses a full expression list, turning the
// "no factor here" sentinel into a real syntax error naming what the caller
// expected a value for.
func (p *Parser) parseRequiredExpressionList(context string) (ast.Expression, error) {
	v, err := p.parseExpressionList()
	if err == errNoFactor {
		return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected expression after %s", context)
	}
	return v, err
}

// parseQuotedStringRaw consumes (without retaining) a quoted string; used by
// @charset, whose value this parser intentionally discards, matching
// parse_charset_directive.
func (p *Parser) parseQuotedStringRaw() {
	rem := p.remaining()
	if len(rem) == 0 || (rem[0] != '\'' && rem[0] != '"') {
		return
	}
	if n, closed := lexer.QuotedStringOpen(rem); closed {
		p.tr.Advance(n)
	}
}

// --- assignment -------------------------------------------------------------

func (p *Parser) parseAssignment() (ast.Statement, error) {
	start := p.tr.Mark()
	rem := p.remaining()
	n := lexer.Variable(rem)
	invariant.Precondition(n > 0, "parseAssignment called without a variable at the cursor")
	name := lexer.NormalizeIdent(string(rem[1:n]))
	p.tr.Advance(n)
	p.skipTrivia()
	if !p.acceptByte(':') {
		return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected ':' after $%s in assignment statement", name)
	}
	p.skipTrivia()

	lr := p.lookaheadValue()
	var value ast.Expression
	var err error
	if lr.hasInterpolants {
		value, err = p.parseValueSchema(lr.endOffset)
	} else {
		value, err = p.parseRequiredExpressionList("$" + name + ":")
	}
	if err != nil {
		return nil, err
	}

	var flags []ast.AssignmentFlag
flagLoop:
	for {
		p.skipTrivia()
		save := p.tr.Clone()
		if !p.acceptByte('!') {
			break
		}
		word, ok := p.accept(lexer.Identifier)
		if !ok {
			p.tr = save
			break
		}
		switch strings.ToLower(word) {
		case "default":
			flags = append(flags, ast.FlagDefault)
		case "global":
			flags = append(flags, ast.FlagGlobal)
		default:
			p.tr = save
			break flagLoop
		}
	}
	p.rememberName(name)
	return ast.Assignment{Base: p.spanFrom(start), Name: name, Value: value, Flags: flags}, nil
}

// parseValueSchema parses a value whose text (up to endOffset) carries
// interpolation (spec §4.4, §4.6), reusing the interpolation-aware schema
// builder the expression parser uses for quoted strings.
func (p *Parser) parseValueSchema(endOffset int) (ast.Expression, error) {
	start := p.tr.Mark()
	begin := p.tr.Offset()
	if endOffset < begin {
		endOffset = begin
	}
	text := p.src[begin:endOffset]
	schema, err := p.buildStringSchema(text, begin, ast.QuoteNone)
	if err != nil {
		return nil, err
	}
	p.tr.Advance(endOffset - begin)
	schema.Base = p.spanFrom(start)
	return schema, nil
}

// --- @if / @else if / @else --------------------------------------------------

func (p *Parser) parseIfDirective(start types.SourcePosition) (ast.Statement, error) {
	p.skipTrivia()
	cond, err := p.parseRequiredExpressionList("@if")
	if err != nil {
		return nil, err
	}
	consequent, err := p.parseBracedBlock(ast.ScopeControl)
	if err != nil {
		return nil, err
	}
	node := ast.If{Condition: cond, Consequent: consequent}

	save := p.tr.Clone()
	p.skipTrivia()
	if !p.acceptAtKeyword("else") {
		p.tr = save
	} else {
		p.skipTrivia()
		elseStart := p.tr.Mark()
		if p.acceptKeyword("if") {
			p.skipTrivia()
			alt, err := p.parseIfDirective(elseStart)
			if err != nil {
				return nil, err
			}
			node.Alternative = alt
		} else {
			altBody, err := p.parseBracedBlock(ast.ScopeControl)
			if err != nil {
				return nil, err
			}
			node.Alternative = altBody
		}
	}
	node.Base = p.spanFrom(start)
	return node, nil
}

// acceptAtKeyword accepts "@name" as a unit, where name is matched
// case-insensitively as a plain identifier.
func (p *Parser) acceptAtKeyword(name string) bool {
	save := p.tr.Clone()
	if !p.acceptByte('@') {
		return false
	}
	word, ok := p.accept(lexer.Identifier)
	if !ok || strings.ToLower(word) != name {
		p.tr = save
		return false
	}
	return true
}

func (p *Parser) acceptKeyword(word string) bool {
	_, ok := p.accept(lexer.Keyword(word))
	return ok
}

// --- @for / @each / @while --------------------------------------------------

// parseFor parses `@for $v from <expr> (to|through) <expr> { ... }`. The
// bounds are parsed at the additive level (parser.cpp's parse_expression),
// not the full list grammar, so that the "to"/"through" keyword is never
// mistaken for a bare-string list element.
func (p *Parser) parseFor(start types.SourcePosition) (ast.Statement, error) {
	p.skipTrivia()
	rem := p.remaining()
	n := lexer.Variable(rem)
	if n == 0 {
		return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected variable (e.g. $foo) in @for directive")
	}
	varName := lexer.NormalizeIdent(string(rem[1:n]))
	p.tr.Advance(n)
	p.skipTrivia()
	if !p.acceptKeyword("from") {
		return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected 'from' keyword in @for directive")
	}
	p.skipTrivia()
	from, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	p.skipTrivia()
	inclusive := false
	if p.acceptKeyword("through") {
		inclusive = true
	} else if p.acceptKeyword("to") {
		inclusive = false
	} else {
		return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected 'through' or 'to' keyword in @for directive")
	}
	p.skipTrivia()
	to, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBracedBlock(ast.ScopeControl)
	if err != nil {
		return nil, err
	}
	p.rememberName(varName)
	return ast.For{Base: p.spanFrom(start), Variable: varName, From: from, To: to, Inclusive: inclusive, Body: body}, nil
}

// parseEach parses `@each $v1 (, $v2)* in <list> { ... }`.
func (p *Parser) parseEach(start types.SourcePosition) (ast.Statement, error) {
	p.skipTrivia()
	var vars []string
	rem := p.remaining()
	n := lexer.Variable(rem)
	if n == 0 {
		return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "@each directive requires an iteration variable")
	}
	vars = append(vars, lexer.NormalizeIdent(string(rem[1:n])))
	p.tr.Advance(n)
	for {
		p.skipTrivia()
		save := p.tr.Clone()
		if !p.acceptByte(',') {
			break
		}
		p.skipTrivia()
		rem2 := p.remaining()
		n2 := lexer.Variable(rem2)
		if n2 == 0 {
			p.tr = save
			return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "@each directive requires an iteration variable")
		}
		vars = append(vars, lexer.NormalizeIdent(string(rem2[1:n2])))
		p.tr.Advance(n2)
	}
	p.skipTrivia()
	if !p.acceptKeyword("in") {
		return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected 'in' keyword in @each directive")
	}
	p.skipTrivia()
	source, err := p.parseRequiredExpressionList("@each ... in")
	if err != nil {
		return nil, err
	}
	body, err := p.parseBracedBlock(ast.ScopeControl)
	if err != nil {
		return nil, err
	}
	for _, v := range vars {
		p.rememberName(v)
	}
	return ast.Each{Base: p.spanFrom(start), Variables: vars, Source: source, Body: body}, nil
}

func (p *Parser) parseWhile(start types.SourcePosition) (ast.Statement, error) {
	p.skipTrivia()
	cond, err := p.parseRequiredExpressionList("@while")
	if err != nil {
		return nil, err
	}
	body, err := p.parseBracedBlock(ast.ScopeControl)
	if err != nil {
		return nil, err
	}
	return ast.While{Base: p.spanFrom(start), Condition: cond, Body: body}, nil
}

// --- @import -----------------------------------------------------------------

func (p *Parser) parseImport(start types.SourcePosition) (ast.Statement, error) {
	if err := p.checkImportScope(); err != nil {
		return nil, err
	}
	var imp ast.Import
	// pendingPaths holds plain quoted-string entries whose dispatch to the
	// Importer is deferred until the media-query tail is known: an entry
	// qualified by a media query is never inlined, only ever emitted as a
	// literal CSS @import (mirrors the url()-literal rule, spec §6).
	var pendingPaths []ast.ImportEntry
	first := true
	for {
		p.skipTrivia()
		rem := p.remaining()
		switch {
		case len(rem) > 0 && (rem[0] == '\'' || rem[0] == '"'):
			entryStart := p.tr.Mark()
			n, closed := lexer.QuotedStringOpen(rem)
			if !closed {
				return nil, p.errf(dialecterrors.KindLexical, p.pos(), "unterminated string in @import")
			}
			raw := string(rem[:n])
			p.tr.Advance(n)
			path := unescapeString(raw[1 : len(raw)-1])
			pendingPaths = append(pendingPaths, ast.ImportEntry{Path: path, Range: p.since(entryStart)})
		case lexer.URIPrefix(rem) > 0:
			entryStart := p.tr.Mark()
			n := lexer.URIPrefix(rem)
			p.tr.Advance(n)
			var arg ast.Expression
			rem2 := p.remaining()
			if len(rem2) > 0 && (rem2[0] == '\'' || rem2[0] == '"') {
				s, err := p.parseQuotedString()
				if err != nil {
					return nil, err
				}
				arg = s
			} else {
				v, err := p.parseRequiredExpressionList("url(")
				if err != nil {
					return nil, err
				}
				arg = v
			}
			p.skipTrivia()
			if !p.acceptByte(')') {
				return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "URI is missing ')'")
			}
			call := ast.FunctionCall{Base: p.spanFrom(entryStart), Name: "url", Arguments: []ast.Argument{{Value: arg}}}
			imp.Entries = append(imp.Entries, ast.ImportEntry{Literal: call, IsURL: true, Range: p.since(entryStart)})
		default:
			if first {
				return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "@import directive requires a url or quoted path")
			}
			return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "expecting another url or quoted path in @import list")
		}
		first = false
		p.skipTrivia()
		if !p.acceptByte(',') {
			break
		}
	}

	p.skipTrivia()
	if b, ok := p.peekByte(); !ok || (b != ';' && b != '}') {
		queries, err := p.parseMediaQueryList()
		if err != nil {
			return nil, err
		}
		imp.MediaQueries = queries
	}

	if len(imp.MediaQueries) > 0 {
		imp.Entries = append(imp.Entries, pendingPaths...)
	} else {
		for _, entry := range pendingPaths {
			if stubs, handled := p.resolveImport(entry.Path, entry.Range); handled {
				imp.Stubs = append(imp.Stubs, stubs...)
			} else {
				imp.Entries = append(imp.Entries, entry)
			}
		}
	}

	imp.Base = p.spanFrom(start)
	return imp, nil
}

// checkImportScope rejects @import inside a control directive, mixin, or
// function body unless the next entry is a url() form (spec §3's
// scope_stack note: "@import inside @function" is an illegal nesting, §8
// scenario S7; parser.cpp's parse_block_node carries the same message but
// exempts Function — deliberately not followed here since the spec names
// @function explicitly as disallowed).
func (p *Parser) checkImportScope() error {
	scope := p.currentScope()
	switch scope {
	case ast.ScopeRoot, ast.ScopeRules, ast.ScopeMedia:
		return nil
	}
	save := p.tr.Clone()
	p.skipTrivia()
	isURI := lexer.URIPrefix(p.remaining()) > 0
	p.tr = save
	if isURI {
		return nil
	}
	return p.errf(dialecterrors.KindSemantic, p.pos(), "Import directives may not be used within control directives or mixins.")
}

// resolveImport dispatches a plain quoted-string @import entry to the
// configured Importer, if any (spec §6).
func (p *Parser) resolveImport(path string, rng types.SourceRange) ([]ast.ImportStub, bool) {
	if p.importer == nil {
		return nil, false
	}
	return p.importer.Resolve(path, p.path, rng)
}

// --- @extend -----------------------------------------------------------------

func (p *Parser) parseExtend(start types.SourcePosition) (ast.Statement, error) {
	p.skipTrivia()
	lr := p.lookaheadInclude()
	if !lr.found && !lr.hasInterpolants {
		return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected selector after @extend")
	}
	var target ast.SelectorNode
	var err error
	err = p.withAllowParent(false, func() error {
		target, err = p.parseSelectorHost(lr)
		return err
	})
	if err != nil {
		return nil, err
	}
	p.skipTrivia()
	optional := false
	save := p.tr.Clone()
	if p.acceptByte('!') {
		if w, ok := p.accept(lexer.Identifier); ok && strings.ToLower(w) == "optional" {
			optional = true
		} else {
			p.tr = save
		}
	}
	return ast.ExtendRule{Base: p.spanFrom(start), Target: target, Optional: optional}, nil
}

// --- rulesets ----------------------------------------------------------------

func (p *Parser) parseRuleset(lr lookaheadResult) (ast.Statement, error) {
	start := p.tr.Mark()
	restore, err := p.enterNesting()
	if err != nil {
		return nil, err
	}
	defer restore()
	selNode, err := p.withAllowParentSelector(true, func() (ast.SelectorNode, error) {
		return p.parseSelectorHost(lr)
	})
	if err != nil {
		return nil, err
	}
	body, err := p.parseBracedBlock(ast.ScopeRules)
	if err != nil {
		return nil, err
	}
	return ast.Ruleset{Base: p.spanFrom(start), Selector: selNode, Body: body}, nil
}

// --- @at-root ----------------------------------------------------------------

func (p *Parser) parseAtRoot(start types.SourcePosition) (ast.Statement, error) {
	p.skipTrivia()
	node := ast.AtRootBlock{}
	if b, ok := p.peekByte(); ok && b == '(' {
		p.tr.Advance(1)
		p.skipTrivia()
		mode, names, err := p.parseAtRootQuery()
		if err != nil {
			return nil, err
		}
		p.skipTrivia()
		if !p.acceptByte(')') {
			return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "unclosed parenthesis in @at-root expression")
		}
		node.QueryMode = mode
		node.Query = names
	}

	p.skipTrivia()
	if b, ok := p.peekByte(); ok && b == '{' {
		body, err := p.parseBracedBlock(ast.ScopeAtRoot)
		if err != nil {
			return nil, err
		}
		node.Body = body
	} else {
		lr := p.lookaheadSelector()
		if !lr.found && !lr.hasInterpolants {
			return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected '{' or a selector after @at-root")
		}
		ruleset, err := p.parseRuleset(lr)
		if err != nil {
			return nil, err
		}
		node.Body = &ast.Block{Base: ast.Base{Range: ruleset.SourceRange()}, Scope: ast.ScopeAtRoot, Statements: []ast.Statement{ruleset}}
	}
	node.Base = p.spanFrom(start)
	return node, nil
}

func (p *Parser) parseAtRootQuery() (ast.AtRootQueryMode, []string, error) {
	p.skipTrivia()
	word, ok := p.accept(lexer.Identifier)
	if !ok {
		return ast.AtRootQueryNone, nil, p.errf(dialecterrors.KindSyntactic, p.pos(), `expected "with" or "without" in @at-root expression`)
	}
	var mode ast.AtRootQueryMode
	switch strings.ToLower(word) {
	case "with":
		mode = ast.AtRootWith
	case "without":
		mode = ast.AtRootWithout
	default:
		return ast.AtRootQueryNone, nil, p.errf(dialecterrors.KindSyntactic, p.pos(), `expected "with" or "without" in @at-root expression`)
	}
	p.skipTrivia()
	if !p.acceptByte(':') {
		return mode, nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "style declaration must contain a value")
	}
	p.skipTrivia()
	var names []string
	for {
		name, ok := p.accept(lexer.Identifier)
		if !ok {
			break
		}
		names = append(names, strings.ToLower(name))
		p.skipTrivia()
	}
	if len(names) == 0 {
		return mode, nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "@at-root query requires at least one rule name")
	}
	return mode, names, nil
}

// --- @include / @content ------------------------------------------------------

func (p *Parser) parseInclude(start types.SourcePosition) (ast.Statement, error) {
	p.skipTrivia()
	name, ok := p.accept(lexer.Identifier)
	if !ok {
		return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected mixin name after @include")
	}
	name = lexer.NormalizeIdent(name)
	args, err := p.parseOptionalArguments()
	if err != nil {
		return nil, err
	}
	var content *ast.Block
	p.skipTrivia()
	if b, ok := p.peekByte(); ok && b == '{' {
		blk, err := p.parseBracedBlock(p.currentScope())
		if err != nil {
			return nil, err
		}
		content = blk
	}
	return ast.MixinCall{Base: p.spanFrom(start), Name: name, Arguments: args, Content: content}, nil
}

// parseOptionalArguments parses a `(args)` tail if present, returning nil
// when the cursor isn't at '(' (spec §4.6: @include/@content's arguments
// are optional, unlike a function call's).
func (p *Parser) parseOptionalArguments() ([]ast.Argument, error) {
	p.skipTrivia()
	b, ok := p.peekByte()
	if !ok || b != '(' {
		return nil, nil
	}
	p.tr.Advance(1)
	return p.parseArgumentList()
}

// --- @mixin / @function -------------------------------------------------------

func (p *Parser) parseDefinition(start types.SourcePosition, kind ast.DefinitionKind) (ast.Statement, error) {
	p.skipTrivia()
	name, ok := p.accept(lexer.Identifier)
	if !ok {
		return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "invalid name in definition")
	}
	name = lexer.NormalizeIdent(name)
	if kind == ast.DefFunction && reservedFunctionNames[strings.ToLower(name)] {
		return nil, p.errf(dialecterrors.KindSemantic, p.pos(), "invalid function name %q", name)
	}
	params, err := p.parseParameters()
	if err != nil {
		return nil, err
	}
	scope := ast.ScopeMixin
	if kind == ast.DefFunction {
		scope = ast.ScopeFunction
	}
	body, err := p.parseBracedBlock(scope)
	if err != nil {
		return nil, err
	}
	p.rememberName(name)
	return ast.Definition{Base: p.spanFrom(start), Kind: kind, Name: name, Params: params, Body: body}, nil
}

func (p *Parser) parseParameters() ([]ast.Parameter, error) {
	p.skipTrivia()
	if !p.acceptByte('(') {
		return nil, nil
	}
	p.skipTrivia()
	if p.acceptByte(')') {
		return nil, nil
	}
	var params []ast.Parameter
	for {
		param, err := p.parseParameter()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
		p.skipTrivia()
		if p.acceptByte(')') {
			break
		}
		if !p.acceptByte(',') {
			return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected ',' or ')' in parameter list")
		}
		p.skipTrivia()
		if p.acceptByte(')') {
			break
		}
	}
	return params, nil
}

func (p *Parser) parseParameter() (ast.Parameter, error) {
	start := p.tr.Mark()
	rem := p.remaining()
	n := lexer.Variable(rem)
	if n == 0 {
		return ast.Parameter{}, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected variable (e.g. $foo) in parameter list")
	}
	name := lexer.NormalizeIdent(string(rem[1:n]))
	p.tr.Advance(n)
	p.skipTrivia()
	param := ast.Parameter{Name: name}
	if p.acceptByte(':') {
		p.skipTrivia()
		val, err := p.parseSpaceList()
		if err != nil {
			return ast.Parameter{}, err
		}
		param.Default = val
	} else if _, ok := p.accept(lexer.Lit("...")); ok {
		param.IsRest = true
	}
	param.Range = p.since(start)
	return param, nil
}

// --- generic directives --------------------------------------------------

// parseGenericDirective parses any `@<ident>` not otherwise recognized
// (spec §4.6 item 11), e.g. @font-face, @keyframes, @page: a raw value
// span up to the next block/statement terminator, plus an optional block.
func (p *Parser) parseGenericDirective(start types.SourcePosition, name string) (ast.Statement, error) {
	p.skipTrivia()
	lr := p.lookaheadValue()
	var value ast.Expression
	if lr.hasInterpolants {
		v, err := p.parseValueSchema(lr.endOffset)
		if err != nil {
			return nil, err
		}
		value = v
	} else if lr.found {
		textStart := p.tr.Mark()
		begin := p.tr.Offset()
		text := strings.TrimSpace(string(p.src[begin:lr.endOffset]))
		p.tr.Advance(lr.endOffset - begin)
		if text != "" {
			value = ast.StringConstant{Base: p.spanFrom(textStart), Value: text}
		}
	}

	var body *ast.Block
	p.skipTrivia()
	if b, ok := p.peekByte(); ok && b == '{' {
		blk, err := p.parseBracedBlock(ast.ScopeRules)
		if err != nil {
			return nil, err
		}
		body = blk
	}
	return ast.Directive{Base: p.spanFrom(start), Name: name, Value: value, Body: body}, nil
}

// --- declarations --------------------------------------------------------

// isPropertyNameByte mirrors lexer's identifier-continuation class; kept
// local since a property-name token also accepts "#{" interpolation runs
// the plain lexer.Identifier matcher doesn't.
func isPropertyNameByte(b byte) bool {
	return b == '-' || b == '_' || b >= 0x80 ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// scanPropertyName scans a property-name token at the cursor, tolerating
// "#{...}" interpolation runs (spec §4.7's identifier_schema, mirrored for
// declaration property names). It does not advance the tracker.
func (p *Parser) scanPropertyName() (text []byte, hasInterp bool, ok bool) {
	src := p.src
	i := p.tr.Offset()
	start := i
	end := len(src)
	for i < end {
		if src[i] == '#' && i+1 < end && src[i+1] == '{' {
			hasInterp = true
			depth := 1
			i += 2
			for i < end && depth > 0 {
				switch src[i] {
				case '{':
					depth++
				case '}':
					depth--
				}
				i++
			}
			continue
		}
		if !isPropertyNameByte(src[i]) {
			break
		}
		i++
	}
	if i == start {
		return nil, false, false
	}
	return src[start:i], hasInterp, true
}

// scanBalancedBraceBody returns the offset just past the "}" that balances
// the "{" at src[begin], honoring quoted strings and block comments nested
// inside (spec §4.6 "Custom properties": a custom property's value may
// itself be a brace block, kept verbatim rather than parsed as a nested
// declaration body). Returns -1 if the brace never closes.
func scanBalancedBraceBody(src []byte, begin, end int) int {
	depth := 1
	j := begin + 1
	for j < end && depth > 0 {
		switch {
		case src[j] == '\'' || src[j] == '"':
			n, closed := lexer.QuotedStringOpen(src[j:end])
			if !closed {
				return -1
			}
			j += n
		case j+1 < end && src[j] == '/' && src[j+1] == '*':
			n, closed := lexer.BlockCommentOpen(src[j:end])
			if !closed {
				return -1
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
	if depth != 0 {
		return -1
	}
	return j
}

// parseDeclaration parses a CSS property: value pair, including the
// custom-property any-value mode and nested property blocks (spec §4.6,
// parser.cpp's parse_declaration). The caller has already used
// lookaheadSelector to decide this wasn't a ruleset.
func (p *Parser) parseDeclaration() (ast.Statement, error) {
	start := p.tr.Mark()
	p.acceptByte('*') // tolerate a leading IE star-hack prefix

	nameBytes, hasInterp, ok := p.scanPropertyName()
	if !ok {
		tok := classifyToken(p.remaining())
		return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "expected property name, found %s %q", tok.Type, tok.Value)
	}
	propStart := p.tr.Mark()
	raw := string(nameBytes)
	isCustom := strings.HasPrefix(raw, "--")

	var property ast.Expression
	if hasInterp {
		schema, err := p.buildStringSchema(nameBytes, p.tr.Offset(), ast.QuoteNone)
		if err != nil {
			return nil, err
		}
		p.tr.Advance(len(nameBytes))
		schema.Base = p.spanFrom(propStart)
		property = schema
	} else {
		p.tr.Advance(len(nameBytes))
		property = ast.StringConstant{Base: p.spanFrom(propStart), Value: raw}
	}

	p.skipTrivia()
	if !p.acceptByte(':') {
		return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "property %q must be followed by ':'", raw)
	}
	for p.acceptByte(':') {
	}

	isIndented := true
	probe := p.tr.Clone()
	p.skipTrivia()
	if b, ok := p.peekByte(); ok {
		if !isCustom && b == ';' {
			return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "style declaration must contain a value")
		}
		if b == '{' {
			isIndented = false
		}
	}
	p.tr = probe

	decl := ast.Declaration{Property: property, IsCustom: isCustom, IsIndented: isIndented}

	if isCustom {
		if err := p.parseCustomPropertyValue(&decl); err != nil {
			return nil, err
		}
	} else {
		if err := p.parseStandardPropertyValue(&decl); err != nil {
			return nil, err
		}
	}

	p.skipTrivia()
	if b, ok := p.peekByte(); ok && b == '{' && !isCustom {
		if isIndented {
			p.indentation++
		}
		body, err := p.parseBracedBlock(ast.ScopeProperties)
		if err != nil {
			return nil, err
		}
		decl.Body = body
		if isIndented {
			p.indentation--
		}
	}

	decl.Base = p.spanFrom(start)
	return decl, nil
}

// parseCustomPropertyValue parses a "--custom-property" value in any-value
// mode: a "{...}" value always becomes a StringSchema of its balanced text;
// otherwise the raw text up to the next terminator is kept verbatim as a
// StringConstant, and only reparsed into a StringSchema when it carries
// interpolation (spec §4.6 "Custom properties"; parser.cpp's
// parse_css_variable_value).
func (p *Parser) parseCustomPropertyValue(decl *ast.Declaration) error {
	p.skipTrivia()
	valStart := p.tr.Mark()
	begin := p.tr.Offset()
	if begin < len(p.src) && p.src[begin] == '{' {
		closeEnd := scanBalancedBraceBody(p.src, begin, len(p.src))
		if closeEnd < 0 {
			return p.errf(dialecterrors.KindLexical, p.pos(), "unterminated custom property brace value")
		}
		text := p.src[begin:closeEnd]
		schema, err := p.buildStringSchema(text, begin, ast.QuoteNone)
		if err != nil {
			return err
		}
		p.tr.Advance(closeEnd - begin)
		schema.Base = p.spanFrom(valStart)
		decl.Value = schema
		return nil
	}
	lvr := p.lookaheadValue()
	end := lvr.endOffset
	if !lvr.found {
		end = len(p.src)
	}
	text := p.src[begin:end]
	if lvr.hasInterpolants {
		schema, err := p.buildStringSchema(text, begin, ast.QuoteNone)
		if err != nil {
			return err
		}
		p.tr.Advance(end - begin)
		schema.Base = p.spanFrom(valStart)
		decl.Value = schema
		return nil
	}
	p.tr.Advance(end - begin)
	trimmed := strings.TrimSpace(string(text))
	if trimmed == "" {
		return p.errf(dialecterrors.KindSemantic, p.pos(), "Custom property values may not be empty.")
	}
	decl.Value = ast.StringConstant{Base: p.spanFrom(valStart), Value: trimmed}
	return nil
}

// parseStandardPropertyValue parses a normal declaration's value: a value
// schema when the lookahead finds interpolation, otherwise a full
// (delayed-slash) expression list (spec §4.5, §4.6).
func (p *Parser) parseStandardPropertyValue(decl *ast.Declaration) error {
	p.skipTrivia()
	lvr := p.lookaheadValue()
	if lvr.hasInterpolants {
		v, err := p.parseValueSchema(lvr.endOffset)
		if err != nil {
			return err
		}
		decl.Value = v
	} else {
		v, err := p.parseExpressionList()
		if err != nil && err != errNoFactor {
			return err
		}
		if err == nil {
			decl.Value = v
		}
	}

	p.skipTrivia()
	if decl.Value == nil {
		if b, ok := p.peekByte(); !ok || b != '{' {
			return p.errf(dialecterrors.KindSyntactic, p.pos(), "expected expression (e.g. 1px, bold)")
		}
	}

	save := p.tr.Clone()
	if p.acceptByte('!') {
		p.skipTrivia()
		if p.acceptKeyword("important") {
			decl.Important = true
		} else {
			p.tr = save
		}
	}
	return nil
}
