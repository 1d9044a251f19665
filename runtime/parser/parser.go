// Package parser implements the dialect's recursive-descent parser:
// lexical recognition, grammar dispatch, expression-precedence climbing,
// selector and interpolation handling, and the source-position bookkeeping
// underlying diagnostics. Evaluation, file I/O, and CLI concerns live
// outside this package and are reached only through the Importer interface.
package parser

import (
	"fmt"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/cascadelang/cascade/core/ast"
	"github.com/cascadelang/cascade/core/invariant"
	"github.com/cascadelang/cascade/core/types"
	dialecterrors "github.com/cascadelang/cascade/pkgs/errors"
	"github.com/cascadelang/cascade/runtime/lexer"
)

// Importer is consulted by @import for each plain-string entry (spec §6).
// Handled(true) means the Importer itself produced the resolved stubs;
// with Handled(false) the entry stays in the Import node's Entries as
// written. The parser has no file resolver of its own and does not fall
// back to runtime/importer.
type Importer interface {
	Resolve(importURL, importingPath string, sourceRange types.SourceRange) (stubs []ast.ImportStub, handled bool)
}

// Option configures a Parser's construction (spec's own options list is
// empty — this mirrors the teacher's ParserOpt/ParserConfig pattern,
// runtime/parser/options.go, re-scoped to what this parser needs).
type Option func(*config)

const defaultNestingLimit = 250

type config struct {
	logger       *slog.Logger
	nestingLimit int
	traces       bool
	knownNames   []string
}

// WithLogger overrides the default slog.Logger used for Debug-level trace
// entries at grammar transitions. A nil logger (the default) discards
// traces at no cost beyond the disabled level check.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithNestingLimit overrides the default recursion ceiling enforced by the
// scoped nesting guard (spec §3 nesting_depth, §8 property 4).
func WithNestingLimit(n int) Option {
	return func(c *config) { c.nestingLimit = n }
}

// WithTraces enables back-trace frame recording for nested parser
// invocations (interpolation sub-parses, selector-schema re-parses),
// surfaced on ParseError.Trace (spec §6).
func WithTraces(enabled bool) Option {
	return func(c *config) { c.traces = enabled }
}

// WithKnownNames adds names known ahead of parsing (e.g. a stdlib of
// built-in function names) to the Parser's known-name list; names bound
// during the parse are appended as they're seen. No parse error consults
// this list: error messages carry no "did you mean" suggestion
// (pkgs/errors.SuggestClosest is not called by the parser).
func WithKnownNames(names []string) Option {
	return func(c *config) { c.knownNames = append(c.knownNames, names...) }
}

// elseState tracks the @if/@else continuation state machine across a
// single block's statement loop (spec §4.9).
type elseState int

const (
	elseNone elseState = iota
	elseAfterIf
)

// Parser holds all state for one parse (spec §3): the cursor, the stack of
// currently-open blocks, the stack of enclosing grammatical scopes, the
// nesting-depth counter, the allow_parent flag, and nested-property
// indentation depth. A Parser is not safe for concurrent use; each parse
// (including every interpolation/selector-schema sub-parse) constructs its
// own.
type Parser struct {
	path     string
	src      []byte
	tr       *lexer.Tracker
	importer Importer

	logger       *slog.Logger
	nestingLimit int
	knownNames   []string
	tracesOn     bool
	trace        []types.SourceRange

	blockStack   []*ast.Block
	scopeStack   []ast.Scope
	nestingDepth int
	allowParent  bool
	indentation  int
}

func newConfig(opts []Option) *config {
	c := &config{nestingLimit: defaultNestingLimit}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	return c
}

func newParser(src []byte, path string, importer Importer, trace []types.SourceRange, opts []Option) *Parser {
	c := newConfig(opts)
	return &Parser{
		path:         path,
		src:          src,
		tr:           lexer.NewTracker(path, src),
		importer:     importer,
		logger:       c.logger,
		nestingLimit: c.nestingLimit,
		knownNames:   c.knownNames,
		tracesOn:     c.traces,
		trace:        append([]types.SourceRange(nil), trace...),
		scopeStack:   []ast.Scope{ast.ScopeRoot},
		allowParent:  true,
	}
}

// Parse is the top-level entry point (spec §6): `parse(source, path,
// importer, traces) → Block`. It strips a UTF-8 BOM, rejects any other
// known BOM or invalid UTF-8, then parses the root block to EOF.
func Parse(source []byte, path string, importer Importer, opts ...Option) (*ast.Block, error) {
	src, err := stripAndValidateEncoding(source)
	if err != nil {
		return nil, err
	}
	p := newParser(src, path, importer, nil, opts)
	p.logger.Debug("parse start", "path", path, "bytes", len(src))
	block, perr := p.parseBlock(ast.ScopeRoot)
	if perr != nil {
		return nil, perr
	}
	invariant.Postcondition(p.atEnd(), "Parse must consume the entire buffer on success, stopped at offset %d", p.tr.Offset())
	p.logger.Debug("parse done", "statements", len(block.Statements))
	return block, nil
}

// ParseSelector parses a standalone selector list (spec §6
// `parse_selector`), used by programmatic selector-list APIs outside a
// ruleset context.
func ParseSelector(source []byte, path string, opts ...Option) (*ast.SelectorList, error) {
	src, err := stripAndValidateEncoding(source)
	if err != nil {
		return nil, err
	}
	p := newParser(src, path, nil, nil, opts)
	p.allowParent = true
	p.skipTrivia()
	list, perr := p.parseSelectorList()
	if perr != nil {
		return nil, perr
	}
	p.skipTrivia()
	if !p.atEnd() {
		return nil, p.errf(dialecterrors.KindSyntactic, p.pos(), "unexpected trailing input after selector list")
	}
	return &list, nil
}

// --- encoding -----------------------------------------------------------

var rejectedBOMs = []struct {
	name string
	bom  []byte
}{
	{"UTF-32 (big-endian)", []byte{0x00, 0x00, 0xFE, 0xFF}},
	{"UTF-32 (little-endian)", []byte{0xFF, 0xFE, 0x00, 0x00}},
	{"GB-18030", []byte{0x84, 0x31, 0x95, 0x33}},
	{"UTF-16 (big-endian)", []byte{0xFE, 0xFF}},
	{"UTF-16 (little-endian)", []byte{0xFF, 0xFE}},
	{"UTF-7", []byte{0x2B, 0x2F, 0x76}},
	{"UTF-1", []byte{0xF7, 0x64, 0x4C}},
	{"EBCDIC", []byte{0xDD, 0x73, 0x66, 0x73}},
	{"SCSU", []byte{0x0E, 0xFE, 0xFF}},
	{"BOCU-1", []byte{0xFB, 0xEE, 0x28}},
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func stripAndValidateEncoding(source []byte) ([]byte, error) {
	if hasPrefix(source, utf8BOM) {
		source = source[len(utf8BOM):]
	} else {
		for _, b := range rejectedBOMs {
			if hasPrefix(source, b.bom) {
				return nil, &ParseError{
					Kind:    dialecterrors.KindEncoding,
					Message: fmt.Sprintf("unsupported source encoding: %s byte-order mark detected", b.name),
				}
			}
		}
	}
	if !utf8.Valid(source) {
		off := firstInvalidUTF8(source)
		return nil, &ParseError{
			Kind:        dialecterrors.KindEncoding,
			Start:       types.SourcePosition{Offset: off},
			End:         types.SourcePosition{Offset: off},
			Message:     fmt.Sprintf("invalid UTF-8 sequence at byte offset %d", off),
			SourceSlice: trimContext(source, off),
		}
	}
	return source, nil
}

func hasPrefix(b, prefix []byte) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i := range prefix {
		if b[i] != prefix[i] {
			return false
		}
	}
	return true
}

func firstInvalidUTF8(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return len(b)
}

// --- cursor / trivia helpers ----------------------------------------------

func (p *Parser) remaining() []byte { return p.tr.Remaining() }
func (p *Parser) pos() types.SourcePosition { return p.tr.Position() }
func (p *Parser) atEnd() bool { return p.tr.AtEnd() }

// skipTrivia consumes whitespace, "//" line comments, and "/* */" block
// comments silently. It is used inside expressions and selectors, where
// comments are never retained as nodes (spec SPEC_FULL #5 retains only
// block-level/rule-body comments, handled separately in parseBlock).
func (p *Parser) skipTrivia() {
	for {
		rem := p.remaining()
		if n := lexer.OnePlus(byteClassMatch(lexer.IsWhitespace))(rem); n > 0 {
			p.tr.Advance(n)
			continue
		}
		if n := lexer.LineComment(rem); n > 0 {
			p.tr.Advance(n)
			continue
		}
		if n, closed := lexer.BlockCommentOpen(rem); closed {
			p.tr.Advance(n)
			continue
		}
		break
	}
}

// skipWSAndLineComments skips whitespace and line comments but stops right
// before a block comment, so the statement dispatcher can decide whether to
// retain it as a Comment node.
func (p *Parser) skipWSAndLineComments() {
	for {
		rem := p.remaining()
		if n := lexer.OnePlus(byteClassMatch(lexer.IsWhitespace))(rem); n > 0 {
			p.tr.Advance(n)
			continue
		}
		if n := lexer.LineComment(rem); n > 0 {
			p.tr.Advance(n)
			continue
		}
		break
	}
}

// skipTriviaSpaced is skipTrivia that also reports whether any bytes were
// actually consumed, used by the expression parser to record whether
// whitespace surrounded an operator (spec §4.5).
func (p *Parser) skipTriviaSpaced() bool {
	before := p.tr.Offset()
	p.skipTrivia()
	return p.tr.Offset() > before
}

func byteClassMatch(pred func(byte) bool) lexer.MatchFunc {
	return func(s []byte) int {
		i := 0
		for i < len(s) && pred(s[i]) {
			i++
		}
		return i
	}
}

// accept commits mf's match (if any), advancing the tracker, and returns the
// matched text.
func (p *Parser) accept(mf lexer.MatchFunc) (string, bool) {
	rem := p.remaining()
	n := mf(rem)
	if n == 0 {
		return "", false
	}
	p.tr.Advance(n)
	return string(rem[:n]), true
}

func (p *Parser) peekByte() (byte, bool) {
	rem := p.remaining()
	if len(rem) == 0 {
		return 0, false
	}
	return rem[0], true
}

func (p *Parser) acceptByte(c byte) bool {
	b, ok := p.peekByte()
	if !ok || b != c {
		return false
	}
	p.tr.Advance(1)
	return true
}

// --- scope / block / nesting guards ----------------------------------------

func (p *Parser) currentScope() ast.Scope {
	return p.scopeStack[len(p.scopeStack)-1]
}

func (p *Parser) pushScope(s ast.Scope) {
	p.scopeStack = append(p.scopeStack, s)
}

func (p *Parser) popScope() {
	p.scopeStack = p.scopeStack[:len(p.scopeStack)-1]
}

// inScope reports whether any enclosing scope (innermost first) equals s.
func (p *Parser) inScope(s ast.Scope) bool {
	for i := len(p.scopeStack) - 1; i >= 0; i-- {
		if p.scopeStack[i] == s {
			return true
		}
	}
	return false
}

// enterNesting implements the scoped recursion guard (spec §3
// nesting_depth, §9 "Scoped guards"): it increments the depth, errors if the
// ceiling is exceeded, and returns a restore function the caller must defer
// immediately so the depth is restored even when an error unwinds the call.
func (p *Parser) enterNesting() (func(), error) {
	p.nestingDepth++
	if p.nestingDepth > p.nestingLimit {
		depth := p.nestingDepth
		p.nestingDepth--
		return func() {}, p.errf(dialecterrors.KindOverflow, p.pos(), "expression or selector nested too deeply (limit %d, reached %d)", p.nestingLimit, depth)
	}
	return func() { p.nestingDepth-- }, nil
}

// withAllowParent runs fn with allow_parent set to v, restoring the prior
// value on return (spec §9 scoped guard for `&` legality).
func (p *Parser) withAllowParent(v bool, fn func() error) error {
	prev := p.allowParent
	p.allowParent = v
	defer func() { p.allowParent = prev }()
	return fn()
}

// --- errors -----------------------------------------------------------

func (p *Parser) errf(kind dialecterrors.Kind, pos types.SourcePosition, format string, args ...interface{}) *ParseError {
	return newParseError(kind, p.path, p.src, pos, p.trace, format, args...)
}

func (p *Parser) errRange(kind dialecterrors.Kind, rng types.SourceRange, format string, args ...interface{}) *ParseError {
	return newParseErrorRange(kind, p.path, p.src, rng, p.trace, format, args...)
}

// since returns the SourceRange from mark to the current position.
func (p *Parser) since(mark types.SourcePosition) types.SourceRange {
	return p.tr.Since(mark)
}

// childTrace appends rng to the back-trace list, used when constructing a
// nested Parser for an interpolation or selector-schema sub-parse (spec §9
// "Interpolation recursion").
func (p *Parser) childTrace(rng types.SourceRange) []types.SourceRange {
	if !p.tracesOn {
		return nil
	}
	return append(append([]types.SourceRange(nil), p.trace...), rng)
}

// rememberName appends a bound name (variable, mixin, function) to the
// Parser's known-name list.
func (p *Parser) rememberName(name string) {
	invariant.Precondition(name != "", "rememberName: name must not be empty")
	p.knownNames = append(p.knownNames, name)
}
