// Package ast defines the abstract syntax tree produced by runtime/parser.
//
// Every node carries an immutable types.SourceRange (spec §3). Node families
// are tagged variants (one Go struct per alternative) rather than a single
// interface-and-downcast hierarchy with shared reference-counted storage, the
// way the dialect's own C++ implementation models them — Go's type system
// makes pattern matching on a sum type cheaper than runtime casts, so a type
// switch on the Statement/Expression/Selector interfaces stands in for the
// original's Cast<T>(node) calls.
//
// A Block exclusively owns its Statements; a Statement exclusively owns its
// sub-Expressions. There is no parent pointer anywhere in this tree:
// diagnostics are driven by SourceRange, not by tree walks toward the root.
package ast

import (
	"strings"

	"github.com/cascadelang/cascade/core/types"
)

// Node is implemented by every AST node: statements, expressions, selectors,
// and the block/argument/parameter helper types.
type Node interface {
	SourceRange() types.SourceRange
}

// Base is embedded by every node to supply SourceRange() and avoid repeating
// the same field/method pair on every variant.
type Base struct {
	Range types.SourceRange
}

func (b Base) SourceRange() types.SourceRange { return b.Range }

// ---------------------------------------------------------------------------
// Blocks
// ---------------------------------------------------------------------------

// Scope names the grammatical context a Block was opened in (spec §3
// scope_stack). The parser uses this to reject illegal nestings such as
// @import inside @function.
type Scope int

const (
	ScopeRoot Scope = iota
	ScopeRules
	ScopeProperties
	ScopeMixin
	ScopeFunction
	ScopeControl
	ScopeMedia
	ScopeAtRoot
)

func (s Scope) String() string {
	switch s {
	case ScopeRoot:
		return "root"
	case ScopeRules:
		return "rules"
	case ScopeProperties:
		return "properties"
	case ScopeMixin:
		return "mixin"
	case ScopeFunction:
		return "function"
	case ScopeControl:
		return "control"
	case ScopeMedia:
		return "media"
	case ScopeAtRoot:
		return "at-root"
	default:
		return "unknown-scope"
	}
}

// Block is an ordered sequence of statements enclosed in (or standing in
// for) a pair of braces. The root block returned by Parse has no braces of
// its own; its Range spans the whole source buffer.
type Block struct {
	Base
	Statements []Statement
	Scope      Scope
	// Indentation is the nested-property declaration depth at this block's
	// opening, surfaced for a later pretty-printer (spec §3).
	Indentation int
}

// ---------------------------------------------------------------------------
// Statement
// ---------------------------------------------------------------------------

// Statement is implemented by every top-level-of-a-block construct.
type Statement interface {
	Node
	stmtNode()
}

func (Assignment) stmtNode()  {}
func (Ruleset) stmtNode()     {}
func (Declaration) stmtNode() {}
func (MediaRule) stmtNode()   {}
func (SupportsRule) stmtNode() {}
func (AtRootBlock) stmtNode() {}
func (If) stmtNode()          {}
func (For) stmtNode()         {}
func (Each) stmtNode()        {}
func (While) stmtNode()       {}
func (Return) stmtNode()      {}
func (Import) stmtNode()      {}
func (ImportStub) stmtNode()  {}
func (ExtendRule) stmtNode()  {}
func (MixinCall) stmtNode()   {}
func (ContentCall) stmtNode() {}
func (Definition) stmtNode()  {}
func (Directive) stmtNode()   {}
func (Comment) stmtNode()     {}
func (Warning) stmtNode()     {}
func (ErrorStatement) stmtNode() {}
func (Debug) stmtNode()       {}

// AssignmentFlag is a trailing !default / !global flag (spec §4.6 item 1;
// SPEC_FULL #7 — modeled as flags on the node, not as grammar productions).
type AssignmentFlag int

const (
	FlagDefault AssignmentFlag = iota
	FlagGlobal
)

// Assignment is `$var: expr [!default|!global]*;`.
type Assignment struct {
	Base
	Name  string // canonical form: - in place of _
	Value Expression
	Flags []AssignmentFlag
}

func (a Assignment) HasFlag(f AssignmentFlag) bool {
	for _, g := range a.Flags {
		if g == f {
			return true
		}
	}
	return false
}

// Ruleset connects a selector list with a nested block.
type Ruleset struct {
	Base
	Selector SelectorNode // SelectorList or SelectorSchema
	Body     *Block
}

// Declaration is a CSS property: value pair, optionally owning a nested
// block (property nesting, spec §4.6).
type Declaration struct {
	Base
	Property   Expression // StringConstant or StringSchema
	Value      Expression // nil when the declaration only owns a nested Body
	Important  bool
	IsCustom   bool // property begins with "--"
	Body       *Block
	IsIndented bool
}

// MediaRule is `@media <queries> { ... }`.
type MediaRule struct {
	Base
	Queries []MediaQuery
	Body    *Block
}

// SupportsRule is `@supports <condition> { ... }`.
type SupportsRule struct {
	Base
	Condition SupportsCondition
	Body      *Block
}

// AtRootQueryMode selects whether an @at-root query whitelists ("with") or
// blacklists ("without") the named rule kinds.
type AtRootQueryMode int

const (
	AtRootQueryNone AtRootQueryMode = iota
	AtRootWith
	AtRootWithout
)

// AtRootBlock is `@at-root [(with: ...|without: ...)] { ... }`.
type AtRootBlock struct {
	Base
	QueryMode AtRootQueryMode
	Query     []string // rule-kind names, e.g. "media", "rule", "all"
	Body      *Block
}

// If is `@if expr { ... } (@else if expr { ... })* (@else { ... })?`.
// The chain is modeled recursively: Alternative is either another If value
// (an "@else if") or a plain *Block (the final "@else").
type If struct {
	Base
	Condition   Expression
	Consequent  *Block
	Alternative Node // If, *Block, or nil
}

// For is `@for $v from a (to|through) b { ... }`.
type For struct {
	Base
	Variable  string
	From      Expression
	To        Expression
	Inclusive bool // "through" (inclusive) vs "to" (exclusive)
	Body      *Block
}

// Each is `@each $v1 (, $v2)* in expr { ... }`.
type Each struct {
	Base
	Variables []string
	Source    Expression
	Body      *Block
}

// While is `@while expr { ... }`.
type While struct {
	Base
	Condition Expression
	Body      *Block
}

// Return is `@return expr;`, legal only inside Scope == ScopeFunction.
type Return struct {
	Base
	Value Expression
}

// ImportEntry is one comma-separated item of an @import list.
type ImportEntry struct {
	// Literal is set when the entry is a CSS url()/media-qualified import
	// kept verbatim in the AST (never dispatched to the Importer).
	Literal Expression // FunctionCall("url", ...) when Literal
	IsURL   bool
	// Path is set for a plain quoted-string entry, dispatched to the
	// Importer interface.
	Path string
	Range types.SourceRange
}

// Import is `@import "a", "b", url(c);`. Plain-string entries are offered to
// the Importer interface during parsing, unless the list carries a media
// query tail, in which case they are kept as entries. The parser puts this node (holding
// the literal entries and any plain entries the Importer did not handle) in
// the enclosing block, followed by one ImportStub statement per stub the
// Importer produced; Stubs is therefore empty on an Import in a finished
// tree, and the node is left out when no entry or media query remains.
type Import struct {
	Base
	Entries      []ImportEntry
	MediaQueries []MediaQuery // present only when non-plain entries carry a query tail
	Stubs        []ImportStub
}

// ImportStub is a resolved import target (one per file the Importer or
// default resolver expanded a plain-string entry into), spec §6.
type ImportStub struct {
	Base
	ResolvedPath string
}

// ExtendRule is `@extend <selector> [!optional];`.
type ExtendRule struct {
	Base
	Target   SelectorNode
	Optional bool
}

// MixinCall is `@include name[(args)][ { content } ];`.
type MixinCall struct {
	Base
	Name      string
	Arguments []Argument
	Content   *Block // non-nil when followed by a block
}

// ContentCall is `@content[(args)];`, legal only inside Scope == ScopeMixin.
type ContentCall struct {
	Base
	Arguments []Argument
}

// DefinitionKind distinguishes @mixin from @function.
type DefinitionKind int

const (
	DefMixin DefinitionKind = iota
	DefFunction
)

// Definition is `@mixin name(params) { ... }` or `@function name(params) { ... }`.
type Definition struct {
	Base
	Kind   DefinitionKind
	Name   string
	Params []Parameter
	Body   *Block
}

// Directive is a generic `@<ident> ...;` or `@<ident> ... { ... }` not
// otherwise recognized (spec §4.6 item 11), e.g. @charset, @font-face,
// @keyframes, @page.
type Directive struct {
	Base
	Name  string
	Value Expression // may be nil
	Body  *Block     // nil when the directive has no block
}

// Comment is a retained `/* ... */` comment (spec SPEC_FULL #5: only those
// the original stores, i.e. top-level and rule-body comments).
type Comment struct {
	Base
	Text      StringSchemaValue
	Important bool // /*! ... */
}

// Warning is `@warn expr;`.
type Warning struct {
	Base
	Value Expression
}

// ErrorStatement is `@error expr;`.
type ErrorStatement struct {
	Base
	Value Expression
}

// Debug is `@debug expr;`.
type Debug struct {
	Base
	Value Expression
}

// ---------------------------------------------------------------------------
// Expression
// ---------------------------------------------------------------------------

// Expression is implemented by every value-producing node.
type Expression interface {
	Node
	exprNode()
}

func (List) exprNode()           {}
func (Map) exprNode()            {}
func (Variable) exprNode()       {}
func (BinaryExpression) exprNode() {}
func (UnaryExpression) exprNode() {}
func (FunctionCall) exprNode()   {}
func (Number) exprNode()         {}
func (Color) exprNode()          {}
func (Boolean) exprNode()        {}
func (Null) exprNode()           {}
func (StringConstant) exprNode() {}
func (StringQuoted) exprNode()   {}
func (StringSchema) exprNode()   {}
func (ParentReference) exprNode() {}

// ListSeparator distinguishes how a List's elements were delimited.
type ListSeparator int

const (
	SepSpace ListSeparator = iota
	SepComma
)

// List is a space- or comma-separated sequence of expressions. A List with
// exactly one element is unwrapped to that element at parse time unless
// Bracketed is set (spec §3 invariants) — so a *List appearing anywhere in
// a finished tree always has either Bracketed == true or len(Elements) != 1.
type List struct {
	Base
	Elements  []Expression
	Separator ListSeparator
	Bracketed bool
}

// MapEntry is one key: value pair of a Map literal.
type MapEntry struct {
	Key   Expression
	Value Expression
}

// Map is `(k1: v1, k2: v2, ...)`.
type Map struct {
	Base
	Entries []MapEntry
}

// Variable is `$name`, normalized (- in place of _).
type Variable struct {
	Base
	Name string
}

// BinaryOp enumerates every binary operator across the relation, additive,
// and multiplicative precedence levels, plus the disjunction/conjunction
// keywords (spec §4.5).
type BinaryOp int

const (
	OpOr BinaryOp = iota
	OpAnd
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
)

func (op BinaryOp) String() string {
	switch op {
	case OpOr:
		return "or"
	case OpAnd:
		return "and"
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	default:
		return "?"
	}
}

// BinaryExpression's IsDelayedSlash is true for every "/" operator and false
// for all others: the parser never computes division, and evaluation decides
// whether to treat the operator literally (e.g. `16px/24px`) or as
// arithmetic (spec §4.5, GLOSSARY "Delayed expression"). SpaceBefore/SpaceAfter record
// whitespace around the operator for relation/additive/multiplicative ops,
// per spec §4.5's "records whether spaces surround the op".
type BinaryExpression struct {
	Base
	Left, Right      Expression
	Op               BinaryOp
	IsDelayedSlash   bool
	SpaceBefore      bool
	SpaceAfter       bool
}

// UnaryOp enumerates the factor-level prefix operators.
type UnaryOp int

const (
	UnaryPlus UnaryOp = iota
	UnaryMinus
	UnarySlash // the unary "/" used in e.g. "font: /24px" contexts
	UnaryNot
)

// UnaryExpression is a prefix operator applied to a factor.
type UnaryExpression struct {
	Base
	Op       UnaryOp
	Operand  Expression
}

// FunctionCall is `name(args)`, including calc(), url(), and plain CSS
// function syntax indistinguishable from a dialect function until
// evaluation.
type FunctionCall struct {
	Base
	Name      string
	Arguments []Argument
	// IsInterpolant is true when this call was produced while parsing the
	// inside of a #{...} interpolation (spec §4.4).
	IsInterpolant bool
}

// Number preserves enough of its textual form to round-trip sign,
// leading-zero presence, decimal part, and unit (spec §3 invariants,
// §8 property 2).
type Number struct {
	Base
	Value         float64
	Unit          string // "", "px", "%", ...
	Negative      bool
	HasLeadingZero bool
	// IsDelayed marks a numeric operand adjacent to an un-evaluated "/"
	// (spec GLOSSARY "Delayed expression").
	IsDelayed bool
	// Raw is the exact literal text as it appeared in source, used for the
	// Number round-trip testable property.
	Raw string
}

// Color is a literal color, either #rgb[a]/#rrggbb[aa] hex or an SCSS/CSS
// named/functional color recognized lexically (rgba(), hsl(), ...) and kept
// as its display text; no color arithmetic or canonicalization happens here
// (spec §1 Non-goals).
type Color struct {
	Base
	R, G, B uint8
	A       float64
	// Disp is the exact text the color was written as, used for output
	// fidelity by a later printer.
	Disp string
}

// Boolean is `true` or `false`.
type Boolean struct {
	Base
	Value bool
}

// Null is the `null` literal.
type Null struct {
	Base
}

// StringConstant is an unquoted literal string with no interpolation, e.g.
// `red`, `solid`, a bare property name, or a selector's type name reused as
// a string value.
type StringConstant struct {
	Base
	Value string
}

// QuoteStyle records which quote character wrapped a StringQuoted/StringSchema.
type QuoteStyle int

const (
	QuoteNone QuoteStyle = iota
	QuoteSingle
	QuoteDouble
)

// StringQuoted is a quoted string containing no interpolation.
type StringQuoted struct {
	Base
	Value string
	Quote QuoteStyle
}

// StringSchemaValue is either a literal run of text or an interpolated
// expression; StringSchema.Parts alternates the two, adjacent literals
// merged (spec §3 invariants).
type StringSchemaValue struct {
	IsExpression bool
	Literal      string      // valid when !IsExpression
	Expr         Expression  // valid when IsExpression
	Range        types.SourceRange
}

// StringSchema is a string whose final shape depends on evaluating one or
// more #{...} interpolations; used for selectors, property names, URL
// arguments, custom-property bodies, and quoted strings carrying
// interpolation (spec §3, §4.4, GLOSSARY "Interpolation").
type StringSchema struct {
	Base
	Parts []StringSchemaValue
	Quote QuoteStyle // QuoteNone when this schema isn't a quoted string
}

// ParentReference is `&`.
type ParentReference struct {
	Base
}

// ---------------------------------------------------------------------------
// Argument / Parameter
// ---------------------------------------------------------------------------

// Parameter is one formal parameter of a @mixin/@function definition:
// `$name`, `$name: default`, or `$name...` (rest, spreading a list or map).
type Parameter struct {
	Name    string
	Default Expression // nil when not given
	IsRest  bool
	Range   types.SourceRange
}

// Argument is one actual argument of a @include/@content call or a
// function-call expression: positional, named (`$name: value`), or a
// spread (`value...`, list- or map-spread depending on value's shape).
type Argument struct {
	Name       string // empty when positional
	Value      Expression
	IsSpread   bool
	IsKeywordSpread bool // spreading a Map (keyword-argument spread)
	Range      types.SourceRange
}

// ---------------------------------------------------------------------------
// Selector
// ---------------------------------------------------------------------------

// SelectorNode is implemented by both a concrete SelectorList and a
// SelectorSchema standing in for one whose shape depends on interpolation
// (spec §4.7, GLOSSARY "Selector schema").
type SelectorNode interface {
	Node
	selectorHostNode()
}

func (SelectorList) selectorHostNode()   {}
func (SelectorSchema) selectorHostNode() {}

// SelectorSchema is a selector whose text contains interpolation and so
// cannot be fully parsed into a SelectorList until expansion time; it keeps
// the raw interleaved literal/expression parts instead (spec §4.7, §9
// "Interpolated selectors"). Chroot is set when the schema was parsed where
// a parent reference `&` is not allowed (allow_parent false, e.g. an @extend
// target), for the later expansion stage's re-parse.
type SelectorSchema struct {
	Base
	Schema StringSchema
	Chroot bool
}

// SelectorList is a comma-separated list of complex selectors.
type SelectorList struct {
	Base
	Items []ComplexSelector
}

// Combinator joins two compound selectors inside a ComplexSelector.
type Combinator int

const (
	CombinatorDescendant Combinator = iota // ' '
	CombinatorChild                        // '>'
	CombinatorSibling                      // '+'
	CombinatorGeneralSibling                // '~'
)

// ComplexSelectorPart is one (combinator, compound) pair; the first part's
// Combinator is meaningless (there is nothing before it) and is left at its
// zero value.
type ComplexSelectorPart struct {
	Combinator Combinator
	Compound   CompoundSelector
}

// ComplexSelector is compound selectors joined by combinators.
type ComplexSelector struct {
	Base
	Parts []ComplexSelectorPart
}

// CompoundSelector is one or more simple selectors with no intervening
// whitespace, e.g. `div.active#id`.
type CompoundSelector struct {
	Base
	Simples []SimpleSelector
}

// SimpleSelector is implemented by every simple-selector kind.
type SimpleSelector interface {
	Node
	simpleSelectorNode()
}

func (TypeSelector) simpleSelectorNode()        {}
func (UniversalSelector) simpleSelectorNode()   {}
func (ClassSelector) simpleSelectorNode()       {}
func (IDSelector) simpleSelectorNode()          {}
func (PlaceholderSelector) simpleSelectorNode() {}
func (AttributeSelector) simpleSelectorNode()   {}
func (PseudoSelector) simpleSelectorNode()      {}
func (ParentRefSelector) simpleSelectorNode()   {}

// TypeSelector is a bare element name, e.g. `div`.
type TypeSelector struct {
	Base
	Name string
}

// UniversalSelector is `*`.
type UniversalSelector struct {
	Base
}

// ClassSelector is `.name`.
type ClassSelector struct {
	Base
	Name string
}

// IDSelector is `#name`.
type IDSelector struct {
	Base
	Name string
}

// PlaceholderSelector is `%name` (GLOSSARY "Placeholder selector").
type PlaceholderSelector struct {
	Base
	Name string
}

// AttributeSelector is `[attr op "val" i]`.
type AttributeSelector struct {
	Base
	Name         string
	Op           string // "", "=", "~=", "|=", "^=", "$=", "*="
	Value        string
	CaseInsensitive bool
}

// PseudoSelector is `:name`, `::name`, or `:name(argument)`. Argument is
// set for the selector-carrying pseudos (:not, :matches, ...); NthArg/NthOf
// are set for :nth-* pseudos; otherwise ArgumentText carries an opaque
// argument string (spec §4.7).
type PseudoSelector struct {
	Base
	Name         string
	IsElement    bool // :: form
	Argument     SelectorNode // set for :not/:matches/:current/:any/:has/:host/:host-context/:slotted
	ArgumentText string       // opaque argument for any other pseudo-with-parens
	NthExpr      string       // "An+B" text for :nth-* pseudos
	NthOf        SelectorNode // optional "of <selector-list>" for :nth-*
}

// ParentRefSelector is `&` used as a simple selector (legal only when
// allow_parent is set, spec §3/§4.7).
type ParentRefSelector struct {
	Base
}

// ---------------------------------------------------------------------------
// Media / Supports
// ---------------------------------------------------------------------------

// MediaQuery is one comma-separated item of a media query list:
// `[not|only] <type> [and <feature>]*` or a bare feature list.
type MediaQuery struct {
	Range      types.SourceRange
	Modifier   string // "not", "only", or ""
	MediaType  string // "screen", "print", ... or "" when query is feature-only
	Features   []MediaFeature
	Schema     *StringSchema // set when the query text itself carries interpolation
}

// MediaFeature is `(name: value)` or `(name)`.
type MediaFeature struct {
	Name  string
	Value Expression // nil for a valueless feature
	Range types.SourceRange
}

// SupportsCondition is implemented by every @supports condition node
// (spec §4.8): negation, and/or folding, parenthesized sub-conditions,
// a bare declaration, or an interpolation atom.
type SupportsCondition interface {
	Node
	supportsNode()
}

func (SupportsNot) supportsNode()           {}
func (SupportsOp) supportsNode()            {}
func (SupportsDeclaration) supportsNode()   {}
func (SupportsInterpolation) supportsNode() {}
func (SupportsParens) supportsNode()        {}

// SupportsNot is `not <condition>`.
type SupportsNot struct {
	Base
	Condition SupportsCondition
}

// SupportsOpKind distinguishes "and" from "or" folding.
type SupportsOpKind int

const (
	SupportsAnd SupportsOpKind = iota
	SupportsOr
)

// SupportsOp is a left-associative `a and b and c` or `a or b or c` chain;
// the parser rejects mixing and/or at the same level without explicit
// parens (spec §4.8).
type SupportsOp struct {
	Base
	Kind       SupportsOpKind
	Conditions []SupportsCondition
}

// SupportsDeclaration is `(prop: value)`.
type SupportsDeclaration struct {
	Base
	Property Expression
	Value    Expression
}

// SupportsInterpolation is a bare `#{...}` at a condition position, opaque
// to and/or/not folding until evaluated (SPEC_FULL #8).
type SupportsInterpolation struct {
	Base
	Schema StringSchema
}

// SupportsParens is an explicitly parenthesized condition, kept distinct
// from its inner condition so source ranges and re-printing see the parens.
type SupportsParens struct {
	Base
	Inner SupportsCondition
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// NewRange builds a types.SourceRange from two positions sharing a path.
func NewRange(path string, start, end types.SourcePosition) types.SourceRange {
	return types.SourceRange{Path: path, Start: start, End: end}
}

// JoinSchemaLiterals renders a StringSchema's literal segments concatenated
// with a placeholder in place of each interpolation, used by the
// interpolation round-trip testable property (spec §8 property 6).
func JoinSchemaLiterals(s StringSchema, placeholder string) string {
	var b strings.Builder
	for _, p := range s.Parts {
		if p.IsExpression {
			b.WriteString(placeholder)
		} else {
			b.WriteString(p.Literal)
		}
	}
	return b.String()
}
