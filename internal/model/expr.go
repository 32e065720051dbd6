package model

import (
	"slices"
	"strings"
	"unicode"
)

// Expr is a node of the contract expression tree. The set of implementations
// is closed: Identifier, MemberAccess, Invocation, Binary, Unary, Paren,
// Conditional, Literal, Lambda, This and Opaque.
//
// Source holds the literal text the node was parsed from. Nodes built in code
// leave it empty and Text renders a canonical form instead.
type Expr interface {
	Text() string
	exprNode()
}

// BinaryOp tags a binary expression.
type BinaryOp int

// Binary operators the classifier distinguishes. Every other operator is OpOther
// and keeps its token in Binary.Operator.
const (
	OpOther BinaryOp = iota
	OpEq
	OpNotEq
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
	OpAnd
	OpOr
)

var binaryOpTokens = map[BinaryOp]string{
	OpEq:        "==",
	OpNotEq:     "!=",
	OpLess:      "<",
	OpLessEq:    "<=",
	OpGreater:   ">",
	OpGreaterEq: ">=",
	OpAnd:       "&&",
	OpOr:        "||",
}

// ParseBinaryOp maps an operator token to its tag.
func ParseBinaryOp(token string) BinaryOp {
	for op, tok := range binaryOpTokens {
		if tok == token {
			return op
		}
	}

	return OpOther
}

func (op BinaryOp) String() string {
	if tok, ok := binaryOpTokens[op]; ok {
		return tok
	}

	return "?"
}

// IsRelational reports whether op is one of <, <=, >, >=.
func (op BinaryOp) IsRelational() bool {
	return op == OpLess || op == OpLessEq || op == OpGreater || op == OpGreaterEq
}

// IsEquality reports whether op is == or !=.
func (op BinaryOp) IsEquality() bool {
	return op == OpEq || op == OpNotEq
}

// UnaryOp tags a prefix unary expression.
type UnaryOp int

// Prefix operators the classifier distinguishes.
const (
	UnaryOther UnaryOp = iota
	UnaryNot
	UnaryNegate
)

// ParseUnaryOp maps a prefix operator token to its tag.
func ParseUnaryOp(token string) UnaryOp {
	switch token {
	case "!":
		return UnaryNot
	case "-":
		return UnaryNegate
	}

	return UnaryOther
}

// LiteralKind tags a literal.
type LiteralKind int

// Literal kinds.
const (
	LiteralNull LiteralKind = iota
	LiteralTrue
	LiteralFalse
	LiteralNumeric
	LiteralString
	LiteralChar
)

// Identifier is a simple name, optionally generic (Result<bool>).
type Identifier struct {
	Name     string
	TypeArgs []string
	Source   string
}

// MemberAccess is owner.member, optionally generic.
type MemberAccess struct {
	Owner    Expr
	Member   string
	TypeArgs []string
	Source   string
}

// Invocation is callee(args...).
type Invocation struct {
	Callee Expr
	Args   []Expr
	Source string
}

// Binary is left op right.
type Binary struct {
	Op       BinaryOp
	Operator string
	Left     Expr
	Right    Expr
	Source   string
}

// Unary is a prefix operator applied to an operand.
type Unary struct {
	Op       UnaryOp
	Operator string
	Operand  Expr
	Source   string
}

// Paren is a parenthesized expression.
type Paren struct {
	Inner  Expr
	Source string
}

// Conditional is cond ? then : else.
type Conditional struct {
	Cond   Expr
	Then   Expr
	Else   Expr
	Source string
}

// Literal is a null, boolean, numeric, string or character literal. Value is
// the token text.
type Literal struct {
	Kind   LiteralKind
	Value  string
	Source string
}

// Lambda is an anonymous function. Body is nil when the lambda has a block body.
type Lambda struct {
	Params []string
	Body   Expr
	Source string
}

// This is the self reference.
type This struct {
	Source string
}

// Opaque is any syntax outside the vocabulary above (casts, element access,
// object creation...). Kind is the parser's node type.
type Opaque struct {
	Kind     string
	Children []Expr
	Source   string
}

func (*Identifier) exprNode()   {}
func (*MemberAccess) exprNode() {}
func (*Invocation) exprNode()   {}
func (*Binary) exprNode()       {}
func (*Unary) exprNode()        {}
func (*Paren) exprNode()        {}
func (*Conditional) exprNode()  {}
func (*Literal) exprNode()      {}
func (*Lambda) exprNode()       {}
func (*This) exprNode()         {}
func (*Opaque) exprNode()       {}

func typeArgsText(args []string) string {
	if len(args) == 0 {
		return ""
	}

	return "<" + strings.Join(args, ", ") + ">"
}

func exprText(e Expr) string {
	if e == nil {
		return ""
	}

	return e.Text()
}

// Text implements Expr.
func (e *Identifier) Text() string {
	if e.Source != "" {
		return e.Source
	}

	return e.Name + typeArgsText(e.TypeArgs)
}

// Text implements Expr.
func (e *MemberAccess) Text() string {
	if e.Source != "" {
		return e.Source
	}

	return exprText(e.Owner) + "." + e.Member + typeArgsText(e.TypeArgs)
}

// Text implements Expr.
func (e *Invocation) Text() string {
	if e.Source != "" {
		return e.Source
	}

	args := make([]string, 0, len(e.Args))
	for _, arg := range e.Args {
		args = append(args, exprText(arg))
	}

	return exprText(e.Callee) + "(" + strings.Join(args, ", ") + ")"
}

// Text implements Expr.
func (e *Binary) Text() string {
	if e.Source != "" {
		return e.Source
	}

	return exprText(e.Left) + " " + e.OperatorText() + " " + exprText(e.Right)
}

// OperatorText returns the operator token.
func (e *Binary) OperatorText() string {
	if e.Operator != "" {
		return e.Operator
	}

	return e.Op.String()
}

// Text implements Expr.
func (e *Unary) Text() string {
	if e.Source != "" {
		return e.Source
	}

	return e.OperatorText() + exprText(e.Operand)
}

// OperatorText returns the operator token.
func (e *Unary) OperatorText() string {
	if e.Operator != "" {
		return e.Operator
	}

	switch e.Op {
	case UnaryNot:
		return "!"
	case UnaryNegate:
		return "-"
	}

	return "?"
}

// Text implements Expr.
func (e *Paren) Text() string {
	if e.Source != "" {
		return e.Source
	}

	return "(" + exprText(e.Inner) + ")"
}

// Text implements Expr.
func (e *Conditional) Text() string {
	if e.Source != "" {
		return e.Source
	}

	return exprText(e.Cond) + " ? " + exprText(e.Then) + " : " + exprText(e.Else)
}

// Text implements Expr.
func (e *Literal) Text() string {
	if e.Source != "" {
		return e.Source
	}

	if e.Value != "" {
		return e.Value
	}

	switch e.Kind {
	case LiteralNull:
		return "null"
	case LiteralTrue:
		return "true"
	case LiteralFalse:
		return "false"
	case LiteralString:
		return `""`
	}

	return ""
}

// Text implements Expr.
func (e *Lambda) Text() string {
	if e.Source != "" {
		return e.Source
	}

	params := strings.Join(e.Params, ", ")
	if len(e.Params) != 1 {
		params = "(" + params + ")"
	}

	if e.Body == nil {
		return params + " => { }"
	}

	return params + " => " + e.Body.Text()
}

// Text implements Expr.
func (e *This) Text() string {
	if e.Source != "" {
		return e.Source
	}

	return "this"
}

// Text implements Expr.
func (e *Opaque) Text() string {
	if e.Source != "" {
		return e.Source
	}

	return e.Kind
}

// Strip removes any parenthesization wrapping e.
func Strip(e Expr) Expr {
	for {
		p, ok := e.(*Paren)
		if !ok {
			return e
		}

		e = p.Inner
	}
}

// CompactText returns the node text with all white space removed.
func CompactText(e Expr) string {
	return compact(exprText(e))
}

func compact(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}

		return r
	}, s)
}

// Children returns the direct sub-expressions of e.
func Children(e Expr) []Expr {
	var children []Expr

	add := func(nodes ...Expr) {
		for _, n := range nodes {
			if n != nil {
				children = append(children, n)
			}
		}
	}

	switch n := e.(type) {
	case *MemberAccess:
		add(n.Owner)
	case *Invocation:
		add(n.Callee)
		add(n.Args...)
	case *Binary:
		add(n.Left, n.Right)
	case *Unary:
		add(n.Operand)
	case *Paren:
		add(n.Inner)
	case *Conditional:
		add(n.Cond, n.Then, n.Else)
	case *Lambda:
		add(n.Body)
	case *Opaque:
		add(n.Children...)
	case *Identifier, *Literal, *This:
	}

	return children
}

// Inspect walks e depth-first, calling fn for every node. Children of a node
// are skipped when fn returns false.
func Inspect(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}

	for _, child := range Children(e) {
		Inspect(child, fn)
	}
}

// Equivalent reports whether a and b are the same syntax, ignoring formatting.
func Equivalent(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case *Identifier:
		y, ok := b.(*Identifier)
		return ok && x.Name == y.Name && sameTypeArgs(x.TypeArgs, y.TypeArgs)
	case *MemberAccess:
		y, ok := b.(*MemberAccess)
		return ok && x.Member == y.Member && sameTypeArgs(x.TypeArgs, y.TypeArgs) && Equivalent(x.Owner, y.Owner)
	case *Invocation:
		y, ok := b.(*Invocation)
		return ok && Equivalent(x.Callee, y.Callee) && equivalentAll(x.Args, y.Args)
	case *Binary:
		y, ok := b.(*Binary)
		return ok && x.OperatorText() == y.OperatorText() && Equivalent(x.Left, y.Left) && Equivalent(x.Right, y.Right)
	case *Unary:
		y, ok := b.(*Unary)
		return ok && x.OperatorText() == y.OperatorText() && Equivalent(x.Operand, y.Operand)
	case *Paren:
		y, ok := b.(*Paren)
		return ok && Equivalent(x.Inner, y.Inner)
	case *Conditional:
		y, ok := b.(*Conditional)
		return ok && Equivalent(x.Cond, y.Cond) && Equivalent(x.Then, y.Then) && Equivalent(x.Else, y.Else)
	case *Literal:
		y, ok := b.(*Literal)
		return ok && x.Kind == y.Kind && compact(x.Text()) == compact(y.Text())
	case *Lambda:
		y, ok := b.(*Lambda)
		return ok && slices.Equal(x.Params, y.Params) && Equivalent(x.Body, y.Body)
	case *This:
		_, ok := b.(*This)
		return ok
	case *Opaque:
		y, ok := b.(*Opaque)
		if !ok || x.Kind != y.Kind {
			return false
		}

		if len(x.Children) == 0 && len(y.Children) == 0 {
			return compact(x.Text()) == compact(y.Text())
		}

		return equivalentAll(x.Children, y.Children)
	}

	return false
}

func equivalentAll(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !Equivalent(a[i], b[i]) {
			return false
		}
	}

	return true
}

func sameTypeArgs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if compact(a[i]) != compact(b[i]) {
			return false
		}
	}

	return true
}
