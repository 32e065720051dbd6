package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"

	m "clausestat.dev/pkg/clausestat/internal/model"
)

// DefaultMaxFileSize bounds the size of a source file handed to the parser.
const DefaultMaxFileSize = 10 * 1024 * 1024

// ErrParse reports a source file the parser could not read cleanly.
var ErrParse = errors.New("failed to parse source")

// SyntaxAdapter turns source files into the contract expression tree so the
// domain layer never touches parser-specific node types.
type SyntaxAdapter interface {
	// Parse builds the file-level syntax root for src. Files with syntax
	// errors fail with ErrParse.
	Parse(ctx context.Context, path m.Path, src []byte) (*m.SyntaxRoot, error)
}

// LocalCSharpAdapter parses C# with the tree-sitter grammar. Every Parse call
// creates its own tree-sitter parser, so one adapter can serve concurrent
// subject workers.
type LocalCSharpAdapter struct {
	maxFileSize int
}

// NewLocalCSharpAdapter constructs a LocalCSharpAdapter.
func NewLocalCSharpAdapter() *LocalCSharpAdapter {
	return &LocalCSharpAdapter{maxFileSize: DefaultMaxFileSize}
}

// Parse implements SyntaxAdapter.
func (a *LocalCSharpAdapter) Parse(ctx context.Context, path m.Path, src []byte) (*m.SyntaxRoot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(src) > a.maxFileSize {
		return nil, fmt.Errorf("%w: %s: size %d exceeds limit %d", ErrParse, path, len(src), a.maxFileSize)
	}

	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(csharp.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, path, err)
	}
	defer tree.Close()

	node := tree.RootNode()
	if node.HasError() {
		return nil, fmt.Errorf("%w: %s: syntax error at %s", ErrParse, path, errorPosition(node))
	}

	root := &m.SyntaxRoot{Path: path}
	conv := converter{src: src}
	conv.collectCalls(node, root)

	slog.Debug("parsed source", "path", path, "calls", len(root.Calls))

	return root, nil
}

// errorPosition locates the first ERROR or missing node below n.
func errorPosition(n *sitter.Node) string {
	if n.Type() == "ERROR" || n.IsMissing() {
		p := n.StartPoint()
		return fmt.Sprintf("%d:%d", p.Row+1, p.Column+1)
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child != nil && child.HasError() {
			return errorPosition(child)
		}
	}

	p := n.StartPoint()

	return fmt.Sprintf("%d:%d", p.Row+1, p.Column+1)
}

// converter maps tree-sitter C# nodes onto model expressions.
type converter struct {
	src []byte
}

func (c converter) text(n *sitter.Node) string {
	return n.Content(c.src)
}

// collectCalls records every member-access invocation in source order.
func (c converter) collectCalls(n *sitter.Node, root *m.SyntaxRoot) {
	if n.Type() == "invocation_expression" {
		if fn := n.ChildByFieldName("function"); fn != nil && fn.Type() == "member_access_expression" {
			if inv, ok := c.convert(n).(*m.Invocation); ok {
				root.Calls = append(root.Calls, inv)
			}
		}
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		c.collectCalls(n.NamedChild(i), root)
	}
}

//nolint:cyclop // one case per supported node type
func (c converter) convert(n *sitter.Node) m.Expr {
	if n == nil {
		return &m.Opaque{Kind: "missing"}
	}

	text := c.text(n)

	switch n.Type() {
	case "identifier", "predefined_type":
		return &m.Identifier{Name: text, Source: text}
	case "generic_name":
		name, typeArgs := c.simpleName(n)
		return &m.Identifier{Name: name, TypeArgs: typeArgs, Source: text}
	case "member_access_expression":
		member, typeArgs := c.simpleName(n.ChildByFieldName("name"))
		return &m.MemberAccess{
			Owner:    c.convert(n.ChildByFieldName("expression")),
			Member:   member,
			TypeArgs: typeArgs,
			Source:   text,
		}
	case "qualified_name":
		return c.qualifiedName(n)
	case "invocation_expression":
		return &m.Invocation{
			Callee: c.convert(n.ChildByFieldName("function")),
			Args:   c.arguments(n.ChildByFieldName("arguments")),
			Source: text,
		}
	case "binary_expression":
		operator := c.binaryOperator(n)
		return &m.Binary{
			Op:       m.ParseBinaryOp(operator),
			Operator: operator,
			Left:     c.convert(n.ChildByFieldName("left")),
			Right:    c.convert(n.ChildByFieldName("right")),
			Source:   text,
		}
	case "prefix_unary_expression":
		operator := ""
		if n.ChildCount() > 0 {
			operator = n.Child(0).Type()
		}

		return &m.Unary{
			Op:       m.ParseUnaryOp(operator),
			Operator: operator,
			Operand:  c.convert(lastNamedChild(n)),
			Source:   text,
		}
	case "parenthesized_expression":
		return &m.Paren{Inner: c.convert(lastNamedChild(n)), Source: text}
	case "conditional_expression":
		return &m.Conditional{
			Cond:   c.convert(n.ChildByFieldName("condition")),
			Then:   c.convert(n.ChildByFieldName("consequence")),
			Else:   c.convert(n.ChildByFieldName("alternative")),
			Source: text,
		}
	case "null_literal":
		return &m.Literal{Kind: m.LiteralNull, Value: text, Source: text}
	case "boolean_literal":
		kind := m.LiteralFalse
		if text == "true" {
			kind = m.LiteralTrue
		}

		return &m.Literal{Kind: kind, Value: text, Source: text}
	case "integer_literal", "real_literal":
		return &m.Literal{Kind: m.LiteralNumeric, Value: text, Source: text}
	case "string_literal", "verbatim_string_literal", "raw_string_literal":
		return &m.Literal{Kind: m.LiteralString, Value: text, Source: text}
	case "character_literal":
		return &m.Literal{Kind: m.LiteralChar, Value: text, Source: text}
	case "lambda_expression":
		return c.lambda(n)
	case "this_expression", "this":
		return &m.This{Source: text}
	}

	children := make([]m.Expr, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		children = append(children, c.convert(n.NamedChild(i)))
	}

	return &m.Opaque{Kind: n.Type(), Children: children, Source: text}
}

// simpleName splits an identifier or generic_name into name and type arguments.
func (c converter) simpleName(n *sitter.Node) (string, []string) {
	if n == nil {
		return "", nil
	}

	if n.Type() != "generic_name" {
		return c.text(n), nil
	}

	var (
		name     string
		typeArgs []string
	)

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)

		switch child.Type() {
		case "identifier":
			name = c.text(child)
		case "type_argument_list":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				typeArgs = append(typeArgs, c.text(child.NamedChild(j)))
			}
		}
	}

	return name, typeArgs
}

// qualifiedName turns A.B.C in name position into nested member accesses.
func (c converter) qualifiedName(n *sitter.Node) m.Expr {
	qualifier := n.ChildByFieldName("qualifier")
	name := n.ChildByFieldName("name")

	if qualifier == nil || name == nil {
		count := int(n.NamedChildCount())
		if count < 2 {
			return &m.Identifier{Name: c.text(n), Source: c.text(n)}
		}

		qualifier, name = n.NamedChild(0), n.NamedChild(count-1)
	}

	member, typeArgs := c.simpleName(name)

	return &m.MemberAccess{
		Owner:    c.convert(qualifier),
		Member:   member,
		TypeArgs: typeArgs,
		Source:   c.text(n),
	}
}

func (c converter) binaryOperator(n *sitter.Node) string {
	if op := n.ChildByFieldName("operator"); op != nil {
		return op.Type()
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if !child.IsNamed() {
			return child.Type()
		}
	}

	return ""
}

func (c converter) arguments(n *sitter.Node) []m.Expr {
	if n == nil {
		return nil
	}

	var args []m.Expr

	for i := 0; i < int(n.NamedChildCount()); i++ {
		arg := n.NamedChild(i)
		if arg.Type() != "argument" {
			continue
		}

		args = append(args, c.convert(lastNamedChild(arg)))
	}

	return args
}

func (c converter) lambda(n *sitter.Node) m.Expr {
	lambda := &m.Lambda{Source: c.text(n)}

	params := n.ChildByFieldName("parameters")
	if params == nil && n.NamedChildCount() > 1 {
		params = n.NamedChild(0)
	}

	if params != nil {
		if params.Type() == "identifier" || params.Type() == "implicit_parameter" {
			lambda.Params = []string{c.text(params)}
		} else {
			for i := 0; i < int(params.NamedChildCount()); i++ {
				param := params.NamedChild(i)
				if name := param.ChildByFieldName("name"); name != nil {
					lambda.Params = append(lambda.Params, c.text(name))
				} else {
					lambda.Params = append(lambda.Params, c.text(param))
				}
			}
		}
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		body = lastNamedChild(n)
	}

	if body != nil && body.Type() != "block" {
		lambda.Body = c.convert(body)
	}

	return lambda
}

func lastNamedChild(n *sitter.Node) *sitter.Node {
	count := int(n.NamedChildCount())
	if count == 0 {
		return nil
	}

	return n.NamedChild(count - 1)
}
