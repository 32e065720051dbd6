package domain

import (
	"strings"

	m "clausestat.dev/pkg/clausestat/internal/model"
)

// Expression builders. Nodes carry no source text, so Text renders the
// canonical form.

func id(name string, typeArgs ...string) *m.Identifier {
	return &m.Identifier{Name: name, TypeArgs: typeArgs}
}

// name builds a dotted name such as "this.items.Count". A trailing <T> on the
// last segment becomes its type argument.
func name(path string) m.Expr {
	parts := strings.Split(path, ".")

	var expr m.Expr

	for i, part := range parts {
		var typeArgs []string

		if i == len(parts)-1 {
			if open := strings.Index(part, "<"); open > 0 && strings.HasSuffix(part, ">") {
				typeArgs = []string{part[open+1 : len(part)-1]}
				part = part[:open]
			}
		}

		switch {
		case i == 0 && part == "this":
			expr = &m.This{}
		case i == 0:
			expr = id(part, typeArgs...)
		default:
			expr = &m.MemberAccess{Owner: expr, Member: part, TypeArgs: typeArgs}
		}
	}

	return expr
}

func call(callee string, args ...m.Expr) *m.Invocation {
	return &m.Invocation{Callee: name(callee), Args: args}
}

func bin(op string, left, right m.Expr) *m.Binary {
	return &m.Binary{Op: m.ParseBinaryOp(op), Operator: op, Left: left, Right: right}
}

func not(e m.Expr) *m.Unary {
	return &m.Unary{Op: m.UnaryNot, Operator: "!", Operand: e}
}

func neg(e m.Expr) *m.Unary {
	return &m.Unary{Op: m.UnaryNegate, Operator: "-", Operand: e}
}

func paren(e m.Expr) *m.Paren {
	return &m.Paren{Inner: e}
}

func cond(c, then, els m.Expr) *m.Conditional {
	return &m.Conditional{Cond: c, Then: then, Else: els}
}

func null() *m.Literal { return &m.Literal{Kind: m.LiteralNull, Value: "null"} }

func yes() *m.Literal { return &m.Literal{Kind: m.LiteralTrue, Value: "true"} }

func no() *m.Literal { return &m.Literal{Kind: m.LiteralFalse, Value: "false"} }

func num(v string) *m.Literal { return &m.Literal{Kind: m.LiteralNumeric, Value: v} }

func str(v string) *m.Literal {
	return &m.Literal{Kind: m.LiteralString, Value: `"` + v + `"`}
}

func lambda(param string, body m.Expr) *m.Lambda {
	return &m.Lambda{Params: []string{param}, Body: body}
}

func forAll(xs string, param string, body m.Expr) *m.Invocation {
	return call("Contract.ForAll", name(xs), lambda(param, body))
}

func result(typeArg string) *m.Invocation {
	return call("Contract.Result<" + typeArg + ">")
}

func old(e m.Expr) *m.Invocation {
	return call("Contract.OldValue", e)
}

func opaque(kind string, children ...m.Expr) *m.Opaque {
	return &m.Opaque{Kind: kind, Children: children}
}

// root wraps contract calls into a file-level syntax root.
func root(path string, calls ...*m.Invocation) *m.SyntaxRoot {
	return &m.SyntaxRoot{Path: m.Path(path), Calls: calls}
}

func requires(body ...m.Expr) *m.Invocation {
	return call("Contract.Requires", body...)
}

func ensures(body ...m.Expr) *m.Invocation {
	return call("Contract.Ensures", body...)
}

func invariant(body ...m.Expr) *m.Invocation {
	return call("Contract.Invariant", body...)
}
