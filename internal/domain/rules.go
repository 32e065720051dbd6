package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	m "clausestat.dev/pkg/clausestat/internal/model"
)

// Call forms the rules recognise. Names are matched against the callee's
// simple name unless noted as qualified.
var (
	// qualified; a bare ForAll comes from "using static".
	quantifierCalls = []string{"Contract.ForAll", "Enumerable.All", "ForAll"}

	resultCall   = "Contract.Result"
	oldValueCall = "Contract.OldValue"

	sizeMembers          = nameSet("Count", "Length", "LongLength", "VertexCount", "EdgeCount")
	sizeCalls            = nameSet("Count", "LongCount", "GetLength")
	nonNullCalls         = nameSet("ElementsNotNull", "AllNotNull", "NotNull", "IsNotNull")
	nullOrBlankCalls     = nameSet("IsNullOrEmpty", "IsNullOrWhiteSpace")
	membershipCalls      = nameSet("Contains", "ContainsKey", "ContainsValue")
	equalsCalls          = nameSet("Equals", "ReferenceEquals")
	referenceEqualsCalls = nameSet("ReferenceEquals")
	anyCalls             = nameSet("Any")
	compareCalls         = nameSet("Compare", "CompareTo", "CompareOrdinal")
	emptyStringMembers   = nameSet("String.Empty", "string.Empty", "System.String.Empty")

	boolOrIntTypes = nameSet(
		"bool", "Boolean", "System.Boolean",
		"int", "Int32", "System.Int32",
		"long", "Int64", "System.Int64",
		"short", "Int16", "uint", "UInt32", "ulong", "UInt64", "byte", "sbyte",
	)
)

func nameSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}

	return set
}

// qualifiedName renders a dotted name without type arguments. It fails for
// owners that are not names (calls, element access...).
func qualifiedName(e m.Expr) (string, bool) {
	switch x := m.Strip(e).(type) {
	case *m.Identifier:
		return x.Name, true
	case *m.This:
		return "this", true
	case *m.MemberAccess:
		owner, ok := qualifiedName(x.Owner)
		if !ok {
			return "", false
		}

		return owner + "." + x.Member, true
	}

	return "", false
}

// callName returns the simple name of the invoked method.
func callName(inv *m.Invocation) (string, bool) {
	switch callee := m.Strip(inv.Callee).(type) {
	case *m.Identifier:
		return callee.Name, true
	case *m.MemberAccess:
		return callee.Member, true
	}

	return "", false
}

func asCall(e m.Expr) (*m.Invocation, bool) {
	inv, ok := m.Strip(e).(*m.Invocation)
	return inv, ok
}

// callsNamed reports whether e invokes a method whose simple name is in names.
func callsNamed(e m.Expr, names map[string]bool) (*m.Invocation, bool) {
	inv, ok := asCall(e)
	if !ok {
		return nil, false
	}

	name, ok := callName(inv)
	if !ok || !names[name] {
		return nil, false
	}

	return inv, true
}

// callsQualified reports whether e invokes name, either exactly or through a
// longer qualification (System.Linq.Enumerable.All).
func callsQualified(e m.Expr, name string) (*m.Invocation, bool) {
	inv, ok := asCall(e)
	if !ok {
		return nil, false
	}

	qualified, ok := qualifiedName(inv.Callee)
	if !ok {
		return nil, false
	}

	if qualified == name || strings.HasSuffix(qualified, "."+name) {
		return inv, true
	}

	return nil, false
}

// quantifierBody returns the lambda body of an allow-listed universal
// quantification whose second argument is a single-expression lambda.
func quantifierBody(e m.Expr) (m.Expr, bool) {
	for _, name := range quantifierCalls {
		inv, ok := callsQualified(e, name)
		if !ok {
			continue
		}

		if len(inv.Args) < 2 {
			return nil, false
		}

		lambda, ok := m.Strip(inv.Args[1]).(*m.Lambda)
		if !ok || lambda.Body == nil {
			return nil, false
		}

		return lambda.Body, true
	}

	return nil, false
}

func calleeTypeArgs(inv *m.Invocation) []string {
	switch callee := m.Strip(inv.Callee).(type) {
	case *m.Identifier:
		return callee.TypeArgs
	case *m.MemberAccess:
		return callee.TypeArgs
	}

	return nil
}

// isResult matches the method-result placeholder Contract.Result<T>().
func isResult(e m.Expr) bool {
	inv, ok := callsQualified(e, resultCall)
	return ok && len(inv.Args) == 0
}

func isBoolOrIntResult(e m.Expr) bool {
	if !isResult(e) {
		return false
	}

	inv, _ := asCall(e)
	args := calleeTypeArgs(inv)

	return len(args) == 1 && boolOrIntTypes[strings.TrimSpace(args[0])]
}

// oldValueOf returns the argument of a Contract.OldValue(x) wrapper.
func oldValueOf(e m.Expr) (m.Expr, bool) {
	inv, ok := callsQualified(e, oldValueCall)
	if !ok || len(inv.Args) != 1 {
		return nil, false
	}

	return m.Strip(inv.Args[0]), true
}

func isOldValueOf(e, target m.Expr) bool {
	arg, ok := oldValueOf(e)
	return ok && m.Equivalent(arg, m.Strip(target))
}

func containsOldValueOf(e, target m.Expr) bool {
	found := false

	m.Inspect(e, func(n m.Expr) bool {
		if found {
			return false
		}

		if isOldValueOf(n, target) {
			found = true
			return false
		}

		return true
	})

	return found
}

// isLiteral accepts literals and negated numeric literals (-1).
func isLiteral(e m.Expr) bool {
	switch x := m.Strip(e).(type) {
	case *m.Literal:
		return true
	case *m.Unary:
		lit, ok := m.Strip(x.Operand).(*m.Literal)
		return ok && x.Op == m.UnaryNegate && lit.Kind == m.LiteralNumeric
	}

	return false
}

func isNullLiteral(e m.Expr) bool {
	lit, ok := m.Strip(e).(*m.Literal)
	return ok && lit.Kind == m.LiteralNull
}

func isBoolLiteral(e m.Expr) bool {
	lit, ok := m.Strip(e).(*m.Literal)
	return ok && (lit.Kind == m.LiteralTrue || lit.Kind == m.LiteralFalse)
}

func isFalseLiteral(e m.Expr) bool {
	lit, ok := m.Strip(e).(*m.Literal)
	return ok && lit.Kind == m.LiteralFalse
}

func isNumber(e m.Expr, value string) bool {
	lit, ok := m.Strip(e).(*m.Literal)
	return ok && lit.Kind == m.LiteralNumeric && m.CompactText(lit) == value
}

func isEmptyString(e m.Expr) bool {
	x := m.Strip(e)
	if lit, ok := x.(*m.Literal); ok {
		text := m.CompactText(lit)
		return lit.Kind == m.LiteralString && (text == `""` || text == `@""`)
	}

	if _, ok := x.(*m.MemberAccess); ok {
		name, ok := qualifiedName(x)
		return ok && emptyStringMembers[name]
	}

	return false
}

// isNameLike matches a bare identifier or member access.
func isNameLike(e m.Expr) bool {
	switch m.Strip(e).(type) {
	case *m.Identifier, *m.MemberAccess:
		return true
	}

	return false
}

// isSimple matches names, the self reference and the result placeholder.
func isSimple(e m.Expr) bool {
	switch m.Strip(e).(type) {
	case *m.Identifier, *m.MemberAccess, *m.This:
		return true
	}

	return isResult(e)
}

// isSizeExpr matches collection sizes: xs.Count, a.Length, xs.Count(),
// a.GetLength(0).
func isSizeExpr(e m.Expr) bool {
	x := m.Strip(e)
	if member, ok := x.(*m.MemberAccess); ok {
		return sizeMembers[member.Member]
	}

	_, ok := callsNamed(x, sizeCalls)

	return ok
}

// isRegular rejects size expressions and calls other than the result
// placeholder.
func isRegular(e m.Expr) bool {
	if isSizeExpr(e) {
		return false
	}

	if _, ok := asCall(e); ok {
		return isResult(e)
	}

	return true
}

func asBinary(e m.Expr) (*m.Binary, bool) {
	b, ok := m.Strip(e).(*m.Binary)
	return b, ok
}

func asNot(e m.Expr) (m.Expr, bool) {
	u, ok := m.Strip(e).(*m.Unary)
	if !ok || u.Op != m.UnaryNot {
		return nil, false
	}

	return u.Operand, true
}

func receiverName(e m.Expr) string {
	switch x := m.Strip(e).(type) {
	case *m.Identifier:
		return x.Name
	case *m.MemberAccess:
		return x.Member
	}

	return ""
}

func startsUpper(name string) bool {
	r, size := utf8.DecodeRuneInString(name)
	return size > 0 && unicode.IsUpper(r)
}

// equalsOperands returns the compared operands of an Equals/ReferenceEquals
// call: both arguments of the static form, or receiver and argument of x.Equals(y).
func equalsOperands(inv *m.Invocation) ([]m.Expr, bool) {
	switch len(inv.Args) {
	case 2:
		return inv.Args, true
	case 1:
		member, ok := m.Strip(inv.Callee).(*m.MemberAccess)
		if !ok {
			return nil, false
		}

		return []m.Expr{member.Owner, inv.Args[0]}, true
	}

	return nil, false
}

func noneLiteral(operands []m.Expr) bool {
	for _, operand := range operands {
		if isLiteral(operand) {
			return false
		}
	}

	return true
}
