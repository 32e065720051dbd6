package domain

import (
	m "clausestat.dev/pkg/clausestat/internal/model"
)

// Rule decides whether a clause has a category's shape. kinds is the set of
// contract kinds the running collector is configured with.
type Rule func(kinds m.ContractKind, clause m.Expr) bool

// Category is a named structural pattern.
type Category struct {
	Name string
	Rule Rule
}

// CategoriesAreMutex makes a clause stop at its first matching category.
const CategoriesAreMutex = true

// Category names, in catalogue order.
const (
	CategoryNullness             = "Nullness"
	CategoryNullBlank            = "Null/Blank"
	CategoryNonEmpty             = "Non-Empty"
	CategoryBound                = "Lower/Upper Bound"
	CategoryIndicator            = "Indicator"
	CategoryFrameCondition       = "Frame Condition"
	CategoryReturnValue          = "Return Value"
	CategoryBoundsCheck          = "Bounds Check"
	CategoryConstant             = "Constant"
	CategoryImplication          = "Implication"
	CategoryGetterSetter         = "Getter/Setter"
	CategoryStateUpdate          = "State Update"
	CategoryMembership           = "Membership"
	CategoryExpressionComparison = "Expression Comparison"
)

var catalogue = []Category{
	{CategoryNullness, isNullness},
	{CategoryNullBlank, isNullOrBlank},
	{CategoryNonEmpty, isNonEmpty},
	{CategoryBound, isBound},
	{CategoryIndicator, isIndicator},
	{CategoryFrameCondition, isFrameCondition},
	{CategoryReturnValue, isReturnValue},
	{CategoryBoundsCheck, isBoundsCheck},
	{CategoryConstant, isConstant},
	{CategoryImplication, isImplication},
	{CategoryGetterSetter, isGetterSetter},
	{CategoryStateUpdate, isStateUpdate},
	{CategoryMembership, isMembership},
	{CategoryExpressionComparison, isExpressionComparison},
}

// DefaultCategories returns a copy of the catalogue in evaluation order.
func DefaultCategories() []Category {
	categories := make([]Category, len(catalogue))
	copy(categories, catalogue)

	return categories
}

// CategoryNames lists the catalogue names in evaluation order.
func CategoryNames() []string {
	return categoryNames(catalogue)
}

func categoryNames(categories []Category) []string {
	names := make([]string, 0, len(categories))
	for _, category := range categories {
		names = append(names, category.Name)
	}

	return names
}

// LookupCategory finds a catalogue entry by name.
func LookupCategory(name string) (Category, bool) {
	for _, category := range catalogue {
		if category.Name == name {
			return category, true
		}
	}

	return Category{}, false
}

// x != null, helper calls such as ElementsNotNull(xs), !ReferenceEquals(x, null).
func isNullness(_ m.ContractKind, clause m.Expr) bool {
	if operand, ok := asNot(clause); ok {
		return isNullEquality(operand)
	}

	if b, ok := asBinary(clause); ok {
		return b.Op == m.OpNotEq && (isNullLiteral(b.Left) || isNullLiteral(b.Right))
	}

	_, ok := callsNamed(clause, nonNullCalls)

	return ok
}

func isNullEquality(e m.Expr) bool {
	if b, ok := asBinary(e); ok {
		return b.Op == m.OpEq && (isNullLiteral(b.Left) || isNullLiteral(b.Right))
	}

	inv, ok := callsNamed(e, referenceEqualsCalls)
	if !ok || len(inv.Args) != 2 {
		return false
	}

	return isNullLiteral(inv.Args[0]) || isNullLiteral(inv.Args[1])
}

// string.IsNullOrEmpty(s) direct, negated or compared with a boolean literal;
// s == "" and s != string.Empty.
func isNullOrBlank(_ m.ContractKind, clause m.Expr) bool {
	if _, ok := callsNamed(clause, nullOrBlankCalls); ok {
		return true
	}

	if operand, ok := asNot(clause); ok {
		_, ok := callsNamed(operand, nullOrBlankCalls)
		return ok
	}

	b, ok := asBinary(clause)
	if !ok || !b.Op.IsEquality() {
		return false
	}

	_, leftCall := callsNamed(b.Left, nullOrBlankCalls)
	_, rightCall := callsNamed(b.Right, nullOrBlankCalls)

	if (leftCall && isBoolLiteral(b.Right)) || (rightCall && isBoolLiteral(b.Left)) {
		return true
	}

	return isEmptyString(b.Left) || isEmptyString(b.Right)
}

// xs.Any(), xs.Count > 0, a.Length >= 1.
func isNonEmpty(_ m.ContractKind, clause m.Expr) bool {
	if inv, ok := callsNamed(clause, anyCalls); ok {
		return len(inv.Args) == 0
	}

	b, ok := asBinary(clause)
	if !ok {
		return false
	}

	switch b.Op {
	case m.OpGreater:
		return isSizeExpr(b.Left) && isNumber(b.Right, "0")
	case m.OpGreaterEq:
		return isSizeExpr(b.Left) && isNumber(b.Right, "1")
	case m.OpLess:
		return isNumber(b.Left, "0") && isSizeExpr(b.Right)
	case m.OpLessEq:
		return isNumber(b.Left, "1") && isSizeExpr(b.Right)
	}

	return false
}

// x >= 0, Contract.Result<int>() < 100.
func isBound(_ m.ContractKind, clause m.Expr) bool {
	b, ok := asBinary(clause)
	if !ok || !b.Op.IsRelational() {
		return false
	}

	if !isLiteral(b.Left) && !isLiteral(b.Right) {
		return false
	}

	return isRegular(b.Left) && isRegular(b.Right)
}

// flag, this.IsOpen, !done, ready == true, x.IsValid(), Helper.Check(x).
func isIndicator(_ m.ContractKind, clause m.Expr) bool {
	return indicator(clause)
}

func indicator(e m.Expr) bool {
	switch x := m.Strip(e).(type) {
	case *m.Identifier, *m.MemberAccess:
		return true
	case *m.Unary:
		return x.Op == m.UnaryNot && indicator(x.Operand)
	case *m.Binary:
		if !x.Op.IsEquality() {
			return false
		}

		return (isBoolLiteral(x.Right) && indicator(x.Left)) || (isBoolLiteral(x.Left) && indicator(x.Right))
	case *m.Invocation:
		if isResult(x) {
			return false
		}

		switch len(x.Args) {
		case 0:
			return indicator(x.Callee)
		case 1:
			member, ok := m.Strip(x.Callee).(*m.MemberAccess)
			return ok && startsUpper(receiverName(member.Owner))
		}
	}

	return false
}

// x == Contract.OldValue(x).
func isFrameCondition(_ m.ContractKind, clause m.Expr) bool {
	b, ok := asBinary(clause)
	if !ok || b.Op != m.OpEq {
		return false
	}

	return isOldValueOf(b.Right, b.Left) || isOldValueOf(b.Left, b.Right)
}

// Contract.Result<bool>(), Contract.Result<int>() == a + b.
func isReturnValue(kinds m.ContractKind, clause m.Expr) bool {
	if operand, ok := asNot(clause); ok {
		return isReturnValue(kinds, operand)
	}

	if isResult(clause) {
		return isBoolOrIntResult(clause)
	}

	b, ok := asBinary(clause)
	if !ok || b.Op != m.OpEq {
		return false
	}

	return isBoolOrIntResult(b.Left) && !isGetterSetter(kinds, clause)
}

// i < xs.Count, a.Length > i. The conjunction form is unreachable through the
// splitter, which has already separated top-level conjuncts.
func isBoundsCheck(kinds m.ContractKind, clause m.Expr) bool {
	b, ok := asBinary(clause)
	if !ok {
		return false
	}

	switch b.Op {
	case m.OpLess:
		return isSizeExpr(b.Right) && !isSizeExpr(b.Left)
	case m.OpGreater:
		return isSizeExpr(b.Left) && !isSizeExpr(b.Right)
	case m.OpAnd:
		return isLowerBoundCheck(b.Left) && isBoundsCheck(kinds, b.Right)
	}

	return false
}

func isLowerBoundCheck(e m.Expr) bool {
	b, ok := asBinary(e)
	if !ok {
		return false
	}

	switch b.Op {
	case m.OpGreaterEq:
		return !isLiteral(b.Left) && isNumber(b.Right, "0")
	case m.OpLessEq:
		return isNumber(b.Left, "0") && !isLiteral(b.Right)
	}

	return false
}

// state == 3, x == null, (state == 3) == true.
func isConstant(kinds m.ContractKind, clause m.Expr) bool {
	if operand, ok := asNot(clause); ok {
		return isConstant(kinds, operand)
	}

	b, ok := asBinary(clause)
	if !ok || !b.Op.IsEquality() {
		return false
	}

	if inner, ok := asBinary(b.Left); ok && inner.Op.IsEquality() && isBoolLiteral(b.Right) {
		return isConstant(kinds, inner)
	}

	if inner, ok := asBinary(b.Right); ok && inner.Op.IsEquality() && isBoolLiteral(b.Left) {
		return isConstant(kinds, inner)
	}

	if isSizeExpr(b.Left) || isSizeExpr(b.Right) {
		return false
	}

	return (isNameLike(b.Left) && isLiteral(b.Right)) || (isLiteral(b.Left) && isNameLike(b.Right))
}

// a ? b : c, !a || b.
func isImplication(_ m.ContractKind, clause m.Expr) bool {
	switch x := m.Strip(clause).(type) {
	case *m.Conditional:
		return true
	case *m.Binary:
		return x.Op == m.OpOr
	}

	return false
}

// Postcondition shapes such as this.Name == name, Contract.Result<T>() == this.field,
// Equals(a, b) over simple operands.
func isGetterSetter(kinds m.ContractKind, clause m.Expr) bool {
	if !kinds.Has(m.Ensures) {
		return false
	}

	if b, ok := asBinary(clause); ok {
		if b.Op != m.OpEq || !isSimple(b.Left) {
			return false
		}

		if !isNameLike(b.Right) && !isLiteral(b.Right) {
			return false
		}

		return !(isResult(b.Left) && isLiteral(b.Right))
	}

	inv, ok := callsNamed(clause, equalsCalls)
	if !ok {
		return false
	}

	operands, ok := equalsOperands(inv)
	if !ok {
		return false
	}

	if name, _ := callName(inv); name == "ReferenceEquals" && len(inv.Args) == 2 {
		if isResult(inv.Args[0]) || isResult(inv.Args[1]) {
			return true
		}
	}

	for _, operand := range operands {
		if !isSimple(operand) {
			return false
		}
	}

	return true
}

// Count == Contract.OldValue(Count) + 1.
func isStateUpdate(kinds m.ContractKind, clause m.Expr) bool {
	b, ok := asBinary(clause)
	if !ok {
		return false
	}

	return containsOldValueOf(b.Right, b.Left) && !isFrameCondition(kinds, clause)
}

// xs.Contains(x), !map.ContainsKey(k).
func isMembership(kinds m.ContractKind, clause m.Expr) bool {
	if operand, ok := asNot(clause); ok {
		return isMembership(kinds, operand)
	}

	inv, ok := callsNamed(clause, membershipCalls)

	return ok && len(inv.Args) == 1
}

// a < b, x != y, Equals(a, b), x.CompareTo(y) > 0.
func isExpressionComparison(kinds m.ContractKind, clause m.Expr) bool {
	if b, ok := asBinary(clause); ok {
		if b.Op == m.OpAnd {
			return false
		}

		if isFrameCondition(kinds, clause) || isStateUpdate(kinds, clause) || isImplication(kinds, clause) {
			return false
		}

		if b.Op.IsRelational() || b.Op.IsEquality() {
			for _, side := range []m.Expr{b.Left, b.Right} {
				if inv, ok := callsNamed(side, compareCalls); ok {
					if operands, ok := compareOperands(inv); ok && noneLiteral(operands) {
						return true
					}
				}
			}
		}

		return !isLiteral(b.Left) && !isLiteral(b.Right)
	}

	inv, ok := callsNamed(clause, equalsCalls)
	if !ok {
		return false
	}

	operands, ok := equalsOperands(inv)

	return ok && noneLiteral(operands)
}

// compareOperands returns the compared values of Compare(a, b) or a.CompareTo(b).
func compareOperands(inv *m.Invocation) ([]m.Expr, bool) {
	return equalsOperands(inv)
}
