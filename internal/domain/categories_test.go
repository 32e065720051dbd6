package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "clausestat.dev/pkg/clausestat/internal/model"
)

func TestDefaultEngineLabels(t *testing.T) {
	engine := NewDefaultEngine()

	tests := []struct {
		name   string
		kinds  m.ContractKind
		clause m.Expr
		want   string
	}{
		// Nullness
		{"not equal null", m.Requires, bin("!=", id("x"), null()), CategoryNullness},
		{"null on the left", m.Requires, bin("!=", null(), name("this.items")), CategoryNullness},
		{"negated equality with null", m.Requires, not(paren(bin("==", id("x"), null()))), CategoryNullness},
		{"negated reference equals null", m.Requires, not(call("ReferenceEquals", id("x"), null())), CategoryNullness},
		{"elements not null helper", m.Requires, call("ElementsNotNull", id("xs")), CategoryNullness},
		{"quantified not null", m.Requires, forAll("xs", "x", bin("!=", id("x"), null())), CategoryNullness},

		// Null/Blank
		{"negated IsNullOrEmpty", m.Requires, not(call("string.IsNullOrEmpty", id("s"))), CategoryNullBlank},
		{"IsNullOrWhiteSpace compared with false", m.Requires,
			bin("==", call("string.IsNullOrWhiteSpace", id("s")), no()), CategoryNullBlank},
		{"not equal empty literal", m.Requires, bin("!=", id("s"), str("")), CategoryNullBlank},
		{"not equal string.Empty", m.Requires, bin("!=", id("s"), name("string.Empty")), CategoryNullBlank},

		// Non-Empty
		{"any", m.Requires, call("xs.Any"), CategoryNonEmpty},
		{"count greater than zero", m.Requires, bin(">", name("xs.Count"), num("0")), CategoryNonEmpty},
		{"length at least one", m.Requires, bin(">=", name("a.Length"), num("1")), CategoryNonEmpty},
		{"zero less than count", m.Requires, bin("<", num("0"), name("xs.Count")), CategoryNonEmpty},
		{"count call greater than zero", m.Requires, bin(">", call("xs.Count"), num("0")), CategoryNonEmpty},

		// Lower/Upper Bound
		{"non-negative", m.Requires, bin(">=", id("x"), num("0")), CategoryBound},
		{"negative literal on the left", m.Requires, bin("<", neg(num("1")), id("x")), CategoryBound},
		{"bounded result", m.Ensures, bin("<", result("int"), num("100")), CategoryBound},

		// Indicator
		{"bare flag", m.Requires, id("flag"), CategoryIndicator},
		{"member flag", m.Invariant, name("this.IsOpen"), CategoryIndicator},
		{"negated flag", m.Requires, not(id("done")), CategoryIndicator},
		{"flag compared with true", m.Requires, bin("==", id("ready"), yes()), CategoryIndicator},
		{"parameterless predicate", m.Requires, call("x.IsValid"), CategoryIndicator},
		{"static helper predicate", m.Requires, call("Helper.Check", id("x")), CategoryIndicator},

		// Frame Condition
		{"unchanged value", m.Ensures, bin("==", id("x"), old(id("x"))), CategoryFrameCondition},
		{"unchanged member, old value first", m.Ensures,
			bin("==", old(name("this.count")), name("this.count")), CategoryFrameCondition},

		// Return Value
		{"boolean result", m.Ensures, result("bool"), CategoryReturnValue},
		{"negated boolean result", m.Ensures, not(result("bool")), CategoryReturnValue},
		{"integer result equal to sum", m.Ensures,
			bin("==", result("int"), bin("+", id("a"), id("b"))), CategoryReturnValue},

		// Bounds Check
		{"index below count", m.Requires, bin("<", id("i"), name("xs.Count")), CategoryBoundsCheck},
		{"length above index", m.Requires, bin(">", name("a.Length"), id("i")), CategoryBoundsCheck},

		// Constant
		{"state equals literal", m.Invariant, bin("==", id("state"), num("3")), CategoryConstant},
		{"equal null", m.Requires, bin("==", id("x"), null()), CategoryConstant},
		{"negated literal equality", m.Requires, not(paren(bin("==", id("x"), num("3")))), CategoryConstant},
		{"literal equality compared with true", m.Requires,
			bin("==", paren(bin("==", id("state"), num("3"))), yes()), CategoryConstant},

		// Implication
		{"conditional", m.Requires, cond(id("a"), id("b"), id("c")), CategoryImplication},
		{"disjunction", m.Requires, bin("||", not(id("a")), id("b")), CategoryImplication},

		// Getter/Setter
		{"setter postcondition", m.Ensures, bin("==", name("this.Name"), id("name")), CategoryGetterSetter},
		{"string result equals parameter", m.Ensures, bin("==", result("string"), id("s")), CategoryGetterSetter},
		{"integer result equals field", m.Ensures, bin("==", result("int"), name("this.count")), CategoryGetterSetter},
		{"equals over simple operands", m.Ensures,
			call("Equals", result("object"), name("this.cache")), CategoryGetterSetter},
		{"reference equals result", m.Ensures,
			call("ReferenceEquals", result("object"), call("Lookup", id("k"))), CategoryGetterSetter},

		// State Update
		{"incremented count", m.Ensures,
			bin("==", id("Count"), bin("+", old(id("Count")), num("1"))), CategoryStateUpdate},

		// Membership
		{"contains", m.Requires, call("xs.Contains", id("x")), CategoryMembership},
		{"negated contains key", m.Requires, not(call("map.ContainsKey", id("k"))), CategoryMembership},

		// Expression Comparison
		{"names ordered", m.Requires, bin("<", id("a"), id("b")), CategoryExpressionComparison},
		{"names differ", m.Requires, bin("!=", id("x"), id("y")), CategoryExpressionComparison},
		{"setter shape in a precondition", m.Requires,
			bin("==", name("this.Name"), id("name")), CategoryExpressionComparison},
		{"CompareTo result", m.Requires,
			bin(">", call("x.CompareTo", id("y")), num("0")), CategoryExpressionComparison},
		{"string.Compare result", m.Requires,
			bin("==", call("string.Compare", id("a"), id("b")), num("0")), CategoryExpressionComparison},
		{"static Equals", m.Requires, call("Equals", id("a"), id("b")), CategoryExpressionComparison},

		// Other
		{"lowercase receiver predicate", m.Requires, call("helper.Check", id("x")), m.OtherCategory},
		{"count equal zero", m.Requires, bin("==", name("xs.Count"), num("0")), m.OtherCategory},
		{"count upper bound", m.Requires, bin("<=", name("xs.Count"), num("10")), m.OtherCategory},
		{"two argument call", m.Requires, call("Foo", id("x"), id("y")), m.OtherCategory},
		{"opaque syntax", m.Requires, opaque("element_access_expression", id("a"), num("0")), m.OtherCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause := m.Clause{Labels: engine.Labels(tt.kinds, tt.clause)}

			assert.Equal(t, tt.want, clause.Category(), "clause %s", tt.clause.Text())
			assert.LessOrEqual(t, len(clause.Labels), 1)
		})
	}
}

func TestCategoryRules(t *testing.T) {
	t.Run("Getter/Setter needs Ensures among the active kinds", func(t *testing.T) {
		clause := bin("==", name("this.Name"), id("name"))

		assert.True(t, isGetterSetter(m.Ensures, clause))
		assert.True(t, isGetterSetter(m.AllKinds, clause))
		assert.False(t, isGetterSetter(m.Requires|m.Invariant, clause))
	})

	t.Run("Getter/Setter rejects a result equal to a literal", func(t *testing.T) {
		assert.False(t, isGetterSetter(m.Ensures, bin("==", result("object"), null())))
	})

	t.Run("Constant excludes size checks", func(t *testing.T) {
		assert.True(t, isConstant(m.Requires, bin("==", name("this.state"), num("0"))))
		assert.False(t, isConstant(m.Requires, bin("==", name("xs.Count"), num("0"))))
		assert.False(t, isConstant(m.Requires, bin("==", num("0"), call("a.GetLength", num("0")))))
	})

	t.Run("State Update excludes frame conditions", func(t *testing.T) {
		frame := bin("==", id("x"), old(id("x")))

		assert.True(t, isFrameCondition(m.Ensures, frame))
		assert.False(t, isStateUpdate(m.Ensures, frame))
		assert.True(t, isStateUpdate(m.Ensures, bin(">", id("x"), old(id("x")))))
	})

	t.Run("Expression Comparison excludes conjunctions and implications", func(t *testing.T) {
		assert.False(t, isExpressionComparison(m.Requires, bin("&&", id("a"), id("b"))))
		assert.False(t, isExpressionComparison(m.Requires, bin("||", id("a"), id("b"))))
		assert.False(t, isExpressionComparison(m.Requires, bin("<", id("a"), num("3"))))
	})

	t.Run("Expression Comparison rejects Compare against literals", func(t *testing.T) {
		assert.False(t, isExpressionComparison(m.Requires, call("Equals", id("a"), null())))
		assert.False(t, isExpressionComparison(m.Requires,
			bin("==", call("string.Compare", id("a"), str("x")), num("0"))))
	})

	t.Run("Bounds Check accepts the compound form", func(t *testing.T) {
		compound := bin("&&",
			bin(">=", id("idx"), num("0")),
			bin("<", id("idx"), name("array.Length")))

		assert.True(t, isBoundsCheck(m.Requires, compound))
		assert.False(t, isBoundsCheck(m.Requires, bin("<", name("a.Length"), name("b.Length"))))
	})

	t.Run("Membership needs a single argument", func(t *testing.T) {
		assert.True(t, isMembership(m.Requires, call("set.Contains", id("x"))))
		assert.False(t, isMembership(m.Requires, call("Enumerable.Contains", id("xs"), id("x"))))
	})

	t.Run("Non-Empty rejects Any with a predicate", func(t *testing.T) {
		assert.False(t, isNonEmpty(m.Requires, call("xs.Any", lambda("x", id("x")))))
	})

	t.Run("Indicator rejects the result placeholder", func(t *testing.T) {
		assert.False(t, isIndicator(m.Ensures, result("bool")))
		assert.False(t, isIndicator(m.Requires, bin("==", id("a"), id("b"))))
	})
}

func TestCatalogue(t *testing.T) {
	t.Run("names are in evaluation order", func(t *testing.T) {
		names := CategoryNames()

		require.Len(t, names, 14)
		assert.Equal(t, CategoryNullness, names[0])
		assert.Equal(t, CategoryIndicator, names[4])
		assert.Equal(t, CategoryExpressionComparison, names[13])
		assert.NotContains(t, names, m.OtherCategory)
	})

	t.Run("DefaultCategories returns a copy", func(t *testing.T) {
		categories := DefaultCategories()
		categories[0] = Category{Name: "Changed"}

		assert.Equal(t, CategoryNullness, CategoryNames()[0])
	})

	t.Run("LookupCategory", func(t *testing.T) {
		category, ok := LookupCategory(CategoryMembership)
		require.True(t, ok)
		assert.Equal(t, CategoryMembership, category.Name)
		assert.True(t, category.Rule(m.Requires, call("xs.Contains", id("x"))))

		_, ok = LookupCategory("Unknown")
		assert.False(t, ok)
	})
}
