package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "clausestat.dev/pkg/clausestat/internal/model"
)

func texts(exprs []m.Expr) []string {
	out := make([]string, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, e.Text())
	}

	return out
}

func TestTopLevelClauses(t *testing.T) {
	bounded := bin("&&",
		bin(">=", id("x"), num("0")),
		bin("<", id("x"), name("a.Length")))

	tests := []struct {
		name   string
		body   m.Expr
		unroll bool
		want   []string
	}{
		{
			name: "strips parentheses",
			body: paren(paren(bin("!=", id("x"), null()))),
			want: []string{"x != null"},
		},
		{
			name: "splits nested conjunctions",
			body: bin("&&", id("a"), paren(bin("&&", id("b"), id("c")))),
			want: []string{"a", "b", "c"},
		},
		{
			name: "keeps disjunctions whole",
			body: bin("||", paren(bin("&&", id("a"), id("b"))), id("c")),
			want: []string{"(a && b) || c"},
		},
		{
			name:   "unrolls a quantifier and splits its body",
			body:   forAll("xs", "x", bounded),
			unroll: true,
			want:   []string{"x >= 0", "x < a.Length"},
		},
		{
			name: "leaves the quantifier alone when unrolling is off",
			body: forAll("xs", "x", bounded),
			want: []string{"Contract.ForAll(xs, x => x >= 0 && x < a.Length)"},
		},
		{
			name:   "unrolls a single level",
			body:   call("Contract.ForAll", id("xss"), lambda("xs", forAll("xs", "x", bin("!=", id("x"), null())))),
			unroll: true,
			want:   []string{"Contract.ForAll(xs, x => x != null)"},
		},
		{
			name:   "unrolls quantifiers inside conjunctions",
			body:   bin("&&", bin("!=", id("xs"), null()), forAll("xs", "x", bin("!=", id("x"), null()))),
			unroll: true,
			want:   []string{"xs != null", "x != null"},
		},
		{
			name:   "keeps block-bodied quantifiers whole",
			body:   call("Contract.ForAll", id("xs"), &m.Lambda{Params: []string{"x"}}),
			unroll: true,
			want:   []string{"Contract.ForAll(xs, x => { })"},
		},
		{
			name:   "keeps quantifiers outside the allow-list whole",
			body:   call("xs.TrueForAll", lambda("x", bin("!=", id("x"), null()))),
			unroll: true,
			want:   []string{"xs.TrueForAll(x => x != null)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := texts(TopLevelClauses(tt.body, tt.unroll))
			assert.Empty(t, cmp.Diff(tt.want, got))
		})
	}
}

func TestCollectorCollect(t *testing.T) {
	const file = m.Path("Stack.cs")

	t.Run("classifies every contract kind", func(t *testing.T) {
		src := root(string(file),
			requires(bin("&&", bin("!=", id("item"), null()), bin(">=", id("idx"), num("0")))),
			call("Console.WriteLine", str("ignored")),
			ensures(result("bool")),
			invariant(bin("<", id("top"), name("items.Length"))),
		)

		got, err := NewCollector(m.AllKinds, nil, nil, true).Collect(src)
		require.NoError(t, err)

		want := []m.Clause{
			{Kind: m.Requires, Text: "item != null", Labels: []string{CategoryNullness}, File: file},
			{Kind: m.Requires, Text: "idx >= 0", Labels: []string{CategoryBound}, File: file},
			{Kind: m.Ensures, Text: "Contract.Result<bool>()", Labels: []string{CategoryReturnValue}, File: file},
			{Kind: m.Invariant, Text: "top < items.Length", Labels: []string{CategoryBoundsCheck}, File: file},
		}
		assert.Empty(t, cmp.Diff(want, got))
	})

	// idx >= 0 meets the Lower/Upper Bound rule before the Bounds Check rule.
	t.Run("compound bounds checks are split", func(t *testing.T) {
		src := root(string(file), requires(bin("&&",
			bin(">=", id("idx"), num("0")),
			bin("<", id("idx"), name("array.Length")))))

		got, err := NewCollector(m.Requires, nil, nil, true).Collect(src)
		require.NoError(t, err)

		assert.Empty(t, cmp.Diff([]string{CategoryBound, CategoryBoundsCheck}, categories(got)))
	})

	t.Run("quantified bodies become separate clauses", func(t *testing.T) {
		src := root(string(file), requires(forAll("xs", "x", bin("&&",
			bin(">=", id("x"), num("0")),
			bin("<", id("x"), name("a.Length"))))))

		got, err := NewCollector(m.Requires, nil, nil, true).Collect(src)
		require.NoError(t, err)

		assert.Len(t, got, 2)
	})

	t.Run("nested quantifiers are classified through the engine fallback", func(t *testing.T) {
		nested := call("Contract.ForAll", id("xss"), lambda("xs", forAll("xs", "x", bin("!=", id("x"), null()))))
		src := root(string(file), requires(nested))

		unrolled, err := NewCollector(m.Requires, nil, nil, true).Collect(src)
		require.NoError(t, err)

		plain, err := NewCollector(m.Requires, nil, nil, false).Collect(src)
		require.NoError(t, err)

		assert.Empty(t, cmp.Diff([]string{CategoryNullness}, categories(unrolled)))

		assert.Empty(t, cmp.Diff([]string{m.OtherCategory}, categories(plain)))
	})

	t.Run("drops literal false", func(t *testing.T) {
		src := root(string(file),
			requires(no()),
			requires(paren(no())),
			requires(bin("&&", id("ready"), no())),
		)

		got, err := NewCollector(m.Requires, nil, nil, true).Collect(src)
		require.NoError(t, err)

		assert.Empty(t, cmp.Diff([]string{"ready"}, clauseTexts(got)))
	})

	t.Run("unmatched clauses are kept as Other", func(t *testing.T) {
		src := root(string(file), requires(call("Foo", id("x"), id("y"))))

		got, err := NewCollector(m.Requires, nil, nil, true).Collect(src)
		require.NoError(t, err)

		require.Len(t, got, 1)
		assert.True(t, got[0].Uncategorized())
	})

	t.Run("filters by configured kinds", func(t *testing.T) {
		src := root(string(file),
			requires(bin("!=", id("x"), null())),
			ensures(result("bool")),
			invariant(id("open")),
		)

		got, err := NewCollector(m.Ensures|m.Invariant, nil, nil, true).Collect(src)
		require.NoError(t, err)

		assert.Empty(t, cmp.Diff([]string{"Contract.Result<bool>()", "open"}, clauseTexts(got)))
	})

	t.Run("Getter/Setter follows the collector kinds", func(t *testing.T) {
		src := root(string(file), requires(bin("==", name("this.Name"), id("name"))))

		single, err := NewCollector(m.Requires, nil, nil, true).Collect(src)
		require.NoError(t, err)

		combined, err := NewCollector(m.AllKinds, nil, nil, true).Collect(src)
		require.NoError(t, err)

		require.Len(t, single, 1)
		require.Len(t, combined, 1)
		assert.Equal(t, CategoryExpressionComparison, single[0].Category())
		assert.Equal(t, CategoryGetterSetter, combined[0].Category())
	})

	t.Run("accepts generic markers", func(t *testing.T) {
		src := root(string(file), requires(bin("!=", id("x"), null()), str("x")))
		src.Calls[0].Callee = name("Contract.Requires<ArgumentNullException>")

		got, err := NewCollector(m.Requires, nil, nil, true).Collect(src)
		require.NoError(t, err)

		assert.Empty(t, cmp.Diff([]string{"x != null"}, clauseTexts(got)))
	})

	t.Run("ignores bare calls", func(t *testing.T) {
		src := root(string(file), call("Requires", bin("!=", id("x"), null())))

		got, err := NewCollector(m.Requires, nil, nil, true).Collect(src)
		require.NoError(t, err)

		assert.Empty(t, got)
	})

	t.Run("custom markers", func(t *testing.T) {
		src := root(string(file),
			call("Guard.Requires", bin("!=", id("x"), null())),
			requires(bin("!=", id("y"), null())),
		)

		markers := Markers{m.Requires: "Guard.Requires"}

		got, err := NewCollector(m.AllKinds, markers, nil, true).Collect(src)
		require.NoError(t, err)

		assert.Empty(t, cmp.Diff([]string{"x != null"}, clauseTexts(got)))
	})

	t.Run("malformed contract call keeps the clauses before it", func(t *testing.T) {
		src := root(string(file),
			requires(bin("!=", id("x"), null())),
			requires(),
			requires(bin(">", id("y"), num("0"))),
		)

		got, err := NewCollector(m.Requires, nil, nil, true).Collect(src)
		require.ErrorIs(t, err, ErrMalformedContract)
		assert.Contains(t, err.Error(), string(file))

		require.Len(t, got, 1)
		assert.Equal(t, "x != null", got[0].Text)
		assert.Equal(t, CategoryNullness, got[0].Category())
	})

	t.Run("malformed first call yields no clauses", func(t *testing.T) {
		src := root(string(file),
			requires(),
			requires(bin("!=", id("x"), null())),
		)

		got, err := NewCollector(m.Requires, nil, nil, true).Collect(src)
		require.ErrorIs(t, err, ErrMalformedContract)
		assert.Empty(t, got)
	})

	t.Run("malformed calls of other kinds are ignored", func(t *testing.T) {
		src := root(string(file),
			requires(bin("!=", id("x"), null())),
			ensures(),
		)

		got, err := NewCollector(m.Requires, nil, nil, true).Collect(src)
		require.NoError(t, err)

		assert.Len(t, got, 1)
	})
}

func TestCollectorKinds(t *testing.T) {
	c := NewCollector(m.Requires|m.Invariant, nil, nil, false)
	assert.Equal(t, m.Requires|m.Invariant, c.Kinds())
}

func clauseTexts(clauses []m.Clause) []string {
	out := make([]string, 0, len(clauses))
	for _, c := range clauses {
		out = append(out, c.Text)
	}

	return out
}

func categories(clauses []m.Clause) []string {
	out := make([]string, 0, len(clauses))
	for _, c := range clauses {
		out = append(out, c.Category())
	}

	return out
}
