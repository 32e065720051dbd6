package domain

import (
	m "clausestat.dev/pkg/clausestat/internal/model"
)

// Engine applies an ordered category list to clauses.
type Engine struct {
	categories []Category
	mutex      bool
}

// NewEngine builds an engine over categories, evaluated in the given order.
// With mutex set a clause receives at most one label.
func NewEngine(categories []Category, mutex bool) *Engine {
	ordered := make([]Category, len(categories))
	copy(ordered, categories)

	return &Engine{categories: ordered, mutex: mutex}
}

// NewDefaultEngine builds the engine over the standard catalogue.
func NewDefaultEngine() *Engine {
	return NewEngine(catalogue, CategoriesAreMutex)
}

// CategoryNames lists the engine's categories in evaluation order.
func (e *Engine) CategoryNames() []string {
	return categoryNames(e.categories)
}

// Labels returns the names of the categories clause falls into. Each rule is
// tried on the clause itself and then, for an allow-listed quantifier, on the
// quantified lambda body.
func (e *Engine) Labels(kinds m.ContractKind, clause m.Expr) []string {
	stripped := m.Strip(clause)

	var labels []string

	for _, category := range e.categories {
		if !category.Rule(kinds, stripped) && !quantified(category.Rule)(kinds, stripped) {
			continue
		}

		labels = append(labels, category.Name)
		if e.mutex {
			break
		}
	}

	return labels
}

// quantified lifts a rule to the body of ForAll(xs, x => body).
func quantified(rule Rule) Rule {
	return func(kinds m.ContractKind, clause m.Expr) bool {
		body, ok := quantifierBody(clause)
		if !ok {
			return false
		}

		return rule(kinds, m.Strip(body))
	}
}
