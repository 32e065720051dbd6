package domain

import (
	"slices"
	"sync"

	m "clausestat.dev/pkg/clausestat/internal/model"
)

// Tally counts classified clauses of one subject. Clauses from a single-kind
// pass land in that kind's column; clauses from the combined pass land in Total.
type Tally struct {
	names []string
	rows  map[string]*m.CategoryCount
}

// NewTally creates a tally over the given category names plus Other.
func NewTally(names []string) *Tally {
	ordered := append(append([]string{}, names...), m.OtherCategory)
	rows := make(map[string]*m.CategoryCount, len(ordered))

	for _, name := range ordered {
		rows[name] = &m.CategoryCount{Name: name}
	}

	return &Tally{names: ordered, rows: rows}
}

// Add counts clause as produced by a collector configured with pass.
func (t *Tally) Add(pass m.ContractKind, clause m.Clause) {
	row, ok := t.rows[clause.Category()]
	if !ok {
		row = &m.CategoryCount{Name: clause.Category()}
		t.rows[row.Name] = row
		t.names = append(t.names, row.Name)
	}

	switch pass {
	case m.Requires:
		row.Requires++
	case m.Ensures:
		row.Ensures++
	case m.Invariant:
		row.Invariant++
	default:
		row.Total++
	}
}

// Rows returns the counts in category order, Other last.
func (t *Tally) Rows() []m.CategoryCount {
	rows := make([]m.CategoryCount, 0, len(t.names))
	for _, name := range t.names {
		rows = append(rows, *t.rows[name])
	}

	return rows
}

// Aggregate is the run-wide table of combined clause counts per category.
// Fold may be called from concurrent subject workers.
type Aggregate struct {
	mu     sync.Mutex
	names  []string
	counts map[string]int
}

// NewAggregate creates an empty table over names plus Other.
func NewAggregate(names []string) *Aggregate {
	ordered := append(append([]string{}, names...), m.OtherCategory)

	return &Aggregate{
		names:  ordered,
		counts: make(map[string]int, len(ordered)),
	}
}

// Fold adds a finished subject's combined totals.
func (a *Aggregate) Fold(stats m.SubjectStats) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, row := range stats.Counts {
		if !slices.Contains(a.names, row.Name) {
			a.names = append(a.names, row.Name)
		}

		a.counts[row.Name] += row.Total
	}
}

// Entries returns a snapshot of the table in category order.
func (a *Aggregate) Entries() []m.AggregateEntry {
	a.mu.Lock()
	defer a.mu.Unlock()

	entries := make([]m.AggregateEntry, 0, len(a.names))
	for _, name := range a.names {
		entries = append(entries, m.AggregateEntry{Name: name, Count: a.counts[name]})
	}

	return entries
}
