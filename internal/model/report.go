package model

import "time"

// CategoryCount holds the clause counts of one category for one subject.
// Total comes from the combined pass and is not necessarily the sum of the
// per-kind columns.
type CategoryCount struct {
	Name      string `yaml:"name"`
	Requires  int    `yaml:"requires"`
	Ensures   int    `yaml:"ensures"`
	Invariant int    `yaml:"invariant"`
	Total     int    `yaml:"total"`
}

// SubjectStats is the outcome of classifying every contract of one subject.
type SubjectStats struct {
	Subject     Subject         `yaml:"subject"`
	Files       int             `yaml:"files"`
	FailedFiles int             `yaml:"failed_files"`
	Clauses     int             `yaml:"clauses"`
	Counts      []CategoryCount `yaml:"counts"`
}

// Count returns the row for the named category.
func (s SubjectStats) Count(name string) (CategoryCount, bool) {
	for _, count := range s.Counts {
		if count.Name == name {
			return count, true
		}
	}

	return CategoryCount{}, false
}

// AggregateEntry is one row of the run-wide aggregate table.
type AggregateEntry struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

// RunSummary describes a finished run.
type RunSummary struct {
	RunID      string           `yaml:"run_id"`
	Source     Path             `yaml:"source"`
	Output     Path             `yaml:"output"`
	StartedAt  time.Time        `yaml:"started_at"`
	FinishedAt time.Time        `yaml:"finished_at"`
	Subjects   []SubjectStats   `yaml:"subjects"`
	Totals     []AggregateEntry `yaml:"totals"`
}
