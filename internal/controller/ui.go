// Package controller provides output adapters for displaying classification results.
package controller

import (
	"context"

	m "clausestat.dev/pkg/clausestat/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeList StartMode = iota
	ModeRun
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode      StartMode
	interrupt func()
}

// WithListMode sets the UI to print one-shot listings.
func WithListMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeList
	}
}

// WithRunMode sets the UI to corpus processing with progress reporting.
func WithRunMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeRun
	}
}

// WithInterruptHandler registers fn to run when the user aborts a run from
// the UI.
func WithInterruptHandler(fn func()) StartOption {
	return func(c *StartConfig) {
		c.interrupt = fn
	}
}

func newStartConfig(options []StartOption) StartConfig {
	cfg := StartConfig{mode: ModeList}
	for _, option := range options {
		option(&cfg)
	}

	return cfg
}

// UI defines the interface for reporting classification progress and results.
// Implementations can use different output methods (simple text, TUI, etc).
// Display methods may be called from concurrent subject workers.
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplaySubjects(ctx context.Context, subjects []m.Subject)
	DisplaySubjectStarted(ctx context.Context, subject m.Subject)
	DisplayFileSkipped(ctx context.Context, path m.Path, err error)
	DisplaySubjectCompleted(ctx context.Context, stats m.SubjectStats)
	DisplayTotals(ctx context.Context, totals []m.AggregateEntry)
	DisplayClauses(ctx context.Context, path m.Path, clauses []m.Clause)
	DisplayCategories(ctx context.Context, names []string)
}
