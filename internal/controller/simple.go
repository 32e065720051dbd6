package controller

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "clausestat.dev/pkg/clausestat/internal/model"
)

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	mu  sync.Mutex
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(_ context.Context) {}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(_ context.Context) {}

// DisplaySubjects prints the discovered projects.
func (s *SimpleUI) DisplaySubjects(ctx context.Context, subjects []m.Subject) {
	if ctx.Err() != nil {
		return
	}

	s.printf("Discovered %d project(s)\n", len(subjects))
}

// DisplaySubjectStarted announces a project being processed.
func (s *SimpleUI) DisplaySubjectStarted(ctx context.Context, subject m.Subject) {
	if ctx.Err() != nil {
		return
	}

	s.printf("Processing %s\n", subject.Name)
}

// DisplayFileSkipped reports a file that could not be classified.
func (s *SimpleUI) DisplayFileSkipped(ctx context.Context, path m.Path, err error) {
	if ctx.Err() != nil {
		return
	}

	s.printf("Skipped %s: %v\n", path, err)
}

// DisplaySubjectCompleted prints a one-line project summary.
func (s *SimpleUI) DisplaySubjectCompleted(ctx context.Context, stats m.SubjectStats) {
	if ctx.Err() != nil {
		return
	}

	s.printf("Processed %s: %d file(s), %d clause(s), %d skipped\n",
		stats.Subject.Name, stats.Files, stats.Clauses, stats.FailedFiles)
}

// DisplayTotals prints the aggregate table.
func (s *SimpleUI) DisplayTotals(ctx context.Context, totals []m.AggregateEntry) {
	if ctx.Err() != nil {
		return
	}

	s.printf("\n%s", renderTotalsTable(totals))
}

// DisplayClauses prints the clauses of one file with their category.
func (s *SimpleUI) DisplayClauses(ctx context.Context, path m.Path, clauses []m.Clause) {
	if ctx.Err() != nil {
		return
	}

	s.printf("%s\n%s", path, renderClausesTable(clauses))
}

// DisplayCategories prints the catalogue in evaluation order.
func (s *SimpleUI) DisplayCategories(ctx context.Context, names []string) {
	if ctx.Err() != nil {
		return
	}

	s.printf("%s", renderCategoriesTable(names))
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func newTable(buf *bytes.Buffer, header []string, alignment []int) *tablewriter.Table {
	table := tablewriter.NewWriter(buf)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment(alignment)

	return table
}

func renderTotalsTable(totals []m.AggregateEntry) string {
	var buf bytes.Buffer

	table := newTable(&buf, []string{"Category", "Clauses"},
		[]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

	sum := 0

	for _, entry := range totals {
		table.Append([]string{entry.Name, strconv.Itoa(entry.Count)})

		sum += entry.Count
	}

	table.SetFooter([]string{"Total", strconv.Itoa(sum)})
	table.Render()

	return buf.String()
}

func renderClausesTable(clauses []m.Clause) string {
	if len(clauses) == 0 {
		return "  no contract clauses\n"
	}

	var buf bytes.Buffer

	table := newTable(&buf, []string{"Kind", "Category", "Clause"},
		[]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	for _, clause := range clauses {
		table.Append([]string{clause.Kind.String(), clause.Category(), clause.Text})
	}

	table.Render()

	return buf.String()
}

func renderCategoriesTable(names []string) string {
	var buf bytes.Buffer

	table := newTable(&buf, []string{"#", "Category"},
		[]int{tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT})

	for i, name := range names {
		table.Append([]string{strconv.Itoa(i + 1), name})
	}

	table.Render()

	return buf.String()
}
