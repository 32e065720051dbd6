package controller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	m "clausestat.dev/pkg/clausestat/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	subjectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212"))

	faintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

const maxProgressWidth = 60

// NewUI selects the TUI on terminals and the plain printer otherwise.
func NewUI(cmd *cobra.Command, useTTY bool) UI {
	if useTTY {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether w is an interactive terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// TUI implements UI using Bubble Tea. In run mode a progress program owns the
// terminal until Close; in list mode results are printed as styled tables.
type TUI struct {
	output io.Writer

	mu      sync.Mutex
	mode    StartMode
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start launches the progress program in run mode.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := newStartConfig(options)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.mode = cfg.mode
	if cfg.mode != ModeRun || t.program != nil {
		return nil
	}

	program := tea.NewProgram(newRunModel(cfg.interrupt), tea.WithOutput(t.output))
	done := make(chan struct{})

	go func() {
		defer close(done)

		if _, err := program.Run(); err != nil {
			slog.Error("tui stopped", "error", err)
		}
	}()

	t.program = program
	t.done = done

	return nil
}

// Close stops the progress program.
func (t *TUI) Close(_ context.Context) {
	t.mu.Lock()
	program, done := t.program, t.done
	t.program, t.done = nil, nil
	t.mu.Unlock()

	if program == nil {
		return
	}

	program.Quit()
	<-done
}

// Wait blocks until the user leaves the progress program.
func (t *TUI) Wait(ctx context.Context) {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	if done == nil {
		return
	}

	select {
	case <-done:
	case <-ctx.Done():
	}
}

// DisplaySubjects implements UI.
func (t *TUI) DisplaySubjects(_ context.Context, subjects []m.Subject) {
	t.send(subjectsMsg{total: len(subjects)})
}

// DisplaySubjectStarted implements UI.
func (t *TUI) DisplaySubjectStarted(_ context.Context, subject m.Subject) {
	t.send(subjectStartedMsg{name: subject.Name})
}

// DisplayFileSkipped implements UI.
func (t *TUI) DisplayFileSkipped(_ context.Context, path m.Path, err error) {
	t.send(fileSkippedMsg{path: path, err: err})
}

// DisplaySubjectCompleted implements UI.
func (t *TUI) DisplaySubjectCompleted(_ context.Context, stats m.SubjectStats) {
	if t.send(subjectDoneMsg{stats: stats}) {
		return
	}

	t.print(fmt.Sprintf("%s %s\n", subjectStyle.Render(stats.Subject.Name),
		faintStyle.Render(fmt.Sprintf("%d file(s), %d clause(s), %d skipped",
			stats.Files, stats.Clauses, stats.FailedFiles))))
}

// DisplayTotals implements UI.
func (t *TUI) DisplayTotals(_ context.Context, totals []m.AggregateEntry) {
	if t.send(totalsMsg{totals: totals}) {
		return
	}

	t.print(titleStyle.Render("Clauses per category") + "\n" + renderTotalsTable(totals))
}

// DisplayClauses implements UI.
func (t *TUI) DisplayClauses(_ context.Context, path m.Path, clauses []m.Clause) {
	t.print(titleStyle.Render(string(path)) + "\n" + renderClausesTable(clauses))
}

// DisplayCategories implements UI.
func (t *TUI) DisplayCategories(_ context.Context, names []string) {
	t.print(titleStyle.Render("Categories in evaluation order") + "\n" + renderCategoriesTable(names))
}

// send forwards msg to the progress program and reports whether one is running.
func (t *TUI) send(msg tea.Msg) bool {
	t.mu.Lock()
	program := t.program
	t.mu.Unlock()

	if program == nil {
		return false
	}

	program.Send(msg)

	return true
}

func (t *TUI) print(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, _ = fmt.Fprint(t.output, s)
}

type subjectsMsg struct{ total int }

type subjectStartedMsg struct{ name string }

type fileSkippedMsg struct {
	path m.Path
	err  error
}

type subjectDoneMsg struct{ stats m.SubjectStats }

type totalsMsg struct{ totals []m.AggregateEntry }

// runModel renders corpus progress: a spinner, a bar over projects, the
// projects in flight and finally the aggregate table.
type runModel struct {
	spinner   spinner.Model
	progress  progress.Model
	interrupt func()

	total    int
	done     int
	clauses  int
	skipped  int
	lastSkip string
	active   []string
	totals   []m.AggregateEntry
	finished bool
}

func newRunModel(interrupt func()) runModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = subjectStyle

	return runModel{
		spinner:   s,
		progress:  progress.New(progress.WithDefaultGradient()),
		interrupt: interrupt,
	}
}

func (rm runModel) Init() tea.Cmd {
	return rm.spinner.Tick
}

//nolint:cyclop // one case per message type
func (rm runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			if !rm.finished && rm.interrupt != nil {
				rm.interrupt()
			}

			return rm, tea.Quit
		}

		return rm, nil

	case tea.WindowSizeMsg:
		rm.progress.Width = min(msg.Width-4, maxProgressWidth)
		return rm, nil

	case spinner.TickMsg:
		var cmd tea.Cmd

		rm.spinner, cmd = rm.spinner.Update(msg)

		return rm, cmd

	case subjectsMsg:
		rm.total = msg.total

	case subjectStartedMsg:
		rm.active = append(rm.active, msg.name)

	case fileSkippedMsg:
		rm.skipped++
		rm.lastSkip = fmt.Sprintf("%s: %v", msg.path, msg.err)

	case subjectDoneMsg:
		rm.done++
		rm.clauses += msg.stats.Clauses
		rm.active = slices.DeleteFunc(rm.active, func(name string) bool {
			return name == msg.stats.Subject.Name
		})

	case totalsMsg:
		rm.totals = msg.totals
		rm.finished = true
	}

	return rm, nil
}

func (rm runModel) ratio() float64 {
	if rm.total == 0 {
		return 0
	}

	return float64(rm.done) / float64(rm.total)
}

func (rm runModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("clausestat") + "\n\n")

	if rm.finished {
		fmt.Fprintf(&b, "  %d project(s), %d clause(s), %d file(s) skipped\n\n", rm.done, rm.clauses, rm.skipped)
		b.WriteString(renderTotalsTable(rm.totals))
		b.WriteString("\n" + faintStyle.Render("  q: quit") + "\n")

		return b.String()
	}

	fmt.Fprintf(&b, "  %s Classifying projects %d/%d\n", rm.spinner.View(), rm.done, rm.total)
	b.WriteString("  " + rm.progress.ViewAs(rm.ratio()) + "\n\n")

	for _, name := range rm.active {
		b.WriteString("  " + subjectStyle.Render(name) + "\n")
	}

	if rm.skipped > 0 {
		b.WriteString("\n  " + warnStyle.Render(fmt.Sprintf("%d file(s) skipped, last: %s", rm.skipped, rm.lastSkip)) + "\n")
	}

	b.WriteString("\n" + faintStyle.Render("  ctrl+c: cancel") + "\n")

	return b.String()
}
