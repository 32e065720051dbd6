package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"clausestat.dev/pkg/clausestat/internal/adapter"
	"clausestat.dev/pkg/clausestat/internal/controller"
	m "clausestat.dev/pkg/clausestat/internal/model"
	"clausestat.dev/pkg/clausestat/pkg"
)

// DefaultExtensions lists the source file extensions scanned by default.
var DefaultExtensions = []string{".cs"}

// RunArgs contains the arguments for classifying a corpus.
type RunArgs struct {
	Source         m.Path
	Output         m.Path
	Exclude        []string
	Extensions     []string
	DumpCategories bool
	Threads        int
}

// ClassifyArgs contains the arguments for classifying individual files.
type ClassifyArgs struct {
	Paths []m.Path
	Kinds m.ContractKind
}

// ViewArgs contains the arguments for showing a finished run.
type ViewArgs struct {
	Output m.Path
}

// Workflow defines the clause statistics use cases.
type Workflow interface {
	Run(ctx context.Context, args RunArgs) (m.RunSummary, error)
	Classify(ctx context.Context, args ClassifyArgs) error
	Categories(ctx context.Context) error
	View(ctx context.Context, args ViewArgs) error
}

// Option configures a Workflow.
type Option func(*workflow)

// WithEngine replaces the default category engine.
func WithEngine(engine *Engine) Option {
	return func(w *workflow) {
		w.engine = engine
	}
}

// WithMarkers replaces the contract call markers.
func WithMarkers(markers Markers) Option {
	return func(w *workflow) {
		w.markers = markers
	}
}

// WithUnrollEnumerables lets the splitter unroll allow-listed quantifiers.
func WithUnrollEnumerables(unroll bool) Option {
	return func(w *workflow) {
		w.unroll = unroll
	}
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.SyntaxAdapter
	adapter.ReportStore
	controller.UI

	engine  *Engine
	markers Markers
	unroll  bool
	now     func() time.Time
	newID   func() string
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	syntaxAdapter adapter.SyntaxAdapter,
	reportStore adapter.ReportStore,
	ui controller.UI,
	options ...Option,
) Workflow {
	w := &workflow{
		SourceFSAdapter: fsAdapter,
		SyntaxAdapter:   syntaxAdapter,
		ReportStore:     reportStore,
		UI:              ui,
		engine:          NewDefaultEngine(),
		markers:         DefaultMarkers(),
		unroll:          true,
		now:             time.Now,
		newID:           uuid.NewString,
	}

	for _, option := range options {
		option(w)
	}

	return w
}

// subjectResult is a finished subject: its counts and the combined-pass
// clauses in processing order.
type subjectResult struct {
	stats   m.SubjectStats
	clauses pkg.Spill[m.Clause]
}

// collectors holds the four passes run over every file.
type collectors struct {
	perKind  []*Collector
	combined *Collector
}

func (w *workflow) newCollectors() collectors {
	return collectors{
		perKind: []*Collector{
			NewCollector(m.Requires, w.markers, w.engine, w.unroll),
			NewCollector(m.Ensures, w.markers, w.engine, w.unroll),
			NewCollector(m.Invariant, w.markers, w.engine, w.unroll),
		},
		combined: NewCollector(m.AllKinds, w.markers, w.engine, w.unroll),
	}
}

// Run classifies every subject below args.Source and writes the reports into
// args.Output.
func (w *workflow) Run(ctx context.Context, args RunArgs) (m.RunSummary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	summary := m.RunSummary{
		RunID:     w.newID(),
		Source:    args.Source,
		Output:    args.Output,
		StartedAt: w.now(),
	}

	exclude, err := compileExcludes(args.Exclude)
	if err != nil {
		return summary, err
	}

	if err := w.Start(ctx, controller.WithRunMode(), controller.WithInterruptHandler(cancel)); err != nil {
		slog.Error("failed to start workflow UI", "error", err)
		return summary, err
	}
	defer w.Close(ctx)

	subjects, err := w.ListSubjects(ctx, args.Source)
	if err != nil {
		return summary, fmt.Errorf("discover subjects: %w", err)
	}

	slog.Info("discovered subjects", "source", args.Source, "count", len(subjects))
	w.DisplaySubjects(ctx, subjects)

	if err := w.MkdirAll(ctx, args.Output); err != nil {
		return summary, fmt.Errorf("create output directory: %w", err)
	}

	spillDir, err := w.CreateTempDir(ctx, "clausestat-spill-*")
	if err != nil {
		return summary, fmt.Errorf("create spill directory: %w", err)
	}

	defer func() {
		if err := w.RemoveAll(context.WithoutCancel(ctx), spillDir); err != nil {
			slog.Warn("failed to remove spill directory", "path", spillDir, "error", err)
		}
	}()

	scan := scanConfig{
		source:     args.Source,
		exclude:    exclude,
		extensions: normalizeExtensions(args.Extensions),
		spillDir:   spillDir,
	}

	results, aggregate, err := w.processSubjects(ctx, subjects, scan, args.Threads)
	if err != nil {
		return summary, err
	}

	if err := w.writeReports(ctx, args, results); err != nil {
		return summary, err
	}

	totals := aggregate.Entries()
	for _, entry := range totals {
		slog.Info("aggregate", "category", entry.Name, "count", entry.Count)
	}

	w.DisplayTotals(ctx, totals)

	summary.FinishedAt = w.now()
	summary.Totals = totals
	summary.Subjects = make([]m.SubjectStats, 0, len(results))

	for _, result := range results {
		summary.Subjects = append(summary.Subjects, result.stats)
	}

	if err := w.SaveSummary(ctx, args.Output, summary); err != nil {
		return summary, fmt.Errorf("save summary: %w", err)
	}

	w.Wait(ctx)

	return summary, nil
}

// processSubjects classifies subjects on up to threads workers. Results keep
// the subject order regardless of completion order.
func (w *workflow) processSubjects(
	ctx context.Context,
	subjects []m.Subject,
	scan scanConfig,
	threads int,
) ([]subjectResult, *Aggregate, error) {
	results := make([]subjectResult, len(subjects))
	aggregate := NewAggregate(w.engine.CategoryNames())

	group, groupCtx := errgroup.WithContext(ctx)
	if threads > 0 {
		group.SetLimit(threads)
	}

	for i, subject := range subjects {
		group.Go(func() error {
			result, err := w.processSubject(groupCtx, subject, scan)
			if err != nil {
				return err
			}

			results[i] = result
			aggregate.Fold(result.stats)
			w.DisplaySubjectCompleted(groupCtx, result.stats)

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		releaseSpills(results)
		return nil, nil, err
	}

	return results, aggregate, nil
}

type scanConfig struct {
	source     m.Path
	exclude    []*regexp.Regexp
	extensions []string
	spillDir   m.Path
}

func (w *workflow) processSubject(ctx context.Context, subject m.Subject, scan scanConfig) (subjectResult, error) {
	slog.Info("processing subject", "subject", subject.Name, "root", subject.Root)
	w.DisplaySubjectStarted(ctx, subject)

	spill, err := pkg.NewSpill[m.Clause](string(scan.spillDir))
	if err != nil {
		return subjectResult{}, fmt.Errorf("create clause spill for %s: %w", subject.Name, err)
	}

	passes := w.newCollectors()
	tally := NewTally(w.engine.CategoryNames())
	stats := m.SubjectStats{Subject: subject}

	err = w.Walk(ctx, subject.Root, true, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			slog.Warn("cannot access path", "path", path, "error", err)

			return nil
		}

		if w.excluded(scan, m.Path(path)) {
			if info.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if info.IsDir() || !hasExtension(path, scan.extensions) {
			return nil
		}

		stats.Files++

		clauses, fileErr := w.classifyFile(ctx, m.Path(path), passes, tally)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if len(clauses) > 0 {
			if err := spill.AppendBatch(clauses); err != nil {
				return fmt.Errorf("spill clauses of %s: %w", path, err)
			}

			stats.Clauses += len(clauses)
		}

		if fileErr != nil {
			stats.FailedFiles++

			slog.Warn("skipping file", "path", path, "error", fileErr)
			w.DisplayFileSkipped(ctx, m.Path(path), fileErr)
		}

		return nil
	})
	if err != nil {
		_ = spill.Remove()
		return subjectResult{}, fmt.Errorf("walk %s: %w", subject.Name, err)
	}

	if err := spill.Close(); err != nil {
		return subjectResult{}, fmt.Errorf("close clause spill for %s: %w", subject.Name, err)
	}

	stats.Counts = tally.Rows()

	slog.Info("processed subject", "subject", subject.Name, "files", stats.Files,
		"failed", stats.FailedFiles, "clauses", stats.Clauses)

	return subjectResult{stats: stats, clauses: spill}, nil
}

// classifyFile runs every pass over one file and returns the combined-pass
// clauses. A parse failure skips the whole file; a malformed contract keeps
// the clauses declared before it and reports the file as failed.
func (w *workflow) classifyFile(
	ctx context.Context,
	path m.Path,
	passes collectors,
	tally *Tally,
) ([]m.Clause, error) {
	src, err := w.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	root, err := w.Parse(ctx, path, src)
	if err != nil {
		return nil, err
	}

	var malformed error

	for _, collector := range passes.perKind {
		clauses, err := collector.Collect(root)
		if err != nil {
			malformed = err
		}

		for _, clause := range clauses {
			tally.Add(collector.Kinds(), clause)
		}
	}

	clauses, err := passes.combined.Collect(root)
	if err != nil {
		malformed = err
	}

	for _, clause := range clauses {
		tally.Add(passes.combined.Kinds(), clause)
	}

	return clauses, malformed
}

func (w *workflow) excluded(scan scanConfig, path m.Path) bool {
	if len(scan.exclude) == 0 {
		return false
	}

	rel, err := w.RelPath(scan.source, path)
	if err != nil {
		rel = path
	}

	target := filepath.ToSlash(string(rel))

	return slices.ContainsFunc(scan.exclude, func(re *regexp.Regexp) bool {
		return re.MatchString(target)
	})
}

// writeReports emits every output file in subject order.
func (w *workflow) writeReports(ctx context.Context, args RunArgs, results []subjectResult) error {
	defer releaseSpills(results)

	stats := make([]m.SubjectStats, 0, len(results))

	for _, result := range results {
		if err := w.WriteSubjectStats(ctx, args.Output, result.stats); err != nil {
			return err
		}

		stats = append(stats, result.stats)
	}

	if err := w.WriteProjectTable(ctx, args.Output, w.engine.CategoryNames(), stats); err != nil {
		return err
	}

	listings, err := w.openListings(ctx, args)
	if err != nil {
		return err
	}

	writeErr := w.fillListings(results, listings)
	closeErr := listings.close()

	if writeErr != nil {
		return fmt.Errorf("write listings: %w", writeErr)
	}

	if closeErr != nil {
		return fmt.Errorf("close listings: %w", closeErr)
	}

	return nil
}

// listings routes clause text to the uncategorized listing and, optionally,
// one dump file per category.
type listings struct {
	uncategorized adapter.ListingWriter
	dumps         map[string]adapter.ListingWriter
}

func (l listings) close() error {
	var errs []error

	if l.uncategorized != nil {
		errs = append(errs, l.uncategorized.Close())
	}

	for _, dump := range l.dumps {
		errs = append(errs, dump.Close())
	}

	return errors.Join(errs...)
}

func (w *workflow) openListings(ctx context.Context, args RunArgs) (listings, error) {
	var (
		out listings
		err error
	)

	out.uncategorized, err = w.OpenListing(ctx, w.JoinPath(string(args.Output), adapter.UncategorizedFile))
	if err != nil {
		return out, err
	}

	if !args.DumpCategories {
		return out, nil
	}

	out.dumps = make(map[string]adapter.ListingWriter)

	for _, name := range w.engine.CategoryNames() {
		dump, err := w.OpenListing(ctx, w.JoinPath(string(args.Output), adapter.DumpFileName(name)))
		if err != nil {
			_ = out.close()
			return listings{}, err
		}

		out.dumps[name] = dump
	}

	return out, nil
}

func (w *workflow) fillListings(results []subjectResult, out listings) error {
	for _, result := range results {
		if err := out.uncategorized.WriteLine("# " + result.stats.Subject.Name); err != nil {
			return err
		}

		err := result.clauses.Range(func(_ uint64, clause m.Clause) error {
			if clause.Uncategorized() {
				return out.uncategorized.WriteLine(clause.Text)
			}

			if dump, ok := out.dumps[clause.Category()]; ok {
				return dump.WriteLine(clause.Text)
			}

			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func releaseSpills(results []subjectResult) {
	for _, result := range results {
		if result.clauses == nil {
			continue
		}

		if err := result.clauses.Remove(); err != nil {
			slog.Warn("failed to remove clause spill", "path", result.clauses.Path(), "error", err)
		}
	}
}

// Classify prints the classified clauses of individual files.
func (w *workflow) Classify(ctx context.Context, args ClassifyArgs) error {
	kinds := args.Kinds
	if kinds == 0 {
		kinds = m.AllKinds
	}

	if err := w.Start(ctx, controller.WithListMode()); err != nil {
		slog.Error("failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	collector := NewCollector(kinds, w.markers, w.engine, w.unroll)

	for _, path := range args.Paths {
		src, err := w.ReadFile(ctx, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		root, err := w.Parse(ctx, path, src)
		if err != nil {
			return err
		}

		clauses, err := collector.Collect(root)
		if err != nil {
			return err
		}

		w.DisplayClauses(ctx, path, clauses)
	}

	w.Wait(ctx)

	return nil
}

// Categories prints the category catalogue in evaluation order.
func (w *workflow) Categories(ctx context.Context) error {
	if err := w.Start(ctx, controller.WithListMode()); err != nil {
		slog.Error("failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	w.DisplayCategories(ctx, w.engine.CategoryNames())
	w.Wait(ctx)

	return nil
}

// View shows the summary of a finished run.
func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	summary, err := w.LoadSummary(ctx, args.Output)
	if err != nil {
		return err
	}

	if err := w.Start(ctx, controller.WithListMode()); err != nil {
		slog.Error("failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	for _, stats := range summary.Subjects {
		w.DisplaySubjectCompleted(ctx, stats)
	}

	w.DisplayTotals(ctx, summary.Totals)
	w.Wait(ctx)

	return nil
}

func compileExcludes(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))

	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}

		compiled = append(compiled, re)
	}

	return compiled, nil
}

func normalizeExtensions(extensions []string) []string {
	if len(extensions) == 0 {
		return DefaultExtensions
	}

	normalized := make([]string, 0, len(extensions))

	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}

		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}

		normalized = append(normalized, ext)
	}

	return normalized
}

func hasExtension(path string, extensions []string) bool {
	return slices.Contains(extensions, strings.ToLower(filepath.Ext(path)))
}
