package adapter

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	m "clausestat.dev/pkg/clausestat/internal/model"
)

// Output file names written into the output directory.
const (
	ProjectTableFile  = "stats-by-project.csv"
	UncategorizedFile = "uncategorized-contracts.txt"
	SummaryFile       = "summary.yaml"
	SubjectStatsExt   = ".stats"
	DumpFileExt       = ".txt"
)

// ReportStore persists classification results.
type ReportStore interface {
	// WriteSubjectStats writes <subject>.stats with the per-kind counts.
	WriteSubjectStats(ctx context.Context, dir m.Path, stats m.SubjectStats) error

	// WriteProjectTable writes the combined counts of every subject, one row
	// per subject, columns in categories order followed by Other.
	WriteProjectTable(ctx context.Context, dir m.Path, categories []string, stats []m.SubjectStats) error

	// OpenListing truncates path and returns a line writer for it.
	OpenListing(ctx context.Context, path m.Path) (ListingWriter, error)

	// SaveSummary writes summary.yaml into dir.
	SaveSummary(ctx context.Context, dir m.Path, summary m.RunSummary) error

	// LoadSummary reads the summary.yaml found in dir.
	LoadSummary(ctx context.Context, dir m.Path) (m.RunSummary, error)
}

// ListingWriter appends raw clause text, one entry per line.
type ListingWriter interface {
	WriteLine(line string) error
	Close() error
}

// DumpFileName returns the per-category dump file name: every rune other than
// an ASCII letter, digit, '%', '.' or '_' becomes '_'.
func DumpFileName(category string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '%', r == '.', r == '_':
			return r
		default:
			return '_'
		}
	}, category)

	return sanitized + DumpFileExt
}

// LocalReportStore writes reports to the local disk.
type LocalReportStore struct{}

// NewLocalReportStore constructs a LocalReportStore.
func NewLocalReportStore() *LocalReportStore {
	return &LocalReportStore{}
}

// WriteSubjectStats implements ReportStore.
func (s *LocalReportStore) WriteSubjectStats(ctx context.Context, dir m.Path, stats m.SubjectStats) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	records := make([][]string, 0, len(stats.Counts))
	for _, row := range stats.Counts {
		records = append(records, []string{
			row.Name,
			strconv.Itoa(row.Requires),
			strconv.Itoa(row.Ensures),
			strconv.Itoa(row.Invariant),
		})
	}

	path := filepath.Join(string(dir), stats.Subject.Name+SubjectStatsExt)
	if err := writeCSV(path, records); err != nil {
		return fmt.Errorf("failed to write subject stats for %s: %w", stats.Subject.Name, err)
	}

	slog.Debug("wrote subject stats", "subject", stats.Subject.Name, "path", path)

	return nil
}

// WriteProjectTable implements ReportStore.
func (s *LocalReportStore) WriteProjectTable(ctx context.Context, dir m.Path, categories []string, stats []m.SubjectStats) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	columns := append(append([]string{}, categories...), m.OtherCategory)

	records := make([][]string, 0, len(stats)+1)
	records = append(records, append([]string{""}, columns...))

	for _, subject := range stats {
		record := make([]string, 0, len(columns)+1)
		record = append(record, subject.Subject.Name)

		for _, name := range columns {
			row, _ := subject.Count(name)
			record = append(record, strconv.Itoa(row.Total))
		}

		records = append(records, record)
	}

	path := filepath.Join(string(dir), ProjectTableFile)
	if err := writeCSV(path, records); err != nil {
		return fmt.Errorf("failed to write project table: %w", err)
	}

	slog.Debug("wrote project table", "path", path, "subjects", len(stats))

	return nil
}

// OpenListing implements ReportStore.
func (s *LocalReportStore) OpenListing(ctx context.Context, path m.Path) (ListingWriter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// #nosec G304 - path is inside the output directory chosen by the user
	file, err := os.Create(string(path))
	if err != nil {
		slog.Error("failed to create listing", "path", path, "error", err)
		return nil, fmt.Errorf("failed to create listing %s: %w", path, err)
	}

	return &fileListing{file: file, writer: bufio.NewWriter(file)}, nil
}

// SaveSummary implements ReportStore.
func (s *LocalReportStore) SaveSummary(ctx context.Context, dir m.Path, summary m.RunSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	path := filepath.Join(string(dir), SummaryFile)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write run summary: %w", err)
	}

	return nil
}

// LoadSummary implements ReportStore.
func (s *LocalReportStore) LoadSummary(ctx context.Context, dir m.Path) (m.RunSummary, error) {
	var summary m.RunSummary

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	path := filepath.Join(string(dir), SummaryFile)

	// #nosec G304 - path is inside the output directory chosen by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return summary, fmt.Errorf("failed to read run summary: %w", err)
	}

	if err := yaml.Unmarshal(data, &summary); err != nil {
		return summary, fmt.Errorf("failed to parse run summary %s: %w", path, err)
	}

	return summary, nil
}

func writeCSV(path string, records [][]string) error {
	// #nosec G304 - path is inside the output directory chosen by the user
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(file)
	if err := w.WriteAll(records); err != nil {
		_ = file.Close()
		return err
	}

	return file.Close()
}

type fileListing struct {
	file   *os.File
	writer *bufio.Writer
}

func (l *fileListing) WriteLine(line string) error {
	if _, err := l.writer.WriteString(line); err != nil {
		return err
	}

	return l.writer.WriteByte('\n')
}

func (l *fileListing) Close() error {
	if err := l.writer.Flush(); err != nil {
		_ = l.file.Close()
		return err
	}

	return l.file.Close()
}
