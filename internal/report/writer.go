package report

import (
	"io"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/siteclone/internal/database"
	"github.com/nao1215/siteclone/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs one clone report and returns the number of bytes written.
	Write(report *model.CloneReport) (int, error)

	// WriteHistory outputs a list of past clones.
	WriteHistory(records []database.CloneRecord) (int, error)
}

// MultiWriter writes to multiple Writers in order and stops on the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
func (m *MultiWriter) Write(report *model.CloneReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteHistory outputs the history to all configured Writers.
func (m *MultiWriter) WriteHistory(records []database.CloneRecord) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteHistory(records)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// severities lists severity levels from most to least severe.
var severities = []model.Severity{
	model.SeverityHigh,
	model.SeverityMedium,
	model.SeverityLow,
	model.SeverityInfo,
}

// title converts s to title case. A Caser is stateful, so each call gets its own.
func title(s string) string {
	return cases.Title(language.English).String(s)
}

// categoryLabel returns the display name of a category, e.g. "Stylesheet".
func categoryLabel(c model.Category) string {
	return title(string(c))
}

// size formats a byte count, e.g. "4.1 kB".
func size(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
