package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/siteclone/internal/database"
	"github.com/nao1215/siteclone/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with nothing to list are shown.
	showEmpty bool

	// verbose lists every collected asset.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables the per-asset listing.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.CloneReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeAssets(&sb, report)
	w.writeFailures(&sb, report)
	w.writeFindings(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.CloneReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         SITECLONE REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Target:     %s\n", report.Target)
	if report.Domain != "" {
		fmt.Fprintf(sb, "Domain:     %s\n", report.Domain)
	}
	fmt.Fprintf(sb, "Clone ID:   %s\n", report.ID)
	fmt.Fprintf(sb, "Date:       %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Duration:   %s\n", report.Duration().Round(time.Millisecond))

	if report.Error != "" {
		fmt.Fprintf(sb, "Status:     FAILED - %s\n", report.Error)
	} else {
		sb.WriteString("Status:     Complete\n")
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeAssets(sb *strings.Builder, report *model.CloneReport) {
	if report.AssetCount == 0 && !w.showEmpty {
		return
	}

	writeSection(sb, "ASSETS")

	for _, c := range model.AllCategories {
		n := report.Categories[c]
		if n == 0 && !w.showEmpty {
			continue
		}
		fmt.Fprintf(sb, "  %-12s %d\n", categoryLabel(c)+":", n)
	}
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  %-12s %d (%s)\n", "Total:", report.AssetCount, size(report.TotalSize))

	if report.ArchiveSize > 0 {
		fmt.Fprintf(sb, "  %-12s %s\n", "Archive:", size(report.ArchiveSize))
	}
	if report.ArchivePath != "" {
		fmt.Fprintf(sb, "  %-12s %s\n", "Saved to:", report.ArchivePath)
	}
	if report.ArchiveDigest != "" {
		fmt.Fprintf(sb, "  %-12s %s\n", "SHA3-256:", report.ArchiveDigest)
	}
	if report.BudgetReached {
		sb.WriteString("\n  [!] Size or asset budget reached; some references were not collected.\n")
	}
	sb.WriteString("\n")

	if w.verbose {
		for _, a := range report.Assets {
			fmt.Fprintf(sb, "  %-10s %9s  %s\n", a.Category, size(a.Size), a.ArchivePath)
		}
		sb.WriteString("\n")
	}
}

func (w *SimpleWriter) writeFailures(sb *strings.Builder, report *model.CloneReport) {
	if len(report.Failures) == 0 && !w.showEmpty {
		return
	}

	writeSection(sb, fmt.Sprintf("FAILED ASSETS (%d)", len(report.Failures)))

	if len(report.Failures) == 0 {
		sb.WriteString("  None\n\n")
		return
	}
	for _, f := range report.Failures {
		fmt.Fprintf(sb, "  * %s\n", truncateString(f.URL, 80))
		fmt.Fprintf(sb, "    %s\n", f.Reason)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFindings(sb *strings.Builder, report *model.CloneReport) {
	if len(report.Findings) == 0 && !w.showEmpty {
		return
	}

	writeSection(sb, fmt.Sprintf("METADATA FINDINGS (%d)", len(report.Findings)))

	if len(report.Findings) == 0 {
		sb.WriteString("  No embedded metadata found.\n\n")
		return
	}

	for _, s := range severities {
		findings := report.FindingsBySeverity(s)
		if len(findings) == 0 {
			continue
		}
		fmt.Fprintf(sb, "%s %s (%d)\n", severityIndicator(s), s, len(findings))
		for _, f := range findings {
			fmt.Fprintf(sb, "  * %s\n", f.Title)
			fmt.Fprintf(sb, "    Asset: %s\n", f.Asset)
			if w.verbose && f.Value != "" {
				fmt.Fprintf(sb, "    Value: %s\n", truncateString(f.Value, 120))
			}
		}
		sb.WriteString("\n")
	}
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// WriteHistory outputs past clones as an aligned text table.
func (w *SimpleWriter) WriteHistory(records []database.CloneRecord) (int, error) {
	var sb strings.Builder

	if len(records) == 0 {
		sb.WriteString("No clones recorded.\n")
		return w.output.Write([]byte(sb.String()))
	}

	fmt.Fprintf(&sb, "%-19s  %-30s  %-8s  %6s  %9s  %s\n",
		"DATE", "DOMAIN", "STATUS", "ASSETS", "SIZE", "ID")
	for _, r := range records {
		fmt.Fprintf(&sb, "%-19s  %-30s  %-8s  %6d  %9s  %s\n",
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			truncateString(r.Domain, 30),
			r.Status,
			r.AssetCount,
			size(r.TotalSize),
			r.ID)
	}
	return w.output.Write([]byte(sb.String()))
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// severityIndicator returns a visual marker for the severity level.
func severityIndicator(s model.Severity) string {
	switch s {
	case model.SeverityHigh:
		return "[!!]"
	case model.SeverityMedium:
		return "[! ]"
	case model.SeverityLow:
		return "[- ]"
	default:
		return "[i ]"
	}
}
