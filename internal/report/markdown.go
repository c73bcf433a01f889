package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/siteclone/internal/database"
	"github.com/nao1215/siteclone/internal/model"
)

// MarkdownWriter outputs reports in GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CloneReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeAlert(md, report)
	w.writeAssets(md, report)
	w.writeFailures(md, report)
	w.writeFindings(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CloneReport) {
	md.H1("Siteclone Report")
	md.PlainText("")

	status := "Complete"
	if report.Error != "" {
		status = "Failed: " + report.Error
	}

	rows := [][]string{
		{"Target", "`" + report.Target + "`"},
		{"Clone ID", "`" + report.ID + "`"},
		{"Date", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Duration", report.Duration().Round(time.Millisecond).String()},
		{"Status", status},
	}
	if report.ArchiveSize > 0 {
		rows = append(rows, []string{"Archive", size(report.ArchiveSize)})
	}
	if report.ArchiveDigest != "" {
		rows = append(rows, []string{"SHA3-256", "`" + report.ArchiveDigest + "`"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.CloneReport) {
	high := len(report.FindingsBySeverity(model.SeverityHigh))

	switch {
	case report.Error != "":
		md.Cautionf("Clone failed: %s", report.Error)
	case high > 0:
		md.Warningf(
			"%d asset(s) carry identifying metadata such as GPS coordinates or serial numbers.",
			high,
		)
	case report.BudgetReached:
		md.Importantf(
			"The size or asset budget was reached after %d asset(s); the archive is partial.",
			report.AssetCount,
		)
	case len(report.Failures) > 0:
		md.Note(strconv.Itoa(len(report.Failures)) + " referenced asset(s) could not be collected.")
	default:
		md.Tip("All discovered same-origin assets were collected.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeAssets(md *markdown.Markdown, report *model.CloneReport) {
	md.H2("Assets")
	md.PlainText("")

	if report.AssetCount == 0 {
		md.PlainText("No assets collected.")
		md.PlainText("")
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Assets by Category"),
		piechart.WithShowData(true),
	)

	rows := make([][]string, 0, len(model.AllCategories)+1)
	for _, c := range model.AllCategories {
		n := report.Categories[c]
		if n == 0 {
			continue
		}
		rows = append(rows, []string{categoryLabel(c), strconv.Itoa(n)})
		chart.LabelAndIntValue(categoryLabel(c), uint64(n))
	}
	rows = append(rows, []string{"**Total**", strconv.Itoa(report.AssetCount) + " (" + size(report.TotalSize) + ")"})

	md.Table(markdown.TableSet{
		Header: []string{"Category", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")

	if len(report.Assets) > 0 {
		files := make([]string, 0, len(report.Assets))
		for _, a := range report.Assets {
			files = append(files, "`"+a.ArchivePath+"` "+size(a.Size))
		}
		md.H3("Files")
		md.PlainText("")
		md.BulletList(files...)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, report *model.CloneReport) {
	if len(report.Failures) == 0 {
		return
	}

	md.H2("Failed Assets")
	md.PlainText("")

	rows := make([][]string, len(report.Failures))
	for i, f := range report.Failures {
		rows[i] = []string{truncateString(f.URL, 60), truncateString(f.Reason, 60)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, report *model.CloneReport) {
	if len(report.Findings) == 0 {
		return
	}

	md.H2("Metadata Findings")
	md.PlainText("")

	for _, s := range severities {
		findings := report.FindingsBySeverity(s)
		if len(findings) == 0 {
			continue
		}

		md.H3(title(s.String()))
		md.PlainText("")

		rows := make([][]string, len(findings))
		for i, f := range findings {
			rows[i] = []string{f.Title, "`" + f.Asset + "`", truncateString(f.Value, 60)}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Title", "Asset", "Value"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [siteclone](https://github.com/nao1215/siteclone)*")
}

// WriteHistory outputs past clones as a Markdown table.
func (w *MarkdownWriter) WriteHistory(records []database.CloneRecord) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Clone History")
	md.PlainText("")

	if len(records) == 0 {
		md.PlainText("No clones recorded.")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Domain,
			r.Status,
			strconv.Itoa(r.AssetCount),
			size(r.TotalSize),
			"`" + r.ID + "`",
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Date", "Domain", "Status", "Assets", "Size", "ID"},
		Rows:   rows,
	})

	return len(md.String()), md.Build()
}
