package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/siteclone/internal/database"
	"github.com/nao1215/siteclone/internal/model"
)

// JSONWriter outputs reports in JSON format.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report as one JSON document.
func (w *JSONWriter) Write(report *model.CloneReport) (int, error) {
	return w.writeJSON(report)
}

// historyEntry is the JSON shape of one history row.
type historyEntry struct {
	ID            string                 `json:"id"`
	Target        string                 `json:"target"`
	Domain        string                 `json:"domain"`
	Timestamp     string                 `json:"timestamp"`
	DurationMS    int64                  `json:"duration_ms"`
	Status        string                 `json:"status"`
	Error         string                 `json:"error,omitempty"`
	AssetCount    int                    `json:"asset_count"`
	Categories    map[model.Category]int `json:"categories,omitempty"`
	TotalSize     int64                  `json:"total_size"`
	ArchiveSize   int64                  `json:"archive_size"`
	ArchiveDigest string                 `json:"archive_digest,omitempty"`
	ArchivePath   string                 `json:"archive_path,omitempty"`
	FindingCount  int                    `json:"finding_count"`
}

// WriteHistory outputs the history as a JSON array.
func (w *JSONWriter) WriteHistory(records []database.CloneRecord) (int, error) {
	entries := make([]historyEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, historyEntry{
			ID:            r.ID,
			Target:        r.TargetURL,
			Domain:        r.Domain,
			Timestamp:     r.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			DurationMS:    r.Duration.Milliseconds(),
			Status:        r.Status,
			Error:         r.Error,
			AssetCount:    r.AssetCount,
			Categories:    r.Categories,
			TotalSize:     r.TotalSize,
			ArchiveSize:   r.ArchiveSize,
			ArchiveDigest: r.ArchiveDigest,
			ArchivePath:   r.ArchivePath,
			FindingCount:  r.FindingCount,
		})
	}
	return w.writeJSON(entries)
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}

// JSONReport wraps a clone report with the version of the tool that produced it.
type JSONReport struct {
	Version string             `json:"version"`
	Report  *model.CloneReport `json:"report"`
}

// FullJSONWriter outputs reports wrapped in a JSONReport.
type FullJSONWriter struct {
	*JSONWriter

	version string
}

// NewFullJSONWriter creates a writer for versioned reports.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the report wrapped with version metadata.
func (w *FullJSONWriter) Write(report *model.CloneReport) (int, error) {
	return w.writeJSON(&JSONReport{Version: w.version, Report: report})
}
