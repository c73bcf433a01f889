// Package report renders clone reports and clone history.
//
// This package contains writers for different output formats:
//   - SimpleWriter: human-readable text for terminal display
//   - JSONWriter: structured JSON for tool integration
//   - MarkdownWriter: Markdown for sharing, with tables and a category chart
//
// Writers implement the Writer interface, so they can be used
// interchangeably and composed with MultiWriter.
package report
