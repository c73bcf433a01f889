package document

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	// cssURLPattern matches url(...) with optional single or double quotes.
	cssURLPattern = regexp.MustCompile(`(?i)url\(\s*(?:'([^']*)'|"([^"]*)"|([^'")\s][^)]*?))\s*\)`)

	// cssImportPattern matches the string form of @import, e.g. @import "a.css";
	cssImportPattern = regexp.MustCompile(`(?i)@import\s+(?:'([^']+)'|"([^"]+)")`)

	// cssCommentPattern matches /* ... */ comments.
	cssCommentPattern = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// StylesheetReferences returns the raw (unresolved) references found in CSS
// text: every url(...) argument and every quoted @import target, in order
// of appearance, without duplicates. Comments are ignored.
func StylesheetReferences(css string) []string {
	css = cssCommentPattern.ReplaceAllString(css, " ")

	seen := make(map[string]bool)
	refs := make([]string, 0)
	add := func(ref string) {
		ref = strings.TrimSpace(ref)
		if ref == "" || seen[ref] {
			return
		}
		seen[ref] = true
		refs = append(refs, ref)
	}

	for _, m := range cssImportPattern.FindAllStringSubmatch(css, -1) {
		add(firstNonEmpty(m[1:]...))
	}
	for _, m := range cssURLPattern.FindAllStringSubmatch(css, -1) {
		add(firstNonEmpty(m[1:]...))
	}
	return refs
}

// ResolveStylesheetReferences scans CSS text and resolves each reference
// against the stylesheet's own URL. Unfetchable references are dropped.
func ResolveStylesheetReferences(css string, stylesheetURL *url.URL) []string {
	c := newCollector(stylesheetURL)
	for _, ref := range StylesheetReferences(css) {
		c.add(ref)
	}
	return c.urls
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
