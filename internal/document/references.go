package document

import (
	"net/url"
	"strings"
)

// ignoredSchemes are reference prefixes that never point at a fetchable asset.
var ignoredSchemes = []string{"data:", "javascript:", "mailto:", "tel:", "blob:", "about:"}

// linkRels are the <link rel> values whose href is collected.
var linkRels = map[string]bool{
	"stylesheet":       true,
	"icon":             true,
	"shortcut":         true,
	"apple-touch-icon": true,
	"preload":          true,
	"modulepreload":    true,
	"mask-icon":        true,
}

// BaseURL returns the URL that relative references resolve against: the
// href of the first <base> element when present and parsable (itself
// resolved against target), otherwise target.
func BaseURL(q Queryable, target *url.URL) *url.URL {
	for _, href := range q.Attr("base[href]", "href") {
		href = strings.TrimSpace(href)
		if href == "" {
			continue
		}
		u, err := url.Parse(href)
		if err != nil {
			return target
		}
		return target.ResolveReference(u)
	}
	return target
}

// References extracts the asset URLs a page refers to, resolved against
// base and deduplicated in document order. It covers stylesheet and icon
// links, script sources, image and media sources (src, srcset, poster) and
// url(...) occurrences in inline <style> blocks and style attributes.
func References(q Queryable, base *url.URL) []string {
	c := newCollector(base)

	collectLinks(q, c)

	for _, src := range q.Attr("script[src]", "src") {
		c.add(src)
	}

	for _, sel := range []string{"img[src]", "source[src]", "video[src]", "audio[src]", "input[type=image][src]"} {
		for _, src := range q.Attr(sel, "src") {
			c.add(src)
		}
	}
	for _, sel := range []string{"img[srcset]", "source[srcset]"} {
		for _, set := range q.Attr(sel, "srcset") {
			for _, candidate := range ParseSrcset(set) {
				c.add(candidate)
			}
		}
	}
	for _, poster := range q.Attr("video[poster]", "poster") {
		c.add(poster)
	}

	for _, css := range q.Text("style") {
		for _, ref := range StylesheetReferences(css) {
			c.add(ref)
		}
	}
	for _, css := range q.Attr("[style]", "style") {
		for _, ref := range StylesheetReferences(css) {
			c.add(ref)
		}
	}

	return c.urls
}

// collectLinks adds the href of every <link> whose rel names a collected
// relation. Both queries select the same elements, so rels[i] belongs to hrefs[i].
func collectLinks(q Queryable, c *refCollector) {
	hrefs := q.Attr("link[href][rel]", "href")
	rels := q.Attr("link[href][rel]", "rel")
	for i, href := range hrefs {
		if i >= len(rels) {
			break
		}
		for _, rel := range strings.Fields(strings.ToLower(rels[i])) {
			if linkRels[rel] {
				c.add(href)
				break
			}
		}
	}
}

// ParseSrcset returns the URL of every candidate in a srcset attribute.
func ParseSrcset(srcset string) []string {
	out := make([]string, 0)
	for _, candidate := range strings.Split(srcset, ",") {
		fields := strings.Fields(candidate)
		if len(fields) > 0 {
			out = append(out, fields[0])
		}
	}
	return out
}

// Resolve resolves ref against base. It returns "" for references that can
// never be fetched: empty values, fragment-only references, non-network
// schemes, and anything that is not http(s) after resolution.
func Resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") {
		return ""
	}
	lower := strings.ToLower(ref)
	for _, scheme := range ignoredSchemes {
		if strings.HasPrefix(lower, scheme) {
			return ""
		}
	}

	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved.String()
}

// refCollector accumulates resolved URLs without duplicates.
type refCollector struct {
	base *url.URL
	seen map[string]bool
	urls []string
}

func newCollector(base *url.URL) *refCollector {
	return &refCollector{base: base, seen: make(map[string]bool), urls: make([]string, 0)}
}

func (c *refCollector) add(ref string) {
	resolved := Resolve(c.base, ref)
	if resolved == "" || c.seen[resolved] {
		return
	}
	c.seen[resolved] = true
	c.urls = append(c.urls, resolved)
}
