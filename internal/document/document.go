package document

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// Queryable is the narrow view of a parsed page used by reference extraction.
type Queryable interface {
	// Attr returns the value of attribute name for every element matching
	// selector, in document order. Elements without the attribute are skipped.
	Attr(selector, name string) []string

	// Text returns the text content of every element matching selector.
	Text(selector string) []string
}

// Document is a parsed HTML page.
type Document struct {
	doc *goquery.Document
}

// Parse parses body as HTML. contentType is the Content-Type header of the
// response; its charset parameter (or a <meta charset> in the body) is used
// to decode non UTF-8 pages before parsing. The caller's bytes are not
// modified.
func Parse(body []byte, contentType string) (*Document, error) {
	var r io.Reader = bytes.NewReader(body)

	decoded, err := charset.NewReader(r, contentType)
	if err == nil {
		r = decoded
	} else {
		// Unknown charset labels fall back to the raw bytes.
		r = bytes.NewReader(body)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{doc: doc}, nil
}

// Attr implements Queryable.
func (d *Document) Attr(selector, name string) []string {
	values := make([]string, 0)
	d.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr(name); ok {
			values = append(values, v)
		}
	})
	return values
}

// Text implements Queryable.
func (d *Document) Text(selector string) []string {
	texts := make([]string, 0)
	d.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		texts = append(texts, s.Text())
	})
	return texts
}

// Title returns the trimmed text of the first <title> element.
func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}
