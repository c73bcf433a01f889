package model

import (
	"net/url"
	"strings"
)

// RootArchivePath is where the root document is stored inside every archive.
const RootArchivePath = "index.html"

// Asset is one discovered resource.
type Asset struct {
	// SourceURL is the absolute URL used to fetch the asset.
	SourceURL string `json:"source_url"`

	// ArchivePath is the relative path of the asset inside the output archive.
	ArchivePath string `json:"archive_path"`

	// Category is derived from the extension first and the content type second.
	Category Category `json:"category"`

	// ContentType is the Content-Type header reported by the server.
	ContentType string `json:"content_type,omitempty"`

	// Content holds the raw response bytes. Nil when the fetch failed.
	Content []byte `json:"-"`

	// Size is len(Content).
	Size int64 `json:"size"`
}

// NewAsset creates an asset for a fetched resource and classifies it.
func NewAsset(sourceURL, archivePath, contentType string, content []byte) *Asset {
	return &Asset{
		SourceURL:   sourceURL,
		ArchivePath: archivePath,
		Category:    ClassifyCategory(sourceURL, contentType),
		ContentType: contentType,
		Content:     content,
		Size:        int64(len(content)),
	}
}

// HasContent reports whether the asset carries at least one byte.
// A zero-length body counts as a failed download.
func (a *Asset) HasContent() bool {
	return a != nil && len(a.Content) > 0
}

// DedupKey returns the key used to detect duplicate assets: the URL with
// its query string and fragment removed.
func DedupKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
			return rawURL[:i]
		}
		return rawURL
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// AssetFailure records a non-root asset that could not be collected.
// Failures never abort a crawl; they are kept for reporting only.
type AssetFailure struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}
