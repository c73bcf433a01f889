package model

import "testing"

// TestClassifyCategory tests extension-first classification with content type fallback.
func TestClassifyCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		url         string
		contentType string
		want        Category
	}{
		{name: "css extension", url: "https://example.com/css/style.css", want: CategoryStylesheet},
		{name: "js extension with query", url: "https://example.com/app.js?v=3", want: CategoryScript},
		{name: "upper-case image extension", url: "https://example.com/img/LOGO.PNG", want: CategoryImage},
		{name: "woff2 font", url: "https://example.com/fonts/a.woff2", want: CategoryFont},
		{name: "mp4 video", url: "https://example.com/intro.mp4", want: CategoryVideo},
		{name: "html document", url: "https://example.com/about.html", want: CategoryDocument},
		{name: "extension wins over content type", url: "https://example.com/x.css", contentType: "text/plain", want: CategoryStylesheet},
		{name: "content type fallback for css", url: "https://example.com/css2?family=Roboto", contentType: "text/css; charset=utf-8", want: CategoryStylesheet},
		{name: "content type fallback for script", url: "https://example.com/loader", contentType: "application/javascript", want: CategoryScript},
		{name: "content type fallback for font", url: "https://example.com/f", contentType: "font/woff2", want: CategoryFont},
		{name: "content type fallback for image", url: "https://example.com/avatar", contentType: "image/jpeg", want: CategoryImage},
		{name: "content type fallback for document", url: "https://example.com/", contentType: "text/html", want: CategoryDocument},
		{name: "unknown", url: "https://example.com/data.bin", contentType: "application/octet-stream", want: CategoryOther},
		{name: "nothing known", url: "https://example.com/blob", want: CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ClassifyCategory(tt.url, tt.contentType); got != tt.want {
				t.Errorf("ClassifyCategory(%q, %q) = %q, want %q", tt.url, tt.contentType, got, tt.want)
			}
		})
	}
}

// TestDedupKey tests that query strings and fragments do not distinguish assets.
func TestDedupKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "https://example.com/style.css?v=1", want: "https://example.com/style.css"},
		{in: "https://example.com/style.css#top", want: "https://example.com/style.css"},
		{in: "https://example.com/style.css", want: "https://example.com/style.css"},
		{in: "https://example.com/a.png?", want: "https://example.com/a.png"},
	}

	for _, tt := range tests {
		if got := DedupKey(tt.in); got != tt.want {
			t.Errorf("DedupKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestAssetHasContent tests that empty bodies are not considered content.
func TestAssetHasContent(t *testing.T) {
	t.Parallel()

	var nilAsset *Asset
	if nilAsset.HasContent() {
		t.Error("nil asset should not have content")
	}

	empty := NewAsset("https://example.com/a.css", "a.css", "text/css", nil)
	if empty.HasContent() {
		t.Error("asset without bytes should not have content")
	}
	if empty.Size != 0 {
		t.Errorf("expected size 0, got %d", empty.Size)
	}

	full := NewAsset("https://example.com/a.css", "a.css", "text/css", []byte("body{}"))
	if !full.HasContent() {
		t.Error("asset with bytes should have content")
	}
	if full.Size != 6 {
		t.Errorf("expected size 6, got %d", full.Size)
	}
	if full.Category != CategoryStylesheet {
		t.Errorf("expected stylesheet, got %q", full.Category)
	}
}
