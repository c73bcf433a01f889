package crawler

import (
	"net/url"
	"testing"
)

// TestSameOrigin tests the label-boundary origin rule.
func TestSameOrigin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host   string
		domain string
		want   bool
	}{
		{host: "example.com", domain: "example.com", want: true},
		{host: "EXAMPLE.com", domain: "example.COM", want: true},
		{host: "www.example.com", domain: "example.com", want: true},
		{host: "example.com", domain: "www.example.com", want: true},
		{host: "cdn.example.com", domain: "example.com", want: true},
		{host: "example.com", domain: "blog.example.com", want: true},
		{host: "a.b.example.com", domain: "example.com", want: true},
		{host: "evil-example.com", domain: "example.com", want: false},
		{host: "example.com", domain: "evil-example.com", want: false},
		{host: "example.com.evil.net", domain: "example.com", want: false},
		{host: "cdn.other.com", domain: "example.com", want: false},
		{host: "", domain: "example.com", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.host+"_"+tt.domain, func(t *testing.T) {
			t.Parallel()
			if got := SameOrigin(tt.host, tt.domain); got != tt.want {
				t.Errorf("SameOrigin(%q, %q) = %v, want %v", tt.host, tt.domain, got, tt.want)
			}
		})
	}
}

// TestArchivePath tests URL to archive path derivation.
func TestArchivePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{url: "https://example.com/css/style.css", want: "css/style.css"},
		{url: "https://example.com/css/style.css?v=3", want: "css/style.css"},
		{url: "https://example.com/docs/", want: "docs/index.html"},
		{url: "https://example.com", want: "index.html"},
		{url: "https://www.example.com/img/a.png", want: "img/a.png"},
		{url: "https://cdn.example.com/app.js", want: "cdn.example.com/app.js"},
		{url: "https://CDN.example.com/lib/", want: "cdn.example.com/lib/index.html"},
		{url: "https://example.com/api/styles", want: "api/styles"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			u, err := url.Parse(tt.url)
			if err != nil {
				t.Fatalf("bad url: %v", err)
			}
			if got := ArchivePath(u, "example.com"); got != tt.want {
				t.Errorf("ArchivePath(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}
