package crawler

import (
	"net/url"
	"strings"

	"github.com/nao1215/siteclone/internal/model"
)

// ArchivePath derives where an asset is stored inside the archive.
//
// The URL path is used without its leading slash, and a path that names a
// directory gets index.html appended. Assets served from a host other than
// the origin domain are placed under a directory named after that host, so
// https://cdn.example.com/app.js cloned from example.com lands at
// cdn.example.com/app.js.
func ArchivePath(u *url.URL, originDomain string) string {
	p := strings.TrimLeft(u.Path, "/")
	if p == "" || strings.HasSuffix(p, "/") {
		p += model.RootArchivePath
	}

	host := strings.ToLower(u.Hostname())
	if normalizeHost(host) != normalizeHost(originDomain) {
		p = host + "/" + p
	}
	return p
}
