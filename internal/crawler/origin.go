package crawler

import "strings"

// SameOrigin reports whether host belongs to domain's site: the two are
// equal, host is a subdomain of domain, or domain is a subdomain of host.
// Hostnames compare case-insensitively with a leading "www." ignored, and
// subdomain matches must fall on a label boundary, so "evil-example.com"
// is not treated as part of "example.com".
func SameOrigin(host, domain string) bool {
	host = normalizeHost(host)
	domain = normalizeHost(domain)
	if host == "" || domain == "" {
		return false
	}
	return host == domain ||
		strings.HasSuffix(host, "."+domain) ||
		strings.HasSuffix(domain, "."+host)
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	return strings.TrimPrefix(host, "www.")
}
