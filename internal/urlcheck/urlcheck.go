package urlcheck

import (
	"net"
	"net/url"
	"strings"
)

// Rejection reasons returned in Result.Reason.
const (
	ReasonInvalidURL        = "invalid URL"
	ReasonUnsupportedScheme = "unsupported scheme: only http and https are allowed"
	ReasonLocalhost         = "localhost or loopback addresses are not allowed"
	ReasonPrivateIP         = "private IP addresses are not allowed"
	ReasonInternalHost      = "internal hostnames are not allowed"
)

// Result is the verdict for one URL.
type Result struct {
	Valid  bool
	Reason string
}

// loopbackMarkers are matched as substrings of the lower-cased host.
var loopbackMarkers = []string{"localhost", "127.0.0.1", "0.0.0.0", "::1", "[::1]"}

// internalSuffixes are DNS suffixes reserved for private networks.
var internalSuffixes = []string{".local", ".internal", ".corp", ".lan"}

// privateIPv4Ranges are the literal IPv4 ranges a target may not point at.
var privateIPv4Ranges = mustParseCIDRs(
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"169.254.0.0/16",
)

// sharedAddressSpace is carrier-grade NAT space (RFC 6598). It is not
// routable on the public internet.
var sharedAddressSpace = mustParseCIDRs("100.64.0.0/10")

// Validate checks rawURL against the rules below, in order, and returns the
// first violation:
//  1. the URL must parse and carry a host
//  2. the scheme must be http or https
//  3. the host must not name localhost or a loopback/unspecified address
//  4. a literal IP host must not be private or link-local
//  5. the host must not end in an internal-only suffix
func Validate(rawURL string) Result {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return reject(ReasonInvalidURL)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return reject(ReasonUnsupportedScheme)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return reject(ReasonInvalidURL)
	}

	// Literal addresses are judged by value so that public IPv6 hosts such as
	// 2001:db8::1 are not mistaken for ::1 by substring matching.
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsUnspecified() {
			return reject(ReasonLocalhost)
		}
		if isPrivateLiteral(ip) {
			return reject(ReasonPrivateIP)
		}
		return Result{Valid: true}
	}

	for _, marker := range loopbackMarkers {
		if strings.Contains(host, marker) {
			return reject(ReasonLocalhost)
		}
	}

	host = strings.TrimSuffix(host, ".")
	for _, suffix := range internalSuffixes {
		if strings.HasSuffix(host, suffix) {
			return reject(ReasonInternalHost)
		}
	}

	return Result{Valid: true}
}

// isPrivateLiteral reports whether a literal host address is in a range the
// validator rejects as private.
func isPrivateLiteral(ip net.IP) bool {
	if v4 := ip.To4(); v4 != nil {
		return inRanges(v4, privateIPv4Ranges)
	}
	return ip.IsPrivate() || ip.IsLinkLocalUnicast()
}

// IsPublicIP reports whether ip is a globally routable unicast address.
// It is stricter than Validate's literal check because it guards the
// address a hostname actually resolved to.
func IsPublicIP(ip net.IP) bool {
	if ip == nil {
		return false
	}
	if ip.IsLoopback() || ip.IsUnspecified() || ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() || ip.IsMulticast() {
		return false
	}
	if v4 := ip.To4(); v4 != nil {
		if inRanges(v4, privateIPv4Ranges) || inRanges(v4, sharedAddressSpace) {
			return false
		}
		if v4[0] == 0 || v4.Equal(net.IPv4bcast) {
			return false
		}
	}
	return true
}

// WithinBudget reports whether adding candidateSize bytes to currentTotal
// stays within limit.
func WithinBudget(currentTotal, candidateSize, limit int64) bool {
	if candidateSize < 0 || currentTotal < 0 {
		return false
	}
	return currentTotal+candidateSize <= limit
}

func reject(reason string) Result {
	return Result{Valid: false, Reason: reason}
}

func inRanges(ip net.IP, ranges []*net.IPNet) bool {
	for _, r := range ranges {
		if r.Contains(ip) {
			return true
		}
	}
	return false
}

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			panic(err)
		}
		nets = append(nets, n)
	}
	return nets
}
