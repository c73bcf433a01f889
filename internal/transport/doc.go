// Package transport builds the HTTP client the collector fetches with.
//
// Two connection modes are supported:
//   - direct: a net.Dialer whose Control hook refuses any connection to a
//     non-public address after DNS resolution, so a public-looking hostname
//     that resolves to 10.0.0.5 or 127.0.0.1 is still blocked
//   - SOCKS5 proxy: all connections go through the proxy (golang.org/x/net/proxy);
//     the proxy resolves hostnames, so the dial-time guard does not apply
//
// In both modes every redirect target is re-validated with urlcheck.Validate
// and redirect chains are capped.
package transport
