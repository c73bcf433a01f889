package transport

import "errors"

var (
	// ErrBlockedAddress is returned when a connection would reach a
	// loopback, private, link-local or otherwise non-public address.
	ErrBlockedAddress = errors.New("connection to non-public address blocked")

	// ErrInvalidProxyAddress is returned when the proxy address is not host:port.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrUnsafeRedirect is returned when a redirect points at a target the
	// URL validator rejects.
	ErrUnsafeRedirect = errors.New("redirect to unsafe URL blocked")

	// ErrTooManyRedirects is returned when a redirect chain exceeds MaxRedirects.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrProxyCannotConnect is returned when no TCP connection to the proxy can be made.
	ErrProxyCannotConnect = errors.New("cannot connect to proxy")

	// ErrProxyNotSOCKS5 is returned when the proxy does not speak SOCKS5 without authentication.
	ErrProxyNotSOCKS5 = errors.New("proxy is not a SOCKS5 proxy")

	// ErrProxyTimeout is returned when the proxy check times out.
	ErrProxyTimeout = errors.New("timeout connecting to proxy")
)
