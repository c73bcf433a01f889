package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/net/proxy"

	"github.com/nao1215/siteclone/internal/urlcheck"
)

// MaxRedirects caps redirect chains.
const MaxRedirects = 10

// checkProxyTimeout bounds the SOCKS5 handshake performed by CheckProxy.
const checkProxyTimeout = 2 * time.Second

// Options configures New.
type Options struct {
	// Timeout is the per-request timeout, covering connect, redirects and body read.
	Timeout time.Duration

	// ProxyAddress is an optional SOCKS5 proxy in host:port form.
	ProxyAddress string

	// AllowPrivate disables the dial-time address guard. Only tests should set it.
	AllowPrivate bool
}

// New returns an *http.Client configured according to opts.
func New(opts Options) (*http.Client, error) {
	dialer := &net.Dialer{
		Timeout:   opts.Timeout,
		KeepAlive: 30 * time.Second,
	}
	if !opts.AllowPrivate {
		dialer.Control = guardControl
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   5,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: opts.Timeout,
	}

	if opts.ProxyAddress != "" {
		if !IsValidProxyAddress(opts.ProxyAddress) {
			return nil, ErrInvalidProxyAddress
		}
		// The proxy itself usually listens on loopback, so the hop to it is
		// made without the address guard.
		forward := &net.Dialer{Timeout: opts.Timeout, KeepAlive: 30 * time.Second}
		socks, err := proxy.SOCKS5("tcp", opts.ProxyAddress, nil, forward)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		transport.DialContext = contextDialer(socks)
	}

	return &http.Client{
		Transport:     transport,
		Timeout:       opts.Timeout,
		CheckRedirect: CheckRedirect,
	}, nil
}

// CheckRedirect is an http.Client CheckRedirect hook that caps redirect
// chains and refuses redirects to targets urlcheck rejects.
func CheckRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= MaxRedirects {
		return ErrTooManyRedirects
	}
	if res := urlcheck.Validate(req.URL.String()); !res.Valid {
		return fmt.Errorf("%w: %s: %s", ErrUnsafeRedirect, req.URL.Redacted(), res.Reason)
	}
	return nil
}

// guardControl runs after name resolution, just before connect, with the
// literal address being dialed.
func guardControl(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	if !urlcheck.IsPublicIP(net.ParseIP(host)) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
	}
	return nil
}

// contextDialer adapts a proxy.Dialer to the DialContext signature.
// The x/net SOCKS5 dialer implements proxy.ContextDialer; other dialers
// are raced against ctx.
func contextDialer(d proxy.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		type dialResult struct {
			conn net.Conn
			err  error
		}
		ch := make(chan dialResult, 1)
		go func() {
			conn, err := d.Dial(network, addr)
			ch <- dialResult{conn, err}
		}()
		select {
		case r := <-ch:
			return r.conn, r.err
		case <-ctx.Done():
			go func() {
				if r := <-ch; r.conn != nil {
					_ = r.conn.Close() //nolint:errcheck // abandoned connection
				}
			}()
			return nil, ctx.Err()
		}
	}
}

// IsValidProxyAddress reports whether address is host:port with a non-empty
// host and a port in 1..65535.
func IsValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// SOCKS5 handshake bytes used by CheckProxy.
const (
	socks5Version      = 0x05
	socks5AuthNone     = 0x00
	socks5AuthNoAccept = 0xFF
)

// CheckProxy verifies that a SOCKS5 proxy is listening at address and
// accepts unauthenticated clients. Only the method negotiation is
// performed; no connection through the proxy is requested.
func CheckProxy(ctx context.Context, address string) error {
	if !IsValidProxyAddress(address) {
		return ErrInvalidProxyAddress
	}

	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrProxyTimeout
		}
		return fmt.Errorf("%w: %v", ErrProxyCannotConnect, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return fmt.Errorf("%w: %v", ErrProxyCannotConnect, err)
	}

	if _, err := conn.Write([]byte{socks5Version, 0x01, socks5AuthNone}); err != nil {
		return fmt.Errorf("%w: %v", ErrProxyCannotConnect, err)
	}

	resp := make([]byte, 2)
	if _, err := io.ReadFull(conn, resp); err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return ErrProxyTimeout
		}
		return ErrProxyNotSOCKS5
	}

	if resp[0] != socks5Version || resp[1] == socks5AuthNoAccept || resp[1] != socks5AuthNone {
		return ErrProxyNotSOCKS5
	}
	return nil
}
