package crawler

import (
	"context"
	"io"
	"net/http"
)

// response is the part of an HTTP response the collector keeps.
type response struct {
	body        []byte
	contentType string
	finalURL    string
}

// fetch issues a GET for rawURL and reads at most limit+1 bytes of the
// body, so callers can tell an oversized body from one that fits exactly.
func (c *Collector) fetch(ctx context.Context, rawURL string, limit int64) (*response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for k, values := range c.headers {
		req.Header[k] = values
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, err
	}

	out := &response{
		body:        body,
		contentType: resp.Header.Get("Content-Type"),
	}
	if resp.Request != nil && resp.Request.URL != nil {
		out.finalURL = resp.Request.URL.String()
	}
	return out, nil
}
