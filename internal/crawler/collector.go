package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/siteclone/internal/document"
	"github.com/nao1215/siteclone/internal/model"
	"github.com/nao1215/siteclone/internal/urlcheck"
)

const (
	// DefaultMaxTotalSize is the default cap on the sum of all asset sizes.
	DefaultMaxTotalSize int64 = 100 * 1024 * 1024

	// DefaultMaxAssets is the default cap on non-root assets.
	DefaultMaxAssets = 100

	// DefaultFetchTimeout bounds every single request.
	DefaultFetchTimeout = 40 * time.Second

	// DefaultBatchSize is the number of downloads issued concurrently.
	DefaultBatchSize = 5

	// DefaultUserAgent is a current desktop browser identification string.
	// Many sites refuse clients that do not look like a browser.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// Config holds the budgets and timeouts of a crawl.
//
// Design decision: The budgets are hard caps rather than hints. Only a root
// document over MaxTotalSize is an error. Running out of budget on assets
// ends the crawl with a partial result marked BudgetReached, so the caller
// still gets an archive of a large site.
type Config struct {
	// MaxTotalSize caps the sum of all content sizes in bytes, root included.
	MaxTotalSize int64

	// MaxAssets caps the number of non-root assets.
	MaxAssets int

	// FetchTimeout bounds each request independently.
	FetchTimeout time.Duration

	// BatchSize is the number of downloads in flight at once.
	BatchSize int

	// UserAgent is sent with every request.
	UserAgent string
}

// DefaultConfig returns the default crawl configuration.
func DefaultConfig() Config {
	return Config{
		MaxTotalSize: DefaultMaxTotalSize,
		MaxAssets:    DefaultMaxAssets,
		FetchTimeout: DefaultFetchTimeout,
		BatchSize:    DefaultBatchSize,
		UserAgent:    DefaultUserAgent,
	}
}

// Validator decides whether a URL may be fetched.
type Validator func(rawURL string) urlcheck.Result

// Collector fetches a page and its same-origin assets.
type Collector struct {
	client   *http.Client
	cfg      Config
	validate Validator
	headers  http.Header
	logger   *slog.Logger
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) CollectorOption {
	return func(c *Collector) {
		c.logger = logger
	}
}

// WithValidator replaces urlcheck.Validate as the URL gate.
func WithValidator(v Validator) CollectorOption {
	return func(c *Collector) {
		c.validate = v
	}
}

// WithHeaders adds request headers sent with every fetch.
func WithHeaders(headers map[string]string) CollectorOption {
	return func(c *Collector) {
		for k, v := range headers {
			c.headers.Set(k, v)
		}
	}
}

// WithCookie sets the Cookie header sent with every fetch.
func WithCookie(cookie string) CollectorOption {
	return func(c *Collector) {
		if cookie != "" {
			c.headers.Set("Cookie", cookie)
		}
	}
}

// NewCollector creates a Collector that issues requests through client.
// Zero or negative values in cfg fall back to the defaults.
func NewCollector(client *http.Client, cfg Config, opts ...CollectorOption) *Collector {
	if client == nil {
		client = http.DefaultClient
	}
	defaults := DefaultConfig()
	if cfg.MaxTotalSize <= 0 {
		cfg.MaxTotalSize = defaults.MaxTotalSize
	}
	if cfg.MaxAssets <= 0 {
		cfg.MaxAssets = defaults.MaxAssets
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaults.FetchTimeout
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaults.BatchSize
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}

	c := &Collector{
		client:   client,
		cfg:      cfg,
		validate: urlcheck.Validate,
		headers:  make(http.Header),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the effective configuration.
func (c *Collector) Config() Config {
	return c.cfg
}

// crawl is the state of one Crawl call.
type crawl struct {
	domain string
	seen   map[string]bool
	result *model.CrawlResult
}

// Crawl fetches targetURL and its same-origin assets.
//
// It fails with a *ValidationError, ErrFetch or ErrParse when the root
// document cannot be obtained. Individual asset failures are recorded in
// the result and never fail the crawl. Cancelling ctx stops the crawl at
// the next batch boundary.
func (c *Collector) Crawl(ctx context.Context, targetURL string) (*model.CrawlResult, error) {
	targetURL = strings.TrimSpace(targetURL)
	if res := c.validate(targetURL); !res.Valid {
		return nil, &ValidationError{URL: targetURL, Reason: res.Reason}
	}
	target, err := url.Parse(targetURL)
	if err != nil {
		return nil, &ValidationError{URL: targetURL, Reason: urlcheck.ReasonInvalidURL}
	}

	state := &crawl{
		domain: strings.ToLower(target.Hostname()),
		seen:   make(map[string]bool),
		result: &model.CrawlResult{
			OriginURL:    target.String(),
			OriginDomain: strings.ToLower(target.Hostname()),
			StartedAt:    time.Now(),
		},
	}

	c.logger.Debug("fetching root document", "url", target.String())
	resp, err := c.fetch(ctx, target.String(), c.cfg.MaxTotalSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if len(resp.body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrFetch)
	}
	if int64(len(resp.body)) > c.cfg.MaxTotalSize {
		return nil, fmt.Errorf("%w: root document exceeds %d bytes", ErrFetch, c.cfg.MaxTotalSize)
	}

	doc, err := document.Parse(resp.body, resp.contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	root := model.NewAsset(target.String(), model.RootArchivePath, resp.contentType, resp.body)
	root.Category = model.CategoryDocument
	state.accept(root)
	state.seen[model.DedupKey(target.String())] = true
	if resp.finalURL != "" {
		state.seen[model.DedupKey(resp.finalURL)] = true
	}

	// Relative references resolve against the page the redirects ended on.
	docURL := target
	if resp.finalURL != "" {
		if u, err := url.Parse(resp.finalURL); err == nil {
			docURL = u
		}
	}
	base := document.BaseURL(doc, docURL)
	refs := document.References(doc, base)
	c.logger.Debug("extracted references", "url", target.String(), "count", len(refs))

	if err := c.collect(ctx, state, refs); err != nil {
		return nil, err
	}

	// Nested pass over the stylesheets collected so far.
	var nested []string
	for _, a := range state.result.Assets[1:] {
		if a.Category != model.CategoryStylesheet {
			continue
		}
		sheetURL, err := url.Parse(a.SourceURL)
		if err != nil {
			continue
		}
		nested = append(nested, document.ResolveStylesheetReferences(string(a.Content), sheetURL)...)
	}
	if len(nested) > 0 {
		c.logger.Debug("extracted stylesheet references", "url", target.String(), "count", len(nested))
		if err := c.collect(ctx, state, nested); err != nil {
			return nil, err
		}
	}

	state.result.FinishedAt = time.Now()
	c.logger.Info("crawl finished",
		"url", target.String(),
		"assets", len(state.result.Assets),
		"bytes", state.result.TotalSize,
		"failed", len(state.result.Failed),
	)
	return state.result, nil
}

// outcome is the result of one asset fetch.
type outcome struct {
	url   string
	asset *model.Asset
	err   error
}

// collect runs one pass: filter, dedup, then batched downloads until the
// candidates run out or a budget is reached.
//
// Design decision: A batch never holds more downloads than free asset
// slots, and every download in it gets the size budget left at the start
// of the batch. The limits are checked again when results are accepted in
// order, so a batch can only overshoot by work that gets discarded:
// 1. Downloads that would exceed the asset count are never started
// 2. One large asset cannot stall a batch, since its body read is cut off
//    at the remaining size
// 3. Acceptance stays deterministic even though downloads finish out of order
func (c *Collector) collect(ctx context.Context, state *crawl, refs []string) error {
	candidates := c.candidates(state, refs)
	if len(candidates) == 0 {
		return nil
	}

	for start := 0; start < len(candidates); {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("crawl interrupted: %w", err)
		}

		slots := c.cfg.MaxAssets - state.result.ExtraCount()
		remaining := c.cfg.MaxTotalSize - state.result.TotalSize
		if slots <= 0 || remaining <= 0 {
			state.result.BudgetReached = true
			c.logger.Debug("budget reached", "assets", state.result.ExtraCount(), "bytes", state.result.TotalSize)
			return nil
		}

		end := min(start+min(c.cfg.BatchSize, slots), len(candidates))
		batch := candidates[start:end]
		start = end

		results := make([]outcome, len(batch))
		var g errgroup.Group
		for i, u := range batch {
			g.Go(func() error {
				results[i] = c.download(ctx, u, remaining, state.domain)
				return nil
			})
		}
		_ = g.Wait() //nolint:errcheck // downloads never return an error

		stop := false
		for _, d := range results {
			if d.err != nil {
				if errors.Is(d.err, ErrBudgetExceeded) {
					stop = true
				}
				state.fail(d.url, d.err)
				c.logger.Warn("asset skipped", "url", d.url, "error", d.err)
				continue
			}
			if !urlcheck.WithinBudget(state.result.TotalSize, d.asset.Size, c.cfg.MaxTotalSize) {
				stop = true
				state.fail(d.url, fmt.Errorf("%w: size", ErrBudgetExceeded))
				continue
			}
			if state.result.ExtraCount() >= c.cfg.MaxAssets {
				stop = true
				state.fail(d.url, fmt.Errorf("%w: count", ErrBudgetExceeded))
				continue
			}
			state.accept(d.asset)
		}
		if stop {
			state.result.BudgetReached = true
			return nil
		}
	}
	return nil
}

// candidates resolves the same-origin, not yet seen references of a pass
// and marks them seen.
func (c *Collector) candidates(state *crawl, refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		u, err := url.Parse(ref)
		if err != nil {
			continue
		}
		if !SameOrigin(u.Hostname(), state.domain) {
			c.logger.Debug("skipping third-party asset", "url", ref)
			continue
		}
		key := model.DedupKey(ref)
		if state.seen[key] {
			continue
		}
		state.seen[key] = true
		out = append(out, ref)
	}
	return out
}

// download fetches one asset. limit is the size budget left when its
// batch was issued.
func (c *Collector) download(ctx context.Context, rawURL string, limit int64, domain string) outcome {
	d := outcome{url: rawURL}

	if res := c.validate(rawURL); !res.Valid {
		d.err = fmt.Errorf("%w: %s", ErrAssetDownload, res.Reason)
		return d
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		d.err = fmt.Errorf("%w: %w", ErrAssetDownload, err)
		return d
	}

	resp, err := c.fetch(ctx, rawURL, limit)
	if err != nil {
		d.err = fmt.Errorf("%w: %w", ErrAssetDownload, err)
		return d
	}
	if len(resp.body) == 0 {
		d.err = fmt.Errorf("%w: empty body", ErrAssetDownload)
		return d
	}
	if int64(len(resp.body)) > limit {
		d.err = fmt.Errorf("%w: asset larger than remaining %d bytes", ErrBudgetExceeded, limit)
		return d
	}

	d.asset = model.NewAsset(rawURL, ArchivePath(u, domain), resp.contentType, resp.body)
	return d
}

func (s *crawl) accept(a *model.Asset) {
	s.result.Assets = append(s.result.Assets, a)
	s.result.TotalSize += a.Size
}

func (s *crawl) fail(rawURL string, err error) {
	s.result.Failed = append(s.result.Failed, model.AssetFailure{URL: rawURL, Reason: err.Error()})
}
