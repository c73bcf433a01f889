package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/nao1215/siteclone/internal/archive"
	"github.com/nao1215/siteclone/internal/config"
	"github.com/nao1215/siteclone/internal/crawler"
	"github.com/nao1215/siteclone/internal/database"
	"github.com/nao1215/siteclone/internal/inspect"
	"github.com/nao1215/siteclone/internal/pipeline"
	"github.com/nao1215/siteclone/internal/transport"
)

// newHTTPClient builds the guarded client used for every fetch. A
// configured proxy is dialed first so a dead proxy fails fast.
func newHTTPClient(ctx context.Context, cfg *config.Config) (*http.Client, error) {
	if cfg.ProxyAddress != "" {
		if err := transport.CheckProxy(ctx, cfg.ProxyAddress); err != nil {
			return nil, fmt.Errorf("proxy check failed for %s: %w", cfg.ProxyAddress, err)
		}
	}
	client, err := transport.New(transport.Options{
		Timeout:      cfg.Timeout,
		ProxyAddress: cfg.ProxyAddress,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	return client, nil
}

// openHistory opens the history database when enabled. It returns a nil
// Recorder, not a typed nil, when history is off.
func openHistory(cfg *config.Config, logger *slog.Logger) (*database.CloneDB, pipeline.Recorder, error) {
	if !cfg.SaveToDB {
		return nil, nil, nil
	}
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history database: %w", err)
	}
	logger.Debug("history database opened", "path", db.Path())
	return db, db, nil
}

// newPipelineFactory returns a function that builds the clone pipeline of
// one target with that target's site settings applied.
func newPipelineFactory(
	cfg *config.Config,
	client *http.Client,
	recorder pipeline.Recorder,
	logger *slog.Logger,
) func(target string) *pipeline.Pipeline {
	return func(target string) *pipeline.Pipeline {
		site := cfg.SiteConfig(targetDomain(target))

		collector := crawler.NewCollector(client, crawler.Config{
			MaxTotalSize: site.MaxTotalSize,
			MaxAssets:    site.MaxAssets,
			FetchTimeout: cfg.Timeout,
			BatchSize:    cfg.BatchSize,
			UserAgent:    site.UserAgent,
		},
			crawler.WithLogger(logger),
			crawler.WithHeaders(site.Headers),
			crawler.WithCookie(site.Cookie),
		)

		var inspector *inspect.Inspector
		if cfg.Inspect {
			inspector = inspect.New(inspect.WithLogger(logger))
		}

		return pipeline.DefaultPipeline(pipeline.DefaultPipelineConfig{
			Collector: collector,
			Builder: archive.NewBuilder(
				archive.WithTimeout(cfg.ArchiveTimeout),
				archive.WithLogger(logger),
			),
			Inspector: inspector,
			OutputDir: cfg.OutputDir,
			Recorder:  recorder,
		}, pipeline.WithLogger(logger))
	}
}

// targetDomain returns the lower-case host of target, or "" if it does not parse.
func targetDomain(target string) string {
	u, err := url.Parse(strings.TrimSpace(target))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
