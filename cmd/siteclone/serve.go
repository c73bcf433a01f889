package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/siteclone/internal/config"
	"github.com/nao1215/siteclone/internal/log"
	"github.com/nao1215/siteclone/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the clone pipeline over HTTP",
		Long: `Serve starts an HTTP server. POST /api/clone with {"url": "..."} answers
with the zip archive of that page, or a JSON error.

Examples:
  # Listen on the default address
  siteclone serve

  # Listen on all interfaces, 5 requests per second
  siteclone serve -l :8080 --rate 5 --burst 10

  curl -o example.com.zip -d '{"url":"https://example.com/"}' http://127.0.0.1:8080/api/clone`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	addCrawlFlags(cmd)

	cmd.Flags().StringP("listen", "l", config.DefaultListenAddress, "Address to listen on")
	cmd.Flags().Float64("rate", config.DefaultRateLimit, "Clone requests allowed per second")
	cmd.Flags().Int("burst", config.DefaultRateBurst, "Clone requests allowed in a burst")

	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildServeConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureJSONLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := newHTTPClient(ctx, cfg)
	if err != nil {
		return err
	}

	db, recorder, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	srv := server.New(
		newPipelineFactory(cfg, client, recorder, logger),
		server.WithLogger(logger),
		server.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		server.WithRequestTimeout(server.RequestTimeout(cfg.Timeout, cfg.ArchiveTimeout)),
		server.WithAddress(cfg.ListenAddress),
	)
	fmt.Fprintf(cmd.ErrOrStderr(), "Listening on http://%s\n", cfg.ListenAddress)
	return srv.ListenAndServe(ctx)
}

// buildServeConfig creates a Config from the serve command's flags.
// Archives are streamed to the client and never written to disk.
func buildServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	if err := readCrawlFlags(cmd, cfg); err != nil {
		return nil, err
	}

	var err error
	if cfg.ListenAddress, err = cmd.Flags().GetString("listen"); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = cmd.Flags().GetFloat64("rate"); err != nil {
		return nil, err
	}
	if cfg.RateBurst, err = cmd.Flags().GetInt("burst"); err != nil {
		return nil, err
	}
	cfg.OutputDir = ""
	cfg.Verbose = getVerboseFlag(cmd)
	return cfg, nil
}
