package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nao1215/siteclone/internal/config"
	"github.com/nao1215/siteclone/internal/log"
	"github.com/nao1215/siteclone/internal/model"
	"github.com/nao1215/siteclone/internal/pipeline"
	"github.com/nao1215/siteclone/internal/report"
)

// errClonesFailed is returned when at least one target could not be cloned.
var errClonesFailed = errors.New("one or more clones failed")

// NewCloneCmd creates the clone command.
func NewCloneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clone <url>...",
		Short: "Clone one or more pages into zip archives",
		Long: `Clone downloads each page with the same-site stylesheets, scripts, images,
fonts and videos it references and writes <domain>.zip to the output directory.

Examples:
  # Clone a single page
  siteclone clone https://example.com/

  # Clone several sites, two at a time, into ./archives
  siteclone clone -C 2 -d archives https://example.com/ https://example.org/

  # Limit the clone to 20 MB and 200 assets
  siteclone clone --max-size 20MB --max-assets 200 https://example.com/

  # Send a session cookie and an extra header
  siteclone clone --cookie "session=abc" -H "Accept-Language: en" https://example.com/

  # Write a JSON report to a file
  siteclone clone --json -o report.json https://example.com/`,
		Args: cobra.ArbitraryArgs,
		RunE: runCloneCmd,
	}

	addCrawlFlags(cmd)

	cmd.Flags().IntP("concurrency", "C", config.DefaultConcurrency, "Number of targets cloned at the same time")
	cmd.Flags().StringP("output-dir", "d", ".", "Directory that receives the archives")

	cmd.Flags().BoolP("json", "j", false, "Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "", "Write report to specified file path (creates directories if needed)")

	return cmd
}

func runCloneCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCloneConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.ValidateTargets(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := newHTTPClient(ctx, cfg)
	if err != nil {
		return err
	}
	return runClone(ctx, cfg, client, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// buildCloneConfig creates a Config from the clone command's flags.
func buildCloneConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	if err := readCrawlFlags(cmd, cfg); err != nil {
		return nil, err
	}

	var err error
	if cfg.Concurrency, err = cmd.Flags().GetInt("concurrency"); err != nil {
		return nil, err
	}
	if cfg.OutputDir, err = cmd.Flags().GetString("output-dir"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.Targets = args
	return cfg, nil
}

// runClone clones every target of cfg. Reports go to out, progress lines
// to errOut. It returns errClonesFailed if any clone failed.
func runClone(
	ctx context.Context,
	cfg *config.Config,
	client *http.Client,
	out, errOut io.Writer,
	logger *slog.Logger,
) error {
	db, recorder, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	output := out
	if cfg.ReportFile != "" {
		f, err := createReportFile(cfg.ReportFile)
		if err != nil {
			return err
		}
		defer f.Close()
		output = f
	}
	writer := newReportWriter(cfg, output)

	bp := pipeline.NewBatchProcessor(
		newPipelineFactory(cfg, client, recorder, logger),
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithBatchLogger(logger),
	)

	fmt.Fprintf(errOut, "Cloning %d target(s) (concurrency: %d)...\n", len(cfg.Targets), cfg.Concurrency)
	start := time.Now()

	var (
		mu     sync.Mutex
		failed int
	)
	batchErr := bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(job *model.CloneJob, index int) {
		mu.Lock()
		defer mu.Unlock()

		if job.Succeeded() {
			fmt.Fprintf(errOut, "[%d/%d] %s: %d assets, %s\n", index+1, len(cfg.Targets),
				job.Target, job.Result.ExtraCount()+1, humanize.Bytes(uint64(len(job.Archive)))) //nolint:gosec // length is never negative
		} else {
			failed++
			fmt.Fprintf(errOut, "[%d/%d] %s: failed: %v\n", index+1, len(cfg.Targets), job.Target, job.Err)
		}

		if _, err := writer.Write(model.NewCloneReport(job)); err != nil {
			logger.Error("report failed", "target", job.Target, "error", err)
		}
	})

	fmt.Fprintf(errOut, "Done in %s (%d succeeded, %d failed)\n",
		time.Since(start).Round(time.Millisecond), len(cfg.Targets)-failed, failed)

	if batchErr != nil {
		return batchErr
	}
	if failed > 0 {
		return errClonesFailed
	}
	return nil
}

// newReportWriter picks the report format of cfg.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
}

// createReportFile creates path and its parent directories. Reports may
// carry cookie-protected URLs, so the file is readable by the owner only.
func createReportFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}
	return f, nil
}
