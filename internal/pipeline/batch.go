package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/siteclone/internal/model"
)

// DefaultConcurrency is the number of targets cloned at once.
const DefaultConcurrency = 2

// BatchProcessor clones several targets concurrently.
type BatchProcessor struct {
	// pipelineFactory creates a fresh pipeline for each target, so
	// per-site settings can differ between jobs of one batch.
	pipelineFactory func(target string) *Pipeline

	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent jobs.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory func(target string) *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch clones every target and returns one job per target, in
// input order. A failed job never stops the others; its error is on the
// job. The returned error is non-nil only when ctx was cancelled, in which
// case jobs that never started carry the context error.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []string) ([]*model.CloneJob, error) {
	jobs := make([]*model.CloneJob, len(targets))
	err := bp.run(ctx, targets, func(job *model.CloneJob, i int) {
		jobs[i] = job
	})
	return jobs, err
}

// ProcessBatchWithCallback clones every target and calls callback with each
// finished job and its index in targets. The callback runs on the job's
// goroutine and must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	targets []string,
	callback func(job *model.CloneJob, index int),
) error {
	return bp.run(ctx, targets, callback)
}

func (bp *BatchProcessor) run(ctx context.Context, targets []string, done func(*model.CloneJob, int)) error {
	bp.logger.Info("starting batch",
		"targets", len(targets),
		"concurrency", bp.concurrency,
	)
	start := time.Now()

	g := new(errgroup.Group)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			job := model.NewCloneJob(target)
			if err := ctx.Err(); err != nil {
				job.Err = err
				job.FinishedAt = time.Now()
				done(job, i)
				return nil
			}

			if err := bp.pipelineFactory(target).Execute(ctx, job); err != nil {
				bp.logger.Warn("clone failed", "target", target, "error", err)
			} else {
				bp.logger.Info("clone completed", "target", target)
			}
			done(job, i)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // jobs record their own errors

	bp.logger.Info("batch complete",
		"targets", len(targets),
		"elapsed", time.Since(start),
	)
	return ctx.Err()
}
