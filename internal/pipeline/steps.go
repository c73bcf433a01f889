package pipeline

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/siteclone/internal/archive"
	"github.com/nao1215/siteclone/internal/crawler"
	"github.com/nao1215/siteclone/internal/inspect"
	"github.com/nao1215/siteclone/internal/model"
	"github.com/nao1215/siteclone/internal/urlcheck"
)

// ErrNoCrawlResult is returned by steps that need a crawl result when the
// crawl step has not produced one.
var ErrNoCrawlResult = errors.New("no crawl result")

// ErrNoArchive is returned by the save step when no archive was built.
var ErrNoArchive = errors.New("no archive")

// ValidateStep rejects unsafe targets before any network access.
type ValidateStep struct {
	validate crawler.Validator
}

// NewValidateStep creates a validation step. A nil validator means
// urlcheck.Validate.
func NewValidateStep(validate crawler.Validator) *ValidateStep {
	if validate == nil {
		validate = urlcheck.Validate
	}
	return &ValidateStep{validate: validate}
}

// Name returns the step name.
func (s *ValidateStep) Name() string {
	return "validate"
}

// Do executes the validation step.
func (s *ValidateStep) Do(_ context.Context, job *model.CloneJob) error {
	if res := s.validate(job.Target); !res.Valid {
		return &crawler.ValidationError{URL: job.Target, Reason: res.Reason}
	}
	return nil
}

// CrawlStep collects the target page and its assets.
type CrawlStep struct {
	collector *crawler.Collector
}

// NewCrawlStep creates a crawl step.
func NewCrawlStep(collector *crawler.Collector) *CrawlStep {
	return &CrawlStep{collector: collector}
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl step.
func (s *CrawlStep) Do(ctx context.Context, job *model.CloneJob) error {
	result, err := s.collector.Crawl(ctx, job.Target)
	if err != nil {
		return err
	}
	job.Result = result
	return nil
}

// InspectStep audits collected images for metadata.
type InspectStep struct {
	inspector *inspect.Inspector
}

// NewInspectStep creates an inspection step.
func NewInspectStep(inspector *inspect.Inspector) *InspectStep {
	return &InspectStep{inspector: inspector}
}

// Name returns the step name.
func (s *InspectStep) Name() string {
	return "inspect"
}

// Optional implements Optional.
func (s *InspectStep) Optional() bool {
	return true
}

// Do executes the inspection step.
func (s *InspectStep) Do(ctx context.Context, job *model.CloneJob) error {
	if job.Result == nil {
		return ErrNoCrawlResult
	}
	job.Findings = s.inspector.Inspect(ctx, job.Result.Assets)
	return nil
}

// ArchiveStep packages the crawl result into a zip archive.
type ArchiveStep struct {
	builder *archive.Builder
}

// NewArchiveStep creates an archive step.
func NewArchiveStep(builder *archive.Builder) *ArchiveStep {
	return &ArchiveStep{builder: builder}
}

// Name returns the step name.
func (s *ArchiveStep) Name() string {
	return "archive"
}

// Do executes the archive step and stores the archive digest on the job.
func (s *ArchiveStep) Do(ctx context.Context, job *model.CloneJob) error {
	if job.Result == nil {
		return ErrNoCrawlResult
	}
	data, err := s.builder.Build(ctx, job.Result.Assets)
	if err != nil {
		return err
	}
	job.Archive = data
	job.ArchiveDigest = Digest(data)
	return nil
}

// Digest returns the hex SHA3-256 digest of data.
func Digest(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SaveStep writes the archive into a directory as <domain>.zip.
type SaveStep struct {
	dir string
}

// NewSaveStep creates a save step writing into dir.
func NewSaveStep(dir string) *SaveStep {
	return &SaveStep{dir: dir}
}

// Name returns the step name.
func (s *SaveStep) Name() string {
	return "save"
}

// Do writes the archive. An existing archive of the same domain is
// replaced atomically.
func (s *SaveStep) Do(_ context.Context, job *model.CloneJob) error {
	if len(job.Archive) == 0 || job.Result == nil {
		return ErrNoArchive
	}
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".siteclone-*.zip")
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(job.Archive); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}

	dest := filepath.Join(s.dir, archive.FileName(job.Result.OriginDomain))
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("failed to save archive: %w", err)
	}
	job.ArchivePath = dest
	return nil
}

// Recorder stores a summary of finished clones.
type Recorder interface {
	SaveClone(ctx context.Context, report *model.CloneReport) error
}

// RecordStep saves the job summary to the clone history.
// It runs last, and also after a fatal failure, so failed clones are
// recorded too.
type RecordStep struct {
	recorder Recorder
	logger   *slog.Logger
}

// NewRecordStep creates a history step.
func NewRecordStep(recorder Recorder, logger *slog.Logger) *RecordStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordStep{recorder: recorder, logger: logger}
}

// Name returns the step name.
func (s *RecordStep) Name() string {
	return "record"
}

// Optional implements Optional.
func (s *RecordStep) Optional() bool {
	return true
}

// Always implements Always.
func (s *RecordStep) Always() bool {
	return true
}

// Do executes the history step.
func (s *RecordStep) Do(ctx context.Context, job *model.CloneJob) error {
	if job.FinishedAt.IsZero() {
		job.FinishedAt = time.Now()
	}
	// The row is written even when the job was cancelled.
	if err := s.recorder.SaveClone(context.WithoutCancel(ctx), model.NewCloneReport(job)); err != nil {
		return fmt.Errorf("failed to record clone: %w", err)
	}
	s.logger.Debug("clone recorded", "id", job.ID, "target", job.Target)
	return nil
}

// DefaultPipelineConfig selects the steps of DefaultPipeline.
type DefaultPipelineConfig struct {
	// Collector runs the crawl. Required.
	Collector *crawler.Collector

	// Builder packages the archive. nil uses archive.NewBuilder().
	Builder *archive.Builder

	// Inspector audits images. nil skips the inspect step.
	Inspector *inspect.Inspector

	// OutputDir receives <domain>.zip. Empty skips the save step.
	OutputDir string

	// Recorder stores the history row. nil skips the record step.
	Recorder Recorder

	// Validator gates the target. nil means urlcheck.Validate.
	Validator crawler.Validator
}

// DefaultPipeline creates the standard clone pipeline:
// validate, crawl, inspect, archive, save, record.
func DefaultPipeline(cfg DefaultPipelineConfig, opts ...Option) *Pipeline {
	p := New(opts...)

	builder := cfg.Builder
	if builder == nil {
		builder = archive.NewBuilder(archive.WithLogger(p.logger))
	}

	p.AddSteps(
		NewValidateStep(cfg.Validator),
		NewCrawlStep(cfg.Collector),
	)
	if cfg.Inspector != nil {
		p.AddStep(NewInspectStep(cfg.Inspector))
	}
	p.AddStep(NewArchiveStep(builder))
	if cfg.OutputDir != "" {
		p.AddStep(NewSaveStep(cfg.OutputDir))
	}
	if cfg.Recorder != nil {
		p.AddStep(NewRecordStep(cfg.Recorder, p.logger))
	}
	return p
}
