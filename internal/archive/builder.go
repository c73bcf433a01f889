package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"github.com/nao1215/siteclone/internal/model"
)

// DefaultTimeout bounds a whole archive build.
const DefaultTimeout = 30 * time.Second

// Entry is one file of the archive.
type Entry struct {
	// Name is the normalized path inside the archive.
	Name string

	// Asset is the asset the entry is written from.
	Asset *model.Asset
}

// Builder writes zip archives.
type Builder struct {
	timeout time.Duration
	level   int
	modTime func() time.Time
	logger  *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithTimeout sets the wall-clock bound of a build.
func WithTimeout(d time.Duration) BuilderOption {
	return func(b *Builder) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithCompressionLevel sets the deflate level, flate.BestSpeed through
// flate.BestCompression.
func WithCompressionLevel(level int) BuilderOption {
	return func(b *Builder) {
		b.level = level
	}
}

// WithModTime fixes the modification time stamped on every entry.
// Without it entries carry the build time.
func WithModTime(t time.Time) BuilderOption {
	return func(b *Builder) {
		b.modTime = func() time.Time { return t }
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		timeout: DefaultTimeout,
		level:   flate.DefaultCompression,
		modTime: time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Plan returns the entries an archive of assets would contain, in order.
// Assets without content or without an archive path are left out.
func Plan(assets []*model.Asset) ([]Entry, error) {
	entries := make([]Entry, 0, len(assets))
	names := newNamer(len(assets))
	for _, a := range assets {
		if !a.HasContent() || a.ArchivePath == "" {
			continue
		}
		name := names.claim(NormalizePath(a.ArchivePath, len(entries)+1))
		entries = append(entries, Entry{Name: name, Asset: a})
	}
	if len(entries) == 0 {
		return nil, ErrArchiveEmpty
	}
	return entries, nil
}

// Build returns the archive of assets as bytes.
func (b *Builder) Build(ctx context.Context, assets []*model.Asset) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := b.WriteTo(ctx, &buf, assets); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo streams the archive of assets into w and returns the number of
// bytes written. It fails with ErrArchiveEmpty before writing anything when
// no entry qualifies, and with ErrArchiveTimeout when the build does not
// finish within the configured bound. After a timeout w may hold a partial
// archive.
//
// WriteTo never returns while a write to w is in flight: on timeout it waits
// for the current write to finish, and the build stops before the next one.
// A w that blocks forever therefore blocks WriteTo; callers bound such
// writers themselves (http.Server.WriteTimeout for a ResponseWriter).
func (b *Builder) WriteTo(ctx context.Context, w io.Writer, assets []*model.Asset) (int64, error) {
	entries, err := Plan(assets)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	cw := &countingWriter{ctx: ctx, w: w}
	done := make(chan error, 1)
	go func() {
		done <- b.write(cw, entries)
	}()

	select {
	case err := <-done:
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return cw.Count(), ErrArchiveTimeout
			}
			return cw.Count(), err
		}
		b.logger.Debug("archive built", "entries", len(entries), "bytes", cw.Count())
		return cw.Count(), nil
	case <-ctx.Done():
		<-done
		b.logger.Debug("archive aborted", "entries", len(entries), "bytes", cw.Count())
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return cw.Count(), ErrArchiveTimeout
		}
		return cw.Count(), ctx.Err()
	}
}

func (b *Builder) write(w io.Writer, entries []Entry) error {
	zw := zip.NewWriter(w)
	level := b.level
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})

	modified := b.modTime()
	for _, e := range entries {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.Name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return fmt.Errorf("create entry %s: %w", e.Name, err)
		}
		if _, err := fw.Write(e.Asset.Content); err != nil {
			return fmt.Errorf("write entry %s: %w", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return nil
}
