package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/nao1215/siteclone/internal/archive"
	"github.com/nao1215/siteclone/internal/model"
	"github.com/nao1215/siteclone/internal/pipeline"
)

const (
	// MaxRequestBodySize caps the JSON body of a clone request.
	MaxRequestBodySize = 8 << 10

	// DefaultAddress is the listen address used when none is configured.
	DefaultAddress = "127.0.0.1:8080"

	// crawlPasses is the number of sequential fetch stages of one clone:
	// the root document, its direct references and stylesheet references.
	crawlPasses = 3

	shutdownTimeout = 10 * time.Second
)

// RequestTimeout returns the overall deadline of one clone request for
// the given per-fetch and archive timeouts.
func RequestTimeout(fetchTimeout, archiveTimeout time.Duration) time.Duration {
	return crawlPasses*fetchTimeout + archiveTimeout
}

// CloneRequest is the JSON body of POST /api/clone.
type CloneRequest struct {
	URL string `json:"url"`
}

// Server is the HTTP front of the clone pipeline.
type Server struct {
	router         chi.Router
	newPipeline    func(target string) *pipeline.Pipeline
	limiter        *rate.Limiter
	requestTimeout time.Duration
	addr           string
	logger         *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRateLimit accepts at most r clone requests per second with the given burst.
func WithRateLimit(r float64, burst int) Option {
	return func(s *Server) {
		if r > 0 && burst > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(r), burst)
		}
	}
}

// WithRequestTimeout bounds the time spent on one clone request.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// WithAddress sets the address used by ListenAndServe.
func WithAddress(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// New creates a Server. newPipeline is called once per clone request with the requested URL.
func New(newPipeline func(target string) *pipeline.Pipeline, opts ...Option) *Server {
	s := &Server{
		newPipeline:    newPipeline,
		limiter:        rate.NewLimiter(rate.Limit(1), 3),
		requestTimeout: RequestTimeout(40*time.Second, 30*time.Second),
		addr:           DefaultAddress,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.With(s.rateLimit).Post("/api/clone", s.handleClone)

	s.router = r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      s.requestTimeout + 15*time.Second,
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := s.HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, CodeRateLimited, "too many clone requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleClone(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var req CloneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, CodeRequestTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "invalid JSON body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "url is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	job := model.NewCloneJob(req.URL)

	if err := s.newPipeline(req.URL).Execute(ctx, job); err != nil {
		status, code, msg := classify(err)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && code != CodeArchiveTimeout {
			status, code, msg = http.StatusGatewayTimeout, CodeTimeout, "clone timed out"
		}
		s.logger.Warn("clone failed",
			"url", req.URL,
			"clone_id", job.ID,
			"request_id", middleware.GetReqID(r.Context()),
			"status", status,
			"error", err,
		)
		writeError(w, status, code, msg)
		return
	}
	if len(job.Archive) == 0 {
		writeError(w, http.StatusUnprocessableEntity, CodeArchiveEmpty, "nothing to archive")
		return
	}

	domain := ""
	if job.Result != nil {
		domain = job.Result.OriginDomain
	}

	h := w.Header()
	h.Set("Content-Type", "application/zip")
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archive.FileName(domain)))
	h.Set("Content-Length", strconv.Itoa(len(job.Archive)))
	h.Set("X-Clone-Id", job.ID)
	if job.ArchiveDigest != "" {
		h.Set("X-Archive-Digest", job.ArchiveDigest)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(job.Archive) //nolint:errcheck,gosec
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v) //nolint:errcheck,gosec
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: msg})
}
