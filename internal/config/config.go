package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/siteclone/internal/archive"
	"github.com/nao1215/siteclone/internal/crawler"
	"github.com/nao1215/siteclone/internal/pipeline"
	"github.com/nao1215/siteclone/internal/transport"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "siteclone"

	// DefaultTimeout bounds each HTTP fetch, the root document included.
	DefaultTimeout = crawler.DefaultFetchTimeout

	// DefaultArchiveTimeout bounds the construction of one archive.
	DefaultArchiveTimeout = archive.DefaultTimeout

	// DefaultMaxTotalSize is the byte budget of one clone (100 MB).
	DefaultMaxTotalSize = crawler.DefaultMaxTotalSize

	// DefaultMaxAssets caps the number of assets collected besides the root document.
	DefaultMaxAssets = crawler.DefaultMaxAssets

	// DefaultBatchSize is the number of assets downloaded at once.
	DefaultBatchSize = crawler.DefaultBatchSize

	// DefaultConcurrency is the number of targets cloned in parallel.
	DefaultConcurrency = pipeline.DefaultConcurrency

	// DefaultUserAgent is sent unless overridden per run or per site.
	DefaultUserAgent = crawler.DefaultUserAgent

	// DefaultListenAddress is where "siteclone serve" listens.
	DefaultListenAddress = "127.0.0.1:8080"

	// DefaultRateLimit is the number of clone requests per second the server accepts.
	DefaultRateLimit = 1.0

	// DefaultRateBurst is the number of clone requests accepted in a burst.
	DefaultRateBurst = 3
)

// Config holds all options of a clone run or of the server.
// It is populated from CLI flags and passed down explicitly.
type Config struct {
	// Targets is the list of URLs to clone.
	Targets []string

	// Timeout bounds each HTTP fetch.
	Timeout time.Duration

	// ArchiveTimeout bounds the construction of each archive.
	ArchiveTimeout time.Duration

	// MaxTotalSize is the byte budget of one clone, root document included.
	MaxTotalSize int64

	// MaxAssets caps the number of non-root assets of one clone.
	MaxAssets int

	// BatchSize is the number of assets downloaded concurrently.
	BatchSize int

	// Concurrency is the number of targets cloned in parallel.
	Concurrency int

	// UserAgent is sent with every request.
	UserAgent string

	// Cookie is sent with every request unless a site entry overrides it.
	Cookie string

	// Headers are extra request headers. Site entries add to and override them.
	Headers map[string]string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" form.
	ProxyAddress string

	// Inspect enables the image metadata audit.
	Inspect bool

	// OutputDir is where archives are written. Empty means the current directory.
	OutputDir string

	// DBDir is the directory of the clone history database.
	// Defaults to the XDG data directory (~/.local/share/siteclone on Linux).
	DBDir string

	// SaveToDB records every clone in the history database.
	SaveToDB bool

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is an explicit .siteclone file. Empty means search
	// the current directory and then the home directory.
	ConfigFilePath string

	// SiteConfigs holds the per-site settings loaded from the config file.
	SiteConfigs *File

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// ListenAddress is the address "siteclone serve" listens on.
	ListenAddress string

	// RateLimit is the number of clone requests per second the server accepts.
	RateLimit float64

	// RateBurst is the burst size of the server rate limiter.
	RateBurst int
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:        DefaultTimeout,
		ArchiveTimeout: DefaultArchiveTimeout,
		MaxTotalSize:   DefaultMaxTotalSize,
		MaxAssets:      DefaultMaxAssets,
		BatchSize:      DefaultBatchSize,
		Concurrency:    DefaultConcurrency,
		UserAgent:      DefaultUserAgent,
		Inspect:        true,
		DBDir:          XDGDataDir(),
		SaveToDB:       true,
		ListenAddress:  DefaultListenAddress,
		RateLimit:      DefaultRateLimit,
		RateBurst:      DefaultRateBurst,
	}
}

// XDGDataDir returns the XDG data directory for siteclone.
// On Linux: ~/.local/share/siteclone
// On macOS: ~/Library/Application Support/siteclone
// On Windows: %LOCALAPPDATA%\siteclone
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for siteclone.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the settings shared by every command and returns the
// first problem found. ValidateTargets additionally requires targets.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.ArchiveTimeout <= 0 {
		return ErrInvalidArchiveTimeout
	}
	if c.MaxTotalSize <= 0 {
		return ErrInvalidMaxTotalSize
	}
	if c.MaxAssets <= 0 {
		return ErrInvalidMaxAssets
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.ProxyAddress != "" && !transport.IsValidProxyAddress(c.ProxyAddress) {
		return ErrInvalidProxyAddress
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return ErrInvalidRateLimit
	}
	return nil
}

// ValidateTargets is Validate plus the requirement of at least one target.
func (c *Config) ValidateTargets() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	return c.Validate()
}

// SiteConfig returns the settings for domain with the file's defaults and
// site overrides applied on top of the flag values.
func (c *Config) SiteConfig(domain string) SiteConfig {
	site := SiteConfig{
		Cookie:       c.Cookie,
		Headers:      c.Headers,
		MaxAssets:    c.MaxAssets,
		MaxTotalSize: c.MaxTotalSize,
		UserAgent:    c.UserAgent,
	}
	if c.SiteConfigs == nil {
		return site
	}
	return site.merge(c.SiteConfigs.GetSiteConfig(domain))
}
