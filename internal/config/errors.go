package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoTarget is returned when no target URL is specified.
	ErrNoTarget = errors.New("no target specified: provide one or more URLs")

	// ErrInvalidTimeout is returned when the per-fetch timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidArchiveTimeout is returned when the archive timeout is not positive.
	ErrInvalidArchiveTimeout = errors.New("invalid archive timeout: must be positive")

	// ErrInvalidBatchSize is returned when the download batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidMaxAssets is returned when the asset cap is not positive.
	ErrInvalidMaxAssets = errors.New("invalid max assets: must be positive")

	// ErrInvalidMaxTotalSize is returned when the size budget is not positive.
	ErrInvalidMaxTotalSize = errors.New("invalid max total size: must be positive")

	// ErrInvalidConcurrency is returned when the number of parallel clones is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidProxyAddress is returned when the proxy address is not host:port.
	ErrInvalidProxyAddress = errors.New("invalid proxy address: expected host:port")

	// ErrInvalidRateLimit is returned when the server rate limit or burst is not positive.
	ErrInvalidRateLimit = errors.New("invalid rate limit: rate and burst must be positive")
)
