package crawler

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when the target URL fails validation.
	// No network access has happened when it is returned.
	ErrValidation = errors.New("target URL rejected")

	// ErrFetch is returned when the root document could not be retrieved:
	// network failure, timeout, non-success status or an empty body.
	ErrFetch = errors.New("failed to fetch root document")

	// ErrParse is returned when the root document could not be parsed.
	ErrParse = errors.New("failed to parse root document")

	// ErrAssetDownload marks a failed non-root download. It is logged and
	// recorded in CrawlResult.Failed, never returned from Crawl.
	ErrAssetDownload = errors.New("failed to download asset")

	// ErrBudgetExceeded marks an asset skipped because a size or count cap
	// was reached. It ends the current pass and is never returned from Crawl.
	ErrBudgetExceeded = errors.New("crawl budget exceeded")
)

// ValidationError carries the validator's reason for rejecting a URL.
type ValidationError struct {
	URL    string
	Reason string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), e.Reason)
}

// Unwrap makes errors.Is(err, ErrValidation) true.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// statusError is returned by fetch for non-2xx responses.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}
