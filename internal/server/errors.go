package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/nao1215/siteclone/internal/archive"
	"github.com/nao1215/siteclone/internal/crawler"
)

// Error codes returned in the "error" field of failure responses.
const (
	CodeInvalidRequest  = "invalid_request"
	CodeRequestTooLarge = "request_too_large"
	CodeInvalidURL      = "invalid_url"
	CodeFetchFailed     = "fetch_failed"
	CodeParseFailed     = "parse_failed"
	CodeArchiveEmpty    = "archive_empty"
	CodeArchiveTimeout  = "archive_timeout"
	CodeTimeout         = "timeout"
	CodeRateLimited     = "rate_limited"
	CodeInternal        = "internal_error"
)

// ErrorResponse is the JSON body of every failure response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// archiveTimeoutMessage is shown when packaging outlives its bound.
const archiveTimeoutMessage = "the site is too large to package in time, try a smaller site"

// classify maps a pipeline error to an HTTP status, an error code and a
// message that is safe to show to the client.
func classify(err error) (int, string, string) {
	var verr *crawler.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, CodeInvalidURL, verr.Error()
	case errors.Is(err, crawler.ErrValidation):
		return http.StatusBadRequest, CodeInvalidURL, "target URL rejected"
	case errors.Is(err, archive.ErrArchiveTimeout):
		return http.StatusGatewayTimeout, CodeArchiveTimeout, archiveTimeoutMessage
	case errors.Is(err, archive.ErrArchiveEmpty):
		return http.StatusUnprocessableEntity, CodeArchiveEmpty, "nothing to archive"
	case errors.Is(err, crawler.ErrParse):
		return http.StatusUnprocessableEntity, CodeParseFailed, "target document could not be parsed"
	case errors.Is(err, crawler.ErrFetch):
		return http.StatusBadGateway, CodeFetchFailed, "target document could not be fetched"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, CodeTimeout, "clone timed out"
	default:
		return http.StatusInternalServerError, CodeInternal, "internal error"
	}
}
