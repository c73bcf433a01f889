package archive

import "errors"

var (
	// ErrArchiveEmpty is returned when no asset has both content and a path.
	ErrArchiveEmpty = errors.New("no archivable assets")

	// ErrArchiveTimeout is returned when packaging does not finish in time.
	// Callers usually surface it as a request to try a smaller site.
	ErrArchiveTimeout = errors.New("archive build timed out")
)
