package model

import (
	"time"

	"github.com/google/uuid"
)

// CloneJob is the unit of work that flows through the clone pipeline.
// Each step reads what earlier steps produced and adds its own output.
type CloneJob struct {
	// ID uniquely identifies the job. It is also the history record key.
	ID string

	// Target is the URL supplied by the caller.
	Target string

	// Result is set by the crawl step.
	Result *CrawlResult

	// Findings are set by the inspect step.
	Findings []Finding

	// Archive holds the zip bytes produced by the archive step.
	Archive []byte

	// ArchiveDigest is the hex SHA3-256 digest of Archive.
	ArchiveDigest string

	// ArchivePath is where the caller stored the archive, if anywhere.
	ArchivePath string

	// Err is the fatal error that stopped the pipeline, if any.
	Err error

	// PerformedSteps lists the names of the steps that ran, in order.
	PerformedSteps []string

	StartedAt  time.Time
	FinishedAt time.Time
}

// NewCloneJob creates a job for target with a fresh ID.
func NewCloneJob(target string) *CloneJob {
	return &CloneJob{
		ID:        uuid.NewString(),
		Target:    target,
		StartedAt: time.Now(),
	}
}

// Succeeded reports whether the job produced an archive without a fatal error.
func (j *CloneJob) Succeeded() bool {
	return j.Err == nil && len(j.Archive) > 0
}
