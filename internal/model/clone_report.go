package model

import "time"

// Clone status values stored in reports and history.
const (
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// CloneReport is the summarized, serializable outcome of a clone job.
type CloneReport struct {
	ID            string           `json:"id"`
	Target        string           `json:"target"`
	Domain        string           `json:"domain"`
	Status        string           `json:"status"`
	Error         string           `json:"error,omitempty"`
	StartedAt     time.Time        `json:"started_at"`
	FinishedAt    time.Time        `json:"finished_at"`
	AssetCount    int              `json:"asset_count"`
	Categories    map[Category]int `json:"categories"`
	TotalSize     int64            `json:"total_size"`
	ArchiveSize   int64            `json:"archive_size"`
	ArchiveDigest string           `json:"archive_digest,omitempty"`
	ArchivePath   string           `json:"archive_path,omitempty"`
	BudgetReached bool             `json:"budget_reached"`
	Assets        []*Asset         `json:"assets,omitempty"`
	Failures      []AssetFailure   `json:"failures,omitempty"`
	Findings      []Finding        `json:"findings,omitempty"`
}

// NewCloneReport summarizes a finished job.
func NewCloneReport(job *CloneJob) *CloneReport {
	r := &CloneReport{
		ID:            job.ID,
		Target:        job.Target,
		Status:        StatusComplete,
		StartedAt:     job.StartedAt,
		FinishedAt:    job.FinishedAt,
		Categories:    make(map[Category]int),
		ArchiveSize:   int64(len(job.Archive)),
		ArchiveDigest: job.ArchiveDigest,
		ArchivePath:   job.ArchivePath,
		Findings:      job.Findings,
	}

	if job.Err != nil {
		r.Status = StatusFailed
		r.Error = job.Err.Error()
	}

	if res := job.Result; res != nil {
		r.Domain = res.OriginDomain
		r.AssetCount = len(res.Assets)
		r.Categories = res.CountByCategory()
		r.TotalSize = res.TotalSize
		r.BudgetReached = res.BudgetReached
		r.Assets = res.Assets
		r.Failures = res.Failed
	}

	return r
}

// Duration returns the wall-clock time of the job.
func (r *CloneReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// FindingsBySeverity returns the findings of one severity level.
func (r *CloneReport) FindingsBySeverity(s Severity) []Finding {
	out := make([]Finding, 0)
	for _, f := range r.Findings {
		if f.Severity == s {
			out = append(out, f)
		}
	}
	return out
}
