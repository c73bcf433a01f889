package model

import "time"

// CrawlResult is the aggregate produced by one crawl.
// It is assembled completely before it is handed to the archive builder
// and is never mutated afterwards.
type CrawlResult struct {
	// Assets holds every collected asset with content. Assets[0] is the root document.
	Assets []*Asset `json:"assets"`

	// TotalSize is the sum of the sizes of Assets.
	TotalSize int64 `json:"total_size"`

	// OriginURL is the target URL the crawl started from.
	OriginURL string `json:"origin_url"`

	// OriginDomain is the lower-case hostname of OriginURL.
	OriginDomain string `json:"origin_domain"`

	// Failed lists references that were discovered but not collected.
	Failed []AssetFailure `json:"failed,omitempty"`

	// BudgetReached is true when the size or count cap stopped collection.
	BudgetReached bool `json:"budget_reached"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Root returns the root document, or nil for an empty result.
func (r *CrawlResult) Root() *Asset {
	if r == nil || len(r.Assets) == 0 {
		return nil
	}
	return r.Assets[0]
}

// ExtraCount returns the number of non-root assets.
func (r *CrawlResult) ExtraCount() int {
	if r == nil || len(r.Assets) == 0 {
		return 0
	}
	return len(r.Assets) - 1
}

// CountByCategory returns how many assets fall in each category.
func (r *CrawlResult) CountByCategory() map[Category]int {
	counts := make(map[Category]int, len(AllCategories))
	if r == nil {
		return counts
	}
	for _, a := range r.Assets {
		counts[a.Category]++
	}
	return counts
}

// Duration returns how long the crawl took.
func (r *CrawlResult) Duration() time.Duration {
	if r == nil || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
