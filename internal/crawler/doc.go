// Package crawler collects a page and the same-origin assets it refers to.
//
// # Architecture
//
// The package is built around the Collector type. One call to Crawl fetches
// the root document, extracts its stylesheet, script, image and media
// references, downloads the same-origin ones in small batches and then
// rescans every collected stylesheet for nested url(...) references.
//
// Crawl state (the asset list and the dedup set) lives on the call stack of
// Crawl, so one Collector can serve concurrent crawls.
//
// # Batches
//
// Downloads run in batches of Config.BatchSize. Every batch is joined before
// the next one starts and results are merged by the calling goroutine only,
// so no locks are involved.
//
// # Budgets
//
//   - Config.MaxAssets caps the number of non-root assets.
//   - Config.MaxTotalSize caps the sum of all content sizes, root included.
//
// Reaching a budget ends the current pass. It is not an error.
//
// # Usage
//
//	collector := crawler.NewCollector(httpClient, crawler.DefaultConfig())
//	result, err := collector.Crawl(ctx, "https://example.com")
//
// # Security Considerations
//
// The target and every asset URL pass through the URL validator before any
// network access. Only hosts on the target's domain (or its subdomains, or
// the domain it is a subdomain of) are ever contacted.
package crawler
