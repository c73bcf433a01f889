// Package model defines the core data structures shared by the clone pipeline.
//
// This package contains the following main types:
//   - Asset: one fetched resource and the path it takes inside the archive
//   - CrawlResult: the aggregate produced by a single crawl
//   - CloneJob: the unit of work flowing through the pipeline
//   - CloneReport: the summarized result shown to users and stored in history
//
// Models live in their own package so that crawler, archive, inspect, report
// and database can all depend on them without import cycles.
package model
