// Package archive packages collected assets into a zip archive.
//
// Entries are filtered (no content or no path means no entry), their paths
// normalized so they can never escape the extraction directory, and then
// deflated into the output one by one. The whole build runs under a
// wall-clock bound and fails with ErrArchiveTimeout when it is exceeded.
package archive
