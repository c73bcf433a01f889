// Package database provides SQLite-based storage for the clone history.
//
// Every finished clone, successful or not, is stored as one summary row:
// target, domain, counts, sizes, the archive digest and where the archive
// was saved. Archive bytes and asset contents are never stored.
//
// The database is a single file (siteclone.db) using modernc.org/sqlite, a
// CGO-free driver, in WAL mode.
package database
