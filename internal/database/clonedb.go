package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/siteclone/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "siteclone.db"

// ErrCloneNotFound is returned by GetClone for an unknown ID.
var ErrCloneNotFound = errors.New("clone not found")

// timestampLayout is a fixed-width UTC layout, so stored timestamps sort
// lexically in time order.
const timestampLayout = "2006-01-02 15:04:05.000000000"

// CloneDB stores the clone history.
type CloneDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures CloneDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the clone history in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CloneDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file, mode=rwc creates it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CloneDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close() //nolint:errcheck
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close() //nolint:errcheck
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Path returns the database file path.
func (cdb *CloneDB) Path() string {
	return cdb.dbPath
}

// Close closes the database connection.
func (cdb *CloneDB) Close() error {
	return cdb.db.Close()
}

func (cdb *CloneDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS clones (
		id TEXT PRIMARY KEY,
		target_url TEXT NOT NULL,
		domain TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		asset_count INTEGER NOT NULL DEFAULT 0,
		total_size INTEGER NOT NULL DEFAULT 0,
		archive_size INTEGER NOT NULL DEFAULT 0,
		archive_digest TEXT,
		archive_path TEXT,
		status TEXT NOT NULL,
		error TEXT,
		categories TEXT,
		finding_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_clones_domain ON clones(domain);
	CREATE INDEX IF NOT EXISTS idx_clones_timestamp ON clones(timestamp);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// CloneRecord is one row of the clone history.
type CloneRecord struct {
	ID            string
	TargetURL     string
	Domain        string
	Timestamp     time.Time
	Duration      time.Duration
	AssetCount    int
	TotalSize     int64
	ArchiveSize   int64
	ArchiveDigest string
	ArchivePath   string
	Status        string
	Error         string
	Categories    map[model.Category]int
	FindingCount  int
}

// SaveClone stores the summary of a clone report. Saving the same ID
// again replaces the row.
func (cdb *CloneDB) SaveClone(ctx context.Context, report *model.CloneReport) error {
	categories, err := json.Marshal(report.Categories)
	if err != nil {
		return fmt.Errorf("failed to serialize categories: %w", err)
	}

	query := `
	INSERT OR REPLACE INTO clones (
		id, target_url, domain, timestamp, duration_ms, asset_count, total_size,
		archive_size, archive_digest, archive_path, status, error, categories, finding_count
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = cdb.db.ExecContext(ctx, query,
		report.ID,
		report.Target,
		report.Domain,
		report.StartedAt.UTC().Format(timestampLayout),
		report.Duration().Milliseconds(),
		report.AssetCount,
		report.TotalSize,
		report.ArchiveSize,
		report.ArchiveDigest,
		report.ArchivePath,
		report.Status,
		report.Error,
		string(categories),
		len(report.Findings),
	)
	if err != nil {
		return fmt.Errorf("failed to save clone: %w", err)
	}
	return nil
}

const selectColumns = `
	SELECT id, target_url, domain, timestamp, duration_ms, asset_count, total_size,
		archive_size, archive_digest, archive_path, status, error, categories, finding_count
	FROM clones
`

// GetClone returns the record with the given ID, or ErrCloneNotFound.
func (cdb *CloneDB) GetClone(ctx context.Context, id string) (*CloneRecord, error) {
	row := cdb.db.QueryRowContext(ctx, selectColumns+"WHERE id = ?", id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCloneNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clone: %w", err)
	}
	return rec, nil
}

// ListClones returns the most recent clones first. An empty domain lists
// every domain; a non-positive limit returns all rows.
func (cdb *CloneDB) ListClones(ctx context.Context, domain string, limit int) ([]CloneRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	query := selectColumns + "ORDER BY timestamp DESC LIMIT ?"
	args := []any{limit}
	if domain != "" {
		query = selectColumns + "WHERE domain = ? ORDER BY timestamp DESC LIMIT ?"
		args = []any{domain, limit}
	}

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clones: %w", err)
	}
	defer rows.Close()

	records := make([]CloneRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan clone: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// ListDomains returns every domain in the history, sorted.
func (cdb *CloneDB) ListDomains(ctx context.Context) ([]string, error) {
	rows, err := cdb.db.QueryContext(ctx, `SELECT DISTINCT domain FROM clones ORDER BY domain`)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	domains := make([]string, 0)
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		domains = append(domains, d)
	}
	return domains, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*CloneRecord, error) {
	var (
		rec        CloneRecord
		timestamp  string
		durationMS int64
		digest     sql.NullString
		path       sql.NullString
		errText    sql.NullString
		categories sql.NullString
	)
	err := s.Scan(
		&rec.ID, &rec.TargetURL, &rec.Domain, &timestamp, &durationMS,
		&rec.AssetCount, &rec.TotalSize, &rec.ArchiveSize,
		&digest, &path, &rec.Status, &errText, &categories, &rec.FindingCount,
	)
	if err != nil {
		return nil, err
	}

	rec.Timestamp = parseTimestamp(timestamp)
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	rec.ArchiveDigest = digest.String
	rec.ArchivePath = path.String
	rec.Error = errText.String
	rec.Categories = make(map[model.Category]int)
	if categories.Valid && categories.String != "" {
		if err := json.Unmarshal([]byte(categories.String), &rec.Categories); err != nil {
			rec.Categories = make(map[model.Category]int)
		}
	}
	return &rec, nil
}

// timestampFormats contains the timestamp formats that may be stored.
var timestampFormats = []string{
	timestampLayout,
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

// parseTimestamp parses a stored UTC timestamp, or returns the zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
