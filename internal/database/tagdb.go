package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/tagdict/internal/model"
)

// FileName is the database file name inside the data directory.
const FileName = "tagdict.db"

// busyTimeout lets a watcher and a lookup share the database file.
const busyTimeout = "_pragma=busy_timeout(5000)"

// timeLayout is fixed-width so that started_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// TagDB provides SQLite-based storage for run history.
type TagDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures TagDB behavior.
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

// Open opens or creates a TagDB in dbDir.
func Open(dbDir string, opts Options) (*TagDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	var dsn string
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = dbPath + "?mode=rwc&" + busyTimeout
	} else {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
		dsn = dbPath + "?mode=rw&" + busyTimeout
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	tdb := &TagDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := tdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return tdb, nil
}

// Path returns the database file path.
func (tdb *TagDB) Path() string {
	return tdb.dbPath
}

// Close closes the database connection.
func (tdb *TagDB) Close() error {
	return tdb.db.Close()
}

func (tdb *TagDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		jp_digest TEXT,
		en_digest TEXT,
		jp_count INTEGER NOT NULL DEFAULT 0,
		en_count INTEGER NOT NULL DEFAULT 0,
		matched INTEGER NOT NULL DEFAULT 0,
		diagnostics INTEGER NOT NULL DEFAULT 0,
		has_critical INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	CREATE TABLE IF NOT EXISTS tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		slug TEXT NOT NULL,
		name_local TEXT NOT NULL,
		name_foreign TEXT,
		category TEXT,
		tag_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tags_run_slug ON tags(run_id, slug);
	CREATE INDEX IF NOT EXISTS idx_tags_run_name ON tags(run_id, name_local);

	CREATE TABLE IF NOT EXISTS translations (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		english_name TEXT NOT NULL,
		slug TEXT,
		PRIMARY KEY (run_id, english_name)
	);
	`

	_, err := tdb.db.ExecContext(context.Background(), schema)
	return err
}

// Run is the stored metadata of one pipeline run.
type Run struct {
	ID          string        `json:"id"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
	JPDigest    string        `json:"jp_digest,omitempty"`
	ENDigest    string        `json:"en_digest,omitempty"`
	JPCount     int           `json:"jp_count"`
	ENCount     int           `json:"en_count"`
	Matched     int           `json:"matched"`
	Diagnostics int           `json:"diagnostics"`
	HasCritical bool          `json:"has_critical"`
}

// InsertRun stores a run together with its tags and dictionary in a single
// transaction.
func (tdb *TagDB) InsertRun(ctx context.Context, run *Run, tags []model.Tag, dict model.Dictionary) error {
	tx, err := tdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (id, started_at, duration_ms, jp_digest, en_digest, jp_count, en_count, matched, diagnostics, has_critical)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.StartedAt.UTC().Format(timeLayout),
		run.Duration.Milliseconds(),
		run.JPDigest,
		run.ENDigest,
		run.JPCount,
		run.ENCount,
		run.Matched,
		run.Diagnostics,
		run.HasCritical,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	tagStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO tags (run_id, slug, name_local, name_foreign, category, tag_json)
	VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare tag insert: %w", err)
	}
	defer tagStmt.Close()

	for i := range tags {
		tag := &tags[i]
		tagJSON, err := json.Marshal(tag)
		if err != nil {
			return fmt.Errorf("failed to serialize tag %s: %w", tag.Slug, err)
		}
		if _, err := tagStmt.ExecContext(ctx,
			run.ID,
			tag.Slug,
			tag.NameLocal,
			sql.NullString{String: tag.NameForeign, Valid: tag.NameForeign != ""},
			strings.Join(tag.CategoryPath, " > "),
			string(tagJSON),
		); err != nil {
			return fmt.Errorf("failed to insert tag %s: %w", tag.Slug, err)
		}
	}

	trStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO translations (run_id, english_name, slug) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare translation insert: %w", err)
	}
	defer trStmt.Close()

	for name, slug := range dict {
		if _, err := trStmt.ExecContext(ctx, run.ID, name, nullString(slug)); err != nil {
			return fmt.Errorf("failed to insert translation %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

const runColumns = `id, started_at, duration_ms, jp_digest, en_digest, jp_count, en_count, matched, diagnostics, has_critical`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run       Run
		startedAt string
		duration  int64
		jpDigest  sql.NullString
		enDigest  sql.NullString
	)
	if err := row.Scan(
		&run.ID,
		&startedAt,
		&duration,
		&jpDigest,
		&enDigest,
		&run.JPCount,
		&run.ENCount,
		&run.Matched,
		&run.Diagnostics,
		&run.HasCritical,
	); err != nil {
		return nil, err
	}
	run.StartedAt = parseTimestamp(startedAt)
	run.Duration = time.Duration(duration) * time.Millisecond
	run.JPDigest = jpDigest.String
	run.ENDigest = enDigest.String
	return &run, nil
}

// LatestRun returns the most recent run, or nil if no run was recorded.
func (tdb *TagDB) LatestRun(ctx context.Context) (*Run, error) {
	row := tdb.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return run, nil
}

// GetRun returns the run with the given ID.
func (tdb *TagDB) GetRun(ctx context.Context, id string) (*Run, error) {
	row := tdb.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns runs newest first. A limit of zero or less returns all
// runs.
func (tdb *TagDB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, rowid DESC`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := tdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// RunTags returns the tags stored for a run in insertion order.
func (tdb *TagDB) RunTags(ctx context.Context, runID string) ([]model.Tag, error) {
	rows, err := tdb.db.QueryContext(ctx,
		`SELECT tag_json FROM tags WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run tags: %w", err)
	}
	defer rows.Close()

	tags := make([]model.Tag, 0)
	for rows.Next() {
		var tagJSON string
		if err := rows.Scan(&tagJSON); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		var tag model.Tag
		if err := json.Unmarshal([]byte(tagJSON), &tag); err != nil {
			return nil, fmt.Errorf("failed to parse tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// RunDictionary returns the dictionary stored for a run.
func (tdb *TagDB) RunDictionary(ctx context.Context, runID string) (model.Dictionary, error) {
	rows, err := tdb.db.QueryContext(ctx,
		`SELECT english_name, slug FROM translations WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run dictionary: %w", err)
	}
	defer rows.Close()

	dict := make(model.Dictionary)
	for rows.Next() {
		var (
			name string
			slug sql.NullString
		)
		if err := rows.Scan(&name, &slug); err != nil {
			return nil, fmt.Errorf("failed to scan translation: %w", err)
		}
		dict[name] = stringPtr(slug)
	}
	return dict, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// timestampFormats contains the timestamp formats that SQLite may return.
var timestampFormats = []string{
	timeLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp parses s with the first matching format, returning the
// zero time when none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
