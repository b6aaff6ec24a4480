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

	"github.com/nao1215/logtriage/internal/model"
)

// FileName is the name of the history database inside its directory.
const FileName = "logtriage.db"

// ErrDatabaseNotFound is returned when opening a missing database without
// CreateIfNotExists.
var ErrDatabaseNotFound = errors.New("history database not found")

// HistoryDB provides SQLite-based storage for finished triage runs.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
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

// Open opens or creates the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create the file, mode=rwc allows it.
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

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		log_path TEXT NOT NULL,
		feed_path TEXT NOT NULL,
		input_digest TEXT,
		lines_read INTEGER NOT NULL DEFAULT 0,
		requests INTEGER NOT NULL DEFAULT 0,
		blacklist_domains INTEGER NOT NULL DEFAULT 0,
		total_requests INTEGER NOT NULL,
		total_404_urls INTEGER NOT NULL,
		total_alerts INTEGER NOT NULL,
		alerts_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_digest ON runs(input_digest);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord is one stored run.
type RunRecord struct {
	ID               int64               `json:"id"`
	StartedAt        time.Time           `json:"started_at"`
	Duration         time.Duration       `json:"duration"`
	LogPath          string              `json:"log_path"`
	FeedPath         string              `json:"feed_path"`
	InputDigest      string              `json:"input_digest"`
	LinesRead        int                 `json:"lines_read"`
	Requests         int                 `json:"requests"`
	BlacklistDomains int                 `json:"blacklist_domains"`
	Summary          model.Summary       `json:"summary"`
	Alerts           []model.AlertRecord `json:"alerts"`
}

// SaveRun stores a finished run and returns its id.
// The run must carry a summary.
func (h *HistoryDB) SaveRun(ctx context.Context, run *model.TriageRun) (int64, error) {
	if run.Summary == nil {
		return 0, errors.New("cannot save a run without summary")
	}

	alerts := run.Alerts
	if alerts == nil {
		alerts = []model.AlertRecord{}
	}
	alertsJSON, err := json.Marshal(alerts)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize alerts: %w", err)
	}

	domains := 0
	if run.Domains != nil {
		domains = run.Domains.Len()
	}

	query := `
	INSERT INTO runs (
		started_at, duration_ms, log_path, feed_path, input_digest,
		lines_read, requests, blacklist_domains,
		total_requests, total_404_urls, total_alerts, alerts_json
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := h.db.ExecContext(ctx, query,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.Duration.Milliseconds(),
		run.LogPath,
		run.FeedPath,
		run.InputDigest,
		run.LinesRead,
		len(run.Entries),
		domains,
		run.Summary.TotalRequests,
		run.Summary.Total404URLs,
		run.Summary.TotalAlerts,
		string(alertsJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}
	return id, nil
}

// ListRuns returns up to limit runs, newest first.
// A limit of 0 or less returns every run.
func (h *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
	SELECT id, started_at, duration_ms, log_path, feed_path, input_digest,
		lines_read, requests, blacklist_domains,
		total_requests, total_404_urls, total_alerts, alerts_json
	FROM runs
	ORDER BY id DESC
	LIMIT ?
	`
	if limit <= 0 {
		limit = -1
	}

	rows, err := h.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	records := make([]RunRecord, 0)
	for rows.Next() {
		var (
			rec        RunRecord
			startedAt  string
			durationMS int64
			digest     sql.NullString
			alertsJSON string
		)
		if err := rows.Scan(
			&rec.ID, &startedAt, &durationMS, &rec.LogPath, &rec.FeedPath, &digest,
			&rec.LinesRead, &rec.Requests, &rec.BlacklistDomains,
			&rec.Summary.TotalRequests, &rec.Summary.Total404URLs, &rec.Summary.TotalAlerts,
			&alertsJSON,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		rec.StartedAt = parseTimestamp(startedAt)
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		rec.InputDigest = digest.String
		if err := json.Unmarshal([]byte(alertsJSON), &rec.Alerts); err != nil {
			rec.Alerts = []model.AlertRecord{}
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// timestampFormats contains the timestamp formats the runs table may hold.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// parseTimestamp parses a stored timestamp, returning zero time if no
// format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
