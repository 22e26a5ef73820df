// =============================================================================
// Invoice Readiness Analyzer - Persistence Layer
// =============================================================================
//
// SQLite-backed storage for uploads and reports. The database is a single
// local file (pure-Go driver, no cgo); parsed rows and assembled reports are
// stored as serialized JSON blobs alongside the columns the listing and
// lookup queries need.
//
// TABLES:
//   uploads  : one row per accepted upload, including the parsed dataset
//   reports  : one row per analysis, including the full report JSON
//
// The engine itself never touches this package; persistence happens strictly
// before and after an analysis run.
//
// =============================================================================

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/complyflow/invoice-readiness/internal/report"
	"github.com/complyflow/invoice-readiness/internal/types"
	"github.com/complyflow/invoice-readiness/pkg/utils"
)

// ErrNotFound is returned when a requested upload or report does not exist.
var ErrNotFound = errors.New("record not found")

// =============================================================================
// RECORD TYPES
// =============================================================================

// Upload is one accepted dataset upload.
type Upload struct {
	ID           string      `json:"uploadId"`
	OriginalName string      `json:"originalName"`
	Format       string      `json:"fileType"`
	Country      string      `json:"country"`
	ERP          string      `json:"erp"`
	RowsParsed   int         `json:"rowsParsed"`
	TotalRows    int         `json:"totalRows"`
	DataScore    int         `json:"dataScore"`
	Rows         []types.Row `json:"-"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// ReportSummary is the condensed listing shape of a stored report.
type ReportSummary struct {
	ReportID       string    `json:"reportId"`
	OverallScore   int       `json:"overallScore"`
	ReadinessLabel string    `json:"readinessLabel"`
	Country        string    `json:"country"`
	ERP            string    `json:"erp"`
	CreatedAt      time.Time `json:"createdAt"`
}

// =============================================================================
// STORE
// =============================================================================

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating when necessary) the database at the given path and
// runs migrations. Use ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite handles one writer at a time; serialize access through a
	// single connection to avoid SQLITE_BUSY under concurrent analyses.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the schema when it does not exist yet.
func (s *Store) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS uploads (
	id            TEXT PRIMARY KEY,
	original_name TEXT NOT NULL,
	format        TEXT NOT NULL,
	country       TEXT NOT NULL,
	erp           TEXT NOT NULL,
	rows_parsed   INTEGER NOT NULL,
	total_rows    INTEGER NOT NULL,
	data_score    INTEGER NOT NULL,
	rows_json     BLOB NOT NULL,
	created_at    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS reports (
	id          TEXT PRIMARY KEY,
	upload_id   TEXT NOT NULL,
	overall     INTEGER NOT NULL,
	readiness   TEXT NOT NULL,
	country     TEXT NOT NULL,
	erp         TEXT NOT NULL,
	report_json BLOB NOT NULL,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);
CREATE INDEX IF NOT EXISTS idx_reports_upload_id ON reports(upload_id);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// =============================================================================
// UPLOADS
// =============================================================================

// SaveUpload persists an upload, serializing its parsed rows.
func (s *Store) SaveUpload(ctx context.Context, u *Upload) error {
	rowsJSON, err := json.Marshal(u.Rows)
	if err != nil {
		return fmt.Errorf("failed to serialize upload rows: %w", err)
	}

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO uploads (id, original_name, format, country, erp, rows_parsed, total_rows, data_score, rows_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.OriginalName, u.Format, u.Country, u.ERP,
		u.RowsParsed, u.TotalRows, u.DataScore, rowsJSON,
		u.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save upload: %w", err)
	}
	return nil
}

// GetUpload loads an upload by ID, including its parsed rows.
func (s *Store) GetUpload(ctx context.Context, id string) (*Upload, error) {
	var (
		u         Upload
		rowsJSON  []byte
		createdAt string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, original_name, format, country, erp, rows_parsed, total_rows, data_score, rows_json, created_at
		FROM uploads WHERE id = ?`, id).
		Scan(&u.ID, &u.OriginalName, &u.Format, &u.Country, &u.ERP,
			&u.RowsParsed, &u.TotalRows, &u.DataScore, &rowsJSON, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load upload: %w", err)
	}

	if err := json.Unmarshal(rowsJSON, &u.Rows); err != nil {
		return nil, fmt.Errorf("failed to deserialize upload rows: %w", err)
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	return &u, nil
}

// =============================================================================
// REPORTS
// =============================================================================

// SaveReport persists an assembled report against its upload.
func (s *Store) SaveReport(ctx context.Context, uploadID string, r *report.Report) error {
	reportJSON, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reports (id, upload_id, overall, readiness, country, erp, report_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ReportID, uploadID, r.Scores.Overall, r.Meta.ReadinessLabel,
		r.Meta.Country, r.Meta.ERP, reportJSON,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// GetReport loads the full report JSON by report ID.
func (s *Store) GetReport(ctx context.Context, id string) (*report.Report, error) {
	var reportJSON []byte

	err := s.db.QueryRowContext(ctx,
		`SELECT report_json FROM reports WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}

	var r report.Report
	if err := json.Unmarshal(reportJSON, &r); err != nil {
		return nil, fmt.Errorf("failed to deserialize report: %w", err)
	}
	return &r, nil
}

// ReportForUpload returns the most recent report summary for an upload, or
// ErrNotFound when the upload has not been analyzed.
func (s *Store) ReportForUpload(ctx context.Context, uploadID string) (*ReportSummary, error) {
	summary, err := scanSummary(s.db.QueryRowContext(ctx, `
		SELECT id, overall, readiness, country, erp, created_at
		FROM reports WHERE upload_id = ? ORDER BY created_at DESC LIMIT 1`, uploadID))
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// RecentReports lists the newest report summaries, most recent first.
func (s *Store) RecentReports(ctx context.Context, limit int) ([]ReportSummary, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, overall, readiness, country, erp, created_at
		FROM reports ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	summaries := []ReportSummary{}
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, rows.Err()
}

// DeleteReport removes a report by ID.
func (s *Store) DeleteReport(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner matches both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanSummary reads one ReportSummary from a summary query row.
func scanSummary(row scanner) (*ReportSummary, error) {
	var (
		summary   ReportSummary
		createdAt string
	)
	err := row.Scan(&summary.ReportID, &summary.OverallScore, &summary.ReadinessLabel,
		&summary.Country, &summary.ERP, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan report summary: %w", err)
	}
	summary.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &summary, nil
}
