// Package jobstore keeps a local history of the provider jobs flexctl has
// submitted, so that `flexctl jobs list` can show what was done and whether
// it finished.
//
// Storage is the SQLite database returned by database.DefaultPath.
package jobstore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"nathanbeddoewebdev/flexctl/internal/database"
)

// Repository defines the persistence interface for job records.
type Repository interface {
	// Save inserts or updates a record. On insert (ID == 0), an ID is
	// assigned to the record.
	Save(record *JobRecord) error

	// Get retrieves a single record by ID. It returns nil if there is none.
	Get(id int64) (*JobRecord, error)

	// ListRunning returns records still marked running, newest first.
	ListRunning() ([]JobRecord, error)

	// ListRecent returns the most recent n records, newest first.
	ListRecent(n int) ([]JobRecord, error)

	// DeleteOlderThan removes finished records last updated more than d ago.
	DeleteOlderThan(d time.Duration) (int64, error)

	// Close releases database resources.
	Close() error
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepository implements Repository on SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// Open opens the repository at the default database path.
func Open() (*SQLiteRepository, error) {
	path, err := database.DefaultPath()
	if err != nil {
		return nil, err
	}
	return OpenAt(path)
}

// OpenAt opens the repository at path, creating the file and schema if needed.
func OpenAt(path string) (*SQLiteRepository, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, err
	}

	r := &SQLiteRepository{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *SQLiteRepository) migrate() error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS jobs (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			job_uuid        TEXT    NOT NULL DEFAULT '',
			item_uuid       TEXT    NOT NULL DEFAULT '',
			command         TEXT    NOT NULL DEFAULT '',
			endpoint        TEXT    NOT NULL DEFAULT '',
			provider_status TEXT    NOT NULL DEFAULT '',
			status          TEXT    NOT NULL DEFAULT 'running',
			error_message   TEXT    NOT NULL DEFAULT '',
			created_at      TEXT    NOT NULL,
			updated_at      TEXT    NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
		CREATE INDEX IF NOT EXISTS idx_jobs_job_uuid ON jobs(job_uuid);
	`
	if _, err := r.db.Exec(ddl); err != nil {
		return fmt.Errorf("jobs: migration failed: %w", err)
	}
	return nil
}

// Save inserts a new record (ID == 0) or updates an existing one.
func (r *SQLiteRepository) Save(record *JobRecord) error {
	record.UpdatedAt = time.Now().UTC()

	if record.ID == 0 {
		if record.CreatedAt.IsZero() {
			record.CreatedAt = record.UpdatedAt
		}
		result, err := r.db.Exec(`
			INSERT INTO jobs (job_uuid, item_uuid, command, endpoint, provider_status, status, error_message, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			record.JobUUID, record.ItemUUID, record.Command, record.Endpoint, record.ProviderStatus,
			record.Status, record.ErrorMessage,
			record.CreatedAt.Format(timeLayout), record.UpdatedAt.Format(timeLayout),
		)
		if err != nil {
			return fmt.Errorf("jobs: insert failed: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("jobs: failed to get last insert ID: %w", err)
		}
		record.ID = id
		return nil
	}

	result, err := r.db.Exec(`
		UPDATE jobs SET job_uuid=?, item_uuid=?, command=?, endpoint=?, provider_status=?,
		       status=?, error_message=?, updated_at=?
		WHERE id=?`,
		record.JobUUID, record.ItemUUID, record.Command, record.Endpoint, record.ProviderStatus,
		record.Status, record.ErrorMessage, record.UpdatedAt.Format(timeLayout), record.ID,
	)
	if err != nil {
		return fmt.Errorf("jobs: update failed: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("jobs: record with ID %d not found", record.ID)
	}
	return nil
}

const selectColumns = `SELECT id, job_uuid, item_uuid, command, endpoint, provider_status,
		       status, error_message, created_at, updated_at FROM jobs`

// Get retrieves a single record by ID.
func (r *SQLiteRepository) Get(id int64) (*JobRecord, error) {
	row := r.db.QueryRow(selectColumns+` WHERE id = ?`, id)

	var record JobRecord
	err := scan(row.Scan, &record)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("jobs: query failed: %w", err)
	}
	return &record, nil
}

// ListRunning returns records still marked running, newest first.
func (r *SQLiteRepository) ListRunning() ([]JobRecord, error) {
	return r.query(selectColumns+` WHERE status = ? ORDER BY created_at DESC, id DESC`, StatusRunning)
}

// ListRecent returns the most recent n records regardless of status.
func (r *SQLiteRepository) ListRecent(n int) ([]JobRecord, error) {
	return r.query(selectColumns+` ORDER BY created_at DESC, id DESC LIMIT ?`, n)
}

// DeleteOlderThan removes finished records last updated more than d ago.
func (r *SQLiteRepository) DeleteOlderThan(d time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-d).Format(timeLayout)
	result, err := r.db.Exec(`DELETE FROM jobs WHERE status != ? AND updated_at <= ?`, StatusRunning, cutoff)
	if err != nil {
		return 0, fmt.Errorf("jobs: delete failed: %w", err)
	}
	return result.RowsAffected()
}

// Close releases database resources.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) query(q string, args ...any) ([]JobRecord, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("jobs: query failed: %w", err)
	}
	defer rows.Close()

	var records []JobRecord
	for rows.Next() {
		var record JobRecord
		if err := scan(rows.Scan, &record); err != nil {
			return nil, fmt.Errorf("jobs: scan failed: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// scan fills record from a row, given either (*sql.Row).Scan or (*sql.Rows).Scan.
func scan(scanFn func(dest ...any) error, record *JobRecord) error {
	var createdStr, updatedStr string
	err := scanFn(
		&record.ID, &record.JobUUID, &record.ItemUUID, &record.Command, &record.Endpoint,
		&record.ProviderStatus, &record.Status, &record.ErrorMessage, &createdStr, &updatedStr,
	)
	if err != nil {
		return err
	}
	record.CreatedAt, _ = time.Parse(timeLayout, createdStr)
	record.UpdatedAt, _ = time.Parse(timeLayout, updatedStr)
	return nil
}
