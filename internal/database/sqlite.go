package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/DillanDevs/linkedin-scraping/internal/apperr"
	"github.com/DillanDevs/linkedin-scraping/internal/models"

	_ "modernc.org/sqlite"
)

// date_posted is TEXT here: the driver would turn a DATE column into time.Time.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS job_listings (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	title             VARCHAR(256) NOT NULL,
	company           VARCHAR(128) NOT NULL,
	location          VARCHAR(128) NOT NULL,
	date_posted       TEXT,
	days_since_posted INTEGER,
	job_url           VARCHAR(512) NOT NULL UNIQUE,
	applicants        INTEGER
)`

// SQLiteRepository is the file backed store used for local runs and tests.
type SQLiteRepository struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite database: %w", err)
	}
	// one writer at a time; sqlite locks the whole file anyway
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

func (r *SQLiteRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqliteSchema); err != nil {
		return apperr.Storage("failed to create job_listings", err)
	}
	return nil
}

func (r *SQLiteRepository) UpsertBatch(ctx context.Context, jobs []models.JobListing) (int, error) {
	jobs = models.DedupeByURL(jobs)
	if len(jobs) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, apperr.Storage("failed to begin upsert", err)
	}
	defer tx.Rollback()

	for _, chunk := range chunks(jobs, upsertBatch) {
		query := buildUpsert(len(chunk), func(int) string { return "?" })
		args := make([]any, 0, len(chunk)*len(insertColumns))
		for _, job := range chunk {
			args = append(args, job.Title, job.Company, job.Location, sqliteDate(job.DatePosted),
				nullInt(job.DaysSincePosted), job.JobURL, nullInt(job.Applicants))
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, apperr.Storage("failed to upsert job listings", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, apperr.Storage("failed to commit upsert", err)
	}
	return len(jobs), nil
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]models.JobListing, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+listColumns+" FROM "+table+" ORDER BY id")
	if err != nil {
		return nil, apperr.Storage("failed to list job listings", err)
	}
	defer rows.Close()

	jobs := []models.JobListing{}
	for rows.Next() {
		job, err := scanSQLite(rows)
		if err != nil {
			return nil, apperr.Storage("failed to scan job listing", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("failed to list job listings", err)
	}
	return jobs, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.JobListing, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+listColumns+" FROM "+table+" WHERE id = ?", id)
	job, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage("failed to get job listing", err)
	}
	return job, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return false, apperr.Storage("failed to delete job listing", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperr.Storage("failed to delete job listing", err)
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row scanner) (*models.JobListing, error) {
	var job models.JobListing
	var posted sql.NullString
	var days, applicants sql.NullInt64
	if err := row.Scan(&job.ID, &job.Title, &job.Company, &job.Location, &posted,
		&days, &job.JobURL, &applicants); err != nil {
		return nil, err
	}
	if posted.Valid && posted.String != "" {
		d, err := models.ParseDate(posted.String)
		if err != nil {
			return nil, err
		}
		job.DatePosted = &d
	}
	job.DaysSincePosted = intFromNull(days)
	job.Applicants = intFromNull(applicants)
	return &job, nil
}

func sqliteDate(d *models.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func intFromNull(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
