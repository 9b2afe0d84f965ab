package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/DillanDevs/linkedin-scraping/internal/apperr"
	"github.com/DillanDevs/linkedin-scraping/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS job_listings (
	id                BIGSERIAL PRIMARY KEY,
	title             VARCHAR(256) NOT NULL,
	company           VARCHAR(128) NOT NULL,
	location          VARCHAR(128) NOT NULL,
	date_posted       DATE,
	days_since_posted INTEGER,
	job_url           VARCHAR(512) NOT NULL UNIQUE,
	applicants        INTEGER
)`

type PostgresRepository struct {
	db *pgxpool.Pool
}

func ConnectDB(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// transaction-mode poolers (PgBouncer, Supabase) do not keep prepared statements
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &PostgresRepository{db: pool}, nil
}

func (r *PostgresRepository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, postgresSchema); err != nil {
		return apperr.Storage("failed to create job_listings", err)
	}
	return nil
}

func (r *PostgresRepository) UpsertBatch(ctx context.Context, jobs []models.JobListing) (int, error) {
	jobs = models.DedupeByURL(jobs)
	if len(jobs) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, apperr.Storage("failed to begin upsert", err)
	}
	//no-op once committed
	defer tx.Rollback(ctx)

	for _, chunk := range chunks(jobs, upsertBatch) {
		query := buildUpsert(len(chunk), func(n int) string { return "$" + strconv.Itoa(n) })
		args := make([]any, 0, len(chunk)*len(insertColumns))
		for _, job := range chunk {
			args = append(args, job.Title, job.Company, job.Location, pgDate(job.DatePosted),
				job.DaysSincePosted, job.JobURL, job.Applicants)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return 0, apperr.Storage("failed to upsert job listings", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, apperr.Storage("failed to commit upsert", err)
	}
	return len(jobs), nil
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]models.JobListing, error) {
	rows, err := r.db.Query(ctx, "SELECT "+listColumns+" FROM "+table+" ORDER BY id")
	if err != nil {
		return nil, apperr.Storage("failed to list job listings", err)
	}
	defer rows.Close()

	jobs := []models.JobListing{}
	for rows.Next() {
		job, err := scanPostgres(rows)
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

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.JobListing, error) {
	row := r.db.QueryRow(ctx, "SELECT "+listColumns+" FROM "+table+" WHERE id = $1", id)
	job, err := scanPostgres(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Storage("failed to get job listing", err)
	}
	return job, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
	if err != nil {
		return false, apperr.Storage("failed to delete job listing", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanPostgres(row pgx.Row) (*models.JobListing, error) {
	var job models.JobListing
	var posted *time.Time
	if err := row.Scan(&job.ID, &job.Title, &job.Company, &job.Location, &posted,
		&job.DaysSincePosted, &job.JobURL, &job.Applicants); err != nil {
		return nil, err
	}
	if posted != nil {
		d := models.NewDate(*posted)
		job.DatePosted = &d
	}
	return &job, nil
}

func pgDate(d *models.Date) any {
	if d == nil {
		return nil
	}
	return d.Time
}
