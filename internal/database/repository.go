package database

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/DillanDevs/linkedin-scraping/internal/models"
)

// Repository persists job listings keyed by their normalized job_url.
type Repository interface {
	// UpsertBatch writes every listing in one transaction. A listing whose
	// job_url already exists overwrites all columns of that row except id.
	// Repeated job_urls inside jobs collapse to the last one. On error
	// nothing from the batch is kept. It returns the number of rows written.
	UpsertBatch(ctx context.Context, jobs []models.JobListing) (int, error)
	ListAll(ctx context.Context) ([]models.JobListing, error)
	// GetByID returns nil, nil when no row has that id.
	GetByID(ctx context.Context, id int64) (*models.JobListing, error)
	// Delete reports false, nil when no row has that id.
	Delete(ctx context.Context, id int64) (bool, error)
	EnsureSchema(ctx context.Context) error
	Close()
}

// Open picks the backend from the URL scheme: sqlite://path or postgres(ql)://.
// Driver suffixed schemes such as postgresql+psycopg2:// are accepted.
func Open(ctx context.Context, databaseURL string) (Repository, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	scheme, _, _ := strings.Cut(strings.ToLower(u.Scheme), "+")
	switch scheme {
	case "sqlite", "sqlite3":
		return OpenSQLite(ctx, sqlitePath(databaseURL))
	case "postgres", "postgresql":
		u.Scheme = "postgres"
		return ConnectDB(ctx, u.String())
	default:
		return nil, fmt.Errorf("unsupported database scheme %q", u.Scheme)
	}
}

func sqlitePath(databaseURL string) string {
	_, rest, _ := strings.Cut(databaseURL, "://")
	return rest
}

const (
	table       = "job_listings"
	listColumns = "id, title, company, location, date_posted, days_since_posted, job_url, applicants"
	upsertBatch = 1000
)

var insertColumns = []string{"title", "company", "location", "date_posted", "days_since_posted", "job_url", "applicants"}

// buildUpsert renders one multi-row INSERT ... ON CONFLICT (job_url) DO UPDATE
// for rows listings, numbering placeholders with placeholder(n), n starting at 1.
func buildUpsert(rows int, placeholder func(n int) string) string {
	var b strings.Builder
	b.WriteString("INSERT INTO " + table + " (" + strings.Join(insertColumns, ", ") + ") VALUES ")

	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for c := range insertColumns {
			if c > 0 {
				b.WriteString(", ")
			}
			b.WriteString(placeholder(n))
			n++
		}
		b.WriteString(")")
	}

	b.WriteString(" ON CONFLICT (job_url) DO UPDATE SET ")
	var sets []string
	for _, col := range insertColumns {
		if col == "job_url" {
			continue
		}
		sets = append(sets, col+" = EXCLUDED."+col)
	}
	b.WriteString(strings.Join(sets, ", "))
	return b.String()
}

func chunks(jobs []models.JobListing, size int) [][]models.JobListing {
	var out [][]models.JobListing
	for start := 0; start < len(jobs); start += size {
		end := start + size
		if end > len(jobs) {
			end = len(jobs)
		}
		out = append(out, jobs[start:end])
	}
	return out
}
