package database

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/DillanDevs/linkedin-scraping/internal/apperr"
	"github.com/DillanDevs/linkedin-scraping/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withSQLiteRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	ctx := context.Background()
	repo, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(repo.Close)
	require.NoError(t, repo.EnsureSchema(ctx))
	return repo
}

func listing(url, title string) models.JobListing {
	posted, _ := models.ParseDate("2024-01-10")
	return models.JobListing{
		Title:           title,
		Company:         "Acme",
		Location:        "Remote",
		DatePosted:      &posted,
		DaysSincePosted: models.IntPtr(5),
		JobURL:          url,
		Applicants:      models.IntPtr(30),
	}
}

func TestUpsertBatchIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := withSQLiteRepo(t)
	batch := []models.JobListing{
		listing("https://www.linkedin.com/jobs/view/1", "Python Developer"),
		listing("https://www.linkedin.com/jobs/view/2", "Go Developer"),
	}

	n, err := repo.UpsertBatch(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	first, err := repo.ListAll(ctx)
	require.NoError(t, err)

	_, err = repo.UpsertBatch(ctx, batch)
	require.NoError(t, err)
	second, err := repo.ListAll(ctx)
	require.NoError(t, err)

	require.Len(t, second, 2)
	assert.Equal(t, first, second)
}

func TestUpsertBatchOverwritesOnConflict(t *testing.T) {
	ctx := context.Background()
	repo := withSQLiteRepo(t)
	url := "https://www.linkedin.com/jobs/view/1"

	_, err := repo.UpsertBatch(ctx, []models.JobListing{listing(url, "A")})
	require.NoError(t, err)

	updated := models.JobListing{Title: "B", Company: "Initech", Location: "Berlin", JobURL: url}
	_, err = repo.UpsertBatch(ctx, []models.JobListing{updated})
	require.NoError(t, err)

	jobs, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	got := jobs[0]
	assert.Equal(t, "B", got.Title)
	assert.Equal(t, "Initech", got.Company)
	assert.Equal(t, "Berlin", got.Location)
	assert.Nil(t, got.DatePosted, "full replace clears columns the new record leaves empty")
	assert.Nil(t, got.DaysSincePosted)
	assert.Nil(t, got.Applicants)
}

func TestUpsertBatchCollapsesRepeatedURLs(t *testing.T) {
	ctx := context.Background()
	repo := withSQLiteRepo(t)
	url := "https://www.linkedin.com/jobs/view/9"

	n, err := repo.UpsertBatch(ctx, []models.JobListing{
		listing(url, "first"),
		listing("https://www.linkedin.com/jobs/view/10", "other"),
		listing(url, "last"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	jobs, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, url, jobs[0].JobURL)
	assert.Equal(t, "last", jobs[0].Title)
}

func TestUpsertBatchRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	repo := withSQLiteRepo(t)
	_, err := repo.db.ExecContext(ctx, `CREATE TRIGGER reject_boom BEFORE INSERT ON job_listings
		WHEN NEW.title = 'boom' BEGIN SELECT RAISE(ABORT, 'rejected'); END`)
	require.NoError(t, err)

	_, err = repo.UpsertBatch(ctx, []models.JobListing{
		listing("https://www.linkedin.com/jobs/view/1", "fine"),
		listing("https://www.linkedin.com/jobs/view/2", "boom"),
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindStorage))

	jobs, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestUpsertBatchLargerThanOneChunk(t *testing.T) {
	ctx := context.Background()
	repo := withSQLiteRepo(t)

	var batch []models.JobListing
	for i := 0; i < upsertBatch+5; i++ {
		batch = append(batch, listing("https://www.linkedin.com/jobs/view/"+strconv.Itoa(i), "job"))
	}
	n, err := repo.UpsertBatch(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, len(batch), n)

	jobs, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, jobs, len(batch))
}

func TestGetByIDAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := withSQLiteRepo(t)
	_, err := repo.UpsertBatch(ctx, []models.JobListing{listing("https://www.linkedin.com/jobs/view/7", "SRE")})
	require.NoError(t, err)

	jobs, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	id := jobs[0].ID

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "SRE", got.Title)
	assert.Equal(t, "2024-01-10", got.DatePosted.String())
	assert.Equal(t, 30, *got.Applicants)

	missing, err := repo.GetByID(ctx, id+100)
	require.NoError(t, err)
	assert.Nil(t, missing)

	deleted, err := repo.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, deleted)

	gone, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestOpenPicksBackend(t *testing.T) {
	ctx := context.Background()

	repo, err := Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "open.db"))
	require.NoError(t, err)
	defer repo.Close()
	assert.IsType(t, &SQLiteRepository{}, repo)

	_, err = Open(ctx, "mysql://localhost/jobs")
	assert.Error(t, err)
}

func TestBuildUpsert(t *testing.T) {
	query := buildUpsert(2, func(int) string { return "?" })

	assert.True(t, strings.HasPrefix(query, "INSERT INTO job_listings (title, company, location, date_posted, days_since_posted, job_url, applicants) VALUES (?, ?, ?, ?, ?, ?, ?), (?, ?, ?, ?, ?, ?, ?)"))
	assert.Contains(t, query, "ON CONFLICT (job_url) DO UPDATE SET title = EXCLUDED.title")
	assert.Contains(t, query, "applicants = EXCLUDED.applicants")
	assert.NotContains(t, query, "job_url = EXCLUDED")
	assert.NotContains(t, query, "id = EXCLUDED.id")
}
