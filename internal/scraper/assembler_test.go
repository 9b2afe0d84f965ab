package scraper

import (
	"testing"

	"github.com/DillanDevs/linkedin-scraping/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemble(t *testing.T) {
	posted, err := models.ParseDate("2024-01-10")
	require.NoError(t, err)

	c := Candidate{
		Title:           "Python Developer",
		Company:         "Acme",
		Location:        "Remote",
		DatePosted:      &posted,
		DaysSincePosted: models.IntPtr(3),
		RawURL:          "https://www.linkedin.com/jobs/view/555/?refId=abc",
	}

	job := Assemble(c, Found(12))
	assert.Equal(t, "https://www.linkedin.com/jobs/view/555", job.JobURL)
	assert.Equal(t, "Python Developer", job.Title)
	assert.Equal(t, &posted, job.DatePosted)
	require.NotNil(t, job.Applicants)
	assert.Equal(t, 12, *job.Applicants)
	assert.Zero(t, job.ID)

	assert.Nil(t, Assemble(c, Unavailable).Applicants)
}

func TestAssembleBatchShortResults(t *testing.T) {
	cands := []Candidate{
		{Title: "A", RawURL: "https://www.linkedin.com/jobs/view/1"},
		{Title: "B", RawURL: "https://www.linkedin.com/jobs/view/2"},
	}

	jobs := AssembleBatch(cands, []Applicants{Found(5)})
	require.Len(t, jobs, 2)
	assert.Equal(t, 5, *jobs[0].Applicants)
	assert.Nil(t, jobs[1].Applicants)
}
