package scraper

import "github.com/DillanDevs/linkedin-scraping/internal/models"

// Assemble merges a card with its applicant lookup into a storable listing.
func Assemble(c Candidate, a Applicants) models.JobListing {
	return models.JobListing{
		Title:           c.Title,
		Company:         c.Company,
		Location:        c.Location,
		DatePosted:      c.DatePosted,
		DaysSincePosted: c.DaysSincePosted,
		JobURL:          NormalizeURL(c.RawURL),
		Applicants:      a.Ptr(),
	}
}

// AssembleBatch pairs candidates[i] with results[i]. Missing results count as Unavailable.
func AssembleBatch(candidates []Candidate, results []Applicants) []models.JobListing {
	jobs := make([]models.JobListing, 0, len(candidates))
	for i, c := range candidates {
		a := Unavailable
		if i < len(results) {
			a = results[i]
		}
		jobs = append(jobs, Assemble(c, a))
	}
	return jobs
}
