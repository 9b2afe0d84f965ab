// Shared types for the LinkedIn scrape: what a results card yields
// and what the pipeline needs from a browser session.

package scraper

import (
	"context"

	"github.com/DillanDevs/linkedin-scraping/internal/models"
)

// Candidate is one listing card as read from the search results page.
type Candidate struct {
	Title           string
	Company         string
	Location        string
	DatePosted      *models.Date
	DaysSincePosted *int
	RawURL          string
}

// PageFetcher loads a page and returns its rendered HTML.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Session is an authenticated browser session owned by a single pipeline run.
type Session interface {
	PageFetcher

	//Login authenticates against LinkedIn
	Login(ctx context.Context) error

	//Search opens the results page for keyword and scrolls it to trigger lazy loading
	Search(ctx context.Context, keyword string) error

	//Content is the HTML of the page currently open
	Content(ctx context.Context) (string, error)

	Close() error
}
