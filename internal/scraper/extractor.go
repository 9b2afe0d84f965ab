package scraper

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/DillanDevs/linkedin-scraping/internal/models"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

const linkedInBaseURL = "https://www.linkedin.com"

// LinkedIn search result card selectors.
const (
	cardSelector     = "div.base-search-card"
	linkSelector     = "a.base-card__full-link"
	titleSelector    = "h3.base-search-card__title"
	companySelector  = "h4.base-search-card__subtitle"
	locationSelector = "span.job-search-card__location"
	dateSelector     = "time[datetime]"
)

// ExtractListings reads search result cards from html in document order and
// stops once limit candidates are collected. limit <= 0 means no cap.
// Cards without a link or a title are skipped.
func ExtractListings(html string, limit int, now time.Time) ([]Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	var candidates []Candidate
	doc.Find(cardSelector).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		c, ok := parseCard(card, now)
		if ok {
			candidates = append(candidates, c)
		}
		return limit <= 0 || len(candidates) < limit
	})
	return candidates, nil
}

func parseCard(card *goquery.Selection, now time.Time) (Candidate, bool) {
	href := strings.TrimSpace(card.Find(linkSelector).First().AttrOr("href", ""))
	title := cleanText(card.Find(titleSelector).First().Text())
	if href == "" || title == "" {
		return Candidate{}, false
	}

	c := Candidate{
		Title:    title,
		Company:  cleanText(card.Find(companySelector).First().Text()),
		Location: cleanText(card.Find(locationSelector).First().Text()),
		RawURL:   absoluteURL(href),
	}

	if raw, ok := card.Find(dateSelector).First().Attr("datetime"); ok {
		if posted, err := parsePostedAt(raw); err == nil {
			d := models.NewDate(posted)
			days := d.DaysBetween(now)
			c.DatePosted = &d
			c.DaysSincePosted = &days
		}
	}
	return c, true
}

func cleanText(value string) string {
	return norm.NFC.String(strings.Join(strings.Fields(value), " "))
}

func absoluteURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	base, _ := url.Parse(linkedInBaseURL)
	ref, err := url.Parse(href)
	if err != nil {
		return linkedInBaseURL + href
	}
	return base.ResolveReference(ref).String()
}

func parsePostedAt(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	layouts := []string{
		models.DateLayout,
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05-0700",
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format: %s", value)
}
