package scraper

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"
)

const applicantsSelector = ".num-applicants__caption"

var integerPattern = regexp.MustCompile(`\d+`)

// Applicants is the outcome of an applicant lookup: a count, or unavailable.
type Applicants struct {
	count int
	found bool
}

// Unavailable means the count could not be read. It is not zero.
var Unavailable = Applicants{}

func Found(count int) Applicants {
	return Applicants{count: count, found: true}
}

func (a Applicants) Count() (int, bool) {
	return a.count, a.found
}

func (a Applicants) Ptr() *int {
	if !a.found {
		return nil
	}
	n := a.count
	return &n
}

// Enricher reads applicant counts from job detail pages.
type Enricher struct {
	fetcher  PageFetcher
	attempts int
	delay    time.Duration
	logger   zerolog.Logger
}

// NewEnricher builds an Enricher making at most attempts fetches per listing,
// waiting delay between them.
func NewEnricher(fetcher PageFetcher, attempts int, delay time.Duration, logger zerolog.Logger) *Enricher {
	if attempts < 1 {
		attempts = 1
	}
	return &Enricher{fetcher: fetcher, attempts: attempts, delay: delay, logger: logger}
}

// Enrich never fails: fetch errors are retried and then reported as Unavailable.
func (e *Enricher) Enrich(ctx context.Context, url string) Applicants {
	var html string
	err := retry.Do(
		func() error {
			page, err := e.fetcher.Fetch(ctx, url)
			if err != nil {
				return err
			}
			html = page
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(e.attempts)),
		retry.Delay(e.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			e.logger.Warn().Err(err).Str("url", url).Uint("attempt", n+1).Msg("⚠️ applicant lookup failed, retrying")
		}),
	)
	if err != nil {
		e.logger.Warn().Err(err).Str("url", url).Int("attempts", e.attempts).Msg("⚠️ applicant count unavailable")
		return Unavailable
	}
	return ParseApplicants(html)
}

// ParseApplicants takes the last integer in the applicants caption,
// so "25 of 40 applicants" yields 40.
func ParseApplicants(html string) Applicants {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Unavailable
	}
	caption := doc.Find(applicantsSelector).First()
	if caption.Length() == 0 {
		return Unavailable
	}
	numbers := integerPattern.FindAllString(caption.Text(), -1)
	if len(numbers) == 0 {
		return Unavailable
	}
	n, err := strconv.Atoi(numbers[len(numbers)-1])
	if err != nil {
		return Unavailable
	}
	return Found(n)
}
