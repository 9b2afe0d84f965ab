package scraper

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type fakeFetcher struct {
	failures int
	html     string
	calls    int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", errors.New("navigation timeout")
	}
	return f.html, nil
}

const detailPage = `<html><body>
<figure class="num-applicants__figure">
  <figcaption class="num-applicants__caption">Be among the first 25 of 40 applicants</figcaption>
</figure>
</body></html>`

func TestEnricherRetriesThenSucceeds(t *testing.T) {
	f := &fakeFetcher{failures: 1, html: detailPage}
	e := NewEnricher(f, 2, 0, zerolog.Nop())

	got := e.Enrich(context.Background(), "https://www.linkedin.com/jobs/view/1")

	n, ok := got.Count()
	assert.True(t, ok)
	assert.Equal(t, 40, n)
	assert.Equal(t, 2, f.calls)
}

func TestEnricherExhaustedIsUnavailable(t *testing.T) {
	f := &fakeFetcher{failures: 10, html: detailPage}
	e := NewEnricher(f, 2, 0, zerolog.Nop())

	got := e.Enrich(context.Background(), "https://www.linkedin.com/jobs/view/1")

	assert.Equal(t, Unavailable, got)
	assert.Nil(t, got.Ptr())
	assert.Equal(t, 2, f.calls)
}

func TestEnricherAtLeastOneAttempt(t *testing.T) {
	f := &fakeFetcher{html: detailPage}
	e := NewEnricher(f, 0, 0, zerolog.Nop())

	_, ok := e.Enrich(context.Background(), "u").Count()
	assert.True(t, ok)
	assert.Equal(t, 1, f.calls)
}

func TestParseApplicants(t *testing.T) {
	tests := []struct {
		name string
		html string
		want Applicants
	}{
		{"span caption", `<span class="num-applicants__caption">87 applicants</span>`, Found(87)},
		{"last integer wins", detailPage, Found(40)},
		{"over phrasing", `<span class="num-applicants__caption">Over 200 applicants</span>`, Found(200)},
		{"no digits", `<span class="num-applicants__caption">Be an early applicant</span>`, Unavailable},
		{"no caption", `<div class="jobs-unified-top-card">Apply</div>`, Unavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseApplicants(tt.html))
		})
	}
}

func TestEnricherMissingCaptionIsNotRetried(t *testing.T) {
	f := &fakeFetcher{html: "<html><body>nothing here</body></html>"}
	e := NewEnricher(f, 3, 0, zerolog.Nop())

	assert.Equal(t, Unavailable, e.Enrich(context.Background(), "u"))
	assert.Equal(t, 1, f.calls)
}
