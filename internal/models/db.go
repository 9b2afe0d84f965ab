package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Date is a calendar date without a time component. It serializes as "YYYY-MM-DD".
type Date struct {
	time.Time
}

// NewDate drops the clock part of t, keeping the calendar day as seen in t's location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

const secondsPerDay = 24 * 60 * 60

// DaysBetween counts whole calendar days from d to now, never below zero.
func (d Date) DaysBetween(now time.Time) int {
	days := int((NewDate(now).Unix() - d.Unix()) / secondsPerDay)
	if days < 0 {
		return 0
	}
	return days
}

// JobListing is one row of job_listings. Nil pointers are NULL columns.
type JobListing struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Company         string `json:"company"`
	Location        string `json:"location"`
	DatePosted      *Date  `json:"date_posted"`
	DaysSincePosted *int   `json:"days_since_posted"`
	JobURL          string `json:"job_url"`
	Applicants      *int   `json:"applicants"`
}

// JobCreate is the API input for one listing.
type JobCreate struct {
	Title           string `json:"title" binding:"required,min=1,max=256"`
	Company         string `json:"company" binding:"required,min=1,max=128"`
	Location        string `json:"location" binding:"required,min=1,max=128"`
	DatePosted      *Date  `json:"date_posted"`
	DaysSincePosted *int   `json:"days_since_posted" binding:"omitempty,min=0"`
	JobURL          string `json:"job_url" binding:"required,http_url,max=512"`
	Applicants      *int   `json:"applicants" binding:"omitempty,min=0"`
}

func (j JobCreate) ToListing() JobListing {
	return JobListing{
		Title:           j.Title,
		Company:         j.Company,
		Location:        j.Location,
		DatePosted:      j.DatePosted,
		DaysSincePosted: j.DaysSincePosted,
		JobURL:          j.JobURL,
		Applicants:      j.Applicants,
	}
}

func IntPtr(v int) *int {
	return &v
}

// DedupeByURL keeps one listing per job_url. The last occurrence wins but
// keeps the position of the first, since one upsert statement cannot touch
// the same row twice.
func DedupeByURL(jobs []JobListing) []JobListing {
	index := make(map[string]int, len(jobs))
	out := make([]JobListing, 0, len(jobs))
	for _, job := range jobs {
		if i, seen := index[job.JobURL]; seen {
			out[i] = job
			continue
		}
		index[job.JobURL] = len(out)
		out = append(out, job)
	}
	return out
}
