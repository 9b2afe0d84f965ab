// Package snapshot writes and reads the CSV copy of a run's listings,
// the recovery point taken before the database upsert.
package snapshot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/DillanDevs/linkedin-scraping/internal/models"
)

var header = []string{"title", "company", "location", "date_posted", "days_since_posted", "job_url", "applicants"}

// Write replaces path with a CSV of jobs. The file is written next to path
// and renamed, so readers never see a half written snapshot.
func Write(path string, jobs []models.JobListing) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create snapshot dir: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set snapshot permissions: %w", err)
	}
	if err := WriteTo(tmp, jobs); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move snapshot into place: %w", err)
	}
	return nil
}

func WriteTo(w io.Writer, jobs []models.JobListing) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, job := range jobs {
		if err := writer.Write(row(job)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func row(job models.JobListing) []string {
	posted := ""
	if job.DatePosted != nil {
		posted = job.DatePosted.String()
	}
	return []string{
		job.Title,
		job.Company,
		job.Location,
		posted,
		optionalInt(job.DaysSincePosted),
		job.JobURL,
		optionalInt(job.Applicants),
	}
}

func Read(path string) ([]models.JobListing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()
	return ReadFrom(f)
}

// ReadFrom parses a snapshot. Columns are matched by header name, so extra
// columns and a different order are fine; empty cells become nil.
func ReadFrom(r io.Reader) ([]models.JobListing, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	head, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot header: %w", err)
	}
	cols := make(map[string]int, len(head))
	for i, name := range head {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range []string{"title", "job_url"} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("snapshot is missing column %q", name)
		}
	}

	var jobs []models.JobListing
	line := 1
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("snapshot line %d: %w", line, err)
		}
		job, err := parseRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("snapshot line %d: %w", line, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func parseRow(rec []string, cols map[string]int) (models.JobListing, error) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	job := models.JobListing{
		Title:    get("title"),
		Company:  get("company"),
		Location: get("location"),
		JobURL:   get("job_url"),
	}
	if v := get("date_posted"); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			return job, err
		}
		job.DatePosted = &d
	}
	var err error
	if job.DaysSincePosted, err = parseOptionalInt(get("days_since_posted")); err != nil {
		return job, fmt.Errorf("days_since_posted: %w", err)
	}
	if job.Applicants, err = parseOptionalInt(get("applicants")); err != nil {
		return job, fmt.Errorf("applicants: %w", err)
	}
	return job, nil
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// parseOptionalInt accepts "12" and "12.0"; some exporters write nullable ints as floats.
func parseOptionalInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	s = strings.TrimSuffix(s, ".0")
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
