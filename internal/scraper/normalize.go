package scraper

import (
	"net/url"
	"regexp"
	"strings"
)

// matches /jobs/view/123 and the slug form /jobs/view/golang-developer-at-acme-123
var jobViewPattern = regexp.MustCompile(`/jobs/view/(?:[^/?#]*-)?(\d+)(?:/|$)`)

// NormalizeURL turns a raw listing URL into its identity key. Tracking query
// params and fragments are dropped and job view links collapse to
// scheme://host/jobs/view/<id>. Malformed input falls back to the text before
// the first '?' or '#'.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return stripQuery(raw)
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	if m := jobViewPattern.FindStringSubmatch(u.Path); m != nil {
		return scheme + "://" + host + "/jobs/view/" + m[1]
	}
	return scheme + "://" + host + u.EscapedPath()
}

func stripQuery(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		return raw[:i]
	}
	return raw
}
