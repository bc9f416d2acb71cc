// Package scraper fetches match pages and turns schedule pages into match links
package scraper

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
)

const (
	// SiteURL prefixes relative match links found on schedule pages
	SiteURL = "https://www.espncricinfo.com"

	matchLinkSel       = "a.ds-no-tap-higlight"
	notStartedMarker   = "Match yet to begin"
	scorecardSuffix    = "/full-scorecard"
	commentarySuffix   = "/ball-by-ball-commentary"
	unknownDate        = "UnknownDate"
	matchDaysKey       = "Match days"
	defaultMatchSlug   = "match"
	fetchTimeout       = 30 * time.Second
	matchDateLayout    = "2 January 2006"
	folderDateLayout   = "20060102"
	maxFetchBodyLength = 32 << 20
)

var (
	// ErrNoMatchID means a link carries no numeric match identifier
	ErrNoMatchID = errors.New("no match id in url")

	matchIDRegex   = regexp.MustCompile(`-(\d+)/full-scorecard`)
	matchDateRegex = regexp.MustCompile(`(\d{1,2} \w+ \d{4})`)
)

// FetchURL downloads the HTML content from a URL and returns it as a string
func FetchURL(ctx context.Context, rawURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", errors.Wrapf(err, "build request for %s", rawURL)
	}

	client := &http.Client{Timeout: fetchTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "fetch %s", rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := errors.Newf("fetch %s: non-200 status code: %d %s", rawURL, resp.StatusCode, resp.Status)
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			err = errors.Mark(err, ErrTransient)
		}
		return "", err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBodyLength))
	if err != nil {
		return "", errors.Wrapf(err, "read body of %s", rawURL)
	}
	return string(body), nil
}

// SaveContentToFile saves content to a file
func SaveContentToFile(filename string, content string) error {
	if err := os.WriteFile(filename, []byte(content), 0o644); err != nil {
		return errors.Wrapf(err, "write %s", filename)
	}
	return nil
}

// ExtractMatchLinks collects the match links of a schedule page, absolute and
// deduplicated in page order. Links of matches that have not started are skipped.
func ExtractMatchLinks(htmlContent string, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, errors.Wrap(err, "parse schedule html")
	}

	links := doc.Find(matchLinkSel)
	if links.Length() == 0 {
		links = doc.Find("a[href]")
	}

	seen := make(map[string]bool)
	var out []string
	links.Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" || strings.Contains(href, notStartedMarker) {
			return
		}
		full := ResolveRelativeURL(baseURL, href)
		if !seen[full] {
			seen[full] = true
			out = append(out, full)
		}
	})
	return out, nil
}

// ResolveRelativeURL resolves a relative URL against baseURL. Root-relative links
// resolve against the site when baseURL is empty or unparsable.
func ResolveRelativeURL(baseURL, relativeURL string) string {
	if strings.HasPrefix(relativeURL, "http://") || strings.HasPrefix(relativeURL, "https://") {
		return relativeURL
	}
	if baseURL == "" {
		baseURL = SiteURL
	}

	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		base, _ = url.Parse(SiteURL)
	}
	ref, err := url.Parse(relativeURL)
	if err != nil {
		return SiteURL + relativeURL
	}
	return base.ResolveReference(ref).String()
}

// ExtractMatchID pulls the numeric match identifier out of a full scorecard URL
func ExtractMatchID(matchURL string) (int64, error) {
	m := matchIDRegex.FindStringSubmatch(matchURL)
	if len(m) < 2 {
		return 0, errors.Wrapf(ErrNoMatchID, "%s", matchURL)
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrNoMatchID, "%s: %v", matchURL, err)
	}
	return id, nil
}

// CommentaryURL maps a full scorecard URL onto its ball-by-ball commentary page
func CommentaryURL(scorecardURL string) string {
	return strings.Replace(scorecardURL, scorecardSuffix, commentarySuffix, 1)
}

// FolderName names a match directory as YYYYMMDD_<match slug>, taking the date from
// the "Match days" detail and the slug from the fourth path segment of the URL.
func FolderName(details map[string]string, matchURL string) string {
	datePart := unknownDate
	if m := matchDateRegex.FindStringSubmatch(details[matchDaysKey]); len(m) > 1 {
		if d, err := time.Parse(matchDateLayout, m[1]); err == nil {
			datePart = d.Format(folderDateLayout)
		}
	}

	slug := defaultMatchSlug
	if u, err := url.Parse(matchURL); err == nil {
		if parts := strings.Split(u.Path, "/"); len(parts) > 3 {
			slug = parts[3]
		}
	}
	return strings.ReplaceAll(datePart+"_"+slug, " ", "_")
}
