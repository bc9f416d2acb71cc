package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	// dagger and the mojibake left behind when it is decoded as cp1252
	nameArtifactRegex  = regexp.MustCompile("[\u00e2\u20ac\u00a0\u2020*]")
	nameRoleRegex      = regexp.MustCompile(`(?i)\(c\)|\(wk\)`)
	nameTrailingPunct  = regexp.MustCompile(`[,;]+$`)
	nameLeadingPunct   = regexp.MustCompile(`^[,;]+`)
	teamTrailingInning = regexp.MustCompile(`(?i)\s*(\d+(st|nd|rd|th)?\s+)?Innings\s*$`)
	teamLeadingInning  = regexp.MustCompile(`(?i)^\d+(st|nd|rd|th)?\s+Innings\s*`)
)

var headerLabels = map[string]bool{
	"batter":  true,
	"batsman": true,
	"batters": true,
	"name":    true,
	"bowler":  true,
}

// CleanPlayerName strips role markers, stray punctuation and encoding debris from a
// scraped player name. It reports false when nothing usable remains.
func CleanPlayerName(name string) (string, bool) {
	if name == "" {
		return "", false
	}

	name = nameArtifactRegex.ReplaceAllString(name, "")
	name = nameRoleRegex.ReplaceAllString(name, "")
	name = nameTrailingPunct.ReplaceAllString(name, "")
	name = nameLeadingPunct.ReplaceAllString(name, "")
	name = collapseSpaces(name)

	if headerLabels[strings.ToLower(name)] {
		return "", false
	}
	if len([]rune(name)) <= 1 {
		return "", false
	}
	return name, true
}

// CleanTeamName removes an innings ordinal phrase from either end of a team label
// ("2nd Innings India", "India 1st Innings") and rejects anything under 3 characters.
func CleanTeamName(name string) (string, bool) {
	if name == "" {
		return "", false
	}

	name = teamTrailingInning.ReplaceAllString(name, "")
	name = teamLeadingInning.ReplaceAllString(name, "")
	name = collapseSpaces(name)

	if len([]rune(name)) <= 2 {
		return "", false
	}
	return name, true
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// strippedText joins every trimmed, non-empty text node under the selection with sep
func strippedText(s *goquery.Selection, sep string) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return strings.Join(parts, sep)
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
