package parser

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/myusername/cricket-commentary-scraper/pkg/models"
)

const (
	detailsRowSel = "div.ds-border-color-border-secondary.ds-flex.ds-border-t"
	venueKey      = "Venue"
)

// ExtractMetadata reads the match details panel into a label/value mapping.
// MatchID is always present, even when the panel is missing.
func (p *Parser) ExtractMetadata(htmlContent string, matchID int64) map[string]string {
	id := strconv.FormatInt(matchID, 10)
	metadata := map[string]string{}

	doc, err := parseDocument(htmlContent)
	if err != nil {
		p.log.Error("error extracting metadata", "match_id", matchID, "error", err)
		metadata[models.MatchIDKey] = id
		return metadata
	}

	rows := doc.Find(detailsRowSel)
	if rows.Length() == 0 {
		p.log.Warn("match details panel not found", "match_id", matchID)
		metadata[models.MatchIDKey] = id
		return metadata
	}

	rows.Each(func(_ int, row *goquery.Selection) {
		spans := row.Find("span")
		switch {
		case spans.Length() >= 2:
			key := strippedText(spans.First(), "")
			var parts []string
			spans.Slice(1, spans.Length()).Each(func(_ int, s *goquery.Selection) {
				parts = append(parts, strippedText(s, ""))
			})
			value := strings.TrimSpace(strings.Join(parts, " "))
			if key != "" && value != "" {
				metadata[key] = value
				p.log.Debug("extracted metadata field", "key", key, "value", value)
			}
		case spans.Length() == 1:
			text := strippedText(spans, "")
			if _, ok := metadata[venueKey]; text != "" && !ok {
				metadata[venueKey] = text
			}
		}
	})

	metadata[models.MatchIDKey] = id
	p.log.Info("extracted metadata fields", "match_id", matchID, "count", len(metadata))
	return metadata
}
