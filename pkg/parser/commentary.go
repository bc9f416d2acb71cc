package parser

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/myusername/cricket-commentary-scraper/pkg/models"
)

const (
	commentaryBlockSel  = "div.ds-text-article-body-1.ds-flex.ds-items-start"
	commentaryHeaderSel = "div.ds-text-overline-1.ds-font-medium"

	// CommentaryDelimiter joins several commentary fragments of one block
	CommentaryDelimiter = "#**#"
	photoMarker         = "see all photo"
)

// promotional widgets rendered inline with the ball tags
var tagBlacklist = []string{"photos", "see all", "image", "gallery"}

// ParseCommentary extracts one row per commentary block, in document order.
// A page without any commentary block yields ErrNoCommentaryBlocks.
func (p *Parser) ParseCommentary(htmlContent string) ([]models.CommentaryRow, error) {
	doc, err := parseDocument(htmlContent)
	if err != nil {
		return nil, err
	}

	blocks := doc.Find(commentaryBlockSel)
	p.log.Info("found commentary blocks", "count", blocks.Length())
	if blocks.Length() == 0 {
		p.log.Error("no commentary blocks found")
		return nil, ErrNoCommentaryBlocks
	}

	var rows []models.CommentaryRow
	blocks.Each(func(idx int, block *goquery.Selection) {
		row := p.parseBlock(idx, block)
		if row.NonEmpty() < 2 {
			p.log.Debug("skipping sparse commentary block", "block", idx)
			return
		}
		rows = append(rows, row)
	})

	p.log.Info("parsed commentary entries", "count", len(rows))
	return rows, nil
}

func (p *Parser) parseBlock(idx int, block *goquery.Selection) models.CommentaryRow {
	header := strippedText(block.Find(commentaryHeaderSel).First(), "")

	var tags []string
	block.Find("span").Each(func(_ int, span *goquery.Selection) {
		text := strippedText(span, "")
		if containsAny(strings.ToLower(text), tagBlacklist) {
			return
		}
		tags = append(tags, text)
	})

	var fragments []string
	for _, sel := range []string{"p", "strong"} {
		block.Find(sel).Each(func(_ int, s *goquery.Selection) {
			fragments = append(fragments, strings.ReplaceAll(strippedText(s, ""), ",", "-"))
		})
	}
	commentary := strings.Join(fragments, CommentaryDelimiter)

	if strings.TrimSpace(commentary) == "" {
		remaining := strippedText(block, " ")
		if header != "" {
			remaining = strings.Replace(remaining, header, "", 1)
		}
		for _, tag := range tags {
			remaining = strings.Replace(remaining, tag, "", 1)
		}
		if remaining = strings.TrimSpace(remaining); remaining != "" {
			commentary = remaining
			p.log.Debug("used block text fallback", "block", idx)
		}
	}

	row := make(models.CommentaryRow, 0, len(tags)+3)
	row = append(row, strconv.Itoa(idx))
	if header != "" {
		row = append(row, header)
	}
	row = append(row, tags...)
	row = append(row, commentary)

	return CleanPhotoMarkers(row)
}

// CleanPhotoMarkers drops inline "See all photos" fields. A marker followed by a
// blank field takes that field with it; a marker followed by data leaves the data.
func CleanPhotoMarkers(row models.CommentaryRow) models.CommentaryRow {
	if len(row) == 0 {
		return row
	}

	cleaned := make(models.CommentaryRow, 0, len(row))
	for i := 0; i < len(row); i++ {
		current := row[i]
		if !strings.Contains(strings.ToLower(current), photoMarker) {
			cleaned = append(cleaned, current)
			continue
		}
		if i+1 < len(row) && strings.TrimSpace(row[i+1]) == "" {
			i++
		}
	}
	return cleaned
}

// ParseInnings runs the whole commentary chain for one innings view: block
// parsing, column normalization and table mapping.
func (p *Parser) ParseInnings(htmlContent, innings string, matchID int64) ([]models.CommentaryRecord, error) {
	rows, err := p.ParseCommentary(htmlContent)
	if err != nil {
		return nil, err
	}
	normalized := p.normalize(rows)
	return p.ToRecords(normalized, innings, matchID)
}
