package parser

import (
	"github.com/myusername/cricket-commentary-scraper/pkg/models"
)

// TargetWidth returns the most common row length. On a tie the larger width wins.
func TargetWidth(rows []models.CommentaryRow) int {
	counts := make(map[int]int)
	for _, row := range rows {
		counts[len(row)]++
	}

	target, best := 0, 0
	for width, count := range counts {
		if count > best || (count == best && width > target) {
			target, best = width, count
		}
	}
	return target
}

// NormalizeColumns returns copies of rows all sized to TargetWidth. Short rows are
// padded with empty fields just before their last field, long rows are truncated.
func NormalizeColumns(rows []models.CommentaryRow) []models.CommentaryRow {
	if len(rows) == 0 {
		return nil
	}

	target := TargetWidth(rows)
	normalized := make([]models.CommentaryRow, 0, len(rows))
	for _, row := range rows {
		normalized = append(normalized, fitWidth(row, target))
	}
	return normalized
}

func fitWidth(row models.CommentaryRow, target int) models.CommentaryRow {
	out := make(models.CommentaryRow, 0, target)
	switch {
	case len(row) == 0:
		out = append(out, make([]string, target)...)
	case len(row) < target:
		out = append(out, row[:len(row)-1]...)
		out = append(out, make([]string, target-len(row))...)
		out = append(out, row[len(row)-1])
	default:
		out = append(out, row[:target]...)
	}
	return out
}

func (p *Parser) normalize(rows []models.CommentaryRow) []models.CommentaryRow {
	distribution := make(map[int]int)
	for _, row := range rows {
		distribution[len(row)]++
	}
	normalized := NormalizeColumns(rows)
	p.log.Info("normalized commentary columns",
		"distribution", distribution,
		"width", TargetWidth(rows),
		"rows", len(normalized))
	return normalized
}
