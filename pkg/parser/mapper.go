package parser

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/myusername/cricket-commentary-scraper/pkg/models"
)

// Schema names the column layout of a normalized commentary batch
type Schema int

const (
	// SchemaSix is [match_ball_number, event, ball, runs_wicket, extra, commentary]
	SchemaSix Schema = 6
	// SchemaSeven is [match_ball_number, event, ball, runs_wicket, photo, extra, commentary]
	SchemaSeven Schema = 7
)

const (
	eventSeparator = " to "
	superOverLabel = "Super Over"
)

// SchemaForWidth maps a row width onto its schema
func SchemaForWidth(width int) (Schema, error) {
	switch width {
	case int(SchemaSix):
		return SchemaSix, nil
	case int(SchemaSeven):
		return SchemaSeven, nil
	default:
		return 0, errors.Wrapf(ErrStructuralMismatch, "width %d", width)
	}
}

// Width is the number of columns rows of this schema carry
func (s Schema) Width() int {
	return int(s)
}

// ToRecords maps a normalized batch onto commentary records. An empty batch is an
// empty success; a batch whose width has no schema fails as a whole with
// ErrStructuralMismatch and yields no records.
func (p *Parser) ToRecords(rows []models.CommentaryRow, innings string, matchID int64) ([]models.CommentaryRecord, error) {
	if len(rows) == 0 {
		p.log.Warn("no commentary rows to map", "innings", innings)
		return nil, nil
	}

	width := len(rows[0])
	for _, row := range rows[1:] {
		if len(row) != width {
			p.log.Error("commentary rows are not normalized", "innings", innings, "width", width, "other", len(row))
			return nil, errors.Wrapf(ErrStructuralMismatch, "mixed widths %d and %d", width, len(row))
		}
	}

	schema, err := SchemaForWidth(width)
	if err != nil {
		p.log.Error("unexpected commentary column count", "innings", innings, "width", width)
		return nil, err
	}

	superOver := IsSuperOver(innings)
	records := make([]models.CommentaryRecord, 0, len(rows))
	empty := 0
	for _, row := range rows {
		ballNumber, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			p.log.Debug("skipping row without sequence index", "innings", innings, "value", row[0])
			continue
		}

		record := models.CommentaryRecord{
			MatchBallNumber: ballNumber,
			Event:           row[1],
			Ball:            row[2],
			Innings:         innings,
			MatchID:         matchID,
			IsSuperOver:     superOver,
		}

		switch schema {
		case SchemaSix:
			record.Commentary = row[5]
		case SchemaSeven:
			record.Commentary = row[6]
			if strings.TrimSpace(record.Commentary) == "" {
				record.Commentary = row[5]
			}
		}

		if bowler, batsman, ok := ExtractBowlerBatsman(record.Event); ok {
			record.Bowler = &bowler
			record.Batsman = &batsman
		}
		if strings.TrimSpace(record.Commentary) == "" {
			empty++
		}
		records = append(records, record)
	}

	p.log.Info("mapped commentary records",
		"innings", innings,
		"schema", schema.Width(),
		"records", len(records),
		"without_commentary", empty)
	return records, nil
}

// ExtractBowlerBatsman splits event text like "Bumrah to Kohli, no run" into its
// bowler and batsman. It reports false when the text has no " to " separator.
func ExtractBowlerBatsman(event string) (bowler, batsman string, ok bool) {
	if event == "" {
		return "", "", false
	}

	parts := strings.Split(event, eventSeparator)
	if len(parts) < 2 {
		return "", "", false
	}

	bowler = strings.TrimSpace(parts[0])
	batsman = parts[1]
	if i := strings.Index(batsman, ","); i >= 0 {
		batsman = batsman[:i]
	}
	return bowler, strings.TrimSpace(batsman), true
}

// IsSuperOver reports whether an innings label denotes a super over
func IsSuperOver(innings string) bool {
	return strings.Contains(innings, superOverLabel)
}
