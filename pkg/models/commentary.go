package models

import (
	"strconv"
	"strings"
)

// CommentaryRow is one commentary block flattened into text fields in DOM order:
// sequence index, optional header, tag fragments, then the commentary text.
type CommentaryRow []string

// Last returns the final field, which is the commentary text for a parsed row
func (r CommentaryRow) Last() string {
	if len(r) == 0 {
		return ""
	}
	return r[len(r)-1]
}

// NonEmpty counts fields holding something other than whitespace
func (r CommentaryRow) NonEmpty() int {
	n := 0
	for _, f := range r {
		if strings.TrimSpace(f) != "" {
			n++
		}
	}
	return n
}

// CommentaryRecord holds one ball or event in its final relational shape
type CommentaryRecord struct {
	MatchBallNumber int     `db:"match_ball_number" json:"match_ball_number"`
	Event           string  `db:"event" json:"event"`
	Ball            string  `db:"ball" json:"ball"`
	Commentary      string  `db:"commentary" json:"commentary"`
	Bowler          *string `db:"bowler" json:"bowler"`
	Batsman         *string `db:"batsman" json:"batsman"`
	Innings         string  `db:"innings" json:"innings"`
	MatchID         int64   `db:"match_id" json:"matchid"`
	IsSuperOver     bool    `db:"is_super_over" json:"is_super_over"`
}

// CommentaryColumns is the column order used for tabular exports of CommentaryRecord
var CommentaryColumns = []string{
	"match_ball_number", "event", "ball", "commentary", "bowler",
	"batsman", "innings", "matchid", "is_super_over",
}

// Row renders the record as text fields in CommentaryColumns order; missing
// bowler or batsman become empty fields.
func (c CommentaryRecord) Row() []string {
	return []string{
		strconv.Itoa(c.MatchBallNumber),
		c.Event,
		c.Ball,
		c.Commentary,
		deref(c.Bowler),
		deref(c.Batsman),
		c.Innings,
		strconv.FormatInt(c.MatchID, 10),
		strconv.FormatBool(c.IsSuperOver),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
