// Package models contains data structures for scraped cricket match data
package models

import "strconv"

// PlayerType tells a regular squad member apart from an impact substitute
type PlayerType string

const (
	PlayerTypeRegular PlayerType = "regular"
	PlayerTypeImpact  PlayerType = "impact"
)

// Priority ranks player types when the same player appears twice; lower wins
func (t PlayerType) Priority() int {
	if t == PlayerTypeImpact {
		return 1
	}
	return 2
}

// PlayerRecord holds one player's appearance in a match roster
type PlayerRecord struct {
	MatchID         int64      `db:"match_id" json:"matchid"`
	Innings         string     `db:"innings" json:"innings"`
	Team            string     `db:"team" json:"team"`
	PlayerName      string     `db:"player_name" json:"player_name"`
	Batted          bool       `db:"batted" json:"batted"`
	BattingPosition *int       `db:"batting_position" json:"batting_position"`
	PlayerType      PlayerType `db:"player_type" json:"player_type"`
	Retired         bool       `db:"retired" json:"retired"`
	NotOut          bool       `db:"not_out" json:"not_out"`
	Bowled          bool       `db:"bowled" json:"bowled"`
}

// PlayerColumns is the column order used for tabular exports of PlayerRecord
var PlayerColumns = []string{
	"matchid", "innings", "team", "player_name", "batted",
	"batting_position", "player_type", "retired", "not_out", "bowled",
}

// Row renders the record as text fields in PlayerColumns order
func (p PlayerRecord) Row() []string {
	position := ""
	if p.BattingPosition != nil {
		position = strconv.Itoa(*p.BattingPosition)
	}
	return []string{
		strconv.FormatInt(p.MatchID, 10),
		p.Innings,
		p.Team,
		p.PlayerName,
		strconv.FormatBool(p.Batted),
		position,
		string(p.PlayerType),
		strconv.FormatBool(p.Retired),
		strconv.FormatBool(p.NotOut),
		strconv.FormatBool(p.Bowled),
	}
}
