package models

import "time"

// InningsView is the rendered commentary page for one innings selection
type InningsView struct {
	Label string `json:"label"`
	HTML  string `json:"-"`
}

// MatchSnapshot holds every fully rendered page needed to process one match
type MatchSnapshot struct {
	MatchID        int64         `json:"match_id"`
	SourceURL      string        `json:"source_url"`
	ScorecardHTML  string        `json:"-"`
	DefaultInnings string        `json:"default_innings"`
	InningsOptions []string      `json:"innings_options"`
	Innings        []InningsView `json:"innings"`
}

// InningsPlan splits the innings options of a match into regular innings and super overs
type InningsPlan struct {
	Regular    []string
	SuperOvers []string
}

// MatchStatus is the outcome recorded for a processed match
type MatchStatus string

const (
	StatusCompleted MatchStatus = "completed"
	StatusPartial   MatchStatus = "partial"
	StatusFailed    MatchStatus = "failed"
	StatusSkipped   MatchStatus = "skipped"
)

// MatchResult summarises what one pipeline pass produced for a match
type MatchResult struct {
	MatchID       int64
	SourceURL     string
	Status        MatchStatus
	EventCount    int
	MetadataCount int
	Players       []PlayerRecord
	Innings       []string
	Message       string
	Duration      time.Duration
}

// Teams lists the distinct team names present in the roster, in order of appearance
func (r *MatchResult) Teams() []string {
	seen := make(map[string]bool)
	var teams []string
	for _, p := range r.Players {
		if !seen[p.Team] {
			seen[p.Team] = true
			teams = append(teams, p.Team)
		}
	}
	return teams
}
