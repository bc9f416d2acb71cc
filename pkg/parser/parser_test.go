package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myusername/cricket-commentary-scraper/pkg/models"
)

func TestParseMatchPage(t *testing.T) {
	batters := elevenBatters()
	batters[2].notOut = true
	batters[10].impact = true

	rows := make([]string, 0, len(batters))
	for _, b := range batters {
		rows = append(rows, batterCell(b))
	}

	html := page(
		detailsRow("Toss", "India, elected to bat first"),
		inningsSection("India 1st Innings",
			battingTable(rows...),
			bowlingTable(
				bowlerFixture{name: "Mitchell Starc"},
				bowlerFixture{name: "Josh Hazlewood"},
				bowlerFixture{name: "Pat Cummins"},
				bowlerFixture{name: "Adam Zampa", impact: true},
				bowlerFixture{name: "Glenn Maxwell"},
			),
		),
		commentaryBlock("Starc to Rohit, no run", []string{"0.1", "0", "0/0"}, "Full, left alone"),
		commentaryBlock("Starc to Rohit, FOUR", []string{"0.2", "4", "4/0"}, "Driven through cover"),
	)

	p := New(nil)

	records, err := p.ParseInnings(html, "IND", 1001)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	metadata := p.ExtractMetadata(html, 1001)
	assert.Len(t, metadata, 2)
	assert.Equal(t, "1001", metadata[models.MatchIDKey])

	players, err := p.ExtractPlayers(html, 1001)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(players), 16)
	require.Len(t, players, 16)

	impact := 0
	for _, pl := range players {
		assert.Equal(t, int64(1001), pl.MatchID)
		if pl.Batted {
			assert.Equal(t, "India", pl.Team)
		} else {
			assert.True(t, pl.Bowled)
			assert.Equal(t, UnknownTeam, pl.Team)
		}
		if pl.PlayerType == models.PlayerTypeImpact {
			impact++
		}
	}
	assert.Equal(t, 2, impact)

	byName := playersByName(players)
	assert.Equal(t, models.PlayerTypeImpact, byName["Mohammed Siraj"].PlayerType)
	assert.Equal(t, models.PlayerTypeImpact, byName["Adam Zampa"].PlayerType)
	assert.True(t, byName["Virat Kohli"].NotOut)
	require.NotNil(t, byName["Mohammed Siraj"].BattingPosition)
	assert.Equal(t, 11, *byName["Mohammed Siraj"].BattingPosition)
}

func TestNewWithoutLogger(t *testing.T) {
	p := New(nil)
	require.NotNil(t, p)
	assert.NotPanics(t, func() { p.ExtractMetadata("<html></html>", 1) })
}
