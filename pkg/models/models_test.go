package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatchMetadataSplitsReplacements(t *testing.T) {
	details := map[string]string{
		MatchIDKey:               "55",
		"Toss":                   "MI, elected to field",
		"MI Impact Replacement":  "Rohit Sharma in, Nehal Wadhera out",
		"CSK Impact Replacement": "Shivam Dube in, Matheesha Pathirana out",
		"Replacement Notes":      "kept",
	}

	m, err := NewMatchMetadata(55, details)
	require.NoError(t, err)

	assert.Equal(t, int64(55), m.MatchID)
	assert.Equal(t, map[string]string{
		MatchIDKey:          "55",
		"Toss":              "MI, elected to field",
		"Replacement Notes": "kept",
	}, m.Details)
	assert.Equal(t,
		`{"CSK Impact Replacement":"Shivam Dube in, Matheesha Pathirana out","MI Impact Replacement":"Rohit Sharma in, Nehal Wadhera out"}`,
		m.PlayerReplacements)
	assert.Len(t, details, 5, "input is not modified")
}

func TestNewMatchMetadataWithoutReplacements(t *testing.T) {
	m, err := NewMatchMetadata(1, map[string]string{MatchIDKey: "1"})
	require.NoError(t, err)
	assert.Equal(t, "{}", m.PlayerReplacements)
}

func TestApplyInnings(t *testing.T) {
	m := &MatchMetadata{MatchID: 1}

	m.ApplyInnings(InningsPlan{Regular: []string{"MI", "CSK"}, SuperOvers: []string{"Super Over 1"}})
	assert.True(t, m.HasSuperOver)
	assert.Equal(t, 1, m.SuperOverCount)
	require.NotNil(t, m.FirstInnings)
	require.NotNil(t, m.SecondInnings)
	assert.Equal(t, "MI", *m.FirstInnings)
	assert.Equal(t, "CSK", *m.SecondInnings)

	m.ApplyInnings(InningsPlan{Regular: []string{"MI"}})
	assert.False(t, m.HasSuperOver)
	assert.Equal(t, 0, m.SuperOverCount)
	require.NotNil(t, m.FirstInnings)
	assert.Nil(t, m.SecondInnings)

	m.ApplyInnings(InningsPlan{})
	assert.Nil(t, m.FirstInnings)
}

func TestFlatten(t *testing.T) {
	first := "MI"
	m := &MatchMetadata{
		MatchID:            9,
		Details:            map[string]string{"Player Of The Match": "Bumrah", "Points (MI)": "2"},
		FirstInnings:       &first,
		PlayerReplacements: "{}",
	}

	row := m.Flatten()
	assert.Equal(t, "Bumrah", row["player_of_the_match"])
	assert.Equal(t, "2", row["points_mi"])
	assert.Equal(t, int64(9), row["matchid"])
	assert.Equal(t, &first, row["first_innings"])
	assert.Contains(t, row, "second_innings")
}

func TestNormalizeColumnName(t *testing.T) {
	assert.Equal(t, "player_of_the_match", NormalizeColumnName("Player Of The Match"))
	assert.Equal(t, "points_mi", NormalizeColumnName("Points (MI)"))
	assert.Equal(t, "matchid", NormalizeColumnName("MatchID"))
	assert.Equal(t, "t20_debut", NormalizeColumnName("  T20 debut "))
}

func TestDetailsJSONSortsKeys(t *testing.T) {
	m := &MatchMetadata{Details: map[string]string{"b": "2", "a": "1"}}
	out, err := m.DetailsJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"a":"1","b":"2"}`, out)
}

func TestRows(t *testing.T) {
	bowler, batsman := "Bumrah", "Kohli"
	c := CommentaryRecord{MatchBallNumber: 3, Event: "Bumrah to Kohli, 1 run", Ball: "0.3", Commentary: "pushed",
		Bowler: &bowler, Batsman: &batsman, Innings: "IND", MatchID: 7}
	assert.Equal(t, []string{"3", "Bumrah to Kohli, 1 run", "0.3", "pushed", "Bumrah", "Kohli", "IND", "7", "false"}, c.Row())
	assert.Len(t, c.Row(), len(CommentaryColumns))

	c.Bowler, c.Batsman = nil, nil
	assert.Equal(t, "", c.Row()[4])

	pos := 2
	p := PlayerRecord{MatchID: 7, Innings: "innings_1", Team: "India", PlayerName: "Gill", Batted: true,
		BattingPosition: &pos, PlayerType: PlayerTypeRegular}
	assert.Equal(t, []string{"7", "innings_1", "India", "Gill", "true", "2", "regular", "false", "false", "false"}, p.Row())
	assert.Len(t, p.Row(), len(PlayerColumns))
}

func TestPlayerTypePriority(t *testing.T) {
	assert.Less(t, PlayerTypeImpact.Priority(), PlayerTypeRegular.Priority())
}

func TestMatchResultTeams(t *testing.T) {
	r := MatchResult{Players: []PlayerRecord{{Team: "A"}, {Team: "B"}, {Team: "A"}}}
	assert.Equal(t, []string{"A", "B"}, r.Teams())
}
