package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myusername/cricket-commentary-scraper/pkg/models"
)

func TestExtractBowlerBatsman(t *testing.T) {
	bowler, batsman, ok := ExtractBowlerBatsman("Bumrah to Kohli, no run")
	require.True(t, ok)
	assert.Equal(t, "Bumrah", bowler)
	assert.Equal(t, "Kohli", batsman)

	_, _, ok = ExtractBowlerBatsman("no run")
	assert.False(t, ok)

	_, _, ok = ExtractBowlerBatsman("")
	assert.False(t, ok)

	bowler, batsman, ok = ExtractBowlerBatsman(" Rashid Khan to  Buttler ")
	require.True(t, ok)
	assert.Equal(t, "Rashid Khan", bowler)
	assert.Equal(t, "Buttler", batsman)
}

func TestToRecordsSchemaSix(t *testing.T) {
	rows := []models.CommentaryRow{
		{"7", "Bumrah to Kohli, no run", "19.6", "0", "150/3", "Defended"},
		{"x", "header", "19.5", "4", "", "skipped: no index"},
	}

	records, err := New(nil).ToRecords(rows, "IND", 99)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, 7, r.MatchBallNumber)
	assert.Equal(t, "19.6", r.Ball)
	assert.Equal(t, "Defended", r.Commentary)
	assert.Equal(t, "IND", r.Innings)
	assert.False(t, r.IsSuperOver)
	require.NotNil(t, r.Bowler)
	assert.Equal(t, "Bumrah", *r.Bowler)
}

func TestToRecordsSchemaSevenUsesExtraWhenCommentaryEmpty(t *testing.T) {
	rows := []models.CommentaryRow{
		{"1", "Starc to Gill, SIX", "4.3", "6", "photo", "six runs", ""},
		{"2", "Starc to Gill, no run", "4.4", "0", "", "extra", "beaten"},
	}

	records, err := New(nil).ToRecords(rows, "AUS", 5)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "six runs", records[0].Commentary)
	assert.Equal(t, "beaten", records[1].Commentary)
}

func TestToRecordsNoSeparatorLeavesPlayersNil(t *testing.T) {
	rows := []models.CommentaryRow{{"1", "Drinks break", "10.0", "", "", "Players take a break"}}

	records, err := New(nil).ToRecords(rows, "IND", 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].Bowler)
	assert.Nil(t, records[0].Batsman)
}

func TestToRecordsStructuralMismatch(t *testing.T) {
	p := New(nil)

	records, err := p.ToRecords([]models.CommentaryRow{{"1", "a", "b", "c", "d"}}, "IND", 1)
	require.ErrorIs(t, err, ErrStructuralMismatch)
	assert.Empty(t, records)

	records, err = p.ToRecords([]models.CommentaryRow{
		{"1", "a", "b", "c", "d", "e"},
		{"2", "a", "b", "c", "d", "e", "f"},
	}, "IND", 1)
	require.ErrorIs(t, err, ErrStructuralMismatch)
	assert.Empty(t, records)
}

func TestToRecordsEmptyBatchIsNotAnError(t *testing.T) {
	records, err := New(nil).ToRecords(nil, "IND", 1)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSchemaForWidth(t *testing.T) {
	s, err := SchemaForWidth(7)
	require.NoError(t, err)
	assert.Equal(t, SchemaSeven, s)
	assert.Equal(t, 7, s.Width())

	_, err = SchemaForWidth(5)
	assert.ErrorIs(t, err, ErrStructuralMismatch)
}
