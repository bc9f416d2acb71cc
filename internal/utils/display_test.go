package utils

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myusername/cricket-commentary-scraper/pkg/models"
)

func intPtr(n int) *int { return &n }

func sampleResult() *models.MatchResult {
	return &models.MatchResult{
		MatchID:    1422119,
		SourceURL:  "https://example.org/m-1422119/full-scorecard",
		Status:     models.StatusPartial,
		EventCount: 120,
		Innings:    []string{"RCB Innings", "CSK Innings"},
		Message:    "innings \"CSK Innings\": no commentary blocks found",
		Players: []models.PlayerRecord{
			{Team: "Royal Challengers Bengaluru", PlayerName: "Glenn Maxwell", Batted: true, BattingPosition: intPtr(4), PlayerType: models.PlayerTypeRegular},
			{Team: "Royal Challengers Bengaluru", PlayerName: "Virat Kohli", Batted: true, BattingPosition: intPtr(1), PlayerType: models.PlayerTypeRegular, NotOut: true},
			{Team: "Chennai Super Kings", PlayerName: "Deepak Chahar", Bowled: true, PlayerType: models.PlayerTypeImpact},
		},
	}
}

func TestDisplayMatchSummary(t *testing.T) {
	var buf bytes.Buffer
	DisplayMatchSummary(&buf, sampleResult())
	out := buf.String()

	assert.Contains(t, out, "MATCH 1422119 (partial)")
	assert.Contains(t, out, "RCB Innings, CSK Innings")
	assert.Contains(t, out, "Note: innings")

	chennai := strings.Index(out, "Chennai Super Kings")
	royal := strings.Index(out, "Royal Challengers Bengaluru")
	require.True(t, chennai >= 0 && royal >= 0)
	assert.Less(t, chennai, royal)
	assert.Less(t, strings.Index(out, "Virat Kohli"), strings.Index(out, "Glenn Maxwell"))
}

func TestDisplayRunSummary(t *testing.T) {
	var buf bytes.Buffer
	DisplayRunSummary(&buf, []*models.MatchResult{sampleResult()})
	assert.Contains(t, buf.String(), "1422119")
	assert.Contains(t, buf.String(), "partial")
}

func TestSaveRunSummaryToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.csv")
	require.NoError(t, SaveRunSummaryToCSV([]*models.MatchResult{sampleResult()}, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1422119", "https://example.org/m-1422119/full-scorecard", "partial", "120", "3", "RCB Innings;CSK Innings", "innings \"CSK Innings\": no commentary blocks found"}, rows[1])
}
