// Package utils provides console and file summaries of scraped matches
package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/myusername/cricket-commentary-scraper/pkg/models"
)

// DisplayMatchSummary prints the roster of one processed match grouped by team
func DisplayMatchSummary(w io.Writer, result *models.MatchResult) {
	fmt.Fprintf(w, "\n=========== MATCH %d (%s) ===========\n", result.MatchID, result.Status)
	fmt.Fprintf(w, "Events: %d | Innings: %s\n", result.EventCount, strings.Join(result.Innings, ", "))
	if result.Message != "" {
		fmt.Fprintf(w, "Note: %s\n", result.Message)
	}

	fmt.Fprintf(w, "%-30s | %-3s | %-7s | %-6s | %-7s | %-6s\n",
		"Player", "Pos", "Type", "Batted", "Not Out", "Bowled")
	fmt.Fprintf(w, "%-30s | %-3s | %-7s | %-6s | %-7s | %-6s\n",
		strings.Repeat("-", 30), strings.Repeat("-", 3), strings.Repeat("-", 7),
		strings.Repeat("-", 6), strings.Repeat("-", 7), strings.Repeat("-", 6))

	// Group players by team
	teamPlayers := make(map[string][]models.PlayerRecord)
	for _, player := range result.Players {
		teamPlayers[player.Team] = append(teamPlayers[player.Team], player)
	}

	var teamNames []string
	for team := range teamPlayers {
		teamNames = append(teamNames, team)
	}
	sort.Strings(teamNames)

	for _, team := range teamNames {
		players := teamPlayers[team]

		// Batters in batting order, then everyone else
		sort.SliceStable(players, func(i, j int) bool {
			return position(players[i]) < position(players[j])
		})

		fmt.Fprintf(w, "\n%s\n", team)
		for _, player := range players {
			pos := "-"
			if player.BattingPosition != nil {
				pos = strconv.Itoa(*player.BattingPosition)
			}
			fmt.Fprintf(w, "%-30s | %3s | %-7s | %-6s | %-7s | %-6s\n",
				player.PlayerName, pos, player.PlayerType,
				yesNo(player.Batted), yesNo(player.NotOut), yesNo(player.Bowled))
		}
	}

	fmt.Fprintln(w, strings.Repeat("=", 78))
}

// DisplayRunSummary prints one line per processed match
func DisplayRunSummary(w io.Writer, results []*models.MatchResult) {
	fmt.Fprintf(w, "\n%-10s | %-9s | %-6s | %-7s | %-8s\n", "Match", "Status", "Events", "Players", "Duration")
	fmt.Fprintf(w, "%-10s | %-9s | %-6s | %-7s | %-8s\n",
		strings.Repeat("-", 10), strings.Repeat("-", 9), strings.Repeat("-", 6),
		strings.Repeat("-", 7), strings.Repeat("-", 8))
	for _, r := range results {
		fmt.Fprintf(w, "%-10d | %-9s | %6d | %7d | %8s\n",
			r.MatchID, r.Status, r.EventCount, len(r.Players), r.Duration.Round(100*time.Millisecond))
	}
}

// SaveRunSummaryToCSV writes one row per processed match to filename
func SaveRunSummaryToCSV(results []*models.MatchResult, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"match_id", "source_url", "status", "events", "players", "innings", "message"}); err != nil {
		return errors.Wrap(err, "failed to write header")
	}
	for _, r := range results {
		row := []string{
			strconv.FormatInt(r.MatchID, 10),
			r.SourceURL,
			string(r.Status),
			strconv.Itoa(r.EventCount),
			strconv.Itoa(len(r.Players)),
			strings.Join(r.Innings, ";"),
			r.Message,
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "failed to write match row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "failed to flush csv")
}

func position(p models.PlayerRecord) int {
	if p.BattingPosition == nil {
		return 1 << 30
	}
	return *p.BattingPosition
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
