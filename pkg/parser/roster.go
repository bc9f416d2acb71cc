package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/myusername/cricket-commentary-scraper/pkg/models"
)

const (
	battingTableSel  = "table.ci-scorecard-table"
	scoreTableSel    = "table.ds-w-full.ds-v2-table.ds-v2-table-md.ds-table-auto"
	playerCellSel    = "td.ds-w-0.ds-whitespace-nowrap.ds-min-w-max"
	playerLinkSel    = "a[href*='/cricketers/']"
	tableLinkSpanSel = "span.ds-text-table-link"
	dnbLinkSpanSel   = "span.ds-text-body-3"
	dnbHeaderSel     = "span.ds-text-overline-2"
	dnbCellClass     = "!ds-py-2"
	bowlerSpanSel    = "span.ds-text-table-link.ds-font-semibold"
	impactIconSel    = "i.icon-arrow_back-filled.ds-text-icon.ds-text-icon-success-hover"
	retiredIconSel   = "i[class*='icon-arrow_forward-filled']"
	notOutClass      = "ci-v2-scorecard-player-notout"
	didNotBatLabel   = "did not bat"
	scoreTableClass  = "ds-w-full ds-v2-table ds-v2-table-md ds-table-auto"

	// UnknownTeam names a bowling side that cannot be told apart from the batting side
	UnknownTeam = "Unknown Team"
)

// bowlerEntry is a bowler found in a bowling table before team attribution
type bowlerEntry struct {
	name   string
	impact bool
}

// bowlerStrategy lists the bowlers of a table; false means the strategy does not apply
type bowlerStrategy func(table *goquery.Selection) ([]bowlerEntry, bool)

var bowlerStrategies = []bowlerStrategy{bowlersFromCells, bowlersFromSpans}

// ExtractPlayers builds the deduplicated roster of a match from its scorecard page.
// A page without batting tables yields ErrNoScorecardTables.
func (p *Parser) ExtractPlayers(htmlContent string, matchID int64) ([]models.PlayerRecord, error) {
	doc, err := parseDocument(htmlContent)
	if err != nil {
		return nil, err
	}

	battingTables := doc.Find(battingTableSel)
	if battingTables.Length() == 0 {
		p.log.Warn("no batting scorecard tables found", "match_id", matchID)
		return nil, ErrNoScorecardTables
	}
	p.log.Info("found batting scorecard tables", "match_id", matchID, "count", battingTables.Length())

	var battingTeams []string
	battingTables.Each(func(i int, table *goquery.Selection) {
		team := p.ResolveTeamName(table, i+1)
		battingTeams = append(battingTeams, team)
		p.log.Info("batting team", "innings", i+1, "team", team)
	})

	var players []models.PlayerRecord
	battingTables.Each(func(i int, table *goquery.Selection) {
		innings := inningsKey(i + 1)
		batting := p.battingPlayers(table, matchID, innings, battingTeams[i])
		players = append(players, batting...)
	})

	bowlingTables := doc.Find(scoreTableSel).FilterFunction(hasExactClass(scoreTableClass))
	p.log.Info("found bowling tables", "match_id", matchID, "count", bowlingTables.Length())
	bowlingTables.Each(func(i int, table *goquery.Selection) {
		innings := inningsKey(i + 1)
		var battingTeam string
		if i < len(battingTeams) {
			battingTeam = battingTeams[i]
		}
		bowlingTeam := oppositeTeam(battingTeam, battingTeams)
		p.log.Debug("bowling team by table position", "innings", innings, "team", bowlingTeam, "against", battingTeam)

		bowlers := p.bowlers(table, matchID, innings, bowlingTeam)
		players = append(players, bowlers...)
		p.log.Info("extracted bowlers", "innings", innings, "team", bowlingTeam, "count", len(bowlers))
	})

	unique := DedupePlayers(players)
	p.log.Info("extracted players", "match_id", matchID, "records", len(players), "unique", len(unique))
	return unique, nil
}

// hasExactClass keeps elements whose class list is exactly class, in any order.
// Batting and partnership tables share the bowling classes plus extra ones.
func hasExactClass(class string) func(int, *goquery.Selection) bool {
	want := strings.Fields(class)
	return func(_ int, s *goquery.Selection) bool {
		got := strings.Fields(s.AttrOr("class", ""))
		if len(got) != len(want) {
			return false
		}
		for _, c := range want {
			if !s.HasClass(c) {
				return false
			}
		}
		return true
	}
}

func (p *Parser) battingPlayers(table *goquery.Selection, matchID int64, innings, team string) []models.PlayerRecord {
	var players []models.PlayerRecord
	position := 1

	table.Find(playerCellSel).Each(func(_ int, cell *goquery.Selection) {
		if _, ok := cell.Attr("colspan"); ok {
			return
		}
		link := cell.Find(playerLinkSel).First()
		if link.Length() == 0 {
			return
		}
		name, ok := linkPlayerName(link, tableLinkSpanSel)
		if !ok {
			p.log.Debug("skipping batter cell without a name", "innings", innings)
			return
		}

		pos := position
		record := models.PlayerRecord{
			MatchID:         matchID,
			Innings:         innings,
			Team:            team,
			PlayerName:      name,
			Batted:          true,
			BattingPosition: &pos,
			PlayerType:      playerType(isImpactPlayer(cell)),
			Retired:         cell.Find(retiredIconSel).Length() > 0,
			NotOut:          strings.Contains(cell.AttrOr("class", ""), notOutClass),
		}
		players = append(players, record)
		position++
	})

	table.Find("td[colspan]").Each(func(_ int, cell *goquery.Selection) {
		if !cell.HasClass(dnbCellClass) {
			return
		}
		header := cell.Find(dnbHeaderSel).First()
		if !strings.Contains(strings.ToLower(strippedText(header, "")), didNotBatLabel) {
			return
		}
		cell.Find(playerLinkSel).Each(func(_ int, link *goquery.Selection) {
			name, ok := linkPlayerName(link, dnbLinkSpanSel)
			if !ok {
				return
			}
			players = append(players, models.PlayerRecord{
				MatchID:    matchID,
				Innings:    innings,
				Team:       team,
				PlayerName: name,
				PlayerType: playerType(isImpactPlayer(link.Parent())),
			})
		})
	})

	batted, notOut, retired := 0, 0, 0
	for _, pl := range players {
		if pl.Batted {
			batted++
		}
		if pl.NotOut {
			notOut++
		}
		if pl.Retired {
			retired++
		}
	}
	p.log.Info("batting summary",
		"innings", innings,
		"team", team,
		"batted", batted,
		"not_out", notOut,
		"retired", retired,
		"did_not_bat", len(players)-batted)
	return players
}

func (p *Parser) bowlers(table *goquery.Selection, matchID int64, innings, team string) []models.PlayerRecord {
	var entries []bowlerEntry
	for i, strategy := range bowlerStrategies {
		if found, ok := strategy(table); ok {
			if i > 0 {
				p.log.Warn("no bowler cells found, used fallback", "innings", innings)
			}
			entries = found
			break
		}
	}

	seen := make(map[string]bool)
	var players []models.PlayerRecord
	for _, e := range entries {
		if seen[e.name] {
			continue
		}
		seen[e.name] = true
		players = append(players, models.PlayerRecord{
			MatchID:    matchID,
			Innings:    innings,
			Team:       team,
			PlayerName: e.name,
			PlayerType: playerType(e.impact),
			Bowled:     true,
		})
	}
	return players
}

func bowlersFromCells(table *goquery.Selection) ([]bowlerEntry, bool) {
	cells := table.Find(playerCellSel)
	if cells.Length() == 0 {
		return nil, false
	}

	var entries []bowlerEntry
	cells.Each(func(_ int, cell *goquery.Selection) {
		link := cell.Find(playerLinkSel).First()
		if link.Length() == 0 {
			return
		}
		if name, ok := linkPlayerName(link, tableLinkSpanSel); ok {
			entries = append(entries, bowlerEntry{name: name, impact: isImpactPlayer(cell)})
		}
	})
	return entries, true
}

func bowlersFromSpans(table *goquery.Selection) ([]bowlerEntry, bool) {
	var entries []bowlerEntry
	table.Find(bowlerSpanSel).Each(func(_ int, span *goquery.Selection) {
		name, ok := CleanPlayerName(strippedText(span, ""))
		if !ok {
			return
		}
		entries = append(entries, bowlerEntry{name: name, impact: isImpactPlayer(span.Closest("td"))})
	})
	return entries, true
}

// linkPlayerName reads a player's name from a profile link: the title attribute
// first, then the inner span of the label span.
func linkPlayerName(link *goquery.Selection, labelSel string) (string, bool) {
	name := strings.TrimSpace(link.AttrOr("title", ""))
	if name == "" {
		label := link.Find(labelSel).First()
		if inner := label.Find("span").First(); inner.Length() > 0 {
			name = strippedText(inner, "")
		} else {
			name = strippedText(label, "")
		}
	}
	return CleanPlayerName(name)
}

// isImpactPlayer needs every impact marker class on one icon; a partial match is not enough
func isImpactPlayer(s *goquery.Selection) bool {
	if s == nil || s.Length() == 0 {
		return false
	}
	return s.Find(impactIconSel).Length() > 0
}

func playerType(impact bool) models.PlayerType {
	if impact {
		return models.PlayerTypeImpact
	}
	return models.PlayerTypeRegular
}

// oppositeTeam picks the first known team other than the batting one
func oppositeTeam(battingTeam string, teams []string) string {
	if battingTeam == "" || len(teams) < 2 {
		return UnknownTeam
	}
	for _, team := range teams {
		if team != battingTeam {
			return team
		}
	}
	return UnknownTeam
}

func inningsKey(n int) string {
	return fmt.Sprintf("innings_%d", n)
}

// DedupePlayers keeps one record per (match, player). An impact record replaces a
// regular one; otherwise the first record seen wins. Order of first appearance is kept.
func DedupePlayers(players []models.PlayerRecord) []models.PlayerRecord {
	type key struct {
		matchID int64
		name    string
	}

	index := make(map[key]int, len(players))
	unique := make([]models.PlayerRecord, 0, len(players))
	for _, pl := range players {
		k := key{matchID: pl.MatchID, name: pl.PlayerName}
		if i, ok := index[k]; ok {
			if pl.PlayerType.Priority() < unique[i].PlayerType.Priority() {
				unique[i] = pl
			}
			continue
		}
		index[k] = len(unique)
		unique = append(unique, pl)
	}
	return unique
}
