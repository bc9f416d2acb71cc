package parser

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	teamHeaderSel = "div.ds-bg-color-primary-bg.ds-p-3"
	teamNameSel   = "span.ds-text-title-1.ds-font-semibold.ds-capitalize.ds-text-color-text"

	maxAncestorLevels = 10
)

// teamStrategy is one way of finding the team a scorecard table belongs to
type teamStrategy struct {
	name string
	find func(table *goquery.Selection) (string, bool)
}

var teamStrategies = []teamStrategy{
	{name: "ancestor_header", find: teamFromAncestors},
	{name: "preceding_span", find: teamFromPrecedingSpan},
	{name: "preceding_header", find: teamFromPrecedingHeader},
}

// ResolveTeamName names the team batting in a scorecard table. Strategies run in
// order and the first clean name wins; "Team {ordinal}" stands in when all fail.
func (p *Parser) ResolveTeamName(table *goquery.Selection, ordinal int) string {
	for _, strategy := range teamStrategies {
		if name, ok := strategy.find(table); ok {
			p.log.Debug("resolved team name", "strategy", strategy.name, "team", name, "innings", ordinal)
			return name
		}
	}

	p.log.Warn("could not find team name, using default", "innings", ordinal)
	return fmt.Sprintf("Team %d", ordinal)
}

func teamFromAncestors(table *goquery.Selection) (string, bool) {
	current := table
	for level := 0; level < maxAncestorLevels; level++ {
		parent := current.Parent()
		if parent.Length() == 0 {
			break
		}
		if header := parent.Find(teamHeaderSel).First(); header.Length() > 0 {
			if name, ok := teamNameFrom(header.Find(teamNameSel).First()); ok {
				return name, true
			}
		}
		current = parent
	}
	return "", false
}

func teamFromPrecedingSpan(table *goquery.Selection) (string, bool) {
	return teamNameFrom(precedingMatch(table, teamNameSel))
}

func teamFromPrecedingHeader(table *goquery.Selection) (string, bool) {
	header := precedingMatch(table, teamHeaderSel)
	if header.Length() == 0 {
		return "", false
	}
	return teamNameFrom(header.Find(teamNameSel).First())
}

func teamNameFrom(span *goquery.Selection) (string, bool) {
	if span.Length() == 0 {
		return "", false
	}
	return CleanTeamName(strippedText(span, ""))
}

// precedingMatch returns the last element matching selector that comes before the
// first node of sel in document order, or an empty selection.
func precedingMatch(sel *goquery.Selection, selector string) *goquery.Selection {
	if sel.Length() == 0 {
		return sel
	}

	target := sel.Get(0)
	root := target
	for root.Parent != nil {
		root = root.Parent
	}

	candidates := goquery.NewDocumentFromNode(root).Find(selector)
	if candidates.Length() == 0 {
		return candidates
	}
	wanted := make(map[*html.Node]bool, candidates.Length())
	for _, n := range candidates.Nodes {
		wanted[n] = true
	}

	var last *html.Node
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n == target {
			return true
		}
		if wanted[n] {
			last = n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(root)

	if last == nil {
		return candidates.Slice(0, 0)
	}
	return candidates.FilterNodes(last)
}
