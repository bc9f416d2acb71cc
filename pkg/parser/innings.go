package parser

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/myusername/cricket-commentary-scraper/pkg/models"
)

const (
	inningsOptionSel  = "li.ds-w-full.ds-flex"
	currentInningsSel = "button.ds-capitalize.ds-cursor-pointer[class*='ds-border-color-border']"
)

// ExtractInningsOptions lists the labels of the innings dropdown in page order.
// The dropdown must already be expanded in the snapshot.
func (p *Parser) ExtractInningsOptions(htmlContent string) ([]string, error) {
	doc, err := parseDocument(htmlContent)
	if err != nil {
		return nil, err
	}

	var options []string
	doc.Find(inningsOptionSel).Each(func(_ int, item *goquery.Selection) {
		if label := collapseSpaces(strippedText(item, " ")); label != "" {
			options = append(options, label)
		}
	})
	if len(options) == 0 {
		p.log.Warn("no innings options found")
		return nil, ErrNoInnings
	}
	p.log.Info("found innings options", "count", len(options), "options", options)
	return options, nil
}

// ExtractCurrentInnings returns the label of the innings the page currently shows
func (p *Parser) ExtractCurrentInnings(htmlContent string) (string, error) {
	doc, err := parseDocument(htmlContent)
	if err != nil {
		return "", err
	}

	label := collapseSpaces(strippedText(doc.Find(currentInningsSel).First(), " "))
	if label == "" {
		p.log.Warn("innings selector missing or empty")
		return "", ErrNoInnings
	}
	return label, nil
}

// PlanInnings separates super over labels from regular innings, keeping order
func PlanInnings(options []string) models.InningsPlan {
	var plan models.InningsPlan
	for _, option := range options {
		if IsSuperOver(option) {
			plan.SuperOvers = append(plan.SuperOvers, option)
			continue
		}
		plan.Regular = append(plan.Regular, option)
	}
	return plan
}

// OtherInnings lists every option except the one already on screen
func OtherInnings(options []string, current string) []string {
	var others []string
	for _, option := range options {
		if option != current {
			others = append(others, option)
		}
	}
	return others
}
