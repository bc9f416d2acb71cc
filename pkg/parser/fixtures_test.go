package parser

import (
	"fmt"
	"strings"
)

const impactIcon = `<i class="icon-arrow_back-filled ds-text-icon ds-text-icon-success-hover"></i>`

type batterFixture struct {
	name    string
	title   bool
	notOut  bool
	impact  bool
	retired bool
}

type bowlerFixture struct {
	name   string
	impact bool
}

func commentaryBlock(header string, tags []string, paragraphs ...string) string {
	var b strings.Builder
	b.WriteString(`<div class="ds-text-article-body-1 ds-flex ds-items-start">`)
	if header != "" {
		fmt.Fprintf(&b, `<div class="ds-text-overline-1 ds-font-medium">%s</div>`, header)
	}
	for _, tag := range tags {
		fmt.Fprintf(&b, `<span>%s</span>`, tag)
	}
	for _, p := range paragraphs {
		fmt.Fprintf(&b, `<p>%s</p>`, p)
	}
	b.WriteString(`</div>`)
	return b.String()
}

func detailsRow(spans ...string) string {
	var b strings.Builder
	b.WriteString(`<div class="ds-border-color-border-secondary ds-flex ds-border-t">`)
	for _, s := range spans {
		fmt.Fprintf(&b, `<span>%s</span>`, s)
	}
	b.WriteString(`</div>`)
	return b.String()
}

func teamHeader(name string) string {
	return fmt.Sprintf(`<div class="ds-bg-color-primary-bg ds-p-3"><span class="ds-text-title-1 ds-font-semibold ds-capitalize ds-text-color-text">%s</span></div>`, name)
}

func teamSpan(name string) string {
	return fmt.Sprintf(`<span class="ds-text-title-1 ds-font-semibold ds-capitalize ds-text-color-text">%s</span>`, name)
}

func batterCell(b batterFixture) string {
	class := "ds-w-0 ds-whitespace-nowrap ds-min-w-max ds-flex ds-items-center"
	if b.notOut {
		class += " ci-v2-scorecard-player-notout"
	}
	title := ""
	if b.title {
		title = fmt.Sprintf(` title="%s"`, b.name)
	}
	icons := ""
	if b.impact {
		icons += impactIcon
	}
	if b.retired {
		icons += `<i class="icon-arrow_forward-filled ds-text-icon"></i>`
	}
	return fmt.Sprintf(`<tr><td class="%s"><a href="/cricketers/%s-1"%s><span class="ds-text-table-link"><span>%s</span></span></a>%s</td><td>12</td></tr>`,
		class, slug(b.name), title, b.name, icons)
}

func didNotBatRow(header string, names ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<tr><td colspan="11" class="!ds-py-2"><div><span class="ds-text-overline-2">%s</span>`, header)
	for _, n := range names {
		fmt.Fprintf(&b, `<div><a href="/cricketers/%s-2"><span class="ds-text-body-3"><span>%s</span></span></a></div>`, slug(n), n)
	}
	b.WriteString(`</div></td></tr>`)
	return b.String()
}

func battingTable(rows ...string) string {
	return `<table class="ds-w-full ds-v2-table ds-v2-table-md ds-table-auto ci-scorecard-table"><tbody>` +
		strings.Join(rows, "") + `</tbody></table>`
}

func bowlingTable(bowlers ...bowlerFixture) string {
	var b strings.Builder
	b.WriteString(`<table class="ds-w-full ds-v2-table ds-v2-table-md ds-table-auto"><tbody>`)
	for _, bw := range bowlers {
		icon := ""
		if bw.impact {
			icon = impactIcon
		}
		fmt.Fprintf(&b, `<tr><td class="ds-w-0 ds-whitespace-nowrap ds-min-w-max"><a href="/cricketers/%s-3" title="%s"><span class="ds-text-table-link">%s</span></a>%s</td><td>4</td></tr>`,
			slug(bw.name), bw.name, bw.name, icon)
	}
	b.WriteString(`</tbody></table>`)
	return b.String()
}

func inningsSection(team string, tables ...string) string {
	return `<div class="ds-rounded-lg">` + teamHeader(team) + strings.Join(tables, "") + `</div>`
}

func page(parts ...string) string {
	return "<html><body>" + strings.Join(parts, "") + "</body></html>"
}

func slug(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "-"))
}

func elevenBatters() []batterFixture {
	names := []string{
		"Rohit Sharma", "Shubman Gill", "Virat Kohli", "Shreyas Iyer", "KL Rahul",
		"Hardik Pandya", "Ravindra Jadeja", "Axar Patel", "Kuldeep Yadav", "Jasprit Bumrah",
		"Mohammed Siraj",
	}
	batters := make([]batterFixture, 0, len(names))
	for _, n := range names {
		batters = append(batters, batterFixture{name: n, title: true})
	}
	return batters
}
