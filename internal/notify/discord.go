// Package notify posts run summaries to a Discord webhook
package notify

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"

	"github.com/myusername/cricket-commentary-scraper/internal/pipeline"
	"github.com/myusername/cricket-commentary-scraper/pkg/models"
)

const (
	colorOK      = 0x00ff00
	colorWarning = 0xff9900
	colorFailed  = 0xff0000

	// embeds hold at most 25 fields
	maxMatchFields = 20
)

// ErrInvalidWebhook means the webhook URL is not of the form .../webhooks/<id>/<token>
var ErrInvalidWebhook = errors.New("invalid discord webhook url")

type webhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Discord sends run summaries through an incoming webhook
type Discord struct {
	webhookID string
	token     string
	session   webhookExecutor
}

// ParseWebhookURL splits a webhook URL into its id and token
func ParseWebhookURL(raw string) (id, token string, err error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", errors.Wrap(ErrInvalidWebhook, err.Error())
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", ErrInvalidWebhook
}

// NewDiscord returns a notifier for webhookURL, or ErrInvalidWebhook if it is not a Discord webhook URL
func NewDiscord(webhookURL string) (*Discord, error) {
	id, token, err := ParseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}
	session, err := discordgo.New("")
	if err != nil {
		return nil, errors.Wrap(err, "create discord session")
	}
	return &Discord{webhookID: id, token: token, session: session}, nil
}

// NotifyRun posts one embed summarising the run
func (d *Discord) NotifyRun(ctx context.Context, summary pipeline.RunSummary, results []*models.MatchResult) error {
	params := &discordgo.WebhookParams{
		Username: "Cricket Scraper",
		Embeds:   []*discordgo.MessageEmbed{SummaryEmbed(summary, results)},
	}
	if _, err := d.session.WebhookExecute(d.webhookID, d.token, false, params, discordgo.WithContext(ctx)); err != nil {
		return errors.Wrap(err, "send discord webhook")
	}
	return nil
}

// SummaryEmbed renders the outcome of a run, one field per processed match
func SummaryEmbed(summary pipeline.RunSummary, results []*models.MatchResult) *discordgo.MessageEmbed {
	color := colorOK
	switch {
	case summary.Failed > 0 && summary.Completed == 0 && summary.Partial == 0:
		color = colorFailed
	case summary.Failed > 0 || summary.Partial > 0:
		color = colorWarning
	}

	embed := &discordgo.MessageEmbed{
		Title: "🏏 Scrape run finished",
		Description: fmt.Sprintf("**Completed:** %d\n**Partial:** %d\n**Failed:** %d\n**Skipped:** %d",
			summary.Completed, summary.Partial, summary.Failed, summary.Skipped),
		Color: color,
		Footer: &discordgo.MessageEmbedFooter{
			Text: "run " + summary.RunID,
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	shown := 0
	for _, res := range results {
		if res.Status == models.StatusSkipped {
			continue
		}
		if shown == maxMatchFields {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:  "…",
				Value: fmt.Sprintf("%d more matches", len(results)-shown),
			})
			break
		}
		shown++

		value := fmt.Sprintf("%s · %d events · %d players", res.Status, res.EventCount, len(res.Players))
		if res.Message != "" {
			value += "\n" + res.Message
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("Match %d", res.MatchID),
			Value: value,
		})
	}
	return embed
}
