// Package pipeline drives matches from snapshot to storage: parse, persist, export, track
package pipeline

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/myusername/cricket-commentary-scraper/internal/export"
	"github.com/myusername/cricket-commentary-scraper/internal/logging"
	"github.com/myusername/cricket-commentary-scraper/internal/store"
	"github.com/myusername/cricket-commentary-scraper/pkg/models"
	"github.com/myusername/cricket-commentary-scraper/pkg/parser"
	"github.com/myusername/cricket-commentary-scraper/pkg/scraper"
)

// Repository appends parsed records to the relational store
type Repository interface {
	InsertEvents(ctx context.Context, events []models.CommentaryRecord) (int64, error)
	InsertMetadata(ctx context.Context, metadata *models.MatchMetadata) (int64, error)
	InsertPlayers(ctx context.Context, players []models.PlayerRecord) (int64, error)
}

// Tracker remembers the outcome of every processed match
type Tracker interface {
	Add(ctx context.Context, entry store.TrackerEntry) error
	MarkFailed(ctx context.Context, matchID int64, sourceURL, message string) error
	CompletedIDs(ctx context.Context) ([]int64, error)
}

// Exporter writes the datasets of a match to the object store
type Exporter interface {
	Export(ctx context.Context, data export.MatchData) ([]string, error)
}

// Processor handles one match end to end. Repo, Exporter and Tracker are optional.
// Retry governs how often a snapshot that failed transiently is requested again;
// the zero policy tries once.
type Processor struct {
	Source   scraper.SnapshotSource
	Repo     Repository
	Exporter Exporter
	Tracker  Tracker
	Retry    scraper.RetryPolicy
	Log      *logging.Logger
}

type matchOutput struct {
	details  map[string]string
	metadata *models.MatchMetadata
	events   []models.CommentaryRecord
	players  []models.PlayerRecord
	innings  []string
	problems []string
}

// ProcessMatch fetches, parses and stores one match. Parse problems and partly
// rendered snapshots never abort the match; they downgrade its status to partial.
func (p *Processor) ProcessMatch(ctx context.Context, matchURL string) *models.MatchResult {
	start := time.Now()
	result := &models.MatchResult{SourceURL: matchURL}
	log := p.Log.With("url", matchURL)

	matchID, err := scraper.ExtractMatchID(matchURL)
	if err != nil {
		log.Error("skipping match", "error", err)
		result.Status = models.StatusFailed
		result.Message = err.Error()
		result.Duration = time.Since(start)
		return result
	}
	result.MatchID = matchID
	log = log.With("match_id", matchID)

	snap, loadErr := scraper.Retry(ctx, p.Retry, log, "snapshot", func(ctx context.Context) (*models.MatchSnapshot, error) {
		return p.Source.Snapshot(ctx, matchURL)
	})
	if snap == nil {
		if loadErr == nil {
			loadErr = errors.New("source returned no snapshot")
		}
		log.Error("could not load match pages", "error", loadErr)
		p.fail(ctx, log, result, errors.Wrap(loadErr, "load snapshot"))
		result.Duration = time.Since(start)
		return result
	}

	out, err := p.parse(log, snap)
	if err != nil {
		p.fail(ctx, log, result, err)
		result.Duration = time.Since(start)
		return result
	}
	if loadErr != nil {
		log.Warn("match pages only partly rendered", "error", loadErr)
		out.problems = append([]string{loadErr.Error()}, out.problems...)
	}

	if err := p.persist(ctx, out); err != nil {
		log.Error("could not store match", "error", err)
		p.fail(ctx, log, result, err)
		result.Duration = time.Since(start)
		return result
	}

	result.EventCount = len(out.events)
	result.MetadataCount = 1
	result.Players = out.players
	result.Innings = out.innings
	result.Status = matchStatus(out)
	if len(out.problems) > 0 {
		result.Message = out.problems[0]
	}

	if p.Tracker != nil {
		entry := store.TrackerEntry{
			MatchID:      matchID,
			SourceURL:    matchURL,
			FolderName:   scraper.FolderName(out.details, matchURL),
			Status:       result.Status,
			MetadataRows: result.MetadataCount,
			EventsRows:   result.EventCount,
			PlayerRows:   len(out.players),
			ErrorMessage: result.Message,
		}
		if err := p.Tracker.Add(ctx, entry); err != nil {
			log.Warn("could not track match", "error", err)
		}
	}

	result.Duration = time.Since(start)
	log.Info("match processed",
		"status", result.Status,
		"events", result.EventCount,
		"players", len(result.Players),
		"duration", result.Duration)
	return result
}

func (p *Processor) parse(log *logging.Logger, snap *models.MatchSnapshot) (*matchOutput, error) {
	ps := parser.New(log)
	out := &matchOutput{}

	out.details = ps.ExtractMetadata(snap.ScorecardHTML, snap.MatchID)
	metadata, err := models.NewMatchMetadata(snap.MatchID, out.details)
	if err != nil {
		return nil, err
	}

	options := snap.InningsOptions
	if len(options) == 0 {
		for _, view := range snap.Innings {
			options = append(options, view.Label)
		}
	}
	metadata.ApplyInnings(parser.PlanInnings(options))
	out.metadata = metadata

	players, err := ps.ExtractPlayers(snap.ScorecardHTML, snap.MatchID)
	if err != nil {
		log.Warn("no roster extracted", "error", err)
		out.problems = append(out.problems, err.Error())
	}
	out.players = players

	for _, view := range snap.Innings {
		records, err := ps.ParseInnings(view.HTML, view.Label, snap.MatchID)
		if err != nil {
			log.Warn("innings not parsed", "innings", view.Label, "error", err)
			out.problems = append(out.problems, errors.Wrapf(err, "innings %q", view.Label).Error())
			continue
		}
		out.events = append(out.events, records...)
		out.innings = append(out.innings, view.Label)
	}
	if len(snap.Innings) == 0 {
		out.problems = append(out.problems, parser.ErrNoInnings.Error())
	}
	return out, nil
}

func (p *Processor) persist(ctx context.Context, out *matchOutput) error {
	if p.Repo != nil {
		if _, err := p.Repo.InsertMetadata(ctx, out.metadata); err != nil {
			return err
		}
		if _, err := p.Repo.InsertPlayers(ctx, out.players); err != nil {
			return err
		}
		if _, err := p.Repo.InsertEvents(ctx, out.events); err != nil {
			return err
		}
	}

	if p.Exporter != nil {
		_, err := p.Exporter.Export(ctx, export.MatchData{
			MatchID:  out.metadata.MatchID,
			Events:   out.events,
			Metadata: out.metadata,
			Players:  out.players,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) fail(ctx context.Context, log *logging.Logger, result *models.MatchResult, err error) {
	result.Status = models.StatusFailed
	result.Message = err.Error()
	if p.Tracker == nil {
		return
	}
	if err := p.Tracker.MarkFailed(ctx, result.MatchID, result.SourceURL, result.Message); err != nil {
		log.Warn("could not track failed match", "error", err)
	}
}

func matchStatus(out *matchOutput) models.MatchStatus {
	switch {
	case len(out.events) == 0 && len(out.players) == 0:
		return models.StatusFailed
	case len(out.problems) > 0:
		return models.StatusPartial
	default:
		return models.StatusCompleted
	}
}
