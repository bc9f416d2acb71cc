package pipeline

import (
	"context"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/myusername/cricket-commentary-scraper/internal/logging"
	"github.com/myusername/cricket-commentary-scraper/pkg/models"
	"github.com/myusername/cricket-commentary-scraper/pkg/scraper"
)

// MatchProcessor handles a single match URL
type MatchProcessor interface {
	ProcessMatch(ctx context.Context, matchURL string) *models.MatchResult
}

// RunSummary counts the outcomes of one run
type RunSummary struct {
	RunID     string
	Completed int
	Partial   int
	Failed    int
	Skipped   int
}

// Runner processes many matches on a worker pool, one worker per match
type Runner struct {
	processor MatchProcessor
	tracker   Tracker
	workers   int
	log       *logging.Logger
	runID     string

	seenMu sync.Mutex
	seen   map[int64]struct{}
}

// NewRunner returns a Runner with a fresh run id; tracker may be nil
func NewRunner(processor MatchProcessor, tracker Tracker, workers int, log *logging.Logger) *Runner {
	if workers <= 0 {
		workers = 1
	}
	runID := uuid.NewString()
	return &Runner{
		processor: processor,
		tracker:   tracker,
		workers:   workers,
		log:       log.With("run_id", runID),
		runID:     runID,
		seen:      make(map[int64]struct{}),
	}
}

// RunID identifies this run in logs, summaries and notifications
func (r *Runner) RunID() string {
	return r.runID
}

// Logger returns the run scoped logger
func (r *Runner) Logger() *logging.Logger {
	return r.log
}

// Seed marks every match the tracker reports as completed so it is skipped
func (r *Runner) Seed(ctx context.Context) error {
	if r.tracker == nil {
		return nil
	}
	ids, err := r.tracker.CompletedIDs(ctx)
	if err != nil {
		return errors.Wrap(err, "seed completed matches")
	}
	for _, id := range ids {
		r.markSeen(id)
	}
	r.log.Info("seeded completed matches", "count", len(ids))
	return nil
}

// Run processes every URL once. Results are ordered by match id.
func (r *Runner) Run(ctx context.Context, matchURLs []string) ([]*models.MatchResult, RunSummary, error) {
	summary := RunSummary{RunID: r.runID}

	pool, err := ants.NewPool(r.workers)
	if err != nil {
		return nil, summary, errors.Wrap(err, "create worker pool")
	}
	defer pool.Release()

	results := make(chan *models.MatchResult, len(matchURLs))
	var workers sync.WaitGroup

	for _, matchURL := range matchURLs {
		if err := ctx.Err(); err != nil {
			break
		}

		if matchID, err := scraper.ExtractMatchID(matchURL); err == nil {
			if !r.claim(matchID) {
				r.log.Info("skipping seen match", "match_id", matchID)
				results <- &models.MatchResult{MatchID: matchID, SourceURL: matchURL, Status: models.StatusSkipped}
				continue
			}
		}

		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			results <- r.processor.ProcessMatch(ctx, matchURL)
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, summary, errors.Wrap(err, "submit match to worker pool")
		}
	}

	workers.Wait()
	close(results)

	var out []*models.MatchResult
	for res := range results {
		out = append(out, res)
		switch res.Status {
		case models.StatusCompleted:
			summary.Completed++
		case models.StatusPartial:
			summary.Partial++
		case models.StatusSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MatchID < out[j].MatchID
	})

	r.log.Info("run finished",
		"completed", summary.Completed,
		"partial", summary.Partial,
		"failed", summary.Failed,
		"skipped", summary.Skipped)
	return out, summary, ctx.Err()
}

// claim reports whether the match was unseen and marks it seen
func (r *Runner) claim(matchID int64) bool {
	r.seenMu.Lock()
	defer r.seenMu.Unlock()
	if _, ok := r.seen[matchID]; ok {
		return false
	}
	r.seen[matchID] = struct{}{}
	return true
}

func (r *Runner) markSeen(matchID int64) {
	r.seenMu.Lock()
	defer r.seenMu.Unlock()
	r.seen[matchID] = struct{}{}
}
