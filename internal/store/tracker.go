package store

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/myusername/cricket-commentary-scraper/pkg/models"
)

// ErrNotTracked means the tracker holds no row for a match
var ErrNotTracked = errors.New("match not tracked")

// TrackerEntry is one row of the download tracker
type TrackerEntry struct {
	MatchID      int64              `db:"match_id"`
	SourceURL    string             `db:"source_url"`
	FolderName   string             `db:"folder_name"`
	Status       models.MatchStatus `db:"status"`
	MetadataRows int                `db:"metadata_rows"`
	EventsRows   int                `db:"events_rows"`
	PlayerRows   int                `db:"player_rows"`
	ErrorMessage string             `db:"error_message"`
	Attempts     int                `db:"attempts"`
}

// TrackerStats counts tracked matches per status
type TrackerStats struct {
	Total     int `db:"total"`
	Completed int `db:"completed"`
	Partial   int `db:"partial"`
	Failed    int `db:"failed"`
}

// Tracker records which matches were downloaded so runs can skip them
type Tracker struct {
	db *sqlx.DB
}

// NewTracker returns a Tracker over the match_download_tracker table
func NewTracker(db *sqlx.DB) *Tracker {
	return &Tracker{db: db}
}

type trackerRow struct {
	MatchID      int64  `db:"match_id"`
	SourceURL    string `db:"source_url"`
	FolderName   string `db:"folder_name"`
	Status       string `db:"status"`
	MetadataRows int    `db:"metadata_rows"`
	EventsRows   int    `db:"events_rows"`
	PlayerRows   int    `db:"player_rows"`
	ErrorMessage string `db:"error_message"`
}

const upsertTrackerQuery = `INSERT INTO match_download_tracker
    (match_id, source_url, folder_name, status, metadata_rows, events_rows, player_rows, error_message)
VALUES
    (:match_id, :source_url, :folder_name, :status, :metadata_rows, :events_rows, :player_rows, :error_message)
ON CONFLICT (match_id) DO UPDATE SET
    source_url = EXCLUDED.source_url,
    folder_name = EXCLUDED.folder_name,
    status = EXCLUDED.status,
    metadata_rows = EXCLUDED.metadata_rows,
    events_rows = EXCLUDED.events_rows,
    player_rows = EXCLUDED.player_rows,
    error_message = EXCLUDED.error_message,
    attempts = match_download_tracker.attempts + 1,
    updated_at = CURRENT_TIMESTAMP`

// Add records the outcome of a match, replacing any earlier outcome
func (t *Tracker) Add(ctx context.Context, entry TrackerEntry) error {
	if entry.Status == "" {
		entry.Status = models.StatusCompleted
	}
	row := trackerRow{
		MatchID:      entry.MatchID,
		SourceURL:    entry.SourceURL,
		FolderName:   entry.FolderName,
		Status:       string(entry.Status),
		MetadataRows: entry.MetadataRows,
		EventsRows:   entry.EventsRows,
		PlayerRows:   entry.PlayerRows,
		ErrorMessage: entry.ErrorMessage,
	}
	if _, err := t.db.NamedExecContext(ctx, upsertTrackerQuery, row); err != nil {
		return errors.Wrapf(err, "track match %d", entry.MatchID)
	}
	return nil
}

// MarkFailed records a failed attempt for a match
func (t *Tracker) MarkFailed(ctx context.Context, matchID int64, sourceURL, message string) error {
	return t.Add(ctx, TrackerEntry{
		MatchID:      matchID,
		SourceURL:    sourceURL,
		Status:       models.StatusFailed,
		ErrorMessage: message,
	})
}

// Exists reports whether the match has any tracker row
func (t *Tracker) Exists(ctx context.Context, matchID int64) (bool, error) {
	var n int
	query := t.db.Rebind(`SELECT COUNT(*) FROM match_download_tracker WHERE match_id = ?`)
	if err := t.db.GetContext(ctx, &n, query, matchID); err != nil {
		return false, errors.Wrapf(err, "check match %d", matchID)
	}
	return n > 0, nil
}

// Get returns the tracker row of a match or ErrNotTracked
func (t *Tracker) Get(ctx context.Context, matchID int64) (*TrackerEntry, error) {
	var entry TrackerEntry
	query := t.db.Rebind(`SELECT match_id, source_url, folder_name, status, metadata_rows, events_rows, player_rows, error_message, attempts
FROM match_download_tracker WHERE match_id = ?`)
	if err := t.db.GetContext(ctx, &entry, query, matchID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(ErrNotTracked, "match %d", matchID)
		}
		return nil, errors.Wrapf(err, "get match %d", matchID)
	}
	return &entry, nil
}

// Count returns the number of tracked matches
func (t *Tracker) Count(ctx context.Context) (int, error) {
	var n int
	if err := t.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM match_download_tracker`); err != nil {
		return 0, errors.Wrap(err, "count tracked matches")
	}
	return n, nil
}

// CompletedIDs lists every match whose last attempt completed
func (t *Tracker) CompletedIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	query := t.db.Rebind(`SELECT match_id FROM match_download_tracker WHERE status = ? ORDER BY match_id`)
	if err := t.db.SelectContext(ctx, &ids, query, string(models.StatusCompleted)); err != nil {
		return nil, errors.Wrap(err, "list completed matches")
	}
	return ids, nil
}

// Failed lists the matches whose last attempt failed
func (t *Tracker) Failed(ctx context.Context) ([]TrackerEntry, error) {
	var entries []TrackerEntry
	query := t.db.Rebind(`SELECT match_id, source_url, folder_name, status, metadata_rows, events_rows, player_rows, error_message, attempts
FROM match_download_tracker WHERE status = ? ORDER BY match_id`)
	if err := t.db.SelectContext(ctx, &entries, query, string(models.StatusFailed)); err != nil {
		return nil, errors.Wrap(err, "list failed matches")
	}
	return entries, nil
}

// Stats counts tracked matches per status
func (t *Tracker) Stats(ctx context.Context) (TrackerStats, error) {
	var stats TrackerStats
	query := `SELECT
    COUNT(*) AS total,
    COUNT(CASE WHEN status = 'completed' THEN 1 END) AS completed,
    COUNT(CASE WHEN status = 'partial' THEN 1 END) AS partial,
    COUNT(CASE WHEN status = 'failed' THEN 1 END) AS failed
FROM match_download_tracker`
	if err := t.db.GetContext(ctx, &stats, query); err != nil {
		return TrackerStats{}, errors.Wrap(err, "tracker stats")
	}
	return stats, nil
}
