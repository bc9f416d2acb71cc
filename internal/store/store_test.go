package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myusername/cricket-commentary-scraper/pkg/models"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "matches.db")

	require.NoError(t, Migrate(DriverSQLite, path))
	db, err := Open(context.Background(), DriverSQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int { return &n }

func TestMigrationURL(t *testing.T) {
	url, err := MigrationURL(DriverSQLite, "file:/tmp/m.db")
	require.NoError(t, err)
	assert.Equal(t, "sqlite:///tmp/m.db", url)

	url, err = MigrationURL(DriverPgx, "postgres://u:p@localhost:5432/cricket?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@localhost:5432/cricket?sslmode=disable", url)

	_, err = MigrationURL(DriverPostgres, "host=localhost user=secret@x")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret")

	_, err = MigrationURL("mysql", "x")
	require.Error(t, err)
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "x")
	require.Error(t, err)
}

func TestMigrateIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.db")
	require.NoError(t, Migrate(DriverSQLite, path))
	require.NoError(t, Migrate(DriverSQLite, path))
}

func TestRepositoryInsertEventsIgnoresDuplicates(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	events := []models.CommentaryRecord{
		{MatchBallNumber: 1, Event: "FOUR", Ball: "0.1", Commentary: "driven", Bowler: strPtr("Starc"), Batsman: strPtr("Root"), Innings: "ENG Innings", MatchID: 7},
		{MatchBallNumber: 2, Event: "", Ball: "0.2", Commentary: "defended", Innings: "ENG Innings", MatchID: 7},
	}

	n, err := repo.InsertEvents(ctx, events)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.InsertEvents(ctx, events)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	count, err := repo.CountEvents(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	n, err = repo.InsertEvents(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRepositoryInsertMetadata(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	meta, err := models.NewMatchMetadata(7, map[string]string{
		"Venue":               "Lord's",
		"England Replacement": "A (in) for B",
		models.MatchIDKey:     "7",
	})
	require.NoError(t, err)
	meta.ApplyInnings(models.InningsPlan{Regular: []string{"ENG Innings", "AUS Innings"}})

	n, err := repo.InsertMetadata(ctx, meta)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var stored struct {
		Details            string  `db:"details"`
		FirstInnings       *string `db:"first_innings"`
		PlayerReplacements string  `db:"player_replacements"`
	}
	require.NoError(t, db.GetContext(ctx, &stored,
		db.Rebind(`SELECT details, first_innings, player_replacements FROM match_metadata WHERE match_id = ?`), 7))
	assert.Equal(t, `{"MatchID":"7","Venue":"Lord's"}`, stored.Details)
	require.NotNil(t, stored.FirstInnings)
	assert.Equal(t, "ENG Innings", *stored.FirstInnings)
	assert.Equal(t, `{"England Replacement":"A (in) for B"}`, stored.PlayerReplacements)

	n, err = repo.InsertMetadata(ctx, meta)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRepositoryPlayersRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	players := []models.PlayerRecord{
		{MatchID: 7, Innings: "innings_1", Team: "England", PlayerName: "Joe Root", Batted: true, BattingPosition: intPtr(3), PlayerType: models.PlayerTypeRegular, NotOut: true},
		{MatchID: 7, Innings: "innings_2", Team: "Australia", PlayerName: "Mitchell Starc", PlayerType: models.PlayerTypeImpact, Bowled: true},
	}
	n, err := repo.InsertPlayers(ctx, players)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	stored, err := repo.Players(ctx, 7)
	require.NoError(t, err)
	require.Len(t, stored, 2)

	assert.Equal(t, "Mitchell Starc", stored[0].PlayerName)
	assert.Equal(t, models.PlayerTypeImpact, stored[0].PlayerType)
	assert.True(t, stored[0].Bowled)
	assert.Nil(t, stored[0].BattingPosition)

	assert.Equal(t, "Joe Root", stored[1].PlayerName)
	require.NotNil(t, stored[1].BattingPosition)
	assert.Equal(t, 3, *stored[1].BattingPosition)
	assert.True(t, stored[1].NotOut)
}

func TestTrackerLifecycle(t *testing.T) {
	db := openTestDB(t)
	tracker := NewTracker(db)
	ctx := context.Background()

	exists, err := tracker.Exists(ctx, 7)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = tracker.Get(ctx, 7)
	require.ErrorIs(t, err, ErrNotTracked)

	require.NoError(t, tracker.MarkFailed(ctx, 7, "https://example.org/7", "timeout"))
	entry, err := tracker.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, entry.Status)
	assert.Equal(t, "timeout", entry.ErrorMessage)
	assert.Equal(t, 1, entry.Attempts)

	require.NoError(t, tracker.Add(ctx, TrackerEntry{
		MatchID:      7,
		SourceURL:    "https://example.org/7",
		FolderName:   "20240101_eng-vs-aus",
		MetadataRows: 1,
		EventsRows:   240,
		PlayerRows:   22,
	}))
	entry, err = tracker.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, entry.Status)
	assert.Equal(t, 240, entry.EventsRows)
	assert.Empty(t, entry.ErrorMessage)
	assert.Equal(t, 2, entry.Attempts)

	exists, err = tracker.Exists(ctx, 7)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestTrackerQueries(t *testing.T) {
	db := openTestDB(t)
	tracker := NewTracker(db)
	ctx := context.Background()

	require.NoError(t, tracker.Add(ctx, TrackerEntry{MatchID: 3}))
	require.NoError(t, tracker.Add(ctx, TrackerEntry{MatchID: 1}))
	require.NoError(t, tracker.Add(ctx, TrackerEntry{MatchID: 2, Status: models.StatusPartial}))
	require.NoError(t, tracker.MarkFailed(ctx, 4, "", "no innings"))

	count, err := tracker.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	ids, err := tracker.CompletedIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids)

	failed, err := tracker.Failed(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, int64(4), failed[0].MatchID)

	stats, err := tracker.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, TrackerStats{Total: 4, Completed: 2, Partial: 1, Failed: 1}, stats)
}
