package store

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/myusername/cricket-commentary-scraper/pkg/models"
)

const (
	insertEventQuery = `INSERT INTO match_events
    (match_id, innings, match_ball_number, event, ball, commentary, bowler, batsman, is_super_over)
VALUES
    (:match_id, :innings, :match_ball_number, :event, :ball, :commentary, :bowler, :batsman, :is_super_over)
ON CONFLICT DO NOTHING`

	insertMetadataQuery = `INSERT INTO match_metadata
    (match_id, details, has_super_over, super_over_count, first_innings, second_innings, player_replacements)
VALUES
    (:match_id, :details, :has_super_over, :super_over_count, :first_innings, :second_innings, :player_replacements)
ON CONFLICT DO NOTHING`

	insertPlayerQuery = `INSERT INTO match_players
    (match_id, player_name, innings, team, batted, batting_position, player_type, retired, not_out, bowled)
VALUES
    (:match_id, :player_name, :innings, :team, :batted, :batting_position, :player_type, :retired, :not_out, :bowled)
ON CONFLICT DO NOTHING`
)

// Repository appends match records; rows whose key already exists are ignored
type Repository struct {
	db *sqlx.DB
}

// NewRepository returns a Repository over an open, migrated database
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

type metadataRow struct {
	MatchID            int64   `db:"match_id"`
	Details            string  `db:"details"`
	HasSuperOver       bool    `db:"has_super_over"`
	SuperOverCount     int     `db:"super_over_count"`
	FirstInnings       *string `db:"first_innings"`
	SecondInnings      *string `db:"second_innings"`
	PlayerReplacements string  `db:"player_replacements"`
}

type playerRow struct {
	MatchID         int64  `db:"match_id"`
	PlayerName      string `db:"player_name"`
	Innings         string `db:"innings"`
	Team            string `db:"team"`
	Batted          bool   `db:"batted"`
	BattingPosition *int   `db:"batting_position"`
	PlayerType      string `db:"player_type"`
	Retired         bool   `db:"retired"`
	NotOut          bool   `db:"not_out"`
	Bowled          bool   `db:"bowled"`
}

// InsertEvents stores commentary records and returns how many rows were new
func (r *Repository) InsertEvents(ctx context.Context, events []models.CommentaryRecord) (int64, error) {
	rows := make([]any, 0, len(events))
	for _, e := range events {
		rows = append(rows, e)
	}
	n, err := r.insertEach(ctx, insertEventQuery, rows)
	if err != nil {
		return n, errors.Wrap(err, "insert match events")
	}
	return n, nil
}

// InsertMetadata stores one metadata row per match
func (r *Repository) InsertMetadata(ctx context.Context, metadata *models.MatchMetadata) (int64, error) {
	details, err := metadata.DetailsJSON()
	if err != nil {
		return 0, err
	}
	row := metadataRow{
		MatchID:            metadata.MatchID,
		Details:            details,
		HasSuperOver:       metadata.HasSuperOver,
		SuperOverCount:     metadata.SuperOverCount,
		FirstInnings:       metadata.FirstInnings,
		SecondInnings:      metadata.SecondInnings,
		PlayerReplacements: metadata.PlayerReplacements,
	}
	n, err := r.insertEach(ctx, insertMetadataQuery, []any{row})
	if err != nil {
		return n, errors.Wrapf(err, "insert metadata of match %d", metadata.MatchID)
	}
	return n, nil
}

// InsertPlayers stores roster records and returns how many rows were new
func (r *Repository) InsertPlayers(ctx context.Context, players []models.PlayerRecord) (int64, error) {
	rows := make([]any, 0, len(players))
	for _, p := range players {
		rows = append(rows, playerRow{
			MatchID:         p.MatchID,
			PlayerName:      p.PlayerName,
			Innings:         p.Innings,
			Team:            p.Team,
			Batted:          p.Batted,
			BattingPosition: p.BattingPosition,
			PlayerType:      string(p.PlayerType),
			Retired:         p.Retired,
			NotOut:          p.NotOut,
			Bowled:          p.Bowled,
		})
	}
	n, err := r.insertEach(ctx, insertPlayerQuery, rows)
	if err != nil {
		return n, errors.Wrap(err, "insert match players")
	}
	return n, nil
}

func (r *Repository) insertEach(ctx context.Context, query string, rows []any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin tx")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var inserted int64
	for _, row := range rows {
		res, err := tx.NamedExecContext(ctx, query, row)
		if err != nil {
			return 0, err
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit tx")
	}
	return inserted, nil
}

// CountEvents returns the number of stored commentary rows of a match
func (r *Repository) CountEvents(ctx context.Context, matchID int64) (int, error) {
	var n int
	query := r.db.Rebind(`SELECT COUNT(*) FROM match_events WHERE match_id = ?`)
	if err := r.db.GetContext(ctx, &n, query, matchID); err != nil {
		return 0, errors.Wrapf(err, "count events of match %d", matchID)
	}
	return n, nil
}

// Players returns the stored roster of a match ordered by team and name
func (r *Repository) Players(ctx context.Context, matchID int64) ([]models.PlayerRecord, error) {
	var rows []playerRow
	query := r.db.Rebind(`SELECT match_id, player_name, innings, team, batted, batting_position, player_type, retired, not_out, bowled
FROM match_players WHERE match_id = ? ORDER BY team, player_name`)
	if err := r.db.SelectContext(ctx, &rows, query, matchID); err != nil {
		return nil, errors.Wrapf(err, "select players of match %d", matchID)
	}

	players := make([]models.PlayerRecord, 0, len(rows))
	for _, row := range rows {
		players = append(players, models.PlayerRecord{
			MatchID:         row.MatchID,
			Innings:         row.Innings,
			Team:            row.Team,
			PlayerName:      row.PlayerName,
			Batted:          row.Batted,
			BattingPosition: row.BattingPosition,
			PlayerType:      models.PlayerType(row.PlayerType),
			Retired:         row.Retired,
			NotOut:          row.NotOut,
			Bowled:          row.Bowled,
		})
	}
	return players, nil
}
