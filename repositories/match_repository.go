package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/league-system/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchTeamInvalid = errors.New("match team conflict or invalid")
)

// unassignedDateCutoff повторяет конвенцию сентинеля: match_date начиная с
// 2099-01-01 означает "дата не назначена" и исключается из выборок по дате.
const unassignedDateCutoff = "2099-01-01"

type MatchRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByLeague(ctx context.Context, leagueID int) ([]*models.Match, error)
	// ListOnDate возвращает матчи с реальной (не сентинельной) датой на
	// указанный календарный день; excludeMatchID > 0 исключает сам матч при
	// ручном переназначении даты.
	ListOnDate(ctx context.Context, date time.Time, excludeMatchID int) ([]*models.Match, error)
	UpdateSchedule(ctx context.Context, id int, date time.Time, matchTime string, needsManualAssignment bool) error
	DeleteByLeague(ctx context.Context, exec SQLExecutor, leagueID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, league_id, home_team_id, away_team_id, home_team_name, away_team_name,
		match_date, match_time, week_number, status, home_score, away_score, needs_manual_assignment, created_at`

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var match models.Match
	err := row.Scan(
		&match.ID,
		&match.LeagueID,
		&match.HomeTeamID,
		&match.AwayTeamID,
		&match.HomeTeamName,
		&match.AwayTeamName,
		&match.MatchDate,
		&match.MatchTime,
		&match.WeekNumber,
		&match.Status,
		&match.HomeScore,
		&match.AwayScore,
		&match.NeedsManualAssignment,
		&match.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (r *postgresMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	if len(matches) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)

	query := `
		INSERT INTO matches
			(league_id, home_team_id, away_team_id, home_team_name, away_team_name,
			 match_date, match_time, week_number, status, needs_manual_assignment)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	for _, match := range matches {
		err := executor.QueryRowContext(ctx, query,
			match.LeagueID,
			match.HomeTeamID,
			match.AwayTeamID,
			match.HomeTeamName,
			match.AwayTeamName,
			match.MatchDate,
			match.MatchTime,
			match.WeekNumber,
			match.Status,
			match.NeedsManualAssignment,
		).Scan(&match.ID, &match.CreatedAt)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
				return ErrMatchTeamInvalid
			}
			return fmt.Errorf("failed to insert match week %d (%d vs %d): %w",
				match.WeekNumber, match.HomeTeamID, match.AwayTeamID, err)
		}
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	match, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByLeague(ctx context.Context, leagueID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE league_id = $1 ORDER BY week_number, match_date, id`

	rows, err := r.db.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for league %d: %w", leagueID, err)
	}
	defer rows.Close()

	return collectMatches(rows)
}

func (r *postgresMatchRepository) ListOnDate(ctx context.Context, date time.Time, excludeMatchID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + `
		FROM matches
		WHERE match_date = $1 AND match_date < $2 AND id <> $3`

	rows, err := r.db.QueryContext(ctx, query, date, unassignedDateCutoff, excludeMatchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches on %s: %w", date.Format("2006-01-02"), err)
	}
	defer rows.Close()

	return collectMatches(rows)
}

func (r *postgresMatchRepository) UpdateSchedule(ctx context.Context, id int, date time.Time, matchTime string, needsManualAssignment bool) error {
	query := `
		UPDATE matches
		SET match_date = $1, match_time = $2, needs_manual_assignment = $3
		WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, date, matchTime, needsManualAssignment, id)
	if err != nil {
		return fmt.Errorf("failed to update schedule of match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteByLeague(ctx context.Context, exec SQLExecutor, leagueID int) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM matches WHERE league_id = $1`, leagueID); err != nil {
		return fmt.Errorf("failed to delete matches of league %d: %w", leagueID, err)
	}
	return nil
}

func collectMatches(rows *sql.Rows) ([]*models.Match, error) {
	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}
