package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/league-system/models"
	"github.com/lib/pq"
)

var (
	ErrByeWeekDuplicate = errors.New("bye week already recorded for this team and week")
	ErrByeWeekInvalid   = errors.New("bye week conflict or invalid")
)

type ByeWeekRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, byes []*models.ByeWeek) error
	ListByLeague(ctx context.Context, leagueID int) ([]*models.ByeWeek, error)
	DeleteByLeague(ctx context.Context, exec SQLExecutor, leagueID int) error
}

type postgresByeWeekRepository struct {
	db *sql.DB
}

func NewPostgresByeWeekRepository(db *sql.DB) ByeWeekRepository {
	return &postgresByeWeekRepository{db: db}
}

func (r *postgresByeWeekRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresByeWeekRepository) CreateBatch(ctx context.Context, exec SQLExecutor, byes []*models.ByeWeek) error {
	if len(byes) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)

	// Уникальный индекс (league_id, team_id, week_number).
	query := `
		INSERT INTO bye_weeks (league_id, team_id, team_name, week_number)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	for _, bye := range byes {
		err := executor.QueryRowContext(ctx, query,
			bye.LeagueID,
			bye.TeamID,
			bye.TeamName,
			bye.WeekNumber,
		).Scan(&bye.ID, &bye.CreatedAt)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok {
				switch pqErr.Code {
				case "23505":
					return ErrByeWeekDuplicate
				case "23503":
					return ErrByeWeekInvalid
				}
			}
			return fmt.Errorf("failed to insert bye week %d for team %d: %w", bye.WeekNumber, bye.TeamID, err)
		}
	}
	return nil
}

func (r *postgresByeWeekRepository) ListByLeague(ctx context.Context, leagueID int) ([]*models.ByeWeek, error) {
	query := `
		SELECT id, league_id, team_id, team_name, week_number, created_at
		FROM bye_weeks
		WHERE league_id = $1
		ORDER BY week_number, team_id`

	rows, err := r.db.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bye weeks for league %d: %w", leagueID, err)
	}
	defer rows.Close()

	byes := make([]*models.ByeWeek, 0)
	for rows.Next() {
		var bye models.ByeWeek
		if err := rows.Scan(&bye.ID, &bye.LeagueID, &bye.TeamID, &bye.TeamName, &bye.WeekNumber, &bye.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bye week row: %w", err)
		}
		byes = append(byes, &bye)
	}
	return byes, rows.Err()
}

func (r *postgresByeWeekRepository) DeleteByLeague(ctx context.Context, exec SQLExecutor, leagueID int) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM bye_weeks WHERE league_id = $1`, leagueID); err != nil {
		return fmt.Errorf("failed to delete bye weeks of league %d: %w", leagueID, err)
	}
	return nil
}
