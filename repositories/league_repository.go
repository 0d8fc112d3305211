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
	ErrLeagueNotFound     = errors.New("league not found")
	ErrLeagueNameConflict = errors.New("league name conflict")
)

type LeagueRepository interface {
	Create(ctx context.Context, league *models.League) error
	GetByID(ctx context.Context, id int) (*models.League, error)
	List(ctx context.Context, status *models.LeagueStatus) ([]*models.League, error)
	Update(ctx context.Context, league *models.League) error
	UpdateDates(ctx context.Context, exec SQLExecutor, id int, start, end time.Time) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresLeagueRepository struct {
	db *sql.DB
}

func NewPostgresLeagueRepository(db *sql.DB) LeagueRepository {
	return &postgresLeagueRepository{db: db}
}

func (r *postgresLeagueRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const leagueColumns = `id, name, description, organizer_id, status, start_date, end_date, location, logo_key, created_at`

func scanLeague(row interface{ Scan(...interface{}) error }) (*models.League, error) {
	var league models.League
	err := row.Scan(
		&league.ID,
		&league.Name,
		&league.Description,
		&league.OrganizerID,
		&league.Status,
		&league.StartDate,
		&league.EndDate,
		&league.Location,
		&league.LogoKey,
		&league.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &league, nil
}

func (r *postgresLeagueRepository) Create(ctx context.Context, league *models.League) error {
	query := `
		INSERT INTO leagues (name, description, organizer_id, status, start_date, end_date, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		league.Name,
		league.Description,
		league.OrganizerID,
		league.Status,
		league.StartDate,
		league.EndDate,
		league.Location,
	).Scan(&league.ID, &league.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "leagues_name_key" {
				return ErrLeagueNameConflict
			}
		}
		return fmt.Errorf("failed to create league: %w", err)
	}
	return nil
}

func (r *postgresLeagueRepository) GetByID(ctx context.Context, id int) (*models.League, error) {
	query := `SELECT ` + leagueColumns + ` FROM leagues WHERE id = $1`

	league, err := scanLeague(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to get league %d: %w", id, err)
	}
	return league, nil
}

func (r *postgresLeagueRepository) List(ctx context.Context, status *models.LeagueStatus) ([]*models.League, error) {
	query := `SELECT ` + leagueColumns + ` FROM leagues`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues: %w", err)
	}
	defer rows.Close()

	leagues := make([]*models.League, 0)
	for rows.Next() {
		league, err := scanLeague(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan league row: %w", err)
		}
		leagues = append(leagues, league)
	}
	return leagues, rows.Err()
}

func (r *postgresLeagueRepository) Update(ctx context.Context, league *models.League) error {
	query := `
		UPDATE leagues
		SET name = $1, description = $2, status = $3, start_date = $4, end_date = $5, location = $6
		WHERE id = $7`

	result, err := r.db.ExecContext(ctx, query,
		league.Name,
		league.Description,
		league.Status,
		league.StartDate,
		league.EndDate,
		league.Location,
		league.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrLeagueNameConflict
		}
		return fmt.Errorf("failed to update league %d: %w", league.ID, err)
	}
	return checkAffectedRows(result, ErrLeagueNotFound)
}

func (r *postgresLeagueRepository) UpdateDates(ctx context.Context, exec SQLExecutor, id int, start, end time.Time) error {
	executor := r.getExecutor(exec)
	query := `UPDATE leagues SET start_date = $1, end_date = $2 WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, start, end, id)
	if err != nil {
		return fmt.Errorf("failed to update league %d dates: %w", id, err)
	}
	return checkAffectedRows(result, ErrLeagueNotFound)
}

func (r *postgresLeagueRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	query := `UPDATE leagues SET logo_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update league %d logo key: %w", id, err)
	}
	return checkAffectedRows(result, ErrLeagueNotFound)
}

func (r *postgresLeagueRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM leagues WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete league %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrLeagueNotFound)
}
