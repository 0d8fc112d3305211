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
	ErrAvailabilityNotFound = errors.New("availability record not found")
	ErrAvailabilityInvalid  = errors.New("availability conflict or invalid")
)

type AvailabilityRepository interface {
	Upsert(ctx context.Context, record *models.TeamAvailability) error
	ListByTeam(ctx context.Context, teamID int) ([]*models.TeamAvailability, error)
	// ListRowsByLeague возвращает все записи доступности команд лиги вместе с
	// именем команды (LEFT JOIN, поэтому team_id/team_name nullable).
	ListRowsByLeague(ctx context.Context, leagueID int) ([]*models.TeamAvailabilityRow, error)
	CountByTeams(ctx context.Context, teamIDs []int) (map[int]int, error)
}

type postgresAvailabilityRepository struct {
	db *sql.DB
}

func NewPostgresAvailabilityRepository(db *sql.DB) AvailabilityRepository {
	return &postgresAvailabilityRepository{db: db}
}

func (r *postgresAvailabilityRepository) Upsert(ctx context.Context, record *models.TeamAvailability) error {
	// Уникальный индекс (team_id, day_of_week): не более одной записи на день.
	query := `
		INSERT INTO team_availability (team_id, day_of_week, is_available, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (team_id, day_of_week)
		DO UPDATE SET is_available = EXCLUDED.is_available,
		              start_time   = EXCLUDED.start_time,
		              end_time     = EXCLUDED.end_time
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		record.TeamID,
		record.DayOfWeek,
		record.IsAvailable,
		record.StartTime,
		record.EndTime,
	).Scan(&record.ID, &record.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrAvailabilityInvalid
		}
		return fmt.Errorf("failed to upsert availability for team %d: %w", record.TeamID, err)
	}
	return nil
}

func (r *postgresAvailabilityRepository) ListByTeam(ctx context.Context, teamID int) ([]*models.TeamAvailability, error) {
	query := `
		SELECT id, team_id, day_of_week, is_available, start_time, end_time, created_at
		FROM team_availability
		WHERE team_id = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability for team %d: %w", teamID, err)
	}
	defer rows.Close()

	records := make([]*models.TeamAvailability, 0)
	for rows.Next() {
		var rec models.TeamAvailability
		if err := rows.Scan(&rec.ID, &rec.TeamID, &rec.DayOfWeek, &rec.IsAvailable, &rec.StartTime, &rec.EndTime, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan availability row: %w", err)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

func (r *postgresAvailabilityRepository) ListRowsByLeague(ctx context.Context, leagueID int) ([]*models.TeamAvailabilityRow, error) {
	query := `
		SELECT t.id, t.name, a.day_of_week, a.is_available, a.start_time, a.end_time
		FROM team_availability a
		LEFT JOIN teams t ON t.id = a.team_id
		WHERE t.league_id = $1
		ORDER BY t.id, a.id`

	rows, err := r.db.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability rows for league %d: %w", leagueID, err)
	}
	defer rows.Close()

	records := make([]*models.TeamAvailabilityRow, 0)
	for rows.Next() {
		var rec models.TeamAvailabilityRow
		if err := rows.Scan(&rec.TeamID, &rec.TeamName, &rec.DayOfWeek, &rec.IsAvailable, &rec.StartTime, &rec.EndTime); err != nil {
			return nil, fmt.Errorf("failed to scan availability row: %w", err)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// CountByTeams возвращает число записей доступности по каждой команде; команды
// без записей в карте отсутствуют.
func (r *postgresAvailabilityRepository) CountByTeams(ctx context.Context, teamIDs []int) (map[int]int, error) {
	counts := make(map[int]int, len(teamIDs))
	if len(teamIDs) == 0 {
		return counts, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT team_id, COUNT(*) FROM team_availability WHERE team_id = ANY($1) GROUP BY team_id`,
		pq.Array(teamIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to count availability records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var teamID, count int
		if err := rows.Scan(&teamID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan availability count: %w", err)
		}
		counts[teamID] = count
	}
	return counts, rows.Err()
}
