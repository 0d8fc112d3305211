// File: repositories/member_repository.go
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
	ErrMemberNotFound  = errors.New("team member not found")
	ErrMemberDuplicate = errors.New("user is already on the team roster")
	ErrMemberInvalid   = errors.New("team member conflict or invalid")
)

// TeamMemberRepository управляет составами команд. Выборки user id кормят
// проверку конфликтов игроков при генерации календаря.
type TeamMemberRepository interface {
	Add(ctx context.Context, member *models.TeamMember) error
	Remove(ctx context.Context, teamID, userID int) error
	ListByTeam(ctx context.Context, teamID int) ([]*models.TeamMember, error)
	ListUserIDsByTeam(ctx context.Context, teamID int) ([]int, error)
	ListUserIDsByTeams(ctx context.Context, teamIDs []int) (map[int][]int, error)
}

type postgresTeamMemberRepository struct {
	db *sql.DB
}

func NewPostgresTeamMemberRepository(db *sql.DB) TeamMemberRepository {
	return &postgresTeamMemberRepository{db: db}
}

func (r *postgresTeamMemberRepository) Add(ctx context.Context, member *models.TeamMember) error {
	query := `
		INSERT INTO team_members (team_id, user_id)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, member.TeamID, member.UserID).
		Scan(&member.ID, &member.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				return ErrMemberDuplicate
			case "23503": // foreign_key_violation
				return ErrMemberInvalid
			}
		}
		return fmt.Errorf("failed to add member %d to team %d: %w", member.UserID, member.TeamID, err)
	}
	return nil
}

func (r *postgresTeamMemberRepository) Remove(ctx context.Context, teamID, userID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`, teamID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member %d from team %d: %w", userID, teamID, err)
	}
	return checkAffectedRows(result, ErrMemberNotFound)
}

func (r *postgresTeamMemberRepository) ListByTeam(ctx context.Context, teamID int) ([]*models.TeamMember, error) {
	query := `SELECT id, team_id, user_id, created_at FROM team_members WHERE team_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of team %d: %w", teamID, err)
	}
	defer rows.Close()

	members := make([]*models.TeamMember, 0)
	for rows.Next() {
		var member models.TeamMember
		if err := rows.Scan(&member.ID, &member.TeamID, &member.UserID, &member.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team member row: %w", err)
		}
		members = append(members, &member)
	}
	return members, rows.Err()
}

func (r *postgresTeamMemberRepository) ListUserIDsByTeam(ctx context.Context, teamID int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM team_members WHERE team_id = $1`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids of team %d: %w", teamID, err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListUserIDsByTeams выбирает составы нескольких команд одним запросом —
// проверка конфликтов на дату обходится одной поездкой в БД вместо N.
func (r *postgresTeamMemberRepository) ListUserIDsByTeams(ctx context.Context, teamIDs []int) (map[int][]int, error) {
	result := make(map[int][]int, len(teamIDs))
	if len(teamIDs) == 0 {
		return result, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT team_id, user_id FROM team_members WHERE team_id = ANY($1)`, pq.Array(teamIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids for %d teams: %w", len(teamIDs), err)
	}
	defer rows.Close()

	for rows.Next() {
		var teamID, userID int
		if err := rows.Scan(&teamID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan roster row: %w", err)
		}
		result[teamID] = append(result[teamID], userID)
	}
	return result, rows.Err()
}
