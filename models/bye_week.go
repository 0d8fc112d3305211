// File: models/bye_week.go
package models

import "time"

// ByeWeek создаётся только при нечётном числе команд.
// Уникальный индекс (league_id, team_id, week_number).
type ByeWeek struct {
	ID         int       `json:"id" db:"id"`
	LeagueID   int       `json:"league_id" db:"league_id"`
	TeamID     int       `json:"team_id" db:"team_id"`
	TeamName   string    `json:"team_name" db:"team_name"`
	WeekNumber int       `json:"week_number" db:"week_number"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
