package models

import "time"

// TeamAvailability хранит недельное окно доступности команды.
// Уникальный индекс (team_id, day_of_week): не более одной записи на день.
type TeamAvailability struct {
	ID          int       `json:"id" db:"id"`
	TeamID      int       `json:"team_id" db:"team_id"`
	DayOfWeek   string    `json:"day_of_week" db:"day_of_week"`
	IsAvailable bool      `json:"is_available" db:"is_available"`
	StartTime   *string   `json:"start_time,omitempty" db:"start_time"`
	EndTime     *string   `json:"end_time,omitempty" db:"end_time"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// TeamAvailabilityRow — строка выборки доступности с присоединённым именем команды.
// TeamID/TeamName nullable: LEFT JOIN может вернуть осиротевшую запись.
type TeamAvailabilityRow struct {
	TeamID      *int    `json:"team_id" db:"team_id"`
	TeamName    *string `json:"team_name" db:"team_name"`
	DayOfWeek   string  `json:"day_of_week" db:"day_of_week"`
	IsAvailable bool    `json:"is_available" db:"is_available"`
	StartTime   *string `json:"start_time,omitempty" db:"start_time"`
	EndTime     *string `json:"end_time,omitempty" db:"end_time"`
}
