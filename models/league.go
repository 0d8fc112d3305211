package models

import "time"

// LeagueStatus представляет статусы лиги, соответствующие ENUM в БД.
type LeagueStatus string

const (
	LeagueStatusSoon         LeagueStatus = "soon"
	LeagueStatusRegistration LeagueStatus = "registration"
	LeagueStatusActive       LeagueStatus = "active"
	LeagueStatusCompleted    LeagueStatus = "completed"
	LeagueStatusCanceled     LeagueStatus = "canceled"
)

// League представляет лигу клуба.
type League struct {
	ID          int          `json:"id" db:"id"`
	Name        string       `json:"name" db:"name"`
	Description *string      `json:"description,omitempty" db:"description"`
	OrganizerID int          `json:"organizer_id" db:"organizer_id"`
	Status      LeagueStatus `json:"status" db:"status"`
	StartDate   *time.Time   `json:"start_date,omitempty" db:"start_date"`
	EndDate     *time.Time   `json:"end_date,omitempty" db:"end_date"`
	Location    *string      `json:"location,omitempty" db:"location"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	LogoKey     *string      `json:"-" db:"logo_key"`
	LogoURL     *string      `json:"logo_url,omitempty" db:"-"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Organizer *User  `json:"organizer,omitempty" db:"-"`
	Teams     []Team `json:"teams,omitempty" db:"-"`
}
