package models

import "time"

// TeamGender соответствует ENUM team_gender в БД.
type TeamGender string

const (
	GenderMen   TeamGender = "men"
	GenderWomen TeamGender = "women"
	GenderMixed TeamGender = "mixed"
)

type Team struct {
	ID        int        `json:"id" db:"id"`
	LeagueID  int        `json:"league_id" db:"league_id"`
	Name      string     `json:"name" db:"name"`
	Level     string     `json:"level" db:"level"`
	Gender    TeamGender `json:"gender" db:"gender"`
	CaptainID int        `json:"captain_id" db:"captain_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`

	League  *League `json:"league,omitempty" db:"-"`
	Captain *User   `json:"captain,omitempty" db:"-"`
	Members []User  `json:"members,omitempty" db:"-"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}
