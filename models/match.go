package models

import "time"

// MatchStatus представляет статусы матча, соответствующие ENUM в БД.
type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchCompleted MatchStatus = "completed"
	MatchCanceled  MatchStatus = "canceled"
)

// PlaceholderMatchDate — сентинель "дата не назначена" для NOT NULL колонки
// match_date. Любая дата начиная с unassignedDateThreshold трактуется как
// неназначенная во всех выборках.
var (
	PlaceholderMatchDate    = time.Date(2099, time.December, 31, 0, 0, 0, 0, time.UTC)
	unassignedDateThreshold = time.Date(2099, time.January, 1, 0, 0, 0, 0, time.UTC)
)

type Match struct {
	ID           int         `json:"id" db:"id"`
	LeagueID     int         `json:"league_id" db:"league_id"`
	HomeTeamID   int         `json:"home_team_id" db:"home_team_id"`
	AwayTeamID   int         `json:"away_team_id" db:"away_team_id"`
	HomeTeamName string      `json:"home_team_name" db:"home_team_name"`
	AwayTeamName string      `json:"away_team_name" db:"away_team_name"`
	MatchDate    time.Time   `json:"match_date" db:"match_date"`
	MatchTime    string      `json:"match_time" db:"match_time"`
	WeekNumber   int         `json:"week_number" db:"week_number"`
	Status       MatchStatus `json:"status" db:"status"`
	HomeScore    int         `json:"home_score" db:"home_score"`
	AwayScore    int         `json:"away_score" db:"away_score"`

	NeedsManualAssignment bool      `json:"needs_manual_assignment" db:"needs_manual_assignment"`
	CreatedAt             time.Time `json:"created_at" db:"created_at"`
}

// IsUnassigned сообщает, что матчу ещё не назначена реальная дата.
func (m *Match) IsUnassigned() bool {
	return !m.MatchDate.Before(unassignedDateThreshold)
}

// IsUnassignedDate applies the same sentinel rule to a bare date.
func IsUnassignedDate(d time.Time) bool {
	return !d.Before(unassignedDateThreshold)
}
