package repositories

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/league-system/models"
)

var matchColumnNames = []string{
	"id", "league_id", "home_team_id", "away_team_id", "home_team_name", "away_team_name",
	"match_date", "match_time", "week_number", "status", "home_score", "away_score",
	"needs_manual_assignment", "created_at",
}

func matchRow(id int, date time.Time) []driver.Value {
	return []driver.Value{
		id, 7, 1, 2, "Aces", "Bears",
		date, "18:00:00", 1, "scheduled", 0, 0, false, time.Now(),
	}
}

func newMatchRepo(t *testing.T) (MatchRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresMatchRepository(db), mock, func() { db.Close() }
}

func TestMatchRepositoryCreateBatch(t *testing.T) {
	repo, mock, cleanup := newMatchRepo(t)
	defer cleanup()

	date := time.Date(2026, time.September, 21, 0, 0, 0, 0, time.UTC)
	matches := []*models.Match{
		{
			LeagueID: 7, HomeTeamID: 1, AwayTeamID: 2,
			HomeTeamName: "Aces", AwayTeamName: "Bears",
			MatchDate: date, MatchTime: "18:00:00", WeekNumber: 1,
			Status: models.MatchScheduled,
		},
		{
			LeagueID: 7, HomeTeamID: 3, AwayTeamID: 4,
			HomeTeamName: "Comets", AwayTeamName: "Drakes",
			MatchDate: date, MatchTime: "19:00:00", WeekNumber: 1,
			Status: models.MatchScheduled,
		},
	}

	created := time.Now()
	mock.ExpectQuery(`INSERT INTO matches`).
		WithArgs(7, 1, 2, "Aces", "Bears", date, "18:00:00", 1, models.MatchScheduled, false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(101, created))
	mock.ExpectQuery(`INSERT INTO matches`).
		WithArgs(7, 3, 4, "Comets", "Drakes", date, "19:00:00", 1, models.MatchScheduled, false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(102, created))

	require.NoError(t, repo.CreateBatch(context.Background(), nil, matches))
	assert.Equal(t, 101, matches[0].ID)
	assert.Equal(t, 102, matches[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepositoryCreateBatchEmpty(t *testing.T) {
	repo, mock, cleanup := newMatchRepo(t)
	defer cleanup()

	require.NoError(t, repo.CreateBatch(context.Background(), nil, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepositoryGetByIDNotFound(t *testing.T) {
	repo, mock, cleanup := newMatchRepo(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT .+ FROM matches WHERE id = \$1`).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows(matchColumnNames))

	_, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrMatchNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepositoryGetByID(t *testing.T) {
	repo, mock, cleanup := newMatchRepo(t)
	defer cleanup()

	date := time.Date(2026, time.September, 21, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .+ FROM matches WHERE id = \$1`).
		WithArgs(101).
		WillReturnRows(sqlmock.NewRows(matchColumnNames).AddRow(matchRow(101, date)...))

	match, err := repo.GetByID(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, 101, match.ID)
	assert.Equal(t, "Aces", match.HomeTeamName)
	assert.True(t, match.MatchDate.Equal(date))
	assert.False(t, match.IsUnassigned())
}

func TestMatchRepositoryListOnDateExcludesSentinelAndSelf(t *testing.T) {
	repo, mock, cleanup := newMatchRepo(t)
	defer cleanup()

	date := time.Date(2026, time.September, 21, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`WHERE match_date = \$1 AND match_date < \$2 AND id <> \$3`).
		WithArgs(date, unassignedDateCutoff, 10).
		WillReturnRows(sqlmock.NewRows(matchColumnNames).AddRow(matchRow(11, date)...))

	matches, err := repo.ListOnDate(context.Background(), date, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 11, matches[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepositoryUpdateSchedule(t *testing.T) {
	repo, mock, cleanup := newMatchRepo(t)
	defer cleanup()

	date := time.Date(2026, time.September, 23, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE matches`).
		WithArgs(date, "20:00:00", false, 101).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateSchedule(context.Background(), 101, date, "20:00:00", false))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepositoryUpdateScheduleNotFound(t *testing.T) {
	repo, mock, cleanup := newMatchRepo(t)
	defer cleanup()

	date := time.Date(2026, time.September, 23, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE matches`).
		WithArgs(date, "20:00:00", false, 999).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateSchedule(context.Background(), 999, date, "20:00:00", false)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestMatchRepositoryDeleteByLeague(t *testing.T) {
	repo, mock, cleanup := newMatchRepo(t)
	defer cleanup()

	mock.ExpectExec(`DELETE FROM matches WHERE league_id = \$1`).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 6))

	require.NoError(t, repo.DeleteByLeague(context.Background(), nil, 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepositoryListByLeagueQueryError(t *testing.T) {
	repo, mock, cleanup := newMatchRepo(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT .+ FROM matches WHERE league_id = \$1`).
		WithArgs(7).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.ListByLeague(context.Background(), 7)
	assert.Error(t, err)
}
