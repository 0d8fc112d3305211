package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/schedule"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// --- in-memory repository fakes ---

type fakeLeagueRepo struct {
	leagues      map[int]*models.League
	updatedDates map[int][2]time.Time
}

func newFakeLeagueRepo(leagues ...*models.League) *fakeLeagueRepo {
	r := &fakeLeagueRepo{leagues: make(map[int]*models.League), updatedDates: make(map[int][2]time.Time)}
	for _, l := range leagues {
		r.leagues[l.ID] = l
	}
	return r
}

func (r *fakeLeagueRepo) Create(_ context.Context, _ *models.League) error { return nil }

func (r *fakeLeagueRepo) GetByID(_ context.Context, id int) (*models.League, error) {
	league, ok := r.leagues[id]
	if !ok {
		return nil, repositories.ErrLeagueNotFound
	}
	return league, nil
}

func (r *fakeLeagueRepo) List(_ context.Context, _ *models.LeagueStatus) ([]*models.League, error) {
	return nil, nil
}

func (r *fakeLeagueRepo) Update(_ context.Context, _ *models.League) error { return nil }

func (r *fakeLeagueRepo) UpdateDates(_ context.Context, _ repositories.SQLExecutor, id int, start, end time.Time) error {
	if _, ok := r.leagues[id]; !ok {
		return repositories.ErrLeagueNotFound
	}
	r.updatedDates[id] = [2]time.Time{start, end}
	return nil
}

func (r *fakeLeagueRepo) UpdateLogoKey(_ context.Context, _ int, _ *string) error { return nil }
func (r *fakeLeagueRepo) Delete(_ context.Context, _ int) error                   { return nil }

type fakeTeamRepo struct {
	byLeague map[int][]*models.Team
}

func (r *fakeTeamRepo) Create(_ context.Context, _ *models.Team) error { return nil }

func (r *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	for _, teams := range r.byLeague {
		for _, team := range teams {
			if team.ID == id {
				return team, nil
			}
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (r *fakeTeamRepo) ListByLeague(_ context.Context, leagueID int) ([]*models.Team, error) {
	return r.byLeague[leagueID], nil
}

func (r *fakeTeamRepo) Update(_ context.Context, _ *models.Team) error          { return nil }
func (r *fakeTeamRepo) UpdateLogoKey(_ context.Context, _ int, _ *string) error { return nil }
func (r *fakeTeamRepo) Delete(_ context.Context, _ int) error                   { return nil }

type fakeMemberRepo struct {
	rosters map[int][]int
}

func (r *fakeMemberRepo) Add(_ context.Context, _ *models.TeamMember) error { return nil }
func (r *fakeMemberRepo) Remove(_ context.Context, _, _ int) error          { return nil }

func (r *fakeMemberRepo) ListByTeam(_ context.Context, _ int) ([]*models.TeamMember, error) {
	return nil, nil
}

func (r *fakeMemberRepo) ListUserIDsByTeam(_ context.Context, teamID int) ([]int, error) {
	return r.rosters[teamID], nil
}

func (r *fakeMemberRepo) ListUserIDsByTeams(_ context.Context, teamIDs []int) (map[int][]int, error) {
	out := make(map[int][]int, len(teamIDs))
	for _, id := range teamIDs {
		out[id] = r.rosters[id]
	}
	return out, nil
}

type fakeAvailabilityRepo struct {
	rows     []*models.TeamAvailabilityRow
	upserted []*models.TeamAvailability
}

func (r *fakeAvailabilityRepo) Upsert(_ context.Context, record *models.TeamAvailability) error {
	r.upserted = append(r.upserted, record)
	return nil
}

func (r *fakeAvailabilityRepo) ListByTeam(_ context.Context, _ int) ([]*models.TeamAvailability, error) {
	return nil, nil
}

func (r *fakeAvailabilityRepo) ListRowsByLeague(_ context.Context, _ int) ([]*models.TeamAvailabilityRow, error) {
	return r.rows, nil
}

func (r *fakeAvailabilityRepo) CountByTeams(_ context.Context, teamIDs []int) (map[int]int, error) {
	counts := make(map[int]int)
	for _, row := range r.rows {
		if row.TeamID != nil {
			counts[*row.TeamID]++
		}
	}
	out := make(map[int]int, len(teamIDs))
	for _, id := range teamIDs {
		out[id] = counts[id]
	}
	return out, nil
}

type fakeMatchRepo struct {
	matches        []*models.Match
	created        []*models.Match
	deletedLeagues []int
	createErr      error
	updated        map[int][3]interface{}
}

func (r *fakeMatchRepo) CreateBatch(_ context.Context, _ repositories.SQLExecutor, matches []*models.Match) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, matches...)
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	for _, m := range r.matches {
		if m.ID == id {
			copied := *m
			return &copied, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) ListByLeague(_ context.Context, leagueID int) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range r.matches {
		if m.LeagueID == leagueID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) ListOnDate(_ context.Context, date time.Time, excludeMatchID int) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range r.matches {
		if m.ID == excludeMatchID || m.IsUnassigned() {
			continue
		}
		if m.MatchDate.Equal(date) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) UpdateSchedule(_ context.Context, id int, date time.Time, matchTime string, needsManualAssignment bool) error {
	if r.updated == nil {
		r.updated = make(map[int][3]interface{})
	}
	for _, m := range r.matches {
		if m.ID == id {
			r.updated[id] = [3]interface{}{date, matchTime, needsManualAssignment}
			return nil
		}
	}
	return repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) DeleteByLeague(_ context.Context, _ repositories.SQLExecutor, leagueID int) error {
	r.deletedLeagues = append(r.deletedLeagues, leagueID)
	return nil
}

type fakeByeRepo struct {
	byes           []*models.ByeWeek
	created        []*models.ByeWeek
	deletedLeagues []int
	createErr      error
}

func (r *fakeByeRepo) CreateBatch(_ context.Context, _ repositories.SQLExecutor, byes []*models.ByeWeek) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, byes...)
	return nil
}

func (r *fakeByeRepo) ListByLeague(_ context.Context, leagueID int) ([]*models.ByeWeek, error) {
	var out []*models.ByeWeek
	for _, b := range r.byes {
		if b.LeagueID == leagueID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeByeRepo) DeleteByLeague(_ context.Context, _ repositories.SQLExecutor, leagueID int) error {
	r.deletedLeagues = append(r.deletedLeagues, leagueID)
	return nil
}

// --- fixtures ---

const testLeagueID = 7

// Tuesday 2026-09-15.
var futureStart = time.Date(2026, time.September, 15, 0, 0, 0, 0, time.UTC)

func availabilityRow(teamID int, name, day, start, end string) *models.TeamAvailabilityRow {
	return &models.TeamAvailabilityRow{
		TeamID:      intPtr(teamID),
		TeamName:    strPtr(name),
		DayOfWeek:   day,
		IsAvailable: true,
		StartTime:   strPtr(start),
		EndTime:     strPtr(end),
	}
}

type calendarFixture struct {
	svc        *calendarService
	leagueRepo *fakeLeagueRepo
	teamRepo   *fakeTeamRepo
	memberRepo *fakeMemberRepo
	availRepo  *fakeAvailabilityRepo
	matchRepo  *fakeMatchRepo
	byeRepo    *fakeByeRepo
}

func newCalendarFixture(t *testing.T, db *sql.DB) *calendarFixture {
	t.Helper()
	f := &calendarFixture{
		leagueRepo: newFakeLeagueRepo(&models.League{ID: testLeagueID, Name: "City League", Status: models.LeagueStatusActive}),
		teamRepo: &fakeTeamRepo{byLeague: map[int][]*models.Team{
			testLeagueID: {
				{ID: 1, LeagueID: testLeagueID, Name: "Aces"},
				{ID: 2, LeagueID: testLeagueID, Name: "Bears"},
				{ID: 3, LeagueID: testLeagueID, Name: "Comets"},
				{ID: 4, LeagueID: testLeagueID, Name: "Drakes"},
			},
		}},
		memberRepo: &fakeMemberRepo{rosters: map[int][]int{
			1: {101, 102}, 2: {201, 202}, 3: {301, 302}, 4: {401, 402},
		}},
		availRepo: &fakeAvailabilityRepo{},
		matchRepo: &fakeMatchRepo{},
		byeRepo:   &fakeByeRepo{},
	}
	for teamID, name := range map[int]string{1: "Aces", 2: "Bears", 3: "Comets", 4: "Drakes"} {
		f.availRepo.rows = append(f.availRepo.rows,
			availabilityRow(teamID, name, "monday", "18:00:00", "22:00:00"),
			availabilityRow(teamID, name, "wednesday", "18:00:00", "22:00:00"),
			availabilityRow(teamID, name, "friday", "18:00:00", "22:00:00"),
		)
	}

	svc := NewCalendarService(
		db,
		f.leagueRepo,
		f.teamRepo,
		f.memberRepo,
		f.availRepo,
		f.matchRepo,
		f.byeRepo,
		schedule.StrictPolicy{},
		nil,
		testLogger(),
	).(*calendarService)
	svc.now = func() time.Time { return futureStart.AddDate(0, 0, -30) }
	f.svc = svc
	return f
}

// --- GenerateCalendar ---

func TestGenerateCalendarLeagueNotFound(t *testing.T) {
	f := newCalendarFixture(t, nil)
	_, err := f.svc.GenerateCalendar(context.Background(), 999, futureStart)
	assert.ErrorIs(t, err, ErrLeagueNotFound)
}

func TestGenerateCalendarStartDateNotFuture(t *testing.T) {
	f := newCalendarFixture(t, nil)

	_, err := f.svc.GenerateCalendar(context.Background(), testLeagueID, time.Time{})
	assert.ErrorIs(t, err, ErrCalendarStartDateNotFuture)

	past := futureStart.AddDate(0, 0, -60)
	_, err = f.svc.GenerateCalendar(context.Background(), testLeagueID, past)
	assert.ErrorIs(t, err, ErrCalendarStartDateNotFuture)

	// Exactly "now" is also rejected: the date must be strictly in the future.
	_, err = f.svc.GenerateCalendar(context.Background(), testLeagueID, f.svc.now())
	assert.ErrorIs(t, err, ErrCalendarStartDateNotFuture)
}

func TestGenerateCalendarInsufficientTeams(t *testing.T) {
	f := newCalendarFixture(t, nil)
	f.teamRepo.byLeague[testLeagueID] = f.teamRepo.byLeague[testLeagueID][:1]

	_, err := f.svc.GenerateCalendar(context.Background(), testLeagueID, futureStart)
	assert.ErrorIs(t, err, ErrInsufficientTeams)
}

func TestGenerateCalendarMissingAvailability(t *testing.T) {
	f := newCalendarFixture(t, nil)
	// Strip all rows of teams 2 and 4.
	var kept []*models.TeamAvailabilityRow
	for _, row := range f.availRepo.rows {
		if *row.TeamID != 2 && *row.TeamID != 4 {
			kept = append(kept, row)
		}
	}
	f.availRepo.rows = kept

	_, err := f.svc.GenerateCalendar(context.Background(), testLeagueID, futureStart)
	var missing *MissingAvailabilityError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"Bears", "Drakes"}, missing.TeamNames)
}

func TestGenerateCalendarHappyPath(t *testing.T) {
	f := newCalendarFixture(t, nil)

	result, err := f.svc.GenerateCalendar(context.Background(), testLeagueID, futureStart)
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalWeeks)
	assert.Len(t, result.Matches, 6)
	assert.Empty(t, result.Byes)
	for _, m := range result.Matches {
		assert.False(t, m.NeedsManualAssignment, "%s vs %s", m.HomeTeamName, m.AwayTeamName)
		assert.NotEmpty(t, m.HomeTeamName)
		assert.NotEmpty(t, m.AwayTeamName)
	}
}

func TestGenerateCalendarSkipsBadAvailabilityRows(t *testing.T) {
	f := newCalendarFixture(t, nil)
	f.availRepo.rows = append(f.availRepo.rows,
		// Orphaned row: team deleted after the availability was recorded.
		&models.TeamAvailabilityRow{DayOfWeek: "monday", IsAvailable: true},
		// Unknown day name.
		availabilityRow(1, "Aces", "someday", "18:00:00", "22:00:00"),
		// Explicitly unavailable day must not widen the schedule.
		&models.TeamAvailabilityRow{
			TeamID: intPtr(1), TeamName: strPtr("Aces"),
			DayOfWeek: "sunday", IsAvailable: false,
		},
	)

	result, err := f.svc.GenerateCalendar(context.Background(), testLeagueID, futureStart)
	require.NoError(t, err)
	assert.Len(t, result.Matches, 6)
	for _, m := range result.Matches {
		assert.NotEqual(t, time.Sunday, m.Date.Weekday())
	}
}

// --- SaveCalendar ---

func sampleResult() *schedule.CalendarResult {
	return &schedule.CalendarResult{
		Matches: []*schedule.ProposedMatch{
			{HomeTeamID: 1, AwayTeamID: 2, HomeTeamName: "Aces", AwayTeamName: "Bears",
				Date: futureStart.AddDate(0, 0, 1), Kickoff: "18:00:00", Week: 1},
		},
		Byes:       []*schedule.ProposedBye{{TeamID: 3, TeamName: "Comets", Week: 1}},
		TotalWeeks: 1,
		StartDate:  futureStart,
		EndDate:    futureStart.AddDate(0, 0, 7),
	}
}

func TestSaveCalendarEmptyResult(t *testing.T) {
	f := newCalendarFixture(t, nil)

	err := f.svc.SaveCalendar(context.Background(), testLeagueID, nil)
	assert.ErrorIs(t, err, ErrValidationFailed)

	err = f.svc.SaveCalendar(context.Background(), testLeagueID, &schedule.CalendarResult{})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestSaveCalendarCommits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	f := newCalendarFixture(t, db)
	require.NoError(t, f.svc.SaveCalendar(context.Background(), testLeagueID, sampleResult()))

	// Previous schedule is replaced wholesale.
	assert.Equal(t, []int{testLeagueID}, f.matchRepo.deletedLeagues)
	assert.Equal(t, []int{testLeagueID}, f.byeRepo.deletedLeagues)

	require.Len(t, f.matchRepo.created, 1)
	created := f.matchRepo.created[0]
	assert.Equal(t, testLeagueID, created.LeagueID)
	assert.Equal(t, models.MatchScheduled, created.Status)
	assert.Equal(t, "18:00:00", created.MatchTime)

	require.Len(t, f.byeRepo.created, 1)
	assert.Equal(t, "Comets", f.byeRepo.created[0].TeamName)

	dates, ok := f.leagueRepo.updatedDates[testLeagueID]
	require.True(t, ok)
	assert.Equal(t, futureStart, dates[0])
	assert.Equal(t, futureStart.AddDate(0, 0, 7), dates[1])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveCalendarRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	f := newCalendarFixture(t, db)
	f.byeRepo.createErr = errors.New("bye insert failed")

	err = f.svc.SaveCalendar(context.Background(), testLeagueID, sampleResult())
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- GetLeagueCalendar ---

func TestGetLeagueCalendarGroupsByWeek(t *testing.T) {
	f := newCalendarFixture(t, nil)
	f.matchRepo.matches = []*models.Match{
		{ID: 1, LeagueID: testLeagueID, HomeTeamID: 1, AwayTeamID: 2, WeekNumber: 1},
		{ID: 2, LeagueID: testLeagueID, HomeTeamID: 3, AwayTeamID: 4, WeekNumber: 2},
		{ID: 3, LeagueID: testLeagueID, HomeTeamID: 1, AwayTeamID: 3, WeekNumber: 2},
	}
	f.byeRepo.byes = []*models.ByeWeek{
		{ID: 1, LeagueID: testLeagueID, TeamID: 5, TeamName: "Eagles", WeekNumber: 1},
		// Stale bye: the team actually plays in week 2, so it is filtered out.
		{ID: 2, LeagueID: testLeagueID, TeamID: 3, TeamName: "Comets", WeekNumber: 2},
	}

	view, err := f.svc.GetLeagueCalendar(context.Background(), testLeagueID)
	require.NoError(t, err)

	assert.Equal(t, testLeagueID, view.LeagueID)
	assert.Equal(t, 2, view.TotalWeeks)
	require.Len(t, view.Weeks, 2)

	assert.Len(t, view.Weeks[0].Matches, 1)
	require.Len(t, view.Weeks[0].Byes, 1)
	assert.Equal(t, "Eagles", view.Weeks[0].Byes[0].TeamName)

	assert.Len(t, view.Weeks[1].Matches, 2)
	assert.Empty(t, view.Weeks[1].Byes)
}

func TestGetLeagueCalendarLeagueNotFound(t *testing.T) {
	f := newCalendarFixture(t, nil)
	_, err := f.svc.GetLeagueCalendar(context.Background(), 999)
	assert.ErrorIs(t, err, ErrLeagueNotFound)
}

// --- AssignMatchDate ---

func assignFixture(t *testing.T) *calendarFixture {
	t.Helper()
	f := newCalendarFixture(t, nil)
	start := futureStart
	end := futureStart.AddDate(0, 0, 28)
	f.leagueRepo.leagues[testLeagueID].StartDate = &start
	f.leagueRepo.leagues[testLeagueID].EndDate = &end
	f.matchRepo.matches = []*models.Match{
		{
			ID: 10, LeagueID: testLeagueID,
			HomeTeamID: 1, AwayTeamID: 2,
			MatchDate: models.PlaceholderMatchDate, MatchTime: "09:00:00",
			WeekNumber: 1, NeedsManualAssignment: true,
		},
	}
	return f
}

func TestAssignMatchDateNotFound(t *testing.T) {
	f := assignFixture(t)
	_, err := f.svc.AssignMatchDate(context.Background(), 999, futureStart.AddDate(0, 0, 2), "")
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestAssignMatchDateRequiresConcreteDate(t *testing.T) {
	f := assignFixture(t)

	_, err := f.svc.AssignMatchDate(context.Background(), 10, time.Time{}, "")
	assert.ErrorIs(t, err, ErrMatchDateRequired)

	_, err = f.svc.AssignMatchDate(context.Background(), 10, models.PlaceholderMatchDate, "")
	assert.ErrorIs(t, err, ErrMatchDateRequired)
}

func TestAssignMatchDateInvalidTime(t *testing.T) {
	f := assignFixture(t)
	_, err := f.svc.AssignMatchDate(context.Background(), 10, futureStart.AddDate(0, 0, 2), "25:99:00")
	assert.ErrorIs(t, err, ErrInvalidTimeOfDay)
}

func TestAssignMatchDateOutOfBounds(t *testing.T) {
	f := assignFixture(t)

	_, err := f.svc.AssignMatchDate(context.Background(), 10, futureStart.AddDate(0, 0, -1), "")
	assert.ErrorIs(t, err, ErrMatchDateOutOfBounds)

	_, err = f.svc.AssignMatchDate(context.Background(), 10, futureStart.AddDate(0, 0, 29), "")
	assert.ErrorIs(t, err, ErrMatchDateOutOfBounds)
}

func TestAssignMatchDateIdempotent(t *testing.T) {
	f := assignFixture(t)
	date := futureStart.AddDate(0, 0, 2)
	f.matchRepo.matches[0].MatchDate = date
	f.matchRepo.matches[0].MatchTime = "19:00:00"
	f.matchRepo.matches[0].NeedsManualAssignment = false

	match, err := f.svc.AssignMatchDate(context.Background(), 10, date, "19:00:00")
	require.NoError(t, err)
	assert.True(t, match.MatchDate.Equal(date))
	assert.Empty(t, f.matchRepo.updated, "same date and time must not hit the database")
}

func TestAssignMatchDatePlayerConflict(t *testing.T) {
	f := assignFixture(t)
	date := futureStart.AddDate(0, 0, 2)
	// Team 3 plays that day and shares player 101 with team 1.
	f.matchRepo.matches = append(f.matchRepo.matches, &models.Match{
		ID: 11, LeagueID: testLeagueID,
		HomeTeamID: 3, AwayTeamID: 4,
		MatchDate: date, MatchTime: "18:00:00", WeekNumber: 1,
	})
	f.memberRepo.rosters[3] = append(f.memberRepo.rosters[3], 101)

	_, err := f.svc.AssignMatchDate(context.Background(), 10, date, "20:00:00")
	var conflict *PlayerConflictError
	require.ErrorAs(t, err, &conflict)
	assert.True(t, conflict.Date.Equal(date))
}

func TestAssignMatchDateSuccess(t *testing.T) {
	f := assignFixture(t)
	date := futureStart.AddDate(0, 0, 2)

	match, err := f.svc.AssignMatchDate(context.Background(), 10, date, "20:00:00")
	require.NoError(t, err)

	assert.True(t, match.MatchDate.Equal(date))
	assert.Equal(t, "20:00:00", match.MatchTime)
	assert.False(t, match.NeedsManualAssignment)

	recorded, ok := f.matchRepo.updated[10]
	require.True(t, ok)
	assert.Equal(t, false, recorded[2])
}

func TestAssignMatchDateKeepsExistingTime(t *testing.T) {
	f := assignFixture(t)
	date := futureStart.AddDate(0, 0, 3)

	match, err := f.svc.AssignMatchDate(context.Background(), 10, date, "")
	require.NoError(t, err)
	assert.Equal(t, "09:00:00", match.MatchTime)
}
