package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
)

type fakeUserRepo struct {
	users map[int]*models.User
}

func (r *fakeUserRepo) Create(_ context.Context, _ *models.User) error { return nil }

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, _ string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, _ *models.User) error { return nil }
func (r *fakeUserRepo) Delete(_ context.Context, _ int) error          { return nil }

const (
	captainID = 50
	adminID   = 60
	playerID  = 70
)

func newTeamFixture() (TeamService, *fakeAvailabilityRepo) {
	availRepo := &fakeAvailabilityRepo{}
	teamRepo := &fakeTeamRepo{byLeague: map[int][]*models.Team{
		testLeagueID: {{ID: 1, LeagueID: testLeagueID, Name: "Aces", CaptainID: captainID}},
	}}
	userRepo := &fakeUserRepo{users: map[int]*models.User{
		captainID: {ID: captainID, Role: models.RolePlayer},
		adminID:   {ID: adminID, Role: models.RoleAdmin},
		playerID:  {ID: playerID, Role: models.RolePlayer},
	}}
	svc := NewTeamService(
		teamRepo,
		&fakeMemberRepo{rosters: map[int][]int{}},
		availRepo,
		newFakeLeagueRepo(&models.League{ID: testLeagueID, Name: "City League"}),
		userRepo,
		nil,
	)
	return svc, availRepo
}

func TestSetAvailabilityAsCaptain(t *testing.T) {
	svc, availRepo := newTeamFixture()

	records, err := svc.SetAvailability(context.Background(), 1, captainID, []AvailabilityInput{
		{DayOfWeek: " Monday ", IsAvailable: true, StartTime: strPtr("18:00:00"), EndTime: strPtr("22:00:00")},
		{DayOfWeek: "sunday", IsAvailable: false},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Day names are normalized before they hit storage.
	assert.Equal(t, "monday", records[0].DayOfWeek)
	assert.True(t, records[0].IsAvailable)
	assert.Equal(t, "sunday", records[1].DayOfWeek)
	assert.False(t, records[1].IsAvailable)
	assert.Len(t, availRepo.upserted, 2)
}

func TestSetAvailabilityAdminAllowed(t *testing.T) {
	svc, _ := newTeamFixture()

	_, err := svc.SetAvailability(context.Background(), 1, adminID, []AvailabilityInput{
		{DayOfWeek: "friday", IsAvailable: true},
	})
	assert.NoError(t, err)
}

func TestSetAvailabilityForbidden(t *testing.T) {
	svc, availRepo := newTeamFixture()

	_, err := svc.SetAvailability(context.Background(), 1, playerID, []AvailabilityInput{
		{DayOfWeek: "friday", IsAvailable: true},
	})
	assert.ErrorIs(t, err, ErrCaptainActionForbidden)
	assert.Empty(t, availRepo.upserted)
}

func TestSetAvailabilityInvalidDay(t *testing.T) {
	svc, availRepo := newTeamFixture()

	_, err := svc.SetAvailability(context.Background(), 1, captainID, []AvailabilityInput{
		{DayOfWeek: "someday", IsAvailable: true},
	})
	assert.ErrorIs(t, err, ErrInvalidDayOfWeek)
	assert.Empty(t, availRepo.upserted)
}

func TestSetAvailabilityInvalidTime(t *testing.T) {
	svc, availRepo := newTeamFixture()

	_, err := svc.SetAvailability(context.Background(), 1, captainID, []AvailabilityInput{
		{DayOfWeek: "monday", IsAvailable: true, StartTime: strPtr("25:00:00")},
	})
	assert.ErrorIs(t, err, ErrInvalidTimeOfDay)
	assert.Empty(t, availRepo.upserted)
}

func TestSetAvailabilityTeamNotFound(t *testing.T) {
	svc, _ := newTeamFixture()

	_, err := svc.SetAvailability(context.Background(), 999, captainID, nil)
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestRemoveMemberCannotRemoveCaptain(t *testing.T) {
	svc, _ := newTeamFixture()

	err := svc.RemoveMember(context.Background(), 1, captainID, captainID)
	assert.ErrorIs(t, err, ErrCannotRemoveCaptain)
}

func TestCreateTeamValidation(t *testing.T) {
	svc, _ := newTeamFixture()

	_, err := svc.Create(context.Background(), captainID, CreateTeamInput{LeagueID: testLeagueID, Name: "  "})
	assert.ErrorIs(t, err, ErrTeamNameRequired)

	_, err = svc.Create(context.Background(), captainID, CreateTeamInput{LeagueID: 999, Name: "Foxes"})
	assert.ErrorIs(t, err, ErrLeagueNotFound)
}
