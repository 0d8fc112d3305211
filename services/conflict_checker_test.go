package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/league-system/models"
)

func TestStoreConflictCheckerNoMatchesOnDate(t *testing.T) {
	memberRepo := &fakeMemberRepo{rosters: map[int][]int{1: {101}, 2: {201}}}
	checker := newStoreConflictChecker(memberRepo, &fakeMatchRepo{})

	conflict, err := checker.HasPlayerConflict(context.Background(), 1, 2, futureStart)
	require.NoError(t, err)
	assert.False(t, conflict)
}

func TestStoreConflictCheckerPersistedMatchConflict(t *testing.T) {
	date := futureStart.AddDate(0, 0, 2)
	memberRepo := &fakeMemberRepo{rosters: map[int][]int{
		1: {101, 102},
		2: {201},
		3: {301, 101}, // player 101 also on team 1
		4: {401},
	}}
	matchRepo := &fakeMatchRepo{matches: []*models.Match{
		{ID: 5, HomeTeamID: 3, AwayTeamID: 4, MatchDate: date},
	}}
	checker := newStoreConflictChecker(memberRepo, matchRepo)

	conflict, err := checker.HasPlayerConflict(context.Background(), 1, 2, date)
	require.NoError(t, err)
	assert.True(t, conflict)

	// A different day is clean.
	conflict, err = checker.HasPlayerConflict(context.Background(), 1, 2, date.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.False(t, conflict)
}

func TestStoreConflictCheckerDisjointRosters(t *testing.T) {
	date := futureStart.AddDate(0, 0, 2)
	memberRepo := &fakeMemberRepo{rosters: map[int][]int{
		1: {101}, 2: {201}, 3: {301}, 4: {401},
	}}
	matchRepo := &fakeMatchRepo{matches: []*models.Match{
		{ID: 5, HomeTeamID: 3, AwayTeamID: 4, MatchDate: date},
	}}
	checker := newStoreConflictChecker(memberRepo, matchRepo)

	conflict, err := checker.HasPlayerConflict(context.Background(), 1, 2, date)
	require.NoError(t, err)
	assert.False(t, conflict)
}

func TestStoreConflictCheckerTracksInRunMatches(t *testing.T) {
	date := futureStart.AddDate(0, 0, 2)
	memberRepo := &fakeMemberRepo{rosters: map[int][]int{
		1: {101},
		2: {201},
		3: {301, 201}, // player 201 also on team 2
		4: {401},
	}}
	checker := newStoreConflictChecker(memberRepo, &fakeMatchRepo{})

	// Nothing persisted and nothing recorded yet.
	conflict, err := checker.HasPlayerConflict(context.Background(), 2, 4, date)
	require.NoError(t, err)
	assert.False(t, conflict)

	checker.RecordScheduled(3, 4, date)

	conflict, err = checker.HasPlayerConflict(context.Background(), 1, 2, date)
	require.NoError(t, err)
	assert.True(t, conflict, "roster overlap with a match scheduled earlier in the run")

	// The recorded match only blocks its own date.
	conflict, err = checker.HasPlayerConflict(context.Background(), 1, 2, date.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.False(t, conflict)
}

func TestStoreConflictCheckerIgnoresOwnTeams(t *testing.T) {
	date := futureStart.AddDate(0, 0, 2)
	memberRepo := &fakeMemberRepo{rosters: map[int][]int{1: {101}, 2: {201}}}
	checker := newStoreConflictChecker(memberRepo, &fakeMatchRepo{})

	// The pair itself was recorded (e.g. a retry of the same slot); its own
	// rosters must not count as a conflict.
	checker.RecordScheduled(1, 2, date)

	conflict, err := checker.HasPlayerConflict(context.Background(), 1, 2, date)
	require.NoError(t, err)
	assert.False(t, conflict)
}
