package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func TestTotalWeeks(t *testing.T) {
	tests := []struct {
		teams int
		weeks int
	}{
		{2, 1},
		{3, 3},
		{4, 3},
		{5, 5},
		{6, 5},
		{7, 7},
		{10, 9},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.weeks, TotalWeeks(tc.teams), "teams=%d", tc.teams)
	}
}

func TestBuildRoundsTooFewTeams(t *testing.T) {
	assert.Nil(t, BuildRounds(nil, 0))
	assert.Nil(t, BuildRounds([]int{7}, 1))
}

func TestBuildRoundsEvenTeams(t *testing.T) {
	teams := []int{10, 20, 30, 40}
	weeks := BuildRounds(teams, TotalWeeks(len(teams)))

	require.Len(t, weeks, 3)
	seen := make(map[[2]int]int)
	for _, week := range weeks {
		assert.Len(t, week.Pairings, 2)
		assert.Zero(t, week.ByeTeamID, "even team count must not produce byes")

		playing := make(map[int]bool)
		for _, p := range week.Pairings {
			assert.False(t, playing[p.TeamA], "team %d plays twice in week %d", p.TeamA, week.Number)
			assert.False(t, playing[p.TeamB], "team %d plays twice in week %d", p.TeamB, week.Number)
			playing[p.TeamA] = true
			playing[p.TeamB] = true
			seen[pairKey(p.TeamA, p.TeamB)]++
		}
	}

	assert.Len(t, seen, TotalPairings(len(teams)))
	for pair, count := range seen {
		assert.Equal(t, 1, count, "pair %v scheduled %d times", pair, count)
	}
}

func TestBuildRoundsOddTeamsByeRotation(t *testing.T) {
	teams := []int{1, 2, 3, 4, 5}
	weeks := BuildRounds(teams, TotalWeeks(len(teams)))

	require.Len(t, weeks, 5)
	byes := make(map[int]int)
	seen := make(map[[2]int]int)
	for _, week := range weeks {
		assert.Len(t, week.Pairings, 2)
		require.NotZero(t, week.ByeTeamID, "week %d has no bye", week.Number)
		byes[week.ByeTeamID]++

		for _, p := range week.Pairings {
			assert.NotEqual(t, week.ByeTeamID, p.TeamA, "bye team plays in week %d", week.Number)
			assert.NotEqual(t, week.ByeTeamID, p.TeamB, "bye team plays in week %d", week.Number)
			seen[pairKey(p.TeamA, p.TeamB)]++
		}
	}

	// Each team sits out exactly one week.
	require.Len(t, byes, len(teams))
	for id, count := range byes {
		assert.Equal(t, 1, count, "team %d byes %d times", id, count)
	}
	assert.Len(t, seen, TotalPairings(len(teams)))
	for pair, count := range seen {
		assert.Equal(t, 1, count, "pair %v scheduled %d times", pair, count)
	}
}

func TestBuildRoundsDeterministic(t *testing.T) {
	teams := []int{3, 1, 4, 1590, 9, 26}
	first := BuildRounds(teams, TotalWeeks(len(teams)))
	second := BuildRounds(teams, TotalWeeks(len(teams)))
	assert.Equal(t, first, second)
}

func TestBuildRoundsTruncatedByRequestedWeeks(t *testing.T) {
	teams := []int{1, 2, 3, 4, 5, 6}
	weeks := BuildRounds(teams, 2)
	require.Len(t, weeks, 2)
	assert.Equal(t, 1, weeks[0].Number)
	assert.Equal(t, 2, weeks[1].Number)
}
