package schedule

// Pairing is an unordered pair of team ids that play each other exactly once
// across the tournament.
type Pairing struct {
	TeamA int
	TeamB int
}

// Week holds the pairings of a single round. ByeTeamID is zero when the team
// count is even.
type Week struct {
	Number    int
	Pairings  []Pairing
	ByeTeamID int
}

// byePlaceholder pads an odd team list to an even length so the circle method
// can run unchanged; the real team drawn against it sits the round out.
const byePlaceholder = -1

// NaturalRounds returns the number of rounds needed for every pair of teams
// to meet once: n-1 for even n, n for odd n (each team sits one round out).
func NaturalRounds(n int) int {
	if n%2 == 0 {
		return n - 1
	}
	return n
}

// MatchesPerWeek returns floor(n/2).
func MatchesPerWeek(n int) int {
	return n / 2
}

// TotalPairings returns n*(n-1)/2.
func TotalPairings(n int) int {
	return n * (n - 1) / 2
}

// TotalWeeks returns ceil(TotalPairings / MatchesPerWeek) for n >= 2.
func TotalWeeks(n int) int {
	perWeek := MatchesPerWeek(n)
	if perWeek == 0 {
		return 0
	}
	return (TotalPairings(n) + perWeek - 1) / perWeek
}

// BuildRounds computes the week-indexed pairing matrix for the given teams
// using the circle method: fix the first entry, pair index i with index n-1-i,
// then rotate everything but the fixed entry by one position (last moves to
// the second slot). An odd team list is padded with a placeholder; whichever
// team draws the placeholder in a round is recorded as that round's bye, so
// the bye rotates every round.
//
// The number of rounds generated is min(totalWeeks, NaturalRounds(len(teamIDs))).
// This is a pure function: the same team ordering always yields the same
// schedule.
func BuildRounds(teamIDs []int, totalWeeks int) []Week {
	if len(teamIDs) < 2 {
		return nil
	}

	order := make([]int, len(teamIDs))
	copy(order, teamIDs)
	if len(order)%2 != 0 {
		order = append(order, byePlaceholder)
	}
	n := len(order)

	rounds := NaturalRounds(len(teamIDs))
	if totalWeeks < rounds {
		rounds = totalWeeks
	}

	weeks := make([]Week, 0, rounds)
	for r := 0; r < rounds; r++ {
		week := Week{Number: r + 1}
		for i := 0; i < n/2; i++ {
			a := order[i]
			b := order[n-1-i]
			switch {
			case a == byePlaceholder:
				week.ByeTeamID = b
			case b == byePlaceholder:
				week.ByeTeamID = a
			default:
				week.Pairings = append(week.Pairings, Pairing{TeamA: a, TeamB: b})
			}
		}
		weeks = append(weeks, week)

		// Rotate in place on a fresh slice so previous rounds are unaffected.
		rotated := make([]int, 0, n)
		rotated = append(rotated, order[0], order[n-1])
		rotated = append(rotated, order[1:n-1]...)
		order = rotated
	}

	return weeks
}
