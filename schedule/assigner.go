package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrUnknownTeam reports a pairing that references a team id with no loaded
// schedule; callers translate it into their own validation error.
var ErrUnknownTeam = errors.New("team has no availability schedule")

// PlaceholderDate marks a match whose date could not be resolved; storage
// layers with a NOT NULL date column persist it verbatim and treat anything in
// year 2099 or later as "unassigned".
var PlaceholderDate = time.Date(2099, time.December, 31, 0, 0, 0, 0, time.UTC)

// ConflictChecker answers whether scheduling home vs away on the given date
// would double-book any player who belongs to both one of these rosters and a
// roster of another match already on that date. Implementations must report
// errors instead of a silent "no conflict": a failed lookup must abort the
// run, not risk a double booking.
//
// RecordScheduled is called after a date is committed so matches placed
// earlier in the same run participate in later checks.
type ConflictChecker interface {
	HasPlayerConflict(ctx context.Context, homeTeamID, awayTeamID int, date time.Time) (bool, error)
	RecordScheduled(homeTeamID, awayTeamID int, date time.Time)
}

// ProposedMatch is the assigner's output for one pairing; the caller converts
// it to a persistable match.
type ProposedMatch struct {
	HomeTeamID            int
	AwayTeamID            int
	HomeTeamName          string
	AwayTeamName          string
	Date                  time.Time
	Kickoff               string
	Week                  int
	NeedsManualAssignment bool
}

type role int

const (
	roleNone role = iota
	roleHome
	roleAway
)

// assigner resolves concrete slots for the pairings of one generation run.
// It is single-use: last-role state and the run-scoped claimed-slot set live
// for exactly one calendar.
type assigner struct {
	startDate time.Time
	policy    AvailabilityPolicy
	checker   ConflictChecker
	logger    *slog.Logger

	lastRole map[int]role
	claimed  map[string]bool // (date, kickoff) pairs claimed in the current week
}

func newAssigner(startDate time.Time, policy AvailabilityPolicy, checker ConflictChecker, logger *slog.Logger) *assigner {
	return &assigner{
		startDate: startDate,
		policy:    policy,
		checker:   checker,
		logger:    logger,
		lastRole:  make(map[int]role),
		claimed:   make(map[string]bool),
	}
}

// pickHomeAway applies the alternation rule and updates both teams' last role
// immediately, so the next pairing in generation order sees current state.
// First match for both sides: the smaller team id hosts (deterministic
// tie-break, nothing more).
func (a *assigner) pickHomeAway(teamA, teamB int) (home, away int) {
	switch {
	case a.lastRole[teamA] == roleHome || a.lastRole[teamB] == roleAway:
		home, away = teamB, teamA
	case a.lastRole[teamA] == roleAway || a.lastRole[teamB] == roleHome:
		home, away = teamA, teamB
	default:
		if teamA < teamB {
			home, away = teamA, teamB
		} else {
			home, away = teamB, teamA
		}
	}
	a.lastRole[home] = roleHome
	a.lastRole[away] = roleAway
	return home, away
}

// dateForWeekday maps a target weekday onto an absolute date inside the week
// starting at weekStart, always strictly forward: a target equal to the week
// start's own weekday rolls a full week ahead.
func dateForWeekday(weekStart time.Time, day time.Weekday) time.Time {
	days := (int(day) - int(weekStart.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return weekStart.AddDate(0, 0, days)
}

func slotKey(date time.Time, kickoff string) string {
	return date.Format("2006-01-02") + "|" + kickoff
}

// assignWeek is called once per week, in week order; it resets the
// claimed-slot set because same-slot avoidance is a per-week courtesy.
func (a *assigner) assignWeek(ctx context.Context, week Week, schedules map[int]TeamSchedule) ([]*ProposedMatch, error) {
	a.claimed = make(map[string]bool)
	weekStart := a.startDate.AddDate(0, 0, 7*(week.Number-1))

	matches := make([]*ProposedMatch, 0, len(week.Pairings))
	for _, pairing := range week.Pairings {
		home, away := a.pickHomeAway(pairing.TeamA, pairing.TeamB)
		hs, hok := schedules[home]
		as, aok := schedules[away]
		if !hok || !aok {
			return nil, fmt.Errorf("pairing %d vs %d: %w", home, away, ErrUnknownTeam)
		}

		match := &ProposedMatch{
			HomeTeamID:   home,
			AwayTeamID:   away,
			HomeTeamName: hs.TeamName,
			AwayTeamName: as.TeamName,
			Week:         week.Number,
		}

		resolved, err := a.resolveCompatibleSlot(ctx, match, hs, as, weekStart)
		if err != nil {
			return nil, err
		}
		if !resolved {
			a.resolveFallback(match, hs, as, weekStart)
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// resolveCompatibleSlot walks the compatible days of the pairing in weekday
// order, re-running the player-conflict check per candidate date (different
// days produce different conflict sets), then claims the first free hourly
// kickoff inside the overlap window.
func (a *assigner) resolveCompatibleSlot(ctx context.Context, match *ProposedMatch, hs, as TeamSchedule, weekStart time.Time) (bool, error) {
	for day := time.Sunday; day <= time.Saturday; day++ {
		homeWindow, homeOK := hs.Days[day]
		awayWindow, awayOK := as.Days[day]
		if !homeOK || !awayOK || !homeWindow.Overlaps(awayWindow) {
			continue
		}

		date := dateForWeekday(weekStart, day)
		conflict, err := a.checker.HasPlayerConflict(ctx, match.HomeTeamID, match.AwayTeamID, date)
		if err != nil {
			return false, fmt.Errorf("player conflict check for %s: %w", date.Format("2006-01-02"), err)
		}
		if conflict {
			a.logger.Debug("date rejected, player conflict",
				slog.Int("home_team_id", match.HomeTeamID),
				slog.Int("away_team_id", match.AwayTeamID),
				slog.String("date", date.Format("2006-01-02")))
			continue
		}

		for _, kickoff := range KickoffCandidates(homeWindow.Intersect(awayWindow)) {
			clock := FormatClock(kickoff)
			if a.claimed[slotKey(date, clock)] {
				continue
			}
			a.commit(match, date, clock)
			return true, nil
		}
	}
	return false, nil
}

// resolveFallback applies the priority ladder when no fully compatible,
// conflict-free slot exists:
//  1. exactly one team meets the availability bar -> its first unclaimed
//     day/kickoff, no further conflict checking;
//  2. one team has strictly more available days -> its first unclaimed slot;
//  3. otherwise the match needs manual assignment.
//
// Fallback slots go through the same per-week claimed-slot set as compatible
// ones, so two fallback matches in one week never share an exact slot.
func (a *assigner) resolveFallback(match *ProposedMatch, hs, as TeamSchedule, weekStart time.Time) {
	homeMeets := a.policy.Meets(hs)
	awayMeets := a.policy.Meets(as)

	var pick *TeamSchedule
	switch {
	case homeMeets != awayMeets:
		if homeMeets {
			pick = &hs
		} else {
			pick = &as
		}
	case hs.AvailableDayCount() > as.AvailableDayCount():
		pick = &hs
	case as.AvailableDayCount() > hs.AvailableDayCount():
		pick = &as
	}

	if pick != nil {
		if date, kickoff, ok := a.freeFallbackSlot(*pick, weekStart); ok {
			a.commit(match, date, kickoff)
			a.logger.Info("fallback slot assigned",
				slog.Int("home_team_id", match.HomeTeamID),
				slog.Int("away_team_id", match.AwayTeamID),
				slog.Int("week", match.Week),
				slog.String("policy", a.policy.Name()))
			return
		}
	}

	match.Date = PlaceholderDate
	match.Kickoff = FormatClock(defaultStartMinutes)
	match.NeedsManualAssignment = true
	a.logger.Warn("match needs manual assignment",
		slog.Int("home_team_id", match.HomeTeamID),
		slog.Int("away_team_id", match.AwayTeamID),
		slog.Int("week", match.Week))
}

// freeFallbackSlot walks the chosen team's available days in weekday order and
// returns the first (date, kickoff) pair not already claimed this week, so
// fallback matches obey the same-slot bookkeeping as fully compatible ones.
func (a *assigner) freeFallbackSlot(s TeamSchedule, weekStart time.Time) (time.Time, string, bool) {
	for _, day := range s.AvailableDays() {
		date := dateForWeekday(weekStart, day)
		for _, kickoff := range KickoffCandidates(s.Days[day]) {
			clock := FormatClock(kickoff)
			if a.claimed[slotKey(date, clock)] {
				continue
			}
			return date, clock, true
		}
	}
	return time.Time{}, "", false
}

func (a *assigner) commit(match *ProposedMatch, date time.Time, kickoff string) {
	match.Date = date
	match.Kickoff = kickoff
	a.claimed[slotKey(date, kickoff)] = true
	a.checker.RecordScheduled(match.HomeTeamID, match.AwayTeamID, date)
}
