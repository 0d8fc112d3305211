package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// GenerateCalendarParams carries everything one generation run needs. Teams
// must already be validated (>= 2 entries, each with availability loaded);
// their order fixes the pairing matrix, so callers should pass a stable
// ordering.
type GenerateCalendarParams struct {
	LeagueID  int
	StartDate time.Time
	Teams     []TeamSchedule
	Checker   ConflictChecker
}

// ProposedBye marks a team that sits out a week; produced only for odd team
// counts.
type ProposedBye struct {
	TeamID   int
	TeamName string
	Week     int
}

// CalendarResult is the transient aggregate a generation run emits; its parts
// are persisted separately by the caller.
type CalendarResult struct {
	Matches    []*ProposedMatch
	Byes       []*ProposedBye
	TotalWeeks int
	StartDate  time.Time
	EndDate    time.Time
}

// Generator turns a validated team list into a full calendar: round-robin
// pairings via the circle method, then greedy slot assignment per week.
type Generator struct {
	policy AvailabilityPolicy
	logger *slog.Logger
}

func NewGenerator(policy AvailabilityPolicy, logger *slog.Logger) *Generator {
	return &Generator{policy: policy, logger: logger}
}

func (g *Generator) Generate(ctx context.Context, params GenerateCalendarParams) (*CalendarResult, error) {
	n := len(params.Teams)
	if n < 2 {
		return nil, fmt.Errorf("calendar generation requires at least 2 teams, got %d", n)
	}
	if params.Checker == nil {
		return nil, fmt.Errorf("calendar generation requires a conflict checker")
	}

	teamIDs := make([]int, 0, n)
	schedules := make(map[int]TeamSchedule, n)
	for _, team := range params.Teams {
		teamIDs = append(teamIDs, team.TeamID)
		schedules[team.TeamID] = team
	}

	totalWeeks := TotalWeeks(n)
	weeks := BuildRounds(teamIDs, totalWeeks)

	g.logger.Info("generating calendar",
		slog.Int("league_id", params.LeagueID),
		slog.Int("teams", n),
		slog.Int("weeks", len(weeks)),
		slog.Int("pairings", TotalPairings(n)),
		slog.String("policy", g.policy.Name()))

	result := &CalendarResult{
		TotalWeeks: len(weeks),
		StartDate:  params.StartDate,
		EndDate:    params.StartDate.AddDate(0, 0, 7*len(weeks)),
	}

	asg := newAssigner(params.StartDate, g.policy, params.Checker, g.logger)
	for _, week := range weeks {
		matches, err := asg.assignWeek(ctx, week, schedules)
		if err != nil {
			return nil, fmt.Errorf("week %d: %w", week.Number, err)
		}
		result.Matches = append(result.Matches, matches...)

		if week.ByeTeamID != 0 {
			bye := &ProposedBye{TeamID: week.ByeTeamID, Week: week.Number}
			if s, ok := schedules[week.ByeTeamID]; ok {
				bye.TeamName = s.TeamName
			}
			result.Byes = append(result.Byes, bye)
		}
	}

	return result, nil
}
