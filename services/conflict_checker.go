// File: services/conflict_checker.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"golang.org/x/sync/errgroup"
)

type scheduledMatch struct {
	homeTeamID int
	awayTeamID int
	date       time.Time
}

// storeConflictChecker реализует schedule.ConflictChecker поверх хранилища.
// Экземпляр живёт один прогон генерации: составы кэшируются, а матчи,
// назначенные ранее в этом же прогоне, учитываются в последующих проверках.
type storeConflictChecker struct {
	memberRepo repositories.TeamMemberRepository
	matchRepo  repositories.MatchRepository

	rosterCache map[int]map[int]bool // team id -> набор user id
	scheduled   []scheduledMatch
}

func newStoreConflictChecker(memberRepo repositories.TeamMemberRepository, matchRepo repositories.MatchRepository) *storeConflictChecker {
	return &storeConflictChecker{
		memberRepo:  memberRepo,
		matchRepo:   matchRepo,
		rosterCache: make(map[int]map[int]bool),
	}
}

func (c *storeConflictChecker) RecordScheduled(homeTeamID, awayTeamID int, date time.Time) {
	c.scheduled = append(c.scheduled, scheduledMatch{homeTeamID: homeTeamID, awayTeamID: awayTeamID, date: date})
}

// HasPlayerConflict проверяет пересечение составов пары с составами всех
// матчей на эту дату: уже сохранённых в БД и назначенных ранее в этом прогоне.
// Ошибка запроса фатальна и прерывает генерацию.
func (c *storeConflictChecker) HasPlayerConflict(ctx context.Context, homeTeamID, awayTeamID int, date time.Time) (bool, error) {
	var persisted []*models.Match
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.ensureRosters(gctx, []int{homeTeamID, awayTeamID})
	})
	g.Go(func() error {
		var err error
		persisted, err = c.matchRepo.ListOnDate(gctx, date, 0)
		return err
	})
	if err := g.Wait(); err != nil {
		return false, fmt.Errorf("player conflict lookup: %w", err)
	}

	opposing := make([]int, 0, len(persisted)*2)
	for _, match := range persisted {
		opposing = append(opposing, match.HomeTeamID, match.AwayTeamID)
	}
	for _, match := range c.scheduled {
		if match.date.Equal(date) {
			opposing = append(opposing, match.homeTeamID, match.awayTeamID)
		}
	}
	if len(opposing) == 0 {
		return false, nil
	}
	if err := c.ensureRosters(ctx, opposing); err != nil {
		return false, fmt.Errorf("player conflict lookup: %w", err)
	}

	pair := make(map[int]bool, len(c.rosterCache[homeTeamID])+len(c.rosterCache[awayTeamID]))
	for id := range c.rosterCache[homeTeamID] {
		pair[id] = true
	}
	for id := range c.rosterCache[awayTeamID] {
		pair[id] = true
	}

	for _, teamID := range opposing {
		if teamID == homeTeamID || teamID == awayTeamID {
			// Команда не конфликтует сама с собой; двойное попадание в один
			// день ловит планировщик, а не проверка составов.
			continue
		}
		for id := range c.rosterCache[teamID] {
			if pair[id] {
				return true, nil
			}
		}
	}
	return false, nil
}

// ensureRosters дозагружает недостающие составы одним batched-запросом.
func (c *storeConflictChecker) ensureRosters(ctx context.Context, teamIDs []int) error {
	missing := make([]int, 0, len(teamIDs))
	seen := make(map[int]bool, len(teamIDs))
	for _, id := range teamIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := c.rosterCache[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	rosters, err := c.memberRepo.ListUserIDsByTeams(ctx, missing)
	if err != nil {
		return err
	}
	for _, id := range missing {
		set := make(map[int]bool, len(rosters[id]))
		for _, userID := range rosters[id] {
			set[userID] = true
		}
		c.rosterCache[id] = set
	}
	return nil
}
