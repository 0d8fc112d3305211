package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/schedule"
	"golang.org/x/sync/errgroup"
)

// CalendarWeekView группирует матчи и bye-недели для выдачи календаря.
type CalendarWeekView struct {
	Week    int              `json:"week"`
	Matches []models.Match   `json:"matches"`
	Byes    []models.ByeWeek `json:"byes,omitempty"`
}

type LeagueCalendarView struct {
	LeagueID   int                `json:"league_id"`
	TotalWeeks int                `json:"total_weeks"`
	Weeks      []CalendarWeekView `json:"weeks"`
}

type CalendarService interface {
	// GenerateCalendar прогоняет четыре стадии (валидация, загрузка
	// доступности, круговой алгоритм, назначение слотов) и возвращает
	// результат БЕЗ сохранения.
	GenerateCalendar(ctx context.Context, leagueID int, startDate time.Time) (*schedule.CalendarResult, error)
	// SaveCalendar атомарно сохраняет результат генерации: матчи, bye-недели
	// и даты лиги в одной транзакции.
	SaveCalendar(ctx context.Context, leagueID int, result *schedule.CalendarResult) error
	GetLeagueCalendar(ctx context.Context, leagueID int) (*LeagueCalendarView, error)
	// AssignMatchDate — ручное назначение даты оператором; повторяет проверки
	// границ лиги и конфликтов игроков перед записью (идемпотентная замена).
	AssignMatchDate(ctx context.Context, matchID int, date time.Time, matchTime string) (*models.Match, error)
}

type calendarService struct {
	db               *sql.DB
	leagueRepo       repositories.LeagueRepository
	teamRepo         repositories.TeamRepository
	memberRepo       repositories.TeamMemberRepository
	availabilityRepo repositories.AvailabilityRepository
	matchRepo        repositories.MatchRepository
	byeRepo          repositories.ByeWeekRepository
	policy           schedule.AvailabilityPolicy
	hub              *schedule.Hub
	logger           *slog.Logger
	now              func() time.Time
}

func NewCalendarService(
	db *sql.DB,
	leagueRepo repositories.LeagueRepository,
	teamRepo repositories.TeamRepository,
	memberRepo repositories.TeamMemberRepository,
	availabilityRepo repositories.AvailabilityRepository,
	matchRepo repositories.MatchRepository,
	byeRepo repositories.ByeWeekRepository,
	policy schedule.AvailabilityPolicy,
	hub *schedule.Hub,
	logger *slog.Logger,
) CalendarService {
	return &calendarService{
		db:               db,
		leagueRepo:       leagueRepo,
		teamRepo:         teamRepo,
		memberRepo:       memberRepo,
		availabilityRepo: availabilityRepo,
		matchRepo:        matchRepo,
		byeRepo:          byeRepo,
		policy:           policy,
		hub:              hub,
		logger:           logger,
		now:              time.Now,
	}
}

func (s *calendarService) GenerateCalendar(ctx context.Context, leagueID int, startDate time.Time) (*schedule.CalendarResult, error) {
	teams, err := s.validateCalendarInput(ctx, leagueID, startDate)
	if err != nil {
		return nil, err
	}

	schedules, err := s.loadTeamSchedules(ctx, leagueID, teams)
	if err != nil {
		return nil, err
	}

	checker := newStoreConflictChecker(s.memberRepo, s.matchRepo)
	generator := schedule.NewGenerator(s.policy, s.logger)

	result, err := generator.Generate(ctx, schedule.GenerateCalendarParams{
		LeagueID:  leagueID,
		StartDate: startDate,
		Teams:     schedules,
		Checker:   checker,
	})
	if err != nil {
		if errors.Is(err, schedule.ErrUnknownTeam) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTeamData, err)
		}
		return nil, fmt.Errorf("calendar generation for league %d: %w", leagueID, err)
	}
	return result, nil
}

// validateCalendarInput выполняет все проверки до начала планирования; любой
// отказ прерывает запуск целиком — частичное расписание не создаётся.
func (s *calendarService) validateCalendarInput(ctx context.Context, leagueID int, startDate time.Time) ([]*models.Team, error) {
	if _, err := s.leagueRepo.GetByID(ctx, leagueID); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to load league %d: %w", leagueID, err)
	}

	if startDate.IsZero() || !startDate.After(s.now()) {
		return nil, ErrCalendarStartDateNotFuture
	}

	teams, err := s.teamRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams of league %d: %w", leagueID, err)
	}
	if len(teams) < 2 {
		return nil, ErrInsufficientTeams
	}

	teamIDs := make([]int, len(teams))
	for i, team := range teams {
		teamIDs[i] = team.ID
	}
	counts, err := s.availabilityRepo.CountByTeams(ctx, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count availability records: %w", err)
	}

	var missing []string
	for _, team := range teams {
		if counts[team.ID] == 0 {
			missing = append(missing, team.Name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &MissingAvailabilityError{TeamNames: missing}
	}

	return teams, nil
}

// loadTeamSchedules нормализует строки доступности: отсутствующие границы
// получают дефолт 09:00–18:00, записи с is_available=false не дают ничего,
// осиротевшие и некорректные строки логируются и пропускаются.
func (s *calendarService) loadTeamSchedules(ctx context.Context, leagueID int, teams []*models.Team) ([]schedule.TeamSchedule, error) {
	rows, err := s.availabilityRepo.ListRowsByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to load availability for league %d: %w", leagueID, err)
	}

	byTeam := make(map[int]schedule.TeamSchedule, len(teams))
	order := make([]int, 0, len(teams))
	for _, team := range teams {
		byTeam[team.ID] = schedule.TeamSchedule{
			TeamID:   team.ID,
			TeamName: team.Name,
			Days:     make(map[time.Weekday]schedule.TimeWindow),
		}
		order = append(order, team.ID)
	}

	for _, row := range rows {
		if row.TeamID == nil || row.TeamName == nil {
			s.logger.Warn("skipping orphaned availability row", slog.String("day", row.DayOfWeek))
			continue
		}
		if !row.IsAvailable {
			continue
		}
		ts, ok := byTeam[*row.TeamID]
		if !ok {
			continue
		}
		day, err := schedule.ParseDayOfWeek(row.DayOfWeek)
		if err != nil {
			s.logger.Warn("skipping malformed availability row",
				slog.Int("team_id", *row.TeamID),
				slog.String("day", row.DayOfWeek),
				slog.Any("error", err))
			continue
		}
		ts.Days[day] = schedule.NormalizeWindow(row.StartTime, row.EndTime)
		byTeam[*row.TeamID] = ts
	}

	schedules := make([]schedule.TeamSchedule, 0, len(order))
	for _, id := range order {
		schedules = append(schedules, byTeam[id])
	}
	return schedules, nil
}

func (s *calendarService) SaveCalendar(ctx context.Context, leagueID int, result *schedule.CalendarResult) error {
	if result == nil || len(result.Matches) == 0 {
		return fmt.Errorf("%w: empty calendar result", ErrValidationFailed)
	}

	matches := make([]*models.Match, 0, len(result.Matches))
	for _, proposed := range result.Matches {
		matches = append(matches, &models.Match{
			LeagueID:              leagueID,
			HomeTeamID:            proposed.HomeTeamID,
			AwayTeamID:            proposed.AwayTeamID,
			HomeTeamName:          proposed.HomeTeamName,
			AwayTeamName:          proposed.AwayTeamName,
			MatchDate:             proposed.Date,
			MatchTime:             proposed.Kickoff,
			WeekNumber:            proposed.Week,
			Status:                models.MatchScheduled,
			NeedsManualAssignment: proposed.NeedsManualAssignment,
		})
	}
	byes := make([]*models.ByeWeek, 0, len(result.Byes))
	for _, proposed := range result.Byes {
		byes = append(byes, &models.ByeWeek{
			LeagueID:   leagueID,
			TeamID:     proposed.TeamID,
			TeamName:   proposed.TeamName,
			WeekNumber: proposed.Week,
		})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	var txErr error
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("rollback failed", slog.Any("error", rbErr))
			}
		}
	}()

	// Повторная генерация заменяет предыдущее расписание лиги целиком.
	if txErr = s.matchRepo.DeleteByLeague(ctx, tx, leagueID); txErr != nil {
		return txErr
	}
	if txErr = s.byeRepo.DeleteByLeague(ctx, tx, leagueID); txErr != nil {
		return txErr
	}
	if txErr = s.matchRepo.CreateBatch(ctx, tx, matches); txErr != nil {
		return txErr
	}
	if txErr = s.byeRepo.CreateBatch(ctx, tx, byes); txErr != nil {
		return txErr
	}
	if txErr = s.leagueRepo.UpdateDates(ctx, tx, leagueID, result.StartDate, result.EndDate); txErr != nil {
		if errors.Is(txErr, repositories.ErrLeagueNotFound) {
			txErr = ErrLeagueNotFound
		}
		return txErr
	}
	if txErr = tx.Commit(); txErr != nil {
		return fmt.Errorf("failed to commit calendar for league %d: %w", leagueID, txErr)
	}

	s.logger.Info("calendar saved",
		slog.Int("league_id", leagueID),
		slog.Int("matches", len(matches)),
		slog.Int("byes", len(byes)),
		slog.Int("weeks", result.TotalWeeks))

	if s.hub != nil {
		s.hub.BroadcastToRoom(leagueRoomID(leagueID), schedule.WebSocketMessage{
			Type:    schedule.EventCalendarUpdated,
			RoomID:  leagueRoomID(leagueID),
			Payload: map[string]interface{}{"league_id": leagueID, "total_weeks": result.TotalWeeks},
		})
	}
	return nil
}

func (s *calendarService) GetLeagueCalendar(ctx context.Context, leagueID int) (*LeagueCalendarView, error) {
	if _, err := s.leagueRepo.GetByID(ctx, leagueID); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}

	matches, err := s.matchRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	byes, err := s.byeRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	// Команды, фактически играющие на неделе: защитная фильтрация bye-недель
	// против других переназначенных или удалённых матчей.
	playing := make(map[int]map[int]bool)
	totalWeeks := 0
	for _, match := range matches {
		if match.WeekNumber > totalWeeks {
			totalWeeks = match.WeekNumber
		}
		if playing[match.WeekNumber] == nil {
			playing[match.WeekNumber] = make(map[int]bool)
		}
		playing[match.WeekNumber][match.HomeTeamID] = true
		playing[match.WeekNumber][match.AwayTeamID] = true
	}

	weeks := make([]CalendarWeekView, 0, totalWeeks)
	for w := 1; w <= totalWeeks; w++ {
		view := CalendarWeekView{Week: w, Matches: []models.Match{}}
		for _, match := range matches {
			if match.WeekNumber == w {
				view.Matches = append(view.Matches, *match)
			}
		}
		for _, bye := range byes {
			if bye.WeekNumber == w && !playing[w][bye.TeamID] {
				view.Byes = append(view.Byes, *bye)
			}
		}
		weeks = append(weeks, view)
	}

	return &LeagueCalendarView{LeagueID: leagueID, TotalWeeks: totalWeeks, Weeks: weeks}, nil
}

func (s *calendarService) AssignMatchDate(ctx context.Context, matchID int, date time.Time, matchTime string) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	if date.IsZero() || models.IsUnassignedDate(date) {
		return nil, ErrMatchDateRequired
	}
	if matchTime == "" {
		matchTime = match.MatchTime
	}
	if _, err := schedule.ParseClock(matchTime); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTimeOfDay, err)
	}

	league, err := s.leagueRepo.GetByID(ctx, match.LeagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	if league.StartDate != nil && date.Before(*league.StartDate) {
		return nil, ErrMatchDateOutOfBounds
	}
	if league.EndDate != nil && date.After(*league.EndDate) {
		return nil, ErrMatchDateOutOfBounds
	}

	// Идемпотентная замена: та же дата и время — успех без перезаписи.
	if !match.IsUnassigned() && match.MatchDate.Equal(date) && match.MatchTime == matchTime {
		return match, nil
	}

	conflict, err := s.checkManualAssignmentConflict(ctx, match, date)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, &PlayerConflictError{Date: date}
	}

	if err := s.matchRepo.UpdateSchedule(ctx, matchID, date, matchTime, false); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	match.MatchDate = date
	match.MatchTime = matchTime
	match.NeedsManualAssignment = false

	s.logger.Info("match date assigned manually",
		slog.Int("match_id", matchID),
		slog.String("date", date.Format("2006-01-02")),
		slog.String("time", matchTime))

	if s.hub != nil {
		s.hub.BroadcastToRoom(leagueRoomID(match.LeagueID), schedule.WebSocketMessage{
			Type:    schedule.EventMatchUpdated,
			RoomID:  leagueRoomID(match.LeagueID),
			Payload: match,
		})
	}
	return match, nil
}

// checkManualAssignmentConflict повторяет генерационную проверку конфликтов
// для одного матча, исключая сам матч из выборки на дату. Ошибка хранилища
// фатальна — "нет конфликта" при упавшем запросе недопустимо.
func (s *calendarService) checkManualAssignmentConflict(ctx context.Context, match *models.Match, date time.Time) (bool, error) {
	var (
		pairRosters map[int][]int
		others      []*models.Match
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pairRosters, err = s.memberRepo.ListUserIDsByTeams(gctx, []int{match.HomeTeamID, match.AwayTeamID})
		return err
	})
	g.Go(func() error {
		var err error
		others, err = s.matchRepo.ListOnDate(gctx, date, match.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return false, fmt.Errorf("manual assignment conflict check: %w", err)
	}
	if len(others) == 0 {
		return false, nil
	}

	pairUsers := make(map[int]bool)
	for _, ids := range pairRosters {
		for _, id := range ids {
			pairUsers[id] = true
		}
	}

	otherTeamIDs := make([]int, 0, len(others)*2)
	for _, other := range others {
		otherTeamIDs = append(otherTeamIDs, other.HomeTeamID, other.AwayTeamID)
	}
	otherRosters, err := s.memberRepo.ListUserIDsByTeams(ctx, otherTeamIDs)
	if err != nil {
		return false, fmt.Errorf("manual assignment conflict check: %w", err)
	}
	for _, ids := range otherRosters {
		for _, id := range ids {
			if pairUsers[id] {
				return true, nil
			}
		}
	}
	return false, nil
}

func leagueRoomID(leagueID int) string {
	return "league_" + strconv.Itoa(leagueID)
}
