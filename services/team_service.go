package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/schedule"
	"github.com/Dosada05/league-system/storage"
)

type CreateTeamInput struct {
	LeagueID int               `json:"league_id"`
	Name     string            `json:"name"`
	Level    string            `json:"level"`
	Gender   models.TeamGender `json:"gender"`
}

// AvailabilityInput — одна запись недельной доступности; пустые границы
// времени получат дефолты при генерации календаря.
type AvailabilityInput struct {
	DayOfWeek   string  `json:"day_of_week"`
	IsAvailable bool    `json:"is_available"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
}

type UpdateTeamInput struct {
	Name   *string            `json:"name"`
	Level  *string            `json:"level"`
	Gender *models.TeamGender `json:"gender"`
}

type TeamService interface {
	Create(ctx context.Context, captainID int, input CreateTeamInput) (*models.Team, error)
	GetByID(ctx context.Context, id int) (*models.Team, error)
	Update(ctx context.Context, teamID, currentUserID int, input UpdateTeamInput) (*models.Team, error)
	Delete(ctx context.Context, teamID, currentUserID int) error
	ListByLeague(ctx context.Context, leagueID int) ([]*models.Team, error)
	AddMember(ctx context.Context, teamID, currentUserID, userID int) (*models.TeamMember, error)
	RemoveMember(ctx context.Context, teamID, currentUserID, userID int) error
	SetAvailability(ctx context.Context, teamID, currentUserID int, inputs []AvailabilityInput) ([]*models.TeamAvailability, error)
	GetAvailability(ctx context.Context, teamID int) ([]*models.TeamAvailability, error)
	UploadLogo(ctx context.Context, teamID, currentUserID int, contentType string, file io.Reader) (*models.Team, error)
}

type teamService struct {
	teamRepo         repositories.TeamRepository
	memberRepo       repositories.TeamMemberRepository
	availabilityRepo repositories.AvailabilityRepository
	leagueRepo       repositories.LeagueRepository
	userRepo         repositories.UserRepository
	uploader         storage.FileUploader
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	memberRepo repositories.TeamMemberRepository,
	availabilityRepo repositories.AvailabilityRepository,
	leagueRepo repositories.LeagueRepository,
	userRepo repositories.UserRepository,
	uploader storage.FileUploader,
) TeamService {
	return &teamService{
		teamRepo:         teamRepo,
		memberRepo:       memberRepo,
		availabilityRepo: availabilityRepo,
		leagueRepo:       leagueRepo,
		userRepo:         userRepo,
		uploader:         uploader,
	}
}

func (s *teamService) Create(ctx context.Context, captainID int, input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}
	if _, err := s.leagueRepo.GetByID(ctx, input.LeagueID); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}

	team := &models.Team{
		LeagueID:  input.LeagueID,
		Name:      name,
		Level:     input.Level,
		Gender:    input.Gender,
		CaptainID: captainID,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	// Капитан автоматически попадает в состав.
	member := &models.TeamMember{TeamID: team.ID, UserID: captainID}
	if err := s.memberRepo.Add(ctx, member); err != nil && !errors.Is(err, repositories.ErrMemberDuplicate) {
		return nil, fmt.Errorf("failed to add captain to roster: %w", err)
	}
	return team, nil
}

func (s *teamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) ListByLeague(ctx context.Context, leagueID int) ([]*models.Team, error) {
	teams, err := s.teamRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	for _, team := range teams {
		s.populateLogoURL(team)
	}
	return teams, nil
}

func (s *teamService) Update(ctx context.Context, teamID, currentUserID int, input UpdateTeamInput) (*models.Team, error) {
	team, err := s.authorizeCaptain(ctx, teamID, currentUserID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrTeamNameRequired
		}
		team.Name = name
	}
	if input.Level != nil {
		team.Level = *input.Level
	}
	if input.Gender != nil {
		team.Gender = *input.Gender
	}

	if err := s.teamRepo.Update(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, fmt.Errorf("failed to update team %d: %w", teamID, err)
	}
	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) Delete(ctx context.Context, teamID, currentUserID int) error {
	if _, err := s.authorizeCaptain(ctx, teamID, currentUserID); err != nil {
		return err
	}
	if err := s.teamRepo.Delete(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return err
	}
	return nil
}

func (s *teamService) AddMember(ctx context.Context, teamID, currentUserID, userID int) (*models.TeamMember, error) {
	if _, err := s.authorizeCaptain(ctx, teamID, currentUserID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	member := &models.TeamMember{TeamID: teamID, UserID: userID}
	if err := s.memberRepo.Add(ctx, member); err != nil {
		if errors.Is(err, repositories.ErrMemberDuplicate) {
			return nil, ErrUserAlreadyInTeam
		}
		return nil, err
	}
	return member, nil
}

func (s *teamService) RemoveMember(ctx context.Context, teamID, currentUserID, userID int) error {
	team, err := s.authorizeCaptain(ctx, teamID, currentUserID)
	if err != nil {
		return err
	}
	if userID == team.CaptainID {
		return ErrCannotRemoveCaptain
	}
	if err := s.memberRepo.Remove(ctx, teamID, userID); err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *teamService) SetAvailability(ctx context.Context, teamID, currentUserID int, inputs []AvailabilityInput) ([]*models.TeamAvailability, error) {
	if _, err := s.authorizeCaptain(ctx, teamID, currentUserID); err != nil {
		return nil, err
	}

	records := make([]*models.TeamAvailability, 0, len(inputs))
	for _, input := range inputs {
		if _, err := schedule.ParseDayOfWeek(input.DayOfWeek); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDayOfWeek, err)
		}
		for _, bound := range []*string{input.StartTime, input.EndTime} {
			if bound == nil || *bound == "" {
				continue
			}
			if _, err := schedule.ParseClock(*bound); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidTimeOfDay, err)
			}
		}
		record := &models.TeamAvailability{
			TeamID:      teamID,
			DayOfWeek:   strings.ToLower(strings.TrimSpace(input.DayOfWeek)),
			IsAvailable: input.IsAvailable,
			StartTime:   input.StartTime,
			EndTime:     input.EndTime,
		}
		if err := s.availabilityRepo.Upsert(ctx, record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *teamService) GetAvailability(ctx context.Context, teamID int) ([]*models.TeamAvailability, error) {
	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return s.availabilityRepo.ListByTeam(ctx, teamID)
}

func (s *teamService) UploadLogo(ctx context.Context, teamID, currentUserID int, contentType string, file io.Reader) (*models.Team, error) {
	team, err := s.authorizeCaptain(ctx, teamID, currentUserID)
	if err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, fmt.Errorf("%w: file storage is not configured", ErrValidationFailed)
	}

	key := fmt.Sprintf("teams/%d/logo", teamID)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload team logo: %w", err)
	}
	if err := s.teamRepo.UpdateLogoKey(ctx, teamID, &key); err != nil {
		return nil, err
	}
	team.LogoKey = &key
	s.populateLogoURL(team)
	return team, nil
}

// authorizeCaptain пускает капитана команды и администраторов.
func (s *teamService) authorizeCaptain(ctx context.Context, teamID, currentUserID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	if team.CaptainID == currentUserID {
		return team, nil
	}
	user, err := s.userRepo.GetByID(ctx, currentUserID)
	if err == nil && user.Role == models.RoleAdmin {
		return team, nil
	}
	return nil, ErrCaptainActionForbidden
}

func (s *teamService) populateLogoURL(team *models.Team) {
	if team != nil && team.LogoKey != nil && *team.LogoKey != "" && s.uploader != nil {
		url := s.uploader.GetPublicURL(*team.LogoKey)
		if url != "" {
			team.LogoURL = &url
		}
	}
}
