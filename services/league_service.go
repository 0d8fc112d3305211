package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/storage"
)

type CreateLeagueInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
}

type UpdateLeagueInput struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	Location    *string              `json:"location"`
	Status      *models.LeagueStatus `json:"status"`
}

type LeagueService interface {
	Create(ctx context.Context, organizerID int, input CreateLeagueInput) (*models.League, error)
	GetByID(ctx context.Context, id int) (*models.League, error)
	List(ctx context.Context, status *models.LeagueStatus) ([]*models.League, error)
	Update(ctx context.Context, id, currentUserID int, input UpdateLeagueInput) (*models.League, error)
	Delete(ctx context.Context, id, currentUserID int) error
	UploadLogo(ctx context.Context, id, currentUserID int, contentType string, file io.Reader) (*models.League, error)
}

type leagueService struct {
	leagueRepo repositories.LeagueRepository
	userRepo   repositories.UserRepository
	uploader   storage.FileUploader
}

func NewLeagueService(leagueRepo repositories.LeagueRepository, userRepo repositories.UserRepository, uploader storage.FileUploader) LeagueService {
	return &leagueService{leagueRepo: leagueRepo, userRepo: userRepo, uploader: uploader}
}

func (s *leagueService) Create(ctx context.Context, organizerID int, input CreateLeagueInput) (*models.League, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrLeagueNameRequired
	}

	league := &models.League{
		Name:        name,
		Description: input.Description,
		Location:    input.Location,
		OrganizerID: organizerID,
		Status:      models.LeagueStatusSoon,
	}
	if err := s.leagueRepo.Create(ctx, league); err != nil {
		if errors.Is(err, repositories.ErrLeagueNameConflict) {
			return nil, ErrLeagueNameConflict
		}
		return nil, fmt.Errorf("failed to create league: %w", err)
	}
	return league, nil
}

func (s *leagueService) GetByID(ctx context.Context, id int) (*models.League, error) {
	league, err := s.leagueRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	s.populateLogoURL(league)
	return league, nil
}

func (s *leagueService) List(ctx context.Context, status *models.LeagueStatus) ([]*models.League, error) {
	leagues, err := s.leagueRepo.List(ctx, status)
	if err != nil {
		return nil, err
	}
	for _, league := range leagues {
		s.populateLogoURL(league)
	}
	return leagues, nil
}

func (s *leagueService) Update(ctx context.Context, id, currentUserID int, input UpdateLeagueInput) (*models.League, error) {
	league, err := s.authorizeOrganizer(ctx, id, currentUserID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrLeagueNameRequired
		}
		league.Name = name
	}
	if input.Description != nil {
		league.Description = input.Description
	}
	if input.Location != nil {
		league.Location = input.Location
	}
	if input.Status != nil {
		if !isValidLeagueStatusTransition(league.Status, *input.Status) {
			return nil, ErrLeagueInvalidStatusTransition
		}
		league.Status = *input.Status
	}

	if err := s.leagueRepo.Update(ctx, league); err != nil {
		switch {
		case errors.Is(err, repositories.ErrLeagueNotFound):
			return nil, ErrLeagueNotFound
		case errors.Is(err, repositories.ErrLeagueNameConflict):
			return nil, ErrLeagueNameConflict
		}
		return nil, err
	}
	s.populateLogoURL(league)
	return league, nil
}

func (s *leagueService) Delete(ctx context.Context, id, currentUserID int) error {
	if _, err := s.authorizeOrganizer(ctx, id, currentUserID); err != nil {
		return err
	}
	if err := s.leagueRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return ErrLeagueNotFound
		}
		return err
	}
	return nil
}

func (s *leagueService) UploadLogo(ctx context.Context, id, currentUserID int, contentType string, file io.Reader) (*models.League, error) {
	league, err := s.authorizeOrganizer(ctx, id, currentUserID)
	if err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, fmt.Errorf("%w: file storage is not configured", ErrValidationFailed)
	}

	key := fmt.Sprintf("leagues/%d/logo", id)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload league logo: %w", err)
	}
	if err := s.leagueRepo.UpdateLogoKey(ctx, id, &key); err != nil {
		return nil, err
	}
	league.LogoKey = &key
	s.populateLogoURL(league)
	return league, nil
}

// authorizeOrganizer пускает организатора лиги и администраторов.
func (s *leagueService) authorizeOrganizer(ctx context.Context, leagueID, currentUserID int) (*models.League, error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	if league.OrganizerID == currentUserID {
		return league, nil
	}
	user, err := s.userRepo.GetByID(ctx, currentUserID)
	if err == nil && user.Role == models.RoleAdmin {
		return league, nil
	}
	return nil, ErrForbiddenOperation
}

func (s *leagueService) populateLogoURL(league *models.League) {
	if league != nil && league.LogoKey != nil && *league.LogoKey != "" && s.uploader != nil {
		url := s.uploader.GetPublicURL(*league.LogoKey)
		if url != "" {
			league.LogoURL = &url
		}
	}
}

func isValidLeagueStatusTransition(current, next models.LeagueStatus) bool {
	if current == next {
		return true
	}
	allowed := map[models.LeagueStatus][]models.LeagueStatus{
		models.LeagueStatusSoon:         {models.LeagueStatusRegistration, models.LeagueStatusCanceled},
		models.LeagueStatusRegistration: {models.LeagueStatusActive, models.LeagueStatusCanceled},
		models.LeagueStatusActive:       {models.LeagueStatusCompleted, models.LeagueStatusCanceled},
		models.LeagueStatusCompleted:    {},
		models.LeagueStatusCanceled:     {},
	}
	for _, status := range allowed[current] {
		if next == status {
			return true
		}
	}
	return false
}
