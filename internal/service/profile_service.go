package service

import (
	"context"
	"fmt"

	"wellspring/internal/model"
	"wellspring/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type profileService struct {
	repo   repository.ProfileRepository
	logger zerolog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(repo repository.ProfileRepository, logger zerolog.Logger) ProfileService {
	return &profileService{
		repo:   repo,
		logger: logger.With().Str("service", "profile").Logger(),
	}
}

func (s *profileService) Me(ctx context.Context, principal model.Principal) (*model.MeResponse, error) {
	profile, err := s.repo.EnsureExists(ctx, principal.UserID, principal.Email)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", principal.UserID.String()).Msg("failed to load profile")
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &model.MeResponse{User: principal, Profile: profile}, nil
}

func (s *profileService) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	profile, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to load profile")
		return false, fmt.Errorf("failed to load profile: %w", err)
	}
	return profile.IsAdmin(), nil
}
