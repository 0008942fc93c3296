package service

import (
	"context"
	"errors"

	"debatehub/internal/model"
	"debatehub/internal/repository"
)

var ErrProfileNotFound = errors.New("respondent profile not found")

// ProfileService exposes finalized respondent profiles
type ProfileService struct {
	repo repository.ProfileRepo
}

func NewProfileService(repo repository.ProfileRepo) *ProfileService {
	return &ProfileService{repo: repo}
}

// GetByRespondent fetches the finalized profile for a respondent on a questionnaire
func (s *ProfileService) GetByRespondent(ctx context.Context, respondentID, questionnaireID string) (*model.RespondentProfile, error) {
	profile, err := s.repo.GetByRespondent(ctx, respondentID, questionnaireID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}
