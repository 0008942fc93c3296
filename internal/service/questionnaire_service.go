package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"debatehub/internal/model"
	"debatehub/internal/repository"
)

var ErrQuestionnaireNotFound = errors.New("questionnaire not found")

// QuestionnaireService manages questionnaire definitions
type QuestionnaireService struct {
	repo repository.QuestionnaireRepo
}

func NewQuestionnaireService(repo repository.QuestionnaireRepo) *QuestionnaireService {
	return &QuestionnaireService{repo: repo}
}

// Create validates and stores a new questionnaire
func (s *QuestionnaireService) Create(ctx context.Context, hostID string, q *model.Questionnaire) (*model.Questionnaire, error) {
	if err := validateCatalog(q.Questions); err != nil {
		return nil, err
	}

	q.HostID = hostID

	id, err := s.repo.Create(ctx, q)
	if err != nil {
		return nil, err
	}
	if id != "" {
		q.ID = id
	}
	return q, nil
}

// GetByID retrieves a questionnaire by ID
func (s *QuestionnaireService) GetByID(ctx context.Context, id string) (*model.Questionnaire, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrQuestionnaireNotFound
	}
	return q, nil
}

// GetByHostID lists all questionnaires owned by a host
func (s *QuestionnaireService) GetByHostID(ctx context.Context, hostID string) ([]*model.Questionnaire, error) {
	return s.repo.GetByHostID(ctx, hostID)
}

// Update replaces a questionnaire, verifying host ownership
func (s *QuestionnaireService) Update(ctx context.Context, hostID, id string, q *model.Questionnaire) (*model.Questionnaire, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.HostID != hostID {
		return nil, ErrQuestionnaireNotFound
	}

	if err := validateCatalog(q.Questions); err != nil {
		return nil, err
	}

	q.ID = id
	q.HostID = hostID
	q.CreatedAt = existing.CreatedAt
	q.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// Delete removes a questionnaire, verifying host ownership
func (s *QuestionnaireService) Delete(ctx context.Context, hostID, id string) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil || existing.HostID != hostID {
		return ErrQuestionnaireNotFound
	}
	return s.repo.Delete(ctx, id)
}

var knownTypes = map[model.QuestionType]bool{
	model.QuestionTypeScale:       true,
	model.QuestionTypeBinary:      true,
	model.QuestionTypeMultiChoice: true,
	model.QuestionTypeRanking:     true,
	model.QuestionTypeSlider:      true,
	model.QuestionTypeFreeText:    true,
}

// validateCatalog checks question IDs are unique, types are known,
// and choice questions carry options.
func validateCatalog(questions []model.QuestionDescriptor) error {
	if len(questions) == 0 {
		return errors.New("questionnaire must have at least one question")
	}

	seen := make(map[string]bool, len(questions))
	for i, q := range questions {
		if q.ID == "" {
			return fmt.Errorf("question %d: missing id", i)
		}
		if seen[q.ID] {
			return fmt.Errorf("question %d: duplicate id %q", i, q.ID)
		}
		seen[q.ID] = true

		if !knownTypes[q.Type] {
			return fmt.Errorf("question %q: unknown type %q", q.ID, q.Type)
		}
		if q.Section == "" {
			return fmt.Errorf("question %q: missing section", q.ID)
		}
		switch q.Type {
		case model.QuestionTypeMultiChoice, model.QuestionTypeRanking:
			if len(q.Options) < 2 {
				return fmt.Errorf("question %q: %s requires at least 2 options", q.ID, q.Type)
			}
		case model.QuestionTypeScale, model.QuestionTypeSlider:
			if q.ScaleMax != 0 && q.ScaleMax <= q.ScaleMin {
				return fmt.Errorf("question %q: scale max must exceed min", q.ID)
			}
		}
	}
	return nil
}
