package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	apperrors "github.com/hmsd/hospital-api/pkg/errors"

	"github.com/hmsd/hospital-api/internal/model"
	"github.com/hmsd/hospital-api/internal/repository"
)

type Service struct {
	userRepo    repository.UserRepository
	patientRepo repository.PatientProfileRepository
}

func NewService(userRepo repository.UserRepository, patientRepo repository.PatientProfileRepository) *Service {
	return &Service{
		userRepo:    userRepo,
		patientRepo: patientRepo,
	}
}

func (s *Service) GetProfile(ctx context.Context, patientID uuid.UUID) (*model.PatientProfile, error) {
	profile, err := s.patientRepo.Get(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient profile", err)
		}
		return nil, err
	}
	return profile, nil
}

// UpsertProfile merges the request into the stored profile. Zero-valued
// fields keep their stored value, so "clear to empty" cannot be expressed
// through this request.
func (s *Service) UpsertProfile(ctx context.Context, patientID uuid.UUID, req *model.UpsertPatientProfileRequest) (*model.PatientProfile, error) {
	profile, err := s.patientRepo.Get(ctx, patientID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		profile = &model.PatientProfile{UserID: patientID}
	}

	if req.FullName != "" {
		profile.FullName = req.FullName
	}
	if req.Age != 0 {
		profile.Age = req.Age
	}
	if req.Contact != "" {
		profile.Contact = req.Contact
	}
	if req.Address != "" {
		profile.Address = req.Address
	}

	if err := s.patientRepo.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save patient profile: %w", err)
	}
	return profile, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) List(ctx context.Context) ([]*model.PatientSummary, error) {
	users, err := s.userRepo.ListByRole(ctx, model.RolePatient)
	if err != nil {
		return nil, err
	}
	summaries := make([]*model.PatientSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, &model.PatientSummary{ID: u.ID, Username: u.Username})
	}
	return summaries, nil
}
