package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	apperrors "github.com/hmsd/hospital-api/pkg/errors"
	"github.com/hmsd/hospital-api/pkg/security"

	"github.com/hmsd/hospital-api/internal/model"
	"github.com/hmsd/hospital-api/internal/repository"
)

// Password assigned to admin-created doctor accounts when none is supplied.
const defaultPassword = "changeme123"

type Service struct {
	userRepo   repository.UserRepository
	doctorRepo repository.DoctorProfileRepository
	deptRepo   repository.DepartmentRepository
	hasher     security.PasswordHasher
}

func NewService(
	userRepo repository.UserRepository,
	doctorRepo repository.DoctorProfileRepository,
	deptRepo repository.DepartmentRepository,
	hasher security.PasswordHasher,
) *Service {
	return &Service{
		userRepo:   userRepo,
		doctorRepo: doctorRepo,
		deptRepo:   deptRepo,
		hasher:     hasher,
	}
}

func (s *Service) GetProfile(ctx context.Context, doctorID uuid.UUID) (*model.DoctorProfile, error) {
	profile, err := s.doctorRepo.Get(ctx, doctorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor profile", err)
		}
		return nil, err
	}
	return profile, nil
}

// UpsertProfile merges the request into the stored profile. Nil request
// fields leave stored values unchanged. The availability calendar is
// validated here, at write time, so malformed dates never reach storage.
func (s *Service) UpsertProfile(ctx context.Context, doctorID uuid.UUID, req *model.UpsertDoctorProfileRequest) (*model.DoctorProfile, error) {
	if req.Availability != nil {
		if err := req.Availability.Validate(); err != nil {
			return nil, apperrors.Validation("invalid availability calendar", err)
		}
	}
	if req.SpecializationID != nil {
		if _, err := s.deptRepo.Get(ctx, *req.SpecializationID); err != nil {
			return nil, apperrors.Validation("Invalid specialization ID", err)
		}
	}

	profile, err := s.doctorRepo.Get(ctx, doctorID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		profile = &model.DoctorProfile{
			UserID:       doctorID,
			Availability: model.AvailabilityCalendar{},
		}
	}

	if req.SpecializationID != nil {
		profile.SpecializationID = req.SpecializationID
	}
	if req.Experience != nil {
		profile.Experience = *req.Experience
	}
	if req.Availability != nil {
		profile.Availability = req.Availability
	}

	if err := s.doctorRepo.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save doctor profile: %w", err)
	}
	return profile, nil
}

func (s *Service) List(ctx context.Context) ([]*model.DoctorSummary, error) {
	return s.doctorRepo.ListSummaries(ctx)
}

// Create provisions a doctor account with its profile. Doctors never
// self-register.
func (s *Service) Create(ctx context.Context, req *model.CreateDoctorRequest) (*model.User, error) {
	if req.Availability != nil {
		if err := req.Availability.Validate(); err != nil {
			return nil, apperrors.Validation("invalid availability calendar", err)
		}
	}
	if _, err := s.deptRepo.Get(ctx, req.SpecializationID); err != nil {
		return nil, apperrors.Validation("Invalid specialization ID", err)
	}

	password := req.Password
	if password == "" {
		password = defaultPassword
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         model.RoleDoctor,
		Approved:     req.Approve,
		Blocked:      false,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, apperrors.Conflict("Username already exists", err)
		}
		return nil, fmt.Errorf("failed to create doctor: %w", err)
	}

	specID := req.SpecializationID
	availability := req.Availability
	if availability == nil {
		availability = model.AvailabilityCalendar{}
	}
	profile := &model.DoctorProfile{
		UserID:           user.ID,
		SpecializationID: &specID,
		Experience:       req.Experience,
		Availability:     availability,
	}
	if err := s.doctorRepo.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create doctor profile: %w", err)
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.DoctorDetail, error) {
	user, err := s.getDoctorUser(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &model.DoctorDetail{
		ID:       user.ID,
		Username: user.Username,
		Approved: user.Approved,
		Blocked:  user.Blocked,
	}
	if profile, err := s.doctorRepo.Get(ctx, id); err == nil {
		detail.Profile = profile
	}
	return detail, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateDoctorRequest) error {
	user, err := s.getDoctorUser(ctx, id)
	if err != nil {
		return err
	}
	if req.Approve != nil {
		user.Approved = *req.Approve
	}
	if req.Blocked != nil {
		user.Blocked = *req.Blocked
	}
	return s.userRepo.Update(ctx, user)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.getDoctorUser(ctx, id); err != nil {
		return err
	}
	if err := s.doctorRepo.Delete(ctx, id); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, id)
}

// ApplyAction handles the admin account toggles: block, unblock, approve,
// reject. Unlike the doctor-only endpoints it works for any account.
func (s *Service) ApplyAction(ctx context.Context, userID uuid.UUID, action string) error {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("user", err)
		}
		return err
	}

	switch action {
	case "block":
		user.Blocked = true
	case "unblock":
		user.Blocked = false
	case "approve":
		user.Approved = true
	case "reject":
		user.Approved = false
	default:
		return apperrors.Validation("invalid action", nil)
	}
	return s.userRepo.Update(ctx, user)
}

func (s *Service) getDoctorUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, err
	}
	if user.Role != model.RoleDoctor {
		return nil, apperrors.Validation("User is not a doctor", nil)
	}
	return user, nil
}
