package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/hmsd/hospital-api/pkg/errors"
	"github.com/hmsd/hospital-api/pkg/logger"
	"github.com/hmsd/hospital-api/pkg/security"

	"github.com/hmsd/hospital-api/internal/model"
	"github.com/hmsd/hospital-api/internal/repository"
	"github.com/hmsd/hospital-api/pkg/auth"
)

type Service struct {
	userRepo    repository.UserRepository
	doctorRepo  repository.DoctorProfileRepository
	patientRepo repository.PatientProfileRepository
	jwtSvc      auth.JWTService
	hasher      security.PasswordHasher
	logger      *logger.Logger
}

func NewService(
	userRepo repository.UserRepository,
	doctorRepo repository.DoctorProfileRepository,
	patientRepo repository.PatientProfileRepository,
	jwtSvc auth.JWTService,
	hasher security.PasswordHasher,
	logger *logger.Logger,
) *Service {
	return &Service{
		userRepo:    userRepo,
		doctorRepo:  doctorRepo,
		patientRepo: patientRepo,
		jwtSvc:      jwtSvc,
		hasher:      hasher,
		logger:      logger,
	}
}

// Register creates a patient account. Only patients self-register; doctors
// are created by an admin and the seeded admin is the only admin.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	role := model.Role(strings.ToLower(strings.TrimSpace(req.Role)))
	if role == "" {
		role = model.RolePatient
	}
	if req.Username == "" || req.Password == "" || role != model.RolePatient {
		return nil, apperrors.Validation("username & password required; role must be 'patient'", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         model.RolePatient,
		Approved:     true,
		Blocked:      false,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, apperrors.Conflict("User already exists", err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login validates credentials and issues an access token. The token carries a
// redirect hint derived from whether the account's profile exists yet.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperrors.Unauthorized("Bad username or password", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized("Bad username or password", err)
	}
	if user.Blocked {
		return nil, apperrors.Unauthorized("Account blocked", nil)
	}
	if user.Role == model.RoleDoctor && !user.Approved {
		return nil, apperrors.Unauthorized("Your doctor account is not approved yet.", nil)
	}

	redirect := s.redirectFor(ctx, user)
	token, err := s.jwtSvc.GenerateAccessToken(user, redirect)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID.String(), "role", user.Role.String())
	return &model.TokenResponse{AccessToken: token}, nil
}

// AdminLogin is the admin-only login path; non-admin accounts are rejected
// with the same message as bad credentials.
func (s *Service) AdminLogin(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil || user.Role != model.RoleAdmin {
		return nil, apperrors.Unauthorized("Bad username or password", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized("Bad username or password", err)
	}

	token, err := s.jwtSvc.GenerateAccessToken(user, model.RedirectAdminDashboard)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &model.TokenResponse{AccessToken: token}, nil
}

func (s *Service) ValidateToken(ctx context.Context, token string) (*model.TokenClaims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid token", err)
	}
	return claims, nil
}

// SeedAdmin creates the default admin account on first startup if no admin
// exists yet.
func (s *Service) SeedAdmin(ctx context.Context, username, password string) error {
	count, err := s.userRepo.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	admin := &model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Approved:     true,
		Blocked:      false,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil
		}
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	s.logger.Info("seeded default admin account", "username", username)
	return nil
}

func (s *Service) redirectFor(ctx context.Context, user *model.User) string {
	switch user.Role {
	case model.RoleAdmin:
		return model.RedirectAdminDashboard
	case model.RoleDoctor:
		if _, err := s.doctorRepo.Get(ctx, user.ID); err != nil {
			return model.RedirectDoctorProfile
		}
		return model.RedirectDoctorDashboard
	case model.RolePatient:
		if _, err := s.patientRepo.Get(ctx, user.ID); err != nil {
			return model.RedirectPatientProfile
		}
		return model.RedirectPatientDashboard
	}
	return ""
}
