package department

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	apperrors "github.com/hmsd/hospital-api/pkg/errors"

	"github.com/hmsd/hospital-api/internal/model"
	"github.com/hmsd/hospital-api/internal/repository"
)

// The catalog is static reference data; a short TTL keeps admin edits
// visible without hitting the database on every dashboard load.
const (
	cacheTTL     = 60 * time.Second
	cacheCleanup = 5 * time.Minute
	cacheKeyList = "departments:list"
)

type Service struct {
	deptRepo   repository.DepartmentRepository
	doctorRepo repository.DoctorProfileRepository
	cache      *gocache.Cache
}

func NewService(deptRepo repository.DepartmentRepository, doctorRepo repository.DoctorProfileRepository) *Service {
	return &Service{
		deptRepo:   deptRepo,
		doctorRepo: doctorRepo,
		cache:      gocache.New(cacheTTL, cacheCleanup),
	}
}

func (s *Service) List(ctx context.Context) ([]*model.Department, error) {
	if cached, ok := s.cache.Get(cacheKeyList); ok {
		return cached.([]*model.Department), nil
	}

	depts, err := s.deptRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(cacheKeyList, depts, gocache.DefaultExpiration)
	return depts, nil
}

// GetDetail returns the department with its approved doctors.
func (s *Service) GetDetail(ctx context.Context, id uuid.UUID) (*model.DepartmentDetail, error) {
	dept, err := s.deptRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Department", err)
		}
		return nil, err
	}

	doctors, err := s.doctorRepo.ListByDepartment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list department doctors: %w", err)
	}
	return &model.DepartmentDetail{
		Department: *dept,
		Doctors:    doctors,
	}, nil
}

func (s *Service) Create(ctx context.Context, req *model.CreateDepartmentRequest) (*model.Department, error) {
	dept := &model.Department{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.deptRepo.Create(ctx, dept); err != nil {
		return nil, err
	}
	s.cache.Delete(cacheKeyList)
	return dept, nil
}
