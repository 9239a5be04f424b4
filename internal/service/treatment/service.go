package treatment

import (
	"context"

	"github.com/google/uuid"

	"github.com/hmsd/hospital-api/internal/model"
	"github.com/hmsd/hospital-api/internal/repository"
)

type Service struct {
	treatmentRepo repository.TreatmentRepository
}

func NewService(treatmentRepo repository.TreatmentRepository) *Service {
	return &Service{treatmentRepo: treatmentRepo}
}

func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PatientTreatment, error) {
	return s.treatmentRepo.ListForPatient(ctx, patientID)
}
