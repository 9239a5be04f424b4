package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hmsd/hospital-api/internal/model"
	"github.com/hmsd/hospital-api/internal/repository"
)

// Treatment rows are written by the appointment repository inside the
// completion transaction; this repository is the read side.
type treatmentRepository struct {
	BaseRepository
}

func NewTreatmentRepository(base BaseRepository) repository.TreatmentRepository {
	return &treatmentRepository{base}
}

func (r *treatmentRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PatientTreatment, error) {
	query := `
		SELECT t.id AS treatment_id, t.appointment_id,
			   a.date AS appointment_date,
			   u.username AS doctor_username,
			   t.diagnosis, t.prescription, t.notes
		FROM treatments t
		JOIN appointments a ON a.id = t.appointment_id
		JOIN users u ON u.id = a.doctor_id
		WHERE a.patient_id = $1
		ORDER BY a.date DESC
	`
	var treatments []*model.PatientTreatment
	if err := r.db.SelectContext(ctx, &treatments, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list patient treatments: %w", err)
	}
	return treatments, nil
}
