package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hmsd/hospital-api/internal/model"
	"github.com/hmsd/hospital-api/internal/repository"
)

type patientProfileRepository struct {
	BaseRepository
}

func NewPatientProfileRepository(base BaseRepository) repository.PatientProfileRepository {
	return &patientProfileRepository{base}
}

func (r *patientProfileRepository) Get(ctx context.Context, userID uuid.UUID) (*model.PatientProfile, error) {
	query := `
		SELECT user_id, full_name, age, contact, address, created_at, updated_at
		FROM patient_profiles
		WHERE user_id = $1
	`
	var profile model.PatientProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get patient profile: %w", err)
	}
	return &profile, nil
}

func (r *patientProfileRepository) Upsert(ctx context.Context, profile *model.PatientProfile) error {
	query := `
		INSERT INTO patient_profiles (
			user_id, full_name, age, contact, address, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			age = EXCLUDED.age,
			contact = EXCLUDED.contact,
			address = EXCLUDED.address,
			updated_at = EXCLUDED.updated_at
	`
	now := time.Now()
	profile.UpdatedAt = now
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		profile.UserID,
		profile.FullName,
		profile.Age,
		profile.Contact,
		profile.Address,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert patient profile: %w", err)
	}
	return nil
}
