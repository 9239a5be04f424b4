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

type doctorProfileRepository struct {
	BaseRepository
}

func NewDoctorProfileRepository(base BaseRepository) repository.DoctorProfileRepository {
	return &doctorProfileRepository{base}
}

func (r *doctorProfileRepository) Get(ctx context.Context, userID uuid.UUID) (*model.DoctorProfile, error) {
	query := `
		SELECT user_id, specialization_id, experience, availability,
			   created_at, updated_at
		FROM doctor_profiles
		WHERE user_id = $1
	`
	var profile model.DoctorProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get doctor profile: %w", err)
	}
	return &profile, nil
}

func (r *doctorProfileRepository) Upsert(ctx context.Context, profile *model.DoctorProfile) error {
	query := `
		INSERT INTO doctor_profiles (
			user_id, specialization_id, experience, availability,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			specialization_id = EXCLUDED.specialization_id,
			experience = EXCLUDED.experience,
			availability = EXCLUDED.availability,
			updated_at = EXCLUDED.updated_at
	`
	now := time.Now()
	profile.UpdatedAt = now
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		profile.UserID,
		profile.SpecializationID,
		profile.Experience,
		profile.Availability,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert doctor profile: %w", err)
	}
	return nil
}

func (r *doctorProfileRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM doctor_profiles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete doctor profile: %w", err)
	}
	return nil
}

func (r *doctorProfileRepository) ListSummaries(ctx context.Context) ([]*model.DoctorSummary, error) {
	query := `
		SELECT u.id, u.username, u.approved, u.blocked,
			   p.specialization_id,
			   d.name AS specialization_name,
			   p.experience,
			   p.availability
		FROM users u
		LEFT JOIN doctor_profiles p ON p.user_id = u.id
		LEFT JOIN departments d ON d.id = p.specialization_id
		WHERE u.role = $1
		ORDER BY u.username ASC
	`
	var summaries []*model.DoctorSummary
	if err := r.db.SelectContext(ctx, &summaries, query, model.RoleDoctor); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return summaries, nil
}

func (r *doctorProfileRepository) ListByDepartment(ctx context.Context, departmentID uuid.UUID) ([]*model.DoctorPublic, error) {
	query := `
		SELECT u.id, u.username, p.experience
		FROM users u
		JOIN doctor_profiles p ON p.user_id = u.id
		WHERE u.role = $1 AND u.approved = TRUE AND p.specialization_id = $2
		ORDER BY u.username ASC
	`
	var doctors []*model.DoctorPublic
	if err := r.db.SelectContext(ctx, &doctors, query, model.RoleDoctor, departmentID); err != nil {
		return nil, fmt.Errorf("failed to list department doctors: %w", err)
	}
	return doctors, nil
}
