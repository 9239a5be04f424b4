package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/hmsd/hospital-api/internal/model"
	"github.com/hmsd/hospital-api/internal/repository"
)

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

// Create relies on the partial unique index over (doctor_id, date, slot)
// WHERE status = 'Booked' to reject concurrent double bookings; there is no
// separate existence check.
func (r *appointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, doctor_id, patient_id, department_id, date, slot,
			status, remarks, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	appt.CreatedAt = time.Now()
	appt.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		appt.ID,
		appt.DoctorID,
		appt.PatientID,
		appt.DepartmentID,
		appt.Date,
		appt.Slot,
		appt.Status,
		appt.Remarks,
		appt.CreatedAt,
		appt.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return repository.ErrSlotTaken
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, doctor_id, patient_id, department_id, date, slot,
			   status, remarks, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var appt model.Appointment
	if err := r.db.GetContext(ctx, &appt, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appt, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Complete marks the appointment Completed and records the treatment note in
// one transaction, so a failed insert never leaves a completed appointment
// without its note. The UNIQUE constraint on treatments.appointment_id keeps
// the note single even under a replayed request.
func (r *appointmentRepository) Complete(ctx context.Context, id uuid.UUID, treatment *model.Treatment) error {
	if treatment.ID == uuid.Nil {
		treatment.ID = uuid.New()
	}
	treatment.AppointmentID = id
	treatment.CreatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE appointments
			SET status = $1, updated_at = $2
			WHERE id = $3
		`, model.AppointmentStatusCompleted, time.Now(), id)
		if err != nil {
			return fmt.Errorf("failed to complete appointment: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return repository.ErrNotFound
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO treatments (
				id, appointment_id, diagnosis, prescription, notes, created_at
			) VALUES ($1, $2, $3, $4, $5, $6)
		`,
			treatment.ID,
			treatment.AppointmentID,
			treatment.Diagnosis,
			treatment.Prescription,
			treatment.Notes,
			treatment.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create treatment: %w", err)
		}
		return nil
	})
}

// ListForDoctor orders ascending; ListForPatient orders descending. The
// asymmetry is deliberate product behavior. Slots are stored as 12-hour
// labels, so every ordering casts them to TIME; plain text comparison would
// put "01:00 PM" before "11:00 AM".
func (r *appointmentRepository) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT id, doctor_id, patient_id, department_id, date, slot,
			   status, remarks, created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1
		ORDER BY date ASC, slot::time ASC
	`
	var appts []*model.Appointment
	if err := r.db.SelectContext(ctx, &appts, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list doctor appointments: %w", err)
	}
	return appts, nil
}

func (r *appointmentRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PatientAppointment, error) {
	query := `
		SELECT a.id, a.date, a.slot, a.status, a.remarks,
			   u.username AS doctor_username,
			   d.name AS department
		FROM appointments a
		JOIN users u ON u.id = a.doctor_id
		LEFT JOIN departments d ON d.id = a.department_id
		WHERE a.patient_id = $1
		ORDER BY a.date DESC, a.slot::time DESC
	`
	var appts []*model.PatientAppointment
	if err := r.db.SelectContext(ctx, &appts, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list patient appointments: %w", err)
	}
	return appts, nil
}

func (r *appointmentRepository) ListAll(ctx context.Context) ([]*model.Appointment, error) {
	query := `
		SELECT id, doctor_id, patient_id, department_id, date, slot,
			   status, remarks, created_at, updated_at
		FROM appointments
		ORDER BY date DESC, slot::time DESC
	`
	var appts []*model.Appointment
	if err := r.db.SelectContext(ctx, &appts, query); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appts, nil
}

func (r *appointmentRepository) BookedSlots(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error) {
	query := `
		SELECT slot FROM appointments
		WHERE doctor_id = $1 AND date = $2 AND status = $3
	`
	var slots []string
	if err := r.db.SelectContext(ctx, &slots, query, doctorID, date, model.AppointmentStatusBooked); err != nil {
		return nil, fmt.Errorf("failed to get booked slots: %w", err)
	}
	return slots, nil
}

func (r *appointmentRepository) ListBookedForDate(ctx context.Context, date string) ([]*model.Appointment, error) {
	query := `
		SELECT id, doctor_id, patient_id, department_id, date, slot,
			   status, remarks, created_at, updated_at
		FROM appointments
		WHERE date = $1 AND status = $2
		ORDER BY slot::time ASC
	`
	var appts []*model.Appointment
	if err := r.db.SelectContext(ctx, &appts, query, date, model.AppointmentStatusBooked); err != nil {
		return nil, fmt.Errorf("failed to list booked appointments: %w", err)
	}
	return appts, nil
}

// ListForDoctorMonth matches on month-of-year only, not year. Cross-year
// matches are a known quirk carried over from the digest's original behavior.
func (r *appointmentRepository) ListForDoctorMonth(ctx context.Context, doctorID uuid.UUID, month int) ([]*model.Appointment, error) {
	query := `
		SELECT id, doctor_id, patient_id, department_id, date, slot,
			   status, remarks, created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1
		  AND CAST(SUBSTRING(date FROM 6 FOR 2) AS INT) = $2
		ORDER BY date ASC, slot::time ASC
	`
	var appts []*model.Appointment
	if err := r.db.SelectContext(ctx, &appts, query, doctorID, month); err != nil {
		return nil, fmt.Errorf("failed to list monthly appointments: %w", err)
	}
	return appts, nil
}

func (r *appointmentRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM appointments`); err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}

func (r *appointmentRepository) CountFromDate(ctx context.Context, date string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM appointments WHERE date >= $1`, date); err != nil {
		return 0, fmt.Errorf("failed to count upcoming appointments: %w", err)
	}
	return count, nil
}
