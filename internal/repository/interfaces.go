package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/hmsd/hospital-api/internal/model"
)

// Sentinel errors surfaced by repositories. Services translate these into
// application errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrSlotTaken     = errors.New("slot already booked")
	ErrDuplicateUser = errors.New("username already exists")
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByRole(ctx context.Context, role model.Role) ([]*model.User, error)
	ListApprovedDoctors(ctx context.Context) ([]*model.User, error)
	CountByRole(ctx context.Context, role model.Role) (int, error)
}

type DoctorProfileRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*model.DoctorProfile, error)
	Upsert(ctx context.Context, profile *model.DoctorProfile) error
	Delete(ctx context.Context, userID uuid.UUID) error
	ListSummaries(ctx context.Context) ([]*model.DoctorSummary, error)
	ListByDepartment(ctx context.Context, departmentID uuid.UUID) ([]*model.DoctorPublic, error)
}

type PatientProfileRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*model.PatientProfile, error)
	Upsert(ctx context.Context, profile *model.PatientProfile) error
}

type DepartmentRepository interface {
	Create(ctx context.Context, dept *model.Department) error
	Get(ctx context.Context, id uuid.UUID) (*model.Department, error)
	List(ctx context.Context) ([]*model.Department, error)
}

type AppointmentRepository interface {
	// Create inserts the appointment and returns ErrSlotTaken when another
	// Booked row already holds the same (doctor, date, slot).
	Create(ctx context.Context, appt *model.Appointment) error
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error
	// Complete flips the appointment to Completed and inserts its treatment
	// note in the same transaction.
	Complete(ctx context.Context, id uuid.UUID, treatment *model.Treatment) error
	ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error)
	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PatientAppointment, error)
	ListAll(ctx context.Context) ([]*model.Appointment, error)
	BookedSlots(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error)
	ListBookedForDate(ctx context.Context, date string) ([]*model.Appointment, error)
	ListForDoctorMonth(ctx context.Context, doctorID uuid.UUID, month int) ([]*model.Appointment, error)
	CountAll(ctx context.Context) (int, error)
	CountFromDate(ctx context.Context, date string) (int, error)
}

type TreatmentRepository interface {
	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PatientTreatment, error)
}
