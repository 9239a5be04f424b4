package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/hmsd/hospital-api/pkg/errors"
	"github.com/hmsd/hospital-api/pkg/logger"

	"github.com/hmsd/hospital-api/internal/model"
	"github.com/hmsd/hospital-api/internal/repository"
)

// Notifier delivers the best-effort visit summary after completion. Failures
// are logged by the implementation and never surfaced to the caller.
type Notifier interface {
	SendVisitSummary(ctx context.Context, appt *model.Appointment, treatment *model.Treatment)
}

type noopNotifier struct{}

func (noopNotifier) SendVisitSummary(context.Context, *model.Appointment, *model.Treatment) {}

type Service struct {
	apptRepo   repository.AppointmentRepository
	doctorRepo repository.DoctorProfileRepository
	userRepo   repository.UserRepository
	notifier   Notifier
	logger     *logger.Logger
}

func NewService(
	apptRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorProfileRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
	logger *logger.Logger,
) *Service {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &Service{
		apptRepo:   apptRepo,
		doctorRepo: doctorRepo,
		userRepo:   userRepo,
		notifier:   notifier,
		logger:     logger,
	}
}

// Book creates a Booked appointment for the given slot. The storage layer's
// unique index is the only slot-conflict check, so concurrent bookings of the
// same slot cannot both succeed.
func (s *Service) Book(ctx context.Context, patientID uuid.UUID, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	if _, err := time.Parse(model.DateLayout, req.Date); err != nil {
		return nil, apperrors.Validation("Invalid date format", err)
	}
	parsedSlot, err := time.Parse(model.SlotLayout, req.Time)
	if err != nil {
		return nil, apperrors.Validation("Invalid time format", err)
	}

	appt := &model.Appointment{
		DoctorID:  req.DoctorID,
		PatientID: patientID,
		Date:      req.Date,
		Slot:      parsedSlot.Format(model.SlotLayout),
		Status:    model.AppointmentStatusBooked,
	}

	// Department is derived from the doctor's specialization; a doctor
	// without a profile books without one.
	if profile, err := s.doctorRepo.Get(ctx, req.DoctorID); err == nil {
		appt.DepartmentID = profile.SpecializationID
	}

	if err := s.apptRepo.Create(ctx, appt); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return nil, apperrors.Conflict("Slot already booked", err)
		}
		return nil, fmt.Errorf("failed to book appointment: %w", err)
	}
	return appt, nil
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	return s.apptRepo.ListForDoctor(ctx, doctorID)
}

func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PatientAppointment, error) {
	appts, err := s.apptRepo.ListForPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	for _, a := range appts {
		a.CanCancel = a.Status == model.AppointmentStatusBooked
	}
	return appts, nil
}

func (s *Service) ListAll(ctx context.Context) ([]*model.Appointment, error) {
	return s.apptRepo.ListAll(ctx)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appt, err := s.apptRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, err
	}
	return appt, nil
}

// Complete transitions a doctor's own appointment to Completed and records
// exactly one treatment note, atomically. The patient is notified best-effort.
func (s *Service) Complete(ctx context.Context, id, actingDoctorID uuid.UUID, req *model.CompleteAppointmentRequest) (*model.Treatment, error) {
	appt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.DoctorID != actingDoctorID {
		return nil, apperrors.Forbidden("Not your appointment", nil)
	}

	treatment := &model.Treatment{
		AppointmentID: appt.ID,
		Diagnosis:     req.Diagnosis,
		Prescription:  req.Prescription,
		Notes:         req.Notes,
	}
	if err := s.apptRepo.Complete(ctx, id, treatment); err != nil {
		return nil, fmt.Errorf("failed to complete appointment: %w", err)
	}
	appt.Status = model.AppointmentStatusCompleted

	s.notifier.SendVisitSummary(ctx, appt, treatment)
	return treatment, nil
}

// Cancel transitions a patient's own Booked appointment to Cancelled.
func (s *Service) Cancel(ctx context.Context, id, actingPatientID uuid.UUID) error {
	appt, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if appt.PatientID != actingPatientID {
		return apperrors.Forbidden("Not your appointment", nil)
	}
	if appt.Status != model.AppointmentStatusBooked {
		return apperrors.Validation("Only booked appointments can be cancelled", nil)
	}

	if err := s.apptRepo.UpdateStatus(ctx, id, model.AppointmentStatusCancelled); err != nil {
		return fmt.Errorf("failed to cancel appointment: %w", err)
	}
	return nil
}

// Stats powers the admin dashboard.
func (s *Service) Stats(ctx context.Context) (*model.DashboardStats, error) {
	doctors, err := s.userRepo.CountByRole(ctx, model.RoleDoctor)
	if err != nil {
		return nil, err
	}
	patients, err := s.userRepo.CountByRole(ctx, model.RolePatient)
	if err != nil {
		return nil, err
	}
	total, err := s.apptRepo.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.apptRepo.CountFromDate(ctx, time.Now().Format(model.DateLayout))
	if err != nil {
		return nil, err
	}
	return &model.DashboardStats{
		TotalDoctors:         doctors,
		TotalPatients:        patients,
		TotalAppointments:    total,
		UpcomingAppointments: upcoming,
	}, nil
}
