package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hmsd/hospital-api/pkg/logger"
	"github.com/hmsd/hospital-api/pkg/metrics"

	"github.com/hmsd/hospital-api/internal/email"
	"github.com/hmsd/hospital-api/internal/model"
	"github.com/hmsd/hospital-api/internal/repository"
)

const (
	kindVisitSummary  = "visit_summary"
	kindDailyReminder = "daily_reminder"
	kindMonthlyDigest = "monthly_digest"
)

// Service sends the best-effort patient and doctor emails. Send failures
// never propagate to callers; they are counted and logged so delivery is at
// least observable.
type Service struct {
	userRepo repository.UserRepository
	apptRepo repository.AppointmentRepository
	sender   email.Sender
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

func NewService(
	userRepo repository.UserRepository,
	apptRepo repository.AppointmentRepository,
	sender email.Sender,
	metrics *metrics.Metrics,
	logger *logger.Logger,
) *Service {
	return &Service{
		userRepo: userRepo,
		apptRepo: apptRepo,
		sender:   sender,
		metrics:  metrics,
		logger:   logger,
	}
}

// emailShaped reports whether a username can receive mail. Usernames double
// as addresses; anything without an @ is skipped silently.
func emailShaped(username string) bool {
	return strings.Contains(username, "@")
}

// SendVisitSummary emails the patient after an appointment is completed.
// Runs in the background so the completing request never waits on SMTP.
func (s *Service) SendVisitSummary(ctx context.Context, appt *model.Appointment, treatment *model.Treatment) {
	go func() {
		patient, err := s.userRepo.Get(context.Background(), appt.PatientID)
		if err != nil || !emailShaped(patient.Username) {
			return
		}

		body := fmt.Sprintf(
			"Your appointment on %s with doctor id %s is completed.\nDiagnosis: %s\nPrescription: %s",
			appt.Date, appt.DoctorID, treatment.Diagnosis, treatment.Prescription,
		)
		if err := s.sender.Send(patient.Username, "Your visit summary", body); err != nil {
			s.metrics.NotificationsFailed.WithLabelValues(kindVisitSummary).Inc()
			s.logger.Error(err, "failed to send visit summary",
				"appointment_id", appt.ID.String())
			return
		}
		s.metrics.NotificationsSent.WithLabelValues(kindVisitSummary).Inc()
	}()
}

// RunDailyReminders emails every patient with a Booked appointment today.
// Per-recipient failures are counted and skipped so one bad address cannot
// abort the batch.
func (s *Service) RunDailyReminders(ctx context.Context, now time.Time) (sent, failed int, err error) {
	today := now.Format(model.DateLayout)
	appts, err := s.apptRepo.ListBookedForDate(ctx, today)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load today's appointments: %w", err)
	}

	for _, a := range appts {
		patient, err := s.userRepo.Get(ctx, a.PatientID)
		if err != nil || !emailShaped(patient.Username) {
			continue
		}

		doctorName := "N/A"
		if doctor, err := s.userRepo.Get(ctx, a.DoctorID); err == nil {
			doctorName = doctor.Username
		}

		body := fmt.Sprintf("Reminder: Appointment with Dr %s at %s on %s", doctorName, a.Slot, a.Date)
		if err := s.sender.Send(patient.Username, "Appointment Reminder", body); err != nil {
			failed++
			s.metrics.NotificationsFailed.WithLabelValues(kindDailyReminder).Inc()
			s.logger.Error(err, "failed to send reminder", "appointment_id", a.ID.String())
			continue
		}
		sent++
		s.metrics.NotificationsSent.WithLabelValues(kindDailyReminder).Inc()
	}

	s.logger.Info("daily reminders finished", "date", today, "sent", sent, "failed", failed)
	return sent, failed, nil
}

// RunMonthlyDigest emails each approved doctor an HTML activity list for the
// current calendar month. Matching is by month-of-year only, not year.
func (s *Service) RunMonthlyDigest(ctx context.Context, now time.Time) (sent, failed int, err error) {
	doctors, err := s.userRepo.ListApprovedDoctors(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load doctors: %w", err)
	}

	month := int(now.Month())
	label := now.Format("January 2006")
	for _, d := range doctors {
		if !emailShaped(d.Username) {
			continue
		}

		appts, err := s.apptRepo.ListForDoctorMonth(ctx, d.ID, month)
		if err != nil {
			failed++
			s.logger.Error(err, "failed to load monthly appointments", "doctor_id", d.ID.String())
			continue
		}

		var b strings.Builder
		fmt.Fprintf(&b, "<h2>Activity for %s - %s</h2><ul>", d.Username, label)
		for _, a := range appts {
			fmt.Fprintf(&b, "<li>%s %s - %s</li>", a.Date, a.Slot, a.Status)
		}
		b.WriteString("</ul>")

		subject := fmt.Sprintf("Monthly Activity - %s", label)
		if err := s.sender.SendHTML(d.Username, subject, b.String()); err != nil {
			failed++
			s.metrics.NotificationsFailed.WithLabelValues(kindMonthlyDigest).Inc()
			s.logger.Error(err, "failed to send monthly digest", "doctor_id", d.ID.String())
			continue
		}
		sent++
		s.metrics.NotificationsSent.WithLabelValues(kindMonthlyDigest).Inc()
	}

	s.logger.Info("monthly digest finished", "month", label, "sent", sent, "failed", failed)
	return sent, failed, nil
}
