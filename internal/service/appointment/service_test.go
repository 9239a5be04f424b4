package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/hmsd/hospital-api/pkg/errors"
	"github.com/hmsd/hospital-api/pkg/logger"

	"github.com/hmsd/hospital-api/internal/model"
	"github.com/hmsd/hospital-api/internal/repository/repotest"
)

type spyNotifier struct {
	summaries int
}

func (s *spyNotifier) SendVisitSummary(ctx context.Context, appt *model.Appointment, treatment *model.Treatment) {
	s.summaries++
}

type fixture struct {
	svc      *Service
	apptRepo *repotest.AppointmentRepo
	notifier *spyNotifier
}

func newFixture() *fixture {
	apptRepo := repotest.NewAppointmentRepo()
	notifier := &spyNotifier{}
	svc := NewService(
		apptRepo,
		repotest.NewDoctorProfileRepo(),
		repotest.NewUserRepo(),
		notifier,
		logger.NewLogger(nil),
	)
	return &fixture{svc: svc, apptRepo: apptRepo, notifier: notifier}
}

func TestBookNormalizesSlotLabel(t *testing.T) {
	f := newFixture()

	appt, err := f.svc.Book(context.Background(), uuid.New(), &model.BookAppointmentRequest{
		DoctorID: uuid.New(),
		Date:     "2026-09-01",
		Time:     "02:30 PM",
	})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusBooked, appt.Status)
	assert.Equal(t, "02:30 PM", appt.Slot)
	assert.NotEqual(t, uuid.Nil, appt.ID)
}

func TestBookRejectsMalformedInput(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Book(context.Background(), uuid.New(), &model.BookAppointmentRequest{
		DoctorID: uuid.New(),
		Date:     "01-09-2026",
		Time:     "02:30 PM",
	})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)

	_, err = f.svc.Book(context.Background(), uuid.New(), &model.BookAppointmentRequest{
		DoctorID: uuid.New(),
		Date:     "2026-09-01",
		Time:     "14:30",
	})
	appErr, ok = apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
}

func TestBookSameSlotTwiceConflicts(t *testing.T) {
	f := newFixture()
	doctorID := uuid.New()

	req := &model.BookAppointmentRequest{
		DoctorID: doctorID,
		Date:     "2026-09-01",
		Time:     "11:00 AM",
	}
	_, err := f.svc.Book(context.Background(), uuid.New(), req)
	require.NoError(t, err)

	_, err = f.svc.Book(context.Background(), uuid.New(), req)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
	assert.Equal(t, "Slot already booked", appErr.Message)
}

func TestBookCancelledSlotIsFree(t *testing.T) {
	f := newFixture()
	doctorID := uuid.New()
	patientID := uuid.New()

	req := &model.BookAppointmentRequest{
		DoctorID: doctorID,
		Date:     "2026-09-01",
		Time:     "11:00 AM",
	}
	appt, err := f.svc.Book(context.Background(), patientID, req)
	require.NoError(t, err)
	require.NoError(t, f.svc.Cancel(context.Background(), appt.ID, patientID))

	_, err = f.svc.Book(context.Background(), uuid.New(), req)
	assert.NoError(t, err)
}

func TestCompleteCreatesOneTreatment(t *testing.T) {
	f := newFixture()
	doctorID := uuid.New()

	appt, err := f.svc.Book(context.Background(), uuid.New(), &model.BookAppointmentRequest{
		DoctorID: doctorID,
		Date:     "2026-09-01",
		Time:     "11:30 AM",
	})
	require.NoError(t, err)

	treatment, err := f.svc.Complete(context.Background(), appt.ID, doctorID, &model.CompleteAppointmentRequest{
		Diagnosis:    "flu",
		Prescription: "rest",
	})
	require.NoError(t, err)
	assert.Equal(t, appt.ID, treatment.AppointmentID)
	assert.Equal(t, 1, f.apptRepo.CountTreatments(appt.ID))
	assert.Equal(t, 1, f.notifier.summaries)

	stored, err := f.svc.Get(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, stored.Status)
}

func TestCompleteRequiresOwningDoctor(t *testing.T) {
	f := newFixture()

	appt, err := f.svc.Book(context.Background(), uuid.New(), &model.BookAppointmentRequest{
		DoctorID: uuid.New(),
		Date:     "2026-09-01",
		Time:     "11:30 AM",
	})
	require.NoError(t, err)

	_, err = f.svc.Complete(context.Background(), appt.ID, uuid.New(), &model.CompleteAppointmentRequest{})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrForbidden, appErr.Code)
	assert.Equal(t, 0, f.apptRepo.CountTreatments(appt.ID))
}

func TestCancelRequiresOwningPatient(t *testing.T) {
	f := newFixture()
	patientID := uuid.New()

	appt, err := f.svc.Book(context.Background(), patientID, &model.BookAppointmentRequest{
		DoctorID: uuid.New(),
		Date:     "2026-09-01",
		Time:     "11:30 AM",
	})
	require.NoError(t, err)

	err = f.svc.Cancel(context.Background(), appt.ID, uuid.New())
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrForbidden, appErr.Code)
}

func TestCancelOnlyBooked(t *testing.T) {
	f := newFixture()
	doctorID := uuid.New()
	patientID := uuid.New()

	appt, err := f.svc.Book(context.Background(), patientID, &model.BookAppointmentRequest{
		DoctorID: doctorID,
		Date:     "2026-09-01",
		Time:     "11:30 AM",
	})
	require.NoError(t, err)

	_, err = f.svc.Complete(context.Background(), appt.ID, doctorID, &model.CompleteAppointmentRequest{})
	require.NoError(t, err)

	err = f.svc.Cancel(context.Background(), appt.ID, patientID)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
}

func TestListForPatientSetsCanCancel(t *testing.T) {
	f := newFixture()
	doctorID := uuid.New()
	patientID := uuid.New()

	booked, err := f.svc.Book(context.Background(), patientID, &model.BookAppointmentRequest{
		DoctorID: doctorID,
		Date:     "2026-09-01",
		Time:     "11:00 AM",
	})
	require.NoError(t, err)

	completed, err := f.svc.Book(context.Background(), patientID, &model.BookAppointmentRequest{
		DoctorID: doctorID,
		Date:     "2026-09-01",
		Time:     "11:30 AM",
	})
	require.NoError(t, err)
	_, err = f.svc.Complete(context.Background(), completed.ID, doctorID, &model.CompleteAppointmentRequest{})
	require.NoError(t, err)

	rows, err := f.svc.ListForPatient(context.Background(), patientID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byID := map[uuid.UUID]bool{}
	for _, row := range rows {
		byID[row.ID] = row.CanCancel
	}
	assert.True(t, byID[booked.ID])
	assert.False(t, byID[completed.ID])
}

func TestListForDoctorOrdersSlotsChronologically(t *testing.T) {
	f := newFixture()
	doctorID := uuid.New()

	for _, slot := range []string{"01:00 PM", "11:00 AM", "12:30 PM"} {
		_, err := f.svc.Book(context.Background(), uuid.New(), &model.BookAppointmentRequest{
			DoctorID: doctorID,
			Date:     "2026-09-01",
			Time:     slot,
		})
		require.NoError(t, err)
	}

	appts, err := f.svc.ListForDoctor(context.Background(), doctorID)
	require.NoError(t, err)
	require.Len(t, appts, 3)

	var slots []string
	for _, a := range appts {
		slots = append(slots, a.Slot)
	}
	assert.Equal(t, []string{"11:00 AM", "12:30 PM", "01:00 PM"}, slots)
}

func TestListForPatientOrdersLatestSlotFirst(t *testing.T) {
	f := newFixture()
	patientID := uuid.New()

	for _, slot := range []string{"11:30 AM", "04:30 PM", "12:00 PM"} {
		_, err := f.svc.Book(context.Background(), patientID, &model.BookAppointmentRequest{
			DoctorID: uuid.New(),
			Date:     "2026-09-01",
			Time:     slot,
		})
		require.NoError(t, err)
	}

	rows, err := f.svc.ListForPatient(context.Background(), patientID)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	var slots []string
	for _, row := range rows {
		slots = append(slots, row.Slot)
	}
	assert.Equal(t, []string{"04:30 PM", "12:00 PM", "11:30 AM"}, slots)
}

func TestStatsCountsUpcomingAcrossStatuses(t *testing.T) {
	f := newFixture()
	today := time.Now().Format(model.DateLayout)

	booked, err := f.svc.Book(context.Background(), uuid.New(), &model.BookAppointmentRequest{
		DoctorID: uuid.New(),
		Date:     today,
		Time:     "11:00 AM",
	})
	require.NoError(t, err)

	cancelled, err := f.svc.Book(context.Background(), booked.PatientID, &model.BookAppointmentRequest{
		DoctorID: uuid.New(),
		Date:     today,
		Time:     "11:30 AM",
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.Cancel(context.Background(), cancelled.ID, cancelled.PatientID))

	stats, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalAppointments)
	assert.Equal(t, 2, stats.UpcomingAppointments)
}
