package availability

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmsd/hospital-api/internal/model"
	"github.com/hmsd/hospital-api/internal/repository/repotest"
)

func TestCanonicalSlots(t *testing.T) {
	slots := CanonicalSlots()

	require.Len(t, slots, 12)
	assert.Equal(t, "11:00 AM", slots[0])
	assert.Equal(t, "11:30 AM", slots[1])
	assert.Equal(t, "12:00 PM", slots[2])
	assert.Equal(t, "04:30 PM", slots[11])
}

func TestSlotsForDoctorExcludesBooked(t *testing.T) {
	ctx := context.Background()
	doctorRepo := repotest.NewDoctorProfileRepo()
	apptRepo := repotest.NewAppointmentRepo()
	svc := NewService(doctorRepo, apptRepo)

	doctorID := uuid.New()
	require.NoError(t, doctorRepo.Upsert(ctx, &model.DoctorProfile{
		UserID: doctorID,
		Availability: model.AvailabilityCalendar{
			"2026-09-02": true,
			"2026-09-01": true,
			"2026-09-03": false,
		},
	}))
	require.NoError(t, apptRepo.Create(ctx, &model.Appointment{
		DoctorID: doctorID,
		Date:     "2026-09-01",
		Slot:     "11:00 AM",
		Status:   model.AppointmentStatusBooked,
	}))

	days, err := svc.SlotsForDoctor(ctx, doctorID)
	require.NoError(t, err)

	// Closed days are dropped; open days come back date ascending.
	require.Len(t, days, 2)
	assert.Equal(t, "2026-09-01", days[0].Date)
	assert.Equal(t, "2026-09-02", days[1].Date)

	assert.Len(t, days[0].Slots, 11)
	assert.NotContains(t, days[0].Slots, "11:00 AM")
	assert.Len(t, days[1].Slots, 12)
}

func TestSlotsForDoctorCancelledFreesSlot(t *testing.T) {
	ctx := context.Background()
	doctorRepo := repotest.NewDoctorProfileRepo()
	apptRepo := repotest.NewAppointmentRepo()
	svc := NewService(doctorRepo, apptRepo)

	doctorID := uuid.New()
	require.NoError(t, doctorRepo.Upsert(ctx, &model.DoctorProfile{
		UserID:       doctorID,
		Availability: model.AvailabilityCalendar{"2026-09-01": true},
	}))

	appt := &model.Appointment{
		DoctorID: doctorID,
		Date:     "2026-09-01",
		Slot:     "02:00 PM",
		Status:   model.AppointmentStatusBooked,
	}
	require.NoError(t, apptRepo.Create(ctx, appt))
	require.NoError(t, apptRepo.UpdateStatus(ctx, appt.ID, model.AppointmentStatusCancelled))

	days, err := svc.SlotsForDoctor(ctx, doctorID)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Contains(t, days[0].Slots, "02:00 PM")
}

func TestSlotsForDoctorWithoutProfile(t *testing.T) {
	svc := NewService(repotest.NewDoctorProfileRepo(), repotest.NewAppointmentRepo())

	days, err := svc.SlotsForDoctor(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, days)
}
