package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmsd/hospital-api/pkg/logger"
	"github.com/hmsd/hospital-api/pkg/metrics"

	"github.com/hmsd/hospital-api/internal/model"
	"github.com/hmsd/hospital-api/internal/repository/repotest"
)

// Registered once per test binary; promauto panics on duplicate registration.
var testMetrics = metrics.New("hospital_notification_test")

type sentMail struct {
	to      string
	subject string
	body    string
	html    bool
}

type fakeSender struct {
	mu     sync.Mutex
	sent   []sentMail
	failTo map[string]bool
	done   chan struct{}
}

func newFakeSender() *fakeSender {
	return &fakeSender{failTo: make(map[string]bool), done: make(chan struct{}, 16)}
}

func (f *fakeSender) record(to, subject, body string, html bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	defer func() { f.done <- struct{}{} }()
	if f.failTo[to] {
		return errors.New("smtp refused")
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body, html: html})
	return nil
}

func (f *fakeSender) Send(to, subject, body string) error {
	return f.record(to, subject, body, false)
}

func (f *fakeSender) SendHTML(to, subject, html string) error {
	return f.record(to, subject, html, true)
}

func (f *fakeSender) mails() []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMail(nil), f.sent...)
}

type notifFixture struct {
	svc      *Service
	userRepo *repotest.UserRepo
	apptRepo *repotest.AppointmentRepo
	sender   *fakeSender
}

func newNotifFixture() *notifFixture {
	userRepo := repotest.NewUserRepo()
	apptRepo := repotest.NewAppointmentRepo()
	sender := newFakeSender()
	svc := NewService(userRepo, apptRepo, sender, testMetrics, logger.NewLogger(nil))
	return &notifFixture{svc: svc, userRepo: userRepo, apptRepo: apptRepo, sender: sender}
}

func (f *notifFixture) addUser(t *testing.T, username string, role model.Role) *model.User {
	t.Helper()
	user := &model.User{Username: username, Role: role, Approved: true}
	require.NoError(t, f.userRepo.Create(context.Background(), user))
	return user
}

func (f *notifFixture) addAppointment(t *testing.T, appt *model.Appointment) *model.Appointment {
	t.Helper()
	require.NoError(t, f.apptRepo.Create(context.Background(), appt))
	return appt
}

func TestSendVisitSummaryEmailsPatient(t *testing.T) {
	f := newNotifFixture()
	patient := f.addUser(t, "pat@example.com", model.RolePatient)
	doctor := f.addUser(t, "doc@example.com", model.RoleDoctor)

	appt := &model.Appointment{
		DoctorID:  doctor.ID,
		PatientID: patient.ID,
		Date:      "2026-09-01",
		Slot:      "11:00 AM",
		Status:    model.AppointmentStatusCompleted,
	}
	treatment := &model.Treatment{Diagnosis: "flu", Prescription: "rest"}

	f.svc.SendVisitSummary(context.Background(), appt, treatment)

	select {
	case <-f.sender.done:
	case <-time.After(2 * time.Second):
		t.Fatal("visit summary was never sent")
	}

	mails := f.sender.mails()
	require.Len(t, mails, 1)
	assert.Equal(t, "pat@example.com", mails[0].to)
	assert.Equal(t, "Your visit summary", mails[0].subject)
	assert.Contains(t, mails[0].body, "Diagnosis: flu")
	assert.Contains(t, mails[0].body, "Prescription: rest")
}

func TestRunDailyRemindersCountsAndSkips(t *testing.T) {
	f := newNotifFixture()
	now := time.Date(2026, time.September, 1, 8, 0, 0, 0, time.UTC)
	today := now.Format(model.DateLayout)

	doctor := f.addUser(t, "doc@example.com", model.RoleDoctor)
	good := f.addUser(t, "pat@example.com", model.RolePatient)
	noEmail := f.addUser(t, "walkin-patient", model.RolePatient)
	bounced := f.addUser(t, "bounce@example.com", model.RolePatient)
	f.sender.failTo["bounce@example.com"] = true

	for i, p := range []*model.User{good, noEmail, bounced} {
		f.addAppointment(t, &model.Appointment{
			DoctorID:  doctor.ID,
			PatientID: p.ID,
			Date:      today,
			Slot:      fmt.Sprintf("%02d:00 PM", i+1),
			Status:    model.AppointmentStatusBooked,
		})
	}
	// Cancelled appointments get no reminder.
	f.addAppointment(t, &model.Appointment{
		DoctorID:  doctor.ID,
		PatientID: good.ID,
		Date:      today,
		Slot:      "04:00 PM",
		Status:    model.AppointmentStatusCancelled,
	})

	sent, failed, err := f.svc.RunDailyReminders(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, failed)

	mails := f.sender.mails()
	require.Len(t, mails, 1)
	assert.Equal(t, "pat@example.com", mails[0].to)
	assert.Equal(t, "Appointment Reminder", mails[0].subject)
	assert.Contains(t, mails[0].body, "Dr doc@example.com")
	assert.Contains(t, mails[0].body, today)
}

func TestRunMonthlyDigestMatchesMonthAcrossYears(t *testing.T) {
	f := newNotifFixture()
	now := time.Date(2026, time.September, 1, 7, 0, 0, 0, time.UTC)

	doctor := f.addUser(t, "doc@example.com", model.RoleDoctor)
	patient := f.addUser(t, "pat@example.com", model.RolePatient)

	f.addAppointment(t, &model.Appointment{
		DoctorID: doctor.ID, PatientID: patient.ID,
		Date: "2026-09-10", Slot: "11:00 AM", Status: model.AppointmentStatusBooked,
	})
	// Same month of a prior year still lands in the digest.
	f.addAppointment(t, &model.Appointment{
		DoctorID: doctor.ID, PatientID: patient.ID,
		Date: "2025-09-03", Slot: "01:00 PM", Status: model.AppointmentStatusCompleted,
	})
	f.addAppointment(t, &model.Appointment{
		DoctorID: doctor.ID, PatientID: patient.ID,
		Date: "2026-08-20", Slot: "02:00 PM", Status: model.AppointmentStatusBooked,
	})

	sent, failed, err := f.svc.RunMonthlyDigest(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 0, failed)

	mails := f.sender.mails()
	require.Len(t, mails, 1)
	assert.True(t, mails[0].html)
	assert.Equal(t, "doc@example.com", mails[0].to)
	assert.Equal(t, "Monthly Activity - September 2026", mails[0].subject)
	assert.Contains(t, mails[0].body, "<h2>Activity for doc@example.com - September 2026</h2>")
	assert.Contains(t, mails[0].body, "2026-09-10")
	assert.Contains(t, mails[0].body, "2025-09-03")
	assert.NotContains(t, mails[0].body, "2026-08-20")
}

func TestRunMonthlyDigestSkipsUnapprovedAndBlocked(t *testing.T) {
	f := newNotifFixture()
	now := time.Date(2026, time.September, 1, 7, 0, 0, 0, time.UTC)

	unapproved := &model.User{Username: "new@example.com", Role: model.RoleDoctor, Approved: false}
	require.NoError(t, f.userRepo.Create(context.Background(), unapproved))
	blocked := &model.User{Username: "blocked@example.com", Role: model.RoleDoctor, Approved: true, Blocked: true}
	require.NoError(t, f.userRepo.Create(context.Background(), blocked))

	sent, failed, err := f.svc.RunMonthlyDigest(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Equal(t, 0, failed)
	assert.Empty(t, f.sender.mails())
}
