package worker

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmsd/hospital-api/pkg/logger"
	"github.com/hmsd/hospital-api/pkg/messaging"
	"github.com/hmsd/hospital-api/pkg/metrics"

	"github.com/hmsd/hospital-api/internal/model"
	"github.com/hmsd/hospital-api/internal/repository/repotest"
	"github.com/hmsd/hospital-api/internal/service/notification"
	"github.com/hmsd/hospital-api/internal/service/report"
)

// Registered once per test binary; promauto panics on duplicate registration.
var testMetrics = metrics.New("hospital_worker_test")

type stubBroker struct {
	mu        sync.Mutex
	published []messaging.Message
}

func (b *stubBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if msg, ok := message.(messaging.Message); ok {
		b.published = append(b.published, msg)
	}
	return nil
}

func (b *stubBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, nil
}

func (b *stubBroker) Enqueue(ctx context.Context, queue string, payload []byte) error { return nil }

func (b *stubBroker) Dequeue(ctx context.Context, queue string, timeout time.Duration) ([]byte, error) {
	return nil, nil
}

func (b *stubBroker) Close() error { return nil }

func (b *stubBroker) Published() []messaging.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]messaging.Message(nil), b.published...)
}

func newTestConsumer(t *testing.T, apptRepo *repotest.AppointmentRepo) (*Consumer, *stubBroker, string) {
	t.Helper()
	dir := t.TempDir()
	broker := &stubBroker{}
	reportSvc := report.NewService(
		broker, "reports", dir,
		repotest.NewTreatmentRepo(), apptRepo, logger.NewLogger(nil),
	)
	consumer := NewConsumer(broker, reportSvc, ConsumerConfig{
		Queue:         "reports",
		PollTimeout:   time.Millisecond,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	}, logger.NewLogger(nil), testMetrics)
	return consumer, broker, dir
}

func TestNewConsumerRequiresQueue(t *testing.T) {
	assert.Panics(t, func() {
		NewConsumer(&stubBroker{}, nil, ConsumerConfig{}, logger.NewLogger(nil), testMetrics)
	})
}

func TestNewConsumerDefaultsEventChannel(t *testing.T) {
	c := NewConsumer(&stubBroker{}, nil, ConsumerConfig{Queue: "reports"}, logger.NewLogger(nil), testMetrics)
	assert.Equal(t, "reports:events", c.config.EventChannel)
}

func TestProcessJobWritesReport(t *testing.T) {
	apptRepo := repotest.NewAppointmentRepo()
	consumer, broker, dir := newTestConsumer(t, apptRepo)

	doctorID := uuid.New()
	require.NoError(t, apptRepo.Create(context.Background(), &model.Appointment{
		DoctorID:  doctorID,
		PatientID: uuid.New(),
		Date:      "2026-09-01",
		Slot:      "11:00 AM",
		Status:    model.AppointmentStatusBooked,
	}))

	taskID := uuid.New()
	payload, err := json.Marshal(&model.ExportJob{
		TaskID:   taskID,
		Type:     model.ExportDoctorAppointments,
		EntityID: doctorID,
	})
	require.NoError(t, err)

	require.NoError(t, consumer.processJob(context.Background(), payload))

	_, err = os.Stat(filepath.Join(dir, "doctor_"+doctorID.String()+"_appointments.csv"))
	assert.NoError(t, err)

	events := broker.Published()
	require.Len(t, events, 1)
	assert.Equal(t, model.ExportEventCompleted, events[0].Type)
	evt, ok := events[0].Payload.(model.ExportEvent)
	require.True(t, ok)
	assert.Equal(t, taskID, evt.TaskID)
	assert.NotEmpty(t, evt.Path)
}

func TestProcessJobRejectsGarbagePayload(t *testing.T) {
	consumer, broker, _ := newTestConsumer(t, repotest.NewAppointmentRepo())

	err := consumer.processJob(context.Background(), []byte("not json"))
	assert.Error(t, err)
	assert.Empty(t, broker.Published())
}

func TestProcessJobExhaustsRetries(t *testing.T) {
	consumer, broker, _ := newTestConsumer(t, repotest.NewAppointmentRepo())

	payload, err := json.Marshal(&model.ExportJob{TaskID: uuid.New(), Type: "bogus"})
	require.NoError(t, err)

	before := testutil.ToFloat64(testMetrics.JobRetries.WithLabelValues("bogus"))
	err = consumer.processJob(context.Background(), payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Equal(t, before+1, testutil.ToFloat64(testMetrics.JobRetries.WithLabelValues("bogus")))

	events := broker.Published()
	require.Len(t, events, 1)
	assert.Equal(t, model.ExportEventFailed, events[0].Type)
	evt, ok := events[0].Payload.(model.ExportEvent)
	require.True(t, ok)
	assert.NotEmpty(t, evt.Error)
}

func newTestScheduler() *Scheduler {
	notificationSvc := notification.NewService(
		repotest.NewUserRepo(), repotest.NewAppointmentRepo(),
		nil, testMetrics, logger.NewLogger(nil),
	)
	return NewScheduler(notificationSvc, logger.NewLogger(nil), testMetrics)
}

func TestSchedulerTickRunsDailyOncePerDay(t *testing.T) {
	s := newTestScheduler()
	okRuns := testMetrics.ScheduledRuns.WithLabelValues(taskDailyReminder, "ok")
	before := testutil.ToFloat64(okRuns)

	eight := time.Date(2026, time.September, 2, 8, 0, 0, 0, time.UTC)
	s.tick(context.Background(), eight)
	s.tick(context.Background(), eight.Add(30*time.Minute))
	assert.Equal(t, before+1, testutil.ToFloat64(okRuns))

	// A new day is due again.
	s.tick(context.Background(), eight.AddDate(0, 0, 1))
	assert.Equal(t, before+2, testutil.ToFloat64(okRuns))
}

func TestSchedulerTickSkipsOffHours(t *testing.T) {
	s := newTestScheduler()
	okRuns := testMetrics.ScheduledRuns.WithLabelValues(taskDailyReminder, "ok")
	before := testutil.ToFloat64(okRuns)

	s.tick(context.Background(), time.Date(2026, time.September, 2, 9, 0, 0, 0, time.UTC))
	assert.Equal(t, before, testutil.ToFloat64(okRuns))
}

func TestSchedulerTickRunsMonthlyOnFirstOnly(t *testing.T) {
	s := newTestScheduler()
	okRuns := testMetrics.ScheduledRuns.WithLabelValues(taskMonthlyDigest, "ok")
	before := testutil.ToFloat64(okRuns)

	first := time.Date(2026, time.September, 1, 7, 0, 0, 0, time.UTC)
	s.tick(context.Background(), first)
	s.tick(context.Background(), first.Add(45*time.Minute))
	s.tick(context.Background(), time.Date(2026, time.September, 2, 7, 0, 0, 0, time.UTC))
	assert.Equal(t, before+1, testutil.ToFloat64(okRuns))
}
