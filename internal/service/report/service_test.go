package report

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
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

type fakeBroker struct {
	queue    string
	payloads [][]byte
}

func (b *fakeBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	return nil
}

func (b *fakeBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, nil
}

func (b *fakeBroker) Enqueue(ctx context.Context, queue string, payload []byte) error {
	b.queue = queue
	b.payloads = append(b.payloads, payload)
	return nil
}

func (b *fakeBroker) Dequeue(ctx context.Context, queue string, timeout time.Duration) ([]byte, error) {
	return nil, nil
}

func (b *fakeBroker) Close() error { return nil }

type reportFixture struct {
	svc       *Service
	broker    *fakeBroker
	dir       string
	treatRepo *repotest.TreatmentRepo
	apptRepo  *repotest.AppointmentRepo
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	broker := &fakeBroker{}
	dir := t.TempDir()
	treatRepo := repotest.NewTreatmentRepo()
	apptRepo := repotest.NewAppointmentRepo()
	svc := NewService(broker, "reports", dir, treatRepo, apptRepo, logger.NewLogger(nil))
	return &reportFixture{svc: svc, broker: broker, dir: dir, treatRepo: treatRepo, apptRepo: apptRepo}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestEnqueuePublishesJob(t *testing.T) {
	f := newReportFixture(t)
	entityID := uuid.New()

	job, err := f.svc.Enqueue(context.Background(), model.ExportPatientTreatments, entityID)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, job.TaskID)

	require.Len(t, f.broker.payloads, 1)
	assert.Equal(t, "reports", f.broker.queue)

	var decoded model.ExportJob
	require.NoError(t, json.Unmarshal(f.broker.payloads[0], &decoded))
	assert.Equal(t, job.TaskID, decoded.TaskID)
	assert.Equal(t, model.ExportPatientTreatments, decoded.Type)
	assert.Equal(t, entityID, decoded.EntityID)
}

func TestRunPatientTreatmentsWritesCSV(t *testing.T) {
	f := newReportFixture(t)
	patientID := uuid.New()

	f.treatRepo.SetPatientRows([]*model.PatientTreatment{
		{
			TreatmentID:     uuid.New(),
			AppointmentID:   uuid.New(),
			AppointmentDate: "2026-09-01",
			DoctorUsername:  "doc@example.com",
			Diagnosis:       "flu",
			Prescription:    "rest",
			Notes:           "follow up in a week",
		},
	})

	path, err := f.svc.Run(context.Background(), &model.ExportJob{
		Type:     model.ExportPatientTreatments,
		EntityID: patientID,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.dir, "patient_"+patientID.String()+"_treatments.csv"), path)

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"appointment_date", "doctor_username", "diagnosis", "prescription", "notes"}, rows[0])
	assert.Equal(t, []string{"2026-09-01", "doc@example.com", "flu", "rest", "follow up in a week"}, rows[1])
}

func TestRunDoctorAppointmentsWritesCSV(t *testing.T) {
	f := newReportFixture(t)
	doctorID := uuid.New()

	appt := &model.Appointment{
		DoctorID:  doctorID,
		PatientID: uuid.New(),
		Date:      "2026-09-01",
		Slot:      "11:00 AM",
		Status:    model.AppointmentStatusBooked,
	}
	require.NoError(t, f.apptRepo.Create(context.Background(), appt))

	path, err := f.svc.Run(context.Background(), &model.ExportJob{
		Type:     model.ExportDoctorAppointments,
		EntityID: doctorID,
	})
	require.NoError(t, err)

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"appointment_id", "patient_id", "date", "time", "status", "remarks"}, rows[0])
	assert.Equal(t, appt.ID.String(), rows[1][0])
	assert.Equal(t, "11:00 AM", rows[1][3])
	assert.Equal(t, "Booked", rows[1][4])
}

func TestRunUnknownTypeFails(t *testing.T) {
	f := newReportFixture(t)

	_, err := f.svc.Run(context.Background(), &model.ExportJob{Type: "bogus"})
	assert.Error(t, err)
}

func TestListReturnsOnlyCSVFiles(t *testing.T) {
	f := newReportFixture(t)

	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "a.csv"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(f.dir, "sub.csv"), 0o755))

	files, err := f.svc.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv"}, files)
}

func TestListMissingDirIsEmpty(t *testing.T) {
	broker := &fakeBroker{}
	svc := NewService(broker, "reports", filepath.Join(t.TempDir(), "nope"),
		repotest.NewTreatmentRepo(), repotest.NewAppointmentRepo(), logger.NewLogger(nil))

	files, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestResolveRejectsEscapes(t *testing.T) {
	f := newReportFixture(t)

	for _, name := range []string{"", "../secret.csv", "a/b.csv", ".hidden"} {
		_, err := f.svc.Resolve(name)
		appErr, ok := apperrors.As(err)
		require.True(t, ok, "name %q", name)
		assert.Equal(t, apperrors.ErrValidation, appErr.Code, "name %q", name)
	}
}

func TestResolveMissingFile(t *testing.T) {
	f := newReportFixture(t)

	_, err := f.svc.Resolve("missing.csv")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestResolveExistingFile(t *testing.T) {
	f := newReportFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "a.csv"), []byte("x"), 0o644))

	path, err := f.svc.Resolve("a.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.dir, "a.csv"), path)
}
