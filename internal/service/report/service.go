package report

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/hmsd/hospital-api/pkg/errors"
	"github.com/hmsd/hospital-api/pkg/logger"
	"github.com/hmsd/hospital-api/pkg/messaging"

	"github.com/hmsd/hospital-api/internal/model"
	"github.com/hmsd/hospital-api/internal/repository"
)

// Service enqueues export jobs for the worker and materializes them into CSV
// files under the reports directory. Exports are keyed by entity id and
// overwrite any previous file for that entity.
type Service struct {
	broker        messaging.Broker
	queue         string
	dir           string
	treatmentRepo repository.TreatmentRepository
	apptRepo      repository.AppointmentRepository
	logger        *logger.Logger
}

func NewService(
	broker messaging.Broker,
	queue string,
	dir string,
	treatmentRepo repository.TreatmentRepository,
	apptRepo repository.AppointmentRepository,
	logger *logger.Logger,
) *Service {
	return &Service{
		broker:        broker,
		queue:         queue,
		dir:           dir,
		treatmentRepo: treatmentRepo,
		apptRepo:      apptRepo,
		logger:        logger,
	}
}

// Enqueue hands an export job to the worker and returns its handle
// immediately. The caller discovers the result by listing report files.
func (s *Service) Enqueue(ctx context.Context, typ model.ExportType, entityID uuid.UUID) (*model.ExportJob, error) {
	job := &model.ExportJob{
		TaskID:   uuid.New(),
		Type:     typ,
		EntityID: entityID,
		Enqueued: time.Now(),
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export job: %w", err)
	}
	if err := s.broker.Enqueue(ctx, s.queue, payload); err != nil {
		return nil, fmt.Errorf("failed to enqueue export job: %w", err)
	}
	s.logger.Info("export job enqueued",
		"task_id", job.TaskID.String(), "type", string(job.Type), "entity_id", entityID.String())
	return job, nil
}

// Run executes a job, writing its CSV. Called by the worker.
func (s *Service) Run(ctx context.Context, job *model.ExportJob) (string, error) {
	switch job.Type {
	case model.ExportPatientTreatments:
		return s.exportPatientTreatments(ctx, job.EntityID)
	case model.ExportDoctorAppointments:
		return s.exportDoctorAppointments(ctx, job.EntityID)
	default:
		return "", fmt.Errorf("unknown export type %q", job.Type)
	}
}

func (s *Service) exportPatientTreatments(ctx context.Context, patientID uuid.UUID) (string, error) {
	treatments, err := s.treatmentRepo.ListForPatient(ctx, patientID)
	if err != nil {
		return "", fmt.Errorf("failed to load treatments: %w", err)
	}

	rows := make([][]string, 0, len(treatments)+1)
	rows = append(rows, []string{"appointment_date", "doctor_username", "diagnosis", "prescription", "notes"})
	for _, t := range treatments {
		rows = append(rows, []string{t.AppointmentDate, t.DoctorUsername, t.Diagnosis, t.Prescription, t.Notes})
	}

	filename := fmt.Sprintf("patient_%s_treatments.csv", patientID)
	return s.writeCSV(filename, rows)
}

func (s *Service) exportDoctorAppointments(ctx context.Context, doctorID uuid.UUID) (string, error) {
	appts, err := s.apptRepo.ListForDoctor(ctx, doctorID)
	if err != nil {
		return "", fmt.Errorf("failed to load appointments: %w", err)
	}

	rows := make([][]string, 0, len(appts)+1)
	rows = append(rows, []string{"appointment_id", "patient_id", "date", "time", "status", "remarks"})
	for _, a := range appts {
		rows = append(rows, []string{a.ID.String(), a.PatientID.String(), a.Date, a.Slot, string(a.Status), a.Remarks})
	}

	filename := fmt.Sprintf("doctor_%s_appointments.csv", doctorID)
	return s.writeCSV(filename, rows)
}

func (s *Service) writeCSV(filename string, rows [][]string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports dir: %w", err)
	}

	path := filepath.Join(s.dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// List returns the CSV filenames currently present in the reports directory.
func (s *Service) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read reports dir: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".csv") {
			files = append(files, e.Name())
		}
	}
	return files, nil
}

// Resolve maps a requested filename onto the reports directory, rejecting
// anything that would escape it.
func (s *Service) Resolve(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return "", apperrors.Validation("invalid report filename", nil)
	}
	path := filepath.Join(s.dir, filename)
	if _, err := os.Stat(path); err != nil {
		return "", apperrors.NotFound("report", err)
	}
	return path, nil
}
