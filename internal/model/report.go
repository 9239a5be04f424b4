package model

import (
	"time"

	"github.com/google/uuid"
)

// ExportType selects which CSV an export job produces.
type ExportType string

const (
	ExportPatientTreatments  ExportType = "patient_treatments"
	ExportDoctorAppointments ExportType = "doctor_appointments"
)

// ExportJob is the payload carried on the report job queue.
type ExportJob struct {
	TaskID   uuid.UUID  `json:"task_id"`
	Type     ExportType `json:"type"`
	EntityID uuid.UUID  `json:"entity_id"`
	Enqueued time.Time  `json:"enqueued"`
}

// ExportEventType labels the status messages published when a job finishes.
const (
	ExportEventCompleted = "export_completed"
	ExportEventFailed    = "export_failed"
)

// ExportEvent is the payload published on the event channel once a job has
// been processed. Fire-and-forget; consumers that miss it can still poll the
// report listing.
type ExportEvent struct {
	TaskID uuid.UUID  `json:"task_id"`
	Type   ExportType `json:"type"`
	Path   string     `json:"path,omitempty"`
	Error  string     `json:"error,omitempty"`
}

// ExportResponse acknowledges an accepted export job.
type ExportResponse struct {
	Message string    `json:"message,omitempty"`
	TaskID  uuid.UUID `json:"task_id"`
}

// ReportListing enumerates generated report files.
type ReportListing struct {
	Downloads []string `json:"downloads"`
}
