package model

import (
	"time"

	"github.com/google/uuid"
)

// Treatment is the clinical note attached to a completed appointment. Created
// once at completion and never edited afterwards.
type Treatment struct {
	ID            uuid.UUID `json:"id" db:"id"`
	AppointmentID uuid.UUID `json:"appointment_id" db:"appointment_id"`
	Diagnosis     string    `json:"diagnosis" db:"diagnosis"`
	Prescription  string    `json:"prescription" db:"prescription"`
	Notes         string    `json:"notes" db:"notes"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// PatientTreatment is the patient-facing treatment listing row.
type PatientTreatment struct {
	TreatmentID     uuid.UUID `json:"treatment_id" db:"treatment_id"`
	AppointmentID   uuid.UUID `json:"appointment_id" db:"appointment_id"`
	AppointmentDate string    `json:"appointment_date" db:"appointment_date"`
	DoctorUsername  string    `json:"doctor_username" db:"doctor_username"`
	Diagnosis       string    `json:"diagnosis" db:"diagnosis"`
	Prescription    string    `json:"prescription" db:"prescription"`
	Notes           string    `json:"notes" db:"notes"`
}
