package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusBooked    AppointmentStatus = "Booked"
	AppointmentStatusCompleted AppointmentStatus = "Completed"
	AppointmentStatusCancelled AppointmentStatus = "Cancelled"
)

// Date and slot wire formats. Slots are half-hour windows labelled in 12-hour
// clock form, e.g. "11:00 AM".
const (
	DateLayout = "2006-01-02"
	SlotLayout = "03:04 PM"
)

// SlotBefore reports whether slot label a is chronologically earlier than b.
// Labels are 12-hour, so plain string comparison would put afternoon slots
// before morning ones. Unparseable labels fall back to string order.
func SlotBefore(a, b string) bool {
	ta, errA := time.Parse(SlotLayout, a)
	tb, errB := time.Parse(SlotLayout, b)
	if errA != nil || errB != nil {
		return a < b
	}
	return ta.Before(tb)
}

// Appointment is a booking of one slot with one doctor. At most one
// appointment with status Booked may exist per (doctor, date, slot); the
// storage layer enforces this with a partial unique index.
type Appointment struct {
	Base
	DoctorID     uuid.UUID         `json:"doctor_id" db:"doctor_id"`
	PatientID    uuid.UUID         `json:"patient_id" db:"patient_id"`
	DepartmentID *uuid.UUID        `json:"department_id" db:"department_id"`
	Date         string            `json:"date" db:"date"`
	Slot         string            `json:"time" db:"slot"`
	Status       AppointmentStatus `json:"status" db:"status"`
	Remarks      string            `json:"remarks" db:"remarks"`
}

// BookAppointmentRequest represents a patient booking
type BookAppointmentRequest struct {
	DoctorID uuid.UUID `json:"doctor_id" binding:"required"`
	Date     string    `json:"date" binding:"required,apptdate"`
	Time     string    `json:"time" binding:"required,apptslot"`
}

// CompleteAppointmentRequest carries the treatment note written on completion
type CompleteAppointmentRequest struct {
	Diagnosis    string `json:"diagnosis"`
	Prescription string `json:"prescription"`
	Notes        string `json:"notes"`
}

// PatientAppointment is the patient-facing listing row, joined with the
// doctor account and department catalog.
type PatientAppointment struct {
	ID             uuid.UUID         `json:"id" db:"id"`
	Date           string            `json:"date" db:"date"`
	Slot           string            `json:"time" db:"slot"`
	Status         AppointmentStatus `json:"status" db:"status"`
	Remarks        string            `json:"remarks" db:"remarks"`
	DoctorUsername string            `json:"doctor_username" db:"doctor_username"`
	Department     *string           `json:"department" db:"department"`
	CanCancel      bool              `json:"can_cancel" db:"-"`
}

// DashboardStats is the admin dashboard summary.
type DashboardStats struct {
	TotalDoctors         int `json:"total_doctors" db:"total_doctors"`
	TotalPatients        int `json:"total_patients" db:"total_patients"`
	TotalAppointments    int `json:"total_appointments" db:"total_appointments"`
	UpcomingAppointments int `json:"upcoming_appointments" db:"upcoming_appointments"`
}
