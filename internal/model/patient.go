package model

import (
	"time"

	"github.com/google/uuid"
)

// PatientProfile is the one-to-one extension of a patient account.
type PatientProfile struct {
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	FullName  string    `json:"full_name" db:"full_name"`
	Age       int       `json:"age" db:"age"`
	Contact   string    `json:"contact" db:"contact"`
	Address   string    `json:"address" db:"address"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UpsertPatientProfileRequest merges into the stored profile: zero-valued
// fields leave the stored value unchanged, so a field cannot be cleared to
// empty through this request.
type UpsertPatientProfileRequest struct {
	FullName string `json:"full_name"`
	Age      int    `json:"age"`
	Contact  string `json:"contact"`
	Address  string `json:"address"`
}

// PatientSummary is the admin-facing patient listing row.
type PatientSummary struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Username string    `json:"username" db:"username"`
}
