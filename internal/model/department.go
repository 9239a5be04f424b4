package model

import (
	"time"

	"github.com/google/uuid"
)

// Department is a specialization catalog entry.
type Department struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// CreateDepartmentRequest represents admin department creation
type CreateDepartmentRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// DepartmentDetail is a department with its approved doctors.
type DepartmentDetail struct {
	Department Department      `json:"department"`
	Doctors    []*DoctorPublic `json:"doctors"`
}
