package model

import (
	"github.com/google/uuid"
)

// Redirect hints embedded in the access token at login time. The client uses
// them to route to the right page after authenticating.
const (
	RedirectAdminDashboard   = "admin_dashboard"
	RedirectDoctorDashboard  = "doctor_dashboard"
	RedirectDoctorProfile    = "doctor_profile"
	RedirectPatientDashboard = "patient_dashboard"
	RedirectPatientProfile   = "patient_profile"
)

// TokenClaims is the decoded payload of an access token.
type TokenClaims struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
	Redirect string    `json:"redirect,omitempty"`
}

// TokenResponse is the login response body.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}
