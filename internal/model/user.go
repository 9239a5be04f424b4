package model

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// User represents an account. Username doubles as the contact address when it
// is email-shaped; notifications are skipped otherwise.
type User struct {
	Base
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-" db:"password_hash"`
	Role         Role   `json:"role" db:"role"`
	Approved     bool   `json:"approved" db:"approved"`
	Blocked      bool   `json:"blocked" db:"blocked"`
}

// RegisterRequest represents patient self-registration parameters
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// LoginRequest represents login parameters
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// BlockUserRequest represents an admin account action
type BlockUserRequest struct {
	Action string `json:"action" binding:"required,oneof=block unblock approve reject"`
}
