package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

const calendarDateLayout = "2006-01-02"

// AvailabilityCalendar maps an ISO date to whether the doctor offers
// appointments that day. Entries are validated on write, so a stored calendar
// never contains a malformed date.
type AvailabilityCalendar map[string]bool

// Validate rejects calendars with keys that are not YYYY-MM-DD dates.
func (c AvailabilityCalendar) Validate() error {
	for date := range c {
		if _, err := time.Parse(calendarDateLayout, date); err != nil {
			return fmt.Errorf("invalid availability date %q: %w", date, err)
		}
	}
	return nil
}

// OpenDates returns the dates marked open, sorted ascending.
func (c AvailabilityCalendar) OpenDates() []string {
	dates := make([]string, 0, len(c))
	for date, open := range c {
		if open {
			dates = append(dates, date)
		}
	}
	sort.Strings(dates)
	return dates
}

func (c AvailabilityCalendar) Value() (driver.Value, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c)
}

func (c *AvailabilityCalendar) Scan(src interface{}) error {
	if src == nil {
		*c = AvailabilityCalendar{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported availability type %T", src)
	}
	return json.Unmarshal(b, c)
}

// DoctorProfile is the one-to-one extension of a doctor account.
type DoctorProfile struct {
	UserID           uuid.UUID            `json:"user_id" db:"user_id"`
	SpecializationID *uuid.UUID           `json:"specialization_id" db:"specialization_id"`
	Experience       int                  `json:"experience" db:"experience"`
	Availability     AvailabilityCalendar `json:"availability" db:"availability"`
	CreatedAt        time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at" db:"updated_at"`
}

// UpsertDoctorProfileRequest represents a doctor (or admin) profile save
type UpsertDoctorProfileRequest struct {
	SpecializationID *uuid.UUID           `json:"specialization_id"`
	Experience       *int                 `json:"experience"`
	Availability     AvailabilityCalendar `json:"availability"`
}

// CreateDoctorRequest represents admin doctor creation
type CreateDoctorRequest struct {
	Username         string               `json:"username" binding:"required"`
	Password         string               `json:"password"`
	SpecializationID uuid.UUID            `json:"specialization_id" binding:"required"`
	Experience       int                  `json:"experience"`
	Availability     AvailabilityCalendar `json:"availability"`
	Approve          bool                 `json:"approve"`
}

// UpdateDoctorRequest represents admin approve/block toggles
type UpdateDoctorRequest struct {
	Approve *bool `json:"approve"`
	Blocked *bool `json:"blocked"`
}

// DoctorSummary is the admin-facing doctor listing row.
type DoctorSummary struct {
	ID                 uuid.UUID            `json:"id" db:"id"`
	Username           string               `json:"username" db:"username"`
	Approved           bool                 `json:"approve" db:"approved"`
	Blocked            bool                 `json:"blocked" db:"blocked"`
	SpecializationID   *uuid.UUID           `json:"specialization_id" db:"specialization_id"`
	SpecializationName *string              `json:"specialization_name" db:"specialization_name"`
	Experience         *int                 `json:"experience" db:"experience"`
	Availability       AvailabilityCalendar `json:"availability" db:"availability"`
}

// DoctorDetail is the admin-facing single doctor view.
type DoctorDetail struct {
	ID       uuid.UUID      `json:"id"`
	Username string         `json:"username"`
	Approved bool           `json:"approve"`
	Blocked  bool           `json:"blocked"`
	Profile  *DoctorProfile `json:"profile"`
}

// DoctorPublic is the department-detail doctor row.
type DoctorPublic struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"name" db:"username"`
	Experience int       `json:"experience" db:"experience"`
}

// DaySlots is one entry of the derived availability listing.
type DaySlots struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}
