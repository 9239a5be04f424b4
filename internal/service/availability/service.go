package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hmsd/hospital-api/internal/model"
	"github.com/hmsd/hospital-api/internal/repository"
)

// Working hours. Every open day yields the same 12 half-hour slots.
const (
	startHour   = 11
	endHour     = 17
	slotMinutes = 30
)

type Service struct {
	doctorRepo repository.DoctorProfileRepository
	apptRepo   repository.AppointmentRepository
}

func NewService(doctorRepo repository.DoctorProfileRepository, apptRepo repository.AppointmentRepository) *Service {
	return &Service{
		doctorRepo: doctorRepo,
		apptRepo:   apptRepo,
	}
}

// CanonicalSlots returns the full slot grid for one day, in order.
func CanonicalSlots() []string {
	base := time.Date(2000, 1, 1, startHour, 0, 0, 0, time.UTC)
	var slots []string
	for current := base; current.Hour() < endHour; current = current.Add(slotMinutes * time.Minute) {
		slots = append(slots, current.Format(model.SlotLayout))
	}
	return slots
}

// SlotsForDoctor derives the bookable slots per open day: the canonical grid
// minus slots already held by a Booked appointment. Days come back sorted by
// date ascending. A doctor without a profile, or with an empty calendar,
// yields an empty listing.
func (s *Service) SlotsForDoctor(ctx context.Context, doctorID uuid.UUID) ([]model.DaySlots, error) {
	profile, err := s.doctorRepo.Get(ctx, doctorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []model.DaySlots{}, nil
		}
		return nil, fmt.Errorf("failed to load doctor profile: %w", err)
	}

	days := make([]model.DaySlots, 0)
	grid := CanonicalSlots()
	for _, date := range profile.Availability.OpenDates() {
		booked, err := s.apptRepo.BookedSlots(ctx, doctorID, date)
		if err != nil {
			return nil, fmt.Errorf("failed to load booked slots for %s: %w", date, err)
		}

		taken := make(map[string]bool, len(booked))
		for _, slot := range booked {
			taken[slot] = true
		}

		free := make([]string, 0, len(grid))
		for _, slot := range grid {
			if !taken[slot] {
				free = append(free, slot)
			}
		}
		days = append(days, model.DaySlots{Date: date, Slots: free})
	}
	return days, nil
}
