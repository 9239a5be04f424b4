// Package repotest provides in-memory repository implementations for
// service tests. They enforce the same sentinel errors as the postgres
// implementations, including the one-Booked-row-per-slot rule.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hmsd/hospital-api/internal/model"
	"github.com/hmsd/hospital-api/internal/repository"
)

type UserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return repository.ErrDuplicateUser
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *UserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepo) Update(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *UserRepo) ListByRole(ctx context.Context, role model.Role) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.User
	for _, u := range r.users {
		if u.Role == role {
			copied := *u
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *UserRepo) ListApprovedDoctors(ctx context.Context) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.User
	for _, u := range r.users {
		if u.Role == model.RoleDoctor && u.Approved && !u.Blocked {
			copied := *u
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *UserRepo) CountByRole(ctx context.Context, role model.Role) (int, error) {
	users, _ := r.ListByRole(ctx, role)
	return len(users), nil
}

type DoctorProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*model.DoctorProfile
}

func NewDoctorProfileRepo() *DoctorProfileRepo {
	return &DoctorProfileRepo{profiles: make(map[uuid.UUID]*model.DoctorProfile)}
}

func (r *DoctorProfileRepo) Get(ctx context.Context, userID uuid.UUID) (*model.DoctorProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *DoctorProfileRepo) Upsert(ctx context.Context, profile *model.DoctorProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile.UpdatedAt = time.Now()
	copied := *profile
	r.profiles[profile.UserID] = &copied
	return nil
}

func (r *DoctorProfileRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.profiles, userID)
	return nil
}

func (r *DoctorProfileRepo) ListSummaries(ctx context.Context) ([]*model.DoctorSummary, error) {
	return nil, nil
}

func (r *DoctorProfileRepo) ListByDepartment(ctx context.Context, departmentID uuid.UUID) ([]*model.DoctorPublic, error) {
	return nil, nil
}

type PatientProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*model.PatientProfile
}

func NewPatientProfileRepo() *PatientProfileRepo {
	return &PatientProfileRepo{profiles: make(map[uuid.UUID]*model.PatientProfile)}
}

func (r *PatientProfileRepo) Get(ctx context.Context, userID uuid.UUID) (*model.PatientProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *PatientProfileRepo) Upsert(ctx context.Context, profile *model.PatientProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile.UpdatedAt = time.Now()
	copied := *profile
	r.profiles[profile.UserID] = &copied
	return nil
}

type DepartmentRepo struct {
	mu    sync.Mutex
	depts map[uuid.UUID]*model.Department
}

func NewDepartmentRepo() *DepartmentRepo {
	return &DepartmentRepo{depts: make(map[uuid.UUID]*model.Department)}
}

func (r *DepartmentRepo) Create(ctx context.Context, dept *model.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if dept.ID == uuid.Nil {
		dept.ID = uuid.New()
	}
	dept.CreatedAt = time.Now()
	copied := *dept
	r.depts[dept.ID] = &copied
	return nil
}

func (r *DepartmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.depts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (r *DepartmentRepo) List(ctx context.Context) ([]*model.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Department, 0, len(r.depts))
	for _, d := range r.depts {
		copied := *d
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type AppointmentRepo struct {
	mu         sync.Mutex
	appts      map[uuid.UUID]*model.Appointment
	treatments []*model.Treatment
}

func NewAppointmentRepo() *AppointmentRepo {
	return &AppointmentRepo{appts: make(map[uuid.UUID]*model.Appointment)}
}

func (r *AppointmentRepo) Create(ctx context.Context, appt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appts {
		if a.Status == model.AppointmentStatusBooked &&
			a.DoctorID == appt.DoctorID && a.Date == appt.Date && a.Slot == appt.Slot {
			return repository.ErrSlotTaken
		}
	}
	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	appt.CreatedAt = time.Now()
	copied := *appt
	r.appts[appt.ID] = &copied
	return nil
}

func (r *AppointmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *AppointmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Status = status
	return nil
}

func (r *AppointmentRepo) Complete(ctx context.Context, id uuid.UUID, treatment *model.Treatment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Status = model.AppointmentStatusCompleted
	if treatment.ID == uuid.Nil {
		treatment.ID = uuid.New()
	}
	treatment.AppointmentID = id
	treatment.CreatedAt = time.Now()
	copied := *treatment
	r.treatments = append(r.treatments, &copied)
	return nil
}

// CountTreatments reports how many treatment rows Complete recorded for the
// appointment.
func (r *AppointmentRepo) CountTreatments(appointmentID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, t := range r.treatments {
		if t.AppointmentID == appointmentID {
			count++
		}
	}
	return count
}

func (r *AppointmentRepo) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Appointment
	for _, a := range r.appts {
		if a.DoctorID == doctorID {
			copied := *a
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return model.SlotBefore(out[i].Slot, out[j].Slot)
	})
	return out, nil
}

func (r *AppointmentRepo) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PatientAppointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rows []*model.PatientAppointment
	for _, a := range r.appts {
		if a.PatientID == patientID {
			rows = append(rows, &model.PatientAppointment{
				ID:     a.ID,
				Date:   a.Date,
				Slot:   a.Slot,
				Status: a.Status,
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date > rows[j].Date
		}
		return model.SlotBefore(rows[j].Slot, rows[i].Slot)
	})
	return rows, nil
}

func (r *AppointmentRepo) ListAll(ctx context.Context) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Appointment, 0, len(r.appts))
	for _, a := range r.appts {
		copied := *a
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return model.SlotBefore(out[j].Slot, out[i].Slot)
	})
	return out, nil
}

func (r *AppointmentRepo) BookedSlots(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var slots []string
	for _, a := range r.appts {
		if a.DoctorID == doctorID && a.Date == date && a.Status == model.AppointmentStatusBooked {
			slots = append(slots, a.Slot)
		}
	}
	sort.Slice(slots, func(i, j int) bool { return model.SlotBefore(slots[i], slots[j]) })
	return slots, nil
}

func (r *AppointmentRepo) ListBookedForDate(ctx context.Context, date string) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Appointment
	for _, a := range r.appts {
		if a.Date == date && a.Status == model.AppointmentStatusBooked {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *AppointmentRepo) ListForDoctorMonth(ctx context.Context, doctorID uuid.UUID, month int) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Appointment
	for _, a := range r.appts {
		if a.DoctorID != doctorID {
			continue
		}
		parsed, err := time.Parse(model.DateLayout, a.Date)
		if err != nil {
			continue
		}
		if int(parsed.Month()) == month {
			copied := *a
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return model.SlotBefore(out[i].Slot, out[j].Slot)
	})
	return out, nil
}

func (r *AppointmentRepo) CountAll(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.appts), nil
}

func (r *AppointmentRepo) CountFromDate(ctx context.Context, date string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, a := range r.appts {
		if a.Date >= date {
			count++
		}
	}
	return count, nil
}

type TreatmentRepo struct {
	mu   sync.Mutex
	rows []*model.PatientTreatment
}

func NewTreatmentRepo() *TreatmentRepo {
	return &TreatmentRepo{}
}

// SetPatientRows seeds the listing returned by ListForPatient.
func (r *TreatmentRepo) SetPatientRows(rows []*model.PatientTreatment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = rows
}

func (r *TreatmentRepo) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PatientTreatment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows, nil
}

// Interface conformance checks.
var (
	_ repository.UserRepository           = (*UserRepo)(nil)
	_ repository.DoctorProfileRepository  = (*DoctorProfileRepo)(nil)
	_ repository.PatientProfileRepository = (*PatientProfileRepo)(nil)
	_ repository.DepartmentRepository     = (*DepartmentRepo)(nil)
	_ repository.AppointmentRepository    = (*AppointmentRepo)(nil)
	_ repository.TreatmentRepository      = (*TreatmentRepo)(nil)
)
