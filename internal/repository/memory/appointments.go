package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"healthcare-app-server/internal/models"
	"healthcare-app-server/internal/repository"
)

// AppointmentRepository is an in-memory repository.AppointmentRepository.
// The slot index mirrors the unique slot_key column.
type AppointmentRepository struct {
	mu    sync.RWMutex
	byID  map[string]*models.Appointment
	slots map[string]string
	now   func() time.Time
}

// NewAppointmentRepository creates an empty AppointmentRepository.
func NewAppointmentRepository() *AppointmentRepository {
	return &AppointmentRepository{
		byID:  make(map[string]*models.Appointment),
		slots: make(map[string]string),
		now:   time.Now,
	}
}

func (r *AppointmentRepository) Create(_ context.Context, apt *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	apt.SyncSlotKey()
	if apt.SlotKey != nil {
		if _, taken := r.slots[*apt.SlotKey]; taken {
			return repository.ErrDuplicate
		}
	}
	apt.EnsureID()
	if _, exists := r.byID[apt.ID]; exists {
		return repository.ErrDuplicate
	}

	now := r.now()
	apt.CreatedAt = now
	apt.UpdatedAt = now

	r.byID[apt.ID] = clone(apt)
	if apt.SlotKey != nil {
		r.slots[*apt.SlotKey] = apt.ID
	}
	return nil
}

func (r *AppointmentRepository) FindByID(_ context.Context, id string) (*models.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	apt, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(apt), nil
}

func (r *AppointmentRepository) ListByPatient(_ context.Context, patientID string) ([]models.Appointment, error) {
	return r.collect(func(a *models.Appointment) bool { return a.PatientID == patientID }, latestFirst), nil
}

func (r *AppointmentRepository) ListByDoctor(_ context.Context, doctorID string) ([]models.Appointment, error) {
	return r.collect(func(a *models.Appointment) bool { return a.DoctorID == doctorID }, latestFirst), nil
}

func (r *AppointmentRepository) ListActiveByDoctorOnDate(_ context.Context, doctorID, date string) ([]models.Appointment, error) {
	return r.collect(func(a *models.Appointment) bool {
		return a.DoctorID == doctorID && a.AppointmentDate == date && a.Status.IsActive()
	}, earliestFirst), nil
}

func (r *AppointmentRepository) ListPendingOnOrBefore(_ context.Context, date string) ([]models.Appointment, error) {
	return r.collect(func(a *models.Appointment) bool {
		return a.Status == models.StatusPending && a.AppointmentDate <= date
	}, earliestFirst), nil
}

func (r *AppointmentRepository) UpdateStatus(_ context.Context, apt *models.Appointment, from models.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[apt.ID]
	if !ok || stored.Status != from {
		return repository.ErrStale
	}

	apt.SyncSlotKey()
	if apt.SlotKey != nil {
		if owner, taken := r.slots[*apt.SlotKey]; taken && owner != apt.ID {
			return repository.ErrDuplicate
		}
	}
	if stored.SlotKey != nil {
		delete(r.slots, *stored.SlotKey)
	}
	if apt.SlotKey != nil {
		r.slots[*apt.SlotKey] = apt.ID
	}

	apt.UpdatedAt = r.now()
	stored.Status = apt.Status
	stored.CancelledBy = apt.CancelledBy
	stored.CancellationReason = apt.CancellationReason
	stored.SlotKey = copyString(apt.SlotKey)
	stored.UpdatedAt = apt.UpdatedAt
	return nil
}

func (r *AppointmentRepository) collect(keep func(*models.Appointment) bool, less func(a, b *models.Appointment) bool) []models.Appointment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*models.Appointment, 0)
	for _, apt := range r.byID {
		if keep(apt) {
			matched = append(matched, apt)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return less(matched[i], matched[j]) })

	appointments := make([]models.Appointment, len(matched))
	for i, apt := range matched {
		appointments[i] = *clone(apt)
	}
	return appointments
}

func latestFirst(a, b *models.Appointment) bool {
	if a.AppointmentDate != b.AppointmentDate {
		return a.AppointmentDate > b.AppointmentDate
	}
	if a.AppointmentTime != b.AppointmentTime {
		return a.AppointmentTime > b.AppointmentTime
	}
	return a.ID > b.ID
}

func earliestFirst(a, b *models.Appointment) bool {
	if a.AppointmentDate != b.AppointmentDate {
		return a.AppointmentDate < b.AppointmentDate
	}
	if a.AppointmentTime != b.AppointmentTime {
		return a.AppointmentTime < b.AppointmentTime
	}
	return a.ID < b.ID
}

func clone(apt *models.Appointment) *models.Appointment {
	c := *apt
	c.SlotKey = copyString(apt.SlotKey)
	c.Patient = nil
	c.Doctor = nil
	return &c
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

var _ repository.AppointmentRepository = (*AppointmentRepository)(nil)
