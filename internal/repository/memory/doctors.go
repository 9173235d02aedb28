package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"healthcare-app-server/internal/models"
	"healthcare-app-server/internal/repository"
)

type doctorRecord struct {
	profile models.DoctorProfile
	seq     int
}

// DoctorRepository is an in-memory repository.DoctorRepository.
type DoctorRepository struct {
	mu       sync.RWMutex
	byID     map[string]*doctorRecord
	byUserID map[string]string
	seq      int
	now      func() time.Time
}

// NewDoctorRepository creates an empty DoctorRepository.
func NewDoctorRepository() *DoctorRepository {
	return &DoctorRepository{
		byID:     make(map[string]*doctorRecord),
		byUserID: make(map[string]string),
		now:      time.Now,
	}
}

func (r *DoctorRepository) Create(_ context.Context, profile *models.DoctorProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUserID[profile.UserID]; exists {
		return repository.ErrDuplicate
	}
	profile.EnsureID()
	now := r.now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	r.seq++
	stored := *profile
	stored.User = nil
	r.byID[profile.ID] = &doctorRecord{profile: stored, seq: r.seq}
	r.byUserID[profile.UserID] = profile.ID
	return nil
}

func (r *DoctorRepository) FindByID(_ context.Context, id string) (*models.DoctorProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := rec.profile
	return &found, nil
}

func (r *DoctorRepository) FindByUserID(ctx context.Context, userID string) (*models.DoctorProfile, error) {
	r.mu.RLock()
	id, ok := r.byUserID[userID]
	r.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *DoctorRepository) Save(_ context.Context, profile *models.DoctorProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[profile.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if rec.profile.UserID != profile.UserID {
		if _, taken := r.byUserID[profile.UserID]; taken {
			return repository.ErrDuplicate
		}
		delete(r.byUserID, rec.profile.UserID)
		r.byUserID[profile.UserID] = profile.ID
	}
	profile.UpdatedAt = r.now()
	stored := *profile
	stored.User = nil
	rec.profile = stored
	return nil
}

func (r *DoctorRepository) List(_ context.Context, filter models.DoctorFilter) ([]models.DoctorProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(filter.Specialization))
	records := make([]*doctorRecord, 0, len(r.byID))
	for _, rec := range r.byID {
		if needle != "" && !strings.Contains(strings.ToLower(rec.profile.Specialization), needle) {
			continue
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.profile.CreatedAt.Equal(b.profile.CreatedAt) {
			return a.profile.CreatedAt.After(b.profile.CreatedAt)
		}
		return a.seq > b.seq
	})

	profiles := make([]models.DoctorProfile, len(records))
	for i, rec := range records {
		profiles[i] = rec.profile
	}
	return profiles, nil
}

var _ repository.DoctorRepository = (*DoctorRepository)(nil)
