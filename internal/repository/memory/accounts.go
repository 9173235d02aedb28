// Package memory implements the repository contracts in process memory.
// Stores are safe for concurrent use and enforce the same uniqueness rules
// as the database schema.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"healthcare-app-server/internal/models"
	"healthcare-app-server/internal/repository"
)

// AccountRepository is an in-memory repository.AccountRepository.
type AccountRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]string
	now     func() time.Time
}

// NewAccountRepository creates an empty AccountRepository.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func (r *AccountRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if _, exists := r.byEmail[user.Email]; exists {
		return repository.ErrDuplicate
	}
	user.EnsureID()
	if _, exists := r.byID[user.ID]; exists {
		return repository.ErrDuplicate
	}

	now := r.now()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	r.byID[user.ID] = &stored
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *AccountRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := *user
	return &found, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[strings.ToLower(strings.TrimSpace(email))]
	r.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *AccountRepository) FindByIDs(_ context.Context, ids []string) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := r.byID[id]; ok {
			users = append(users, *user)
		}
	}
	return users, nil
}

func (r *AccountRepository) Update(_ context.Context, id string, update models.AccountUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	update.Apply(user)
	user.UpdatedAt = r.now()

	updated := *user
	return &updated, nil
}

func (r *AccountRepository) SetActive(_ context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.IsActive = active
	user.UpdatedAt = r.now()
	return nil
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
