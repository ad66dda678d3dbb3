package profile

import (
	"context"
	"sync"

	"github.com/foxhuntgame/foxhunt/internal/domain/shared"
)

// MemoryRepository is an in-memory Repository for tests and development
type MemoryRepository struct {
	mu       sync.RWMutex
	profiles map[shared.PlayerID]Profile
}

// NewMemoryRepository creates an empty in-memory profile repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		profiles: make(map[shared.PlayerID]Profile),
	}
}

// Put stores or replaces a profile
func (r *MemoryRepository) Put(p Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.ID] = p
}

// GetByID returns the profile for a player, nil when unknown
func (r *MemoryRepository) GetByID(_ context.Context, id shared.PlayerID) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// List returns the full known population
func (r *MemoryRepository) List(_ context.Context) ([]Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	return out, nil
}
