package points

import (
	"context"
	"sync"

	"github.com/foxhuntgame/foxhunt/internal/domain/shared"
)

// MemoryRepository is an in-memory Repository for tests and development.
// The single mutex serializes every upsert, which satisfies the per-key
// exclusivity the interface requires.
type MemoryRepository struct {
	mu      sync.Mutex
	records map[shared.PlayerID]Record
}

// NewMemoryRepository creates an empty in-memory points repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records: make(map[shared.PlayerID]Record),
	}
}

// GetByID returns the record for a player, nil when absent
func (r *MemoryRepository) GetByID(_ context.Context, id shared.PlayerID) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	copy := record
	return &copy, nil
}

// FindOneAndUpsert runs callback under the repository lock and persists the result
func (r *MemoryRepository) FindOneAndUpsert(_ context.Context, id shared.PlayerID, callback func(*Record) (*Record, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var current *Record
	if record, ok := r.records[id]; ok {
		copy := record
		current = &copy
	}

	result, err := callback(current)
	if err != nil {
		return err
	}

	r.records[id] = *result
	return nil
}

// List returns every known record
func (r *MemoryRepository) List(_ context.Context) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Record, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, record)
	}
	return out, nil
}
