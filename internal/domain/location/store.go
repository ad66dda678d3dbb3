package location

import (
	"sync"
	"time"

	"github.com/foxhuntgame/foxhunt/internal/domain/shared"
)

// Entry pairs a player with their last known fix
type Entry struct {
	PlayerID  shared.PlayerID `json:"playerId"`
	Fix       Fix             `json:"fix"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Store holds the last known fix per player. It owns this state exclusively;
// no history is retained and entries live until process restart.
type Store struct {
	mu      sync.RWMutex
	entries map[shared.PlayerID]Entry
	now     func() time.Time
}

// NewStore creates an empty location store
func NewStore() *Store {
	return &Store{
		entries: make(map[shared.PlayerID]Entry),
		now:     time.Now,
	}
}

// Update overwrites the player's fix and returns the previous one if any.
// Last write wins by arrival order at the store, not by fix timestamp.
func (s *Store) Update(playerID shared.PlayerID, fix Fix) (prev *Fix, existed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[playerID]; ok {
		p := old.Fix
		prev, existed = &p, true
	}

	s.entries[playerID] = Entry{
		PlayerID:  playerID,
		Fix:       fix,
		UpdatedAt: s.now(),
	}
	return prev, existed
}

// Get returns the player's last known fix
func (s *Store) Get(playerID shared.PlayerID) (Fix, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[playerID]
	if !ok {
		return Fix{}, false
	}
	return entry.Fix, true
}

// Snapshot returns a copy of all entries
func (s *Store) Snapshot() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, entry)
	}
	return out
}

// Count returns the number of players with a known location
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
