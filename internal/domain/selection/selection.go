package selection

import (
	"sync"
	"time"

	"github.com/foxhuntgame/foxhunt/internal/domain/shared"
)

// Selection is the active target nomination, one slot per category. A nil
// slot means that category had no members during the cycle that produced it.
type Selection struct {
	TeamA      *shared.PlayerID `json:"teamA"`
	TeamB      *shared.PlayerID `json:"teamB"`
	SelectedAt time.Time        `json:"selectedAt"`
}

// TargetOf returns the selected player for the given category
func (s Selection) TargetOf(category shared.Category) *shared.PlayerID {
	if category == shared.CategoryA {
		return s.TeamA
	}
	return s.TeamB
}

// Targets returns the non-nil slots paired with their category
func (s Selection) Targets() map[shared.Category]shared.PlayerID {
	out := make(map[shared.Category]shared.PlayerID, 2)
	if s.TeamA != nil {
		out[shared.CategoryA] = *s.TeamA
	}
	if s.TeamB != nil {
		out[shared.CategoryB] = *s.TeamB
	}
	return out
}

// Holder owns the single active selection. Exactly one selection exists at a
// time; Replace swaps it wholesale so readers never observe a half-updated
// record.
type Holder struct {
	mu      sync.RWMutex
	current Selection
}

// NewHolder creates a holder with an empty selection
func NewHolder() *Holder {
	return &Holder{}
}

// Current returns a copy of the active selection
func (h *Holder) Current() Selection {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Replace swaps the active selection and returns the previous one
func (h *Holder) Replace(next Selection) Selection {
	h.mu.Lock()
	defer h.mu.Unlock()
	prev := h.current
	h.current = next
	return prev
}
