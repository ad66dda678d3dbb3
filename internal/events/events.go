package events

import (
	"time"

	"github.com/foxhuntgame/foxhunt/internal/domain/location"
	"github.com/foxhuntgame/foxhunt/internal/domain/selection"
	"github.com/foxhuntgame/foxhunt/internal/domain/shared"
)

// LocationUpdatedEvent fires when a player's fix is accepted into the store
type LocationUpdatedEvent struct {
	PlayerID  string       `json:"player_id"`
	Fix       location.Fix `json:"fix"`
	Timestamp time.Time    `json:"timestamp"`
}

// SelectionPublishedEvent fires when a selection cycle replaces the active
// selection. Changes carries a JSON merge patch against the previous record.
type SelectionPublishedEvent struct {
	Selection selection.Selection    `json:"selection"`
	Changes   map[string]interface{} `json:"changes,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// TargetLocatedEvent fires for each newly selected target whose location is
// already known, pairing the category with its coordinates
type TargetLocatedEvent struct {
	Category  shared.Category `json:"category"`
	PlayerID  string          `json:"player_id"`
	Fix       location.Fix    `json:"fix"`
	Timestamp time.Time       `json:"timestamp"`
}
