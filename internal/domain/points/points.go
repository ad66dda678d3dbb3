package points

import (
	"context"
	"time"

	"github.com/foxhuntgame/foxhunt/internal/domain/shared"
)

// Record is the durable points state for one player. A target id appears at
// most once in Redeemed; that set is the sole duplicate-prevention mechanism.
type Record struct {
	PlayerID  shared.PlayerID `json:"playerId"`
	Total     int             `json:"total"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Redeemed  []string        `json:"redeemed"`
}

// NewRecord creates a fresh zero record for a player
func NewRecord(playerID shared.PlayerID) *Record {
	return &Record{
		PlayerID: playerID,
		Redeemed: []string{},
	}
}

// HasRedeemed reports whether the player already redeemed the target
func (r *Record) HasRedeemed(targetID shared.PlayerID) bool {
	for _, id := range r.Redeemed {
		if id == targetID.String() {
			return true
		}
	}
	return false
}

// Repository defines persistence for points records
type Repository interface {
	// GetByID returns the record for a player, nil when absent
	GetByID(ctx context.Context, id shared.PlayerID) (*Record, error)
	// FindOneAndUpsert runs callback on the current record (nil when absent)
	// and persists the returned record. The read-modify-write must not
	// interleave with another upsert for the same player.
	FindOneAndUpsert(ctx context.Context, id shared.PlayerID, callback func(*Record) (*Record, error)) error
	// List returns every known record
	List(ctx context.Context) ([]Record, error)
}
