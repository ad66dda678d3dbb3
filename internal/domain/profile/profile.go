// Package profile consumes the player profiles owned by the out-of-process
// scraper. This subsystem only reads them: the category attribute drives
// target selection and scan verification.
package profile

import (
	"context"

	"github.com/foxhuntgame/foxhunt/internal/domain/shared"
)

// Profile is a player profile as published by the scraper
type Profile struct {
	ID        shared.PlayerID `json:"id"`
	Nickname  string          `json:"nickname"`
	Category  shared.Category `json:"category"`
	AvatarURL string          `json:"avatarUrl,omitempty"`
}

// Repository defines read access to the profile population
type Repository interface {
	// GetByID returns the profile for a player, nil when unknown
	GetByID(ctx context.Context, id shared.PlayerID) (*Profile, error)
	// List returns the full known population
	List(ctx context.Context) ([]Profile, error)
}
