package profile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/foxhuntgame/foxhunt/internal/domain/shared"
)

const (
	profileKeyPrefix = "profile:"
	profileIndexKey  = "profile:index"
)

// RedisRepository implements Repository against the keys the scraper writes.
// One JSON value per profile under "profile:{id}", ids indexed in a set.
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository creates a new Redis-based profile repository
func NewRedisRepository(client *redis.Client) Repository {
	return &RedisRepository{
		client: client,
	}
}

// GetByID returns the profile for a player, nil when unknown
func (r *RedisRepository) GetByID(ctx context.Context, id shared.PlayerID) (*Profile, error) {
	data, err := r.client.Get(ctx, profileKeyPrefix+id.String()).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %s: %w", id, err)
	}

	var p Profile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile %s: %w", id, err)
	}

	return &p, nil
}

// List returns the full known population
func (r *RedisRepository) List(ctx context.Context) ([]Profile, error) {
	ids, err := r.client.SMembers(ctx, profileIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list profile index: %w", err)
	}

	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = profileKeyPrefix + id
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profiles: %w", err)
	}

	profiles := make([]Profile, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			// Index entry without a value; the scraper will reconcile it
			continue
		}

		var p Profile
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			continue
		}
		profiles = append(profiles, p)
	}

	return profiles, nil
}
