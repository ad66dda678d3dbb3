package points

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/foxhuntgame/foxhunt/internal/domain/shared"
)

const (
	pointsKeyPrefix = "points:"
	pointsIndexKey  = "points:index"
)

// RedisRepository implements Repository using Redis. One JSON value per
// player under "points:{id}", ids indexed in a set for listing.
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository creates a new Redis-based points repository
func NewRedisRepository(client *redis.Client) Repository {
	return &RedisRepository{
		client: client,
	}
}

// GetByID returns the record for a player, nil when absent
func (r *RedisRepository) GetByID(ctx context.Context, id shared.PlayerID) (*Record, error) {
	data, err := r.client.Get(ctx, pointsKeyPrefix+id.String()).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get points record %s: %w", id, err)
	}

	var record Record
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal points record %s: %w", id, err)
	}

	return &record, nil
}

// FindOneAndUpsert implements the IoC pattern with optimistic concurrency:
// the key is watched so a conflicting write aborts the transaction instead
// of interleaving with it.
func (r *RedisRepository) FindOneAndUpsert(ctx context.Context, id shared.PlayerID, callback func(*Record) (*Record, error)) error {
	key := pointsKeyPrefix + id.String()

	return r.client.Watch(ctx, func(tx *redis.Tx) error {
		var current *Record

		data, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			current = nil
		} else if err != nil {
			return err
		} else {
			current = &Record{}
			if err := json.Unmarshal([]byte(data), current); err != nil {
				return fmt.Errorf("failed to unmarshal points record %s: %w", id, err)
			}
		}

		result, err := callback(current)
		if err != nil {
			return err
		}

		if result == nil {
			return fmt.Errorf("callback returned nil record")
		}

		serialized, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to marshal points record %s: %w", id, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, serialized, 0)
			pipe.SAdd(ctx, pointsIndexKey, id.String())
			return nil
		})
		return err
	}, key)
}

// List returns every known record
func (r *RedisRepository) List(ctx context.Context) ([]Record, error) {
	ids, err := r.client.SMembers(ctx, pointsIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list points index: %w", err)
	}

	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = pointsKeyPrefix + id
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch points records: %w", err)
	}

	records := make([]Record, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}

		var record Record
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			continue
		}
		records = append(records, record)
	}

	return records, nil
}
