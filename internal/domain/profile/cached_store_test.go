package profile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxhuntgame/foxhunt/internal/domain/shared"
	"github.com/foxhuntgame/foxhunt/pkg/logger"
)

// countingRepo wraps a MemoryRepository and counts List calls
type countingRepo struct {
	*MemoryRepository
	mu    sync.Mutex
	lists int
	fail  bool
}

func (r *countingRepo) List(ctx context.Context) ([]Profile, error) {
	r.mu.Lock()
	r.lists++
	fail := r.fail
	r.mu.Unlock()

	if fail {
		return nil, errors.New("scraper offline")
	}
	return r.MemoryRepository.List(ctx)
}

func (r *countingRepo) listCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lists
}

func newCountingRepo() *countingRepo {
	repo := &countingRepo{MemoryRepository: NewMemoryRepository()}
	repo.Put(Profile{ID: "p1", Nickname: "Fox", Category: shared.CategoryA})
	repo.Put(Profile{ID: "p2", Nickname: "Hound", Category: shared.CategoryB})
	return repo
}

func TestCachedStore_ColdLoadThenCacheHit(t *testing.T) {
	repo := newCountingRepo()
	store := NewCachedStore(repo, time.Minute, time.Second, logger.NewDefault())

	p, err := store.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, shared.CategoryA, p.Category)

	// Fresh cache answers without another repository round trip
	_, err = store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCount())
}

func TestCachedStore_UnknownPlayer(t *testing.T) {
	repo := newCountingRepo()
	store := NewCachedStore(repo, time.Minute, time.Second, logger.NewDefault())

	p, err := store.GetByID(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestCachedStore_StaleServesImmediatelyAndRefreshes(t *testing.T) {
	repo := newCountingRepo()
	store := NewCachedStore(repo, time.Minute, time.Second, logger.NewDefault())

	_, err := store.List(context.Background())
	require.NoError(t, err)

	// Age the snapshot past its TTL
	store.mu.Lock()
	store.fetchedAt = time.Now().Add(-2 * time.Minute)
	store.mu.Unlock()

	repo.Put(Profile{ID: "p3", Nickname: "Kit", Category: shared.CategoryA})

	// Stale read still answers from the old snapshot
	profiles, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, profiles, 2)

	// The background refresh eventually picks up the new profile
	assert.Eventually(t, func() bool {
		p, err := store.GetByID(context.Background(), "p3")
		return err == nil && p != nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCachedStore_ColdLoadFailureIsUnavailable(t *testing.T) {
	repo := newCountingRepo()
	repo.fail = true
	store := NewCachedStore(repo, time.Minute, time.Second, logger.NewDefault())

	_, err := store.List(context.Background())
	require.Error(t, err)
	assert.Equal(t, shared.KindUnavailable, shared.Kind(err))
}
