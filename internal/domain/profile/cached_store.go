package profile

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/foxhuntgame/foxhunt/internal/domain/shared"
	"github.com/foxhuntgame/foxhunt/pkg/logger"
)

// CachedStore serves the best currently available profile population and
// refreshes it asynchronously once stale. Callers never wait on a refresh
// when a previous snapshot exists; only a cold cache loads synchronously.
type CachedStore struct {
	repo    Repository
	ttl     time.Duration
	timeout time.Duration
	logger  *logger.Logger
	now     func() time.Time

	mu         sync.RWMutex
	byID       map[shared.PlayerID]Profile
	snapshot   []Profile
	fetchedAt  time.Time
	refreshing bool
}

// NewCachedStore wraps a repository with a stale-while-revalidate cache
func NewCachedStore(repo Repository, ttl, timeout time.Duration, log *logger.Logger) *CachedStore {
	return &CachedStore{
		repo:    repo,
		ttl:     ttl,
		timeout: timeout,
		logger:  log.WithComponent("profile-cache"),
		now:     time.Now,
	}
}

// GetByID returns the cached profile for a player, nil when unknown
func (s *CachedStore) GetByID(ctx context.Context, id shared.PlayerID) (*Profile, error) {
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// List returns the cached population snapshot
func (s *CachedStore) List(ctx context.Context) ([]Profile, error) {
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Profile, len(s.snapshot))
	copy(out, s.snapshot)
	return out, nil
}

// ensure serves from cache when possible, loading synchronously only when
// the cache has never been filled. A stale cache answers immediately and
// triggers at most one background refresh.
func (s *CachedStore) ensure(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.byID != nil
	stale := loaded && s.now().Sub(s.fetchedAt) > s.ttl
	s.mu.RUnlock()

	if !loaded {
		return s.load(ctx)
	}

	if stale {
		s.refreshAsync()
	}
	return nil
}

// load fetches the population synchronously, used only for a cold cache
func (s *CachedStore) load(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	profiles, err := s.repo.List(ctx)
	if err != nil {
		return shared.NewUnavailable(err, "profile store unavailable")
	}

	s.store(profiles)
	return nil
}

// refreshAsync kicks a fire-and-forget refresh, coalescing concurrent callers
func (s *CachedStore) refreshAsync() {
	s.mu.Lock()
	if s.refreshing {
		s.mu.Unlock()
		return
	}
	s.refreshing = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.refreshing = false
			s.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		profiles, err := s.repo.List(ctx)
		if err != nil {
			// Keep serving the stale snapshot; the next read retries
			s.logger.Warn("Background profile refresh failed", zap.Error(err))
			return
		}

		s.store(profiles)
		s.logger.Debug("Profile cache refreshed", zap.Int("profiles", len(profiles)))
	}()
}

func (s *CachedStore) store(profiles []Profile) {
	byID := make(map[shared.PlayerID]Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	s.mu.Lock()
	s.byID = byID
	s.snapshot = profiles
	s.fetchedAt = s.now()
	s.mu.Unlock()
}
