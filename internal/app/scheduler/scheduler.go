// Package scheduler drives the target selection cycle: partition the
// population by category, draw one target per category, publish the result.
package scheduler

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"go.uber.org/zap"

	"github.com/foxhuntgame/foxhunt/internal/domain/location"
	"github.com/foxhuntgame/foxhunt/internal/domain/profile"
	"github.com/foxhuntgame/foxhunt/internal/domain/selection"
	"github.com/foxhuntgame/foxhunt/internal/domain/shared"
	"github.com/foxhuntgame/foxhunt/internal/events"
	"github.com/foxhuntgame/foxhunt/pkg/logger"
)

// ProfileStore is the read-only population source
type ProfileStore interface {
	List(ctx context.Context) ([]profile.Profile, error)
}

// EventPublisher publishes selection events for fan-out
type EventPublisher interface {
	Publish(ctx context.Context, event interface{}) error
}

// Scheduler runs the idle/selecting/published cycle for the lifetime of the
// process. Timer ticks and manual triggers share one code path; runMu keeps
// a single run in flight so concurrent triggers never interleave writes.
type Scheduler struct {
	logger         *logger.Logger
	profiles       ProfileStore
	holder         *selection.Holder
	locations      *location.Store
	publisher      EventPublisher
	interval       time.Duration
	profileTimeout time.Duration

	runMu sync.Mutex
	rng   *rand.Rand
	now   func() time.Time
}

// New creates a scheduler over the shared selection holder
func New(profiles ProfileStore, holder *selection.Holder, locations *location.Store, publisher EventPublisher, interval, profileTimeout time.Duration, log *logger.Logger) *Scheduler {
	return &Scheduler{
		logger:         log.WithComponent("target-scheduler"),
		profiles:       profiles,
		holder:         holder,
		locations:      locations,
		publisher:      publisher,
		interval:       interval,
		profileTimeout: profileTimeout,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
		now:            time.Now,
	}
}

// Run performs an initial selection and then cycles on the interval timer
// until ctx is cancelled. A failed run keeps the previous selection; the
// next tick simply tries again.
func (s *Scheduler) Run(ctx context.Context) {
	if _, err := s.Trigger(ctx); err != nil {
		s.logger.Warn("Initial selection cycle failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Target scheduler stopped")
			return
		case <-ticker.C:
			if _, err := s.Trigger(ctx); err != nil {
				s.logger.Warn("Selection cycle failed", zap.Error(err))
			}
		}
	}
}

// Trigger executes one selection cycle and returns the published selection.
// Manual triggers and timer ticks both land here; the run mutex serializes
// them.
func (s *Scheduler) Trigger(ctx context.Context) (selection.Selection, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	listCtx, cancel := context.WithTimeout(ctx, s.profileTimeout)
	population, err := s.profiles.List(listCtx)
	cancel()
	if err != nil {
		return selection.Selection{}, shared.NewUnavailable(err, "population listing failed")
	}

	next := s.draw(population)
	prev := s.holder.Replace(next)

	s.logger.Info("Selection published",
		zap.Any("teamA", next.TeamA),
		zap.Any("teamB", next.TeamB),
		zap.Int("population", len(population)))

	s.publish(ctx, prev, next)
	return next, nil
}

// draw partitions the population and picks one member per non-empty category
func (s *Scheduler) draw(population []profile.Profile) selection.Selection {
	byCategory := make(map[shared.Category][]profile.Profile, 2)
	for _, p := range population {
		if !p.Category.IsValid() {
			s.logger.Warn("Skipping profile with unknown category",
				zap.String("playerId", p.ID.String()),
				zap.String("category", p.Category.String()))
			continue
		}
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}

	next := selection.Selection{SelectedAt: s.now()}
	if members := byCategory[shared.CategoryA]; len(members) > 0 {
		id := members[s.rng.Intn(len(members))].ID
		next.TeamA = &id
	}
	if members := byCategory[shared.CategoryB]; len(members) > 0 {
		id := members[s.rng.Intn(len(members))].ID
		next.TeamB = &id
	}
	return next
}

// publish fans out the new selection and the locations of the new targets.
// Publish failures log and never abort the cycle.
func (s *Scheduler) publish(ctx context.Context, prev, next selection.Selection) {
	event := events.SelectionPublishedEvent{
		Selection: next,
		Changes:   s.changes(prev, next),
		Timestamp: s.now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish selection", zap.Error(err))
	}

	for category, playerID := range next.Targets() {
		fix, ok := s.locations.Get(playerID)
		if !ok {
			continue
		}

		located := events.TargetLocatedEvent{
			Category:  category,
			PlayerID:  playerID.String(),
			Fix:       fix,
			Timestamp: s.now(),
		}
		if err := s.publisher.Publish(ctx, located); err != nil {
			s.logger.Error("Failed to publish target location",
				zap.String("playerId", playerID.String()),
				zap.Error(err))
		}
	}
}

// changes computes a JSON merge patch between the previous and the new
// selection so clients can tell what moved
func (s *Scheduler) changes(prev, next selection.Selection) map[string]interface{} {
	prevJSON, err := json.Marshal(prev)
	if err != nil {
		return nil
	}
	nextJSON, err := json.Marshal(next)
	if err != nil {
		return nil
	}

	patch, err := jsonpatch.CreateMergePatch(prevJSON, nextJSON)
	if err != nil {
		return nil
	}

	var changes map[string]interface{}
	if err := json.Unmarshal(patch, &changes); err != nil {
		return nil
	}
	return changes
}
