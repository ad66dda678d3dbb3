package ws

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxhuntgame/foxhunt/internal/domain/location"
	"github.com/foxhuntgame/foxhunt/internal/domain/selection"
	"github.com/foxhuntgame/foxhunt/internal/domain/shared"
	"github.com/foxhuntgame/foxhunt/pkg/logger"
)

// fakeSession records envelopes instead of writing to a socket
type fakeSession struct {
	mu       sync.Mutex
	received []Envelope
	closed   bool
	failSend bool
}

func (f *fakeSession) Send(env Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || f.failSend {
		return fmt.Errorf("session closed")
	}
	f.received = append(f.received, env)
	return nil
}

func (f *fakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSession) envelopes() []Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Envelope, len(f.received))
	copy(out, f.received)
	return out
}

func (f *fakeSession) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func newTestHub() *Hub {
	return NewHub(selection.NewHolder(), location.NewStore(), time.Minute, 2*time.Minute, logger.NewDefault())
}

func TestHub_RegisterPushesWelcomeState(t *testing.T) {
	holder := selection.NewHolder()
	target := shared.PlayerID("p2")
	holder.Replace(selection.Selection{TeamB: &target, SelectedAt: time.Now()})

	locations := location.NewStore()
	locations.Update("p1", location.Fix{Lat: 1, Lon: 2, Timestamp: 100})

	hub := NewHub(holder, locations, time.Minute, 2*time.Minute, logger.NewDefault())

	session := &fakeSession{}
	id := hub.Register(session)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, hub.Count())

	envs := session.envelopes()
	require.Len(t, envs, 2)

	// First push carries the active selection
	assert.Equal(t, TypeSelectionBroadcast, envs[0].Type)
	var selPayload selectionPayload
	require.NoError(t, json.Unmarshal(envs[0].Data, &selPayload))
	require.NotNil(t, selPayload.Selection.TeamB)
	assert.Equal(t, target, *selPayload.Selection.TeamB)

	// Second push carries the full location snapshot
	assert.Equal(t, TypeLocationUpdate, envs[1].Type)
	var snap snapshotPayload
	require.NoError(t, json.Unmarshal(envs[1].Data, &snap))
	require.Len(t, snap.Locations, 1)
	assert.Equal(t, shared.PlayerID("p1"), snap.Locations[0].PlayerID)
}

func TestHub_UnregisterClosesSession(t *testing.T) {
	hub := newTestHub()

	session := &fakeSession{}
	id := hub.Register(session)
	require.Equal(t, 1, hub.Count())

	hub.Unregister(id)
	assert.Equal(t, 0, hub.Count())
	assert.True(t, session.isClosed())

	// Unregistering twice is harmless
	hub.Unregister(id)
	assert.Equal(t, 0, hub.Count())
}

func TestHub_BroadcastSurvivesDeadConnection(t *testing.T) {
	hub := newTestHub()

	alive1 := &fakeSession{}
	alive2 := &fakeSession{}
	dead := &fakeSession{}

	hub.Register(alive1)
	hub.Register(alive2)
	hub.Register(dead)
	require.Equal(t, 3, hub.Count())

	// Force-close one connection before the broadcast
	dead.Close()

	env, err := NewEnvelope(TypeTargetBroadcast, "p2", map[string]string{"category": "B"})
	require.NoError(t, err)
	hub.Broadcast(env)

	// The two live connections both received the message past their welcome pushes
	for _, session := range []*fakeSession{alive1, alive2} {
		envs := session.envelopes()
		require.Len(t, envs, 3)
		assert.Equal(t, TypeTargetBroadcast, envs[2].Type)
	}

	// The dead connection was dropped from the registry
	assert.Equal(t, 2, hub.Count())
}

func TestHub_SweepDropsIdleConnections(t *testing.T) {
	hub := NewHub(selection.NewHolder(), location.NewStore(), time.Minute, time.Minute, logger.NewDefault())

	fresh := &fakeSession{}
	idle := &fakeSession{}

	freshID := hub.Register(fresh)
	idleID := hub.Register(idle)

	// Age the idle connection past the deadline
	hub.mu.Lock()
	hub.conns[idleID].lastActivity = time.Now().Add(-2 * time.Minute)
	hub.mu.Unlock()

	hub.sweep()

	assert.Equal(t, 1, hub.Count())
	assert.True(t, idle.isClosed())

	// The survivor got a liveness ping
	hub.MarkActivity(freshID)
	envs := fresh.envelopes()
	require.NotEmpty(t, envs)
	assert.Equal(t, TypeLivenessPing, envs[len(envs)-1].Type)
}

func TestHub_ForEachLiveVisitsOnce(t *testing.T) {
	hub := newTestHub()

	hub.Register(&fakeSession{})
	hub.Register(&fakeSession{})

	visits := map[string]int{}
	hub.ForEachLive(func(id string, _ Session) {
		visits[id]++
	})

	require.Len(t, visits, 2)
	for _, n := range visits {
		assert.Equal(t, 1, n)
	}
}
