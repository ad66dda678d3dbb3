package ws

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/foxhuntgame/foxhunt/internal/domain/location"
	"github.com/foxhuntgame/foxhunt/internal/domain/selection"
	"github.com/foxhuntgame/foxhunt/internal/domain/shared"
	"github.com/foxhuntgame/foxhunt/pkg/logger"
)

// connection is the registry record for one live session
type connection struct {
	id           string
	session      Session
	connectedAt  time.Time
	lastActivity time.Time
}

// snapshotPayload is pushed to a newcomer so it observes consistent state
// without waiting for the next event
type snapshotPayload struct {
	Locations []location.Entry `json:"locations"`
}

// selectionPayload wraps the active selection for broadcast
type selectionPayload struct {
	Selection selection.Selection `json:"selection"`
}

// Hub is the connection registry and broadcast fan-out. It is the sole owner
// of session handles; every registered session is visited at most once per
// fan-out pass, and a session whose send fails is removed, not retried.
type Hub struct {
	logger    *logger.Logger
	holder    *selection.Holder
	locations *location.Store

	pingInterval time.Duration
	idleDeadline time.Duration

	mu    sync.RWMutex
	conns map[string]*connection
}

// NewHub creates a hub over the shared selection holder and location store
func NewHub(holder *selection.Holder, locations *location.Store, pingInterval, idleDeadline time.Duration, log *logger.Logger) *Hub {
	return &Hub{
		logger:       log.WithComponent("ws-hub"),
		holder:       holder,
		locations:    locations,
		pingInterval: pingInterval,
		idleDeadline: idleDeadline,
		conns:        make(map[string]*connection),
	}
}

// Register adds a session and returns its opaque connection id. The newcomer
// immediately receives the current selection and the full location snapshot.
func (h *Hub) Register(session Session) string {
	id := shared.NewConnectionID()
	now := time.Now()

	h.mu.Lock()
	h.conns[id] = &connection{
		id:           id,
		session:      session,
		connectedAt:  now,
		lastActivity: now,
	}
	total := len(h.conns)
	h.mu.Unlock()

	h.logger.Debug("Connection registered",
		zap.String("connectionId", id),
		zap.Int("total", total))

	h.sendWelcome(id, session)
	return id
}

// sendWelcome pushes the active selection and the location snapshot
func (h *Hub) sendWelcome(id string, session Session) {
	selEnv, err := NewEnvelope(TypeSelectionBroadcast, "", selectionPayload{Selection: h.holder.Current()})
	if err == nil {
		err = session.Send(selEnv)
	}
	if err != nil {
		h.logger.Warn("Failed to push selection to newcomer",
			zap.String("connectionId", id), zap.Error(err))
		h.Unregister(id)
		return
	}

	snapEnv, err := NewEnvelope(TypeLocationUpdate, "", snapshotPayload{Locations: h.locations.Snapshot()})
	if err == nil {
		err = session.Send(snapEnv)
	}
	if err != nil {
		h.logger.Warn("Failed to push location snapshot to newcomer",
			zap.String("connectionId", id), zap.Error(err))
		h.Unregister(id)
	}
}

// Unregister removes a connection and closes its session
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	conn, exists := h.conns[id]
	if exists {
		delete(h.conns, id)
	}
	total := len(h.conns)
	h.mu.Unlock()

	if !exists {
		return
	}

	_ = conn.session.Close()
	h.logger.Debug("Connection unregistered",
		zap.String("connectionId", id),
		zap.Int("total", total))
}

// MarkActivity refreshes the last-activity timestamp for a connection
func (h *Hub) MarkActivity(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, ok := h.conns[id]; ok {
		conn.lastActivity = time.Now()
	}
}

// Count returns the number of live connections
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// ForEachLive visits every live connection exactly once with a copied set,
// so callbacks run without the registry lock held
func (h *Hub) ForEachLive(fn func(id string, session Session)) {
	h.mu.RLock()
	snapshot := make([]*connection, 0, len(h.conns))
	for _, conn := range h.conns {
		snapshot = append(snapshot, conn)
	}
	h.mu.RUnlock()

	for _, conn := range snapshot {
		fn(conn.id, conn.session)
	}
}

// Broadcast delivers env to every live connection. Send failures drop the
// recipient and never abort the pass or surface to the caller.
func (h *Hub) Broadcast(env Envelope) {
	var sent, dropped int

	h.ForEachLive(func(id string, session Session) {
		if err := session.Send(env); err != nil {
			h.logger.Warn("Dropping dead connection during broadcast",
				zap.String("connectionId", id),
				zap.String("type", string(env.Type)),
				zap.Error(err))
			h.Unregister(id)
			dropped++
			return
		}
		sent++
	})

	h.logger.Debug("Broadcast complete",
		zap.String("type", string(env.Type)),
		zap.Int("sent", sent),
		zap.Int("dropped", dropped))
}

// Run drives the liveness sweep until ctx is cancelled: ping every live
// connection and drop the ones idle past the deadline.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			h.sweep()
		}
	}
}

// sweep drops idle connections, then pings the survivors
func (h *Hub) sweep() {
	cutoff := time.Now().Add(-h.idleDeadline)

	h.mu.Lock()
	var stale []string
	for id, conn := range h.conns {
		if conn.lastActivity.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	h.mu.Unlock()

	for _, id := range stale {
		h.logger.Info("Dropping idle connection", zap.String("connectionId", id))
		h.Unregister(id)
	}

	ping, err := NewEnvelope(TypeLivenessPing, "", map[string]int64{"timestamp": time.Now().UnixMilli()})
	if err != nil {
		return
	}

	h.ForEachLive(func(id string, session Session) {
		if err := session.Send(ping); err != nil {
			h.Unregister(id)
		}
	})
}

// closeAll tears down every session on shutdown
func (h *Hub) closeAll() {
	h.mu.Lock()
	conns := h.conns
	h.conns = make(map[string]*connection)
	h.mu.Unlock()

	for _, conn := range conns {
		_ = conn.session.Close()
	}

	h.logger.Info("All connections closed", zap.Int("count", len(conns)))
}
