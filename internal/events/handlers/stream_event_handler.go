package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/foxhuntgame/foxhunt/internal/events"
	"github.com/foxhuntgame/foxhunt/internal/ws"
	"github.com/foxhuntgame/foxhunt/pkg/logger"
)

// Broadcaster fans an envelope out to every live connection
type Broadcaster interface {
	Broadcast(env ws.Envelope)
}

// StreamEventHandler turns domain events into stream envelopes. It is the
// only bridge between the event pipeline and the connection registry.
type StreamEventHandler struct {
	broadcaster Broadcaster
	logger      *logger.Logger
}

// NewStreamEventHandler creates a new stream event handler
func NewStreamEventHandler(broadcaster Broadcaster, log *logger.Logger) *StreamEventHandler {
	return &StreamEventHandler{
		broadcaster: broadcaster,
		logger:      log.WithComponent("stream-event-handler"),
	}
}

// HandleLocationUpdated fans an accepted fix out to all connections
func (h *StreamEventHandler) HandleLocationUpdated(_ context.Context, event *events.LocationUpdatedEvent) error {
	env, err := ws.NewEnvelope(ws.TypeLocationUpdate, event.PlayerID, event.Fix)
	if err != nil {
		h.logger.Error("Failed to build location envelope", zap.Error(err))
		return nil
	}

	h.broadcaster.Broadcast(env)
	return nil
}

// HandleSelectionPublished fans a new selection out to all connections
func (h *StreamEventHandler) HandleSelectionPublished(_ context.Context, event *events.SelectionPublishedEvent) error {
	payload := map[string]interface{}{
		"selection": event.Selection,
	}
	if len(event.Changes) > 0 {
		payload["changes"] = event.Changes
	}

	env, err := ws.NewEnvelope(ws.TypeSelectionBroadcast, "", payload)
	if err != nil {
		h.logger.Error("Failed to build selection envelope", zap.Error(err))
		return nil
	}

	h.broadcaster.Broadcast(env)
	return nil
}

// HandleTargetLocated pairs a newly selected target's category with its
// coordinates and fans it out
func (h *StreamEventHandler) HandleTargetLocated(_ context.Context, event *events.TargetLocatedEvent) error {
	payload := map[string]interface{}{
		"category": event.Category,
		"fix":      event.Fix,
	}

	env, err := ws.NewEnvelope(ws.TypeTargetBroadcast, event.PlayerID, payload)
	if err != nil {
		h.logger.Error("Failed to build target envelope", zap.Error(err))
		return nil
	}

	h.broadcaster.Broadcast(env)
	return nil
}
