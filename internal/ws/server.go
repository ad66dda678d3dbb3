package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/foxhuntgame/foxhunt/internal/domain/location"
	"github.com/foxhuntgame/foxhunt/internal/domain/selection"
	"github.com/foxhuntgame/foxhunt/internal/domain/shared"
	"github.com/foxhuntgame/foxhunt/internal/events"
	"github.com/foxhuntgame/foxhunt/pkg/config"
	"github.com/foxhuntgame/foxhunt/pkg/logger"
)

// EventPublisher publishes domain events from inbound messages
type EventPublisher interface {
	Publish(ctx context.Context, event interface{}) error
}

// Server is the persistent player channel listener, addressed independently
// from the control API.
type Server struct {
	httpServer *http.Server
	hub        *Hub
	locations  *location.Store
	holder     *selection.Holder
	publisher  EventPublisher
	upgrader   websocket.Upgrader
	logger     *logger.Logger
	cfg        config.StreamConfig
}

// NewServer creates the stream listener
func NewServer(cfg config.StreamConfig, hub *Hub, locations *location.Store, holder *selection.Holder, publisher EventPublisher, log *logger.Logger) *Server {
	mux := http.NewServeMux()

	server := &Server{
		httpServer: &http.Server{
			Addr:    cfg.GetStreamAddr(),
			Handler: mux,
		},
		hub:       hub,
		locations: locations,
		holder:    holder,
		publisher: publisher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferBytes,
			WriteBufferSize: cfg.WriteBufferBytes,
			// Participants connect from arbitrary origins; auth is out of scope
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: log.WithComponent("ws-server"),
		cfg:    cfg,
	}

	mux.HandleFunc("/stream", server.handleStream)

	return server
}

// Start runs the listener and the hub liveness sweep until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting stream listener", zap.String("address", s.httpServer.Addr))

	go s.hub.Run(ctx)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Stream listener error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	return s.Shutdown()
}

// Shutdown stops accepting connections and closes the listener
func (s *Server) Shutdown() error {
	s.logger.Info("Shutting down stream listener")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// handleStream upgrades the HTTP request and runs the connection's read loop
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err))
		return
	}

	session := newWSSession(conn, s.cfg.SendBufferSize, s.cfg.WriteTimeout)
	id := s.hub.Register(session)

	go session.writePump()

	s.readLoop(id, session, conn)

	// Closing the connection stops inbound processing and removes it from
	// the registry immediately
	s.hub.Unregister(id)
}

// readLoop processes inbound envelopes until the connection dies. Parse
// failures are logged and swallowed; they never close the connection or
// reach other connections.
func (s *Server) readLoop(id string, session Session, conn *websocket.Conn) {
	conn.SetReadLimit(s.cfg.MaxMessageBytes)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.logger.Debug("Connection read ended",
				zap.String("connectionId", id),
				zap.Error(err))
			return
		}

		s.hub.MarkActivity(id)

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.logger.Warn("Ignoring malformed envelope",
				zap.String("connectionId", id),
				zap.Error(err))
			continue
		}

		s.route(id, session, env)
	}
}

// route dispatches one inbound envelope
func (s *Server) route(id string, session Session, env Envelope) {
	switch env.Type {
	case TypeLocationUpdate:
		s.handleLocationUpdate(id, env)
	case TypeSelectionRequest:
		s.handleSelectionRequest(id, session)
	case TypeLivenessPong:
		// Activity already marked in the read loop
	case TypeLivenessPing:
		if pong, err := NewEnvelope(TypeLivenessPong, "", map[string]int64{"timestamp": time.Now().UnixMilli()}); err == nil {
			_ = session.Send(pong)
		}
	default:
		s.logger.Warn("Ignoring unrecognized message type",
			zap.String("connectionId", id),
			zap.String("type", string(env.Type)))
	}
}

// handleLocationUpdate validates and stores an inbound fix, then publishes
// it for fan-out
func (s *Server) handleLocationUpdate(id string, env Envelope) {
	if env.ParticipantID == "" {
		s.logger.Warn("Ignoring location update without participant id",
			zap.String("connectionId", id))
		return
	}

	var fix location.Fix
	if err := json.Unmarshal(env.Data, &fix); err != nil {
		s.logger.Warn("Ignoring malformed location update",
			zap.String("connectionId", id),
			zap.Error(err))
		return
	}

	if err := fix.Validate(); err != nil {
		s.logger.Warn("Ignoring out-of-range location update",
			zap.String("connectionId", id),
			zap.String("participantId", env.ParticipantID),
			zap.Error(err))
		return
	}

	s.locations.Update(shared.PlayerID(env.ParticipantID), fix)

	event := events.LocationUpdatedEvent{
		PlayerID:  env.ParticipantID,
		Fix:       fix,
		Timestamp: time.Now(),
	}
	if err := s.publisher.Publish(context.Background(), event); err != nil {
		s.logger.Error("Failed to publish location update", zap.Error(err))
	}
}

// handleSelectionRequest replies with the active selection on this session only
func (s *Server) handleSelectionRequest(id string, session Session) {
	env, err := NewEnvelope(TypeSelectionBroadcast, "", selectionPayload{Selection: s.holder.Current()})
	if err != nil {
		return
	}
	if err := session.Send(env); err != nil {
		s.logger.Warn("Failed to answer selection request",
			zap.String("connectionId", id),
			zap.Error(err))
		s.hub.Unregister(id)
	}
}
