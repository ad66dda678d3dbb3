// Package api hosts the JSON-RPC 2.0 control surface over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/foxhuntgame/foxhunt/internal/api/handlers"
	"github.com/foxhuntgame/foxhunt/internal/api/jsonrpcx"
	"github.com/foxhuntgame/foxhunt/internal/api/middleware"
	"github.com/foxhuntgame/foxhunt/internal/app/scheduler"
	"github.com/foxhuntgame/foxhunt/internal/app/verifier"
	"github.com/foxhuntgame/foxhunt/internal/domain/location"
	"github.com/foxhuntgame/foxhunt/internal/domain/points"
	"github.com/foxhuntgame/foxhunt/internal/domain/selection"
	"github.com/foxhuntgame/foxhunt/pkg/config"
	"github.com/foxhuntgame/foxhunt/pkg/logger"
	"github.com/foxhuntgame/foxhunt/pkg/redisx"
)

// Server represents the control HTTP server
type Server struct {
	httpServer      *http.Server
	logger          *logger.Logger
	redisClient     *redisx.Client
	mux             *http.ServeMux
	huntHandler     *handlers.HuntHandler
	locationHandler *handlers.LocationHandler
	scanHandler     *handlers.ScanHandler
	pointsHandler   *handlers.PointsHandler
}

// Deps collects the domain components the control surface exposes
type Deps struct {
	Hub       handlers.ConnectionCounter
	Locations *location.Store
	Holder    *selection.Holder
	Scheduler *scheduler.Scheduler
	Verifier  *verifier.Verifier
	Ledger    *points.Ledger
}

// NewServer creates the control HTTP server
func NewServer(cfg *config.Config, logger *logger.Logger, redisClient *redisx.Client, deps Deps) *Server {
	apiLogger := logger.WithComponent("api")

	server := &Server{
		httpServer: &http.Server{
			Addr:         cfg.Server.GetServerAddr(),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:      apiLogger,
		redisClient: redisClient,
		mux:         http.NewServeMux(),
		huntHandler: handlers.NewHuntHandler(logger, deps.Hub, deps.Locations, deps.Holder,
			deps.Scheduler, deps.Verifier, cfg.Hunt.ProximityThreshold),
		locationHandler: handlers.NewLocationHandler(logger, deps.Locations),
		scanHandler:     handlers.NewScanHandler(logger, deps.Verifier),
		pointsHandler:   handlers.NewPointsHandler(logger, deps.Ledger),
	}

	server.setupRoutes()
	server.setupMiddleware()

	return server
}

// setupRoutes configures the server routes
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/health", s.healthCheckHandler)

	s.mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	s.mux.HandleFunc("/api/v1/ping", s.handlePing)

	s.mux.HandleFunc("/api/v1/hunt.Status", s.huntHandler.HandleStatus)
	s.mux.HandleFunc("/api/v1/hunt.Reselect", s.huntHandler.HandleReselect)
	s.mux.HandleFunc("/api/v1/hunt.Target", s.huntHandler.HandleTarget)

	s.mux.HandleFunc("/api/v1/location.List", s.locationHandler.HandleList)

	s.mux.HandleFunc("/api/v1/proximity.Check", s.scanHandler.HandleProximityCheck)
	s.mux.HandleFunc("/api/v1/scan.Confirm", s.scanHandler.HandleConfirmScan)

	s.mux.HandleFunc("/api/v1/points.Get", s.pointsHandler.HandleGet)
	s.mux.HandleFunc("/api/v1/points.Leaderboard", s.pointsHandler.HandleLeaderboard)
}

// setupMiddleware applies middleware to all routes
func (s *Server) setupMiddleware() {
	middlewareChain := middleware.Chain(
		middleware.Recovery(s.logger),
		middleware.RateLimit(s.logger),
		middleware.CORS(),
		middleware.Logging(s.logger),
	)

	s.httpServer.Handler = middlewareChain(s.mux)
}

// Start starts the HTTP server and blocks until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("address", s.httpServer.Addr))

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	return s.Shutdown()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	s.logger.Info("Shutting down HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// GetAddr returns the server address
func (s *Server) GetAddr() string {
	return s.httpServer.Addr
}

// healthCheckHandler handles health check requests
func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.redisClient.HealthCheck(r.Context()); err != nil {
		s.logger.Error("Redis health check failed", zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unhealthy","checks":{"redis":{"status":"down"}}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy","checks":{"redis":{"status":"up"}}}`))
}

// handlePing handles ping requests
func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonrpcx.Fail(w, nil, jsonrpcx.MethodNotFound, "Method not allowed", nil)
		return
	}

	req, err := jsonrpcx.ParseRequest(r)
	if err != nil {
		jsonrpcx.Fail(w, nil, jsonrpcx.ParseError, "Invalid JSON-RPC request", nil)
		return
	}

	jsonrpcx.Success(w, req.ID, map[string]string{"message": "pong"})
}
