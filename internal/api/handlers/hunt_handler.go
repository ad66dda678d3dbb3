package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/foxhuntgame/foxhunt/internal/api/jsonrpcx"
	"github.com/foxhuntgame/foxhunt/internal/app/scheduler"
	"github.com/foxhuntgame/foxhunt/internal/app/verifier"
	"github.com/foxhuntgame/foxhunt/internal/domain/location"
	"github.com/foxhuntgame/foxhunt/internal/domain/selection"
	"github.com/foxhuntgame/foxhunt/internal/domain/shared"
	"github.com/foxhuntgame/foxhunt/pkg/logger"
)

// ConnectionCounter reports how many stream channels are currently attached
type ConnectionCounter interface {
	Count() int
}

// HuntHandler handles hunt lifecycle requests with JSON-RPC 2.0 format
type HuntHandler struct {
	logger    *logger.Logger
	hub       ConnectionCounter
	locations *location.Store
	holder    *selection.Holder
	scheduler *scheduler.Scheduler
	verifier  *verifier.Verifier
	threshold float64
	startedAt time.Time
}

// NewHuntHandler creates a new hunt handler
func NewHuntHandler(logger *logger.Logger, hub ConnectionCounter, locations *location.Store, holder *selection.Holder, sched *scheduler.Scheduler, v *verifier.Verifier, threshold float64) *HuntHandler {
	return &HuntHandler{
		logger:    logger.WithComponent("hunt-handler"),
		hub:       hub,
		locations: locations,
		holder:    holder,
		scheduler: sched,
		verifier:  v,
		threshold: threshold,
		startedAt: time.Now(),
	}
}

type StatusRequest struct {
	// No parameters
}

type StatusResponse struct {
	Connections      int                 `json:"connections"`
	TrackedLocations int                 `json:"tracked_locations"`
	Selection        selection.Selection `json:"selection"`
	Threshold        float64             `json:"threshold"`
	UptimeSeconds    int64               `json:"uptime_seconds"`
}

type ReselectRequest struct {
	// No parameters
}

type ReselectResponse struct {
	Selection selection.Selection `json:"selection"`
}

type TargetRequest struct {
	PlayerID string `json:"player_id"`
}

type TargetResponse = verifier.TargetInfo

// HandleStatus handles POST /api/v1/hunt.Status
// @Summary Get hunt status
// @Description Current connection count, tracked locations, and the active target selection
// @Tags hunt
// @Accept json
// @Produce json
// @Success 200 {object} jsonrpcx.Response "Hunt status"
// @Failure 400 {object} jsonrpcx.Response "Invalid request"
// @Router /api/v1/hunt.Status [post]
func (h *HuntHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonrpcx.Fail(w, nil, jsonrpcx.MethodNotFound, "Method not allowed", nil)
		return
	}

	req, err := jsonrpcx.ParseRequest(r)
	if err != nil {
		jsonrpcx.Fail(w, nil, jsonrpcx.ParseError, "Invalid JSON-RPC request", nil)
		return
	}

	result := StatusResponse{
		Connections:      h.hub.Count(),
		TrackedLocations: h.locations.Count(),
		Selection:        h.holder.Current(),
		Threshold:        h.threshold,
		UptimeSeconds:    int64(time.Since(h.startedAt).Seconds()),
	}

	jsonrpcx.Success(w, req.ID, result)
}

// HandleReselect handles POST /api/v1/hunt.Reselect
// @Summary Force a new target selection
// @Description Run a selection cycle immediately instead of waiting for the timer
// @Tags hunt
// @Accept json
// @Produce json
// @Success 200 {object} jsonrpcx.Response "New selection"
// @Failure 400 {object} jsonrpcx.Response "Invalid request"
// @Router /api/v1/hunt.Reselect [post]
func (h *HuntHandler) HandleReselect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonrpcx.Fail(w, nil, jsonrpcx.MethodNotFound, "Method not allowed", nil)
		return
	}

	req, err := jsonrpcx.ParseRequest(r)
	if err != nil {
		jsonrpcx.Fail(w, nil, jsonrpcx.ParseError, "Invalid JSON-RPC request", nil)
		return
	}

	sel, err := h.scheduler.Trigger(r.Context())
	if err != nil {
		h.logger.Warn("Forced reselection failed", zap.Error(err))
		jsonrpcx.FailFromError(w, req.ID, err)
		return
	}

	h.logger.Info("Forced reselection completed")

	jsonrpcx.Success(w, req.ID, ReselectResponse{Selection: sel})
}

// HandleTarget handles POST /api/v1/hunt.Target
// @Summary Resolve a player's current target
// @Description Look up the target assigned to the given player's category and its last known position
// @Tags hunt
// @Accept json
// @Produce json
// @Success 200 {object} jsonrpcx.Response "Target assignment"
// @Failure 400 {object} jsonrpcx.Response "Invalid request"
// @Router /api/v1/hunt.Target [post]
func (h *HuntHandler) HandleTarget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonrpcx.Fail(w, nil, jsonrpcx.MethodNotFound, "Method not allowed", nil)
		return
	}

	req, err := jsonrpcx.ParseRequest(r)
	if err != nil {
		jsonrpcx.Fail(w, nil, jsonrpcx.ParseError, "Invalid JSON-RPC request", nil)
		return
	}

	var params TargetRequest
	if err := jsonrpcx.DecodeParams(req, &params); err != nil {
		jsonrpcx.Fail(w, req.ID, jsonrpcx.InvalidParams, "Invalid params", nil)
		return
	}

	if params.PlayerID == "" {
		jsonrpcx.Fail(w, req.ID, jsonrpcx.InvalidParams, "player_id is required", nil)
		return
	}

	info, err := h.verifier.TargetLookup(r.Context(), shared.PlayerID(params.PlayerID))
	if err != nil {
		jsonrpcx.FailFromError(w, req.ID, err)
		return
	}

	jsonrpcx.Success(w, req.ID, info)
}
