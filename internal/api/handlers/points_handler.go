package handlers

import (
	"net/http"

	"github.com/foxhuntgame/foxhunt/internal/api/jsonrpcx"
	"github.com/foxhuntgame/foxhunt/internal/domain/points"
	"github.com/foxhuntgame/foxhunt/internal/domain/shared"
	"github.com/foxhuntgame/foxhunt/pkg/logger"
)

// PointsHandler handles points ledger queries with JSON-RPC 2.0 format
type PointsHandler struct {
	logger *logger.Logger
	ledger *points.Ledger
}

// NewPointsHandler creates a new points handler
func NewPointsHandler(logger *logger.Logger, ledger *points.Ledger) *PointsHandler {
	return &PointsHandler{
		logger: logger.WithComponent("points-handler"),
		ledger: ledger,
	}
}

type GetPointsRequest struct {
	PlayerID string `json:"player_id"`
}

type GetPointsResponse = points.Record

type LeaderboardRequest struct {
	// No parameters
}

type LeaderboardResponse struct {
	Records []points.Record `json:"records"`
	Total   int             `json:"total"`
}

// HandleGet handles POST /api/v1/points.Get
// @Summary Get a player's points record
// @Description Current total and redeemed targets for one player; unknown players get a zero record
// @Tags points
// @Accept json
// @Produce json
// @Success 200 {object} jsonrpcx.Response "Points record"
// @Failure 400 {object} jsonrpcx.Response "Invalid request"
// @Router /api/v1/points.Get [post]
func (h *PointsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonrpcx.Fail(w, nil, jsonrpcx.MethodNotFound, "Method not allowed", nil)
		return
	}

	req, err := jsonrpcx.ParseRequest(r)
	if err != nil {
		jsonrpcx.Fail(w, nil, jsonrpcx.ParseError, "Invalid JSON-RPC request", nil)
		return
	}

	var params GetPointsRequest
	if err := jsonrpcx.DecodeParams(req, &params); err != nil {
		jsonrpcx.Fail(w, req.ID, jsonrpcx.InvalidParams, "Invalid params", nil)
		return
	}

	if params.PlayerID == "" {
		jsonrpcx.Fail(w, req.ID, jsonrpcx.InvalidParams, "player_id is required", nil)
		return
	}

	record, err := h.ledger.Lookup(r.Context(), shared.PlayerID(params.PlayerID))
	if err != nil {
		jsonrpcx.FailFromError(w, req.ID, err)
		return
	}

	jsonrpcx.Success(w, req.ID, record)
}

// HandleLeaderboard handles POST /api/v1/points.Leaderboard
// @Summary Get the points leaderboard
// @Description All points records ordered by total, highest first
// @Tags points
// @Accept json
// @Produce json
// @Success 200 {object} jsonrpcx.Response "Ordered records"
// @Failure 400 {object} jsonrpcx.Response "Invalid request"
// @Router /api/v1/points.Leaderboard [post]
func (h *PointsHandler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonrpcx.Fail(w, nil, jsonrpcx.MethodNotFound, "Method not allowed", nil)
		return
	}

	req, err := jsonrpcx.ParseRequest(r)
	if err != nil {
		jsonrpcx.Fail(w, nil, jsonrpcx.ParseError, "Invalid JSON-RPC request", nil)
		return
	}

	records, err := h.ledger.Leaderboard(r.Context())
	if err != nil {
		jsonrpcx.FailFromError(w, req.ID, err)
		return
	}

	jsonrpcx.Success(w, req.ID, LeaderboardResponse{
		Records: records,
		Total:   len(records),
	})
}
