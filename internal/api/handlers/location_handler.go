package handlers

import (
	"net/http"

	"github.com/foxhuntgame/foxhunt/internal/api/jsonrpcx"
	"github.com/foxhuntgame/foxhunt/internal/domain/location"
	"github.com/foxhuntgame/foxhunt/pkg/logger"
)

// LocationHandler handles location query requests with JSON-RPC 2.0 format
type LocationHandler struct {
	logger    *logger.Logger
	locations *location.Store
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(logger *logger.Logger, locations *location.Store) *LocationHandler {
	return &LocationHandler{
		logger:    logger.WithComponent("location-handler"),
		locations: locations,
	}
}

type ListLocationsRequest struct {
	// No parameters
}

type ListLocationsResponse struct {
	Locations []location.Entry `json:"locations"`
	Total     int              `json:"total"`
}

// HandleList handles POST /api/v1/location.List
// @Summary List last known locations
// @Description Snapshot of the latest fix for every tracked player
// @Tags location
// @Accept json
// @Produce json
// @Success 200 {object} jsonrpcx.Response "Location snapshot"
// @Failure 400 {object} jsonrpcx.Response "Invalid request"
// @Router /api/v1/location.List [post]
func (h *LocationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonrpcx.Fail(w, nil, jsonrpcx.MethodNotFound, "Method not allowed", nil)
		return
	}

	req, err := jsonrpcx.ParseRequest(r)
	if err != nil {
		jsonrpcx.Fail(w, nil, jsonrpcx.ParseError, "Invalid JSON-RPC request", nil)
		return
	}

	entries := h.locations.Snapshot()

	jsonrpcx.Success(w, req.ID, ListLocationsResponse{
		Locations: entries,
		Total:     len(entries),
	})
}
