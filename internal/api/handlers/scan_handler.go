package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/foxhuntgame/foxhunt/internal/api/jsonrpcx"
	"github.com/foxhuntgame/foxhunt/internal/app/verifier"
	"github.com/foxhuntgame/foxhunt/internal/domain/shared"
	"github.com/foxhuntgame/foxhunt/pkg/logger"
)

// ScanHandler handles proximity checks and badge scan confirmation with
// JSON-RPC 2.0 format
type ScanHandler struct {
	logger   *logger.Logger
	verifier *verifier.Verifier
}

// NewScanHandler creates a new scan handler
func NewScanHandler(logger *logger.Logger, v *verifier.Verifier) *ScanHandler {
	return &ScanHandler{
		logger:   logger.WithComponent("scan-handler"),
		verifier: v,
	}
}

type ProximityCheckRequest struct {
	PlayerA string `json:"player_a"`
	PlayerB string `json:"player_b"`
}

type ProximityCheckResponse = verifier.ProximityResult

type ConfirmScanRequest struct {
	ScannerID string `json:"scanner_id"`
	Token     string `json:"token"`
}

type ConfirmScanResponse = verifier.ScanResult

// HandleProximityCheck handles POST /api/v1/proximity.Check
// @Summary Check proximity between two players
// @Description Compare the distance between two players' last fixes against the hunt threshold
// @Tags proximity
// @Accept json
// @Produce json
// @Success 200 {object} jsonrpcx.Response "Proximity verdict"
// @Failure 400 {object} jsonrpcx.Response "Invalid request"
// @Router /api/v1/proximity.Check [post]
func (h *ScanHandler) HandleProximityCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonrpcx.Fail(w, nil, jsonrpcx.MethodNotFound, "Method not allowed", nil)
		return
	}

	req, err := jsonrpcx.ParseRequest(r)
	if err != nil {
		jsonrpcx.Fail(w, nil, jsonrpcx.ParseError, "Invalid JSON-RPC request", nil)
		return
	}

	var params ProximityCheckRequest
	if err := jsonrpcx.DecodeParams(req, &params); err != nil {
		jsonrpcx.Fail(w, req.ID, jsonrpcx.InvalidParams, "Invalid params", nil)
		return
	}

	if params.PlayerA == "" || params.PlayerB == "" {
		jsonrpcx.Fail(w, req.ID, jsonrpcx.InvalidParams, "player_a and player_b are required", nil)
		return
	}

	result, err := h.verifier.VerifyProximity(r.Context(), shared.PlayerID(params.PlayerA), shared.PlayerID(params.PlayerB))
	if err != nil {
		jsonrpcx.FailFromError(w, req.ID, err)
		return
	}

	jsonrpcx.Success(w, req.ID, result)
}

// HandleConfirmScan handles POST /api/v1/scan.Confirm
// @Summary Confirm a badge scan
// @Description Resolve the scanned badge, verify it is the scanner's current target, and grant a point
// @Tags scan
// @Accept json
// @Produce json
// @Success 200 {object} jsonrpcx.Response "Scan outcome"
// @Failure 400 {object} jsonrpcx.Response "Invalid request"
// @Router /api/v1/scan.Confirm [post]
func (h *ScanHandler) HandleConfirmScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonrpcx.Fail(w, nil, jsonrpcx.MethodNotFound, "Method not allowed", nil)
		return
	}

	req, err := jsonrpcx.ParseRequest(r)
	if err != nil {
		jsonrpcx.Fail(w, nil, jsonrpcx.ParseError, "Invalid JSON-RPC request", nil)
		return
	}

	var params ConfirmScanRequest
	if err := jsonrpcx.DecodeParams(req, &params); err != nil {
		jsonrpcx.Fail(w, req.ID, jsonrpcx.InvalidParams, "Invalid params", nil)
		return
	}

	if params.ScannerID == "" || params.Token == "" {
		jsonrpcx.Fail(w, req.ID, jsonrpcx.InvalidParams, "scanner_id and token are required", nil)
		return
	}

	result, err := h.verifier.ConfirmScan(r.Context(), shared.PlayerID(params.ScannerID), params.Token)
	if err != nil {
		jsonrpcx.FailFromError(w, req.ID, err)
		return
	}

	if result.Granted {
		h.logger.Info("Scan granted",
			zap.String("scannerId", params.ScannerID),
			zap.String("targetId", string(result.TargetID)),
			zap.Int("total", result.Total))
	} else {
		h.logger.Info("Scan rejected",
			zap.String("scannerId", params.ScannerID),
			zap.String("rejection", result.Rejection))
	}

	jsonrpcx.Success(w, req.ID, result)
}
