package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/interfaces"
	pkgerrors "github.com/DragonBallZLeague/SparkingZero-sub001/pkg/errors"
)

// DeviceAuthHandler fronts GitHub's OAuth Device Flow for the admin panel.
// Both endpoints pass the provider's payload through verbatim; pending and
// slow-down signals are data for the browser, not errors.
type DeviceAuthHandler struct {
	flow      interfaces.DeviceFlow
	logger    interfaces.Logger
	metrics   interfaces.MetricsCollector
	validator *validator.Validate //nolint
}

type deviceStartRequest struct {
	ClientID string `json:"client_id" validate:"required"`
	Scope    string `json:"scope"`
}

type deviceTokenRequest struct {
	ClientID   string `json:"client_id" validate:"required"`
	DeviceCode string `json:"device_code" validate:"required"`
}

// NewDeviceAuthHandler creates a new device auth handler
func NewDeviceAuthHandler(flow interfaces.DeviceFlow, logger interfaces.Logger, metrics interfaces.MetricsCollector) *DeviceAuthHandler {
	return &DeviceAuthHandler{
		flow:      flow,
		logger:    logger,
		metrics:   metrics,
		validator: validator.New(), //nolint
	}
}

// HandleStart processes POST /github-device-start
func (h *DeviceAuthHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	var req deviceStartRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize)).Decode(&req); err != nil {
		writeError(w, h.logger, pkgerrors.NewValidationError("invalid request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, h.logger, pkgerrors.NewValidationError("validation failed: "+err.Error()))
		return
	}

	resp, err := h.flow.Start(r.Context(), req.ClientID, req.Scope)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, resp)
}

// HandleToken processes POST /github-device-token
func (h *DeviceAuthHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	var req deviceTokenRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize)).Decode(&req); err != nil {
		writeError(w, h.logger, pkgerrors.NewValidationError("invalid request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, h.logger, pkgerrors.NewValidationError("validation failed: "+err.Error()))
		return
	}

	resp, err := h.flow.Poll(r.Context(), req.ClientID, req.DeviceCode)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, resp)
}
