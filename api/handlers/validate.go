package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/interfaces"
	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/models"
	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/validation"
	pkgerrors "github.com/DragonBallZLeague/SparkingZero-sub001/pkg/errors"
)

// ValidateHandler runs the submission validator without touching GitHub.
// The front end calls it as a pre-check, with a looser file-count ceiling
// than the publish endpoint enforces.
type ValidateHandler struct {
	maxFiles int
	logger   interfaces.Logger
	metrics  interfaces.MetricsCollector
}

type validateRequest struct {
	Files []models.SubmissionFile `json:"files"`
}

// NewValidateHandler creates a new validate handler
func NewValidateHandler(maxFiles int, logger interfaces.Logger, metrics interfaces.MetricsCollector) *ValidateHandler {
	return &ValidateHandler{
		maxFiles: maxFiles,
		logger:   logger,
		metrics:  metrics,
	}
}

// Handle processes POST /validate
func (h *ValidateHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize)).Decode(&req); err != nil {
		h.logger.Error("Failed to decode validate request", err)
		writeError(w, h.logger, pkgerrors.NewValidationError("invalid request body"))
		return
	}

	result := validation.Validate(req.Files, h.maxFiles)

	writeJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"valid":    result.Valid(),
		"errors":   result.Errors,
		"warnings": result.Warnings,
	})
}
