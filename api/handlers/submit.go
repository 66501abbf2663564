package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/interfaces"
	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/models"
	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/validation"
	pkgerrors "github.com/DragonBallZLeague/SparkingZero-sub001/pkg/errors"
)

// maxEncodedFileChars bounds the base64 length of a single uploaded file at
// the HTTP boundary, before any decoding happens.
const maxEncodedFileChars = 8_000_000

type SubmitHandler struct {
	publisher interfaces.SubmissionPublisher
	maxFiles  int
	logger    interfaces.Logger
	metrics   interfaces.MetricsCollector
	validator *validator.Validate //nolint
}

// NewSubmitHandler creates a new submit handler. maxFiles is the hard
// publish-time ceiling, tighter than the pre-check one.
func NewSubmitHandler(publisher interfaces.SubmissionPublisher, maxFiles int, logger interfaces.Logger, metrics interfaces.MetricsCollector) *SubmitHandler {
	return &SubmitHandler{
		publisher: publisher,
		maxFiles:  maxFiles,
		logger:    logger,
		metrics:   metrics,
		validator: validator.New(), //nolint
	}
}

// Handle processes POST /submit: validate the batch locally, then publish.
func (h *SubmitHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var submission models.Submission
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize)).Decode(&submission); err != nil {
		h.logger.Error("Failed to decode submit request", err)
		writeError(w, h.logger, pkgerrors.NewValidationError("invalid request body"))
		return
	}

	if err := h.validator.Struct(submission); err != nil {
		writeError(w, h.logger, pkgerrors.NewValidationError("validation failed: "+err.Error()))
		return
	}

	for _, file := range submission.Files {
		if len(file.Content) > maxEncodedFileChars {
			writeError(w, h.logger, pkgerrors.NewValidationError(
				fmt.Sprintf("%s: File is too large to submit", file.Name)))
			return
		}
	}

	result := validation.Validate(submission.Files, h.maxFiles)
	if !result.Valid() {
		h.logger.Warn("Submission rejected by validation",
			"submitter", submission.Name,
			"errors", len(result.Errors),
		)
		writeJSON(w, h.logger, http.StatusBadRequest, map[string]interface{}{
			"error":    "submission failed validation",
			"errors":   result.Errors,
			"warnings": result.Warnings,
		})
		return
	}

	published, err := h.publisher.Publish(r.Context(), submission)
	if err != nil {
		h.logger.Error("Failed to publish submission", err, "submitter", submission.Name)
		writeError(w, h.logger, err)
		return
	}

	response := map[string]interface{}{
		"id":    published.ID,
		"prUrl": published.PRURL,
	}
	if len(result.Warnings) > 0 {
		response["warnings"] = result.Warnings
	}
	writeJSON(w, h.logger, http.StatusOK, response)
}
