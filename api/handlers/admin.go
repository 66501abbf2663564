package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/DragonBallZLeague/SparkingZero-sub001/api/middleware"
	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/config"
	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/interfaces"
	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/services"
	iogithub "github.com/DragonBallZLeague/SparkingZero-sub001/io/github"
	pkgerrors "github.com/DragonBallZLeague/SparkingZero-sub001/pkg/errors"
)

// GitHubClientFactory builds a GitHub client bound to the caller's token.
type GitHubClientFactory func(token string) interfaces.GitHubClient

// AdminHandler serves the maintainer panel: listing open submissions and
// marking draft PRs ready for review. Clients are constructed per request
// from the caller's bearer token; GitHub decides what that token may do.
type AdminHandler struct {
	githubCfg     config.GitHubConfig
	submissionCfg config.SubmissionConfig
	logger        interfaces.Logger
	metrics       interfaces.MetricsCollector
	validator     *validator.Validate //nolint
	newClient     GitHubClientFactory
}

type markReadyRequest struct {
	PRNumber int `json:"prNumber" validate:"required,gt=0"`
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(githubCfg config.GitHubConfig, submissionCfg config.SubmissionConfig, logger interfaces.Logger, metrics interfaces.MetricsCollector) *AdminHandler {
	h := &AdminHandler{
		githubCfg:     githubCfg,
		submissionCfg: submissionCfg,
		logger:        logger,
		metrics:       metrics,
		validator:     validator.New(), //nolint
	}
	h.newClient = func(token string) interfaces.GitHubClient {
		return iogithub.NewClient(githubCfg, token, logger, metrics)
	}
	return h
}

// HandleListSubmissions processes GET /admin/submissions
func (h *AdminHandler) HandleListSubmissions(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerTokenFromContext(r.Context())
	if token == "" {
		writeError(w, h.logger, pkgerrors.NewUnauthorizedError("authorization token required"))
		return
	}

	registry := services.NewRegistryService(h.newClient(token), h.githubCfg, h.submissionCfg, h.logger, h.metrics)
	submissions, err := registry.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list submissions", err)
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"submissions": submissions,
	})
}

// HandleMarkReady processes POST /admin/mark-ready
func (h *AdminHandler) HandleMarkReady(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerTokenFromContext(r.Context())
	if token == "" {
		writeError(w, h.logger, pkgerrors.NewUnauthorizedError("authorization token required"))
		return
	}

	var req markReadyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize)).Decode(&req); err != nil {
		writeError(w, h.logger, pkgerrors.NewValidationError("invalid request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, h.logger, pkgerrors.NewValidationError("validation failed: "+err.Error()))
		return
	}

	converter := services.NewReadinessService(h.newClient(token), h.logger, h.metrics)
	result, err := converter.MarkReady(r.Context(), req.PRNumber)
	if err != nil {
		// A pending outcome maps to 202 via its AppError status; the caller
		// re-checks instead of re-issuing the mutation.
		h.logger.Error("Failed to mark submission ready", err, "pr_number", req.PRNumber)
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, result)
}
