package services

import (
	"context"
	"time"

	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/interfaces"
	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/models"
	pkgerrors "github.com/DragonBallZLeague/SparkingZero-sub001/pkg/errors"
)

const (
	readinessPollInterval = 1 * time.Second
	readinessPollAttempts = 10
)

// permission levels allowed to convert a draft. GitHub reports "maintain"
// and "push" collapsed into "write" on the permission-level endpoint, but
// accept all spellings.
var readinessPermissions = map[string]bool{
	"admin":    true,
	"maintain": true,
	"write":    true,
	"push":     true,
}

// ReadinessService converts a draft submission PR to ready-for-review. The
// mutation is applied asynchronously on the remote side, so a successful
// response is verified with a bounded read poll before success is claimed.
type ReadinessService struct {
	github  interfaces.GitHubClient
	logger  interfaces.Logger
	metrics interfaces.MetricsCollector

	pollInterval time.Duration
	pollAttempts int
	sleep        func(ctx context.Context, d time.Duration) error
}

// NewReadinessService creates a new readiness service
func NewReadinessService(github interfaces.GitHubClient, logger interfaces.Logger, metrics interfaces.MetricsCollector) *ReadinessService {
	return &ReadinessService{
		github:       github,
		logger:       logger,
		metrics:      metrics,
		pollInterval: readinessPollInterval,
		pollAttempts: readinessPollAttempts,
		sleep:        sleepContext,
	}
}

// MarkReady transitions the PR out of draft state. Calling it on a PR that
// is already ready is a no-op reported as such; no mutation is issued.
func (s *ReadinessService) MarkReady(ctx context.Context, prNumber int) (*models.MarkReadyResult, error) {
	login, err := s.github.AuthenticatedLogin(ctx)
	if err != nil {
		return nil, err
	}

	permission, err := s.github.PermissionLevel(ctx, login)
	if err != nil {
		return nil, err
	}
	if !readinessPermissions[permission] {
		s.recordMarkReady("forbidden")
		return nil, pkgerrors.NewForbiddenError("insufficient repository permission to mark submissions ready").
			WithContext("login", login).
			WithContext("permission", permission)
	}

	pr, err := s.github.GetPR(ctx, prNumber)
	if err != nil {
		return nil, err
	}
	if !pr.Draft {
		s.recordMarkReady("already_ready")
		s.logger.Info("Pull request already ready for review", "pr_number", prNumber)
		return &models.MarkReadyResult{
			Success:      true,
			Message:      "Pull request is already ready for review",
			AlreadyReady: true,
		}, nil
	}

	if err := s.github.MarkReadyForReview(ctx, pr.NodeID); err != nil {
		s.recordMarkReady("error")
		s.logger.Error("Ready-for-review mutation failed", err, "pr_number", prNumber)
		return nil, err
	}

	// The mutation response does not guarantee an immediately consistent
	// read; verify the flag actually cleared.
	for attempt := 1; attempt <= s.pollAttempts; attempt++ {
		if err := s.sleep(ctx, s.pollInterval); err != nil {
			return nil, err
		}

		current, err := s.github.GetPR(ctx, prNumber)
		if err != nil {
			s.logger.Warn("Verification read failed, continuing",
				"pr_number", prNumber,
				"attempt", attempt,
				"reason", err.Error(),
			)
			continue
		}
		if !current.Draft {
			s.recordMarkReady("success")
			s.logger.Info("Pull request marked ready for review",
				"pr_number", prNumber,
				"attempts", attempt,
			)
			return &models.MarkReadyResult{
				Success: true,
				Message: "Pull request marked ready for review",
			}, nil
		}
	}

	// The mutation was accepted but the flag never cleared within the
	// verification window. Distinct from failure: re-check, do not re-mutate.
	s.recordMarkReady("pending")
	return nil, pkgerrors.NewPendingError("conversion may still be in progress; re-check the pull request shortly").
		WithContext("pr_number", prNumber)
}

func (s *ReadinessService) recordMarkReady(status string) {
	s.metrics.IncrementCounter("mark_ready_total", map[string]string{"status": status})
}
