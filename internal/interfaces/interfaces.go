package interfaces

import (
	"context"

	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/models"
)

// GitHubClient defines the typed operations issued against the GitHub API.
// It carries no business logic; every method is a single remote call.
type GitHubClient interface {
	GetBranchHead(ctx context.Context, branch string) (string, error)
	CreateBranch(ctx context.Context, branch, sha string) error
	CreateFile(ctx context.Context, branch, path, message string, content []byte) error
	CreateDraftPR(ctx context.Context, head, base, title, body string) (*models.PullRequestInfo, error)
	AddLabels(ctx context.Context, prNumber int, labels []string) error
	ListOpenPRs(ctx context.Context, base string) ([]models.PullRequestInfo, error)
	GetPR(ctx context.Context, prNumber int) (*models.PullRequestInfo, error)
	ListPRFiles(ctx context.Context, prNumber, limit int) ([]string, error)
	GetFileContent(ctx context.Context, path, ref string) ([]byte, error)
	PathExists(ctx context.Context, path, ref string) (bool, error)
	AuthenticatedLogin(ctx context.Context) (string, error)
	PermissionLevel(ctx context.Context, login string) (string, error)
	MarkReadyForReview(ctx context.Context, nodeID string) error
}

// DeviceAuthClient defines the two OAuth Device Flow provider endpoints.
type DeviceAuthClient interface {
	RequestDeviceCode(ctx context.Context, clientID, scope string) (*models.DeviceStartResponse, error)
	RequestToken(ctx context.Context, clientID, deviceCode string) (*models.DeviceTokenResponse, error)
}

// DeviceFlow defines the device-flow operations the HTTP endpoints use.
type DeviceFlow interface {
	Start(ctx context.Context, clientID, scope string) (*models.DeviceStartResponse, error)
	Poll(ctx context.Context, clientID, deviceCode string) (*models.DeviceTokenResponse, error)
}

// SubmissionPublisher defines the publish orchestration: branch, commits, draft PR.
type SubmissionPublisher interface {
	Publish(ctx context.Context, submission models.Submission) (*models.PublishResult, error)
}

// SubmissionRegistry defines the read path over published submissions.
type SubmissionRegistry interface {
	List(ctx context.Context) ([]models.SubmissionPR, error)
}

// DraftReadinessConverter transitions a submission PR out of draft state.
type DraftReadinessConverter interface {
	MarkReady(ctx context.Context, prNumber int) (*models.MarkReadyResult, error)
}

// Logger defines the logging interface
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Fatal(msg string, err error, fields ...interface{})
}

// MetricsCollector defines the interface for collecting metrics
type MetricsCollector interface {
	IncrementCounter(name string, labels map[string]string)
	RecordDuration(name string, duration float64, labels map[string]string)
	SetGauge(name string, value float64, labels map[string]string)
}

// CircuitBreaker defines the interface for circuit breaker pattern
type CircuitBreaker interface {
	Execute(req func() (interface{}, error)) (interface{}, error)
	Name() string
	State() string
}
