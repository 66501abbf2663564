// Package deviceauth talks to GitHub's OAuth Device Authorization Grant
// endpoints. Provider-level error signals ("authorization_pending",
// "slow_down", ...) arrive as 200 responses with an error field and are
// returned as data, not Go errors; interpreting them is the flow service's
// job.
package deviceauth

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/config"
	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/interfaces"
	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/models"
	pkgerrors "github.com/DragonBallZLeague/SparkingZero-sub001/pkg/errors"
)

const deviceGrantType = "urn:ietf:params:oauth:grant-type:device_code"

type Client struct {
	httpClient     *resty.Client
	config         config.DeviceAuthConfig
	logger         interfaces.Logger
	circuitBreaker interfaces.CircuitBreaker
	metrics        interfaces.MetricsCollector
}

// NewClient creates a device-flow provider client with circuit breaker and metrics.
func NewClient(cfg config.DeviceAuthConfig, logger interfaces.Logger, metrics interfaces.MetricsCollector) *Client {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetBaseURL(cfg.BaseURL)

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "device-auth",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Device auth circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.SetGauge("circuit_breaker_state", breakerStateValue(to), map[string]string{
				"service": "device-auth",
				"name":    name,
			})
		},
	})

	return &Client{
		httpClient:     client,
		config:         cfg,
		logger:         logger,
		circuitBreaker: &circuitBreakerWrapper{cb: cb},
		metrics:        metrics,
	}
}

// breakerStateValue maps breaker states to the gauge encoding
// (0=closed, 1=open, 2=half-open).
func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}

// circuitBreakerWrapper implements interfaces.CircuitBreaker
type circuitBreakerWrapper struct {
	cb *gobreaker.CircuitBreaker
}

func (w *circuitBreakerWrapper) Execute(req func() (interface{}, error)) (interface{}, error) {
	return w.cb.Execute(req)
}

func (w *circuitBreakerWrapper) Name() string {
	return w.cb.Name()
}

func (w *circuitBreakerWrapper) State() string {
	return w.cb.State().String()
}

// RequestDeviceCode starts a device flow: one request, no retry on failure.
func (c *Client) RequestDeviceCode(ctx context.Context, clientID, scope string) (*models.DeviceStartResponse, error) {
	start := time.Now()

	result, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		body := deviceCodeRequest{ClientID: clientID, Scope: scope}

		var startResp models.DeviceStartResponse
		resp, err := c.httpClient.R().
			SetContext(ctx).
			SetBody(body).
			SetResult(&startResp).
			Post("/login/device/code")
		if err != nil {
			return nil, pkgerrors.NewExternalError("device-auth", err.Error()).WithCause(err)
		}
		if resp.IsError() {
			return nil, pkgerrors.NewUpstreamError("device-auth", resp.StatusCode(), string(resp.Body()))
		}
		return &startResp, nil
	})

	c.recordCall("request_device_code", start, err)
	if err != nil {
		if c.circuitBreaker.State() == gobreaker.StateOpen.String() {
			return nil, pkgerrors.NewUnavailableError("device-auth").WithCause(err)
		}
		return nil, err
	}

	return result.(*models.DeviceStartResponse), nil
}

// RequestToken performs a single token poll for the given device code.
func (c *Client) RequestToken(ctx context.Context, clientID, deviceCode string) (*models.DeviceTokenResponse, error) {
	start := time.Now()

	result, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		body := tokenRequest{
			ClientID:   clientID,
			DeviceCode: deviceCode,
			GrantType:  deviceGrantType,
		}

		var tokenResp models.DeviceTokenResponse
		resp, err := c.httpClient.R().
			SetContext(ctx).
			SetBody(body).
			SetResult(&tokenResp).
			Post("/login/oauth/access_token")
		if err != nil {
			return nil, pkgerrors.NewExternalError("device-auth", err.Error()).WithCause(err)
		}
		if resp.IsError() {
			return nil, pkgerrors.NewUpstreamError("device-auth", resp.StatusCode(), string(resp.Body()))
		}
		return &tokenResp, nil
	})

	c.recordCall("request_token", start, err)
	if err != nil {
		if c.circuitBreaker.State() == gobreaker.StateOpen.String() {
			return nil, pkgerrors.NewUnavailableError("device-auth").WithCause(err)
		}
		return nil, err
	}

	return result.(*models.DeviceTokenResponse), nil
}

func (c *Client) recordCall(operation string, start time.Time, err error) {
	labels := map[string]string{
		"service":   "device-auth",
		"operation": operation,
	}
	c.metrics.RecordDuration("deviceauth_request_duration_seconds", time.Since(start).Seconds(), labels)

	status := "success"
	if err != nil {
		status = "error"
	}
	labels["status"] = status
	c.metrics.IncrementCounter("deviceauth_requests_total", labels)
}
