package services

import (
	"context"
	"time"

	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/interfaces"
	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/models"
	pkgerrors "github.com/DragonBallZLeague/SparkingZero-sub001/pkg/errors"
)

// slowDownIncrement is added to the poll interval on every "slow_down"
// signal. The interval only ever grows.
const slowDownIncrement = 5 * time.Second

const defaultPollInterval = 5 * time.Second

// AwaitPolicy bounds the device-flow polling loop. The zero value bounds it
// by the session's own expiry, the provider's code lifetime.
type AwaitPolicy struct {
	MaxAttempts int
	MaxElapsed  time.Duration
}

// DeviceFlowService drives the OAuth Device Authorization Grant against the
// provider client. Start and Poll are single-shot passthroughs used by the
// HTTP endpoints (the browser owns the wait between polls); Await is the
// in-process polling loop for Go callers.
type DeviceFlowService struct {
	provider interfaces.DeviceAuthClient
	logger   interfaces.Logger
	metrics  interfaces.MetricsCollector

	sleep func(ctx context.Context, d time.Duration) error
}

// NewDeviceFlowService creates a new device flow service
func NewDeviceFlowService(provider interfaces.DeviceAuthClient, logger interfaces.Logger, metrics interfaces.MetricsCollector) *DeviceFlowService {
	return &DeviceFlowService{
		provider: provider,
		logger:   logger,
		metrics:  metrics,
		sleep:    sleepContext,
	}
}

// Start requests a device code. Failure to start is fatal; there is no retry.
func (s *DeviceFlowService) Start(ctx context.Context, clientID, scope string) (*models.DeviceStartResponse, error) {
	resp, err := s.provider.RequestDeviceCode(ctx, clientID, scope)
	if err != nil {
		s.logger.Error("Device flow start failed", err)
		return nil, err
	}

	s.logger.Info("Device flow started",
		"user_code", resp.UserCode,
		"expires_in", resp.ExpiresIn,
		"interval", resp.Interval,
	)
	return resp, nil
}

// Poll performs a single token poll. The provider's payload is returned
// as-is, pending and error signals included.
func (s *DeviceFlowService) Poll(ctx context.Context, clientID, deviceCode string) (*models.DeviceTokenResponse, error) {
	return s.provider.RequestToken(ctx, clientID, deviceCode)
}

// Session builds the ephemeral per-attempt state from a start response.
func Session(resp *models.DeviceStartResponse) models.DeviceSession {
	interval := time.Duration(resp.Interval) * time.Second
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return models.DeviceSession{
		DeviceCode:   resp.DeviceCode,
		UserCode:     resp.UserCode,
		PollInterval: interval,
		ExpiresAt:    time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}
}

// Await polls until the user approves, a terminal provider error arrives,
// the policy bound is hit, or ctx is cancelled. On "authorization_pending"
// it waits the current interval; on "slow_down" the interval is increased by
// slowDownIncrement first and never decreased again. Any other provider
// error surfaces verbatim and stops the loop.
func (s *DeviceFlowService) Await(ctx context.Context, clientID string, session models.DeviceSession, policy AwaitPolicy) (string, error) {
	interval := session.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	deadline := session.ExpiresAt
	if policy.MaxElapsed > 0 {
		elapsed := time.Now().Add(policy.MaxElapsed)
		if deadline.IsZero() || elapsed.Before(deadline) {
			deadline = elapsed
		}
	}

	attempts := 0
	for {
		if policy.MaxAttempts > 0 && attempts >= policy.MaxAttempts {
			return "", pkgerrors.NewTimeoutError("device-auth", interval.String()).
				WithContext("attempts", attempts)
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return "", pkgerrors.NewUnauthorizedError("device authorization expired before approval")
		}

		resp, err := s.provider.RequestToken(ctx, clientID, session.DeviceCode)
		if err != nil {
			return "", err
		}
		attempts++

		switch resp.Error {
		case "":
			if resp.AccessToken == "" {
				return "", pkgerrors.NewExternalError("device-auth", "token response carried neither a token nor an error")
			}
			s.logger.Info("Device flow resolved", "attempts", attempts)
			return resp.AccessToken, nil

		case "authorization_pending":
			// keep waiting at the current interval

		case "slow_down":
			interval += slowDownIncrement
			s.logger.Debug("Provider asked to slow down", "interval", interval.String())

		default:
			message := resp.Error
			if resp.ErrorDescription != "" {
				message = resp.Error + ": " + resp.ErrorDescription
			}
			s.logger.Warn("Device flow failed", "provider_error", resp.Error)
			return "", pkgerrors.NewUnauthorizedError(message)
		}

		if err := s.sleep(ctx, interval); err != nil {
			return "", err
		}
	}
}

// sleepContext waits d or until ctx is cancelled. Cancellation is the
// caller abandoning the login attempt; there is nothing to clean up.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return pkgerrors.WrapError(ctx.Err(), "device flow abandoned")
	case <-timer.C:
		return nil
	}
}
