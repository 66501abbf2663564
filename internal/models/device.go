package models

import "time"

// DeviceStartResponse is GitHub's device-code payload, passed through to the
// browser verbatim. Field names follow RFC 8628.
type DeviceStartResponse struct {
	DeviceCode              string `json:"device_code"`
	UserCode                string `json:"user_code"`
	VerificationURI         string `json:"verification_uri"`
	VerificationURIComplete string `json:"verification_uri_complete,omitempty"`
	ExpiresIn               int    `json:"expires_in"`
	Interval                int    `json:"interval"`
}

// DeviceTokenResponse is GitHub's access-token poll payload. On a pending or
// failed poll AccessToken is empty and Error carries the provider's signal
// ("authorization_pending", "slow_down", "expired_token", "access_denied", ...).
type DeviceTokenResponse struct {
	AccessToken      string `json:"access_token,omitempty"`
	TokenType        string `json:"token_type,omitempty"`
	Scope            string `json:"scope,omitempty"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
	ErrorURI         string `json:"error_uri,omitempty"`
	Interval         int    `json:"interval,omitempty"`
}

// DeviceSession is the ephemeral state held between polls of one login
// attempt. It lives with the caller and is discarded on resolution.
type DeviceSession struct {
	DeviceCode   string
	UserCode     string
	PollInterval time.Duration
	ExpiresAt    time.Time
}
