package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/models"
	pkgerrors "github.com/DragonBallZLeague/SparkingZero-sub001/pkg/errors"
)

type fakeDeviceFlow struct {
	startResp *models.DeviceStartResponse
	startErr  error
	pollResp  *models.DeviceTokenResponse
	pollErr   error
}

func (f *fakeDeviceFlow) Start(_ context.Context, _, _ string) (*models.DeviceStartResponse, error) {
	return f.startResp, f.startErr
}

func (f *fakeDeviceFlow) Poll(_ context.Context, _, _ string) (*models.DeviceTokenResponse, error) {
	return f.pollResp, f.pollErr
}

func TestDeviceStartPassthrough(t *testing.T) {
	flow := &fakeDeviceFlow{startResp: &models.DeviceStartResponse{
		DeviceCode:      "dc-1",
		UserCode:        "ABCD-1234",
		VerificationURI: "https://github.com/login/device",
		ExpiresIn:       900,
		Interval:        5,
	}}
	handler := NewDeviceAuthHandler(flow, testLogger{}, noopMetrics{})

	req := httptest.NewRequest(http.MethodPost, "/github-device-start",
		strings.NewReader(`{"client_id":"iv1.abc","scope":"repo"}`))
	rec := httptest.NewRecorder()
	handler.HandleStart(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp models.DeviceStartResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.UserCode != "ABCD-1234" || resp.Interval != 5 {
		t.Errorf("payload not passed through: %+v", resp)
	}
}

func TestDeviceStartRequiresClientID(t *testing.T) {
	handler := NewDeviceAuthHandler(&fakeDeviceFlow{}, testLogger{}, noopMetrics{})

	req := httptest.NewRequest(http.MethodPost, "/github-device-start", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.HandleStart(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDeviceTokenPendingIsDataNotError(t *testing.T) {
	flow := &fakeDeviceFlow{pollResp: &models.DeviceTokenResponse{
		Error:            "authorization_pending",
		ErrorDescription: "The authorization request is still pending.",
	}}
	handler := NewDeviceAuthHandler(flow, testLogger{}, noopMetrics{})

	req := httptest.NewRequest(http.MethodPost, "/github-device-token",
		strings.NewReader(`{"client_id":"iv1.abc","device_code":"dc-1"}`))
	rec := httptest.NewRecorder()
	handler.HandleToken(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (pending must pass through as 200)", rec.Code)
	}
	var resp models.DeviceTokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error != "authorization_pending" {
		t.Errorf("payload = %+v", resp)
	}
}

func TestDeviceTokenUpstreamFailure(t *testing.T) {
	flow := &fakeDeviceFlow{pollErr: pkgerrors.NewUpstreamError("device-auth", 502, "bad gateway")}
	handler := NewDeviceAuthHandler(flow, testLogger{}, noopMetrics{})

	req := httptest.NewRequest(http.MethodPost, "/github-device-token",
		strings.NewReader(`{"client_id":"iv1.abc","device_code":"dc-1"}`))
	rec := httptest.NewRecorder()
	handler.HandleToken(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
}
