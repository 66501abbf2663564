package services

import (
	"context"
	"testing"
	"time"

	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/models"
	pkgerrors "github.com/DragonBallZLeague/SparkingZero-sub001/pkg/errors"
)

func newTestReadiness(fake *fakeGitHub) *ReadinessService {
	svc := NewReadinessService(fake, testLogger{}, noopMetrics{})
	svc.pollInterval = time.Millisecond
	svc.pollAttempts = 3
	return svc
}

func TestMarkReadyAlreadyReadyIsIdempotent(t *testing.T) {
	fake := newFakeGitHub()
	fake.login = "maintainer"
	fake.permission = "admin"
	fake.prByNumber[5] = &models.PullRequestInfo{Number: 5, NodeID: "node-5", Draft: false}

	svc := newTestReadiness(fake)
	result, err := svc.MarkReady(context.Background(), 5)
	if err != nil {
		t.Fatalf("MarkReady failed: %v", err)
	}
	if !result.AlreadyReady || !result.Success {
		t.Errorf("result = %+v, want alreadyReady success", result)
	}
	if len(fake.readyCalls) != 0 {
		t.Error("mutation issued for an already-ready PR")
	}
}

func TestMarkReadyRequiresPermission(t *testing.T) {
	for _, permission := range []string{"read", "none", "triage"} {
		fake := newFakeGitHub()
		fake.login = "drive-by"
		fake.permission = permission
		fake.prByNumber[5] = &models.PullRequestInfo{Number: 5, NodeID: "node-5", Draft: true}

		svc := newTestReadiness(fake)
		_, err := svc.MarkReady(context.Background(), 5)
		if err == nil {
			t.Fatalf("permission %q accepted", permission)
		}
		appErr, ok := pkgerrors.AsAppError(err)
		if !ok || appErr.Type != pkgerrors.ErrorTypeForbidden {
			t.Errorf("permission %q: error = %v, want forbidden", permission, err)
		}
		if len(fake.readyCalls) != 0 {
			t.Error("mutation issued despite missing permission")
		}
	}
}

func TestMarkReadyVerifiesConversion(t *testing.T) {
	fake := newFakeGitHub()
	fake.login = "maintainer"
	fake.permission = "write"
	fake.prByNumber[9] = &models.PullRequestInfo{Number: 9, NodeID: "node-9", Draft: true}
	// First read (pre-mutation) and first verification read still see the
	// draft flag; the second verification read sees it cleared.
	fake.draftClearsAfter = 2

	svc := newTestReadiness(fake)
	result, err := svc.MarkReady(context.Background(), 9)
	if err != nil {
		t.Fatalf("MarkReady failed: %v", err)
	}
	if !result.Success || result.AlreadyReady {
		t.Errorf("result = %+v", result)
	}
	if len(fake.readyCalls) != 1 || fake.readyCalls[0] != "node-9" {
		t.Errorf("mutation calls = %v", fake.readyCalls)
	}
}

func TestMarkReadyExhaustedPollIsPendingNotFailure(t *testing.T) {
	fake := newFakeGitHub()
	fake.login = "maintainer"
	fake.permission = "admin"
	fake.prByNumber[9] = &models.PullRequestInfo{Number: 9, NodeID: "node-9", Draft: true}
	fake.draftClearsAfter = 1000 // never clears within the window

	svc := newTestReadiness(fake)
	_, err := svc.MarkReady(context.Background(), 9)
	if err == nil {
		t.Fatal("expected pending outcome")
	}
	if !pkgerrors.IsPending(err) {
		t.Errorf("error = %v, want pending", err)
	}
	if len(fake.readyCalls) != 1 {
		t.Errorf("mutation must not be re-issued, calls = %v", fake.readyCalls)
	}
}
