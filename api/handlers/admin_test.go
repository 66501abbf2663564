package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DragonBallZLeague/SparkingZero-sub001/api/middleware"
	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/config"
	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/interfaces"
	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/models"
	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/prbody"
)

// stubGitHub covers just the calls the admin paths make.
type stubGitHub struct {
	openPRs    []models.PullRequestInfo
	login      string
	permission string
	pr         *models.PullRequestInfo
	tokens     []string // tokens the factory saw
}

func (s *stubGitHub) GetBranchHead(context.Context, string) (string, error) { return "", nil }
func (s *stubGitHub) CreateBranch(context.Context, string, string) error   { return nil }
func (s *stubGitHub) CreateFile(context.Context, string, string, string, []byte) error {
	return nil
}
func (s *stubGitHub) CreateDraftPR(context.Context, string, string, string, string) (*models.PullRequestInfo, error) {
	return nil, errors.New("not implemented")
}
func (s *stubGitHub) AddLabels(context.Context, int, []string) error { return nil }
func (s *stubGitHub) ListOpenPRs(context.Context, string) ([]models.PullRequestInfo, error) {
	return s.openPRs, nil
}
func (s *stubGitHub) GetPR(context.Context, int) (*models.PullRequestInfo, error) {
	if s.pr == nil {
		return nil, errors.New("no such pr")
	}
	return s.pr, nil
}
func (s *stubGitHub) ListPRFiles(context.Context, int, int) ([]string, error) { return nil, nil }
func (s *stubGitHub) GetFileContent(context.Context, string, string) ([]byte, error) {
	return nil, errors.New("not found")
}
func (s *stubGitHub) PathExists(context.Context, string, string) (bool, error) { return false, nil }
func (s *stubGitHub) AuthenticatedLogin(context.Context) (string, error)       { return s.login, nil }
func (s *stubGitHub) PermissionLevel(context.Context, string) (string, error) {
	return s.permission, nil
}
func (s *stubGitHub) MarkReadyForReview(context.Context, string) error { return nil }

func newTestAdminHandler(stub *stubGitHub) *AdminHandler {
	h := NewAdminHandler(
		config.GitHubConfig{BaseBranch: "main"},
		config.SubmissionConfig{Label: "submission", EnrichmentCap: 5},
		testLogger{}, noopMetrics{})
	h.newClient = func(token string) interfaces.GitHubClient {
		stub.tokens = append(stub.tokens, token)
		return stub
	}
	return h
}

func withToken(r *http.Request, token string) *http.Request {
	return r.WithContext(middleware.WithBearerToken(r.Context(), token))
}

func TestListSubmissionsUsesCallerToken(t *testing.T) {
	stub := &stubGitHub{openPRs: []models.PullRequestInfo{
		{
			Number: 1,
			Body: prbody.Encode(prbody.Metadata{
				Submitter: "Alice", TargetPath: "intake", Files: []string{"a.json"},
			}),
			Labels: []string{"submission"},
			Branch: "submission/alice-1",
			State:  "open",
			Draft:  true,
		},
	}}
	handler := newTestAdminHandler(stub)

	req := withToken(httptest.NewRequest(http.MethodGet, "/admin/submissions", nil), "ghp_abc")
	rec := httptest.NewRecorder()
	handler.HandleListSubmissions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(stub.tokens) != 1 || stub.tokens[0] != "ghp_abc" {
		t.Errorf("factory tokens = %v", stub.tokens)
	}

	var resp struct {
		Submissions []models.SubmissionPR `json:"submissions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Submissions) != 1 || resp.Submissions[0].Submitter != "Alice" {
		t.Errorf("submissions = %+v", resp.Submissions)
	}
}

func TestListSubmissionsWithoutToken(t *testing.T) {
	handler := newTestAdminHandler(&stubGitHub{})

	rec := httptest.NewRecorder()
	handler.HandleListSubmissions(rec, httptest.NewRequest(http.MethodGet, "/admin/submissions", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestMarkReadyAlreadyReadyResponse(t *testing.T) {
	stub := &stubGitHub{
		login:      "maintainer",
		permission: "admin",
		pr:         &models.PullRequestInfo{Number: 5, NodeID: "node-5", Draft: false},
	}
	handler := newTestAdminHandler(stub)

	req := withToken(httptest.NewRequest(http.MethodPost, "/admin/mark-ready",
		strings.NewReader(`{"prNumber":5}`)), "ghp_abc")
	rec := httptest.NewRecorder()
	handler.HandleMarkReady(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var result models.MarkReadyResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if !result.Success || !result.AlreadyReady {
		t.Errorf("result = %+v", result)
	}
}

func TestMarkReadyInsufficientPermission(t *testing.T) {
	stub := &stubGitHub{
		login:      "drive-by",
		permission: "read",
		pr:         &models.PullRequestInfo{Number: 5, NodeID: "node-5", Draft: true},
	}
	handler := newTestAdminHandler(stub)

	req := withToken(httptest.NewRequest(http.MethodPost, "/admin/mark-ready",
		strings.NewReader(`{"prNumber":5}`)), "ghp_abc")
	rec := httptest.NewRecorder()
	handler.HandleMarkReady(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestMarkReadyRejectsMissingNumber(t *testing.T) {
	handler := newTestAdminHandler(&stubGitHub{})

	req := withToken(httptest.NewRequest(http.MethodPost, "/admin/mark-ready",
		strings.NewReader(`{}`)), "ghp_abc")
	rec := httptest.NewRecorder()
	handler.HandleMarkReady(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}
