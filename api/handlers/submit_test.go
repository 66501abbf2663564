package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DragonBallZLeague/SparkingZero-sub001/internal/models"
)

type fakePublisher struct {
	result *models.PublishResult
	err    error
	calls  int
}

func (f *fakePublisher) Publish(_ context.Context, _ models.Submission) (*models.PublishResult, error) {
	f.calls++
	return f.result, f.err
}

func postSubmit(t *testing.T, handler *SubmitHandler, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/submit", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)
	return rec
}

func TestSubmitHappyPath(t *testing.T) {
	publisher := &fakePublisher{result: &models.PublishResult{
		ID:    "submission/alice-1700000000000",
		PRURL: "https://github.com/o/r/pull/7",
	}}
	handler := NewSubmitHandler(publisher, 10, testLogger{}, noopMetrics{})

	rec := postSubmit(t, handler, models.Submission{
		Name:       "Alice",
		TargetPath: "intake",
		Files: []models.SubmissionFile{
			{Name: "a.json", Content: base64.StdEncoding.EncodeToString([]byte(`{"battleInfo":{}}`))},
		},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["id"] != "submission/alice-1700000000000" || resp["prUrl"] != "https://github.com/o/r/pull/7" {
		t.Errorf("response = %v", resp)
	}
	if publisher.calls != 1 {
		t.Errorf("publisher calls = %d", publisher.calls)
	}
}

func TestSubmitRejectsNonJSONFile(t *testing.T) {
	publisher := &fakePublisher{}
	handler := NewSubmitHandler(publisher, 10, testLogger{}, noopMetrics{})

	rec := postSubmit(t, handler, models.Submission{
		Name:       "Alice",
		TargetPath: "intake",
		Files: []models.SubmissionFile{
			{Name: "data.txt", Content: base64.StdEncoding.EncodeToString([]byte(`{}`))},
		},
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "data.txt: Must be a .json file") {
		t.Errorf("body = %s", rec.Body.String())
	}
	if publisher.calls != 0 {
		t.Error("publisher called despite validation error")
	}
}

func TestSubmitRejectsOversizedName(t *testing.T) {
	publisher := &fakePublisher{}
	handler := NewSubmitHandler(publisher, 10, testLogger{}, noopMetrics{})

	rec := postSubmit(t, handler, models.Submission{
		Name:       strings.Repeat("x", 81),
		TargetPath: "intake",
		Files: []models.SubmissionFile{
			{Name: "a.json", Content: base64.StdEncoding.EncodeToString([]byte(`{"battleInfo":{}}`))},
		},
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if publisher.calls != 0 {
		t.Error("publisher called despite invalid name")
	}
}

func TestSubmitEnforcesFileCeiling(t *testing.T) {
	publisher := &fakePublisher{}
	handler := NewSubmitHandler(publisher, 2, testLogger{}, noopMetrics{})

	content := base64.StdEncoding.EncodeToString([]byte(`{"battleInfo":{}}`))
	rec := postSubmit(t, handler, models.Submission{
		Name:       "Alice",
		TargetPath: "intake",
		Files: []models.SubmissionFile{
			{Name: "a.json", Content: content},
			{Name: "b.json", Content: content},
			{Name: "c.json", Content: content},
		},
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Too many files") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestSubmitInvalidBody(t *testing.T) {
	handler := NewSubmitHandler(&fakePublisher{}, 10, testLogger{}, noopMetrics{})

	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}
