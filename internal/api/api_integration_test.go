package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/opscore/support-sim/internal/api"
	"github.com/opscore/support-sim/internal/api/middleware"
	"github.com/opscore/support-sim/internal/config"
	"github.com/opscore/support-sim/internal/customer"
	"github.com/opscore/support-sim/internal/intent"
	"github.com/opscore/support-sim/internal/logstream"
	"github.com/opscore/support-sim/internal/models"
	"github.com/opscore/support-sim/internal/orchestrator"
	"github.com/opscore/support-sim/internal/store"
	"github.com/rs/zerolog"
)

func setupTestAPI(t *testing.T) (*restful.Container, *store.SessionStore) {
	t.Helper()

	logger := zerolog.Nop()

	simCfg := &config.SimConfig{
		Personas: []customer.Persona{
			{Name: "polite", Description: "A calm, patient customer", InitialFrustration: 0.1},
		},
		Categories: []config.CategoryConfig{
			{Label: "missing_points", Keywords: []string{"points", "missing"}},
		},
		Simulation: config.SimulationConfig{
			MaxTurns:            10,
			InitialAgentMessage: "Hello! How can I help you today?",
		},
	}

	sessions := store.NewSessionStore()
	reports := store.NewMemoryReportStore()
	stream := logstream.NewBroadcaster(&logger)

	orch := orchestrator.New(simCfg, orchestrator.Deps{
		Classifier: intent.NewClassifier(nil),
		Sessions:   sessions,
		Reports:    reports,
		Stream:     stream,
		Seed:       7,
	}, &logger)

	handler := api.NewHandler(orch, sessions, reports, stream, &logger)

	container := restful.NewContainer()
	container.Filter(middleware.RecoverPanic)
	api.RegisterRoutes(container, handler)

	return container, sessions
}

func doJSON(t *testing.T, container *restful.Container, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)
	return recorder
}

func TestAPI_Health(t *testing.T) {
	container, _ := setupTestAPI(t)

	recorder := doJSON(t, container, http.MethodGet, "/api/v1/health", nil)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", recorder.Code)
	}

	var response api.HealthResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.Status != "ok" {
		t.Errorf("Expected status 'ok', got '%s'", response.Status)
	}
}

func TestAPI_StartTest_ReturnsIDImmediately(t *testing.T) {
	container, _ := setupTestAPI(t)

	recorder := doJSON(t, container, http.MethodPost, "/api/v1/tests", api.StartTestRequest{
		Categories:               []string{"missing_points"},
		ConversationsPerCategory: 1,
	})

	if recorder.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var response api.StartTestResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.TestID == "" {
		t.Fatal("Expected a non-empty test id")
	}
	if response.Status != string(models.TestStatusRunning) {
		t.Errorf("Expected running status, got %s", response.Status)
	}

	// The suite runs in the background; the session must be queryable right away.
	statusRecorder := doJSON(t, container, http.MethodGet, "/api/v1/tests/"+response.TestID, nil)
	if statusRecorder.Code != http.StatusOK {
		t.Errorf("Expected status 200 for session lookup, got %d", statusRecorder.Code)
	}
}

func TestAPI_StartTest_EmptyCategories(t *testing.T) {
	container, _ := setupTestAPI(t)

	recorder := doJSON(t, container, http.MethodPost, "/api/v1/tests", api.StartTestRequest{
		Categories: []string{},
	})

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", recorder.Code)
	}

	var response middleware.ErrorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse error response: %v", err)
	}
	if response.Error == "" {
		t.Error("Expected an error message in the response body")
	}
}

func TestAPI_ReportAvailableAfterCompletion(t *testing.T) {
	container, _ := setupTestAPI(t)

	recorder := doJSON(t, container, http.MethodPost, "/api/v1/tests", api.StartTestRequest{
		Categories:               []string{"missing_points"},
		ConversationsPerCategory: 2,
		MaxTurns:                 10,
	})
	if recorder.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d", recorder.Code)
	}

	var started api.StartTestResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &started); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		statusRecorder := doJSON(t, container, http.MethodGet, "/api/v1/tests/"+started.TestID, nil)
		var session models.TestSession
		if err := json.Unmarshal(statusRecorder.Body.Bytes(), &session); err == nil &&
			session.Status == models.TestStatusCompleted {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	reportRecorder := doJSON(t, container, http.MethodGet, "/api/v1/tests/"+started.TestID+"/report", nil)
	if reportRecorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for report, got %d: %s", reportRecorder.Code, reportRecorder.Body.String())
	}

	var report models.TestReport
	if err := json.Unmarshal(reportRecorder.Body.Bytes(), &report); err != nil {
		t.Fatalf("Failed to parse report: %v", err)
	}
	if report.TotalConversations != 2 {
		t.Errorf("Expected 2 conversations in report, got %d", report.TotalConversations)
	}
	if report.SuccessfulConversations+report.FailedConversations != report.TotalConversations {
		t.Error("Expected successful + failed to equal total")
	}
}

func TestAPI_ReportNotReadyWhileRunning(t *testing.T) {
	container, sessions := setupTestAPI(t)

	sessions.Register(models.TestSession{
		TestID:    "in-flight",
		Status:    models.TestStatusRunning,
		StartTime: time.Now(),
	}, nil)

	recorder := doJSON(t, container, http.MethodGet, "/api/v1/tests/in-flight/report", nil)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404 while the report is pending, got %d: %s",
			recorder.Code, recorder.Body.String())
	}

	var errResp middleware.ErrorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("Failed to parse error body: %v", err)
	}
	if errResp.Error == "" {
		t.Error("Expected an error message, got an empty envelope")
	}
}

func TestAPI_StartConversation_MissingIssue(t *testing.T) {
	container, _ := setupTestAPI(t)

	recorder := doJSON(t, container, http.MethodPost, "/api/v1/conversations", api.ConversationRequest{})

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", recorder.Code)
	}
}

func TestAPI_UnknownTest(t *testing.T) {
	container, _ := setupTestAPI(t)

	for _, path := range []string{
		"/api/v1/tests/no-such-test",
		"/api/v1/tests/no-such-test/report",
		"/api/v1/tests/no-such-test/logs",
	} {
		recorder := doJSON(t, container, http.MethodGet, path, nil)
		if recorder.Code != http.StatusNotFound {
			t.Errorf("Expected status 404 for %s, got %d", path, recorder.Code)
		}
	}

	cancelRecorder := doJSON(t, container, http.MethodDelete, "/api/v1/tests/no-such-test", nil)
	if cancelRecorder.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for cancel, got %d", cancelRecorder.Code)
	}
}
