package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/opscore/support-sim/internal/api/middleware"
	"github.com/opscore/support-sim/internal/logstream"
	"github.com/opscore/support-sim/internal/models"
	"github.com/opscore/support-sim/internal/orchestrator"
	"github.com/opscore/support-sim/internal/store"
	"github.com/rs/zerolog"
)

type Handler struct {
	orchestrator *orchestrator.Orchestrator
	sessions     *store.SessionStore
	reports      store.ReportStore
	stream       *logstream.Broadcaster
	logger       *zerolog.Logger
}

func NewHandler(
	orch *orchestrator.Orchestrator,
	sessions *store.SessionStore,
	reports store.ReportStore,
	stream *logstream.Broadcaster,
	logger *zerolog.Logger,
) *Handler {
	return &Handler{
		orchestrator: orch,
		sessions:     sessions,
		reports:      reports,
		stream:       stream,
		logger:       logger,
	}
}

// POST /api/v1/tests
// Starts a test suite in the background and returns its id immediately.
func (h *Handler) StartTest(req *restful.Request, resp *restful.Response) {
	var testRequest StartTestRequest
	if err := req.ReadEntity(&testRequest); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	if len(testRequest.Categories) == 0 {
		middleware.HandleError(resp, fmt.Errorf("at least one category is required"), http.StatusBadRequest)
		return
	}
	for _, category := range testRequest.Categories {
		if category == "" {
			middleware.HandleError(resp, fmt.Errorf("category names must be non-empty"), http.StatusBadRequest)
			return
		}
	}
	if testRequest.ConversationsPerCategory <= 0 {
		testRequest.ConversationsPerCategory = 1
	}

	testID := h.orchestrator.StartSuite(models.SuiteConfig{
		Categories:               testRequest.Categories,
		Persona:                  testRequest.Persona,
		ConversationsPerCategory: testRequest.ConversationsPerCategory,
		MaxTurns:                 testRequest.MaxTurns,
	})

	h.logger.Info().
		Str("test_id", testID).
		Strs("categories", testRequest.Categories).
		Msg("Test suite accepted")

	resp.WriteHeaderAndEntity(http.StatusAccepted, StartTestResponse{
		TestID: testID,
		Status: string(models.TestStatusRunning),
	})
}

// POST /api/v1/conversations
// Starts a single autonomous conversation for a free-form issue.
func (h *Handler) StartConversation(req *restful.Request, resp *restful.Response) {
	var convRequest ConversationRequest
	if err := req.ReadEntity(&convRequest); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	if convRequest.Issue == "" {
		middleware.HandleError(resp, fmt.Errorf("issue text is required"), http.StatusBadRequest)
		return
	}

	testID := h.orchestrator.StartConversation(convRequest.Issue, convRequest.Persona, convRequest.MaxTurns)

	h.logger.Info().
		Str("test_id", testID).
		Msg("Conversation accepted")

	resp.WriteHeaderAndEntity(http.StatusAccepted, StartTestResponse{
		TestID: testID,
		Status: string(models.TestStatusRunning),
	})
}

// GET /api/v1/tests
func (h *Handler) ListTests(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, h.sessions.List())
}

// GET /api/v1/tests/{test_id}
func (h *Handler) GetTest(req *restful.Request, resp *restful.Response) {
	testID := req.PathParameter("test_id")

	session, ok := h.sessions.Get(testID)
	if !ok {
		middleware.HandleError(resp, fmt.Errorf("test %s not found", testID), http.StatusNotFound)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, session)
}

// DELETE /api/v1/tests/{test_id}
// Requests cancellation; the suite stops between conversations.
func (h *Handler) CancelTest(req *restful.Request, resp *restful.Response) {
	testID := req.PathParameter("test_id")

	if !h.sessions.Cancel(testID) {
		middleware.HandleError(resp, fmt.Errorf("test %s not found", testID), http.StatusNotFound)
		return
	}

	h.logger.Info().Str("test_id", testID).Msg("Test cancellation requested")

	session, _ := h.sessions.Get(testID)
	resp.WriteHeaderAndEntity(http.StatusOK, session)
}

// GET /api/v1/tests/{test_id}/report
func (h *Handler) GetReport(req *restful.Request, resp *restful.Response) {
	testID := req.PathParameter("test_id")

	// Reports may outlive their session registry entry, so the report store
	// is consulted first and the session only disambiguates the 404.
	report, err := h.reports.Get(req.Request.Context(), testID)
	if err != nil || report == nil {
		if _, ok := h.sessions.Get(testID); ok {
			middleware.HandleError(resp, fmt.Errorf("report for test %s is not ready", testID), http.StatusNotFound)
			return
		}
		middleware.HandleError(resp, fmt.Errorf("test %s not found", testID), http.StatusNotFound)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, report)
}

// GET /api/v1/tests/{test_id}/logs
// Streams conversation log records for a running test as server-sent events.
func (h *Handler) StreamLogs(req *restful.Request, resp *restful.Response) {
	testID := req.PathParameter("test_id")

	if _, ok := h.sessions.Get(testID); !ok {
		middleware.HandleError(resp, fmt.Errorf("test %s not found", testID), http.StatusNotFound)
		return
	}

	resp.AddHeader("Content-Type", "text/event-stream")
	resp.AddHeader("Cache-Control", "no-cache")
	resp.AddHeader("Connection", "keep-alive")
	resp.AddHeader("X-Accel-Buffering", "no")

	writer := resp.ResponseWriter
	flusher, ok := writer.(http.Flusher)
	if !ok {
		middleware.HandleError(resp, fmt.Errorf("streaming not supported"), http.StatusInternalServerError)
		return
	}

	records, cancel := h.stream.Subscribe(testID)
	defer cancel()

	ctx := req.Request.Context()

	startEvent := SSEEvent{Event: "start", Data: map[string]string{"test_id": testID}}
	if formatted, err := startEvent.Format(); err == nil {
		fmt.Fprint(writer, formatted)
		flusher.Flush()
	}

	// Poll session status so the stream closes once the suite finishes
	// instead of holding the connection open forever.
	statusTicker := time.NewTicker(time.Second)
	defer statusTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case record, open := <-records:
			if !open {
				return
			}
			event := SSEEvent{Event: "log", Data: record}
			if formatted, err := event.Format(); err == nil {
				fmt.Fprint(writer, formatted)
				flusher.Flush()
			}
		case <-statusTicker.C:
			session, exists := h.sessions.Get(testID)
			if !exists || session.Status != models.TestStatusRunning {
				doneEvent := SSEEvent{Event: "done", Data: map[string]string{"status": string(session.Status)}}
				if formatted, err := doneEvent.Format(); err == nil {
					fmt.Fprint(writer, formatted)
					flusher.Flush()
				}
				return
			}
		}
	}
}

// Health handler GET API /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	healthResponse := HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	}

	resp.WriteHeaderAndEntity(http.StatusOK, healthResponse)
}
