package responder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type widgetRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type widgetResponse struct {
	Response   string  `json:"response"`
	Intent     string  `json:"intent,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// WidgetResponder relays the conversation to a third-party support widget
// over HTTP. Timeouts, transport errors, and non-2xx responses all fall back
// to the rule-based responder; the conversation never aborts here.
type WidgetResponder struct {
	baseURL    string
	httpClient *http.Client
	fallback   Responder
	logger     *zerolog.Logger
}

func NewWidgetResponder(baseURL string, timeout time.Duration, fallback Responder, logger *zerolog.Logger) *WidgetResponder {
	return &WidgetResponder{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		fallback:   fallback,
		logger:     logger,
	}
}

func (w *WidgetResponder) Respond(ctx context.Context, message string, sessionID string) (Reply, error) {
	reply, err := w.sendMessage(ctx, message, sessionID)
	if err != nil {
		w.logger.Warn().Err(err).Str("session_id", sessionID).
			Msg("widget call failed, using rule-based responder")
		return w.fallback.Respond(ctx, message, sessionID)
	}
	return reply, nil
}

func (w *WidgetResponder) sendMessage(ctx context.Context, message string, sessionID string) (Reply, error) {
	body, err := json.Marshal(widgetRequest{Message: message, SessionID: sessionID})
	if err != nil {
		return Reply{}, fmt.Errorf("failed to serialize widget request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return Reply{}, fmt.Errorf("failed to build widget request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return Reply{}, fmt.Errorf("widget unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Reply{}, fmt.Errorf("widget returned status %d", resp.StatusCode)
	}

	var parsed widgetResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Reply{}, fmt.Errorf("failed to decode widget response: %w", err)
	}
	if parsed.Response == "" {
		return Reply{}, fmt.Errorf("widget returned empty response")
	}

	return Reply{
		Text:       parsed.Response,
		Intent:     parsed.Intent,
		Confidence: parsed.Confidence,
	}, nil
}
