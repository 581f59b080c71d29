package api

import (
	"encoding/json"
	"fmt"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type StartTestRequest struct {
	Categories               []string `json:"categories"`
	Persona                  string   `json:"persona,omitempty"`
	ConversationsPerCategory int      `json:"conversations_per_category"`
	MaxTurns                 int      `json:"max_turns"`
}

type StartTestResponse struct {
	TestID string `json:"test_id"`
	Status string `json:"status"`
}

type ConversationRequest struct {
	Issue    string `json:"issue"`
	Persona  string `json:"persona,omitempty"`
	MaxTurns int    `json:"max_turns"`
}

type SSEEvent struct {
	Event string      `json:"-"`
	Data  interface{} `json:"-"`
}

func (e SSEEvent) Format() (string, error) {
	jsonData, err := json.Marshal(e.Data)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("event: %s\ndata: %s\n\n", e.Event, string(jsonData)), nil
}
